package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/guiyumin/narrify/internal/core/config"
)

// Anthropic implements Summarizer using Anthropic Claude.
type Anthropic struct {
	client *anthropic.Client
	model  string
}

// NewAnthropic creates a new Anthropic summarizer.
func NewAnthropic(cfg config.AIServiceConfig, apiKey string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key not provided")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	return &Anthropic{
		client: &client,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (a *Anthropic) Name() string {
	return "anthropic"
}

// Summarize generates a summary from the given text using Anthropic Claude.
func (a *Anthropic) Summarize(ctx context.Context, text string) (*Result, error) {
	// Claude has a 200k window; 150k chars leaves room for the answer
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4000,
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildUserPrompt(text, 150000))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summarization API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return newResult(sb.String())
}
