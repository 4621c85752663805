package summarizer

import (
	"context"
	"fmt"

	"github.com/guiyumin/narrify/internal/core/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is cheap and more than enough for a few paragraphs of prose.
const DefaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAI implements Summarizer using OpenAI GPT (official SDK).
type OpenAI struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAI creates a new OpenAI summarizer.
func NewOpenAI(cfg config.AIServiceConfig, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := openai.ChatModel(cfg.Model)
	if cfg.Model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return "openai"
}

// Summarize generates a summary from the given text using OpenAI GPT.
func (o *OpenAI) Summarize(ctx context.Context, text string) (*Result, error) {
	return chatSummarize(ctx, o.client, o.model, text, 4000)
}

// chatSummarize is shared by every OpenAI-compatible provider.
func chatSummarize(ctx context.Context, client openai.Client, model openai.ChatModel, text string, maxTokens int64) (*Result, error) {
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(BuildUserPrompt(text, maxTranscriptChars)),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return nil, fmt.Errorf("summarization API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return newResult(resp.Choices[0].Message.Content)
}
