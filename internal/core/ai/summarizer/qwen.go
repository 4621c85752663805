package summarizer

import (
	"context"
	"fmt"

	"github.com/guiyumin/narrify/internal/core/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// QwenDefaultBaseURL is the OpenAI-compatible endpoint for Qwen
	QwenDefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// Qwen implements Summarizer using Alibaba Qwen via OpenAI-compatible API.
type Qwen struct {
	client openai.Client
	model  string
}

// NewQwen creates a new Qwen summarizer. apiKey is a DashScope key.
func NewQwen(cfg config.AIServiceConfig, apiKey string) (*Qwen, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Qwen API key not provided")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = QwenDefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "qwen-plus"
	}

	return &Qwen{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
		),
		model: model,
	}, nil
}

// Name returns the provider name.
func (q *Qwen) Name() string {
	return "qwen"
}

// Summarize generates a summary from the given text using Qwen.
func (q *Qwen) Summarize(ctx context.Context, text string) (*Result, error) {
	return chatSummarize(ctx, q.client, openai.ChatModel(q.model), text, 2000)
}
