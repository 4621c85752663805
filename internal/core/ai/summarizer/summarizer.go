// Package summarizer provides text summarization.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guiyumin/narrify/internal/core/config"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("no response from API")

// Result contains the summarization output.
type Result struct {
	Text string
}

// Summarizer generates summaries from text.
type Summarizer interface {
	// Summarize generates a summary from the given text.
	Summarize(ctx context.Context, text string) (*Result, error)

	// Name returns the provider name.
	Name() string
}

// New creates a new Summarizer based on configuration.
func New(provider string, cfg config.AIServiceConfig, apiKey string) (Summarizer, error) {
	switch provider {
	case "openai", "":
		return NewOpenAI(cfg, apiKey)
	case "anthropic":
		return NewAnthropic(cfg, apiKey)
	case "qwen":
		return NewQwen(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported summarization provider: %s", provider)
	}
}

func newResult(content string) (*Result, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}
	return &Result{Text: content}, nil
}
