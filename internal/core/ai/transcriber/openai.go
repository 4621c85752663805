package transcriber

import (
	"context"
	"fmt"
	"time"

	"github.com/guiyumin/narrify/internal/core/config"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements Transcriber using the OpenAI Whisper API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI transcriber.
func NewOpenAI(cfg config.AIServiceConfig, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return "openai"
}

// Transcribe uploads the audio file and converts the verbose JSON response.
func (o *OpenAI) Transcribe(ctx context.Context, filePath string) (*Result, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: filePath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription API error: %w", err)
	}

	result := &Result{
		Text:     resp.Text,
		Language: LanguageCode(resp.Language),
		Duration: seconds(resp.Duration),
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, Segment{
			Start: seconds(seg.Start),
			End:   seconds(seg.End),
			Text:  seg.Text,
		})
	}
	return result, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
