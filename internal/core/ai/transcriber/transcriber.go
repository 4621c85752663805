// Package transcriber provides speech-to-text transcription.
package transcriber

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guiyumin/narrify/internal/core/config"
)

// Segment represents a timestamped portion of transcript.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Result contains the transcription output.
type Result struct {
	Text     string
	Segments []Segment
	Language string // detected ISO 639 code, empty when unknown
	Duration time.Duration
}

// FormattedText returns the transcript with timestamps in format [HH:MM:SS] Text
func (r *Result) FormattedText() string {
	if len(r.Segments) == 0 {
		return r.Text
	}

	var sb strings.Builder
	for _, seg := range r.Segments {
		fmt.Fprintf(&sb, "[%s] %s\n", formatTimestamp(seg.Start), strings.TrimSpace(seg.Text))
	}
	return sb.String()
}

func formatTimestamp(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Transcriber converts audio to text.
type Transcriber interface {
	// Transcribe converts an audio file to text.
	Transcribe(ctx context.Context, filePath string) (*Result, error)

	// Name returns the provider name.
	Name() string
}

// New creates a Transcriber. Every supported provider speaks the
// OpenAI-compatible audio API, so cfg.BaseURL selects the backend.
func New(provider string, cfg config.AIServiceConfig, apiKey string) (Transcriber, error) {
	switch provider {
	case "openai", "anthropic", "qwen", "":
		return NewOpenAI(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", provider)
	}
}
