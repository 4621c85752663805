// Package ai turns a video identifier into a stored summary: captions when
// the platform has them, audio transcription otherwise.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/guiyumin/narrify/internal/core/ai/summarizer"
	"github.com/guiyumin/narrify/internal/core/ai/transcriber"
	"github.com/guiyumin/narrify/internal/core/captions"
	"github.com/guiyumin/narrify/internal/core/i18n"
	"github.com/guiyumin/narrify/internal/core/store"
	"github.com/guiyumin/narrify/internal/core/ytdlp"
)

// Transcript provenance.
const (
	SourceCaptioned   = "captioned"
	SourceTranscribed = "transcribed"
)

// CaptionLookup finds platform captions for a video.
type CaptionLookup interface {
	Lookup(ctx context.Context, videoID string) captions.Lookup
}

// Prober reads video metadata without downloading it.
type Prober interface {
	Probe(ctx context.Context, videoID string) (ytdlp.Metadata, error)
}

// AudioDownloader fetches a video's audio track to stem.<ext>.
type AudioDownloader interface {
	Download(ctx context.Context, videoID, stem string) (string, error)
}

// Options holds the pipeline collaborators and policy.
type Options struct {
	Captions    CaptionLookup
	Prober      Prober
	Downloader  AudioDownloader
	Transcriber transcriber.Transcriber
	Summarizer  summarizer.Summarizer
	Store       store.Store

	// MaxDurationSeconds limits audio transcription. Zero means no limit.
	MaxDurationSeconds int
	// ScratchDir is where per-request audio directories are made; empty uses os.TempDir.
	ScratchDir string
	// Language selects the message language for validation errors.
	Language string
	Logger   *slog.Logger
}

// Pipeline processes one video per call. It holds no per-request state and
// is safe for concurrent use.
type Pipeline struct {
	captions    CaptionLookup
	prober      Prober
	downloader  AudioDownloader
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	store       store.Store

	maxDuration int
	scratchDir  string
	language    string
	logger      *slog.Logger
}

// Transcript is the text a summary is made from.
type Transcript struct {
	Text         string
	LanguageCode string
	Source       string
	// Timestamped is the segment-per-line rendering, set only for
	// transcribed audio that came back with segments.
	Timestamped string
}

// Outcome is a completed run.
type Outcome struct {
	Identifier   string
	Source       string
	Summary      string
	StoragePath  string
	LanguageCode string
	Transcript   string
	Timestamped  string
}

// NewPipeline creates a new processing pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	switch {
	case opts.Captions == nil:
		return nil, errors.New("pipeline: captions lookup not configured")
	case opts.Prober == nil:
		return nil, errors.New("pipeline: prober not configured")
	case opts.Downloader == nil:
		return nil, errors.New("pipeline: audio downloader not configured")
	case opts.Transcriber == nil:
		return nil, errors.New("pipeline: transcription not configured")
	case opts.Summarizer == nil:
		return nil, errors.New("pipeline: summarization not configured")
	case opts.Store == nil:
		return nil, errors.New("pipeline: storage not configured")
	}
	if opts.MaxDurationSeconds < 0 {
		return nil, fmt.Errorf("pipeline: invalid max duration %d", opts.MaxDurationSeconds)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		captions:    opts.Captions,
		prober:      opts.Prober,
		downloader:  opts.Downloader,
		transcriber: opts.Transcriber,
		summarizer:  opts.Summarizer,
		store:       opts.Store,
		maxDuration: opts.MaxDurationSeconds,
		scratchDir:  opts.ScratchDir,
		language:    opts.Language,
		logger:      logger,
	}, nil
}

// Summarize runs the whole flow for one video. Errors are always *Error.
func (p *Pipeline) Summarize(ctx context.Context, videoID string) (*Outcome, error) {
	id := strings.TrimSpace(videoID)
	if id == "" {
		return nil, badRequest("validate", i18n.T(p.language).Errors.MissingVideoID)
	}

	transcript, err := p.acquire(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := p.summarizer.Summarize(ctx, transcript.Text)
	if err != nil {
		return nil, p.fail("summarize", id, err)
	}

	path, err := p.store.Save(ctx, store.Record{
		Identifier:   id,
		Source:       transcript.Source,
		LanguageCode: transcript.LanguageCode,
		Summary:      summary.Text,
		FullText:     transcript.Text,
	})
	if err != nil {
		return nil, p.fail("persist", id, err)
	}

	p.logger.Info("summary stored",
		slog.String("id", id),
		slog.String("source", transcript.Source),
		slog.String("path", path))

	return &Outcome{
		Identifier:   id,
		Source:       transcript.Source,
		Summary:      summary.Text,
		StoragePath:  path,
		LanguageCode: transcript.LanguageCode,
		Transcript:   transcript.Text,
		Timestamped:  transcript.Timestamped,
	}, nil
}

// acquire prefers captions and falls back to transcribing the audio.
func (p *Pipeline) acquire(ctx context.Context, id string) (*Transcript, error) {
	lookup := p.captions.Lookup(ctx, id)
	if lookup.Status == captions.Found {
		return &Transcript{
			Text:         lookup.Text,
			LanguageCode: lookup.Track.LanguageCode,
			Source:       SourceCaptioned,
		}, nil
	}

	attrs := []any{slog.String("id", id), slog.String("captions", lookup.Status.String())}
	if lookup.Err != nil {
		attrs = append(attrs, slog.Any("error", lookup.Err))
	}
	p.logger.Info("falling back to audio transcription", attrs...)

	return p.transcribe(ctx, id)
}

func (p *Pipeline) transcribe(ctx context.Context, id string) (*Transcript, error) {
	meta, err := p.prober.Probe(ctx, id)
	if err != nil {
		// Unknown duration is not grounds for rejection
		p.logger.Warn("metadata probe failed", slog.String("id", id), slog.Any("error", err))
		meta = ytdlp.Metadata{}
	}

	if p.maxDuration > 0 && meta.Duration > p.maxDuration {
		p.logger.Info("rejected by duration limit",
			slog.String("id", id),
			slog.Int("duration", meta.Duration),
			slog.Int("limit", p.maxDuration),
			slog.String("lang", meta.Language))
		return nil, badRequest("duration", i18n.DurationExceeded(meta.Language, p.maxDuration))
	}

	dir, err := os.MkdirTemp(p.scratchDir, "narrify-")
	if err != nil {
		return nil, p.fail("scratch", id, err)
	}
	defer os.RemoveAll(dir)

	audioPath, err := p.downloader.Download(ctx, id, filepath.Join(dir, "audio"))
	if err != nil {
		return nil, p.fail("download", id, err)
	}

	result, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, p.fail("transcribe", id, err)
	}
	if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove scratch audio", slog.String("path", audioPath), slog.Any("error", err))
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return nil, p.fail("transcribe", id, errors.New("transcription returned no text"))
	}

	lang := meta.Language
	if lang == "" {
		lang = result.Language
	}
	out := &Transcript{Text: text, LanguageCode: lang, Source: SourceTranscribed}
	if len(result.Segments) > 0 {
		out.Timestamped = result.FormattedText()
	}
	return out, nil
}

func (p *Pipeline) fail(op, id string, err error) *Error {
	p.logger.Error("pipeline failed", slog.String("op", op), slog.String("id", id), slog.Any("error", err))
	return upstream(op, err)
}
