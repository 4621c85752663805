package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/guiyumin/narrify/internal/core/ai"
	"github.com/guiyumin/narrify/internal/core/ai/summarizer"
	"github.com/guiyumin/narrify/internal/core/ai/transcriber"
	"github.com/guiyumin/narrify/internal/core/captions"
	"github.com/guiyumin/narrify/internal/core/config"
	"github.com/guiyumin/narrify/internal/core/i18n"
	"github.com/guiyumin/narrify/internal/core/store"
	"github.com/guiyumin/narrify/internal/core/ytdlp"
)

// loadConfig reads --config when given, otherwise the default location,
// falling back to defaults when no file exists.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	if !config.Exists() {
		cfg := config.DefaultConfig()
		t := i18n.T(cfg.Language)
		slog.Warn(t.Server.NoConfigWarning, slog.String("hint", t.Server.RunInitHint))
		return cfg, nil
	}
	return config.Load()
}

// newStore picks WebDAV when a server URL is configured, then SQLite, then
// the local directory.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	dav := cfg.Storage.WebDAV
	switch {
	case dav.URL != "":
		return store.NewWebDAVStore(ctx, store.WebDAVOptions{
			URL:      dav.URL,
			Username: dav.Username,
			Password: dav.Password,
			Dir:      orDefault(dav.Dir, "/transcripts"),
		})
	case cfg.Storage.SQLitePath != "":
		return store.OpenSQLite(ctx, cfg.Storage.SQLitePath)
	default:
		return store.NewFileStore(cfg.Storage.Dir)
	}
}

// closeStore releases stores that hold resources, such as a database handle.
func closeStore(st store.Store) {
	if c, ok := st.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close store", slog.Any("error", err))
		}
	}
}

// transcriptionEnvKey is the fallback variable for the speech key. Without a
// base URL the transcriber talks to OpenAI, so qwen only reads its own
// variable when transcription points at a DashScope endpoint.
func transcriptionEnvKey(provider string, svc config.AIServiceConfig) string {
	if provider == "qwen" && svc.BaseURL != "" {
		return config.ProviderEnvKey(provider)
	}
	return config.ProviderEnvKey("openai")
}

// newPipeline wires the production collaborators from cfg.
func newPipeline(cfg *config.Config, st store.Store, logger *slog.Logger) (*ai.Pipeline, error) {
	pin := resolvePIN()

	transcriptionKey, err := cfg.AI.Transcription.ResolveKey(pin, transcriptionEnvKey(cfg.AI.Provider, cfg.AI.Transcription))
	if err != nil {
		return nil, fmt.Errorf("transcription key: %w", err)
	}
	tr, err := transcriber.New(cfg.AI.Provider, cfg.AI.Transcription, transcriptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	summarizationKey, err := cfg.AI.Summarization.ResolveKey(pin, config.ProviderEnvKey(cfg.AI.Provider))
	if err != nil {
		return nil, fmt.Errorf("summarization key: %w", err)
	}
	sm, err := summarizer.New(cfg.AI.Provider, cfg.AI.Summarization, summarizationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}

	var transcoder ytdlp.Transcoder
	if cfg.Fetch.Transcoder == config.TranscoderWasm {
		transcoder = ytdlp.WasmTranscoder{}
	}

	scratch := cfg.Fetch.ScratchDir
	if scratch != "" {
		if err := os.MkdirAll(scratch, 0755); err != nil {
			return nil, fmt.Errorf("failed to create scratch directory: %w", err)
		}
	}

	return ai.NewPipeline(ai.Options{
		Captions:           captions.NewFetcher(captions.NewYouTube(&http.Client{Timeout: 30 * time.Second}), logger),
		Prober:             ytdlp.NewProber(cfg.Fetch.YtdlpPath),
		Downloader:         ytdlp.NewDownloader(cfg.Fetch.YtdlpPath, transcoder),
		Transcriber:        tr,
		Summarizer:         sm,
		Store:              st,
		MaxDurationSeconds: cfg.Fetch.MaxDurationSeconds,
		ScratchDir:         scratch,
		Language:           cfg.Language,
		Logger:             logger,
	})
}
