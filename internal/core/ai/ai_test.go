package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guiyumin/narrify/internal/core/ai/summarizer"
	"github.com/guiyumin/narrify/internal/core/ai/transcriber"
	"github.com/guiyumin/narrify/internal/core/captions"
	"github.com/guiyumin/narrify/internal/core/store"
	"github.com/guiyumin/narrify/internal/core/ytdlp"
)

type fakeCaptions struct {
	lookup captions.Lookup
	calls  int
}

func (f *fakeCaptions) Lookup(context.Context, string) captions.Lookup {
	f.calls++
	return f.lookup
}

type fakeProber struct {
	meta  ytdlp.Metadata
	err   error
	calls int
}

func (f *fakeProber) Probe(context.Context, string) (ytdlp.Metadata, error) {
	f.calls++
	return f.meta, f.err
}

type fakeDownloader struct {
	err   error
	path  string
	calls int
}

func (f *fakeDownloader) Download(_ context.Context, _ string, stem string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.path = stem + ".mp3"
	return f.path, os.WriteFile(f.path, []byte("ID3"), 0644)
}

type fakeTranscriber struct {
	result      *transcriber.Result
	err         error
	sawFile     bool
	transcribed string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (*transcriber.Result, error) {
	f.transcribed = path
	_, statErr := os.Stat(path)
	f.sawFile = statErr == nil
	return f.result, f.err
}

func (f *fakeTranscriber) Name() string { return "fake" }

type fakeSummarizer struct {
	text  string
	err   error
	input string
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (*summarizer.Result, error) {
	f.input = text
	if f.err != nil {
		return nil, f.err
	}
	return &summarizer.Result{Text: f.text}, nil
}

func (f *fakeSummarizer) Name() string { return "fake" }

type harness struct {
	captions    *fakeCaptions
	prober      *fakeProber
	downloader  *fakeDownloader
	transcriber *fakeTranscriber
	summarizer  *fakeSummarizer
	store       *store.FileStore
	scratch     string
	pipeline    *Pipeline
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "transcripts"))
	require.NoError(t, err)

	h := &harness{
		captions:    &fakeCaptions{lookup: captions.Lookup{Status: captions.Absent}},
		prober:      &fakeProber{},
		downloader:  &fakeDownloader{},
		transcriber: &fakeTranscriber{result: &transcriber.Result{Text: "transcribed words"}},
		summarizer:  &fakeSummarizer{text: "A short summary."},
		store:       fs,
		scratch:     t.TempDir(),
	}
	return h
}

func (h *harness) build(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(Options{
		Captions:           h.captions,
		Prober:             h.prober,
		Downloader:         h.downloader,
		Transcriber:        h.transcriber,
		Summarizer:         h.summarizer,
		Store:              h.store,
		MaxDurationSeconds: 600,
		ScratchDir:         h.scratch,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	h.pipeline = p
	return p
}

func (h *harness) records(t *testing.T) []store.Entry {
	t.Helper()
	entries, err := h.store.List(context.Background())
	require.NoError(t, err)
	return entries
}

func requireError(t *testing.T, err error, status int) *Error {
	t.Helper()
	require.Error(t, err)
	var pe *Error
	require.True(t, errors.As(err, &pe), "want *Error, got %T", err)
	assert.Equal(t, status, pe.Status)
	return pe
}

func TestSummarizeCaptioned(t *testing.T) {
	h := newHarness(t)
	h.captions.lookup = captions.Lookup{
		Status: captions.Found,
		Text:   "never gonna give you up",
		Track:  captions.Track{LanguageCode: "en"},
	}
	// A huge duration is irrelevant when captions exist
	h.prober.meta = ytdlp.Metadata{Duration: 99999}

	out, err := h.build(t).Summarize(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", out.Identifier)
	assert.Equal(t, SourceCaptioned, out.Source)
	assert.Equal(t, "A short summary.", out.Summary)
	assert.Equal(t, "en", out.LanguageCode)
	assert.FileExists(t, out.StoragePath)
	assert.Equal(t, "never gonna give you up", h.summarizer.input)

	assert.Zero(t, h.prober.calls)
	assert.Zero(t, h.downloader.calls)

	entries := h.records(t)
	require.Len(t, entries, 1)
	assert.Equal(t, SourceCaptioned, entries[0].Source)
	assert.Equal(t, "A short summary.", entries[0].Summary)
}

func TestSummarizeRejectsLongVideoInSpanish(t *testing.T) {
	h := newHarness(t)
	h.prober.meta = ytdlp.Metadata{Duration: 700, Language: "es"}

	_, err := h.build(t).Summarize(context.Background(), "xyz789")
	pe := requireError(t, err, http.StatusBadRequest)
	assert.Equal(t,
		"Este video dura más de 10 minutos y no tiene subtítulos. La transcripción de audio está limitada a videos de 10 minutos o menos.",
		pe.Message)

	assert.Zero(t, h.downloader.calls)
	assert.Empty(t, h.records(t))
}

func TestSummarizeRejectsLongVideoInEnglish(t *testing.T) {
	h := newHarness(t)
	h.prober.meta = ytdlp.Metadata{Duration: 601, Language: "de"}

	_, err := h.build(t).Summarize(context.Background(), "xyz789")
	pe := requireError(t, err, http.StatusBadRequest)
	assert.Equal(t,
		"This video is longer than 10 minutes and has no captions. Audio transcription is limited to videos of 10 minutes or less.",
		pe.Message)
}

func TestSummarizeTranscribed(t *testing.T) {
	h := newHarness(t)
	h.prober.meta = ytdlp.Metadata{Duration: 120, Language: "en"}

	out, err := h.build(t).Summarize(context.Background(), "  def456 ")
	require.NoError(t, err)

	assert.Equal(t, "def456", out.Identifier)
	assert.Equal(t, SourceTranscribed, out.Source)
	assert.Equal(t, "transcribed words", h.summarizer.input)
	assert.Equal(t, "en", out.LanguageCode)

	assert.True(t, h.transcriber.sawFile)
	assert.NoFileExists(t, h.downloader.path)
	assert.NoDirExists(t, filepath.Dir(h.downloader.path))

	entries := h.records(t)
	require.Len(t, entries, 1)
	assert.Equal(t, SourceTranscribed, entries[0].Source)
}

func TestSummarizeTranscribedKeepsTimestamps(t *testing.T) {
	h := newHarness(t)
	h.transcriber.result = &transcriber.Result{
		Text: "hello world",
		Segments: []transcriber.Segment{
			{Start: 0, Text: "hello"},
			{Start: 4 * time.Second, Text: "world"},
		},
	}

	out, err := h.build(t).Summarize(context.Background(), "def456")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out.Transcript)
	assert.Equal(t, "[00:00:00] hello\n[00:00:04] world\n", out.Timestamped)
}

func TestSummarizeCaptionedHasNoTimestamps(t *testing.T) {
	h := newHarness(t)
	h.captions.lookup = captions.Lookup{Status: captions.Found, Text: "caption text"}

	out, err := h.build(t).Summarize(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Empty(t, out.Timestamped)
}

func TestSummarizeDurationAtLimitIsAllowed(t *testing.T) {
	h := newHarness(t)
	h.prober.meta = ytdlp.Metadata{Duration: 600}

	out, err := h.build(t).Summarize(context.Background(), "def456")
	require.NoError(t, err)
	assert.Equal(t, SourceTranscribed, out.Source)
}

func TestSummarizeProbeFailureIsUnknownDuration(t *testing.T) {
	h := newHarness(t)
	h.prober.err = errors.New("yt-dlp metadata failed")
	h.transcriber.result = &transcriber.Result{Text: "hola", Language: "es"}

	out, err := h.build(t).Summarize(context.Background(), "def456")
	require.NoError(t, err)
	assert.Equal(t, SourceTranscribed, out.Source)
	assert.Equal(t, "es", out.LanguageCode)
}

func TestSummarizeTransportErrorFallsBack(t *testing.T) {
	h := newHarness(t)
	h.captions.lookup = captions.Lookup{Status: captions.TransportError, Err: errors.New("connection reset")}

	out, err := h.build(t).Summarize(context.Background(), "def456")
	require.NoError(t, err)
	assert.Equal(t, SourceTranscribed, out.Source)
	assert.Equal(t, 1, h.prober.calls)
}

func TestSummarizeMissingID(t *testing.T) {
	h := newHarness(t)

	for _, id := range []string{"", "   ", "\t\n"} {
		_, err := h.build(t).Summarize(context.Background(), id)
		pe := requireError(t, err, http.StatusBadRequest)
		assert.Equal(t, "Missing video_id", pe.Message)
	}
	assert.Zero(t, h.captions.calls)
}

func TestSummarizeUpstreamFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		msg   string
		op    string
	}{
		{
			name:  "download",
			setup: func(h *harness) { h.downloader.err = errors.New("ERROR: Video unavailable") },
			msg:   "ERROR: Video unavailable",
			op:    "download",
		},
		{
			name:  "transcribe",
			setup: func(h *harness) { h.transcriber.err = errors.New("error, status code: 401, message: bad key") },
			msg:   "error, status code: 401, message: bad key",
			op:    "transcribe",
		},
		{
			name:  "empty transcript",
			setup: func(h *harness) { h.transcriber.result = &transcriber.Result{Text: "  "} },
			msg:   "transcription returned no text",
			op:    "transcribe",
		},
		{
			name:  "summarize",
			setup: func(h *harness) { h.summarizer.err = errors.New("rate limited") },
			msg:   "rate limited",
			op:    "summarize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			_, err := h.build(t).Summarize(context.Background(), "def456")
			pe := requireError(t, err, http.StatusInternalServerError)
			assert.Equal(t, tt.msg, pe.Message)
			assert.Equal(t, tt.op, pe.Op)
			assert.Empty(t, h.records(t))

			// Scratch never outlives the request
			leftovers, err := os.ReadDir(h.scratch)
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestSummarizeTwiceStoresTwice(t *testing.T) {
	h := newHarness(t)
	h.captions.lookup = captions.Lookup{Status: captions.Found, Text: "words"}
	p := h.build(t)

	first, err := p.Summarize(context.Background(), "abc123")
	require.NoError(t, err)
	second, err := p.Summarize(context.Background(), "abc123")
	require.NoError(t, err)

	assert.NotEqual(t, first.StoragePath, second.StoragePath)
	assert.Len(t, h.records(t), 2)
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(Options{})
	assert.Error(t, err)

	h := newHarness(t)
	_, err = NewPipeline(Options{
		Captions:           h.captions,
		Prober:             h.prober,
		Downloader:         h.downloader,
		Transcriber:        h.transcriber,
		Summarizer:         h.summarizer,
		Store:              h.store,
		MaxDurationSeconds: -1,
	})
	assert.Error(t, err)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(badRequest("validate", "x")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))

	wrapped := upstream("download", errors.New("boom"))
	assert.Equal(t, "boom", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "boom")
}
