// Package captions looks up platform caption tracks for a video and flattens
// the preferred track into plain transcript text.
package captions

import (
	"context"
	"log/slog"
	"strings"
)

// Track is one caption track advertised for a video.
type Track struct {
	Name          string
	LanguageCode  string
	AutoGenerated bool
	BaseURL       string
}

// Segment is one timed line of a caption track.
type Segment struct {
	Text     string
	StartMs  int64
	Duration int64
}

// Source lists and fetches caption tracks from a captions service.
type Source interface {
	ListTracks(ctx context.Context, videoID string) ([]Track, error)
	FetchTrack(ctx context.Context, track Track) ([]Segment, error)
}

// Status is the outcome of a caption lookup.
type Status int

const (
	// Absent means the video has no usable captions.
	Absent Status = iota
	// Found means a track was selected and flattened into text.
	Found
	// TransportError means the captions service could not be queried or parsed.
	TransportError
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case TransportError:
		return "transport_error"
	default:
		return "absent"
	}
}

// Lookup is the result of Fetcher.Lookup. Text and Track are set only when
// Status is Found; Err only when Status is TransportError.
type Lookup struct {
	Status Status
	Text   string
	Track  Track
	Err    error
}

// Fetcher selects and flattens caption tracks.
type Fetcher struct {
	source Source
	logger *slog.Logger
}

// NewFetcher creates a Fetcher over source. A nil logger uses slog.Default().
func NewFetcher(source Source, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{source: source, logger: logger}
}

// Lookup never returns an error: failures are reported as TransportError so
// the caller can fall back while still telling an outage apart from "no captions".
func (f *Fetcher) Lookup(ctx context.Context, videoID string) Lookup {
	tracks, err := f.source.ListTracks(ctx, videoID)
	if err != nil {
		f.logger.Warn("captions: list tracks failed", slog.String("id", videoID), slog.Any("err", err))
		return Lookup{Status: TransportError, Err: err}
	}

	track, ok := SelectTrack(tracks)
	if !ok {
		f.logger.Info("captions: no tracks", slog.String("id", videoID))
		return Lookup{Status: Absent}
	}

	segments, err := f.source.FetchTrack(ctx, track)
	if err != nil {
		f.logger.Warn("captions: fetch track failed",
			slog.String("id", videoID),
			slog.String("lang", track.LanguageCode),
			slog.Any("err", err))
		return Lookup{Status: TransportError, Err: err}
	}

	text := JoinSegments(segments)
	if text == "" {
		f.logger.Info("captions: selected track is empty", slog.String("id", videoID), slog.String("lang", track.LanguageCode))
		return Lookup{Status: Absent}
	}

	f.logger.Info("captions: found",
		slog.String("id", videoID),
		slog.String("lang", track.LanguageCode),
		slog.Bool("auto", track.AutoGenerated),
		slog.Int("segments", len(segments)))
	return Lookup{Status: Found, Text: text, Track: track}
}

// SelectTrack returns the first human-authored track, or the first track
// when every track is auto-generated.
func SelectTrack(tracks []Track) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	for _, t := range tracks {
		if !t.AutoGenerated {
			return t, true
		}
	}
	return tracks[0], true
}

// JoinSegments concatenates segment texts in order with single spaces.
func JoinSegments(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}
