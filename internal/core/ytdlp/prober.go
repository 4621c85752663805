package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Metadata is the subset of yt-dlp's info JSON the pipeline needs.
// Duration 0 means unknown, not zero-length.
type Metadata struct {
	Duration int    // seconds
	Language string // may be empty
}

// Prober reads video metadata without downloading media.
type Prober struct {
	Path   string
	Runner Runner
}

// NewProber creates a prober for the yt-dlp binary at path ("" for PATH lookup).
func NewProber(path string) *Prober {
	return &Prober{Path: pathOrDefault(path), Runner: ExecRunner{}}
}

// Probe returns the zero Metadata together with any error, so callers that
// ignore the error still see an unknown duration.
func (p *Prober) Probe(ctx context.Context, videoID string) (Metadata, error) {
	runner := p.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	stdout, stderr, err := runner.Run(ctx, pathOrDefault(p.Path),
		"-j",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		VideoURL(videoID),
	)
	if err != nil {
		return Metadata{}, commandError("probe", err, stderr)
	}
	return parseMetadata(stdout)
}

type infoJSON struct {
	Duration *float64 `json:"duration"`
	Language *string  `json:"language"`
}

// parseMetadata decodes the first JSON record; yt-dlp prints one per entry.
func parseMetadata(data []byte) (Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var info infoJSON
	if err := dec.Decode(&info); err != nil {
		return Metadata{}, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}

	var md Metadata
	if info.Duration != nil && *info.Duration > 0 {
		md.Duration = int(math.Floor(*info.Duration))
	}
	if info.Language != nil {
		md.Language = *info.Language
	}
	return md, nil
}
