package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Transcoder converts a downloaded audio stream into a file the
// transcription API accepts.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// Downloader fetches audio for a video into local scratch storage.
type Downloader struct {
	Path   string
	Runner Runner

	// Transcoder, when set, replaces yt-dlp's ffmpeg post-processing:
	// the best audio stream is downloaded as-is and transcoded to WAV.
	Transcoder Transcoder
}

// NewDownloader creates a downloader for the yt-dlp binary at path.
func NewDownloader(path string, transcoder Transcoder) *Downloader {
	return &Downloader{Path: pathOrDefault(path), Runner: ExecRunner{}, Transcoder: transcoder}
}

// Download writes audio for videoID next to stem (a path without extension)
// and returns the final file path.
func (d *Downloader) Download(ctx context.Context, videoID, stem string) (string, error) {
	if d.Transcoder != nil {
		return d.downloadAndTranscode(ctx, videoID, stem)
	}

	output := stem + ".mp3"
	if err := d.run(ctx, "download",
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"-o", stem+".%(ext)s",
		VideoURL(videoID),
	); err != nil {
		return "", err
	}

	if _, err := os.Stat(output); err != nil {
		return "", fmt.Errorf("yt-dlp finished but %s is missing: %w", output, err)
	}
	return output, nil
}

func (d *Downloader) downloadAndTranscode(ctx context.Context, videoID, stem string) (string, error) {
	srcStem := stem + ".src"
	if err := d.run(ctx, "download",
		"-f", "bestaudio",
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"-o", srcStem+".%(ext)s",
		VideoURL(videoID),
	); err != nil {
		return "", err
	}

	matches, err := filepath.Glob(srcStem + ".*")
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("yt-dlp finished but no audio was written for %s", videoID)
	}
	src := matches[0]
	defer os.Remove(src)

	output := stem + ".wav"
	if err := d.Transcoder.Transcode(ctx, src, output); err != nil {
		return "", fmt.Errorf("transcode audio: %w", err)
	}
	return output, nil
}

func (d *Downloader) run(ctx context.Context, op string, args ...string) error {
	runner := d.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	_, stderr, err := runner.Run(ctx, pathOrDefault(d.Path), args...)
	if err != nil {
		return commandError(op, err, stderr)
	}
	return nil
}
