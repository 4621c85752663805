// Package ytdlp wraps the yt-dlp binary for metadata probing and audio downloads.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const defaultPath = "yt-dlp"

// ErrNotInstalled is returned when the yt-dlp executable cannot be found.
var ErrNotInstalled = errors.New("yt-dlp not found in PATH")

// Runner executes a command and returns its captured output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		err = ErrNotInstalled
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// VideoURL turns a bare video ID into a watch URL; full URLs pass through.
func VideoURL(videoID string) string {
	if strings.HasPrefix(videoID, "http://") || strings.HasPrefix(videoID, "https://") {
		return videoID
	}
	return "https://www.youtube.com/watch?v=" + videoID
}

// commandError keeps yt-dlp's stderr next to the exit status, trimmed to the last lines.
func commandError(op string, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if lines := strings.Split(msg, "\n"); len(lines) > 5 {
		msg = strings.Join(lines[len(lines)-5:], "\n")
	}
	if msg == "" {
		return fmt.Errorf("yt-dlp %s failed: %w", op, err)
	}
	return fmt.Errorf("yt-dlp %s failed: %w: %s", op, err, msg)
}

func pathOrDefault(p string) string {
	if p == "" {
		return defaultPath
	}
	return p
}
