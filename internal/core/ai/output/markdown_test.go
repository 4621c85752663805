package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	doc := Document{
		Identifier:   "abc123",
		Source:       "captioned",
		LanguageCode: "en",
		Summary:      "  ## Main argument\nKeep it short.\n",
		Transcript:   "hello there",
		Created:      time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
	}

	md := Markdown(doc)
	assert.True(t, strings.HasPrefix(md, "# Summary: abc123\n"))
	assert.Contains(t, md, "**Source:** captioned\n")
	assert.Contains(t, md, "**Language:** en\n")
	assert.Contains(t, md, "**Summarized:** 2024-02-03 04:05:06\n")
	assert.Contains(t, md, "## Main argument\nKeep it short.\n")
	assert.Contains(t, md, "## Transcript\n\nhello there\n")
	assert.NotContains(t, md, "**Record:**")
}

func TestMarkdownPrefersTimestampedTranscript(t *testing.T) {
	md := Markdown(Document{
		Identifier:  "def456",
		Source:      "transcribed",
		Summary:     "s",
		Transcript:  "hello world",
		Timestamped: "[00:00:00] hello\n[00:00:04] world\n",
	})
	assert.Contains(t, md, "## Transcript\n\n[00:00:00] hello\n[00:00:04] world\n")
	assert.NotContains(t, md, "hello world")
}

func TestMarkdownWithoutTranscript(t *testing.T) {
	md := Markdown(Document{Identifier: "x", Source: "transcribed", Summary: "s"})
	assert.NotContains(t, md, "## Transcript")
	assert.NotContains(t, md, "**Language:**")
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	require.NoError(t, WriteMarkdown(path, Document{Identifier: "x", Source: "captioned", Summary: "s"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Summary: x")
}
