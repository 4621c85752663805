// Package output renders pipeline results for people rather than machines.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Document is one summarized video.
type Document struct {
	Identifier   string
	Source       string
	LanguageCode string
	Summary      string
	Transcript   string
	// Timestamped replaces Transcript in the output when set.
	Timestamped string
	StoragePath string
	Created     time.Time
}

// Markdown renders doc as a markdown document: metadata, summary, then the
// full transcript.
func Markdown(doc Document) string {
	var b strings.Builder

	// Header
	b.WriteString(fmt.Sprintf("# Summary: %s\n\n", doc.Identifier))

	// Metadata
	b.WriteString(fmt.Sprintf("**Source:** %s\n", doc.Source))
	if doc.LanguageCode != "" {
		b.WriteString(fmt.Sprintf("**Language:** %s\n", doc.LanguageCode))
	}
	if doc.StoragePath != "" {
		b.WriteString(fmt.Sprintf("**Record:** %s\n", doc.StoragePath))
	}
	created := doc.Created
	if created.IsZero() {
		created = time.Now()
	}
	b.WriteString(fmt.Sprintf("**Summarized:** %s\n", created.Format("2006-01-02 15:04:05")))
	b.WriteString("\n---\n\n")

	b.WriteString(strings.TrimSpace(doc.Summary))
	b.WriteString("\n")

	text := strings.TrimSpace(doc.Timestamped)
	if text == "" {
		text = strings.TrimSpace(doc.Transcript)
	}
	if text != "" {
		b.WriteString("\n## Transcript\n\n")
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String()
}

// WriteMarkdown writes doc to outputPath.
func WriteMarkdown(outputPath string, doc Document) error {
	return os.WriteFile(outputPath, []byte(Markdown(doc)), 0644)
}
