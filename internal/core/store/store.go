// Package store persists finished summaries. Records are written once and
// never rewritten or removed.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one persisted summary together with the transcript it came from.
type Record struct {
	Identifier   string    `json:"identifier"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	LanguageCode string    `json:"language_code,omitempty"`
	Summary      string    `json:"summary"`
	FullText     string    `json:"full_text"`
}

// Entry is the listing view of a Record.
type Entry struct {
	Name       string    `json:"name"`
	Identifier string    `json:"identifier"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Summary    string    `json:"summary"`
}

// Store saves records and lists them newest first.
type Store interface {
	// Save writes rec under a new unique name and returns its location.
	Save(ctx context.Context, rec Record) (string, error)

	// List returns every stored record, newest first.
	List(ctx context.Context) ([]Entry, error)
}

const (
	recordExt       = ".json"
	timestampLayout = "20060102_150405"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// recordName builds "<id>_<timestamp>_<suffix>.json". The random suffix keeps
// two saves within the same second from colliding.
func recordName(identifier string, ts time.Time) string {
	id := strings.Trim(unsafeNameChars.ReplaceAllString(identifier, "-"), "-")
	if id == "" {
		id = "video"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s%s", id, ts.UTC().Format(timestampLayout), suffix, recordExt)
}

func isRecordName(name string) bool {
	return strings.HasSuffix(name, recordExt) && !strings.HasPrefix(name, ".")
}

func stamp(rec Record) Record {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec
}

func encodeRecord(w io.Writer, rec Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}

func decodeEntry(name string, r io.Reader) (Entry, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return Entry{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return Entry{
		Name:       name,
		Identifier: rec.Identifier,
		Timestamp:  rec.Timestamp,
		Source:     rec.Source,
		Summary:    rec.Summary,
	}, nil
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].Name > entries[j].Name
	})
}
