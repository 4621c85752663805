package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON document per record in a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory not set")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes rec to a new file and returns its path.
func (s *FileStore) Save(_ context.Context, rec Record) (string, error) {
	rec = stamp(rec)
	path := filepath.Join(s.dir, recordName(rec.Identifier, rec.Timestamp))

	// O_EXCL: never replace an existing record
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create record: %w", err)
	}
	if err := encodeRecord(f, rec); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	return path, nil
}

// List reads every record in the directory, newest first. Files that fail to
// parse are skipped.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() || !isRecordName(de.Name()) {
			continue
		}
		entry, err := s.readEntry(de.Name())
		if err != nil {
			slog.Warn("skipping unreadable record", slog.String("name", de.Name()), slog.Any("error", err))
			continue
		}
		entries = append(entries, entry)
	}

	sortNewestFirst(entries)
	return entries, nil
}

func (s *FileStore) readEntry(name string) (Entry, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()
	return decodeEntry(name, f)
}
