package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/emersion/go-webdav"
)

// WebDAVStore keeps records on a WebDAV server.
type WebDAVStore struct {
	client *webdav.Client
	dir    string
}

// WebDAVOptions configures NewWebDAVStore.
type WebDAVOptions struct {
	// URL accepts http(s)://, webdav:// (https) and webdav+http:// forms.
	// Credentials embedded in the URL are used when Username is empty.
	URL      string
	Username string
	Password string
	// Dir is the remote directory records are written to.
	Dir string
}

// NewWebDAVStore connects to the server and makes sure Dir exists.
func NewWebDAVStore(ctx context.Context, opts WebDAVOptions) (*WebDAVStore, error) {
	endpoint, username, password, err := normalizeWebDAVURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.Username != "" {
		username, password = opts.Username, opts.Password
	}

	var httpClient webdav.HTTPClient
	if username != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(nil, username, password)
	}

	client, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebDAV client: %w", err)
	}

	s := &WebDAVStore{client: client, dir: cleanRemoteDir(opts.Dir)}
	if err := s.ensureDir(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// normalizeWebDAVURL strips credentials and maps webdav:// schemes to HTTP.
func normalizeWebDAVURL(rawURL string) (endpoint, username, password string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid WebDAV URL: %w", err)
	}

	switch parsed.Scheme {
	case "webdav", "https":
		parsed.Scheme = "https"
	case "webdav+http", "http":
		parsed.Scheme = "http"
	default:
		return "", "", "", fmt.Errorf("invalid WebDAV URL scheme: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", "", "", fmt.Errorf("invalid WebDAV URL: missing host")
	}

	if parsed.User != nil {
		username = parsed.User.Username()
		password, _ = parsed.User.Password()
		parsed.User = nil
	}
	return parsed.String(), username, password, nil
}

func cleanRemoteDir(dir string) string {
	dir = path.Clean("/" + strings.TrimSpace(dir))
	if dir == "/" || dir == "." {
		return "/"
	}
	return dir
}

// ensureDir creates each missing segment of the remote directory.
func (s *WebDAVStore) ensureDir(ctx context.Context) error {
	if s.dir == "/" {
		return nil
	}
	current := ""
	for _, part := range strings.Split(strings.TrimPrefix(s.dir, "/"), "/") {
		current += "/" + part
		if info, err := s.client.Stat(ctx, current); err == nil {
			if !info.IsDir {
				return fmt.Errorf("%s exists and is not a directory", current)
			}
			continue
		}
		if err := s.client.Mkdir(ctx, current); err != nil {
			return fmt.Errorf("failed to create %s: %w", current, err)
		}
	}
	return nil
}

// Save uploads rec as a new file and returns its remote path.
func (s *WebDAVStore) Save(ctx context.Context, rec Record) (string, error) {
	rec = stamp(rec)
	remote := path.Join(s.dir, recordName(rec.Identifier, rec.Timestamp))

	// PUT replaces silently, so refuse names that already exist
	if _, err := s.client.Stat(ctx, remote); err == nil {
		return "", fmt.Errorf("record %s already exists", remote)
	}

	w, err := s.client.Create(ctx, remote)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", remote, err)
	}
	if err := encodeRecord(w, rec); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", remote, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", remote, err)
	}
	return remote, nil
}

// List downloads every record in the remote directory, newest first.
func (s *WebDAVStore) List(ctx context.Context) ([]Entry, error) {
	infos, err := s.client.ReadDir(ctx, s.dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		// Hrefs may carry the endpoint prefix, so rebuild the path from the name
		name := path.Base(strings.TrimSuffix(info.Path, "/"))
		if info.IsDir || !isRecordName(name) {
			continue
		}
		entry, err := s.readEntry(ctx, path.Join(s.dir, name), name)
		if err != nil {
			slog.Warn("skipping unreadable record", slog.String("name", name), slog.Any("error", err))
			continue
		}
		entries = append(entries, entry)
	}

	sortNewestFirst(entries)
	return entries, nil
}

func (s *WebDAVStore) readEntry(ctx context.Context, remote, name string) (Entry, error) {
	r, err := s.client.Open(ctx, remote)
	if err != nil {
		return Entry{}, err
	}
	defer r.Close()
	return decodeEntry(name, r)
}
