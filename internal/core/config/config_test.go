package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty path", input: "", expected: ""},
		{name: "Absolute path", input: "/absolute/path", expected: "/absolute/path"},
		{name: "Relative path", input: "relative/path", expected: "relative/path"},
		{name: "Home directory only", input: "~", expected: home},
		{name: "Home directory with forward slash", input: "~/transcripts", expected: filepath.Join(home, "transcripts")},
		{name: "Home directory with backslash (simulated)", input: `~\transcripts`, expected: filepath.Join(home, "transcripts")},
		{name: "Invalid tilde use (middle)", input: "/path/~/test", expected: "/path/~/test"},
		{name: "Invalid tilde use (no separator)", input: "~user", expected: "~user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandPath(tt.input))
		})
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: es\nserver:\n  api_key: secret\n"), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "es", cfg.Language)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, DefaultMaxDurationSeconds, cfg.Fetch.MaxDurationSeconds)
	assert.Equal(t, TranscoderYtdlp, cfg.Fetch.Transcoder)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "transcripts", cfg.Storage.Dir)
}

func TestLoadFileRejectsUnknownLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: fr\n"), 0600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, `invalid language "fr" (want one of en, es)`)
}

func TestLoadFileRejectsUnknownTranscoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  transcoder: sox\n"), 0600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "invalid fetch.transcoder")
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := DefaultConfig()
	cfg.Fetch.MaxDurationSeconds = 900
	cfg.Server.AllowedOrigins = []string{"https://narrify.cloud"}

	require.NoError(t, SaveFile(path, cfg))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 900, loaded.Fetch.MaxDurationSeconds)
	assert.Equal(t, []string{"https://narrify.cloud"}, loaded.Server.AllowedOrigins)
}

func TestResolveKey(t *testing.T) {
	t.Setenv("NARRIFY_TEST_KEY", "from-env")

	t.Run("plain", func(t *testing.T) {
		s := AIServiceConfig{APIKey: "plain:sk-123"}
		key, err := s.ResolveKey("", "NARRIFY_TEST_KEY")
		require.NoError(t, err)
		assert.Equal(t, "sk-123", key)
		assert.False(t, s.IsEncrypted())
	})

	t.Run("env fallback", func(t *testing.T) {
		key, err := AIServiceConfig{}.ResolveKey("", "NARRIFY_TEST_KEY")
		require.NoError(t, err)
		assert.Equal(t, "from-env", key)
	})

	t.Run("encrypted", func(t *testing.T) {
		var s AIServiceConfig
		require.NoError(t, s.SetKey("sk-secret", "1234"))
		assert.True(t, s.IsEncrypted())

		_, err := s.ResolveKey("", "")
		assert.Error(t, err)

		key, err := s.ResolveKey("1234", "")
		require.NoError(t, err)
		assert.Equal(t, "sk-secret", key)

		_, err = s.ResolveKey("9999", "")
		assert.Error(t, err)
	})
}
