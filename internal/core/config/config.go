package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/guiyumin/narrify/internal/core/crypto"
	"github.com/guiyumin/narrify/internal/core/i18n"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "narrify"

	// DefaultMaxDurationSeconds is the longest video the audio fallback accepts.
	DefaultMaxDurationSeconds = 600

	// PlainKeyPrefix marks an API key stored without encryption.
	PlainKeyPrefix = "plain:"
)

// Transcoder modes for the audio fallback.
const (
	TranscoderYtdlp = "ytdlp"
	TranscoderWasm  = "wasm"
)

// ConfigDir returns the standard config directory for narrify.
// Windows: %APPDATA%\narrify\
// macOS/Linux: ~/.config/narrify/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/narrify/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Language for CLI and server messages (e.g., "en", "es")
	Language string `yaml:"language,omitempty"`

	// Server configuration for `narrify serve`
	Server ServerConfig `yaml:"server,omitempty"`

	// Storage holds where summarized records are written
	Storage StorageConfig `yaml:"storage,omitempty"`

	// Fetch configures caption lookup and the audio fallback
	Fetch FetchConfig `yaml:"fetch,omitempty"`

	// AI configures transcription and summarization providers
	AI AIConfig `yaml:"ai,omitempty"`
}

// ServerConfig holds HTTP server settings for `narrify serve`
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8000)
	Port int `yaml:"port,omitempty"`

	// APIKey for authentication (optional, if set requests must include X-API-Key header)
	APIKey string `yaml:"api_key,omitempty"`

	// AllowedOrigins is the CORS allow-list. Empty disables CORS headers.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// StorageConfig selects the record store: WebDAV when its URL is set, then
// SQLite when a database path is set, otherwise one JSON file per record in Dir.
type StorageConfig struct {
	// Dir is the local directory for records (default: ./transcripts)
	Dir string `yaml:"dir,omitempty"`

	// SQLitePath is a SQLite database file holding all records
	SQLitePath string `yaml:"sqlite_path,omitempty"`

	WebDAV WebDAVConfig `yaml:"webdav,omitempty"`
}

// WebDAVConfig represents a WebDAV server used as the record store
type WebDAVConfig struct {
	// URL is the WebDAV server URL (e.g., "https://dav.example.com/remote.php/dav")
	URL string `yaml:"url,omitempty"`

	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// Dir is the collection records are written into (default: /transcripts)
	Dir string `yaml:"dir,omitempty"`
}

// FetchConfig configures the captions lookup and yt-dlp based fallback.
type FetchConfig struct {
	// YtdlpPath is the yt-dlp executable (default: "yt-dlp")
	YtdlpPath string `yaml:"ytdlp_path,omitempty"`

	// MaxDurationSeconds limits the audio fallback (default: 600)
	MaxDurationSeconds int `yaml:"max_duration_seconds,omitempty"`

	// ScratchDir holds temporary audio downloads (default: OS temp dir)
	ScratchDir string `yaml:"scratch_dir,omitempty"`

	// Transcoder is "ytdlp" (system ffmpeg via yt-dlp) or "wasm" (embedded ffmpeg)
	Transcoder string `yaml:"transcoder,omitempty"`
}

// AIConfig holds the provider and per-service settings.
type AIConfig struct {
	// Provider for summarization: "openai", "anthropic" or "qwen".
	// Transcription always goes through the OpenAI-compatible Whisper API.
	Provider string `yaml:"provider,omitempty"`

	Transcription AIServiceConfig `yaml:"transcription,omitempty"`
	Summarization AIServiceConfig `yaml:"summarization,omitempty"`
}

// AIServiceConfig holds the settings for one AI service.
type AIServiceConfig struct {
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey is either "plain:<key>" or a PIN-encrypted key
	APIKey string `yaml:"api_key,omitempty"`
}

// IsEncrypted reports whether the stored key needs a PIN.
func (s AIServiceConfig) IsEncrypted() bool {
	return s.APIKey != "" && !strings.HasPrefix(s.APIKey, PlainKeyPrefix)
}

// ResolveKey returns the usable API key. Encrypted keys are decrypted with pin;
// when nothing is stored the environment variable envName is used.
func (s AIServiceConfig) ResolveKey(pin, envName string) (string, error) {
	switch {
	case s.APIKey == "":
		if envName != "" {
			return os.Getenv(envName), nil
		}
		return "", nil
	case strings.HasPrefix(s.APIKey, PlainKeyPrefix):
		return strings.TrimPrefix(s.APIKey, PlainKeyPrefix), nil
	default:
		if pin == "" {
			return "", fmt.Errorf("API key is encrypted, a PIN is required")
		}
		key, err := crypto.Decrypt(s.APIKey, pin)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt API key: %w", err)
		}
		return key, nil
	}
}

// SetKey stores key, encrypting it when pin is non-empty.
func (s *AIServiceConfig) SetKey(key, pin string) error {
	if pin == "" {
		s.APIKey = PlainKeyPrefix + key
		return nil
	}
	encrypted, err := crypto.Encrypt(key, pin)
	if err != nil {
		return err
	}
	s.APIKey = encrypted
	return nil
}

// ProviderEnvKey returns the environment variable consulted for a provider's key.
func ProviderEnvKey(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "qwen":
		return "DASHSCOPE_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Language: "en",
		Server: ServerConfig{
			Port:           8000,
			AllowedOrigins: []string{"http://localhost", "http://127.0.0.1"},
		},
		Storage: StorageConfig{
			Dir: "transcripts",
		},
		Fetch: FetchConfig{
			YtdlpPath:          "yt-dlp",
			MaxDurationSeconds: DefaultMaxDurationSeconds,
			Transcoder:         TranscoderYtdlp,
		},
		AI: AIConfig{
			Provider: "openai",
		},
	}
}

// applyDefaults fills zero values left out of a config file.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.Server.Port <= 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = d.Storage.Dir
	}
	if c.Fetch.YtdlpPath == "" {
		c.Fetch.YtdlpPath = d.Fetch.YtdlpPath
	}
	if c.Fetch.MaxDurationSeconds <= 0 {
		c.Fetch.MaxDurationSeconds = d.Fetch.MaxDurationSeconds
	}
	if c.Fetch.Transcoder == "" {
		c.Fetch.Transcoder = d.Fetch.Transcoder
	}
	if c.AI.Provider == "" {
		c.AI.Provider = d.AI.Provider
	}
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/narrify/config.yml
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)
	cfg.Storage.SQLitePath = expandPath(cfg.Storage.SQLitePath)
	cfg.Fetch.ScratchDir = expandPath(cfg.Fetch.ScratchDir)

	if !i18n.IsSupported(cfg.Language) {
		return nil, fmt.Errorf("invalid language %q (want one of %s)", cfg.Language, strings.Join(i18n.SupportedCodes(), ", "))
	}

	switch cfg.Fetch.Transcoder {
	case TranscoderYtdlp, TranscoderWasm:
	default:
		return nil, fmt.Errorf("invalid fetch.transcoder %q (want %q or %q)", cfg.Fetch.Transcoder, TranscoderYtdlp, TranscoderWasm)
	}

	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes so config files stay portable.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/narrify/config.yml
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveFile(configPath, cfg)
}

// SaveFile writes the config to an explicit path.
func SaveFile(configPath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# narrify configuration file\n# Run 'narrify init' to regenerate with defaults\n\n"
	content := header + string(data)

	// The file may hold API keys
	return os.WriteFile(configPath, []byte(content), 0600)
}

// SavePath returns the path where config will be saved
func SavePath() string {
	if path, err := ConfigPath(); err == nil {
		return path
	}
	return ConfigFileName
}

// Init creates a new config.yml with default values
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}

// LoadOrDefault loads config if it exists, otherwise returns defaults
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	return cfg
}
