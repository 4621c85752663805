package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var localesFS embed.FS

// Translations holds all translation strings organized by section
type Translations struct {
	Errors ErrorTranslations  `yaml:"errors"`
	Server ServerTranslations `yaml:"server"`
	CLI    CLITranslations    `yaml:"cli"`
}

type ErrorTranslations struct {
	MissingVideoID string `yaml:"missing_video_id"`
	// DurationExceeded takes the limit in minutes twice
	DurationExceeded string `yaml:"duration_exceeded"`
}

type ServerTranslations struct {
	NoConfigWarning string `yaml:"no_config_warning"`
	RunInitHint     string `yaml:"run_init_hint"`
}

type CLITranslations struct {
	Summarizing string `yaml:"summarizing"`
	SavedTo     string `yaml:"saved_to"`
	NoRecords   string `yaml:"no_records"`
}

var (
	translationsCache = make(map[string]*Translations)
	cacheMutex        sync.RWMutex
	defaultLang       = "en"
)

// SupportedLanguages returns all available language codes
var SupportedLanguages = []struct {
	Code string
	Name string
}{
	{"en", "English"},
	{"es", "Español"},
}

// IsSupported reports whether code has a bundled locale.
func IsSupported(code string) bool {
	for _, lang := range SupportedLanguages {
		if lang.Code == code {
			return true
		}
	}
	return false
}

// SupportedCodes returns the bundled locale codes.
func SupportedCodes() []string {
	codes := make([]string, 0, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		codes = append(codes, lang.Code)
	}
	return codes
}

// GetTranslations returns translations for the specified language
func GetTranslations(lang string) *Translations {
	cacheMutex.RLock()
	if t, ok := translationsCache[lang]; ok {
		cacheMutex.RUnlock()
		return t
	}
	cacheMutex.RUnlock()

	t, err := loadTranslations(lang)
	if err != nil {
		if lang != defaultLang {
			return GetTranslations(defaultLang)
		}
		return &Translations{}
	}

	cacheMutex.Lock()
	translationsCache[lang] = t
	cacheMutex.Unlock()

	return t
}

func loadTranslations(lang string) (*Translations, error) {
	data, err := localesFS.ReadFile(fmt.Sprintf("locales/%s.yml", lang))
	if err != nil {
		return nil, err
	}

	var t Translations
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// T is a convenience function for getting translations
func T(lang string) *Translations {
	return GetTranslations(lang)
}

// ForContentLanguage maps a media language code ("es", "es-419", "en-US")
// to a message language. Only Spanish is localized; everything else is English.
func ForContentLanguage(code string) string {
	if strings.HasPrefix(strings.ToLower(code), "es") {
		return "es"
	}
	return defaultLang
}

// DurationExceeded renders the fallback duration rejection for a media language.
func DurationExceeded(contentLang string, limitSeconds int) string {
	minutes := limitSeconds / 60
	msg := T(ForContentLanguage(contentLang)).Errors.DurationExceeded
	return fmt.Sprintf(msg, minutes, minutes)
}
