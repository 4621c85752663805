package transcriber

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// whisperLanguages are the codes Whisper can detect.
var whisperLanguages = []string{
	"af", "am", "ar", "as", "az", "ba", "be", "bg", "bn", "bo", "br", "bs",
	"ca", "cs", "cy", "da", "de", "el", "en", "es", "et", "eu", "fa", "fi",
	"fo", "fr", "gl", "gu", "ha", "haw", "he", "hi", "hr", "ht", "hu", "hy",
	"id", "is", "it", "ja", "jw", "ka", "kk", "km", "kn", "ko", "la", "lb",
	"ln", "lo", "lt", "lv", "mg", "mi", "mk", "ml", "mn", "mr", "ms", "mt",
	"my", "ne", "nl", "nn", "no", "oc", "pa", "pl", "ps", "pt", "ro", "ru",
	"sa", "sd", "si", "sk", "sl", "sn", "so", "sq", "sr", "su", "sv", "sw",
	"ta", "te", "tg", "th", "tk", "tl", "tr", "tt", "uk", "ur", "uz", "vi",
	"yi", "yo", "yue", "zh",
}

// Whisper's own spellings that differ from the CLDR English names.
var whisperAliases = map[string]string{
	"castilian":     "es",
	"flemish":       "nl",
	"valencian":     "ca",
	"myanmar":       "my",
	"burmese":       "my",
	"javanese":      "jv",
	"bengali":       "bn",
	"nynorsk":       "nn",
	"moldavian":     "ro",
	"moldovan":      "ro",
	"letzeburgesch": "lb",
	"pushto":        "ps",
	"panjabi":       "pa",
	"sinhalese":     "si",
	"mandarin":      "zh",
	"cantonese":     "yue",
	"haitian":       "ht",
	"norwegian":     "no",
}

var (
	namesOnce   sync.Once
	codesByName map[string]string
)

func languageNames() map[string]string {
	namesOnce.Do(func() {
		namer := display.English.Languages()
		codesByName = make(map[string]string, len(whisperLanguages)+len(whisperAliases))
		for _, code := range whisperLanguages {
			tag, err := language.Parse(code)
			if err != nil {
				continue
			}
			if name := namer.Name(tag); name != "" {
				codesByName[strings.ToLower(name)] = code
			}
		}
		for name, code := range whisperAliases {
			codesByName[name] = code
		}
	})
	return codesByName
}

// LanguageCode converts the language Whisper reports ("spanish") to its
// ISO 639 code ("es"). Values that are already codes are normalized.
// Unknown languages give "".
func LanguageCode(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if code, ok := languageNames()[s]; ok {
		return code
	}
	if len(s) <= 3 {
		if tag, err := language.Parse(s); err == nil {
			base, _ := tag.Base()
			return base.String()
		}
	}
	return ""
}
