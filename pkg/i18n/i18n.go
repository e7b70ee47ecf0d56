// Package i18n translates user-facing API messages.
//
// The language comes from the member's stored preference when logged in,
// then from Accept-Language, then DefaultLanguage.
//
//	localizer := i18n.NewLocalizer("tr")
//	msg := localizer.TWithParams("search.queryTooLong", map[string]string{"max": "90"})
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"
)

var SupportedLanguages = []string{"en", "tr"}

const DefaultLanguage = "en"

// translations is map[lang]map[flat key]text. Written once by Load, then
// only read.
var (
	translations map[string]map[string]string
	loadOnce     sync.Once
	loadErr      error
)

// Load reads <lang>.json for every supported language from localesFS.
// Only the first call does any work.
func Load(localesFS fs.FS) error {
	loadOnce.Do(func() {
		loaded := make(map[string]map[string]string)

		for _, lang := range SupportedLanguages {
			fileName := lang + ".json"

			data, err := fs.ReadFile(localesFS, fileName)
			if err != nil {
				loadErr = fmt.Errorf("failed to read translation file %s: %w", fileName, err)
				return
			}

			var nested map[string]any
			if err := json.Unmarshal(data, &nested); err != nil {
				loadErr = fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
				return
			}

			flat := make(map[string]string)
			flattenMap("", nested, flat)
			loaded[lang] = flat

			log.Printf("[i18n] loaded %d keys for language: %s", len(flat), lang)
		}

		translations = loaded
	})

	return loadErr
}

// Localizer translates into one language.
type Localizer struct {
	lang string
}

// NewLocalizer falls back to DefaultLanguage for unsupported codes.
func NewLocalizer(lang string) *Localizer {
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{lang: lang}
}

// FromRequest picks the language from the request's Accept-Language.
func FromRequest(r *http.Request) *Localizer {
	return NewLocalizer(DetectLanguage(r.Header.Get("Accept-Language")))
}

func (l *Localizer) Lang() string { return l.lang }

// T returns the text for key in the localizer's language, then in English,
// then the key itself.
func (l *Localizer) T(key string) string {
	if msg, ok := translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams replaces {{name}} placeholders in the translation.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage returns the first supported language in an
// Accept-Language header such as "tr-TR,tr;q=0.9,en;q=0.7".
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLanguage
	}

	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(part, ";")
		lang, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
		lang = strings.ToLower(lang)

		if isSupported(lang) {
			return lang
		}
	}

	return DefaultLanguage
}

func isSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// flattenMap turns {"auth": {"login": "x"}} into {"auth.login": "x"}.
func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
