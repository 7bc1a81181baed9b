package compute

import (
	"errors"
	"strings"
)

// DefaultLocale is used when the data context carries no `_locale` entry.
const DefaultLocale = "en-US"

// LocaleKey is the reserved data-store key holding the active locale.
const LocaleKey = "_locale"

// ErrMissingTranslation is returned by translators when a key has no entry
// for the requested locale.
var ErrMissingTranslation = errors.New("compute: missing translation")

// Translator resolves localization keys for an active locale. Implementations
// live outside the core; MapTranslator covers the common in-memory case built
// from a persisted form's localization table.
type Translator interface {
	Translate(locale, key string) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string) (string, error) {
	return fn(locale, key)
}

// MapTranslator serves translations from a locale → key → message table.
// Lookup falls back from a regional locale ("pt-BR") to its base language
// ("pt") before failing.
type MapTranslator map[string]map[string]string

// Translate resolves key for locale.
func (m MapTranslator) Translate(locale, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrMissingTranslation
	}
	for _, candidate := range localeChain(locale) {
		if messages, ok := m[candidate]; ok {
			if msg, ok := messages[key]; ok && strings.TrimSpace(msg) != "" {
				return msg, nil
			}
		}
	}
	return "", ErrMissingTranslation
}

func localeChain(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	chain := []string{locale}
	if idx := strings.IndexByte(locale, '-'); idx > 0 {
		chain = append(chain, locale[:idx])
	}
	if locale != DefaultLocale {
		chain = append(chain, DefaultLocale)
	}
	return chain
}
