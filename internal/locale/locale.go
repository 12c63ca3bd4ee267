package locale

import (
	"strings"
)

// Values carries substitutions for {placeholder} markers in a phrase
type Values map[string]string

// TranslateFunc resolves a phrase key for a fixed locale
type TranslateFunc func(key string, values Values) string

const fallbackLocale = "en"

// Normalize reduces a Telegram language code to a supported locale,
// falling back to English for unknown codes
func Normalize(code string) string {
	if code == "" {
		return fallbackLocale
	}
	normalized := strings.ToLower(strings.SplitN(code, "-", 2)[0])
	if _, ok := phrases[normalized]; ok {
		return normalized
	}
	return fallbackLocale
}

// Translate resolves a phrase key for the given locale and applies
// template substitutions
func Translate(code, key string, values Values) string {
	lang := Normalize(code)
	phrase, ok := phrases[lang][key]
	if !ok {
		phrase, ok = phrases[fallbackLocale][key]
	}
	if !ok {
		phrase = key
	}
	return Format(phrase, values)
}

// Translator returns a TranslateFunc bound to the given locale
func Translator(code string) TranslateFunc {
	lang := Normalize(code)
	return func(key string, values Values) string {
		return Translate(lang, key, values)
	}
}

// Format replaces {name} markers with matching values; markers without a
// value are left intact
func Format(template string, values Values) string {
	if len(values) == 0 {
		return template
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			return b.String()
		}
		closing := strings.IndexByte(template[open:], '}')
		if closing < 0 {
			b.WriteString(template)
			return b.String()
		}
		closing += open
		key := strings.TrimSpace(template[open+1 : closing])
		if value, ok := values[key]; ok {
			b.WriteString(template[:open])
			b.WriteString(value)
		} else {
			b.WriteString(template[:closing+1])
		}
		template = template[closing+1:]
	}
}
