package locale

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"en-US", "en"},
		{"ru", "ru"},
		{"ru-RU", "ru"},
		{"de", "en"},
		{"", "en"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.code); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	t.Run("resolves per locale", func(t *testing.T) {
		en := Translate("en", KeyToday, nil)
		ru := Translate("ru", KeyToday, nil)
		if en != "today" || ru != "сегодня" {
			t.Errorf("got %q / %q", en, ru)
		}
	})

	t.Run("unknown locale falls back to english", func(t *testing.T) {
		if got := Translate("fr", KeyToday, nil); got != "today" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("unknown key returns the key", func(t *testing.T) {
		if got := Translate("en", "no_such_phrase", nil); got != "no_such_phrase" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("substitutes values", func(t *testing.T) {
		got := Translate("en", KeyStart, Values{"shop": "Acme VPN"})
		if !strings.Contains(got, "Acme VPN") {
			t.Errorf("got %q", got)
		}
	})
}

func TestTranslator(t *testing.T) {
	tr := Translator("ru-RU")
	if got := tr(KeyTomorrow, nil); got != "завтра" {
		t.Errorf("got %q", got)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name     string
		template string
		values   Values
		want     string
	}{
		{"simple", "hello {name}", Values{"name": "Alice"}, "hello Alice"},
		{"repeated", "{x} and {x}", Values{"x": "1"}, "1 and 1"},
		{"unknown marker intact", "hello {name}", Values{"other": "x"}, "hello {name}"},
		{"no values", "hello {name}", nil, "hello {name}"},
		{"unterminated", "hello {name", Values{"name": "x"}, "hello {name"},
		{"multiple keys", "{a}-{b}", Values{"a": "1", "b": "2"}, "1-2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.template, tc.values); got != tc.want {
				t.Errorf("Format(%q) = %q, want %q", tc.template, got, tc.want)
			}
		})
	}
}

// every key present in english must be present in every other locale
func TestPhraseParity(t *testing.T) {
	for lang, set := range phrases {
		if lang == "en" {
			continue
		}
		for key := range phrases["en"] {
			if _, ok := set[key]; !ok {
				t.Errorf("locale %s missing phrase %s", lang, key)
			}
		}
	}
}
