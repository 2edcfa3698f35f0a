package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a game language identifier in the upstream file naming scheme,
// e.g. "en_us", "zh_cn", "lzh".
type Locale string

func (l Locale) String() string { return string(l) }

// FileName returns the language file name for the locale.
func (l Locale) FileName() string { return string(l) + ".json" }

// Tag returns the BCP 47 tag corresponding to the locale.
func (l Locale) Tag() (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(string(l), "_", "-"))
}

// SourceLocale is shipped inside the client archive rather than as a
// separate asset.
const SourceLocale Locale = "en_us"

// BaseLocales is the default locale list.
var BaseLocales = []Locale{
	"en_us", "zh_cn", "zh_hk", "zh_tw", "lzh", "ja_jp", "ko_kr", "vi_vn",
}

// ExtendedLocales are appended to BaseLocales when the extended set is enabled.
var ExtendedLocales = []Locale{
	"de_de", "es_es", "fr_fr", "it_it", "nl_nl", "pt_br", "ru_ru", "th_th", "uk_ua",
}

// DefaultLocales returns the configured default list, optionally extended.
func DefaultLocales(extended bool) []Locale {
	out := make([]Locale, 0, len(BaseLocales)+len(ExtendedLocales))
	out = append(out, BaseLocales...)
	if extended {
		out = append(out, ExtendedLocales...)
	}
	return out
}

// ParseLocale normalizes s (trim, lowercase, '-' → '_') and checks that it is
// a well-formed language tag. Identifiers that could escape a directory, such
// as "../x", are rejected.
func ParseLocale(s string) (Locale, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	if norm == "" {
		return "", fmt.Errorf("locale: empty identifier: %w", ErrValidation)
	}
	for _, r := range norm {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return "", fmt.Errorf("locale %q: invalid character %q: %w", s, r, ErrValidation)
		}
	}
	l := Locale(norm)
	if _, err := l.Tag(); err != nil {
		return "", fmt.Errorf("locale %q: %v: %w", s, err, ErrValidation)
	}
	return l, nil
}

// ParseLocaleList parses a comma-separated list, dropping empty items and
// duplicates while keeping first-seen order.
func ParseLocaleList(raw string) ([]Locale, error) {
	var out []Locale
	seen := make(map[Locale]bool)
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l, err := ParseLocale(part)
		if err != nil {
			return nil, err
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out, nil
}
