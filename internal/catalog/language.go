package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Language is one of the supported catalog languages.
type Language struct {
	Code string // ISO 639-1, as stored in the catalog
	Name string
}

var languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "hi", Name: "Hindi"},
	{Code: "ta", Name: "Tamil"},
	{Code: "te", Name: "Telugu"},
	{Code: "kn", Name: "Kannada"},
	{Code: "ml", Name: "Malayalam"},
	{Code: "bn", Name: "Bengali"},
	{Code: "mr", Name: "Marathi"},
}

var (
	byCode      = map[string]Language{}
	byFoldedKey = map[string]Language{}
)

// foldKey case-folds a lookup key. Casers carry state, so each call builds
// its own.
func foldKey(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}

func init() {
	for _, lang := range languages {
		byCode[lang.Code] = lang
		byFoldedKey[foldKey(lang.Name)] = lang
		byFoldedKey[lang.Code] = lang
	}
}

// Languages lists the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ParseLanguage resolves a display name ("hindi", "Hindi") or code ("hi").
func ParseLanguage(value string) (Language, bool) {
	lang, ok := byFoldedKey[foldKey(value)]
	return lang, ok
}

// LanguageForCode returns the language stored under code.
func LanguageForCode(code string) (Language, bool) {
	lang, ok := byCode[strings.ToLower(strings.TrimSpace(code))]
	return lang, ok
}

// LanguageNames returns the display names, used in validation messages.
func LanguageNames() []string {
	names := make([]string, 0, len(languages))
	for _, lang := range languages {
		names = append(names, lang.Name)
	}
	return names
}

func (l Language) String() string {
	return l.Name
}
