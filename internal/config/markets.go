package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguages are the target markets, in display order.
var DefaultLanguages = []string{"ro", "hu", "el", "de", "cs", "sk", "nl", "it", "fr", "hr", "lt", "fi", "sv"}

// marketOverrides holds markets whose country code differs from the
// language code.
var marketOverrides = map[string]string{
	"el": "GR",
	"cs": "CZ",
	"sv": "SE",
}

// MarketCode is the country code shown next to a language.
func MarketCode(languageCode string) string {
	code := strings.ToLower(strings.TrimSpace(languageCode))
	if m, ok := marketOverrides[code]; ok {
		return m
	}
	return strings.ToUpper(code)
}

// Name is the English name of a language, or the code itself when it is
// not a known language.
func Name(languageCode string) string {
	tag, err := language.Parse(strings.TrimSpace(languageCode))
	if err != nil {
		return languageCode
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return languageCode
}

// Label is the target-language label used in prompts, e.g. "Greek (GR)".
func Label(languageCode string) string {
	return fmt.Sprintf("%s (%s)", Name(languageCode), MarketCode(languageCode))
}
