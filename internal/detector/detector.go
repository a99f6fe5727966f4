// Package detector identifies the language of translated text among Polish,
// English and the supported market languages.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Languages are the candidates considered by New: the source language, the
// usual leakage language and every market language.
var Languages = []lingua.Language{
	lingua.Polish,
	lingua.English,
	lingua.Romanian,
	lingua.Hungarian,
	lingua.Greek,
	lingua.German,
	lingua.Czech,
	lingua.Slovak,
	lingua.Dutch,
	lingua.Italian,
	lingua.French,
	lingua.Croatian,
	lingua.Lithuanian,
	lingua.Finnish,
	lingua.Swedish,
}

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	return NewFor(Languages...)
}

// NewFor builds a detector restricted to languages. Fewer languages load
// faster and confuse less.
func NewFor(languages ...lingua.Language) *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Detector{detector: detector}
}

// LanguageFromISO maps a two-letter code of one of Languages to its lingua
// language.
func LanguageFromISO(code string) (lingua.Language, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, lang := range Languages {
		if lang.IsoCode639_1().String() == code {
			return lang, true
		}
	}
	return lingua.Unknown, false
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the upper-case ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}
