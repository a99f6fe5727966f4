// Package validator checks that a translation is written in the expected
// target language.
package validator

import (
	"fmt"
	"strings"

	"github.com/marczakme/enzo-translator/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
const minValidationLength = 20

// Validator is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// NewWith creates a Validator sharing an existing detector.
func NewWith(det *detector.Detector) *Validator {
	return &Validator{det: det}
}

// IsValid returns true when translatedText appears to be written in targetLang.
//
// Short texts and texts whose language cannot be determined pass. When the
// detected language differs from targetLang the returned error names both
// codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(translatedText)
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", strings.ToUpper(targetLang), detected)
	}

	return true, nil
}

// Mismatch is IsValid as an advisory message: empty when the text passes.
func (v *Validator) Mismatch(translatedText, targetLang string) string {
	if _, err := v.IsValid(translatedText, targetLang); err != nil {
		return err.Error()
	}
	return ""
}
