package detector

import (
	"testing"

	lingua "github.com/pemistahl/lingua-go"
)

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantCode: "",
			wantOK:   false,
		},
		{
			name:     "blank text",
			text:     "   ",
			wantCode: "",
			wantOK:   false,
		},
		{
			name:     "polish text",
			text:     "Profesjonalny fotel fryzjerski z regulacją wysokości i obrotową podstawą.",
			wantCode: "PL",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Professioneller Friseurstuhl mit Höhenverstellung und drehbarem Fuß.",
			wantCode: "DE",
			wantOK:   true,
		},
		{
			name:     "english text",
			text:     "Professional barber chair with height adjustment and a swivel base.",
			wantCode: "EN",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Fauteuil de coiffure professionnel avec réglage de la hauteur et base pivotante.",
			wantCode: "FR",
			wantOK:   true,
		},
		{
			name:     "greek text",
			text:     "Επαγγελματική καρέκλα κομμωτηρίου με ρύθμιση ύψους και περιστρεφόμενη βάση.",
			wantCode: "EL",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestLanguageFromISO(t *testing.T) {
	tests := []struct {
		code   string
		want   lingua.Language
		wantOK bool
	}{
		{"de", lingua.German, true},
		{" SV ", lingua.Swedish, true},
		{"el", lingua.Greek, true},
		{"pl", lingua.Polish, true},
		{"xx", lingua.Unknown, false},
		{"", lingua.Unknown, false},
	}
	for _, tt := range tests {
		got, ok := LanguageFromISO(tt.code)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("LanguageFromISO(%q) = %v, %v; want %v, %v", tt.code, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDetector_ShortText(t *testing.T) {
	d := New()

	// short text may or may not be detected; it must not panic
	_, _ = d.DetectISO("Hi")
}
