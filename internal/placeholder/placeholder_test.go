package placeholder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marczakme/enzo-translator/internal/placeholder"
)

func TestProtect_NoMarkup(t *testing.T) {
	p := placeholder.Protect("Fotel fryzjerski, 60 cm")
	assert.True(t, p.Empty())
	assert.Equal(t, "Fotel fryzjerski, 60 cm", p.Text)
}

func TestProtect_Markup(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantText    string
		wantMarkers []string
	}{
		{
			name:        "html tags",
			text:        "<p>Fotel <b>Enzo</b></p>",
			wantText:    "[PH0]Fotel [PH1]Enzo[PH2][PH3]",
			wantMarkers: []string{"<p>", "<b>", "</b>", "</p>"},
		},
		{
			name:        "entity and url",
			text:        "Wymiary&nbsp;60 cm, więcej: https://enzo.example/fotel",
			wantText:    "Wymiary[PH1]60 cm, więcej: [PH0]",
			wantMarkers: []string{"https://enzo.example/fotel", "&nbsp;"},
		},
		{
			name:        "url inside tag stays with the tag",
			text:        `<a href="https://enzo.example">sklep</a>`,
			wantText:    "[PH0]sklep[PH1]",
			wantMarkers: []string{`<a href="https://enzo.example">`, "</a>"},
		},
		{
			name:        "code span",
			text:        "Kod `EN-4411` produktu",
			wantText:    "Kod [PH0] produktu",
			wantMarkers: []string{"`EN-4411`"},
		},
		{
			name:        "comparison is not a tag",
			text:        "waga < 5 kg",
			wantText:    "waga < 5 kg",
			wantMarkers: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := placeholder.Protect(tt.text)
			assert.Equal(t, tt.wantText, p.Text)
			assert.Equal(t, tt.wantMarkers, p.Markers)
		})
	}
}

func TestRestore(t *testing.T) {
	p := placeholder.Protect("<p>Fotel <b>Enzo</b></p>")
	translated := "[PH0]Stuhl [PH1]Enzo[PH2][PH3]"
	assert.Equal(t, "<p>Stuhl <b>Enzo</b></p>", p.Restore(translated))
}

func TestRestore_UnknownIndexKept(t *testing.T) {
	p := placeholder.Protect("<br>")
	assert.Equal(t, "<br> [PH7]", p.Restore("[PH0] [PH7]"))
}

func TestMissing(t *testing.T) {
	p := placeholder.Protect("<p>a</p><br>")
	assert.Equal(t, []int{1}, p.Missing("[PH0]a[PH2]"))
	assert.Empty(t, p.Missing("[PH0]a[PH1][PH2]"))
}

func TestInstructionHint(t *testing.T) {
	assert.Contains(t, placeholder.InstructionHint(), "[PHn]")
}
