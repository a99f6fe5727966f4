// Package placeholder shields markup inside product descriptions (HTML
// tags, entities, URLs, code spans) from translation by swapping it for
// numbered [PHn] markers that the model is told to keep.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reFencedCode = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`[^`\n]+`")
	reURL        = regexp.MustCompile(`https?://[^\s<>"]+`)
	reHTMLTag    = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	reHTMLEntity = regexp.MustCompile(`&(?:[a-zA-Z]+|#\d+|#x[0-9a-fA-F]+);`)

	rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)
)

// patterns run in order: longest constructs first, so a URL inside a tag
// attribute is captured with its tag.
var patterns = []*regexp.Regexp{reFencedCode, reInlineCode, reHTMLTag, reURL, reHTMLEntity}

// Protected is a text with its markup replaced by markers.
type Protected struct {
	Text    string
	Markers []string
}

// Protect replaces markup with [PH0], [PH1], … in order of discovery.
func Protect(text string) Protected {
	var markers []string
	replace := func(match string) string {
		id := "[PH" + strconv.Itoa(len(markers)) + "]"
		markers = append(markers, match)
		return id
	}

	for _, re := range patterns {
		text = re.ReplaceAllStringFunc(text, replace)
	}
	return Protected{Text: text, Markers: markers}
}

// Empty reports whether nothing was replaced.
func (p Protected) Empty() bool {
	return len(p.Markers) == 0
}

// Restore puts the captured markup back into translated. Unknown indices
// are left as they are.
func (p Protected) Restore(translated string) string {
	if p.Empty() {
		return translated
	}
	return rePlaceholder.ReplaceAllStringFunc(translated, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx >= len(p.Markers) {
			return match
		}
		return p.Markers[idx]
	})
}

// Missing lists the marker indices absent from translated.
func (p Protected) Missing(translated string) []int {
	var missing []int
	for i := range p.Markers {
		if !strings.Contains(translated, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// InstructionHint is the prompt rule that keeps markers intact.
func InstructionHint() string {
	return "Keep every [PHn] marker exactly as written: do not translate, move or remove it."
}
