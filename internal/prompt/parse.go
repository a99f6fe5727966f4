package prompt

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nameMarkerRe = regexp.MustCompile(`(?im)^[ \t]*NAME:[ \t]*`)
	bodyMarkerRe = regexp.MustCompile(`(?im)^[ \t]*BODY:[ \t]*`)
	verdictRe    = regexp.MustCompile(`(?i)VERDICT:\s*(OK|FIX)`)
	confidenceRe = regexp.MustCompile(`(?i)CONFIDENCE:\s*(\d{1,3})`)
)

// ParseTranslation splits a translate-pass answer into title and body using
// the NAME:/BODY: markers. When neither marker is present the whole text is
// the body and the title is empty.
func ParseTranslation(text string) (title string, body string) {
	nameLoc := nameMarkerRe.FindStringIndex(text)
	bodyLoc := bodyMarkerRe.FindStringIndex(text)

	switch {
	case nameLoc == nil && bodyLoc == nil:
		return "", strings.TrimSpace(text)
	case bodyLoc == nil:
		return splitFirstLine(text[nameLoc[1]:])
	case nameLoc == nil:
		return "", strings.TrimSpace(text[bodyLoc[1]:])
	case nameLoc[0] < bodyLoc[0]:
		return strings.TrimSpace(text[nameLoc[1]:bodyLoc[0]]), strings.TrimSpace(text[bodyLoc[1]:])
	default:
		title, _ = splitFirstLine(text[nameLoc[1]:])
		return title, strings.TrimSpace(text[bodyLoc[1]:nameLoc[0]])
	}
}

func splitFirstLine(s string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}

// Review is the structured view of a review-pass answer.
type Review struct {
	Verdict        string
	Issues         []string
	SuggestedFixes []string
	// Confidence is 0-100, or -1 when the answer carries none.
	Confidence int
}

// ParseVerdict extracts OK or FIX from the first "VERDICT:" marker, matched
// case-insensitively. It returns "" when there is no recognisable verdict.
func ParseVerdict(text string) string {
	m := verdictRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.ToUpper(m[1])
}

// ParseReview extracts verdict, bullet lists and confidence from a review.
// Missing parts are left empty; it never fails.
func ParseReview(text string) Review {
	r := Review{
		Verdict:    ParseVerdict(text),
		Confidence: -1,
	}

	if m := confidenceRe.FindStringSubmatch(text); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			if n > 100 {
				n = 100
			}
			r.Confidence = n
		}
	}

	var current *[]string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		header := strings.ToUpper(strings.TrimLeft(trimmed, "*# "))
		switch {
		case strings.HasPrefix(header, "ISSUES:"):
			current = &r.Issues
			appendItem(current, afterColon(trimmed))
			continue
		case strings.HasPrefix(header, "SUGGESTED FIXES:"):
			current = &r.SuggestedFixes
			appendItem(current, afterColon(trimmed))
			continue
		case strings.HasPrefix(header, "VERDICT:"), strings.HasPrefix(header, "CONFIDENCE:"):
			current = nil
			continue
		}

		if current == nil {
			continue
		}
		if item, ok := bulletItem(trimmed); ok {
			appendItem(current, item)
		}
	}

	return r
}

func afterColon(s string) string {
	_, rest, _ := strings.Cut(s, ":")
	return strings.TrimSpace(strings.TrimLeft(rest, "* "))
}

func bulletItem(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• ", "-", "•"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

func appendItem(list *[]string, item string) {
	item = strings.TrimSpace(item)
	if item == "" || item == "..." || strings.HasPrefix(item, "- ") {
		return
	}
	*list = append(*list, item)
}
