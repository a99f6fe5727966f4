// Package postprocess removes common LLM artifacts from provider output
// before the NAME:/BODY: contract is parsed.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text and returns the trimmed result:
//  1. thinking / reasoning blocks
//  2. a code fence wrapping the whole answer
//  3. instruction echoes ("Here is the translation:")
//  4. markdown emphasis around the NAME:/BODY: labels
//  5. quotes wrapping the whole answer
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = unwrapCodeFence(text)
	text = removeInstructionEchoes(text)
	text = normalizeLabels(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// Go's RE2 has no backreferences, so each tag pair is listed.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// codeFenceRe matches an answer that is entirely one fenced block, with an
// optional info string such as ```text.
var codeFenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*[ \t]*\n(.*?)\n?```$")

func unwrapCodeFence(text string) string {
	if m := codeFenceRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to. Each is anchored and needs a colon.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| your)? (?:german |french |english |final |translated )?(?:translation|text)(?: [a-z ]+)?\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:final )?(?:translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the| your)? (?:translated )?(?:translation|text)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// labelRe matches NAME:/BODY: labels wrapped in markdown emphasis or
// heading marks, e.g. "**NAME:**", "## BODY:" or "*Name*:".
var labelRe = regexp.MustCompile(`(?im)^[ \t]*(?:#{1,6}[ \t]*)?[*_]{0,2}(NAME|BODY)[*_]{0,2}[ \t]*:[*_]{0,2}`)

func normalizeLabels(text string) string {
	return labelRe.ReplaceAllStringFunc(text, func(match string) string {
		m := labelRe.FindStringSubmatch(match)
		return strings.ToUpper(m[1]) + ":"
	})
}

// removeQuoteWrapping strips a matching pair of outer quotes when the whole
// text is wrapped in them. Supported pairs:
//
//	"…"  '…'  «…»  „…”  “…”  ‘…’
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	inner := string(runes[1 : n-1])
	first, last := runes[0], runes[n-1]
	if strings.ContainsRune(inner, first) || strings.ContainsRune(inner, last) {
		return text
	}
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '„' && last == '”') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(inner)
	}
	return text
}
