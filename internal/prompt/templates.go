package prompt

import (
	"fmt"
	"strings"

	"github.com/marczakme/enzo-translator/internal"
)

const (
	translatorSystemPrompt = "You are a professional translator. Translate precisely. Output plain text only."
	reviewerSystemPrompt   = "You are a senior linguistic reviewer."
)

// GlossaryBlock renders the mandatory terminology list. Entries without a
// target rendering are left out; "None" stands for an empty list.
func GlossaryBlock(entries []internal.GlossaryEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		src := strings.TrimSpace(e.TermSource)
		tgt := strings.TrimSpace(e.TermTarget)
		if src == "" || tgt == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s => %s", src, tgt))
		if e.Locked {
			sb.WriteString(" [LOCKED]")
		}
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "None"
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SourceDocument renders title and body with the NAME:/BODY: markers the
// translation is expected to keep.
func SourceDocument(title, body string) string {
	return fmt.Sprintf("NAME:\n%s\n\nBODY:\n%s", strings.TrimSpace(title), strings.TrimSpace(body))
}

// TranslateMessages builds the translate-pass prompt. extraRules are
// appended to the rule list (used for placeholder hints).
func TranslateMessages(req internal.TranslationRequest, extraRules ...string) []internal.Message {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Target language: %s\n\n", req.TargetLabel))

	style := strings.TrimSpace(req.StyleContext)
	if style == "" {
		style = "None"
	}
	sb.WriteString(fmt.Sprintf("Context:\n%s\n\n", style))

	sb.WriteString(fmt.Sprintf("Mandatory terminology:\n%s\n\n", GlossaryBlock(req.Glossary)))

	sb.WriteString("Rules:\n")
	sb.WriteString("- Use the mandatory terminology. Terms marked [LOCKED] must always use the given target term; grammatical inflection is allowed, synonyms are not.\n")
	sb.WriteString("- Preserve all numbers, units, dimensions, model names and product codes verbatim.\n")
	sb.WriteString("- Do not abbreviate and do not omit any information.\n")
	sb.WriteString("- Output plain text only: no markdown, no commentary.\n")
	sb.WriteString("- Keep the structure: answer with NAME: followed by the translated name, then BODY: followed by the translated body.\n")
	for _, rule := range extraRules {
		if rule = strings.TrimSpace(rule); rule != "" {
			sb.WriteString("- " + rule + "\n")
		}
	}

	sb.WriteString("\nTranslate and keep structure:\n\n")
	sb.WriteString(SourceDocument(req.TitleSource, req.BodySource))

	return []internal.Message{
		{Role: internal.RoleSystem, Content: translatorSystemPrompt},
		{Role: internal.RoleUser, Content: sb.String()},
	}
}

// ReviewMessages builds the review-pass prompt for a finished translation.
func ReviewMessages(req internal.TranslationRequest, title, body string) []internal.Message {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Review the translation from Polish into %s.\n", req.TargetLabel))
	sb.WriteString("Report problems only. Do NOT rewrite or re-translate the text.\n")
	sb.WriteString("Check: meaning, grammar, natural phrasing, mandatory terminology, numbers and units.\n\n")

	sb.WriteString(fmt.Sprintf("Mandatory terminology:\n%s\n\n", GlossaryBlock(req.Glossary)))

	sb.WriteString("Return format:\n")
	sb.WriteString("VERDICT: OK / FIX\n")
	sb.WriteString("ISSUES:\n- ...\n")
	sb.WriteString("SUGGESTED FIXES:\n- ...\n")
	sb.WriteString("CONFIDENCE: 0-100\n\n")

	sb.WriteString("SOURCE:\n")
	sb.WriteString(SourceDocument(req.TitleSource, req.BodySource))
	sb.WriteString("\n\nTRANSLATION:\n")
	sb.WriteString(SourceDocument(title, body))

	return []internal.Message{
		{Role: internal.RoleSystem, Content: reviewerSystemPrompt},
		{Role: internal.RoleUser, Content: sb.String()},
	}
}
