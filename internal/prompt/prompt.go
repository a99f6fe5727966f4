// Package prompt builds the system/user prompt text sent to LLM providers
// and parses the textual contracts the providers answer with.
package prompt

import (
	"strings"

	"github.com/marczakme/enzo-translator/internal"
)

// TruncationMarker is appended to text shortened by Clip.
const TruncationMarker = "\n\n[...truncated due to length...]\n"

// clipReserve is the room left at the end of a clipped text for the marker.
const clipReserve = 200

const (
	DefaultSystemLimit = 6000
	DefaultUserLimit   = 24000
)

// Limits bounds the size, in characters, of the composed prompt segments.
type Limits struct {
	System int `mapstructure:"system_chars"`
	User   int `mapstructure:"user_chars"`
}

// DefaultLimits returns the bounds used when none are configured.
func DefaultLimits() Limits {
	return Limits{System: DefaultSystemLimit, User: DefaultUserLimit}
}

// Compose joins all system-role contents and all user-role contents, each
// with a blank line between parts. Empty contents are dropped and roles
// other than "system" count as user. The user segment is never empty: a
// single space stands in for it, because providers reject empty content.
func Compose(messages []internal.Message) (system string, user string) {
	var systemParts, userParts []string
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(m.Role), internal.RoleSystem) {
			systemParts = append(systemParts, content)
		} else {
			userParts = append(userParts, content)
		}
	}

	system = strings.TrimSpace(strings.Join(systemParts, "\n\n"))
	user = strings.TrimSpace(strings.Join(userParts, "\n\n"))
	if user == "" {
		user = " "
	}
	return system, user
}

// Clip keeps text within maxChars characters. Longer text is cut to
// maxChars-200 characters and TruncationMarker is appended, so the prefix
// survives and the cut is visible to the model.
func Clip(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := maxChars - clipReserve
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + TruncationMarker
}

// ClipLimits clips system and user text to limits. Zero limits fall back
// to the defaults.
func ClipLimits(system, user string, limits Limits) (string, string) {
	if limits.System <= 0 {
		limits.System = DefaultSystemLimit
	}
	if limits.User <= 0 {
		limits.User = DefaultUserLimit
	}
	return Clip(system, limits.System), Clip(user, limits.User)
}

// ComposeClipped composes messages and clips both segments to limits.
func ComposeClipped(messages []internal.Message, limits Limits) (string, string) {
	system, user := Compose(messages)
	return ClipLimits(system, user, limits)
}
