package glossary

import (
	"context"
	"strings"
	"time"

	"github.com/marczakme/enzo-translator/internal"
)

const (
	StatusOK      = "OK"
	StatusMissing = "missing"
)

// ModTimer is implemented by stores that know when a glossary last changed.
type ModTimer interface {
	ModTime(ctx context.Context, languageCode string) (time.Time, bool, error)
}

// Stats describes the state of one language's glossary.
type Stats struct {
	LanguageCode string    `json:"language"`
	Phrases      int       `json:"phrases"`
	Filled       int       `json:"filled"`
	Locked       int       `json:"locked"`
	LastUpdate   time.Time `json:"last_update"`
	Status       string    `json:"status"`
}

// Monitor collects Stats for every language. A failing language is
// reported in its Status and does not stop the others.
func Monitor(ctx context.Context, store internal.GlossaryStore, languages []string) []Stats {
	timer, _ := store.(ModTimer)

	out := make([]Stats, 0, len(languages))
	for _, lang := range languages {
		st := Stats{LanguageCode: lang, Status: StatusOK}

		if timer != nil {
			mtime, ok, err := timer.ModTime(ctx, lang)
			switch {
			case err != nil:
				st.Status = "ERROR: " + err.Error()
				out = append(out, st)
				continue
			case !ok:
				st.Status = StatusMissing
				out = append(out, st)
				continue
			}
			st.LastUpdate = mtime
		}

		entries, err := store.Load(ctx, lang)
		if err != nil {
			st.Status = "ERROR: " + err.Error()
			out = append(out, st)
			continue
		}
		for _, e := range entries {
			st.Phrases++
			if strings.TrimSpace(e.TermTarget) != "" {
				st.Filled++
			}
			if e.Locked {
				st.Locked++
			}
		}
		out = append(out, st)
	}
	return out
}
