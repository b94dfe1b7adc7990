package leads

import (
	"strings"

	"github.com/sells-group/visitor-leads/internal/roster"
)

type matchEntry struct {
	company roster.Company
	aliases []string
}

// Matcher maps free-text organization names onto roster companies.
type Matcher struct {
	entries []matchEntry
}

// NewMatcher folds every alias once so Match only folds its input.
func NewMatcher(r *roster.Roster) *Matcher {
	m := &Matcher{entries: make([]matchEntry, 0, len(r.Companies))}
	for _, c := range r.Companies {
		e := matchEntry{company: c}
		for _, a := range c.Aliases {
			if f := strings.TrimSpace(Fold(a)); f != "" {
				e.aliases = append(e.aliases, f)
			}
		}
		m.entries = append(m.entries, e)
	}
	return m
}

// Match returns the first company, in roster order, that has an alias
// contained in the folded organization name.
func (m *Matcher) Match(organization string) (roster.Company, bool) {
	org := Fold(organization)
	if strings.TrimSpace(org) == "" {
		return roster.Company{}, false
	}
	for _, e := range m.entries {
		for _, a := range e.aliases {
			if strings.Contains(org, a) {
				return e.company, true
			}
		}
	}
	return roster.Company{}, false
}
