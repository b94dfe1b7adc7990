package leads

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/roster"
)

// FallbackGenerator synthesizes a profile and contacts for organizations
// that match no roster company.
type FallbackGenerator struct {
	cfg      roster.Fallback
	policy   roster.Policy
	enricher *Enricher
	names    []string
}

// NewFallbackGenerator builds a generator from r's fallback block and
// generic policy.
func NewFallbackGenerator(r *roster.Roster, e *Enricher) *FallbackGenerator {
	fb := r.Fallback
	names := make([]string, 0, len(fb.FirstNames)*len(fb.LastNames))
	for _, first := range fb.FirstNames {
		for _, last := range fb.LastNames {
			names = append(names, first+" "+last)
		}
	}
	return &FallbackGenerator{
		cfg:      fb,
		policy:   r.Policy(roster.GenericCategory),
		enricher: e,
		names:    names,
	}
}

// Domain returns the mail domain synthesized for organization.
func (g *FallbackGenerator) Domain(organization string) string {
	stem := DomainStem(organization, g.cfg.MaxDomainLength)
	if stem == "" {
		stem = g.cfg.PlaceholderDomain
	}
	return stem + ".com"
}

// Generate returns a synthetic profile and between fallback.sample.min and
// fallback.sample.max contacts with distinct names and titles.
func (g *FallbackGenerator) Generate(organization, ip string) (model.CompanyProfile, []model.EnrichedContact) {
	r := NewStream(ip, organization)

	name := strings.TrimSpace(organization)
	if name == "" {
		name = g.cfg.PlaceholderName
	}
	domain := g.Domain(organization)

	p := message.NewPrinter(language.English)
	profile := model.CompanyProfile{
		Name:          name,
		EmployeeRange: p.Sprintf("%d+", IntBetween(r, g.cfg.Employees.Min, g.cfg.Employees.Max)),
		RevenueRange:  p.Sprintf("$%dM+", IntBetween(r, g.cfg.RevenueMillions.Min, g.cfg.RevenueMillions.Max)),
		Industry:      g.policy.Industry,
		Headquarters:  g.cfg.Headquarters,
		Website:       "www." + domain,
		Description:   "Business organization: " + name,
	}

	k := SampleCount(r, min(len(g.names), len(g.cfg.Titles)), g.cfg.Sample.Min, g.cfg.Sample.Max)
	names := Sample(g.names, r, k, k)
	titles := Sample(g.cfg.Titles, r, k, k)

	contacts := make([]model.EnrichedContact, 0, k)
	for i := range k {
		c := model.CandidateContact{
			Name:       names[i],
			Title:      titles[i].Title,
			Seniority:  titles[i].Seniority,
			Department: titles[i].Department,
		}
		contacts = append(contacts, g.enricher.Enrich(c, g.policy, domain, "", organization, ip, c.Name, itoa(i)))
	}
	return profile, contacts
}
