package leads

import (
	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/roster"
)

// Resolver is the entry point for lead resolution. It is safe for
// concurrent use.
type Resolver struct {
	roster   *roster.Roster
	matcher  *Matcher
	enricher *Enricher
	fallback *FallbackGenerator
}

// NewResolver wires the matcher, enricher, and fallback generator around r.
func NewResolver(r *roster.Roster) *Resolver {
	e := NewEnricher(r)
	return &Resolver{
		roster:   r,
		matcher:  NewMatcher(r),
		enricher: e,
		fallback: NewFallbackGenerator(r, e),
	}
}

// Roster returns the reference data the resolver was built with.
func (res *Resolver) Roster() *roster.Roster {
	return res.roster
}

// Resolve maps an (organization, ip) pair to a company profile, enriched
// contacts, and a lead score. It is total: any pair of strings resolves,
// and the same pair always resolves to the same result.
func (res *Resolver) Resolve(organization, ip string) model.LeadResult {
	company, ok := res.matcher.Match(organization)
	if !ok {
		profile, contacts := res.fallback.Generate(organization, ip)
		return model.LeadResult{
			Organization: organization,
			IP:           ip,
			Category:     roster.GenericCategory,
			Company:      profile,
			Contacts:     contacts,
			Score:        Score(res.roster, res.roster.Policy(roster.GenericCategory), ip, contacts),
		}
	}

	policy := res.roster.Policy(company.Category)
	sample := res.roster.SampleRange(company)
	r := NewStream(ip, organization)
	picked := Sample(company.Contacts, r, sample.Min, sample.Max)

	domain := company.Domain()
	contacts := make([]model.EnrichedContact, 0, len(picked))
	for i, c := range picked {
		contacts = append(contacts, res.enricher.Enrich(c, policy, domain, company.PhonePrefix, company.Key, ip, c.Name, itoa(i)))
	}

	return model.LeadResult{
		Organization: organization,
		IP:           ip,
		Matched:      true,
		Key:          company.Key,
		Category:     policy.Category,
		Company:      company.Profile,
		Contacts:     contacts,
		Score:        Score(res.roster, policy, ip, contacts),
	}
}
