// Package roster holds the reference data behind lead resolution: the
// ordered company alias table, candidate contact pools, the enrichment policy
// table, and the fallback name pools. A Roster is immutable once loaded.
package roster

import (
	"time"

	"github.com/sells-group/visitor-leads/internal/model"
)

// GenericCategory is the policy applied to unmatched organizations and to
// companies whose category has no policy row.
const GenericCategory = "generic"

// Range is an inclusive integer interval.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// TierWeights are the relative probabilities of each match tier.
type TierWeights struct {
	Full     float64 `yaml:"full_match" json:"full_match"`
	Partial  float64 `yaml:"partial_match" json:"partial_match"`
	NotFound float64 `yaml:"not_found" json:"not_found"`
}

// Sum returns the total weight.
func (w TierWeights) Sum() float64 {
	return w.Full + w.Partial + w.NotFound
}

// Probability returns the normalized probability of tier.
func (w TierWeights) Probability(tier model.MatchTier) float64 {
	sum := w.Sum()
	if sum <= 0 {
		return 0
	}
	switch tier {
	case model.MatchTierFull:
		return w.Full / sum
	case model.MatchTierPartial:
		return w.Partial / sum
	case model.MatchTierNotFound:
		return w.NotFound / sum
	}
	return 0
}

// TierConfidence maps each match tier to its match-confidence range.
type TierConfidence struct {
	Full     Range `yaml:"full_match" json:"full_match"`
	Partial  Range `yaml:"partial_match" json:"partial_match"`
	NotFound Range `yaml:"not_found" json:"not_found"`
}

// For returns the range for tier.
func (t TierConfidence) For(tier model.MatchTier) Range {
	switch tier {
	case model.MatchTierFull:
		return t.Full
	case model.MatchTierPartial:
		return t.Partial
	default:
		return t.NotFound
	}
}

// LeadRule is the sales summary attached to a category.
type LeadRule struct {
	Label      string `yaml:"label" json:"label"`
	Priority   string `yaml:"priority" json:"priority"`
	Score      int    `yaml:"score" json:"score"`
	RevenueMin int    `yaml:"revenue_min" json:"revenue_min"`
	RevenueMax int    `yaml:"revenue_max" json:"revenue_max"`
	// Conversion is the win-rate range, as a fraction.
	Conversion  RateRange `yaml:"conversion" json:"conversion"`
	CostPerLead Range     `yaml:"cost_per_lead" json:"cost_per_lead"`
	// Benchmark is the typical lead score range for the category's industry.
	Benchmark Range `yaml:"benchmark" json:"benchmark"`
}

// RateRange is an inclusive fractional interval.
type RateRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Policy is one row of the enrichment policy table.
type Policy struct {
	Category            string      `yaml:"-" json:"category"`
	Industry            string      `yaml:"industry" json:"industry"`
	Confidence          Range       `yaml:"confidence" json:"confidence"`
	VerifiedProbability float64     `yaml:"verified_probability" json:"verified_probability"`
	Tiers               TierWeights `yaml:"tiers" json:"tiers"`
	Lead                LeadRule    `yaml:"lead" json:"lead"`
}

// Company is a known organization with its candidate contact pool.
type Company struct {
	Key         string                   `yaml:"key" json:"key"`
	Category    string                   `yaml:"category" json:"category"`
	Aliases     []string                 `yaml:"aliases" json:"aliases"`
	PhonePrefix string                   `yaml:"phone_prefix" json:"phone_prefix,omitempty"`
	EmailDomain string                   `yaml:"email_domain" json:"email_domain,omitempty"`
	Sample      *Range                   `yaml:"sample" json:"sample,omitempty"`
	Profile     model.CompanyProfile     `yaml:"profile" json:"profile"`
	Contacts    []model.CandidateContact `yaml:"contacts" json:"contacts"`
}

// Domain returns the mail domain for the company's contacts.
func (c Company) Domain() string {
	if c.EmailDomain != "" {
		return c.EmailDomain
	}
	return c.Profile.Domain()
}

// Freshness bounds the synthetic last-updated dates.
type Freshness struct {
	Anchor     string `yaml:"anchor" json:"anchor"`
	WindowDays int    `yaml:"window_days" json:"window_days"`

	anchor time.Time
}

// AnchorDate returns the parsed anchor day.
func (f Freshness) AnchorDate() time.Time {
	return f.anchor
}

// TitleTemplate is a fallback job title with its classification.
type TitleTemplate struct {
	Title      string          `yaml:"title" json:"title"`
	Seniority  model.Seniority `yaml:"seniority" json:"seniority"`
	Department string          `yaml:"department" json:"department"`
}

// Fallback configures synthesized profiles for unmatched organizations.
type Fallback struct {
	Sample            Range           `yaml:"sample" json:"sample"`
	Employees         Range           `yaml:"employees" json:"employees"`
	RevenueMillions   Range           `yaml:"revenue_millions" json:"revenue_millions"`
	Headquarters      string          `yaml:"headquarters" json:"headquarters"`
	PlaceholderName   string          `yaml:"placeholder_name" json:"placeholder_name"`
	PlaceholderDomain string          `yaml:"placeholder_domain" json:"placeholder_domain"`
	MaxDomainLength   int             `yaml:"max_domain_length" json:"max_domain_length"`
	FirstNames        []string        `yaml:"first_names" json:"first_names"`
	LastNames         []string        `yaml:"last_names" json:"last_names"`
	Titles            []TitleTemplate `yaml:"titles" json:"titles"`
}

// Defaults holds values applied to companies that omit them.
type Defaults struct {
	Sample Range `yaml:"sample" json:"sample"`
}

// Roster is the complete, validated reference data set.
type Roster struct {
	Defaults       Defaults          `yaml:"defaults" json:"defaults"`
	Freshness      Freshness         `yaml:"freshness" json:"freshness"`
	TierConfidence TierConfidence    `yaml:"tier_confidence" json:"tier_confidence"`
	Policies       map[string]Policy `yaml:"policies" json:"policies"`
	Companies      []Company         `yaml:"companies" json:"companies"`
	Fallback       Fallback          `yaml:"fallback" json:"fallback"`
}

// Policy returns the policy row for category, or the generic row.
func (r *Roster) Policy(category string) Policy {
	if p, ok := r.Policies[category]; ok {
		return p
	}
	return r.Policies[GenericCategory]
}

// SampleRange returns the contact count range for c.
func (r *Roster) SampleRange(c Company) Range {
	if c.Sample != nil {
		return *c.Sample
	}
	return r.Defaults.Sample
}

// Company returns the company registered under key.
func (r *Roster) Company(key string) (Company, bool) {
	for _, c := range r.Companies {
		if c.Key == key {
			return c, true
		}
	}
	return Company{}, false
}
