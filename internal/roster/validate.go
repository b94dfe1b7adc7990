package roster

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visitor-leads/internal/model"
)

// Validate checks referential integrity and numeric bounds. All failures
// wrap ErrInvalid.
func (r *Roster) Validate() error {
	if _, ok := r.Policies[GenericCategory]; !ok {
		return eris.Wrapf(ErrInvalid, "missing %q policy", GenericCategory)
	}
	for key, p := range r.Policies {
		if err := p.validate(); err != nil {
			return eris.Wrapf(err, "policy %q", key)
		}
	}

	if err := checkRange("defaults.sample", r.Defaults.Sample, 0, -1); err != nil {
		return err
	}
	if r.Freshness.anchor.IsZero() {
		return eris.Wrap(ErrInvalid, "freshness anchor is required")
	}
	if r.Freshness.WindowDays < 0 {
		return eris.Wrap(ErrInvalid, "freshness window_days must not be negative")
	}
	for _, tier := range model.MatchTiers {
		if err := checkRange("tier_confidence."+string(tier), r.TierConfidence.For(tier), 0, 100); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(r.Companies))
	for _, c := range r.Companies {
		if c.Key == "" {
			return eris.Wrap(ErrInvalid, "company with empty key")
		}
		if seen[c.Key] {
			return eris.Wrapf(ErrInvalid, "duplicate company key %q", c.Key)
		}
		seen[c.Key] = true

		if err := c.validate(r); err != nil {
			return eris.Wrapf(err, "company %q", c.Key)
		}
	}

	return r.Fallback.validate()
}

func (p Policy) validate() error {
	if err := checkRange("confidence", p.Confidence, 0, 100); err != nil {
		return err
	}
	if p.VerifiedProbability < 0 || p.VerifiedProbability > 1 {
		return eris.Wrapf(ErrInvalid, "verified_probability %v outside [0,1]", p.VerifiedProbability)
	}
	if p.Tiers.Full < 0 || p.Tiers.Partial < 0 || p.Tiers.NotFound < 0 || p.Tiers.Sum() <= 0 {
		return eris.Wrap(ErrInvalid, "tier weights must be non-negative with a positive sum")
	}
	if p.Lead.RevenueMin > p.Lead.RevenueMax {
		return eris.Wrap(ErrInvalid, "lead revenue_min exceeds revenue_max")
	}
	if c := p.Lead.Conversion; c.Min < 0 || c.Max > 1 || c.Min > c.Max {
		return eris.Wrapf(ErrInvalid, "lead conversion [%v, %v] outside [0,1] or inverted", c.Min, c.Max)
	}
	if err := checkRange("lead cost_per_lead", p.Lead.CostPerLead, 0, -1); err != nil {
		return err
	}
	return checkRange("lead benchmark", p.Lead.Benchmark, 0, 100)
}

func (c Company) validate(r *Roster) error {
	if len(c.Aliases) == 0 {
		return eris.Wrap(ErrInvalid, "no aliases")
	}
	for _, a := range c.Aliases {
		if strings.TrimSpace(a) == "" {
			return eris.Wrap(ErrInvalid, "blank alias")
		}
	}
	if _, ok := r.Policies[c.Category]; !ok {
		return eris.Wrapf(ErrInvalid, "unknown category %q", c.Category)
	}
	if c.Profile.Name == "" {
		return eris.Wrap(ErrInvalid, "profile name is required")
	}
	if len(c.Contacts) == 0 {
		return eris.Wrap(ErrInvalid, "no contacts")
	}
	for _, ct := range c.Contacts {
		if strings.TrimSpace(ct.Name) == "" {
			return eris.Wrap(ErrInvalid, "contact with empty name")
		}
		if !ct.Seniority.Valid() {
			return eris.Wrapf(ErrInvalid, "contact %q: unknown seniority %q", ct.Name, ct.Seniority)
		}
	}
	if c.Sample != nil {
		return checkRange("sample", *c.Sample, 0, -1)
	}
	return nil
}

func (f Fallback) validate() error {
	if err := checkRange("fallback.sample", f.Sample, 0, -1); err != nil {
		return err
	}
	if err := checkRange("fallback.employees", f.Employees, 0, -1); err != nil {
		return err
	}
	if err := checkRange("fallback.revenue_millions", f.RevenueMillions, 0, -1); err != nil {
		return err
	}
	if len(f.FirstNames) == 0 || len(f.LastNames) == 0 {
		return eris.Wrap(ErrInvalid, "fallback name pools are empty")
	}
	if len(f.Titles) == 0 {
		return eris.Wrap(ErrInvalid, "fallback titles are empty")
	}
	for _, t := range f.Titles {
		if !t.Seniority.Valid() {
			return eris.Wrapf(ErrInvalid, "fallback title %q: unknown seniority %q", t.Title, t.Seniority)
		}
	}
	if f.PlaceholderDomain == "" {
		return eris.Wrap(ErrInvalid, "fallback placeholder_domain is required")
	}
	if f.MaxDomainLength <= 0 {
		return eris.Wrap(ErrInvalid, "fallback max_domain_length must be positive")
	}
	return nil
}

// checkRange rejects inverted ranges and values outside [lo, hi]. A negative
// hi means unbounded above.
func checkRange(name string, rg Range, lo, hi int) error {
	if rg.Min > rg.Max {
		return eris.Wrapf(ErrInvalid, "%s: min %d exceeds max %d", name, rg.Min, rg.Max)
	}
	if rg.Min < lo {
		return eris.Wrapf(ErrInvalid, "%s: min %d below %d", name, rg.Min, lo)
	}
	if hi >= 0 && rg.Max > hi {
		return eris.Wrapf(ErrInvalid, "%s: max %d above %d", name, rg.Max, hi)
	}
	return nil
}
