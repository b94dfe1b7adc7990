package leads

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/roster"
)

// Enricher attaches synthetic enrichment metadata to candidate contacts.
type Enricher struct {
	freshness      roster.Freshness
	tierConfidence roster.TierConfidence
}

// NewEnricher returns an Enricher using r's freshness window and tier
// confidence bands.
func NewEnricher(r *roster.Roster) *Enricher {
	return &Enricher{
		freshness:      r.Freshness,
		tierConfidence: r.TierConfidence,
	}
}

// Enrich builds an EnrichedContact for c. The stream is seeded from seed
// alone, so identical seeds give identical contacts.
func (e *Enricher) Enrich(c model.CandidateContact, policy roster.Policy, domain, phonePrefix string, seed ...string) model.EnrichedContact {
	r := NewStream(seed...)

	out := model.EnrichedContact{
		CandidateContact: c,
		ID:               ContactID(c.Name),
		Email:            Email(c, domain),
		LinkedIn:         LinkedIn(c.Name),
	}

	out.ConfidenceScore = clampPercent(IntBetween(r, policy.Confidence.Min, policy.Confidence.Max))

	daysBack := IntBetween(r, 0, max(e.freshness.WindowDays, 0))
	out.LastUpdated = model.NewDate(e.freshness.AnchorDate().AddDate(0, 0, -daysBack))

	out.VerificationStatus = model.VerificationPending
	if r.Float64() < policy.VerifiedProbability {
		out.VerificationStatus = model.VerificationVerified
	}

	out.MatchTier = DrawTier(r, policy.Tiers)
	band := e.tierConfidence.For(out.MatchTier)
	out.MatchConfidence = clampPercent(IntBetween(r, band.Min, band.Max))

	out.Phone = Phone(r, phonePrefix)
	return out
}

// DrawTier makes one categorical draw over w. Zero total weight yields
// NotFound.
func DrawTier(r *rand.Rand, w roster.TierWeights) model.MatchTier {
	sum := w.Sum()
	if sum <= 0 {
		return model.MatchTierNotFound
	}
	u := r.Float64() * sum
	switch {
	case u < w.Full:
		return model.MatchTierFull
	case u < w.Full+w.Partial:
		return model.MatchTierPartial
	default:
		return model.MatchTierNotFound
	}
}

// Phone draws a phone number. With a prefix only the four line digits are
// drawn; otherwise a full NANP number is produced.
func Phone(r *rand.Rand, prefix string) string {
	if prefix != "" {
		return fmt.Sprintf("%s-%04d", prefix, IntBetween(r, 1000, 9999))
	}
	return fmt.Sprintf("+1-%03d-%03d-%04d",
		IntBetween(r, 200, 999),
		IntBetween(r, 200, 999),
		IntBetween(r, 1000, 9999),
	)
}

// Email formats first.last@domain from the contact's name.
func Email(c model.CandidateContact, domain string) string {
	first, last := c.FirstLast()
	local := emailPart(first)
	if l := emailPart(last); l != "" {
		if local != "" {
			local += "."
		}
		local += l
	}
	if local == "" || domain == "" {
		return ""
	}
	return local + "@" + domain
}

func emailPart(s string) string {
	var b strings.Builder
	for _, r := range Fold(s) {
		if isSlugRune(r) || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContactID returns the stable ZI-NNNNN identifier for a contact name.
func ContactID(name string) string {
	return fmt.Sprintf("ZI-%05d", Seed(name)%100000)
}

// LinkedIn returns the profile path for a contact name.
func LinkedIn(name string) string {
	return "linkedin.com/in/" + slug(name)
}

func clampPercent(v int) int {
	return min(max(v, 0), 100)
}
