package leads

import (
	"maps"
	"math"
	"slices"

	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/roster"
)

// Score summarizes a resolved lead for sales prioritization. Every draw
// depends only on ip and the roster, never on the organization text.
func Score(r *roster.Roster, policy roster.Policy, ip string, contacts []model.EnrichedContact) model.LeadScore {
	s := Seed(ip)
	rule := policy.Lead

	score := rule.Score + int(s%11) - 5
	score = min(max(score, 50), 100)

	band := model.RevenueBand{
		Min: rule.RevenueMin + int(s%50000),
		Max: rule.RevenueMax + int(s%100000),
	}
	band.Max = max(band.Max, band.Min)

	return model.LeadScore{
		Label:            rule.Label,
		Priority:         rule.Priority,
		Score:            score,
		RevenuePotential: band,
		ROI:              ROI(rule, ip, band),
		Industries:       Industries(r, policy.Category, ip, score),
		Stats:            Stats(contacts),
	}
}

// ROI draws a conversion rate and cost per lead from separate ip streams
// and projects the expected value of the mid revenue band.
func ROI(rule roster.LeadRule, ip string, band model.RevenueBand) model.ROIEstimate {
	conv := rule.Conversion
	rate := conv.Min
	if conv.Max > conv.Min {
		rate += NewStream(ip, "conversion").Float64() * (conv.Max - conv.Min)
	}
	rate = math.Round(rate*10000) / 10000

	cost := IntBetween(NewStream(ip, "cost"), rule.CostPerLead.Min, rule.CostPerLead.Max)
	expected := int(math.Round(float64(band.Min+band.Max) / 2 * rate))

	est := model.ROIEstimate{
		ConversionRate: rate,
		ExpectedValue:  expected,
		CostPerLead:    cost,
	}
	if cost > 0 {
		est.Percent = int(math.Round(float64(expected) / float64(cost) * 100))
	}
	return est
}

// Industries scores every policy's industry against its benchmark range,
// in category order. The current category carries the lead's own score.
func Industries(r *roster.Roster, category, ip string, score int) []model.IndustryScore {
	stream := NewStream(ip, "industry")
	keys := slices.Sorted(maps.Keys(r.Policies))
	out := make([]model.IndustryScore, 0, len(keys))
	for _, key := range keys {
		p := r.Policies[key]
		bench := IntBetween(stream, p.Lead.Benchmark.Min, p.Lead.Benchmark.Max)
		if key == category {
			out = append(out, model.IndustryScore{Industry: p.Industry, Score: score, Current: true})
			continue
		}
		out = append(out, model.IndustryScore{Industry: p.Industry, Score: bench})
	}
	return out
}

// Stats counts verified contacts and contacts per seniority, and averages
// confidence.
func Stats(contacts []model.EnrichedContact) model.ContactStats {
	st := model.ContactStats{Total: len(contacts)}
	if len(contacts) == 0 {
		return st
	}
	counts := make(map[model.Seniority]int, len(model.Seniorities))
	sum := 0
	for _, c := range contacts {
		if c.Verified() {
			st.Verified++
		}
		counts[c.Seniority]++
		sum += c.ConfidenceScore
	}
	st.CLevel = counts[model.SeniorityCLevel]
	st.AvgConfidence = int(math.Round(float64(sum) / float64(len(contacts))))
	for _, s := range model.Seniorities {
		if n := counts[s]; n > 0 {
			st.BySeniority = append(st.BySeniority, model.SeniorityCount{Seniority: s, Count: n})
		}
	}
	return st
}
