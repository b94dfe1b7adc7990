package leads

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/roster"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(roster.Default())
}

func TestSeed(t *testing.T) {
	assert.Equal(t, Seed("a", "b"), Seed("a", "b"))
	assert.NotEqual(t, Seed("ab", "c"), Seed("a", "bc"))
	assert.NotEqual(t, Seed("1.2.3.4"), Seed("1.2.3.5"))

	a, b := NewStream("x", "y"), NewStream("x", "y")
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestIntBetween(t *testing.T) {
	r := NewStream("bounds")
	for range 1000 {
		v := IntBetween(r, 3, 6)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 6)
	}
	assert.Equal(t, 5, IntBetween(r, 5, 5))
	assert.Equal(t, 7, IntBetween(r, 7, 2))
}

func TestSample_Bounds(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name     string
		min, max int
		wantLo   int
		wantHi   int
	}{
		{"within pool", 2, 4, 2, 4},
		{"max above pool", 3, 10, 3, 5},
		{"min above pool", 7, 9, 5, 5},
		{"negative bounds", -3, -1, 0, 0},
		{"inverted", 4, 1, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range 200 {
				got := Sample(items, NewStream(tt.name, itoa(i)), tt.min, tt.max)
				assert.GreaterOrEqual(t, len(got), tt.wantLo)
				assert.LessOrEqual(t, len(got), tt.wantHi)
			}
		})
	}
}

func TestSample_NoDuplicatesAndNoMutation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f"}
	orig := append([]string(nil), items...)

	for i := range 500 {
		got := Sample(items, NewStream("dup", itoa(i)), 3, 6)
		seen := map[string]bool{}
		for _, s := range got {
			assert.False(t, seen[s], "duplicate %q", s)
			seen[s] = true
		}
	}
	assert.Equal(t, orig, items)
}

func TestSample_Empty(t *testing.T) {
	got := Sample([]int{}, NewStream("empty"), 3, 6)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "lufthansa technik", Fold("Lufthansa Téchnik"))
	assert.Equal(t, "sao paulo", Fold("São Paulo"))
	assert.Equal(t, "boeing", Fold("BOEING"))
}

func TestDomainStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Unknown Startup LLC", "unknownstartup"},
		{"Acme, Inc.", "acme"},
		{"Widgets Co Ltd", "widgets"},
		{"Incredible Widgets", "incrediblewidgets"},
		{"Müller GmbH", "muller"},
		{"LLC", ""},
		{"", ""},
		{"!!!", ""},
		{"A Very Long Organization Name Holdings", "averylongorganizationnam"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainStem(tt.in, 24))
		})
	}
}

func TestMatcher(t *testing.T) {
	m := NewMatcher(roster.Default())

	tests := []struct {
		org  string
		want string
	}{
		{"The Boeing Company", "boeing"},
		{"BOEING COMMERCIAL AIRPLANES", "boeing"},
		{"Delta Air Lines Inc.", "delta"},
		{"American Airlines Inc", "american"},
		{"Lufthansa Technik AG", "lufthansa"},
		{"United Airlines", "united"},
		{"Rolls Royce plc", "rolls-royce"},
		{"Microsoft Corporation", "microsoft"},
		{"Google LLC", "google"},
		{"Facebook, Inc.", "meta"},
	}
	for _, tt := range tests {
		t.Run(tt.org, func(t *testing.T) {
			c, ok := m.Match(tt.org)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Key)
		})
	}

	for _, org := range []string{"", "   ", "Unknown Startup LLC", "Quality Assurance Ltd", "American Express", "United Parcel Service"} {
		_, ok := m.Match(org)
		assert.False(t, ok, org)
	}
}

func TestDrawTier_Proportions(t *testing.T) {
	r := roster.Default()
	const draws = 10000

	for _, category := range []string{"flagship_manufacturer", "major_carrier", "generic"} {
		t.Run(category, func(t *testing.T) {
			policy := r.Policy(category)
			stream := NewStream("tiers", category)
			counts := map[model.MatchTier]int{}
			for range draws {
				counts[DrawTier(stream, policy.Tiers)]++
			}
			for _, tier := range model.MatchTiers {
				got := float64(counts[tier]) / draws
				assert.InDelta(t, policy.Tiers.Probability(tier), got, 0.05, "tier %s", tier)
			}
		})
	}
}

func TestEnrich(t *testing.T) {
	r := roster.Default()
	e := NewEnricher(r)
	policy := r.Policy("mro_provider")
	c := model.CandidateContact{Name: "Kai-Stefan Roepke", Title: "CCO", Seniority: model.SeniorityCLevel, Department: "Operations"}

	got := e.Enrich(c, policy, "lht.dlh.de", "+49-40-5070", "lufthansa", "1.2.3.4", c.Name, "0")
	again := e.Enrich(c, policy, "lht.dlh.de", "+49-40-5070", "lufthansa", "1.2.3.4", c.Name, "0")
	assert.Equal(t, got, again)

	assert.Equal(t, "kai-stefan.roepke@lht.dlh.de", got.Email)
	assert.True(t, strings.HasPrefix(got.Phone, "+49-40-5070-"))
	assert.Len(t, got.Phone, len("+49-40-5070-")+4)
	assert.Equal(t, "linkedin.com/in/kaistefanroepke", got.LinkedIn)
	assert.Regexp(t, `^ZI-\d{5}$`, got.ID)
	assert.Equal(t, ContactID(c.Name), got.ID)

	assert.GreaterOrEqual(t, got.ConfidenceScore, 85)
	assert.LessOrEqual(t, got.ConfidenceScore, 98)

	anchor := r.Freshness.AnchorDate()
	assert.False(t, got.LastUpdated.After(anchor))
	assert.False(t, got.LastUpdated.Before(anchor.AddDate(0, 0, -r.Freshness.WindowDays)))

	band := r.TierConfidence.For(got.MatchTier)
	assert.GreaterOrEqual(t, got.MatchConfidence, band.Min)
	assert.LessOrEqual(t, got.MatchConfidence, band.Max)
}

func TestPhone(t *testing.T) {
	r := NewStream("phone")
	for range 100 {
		assert.Regexp(t, `^\+1-[2-9]\d{2}-[2-9]\d{2}-[1-9]\d{3}$`, Phone(r, ""))
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "soeren.stark@x.com", Email(model.CandidateContact{Name: "Söeren Stark"}, "x.com"))
	assert.Equal(t, "prince@x.com", Email(model.CandidateContact{Name: "Prince"}, "x.com"))
	assert.Empty(t, Email(model.CandidateContact{Name: ""}, "x.com"))
}

func TestResolve_Boeing(t *testing.T) {
	res := newTestResolver(t)

	got := res.Resolve("The Boeing Company", "52.16.0.0")
	require.True(t, got.Matched)
	assert.Equal(t, "boeing", got.Key)
	assert.Equal(t, "flagship_manufacturer", got.Category)
	assert.Equal(t, "Aerospace & Defense", got.Company.Industry)
	assert.Equal(t, "The Boeing Company", got.Company.Name)
	assert.GreaterOrEqual(t, len(got.Contacts), 3)
	assert.LessOrEqual(t, len(got.Contacts), 5)

	names := map[string]bool{}
	for _, c := range got.Contacts {
		assert.False(t, names[c.Name])
		names[c.Name] = true
		assert.True(t, strings.HasSuffix(c.Email, "@boeing.com"), c.Email)
		assert.True(t, strings.HasPrefix(c.Phone, "+1-312-544-"), c.Phone)
		assert.GreaterOrEqual(t, c.ConfidenceScore, 85)
		assert.LessOrEqual(t, c.ConfidenceScore, 98)
	}

	assert.Equal(t, "AEROSPACE GIANT", got.Score.Label)
	assert.Equal(t, "PLATINUM", got.Score.Priority)
	assert.GreaterOrEqual(t, got.Score.Score, 93)
	assert.LessOrEqual(t, got.Score.Score, 100)
	assert.Equal(t, len(got.Contacts), got.Score.Stats.Total)
}

func TestResolve_UnknownStartup(t *testing.T) {
	res := newTestResolver(t)

	got := res.Resolve("Unknown Startup LLC", "203.0.113.7")
	assert.False(t, got.Matched)
	assert.Equal(t, roster.GenericCategory, got.Category)
	assert.Equal(t, "Unknown Startup LLC", got.Company.Name)
	assert.Equal(t, "Business Services", got.Company.Industry)
	assert.Equal(t, "Various Locations", got.Company.Headquarters)
	assert.Equal(t, "www.unknownstartup.com", got.Company.Website)
	assert.Regexp(t, `^\d{1,3}(,\d{3})?\+$`, got.Company.EmployeeRange)
	assert.Regexp(t, `^\$\d+M\+$`, got.Company.RevenueRange)

	require.GreaterOrEqual(t, len(got.Contacts), 3)
	require.LessOrEqual(t, len(got.Contacts), 6)

	names, titles := map[string]bool{}, map[string]bool{}
	for _, c := range got.Contacts {
		assert.True(t, strings.HasSuffix(c.Email, "@unknownstartup.com"), c.Email)
		assert.False(t, names[c.Name])
		assert.False(t, titles[c.Title])
		names[c.Name], titles[c.Title] = true, true
		assert.GreaterOrEqual(t, c.ConfidenceScore, 70)
		assert.LessOrEqual(t, c.ConfidenceScore, 88)
	}
}

func TestResolve_Totality(t *testing.T) {
	res := newTestResolver(t)

	got := res.Resolve("", "not-an-ip")
	assert.False(t, got.Matched)
	assert.Equal(t, "Unknown Organization", got.Company.Name)
	assert.Equal(t, "www.company.com", got.Company.Website)
	require.NotEmpty(t, got.Contacts)
	for _, c := range got.Contacts {
		assert.True(t, strings.HasSuffix(c.Email, "@company.com"), c.Email)
	}

	assert.NotPanics(t, func() { res.Resolve("???", "") })
	assert.NotPanics(t, func() { res.Resolve(strings.Repeat("x", 10000), "::1") })
}

func TestResolve_Deterministic(t *testing.T) {
	res := newTestResolver(t)
	other := newTestResolver(t)

	for _, in := range [][2]string{
		{"The Boeing Company", "52.16.0.0"},
		{"Lufthansa Technik AG", "80.150.0.1"},
		{"Unknown Startup LLC", "203.0.113.7"},
		{"", "not-an-ip"},
	} {
		a, err := json.Marshal(res.Resolve(in[0], in[1]))
		require.NoError(t, err)
		b, err := json.Marshal(other.Resolve(in[0], in[1]))
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b))
		assert.Equal(t, a, b)
	}
}

func TestResolve_DifferentIPsVary(t *testing.T) {
	res := newTestResolver(t)
	seen := map[string]bool{}
	for i := range 20 {
		got := res.Resolve("The Boeing Company", "10.0.0."+itoa(i))
		var names []string
		for _, c := range got.Contacts {
			names = append(names, c.Name)
		}
		seen[strings.Join(names, ",")] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestStats(t *testing.T) {
	contacts := []model.EnrichedContact{
		{CandidateContact: model.CandidateContact{Seniority: model.SeniorityVP}, ConfidenceScore: 85, VerificationStatus: model.VerificationPending},
		{CandidateContact: model.CandidateContact{Seniority: model.SeniorityCLevel}, ConfidenceScore: 90, VerificationStatus: model.VerificationVerified},
	}
	st := Stats(contacts)
	assert.Equal(t, model.ContactStats{
		Total:         2,
		Verified:      1,
		CLevel:        1,
		AvgConfidence: 88,
		BySeniority: []model.SeniorityCount{
			{Seniority: model.SeniorityCLevel, Count: 1},
			{Seniority: model.SeniorityVP, Count: 1},
		},
	}, st)
	assert.Equal(t, model.ContactStats{}, Stats(nil))
}

func TestStats_BySenioritySumsToTotal(t *testing.T) {
	res := newTestResolver(t)
	got := res.Resolve("The Boeing Company", "52.16.0.0")

	sum := 0
	for _, sc := range got.Score.Stats.BySeniority {
		assert.True(t, sc.Seniority.Valid(), sc.Seniority)
		assert.Positive(t, sc.Count)
		sum += sc.Count
	}
	assert.Equal(t, got.Score.Stats.Total, sum)
}

func TestScore_Clamped(t *testing.T) {
	r := roster.Default()
	policy := roster.Policy{Lead: roster.LeadRule{Score: 100, RevenueMin: 10, RevenueMax: 10}}
	for i := range 50 {
		s := Score(r, policy, "ip-"+itoa(i), nil)
		assert.LessOrEqual(t, s.Score, 100)
		assert.GreaterOrEqual(t, s.Score, 95)
		assert.GreaterOrEqual(t, s.RevenuePotential.Max, s.RevenuePotential.Min)
		assert.Zero(t, s.ROI.Percent, "zero cost per lead has no roi")
	}
}

func TestROI_WithinPolicyRanges(t *testing.T) {
	r := roster.Default()

	for key, policy := range r.Policies {
		t.Run(key, func(t *testing.T) {
			rule := policy.Lead
			for i := range 200 {
				ip := "10.1." + itoa(i/256) + "." + itoa(i%256)
				s := Score(r, policy, ip, nil)
				roi := s.ROI

				assert.GreaterOrEqual(t, roi.ConversionRate, rule.Conversion.Min)
				assert.LessOrEqual(t, roi.ConversionRate, rule.Conversion.Max)
				assert.GreaterOrEqual(t, roi.CostPerLead, rule.CostPerLead.Min)
				assert.LessOrEqual(t, roi.CostPerLead, rule.CostPerLead.Max)

				mid := float64(s.RevenuePotential.Min+s.RevenuePotential.Max) / 2
				assert.InDelta(t, mid*roi.ConversionRate, float64(roi.ExpectedValue), 1)
				assert.InDelta(t, float64(roi.ExpectedValue)/float64(roi.CostPerLead)*100, float64(roi.Percent), 1)
			}
		})
	}
}

func TestROI_Deterministic(t *testing.T) {
	rule := roster.Default().Policy("flagship_manufacturer").Lead
	band := model.RevenueBand{Min: 500000, Max: 2000000}

	a := ROI(rule, "52.16.0.0", band)
	assert.Equal(t, a, ROI(rule, "52.16.0.0", band))

	varied := false
	for i := range 20 {
		if ROI(rule, "52.16.0."+itoa(i+1), band) != a {
			varied = true
			break
		}
	}
	assert.True(t, varied, "different ips draw different estimates")
}

func TestIndustries(t *testing.T) {
	r := roster.Default()
	got := Industries(r, "major_carrier", "52.16.0.0", 91)
	require.Len(t, got, len(r.Policies))

	current := 0
	for _, ind := range got {
		if ind.Current {
			current++
			assert.Equal(t, "Commercial Aviation", ind.Industry)
			assert.Equal(t, 91, ind.Score)
			continue
		}
		assert.GreaterOrEqual(t, ind.Score, 0)
		assert.LessOrEqual(t, ind.Score, 100)
	}
	assert.Equal(t, 1, current)
	assert.Equal(t, got, Industries(r, "major_carrier", "52.16.0.0", 91))

	unknown := Industries(r, "no-such-category", "52.16.0.0", 91)
	for _, ind := range unknown {
		assert.False(t, ind.Current)
	}
}

func TestEnrich_TierProportionsAcrossSeeds(t *testing.T) {
	r := roster.Default()
	e := NewEnricher(r)
	c := model.CandidateContact{Name: "Jane Doe", Title: "VP Operations", Seniority: model.SeniorityVP}
	const calls = 10000

	for _, category := range []string{"flagship_manufacturer", "major_carrier", "specialty_manufacturer", "generic"} {
		t.Run(category, func(t *testing.T) {
			policy := r.Policy(category)
			tiers := map[model.MatchTier]int{}
			verified := 0
			for i := range calls {
				ip := "10." + itoa(i/65536) + "." + itoa(i/256%256) + "." + itoa(i%256)
				got := e.Enrich(c, policy, "example.com", "", category, ip, c.Name, "0")
				tiers[got.MatchTier]++
				if got.Verified() {
					verified++
				}
			}
			for _, tier := range model.MatchTiers {
				assert.InDelta(t, policy.Tiers.Probability(tier), float64(tiers[tier])/calls, 0.05, "tier %s", tier)
			}
			assert.InDelta(t, policy.VerifiedProbability, float64(verified)/calls, 0.05)
		})
	}
}
