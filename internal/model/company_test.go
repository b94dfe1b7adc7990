package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyProfileDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		website string
		want    string
	}{
		{"www.boeing.com", "boeing.com"},
		{"https://www.aa.com/", "aa.com"},
		{"lufthansa-technik.com", "lufthansa-technik.com"},
		{"http://rolls-royce.com/en/careers", "rolls-royce.com"},
		{"www.delta.com/us/en", "delta.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.website, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CompanyProfile{Website: tt.website}.Domain())
		})
	}
}

func TestSeniorityValid(t *testing.T) {
	t.Parallel()
	assert.True(t, SeniorityCLevel.Valid())
	assert.True(t, SeniorityManager.Valid())
	assert.False(t, Seniority("Intern").Valid())
}

func TestCandidateFirstLast(t *testing.T) {
	t.Parallel()

	first, last := CandidateContact{Name: "Kai-Stefan  Roepke"}.FirstLast()
	assert.Equal(t, "Kai-Stefan", first)
	assert.Equal(t, "Roepke", last)

	first, last = CandidateContact{Name: "Prince"}.FirstLast()
	assert.Equal(t, "Prince", first)
	assert.Empty(t, last)

	first, last = CandidateContact{}.FirstLast()
	assert.Empty(t, first)
	assert.Empty(t, last)
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	d := NewDate(time.Date(2025, 1, 14, 17, 30, 0, 0, time.UTC))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-14"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back.Time))

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"14/01/2025"`), &back))
}

func TestVisitorLocation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Chicago, United States", Visitor{City: "Chicago", Country: "United States"}.Location())
	assert.Equal(t, "Hamburg", Visitor{City: "Hamburg"}.Location())
	assert.Equal(t, "Germany", Visitor{Country: "Germany"}.Location())
	assert.False(t, Visitor{}.HasLocation())
	assert.True(t, Visitor{Latitude: 41.88, Longitude: -87.63}.HasLocation())
}
