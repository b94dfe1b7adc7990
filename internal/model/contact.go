package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Seniority is the coarse rank of a contact.
type Seniority string

const (
	SeniorityCLevel   Seniority = "C-Level"
	SeniorityVP       Seniority = "VP-Level"
	SeniorityDirector Seniority = "Director"
	SeniorityManager  Seniority = "Manager"
)

// Seniorities lists the tiers from most to least senior.
var Seniorities = []Seniority{SeniorityCLevel, SeniorityVP, SeniorityDirector, SeniorityManager}

// Valid reports whether s is one of the known seniority tiers.
func (s Seniority) Valid() bool {
	switch s {
	case SeniorityCLevel, SeniorityVP, SeniorityDirector, SeniorityManager:
		return true
	}
	return false
}

// MatchTier is the synthetic claim of how well a contact matched the
// commercial contact database.
type MatchTier string

const (
	MatchTierFull     MatchTier = "FullMatch"
	MatchTierPartial  MatchTier = "PartialMatch"
	MatchTierNotFound MatchTier = "NotFound"
)

// MatchTiers lists the tiers in draw order.
var MatchTiers = []MatchTier{MatchTierFull, MatchTierPartial, MatchTierNotFound}

// VerificationStatus marks whether a contact claims to be verified.
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "Verified"
	VerificationPending  VerificationStatus = "Pending"
)

// CandidateContact is immutable roster data registered against a company.
type CandidateContact struct {
	Name       string    `json:"name" yaml:"name"`
	Title      string    `json:"title" yaml:"title"`
	Seniority  Seniority `json:"seniority" yaml:"seniority"`
	Department string    `json:"department" yaml:"department"`
}

// FirstLast splits a display name into its first and last tokens.
// Single-token names return the token as first and an empty last.
func (c CandidateContact) FirstLast() (string, string) {
	parts := strings.Fields(c.Name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

// EnrichedContact is a candidate contact with synthetic enrichment metadata.
type EnrichedContact struct {
	CandidateContact
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone"`
	LinkedIn           string             `json:"linkedin"`
	ConfidenceScore    int                `json:"confidence_score"`
	LastUpdated        Date               `json:"last_updated"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	MatchTier          MatchTier          `json:"match_tier"`
	MatchConfidence    int                `json:"match_confidence"`
}

// Verified reports whether the contact claims verification.
func (c EnrichedContact) Verified() bool {
	return c.VerificationStatus == VerificationVerified
}

const dateLayout = "2006-01-02"

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, eris.Wrapf(err, "model: parse date %q", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
