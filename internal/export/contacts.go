// Package export renders processed leads as CSV, XLSX, and GeoJSON.
package export

import (
	"strconv"
	"strings"

	"github.com/sells-group/visitor-leads/internal/model"
)

// ContactHeader is the contact table column set.
var ContactHeader = []string{
	"Contact ID", "Full Name", "Job Title", "Company", "Work Email",
	"Direct Phone", "Department", "Seniority", "Location", "Verified",
	"Last Updated", "Confidence Score", "Match Tier", "Match Confidence",
}

// ContactFilter narrows exported contacts. Empty fields match everything.
type ContactFilter struct {
	// Name is a case-insensitive substring of the full name.
	Name       string
	Department string
	Seniority  model.Seniority
}

// Match reports whether c passes the filter.
func (f ContactFilter) Match(c model.EnrichedContact) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Department != "" && !strings.EqualFold(c.Department, f.Department) {
		return false
	}
	if f.Seniority != "" && c.Seniority != f.Seniority {
		return false
	}
	return true
}

// ContactRows flattens the contacts of leads into table rows.
func ContactRows(leads []model.Lead, f ContactFilter) [][]string {
	var rows [][]string
	for _, l := range leads {
		location := l.Visitor.Location()
		for _, c := range l.Result.Contacts {
			if !f.Match(c) {
				continue
			}
			rows = append(rows, []string{
				c.ID,
				c.Name,
				c.Title,
				l.Result.Company.Name,
				c.Email,
				c.Phone,
				c.Department,
				string(c.Seniority),
				location,
				string(c.VerificationStatus),
				c.LastUpdated.String(),
				strconv.Itoa(c.ConfidenceScore) + "%",
				string(c.MatchTier),
				strconv.Itoa(c.MatchConfidence) + "%",
			})
		}
	}
	return rows
}

// FileName builds a download file name from a company name.
func FileName(prefix, company, ext string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(company) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '_' || r == '.',
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "leads"
	}
	return prefix + "_" + name + "." + ext
}
