package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visitor-leads/internal/model"
)

// LeadObject is the Salesforce sObject name for leads.
const LeadObject = "Lead"

// emailQueryChunk bounds the IN clause of the duplicate lookup.
const emailQueryChunk = 100

// existingLead is the projection used for duplicate detection.
type existingLead struct {
	ID    string `json:"Id" salesforce:"Id"`
	Email string `json:"Email" salesforce:"Email"`
}

// PushOptions configures a lead push.
type PushOptions struct {
	// LeadSource is written to the LeadSource picklist.
	LeadSource string
	// SkipExisting drops contacts whose email already exists as a Lead.
	SkipExisting bool
}

// PushResult summarizes a lead push.
type PushResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Rating maps a lead score onto the Lead Rating picklist.
func Rating(score int) string {
	switch {
	case score >= 90:
		return "Hot"
	case score >= 75:
		return "Warm"
	default:
		return "Cold"
	}
}

// LeadRecord maps one enriched contact of a processed visitor to Lead fields.
func LeadRecord(l model.Lead, c model.EnrichedContact, source string) map[string]any {
	first, last := c.FirstLast()
	if last == "" {
		// LastName is required on Lead.
		first, last = "", first
	}
	r := l.Result
	rec := map[string]any{
		"FirstName":   first,
		"LastName":    last,
		"Company":     r.Company.Name,
		"Title":       c.Title,
		"Email":       c.Email,
		"Phone":       c.Phone,
		"Industry":    r.Company.Industry,
		"Website":     r.Company.Website,
		"Rating":      Rating(r.Score.Score),
		"Description": fmt.Sprintf("%s lead (%s, score %d). Visitor IP %s. Match %s at %d%%.", r.Score.Label, r.Score.Priority, r.Score.Score, l.IP, c.MatchTier, c.MatchConfidence),
	}
	if source != "" {
		rec["LeadSource"] = source
	}
	if l.Visitor.City != "" {
		rec["City"] = l.Visitor.City
	}
	if l.Visitor.Country != "" {
		rec["Country"] = l.Visitor.Country
	}
	return rec
}

// FindExistingEmails returns the subset of emails that already exist on
// Lead records, lower-cased.
func FindExistingEmails(ctx context.Context, c Client, emails []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for start := 0; start < len(emails); start += emailQueryChunk {
		end := min(start+emailQueryChunk, len(emails))
		quoted := make([]string, 0, end-start)
		for _, e := range emails[start:end] {
			quoted = append(quoted, "'"+escapeSoql(e)+"'")
		}
		soql := fmt.Sprintf("SELECT Id, Email FROM Lead WHERE Email IN (%s)", strings.Join(quoted, ", "))

		var rows []existingLead
		if err := c.Query(ctx, soql, &rows); err != nil {
			return nil, eris.Wrap(err, "sf: find existing leads")
		}
		for _, row := range rows {
			found[strings.ToLower(row.Email)] = true
		}
	}
	return found, nil
}

// PushLeads creates one Lead per contact across leads, in batches of 200.
// Contacts repeated within the push are sent once; contacts without an
// email cannot be matched and are always sent. A failed batch is recorded
// and the push continues.
func PushLeads(ctx context.Context, c Client, leads []model.Lead, opts PushOptions) (*PushResult, error) {
	res := &PushResult{}

	var (
		records []map[string]any
		keys    []string
		emails  []string
		seen    = make(map[string]bool)
	)
	for _, l := range leads {
		for _, ct := range l.Result.Contacts {
			key := strings.ToLower(ct.Email)
			if key != "" {
				if seen[key] {
					res.Skipped++
					continue
				}
				seen[key] = true
				emails = append(emails, ct.Email)
			}
			records = append(records, LeadRecord(l, ct, opts.LeadSource))
			keys = append(keys, key)
		}
	}

	if opts.SkipExisting && len(emails) > 0 {
		existing, err := FindExistingEmails(ctx, c, emails)
		if err != nil {
			return res, err
		}
		kept := records[:0]
		for i, rec := range records {
			if keys[i] != "" && existing[keys[i]] {
				res.Skipped++
				continue
			}
			kept = append(kept, rec)
		}
		records = kept
	}

	for start := 0; start < len(records); start += maxBatchSize {
		if err := ctx.Err(); err != nil {
			return res, eris.Wrap(err, "sf: push leads")
		}
		end := min(start+maxBatchSize, len(records))
		batch := records[start:end]

		results, err := c.InsertCollection(ctx, LeadObject, batch)
		if err != nil {
			zap.L().Warn("salesforce: lead batch failed",
				zap.Int("start", start), zap.Int("end", end), zap.Error(err))
			res.Failed += len(batch)
			res.Errors = append(res.Errors, fmt.Sprintf("batch %d-%d: %v", start, end, err))
			continue
		}
		for _, r := range results {
			if r.Success {
				res.Created++
				continue
			}
			res.Failed++
			res.Errors = append(res.Errors, strings.Join(r.Errors, "; "))
		}
	}

	zap.L().Info("salesforce: leads pushed",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
