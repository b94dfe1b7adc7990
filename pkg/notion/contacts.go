package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visitor-leads/internal/model"
)

// Property names of the lead database.
const (
	PropName       = "Name"
	PropEmail      = "Email"
	PropPhone      = "Phone"
	PropTitle      = "Title"
	PropCompany    = "Company"
	PropDepartment = "Department"
	PropSeniority  = "Seniority"
	PropConfidence = "Confidence"
	PropVerified   = "Verified"
	PropMatchTier  = "Match Tier"
	PropUpdated    = "Last Updated"
	PropLinkedIn   = "LinkedIn"
	PropPriority   = "Priority"
	PropVisitorIP  = "Visitor IP"
)

// ExportOptions configures a contact export.
type ExportOptions struct {
	// SkipExisting drops contacts whose email already has a page.
	SkipExisting bool
}

// ExportResult summarizes a contact export.
type ExportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}

func selectOption(s string) notionapi.SelectProperty {
	return notionapi.SelectProperty{
		Type:   notionapi.PropertyTypeSelect,
		Select: notionapi.Option{Name: s},
	}
}

// ContactProperties maps one enriched contact of a processed visitor to
// page properties.
func ContactProperties(l model.Lead, c model.EnrichedContact) notionapi.Properties {
	updated := notionapi.Date(c.LastUpdated.Time)
	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: c.Name}},
			},
		},
		PropEmail: notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: c.Email,
		},
		PropPhone: notionapi.PhoneNumberProperty{
			Type:        notionapi.PropertyTypePhoneNumber,
			PhoneNumber: c.Phone,
		},
		PropTitle:      richText(c.Title),
		PropCompany:    richText(l.Result.Company.Name),
		PropDepartment: selectOption(c.Department),
		PropSeniority:  selectOption(string(c.Seniority)),
		PropConfidence: notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(c.ConfidenceScore),
		},
		PropVerified: notionapi.CheckboxProperty{
			Type:     notionapi.PropertyTypeCheckbox,
			Checkbox: c.Verified(),
		},
		PropMatchTier: selectOption(string(c.MatchTier)),
		PropUpdated: notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &updated},
		},
		PropVisitorIP: richText(l.IP),
	}
	if c.LinkedIn != "" {
		props[PropLinkedIn] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  normalizeURL(c.LinkedIn),
		}
	}
	if p := l.Result.Score.Priority; p != "" {
		props[PropPriority] = selectOption(p)
	}
	return props
}

// ExportContacts creates one page per contact across leads in dbID.
// Contacts repeated within the export are written once.
func ExportContacts(ctx context.Context, c Client, dbID string, leads []model.Lead, opts ExportOptions) (*ExportResult, error) {
	res := &ExportResult{}

	seen := make(map[string]bool)
	if opts.SkipExisting {
		existing, err := ExistingEmails(ctx, c, dbID)
		if err != nil {
			return res, err
		}
		seen = existing
	}

	for _, l := range leads {
		for _, ct := range l.Result.Contacts {
			if ctx.Err() != nil {
				return res, eris.Wrap(ctx.Err(), "notion: export contacts cancelled")
			}
			key := strings.ToLower(ct.Email)
			if seen[key] {
				res.Skipped++
				continue
			}

			req := &notionapi.PageCreateRequest{
				Parent: notionapi.Parent{
					Type:       notionapi.ParentTypeDatabaseID,
					DatabaseID: notionapi.DatabaseID(dbID),
				},
				Properties: ContactProperties(l, ct),
			}
			if _, err := c.CreatePage(ctx, req); err != nil {
				return res, eris.Wrap(err, fmt.Sprintf("notion: create contact page %s", ct.ID))
			}
			seen[key] = true
			res.Created++
		}
	}

	zap.L().Info("notion: contacts exported",
		zap.String("database", dbID),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// normalizeURL prepends https:// when the value has no scheme.
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}
