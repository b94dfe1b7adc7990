package notion

import (
	"context"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visitor-leads/internal/model"
)

func testContact(name, email string) model.EnrichedContact {
	return model.EnrichedContact{
		CandidateContact:   model.CandidateContact{Name: name, Title: "Chief Executive Officer", Seniority: model.SeniorityCLevel, Department: "Executive"},
		ID:                 "ZI-00042",
		Email:              email,
		Phone:              "+1-312-544-1234",
		LinkedIn:           "linkedin.com/in/davecalhoun",
		ConfidenceScore:    94,
		LastUpdated:        model.NewDate(time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC)),
		VerificationStatus: model.VerificationVerified,
		MatchTier:          model.MatchTierFull,
		MatchConfidence:    97,
	}
}

func testLead(contacts ...model.EnrichedContact) model.Lead {
	return model.Lead{
		ID: "lead-1",
		IP: "52.16.0.0",
		Result: model.LeadResult{
			Organization: "The Boeing Company",
			Company:      model.CompanyProfile{Name: "The Boeing Company"},
			Contacts:     contacts,
			Score:        model.LeadScore{Priority: "PLATINUM"},
		},
	}
}

func TestContactProperties(t *testing.T) {
	l := testLead(testContact("Dave Calhoun", "dave.calhoun@boeing.com"))
	props := ContactProperties(l, l.Result.Contacts[0])

	title, ok := props[PropName].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Dave Calhoun", title.Title[0].Text.Content)

	email, ok := props[PropEmail].(notionapi.EmailProperty)
	require.True(t, ok)
	assert.Equal(t, "dave.calhoun@boeing.com", email.Email)

	conf, ok := props[PropConfidence].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.InDelta(t, 94.0, conf.Number, 0.001)

	verified, ok := props[PropVerified].(notionapi.CheckboxProperty)
	require.True(t, ok)
	assert.True(t, verified.Checkbox)

	tier, ok := props[PropMatchTier].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "FullMatch", tier.Select.Name)

	li, ok := props[PropLinkedIn].(notionapi.URLProperty)
	require.True(t, ok)
	assert.Equal(t, "https://linkedin.com/in/davecalhoun", li.URL)

	date, ok := props[PropUpdated].(notionapi.DateProperty)
	require.True(t, ok)
	assert.Equal(t, "2025-01-22", time.Time(*date.Date.Start).Format("2006-01-02"))

	company, ok := props[PropCompany].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "The Boeing Company", company.RichText[0].Text.Content)

	priority, ok := props[PropPriority].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "PLATINUM", priority.Select.Name)
}

func TestExportContacts(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	leads := []model.Lead{
		testLead(testContact("Dave Calhoun", "dave.calhoun@boeing.com"), testContact("Brian West", "brian.west@boeing.com")),
		testLead(testContact("Dave Calhoun", "dave.calhoun@boeing.com")),
	}

	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return req.Parent.DatabaseID == notionapi.DatabaseID("db-leads")
	})).Return(&notionapi.Page{ID: "page"}, nil).Twice()

	res, err := ExportContacts(ctx, mc, "db-leads", leads, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)
	mc.AssertExpectations(t)
}

func TestExportContacts_SkipExisting(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-leads", mock.Anything).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			{ID: "p1", Properties: notionapi.Properties{PropEmail: &notionapi.EmailProperty{Email: "dave.calhoun@boeing.com"}}},
		},
	}, nil).Once()
	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		e, ok := req.Properties[PropEmail].(notionapi.EmailProperty)
		return ok && e.Email == "brian.west@boeing.com"
	})).Return(&notionapi.Page{ID: "page"}, nil).Once()

	leads := []model.Lead{
		testLead(testContact("Dave Calhoun", "dave.calhoun@boeing.com"), testContact("Brian West", "brian.west@boeing.com")),
	}
	res, err := ExportContacts(ctx, mc, "db-leads", leads, ExportOptions{SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	mc.AssertExpectations(t)
}

func TestExportContacts_CreateError(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("CreatePage", ctx, mock.Anything).Return(nil, assert.AnError).Once()

	res, err := ExportContacts(ctx, mc, "db-leads", []model.Lead{testLead(testContact("Dave Calhoun", "dave.calhoun@boeing.com"))}, ExportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion: create contact page ZI-00042")
	assert.Equal(t, 0, res.Created)
}

func TestExportContacts_Cancelled(t *testing.T) {
	mc := new(MockClient)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExportContacts(ctx, mc, "db-leads", []model.Lead{testLead(testContact("A B", "a@b.com"))}, ExportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	mc.AssertExpectations(t)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://linkedin.com/in/x", normalizeURL("linkedin.com/in/x"))
	assert.Equal(t, "http://a.com", normalizeURL("http://a.com"))
	assert.Equal(t, "", normalizeURL("  "))
}
