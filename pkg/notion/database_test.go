package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *MockClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func collectIDs(t *testing.T, c Client, query *notionapi.DatabaseQueryRequest) ([]notionapi.ObjectID, error) {
	t.Helper()
	var ids []notionapi.ObjectID
	err := EachPage(context.Background(), c, "db-1", query, func(p notionapi.Page) error {
		ids = append(ids, p.ID)
		return nil
	})
	return ids, err
}

func TestEachPage_FollowsCursor(t *testing.T) {
	mc := new(MockClient)

	mc.On("QueryDatabase", mock.Anything, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == "" && req.PageSize == queryPageSize
	})).Return(&notionapi.DatabaseQueryResponse{
		Results:    []notionapi.Page{{ID: "p1"}, {ID: "p2"}},
		HasMore:    true,
		NextCursor: notionapi.Cursor("cursor-abc"),
	}, nil).Once()
	mc.On("QueryDatabase", mock.Anything, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == notionapi.Cursor("cursor-abc")
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{{ID: "p3"}},
	}, nil).Once()

	ids, err := collectIDs(t, mc, nil)
	require.NoError(t, err)
	assert.Equal(t, []notionapi.ObjectID{"p1", "p2", "p3"}, ids)
	mc.AssertExpectations(t)
}

func TestEachPage_HasMoreWithoutCursorStops(t *testing.T) {
	mc := new(MockClient)
	mc.On("QueryDatabase", mock.Anything, "db-1", mock.Anything).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{{ID: "p1"}},
		HasMore: true,
	}, nil).Once()

	ids, err := collectIDs(t, mc, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	mc.AssertExpectations(t)
}

func TestEachPage_QueryOptions(t *testing.T) {
	mc := new(MockClient)
	filter := notionapi.PropertyFilter{
		Property: PropSeniority,
		Select:   &notionapi.SelectFilterCondition{Equals: "C-Level"},
	}

	mc.On("QueryDatabase", mock.Anything, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		pf, ok := req.Filter.(notionapi.PropertyFilter)
		return ok && pf.Property == PropSeniority && req.PageSize == 25
	})).Return(&notionapi.DatabaseQueryResponse{Results: []notionapi.Page{{ID: "p1"}}}, nil).Once()

	ids, err := collectIDs(t, mc, &notionapi.DatabaseQueryRequest{Filter: filter, PageSize: 25})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	mc.AssertExpectations(t)
}

func TestEachPage_Errors(t *testing.T) {
	t.Run("query error names the page", func(t *testing.T) {
		mc := new(MockClient)
		mc.On("QueryDatabase", mock.Anything, "db-1", mock.Anything).Return(nil, assert.AnError).Once()

		_, err := collectIDs(t, mc, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "notion: query page 1")
	})

	t.Run("callback error stops the walk", func(t *testing.T) {
		mc := new(MockClient)
		mc.On("QueryDatabase", mock.Anything, "db-1", mock.Anything).Return(&notionapi.DatabaseQueryResponse{
			Results:    []notionapi.Page{{ID: "p1"}, {ID: "p2"}},
			HasMore:    true,
			NextCursor: "next",
		}, nil).Once()

		seen := 0
		err := EachPage(context.Background(), mc, "db-1", nil, func(notionapi.Page) error {
			seen++
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 1, seen)
		mc.AssertExpectations(t)
	})

	t.Run("cancelled context", func(t *testing.T) {
		mc := new(MockClient)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := EachPage(ctx, mc, "db-1", nil, func(notionapi.Page) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
		mc.AssertNotCalled(t, "QueryDatabase", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExistingEmails(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-leads", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.Filter == nil && req.StartCursor == ""
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			{ID: "p1", Properties: notionapi.Properties{PropEmail: &notionapi.EmailProperty{Email: "Dave.Calhoun@boeing.com"}}},
			{ID: "p2", Properties: notionapi.Properties{PropName: &notionapi.TitleProperty{}}},
		},
		HasMore:    true,
		NextCursor: notionapi.Cursor("cursor-2"),
	}, nil).Once()
	mc.On("QueryDatabase", ctx, "db-leads", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == notionapi.Cursor("cursor-2")
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			{ID: "p3", Properties: notionapi.Properties{PropEmail: notionapi.EmailProperty{Email: "brian.west@boeing.com"}}},
		},
	}, nil).Once()

	found, err := ExistingEmails(ctx, mc, "db-leads")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"dave.calhoun@boeing.com": true,
		"brian.west@boeing.com":   true,
	}, found)
	mc.AssertExpectations(t)
}

func TestExistingEmails_Error(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-err", mock.Anything).Return(nil, assert.AnError).Once()

	found, err := ExistingEmails(ctx, mc, "db-err")
	assert.Error(t, err)
	assert.Nil(t, found)
	assert.Contains(t, err.Error(), "notion: query existing contacts")
}
