package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// queryPageSize is the largest page the query endpoint returns.
const queryPageSize = 100

// EachPage walks every page matching query, following cursors until the
// database is exhausted or fn returns an error. query may be nil.
func EachPage(ctx context.Context, c Client, dbID string, query *notionapi.DatabaseQueryRequest, fn func(notionapi.Page) error) error {
	req := notionapi.DatabaseQueryRequest{PageSize: queryPageSize}
	if query != nil {
		req.Filter = query.Filter
		req.Sorts = query.Sorts
		if query.PageSize > 0 {
			req.PageSize = query.PageSize
		}
	}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "notion: query cancelled")
		}
		resp, err := c.QueryDatabase(ctx, dbID, &req)
		if err != nil {
			return eris.Wrapf(err, "notion: query page %d", page)
		}
		for _, p := range resp.Results {
			if err := fn(p); err != nil {
				return err
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return nil
		}
		req.StartCursor = resp.NextCursor
	}
}

// ExistingEmails returns the lower-cased Email property of every contact
// page in the database.
func ExistingEmails(ctx context.Context, c Client, dbID string) (map[string]bool, error) {
	found := make(map[string]bool)
	err := EachPage(ctx, c, dbID, nil, func(p notionapi.Page) error {
		if e := pageEmail(p); e != "" {
			found[strings.ToLower(e)] = true
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "notion: query existing contacts")
	}
	return found, nil
}

func pageEmail(p notionapi.Page) string {
	switch prop := p.Properties[PropEmail].(type) {
	case *notionapi.EmailProperty:
		return prop.Email
	case notionapi.EmailProperty:
		return prop.Email
	}
	return ""
}
