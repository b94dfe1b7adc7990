// Package notion exports visitor contacts as pages in a Notion database.
package notion

import (
	"context"
	"errors"
	"net/http"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// defaultRatePerSecond is Notion's documented average request limit.
const defaultRatePerSecond = 3

// ErrDatabaseNotFound is returned when the lead database does not exist or
// is not shared with the integration.
var ErrDatabaseNotFound = eris.New("notion: lead database not found")

// Client is the subset of the Notion API the contact export needs.
type Client interface {
	QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

type clientConfig struct {
	limiter    *rate.Limiter
	httpClient *http.Client
	retries    int
}

// ClientOption configures NewClient.
type ClientOption func(*clientConfig)

// WithRateLimit sets the request rate. Zero or negative disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *clientConfig) {
		c.limiter = nil
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithRetries sets how many times a 429 response is retried after its
// Retry-After delay.
func WithRetries(n int) ClientOption {
	return func(c *clientConfig) {
		c.retries = n
	}
}

type notionClient struct {
	api     *notionapi.Client
	limiter *rate.Limiter
}

// NewClient returns a Client for the integration token, limited to 3
// requests per second unless WithRateLimit says otherwise.
func NewClient(token string, opts ...ClientOption) Client {
	cfg := clientConfig{
		limiter: rate.NewLimiter(defaultRatePerSecond, 1),
		retries: 3,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	apiOpts := []notionapi.ClientOption{notionapi.WithRetry(cfg.retries)}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, notionapi.WithHTTPClient(cfg.httpClient))
	}
	return &notionClient{
		api:     notionapi.NewClient(notionapi.Token(token), apiOpts...),
		limiter: cfg.limiter,
	}
}

func (c *notionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "notion: rate limit")
	}
	return nil
}

func (c *notionClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, eris.Wrapf(apiError(err), "notion: query database %s", dbID)
	}
	return resp, nil
}

func (c *notionClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	page, err := c.api.Page.Create(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(apiError(err), "notion: create page in %s", req.Parent.DatabaseID)
	}
	return page, nil
}

// apiError maps a 404 from the API onto ErrDatabaseNotFound.
func apiError(err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return eris.Wrap(ErrDatabaseNotFound, apiErr.Message)
	}
	return err
}
