// Package ipgeo resolves visitor IP addresses to an organization and
// location using the ip-api.com JSON endpoint.
package ipgeo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/resilience"
)

// DefaultBaseURL is the free ip-api.com endpoint.
const DefaultBaseURL = "http://ip-api.com/json"

const unknown = "Unknown"

var (
	// ErrNoOrganization means the lookup succeeded but named no organization.
	ErrNoOrganization = eris.New("ipgeo: no organization for ip")
	// ErrLookupFailed means ip-api answered status=fail (private or
	// reserved ranges, malformed addresses).
	ErrLookupFailed = eris.New("ipgeo: lookup failed")
)

// Client geolocates IP addresses.
type Client interface {
	Locate(ctx context.Context, ip string) (*model.Visitor, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL points the client at another endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second. ip-api's free tier allows 45 per
// minute.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates an ip-api client with a 10s timeout and a 0.75 req/s
// limit.
func NewClient(opts ...Option) Client {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("ipgeo", "locate")

	c := &httpClient{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(0.75, 1),
		retry:   retry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Query      string  `json:"query"`
	Org        string  `json:"org"`
	ISP        string  `json:"isp"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
	Timezone   string  `json:"timezone"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Locate looks up ip. It returns ErrLookupFailed when the service rejects
// the address and ErrNoOrganization when no organization is known.
func (c *httpClient) Locate(ctx context.Context, ip string) (*model.Visitor, error) {
	if ip == "" {
		return nil, eris.Wrap(ErrLookupFailed, "ipgeo: empty ip")
	}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*apiResponse, error) {
		return c.fetch(ctx, ip)
	})
	if err != nil {
		return nil, err
	}

	if resp.Status != "" && resp.Status != "success" {
		return nil, eris.Wrapf(ErrLookupFailed, "%s: %s", ip, resp.Message)
	}
	if resp.Org == "" {
		return nil, eris.Wrapf(ErrNoOrganization, "%s", ip)
	}

	v := &model.Visitor{
		IP:           ip,
		Organization: resp.Org,
		City:         orUnknown(resp.City),
		Region:       orUnknown(resp.RegionName),
		Country:      orUnknown(resp.Country),
		ISP:          orUnknown(resp.ISP),
		Timezone:     orUnknown(resp.Timezone),
		Latitude:     resp.Lat,
		Longitude:    resp.Lon,
	}
	zap.L().Debug("ipgeo: located",
		zap.String("ip", ip),
		zap.String("organization", v.Organization),
		zap.String("country", v.Country),
	)
	return v, nil
}

func (c *httpClient) fetch(ctx context.Context, ip string) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ipgeo: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(ip), nil)
	if err != nil {
		return nil, eris.Wrap(err, "ipgeo: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ipgeo: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ipgeo: read response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("ipgeo: unexpected status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "ipgeo: decode response")
	}
	return &out, nil
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
