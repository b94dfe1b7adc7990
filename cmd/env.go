package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visitor-leads/internal/fetcher"
	"github.com/sells-group/visitor-leads/internal/leads"
	"github.com/sells-group/visitor-leads/internal/pipeline"
	"github.com/sells-group/visitor-leads/internal/resilience"
	"github.com/sells-group/visitor-leads/internal/roster"
	"github.com/sells-group/visitor-leads/internal/store"
	"github.com/sells-group/visitor-leads/pkg/ipgeo"
)

const userAgent = "visitor-leads/1.0"

// leadsEnv holds the roster, store, and pipeline shared by the commands.
type leadsEnv struct {
	Roster   *roster.Roster
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *leadsEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// loadRoster reads the configured roster source.
func loadRoster(ctx context.Context) (*roster.Roster, error) {
	dl := fetcher.New(fetcher.Options{
		UserAgent:     userAgent,
		Timeout:       seconds(cfg.Roster.TimeoutSecs),
		RatePerSecond: cfg.Roster.RatePerSecond,
		MaxRetries:    cfg.Roster.MaxRetries,
	})
	r, err := roster.Load(ctx, cfg.Roster.Source, dl)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("roster loaded",
		zap.String("source", cfg.Roster.Source),
		zap.Int("companies", len(r.Companies)),
	)
	return r, nil
}

// newLocator builds the ip-api client from the geo config.
func newLocator() ipgeo.Client {
	retry := resilience.FromSettings(cfg.Geo.MaxRetries+1, cfg.Geo.InitialBackoffMs, cfg.Geo.MaxBackoffMs)
	retry.OnRetry = resilience.RetryLogger("ipgeo", "locate")

	return ipgeo.NewClient(
		ipgeo.WithBaseURL(cfg.Geo.BaseURL),
		ipgeo.WithHTTPClient(&http.Client{Timeout: seconds(cfg.Geo.TimeoutSecs)}),
		ipgeo.WithRateLimit(cfg.Geo.RatePerSecond),
		ipgeo.WithRetry(retry),
	)
}

// initEnv loads the roster, opens and migrates the store, and builds the
// pipeline. With online false the pipeline has no locator. Callers should
// defer env.Close().
func initEnv(ctx context.Context, online bool) (*leadsEnv, error) {
	r, err := loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLite(cfg.Store.DSN)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var loc pipeline.Locator
	if online {
		loc = newLocator()
	}

	return &leadsEnv{
		Roster:   r,
		Store:    st,
		Pipeline: pipeline.New(loc, leads.NewResolver(r), st),
	}, nil
}
