// Package pipeline runs visitors through geolocation, lead resolution, and
// the history store, one at a time or as a bounded-concurrency batch.
package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visitor-leads/internal/leads"
	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/store"
)

// Locator geolocates a visitor IP. ipgeo.Client satisfies it.
type Locator interface {
	Locate(ctx context.Context, ip string) (*model.Visitor, error)
}

// Pipeline wires a locator, a resolver, and a store.
type Pipeline struct {
	locator  Locator
	resolver *leads.Resolver
	store    store.Store
}

// New creates a Pipeline. locator may be nil for offline use; then only
// ProcessVisitor works.
func New(locator Locator, resolver *leads.Resolver, st store.Store) *Pipeline {
	return &Pipeline{locator: locator, resolver: resolver, store: st}
}

// Resolver returns the underlying resolver.
func (p *Pipeline) Resolver() *leads.Resolver {
	return p.resolver
}

// Process geolocates ip, resolves the organization, and records the lead.
func (p *Pipeline) Process(ctx context.Context, ip string) (*model.Lead, error) {
	ip = strings.TrimSpace(ip)
	if p.locator == nil {
		return nil, eris.New("pipeline: no locator configured")
	}

	v, err := p.locator.Locate(ctx, ip)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: locate %s", ip)
	}
	return p.ProcessVisitor(ctx, *v)
}

// ProcessVisitor resolves an already-located visitor and records the lead.
func (p *Pipeline) ProcessVisitor(ctx context.Context, v model.Visitor) (*model.Lead, error) {
	result := p.resolver.Resolve(v.Organization, v.IP)

	zap.L().Info("pipeline: resolved visitor",
		zap.String("ip", v.IP),
		zap.String("organization", v.Organization),
		zap.Bool("matched", result.Matched),
		zap.String("category", result.Category),
		zap.Int("contacts", len(result.Contacts)),
	)

	lead, err := p.store.SaveLead(ctx, v, result)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: save lead %s", v.IP)
	}
	return lead, nil
}
