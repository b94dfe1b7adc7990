// Package store keeps the history of processed visitors for the current
// process.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visitor-leads/internal/model"
)

// ErrNotFound is returned when no lead exists for an IP.
var ErrNotFound = eris.New("store: lead not found")

// LeadFilter narrows ListLeads.
type LeadFilter struct {
	Category    string `json:"category,omitempty"`
	MatchedOnly bool   `json:"matched_only,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// Store is the lead history. Leads are keyed by visitor IP: saving an IP
// again replaces its record in place.
type Store interface {
	SaveLead(ctx context.Context, visitor model.Visitor, result model.LeadResult) (*model.Lead, error)
	GetLead(ctx context.Context, ip string) (*model.Lead, error)
	// ListLeads returns leads in first-seen order.
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	CountLeads(ctx context.Context) (int, error)
	ClearLeads(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
