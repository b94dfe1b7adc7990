package pipeline

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/visitor-leads/internal/fetcher"
	"github.com/sells-group/visitor-leads/internal/model"
)

// IPColumn is the required visitor CSV column.
const IPColumn = "ip_address"

// organizationColumns are read, in order, as the organization in offline
// mode.
var organizationColumns = []string{"organization", "visitor_type", "company"}

// VisitorRow is one parsed visitor CSV row.
type VisitorRow struct {
	Line         int    `json:"line"`
	IP           string `json:"ip"`
	Organization string `json:"organization,omitempty"`
}

// ReadVisitors parses a visitor CSV. Rows without an IP are skipped. A
// positive limit stops after that many rows.
func ReadVisitors(ctx context.Context, r io.Reader, limit int) ([]VisitorRow, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records, errs := fetcher.StreamRecords(ctx, r, IPColumn)

	var rows []VisitorRow
	for rec := range records {
		ip := rec.Get(IPColumn)
		if ip == "" {
			zap.L().Debug("pipeline: skipping row without ip", zap.Int("line", rec.Line))
			continue
		}
		rows = append(rows, VisitorRow{
			Line:         rec.Line,
			IP:           ip,
			Organization: rec.Get(organizationColumns...),
		})
		if limit > 0 && len(rows) >= limit {
			cancel()
			for range records {
			}
			return rows, nil
		}
	}
	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "pipeline: read visitors")
	}
	return rows, nil
}

// BatchOptions configures Batch.
type BatchOptions struct {
	Concurrency int
	// Offline skips geolocation and uses each row's organization column.
	Offline bool
}

// Failure records a visitor that could not be processed.
type Failure struct {
	Line  int    `json:"line"`
	IP    string `json:"ip"`
	Error string `json:"error"`
}

// BatchResult holds the leads in input order plus any failures.
type BatchResult struct {
	Leads     []model.Lead `json:"leads"`
	Failures  []Failure    `json:"failures"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// Batch processes rows concurrently. Individual failures are logged and
// counted; only cancellation of ctx aborts the batch.
func (p *Pipeline) Batch(ctx context.Context, rows []VisitorRow, opts BatchOptions) (*BatchResult, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	leadSlots := make([]*model.Lead, len(rows))
	failSlots := make([]*Failure, len(rows))
	var succeeded, failed atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, row := range rows {
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}

			var lead *model.Lead
			var err error
			if opts.Offline {
				lead, err = p.ProcessVisitor(gCtx, model.Visitor{IP: row.IP, Organization: row.Organization})
			} else {
				lead, err = p.Process(gCtx, row.IP)
			}
			if err != nil {
				failed.Add(1)
				failSlots[i] = &Failure{Line: row.Line, IP: row.IP, Error: err.Error()}
				zap.L().Error("pipeline: visitor failed",
					zap.String("ip", row.IP),
					zap.Int("line", row.Line),
					zap.Error(err),
				)
				return nil
			}
			succeeded.Add(1)
			leadSlots[i] = lead
			return nil
		})
	}

	waitErr := g.Wait()

	res := &BatchResult{
		Leads:     make([]model.Lead, 0, len(rows)),
		Failures:  []Failure{},
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}
	for i := range rows {
		if leadSlots[i] != nil {
			res.Leads = append(res.Leads, *leadSlots[i])
		}
		if failSlots[i] != nil {
			res.Failures = append(res.Failures, *failSlots[i])
		}
	}

	zap.L().Info("pipeline: batch complete",
		zap.Int("total", len(rows)),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
	)

	if waitErr != nil {
		return res, eris.Wrap(waitErr, "pipeline: batch cancelled")
	}
	return res, nil
}
