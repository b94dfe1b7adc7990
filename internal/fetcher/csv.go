package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one CSV data row keyed by lower-cased, trimmed header name.
type Record struct {
	Line   int
	Fields map[string]string
}

// Get returns the first non-empty value among keys.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := r.Fields[k]; v != "" {
			return v
		}
	}
	return ""
}

// readHeader reads the header row and normalizes the column names.
func readHeader(cr *csv.Reader) ([]string, error) {
	header, err := cr.Read()
	if err == io.EOF {
		return nil, eris.New("fetcher: csv is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: csv header")
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	return header, nil
}

// StreamRecords reads a headed CSV and sends each data row on the returned
// channel. Both channels close when the input ends, fails, or ctx is done.
// The header must contain every column in required.
func StreamRecords(ctx context.Context, r io.Reader, required ...string) (<-chan Record, <-chan error) {
	out := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true

		header, err := readHeader(cr)
		if err != nil {
			errCh <- err
			return
		}
		for _, col := range required {
			if !slices.Contains(header, col) {
				errCh <- eris.Errorf("fetcher: csv missing required column %q", col)
				return
			}
		}

		line := 1
		for {
			row, err := cr.Read()
			if err == io.EOF {
				return
			}
			line++
			if err != nil {
				errCh <- eris.Wrapf(err, "fetcher: csv line %d", line)
				return
			}

			rec := Record{Line: line, Fields: make(map[string]string, len(header))}
			for i, col := range header {
				if i < len(row) {
					rec.Fields[col] = strings.TrimSpace(row[i])
				}
			}

			select {
			case out <- rec:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "fetcher: csv cancelled")
				return
			}
		}
	}()

	return out, errCh
}
