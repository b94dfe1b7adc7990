package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visitor-leads/internal/model"
)

// WriteContactsCSV writes the filtered contacts of leads as CSV.
func WriteContactsCSV(w io.Writer, leads []model.Lead, f ContactFilter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ContactHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	if err := cw.WriteAll(ContactRows(leads, f)); err != nil {
		return eris.Wrap(err, "export: write csv rows")
	}
	return nil
}
