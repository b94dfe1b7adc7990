package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/visitor-leads/internal/model"
)

// Sheet names in the workbook.
const (
	LeadsSheet    = "Leads"
	ContactsSheet = "Contacts"
)

var leadHeader = []string{
	"IP Address", "Organization", "Company", "Industry", "Location",
	"Category", "Lead Label", "Priority", "Score",
	"Revenue Min", "Revenue Max", "Contacts", "Verified", "C-Level", "Avg Confidence",
	"Conversion Rate", "Expected Value", "Cost Per Lead", "ROI %",
}

// WriteXLSX writes a workbook with a lead summary sheet and a contact sheet.
func WriteXLSX(w io.Writer, leads []model.Lead, f ContactFilter) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet(LeadsSheet)
	if err != nil {
		return eris.Wrap(err, "export: add leads sheet")
	}
	addStringRow(summary, leadHeader)
	for _, l := range leads {
		r, s := l.Result, l.Result.Score
		row := summary.AddRow()
		for _, v := range []string{l.IP, r.Organization, r.Company.Name, r.Company.Industry, l.Visitor.Location(), r.Category, s.Label, s.Priority} {
			row.AddCell().SetString(v)
		}
		for _, n := range []int{s.Score, s.RevenuePotential.Min, s.RevenuePotential.Max, s.Stats.Total, s.Stats.Verified, s.Stats.CLevel, s.Stats.AvgConfidence} {
			row.AddCell().SetInt(n)
		}
		row.AddCell().SetFloat(s.ROI.ConversionRate)
		for _, n := range []int{s.ROI.ExpectedValue, s.ROI.CostPerLead, s.ROI.Percent} {
			row.AddCell().SetInt(n)
		}
	}

	contacts, err := file.AddSheet(ContactsSheet)
	if err != nil {
		return eris.Wrap(err, "export: add contacts sheet")
	}
	addStringRow(contacts, ContactHeader)
	for _, cells := range ContactRows(leads, f) {
		addStringRow(contacts, cells)
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
