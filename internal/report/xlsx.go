package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// WriteXLSX writes one workbook with a summary sheet plus a cash-flow sheet
// per ticker.
func WriteXLSX(path string, reports []*model.ValuationReport) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "xlsx: add summary sheet")
	}
	writeHeader(summary, []string{
		"Ticker", "Company", "Archetype", "Source", "Scenario",
		"Intrinsic Value", "Share Price", "Upside %",
		"Enterprise Value", "Equity Value", "Terminal Value",
		"Discount Rate", "Initial Growth", "Terminal Growth", "Clamped",
	})

	for _, rpt := range reports {
		for _, sn := range ScenarioOrder(rpt.Scenarios) {
			r := rpt.Scenarios[sn]
			row := summary.AddRow()
			row.AddCell().SetString(rpt.Ticker)
			row.AddCell().SetString(rpt.CompanyName)
			row.AddCell().SetString(string(rpt.Archetype))
			row.AddCell().SetString(string(rpt.Source))
			row.AddCell().SetString(string(sn))
			row.AddCell().SetFloat(r.IntrinsicValuePerShare)
			row.AddCell().SetFloat(rpt.CurrentSharePrice)
			row.AddCell().SetFloat(r.UpsidePercent * 100)
			row.AddCell().SetFloat(r.EnterpriseValue)
			row.AddCell().SetFloat(r.EquityValue)
			row.AddCell().SetFloat(r.TerminalValue)
			row.AddCell().SetFloat(r.Parameters.DiscountRate)
			row.AddCell().SetFloat(r.Parameters.InitialGrowthRate)
			row.AddCell().SetFloat(r.Parameters.TerminalGrowthRate)
			row.AddCell().SetBool(r.Parameters.Clamped)
		}

		if err := addCashFlowSheet(f, rpt); err != nil {
			return err
		}
	}

	return eris.Wrap(f.Save(path), "xlsx: save file")
}

func addCashFlowSheet(f *xlsx.File, rpt *model.ValuationReport) error {
	// Sheet names are capped at 31 chars by the format.
	name := rpt.Ticker + " Cash Flows"
	if len(name) > 31 {
		name = name[:31]
	}
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet for %s", rpt.Ticker)
	}

	order := ScenarioOrder(rpt.Scenarios)
	header := []string{"Year"}
	for _, sn := range order {
		header = append(header, string(sn))
	}
	writeHeader(sheet, header)

	years := 0
	for _, sn := range order {
		if n := len(rpt.Scenarios[sn].ProjectedFreeCashFlows); n > years {
			years = n
		}
	}
	for y := 0; y < years; y++ {
		row := sheet.AddRow()
		row.AddCell().SetInt(y + 1)
		for _, sn := range order {
			cfs := rpt.Scenarios[sn].ProjectedFreeCashFlows
			cell := row.AddCell()
			if y < len(cfs) {
				cell.SetFloat(cfs[y])
			}
		}
	}
	return nil
}

func writeHeader(sheet *xlsx.Sheet, cols []string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}
