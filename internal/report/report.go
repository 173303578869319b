// Package report renders valuation reports as analyst-facing text, JSON,
// or an XLSX workbook.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a dollar amount in humanized form ($1.23T, $456.78B,
// $12.34M) down to plain dollars for small magnitudes.
func FormatCurrency(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// FormatShares renders a share count with thousands separators.
func FormatShares(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// ScenarioOrder returns scenario names in presentation order: bull, base,
// bear first, any extras alphabetically after.
func ScenarioOrder(scenarios map[model.ScenarioName]model.ValuationResult) []model.ScenarioName {
	rank := map[model.ScenarioName]int{
		model.ScenarioBull: 0,
		model.ScenarioBase: 1,
		model.ScenarioBear: 2,
	}
	names := make([]model.ScenarioName, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iKnown := rank[names[i]]
		rj, jKnown := rank[names[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// RenderText writes a human-readable report for each ticker.
func RenderText(w io.Writer, reports []*model.ValuationReport) error {
	for _, rpt := range reports {
		name := rpt.Ticker
		if rpt.CompanyName != "" {
			name = fmt.Sprintf("%s (%s)", rpt.CompanyName, rpt.Ticker)
		}
		if _, err := fmt.Fprintf(w, "%s — archetype %s, price %s\n",
			name, rpt.Archetype, FormatCurrency(rpt.CurrentSharePrice)); err != nil {
			return eris.Wrap(err, "report: write header")
		}

		for _, sn := range ScenarioOrder(rpt.Scenarios) {
			r := rpt.Scenarios[sn]
			clamped := ""
			if r.Parameters.Clamped {
				clamped = " [terminal growth clamped]"
			}
			_, err := fmt.Fprintf(w,
				"  %-5s intrinsic %s  upside %+.1f%%  EV %s  equity %s  (growth %.1f%% → %.1f%%, WACC %.2f%%)%s\n",
				sn,
				FormatCurrency(r.IntrinsicValuePerShare),
				r.UpsidePercent*100,
				FormatCurrency(r.EnterpriseValue),
				FormatCurrency(r.EquityValue),
				r.Parameters.InitialGrowthRate*100,
				r.Parameters.TerminalGrowthRate*100,
				r.Parameters.DiscountRate*100,
				clamped,
			)
			if err != nil {
				return eris.Wrap(err, "report: write scenario")
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return eris.Wrap(err, "report: write separator")
		}
	}
	return nil
}

// RenderJSON writes the reports as indented JSON.
func RenderJSON(w io.Writer, reports []*model.ValuationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(reports), "report: encode json")
}
