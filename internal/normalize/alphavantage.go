package normalize

import (
	"math"
	"strconv"
	"time"

	"github.com/intrinsiq/valuation-cli/internal/model"
	"github.com/intrinsiq/valuation-cli/pkg/alphavantage"
)

// FromAlphaVantage maps Alpha Vantage payloads into the canonical raw
// fundamentals record. Alpha Vantage serializes every number as a string
// and uses "None" for missing values.
func FromAlphaVantage(ticker string, ov *alphavantage.Overview, cf *alphavantage.CashFlowResponse, bs *alphavantage.BalanceSheetResponse, quote *alphavantage.Quote) (*model.RawFundamentals, error) {
	if ov == nil {
		return nil, NewValidationError("overview", "alpha vantage overview is missing")
	}
	if cf == nil || len(cf.AnnualReports) == 0 {
		return nil, NewValidationError("free_cash_flow_history", "alpha vantage cash flow reports are missing")
	}

	marketCap, err := avFloat(ov.MarketCapitalization)
	if err != nil {
		return nil, NewValidationError("market_capitalization", "unparseable value %q", ov.MarketCapitalization)
	}
	shares, err := avFloat(ov.SharesOutstanding)
	if err != nil {
		return nil, NewValidationError("shares_outstanding", "unparseable value %q", ov.SharesOutstanding)
	}

	var price float64
	if quote != nil {
		price, err = avFloat(quote.Price)
		if err != nil {
			return nil, NewValidationError("current_share_price", "unparseable value %q", quote.Price)
		}
	}

	// Annual reports arrive most recent first; the canonical history is
	// oldest first, most recent last.
	history := make([]float64, 0, len(cf.AnnualReports))
	for i := len(cf.AnnualReports) - 1; i >= 0; i-- {
		report := cf.AnnualReports[i]
		ocf, ocfErr := avFloat(report.OperatingCashflow)
		capex, capexErr := avFloat(report.CapitalExpenditures)
		if ocfErr != nil || capexErr != nil {
			continue // skip years with suppressed statements
		}
		history = append(history, ocf-math.Abs(capex))
	}
	if len(history) == 0 {
		return nil, NewValidationError("free_cash_flow_history", "no parseable annual cash flow reports")
	}

	var totalDebt, cash float64
	if bs != nil && len(bs.AnnualReports) > 0 {
		latest := bs.AnnualReports[0]
		shortDebt, _ := avFloat(latest.ShortTermDebt)
		longDebt, _ := avFloat(latest.LongTermDebt)
		totalDebt = shortDebt + longDebt
		cash, _ = avFloat(latest.CashAndShortTermInvestments)
	}

	return &model.RawFundamentals{
		Ticker:               ticker,
		CompanyName:          ov.Name,
		Source:               model.SourceAlphaVantage,
		MarketCapitalization: marketCap,
		FreeCashFlowHistory:  history,
		TotalDebt:            totalDebt,
		CashAndEquivalents:   cash,
		SharesOutstanding:    shares,
		Sector:               ov.Sector,
		Industry:             ov.Industry,
		CurrentSharePrice:    price,
		FetchedAt:            time.Now().UTC(),
	}, nil
}

// avFloat parses an Alpha Vantage numeric string. "None", "-" and the empty
// string are reported as an error rather than silently zeroed.
func avFloat(s string) (float64, error) {
	if s == "" || s == "None" || s == "-" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}
