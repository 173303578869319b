package normalize

import (
	"math"
	"time"

	"github.com/intrinsiq/valuation-cli/internal/model"
	"github.com/intrinsiq/valuation-cli/pkg/yahoo"
)

// FromYahoo maps a Yahoo Finance quote summary into the canonical raw
// fundamentals record.
func FromYahoo(ticker string, qs *yahoo.QuoteSummary) (*model.RawFundamentals, error) {
	if qs == nil {
		return nil, NewValidationError("quote_summary", "yahoo quote summary is missing")
	}
	if qs.Price == nil {
		return nil, NewValidationError("current_share_price", "yahoo price module is missing")
	}
	if qs.DefaultKeyStatistics == nil {
		return nil, NewValidationError("shares_outstanding", "yahoo key statistics module is missing")
	}

	// Cash flow statements arrive most recent first; reverse into the
	// canonical oldest-first ordering. Fall back to the financialData
	// trailing FCF when no statement history is available.
	var history []float64
	if qs.CashflowStatementHistory != nil {
		stmts := qs.CashflowStatementHistory.CashflowStatements
		for i := len(stmts) - 1; i >= 0; i-- {
			ocf := stmts[i].TotalCashFromOperatingActivities.Raw
			capex := stmts[i].CapitalExpenditures.Raw
			if ocf == 0 && capex == 0 {
				continue
			}
			history = append(history, ocf-math.Abs(capex))
		}
	}
	if len(history) == 0 && qs.FinancialData != nil && qs.FinancialData.FreeCashflow.Raw != 0 {
		history = []float64{qs.FinancialData.FreeCashflow.Raw}
	}
	if len(history) == 0 {
		return nil, NewValidationError("free_cash_flow_history", "yahoo provides no cash flow data for %s", ticker)
	}

	var sector, industry string
	if qs.SummaryProfile != nil {
		sector = qs.SummaryProfile.Sector
		industry = qs.SummaryProfile.Industry
	}

	var totalDebt, cash float64
	if qs.FinancialData != nil {
		totalDebt = qs.FinancialData.TotalDebt.Raw
		cash = qs.FinancialData.TotalCash.Raw
	}

	return &model.RawFundamentals{
		Ticker:               ticker,
		CompanyName:          qs.Price.LongName,
		Source:               model.SourceYahoo,
		MarketCapitalization: qs.Price.MarketCap.Raw,
		FreeCashFlowHistory:  history,
		TotalDebt:            totalDebt,
		CashAndEquivalents:   cash,
		SharesOutstanding:    qs.DefaultKeyStatistics.SharesOutstanding.Raw,
		Sector:               sector,
		Industry:             industry,
		CurrentSharePrice:    qs.Price.RegularMarketPrice.Raw,
		FetchedAt:            time.Now().UTC(),
	}, nil
}
