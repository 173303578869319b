package model

import "time"

// DataSource identifies the market-data provider a record came from.
type DataSource string

const (
	SourceAlphaVantage DataSource = "alphavantage"
	SourceYahoo        DataSource = "yahoo"
)

// RawFundamentals is the provider-agnostic raw record handed to the
// normalizer. Field names are canonical; each provider adapter is
// responsible for mapping its own payload shape into this struct.
type RawFundamentals struct {
	Ticker               string             `json:"ticker"`
	CompanyName          string             `json:"company_name,omitempty"`
	Source               DataSource         `json:"source"`
	MarketCapitalization float64            `json:"market_capitalization"`
	FreeCashFlowHistory  []float64          `json:"free_cash_flow_history"` // oldest first, most recent last
	TotalDebt            float64            `json:"total_debt"`
	CashAndEquivalents   float64            `json:"cash_and_equivalents"`
	SharesOutstanding    float64            `json:"shares_outstanding"`
	Sector               string             `json:"sector"`
	Industry             string             `json:"industry"`
	CurrentSharePrice    float64            `json:"current_share_price"`
	Segments             map[string]Segment `json:"segments,omitempty"`
	FetchedAt            time.Time          `json:"fetched_at"`
}

// Segment describes one business segment's share of revenue and its own
// growth assumption.
type Segment struct {
	RevenueShare float64 `json:"revenue_share"` // fraction of revenue in [0,1]
	GrowthRate   float64 `json:"growth_rate"`   // annual FCF growth for this segment
}

// FinancialProfile is the validated, canonical input to the valuation
// engine. Build one via normalize.Build; treat it as immutable afterwards.
type FinancialProfile struct {
	Ticker               string             `json:"ticker"`
	CompanyName          string             `json:"company_name,omitempty"`
	Source               DataSource         `json:"source"`
	MarketCapitalization float64            `json:"market_capitalization"`
	FreeCashFlowHistory  []float64          `json:"free_cash_flow_history"`
	TotalDebt            float64            `json:"total_debt"`
	CashAndEquivalents   float64            `json:"cash_and_equivalents"`
	SharesOutstanding    float64            `json:"shares_outstanding"`
	Sector               string             `json:"sector"`
	Industry             string             `json:"industry"`
	CurrentSharePrice    float64            `json:"current_share_price"`
	Segments             map[string]Segment `json:"segments,omitempty"`
}

// LatestFreeCashFlow returns the most recent free cash flow observation.
// The profile invariant guarantees the history is non-empty.
func (p *FinancialProfile) LatestFreeCashFlow() float64 {
	return p.FreeCashFlowHistory[len(p.FreeCashFlowHistory)-1]
}

// HasSegments reports whether segment decomposition applies to this company.
func (p *FinancialProfile) HasSegments() bool {
	return len(p.Segments) > 0
}
