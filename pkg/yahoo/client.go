// Package yahoo provides a client for the Yahoo Finance quote-summary API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Yahoo Finance operations used by the retriever.
type Client interface {
	// QuoteSummary fetches the requested modules for a ticker.
	QuoteSummary(ctx context.Context, ticker string, modules ...string) (*QuoteSummary, error)
}

// DefaultModules are the quote-summary modules needed to build a
// fundamentals record.
var DefaultModules = []string{
	"price",
	"summaryProfile",
	"defaultKeyStatistics",
	"financialData",
	"cashflowStatementHistory",
}

// Value is Yahoo's number envelope; Raw carries the machine-readable value.
type Value struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt,omitempty"`
}

// QuoteSummary is the merged result of the requested modules.
type QuoteSummary struct {
	Price                    *Price                    `json:"price,omitempty"`
	SummaryProfile           *SummaryProfile           `json:"summaryProfile,omitempty"`
	DefaultKeyStatistics     *DefaultKeyStatistics     `json:"defaultKeyStatistics,omitempty"`
	FinancialData            *FinancialData            `json:"financialData,omitempty"`
	CashflowStatementHistory *CashflowStatementHistory `json:"cashflowStatementHistory,omitempty"`
}

// Price holds the market-price module.
type Price struct {
	Symbol             string `json:"symbol"`
	LongName           string `json:"longName"`
	RegularMarketPrice Value  `json:"regularMarketPrice"`
	MarketCap          Value  `json:"marketCap"`
}

// SummaryProfile holds the sector/industry classification module.
type SummaryProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

// DefaultKeyStatistics holds share statistics.
type DefaultKeyStatistics struct {
	SharesOutstanding Value `json:"sharesOutstanding"`
}

// FinancialData holds the balance-sheet summary module.
type FinancialData struct {
	TotalDebt    Value `json:"totalDebt"`
	TotalCash    Value `json:"totalCash"`
	FreeCashflow Value `json:"freeCashflow"`
}

// CashflowStatementHistory holds annual cash flow statements, most recent
// first in Yahoo's ordering.
type CashflowStatementHistory struct {
	CashflowStatements []CashflowStatement `json:"cashflowStatements"`
}

// CashflowStatement is one fiscal year of cash flows.
type CashflowStatement struct {
	EndDate                          Value `json:"endDate"`
	TotalCashFromOperatingActivities Value `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures              Value `json:"capitalExpenditures"`
}

type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []QuoteSummary  `json:"result"`
		Error  json.RawMessage `json:"error"`
	} `json:"quoteSummary"`
}

// Option configures the Yahoo client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Yahoo Finance client. No API key is needed; Yahoo
// throttles by user agent, so requests are rate limited client-side.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://query2.finance.yahoo.com",
		userAgent: "valuation-cli/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(2, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) QuoteSummary(ctx context.Context, ticker string, modules ...string) (*QuoteSummary, error) {
	if len(modules) == 0 {
		modules = DefaultModules
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "yahoo: rate limiter wait")
	}

	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(strings.Join(modules, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "yahoo: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "yahoo: quote summary for %s", ticker)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "yahoo: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("yahoo: quote summary returned status %d for %s", resp.StatusCode, ticker)
	}

	var env quoteSummaryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "yahoo: unmarshal quote summary")
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, eris.Errorf("yahoo: no quote summary result for %s", ticker)
	}

	return &env.QuoteSummary.Result[0], nil
}
