// Package alphavantage provides a client for the Alpha Vantage fundamental
// data API.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Alpha Vantage operations used by the retriever.
type Client interface {
	// Overview fetches the company overview record.
	Overview(ctx context.Context, ticker string) (*Overview, error)
	// CashFlow fetches the annual cash flow statements.
	CashFlow(ctx context.Context, ticker string) (*CashFlowResponse, error)
	// BalanceSheet fetches the annual balance sheets.
	BalanceSheet(ctx context.Context, ticker string) (*BalanceSheetResponse, error)
	// Quote fetches the latest market quote.
	Quote(ctx context.Context, ticker string) (*Quote, error)
}

// Overview is the parsed OVERVIEW response. Alpha Vantage serializes every
// numeric field as a string.
type Overview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	SharesOutstanding    string `json:"SharesOutstanding"`
	Beta                 string `json:"Beta"`
}

// CashFlowResponse is the parsed CASH_FLOW response.
type CashFlowResponse struct {
	Symbol        string           `json:"symbol"`
	AnnualReports []CashFlowReport `json:"annualReports"`
}

// CashFlowReport is one fiscal year of the cash flow statement.
type CashFlowReport struct {
	FiscalDateEnding    string `json:"fiscalDateEnding"`
	OperatingCashflow   string `json:"operatingCashflow"`
	CapitalExpenditures string `json:"capitalExpenditures"`
}

// BalanceSheetResponse is the parsed BALANCE_SHEET response.
type BalanceSheetResponse struct {
	Symbol        string               `json:"symbol"`
	AnnualReports []BalanceSheetReport `json:"annualReports"`
}

// BalanceSheetReport is one fiscal year of the balance sheet.
type BalanceSheetReport struct {
	FiscalDateEnding            string `json:"fiscalDateEnding"`
	ShortTermDebt               string `json:"shortTermDebt"`
	LongTermDebt                string `json:"longTermDebt"`
	CashAndShortTermInvestments string `json:"cashAndShortTermInvestments"`
}

// Quote is the parsed GLOBAL_QUOTE payload.
type Quote struct {
	Symbol string `json:"01. symbol"`
	Price  string `json:"05. price"`
}

type globalQuoteEnvelope struct {
	GlobalQuote Quote `json:"Global Quote"`
}

// Option configures the Alpha Vantage client.
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

// WithRateLimit overrides the request rate limit. The free Alpha Vantage
// tier allows 5 requests per minute, which is the default here.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Alpha Vantage client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://www.alphavantage.co",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Overview(ctx context.Context, ticker string) (*Overview, error) {
	body, err := c.query(ctx, "OVERVIEW", ticker)
	if err != nil {
		return nil, err
	}
	var ov Overview
	if err := json.Unmarshal(body, &ov); err != nil {
		return nil, eris.Wrap(err, "alphavantage: unmarshal overview")
	}
	if ov.Symbol == "" {
		return nil, eris.Errorf("alphavantage: empty overview for %s (rate limited or unknown ticker)", ticker)
	}
	return &ov, nil
}

func (c *httpClient) CashFlow(ctx context.Context, ticker string) (*CashFlowResponse, error) {
	body, err := c.query(ctx, "CASH_FLOW", ticker)
	if err != nil {
		return nil, err
	}
	var cf CashFlowResponse
	if err := json.Unmarshal(body, &cf); err != nil {
		return nil, eris.Wrap(err, "alphavantage: unmarshal cash flow")
	}
	if len(cf.AnnualReports) == 0 {
		return nil, eris.Errorf("alphavantage: no annual cash flow reports for %s", ticker)
	}
	return &cf, nil
}

func (c *httpClient) BalanceSheet(ctx context.Context, ticker string) (*BalanceSheetResponse, error) {
	body, err := c.query(ctx, "BALANCE_SHEET", ticker)
	if err != nil {
		return nil, err
	}
	var bs BalanceSheetResponse
	if err := json.Unmarshal(body, &bs); err != nil {
		return nil, eris.Wrap(err, "alphavantage: unmarshal balance sheet")
	}
	if len(bs.AnnualReports) == 0 {
		return nil, eris.Errorf("alphavantage: no annual balance sheet reports for %s", ticker)
	}
	return &bs, nil
}

func (c *httpClient) Quote(ctx context.Context, ticker string) (*Quote, error) {
	body, err := c.query(ctx, "GLOBAL_QUOTE", ticker)
	if err != nil {
		return nil, err
	}
	var env globalQuoteEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "alphavantage: unmarshal quote")
	}
	if env.GlobalQuote.Price == "" {
		return nil, eris.Errorf("alphavantage: empty quote for %s", ticker)
	}
	return &env.GlobalQuote, nil
}

// query performs one rate-limited GET against the query endpoint.
func (c *httpClient) query(ctx context.Context, function, ticker string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "alphavantage: rate limiter wait")
	}

	reqURL := fmt.Sprintf("%s/query?function=%s&symbol=%s&apikey=%s",
		c.baseURL, function, url.QueryEscape(ticker), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "alphavantage: %s request", function)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "alphavantage: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("alphavantage: %s returned status %d: %s", function, resp.StatusCode, string(body))
	}

	return body, nil
}
