package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(rate.NewLimiter(rate.Inf, 1)),
	)
}

const quoteSummaryBody = `{
	"quoteSummary": {
		"result": [{
			"price": {
				"symbol": "ACME",
				"longName": "Acme Corp",
				"regularMarketPrice": {"raw": 95.4, "fmt": "95.40"},
				"marketCap": {"raw": 1000000000, "fmt": "1B"}
			},
			"summaryProfile": {"sector": "Technology", "industry": "Software—Application"},
			"defaultKeyStatistics": {"sharesOutstanding": {"raw": 10000000}},
			"financialData": {
				"totalDebt": {"raw": 200000000},
				"totalCash": {"raw": 100000000},
				"freeCashflow": {"raw": 98000000}
			},
			"cashflowStatementHistory": {
				"cashflowStatements": [
					{"totalCashFromOperatingActivities": {"raw": 120000000}, "capitalExpenditures": {"raw": -20000000}}
				]
			}
		}],
		"error": null
	}
}`

func TestQuoteSummary(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/ACME", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("modules"), "price")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Write([]byte(quoteSummaryBody))
	})

	qs, err := client.QuoteSummary(context.Background(), "ACME")
	require.NoError(t, err)
	require.NotNil(t, qs.Price)
	assert.Equal(t, "Acme Corp", qs.Price.LongName)
	assert.Equal(t, 95.4, qs.Price.RegularMarketPrice.Raw)
	require.NotNil(t, qs.CashflowStatementHistory)
	assert.Equal(t, -2e7, qs.CashflowStatementHistory.CashflowStatements[0].CapitalExpenditures.Raw)
}

func TestQuoteSummary_ExplicitModules(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "price", r.URL.Query().Get("modules"))
		w.Write([]byte(quoteSummaryBody))
	})

	_, err := client.QuoteSummary(context.Background(), "ACME", "price")
	require.NoError(t, err)
}

func TestQuoteSummary_EmptyResult(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary": {"result": [], "error": null}}`))
	})

	_, err := client.QuoteSummary(context.Background(), "UNKNOWN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no quote summary result")
}

func TestQuoteSummary_HTTPError(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.QuoteSummary(context.Background(), "ACME")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
