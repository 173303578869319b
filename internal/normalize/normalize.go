// Package normalize converts provider-specific fundamental data into the
// canonical FinancialProfile consumed by the valuation engine.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// segmentShareTolerance is how far segment revenue shares may drift from
// summing to exactly 1.0.
const segmentShareTolerance = 1e-3

// ValidationError indicates a required input field is missing or invalid.
// It names the offending field so the failure is actionable.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Err.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Err: fmt.Errorf(format, args...)}
}

// IsValidationError returns true if the error chain contains a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Build validates a raw fundamentals record and produces the immutable
// FinancialProfile. It is a pure transform: no I/O, no mutation of the input.
func Build(raw *model.RawFundamentals) (*model.FinancialProfile, error) {
	if raw == nil {
		return nil, NewValidationError("record", "raw fundamentals record is nil")
	}
	if raw.Ticker == "" {
		return nil, NewValidationError("ticker", "ticker is required")
	}
	if len(raw.FreeCashFlowHistory) == 0 {
		return nil, NewValidationError("free_cash_flow_history", "at least one observation is required")
	}
	if raw.SharesOutstanding <= 0 {
		return nil, NewValidationError("shares_outstanding", "must be positive, got %.0f", raw.SharesOutstanding)
	}
	if raw.MarketCapitalization <= 0 {
		return nil, NewValidationError("market_capitalization", "must be positive, got %.0f", raw.MarketCapitalization)
	}
	if raw.CurrentSharePrice <= 0 {
		return nil, NewValidationError("current_share_price", "must be positive, got %.4f", raw.CurrentSharePrice)
	}

	segments := raw.Segments
	if len(segments) > 0 {
		var sum float64
		for _, seg := range segments {
			sum += seg.RevenueShare
		}
		if math.Abs(sum-1.0) > segmentShareTolerance {
			return nil, NewValidationError("segments", "revenue shares sum to %.6f, want 1.0 ± %.0e", sum, segmentShareTolerance)
		}
	} else {
		// Missing segment breakdown disables decomposition for the run.
		segments = nil
	}

	history := make([]float64, len(raw.FreeCashFlowHistory))
	copy(history, raw.FreeCashFlowHistory)

	return &model.FinancialProfile{
		Ticker:               raw.Ticker,
		CompanyName:          raw.CompanyName,
		Source:               raw.Source,
		MarketCapitalization: raw.MarketCapitalization,
		FreeCashFlowHistory:  history,
		TotalDebt:            raw.TotalDebt,
		CashAndEquivalents:   raw.CashAndEquivalents,
		SharesOutstanding:    raw.SharesOutstanding,
		Sector:               raw.Sector,
		Industry:             raw.Industry,
		CurrentSharePrice:    raw.CurrentSharePrice,
		Segments:             segments,
	}, nil
}
