package valuation

import (
	"errors"
	"fmt"
)

// ConfigError indicates an unrecognized archetype or invalid scenario
// configuration. Fatal for the ticker being analyzed, never retried.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError wraps an error as a configuration error.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// IsConfigError returns true if the error chain contains a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ComputationError indicates an arithmetic precondition was violated inside
// the engine (discount rate at or below terminal growth, non-positive share
// count or price). It carries the offending parameter bundle so the defect
// can be diagnosed from logs alone.
type ComputationError struct {
	Err    error
	Params *ParamDump
}

// ParamDump is the diagnostic snapshot attached to a ComputationError.
type ParamDump struct {
	Scenario           string  `json:"scenario,omitempty"`
	DiscountRate       float64 `json:"discount_rate"`
	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	SharesOutstanding  float64 `json:"shares_outstanding"`
	CurrentSharePrice  float64 `json:"current_share_price"`
	ProjectionYears    int     `json:"projection_years"`
}

func (e *ComputationError) Error() string {
	if e.Params == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (scenario=%s discount=%.4f terminal=%.4f shares=%.0f price=%.2f years=%d)",
		e.Err.Error(), e.Params.Scenario, e.Params.DiscountRate, e.Params.TerminalGrowthRate,
		e.Params.SharesOutstanding, e.Params.CurrentSharePrice, e.Params.ProjectionYears)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// NewComputationError wraps an error as a computation error with its
// parameter dump.
func NewComputationError(err error, params *ParamDump) *ComputationError {
	return &ComputationError{Err: err, Params: params}
}

// IsComputationError returns true if the error chain contains a ComputationError.
func IsComputationError(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}
