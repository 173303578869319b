package valuation

import "github.com/rotisserie/eris"

// UpsidePercent compares an intrinsic per-share value against the current
// market price, returning the upside (or downside) as a fraction of price:
// (intrinsic - price) / price.
func UpsidePercent(intrinsicValuePerShare, currentSharePrice float64) (float64, error) {
	if currentSharePrice <= 0 {
		return 0, NewComputationError(
			eris.Errorf("current share price must be positive, got %.4f", currentSharePrice),
			&ParamDump{CurrentSharePrice: currentSharePrice})
	}
	return (intrinsicValuePerShare - currentSharePrice) / currentSharePrice, nil
}
