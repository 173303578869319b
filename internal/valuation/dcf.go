package valuation

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// Discount turns a consolidated free-cash-flow projection into a valuation
// for one scenario: present value of each projected year, Gordon terminal
// value, enterprise value, equity value, and intrinsic value per share.
//
// Cash flows are discounted and summed in chronological year order so that
// identical inputs give bit-identical results. Negative intrinsic values are
// returned as-is; they signal fundamental distress, not an error.
func Discount(profile *model.FinancialProfile, params model.ScenarioParameters, cashFlows []float64) (*model.ValuationResult, error) {
	dump := &ParamDump{
		Scenario:           string(params.Name),
		DiscountRate:       params.DiscountRate,
		TerminalGrowthRate: params.TerminalGrowthRate,
		SharesOutstanding:  profile.SharesOutstanding,
		CurrentSharePrice:  profile.CurrentSharePrice,
		ProjectionYears:    params.ProjectionYears,
	}

	// Upstream clamping should make these unreachable; they are kept as a
	// second line of defense because a violation here is a defect.
	if params.DiscountRate <= params.TerminalGrowthRate {
		return nil, NewComputationError(
			eris.New("discount rate must exceed terminal growth rate"), dump)
	}
	if profile.SharesOutstanding <= 0 {
		return nil, NewComputationError(
			eris.New("shares outstanding must be positive"), dump)
	}
	if len(cashFlows) != params.ProjectionYears {
		return nil, NewComputationError(
			eris.Errorf("projection length %d does not match projection years %d", len(cashFlows), params.ProjectionYears), dump)
	}

	var pvSum float64
	for t, cf := range cashFlows {
		pvSum += cf / math.Pow(1+params.DiscountRate, float64(t+1))
	}

	n := len(cashFlows)
	finalCF := cashFlows[n-1]
	terminalValue := finalCF * (1 + params.TerminalGrowthRate) / (params.DiscountRate - params.TerminalGrowthRate)
	pvTerminal := terminalValue / math.Pow(1+params.DiscountRate, float64(n))

	enterpriseValue := pvSum + pvTerminal
	equityValue := enterpriseValue - profile.TotalDebt + profile.CashAndEquivalents
	intrinsicPerShare := equityValue / profile.SharesOutstanding

	return &model.ValuationResult{
		ScenarioName:           params.Name,
		Parameters:             params,
		ProjectedFreeCashFlows: cashFlows,
		TerminalValue:          terminalValue,
		EnterpriseValue:        enterpriseValue,
		EquityValue:            equityValue,
		IntrinsicValuePerShare: intrinsicPerShare,
	}, nil
}
