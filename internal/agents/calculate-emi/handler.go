// internal/agents/calculate-emi/handler.go
package calculateemi

import (
	"context"
	"fmt"
	"math"

	"loan-assistant/internal/common/logger"
)

// Handler computes equated monthly installments and the year-wise
// amortization schedule for a fixed-rate loan.
type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{logger: log}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Principal <= 0 {
		return nil, fmt.Errorf("principal must be positive, got %d", input.Principal)
	}
	if input.TenureMonths <= 0 {
		return nil, fmt.Errorf("tenure must be positive, got %d", input.TenureMonths)
	}

	principal := float64(input.Principal)
	emi := EMI(principal, input.AnnualRatePercent, input.TenureMonths)

	out := &Output{
		MonthlyEMI:   emi,
		TotalPayable: emi * float64(input.TenureMonths),
		YearWise:     schedule(principal, input.AnnualRatePercent, input.TenureMonths, emi),
	}
	out.TotalInterest = out.TotalPayable - principal
	return out, nil
}

// EMI returns the fixed monthly installment. Zero-rate loans divide the
// principal evenly across the tenure.
func EMI(principal, annualRatePercent float64, months int) float64 {
	if annualRatePercent == 0 {
		return principal / float64(months)
	}
	r := annualRatePercent / 100 / 12
	factor := math.Pow(1+r, float64(months))
	return principal * r * factor / (factor - 1)
}

// schedule walks the loan month by month and folds the result into
// yearly rows. Outstanding is clamped at zero so rounding noise never
// leaves a negative balance on the final row.
func schedule(principal, annualRatePercent float64, months int, emi float64) []YearRow {
	r := annualRatePercent / 100 / 12
	outstanding := principal
	years := (months + 11) / 12

	rows := make([]YearRow, 0, years)
	month := 0
	for year := 1; year <= years; year++ {
		row := YearRow{Year: year}
		for i := 0; i < 12 && month < months; i++ {
			interest := outstanding * r
			principalPart := emi - interest
			outstanding -= principalPart

			row.Interest += interest
			row.Principal += principalPart
			month++
		}
		row.Outstanding = math.Max(0, outstanding)
		rows = append(rows, row)
	}
	return rows
}
