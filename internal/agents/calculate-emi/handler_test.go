// internal/agents/calculate-emi/handler_test.go
package calculateemi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/common/logger"
)

func TestExecute_ReferenceLoan(t *testing.T) {
	handler := NewHandler(logger.NewNoOpLogger())

	out, err := handler.Execute(context.Background(), &Input{
		Principal:         500000,
		AnnualRatePercent: 8.5,
		TenureMonths:      60,
	})
	require.NoError(t, err)

	// 5 lakh over 5 years at 8.5% is a well known reference figure.
	assert.InDelta(t, 10258.3, out.MonthlyEMI, 1.0)
	assert.InDelta(t, out.MonthlyEMI*60, out.TotalPayable, 0.01)
	assert.InDelta(t, out.TotalPayable-500000, out.TotalInterest, 0.01)
}

func TestExecute_ScheduleAccounting(t *testing.T) {
	handler := NewHandler(logger.NewNoOpLogger())

	out, err := handler.Execute(context.Background(), &Input{
		Principal:         500000,
		AnnualRatePercent: 8.5,
		TenureMonths:      60,
	})
	require.NoError(t, err)
	require.Len(t, out.YearWise, 5)

	var principalPaid, interestPaid float64
	for i, row := range out.YearWise {
		assert.Equal(t, i+1, row.Year)
		assert.Positive(t, row.Principal)
		assert.Positive(t, row.Interest)
		assert.GreaterOrEqual(t, row.Outstanding, 0.0)
		principalPaid += row.Principal
		interestPaid += row.Interest
	}

	assert.InDelta(t, 500000, principalPaid, 0.5)
	assert.InDelta(t, out.TotalInterest, interestPaid, 0.5)
	assert.InDelta(t, 0, out.YearWise[4].Outstanding, 0.5)

	// Early years pay more interest than later ones.
	assert.Greater(t, out.YearWise[0].Interest, out.YearWise[4].Interest)
}

func TestExecute_ZeroRateDividesEvenly(t *testing.T) {
	handler := NewHandler(logger.NewNoOpLogger())

	out, err := handler.Execute(context.Background(), &Input{
		Principal:         240000,
		AnnualRatePercent: 0,
		TenureMonths:      24,
	})
	require.NoError(t, err)
	assert.InDelta(t, 10000, out.MonthlyEMI, 0.001)
	assert.InDelta(t, 240000, out.TotalPayable, 0.001)
	assert.InDelta(t, 0, out.TotalInterest, 0.001)
}

func TestExecute_InvalidInput(t *testing.T) {
	handler := NewHandler(logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), &Input{Principal: 0, TenureMonths: 60})
	assert.Error(t, err)

	_, err = handler.Execute(context.Background(), &Input{Principal: 500000, TenureMonths: 0})
	assert.Error(t, err)
}
