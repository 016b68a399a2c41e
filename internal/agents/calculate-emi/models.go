// internal/agents/calculate-emi/models.go
package calculateemi

type Input struct {
	Principal         int64
	AnnualRatePercent float64
	TenureMonths      int
}

// YearRow is one row of the year-wise repayment breakdown.
type YearRow struct {
	Year        int     `json:"year"`
	Principal   float64 `json:"principal_paid"`
	Interest    float64 `json:"interest_paid"`
	Outstanding float64 `json:"outstanding"`
}

type Output struct {
	MonthlyEMI    float64   `json:"monthly_emi"`
	TotalPayable  float64   `json:"total_payable"`
	TotalInterest float64   `json:"total_interest"`
	YearWise      []YearRow `json:"year_wise"`
}
