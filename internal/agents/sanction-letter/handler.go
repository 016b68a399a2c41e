// internal/agents/sanction-letter/handler.go
package sanctionletter

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	calculateemi "loan-assistant/internal/agents/calculate-emi"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

const lenderName = "Sunrise Finance Ltd"

// Handler renders the sanction letter for an approved loan, as plain
// text for the conversation and as a PDF for download.
type Handler struct {
	emi    *calculateemi.Handler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(emi *calculateemi.Handler, log logger.Logger) *Handler {
	return &Handler{
		emi:    emi,
		logger: log,
		now:    time.Now,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	approval := input.Approval
	if approval == nil {
		return nil, fmt.Errorf("sanction letter requires an approval context")
	}

	schedule, err := h.emi.Execute(ctx, &calculateemi.Input{
		Principal:         approval.RequestedAmount,
		AnnualRatePercent: approval.InterestRate,
		TenureMonths:      approval.TenureMonths,
	})
	if err != nil {
		return nil, fmt.Errorf("building repayment schedule: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nLOAN SANCTION LETTER\n\n", lenderName)
	fmt.Fprintf(&b, "Date: %s\n", h.now().Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Reference: %s\n\n", approval.ReferenceID)
	fmt.Fprintf(&b, "Dear %s,\n\n", approval.CustomerName)
	fmt.Fprintf(&b, "We are pleased to sanction your personal loan on the following terms:\n\n")
	fmt.Fprintf(&b, "  Sanctioned Amount : Rs %d\n", approval.RequestedAmount)
	fmt.Fprintf(&b, "  Interest Rate     : %.1f%% per annum\n", approval.InterestRate)
	fmt.Fprintf(&b, "  Tenure            : %d months\n", approval.TenureMonths)
	fmt.Fprintf(&b, "  Monthly EMI       : Rs %.2f\n", schedule.MonthlyEMI)
	fmt.Fprintf(&b, "  Total Payable     : Rs %.2f\n", schedule.TotalPayable)
	fmt.Fprintf(&b, "  Total Interest    : Rs %.2f\n\n", schedule.TotalInterest)

	b.WriteString("Year-wise repayment statement:\n")
	b.WriteString("  Year   Principal Paid   Interest Paid   Outstanding\n")
	for _, row := range schedule.YearWise {
		fmt.Fprintf(&b, "  %-6d %-16.2f %-15.2f %.2f\n",
			row.Year, row.Principal, row.Interest, row.Outstanding)
	}

	b.WriteString("\nThis sanction is valid for 30 days and subject to standard terms and conditions.\n")
	fmt.Fprintf(&b, "\nWarm regards,\n%s\n", lenderName)

	return &Output{Text: b.String()}, nil
}

// RenderPDF produces the downloadable sanction letter.
func (h *Handler) RenderPDF(ctx context.Context, approval *models.ApprovalContext) ([]byte, error) {
	if approval == nil {
		return nil, fmt.Errorf("sanction letter requires an approval context")
	}
	schedule, err := h.emi.Execute(ctx, &calculateemi.Input{
		Principal:         approval.RequestedAmount,
		AnnualRatePercent: approval.InterestRate,
		TenureMonths:      approval.TenureMonths,
	})
	if err != nil {
		return nil, fmt.Errorf("building repayment schedule: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, lenderName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "Loan Sanction Letter", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Date: "+h.now().Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Reference: "+approval.ReferenceID, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Dear %s,", approval.CustomerName), "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 6, "We are pleased to sanction your personal loan on the following terms:", "", "L", false)
	pdf.Ln(2)

	kv := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 7, label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(70, 7, value, "1", 1, "L", false, 0, "")
	}
	kv("Sanctioned Amount", fmt.Sprintf("Rs %d", approval.RequestedAmount))
	kv("Interest Rate", fmt.Sprintf("%.1f%% per annum", approval.InterestRate))
	kv("Tenure", fmt.Sprintf("%d months", approval.TenureMonths))
	kv("Monthly EMI", fmt.Sprintf("Rs %.2f", schedule.MonthlyEMI))
	kv("Total Payable", fmt.Sprintf("Rs %.2f", schedule.TotalPayable))
	kv("Total Interest", fmt.Sprintf("Rs %.2f", schedule.TotalInterest))
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Year-wise Repayment Statement", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(20, 7, "Year", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 7, "Principal Paid", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 7, "Interest Paid", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 7, "Outstanding", "1", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, row := range schedule.YearWise {
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", row.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", row.Principal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", row.Interest), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", row.Outstanding), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "This sanction is valid for 30 days and subject to standard terms and conditions.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}
