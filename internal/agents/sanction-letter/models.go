// internal/agents/sanction-letter/models.go
package sanctionletter

import "loan-assistant/internal/models"

type Input struct {
	Approval *models.ApprovalContext
}

type Output struct {
	// Text is the plain-text sanction letter including the year-wise
	// repayment statement.
	Text string
}
