// internal/agents/evaluate-eligibility/models.go
package evaluateeligibility

import (
	"loan-assistant/internal/fraud"
	"loan-assistant/internal/models"
)

// Input is the merged application state at decision time. Phone and
// requested amount must both be present.
type Input struct {
	State *models.ApplicationState
}

// Output carries the decision, the stage the conversation moves to,
// and the deterministic reply the customer sees.
type Output struct {
	Path        models.EligibilityPath
	Stage       models.ConversationStage
	Message     string
	Approval    *models.ApprovalContext
	FraudStatus fraud.Status
}

// TenureInput finalizes an approved application with a chosen tenure.
type TenureInput struct {
	State        *models.ApplicationState
	TenureMonths int
}

type TenureOutput struct {
	Stage    models.ConversationStage
	Message  string
	EMI      float64
	Approval *models.ApprovalContext
}
