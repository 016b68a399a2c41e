// internal/agents/resolve-missing/models.go
package resolvemissing

import "loan-assistant/internal/models"

// Field names the slot a prompt should target.
type Field string

const (
	FieldNone   Field = ""
	FieldPhone  Field = "phone"
	FieldAmount Field = "requested_amount"
	FieldIncome Field = "income"
)

// Input is the application state after the current turn's candidates
// have been merged in.
type Input struct {
	State *models.ApplicationState
}

type Output struct {
	// Missing lists absent slots in ask order.
	Missing []Field
	// NextField is the single slot the next prompt should request.
	NextField Field
	// ReadyForDecision is true once phone and amount are both known.
	// Income is nice to have and never blocks a decision.
	ReadyForDecision bool
	// Stage reflects which slot the conversation is now gathering.
	Stage models.ConversationStage
}
