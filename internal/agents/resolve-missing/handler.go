// internal/agents/resolve-missing/handler.go
package resolvemissing

import (
	"context"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// Handler decides what the conversation still needs. Ask order is
// fixed: phone, then amount, then income, one field per prompt.
type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{logger: log}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	state := input.State
	out := &Output{}

	if state.Phone == "" {
		out.Missing = append(out.Missing, FieldPhone)
	}
	if state.RequestedAmount == 0 {
		out.Missing = append(out.Missing, FieldAmount)
	}
	if state.Income == 0 {
		out.Missing = append(out.Missing, FieldIncome)
	}

	if len(out.Missing) > 0 {
		out.NextField = out.Missing[0]
	}
	out.ReadyForDecision = state.Phone != "" && state.RequestedAmount > 0
	out.Stage = stageFor(out.NextField, out.ReadyForDecision)

	h.logger.Debug("resolved missing fields", map[string]interface{}{
		"session_id": state.SessionID,
		"missing":    out.Missing,
		"ready":      out.ReadyForDecision,
	})
	return out, nil
}

// Income never gates a stage: a turn where income is the only gap is
// already decision-ready.
func stageFor(next Field, ready bool) models.ConversationStage {
	if ready {
		return models.StageEligibilityCheck
	}
	switch next {
	case FieldPhone:
		return models.StagePhoneGathering
	case FieldAmount:
		return models.StageAmountGathering
	default:
		return models.StageLoanUnderstanding
	}
}
