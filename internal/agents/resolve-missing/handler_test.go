// internal/agents/resolve-missing/handler_test.go
package resolvemissing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

func TestExecute_AskOrder(t *testing.T) {
	handler := NewHandler(logger.NewNoOpLogger())

	tests := []struct {
		name      string
		phone     string
		amount    int64
		income    int64
		wantNext  Field
		wantReady bool
		wantStage models.ConversationStage
	}{
		{
			name:      "nothing known asks phone first",
			wantNext:  FieldPhone,
			wantStage: models.StagePhoneGathering,
		},
		{
			name:      "amount known but phone missing still asks phone",
			amount:    500000,
			wantNext:  FieldPhone,
			wantStage: models.StagePhoneGathering,
		},
		{
			name:      "phone known asks amount",
			phone:     "9876543210",
			wantNext:  FieldAmount,
			wantStage: models.StageAmountGathering,
		},
		{
			name:      "phone and amount known is decision ready",
			phone:     "9876543210",
			amount:    500000,
			wantNext:  FieldIncome,
			wantReady: true,
			wantStage: models.StageEligibilityCheck,
		},
		{
			name:      "all slots filled",
			phone:     "9876543210",
			amount:    500000,
			income:    85000,
			wantNext:  FieldNone,
			wantReady: true,
			wantStage: models.StageEligibilityCheck,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.NewApplicationState("sess-1")
			state.Phone = tt.phone
			state.RequestedAmount = tt.amount
			state.Income = tt.income

			out, err := handler.Execute(context.Background(), &Input{State: state})
			require.NoError(t, err)

			assert.Equal(t, tt.wantNext, out.NextField)
			assert.Equal(t, tt.wantReady, out.ReadyForDecision)
			assert.Equal(t, tt.wantStage, out.Stage)
		})
	}
}

func TestExecute_MissingListOrder(t *testing.T) {
	handler := NewHandler(logger.NewNoOpLogger())

	out, err := handler.Execute(context.Background(), &Input{
		State: models.NewApplicationState("sess-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []Field{FieldPhone, FieldAmount, FieldIncome}, out.Missing)
}
