// internal/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calculateemi "loan-assistant/internal/agents/calculate-emi"
	evaluateeligibility "loan-assistant/internal/agents/evaluate-eligibility"
	extractslots "loan-assistant/internal/agents/extract-slots"
	generatereply "loan-assistant/internal/agents/generate-reply"
	resolvemissing "loan-assistant/internal/agents/resolve-missing"
	sanctionletter "loan-assistant/internal/agents/sanction-letter"
	"loan-assistant/internal/audit"
	stderrors "loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/fraud"
	"loan-assistant/internal/models"
	"loan-assistant/internal/registry"
	"loan-assistant/internal/session"
)

// recordingAuditor captures decision events for assertions.
type recordingAuditor struct {
	events []audit.DecisionEvent
}

func (r *recordingAuditor) RecordDecision(_ context.Context, event audit.DecisionEvent) error {
	r.events = append(r.events, event)
	return nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *recordingAuditor) {
	t.Helper()
	log := logger.NewNoOpLogger()
	reg := registry.NewSeededRegistry()
	screener := fraud.NewBlacklistScreener(log)
	emi := calculateemi.NewHandler(log)
	auditor := &recordingAuditor{}

	orch := New(Options{
		Extract:  extractslots.NewHandler(extractslots.LoadConfig(), reg, log),
		Resolve:  resolvemissing.NewHandler(log),
		Evaluate: evaluateeligibility.NewHandler(evaluateeligibility.LoadConfig(), reg, screener, log),
		Reply:    generatereply.NewHandler(generatereply.LoadConfig(), nil, log),
		Letter:   sanctionletter.NewHandler(emi, log),
		Sessions: session.NewMemoryStore(),
		Registry: reg,
		Auditor:  auditor,
		Logger:   log,
	})
	return orch, auditor
}

func startSession(t *testing.T, orch *Orchestrator) string {
	t.Helper()
	const id = "sess-test"
	result, err := orch.CreateSession(context.Background(), id)
	require.NoError(t, err)
	require.Contains(t, result.Message, "loan assistant")
	return id
}

// ============================================================================
// HAPPY PATH SCENARIOS
// ============================================================================

func TestProcessTurn_FastTrackToSanctionLetter(t *testing.T) {
	orch, auditor := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	// Phone alone: the assistant should prompt for the amount next.
	result, err := orch.ProcessTurn(ctx, id, "hi, my number is 9876543210")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", result.State.Phone)
	assert.True(t, result.State.Verified)
	assert.Equal(t, models.StageAmountGathering, result.State.ConversationStage)

	// Amount within the pre-approved limit fast-tracks.
	result, err = orch.ProcessTurn(ctx, id, "i need 5 lakhs")
	require.NoError(t, err)
	assert.Equal(t, models.PathFastTrack, result.State.EligibilityPath)
	assert.Equal(t, models.StageApproved, result.State.ConversationStage)
	require.NotNil(t, result.Approval)

	// Tenure choice completes the loan.
	result, err = orch.ProcessTurn(ctx, id, "60 months please")
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, result.State.ConversationStage)
	assert.Equal(t, 60, result.State.SelectedTenure)
	assert.InDelta(t, 10258.3, result.State.FinalEMI, 1.0)

	letter, err := orch.SanctionLetter(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, letter, "Rohan Mehta")
	assert.Contains(t, letter, "60 months")

	pdf, err := orch.SanctionLetterPDF(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	require.Len(t, auditor.events, 1)
	assert.Equal(t, models.PathFastTrack, auditor.events[0].Path)
}

func TestProcessTurn_SingleMessageWithBothSlots(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	result, err := orch.ProcessTurn(ctx, id, "9876543210, looking for 5 lakhs")
	require.NoError(t, err)
	assert.Equal(t, models.PathFastTrack, result.State.EligibilityPath)
	assert.Equal(t, models.StageApproved, result.State.ConversationStage)
}

func TestProcessTurn_ConditionalDocumentFlow(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	// 5 lakh against a 3 lakh limit needs a salary slip.
	result, err := orch.ProcessTurn(ctx, id, "9998887776 and i want 5 lakhs")
	require.NoError(t, err)
	assert.Equal(t, models.PathConditional, result.State.EligibilityPath)
	assert.Equal(t, models.StageDocumentNeeded, result.State.ConversationStage)
	assert.Contains(t, result.Message, "salary slip")

	_, err = orch.MarkDocumentUploaded(ctx, id)
	require.NoError(t, err)

	// Next message re-evaluates with the document present.
	result, err = orch.ProcessTurn(ctx, id, "uploaded it, please check")
	require.NoError(t, err)
	assert.Equal(t, models.PathConditional, result.State.EligibilityPath)
	assert.Equal(t, models.StageCompleted, result.State.ConversationStage)
	assert.Contains(t, result.Message, "conditionally approved")
}

func TestProcessTurn_BlacklistedManualReview(t *testing.T) {
	orch, auditor := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	result, err := orch.ProcessTurn(ctx, id, "8887776665 needs 3 lakhs")
	require.NoError(t, err)
	assert.Equal(t, models.PathManualReview, result.State.EligibilityPath)
	assert.Equal(t, models.StageCompleted, result.State.ConversationStage)
	require.Len(t, auditor.events, 1)
	assert.Equal(t, string(fraud.StatusBlacklisted), auditor.events[0].FraudStatus)
}

func TestProcessTurn_UnknownCustomerRegisters(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	result, err := orch.ProcessTurn(ctx, id, "9123456789, 5 lakhs")
	require.NoError(t, err)
	assert.Equal(t, models.PathRegister, result.State.EligibilityPath)
	assert.Equal(t, models.StageCompleted, result.State.ConversationStage)
	assert.True(t, result.State.NotInCRM)
	assert.Contains(t, result.Message, "register")
}

func TestProcessTurn_HardReject(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	result, err := orch.ProcessTurn(ctx, id, "7776665554 wants 10 lakhs")
	require.NoError(t, err)
	assert.Equal(t, models.PathHardReject, result.State.EligibilityPath)
	assert.Equal(t, models.StageCompleted, result.State.ConversationStage)

	_, err = orch.SanctionLetter(ctx, id)
	require.Error(t, err)
	standardErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeLetterNotReady, standardErr.Code)
}

// ============================================================================
// STATE RULES
// ============================================================================

func TestProcessTurn_WriteOnceSlots(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	_, err := orch.ProcessTurn(ctx, id, "my phone is 9876543210")
	require.NoError(t, err)

	// A later phone never overwrites the first one.
	result, err := orch.ProcessTurn(ctx, id, "wait, use 9998887776 and 4 lakhs")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", result.State.Phone)
	assert.Equal(t, int64(400000), result.State.RequestedAmount)
}

func TestProcessTurn_CompletedSessionOnlyAcknowledges(t *testing.T) {
	orch, auditor := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	_, err := orch.ProcessTurn(ctx, id, "9123456789, 5 lakhs")
	require.NoError(t, err)

	result, err := orch.ProcessTurn(ctx, id, "can i still get 2 lakhs?")
	require.NoError(t, err)
	assert.Equal(t, completedMessage, result.Message)
	assert.Equal(t, models.PathRegister, result.State.EligibilityPath)
	assert.Len(t, auditor.events, 1, "completed sessions never re-decide")
}

func TestProcessTurn_ApprovedStageRepromptsUntilValidTenure(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	_, err := orch.ProcessTurn(ctx, id, "9876543210 for 5 lakhs")
	require.NoError(t, err)

	result, err := orch.ProcessTurn(ctx, id, "hmm let me think")
	require.NoError(t, err)
	assert.Equal(t, models.StageApproved, result.State.ConversationStage)
	assert.Contains(t, result.Message, "24, 36, 48, 60 or 72")

	result, err = orch.ProcessTurn(ctx, id, "3 years")
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, result.State.ConversationStage)
	assert.Equal(t, 36, result.State.SelectedTenure)
}

func TestProcessTurn_UnknownSession(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.ProcessTurn(context.Background(), "no-such-session", "hello")
	require.Error(t, err)
	standardErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeSessionNotFound, standardErr.Code)
}

func TestReset_StartsFresh(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	_, err := orch.ProcessTurn(ctx, id, "9876543210 for 5 lakhs")
	require.NoError(t, err)

	result, err := orch.Reset(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, result.State.Phone)
	assert.Equal(t, models.PathPending, result.State.EligibilityPath)
	assert.Equal(t, models.StageLoanUnderstanding, result.State.ConversationStage)
}

func TestProcessTurn_PromptsWithoutGeneratorUseFallbacks(t *testing.T) {
	orch, _ := newTestOrchestrator(t)
	ctx := context.Background()
	id := startSession(t, orch)

	result, err := orch.ProcessTurn(ctx, id, "hello, i would like a loan")
	require.NoError(t, err)
	assert.Equal(t, models.StagePhoneGathering, result.State.ConversationStage)
	assert.Contains(t, result.Message, "mobile number")
}
