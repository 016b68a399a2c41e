// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	calculateemi "loan-assistant/internal/agents/calculate-emi"
	evaluateeligibility "loan-assistant/internal/agents/evaluate-eligibility"
	extractslots "loan-assistant/internal/agents/extract-slots"
	generatereply "loan-assistant/internal/agents/generate-reply"
	resolvemissing "loan-assistant/internal/agents/resolve-missing"
	sanctionletter "loan-assistant/internal/agents/sanction-letter"
	"loan-assistant/internal/audit"
	stderrors "loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
	"loan-assistant/internal/common/observability"
	"loan-assistant/internal/models"
	"loan-assistant/internal/notify"
	"loan-assistant/internal/registry"
	"loan-assistant/internal/session"
)

const (
	retryMessage = "I'm sorry, something went wrong on my side. Your details are safe; please send that again."

	completedMessage = "Your application is already complete. You can start a fresh one anytime if you need another loan."

	tenureReprompt = "Please pick one of the available tenures to finalize your loan: 24, 36, 48, 60 or 72 months."
)

// Orchestrator runs the per-turn pipeline: extract, resolve, then
// either decide or prompt. It owns all writes to session state and
// enforces the write-once slot rules.
type Orchestrator struct {
	extract  *extractslots.Handler
	resolve  *resolvemissing.Handler
	evaluate *evaluateeligibility.Handler
	reply    *generatereply.Handler
	letter   *sanctionletter.Handler

	sessions session.Store
	registry registry.Registry
	auditor  audit.Recorder
	notifier notify.Notifier
	obs      *observability.Observability
	logger   logger.Logger

	annualRatePercent   float64
	defaultTenureMonths int
}

type Options struct {
	Extract  *extractslots.Handler
	Resolve  *resolvemissing.Handler
	Evaluate *evaluateeligibility.Handler
	Reply    *generatereply.Handler
	Letter   *sanctionletter.Handler

	Sessions session.Store
	Registry registry.Registry
	Auditor  audit.Recorder
	Notifier notify.Notifier
	Obs      *observability.Observability
	Logger   logger.Logger

	// Policy settings used when rebuilding approval contexts. Zero
	// values fall back to the standard terms.
	AnnualRatePercent   float64
	DefaultTenureMonths int
}

func New(opts Options) *Orchestrator {
	if opts.Auditor == nil {
		opts.Auditor = audit.NoopRecorder{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NoopNotifier{}
	}
	if opts.AnnualRatePercent == 0 {
		opts.AnnualRatePercent = 8.5
	}
	if opts.DefaultTenureMonths == 0 {
		opts.DefaultTenureMonths = 60
	}
	return &Orchestrator{
		extract:             opts.Extract,
		resolve:             opts.Resolve,
		evaluate:            opts.Evaluate,
		reply:               opts.Reply,
		letter:              opts.Letter,
		sessions:            opts.Sessions,
		registry:            opts.Registry,
		auditor:             opts.Auditor,
		notifier:            opts.Notifier,
		obs:                 opts.Obs,
		logger:              opts.Logger,
		annualRatePercent:   opts.AnnualRatePercent,
		defaultTenureMonths: opts.DefaultTenureMonths,
	}
}

// CreateSession starts a conversation and returns the greeting.
func (o *Orchestrator) CreateSession(ctx context.Context, sessionID string) (*models.TurnResult, error) {
	sess := &session.Session{
		State: models.NewApplicationState(sessionID),
		History: []models.Message{
			{Role: "assistant", Content: generatereply.Greeting},
		},
	}
	if err := o.sessions.Put(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	return &models.TurnResult{
		Message: generatereply.Greeting,
		State:   sess.State,
	}, nil
}

// GetSession returns the stored conversation, or a SESSION_NOT_FOUND
// error when the id is unknown.
func (o *Orchestrator) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, stderrors.NewSessionNotFoundError(sessionID)
	}
	return sess, nil
}

// ProcessTurn handles one customer message end to end. A panic inside
// the pipeline is converted into a retry reply and the pre-turn state
// is preserved.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID, userText string) (result *models.TurnResult, err error) {
	sess, err := o.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := o.startSpan(ctx, sessionID)
	defer o.endSpan(span)

	defer func() {
		if r := recover(); r != nil {
			metrics.TurnFaults.Inc()
			o.logger.Error("turn pipeline panicked", map[string]interface{}{
				"session_id": sessionID,
				"panic":      r,
			})
			result = &models.TurnResult{Message: retryMessage, State: sess.State}
			err = nil
		}
	}()

	result, err = o.runTurn(ctx, sess, userText)
	if err != nil {
		// Infrastructure faults keep the state untouched and ask the
		// customer to retry.
		metrics.TurnFaults.Inc()
		o.logger.Error("turn failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return &models.TurnResult{Message: retryMessage, State: sess.State}, nil
	}

	stage := string(result.State.ConversationStage)
	metrics.TurnsProcessed.WithLabelValues(stage).Inc()
	metrics.TurnDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if o.obs != nil {
		o.obs.RecordTurnProcessed(ctx, stage)
		o.obs.RecordTurnDuration(ctx, time.Since(start), stage)
	}
	return result, nil
}

func (o *Orchestrator) runTurn(ctx context.Context, sess *session.Session, userText string) (*models.TurnResult, error) {
	state := sess.State
	sess.History = append(sess.History, models.Message{Role: "user", Content: userText})

	// Completed conversations only acknowledge; the decision is never
	// recomputed.
	if state.ConversationStage == models.StageCompleted {
		return o.finishTurn(ctx, sess, completedMessage, nil)
	}

	extracted, err := o.extract.Execute(ctx, &extractslots.Input{Text: userText, State: state})
	if err != nil {
		return nil, err
	}
	mergeCandidates(state, extracted.Candidates)

	// An approved application is only waiting on a tenure choice.
	if state.ConversationStage == models.StageApproved {
		return o.handleTenureTurn(ctx, sess, extracted.Candidates.SelectedTenure)
	}

	resolved, err := o.resolve.Execute(ctx, &resolvemissing.Input{State: state})
	if err != nil {
		return nil, err
	}

	if resolved.ReadyForDecision {
		return o.handleDecisionTurn(ctx, sess)
	}

	state.ConversationStage = resolved.Stage
	replyOut, err := o.reply.Execute(ctx, &generatereply.Input{
		State:     state,
		History:   sess.History,
		UserText:  userText,
		NextField: resolved.NextField,
	})
	if err != nil {
		return nil, err
	}
	return o.finishTurn(ctx, sess, replyOut.Message, nil)
}

func (o *Orchestrator) handleDecisionTurn(ctx context.Context, sess *session.Session) (*models.TurnResult, error) {
	state := sess.State
	decision, err := o.evaluate.Execute(ctx, &evaluateeligibility.Input{State: state})
	if err != nil {
		return nil, err
	}

	state.EligibilityPath = decision.Path
	state.ConversationStage = decision.Stage
	if decision.Path == models.PathRegister {
		state.NotInCRM = true
	}

	o.recordDecision(ctx, state, decision)
	if decision.Stage.Terminal() {
		o.notifier.NotifyDecision(ctx, state, decision.Message)
	}
	return o.finishTurn(ctx, sess, decision.Message, decision.Approval)
}

func (o *Orchestrator) handleTenureTurn(ctx context.Context, sess *session.Session, tenure int) (*models.TurnResult, error) {
	state := sess.State
	if tenure == 0 {
		return o.finishTurn(ctx, sess, tenureReprompt, nil)
	}

	finalized, err := o.evaluate.FinalizeTenure(ctx, &evaluateeligibility.TenureInput{
		State:        state,
		TenureMonths: tenure,
	})
	if err != nil {
		o.logger.Warn("tenure finalization rejected", map[string]interface{}{
			"session_id": state.SessionID,
			"tenure":     tenure,
			"error":      err.Error(),
		})
		return o.finishTurn(ctx, sess, tenureReprompt, nil)
	}

	state.SelectedTenure = tenure
	state.FinalEMI = finalized.EMI
	state.ConversationStage = finalized.Stage
	o.notifier.NotifyDecision(ctx, state, finalized.Message)
	return o.finishTurn(ctx, sess, finalized.Message, finalized.Approval)
}

// finishTurn appends the assistant reply, persists the session and
// builds the result.
func (o *Orchestrator) finishTurn(ctx context.Context, sess *session.Session, message string, approval *models.ApprovalContext) (*models.TurnResult, error) {
	sess.History = append(sess.History, models.Message{Role: "assistant", Content: message})
	sess.State.UpdatedAt = time.Now().UTC()
	if err := o.sessions.Put(ctx, sess.State.SessionID, sess); err != nil {
		return nil, err
	}
	return &models.TurnResult{
		Message:  message,
		State:    sess.State,
		Approval: approval,
	}, nil
}

// MarkDocumentUploaded flips the salary-slip flag. The application is
// re-evaluated on the customer's next message.
func (o *Orchestrator) MarkDocumentUploaded(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := o.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.State.DocumentUploaded {
		sess.State.DocumentUploaded = true
		sess.State.UpdatedAt = time.Now().UTC()
		if err := o.sessions.Put(ctx, sessionID, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// Reset discards the conversation and starts over under the same id.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) (*models.TurnResult, error) {
	if err := o.sessions.Delete(ctx, sessionID); err != nil {
		return nil, err
	}
	return o.CreateSession(ctx, sessionID)
}

// SanctionLetter renders the plain-text letter for a completed
// approval.
func (o *Orchestrator) SanctionLetter(ctx context.Context, sessionID string) (string, error) {
	approval, err := o.approvalFor(ctx, sessionID)
	if err != nil {
		return "", err
	}
	out, err := o.letter.Execute(ctx, &sanctionletter.Input{Approval: approval})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// SanctionLetterPDF renders the downloadable letter.
func (o *Orchestrator) SanctionLetterPDF(ctx context.Context, sessionID string) ([]byte, error) {
	approval, err := o.approvalFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return o.letter.RenderPDF(ctx, approval)
}

// approvalFor rebuilds the approval context for a finished loan. Both
// the fast-track and the post-document conditional path qualify.
func (o *Orchestrator) approvalFor(ctx context.Context, sessionID string) (*models.ApprovalContext, error) {
	sess, err := o.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.State

	approvedPath := state.EligibilityPath == models.PathFastTrack ||
		(state.EligibilityPath == models.PathConditional && state.DocumentUploaded)
	if !approvedPath || state.ConversationStage != models.StageCompleted {
		return nil, stderrors.NewLetterNotReadyError(sessionID)
	}

	record, err := o.registry.Lookup(ctx, state.Phone)
	if err != nil {
		return nil, stderrors.NewRegistryLookupFailedError(err)
	}

	tenure := state.SelectedTenure
	if tenure == 0 {
		tenure = o.defaultTenureMonths
	}
	approval := &models.ApprovalContext{
		Phone:           state.Phone,
		RequestedAmount: state.RequestedAmount,
		Income:          state.Income,
		InterestRate:    o.annualRatePercent,
		TenureMonths:    tenure,
		EMI:             calculateemi.EMI(float64(state.RequestedAmount), o.annualRatePercent, tenure),
		ReferenceID:     "LOAN" + state.Phone,
	}
	if record != nil {
		approval.CustomerName = record.Name
		approval.PreApprovedLimit = record.ApprovedAmount
		approval.CreditScore = record.CreditScore
		if approval.Income == 0 {
			approval.Income = record.Income
		}
	}
	if state.FinalEMI > 0 {
		approval.EMI = state.FinalEMI
	}
	return approval, nil
}

func (o *Orchestrator) recordDecision(ctx context.Context, state *models.ApplicationState, decision *evaluateeligibility.Output) {
	event := audit.DecisionEvent{
		SessionID:       state.SessionID,
		Phone:           state.Phone,
		Path:            decision.Path,
		Stage:           decision.Stage,
		RequestedAmount: state.RequestedAmount,
		FraudStatus:     string(decision.FraudStatus),
	}
	if err := o.auditor.RecordDecision(ctx, event); err != nil {
		o.logger.Warn("decision audit failed", map[string]interface{}{
			"session_id": state.SessionID,
			"error":      err.Error(),
		})
	}
}

func (o *Orchestrator) startSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	if o.obs == nil {
		return ctx, nil
	}
	return o.obs.StartTurnSpan(ctx, sessionID)
}

func (o *Orchestrator) endSpan(span trace.Span) {
	if span != nil {
		span.End()
	}
}

// mergeCandidates applies extracted values under write-once rules.
// Slots already filled keep their value; registry facts only land on a
// fresh verification.
func mergeCandidates(state *models.ApplicationState, c extractslots.Candidates) {
	if state.Phone == "" && c.Phone != "" {
		state.Phone = c.Phone
		if c.Verified {
			state.Verified = true
			state.CustomerName = c.CustomerName
			state.CreditScore = c.CreditScore
			state.PreApprovedLimit = c.PreApprovedLimit
			if state.Income == 0 && c.RegistryIncome > 0 {
				state.Income = c.RegistryIncome
			}
		}
		if c.NotInCRM {
			state.NotInCRM = true
		}
	}
	if state.RequestedAmount == 0 && c.RequestedAmount > 0 {
		state.RequestedAmount = c.RequestedAmount
	}
	if state.Income == 0 && c.Income > 0 {
		state.Income = c.Income
	}
}
