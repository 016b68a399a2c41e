// internal/agents/evaluate-eligibility/handler.go
package evaluateeligibility

import (
	"context"
	"fmt"
	"strconv"

	calculateemi "loan-assistant/internal/agents/calculate-emi"
	stderrors "loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
	"loan-assistant/internal/fraud"
	"loan-assistant/internal/models"
	"loan-assistant/internal/registry"
)

var validTenures = map[int]bool{24: true, 36: true, 48: true, 60: true, 72: true}

// Handler applies the eligibility policy to a decision-ready
// application. Rules run in a fixed order and every outcome carries a
// deterministic customer-facing message, so re-running a decision for
// the same state always yields the same result.
type Handler struct {
	config   *Config
	registry registry.Registry
	screener fraud.Screener
	logger   logger.Logger
}

func NewHandler(config *Config, reg registry.Registry, screener fraud.Screener, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		registry: reg,
		screener: screener,
		logger:   log,
	}
}

// Execute evaluates the ordered eligibility rules. The registry record
// is re-read here so the decision always works from authoritative
// figures rather than whatever the conversation carried along.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	state := input.State
	if state.Phone == "" || state.RequestedAmount <= 0 {
		return nil, fmt.Errorf("decision requires phone and requested amount, got phone=%q amount=%d", state.Phone, state.RequestedAmount)
	}

	record, err := h.registry.Lookup(ctx, state.Phone)
	if err != nil {
		return nil, stderrors.NewRegistryLookupFailedError(err)
	}

	var out *Output
	switch {
	case record == nil:
		out = h.register(state)
	case state.RequestedAmount <= record.ApprovedAmount:
		out = h.withinLimit(ctx, state, record)
	default:
		out = h.aboveLimit(ctx, state, record)
	}

	metrics.Decisions.WithLabelValues(string(out.Path)).Inc()
	h.logger.Info("eligibility decided", map[string]interface{}{
		"session_id": state.SessionID,
		"path":       string(out.Path),
		"stage":      string(out.Stage),
		"amount":     state.RequestedAmount,
	})
	return out, nil
}

func (h *Handler) register(state *models.ApplicationState) *Output {
	return &Output{
		Path:  models.PathRegister,
		Stage: models.StageCompleted,
		Message: fmt.Sprintf(
			"I couldn't find %s in our customer records. You can register as a new customer at %s and we'll take it from there.",
			state.Phone, h.config.RegistrationURL),
	}
}

func (h *Handler) withinLimit(ctx context.Context, state *models.ApplicationState, record *models.CustomerRecord) *Output {
	status := h.screener.Screen(ctx, record)
	if status == fraud.StatusBlacklisted {
		return h.manualReview(record, status)
	}
	approval := h.buildApproval(state, record, h.config.DefaultTenureMonths)
	return &Output{
		Path:        models.PathFastTrack,
		Stage:       models.StageApproved,
		FraudStatus: status,
		Approval:    approval,
		Message: fmt.Sprintf(
			"Great news, %s! Your loan of Rs %s is approved; it sits comfortably within your pre-approved limit of Rs %s. "+
				"Please pick a repayment tenure to finalize: 24, 36, 48, 60 or 72 months.",
			record.Name, formatAmount(state.RequestedAmount), formatAmount(record.ApprovedAmount)),
	}
}

func (h *Handler) aboveLimit(ctx context.Context, state *models.ApplicationState, record *models.CustomerRecord) *Output {
	withinTwice := record.ApprovedAmount > 0 && state.RequestedAmount <= 2*record.ApprovedAmount
	strongScore := record.CreditScore >= 700
	if !withinTwice && !strongScore {
		return &Output{
			Path:  models.PathHardReject,
			Stage: models.StageCompleted,
			Message: fmt.Sprintf(
				"I'm sorry, %s. We can't approve Rs %s right now; it is well beyond your pre-approved limit of Rs %s and your current credit profile. "+
					"A request within your limit would go through instantly.",
				record.Name, formatAmount(state.RequestedAmount), formatAmount(record.ApprovedAmount)),
		}
	}

	if !state.DocumentUploaded {
		return &Output{
			Path:  models.PathConditional,
			Stage: models.StageDocumentNeeded,
			Message: fmt.Sprintf(
				"%s, Rs %s is above your pre-approved limit of Rs %s, so we need income verification. "+
					"Please upload your latest salary slip and we'll take it from there.",
				record.Name, formatAmount(state.RequestedAmount), formatAmount(record.ApprovedAmount)),
		}
	}

	status := h.screener.Screen(ctx, record)
	if status == fraud.StatusBlacklisted {
		return h.manualReview(record, status)
	}
	approval := h.buildApproval(state, record, h.config.DefaultTenureMonths)
	return &Output{
		Path:        models.PathConditional,
		Stage:       models.StageCompleted,
		FraudStatus: status,
		Approval:    approval,
		Message: fmt.Sprintf(
			"Thank you, %s. Your salary slip has been verified and your loan of Rs %s is conditionally approved. "+
				"Our team will share the final offer with you shortly.",
			record.Name, formatAmount(state.RequestedAmount)),
	}
}

func (h *Handler) manualReview(record *models.CustomerRecord, status fraud.Status) *Output {
	return &Output{
		Path:        models.PathManualReview,
		Stage:       models.StageCompleted,
		FraudStatus: status,
		Message: fmt.Sprintf(
			"Thank you, %s. Your application needs a quick manual check on our side. "+
				"A loan specialist will call you within 24 hours to complete it.",
			record.Name),
	}
}

// FinalizeTenure locks in the repayment tenure for an approved loan and
// computes the final EMI. It is the only transition out of the approved
// stage.
func (h *Handler) FinalizeTenure(ctx context.Context, input *TenureInput) (*TenureOutput, error) {
	state := input.State
	if state.ConversationStage != models.StageApproved {
		return nil, fmt.Errorf("tenure can only be finalized from the approved stage, got %q", state.ConversationStage)
	}
	if !validTenures[input.TenureMonths] {
		return nil, fmt.Errorf("unsupported tenure %d months", input.TenureMonths)
	}

	record, err := h.registry.Lookup(ctx, state.Phone)
	if err != nil {
		return nil, stderrors.NewRegistryLookupFailedError(err)
	}

	emi := calculateemi.EMI(float64(state.RequestedAmount), h.config.AnnualRatePercent, input.TenureMonths)
	approval := h.buildApproval(state, record, input.TenureMonths)

	return &TenureOutput{
		Stage:    models.StageCompleted,
		EMI:      emi,
		Approval: approval,
		Message: fmt.Sprintf(
			"Perfect! Your Rs %s loan over %d months comes to an EMI of Rs %s per month at %.1f%% per annum. "+
				"Your sanction letter is ready; you can download it anytime.",
			formatAmount(state.RequestedAmount), input.TenureMonths,
			formatAmount(int64(emi+0.5)), h.config.AnnualRatePercent),
	}, nil
}

func (h *Handler) buildApproval(state *models.ApplicationState, record *models.CustomerRecord, tenureMonths int) *models.ApprovalContext {
	approval := &models.ApprovalContext{
		Phone:           state.Phone,
		RequestedAmount: state.RequestedAmount,
		Income:          state.Income,
		InterestRate:    h.config.AnnualRatePercent,
		TenureMonths:    tenureMonths,
		EMI:             calculateemi.EMI(float64(state.RequestedAmount), h.config.AnnualRatePercent, tenureMonths),
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
	return approval
}

// formatAmount renders an integer rupee figure with thousands
// separators.
func formatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
