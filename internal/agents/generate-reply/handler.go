// internal/agents/generate-reply/handler.go
package generatereply

import (
	"context"
	"errors"
	"fmt"
	"strings"

	resolvemissing "loan-assistant/internal/agents/resolve-missing"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
)

// Greeting opens every new conversation before any slot is known.
const Greeting = "Hello! I'm your personal loan assistant. I can check your eligibility and get you an instant decision. " +
	"To get started, how much loan are you looking for, and what is your registered mobile number?"

var fallbackPrompts = map[resolvemissing.Field]string{
	resolvemissing.FieldPhone:  "Could you share your 10-digit registered mobile number so I can look up your profile?",
	resolvemissing.FieldAmount: "How much loan are you looking for? You can say something like '5 lakhs' or 500000.",
	resolvemissing.FieldIncome: "Could you share your monthly income in rupees? It helps me find you the best terms.",
	resolvemissing.FieldNone:   "Could you tell me a bit more about what you need? I'm happy to help with your loan application.",
}

// Handler phrases the next conversational prompt. The language model
// supplies the wording; a static prompt set covers every failure so a
// customer always gets a usable reply.
type Handler struct {
	config    *Config
	generator TextGenerator
	logger    logger.Logger
}

func NewHandler(config *Config, generator TextGenerator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger:    log,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.generator == nil {
		return h.fallback(input, "no_generator"), nil
	}

	genCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	history := input.History
	if len(history) > h.config.HistoryWindow {
		history = history[len(history)-h.config.HistoryWindow:]
	}

	reply, err := h.generator.Generate(genCtx, h.systemPrompt(input), history, input.UserText)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		h.logger.Warn("reply generation failed, serving fallback", map[string]interface{}{
			"session_id": input.State.SessionID,
			"reason":     reason,
			"error":      err.Error(),
		})
		return h.fallback(input, reason), nil
	}

	reply = strings.TrimSpace(reply)
	if len(reply) < h.config.MinReplyLength {
		return h.fallback(input, "degenerate"), nil
	}
	return &Output{Message: reply}, nil
}

func (h *Handler) fallback(input *Input, reason string) *Output {
	metrics.GenerationFallbacks.WithLabelValues(reason).Inc()
	msg, ok := fallbackPrompts[input.NextField]
	if !ok {
		msg = fallbackPrompts[resolvemissing.FieldNone]
	}
	return &Output{
		Message:        msg,
		UsedFallback:   true,
		FallbackReason: reason,
	}
}

func (h *Handler) systemPrompt(input *Input) string {
	var b strings.Builder
	b.WriteString("You are a concise, friendly loan assistant for an Indian NBFC. ")
	b.WriteString("Never invent approval decisions, amounts or rates; those come from the eligibility system. ")
	b.WriteString("Ask for exactly one missing detail at a time.\n\n")

	state := input.State
	b.WriteString("Known so far:\n")
	if state.CustomerName != "" {
		fmt.Fprintf(&b, "- customer: %s\n", state.CustomerName)
	}
	if state.Phone != "" {
		fmt.Fprintf(&b, "- phone: %s (verified=%t)\n", state.Phone, state.Verified)
	}
	if state.RequestedAmount > 0 {
		fmt.Fprintf(&b, "- requested amount: %d\n", state.RequestedAmount)
	}
	if state.Income > 0 {
		fmt.Fprintf(&b, "- monthly income: %d\n", state.Income)
	}

	if input.NextField != resolvemissing.FieldNone {
		fmt.Fprintf(&b, "\nAsk the customer for their %s next.", fieldNoun(input.NextField))
	}
	return b.String()
}

func fieldNoun(f resolvemissing.Field) string {
	switch f {
	case resolvemissing.FieldPhone:
		return "10-digit registered mobile number"
	case resolvemissing.FieldAmount:
		return "desired loan amount"
	case resolvemissing.FieldIncome:
		return "monthly income"
	default:
		return "loan requirement"
	}
}
