// internal/agents/extract-slots/handler.go
package extractslots

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
	"loan-assistant/internal/registry"
)

// Compiled once at package load.
var (
	phoneRegex = regexp.MustCompile(`\b\d{10}\b`)

	// Amount patterns, highest priority first. The first pattern that
	// matches wins; at most one amount is taken per message.
	lakhRegex   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:lakhs?|lacs?)`)
	croreRegex  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*crores?`)
	rupeeRegex  = regexp.MustCompile(`\b(?:rupees?|rs)\.?\s*(\d+(?:,\d{3})*(?:\d+)?)`)
	bigNumRegex = regexp.MustCompile(`\b(\d{6,8})\b`)

	incomeRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?:monthly income|income is|i earn|earn|salary is|salary)\s*(?:of\s*)?(?:rupees?|rs)?\.?\s*(\d+(?:,\d{3})*(?:\d+)?)`),
		regexp.MustCompile(`\b(?:rupees?|rs)\.?\s*(\d+(?:,\d{3})*(?:\d+)?)\s*(?:per month|monthly|a month)`),
	}

	// Tenure patterns in fixed priority order: exact month figures
	// first, then a year count. The first match wins.
	tenurePatterns = []tenurePattern{
		{24, regexp.MustCompile(`\b24\b\s*(?:months?)?`)},
		{36, regexp.MustCompile(`\b36\b\s*(?:months?)?`)},
		{48, regexp.MustCompile(`\b48\b\s*(?:months?)?`)},
		{60, regexp.MustCompile(`\b60\b\s*(?:months?)?`)},
		{72, regexp.MustCompile(`\b72\b\s*(?:months?)?`)},
	}
	yearsRegex = regexp.MustCompile(`\b([2-6])\s*(?:years?|yrs?)\b`)
)

type tenurePattern struct {
	months int
	re     *regexp.Regexp
}

// Handler scans a user message for slot values and resolves any phone
// number against the customer registry. Its findings are advisory; the
// orchestrator applies them under write-once rules.
type Handler struct {
	config   *Config
	registry registry.Registry
	logger   logger.Logger
}

func NewHandler(config *Config, reg registry.Registry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		registry: reg,
		logger:   log,
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	text := strings.ToLower(input.Text)
	out := &Output{}

	h.extractPhone(ctx, input.Text, input.State, &out.Candidates)
	h.extractAmount(text, input.State, &out.Candidates)
	h.extractIncome(text, input.State, &out.Candidates)
	h.extractTenure(text, input.State, &out.Candidates)

	return out, nil
}

func (h *Handler) extractPhone(ctx context.Context, raw string, state *models.ApplicationState, c *Candidates) {
	if state.Phone != "" {
		return
	}
	match := phoneRegex.FindString(raw)
	if match == "" {
		return
	}
	c.Phone = match

	record, err := h.registry.Lookup(ctx, match)
	if err != nil {
		// Phone still counts as captured; verification is retried on a
		// later turn through the decision path.
		h.logger.Warn("registry lookup failed during extraction", map[string]interface{}{
			"session_id": state.SessionID,
			"error":      err.Error(),
		})
		return
	}
	if record == nil {
		c.NotInCRM = true
		return
	}
	c.Verified = true
	c.CustomerName = record.Name
	c.CreditScore = record.CreditScore
	c.PreApprovedLimit = record.ApprovedAmount
	c.RegistryIncome = record.Income
}

func (h *Handler) extractAmount(text string, state *models.ApplicationState, c *Candidates) {
	if state.RequestedAmount > 0 {
		return
	}
	// Unit-bearing phrasings are taken at face value; only bare rupee
	// figures are range checked.
	if m := lakhRegex.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			c.RequestedAmount = int64(v * 100000)
		}
		return
	}
	if m := croreRegex.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			c.RequestedAmount = int64(v * 10000000)
		}
		return
	}
	if m := rupeeRegex.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseInt(stripCommas(m[1]), 10, 64); err == nil {
			c.RequestedAmount = h.clampAmount(v)
		}
		return
	}
	if m := bigNumRegex.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			c.RequestedAmount = h.clampAmount(v)
		}
	}
}

// clampAmount drops out-of-range candidates rather than adjusting them.
func (h *Handler) clampAmount(v int64) int64 {
	if v < h.config.MinLoanAmount || v > h.config.MaxLoanAmount {
		return 0
	}
	return v
}

func (h *Handler) extractIncome(text string, state *models.ApplicationState, c *Candidates) {
	if state.Income > 0 {
		return
	}
	for _, re := range incomeRegexes {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseInt(stripCommas(m[1]), 10, 64); err == nil && v > 0 {
				c.Income = v
				return
			}
		}
	}
}

// Tenure is only a live slot once the application has been approved;
// bare numbers in earlier stages are amounts or noise.
func (h *Handler) extractTenure(text string, state *models.ApplicationState, c *Candidates) {
	if state.ConversationStage != models.StageApproved {
		return
	}
	for _, p := range tenurePatterns {
		if p.re.MatchString(text) {
			c.SelectedTenure = p.months
			return
		}
	}
	if m := yearsRegex.FindStringSubmatch(text); m != nil {
		years, _ := strconv.Atoi(m[1])
		c.SelectedTenure = years * 12
	}
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
