// internal/agents/extract-slots/handler_test.go
package extractslots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
	"loan-assistant/internal/registry"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(LoadConfig(), registry.NewSeededRegistry(), logger.NewNoOpLogger())
}

// ============================================================================
// PHONE EXTRACTION AND REGISTRY RESOLUTION
// ============================================================================

func TestExecute_PhoneResolution(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name         string
		text         string
		wantPhone    string
		wantVerified bool
		wantNotInCRM bool
		wantName     string
		wantLimit    int64
	}{
		{
			name:         "known customer is verified with registry facts",
			text:         "my number is 9876543210",
			wantPhone:    "9876543210",
			wantVerified: true,
			wantName:     "Rohan Mehta",
			wantLimit:    600000,
		},
		{
			name:         "unknown phone is flagged not in crm",
			text:         "call me on 9123456789 please",
			wantPhone:    "9123456789",
			wantNotInCRM: true,
		},
		{
			name: "nine digits is not a phone",
			text: "my number is 987654321",
		},
		{
			name: "eleven digit run is not a phone",
			text: "id 98765432101 on file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handler.Execute(context.Background(), &Input{
				Text:  tt.text,
				State: models.NewApplicationState("sess-1"),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantPhone, out.Candidates.Phone)
			assert.Equal(t, tt.wantVerified, out.Candidates.Verified)
			assert.Equal(t, tt.wantNotInCRM, out.Candidates.NotInCRM)
			assert.Equal(t, tt.wantName, out.Candidates.CustomerName)
			assert.Equal(t, tt.wantLimit, out.Candidates.PreApprovedLimit)
		})
	}
}

func TestExecute_PhoneNotReextractedOnceSet(t *testing.T) {
	handler := newTestHandler(t)

	state := models.NewApplicationState("sess-1")
	state.Phone = "9876543210"

	out, err := handler.Execute(context.Background(), &Input{
		Text:  "actually use 9998887776 instead",
		State: state,
	})
	require.NoError(t, err)
	assert.Empty(t, out.Candidates.Phone)
}

// ============================================================================
// AMOUNT EXTRACTION
// ============================================================================

func TestExecute_AmountExtraction(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name       string
		text       string
		wantAmount int64
	}{
		{"lakh phrasing", "i need 5 lakhs for renovation", 500000},
		{"fractional lakh", "around 7.5 lakh would do", 750000},
		{"lac spelling", "give me 3 lac", 300000},
		{"small lakh figure taken at face value", "0.5 lakh should do", 50000},
		{"crore phrasing", "looking for 1 crore", 10000000},
		{"large crore figure taken at face value", "15 crores for expansion", 150000000},
		{"rupees with commas", "rupees 4,50,000 roughly", 0}, // indian grouping not parsed as one number
		{"rs prefix", "rs 450000 please", 450000},
		{"bare six digit number", "i want 500000 loan", 500000},
		{"bare number below floor ignored", "maybe 50000 only", 0},
		{"bare number above ceiling ignored", "need 999999999", 0},
		{"lakh beats bare number in same message", "5 lakhs not 200000", 500000},
		{"no amount", "hello there", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handler.Execute(context.Background(), &Input{
				Text:  tt.text,
				State: models.NewApplicationState("sess-1"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, out.Candidates.RequestedAmount)
		})
	}
}

func TestExecute_AmountNotReextractedOnceSet(t *testing.T) {
	handler := newTestHandler(t)

	state := models.NewApplicationState("sess-1")
	state.RequestedAmount = 500000

	out, err := handler.Execute(context.Background(), &Input{
		Text:  "make it 8 lakhs instead",
		State: state,
	})
	require.NoError(t, err)
	assert.Zero(t, out.Candidates.RequestedAmount)
}

// ============================================================================
// INCOME EXTRACTION
// ============================================================================

func TestExecute_IncomeExtraction(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name       string
		text       string
		wantIncome int64
	}{
		{"income is phrasing", "my monthly income is 85,000", 85000},
		{"earn phrasing", "i earn rs 60000", 60000},
		{"salary phrasing", "salary is rupees 70,000", 70000},
		{"per month suffix", "rs 45000 per month", 45000},
		{"bare number is not income", "85000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handler.Execute(context.Background(), &Input{
				Text:  tt.text,
				State: models.NewApplicationState("sess-1"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantIncome, out.Candidates.Income)
		})
	}
}

// ============================================================================
// TENURE EXTRACTION
// ============================================================================

func TestExecute_TenureOnlyAfterApproval(t *testing.T) {
	handler := newTestHandler(t)

	pre := models.NewApplicationState("sess-1")
	out, err := handler.Execute(context.Background(), &Input{Text: "36 months", State: pre})
	require.NoError(t, err)
	assert.Zero(t, out.Candidates.SelectedTenure, "tenure must be ignored before approval")

	post := models.NewApplicationState("sess-1")
	post.ConversationStage = models.StageApproved

	tests := []struct {
		name       string
		text       string
		wantTenure int
	}{
		{"months phrasing", "36 months works", 36},
		{"bare supported number", "60", 60},
		{"years phrasing", "lets do 3 years", 36},
		{"five years", "5 yrs", 60},
		{"unsupported count ignored", "30 months", 0},
		{"lowest month figure wins when two are named", "either 24 or 36 months works", 24},
		{"month figure beats years phrasing", "2 years, or say 48 months", 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handler.Execute(context.Background(), &Input{Text: tt.text, State: post})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTenure, out.Candidates.SelectedTenure)
		})
	}
}

func TestExecute_TenureSelectionIsStable(t *testing.T) {
	handler := newTestHandler(t)

	state := models.NewApplicationState("sess-1")
	state.ConversationStage = models.StageApproved

	// The same ambiguous message must resolve to the same tenure on
	// every turn.
	for i := 0; i < 100; i++ {
		out, err := handler.Execute(context.Background(), &Input{
			Text:  "either 24 or 36 months works",
			State: state,
		})
		require.NoError(t, err)
		require.Equal(t, 24, out.Candidates.SelectedTenure)
	}
}
