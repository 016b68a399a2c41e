// test/e2e/e2e_test.go
//
// End-to-end conversations against the full HTTP surface. Everything
// runs in process: chi router, orchestrator, in-memory session store
// and seeded registry, with the language model replaced by static
// prompts.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calculateemi "loan-assistant/internal/agents/calculate-emi"
	evaluateeligibility "loan-assistant/internal/agents/evaluate-eligibility"
	extractslots "loan-assistant/internal/agents/extract-slots"
	generatereply "loan-assistant/internal/agents/generate-reply"
	resolvemissing "loan-assistant/internal/agents/resolve-missing"
	sanctionletter "loan-assistant/internal/agents/sanction-letter"
	"loan-assistant/internal/api"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/fraud"
	"loan-assistant/internal/models"
	"loan-assistant/internal/orchestrator"
	"loan-assistant/internal/registry"
	"loan-assistant/internal/session"
)

type turnResponse struct {
	SessionID string                   `json:"sessionId"`
	Message   string                   `json:"message"`
	State     *models.ApplicationState `json:"state"`
	Approval  *models.ApprovalContext  `json:"approval"`
}

type client struct {
	t   *testing.T
	srv *httptest.Server
	id  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	log := logger.NewNoOpLogger()
	reg := registry.NewSeededRegistry()
	emi := calculateemi.NewHandler(log)

	orch := orchestrator.New(orchestrator.Options{
		Extract:  extractslots.NewHandler(extractslots.LoadConfig(), reg, log),
		Resolve:  resolvemissing.NewHandler(log),
		Evaluate: evaluateeligibility.NewHandler(evaluateeligibility.LoadConfig(), reg, fraud.NewBlacklistScreener(log), log),
		Reply:    generatereply.NewHandler(generatereply.LoadConfig(), nil, log),
		Letter:   sanctionletter.NewHandler(emi, log),
		Sessions: session.NewMemoryStore(),
		Registry: reg,
		Logger:   log,
	})

	r := chi.NewRouter()
	api.RegisterRoutes(r, api.NewHandler(orch, log))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c := &client{t: t, srv: srv}
	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body turnResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	c.id = body.SessionID
	return c
}

func (c *client) say(message string) turnResponse {
	c.t.Helper()
	payload, _ := json.Marshal(map[string]string{"message": message})
	resp, err := http.Post(
		fmt.Sprintf("%s/api/sessions/%s/messages", c.srv.URL, c.id),
		"application/json", bytes.NewReader(payload))
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	var body turnResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func (c *client) uploadDocument() turnResponse {
	c.t.Helper()
	payload, _ := json.Marshal(map[string]string{"documentType": "salary_slip"})
	resp, err := http.Post(
		fmt.Sprintf("%s/api/sessions/%s/document", c.srv.URL, c.id),
		"application/json", bytes.NewReader(payload))
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	var body turnResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestE2E_FastTrackConversation(t *testing.T) {
	c := newClient(t)

	turn := c.say("hello, i would like a personal loan")
	assert.Equal(t, models.StagePhoneGathering, turn.State.ConversationStage)

	turn = c.say("sure, my number is 9876543210")
	assert.True(t, turn.State.Verified)
	assert.Equal(t, "Rohan Mehta", turn.State.CustomerName)

	turn = c.say("i need 5 lakhs")
	assert.Equal(t, models.PathFastTrack, turn.State.EligibilityPath)
	assert.Equal(t, models.StageApproved, turn.State.ConversationStage)
	require.NotNil(t, turn.Approval)
	assert.Equal(t, "LOAN9876543210", turn.Approval.ReferenceID)

	turn = c.say("4 years sounds good")
	assert.Equal(t, models.StageCompleted, turn.State.ConversationStage)
	assert.Equal(t, 48, turn.State.SelectedTenure)
	assert.Greater(t, turn.State.FinalEMI, 0.0)

	resp, err := http.Get(fmt.Sprintf("%s/api/sessions/%s/letter.pdf", c.srv.URL, c.id))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestE2E_ConditionalWithSalarySlip(t *testing.T) {
	c := newClient(t)

	turn := c.say("9998887776 here, looking for 5 lakhs")
	assert.Equal(t, models.PathConditional, turn.State.EligibilityPath)
	assert.Equal(t, models.StageDocumentNeeded, turn.State.ConversationStage)

	upload := c.uploadDocument()
	assert.True(t, upload.State.DocumentUploaded)

	turn = c.say("uploaded, please continue")
	assert.Equal(t, models.StageCompleted, turn.State.ConversationStage)
	assert.Contains(t, turn.Message, "conditionally approved")
}

func TestE2E_RejectionAndRegistration(t *testing.T) {
	t.Run("hard reject", func(t *testing.T) {
		c := newClient(t)
		turn := c.say("7776665554 and i want 10 lakhs")
		assert.Equal(t, models.PathHardReject, turn.State.EligibilityPath)
	})

	t.Run("unknown customer", func(t *testing.T) {
		c := newClient(t)
		turn := c.say("9123456789 needs 5 lakhs")
		assert.Equal(t, models.PathRegister, turn.State.EligibilityPath)
		assert.Contains(t, turn.Message, "register")
	})

	t.Run("blacklisted customer", func(t *testing.T) {
		c := newClient(t)
		turn := c.say("8887776665 wants 3 lakhs")
		assert.Equal(t, models.PathManualReview, turn.State.EligibilityPath)
	})
}

func TestE2E_SlotsAccumulateAcrossTurns(t *testing.T) {
	c := newClient(t)

	c.say("i earn rs 85000 per month")
	c.say("my number is 9876543210")
	turn := c.say("5 lakhs please")

	assert.Equal(t, int64(85000), turn.State.Income)
	assert.Equal(t, "9876543210", turn.State.Phone)
	assert.Equal(t, models.PathFastTrack, turn.State.EligibilityPath)
}
