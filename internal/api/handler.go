// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	stderrors "loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/validation"
	"loan-assistant/internal/orchestrator"
)

const maxBodyBytes = 64 * 1024

// Handler exposes the conversation over HTTP.
type Handler struct {
	orch   *orchestrator.Orchestrator
	logger logger.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, log logger.Logger) *Handler {
	return &Handler{
		orch:   orch,
		logger: log,
	}
}

// CreateSession starts a new conversation and returns the greeting.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	result, err := h.orch.CreateSession(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sessionID,
		Message:   result.Message,
		State:     result.State,
	})
}

// PostMessage runs one conversational turn.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req messageRequest
	if !h.decodeAndValidate(w, r, &req, validation.MessageRequestSchema) {
		return
	}

	result, err := h.orch.ProcessTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sessionID,
		Message:   result.Message,
		State:     result.State,
		Approval:  result.Approval,
	})
}

// PostDocument marks the salary slip as uploaded.
func (h *Handler) PostDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req documentRequest
	if !h.decodeAndValidate(w, r, &req, validation.DocumentRequestSchema) {
		return
	}

	sess, err := h.orch.MarkDocumentUploaded(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sessionID,
		Message:   "Thanks! Your salary slip is in. Send me a message and I'll re-check your application.",
		State:     sess.State,
	})
}

// GetSession returns the current state and transcript.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.orch.GetSession(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, historyResponse{
		SessionID: sessionID,
		State:     sess.State,
		History:   sess.History,
	})
}

// ResetSession discards the conversation and starts over.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	result, err := h.orch.Reset(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sessionID,
		Message:   result.Message,
		State:     result.State,
	})
}

// GetLetter returns the plain-text sanction letter.
func (h *Handler) GetLetter(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	letter, err := h.orch.SanctionLetter(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, letterResponse{
		SessionID: sessionID,
		Letter:    letter,
	})
}

// GetLetterPDF streams the sanction letter as a PDF download.
func (h *Handler) GetLetterPDF(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	data, err := h.orch.SanctionLetterPDF(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sanction-letter.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeAndValidate reads the body, schema-checks it, then unmarshals
// into dst. Writes the error response itself and reports success.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, schema map[string]interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, stderrors.NewInvalidRequestError("unreadable request body"))
		return false
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		h.writeError(w, stderrors.NewInvalidRequestError("request body must be a JSON object"))
		return false
	}

	result, err := validation.Validate(raw, schema)
	if err != nil {
		h.writeError(w, err)
		return false
	}
	if !result.Valid {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    string(stderrors.ErrCodeInvalidRequest),
			Message: "request failed validation",
			Details: result.Errors,
		})
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		h.writeError(w, stderrors.NewInvalidRequestError("request body does not match the expected shape"))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		resp := errorResponse{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
		}
		if stdErr.Details != "" {
			resp.Details = stdErr.Details
		}
		h.writeJSON(w, statusFor(stdErr.Code), resp)
		return
	}
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:    string(stderrors.ErrCodeTurnFault),
		Message: "internal error",
	})
}

func statusFor(code stderrors.ErrorCode) int {
	switch code {
	case stderrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case stderrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case stderrors.ErrCodeLetterNotReady:
		return http.StatusConflict
	case stderrors.ErrCodeRegistryLookupFailed, stderrors.ErrCodeSessionStoreFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
