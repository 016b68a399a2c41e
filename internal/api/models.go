// internal/api/models.go
package api

import "loan-assistant/internal/models"

type messageRequest struct {
	Message string `json:"message"`
}

type documentRequest struct {
	DocumentType string `json:"documentType"`
	FileName     string `json:"fileName,omitempty"`
}

type sessionResponse struct {
	SessionID string                   `json:"sessionId"`
	Message   string                   `json:"message,omitempty"`
	State     *models.ApplicationState `json:"state"`
	Approval  *models.ApprovalContext  `json:"approval,omitempty"`
}

type historyResponse struct {
	SessionID string                   `json:"sessionId"`
	State     *models.ApplicationState `json:"state"`
	History   []models.Message         `json:"history"`
}

type letterResponse struct {
	SessionID string `json:"sessionId"`
	Letter    string `json:"letter"`
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
