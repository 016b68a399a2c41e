// Package session persists per-conversation application state.
//
// Each session is exclusively owned while its turn is processed; the store
// replaces process-wide mutable maps with an injected abstraction.
package session

import (
	"context"

	"loan-assistant/internal/models"
)

// Session bundles the application state with the conversation history.
type Session struct {
	State   *models.ApplicationState `json:"state"`
	History []models.Message         `json:"history"`
}

// Store is the session persistence contract. Get returns (nil, nil) when the
// session does not exist.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, id string, s *Session) error
	Delete(ctx context.Context, id string) error
}
