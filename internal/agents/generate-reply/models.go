// internal/agents/generate-reply/models.go
package generatereply

import (
	resolvemissing "loan-assistant/internal/agents/resolve-missing"
	"loan-assistant/internal/models"
)

type Input struct {
	State     *models.ApplicationState
	History   []models.Message
	UserText  string
	NextField resolvemissing.Field
}

type Output struct {
	Message string
	// UsedFallback marks replies served from the static prompt set
	// instead of the language model.
	UsedFallback bool
	// FallbackReason is set when UsedFallback is true: "no_generator",
	// "timeout", "error" or "degenerate".
	FallbackReason string
}
