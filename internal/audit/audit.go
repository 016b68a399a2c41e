// internal/audit/audit.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loan-assistant/internal/common/database"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// DecisionEvent is one immutable audit record per eligibility decision.
type DecisionEvent struct {
	EventID         string                   `json:"event_id"`
	SessionID       string                   `json:"session_id"`
	Phone           string                   `json:"phone"`
	Path            models.EligibilityPath   `json:"eligibility_path"`
	Stage           models.ConversationStage `json:"conversation_stage"`
	RequestedAmount int64                    `json:"requested_amount"`
	FraudStatus     string                   `json:"fraud_status,omitempty"`
	DecidedAt       time.Time                `json:"decided_at"`
}

// Recorder persists decision events. Implementations must never block a
// customer turn on audit failures.
type Recorder interface {
	RecordDecision(ctx context.Context, event DecisionEvent) error
}

// ElasticsearchRecorder indexes decision events into a daily-queryable
// audit index. Write failures are logged and swallowed so the decision
// path stays available when the cluster is not.
type ElasticsearchRecorder struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewElasticsearchRecorder(es *database.ElasticsearchClient, index string, log logger.Logger) *ElasticsearchRecorder {
	if index == "" {
		index = "loan-decisions"
	}
	return &ElasticsearchRecorder{
		es:     es,
		index:  index,
		logger: log,
	}
}

func (r *ElasticsearchRecorder) RecordDecision(ctx context.Context, event DecisionEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.DecidedAt.IsZero() {
		event.DecidedAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding decision event: %w", err)
	}

	res, err := r.es.Client.Index(
		r.index,
		bytes.NewReader(body),
		r.es.Client.Index.WithContext(ctx),
		r.es.Client.Index.WithDocumentID(event.EventID),
	)
	if err != nil {
		r.logger.Warn("audit write failed", map[string]interface{}{
			"session_id": event.SessionID,
			"error":      err.Error(),
		})
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("audit write rejected", map[string]interface{}{
			"session_id": event.SessionID,
			"status":     res.Status(),
		})
	}
	return nil
}

// NoopRecorder is used when auditing is disabled by configuration.
type NoopRecorder struct{}

func (NoopRecorder) RecordDecision(context.Context, DecisionEvent) error { return nil }
