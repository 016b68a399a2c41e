// Package fraud screens customer records against the blacklist.
package fraud

import (
	"context"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// Status is the fraud screen verdict.
type Status string

const (
	StatusClear       Status = "Clear"
	StatusBlacklisted Status = "Blacklisted"
	StatusUnknown     Status = "Unknown"
)

// Screener runs the fraud screen for a looked-up record. A nil record (new
// customer) screens as Unknown.
type Screener interface {
	Screen(ctx context.Context, record *models.CustomerRecord) Status
}

// BlacklistScreener screens purely on the registry blacklist flag. Unknown is
// treated as non-blocking by the decision engine but always audited.
type BlacklistScreener struct {
	logger logger.Logger
}

func NewBlacklistScreener(log logger.Logger) *BlacklistScreener {
	return &BlacklistScreener{
		logger: log.WithFields(map[string]interface{}{"component": "fraud"}),
	}
}

func (s *BlacklistScreener) Screen(_ context.Context, record *models.CustomerRecord) Status {
	if record == nil {
		s.logger.Warn("fraud screen has no record, treating as unknown", nil)
		return StatusUnknown
	}
	if record.Blacklisted {
		return StatusBlacklisted
	}
	return StatusClear
}
