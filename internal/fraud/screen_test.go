// internal/fraud/screen_test.go
package fraud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

func TestBlacklistScreener(t *testing.T) {
	screener := NewBlacklistScreener(logger.NewNoOpLogger())

	tests := []struct {
		name   string
		record *models.CustomerRecord
		want   Status
	}{
		{"clear customer", &models.CustomerRecord{Phone: "9876543210"}, StatusClear},
		{"blacklisted customer", &models.CustomerRecord{Phone: "8887776665", Blacklisted: true}, StatusBlacklisted},
		{"missing record", nil, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, screener.Screen(context.Background(), tt.record))
		})
	}
}
