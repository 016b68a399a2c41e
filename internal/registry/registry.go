// Package registry provides the read-only customer registry lookup.
package registry

import (
	"context"

	"loan-assistant/internal/models"
)

// Registry looks up a customer record by phone number. A missing record is a
// valid business outcome, returned as (nil, nil) — never an error. Lookups
// are pure reads and safe to repeat.
type Registry interface {
	Lookup(ctx context.Context, phone string) (*models.CustomerRecord, error)
}
