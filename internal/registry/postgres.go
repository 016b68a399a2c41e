// internal/registry/postgres.go
package registry

import (
	"context"
	"database/sql"
	"errors"

	stderrors "loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/metrics"
	"loan-assistant/internal/models"
)

const lookupQuery = `
	SELECT phone, name, credit_score, approved_amount, income, blacklisted
	FROM customers
	WHERE phone = $1`

// PostgresRegistry backs the registry with a customers table.
type PostgresRegistry struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRegistry(db *sql.DB, log logger.Logger) *PostgresRegistry {
	return &PostgresRegistry{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "registry"}),
	}
}

func (r *PostgresRegistry) Lookup(ctx context.Context, phone string) (*models.CustomerRecord, error) {
	var rec models.CustomerRecord
	err := r.db.QueryRowContext(ctx, lookupQuery, phone).Scan(
		&rec.Phone,
		&rec.Name,
		&rec.CreditScore,
		&rec.ApprovedAmount,
		&rec.Income,
		&rec.Blacklisted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RegistryLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		metrics.RegistryLookups.WithLabelValues("error").Inc()
		r.logger.WithError(err).Error("registry lookup failed", map[string]interface{}{
			"phone": phone,
		})
		return nil, stderrors.NewRegistryLookupFailedError(err)
	}

	metrics.RegistryLookups.WithLabelValues("hit").Inc()
	return &rec, nil
}
