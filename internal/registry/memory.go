// internal/registry/memory.go
package registry

import (
	"context"
	"sync"

	"loan-assistant/internal/models"
)

// MemoryRegistry is an in-memory registry used in development mode and tests.
type MemoryRegistry struct {
	mu      sync.RWMutex
	records map[string]models.CustomerRecord
}

func NewMemoryRegistry(records []models.CustomerRecord) *MemoryRegistry {
	m := &MemoryRegistry{records: make(map[string]models.CustomerRecord, len(records))}
	for _, rec := range records {
		m.records[rec.Phone] = rec
	}
	return m
}

// SeedRecords is the demo customer base shared by the in-memory
// registry and the database seeding tool.
func SeedRecords() []models.CustomerRecord {
	return []models.CustomerRecord{
		{Phone: "9876543210", Name: "Rohan Mehta", CreditScore: 750, ApprovedAmount: 600000, Income: 85000},
		{Phone: "9998887776", Name: "Priya Sharma", CreditScore: 720, ApprovedAmount: 300000, Income: 60000},
		{Phone: "8887776665", Name: "Vikram Singh", CreditScore: 680, ApprovedAmount: 400000, Income: 70000, Blacklisted: true},
		{Phone: "7776665554", Name: "Anita Desai", CreditScore: 650, ApprovedAmount: 200000, Income: 45000},
	}
}

// NewSeededRegistry returns a registry preloaded with the demo customer base.
func NewSeededRegistry() *MemoryRegistry {
	return NewMemoryRegistry(SeedRecords())
}

func (m *MemoryRegistry) Lookup(_ context.Context, phone string) (*models.CustomerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[phone]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

// Put adds or replaces a record; used by tests.
func (m *MemoryRegistry) Put(rec models.CustomerRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Phone] = rec
}
