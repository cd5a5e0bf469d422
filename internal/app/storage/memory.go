package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vancho-go/ipreverser/internal/app/models"
)

// Memory keeps records in process memory, oldest first.
type Memory struct {
	mu      sync.RWMutex
	records []models.AddressRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateRecord(_ context.Context, address, reversed string) (models.AddressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := models.AddressRecord{
		ID:              uuid.NewString(),
		Address:         address,
		ReversedAddress: reversed,
		CreatedAt:       now(),
	}
	m.records = append(m.records, record)

	return record, nil
}

func (m *Memory) ListRecent(_ context.Context, limit int) ([]models.AddressRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := max(0, min(limit, len(m.records)))
	result := make([]models.AddressRecord, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.records[i])
	}
	return result, nil
}

func (m *Memory) ClearHistory(_ context.Context) error {
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(_ context.Context) error {
	return nil
}

func (m *Memory) Close(_ context.Context) error {
	return nil
}
