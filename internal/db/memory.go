package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"securekyc/internal/models"
)

// MemoryStore keeps everything in process memory. It backs deployments
// without a database and the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.IdentityRecord
	logs    []models.VerificationLog
	alerts  []models.FraudAlert
	nextID  uint
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) InsertRecord(_ context.Context, rec models.IdentityRecord) (models.IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *MemoryStore) ListRecords(_ context.Context) ([]models.IdentityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.records, func(r models.IdentityRecord) time.Time { return r.CreatedAt }), nil
}

func (m *MemoryStore) GetRecord(_ context.Context, id string) (models.IdentityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return models.IdentityRecord{}, ErrRecordNotFound
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = status
			return nil
		}
	}
	return ErrRecordNotFound
}

func (m *MemoryStore) InsertLog(_ context.Context, entry models.VerificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	m.logs = append(m.logs, entry)
	return nil
}

func (m *MemoryStore) ListLogs(_ context.Context) ([]models.VerificationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.logs, func(l models.VerificationLog) time.Time { return l.CreatedAt }), nil
}

func (m *MemoryStore) InsertAlert(_ context.Context, alert models.FraudAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	alert.ID = m.nextID
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = m.now()
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *MemoryStore) ListAlerts(_ context.Context) ([]models.FraudAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.alerts, func(a models.FraudAlert) time.Time { return a.CreatedAt }), nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// newestFirst copies items sorted by descending time. Equal times keep the
// later insertion first.
func newestFirst[T any](items []T, at func(T) time.Time) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	slices.SortStableFunc(out, func(a, b T) int { return at(b).Compare(at(a)) })
	return out
}
