package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"securekyc/internal/models"
)

func TestMemoryStoreRecords(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := s.InsertRecord(ctx, models.IdentityRecord{UserName: "Priya Sharma", AadhaarMasked: "1234-XXXX-9012"})
	require.NoError(t, err)
	second, err := s.InsertRecord(ctx, models.IdentityRecord{UserName: "Rohit Verma"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.StatusPending, first.Status)

	list, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	got, err := s.GetRecord(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234-XXXX-9012", got.AadhaarMasked)
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec, err := s.InsertRecord(ctx, models.IdentityRecord{UserName: "Priya Sharma"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, rec.ID, models.StatusApproved))
	got, err := s.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", models.StatusRejected), ErrRecordNotFound)
	_, err = s.GetRecord(ctx, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMemoryStoreListIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.InsertRecord(ctx, models.IdentityRecord{UserName: "Priya Sharma"})
	require.NoError(t, err)

	list, err := s.ListRecords(ctx)
	require.NoError(t, err)
	list[0].Status = models.StatusRejected

	again, err := s.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again[0].Status)
}

func TestMemoryStoreLogsAndAlerts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.InsertLog(ctx, models.VerificationLog{UserName: "a", CreatedAt: time.Unix(100, 0)}))
	require.NoError(t, s.InsertLog(ctx, models.VerificationLog{UserName: "b", CreatedAt: time.Unix(200, 0)}))
	require.NoError(t, s.InsertAlert(ctx, models.FraudAlert{UserName: "c", FraudScore: 80}))

	logs, err := s.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "b", logs[0].UserName)
	assert.NotZero(t, logs[0].ID)

	alerts, err := s.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 80, alerts[0].FraudScore)
	assert.False(t, alerts[0].CreatedAt.IsZero())
}

func TestNewestFirstKeepsLaterInsertOnTies(t *testing.T) {
	at := time.Unix(0, 0)
	type item struct {
		name string
		at   time.Time
	}
	got := newestFirst([]item{{"a", at}, {"b", at}, {"c", at.Add(-time.Second)}}, func(i item) time.Time { return i.at })
	assert.Equal(t, "b", got[0].name)
	assert.Equal(t, "a", got[1].name)
	assert.Equal(t, "c", got[2].name)
}

func TestOpenFallsBackToMemory(t *testing.T) {
	ctx := context.Background()

	s := Open(ctx, "", GormOptions{}, zap.NewNop())
	assert.IsType(t, &MemoryStore{}, s)

	s = Open(ctx, "host=127.0.0.1 port=1 user=nobody dbname=none sslmode=disable connect_timeout=1", GormOptions{}, zap.NewNop())
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, s.Ping(ctx))
}
