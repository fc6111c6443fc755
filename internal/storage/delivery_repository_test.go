package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tg-vaultgate/internal/models"
)

func newTestRepository(t *testing.T) *DeliveryRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := NewDeliveryRepository(db)
	require.NoError(t, repo.MigrateTable())
	return repo
}

func TestCreateAndFindDue(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	past := &models.DeliveryRecord{ChatID: 42, MessageID: 777, ExpiresAt: now.Add(-time.Minute)}
	older := &models.DeliveryRecord{ChatID: 43, MessageID: 778, ExpiresAt: now.Add(-time.Hour)}
	future := &models.DeliveryRecord{ChatID: 44, MessageID: 779, ExpiresAt: now.Add(time.Hour)}

	require.NoError(t, repo.Create(past))
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(future))

	due, err := repo.FindDue(now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Oldest expiry first
	assert.Equal(t, int64(43), due[0].ChatID)
	assert.Equal(t, int64(42), due[1].ChatID)
}

func TestFindDueSkipsDeadLetter(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	record := &models.DeliveryRecord{ChatID: 42, MessageID: 777, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Create(record))
	require.NoError(t, repo.MarkDeadLetter(record.ID))

	due, err := repo.FindDue(now)
	require.NoError(t, err)
	assert.Empty(t, due)

	// Dead-lettered records stay in storage for operator review
	count, err := repo.CountOutstanding()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRemove(t *testing.T) {
	repo := newTestRepository(t)

	record := &models.DeliveryRecord{ChatID: 42, MessageID: 777, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Create(record))

	require.NoError(t, repo.Remove(record.ID))

	due, err := repo.FindDue(time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)

	// Removing again is a no-op, not an error
	assert.NoError(t, repo.Remove(record.ID))
}

func TestBumpAttempts(t *testing.T) {
	repo := newTestRepository(t)

	record := &models.DeliveryRecord{ChatID: 42, MessageID: 777, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Create(record))

	require.NoError(t, repo.BumpAttempts(record.ID))
	require.NoError(t, repo.BumpAttempts(record.ID))

	due, err := repo.FindDue(time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 2, due[0].Attempts)
}

func TestCountOutstanding(t *testing.T) {
	repo := newTestRepository(t)
	now := time.Now()

	require.NoError(t, repo.Create(&models.DeliveryRecord{ChatID: 42, MessageID: 1, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(&models.DeliveryRecord{ChatID: 43, MessageID: 2, ExpiresAt: now.Add(time.Hour)}))

	count, err := repo.CountOutstanding()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
