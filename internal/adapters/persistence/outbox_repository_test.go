package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/adapters/persistence"
	"github.com/harborline/omscore/internal/domain/outbox"
	"github.com/harborline/omscore/test/helpers"
)

func seedOutboxRow(t *testing.T, db *gorm.DB, id string, createdAt, availableAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&persistence.OutboxEventModel{
		ID:            id,
		AggregateType: "order",
		AggregateID:   "ord-1",
		EventType:     "OrderCreated",
		Payload:       `{"order_id":"ord-1"}`,
		Status:        string(outbox.StatusPending),
		AvailableAt:   availableAt,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}).Error)
}

func TestOutboxRepository_EnqueueAndClaim(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "order", "ord-1", "OrderCreated", []byte(`{"order_id":"ord-1"}`)))

	records, err := repo.Claim(ctx, 10, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "OrderCreated", records[0].EventType)
	assert.Equal(t, outbox.StatusProcessing, records[0].Status)
	assert.Equal(t, 1, records[0].Attempts)

	// A second claim at the same instant finds nothing.
	records, err = repo.Claim(ctx, 10, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOutboxRepository_ClaimOldestFirstWithinLimit(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	seedOutboxRow(t, db, "evt-late", baseTime.Add(2*time.Minute), baseTime)
	seedOutboxRow(t, db, "evt-early", baseTime, baseTime)
	seedOutboxRow(t, db, "evt-mid", baseTime.Add(time.Minute), baseTime)

	records, err := repo.Claim(ctx, 2, baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "evt-early", records[0].ID)
	assert.Equal(t, "evt-mid", records[1].ID)

	// The newest row stays pending for the next batch.
	left, err := repo.FindByID(ctx, "evt-late")
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusPending, left.Status)
	assert.Equal(t, 0, left.Attempts)
}

func TestOutboxRepository_ClaimSkipsFutureAvailableAt(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	seedOutboxRow(t, db, "evt-1", baseTime, baseTime.Add(time.Hour))

	records, err := repo.Claim(ctx, 10, baseTime)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = repo.Claim(ctx, 10, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestOutboxRepository_ScheduleRetry(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	seedOutboxRow(t, db, "evt-1", baseTime, baseTime)
	records, err := repo.Claim(ctx, 10, baseTime)
	require.NoError(t, err)
	require.Len(t, records, 1)

	retryAt := baseTime.Add(4 * time.Second)
	require.NoError(t, repo.ScheduleRetry(ctx, "evt-1", retryAt, "bus unavailable", baseTime))

	row, err := repo.FindByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusPending, row.Status)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, "bus unavailable", row.ErrorMessage)

	// Not claimable before the backoff elapses; attempts keep counting after.
	records, err = repo.Claim(ctx, 10, baseTime.Add(time.Second))
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = repo.Claim(ctx, 10, retryAt.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Attempts)
}

func TestOutboxRepository_MarkDelivered(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	seedOutboxRow(t, db, "evt-1", baseTime, baseTime)
	_, err := repo.Claim(ctx, 10, baseTime)
	require.NoError(t, err)

	require.NoError(t, repo.MarkDelivered(ctx, "evt-1", baseTime.Add(time.Second)))

	row, err := repo.FindByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusDelivered, row.Status)
	require.NotNil(t, row.ProcessedAt)

	records, err := repo.Claim(ctx, 10, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOutboxRepository_MarkFailedIsTerminal(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	seedOutboxRow(t, db, "evt-1", baseTime, baseTime)
	_, err := repo.Claim(ctx, 10, baseTime)
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, "evt-1", "max attempts exceeded", baseTime.Add(time.Second)))

	row, err := repo.FindByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusFailed, row.Status)
	assert.Equal(t, "max attempts exceeded", row.ErrorMessage)

	records, err := repo.Claim(ctx, 10, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOutboxRepository_ReleaseProcessing(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	seedOutboxRow(t, db, "evt-1", baseTime, baseTime)
	seedOutboxRow(t, db, "evt-2", baseTime, baseTime)
	_, err := repo.Claim(ctx, 10, baseTime)
	require.NoError(t, err)

	released, err := repo.ReleaseProcessing(ctx, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)

	records, err := repo.Claim(ctx, 10, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestOutboxRepository_CountByStatus(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOutboxRepository(db)
	ctx := context.Background()

	seedOutboxRow(t, db, "evt-1", baseTime, baseTime)
	seedOutboxRow(t, db, "evt-2", baseTime.Add(time.Second), baseTime)
	records, err := repo.Claim(ctx, 1, baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NoError(t, repo.MarkDelivered(ctx, records[0].ID, baseTime.Add(time.Minute)))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[outbox.StatusPending])
	assert.Equal(t, int64(1), counts[outbox.StatusDelivered])
}
