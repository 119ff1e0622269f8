package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "github.com/harborline/omscore/internal/application/outbox"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/outbox"
	"github.com/harborline/omscore/internal/domain/shared"
)

// fakeOutboxRepo is an in-memory outbox.Repository for driving the worker
// without a database.
type fakeOutboxRepo struct {
	mu   sync.Mutex
	rows map[string]*outbox.Record
	seq  int
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{rows: make(map[string]*outbox.Record)}
}

func (r *fakeOutboxRepo) add(event events.Event, availableAt time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	payload, _ := json.Marshal(event)
	id := time.Now().Format("150405") + "-" + string(rune('a'+r.seq))
	r.rows[id] = &outbox.Record{
		ID:            id,
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.EventType(),
		Payload:       payload,
		Status:        outbox.StatusPending,
		AvailableAt:   availableAt,
		CreatedAt:     availableAt,
	}
	return id
}

func (r *fakeOutboxRepo) Enqueue(ctx context.Context, aggregateType, aggregateID, eventType string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := "enq-" + string(rune('a'+r.seq))
	r.rows[id] = &outbox.Record{
		ID: id, AggregateType: aggregateType, AggregateID: aggregateID,
		EventType: eventType, Payload: payload, Status: outbox.StatusPending,
	}
	return nil
}

func (r *fakeOutboxRepo) Claim(ctx context.Context, limit int, now time.Time) ([]*outbox.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*outbox.Record
	for _, row := range r.rows {
		if row.Status == outbox.StatusPending && !row.AvailableAt.After(now) {
			row.Status = outbox.StatusProcessing
			row.Attempts++
			claimed = append(claimed, row)
			if len(claimed) == limit {
				break
			}
		}
	}
	sort.Slice(claimed, func(i, j int) bool { return claimed[i].CreatedAt.Before(claimed[j].CreatedAt) })
	return claimed, nil
}

func (r *fakeOutboxRepo) MarkDelivered(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return shared.NewNotFoundError("outbox event", id)
	}
	row.Status = outbox.StatusDelivered
	row.ProcessedAt = &now
	return nil
}

func (r *fakeOutboxRepo) ScheduleRetry(ctx context.Context, id string, availableAt time.Time, errMessage string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return shared.NewNotFoundError("outbox event", id)
	}
	row.Status = outbox.StatusPending
	row.AvailableAt = availableAt
	row.ErrorMessage = errMessage
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, errMessage string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return shared.NewNotFoundError("outbox event", id)
	}
	row.Status = outbox.StatusFailed
	row.ErrorMessage = errMessage
	row.ProcessedAt = &now
	return nil
}

func (r *fakeOutboxRepo) ReleaseProcessing(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var released int64
	for _, row := range r.rows {
		if row.Status == outbox.StatusProcessing {
			row.Status = outbox.StatusPending
			released++
		}
	}
	return released, nil
}

func (r *fakeOutboxRepo) FindByID(ctx context.Context, id string) (*outbox.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, shared.NewNotFoundError("outbox event", id)
	}
	copied := *row
	return &copied, nil
}

func (r *fakeOutboxRepo) CountByStatus(ctx context.Context) (map[outbox.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[outbox.Status]int64)
	for _, row := range r.rows {
		counts[row.Status]++
	}
	return counts, nil
}

// recordingPublisher fails the first n publishes.
type recordingPublisher struct {
	failures  int
	published []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("bus unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

type recordingMetrics struct {
	dispatched, retried, deadLettered int
}

func (m *recordingMetrics) RecordDispatched()   { m.dispatched++ }
func (m *recordingMetrics) RecordRetried()      { m.retried++ }
func (m *recordingMetrics) RecordDeadLettered() { m.deadLettered++ }

func newTestWorker(repo outbox.Repository, publisher *recordingPublisher, clock shared.Clock, metrics *recordingMetrics, maxAttempts int) *appoutbox.Worker {
	return appoutbox.NewWorker(repo, publisher, appoutbox.NewMapper(), clock, zerolog.Nop(), metrics, appoutbox.WorkerConfig{
		PollInterval: time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  maxAttempts,
		BackoffBase:  2 * time.Second,
		Jitter:       time.Nanosecond,
	})
}

var workerStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestWorker_DeliversAndMarksRow(t *testing.T) {
	repo := newFakeOutboxRepo()
	clock := shared.NewMockClock(workerStart)
	publisher := &recordingPublisher{}
	metrics := &recordingMetrics{}
	id := repo.add(events.NewInventoryAdjusted("SKU-1", "MAIN", 5, 0, 5, "receipt", "txn-1"), workerStart)

	worker := newTestWorker(repo, publisher, clock, metrics, 3)
	require.NoError(t, worker.ProcessOnce(context.Background()))

	row, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusDelivered, row.Status)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.TypeInventoryAdjusted, publisher.published[0].EventType())
	assert.Equal(t, 1, metrics.dispatched)
}

func TestWorker_SchedulesRetryWithBackoff(t *testing.T) {
	repo := newFakeOutboxRepo()
	clock := shared.NewMockClock(workerStart)
	publisher := &recordingPublisher{failures: 1}
	metrics := &recordingMetrics{}
	id := repo.add(events.NewInventoryAdjusted("SKU-1", "MAIN", 5, 0, 5, "receipt", "txn-1"), workerStart)

	worker := newTestWorker(repo, publisher, clock, metrics, 3)
	require.NoError(t, worker.ProcessOnce(context.Background()))

	row, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusPending, row.Status)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, "bus unavailable", row.ErrorMessage)
	assert.True(t, row.AvailableAt.After(workerStart.Add(2*time.Second-time.Millisecond)),
		"first retry waits at least the base backoff, got %s", row.AvailableAt)
	assert.Equal(t, 1, metrics.retried)

	// Not ready yet: a claim at the old now finds nothing.
	require.NoError(t, worker.ProcessOnce(context.Background()))
	assert.Empty(t, publisher.published)

	// Once the clock passes available_at the retry succeeds.
	clock.Advance(4 * time.Second)
	require.NoError(t, worker.ProcessOnce(context.Background()))

	row, err = repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusDelivered, row.Status)
	assert.Equal(t, 1, metrics.dispatched)
}

func TestWorker_DeadLettersAfterMaxAttempts(t *testing.T) {
	repo := newFakeOutboxRepo()
	clock := shared.NewMockClock(workerStart)
	publisher := &recordingPublisher{failures: 100}
	metrics := &recordingMetrics{}
	id := repo.add(events.NewInventoryAdjusted("SKU-1", "MAIN", 5, 0, 5, "receipt", "txn-1"), workerStart)

	worker := newTestWorker(repo, publisher, clock, metrics, 2)

	require.NoError(t, worker.ProcessOnce(context.Background()))
	clock.Advance(time.Hour)
	require.NoError(t, worker.ProcessOnce(context.Background()))

	row, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, outbox.StatusFailed, row.Status)
	assert.Equal(t, 2, row.Attempts)
	assert.Equal(t, "max attempts exceeded", row.ErrorMessage)
	assert.Equal(t, 1, metrics.retried)
	assert.Equal(t, 1, metrics.deadLettered)

	// Dead-lettered rows are never claimed again.
	clock.Advance(time.Hour)
	require.NoError(t, worker.ProcessOnce(context.Background()))
	assert.Equal(t, 1, metrics.deadLettered)
}

func TestWorker_RunReleasesProcessingOnShutdown(t *testing.T) {
	repo := newFakeOutboxRepo()
	clock := shared.NewMockClock(workerStart)
	id := repo.add(events.NewInventoryAdjusted("SKU-1", "MAIN", 5, 0, 5, "receipt", "txn-1"), workerStart)
	repo.rows[id].Status = outbox.StatusProcessing // orphaned by a crash

	worker := newTestWorker(repo, &recordingPublisher{}, clock, &recordingMetrics{}, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		row, err := repo.FindByID(context.Background(), id)
		return err == nil && row.Status == outbox.StatusDelivered
	}, 2*time.Second, 5*time.Millisecond, "orphaned row should be recovered and delivered")

	cancel()
	<-done
}
