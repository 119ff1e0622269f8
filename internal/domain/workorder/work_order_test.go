package workorder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/domain/workorder"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestWorkOrder(t *testing.T) *workorder.WorkOrder {
	t.Helper()
	w, err := workorder.New("wo-1", "bom-1", "Assemble valve block", "", workorder.PriorityNormal,
		[]workorder.Part{{ItemID: "SKU-1", Quantity: 4}}, nil, 6, now)
	require.NoError(t, err)
	return w
}

func TestWorkOrder_NewStartsAtVersionOne(t *testing.T) {
	w := newTestWorkOrder(t)

	assert.Equal(t, workorder.StatusPending, w.Status())
	assert.Equal(t, 1, w.Version())
}

func TestWorkOrder_NewRejectsEmptyTitle(t *testing.T) {
	_, err := workorder.New("wo-1", "bom-1", "", "", workorder.PriorityNormal, nil, nil, 0, now)

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestWorkOrder_CheckVersion(t *testing.T) {
	w := newTestWorkOrder(t)

	require.NoError(t, w.CheckVersion(1))

	err := w.CheckVersion(2)
	var cmErr *shared.ConcurrentModificationError
	require.ErrorAs(t, err, &cmErr)
	assert.Equal(t, 2, cmErr.Expected)
}

func TestWorkOrder_MaterialPath(t *testing.T) {
	w := newTestWorkOrder(t)

	require.NoError(t, w.TransitionTo(workorder.StatusIssued, now))
	require.NoError(t, w.TransitionTo(workorder.StatusPicked, now))
	require.NoError(t, w.TransitionTo(workorder.StatusYielded, now))
	require.NoError(t, w.TransitionTo(workorder.StatusCompleted, now))

	assert.NotNil(t, w.YieldedAt())
	assert.NotNil(t, w.CompletedAt())
	assert.True(t, workorder.IsTerminal(w.Status()))
}

func TestWorkOrder_SchedulePath(t *testing.T) {
	w := newTestWorkOrder(t)

	require.NoError(t, w.TransitionTo(workorder.StatusScheduled, now))
	require.NoError(t, w.TransitionTo(workorder.StatusInProgress, now))
	require.NotNil(t, w.StartedAt())
	started := *w.StartedAt()

	require.NoError(t, w.TransitionTo(workorder.StatusYielded, now.Add(time.Hour)))
	require.NoError(t, w.TransitionTo(workorder.StatusCompleted, now.Add(2*time.Hour)))

	// startedAt is written once.
	assert.Equal(t, started, *w.StartedAt())
}

func TestWorkOrder_IllegalTransition(t *testing.T) {
	w := newTestWorkOrder(t)

	err := w.TransitionTo(workorder.StatusCompleted, now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, workorder.StatusPending, w.Status())
}

func TestWorkOrder_AssignBlockedWhenTerminal(t *testing.T) {
	w := newTestWorkOrder(t)
	require.NoError(t, w.TransitionTo(workorder.StatusCancelled, now))

	err := w.Assign("tech-7", now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
}

func TestWorkOrder_UnassignReturnsPrevious(t *testing.T) {
	w := newTestWorkOrder(t)
	require.NoError(t, w.Assign("tech-7", now))

	previous, err := w.Unassign(now)

	require.NoError(t, err)
	assert.Equal(t, "tech-7", previous)
	assert.Empty(t, w.Assignee())
}

func TestWorkOrder_RecordActualHours(t *testing.T) {
	w := newTestWorkOrder(t)

	err := w.RecordActualHours(-1, now)
	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, w.RecordActualHours(5.5, now))
	assert.Equal(t, 5.5, w.ActualHours())
}

func TestWorkOrder_BumpVersion(t *testing.T) {
	w := newTestWorkOrder(t)

	w.BumpVersion()

	assert.Equal(t, 2, w.Version())
	require.NoError(t, w.CheckVersion(2))
}

func TestParsePriority(t *testing.T) {
	p, err := workorder.ParsePriority("urgent")
	require.NoError(t, err)
	assert.Equal(t, workorder.PriorityUrgent, p)

	_, err = workorder.ParsePriority("whenever")
	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
}
