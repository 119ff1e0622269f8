package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/adapters/persistence"
	appoutbox "github.com/harborline/omscore/internal/application/outbox"
	"github.com/harborline/omscore/internal/application/workorder/commands"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/domain/workorder"
	"github.com/harborline/omscore/test/helpers"
)

var handlerTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) error { return nil }

func newTransitionHandler(db *gorm.DB) *commands.TransitionWorkOrderHandler {
	return commands.NewTransitionWorkOrderHandler(
		persistence.NewGormTransactionManager(db),
		persistence.NewGormWorkOrderRepository(db),
		appoutbox.NewEnqueuer(persistence.NewGormOutboxRepository(db)),
		nopPublisher{},
		shared.NewMockClock(handlerTime),
	)
}

func seedPendingWorkOrder(t *testing.T, db *gorm.DB) *workorder.WorkOrder {
	t.Helper()
	w, err := workorder.New("wo-1", "bom-1", "Assemble valve block", "", workorder.PriorityNormal,
		[]workorder.Part{{ItemID: "SKU-1", Quantity: 2}}, nil, 4, handlerTime)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormWorkOrderRepository(db).Add(context.Background(), w))
	return w
}

func TestTransitionWorkOrderHandler_StaleVersionLosesRace(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := newTransitionHandler(db)
	seedPendingWorkOrder(t, db)

	resp, err := handler.Handle(context.Background(), &commands.TransitionWorkOrderCommand{
		WorkOrderID: "wo-1",
		Status:      string(workorder.StatusCancelled),
		Version:     1,
	})
	require.NoError(t, err)

	first := resp.(*commands.TransitionWorkOrderResponse)
	assert.Equal(t, string(workorder.StatusPending), first.FromStatus)
	assert.Equal(t, string(workorder.StatusCancelled), first.ToStatus)
	assert.Equal(t, 2, first.Version)

	_, err = handler.Handle(context.Background(), &commands.TransitionWorkOrderCommand{
		WorkOrderID: "wo-1",
		Status:      string(workorder.StatusCancelled),
		Version:     1,
	})

	var cmErr *shared.ConcurrentModificationError
	require.ErrorAs(t, err, &cmErr)

	loaded, findErr := persistence.NewGormWorkOrderRepository(db).FindByID(context.Background(), "wo-1")
	require.NoError(t, findErr)
	assert.Equal(t, workorder.StatusCancelled, loaded.Status())
	assert.Equal(t, 2, loaded.Version())

	var rows []persistence.OutboxEventModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, events.TypeWorkOrderCancelled, rows[0].EventType)
}

func TestTransitionWorkOrderHandler_UnknownStatusRejected(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := newTransitionHandler(db)
	seedPendingWorkOrder(t, db)

	_, err := handler.Handle(context.Background(), &commands.TransitionWorkOrderCommand{
		WorkOrderID: "wo-1",
		Status:      "melted",
		Version:     1,
	})

	var valErr *shared.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestTransitionWorkOrderHandler_ScheduleSetsDueDate(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := newTransitionHandler(db)
	seedPendingWorkOrder(t, db)
	due := handlerTime.Add(96 * time.Hour)

	resp, err := handler.Handle(context.Background(), &commands.TransitionWorkOrderCommand{
		WorkOrderID: "wo-1",
		Status:      string(workorder.StatusScheduled),
		Version:     1,
		DueDate:     &due,
	})
	require.NoError(t, err)

	scheduled := resp.(*commands.TransitionWorkOrderResponse)
	assert.Equal(t, string(workorder.StatusScheduled), scheduled.ToStatus)

	loaded, findErr := persistence.NewGormWorkOrderRepository(db).FindByID(context.Background(), "wo-1")
	require.NoError(t, findErr)
	require.NotNil(t, loaded.DueDate())
	assert.True(t, loaded.DueDate().Equal(due))
}
