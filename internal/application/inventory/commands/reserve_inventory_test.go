package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/adapters/persistence"
	"github.com/harborline/omscore/internal/application/inventory/commands"
	appoutbox "github.com/harborline/omscore/internal/application/outbox"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/test/helpers"
)

var handlerTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// capturingPublisher records what reached the in-process bus after commit.
type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(ev events.Event) error {
	p.published = append(p.published, ev)
	return nil
}

func newReserveHandler(db *gorm.DB, publisher *capturingPublisher) *commands.ReserveInventoryHandler {
	return commands.NewReserveInventoryHandler(
		persistence.NewGormTransactionManager(db),
		persistence.NewGormBalanceRepository(db),
		persistence.NewGormReservationRepository(db),
		appoutbox.NewEnqueuer(persistence.NewGormOutboxRepository(db)),
		publisher,
		shared.NewMockClock(handlerTime),
	)
}

func seedBalance(t *testing.T, db *gorm.DB, itemID string, onHand, allocated int) {
	t.Helper()
	repo := persistence.NewGormBalanceRepository(db)
	balance := inventory.RestoreBalance(itemID, "MAIN", onHand, allocated, handlerTime)
	require.NoError(t, repo.Save(context.Background(), balance))
}

func TestReserveInventoryHandler_StrictShortfallRollsBack(t *testing.T) {
	db := helpers.NewTestDB(t)
	publisher := &capturingPublisher{}
	handler := newReserveHandler(db, publisher)
	seedBalance(t, db, "SKU-1", 3, 0)

	_, err := handler.Handle(context.Background(), &commands.ReserveInventoryCommand{
		ReferenceID:   "ord-1",
		ReferenceType: "order",
		LocationID:    "MAIN",
		Strategy:      "strict",
		Lines:         []commands.ReserveLine{{ItemID: "SKU-1", Quantity: 5}},
	})

	var ruleErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Contains(t, ruleErr.Error(), "insufficient inventory")

	balance, findErr := persistence.NewGormBalanceRepository(db).Find(context.Background(), "SKU-1", "MAIN")
	require.NoError(t, findErr)
	assert.Equal(t, 3, balance.OnHand())
	assert.Equal(t, 0, balance.Allocated())

	sum, sumErr := persistence.NewGormReservationRepository(db).SumActive(context.Background(), "SKU-1", "MAIN")
	require.NoError(t, sumErr)
	assert.Equal(t, 0, sum)

	var outboxCount int64
	require.NoError(t, db.Model(&persistence.OutboxEventModel{}).Count(&outboxCount).Error)
	assert.Zero(t, outboxCount)
	assert.Empty(t, publisher.published)
}

func TestReserveInventoryHandler_PartialReservesAvailableAndWarns(t *testing.T) {
	db := helpers.NewTestDB(t)
	publisher := &capturingPublisher{}
	handler := newReserveHandler(db, publisher)
	seedBalance(t, db, "SKU-1", 3, 0)

	resp, err := handler.Handle(context.Background(), &commands.ReserveInventoryCommand{
		ReferenceID:   "ord-1",
		ReferenceType: "order",
		LocationID:    "MAIN",
		Strategy:      "partial",
		Lines:         []commands.ReserveLine{{ItemID: "SKU-1", Quantity: 5}},
	})
	require.NoError(t, err)

	reserved := resp.(*commands.ReserveInventoryResponse)
	assert.False(t, reserved.Fully)
	assert.Equal(t, 2, reserved.Shortfall)
	require.Len(t, reserved.Lines, 1)
	assert.Equal(t, 3, reserved.Lines[0].Reserved)
	assert.NotEmpty(t, reserved.Lines[0].ReservationID)

	reservation, findErr := persistence.NewGormReservationRepository(db).FindActive(context.Background(), "SKU-1", "MAIN", "ord-1")
	require.NoError(t, findErr)
	assert.Equal(t, 3, reservation.Quantity())

	balance, findErr := persistence.NewGormBalanceRepository(db).Find(context.Background(), "SKU-1", "MAIN")
	require.NoError(t, findErr)
	assert.Equal(t, 3, balance.OnHand())
	assert.Equal(t, 3, balance.Allocated())
	assert.Equal(t, 0, balance.Available())

	var rows []persistence.OutboxEventModel
	require.NoError(t, db.Order("created_at ASC, id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	types := []string{rows[0].EventType, rows[1].EventType}
	assert.Contains(t, types, events.TypeInventoryReserved)
	assert.Contains(t, types, events.TypePartialReservationWarning)

	require.Len(t, publisher.published, 2)
	for _, ev := range publisher.published {
		if partial, ok := ev.(events.InventoryReserved); ok {
			assert.False(t, partial.Fully)
		}
	}
}

func TestReserveInventoryHandler_FullReservationEmitsSingleEvent(t *testing.T) {
	db := helpers.NewTestDB(t)
	publisher := &capturingPublisher{}
	handler := newReserveHandler(db, publisher)
	seedBalance(t, db, "SKU-1", 10, 0)

	resp, err := handler.Handle(context.Background(), &commands.ReserveInventoryCommand{
		ReferenceID:   "ord-2",
		ReferenceType: "order",
		LocationID:    "MAIN",
		Lines:         []commands.ReserveLine{{ItemID: "SKU-1", Quantity: 4}},
	})
	require.NoError(t, err)

	reserved := resp.(*commands.ReserveInventoryResponse)
	assert.True(t, reserved.Fully)
	assert.Zero(t, reserved.Shortfall)

	var rows []persistence.OutboxEventModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, events.TypeInventoryReserved, rows[0].EventType)
}
