package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/adapters/persistence"
	"github.com/harborline/omscore/internal/application/asn/commands"
	appoutbox "github.com/harborline/omscore/internal/application/outbox"
	"github.com/harborline/omscore/internal/domain/asn"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/test/helpers"
)

var handlerTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) error { return nil }

func seedASNInStatus(t *testing.T, db *gorm.DB, moves ...asn.Status) *asn.ASN {
	t.Helper()
	a, err := asn.New("asn-1", "po-1", "sup-1", handlerTime.Add(72*time.Hour), "Dock 4", "NorthFreight", handlerTime)
	require.NoError(t, err)
	require.NoError(t, a.AddItem(asn.Item{ID: "ai-1", ASNID: "asn-1", SKU: "SKU-1", ItemID: "SKU-1", Quantity: 40}, handlerTime))
	for _, to := range moves {
		require.NoError(t, a.TransitionTo(to, handlerTime))
	}
	require.NoError(t, persistence.NewGormASNRepository(db).Add(context.Background(), a))
	return a
}

func TestCancelASNHandler_RejectsInTransitWithoutNote(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := commands.NewCancelASNHandler(
		persistence.NewGormTransactionManager(db),
		persistence.NewGormASNRepository(db),
		appoutbox.NewEnqueuer(persistence.NewGormOutboxRepository(db)),
		nopPublisher{},
		shared.NewMockClock(handlerTime),
	)
	seedASNInStatus(t, db, asn.StatusSubmitted, asn.StatusInTransit)

	_, err := handler.Handle(context.Background(), &commands.CancelASNCommand{
		ASNID:   "asn-1",
		Version: 1,
		Reason:  "supplier request",
	})

	var statusErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &statusErr)

	loaded, findErr := persistence.NewGormASNRepository(db).FindByID(context.Background(), "asn-1")
	require.NoError(t, findErr)
	assert.Equal(t, asn.StatusInTransit, loaded.Status())
	assert.Equal(t, 1, loaded.Version())

	var noteCount int64
	require.NoError(t, db.Model(&persistence.ASNNoteModel{}).Count(&noteCount).Error)
	assert.Zero(t, noteCount)

	var outboxCount int64
	require.NoError(t, db.Model(&persistence.OutboxEventModel{}).Count(&outboxCount).Error)
	assert.Zero(t, outboxCount)
}

func TestCancelASNHandler_CancelsSubmittedWithReasonNote(t *testing.T) {
	db := helpers.NewTestDB(t)
	handler := commands.NewCancelASNHandler(
		persistence.NewGormTransactionManager(db),
		persistence.NewGormASNRepository(db),
		appoutbox.NewEnqueuer(persistence.NewGormOutboxRepository(db)),
		nopPublisher{},
		shared.NewMockClock(handlerTime),
	)
	seedASNInStatus(t, db, asn.StatusSubmitted)

	resp, err := handler.Handle(context.Background(), &commands.CancelASNCommand{
		ASNID:          "asn-1",
		Version:        1,
		Reason:         "order cancelled upstream",
		NotifySupplier: true,
	})
	require.NoError(t, err)

	cancelled := resp.(*commands.ASNMutationResponse)
	assert.Equal(t, string(asn.StatusCancelled), cancelled.Status)
	assert.Equal(t, 2, cancelled.Version)

	var notes []persistence.ASNNoteModel
	require.NoError(t, db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, string(asn.NoteCancellation), notes[0].NoteType)
	assert.Equal(t, "order cancelled upstream", notes[0].NoteText)

	var rows []persistence.OutboxEventModel
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 2)
	types := []string{rows[0].EventType, rows[1].EventType}
	assert.Contains(t, types, events.TypeASNCancelled)
	assert.Contains(t, types, events.TypeASNSupplierNotified)
}
