package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/adapters/persistence"
	"github.com/harborline/omscore/internal/domain/order"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/test/helpers"
)

func seedOrder(t *testing.T, db *gorm.DB) *order.Order {
	t.Helper()
	o, err := order.New("ord-1", "cust-1", "USD", []order.Item{
		{ID: "line-1", OrderID: "ord-1", SKU: "SKU-1", Quantity: 2, UnitPrice: decimal.NewFromFloat(9.99)},
		{ID: "line-2", OrderID: "ord-1", SKU: "SKU-2", Quantity: 1, UnitPrice: decimal.NewFromInt(25)},
	}, baseTime)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormOrderRepository(db).Add(context.Background(), o))
	return o
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderRepository(db)
	seedOrder(t, db)

	loaded, err := repo.FindByID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", loaded.CustomerID())
	assert.Equal(t, order.StatusPending, loaded.Status())
	assert.Equal(t, "USD", loaded.Currency())
	require.Len(t, loaded.Items(), 2)
	assert.Equal(t, "SKU-1", loaded.Items()[0].SKU)
	assert.True(t, decimal.NewFromFloat(44.98).Equal(loaded.TotalAmount()))
}

func TestOrderRepository_FindMissing(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderRepository(db)

	_, err := repo.FindByID(context.Background(), "ord-404")

	var nfErr *shared.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestOrderRepository_SaveReconcilesLines(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderRepository(db)
	ctx := context.Background()
	o := seedOrder(t, db)

	_, err := o.RemoveItem("line-2", baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, o.AddItem(order.Item{
		ID: "line-3", OrderID: "ord-1", SKU: "SKU-3", Quantity: 3, UnitPrice: decimal.NewFromInt(4),
	}, baseTime.Add(time.Minute)))
	require.NoError(t, o.TransitionTo(order.StatusProcessing, baseTime.Add(2*time.Minute)))
	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.FindByID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, loaded.Status())
	require.Len(t, loaded.Items(), 2)
	assert.Equal(t, "SKU-1", loaded.Items()[0].SKU)
	assert.Equal(t, "SKU-3", loaded.Items()[1].SKU)
	assert.True(t, decimal.NewFromFloat(31.98).Equal(loaded.TotalAmount()))
}

func TestOrderRepository_History(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderRepository(db)
	ctx := context.Background()
	seedOrder(t, db)

	require.NoError(t, repo.AddHistory(ctx, &order.HistoryEntry{
		OrderID: "ord-1", FromStatus: order.StatusPending, ToStatus: order.StatusProcessing,
		Note: "payment confirmed", ChangedAt: baseTime.Add(time.Minute),
	}))
	require.NoError(t, repo.AddHistory(ctx, &order.HistoryEntry{
		OrderID: "ord-1", FromStatus: order.StatusProcessing, ToStatus: order.StatusShipped,
		ChangedAt: baseTime.Add(time.Hour),
	}))

	entries, err := repo.History(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, order.StatusPending, entries[0].FromStatus)
	assert.Equal(t, order.StatusProcessing, entries[0].ToStatus)
	assert.Equal(t, "payment confirmed", entries[0].Note)
	assert.Equal(t, order.StatusShipped, entries[1].ToStatus)
}

func TestOrderRepository_Payments(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderRepository(db)
	ctx := context.Background()
	seedOrder(t, db)

	require.NoError(t, repo.AddPayment(ctx, &order.Payment{
		ID: "pay-1", OrderID: "ord-1", Outcome: order.PaymentAuthorized,
		Amount: decimal.NewFromFloat(44.98), Currency: "USD",
		Gateway: "stripe", Reference: "ch_123", RecordedAt: baseTime,
	}))
	require.NoError(t, repo.AddPayment(ctx, &order.Payment{
		ID: "pay-2", OrderID: "ord-1", Outcome: order.PaymentCaptured,
		Amount: decimal.NewFromFloat(44.98), Currency: "USD",
		Gateway: "stripe", Reference: "ch_123", RecordedAt: baseTime.Add(time.Minute),
	}))

	payments, err := repo.Payments(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, order.PaymentAuthorized, payments[0].Outcome)
	assert.Equal(t, order.PaymentCaptured, payments[1].Outcome)
	assert.True(t, decimal.NewFromFloat(44.98).Equal(payments[1].Amount))
}

func TestOrderRepository_Notes(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderRepository(db)
	ctx := context.Background()
	seedOrder(t, db)

	require.NoError(t, repo.AddNote(ctx, &order.Note{
		ID: "note-1", OrderID: "ord-1", Note: "gift wrap requested", CreatedBy: "agent-3", CreatedAt: baseTime,
	}))

	var count int64
	require.NoError(t, db.Model(&persistence.OrderNoteModel{}).Where("order_id = ?", "ord-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
