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
	"github.com/harborline/omscore/internal/domain/returns"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/test/helpers"
)

func seedReturn(t *testing.T, db *gorm.DB) *returns.Return {
	t.Helper()
	ret, err := returns.New("ret-1", "ord-1", "wrong size", []returns.Item{
		{ID: "ri-1", ReturnID: "ret-1", OrderItemID: "line-1", ItemID: "SKU-1", LocationID: "MAIN", Quantity: 2, RestockEligible: true},
		{ID: "ri-2", ReturnID: "ret-1", OrderItemID: "line-2", ItemID: "SKU-2", LocationID: "MAIN", Quantity: 1, RestockEligible: true},
	}, baseTime)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormReturnRepository(db).Add(context.Background(), ret))
	return ret
}

func TestReturnRepository_RoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormReturnRepository(db)
	seedReturn(t, db)

	loaded, err := repo.FindByID(context.Background(), "ret-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", loaded.OrderID())
	assert.Equal(t, "wrong size", loaded.Reason())
	assert.Equal(t, returns.StatusRequested, loaded.Status())
	require.Len(t, loaded.Items(), 2)
	assert.Equal(t, "SKU-1", loaded.Items()[0].ItemID)
	assert.True(t, loaded.Items()[0].RestockEligible)
}

func TestReturnRepository_FindMissing(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormReturnRepository(db)

	_, err := repo.FindByID(context.Background(), "ret-404")

	var nfErr *shared.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestReturnRepository_SavePersistsReceiptConditions(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormReturnRepository(db)
	ctx := context.Background()
	ret := seedReturn(t, db)

	require.NoError(t, ret.TransitionTo(returns.StatusApproved, baseTime.Add(time.Minute)))
	require.NoError(t, ret.Receive(map[string]returns.ItemCondition{
		"ri-1": returns.ConditionNew,
		"ri-2": returns.ConditionDamaged,
	}, baseTime.Add(time.Hour)))
	require.NoError(t, ret.Refund(decimal.NewFromFloat(19.98), baseTime.Add(2*time.Hour)))
	require.NoError(t, repo.Save(ctx, ret))

	loaded, err := repo.FindByID(ctx, "ret-1")
	require.NoError(t, err)
	assert.Equal(t, returns.StatusRefunded, loaded.Status())
	assert.True(t, decimal.NewFromFloat(19.98).Equal(loaded.RefundAmount()))
	assert.Equal(t, returns.ConditionNew, loaded.Items()[0].Condition)
	assert.True(t, loaded.Items()[0].RestockEligible)
	// Damaged units lose restock eligibility on receipt.
	assert.Equal(t, returns.ConditionDamaged, loaded.Items()[1].Condition)
	assert.False(t, loaded.Items()[1].RestockEligible)
}

func TestReturnRepository_SavePersistsRestockFlags(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormReturnRepository(db)
	ctx := context.Background()
	ret := seedReturn(t, db)

	require.NoError(t, ret.TransitionTo(returns.StatusApproved, baseTime))
	require.NoError(t, ret.Receive(map[string]returns.ItemCondition{"ri-1": returns.ConditionNew, "ri-2": returns.ConditionOpened}, baseTime))
	require.NoError(t, ret.Refund(decimal.NewFromInt(10), baseTime))
	require.NoError(t, ret.TransitionTo(returns.StatusCompleted, baseTime))
	require.NoError(t, ret.MarkRestocked("ri-1", baseTime))
	require.NoError(t, repo.Save(ctx, ret))

	loaded, err := repo.FindByID(ctx, "ret-1")
	require.NoError(t, err)
	assert.True(t, loaded.Items()[0].Restocked)
	assert.False(t, loaded.Items()[1].Restocked)
	require.Len(t, loaded.RestockableItems(), 1)
	assert.Equal(t, "ri-2", loaded.RestockableItems()[0].ID)
}

func seedWarranty(t *testing.T, db *gorm.DB) *returns.Warranty {
	t.Helper()
	w, err := returns.NewWarranty("war-1", "prod-1", "cust-1", baseTime, baseTime.AddDate(1, 0, 0), "standard", baseTime)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormWarrantyRepository(db).Add(context.Background(), w))
	return w
}

func TestWarrantyRepository_RoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWarrantyRepository(db)
	seedWarranty(t, db)

	loaded, err := repo.FindByID(context.Background(), "war-1")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", loaded.ProductID())
	assert.Equal(t, "cust-1", loaded.CustomerID())
	assert.Equal(t, returns.WarrantyActive, loaded.StoredStatus())
	assert.Equal(t, "standard", loaded.Terms())
}

func TestWarrantyRepository_SavePersistsVoid(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWarrantyRepository(db)
	ctx := context.Background()
	w := seedWarranty(t, db)

	w.Void()
	require.NoError(t, repo.Save(ctx, w))

	loaded, err := repo.FindByID(ctx, "war-1")
	require.NoError(t, err)
	assert.Equal(t, returns.WarrantyVoid, loaded.StoredStatus())
	assert.Equal(t, returns.WarrantyVoid, loaded.StatusAt(baseTime))
}

func TestWarrantyRepository_ClaimLifecycle(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWarrantyRepository(db)
	ctx := context.Background()
	seedWarranty(t, db)

	claim := &returns.Claim{
		ID:          "claim-1",
		WarrantyID:  "war-1",
		Description: "hinge cracked",
		Status:      returns.ClaimSubmitted,
		SubmittedAt: baseTime.Add(time.Hour),
	}
	require.NoError(t, repo.AddClaim(ctx, claim))

	loaded, err := repo.FindClaim(ctx, "claim-1")
	require.NoError(t, err)
	assert.Equal(t, returns.ClaimSubmitted, loaded.Status)
	assert.Nil(t, loaded.ResolvedAt)

	require.NoError(t, returns.DecideClaim(loaded, returns.ClaimApproved, "replacement shipped", baseTime.Add(2*time.Hour)))
	require.NoError(t, repo.SaveClaim(ctx, loaded))

	decided, err := repo.FindClaim(ctx, "claim-1")
	require.NoError(t, err)
	assert.Equal(t, returns.ClaimApproved, decided.Status)
	assert.Equal(t, "replacement shipped", decided.Resolution)
	require.NotNil(t, decided.ResolvedAt)
}

func TestWarrantyRepository_FindClaimMissing(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWarrantyRepository(db)

	_, err := repo.FindClaim(context.Background(), "claim-404")

	var nfErr *shared.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}
