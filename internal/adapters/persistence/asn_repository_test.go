package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/adapters/persistence"
	"github.com/harborline/omscore/internal/domain/asn"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/test/helpers"
)

func seedASN(t *testing.T, db *gorm.DB) *asn.ASN {
	t.Helper()
	a, err := asn.New("asn-1", "po-1", "sup-1", baseTime.Add(72*time.Hour), "Dock 4", "NorthFreight", baseTime)
	require.NoError(t, err)
	require.NoError(t, a.AddItem(asn.Item{ID: "ai-1", ASNID: "asn-1", SKU: "SKU-1", ItemID: "SKU-1", Quantity: 40}, baseTime))
	require.NoError(t, a.AddPackage(asn.Package{ID: "pkg-1", ASNID: "asn-1", TrackingNumber: "NF-778", WeightKG: 12.5, Items: 1}, baseTime))
	require.NoError(t, persistence.NewGormASNRepository(db).Add(context.Background(), a))
	return a
}

func TestASNRepository_RoundTrip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormASNRepository(db)
	seedASN(t, db)

	loaded, err := repo.FindByID(context.Background(), "asn-1")
	require.NoError(t, err)
	assert.Equal(t, "po-1", loaded.PurchaseOrderID())
	assert.Equal(t, "sup-1", loaded.SupplierID())
	assert.Equal(t, asn.StatusDraft, loaded.Status())
	assert.Equal(t, "NorthFreight", loaded.Carrier())
	assert.Equal(t, 1, loaded.Version())
	require.Len(t, loaded.Items(), 1)
	assert.Equal(t, 40, loaded.Items()[0].Quantity)
	require.Len(t, loaded.Packages(), 1)
	assert.Equal(t, "NF-778", loaded.Packages()[0].TrackingNumber)
	assert.Equal(t, 12.5, loaded.Packages()[0].WeightKG)
}

func TestASNRepository_FindMissing(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormASNRepository(db)

	_, err := repo.FindByID(context.Background(), "asn-404")

	var nfErr *shared.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestASNRepository_SaveVersionedReconcilesChildren(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormASNRepository(db)
	ctx := context.Background()
	a := seedASN(t, db)

	require.NoError(t, a.AddItem(asn.Item{ID: "ai-2", ASNID: "asn-1", SKU: "SKU-2", ItemID: "SKU-2", Quantity: 8}, baseTime.Add(time.Minute)))
	require.NoError(t, a.TransitionTo(asn.StatusSubmitted, baseTime.Add(time.Minute)))
	a.SetCarrierReference("NF-PRO-4411", baseTime.Add(time.Minute))
	require.NoError(t, repo.SaveVersioned(ctx, a, 1))
	assert.Equal(t, 2, a.Version())

	loaded, err := repo.FindByID(ctx, "asn-1")
	require.NoError(t, err)
	assert.Equal(t, asn.StatusSubmitted, loaded.Status())
	assert.Equal(t, "NF-PRO-4411", loaded.CarrierReference())
	assert.Equal(t, 2, loaded.Version())
	require.Len(t, loaded.Items(), 2)
	assert.Equal(t, "SKU-2", loaded.Items()[1].SKU)
}

func TestASNRepository_SaveVersionedStaleVersion(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormASNRepository(db)
	ctx := context.Background()
	a := seedASN(t, db)

	require.NoError(t, a.TransitionTo(asn.StatusSubmitted, baseTime.Add(time.Minute)))
	require.NoError(t, repo.SaveVersioned(ctx, a, 1))

	stale, err := repo.FindByID(ctx, "asn-1")
	require.NoError(t, err)
	require.NoError(t, stale.TransitionTo(asn.StatusInTransit, baseTime.Add(2*time.Minute)))
	err = repo.SaveVersioned(ctx, stale, 1)

	var cmErr *shared.ConcurrentModificationError
	require.ErrorAs(t, err, &cmErr)

	loaded, err := repo.FindByID(ctx, "asn-1")
	require.NoError(t, err)
	assert.Equal(t, asn.StatusSubmitted, loaded.Status())
}

func TestASNRepository_Notes(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormASNRepository(db)
	ctx := context.Background()
	seedASN(t, db)

	require.NoError(t, repo.AddNote(ctx, &asn.Note{
		ID: "note-1", ASNID: "asn-1", Type: asn.NoteGeneral,
		Text: "pallets shrink-wrapped", CreatedBy: "sup-1", CreatedAt: baseTime,
	}))
	require.NoError(t, repo.AddNote(ctx, &asn.Note{
		ID: "note-2", ASNID: "asn-1", Type: asn.NoteHold,
		Text: "customs inspection", CreatedBy: "ops-2", CreatedAt: baseTime.Add(time.Hour),
	}))

	notes, err := repo.Notes(ctx, "asn-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, asn.NoteGeneral, notes[0].Type)
	assert.Equal(t, asn.NoteHold, notes[1].Type)
	assert.Equal(t, "customs inspection", notes[1].Text)
}
