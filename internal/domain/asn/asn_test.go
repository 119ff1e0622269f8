package asn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/omscore/internal/domain/asn"
	"github.com/harborline/omscore/internal/domain/shared"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestASN(t *testing.T) *asn.ASN {
	t.Helper()
	a, err := asn.New("asn-1", "po-1", "sup-1", now.Add(72*time.Hour), "Dock 4", "NorthFreight", now)
	require.NoError(t, err)
	return a
}

func TestASN_NewRequiresPurchaseOrderAndSupplier(t *testing.T) {
	var vErr *shared.ValidationError

	_, err := asn.New("asn-1", "", "sup-1", now, "", "", now)
	require.ErrorAs(t, err, &vErr)

	_, err = asn.New("asn-1", "po-1", "", now, "", "", now)
	require.ErrorAs(t, err, &vErr)
}

func TestASN_LifecyclePath(t *testing.T) {
	a := newTestASN(t)

	require.NoError(t, a.TransitionTo(asn.StatusSubmitted, now))
	require.NoError(t, a.TransitionTo(asn.StatusInTransit, now))
	require.NoError(t, a.TransitionTo(asn.StatusDelivered, now))

	assert.True(t, asn.IsTerminal(a.Status()))
}

func TestASN_CancelBlockedOnceMoving(t *testing.T) {
	a := newTestASN(t)
	require.NoError(t, a.TransitionTo(asn.StatusSubmitted, now))
	require.NoError(t, a.TransitionTo(asn.StatusInTransit, now))

	err := a.Cancel(now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, asn.StatusInTransit, a.Status())
}

func TestASN_CancelFromDraftAndSubmitted(t *testing.T) {
	a := newTestASN(t)
	require.NoError(t, a.Cancel(now))
	assert.Equal(t, asn.StatusCancelled, a.Status())

	b := newTestASN(t)
	require.NoError(t, b.TransitionTo(asn.StatusSubmitted, now))
	require.NoError(t, b.Cancel(now))
}

func TestASN_HoldAndRelease(t *testing.T) {
	a := newTestASN(t)
	require.NoError(t, a.TransitionTo(asn.StatusSubmitted, now))
	require.NoError(t, a.Hold(now))
	assert.Equal(t, asn.StatusOnHold, a.Status())

	// Held shipments resume only into submitted or in_transit.
	err := a.Release(asn.StatusDelivered, now)
	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)

	require.NoError(t, a.Release(asn.StatusInTransit, now))
	assert.Equal(t, asn.StatusInTransit, a.Status())
}

func TestASN_HoldFromDraftRejected(t *testing.T) {
	a := newTestASN(t)

	err := a.Hold(now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
}

func TestASN_ReleaseRequiresHold(t *testing.T) {
	a := newTestASN(t)
	require.NoError(t, a.TransitionTo(asn.StatusSubmitted, now))

	err := a.Release(asn.StatusInTransit, now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
}

func TestASN_ChildrenFrozenOnceInTransit(t *testing.T) {
	a := newTestASN(t)
	require.NoError(t, a.AddItem(asn.Item{ID: "it-1", SKU: "SKU-1", Quantity: 10}, now))
	require.NoError(t, a.TransitionTo(asn.StatusSubmitted, now))
	require.NoError(t, a.AddItem(asn.Item{ID: "it-2", SKU: "SKU-2", Quantity: 5}, now))
	require.NoError(t, a.TransitionTo(asn.StatusInTransit, now))

	var isErr *shared.InvalidStatusError

	err := a.AddItem(asn.Item{ID: "it-3", SKU: "SKU-3", Quantity: 1}, now)
	require.ErrorAs(t, err, &isErr)

	_, err = a.RemoveItem("it-1", now)
	require.ErrorAs(t, err, &isErr)

	err = a.AddPackage(asn.Package{ID: "pkg-1", TrackingNumber: "NF123"}, now)
	require.ErrorAs(t, err, &isErr)

	assert.Len(t, a.Items(), 2)
}

func TestASN_RemoveItemReturnsLine(t *testing.T) {
	a := newTestASN(t)
	require.NoError(t, a.AddItem(asn.Item{ID: "it-1", SKU: "SKU-1", Quantity: 10}, now))

	removed, err := a.RemoveItem("it-1", now)

	require.NoError(t, err)
	assert.Equal(t, "SKU-1", removed.SKU)
	assert.Empty(t, a.Items())

	_, err = a.RemoveItem("it-1", now)
	var nfErr *shared.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestASN_CheckVersion(t *testing.T) {
	a := newTestASN(t)

	require.NoError(t, a.CheckVersion(1))
	a.BumpVersion()

	err := a.CheckVersion(1)
	var cmErr *shared.ConcurrentModificationError
	require.ErrorAs(t, err, &cmErr)
}

func TestNoteTypeForTransition(t *testing.T) {
	cases := []struct {
		from, to asn.Status
		want     asn.NoteType
	}{
		{asn.StatusSubmitted, asn.StatusCancelled, asn.NoteCancellation},
		{asn.StatusSubmitted, asn.StatusOnHold, asn.NoteHold},
		{asn.StatusOnHold, asn.StatusSubmitted, asn.NoteRelease},
		{asn.StatusOnHold, asn.StatusInTransit, asn.NoteRelease},
		{asn.StatusOnHold, asn.StatusCancelled, asn.NoteCancellation},
		{asn.StatusDraft, asn.StatusSubmitted, asn.NoteGeneral},
		{asn.StatusInTransit, asn.StatusDelivered, asn.NoteGeneral},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, asn.NoteTypeForTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}
