// Package queries holds the ASN read operations.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/asn"
)

// GetASNQuery reads one ASN with its items and packages.
type GetASNQuery struct {
	ASNID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (GetASNQuery) CommandName() string { return "get_asn_query" }

// ASNItemView is one expected line in the read model.
type ASNItemView struct {
	ItemID   string
	SKU      string
	Quantity int
}

// ASNPackageView is one parcel in the read model.
type ASNPackageView struct {
	PackageID      string
	TrackingNumber string
	WeightKG       float64
	Items          int
}

// ASNView is the ASN read model. Version lets callers issue a follow-up
// command without a second read.
type ASNView struct {
	ASNID            string
	PurchaseOrderID  string
	SupplierID       string
	Status           string
	ExpectedDelivery time.Time
	ShippingAddress  string
	Carrier          string
	CarrierReference string
	Items            []ASNItemView
	Packages         []ASNPackageView
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GetASNQueryHandler serves single-ASN reads.
type GetASNQueryHandler struct {
	asns asn.Repository
}

// NewGetASNQueryHandler creates the handler.
func NewGetASNQueryHandler(asns asn.Repository) *GetASNQueryHandler {
	return &GetASNQueryHandler{asns: asns}
}

// Handle builds the ASN read model.
func (h *GetASNQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*GetASNQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	a, err := h.asns.FindByID(ctx, q.ASNID)
	if err != nil {
		return nil, err
	}

	view := &ASNView{
		ASNID:            a.ID(),
		PurchaseOrderID:  a.PurchaseOrderID(),
		SupplierID:       a.SupplierID(),
		Status:           string(a.Status()),
		ExpectedDelivery: a.ExpectedDelivery(),
		ShippingAddress:  a.ShippingAddress(),
		Carrier:          a.Carrier(),
		CarrierReference: a.CarrierReference(),
		Version:          a.Version(),
		CreatedAt:        a.CreatedAt(),
		UpdatedAt:        a.UpdatedAt(),
	}
	for _, item := range a.Items() {
		view.Items = append(view.Items, ASNItemView{ItemID: item.ID, SKU: item.SKU, Quantity: item.Quantity})
	}
	for _, pkg := range a.Packages() {
		view.Packages = append(view.Packages, ASNPackageView{
			PackageID:      pkg.ID,
			TrackingNumber: pkg.TrackingNumber,
			WeightKG:       pkg.WeightKG,
			Items:          pkg.Items,
		})
	}
	return view, nil
}

// ASNNotesQuery reads the notes of an ASN.
type ASNNotesQuery struct {
	ASNID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (ASNNotesQuery) CommandName() string { return "asn_notes_query" }

// ASNNotesQueryHandler serves the note log.
type ASNNotesQueryHandler struct {
	asns asn.Repository
}

// NewASNNotesQueryHandler creates the handler.
func NewASNNotesQueryHandler(asns asn.Repository) *ASNNotesQueryHandler {
	return &ASNNotesQueryHandler{asns: asns}
}

// Handle returns the notes oldest first.
func (h *ASNNotesQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*ASNNotesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.asns.Notes(ctx, q.ASNID)
}
