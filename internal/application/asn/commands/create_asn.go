// Package commands holds the ASN write operations. ASNs follow the same
// optimistic locking discipline as work orders, and every lifecycle
// transition writes a note of the matching type alongside the status change.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/asn"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
)

// ASNItemInput is one expected line of the inbound shipment.
type ASNItemInput struct {
	SKU      string `validate:"required"`
	ItemID   string
	Quantity int `validate:"required,gt=0"`
}

// CreateASNCommand opens a draft ASN.
type CreateASNCommand struct {
	PurchaseOrderID  string    `validate:"required"`
	SupplierID       string    `validate:"required"`
	ExpectedDelivery time.Time `validate:"required"`
	ShippingAddress  string
	Carrier          string
	Items            []ASNItemInput `validate:"dive"`
}

// CommandName identifies the command for metrics and logs.
func (CreateASNCommand) CommandName() string { return "create_asn" }

// CreateASNResponse returns the new ASN's identity.
type CreateASNResponse struct {
	ASNID   string
	Status  string
	Version int
}

// CreateASNHandler handles ASN creation.
type CreateASNHandler struct {
	txManager common.TransactionManager
	asns      asn.Repository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewCreateASNHandler creates the handler.
func NewCreateASNHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *CreateASNHandler {
	return &CreateASNHandler{
		txManager: txManager,
		asns:      asns,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle creates the draft with its initial lines and enqueues ASNCreated.
func (h *CreateASNHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreateASNCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	now := h.clock.Now()
	a, err := asn.New(uuid.New().String(), cmd.PurchaseOrderID, cmd.SupplierID,
		cmd.ExpectedDelivery, cmd.ShippingAddress, cmd.Carrier, now)
	if err != nil {
		return nil, err
	}
	for _, line := range cmd.Items {
		item := asn.Item{
			ID:       uuid.New().String(),
			ASNID:    a.ID(),
			SKU:      line.SKU,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		}
		if err := a.AddItem(item, now); err != nil {
			return nil, err
		}
	}

	ev := events.ASNCreated{
		ASNEvent:         events.ASNEvent{ASNID: a.ID()},
		PurchaseOrderID:  cmd.PurchaseOrderID,
		SupplierID:       cmd.SupplierID,
		ExpectedDelivery: cmd.ExpectedDelivery,
	}

	err = h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := h.asns.Add(ctx, a); err != nil {
			return err
		}
		return h.enqueuer.Enqueue(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, ev)
	return &CreateASNResponse{
		ASNID:   a.ID(),
		Status:  string(a.Status()),
		Version: a.Version(),
	}, nil
}
