package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/asn"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
)

// mutate loads the ASN, checks the caller's version, applies fn, does the
// conditional write and enqueues the returned event. Used by the child-row
// mutations; lifecycle moves go through transition instead.
func (d asnWriteDeps) mutate(ctx context.Context, asnID string, version int, fn func(a *asn.ASN) (events.Event, error)) (common.Response, error) {
	var (
		response  *ASNMutationResponse
		committed events.Event
	)

	err := d.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		a, err := d.asns.FindByID(ctx, asnID)
		if err != nil {
			return err
		}
		if err := a.CheckVersion(version); err != nil {
			return err
		}
		ev, err := fn(a)
		if err != nil {
			return err
		}
		if err := d.asns.SaveVersioned(ctx, a, version); err != nil {
			return err
		}
		if err := d.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		response = &ASNMutationResponse{ASNID: a.ID(), Status: string(a.Status()), Version: a.Version()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, d.publisher, committed)
	return response, nil
}

// AddASNItemCommand appends an expected line to a draft or submitted ASN.
type AddASNItemCommand struct {
	ASNID    string `validate:"required"`
	Version  int    `validate:"required,gt=0"`
	SKU      string `validate:"required"`
	ItemID   string
	Quantity int `validate:"required,gt=0"`
}

// CommandName identifies the command for metrics and logs.
func (AddASNItemCommand) CommandName() string { return "add_asn_item" }

// AddASNItemHandler handles line additions.
type AddASNItemHandler struct {
	deps asnWriteDeps
}

// NewAddASNItemHandler creates the handler.
func NewAddASNItemHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AddASNItemHandler {
	return &AddASNItemHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle appends the line and enqueues ASNItemAdded.
func (h *AddASNItemHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddASNItemCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.ASNID, cmd.Version, func(a *asn.ASN) (events.Event, error) {
		item := asn.Item{
			ID:       uuid.New().String(),
			ASNID:    a.ID(),
			SKU:      cmd.SKU,
			ItemID:   cmd.ItemID,
			Quantity: cmd.Quantity,
		}
		if err := a.AddItem(item, h.deps.clock.Now()); err != nil {
			return nil, err
		}
		return events.ASNItemAdded{
			ASNEvent: events.ASNEvent{ASNID: a.ID()},
			ItemID:   item.ID,
			SKU:      cmd.SKU,
			Quantity: cmd.Quantity,
		}, nil
	})
}

// RemoveASNItemCommand deletes an expected line.
type RemoveASNItemCommand struct {
	ASNID   string `validate:"required"`
	Version int    `validate:"required,gt=0"`
	ItemID  string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (RemoveASNItemCommand) CommandName() string { return "remove_asn_item" }

// RemoveASNItemHandler handles line removals.
type RemoveASNItemHandler struct {
	deps asnWriteDeps
}

// NewRemoveASNItemHandler creates the handler.
func NewRemoveASNItemHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *RemoveASNItemHandler {
	return &RemoveASNItemHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle removes the line and enqueues ASNItemRemoved.
func (h *RemoveASNItemHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RemoveASNItemCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.ASNID, cmd.Version, func(a *asn.ASN) (events.Event, error) {
		removed, err := a.RemoveItem(cmd.ItemID, h.deps.clock.Now())
		if err != nil {
			return nil, err
		}
		return events.ASNItemRemoved{
			ASNEvent: events.ASNEvent{ASNID: a.ID()},
			ItemID:   removed.ID,
		}, nil
	})
}

// AddASNPackageCommand appends a parcel to a draft or submitted ASN.
type AddASNPackageCommand struct {
	ASNID          string `validate:"required"`
	Version        int    `validate:"required,gt=0"`
	TrackingNumber string
	WeightKG       float64 `validate:"gte=0"`
	Items          int     `validate:"gte=0"`
}

// CommandName identifies the command for metrics and logs.
func (AddASNPackageCommand) CommandName() string { return "add_asn_package" }

// AddASNPackageHandler handles parcel additions.
type AddASNPackageHandler struct {
	deps asnWriteDeps
}

// NewAddASNPackageHandler creates the handler.
func NewAddASNPackageHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AddASNPackageHandler {
	return &AddASNPackageHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle appends the parcel and enqueues ASNUpdated.
func (h *AddASNPackageHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddASNPackageCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.ASNID, cmd.Version, func(a *asn.ASN) (events.Event, error) {
		pkg := asn.Package{
			ID:             uuid.New().String(),
			ASNID:          a.ID(),
			TrackingNumber: cmd.TrackingNumber,
			WeightKG:       cmd.WeightKG,
			Items:          cmd.Items,
		}
		if err := a.AddPackage(pkg, h.deps.clock.Now()); err != nil {
			return nil, err
		}
		return events.ASNUpdated{
			ASNEvent: events.ASNEvent{ASNID: a.ID()},
			Version:  a.Version() + 1,
		}, nil
	})
}

// AddASNNoteCommand appends a GENERAL note. Notes do not touch the aggregate
// row, so no version is required.
type AddASNNoteCommand struct {
	ASNID     string `validate:"required"`
	Note      string `validate:"required"`
	CreatedBy string
}

// CommandName identifies the command for metrics and logs.
func (AddASNNoteCommand) CommandName() string { return "add_asn_note" }

// AddASNNoteHandler handles manual note additions.
type AddASNNoteHandler struct {
	deps asnWriteDeps
}

// NewAddASNNoteHandler creates the handler.
func NewAddASNNoteHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AddASNNoteHandler {
	return &AddASNNoteHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle writes the GENERAL note row; the ASN itself is untouched.
func (h *AddASNNoteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddASNNoteCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var noteID string
	err := h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		a, err := h.deps.asns.FindByID(ctx, cmd.ASNID)
		if err != nil {
			return err
		}

		note := &asn.Note{
			ID:        uuid.New().String(),
			ASNID:     a.ID(),
			Type:      asn.NoteGeneral,
			Text:      cmd.Note,
			CreatedBy: cmd.CreatedBy,
			CreatedAt: h.deps.clock.Now(),
		}
		noteID = note.ID
		return h.deps.asns.AddNote(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	return &AddASNNoteResponse{ASNID: cmd.ASNID, NoteID: noteID}, nil
}

// AddASNNoteResponse returns the new note's identity.
type AddASNNoteResponse struct {
	ASNID  string
	NoteID string
}
