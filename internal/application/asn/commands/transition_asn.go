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

// asnWriteDeps bundles the shared collaborators of the ASN mutation handlers.
type asnWriteDeps struct {
	txManager common.TransactionManager
	asns      asn.Repository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// ASNMutationResponse is the shared response of the ASN mutations.
type ASNMutationResponse struct {
	ASNID   string
	Status  string
	Version int
}

// transition applies a lifecycle move under the version guard, writes the
// matching note type and enqueues the transition event plus any extra events
// produced by the move.
func (d asnWriteDeps) transition(ctx context.Context, asnID string, version int, reason, createdBy string,
	move func(a *asn.ASN) error,
	extra func(a *asn.ASN) []events.Event,
) (common.Response, error) {
	var (
		response  *ASNMutationResponse
		committed []events.Event
	)

	err := d.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := d.clock.Now()

		a, err := d.asns.FindByID(ctx, asnID)
		if err != nil {
			return err
		}
		if err := a.CheckVersion(version); err != nil {
			return err
		}

		from := a.Status()
		if err := move(a); err != nil {
			return err
		}
		to := a.Status()

		if err := d.asns.SaveVersioned(ctx, a, version); err != nil {
			return err
		}

		note := &asn.Note{
			ID:        uuid.New().String(),
			ASNID:     a.ID(),
			Type:      asn.NoteTypeForTransition(from, to),
			Text:      noteText(from, to, reason),
			CreatedBy: createdBy,
			CreatedAt: now,
		}
		if err := d.asns.AddNote(ctx, note); err != nil {
			return err
		}

		ev := events.NewASNTransitioned(asnEventType(from, to), a.ID(), string(from), string(to), reason, a.Version())
		pending := []events.Event{ev}
		if extra != nil {
			pending = append(pending, extra(a)...)
		}
		for _, e := range pending {
			if err := d.enqueuer.Enqueue(ctx, e); err != nil {
				return err
			}
		}

		committed = pending
		response = &ASNMutationResponse{ASNID: a.ID(), Status: string(to), Version: a.Version()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, d.publisher, committed...)
	return response, nil
}

func noteText(from, to asn.Status, reason string) string {
	if reason != "" {
		return reason
	}
	return fmt.Sprintf("status changed from %s to %s", from, to)
}

func asnEventType(from, to asn.Status) string {
	switch {
	case to == asn.StatusCancelled:
		return events.TypeASNCancelled
	case to == asn.StatusOnHold:
		return events.TypeASNOnHold
	case from == asn.StatusOnHold:
		return events.TypeASNReleasedFromHold
	case to == asn.StatusSubmitted:
		return events.TypeASNSubmitted
	case to == asn.StatusInTransit:
		return events.TypeASNInTransit
	case to == asn.StatusDelivered:
		return events.TypeASNDelivered
	default:
		return events.TypeASNUpdated
	}
}

// SubmitASNCommand moves a draft to submitted.
type SubmitASNCommand struct {
	ASNID     string `validate:"required"`
	Version   int    `validate:"required,gt=0"`
	CreatedBy string
}

// CommandName identifies the command for metrics and logs.
func (SubmitASNCommand) CommandName() string { return "submit_asn" }

// SubmitASNHandler handles draft submission.
type SubmitASNHandler struct {
	deps asnWriteDeps
}

// NewSubmitASNHandler creates the handler.
func NewSubmitASNHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *SubmitASNHandler {
	return &SubmitASNHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle submits the draft. An ASN without items cannot be submitted.
func (h *SubmitASNHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SubmitASNCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.transition(ctx, cmd.ASNID, cmd.Version, "", cmd.CreatedBy, func(a *asn.ASN) error {
		if len(a.Items()) == 0 {
			return shared.NewBusinessRuleError("asn has no items to submit")
		}
		return a.TransitionTo(asn.StatusSubmitted, h.deps.clock.Now())
	}, nil)
}

// HoldASNCommand puts a submitted or in-transit ASN on hold.
type HoldASNCommand struct {
	ASNID     string `validate:"required"`
	Version   int    `validate:"required,gt=0"`
	Reason    string `validate:"required"`
	CreatedBy string
}

// CommandName identifies the command for metrics and logs.
func (HoldASNCommand) CommandName() string { return "hold_asn" }

// HoldASNHandler handles holds.
type HoldASNHandler struct {
	deps asnWriteDeps
}

// NewHoldASNHandler creates the handler.
func NewHoldASNHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *HoldASNHandler {
	return &HoldASNHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle holds the ASN; the reason lands in the HOLD note.
func (h *HoldASNHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*HoldASNCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.transition(ctx, cmd.ASNID, cmd.Version, cmd.Reason, cmd.CreatedBy, func(a *asn.ASN) error {
		return a.Hold(h.deps.clock.Now())
	}, nil)
}

// ReleaseASNCommand resumes a held ASN into submitted or in_transit.
type ReleaseASNCommand struct {
	ASNID     string `validate:"required"`
	Version   int    `validate:"required,gt=0"`
	To        string `validate:"required,oneof=submitted in_transit"`
	CreatedBy string
}

// CommandName identifies the command for metrics and logs.
func (ReleaseASNCommand) CommandName() string { return "release_asn" }

// ReleaseASNHandler handles hold releases.
type ReleaseASNHandler struct {
	deps asnWriteDeps
}

// NewReleaseASNHandler creates the handler.
func NewReleaseASNHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *ReleaseASNHandler {
	return &ReleaseASNHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle releases the hold back into the requested status.
func (h *ReleaseASNHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReleaseASNCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.transition(ctx, cmd.ASNID, cmd.Version, "", cmd.CreatedBy, func(a *asn.ASN) error {
		return a.Release(asn.Status(cmd.To), h.deps.clock.Now())
	}, nil)
}

// MarkASNInTransitCommand records carrier pickup.
type MarkASNInTransitCommand struct {
	ASNID            string `validate:"required"`
	Version          int    `validate:"required,gt=0"`
	CarrierReference string
	CreatedBy        string
}

// CommandName identifies the command for metrics and logs.
func (MarkASNInTransitCommand) CommandName() string { return "mark_asn_in_transit" }

// MarkASNInTransitHandler handles the in-transit move.
type MarkASNInTransitHandler struct {
	deps asnWriteDeps
}

// NewMarkASNInTransitHandler creates the handler.
func NewMarkASNInTransitHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *MarkASNInTransitHandler {
	return &MarkASNInTransitHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle moves the ASN to in_transit and stores the carrier reference.
func (h *MarkASNInTransitHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MarkASNInTransitCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.transition(ctx, cmd.ASNID, cmd.Version, "", cmd.CreatedBy, func(a *asn.ASN) error {
		now := h.deps.clock.Now()
		if err := a.TransitionTo(asn.StatusInTransit, now); err != nil {
			return err
		}
		if cmd.CarrierReference != "" {
			a.SetCarrierReference(cmd.CarrierReference, now)
		}
		return nil
	}, nil)
}

// MarkASNDeliveredCommand records arrival at the dock.
type MarkASNDeliveredCommand struct {
	ASNID     string `validate:"required"`
	Version   int    `validate:"required,gt=0"`
	CreatedBy string
}

// CommandName identifies the command for metrics and logs.
func (MarkASNDeliveredCommand) CommandName() string { return "mark_asn_delivered" }

// MarkASNDeliveredHandler handles the delivered move.
type MarkASNDeliveredHandler struct {
	deps asnWriteDeps
}

// NewMarkASNDeliveredHandler creates the handler.
func NewMarkASNDeliveredHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *MarkASNDeliveredHandler {
	return &MarkASNDeliveredHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle moves the ASN to delivered; receiving then books the stock through
// the inventory commands.
func (h *MarkASNDeliveredHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*MarkASNDeliveredCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.transition(ctx, cmd.ASNID, cmd.Version, "", cmd.CreatedBy, func(a *asn.ASN) error {
		return a.TransitionTo(asn.StatusDelivered, h.deps.clock.Now())
	}, nil)
}

// CancelASNCommand cancels an ASN that has not started moving. NotifySupplier
// emits a second event for the supplier integration.
type CancelASNCommand struct {
	ASNID          string `validate:"required"`
	Version        int    `validate:"required,gt=0"`
	Reason         string `validate:"required"`
	NotifySupplier bool
	CreatedBy      string
}

// CommandName identifies the command for metrics and logs.
func (CancelASNCommand) CommandName() string { return "cancel_asn" }

// CancelASNHandler handles cancellations.
type CancelASNHandler struct {
	deps asnWriteDeps
}

// NewCancelASNHandler creates the handler.
func NewCancelASNHandler(
	txManager common.TransactionManager,
	asns asn.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *CancelASNHandler {
	return &CancelASNHandler{deps: asnWriteDeps{txManager, asns, enqueuer, publisher, clock}}
}

// Handle cancels the ASN, writes the CANCELLATION note and optionally emits
// ASNSupplierNotified in the same transaction.
func (h *CancelASNHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CancelASNCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.transition(ctx, cmd.ASNID, cmd.Version, cmd.Reason, cmd.CreatedBy, func(a *asn.ASN) error {
		return a.Cancel(h.deps.clock.Now())
	}, func(a *asn.ASN) []events.Event {
		if !cmd.NotifySupplier {
			return nil
		}
		return []events.Event{events.ASNSupplierNotified{
			ASNEvent:   events.ASNEvent{ASNID: a.ID()},
			SupplierID: a.SupplierID(),
			Reason:     cmd.Reason,
		}}
	})
}
