package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/returns"
	"github.com/harborline/omscore/internal/domain/shared"
)

// CreateWarrantyCommand registers warranty coverage for a product.
type CreateWarrantyCommand struct {
	ProductID  string    `validate:"required"`
	CustomerID string    `validate:"required"`
	StartDate  time.Time `validate:"required"`
	EndDate    time.Time `validate:"required,gtfield=StartDate"`
	Terms      string
}

// CommandName identifies the command for metrics and logs.
func (CreateWarrantyCommand) CommandName() string { return "create_warranty" }

// CreateWarrantyResponse returns the new warranty's identity.
type CreateWarrantyResponse struct {
	WarrantyID string
	Status     string
}

// warrantyWriteDeps bundles the shared collaborators of the warranty handlers.
type warrantyWriteDeps struct {
	txManager  common.TransactionManager
	warranties returns.WarrantyRepository
	enqueuer   common.OutboxEnqueuer
	publisher  common.EventPublisher
	clock      shared.Clock
}

// CreateWarrantyHandler handles warranty registration.
type CreateWarrantyHandler struct {
	deps warrantyWriteDeps
}

// NewCreateWarrantyHandler creates the handler.
func NewCreateWarrantyHandler(
	txManager common.TransactionManager,
	warranties returns.WarrantyRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *CreateWarrantyHandler {
	return &CreateWarrantyHandler{deps: warrantyWriteDeps{txManager, warranties, enqueuer, publisher, clock}}
}

// Handle registers the warranty and enqueues WarrantyCreated.
func (h *CreateWarrantyHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreateWarrantyCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	w, err := returns.NewWarranty(uuid.New().String(), cmd.ProductID, cmd.CustomerID,
		cmd.StartDate, cmd.EndDate, cmd.Terms, h.deps.clock.Now())
	if err != nil {
		return nil, err
	}

	ev := events.WarrantyCreated{
		WarrantyEvent: events.WarrantyEvent{WarrantyID: w.ID()},
		ProductID:     cmd.ProductID,
		CustomerID:    cmd.CustomerID,
	}

	err = h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := h.deps.warranties.Add(ctx, w); err != nil {
			return err
		}
		return h.deps.enqueuer.Enqueue(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.deps.publisher, ev)
	return &CreateWarrantyResponse{WarrantyID: w.ID(), Status: string(returns.WarrantyActive)}, nil
}

// VoidWarrantyCommand voids a warranty. Admin action, allowed from any state.
type VoidWarrantyCommand struct {
	WarrantyID string `validate:"required"`
	Reason     string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (VoidWarrantyCommand) CommandName() string { return "void_warranty" }

// VoidWarrantyHandler handles voiding.
type VoidWarrantyHandler struct {
	deps warrantyWriteDeps
}

// NewVoidWarrantyHandler creates the handler.
func NewVoidWarrantyHandler(
	txManager common.TransactionManager,
	warranties returns.WarrantyRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *VoidWarrantyHandler {
	return &VoidWarrantyHandler{deps: warrantyWriteDeps{txManager, warranties, enqueuer, publisher, clock}}
}

// Handle voids the warranty and enqueues WarrantyVoided.
func (h *VoidWarrantyHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*VoidWarrantyCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var committed events.Event
	err := h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		w, err := h.deps.warranties.FindByID(ctx, cmd.WarrantyID)
		if err != nil {
			return err
		}
		w.Void()
		if err := h.deps.warranties.Save(ctx, w); err != nil {
			return err
		}

		ev := events.WarrantyVoided{
			WarrantyEvent: events.WarrantyEvent{WarrantyID: w.ID()},
			Reason:        cmd.Reason,
		}
		if err := h.deps.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.deps.publisher, committed)
	return &WarrantyMutationResponse{WarrantyID: cmd.WarrantyID, Status: string(returns.WarrantyVoid)}, nil
}

// WarrantyMutationResponse is the shared response of the warranty mutations.
type WarrantyMutationResponse struct {
	WarrantyID string
	Status     string
}

// SubmitWarrantyClaimCommand opens a claim on an active warranty. The
// customer must match the warranty holder.
type SubmitWarrantyClaimCommand struct {
	WarrantyID  string `validate:"required"`
	CustomerID  string `validate:"required"`
	Description string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (SubmitWarrantyClaimCommand) CommandName() string { return "submit_warranty_claim" }

// SubmitWarrantyClaimResponse returns the new claim's identity.
type SubmitWarrantyClaimResponse struct {
	ClaimID    string
	WarrantyID string
	Status     string
}

// SubmitWarrantyClaimHandler handles claim submission.
type SubmitWarrantyClaimHandler struct {
	deps warrantyWriteDeps
}

// NewSubmitWarrantyClaimHandler creates the handler.
func NewSubmitWarrantyClaimHandler(
	txManager common.TransactionManager,
	warranties returns.WarrantyRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *SubmitWarrantyClaimHandler {
	return &SubmitWarrantyClaimHandler{deps: warrantyWriteDeps{txManager, warranties, enqueuer, publisher, clock}}
}

// Handle validates the warranty accepts claims right now and writes the row.
// Expiry is derived at the clock instant; no background job flips statuses.
func (h *SubmitWarrantyClaimHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SubmitWarrantyClaimCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *SubmitWarrantyClaimResponse
		committed events.Event
	)

	err := h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.deps.clock.Now()

		w, err := h.deps.warranties.FindByID(ctx, cmd.WarrantyID)
		if err != nil {
			return err
		}
		if err := w.AcceptClaim(cmd.CustomerID, now); err != nil {
			return err
		}

		claim := &returns.Claim{
			ID:          uuid.New().String(),
			WarrantyID:  w.ID(),
			Description: cmd.Description,
			Status:      returns.ClaimSubmitted,
			SubmittedAt: now,
		}
		if err := h.deps.warranties.AddClaim(ctx, claim); err != nil {
			return err
		}

		ev := events.WarrantyClaimed{
			WarrantyEvent: events.WarrantyEvent{WarrantyID: w.ID()},
			ClaimID:       claim.ID,
			Description:   cmd.Description,
		}
		if err := h.deps.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = ev
		response = &SubmitWarrantyClaimResponse{
			ClaimID:    claim.ID,
			WarrantyID: w.ID(),
			Status:     string(claim.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.deps.publisher, committed)
	return response, nil
}

// DecideWarrantyClaimCommand approves or rejects a submitted claim.
type DecideWarrantyClaimCommand struct {
	ClaimID    string `validate:"required"`
	Decision   string `validate:"required,oneof=approved rejected"`
	Resolution string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (DecideWarrantyClaimCommand) CommandName() string { return "decide_warranty_claim" }

// DecideWarrantyClaimHandler handles claim decisions.
type DecideWarrantyClaimHandler struct {
	deps warrantyWriteDeps
}

// NewDecideWarrantyClaimHandler creates the handler.
func NewDecideWarrantyClaimHandler(
	txManager common.TransactionManager,
	warranties returns.WarrantyRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *DecideWarrantyClaimHandler {
	return &DecideWarrantyClaimHandler{deps: warrantyWriteDeps{txManager, warranties, enqueuer, publisher, clock}}
}

// Handle resolves the claim and enqueues WarrantyClaimDecided.
func (h *DecideWarrantyClaimHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DecideWarrantyClaimCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		committed  events.Event
		warrantyID string
	)
	err := h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		claim, err := h.deps.warranties.FindClaim(ctx, cmd.ClaimID)
		if err != nil {
			return err
		}

		decision := returns.ClaimStatus(cmd.Decision)
		if err := returns.DecideClaim(claim, decision, cmd.Resolution, h.deps.clock.Now()); err != nil {
			return err
		}
		if err := h.deps.warranties.SaveClaim(ctx, claim); err != nil {
			return err
		}

		eventType := events.TypeWarrantyClaimApproved
		if decision == returns.ClaimRejected {
			eventType = events.TypeWarrantyClaimRejected
		}
		ev := events.WarrantyClaimDecided{
			WarrantyEvent: events.WarrantyEvent{WarrantyID: claim.WarrantyID},
			Type:          eventType,
			ClaimID:       claim.ID,
			Resolution:    cmd.Resolution,
		}
		if err := h.deps.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		warrantyID = claim.WarrantyID
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.deps.publisher, committed)
	return &WarrantyMutationResponse{WarrantyID: warrantyID, Status: cmd.Decision}, nil
}
