// Package commands holds the return and warranty write operations.
package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/order"
	"github.com/harborline/omscore/internal/domain/returns"
	"github.com/harborline/omscore/internal/domain/shared"
)

// ReturnItemInput is one requested line of a return.
type ReturnItemInput struct {
	OrderItemID     string `validate:"required"`
	ItemID          string `validate:"required"`
	LocationID      string `validate:"required"`
	Quantity        int    `validate:"required,gt=0"`
	RestockEligible bool
}

// InitiateReturnCommand opens a return against a delivered order.
type InitiateReturnCommand struct {
	OrderID string            `validate:"required"`
	Reason  string            `validate:"required"`
	Items   []ReturnItemInput `validate:"required,min=1,dive"`
}

// CommandName identifies the command for metrics and logs.
func (InitiateReturnCommand) CommandName() string { return "initiate_return" }

// InitiateReturnResponse returns the new return's identity.
type InitiateReturnResponse struct {
	ReturnID string
	OrderID  string
	Status   string
}

// returnWriteDeps bundles the shared collaborators of the return handlers.
type returnWriteDeps struct {
	txManager common.TransactionManager
	rets      returns.Repository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// InitiateReturnHandler handles return requests.
type InitiateReturnHandler struct {
	deps   returnWriteDeps
	orders order.Repository
}

// NewInitiateReturnHandler creates the handler.
func NewInitiateReturnHandler(
	txManager common.TransactionManager,
	rets returns.Repository,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *InitiateReturnHandler {
	return &InitiateReturnHandler{
		deps:   returnWriteDeps{txManager, rets, enqueuer, publisher, clock},
		orders: orders,
	}
}

// Handle opens the return. Only delivered orders accept returns.
func (h *InitiateReturnHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*InitiateReturnCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *InitiateReturnResponse
		committed events.Event
	)

	err := h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := h.orders.FindByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if o.Status() != order.StatusDelivered {
			return shared.NewBusinessRuleError("order %s is %s, returns require a delivered order", o.ID(), o.Status())
		}

		returnID := uuid.New().String()
		items := make([]returns.Item, len(cmd.Items))
		for i, line := range cmd.Items {
			items[i] = returns.Item{
				ID:              uuid.New().String(),
				ReturnID:        returnID,
				OrderItemID:     line.OrderItemID,
				ItemID:          line.ItemID,
				LocationID:      line.LocationID,
				Quantity:        line.Quantity,
				RestockEligible: line.RestockEligible,
			}
		}

		r, err := returns.New(returnID, cmd.OrderID, cmd.Reason, items, h.deps.clock.Now())
		if err != nil {
			return err
		}
		if err := h.deps.rets.Add(ctx, r); err != nil {
			return err
		}

		ev := events.ReturnCreated{
			ReturnEvent: events.ReturnEvent{ReturnID: r.ID()},
			OrderID:     cmd.OrderID,
			Reason:      cmd.Reason,
		}
		if err := h.deps.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = ev
		response = &InitiateReturnResponse{ReturnID: r.ID(), OrderID: cmd.OrderID, Status: string(r.Status())}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.deps.publisher, committed)
	return response, nil
}

// TransitionReturnCommand drives the simple lifecycle moves: approve, reject,
// cancel and complete. Receive and refund have their own commands because
// they carry extra payload.
type TransitionReturnCommand struct {
	ReturnID string `validate:"required"`
	Status   string `validate:"required,oneof=approved rejected cancelled completed"`
}

// CommandName identifies the command for metrics and logs.
func (TransitionReturnCommand) CommandName() string { return "transition_return" }

// ReturnMutationResponse is the shared response of the return mutations.
type ReturnMutationResponse struct {
	ReturnID string
	Status   string
}

// TransitionReturnHandler handles the payload-free lifecycle moves.
type TransitionReturnHandler struct {
	deps returnWriteDeps
}

// NewTransitionReturnHandler creates the handler.
func NewTransitionReturnHandler(
	txManager common.TransactionManager,
	rets returns.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *TransitionReturnHandler {
	return &TransitionReturnHandler{deps: returnWriteDeps{txManager, rets, enqueuer, publisher, clock}}
}

// Handle applies the move and enqueues the matching transition event.
func (h *TransitionReturnHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TransitionReturnCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	to := returns.Status(cmd.Status)
	return h.deps.mutate(ctx, cmd.ReturnID, func(r *returns.Return) (events.Event, error) {
		from := r.Status()
		if err := r.TransitionTo(to, h.deps.clock.Now()); err != nil {
			return nil, err
		}
		return events.NewReturnTransitioned(returnEventType(to), r.ID(), string(from), string(to)), nil
	})
}

func returnEventType(to returns.Status) string {
	switch to {
	case returns.StatusApproved:
		return events.TypeReturnApproved
	case returns.StatusRejected:
		return events.TypeReturnRejected
	case returns.StatusCancelled:
		return events.TypeReturnCancelled
	case returns.StatusReceived:
		return events.TypeReturnReceived
	case returns.StatusCompleted:
		return events.TypeReturnCompleted
	default:
		return events.TypeReturnReopened
	}
}

// ReceiveReturnCommand records the physical receipt with per-item conditions,
// keyed by return item id.
type ReceiveReturnCommand struct {
	ReturnID   string            `validate:"required"`
	Conditions map[string]string `validate:"required,min=1"`
}

// CommandName identifies the command for metrics and logs.
func (ReceiveReturnCommand) CommandName() string { return "receive_return" }

// ReceiveReturnHandler handles receipt of returned goods.
type ReceiveReturnHandler struct {
	deps returnWriteDeps
}

// NewReceiveReturnHandler creates the handler.
func NewReceiveReturnHandler(
	txManager common.TransactionManager,
	rets returns.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *ReceiveReturnHandler {
	return &ReceiveReturnHandler{deps: returnWriteDeps{txManager, rets, enqueuer, publisher, clock}}
}

// Handle validates the conditions, applies them and moves to received.
func (h *ReceiveReturnHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReceiveReturnCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	conditions := make(map[string]returns.ItemCondition, len(cmd.Conditions))
	for itemID, raw := range cmd.Conditions {
		cond := returns.ItemCondition(raw)
		switch cond {
		case returns.ConditionNew, returns.ConditionOpened, returns.ConditionDamaged, returns.ConditionDefective:
			conditions[itemID] = cond
		default:
			return nil, shared.NewValidationError("conditions", "unknown item condition: "+raw)
		}
	}

	return h.deps.mutate(ctx, cmd.ReturnID, func(r *returns.Return) (events.Event, error) {
		from := r.Status()
		if err := r.Receive(conditions, h.deps.clock.Now()); err != nil {
			return nil, err
		}
		return events.NewReturnTransitioned(events.TypeReturnReceived, r.ID(), string(from), string(r.Status())), nil
	})
}

// RefundReturnCommand records the refund against a received return.
type RefundReturnCommand struct {
	ReturnID string          `validate:"required"`
	Amount   decimal.Decimal `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (RefundReturnCommand) CommandName() string { return "refund_return" }

// RefundReturnHandler handles refunds.
type RefundReturnHandler struct {
	deps returnWriteDeps
}

// NewRefundReturnHandler creates the handler.
func NewRefundReturnHandler(
	txManager common.TransactionManager,
	rets returns.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *RefundReturnHandler {
	return &RefundReturnHandler{deps: returnWriteDeps{txManager, rets, enqueuer, publisher, clock}}
}

// Handle records the amount and enqueues ReturnRefunded.
func (h *RefundReturnHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RefundReturnCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.ReturnID, func(r *returns.Return) (events.Event, error) {
		if err := r.Refund(cmd.Amount, h.deps.clock.Now()); err != nil {
			return nil, err
		}
		return events.ReturnRefunded{
			ReturnEvent: events.ReturnEvent{ReturnID: r.ID()},
			OrderID:     r.OrderID(),
			Amount:      cmd.Amount,
		}, nil
	})
}

// mutate loads the return, applies fn, saves and enqueues the returned event.
func (d returnWriteDeps) mutate(ctx context.Context, returnID string, fn func(r *returns.Return) (events.Event, error)) (common.Response, error) {
	var (
		response  *ReturnMutationResponse
		committed events.Event
	)

	err := d.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		r, err := d.rets.FindByID(ctx, returnID)
		if err != nil {
			return err
		}
		ev, err := fn(r)
		if err != nil {
			return err
		}
		if err := d.rets.Save(ctx, r); err != nil {
			return err
		}
		if err := d.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		response = &ReturnMutationResponse{ReturnID: r.ID(), Status: string(r.Status())}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, d.publisher, committed)
	return response, nil
}
