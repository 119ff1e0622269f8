package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/order"
	"github.com/harborline/omscore/internal/domain/shared"
)

// RecordPaymentCommand records a gateway outcome against an order. The core
// never talks to the gateway; callers report what happened.
type RecordPaymentCommand struct {
	OrderID   string          `validate:"required"`
	Outcome   string          `validate:"required"`
	Amount    decimal.Decimal `validate:"required"`
	Currency  string          `validate:"required,len=3"`
	Gateway   string
	Reference string
}

// CommandName identifies the command for metrics and logs.
func (RecordPaymentCommand) CommandName() string { return "record_payment" }

// RecordPaymentResponse returns the payment row's identity.
type RecordPaymentResponse struct {
	PaymentID string
	OrderID   string
	Outcome   string
}

// RecordPaymentHandler handles payment outcome records.
type RecordPaymentHandler struct {
	txManager common.TransactionManager
	orders    order.Repository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewRecordPaymentHandler creates the handler.
func NewRecordPaymentHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *RecordPaymentHandler {
	return &RecordPaymentHandler{
		txManager: txManager,
		orders:    orders,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle validates the outcome against the closed set, writes the row and
// enqueues the matching payment event.
func (h *RecordPaymentHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecordPaymentCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if !order.ValidPaymentOutcome(cmd.Outcome) {
		return nil, shared.NewValidationError("outcome", "unknown payment outcome: "+cmd.Outcome)
	}
	if cmd.Amount.IsNegative() {
		return nil, shared.NewValidationError("amount", "payment amount must not be negative")
	}

	var committed events.Event
	paymentID := uuid.New().String()

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		o, err := h.orders.FindByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}

		payment := &order.Payment{
			ID:         paymentID,
			OrderID:    o.ID(),
			Outcome:    order.PaymentOutcome(cmd.Outcome),
			Amount:     cmd.Amount,
			Currency:   cmd.Currency,
			Gateway:    cmd.Gateway,
			Reference:  cmd.Reference,
			RecordedAt: now,
		}
		if err := h.orders.AddPayment(ctx, payment); err != nil {
			return err
		}

		ev := events.PaymentRecorded{
			Type:      paymentEventType(payment.Outcome),
			PaymentID: paymentID,
			OrderID:   o.ID(),
			Amount:    cmd.Amount,
			Currency:  cmd.Currency,
			Gateway:   cmd.Gateway,
		}
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed)
	return &RecordPaymentResponse{
		PaymentID: paymentID,
		OrderID:   cmd.OrderID,
		Outcome:   cmd.Outcome,
	}, nil
}

func paymentEventType(outcome order.PaymentOutcome) string {
	switch outcome {
	case order.PaymentAuthorized:
		return events.TypePaymentAuthorized
	case order.PaymentCaptured:
		return events.TypePaymentCaptured
	case order.PaymentRefunded:
		return events.TypePaymentRefunded
	case order.PaymentVoided:
		return events.TypePaymentVoided
	default:
		return events.TypePaymentFailed
	}
}
