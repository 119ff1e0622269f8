package order

import "context"

// Repository is the order aggregate's persistence port. Reads by other
// components go through here; nothing else touches order rows.
type Repository interface {
	Add(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	Save(ctx context.Context, o *Order) error

	AddNote(ctx context.Context, note *Note) error
	AddHistory(ctx context.Context, entry *HistoryEntry) error
	History(ctx context.Context, orderID string) ([]*HistoryEntry, error)

	AddPayment(ctx context.Context, payment *Payment) error
	Payments(ctx context.Context, orderID string) ([]*Payment, error)
}
