package returns

import "context"

// Repository persists returns and their items.
type Repository interface {
	Add(ctx context.Context, r *Return) error
	FindByID(ctx context.Context, id string) (*Return, error)
	Save(ctx context.Context, r *Return) error
}

// WarrantyRepository persists warranties and claims.
type WarrantyRepository interface {
	Add(ctx context.Context, w *Warranty) error
	FindByID(ctx context.Context, id string) (*Warranty, error)
	Save(ctx context.Context, w *Warranty) error

	AddClaim(ctx context.Context, claim *Claim) error
	FindClaim(ctx context.Context, claimID string) (*Claim, error)
	SaveClaim(ctx context.Context, claim *Claim) error
}
