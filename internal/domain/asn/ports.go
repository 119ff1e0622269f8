package asn

import "context"

// Repository persists ASNs with optimistic locking, same contract as the
// work-order repository.
type Repository interface {
	Add(ctx context.Context, a *ASN) error
	FindByID(ctx context.Context, id string) (*ASN, error)
	SaveVersioned(ctx context.Context, a *ASN, expectedVersion int) error

	AddNote(ctx context.Context, note *Note) error
	Notes(ctx context.Context, asnID string) ([]*Note, error)
}
