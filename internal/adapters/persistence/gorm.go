// Package persistence implements the domain repository ports on GORM. All
// repositories resolve their handle through the transaction in context when
// one is present, so a command's writes and its outbox rows commit together.
package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/domain/shared"
)

type txContextKey struct{}

// GormTransactionManager runs units of work in a single database transaction.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a transaction manager over the connection.
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithTransaction opens a transaction, stores it in the context handed to fn,
// and commits when fn returns nil. fn's error rolls back and passes through
// unchanged so callers keep the domain error type.
func (m *GormTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFrom returns the ambient transaction when present, else the base handle.
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// notFoundOr maps gorm's record-not-found to the domain NotFoundError and
// wraps everything else as a DatabaseError.
func notFoundOr(err error, op, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return shared.NewDatabaseError(op, err)
}

func dbErr(err error, op string) error {
	if err == nil {
		return nil
	}
	return shared.NewDatabaseError(op, err)
}
