package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/shared"
)

// GormBalanceRepository implements inventory.BalanceRepository. On postgres
// locked reads use SELECT ... FOR UPDATE; on sqlite the single write
// connection serializes writers, so the lock clause is skipped.
type GormBalanceRepository struct {
	db       *gorm.DB
	rowLocks bool
}

// NewGormBalanceRepository creates the balance repository.
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db, rowLocks: db.Dialector.Name() == "postgres"}
}

func (r *GormBalanceRepository) find(ctx context.Context, itemID, locationID string, forUpdate bool) (*inventory.Balance, error) {
	db := dbFrom(ctx, r.db)
	if forUpdate && r.rowLocks {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model BalanceModel
	err := db.Where("inventory_item_id = ? AND location_id = ?", itemID, locationID).First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "balance.find", "inventory balance", fmt.Sprintf("%s@%s", itemID, locationID))
	}
	return balanceFromModel(&model), nil
}

// FindForUpdate loads the balance under a row lock.
func (r *GormBalanceRepository) FindForUpdate(ctx context.Context, itemID, locationID string) (*inventory.Balance, error) {
	return r.find(ctx, itemID, locationID, true)
}

// FindOrCreateForUpdate loads the balance under a row lock, inserting a zero
// row first when the pair has never been stocked.
func (r *GormBalanceRepository) FindOrCreateForUpdate(ctx context.Context, itemID, locationID string, now time.Time) (*inventory.Balance, error) {
	balance, err := r.find(ctx, itemID, locationID, true)
	if err == nil {
		return balance, nil
	}
	var notFound *shared.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	model := BalanceModel{
		InventoryItemID: itemID,
		LocationID:      locationID,
		UpdatedAt:       now,
	}
	// A concurrent creator may win the insert race; fall back to the locked read.
	create := dbFrom(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	if create.Error != nil {
		return nil, dbErr(create.Error, "balance.create")
	}
	return r.find(ctx, itemID, locationID, true)
}

// Find loads without locking.
func (r *GormBalanceRepository) Find(ctx context.Context, itemID, locationID string) (*inventory.Balance, error) {
	return r.find(ctx, itemID, locationID, false)
}

// FindByItem returns every location balance for an item.
func (r *GormBalanceRepository) FindByItem(ctx context.Context, itemID string) ([]*inventory.Balance, error) {
	var models []BalanceModel
	err := dbFrom(ctx, r.db).
		Where("inventory_item_id = ?", itemID).
		Order("location_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "balance.find_by_item")
	}
	balances := make([]*inventory.Balance, len(models))
	for i := range models {
		balances[i] = balanceFromModel(&models[i])
	}
	return balances, nil
}

// FindBelowAvailable lists balances whose available quantity is under the
// threshold.
func (r *GormBalanceRepository) FindBelowAvailable(ctx context.Context, threshold int) ([]*inventory.Balance, error) {
	var models []BalanceModel
	err := dbFrom(ctx, r.db).
		Where("quantity_on_hand - quantity_allocated < ?", threshold).
		Order("inventory_item_id ASC, location_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "balance.find_below_available")
	}
	balances := make([]*inventory.Balance, len(models))
	for i := range models {
		balances[i] = balanceFromModel(&models[i])
	}
	return balances, nil
}

// Save upserts the balance row, rewriting the derived available column.
func (r *GormBalanceRepository) Save(ctx context.Context, balance *inventory.Balance) error {
	model := BalanceModel{
		InventoryItemID:   balance.ItemID(),
		LocationID:        balance.LocationID(),
		QuantityOnHand:    balance.OnHand(),
		QuantityAllocated: balance.Allocated(),
		QuantityAvailable: balance.Available(),
		UpdatedAt:         balance.UpdatedAt(),
	}
	err := dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "inventory_item_id"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quantity_on_hand", "quantity_allocated", "quantity_available", "updated_at",
		}),
	}).Create(&model).Error
	return dbErr(err, "balance.save")
}

func balanceFromModel(m *BalanceModel) *inventory.Balance {
	return inventory.RestoreBalance(m.InventoryItemID, m.LocationID, m.QuantityOnHand, m.QuantityAllocated, m.UpdatedAt)
}

// GormReservationRepository implements inventory.ReservationRepository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates the reservation repository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Add inserts a new reservation row.
func (r *GormReservationRepository) Add(ctx context.Context, reservation *inventory.Reservation) error {
	model := reservationToModel(reservation)
	return dbErr(dbFrom(ctx, r.db).Create(model).Error, "reservation.add")
}

// FindByID loads a reservation.
func (r *GormReservationRepository) FindByID(ctx context.Context, id string) (*inventory.Reservation, error) {
	var model ReservationModel
	err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "reservation.find", "reservation", id)
	}
	return reservationFromModel(&model), nil
}

// FindActive locates the oldest active reservation for the pair, optionally
// narrowed by reference id.
func (r *GormReservationRepository) FindActive(ctx context.Context, itemID, locationID, referenceID string) (*inventory.Reservation, error) {
	db := dbFrom(ctx, r.db).
		Where("inventory_item_id = ? AND location_id = ? AND state = ?", itemID, locationID, string(inventory.ReservationActive))
	if referenceID != "" {
		db = db.Where("reference_id = ?", referenceID)
	}

	var model ReservationModel
	err := db.Order("created_at ASC").First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "reservation.find_active", "active reservation", itemID+"@"+locationID)
	}
	return reservationFromModel(&model), nil
}

// SumActive totals active reserved quantity for the pair.
func (r *GormReservationRepository) SumActive(ctx context.Context, itemID, locationID string) (int, error) {
	var total int64
	err := dbFrom(ctx, r.db).Model(&ReservationModel{}).
		Where("inventory_item_id = ? AND location_id = ? AND state = ?", itemID, locationID, string(inventory.ReservationActive)).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, dbErr(err, "reservation.sum_active")
	}
	return int(total), nil
}

// Save rewrites the reservation state.
func (r *GormReservationRepository) Save(ctx context.Context, reservation *inventory.Reservation) error {
	model := reservationToModel(reservation)
	err := dbFrom(ctx, r.db).Model(&ReservationModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"quantity": model.Quantity,
			"state":    model.State,
		}).Error
	return dbErr(err, "reservation.save")
}

func reservationToModel(res *inventory.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:              res.ID(),
		InventoryItemID: res.ItemID(),
		LocationID:      res.LocationID(),
		Quantity:        res.Quantity(),
		ReferenceID:     res.ReferenceID(),
		ReferenceType:   res.ReferenceType(),
		State:           string(res.State()),
		ExpiresAt:       res.ExpiresAt(),
		CreatedAt:       res.CreatedAt(),
	}
}

func reservationFromModel(m *ReservationModel) *inventory.Reservation {
	return inventory.RestoreReservation(
		m.ID, m.InventoryItemID, m.LocationID, m.Quantity,
		m.ReferenceID, m.ReferenceType,
		inventory.ReservationState(m.State), m.ExpiresAt, m.CreatedAt)
}

// GormTransactionLogRepository implements inventory.TransactionLogRepository.
type GormTransactionLogRepository struct {
	db *gorm.DB
}

// NewGormTransactionLogRepository creates the audit log repository.
func NewGormTransactionLogRepository(db *gorm.DB) *GormTransactionLogRepository {
	return &GormTransactionLogRepository{db: db}
}

// Add appends an audit row.
func (r *GormTransactionLogRepository) Add(ctx context.Context, txn *inventory.Transaction) error {
	model := InventoryTransactionModel{
		ID:              txn.ID,
		Type:            string(txn.Type),
		InventoryItemID: txn.ItemID,
		LocationID:      txn.LocationID,
		Delta:           txn.Delta,
		BeforeQty:       txn.BeforeQty,
		AfterQty:        txn.AfterQty,
		Reason:          txn.Reason,
		OccurredAt:      txn.OccurredAt,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "inventory_txn.add")
}

// AddPricedReceipt records a priced inbound movement for costing.
func (r *GormTransactionLogRepository) AddPricedReceipt(ctx context.Context, receipt *inventory.PricedReceipt) error {
	model := PricedReceiptModel{
		ID:              receipt.ID,
		InventoryItemID: receipt.ItemID,
		LocationID:      receipt.LocationID,
		Quantity:        receipt.Quantity,
		UnitCost:        receipt.UnitCost,
		ReceivedAt:      receipt.ReceivedAt,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "inventory_receipt.add")
}

// FindByItemSince returns audit rows for an item in [since, until).
func (r *GormTransactionLogRepository) FindByItemSince(ctx context.Context, itemID string, since, until time.Time) ([]*inventory.Transaction, error) {
	var models []InventoryTransactionModel
	err := dbFrom(ctx, r.db).
		Where("inventory_item_id = ? AND occurred_at >= ? AND occurred_at < ?", itemID, since, until).
		Order("occurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "inventory_txn.find_by_item")
	}
	txns := make([]*inventory.Transaction, len(models))
	for i, m := range models {
		txns[i] = &inventory.Transaction{
			ID:         m.ID,
			Type:       inventory.TransactionType(m.Type),
			ItemID:     m.InventoryItemID,
			LocationID: m.LocationID,
			Delta:      m.Delta,
			BeforeQty:  m.BeforeQty,
			AfterQty:   m.AfterQty,
			Reason:     m.Reason,
			OccurredAt: m.OccurredAt,
		}
	}
	return txns, nil
}
