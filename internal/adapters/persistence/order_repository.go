package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/domain/order"
)

// GormOrderRepository implements order.Repository.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates the order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts the order and its initial lines.
func (r *GormOrderRepository) Add(ctx context.Context, o *order.Order) error {
	db := dbFrom(ctx, r.db)
	if err := db.Create(orderToModel(o)).Error; err != nil {
		return dbErr(err, "order.add")
	}
	for _, item := range o.Items() {
		if err := db.Create(itemToModel(o.ID(), item)).Error; err != nil {
			return dbErr(err, "order.add_item")
		}
	}
	return nil
}

// FindByID loads the order with its lines.
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	db := dbFrom(ctx, r.db)

	var model OrderModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "order.find", "order", id)
	}

	var itemModels []OrderItemModel
	if err := db.Where("order_id = ?", id).Order("id ASC").Find(&itemModels).Error; err != nil {
		return nil, dbErr(err, "order.find_items")
	}

	items := make([]order.Item, len(itemModels))
	for i, m := range itemModels {
		items[i] = order.Item{
			ID:        m.ID,
			OrderID:   m.OrderID,
			SKU:       m.SKU,
			ProductID: m.ProductID,
			Quantity:  m.Quantity,
			UnitPrice: m.UnitPrice,
			TaxRate:   m.TaxRate,
		}
	}

	return order.Restore(
		model.ID, model.CustomerID, order.Status(model.Status), model.Currency, items,
		model.TaxAmount, model.DiscountAmount,
		model.ShippingAddress, model.BillingAddress, model.PaymentMethod,
		model.CreatedAt, model.UpdatedAt), nil
}

// Save rewrites the order row and reconciles its lines. Line sets are small;
// delete-and-reinsert keeps the reconciliation obvious.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	db := dbFrom(ctx, r.db)

	model := orderToModel(o)
	res := db.Model(&OrderModel{}).Where("id = ?", o.ID()).Updates(map[string]interface{}{
		"status":           model.Status,
		"total_amount":     model.TotalAmount,
		"tax_amount":       model.TaxAmount,
		"discount_amount":  model.DiscountAmount,
		"shipping_address": model.ShippingAddress,
		"billing_address":  model.BillingAddress,
		"payment_method":   model.PaymentMethod,
		"updated_at":       model.UpdatedAt,
	})
	if res.Error != nil {
		return dbErr(res.Error, "order.save")
	}

	if err := db.Where("order_id = ?", o.ID()).Delete(&OrderItemModel{}).Error; err != nil {
		return dbErr(err, "order.save_items")
	}
	for _, item := range o.Items() {
		if err := db.Create(itemToModel(o.ID(), item)).Error; err != nil {
			return dbErr(err, "order.save_items")
		}
	}
	return nil
}

// AddNote appends an order note.
func (r *GormOrderRepository) AddNote(ctx context.Context, note *order.Note) error {
	model := OrderNoteModel{
		ID:        note.ID,
		OrderID:   note.OrderID,
		Note:      note.Note,
		CreatedBy: note.CreatedBy,
		CreatedAt: note.CreatedAt,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "order.add_note")
}

// AddHistory appends a status transition row.
func (r *GormOrderRepository) AddHistory(ctx context.Context, entry *order.HistoryEntry) error {
	model := OrderHistoryModel{
		OrderID:    entry.OrderID,
		FromStatus: string(entry.FromStatus),
		ToStatus:   string(entry.ToStatus),
		Note:       entry.Note,
		ChangedAt:  entry.ChangedAt,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "order.add_history")
}

// History returns the transition log oldest first.
func (r *GormOrderRepository) History(ctx context.Context, orderID string) ([]*order.HistoryEntry, error) {
	var models []OrderHistoryModel
	err := dbFrom(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "order.history")
	}
	entries := make([]*order.HistoryEntry, len(models))
	for i, m := range models {
		entries[i] = &order.HistoryEntry{
			OrderID:    m.OrderID,
			FromStatus: order.Status(m.FromStatus),
			ToStatus:   order.Status(m.ToStatus),
			Note:       m.Note,
			ChangedAt:  m.ChangedAt,
		}
	}
	return entries, nil
}

// AddPayment appends a gateway outcome row.
func (r *GormOrderRepository) AddPayment(ctx context.Context, payment *order.Payment) error {
	model := OrderPaymentModel{
		ID:         payment.ID,
		OrderID:    payment.OrderID,
		Outcome:    string(payment.Outcome),
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Gateway:    payment.Gateway,
		Reference:  payment.Reference,
		RecordedAt: payment.RecordedAt,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "order.add_payment")
}

// Payments returns the payment records oldest first.
func (r *GormOrderRepository) Payments(ctx context.Context, orderID string) ([]*order.Payment, error) {
	var models []OrderPaymentModel
	err := dbFrom(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("recorded_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "order.payments")
	}
	payments := make([]*order.Payment, len(models))
	for i, m := range models {
		payments[i] = &order.Payment{
			ID:         m.ID,
			OrderID:    m.OrderID,
			Outcome:    order.PaymentOutcome(m.Outcome),
			Amount:     m.Amount,
			Currency:   m.Currency,
			Gateway:    m.Gateway,
			Reference:  m.Reference,
			RecordedAt: m.RecordedAt,
		}
	}
	return payments, nil
}

func orderToModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:              o.ID(),
		CustomerID:      o.CustomerID(),
		Status:          string(o.Status()),
		Currency:        o.Currency(),
		TotalAmount:     o.TotalAmount(),
		TaxAmount:       o.TaxAmount(),
		DiscountAmount:  o.DiscountAmount(),
		ShippingAddress: o.ShippingAddress(),
		BillingAddress:  o.BillingAddress(),
		PaymentMethod:   o.PaymentMethod(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
}

func itemToModel(orderID string, item order.Item) *OrderItemModel {
	return &OrderItemModel{
		ID:        item.ID,
		OrderID:   orderID,
		SKU:       item.SKU,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		TaxRate:   item.TaxRate,
	}
}
