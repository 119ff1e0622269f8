package persistence

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/domain/workorder"
)

// GormWorkOrderRepository implements workorder.Repository. SaveVersioned is a
// conditional UPDATE on (id, version); zero rows affected means a concurrent
// writer got there first.
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates the work-order repository.
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// Add inserts a new work order at its initial version.
func (r *GormWorkOrderRepository) Add(ctx context.Context, w *workorder.WorkOrder) error {
	model, err := workOrderToModel(w)
	if err != nil {
		return err
	}
	return dbErr(dbFrom(ctx, r.db).Create(model).Error, "work_order.add")
}

// FindByID loads a work order.
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id string) (*workorder.WorkOrder, error) {
	var model WorkOrderModel
	err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "work_order.find", "work order", id)
	}
	return workOrderFromModel(&model)
}

// SaveVersioned writes the aggregate only when the stored version still equals
// expectedVersion, bumping it by one in the same statement.
func (r *GormWorkOrderRepository) SaveVersioned(ctx context.Context, w *workorder.WorkOrder, expectedVersion int) error {
	partsJSON, err := marshalParts(w.Parts())
	if err != nil {
		return err
	}

	res := dbFrom(ctx, r.db).Model(&WorkOrderModel{}).
		Where("id = ? AND version = ?", w.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"title":           w.Title(),
			"description":     w.Description(),
			"priority":        string(w.Priority()),
			"status":          string(w.Status()),
			"assignee":        w.Assignee(),
			"due_date":        w.DueDate(),
			"estimated_hours": w.EstimatedHours(),
			"actual_hours":    w.ActualHours(),
			"parts_json":      partsJSON,
			"version":         expectedVersion + 1,
			"started_at":      w.StartedAt(),
			"yielded_at":      w.YieldedAt(),
			"completed_at":    w.CompletedAt(),
			"updated_at":      w.UpdatedAt(),
		})
	if res.Error != nil {
		return dbErr(res.Error, "work_order.save")
	}
	if res.RowsAffected == 0 {
		return shared.NewConcurrentModificationError("work order", w.ID(), expectedVersion)
	}
	w.BumpVersion()
	return nil
}

// AddNote appends a work-order note.
func (r *GormWorkOrderRepository) AddNote(ctx context.Context, note *workorder.Note) error {
	model := WorkOrderNoteModel{
		ID:          note.ID,
		WorkOrderID: note.WorkOrderID,
		Note:        note.Note,
		CreatedAt:   note.CreatedAt,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "work_order.add_note")
}

// Notes returns the note log oldest first.
func (r *GormWorkOrderRepository) Notes(ctx context.Context, workOrderID string) ([]*workorder.Note, error) {
	var models []WorkOrderNoteModel
	err := dbFrom(ctx, r.db).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "work_order.notes")
	}
	notes := make([]*workorder.Note, len(models))
	for i, m := range models {
		notes[i] = &workorder.Note{
			ID:          m.ID,
			WorkOrderID: m.WorkOrderID,
			Note:        m.Note,
			CreatedAt:   m.CreatedAt,
		}
	}
	return notes, nil
}

func workOrderToModel(w *workorder.WorkOrder) (*WorkOrderModel, error) {
	partsJSON, err := marshalParts(w.Parts())
	if err != nil {
		return nil, err
	}
	return &WorkOrderModel{
		ID:             w.ID(),
		BOMID:          w.BOMID(),
		Title:          w.Title(),
		Description:    w.Description(),
		Priority:       string(w.Priority()),
		Status:         string(w.Status()),
		Assignee:       w.Assignee(),
		DueDate:        w.DueDate(),
		EstimatedHours: w.EstimatedHours(),
		ActualHours:    w.ActualHours(),
		PartsJSON:      partsJSON,
		Version:        w.Version(),
		StartedAt:      w.StartedAt(),
		YieldedAt:      w.YieldedAt(),
		CompletedAt:    w.CompletedAt(),
		CreatedAt:      w.CreatedAt(),
		UpdatedAt:      w.UpdatedAt(),
	}, nil
}

func workOrderFromModel(m *WorkOrderModel) (*workorder.WorkOrder, error) {
	var parts []workorder.Part
	if m.PartsJSON != "" {
		if err := json.Unmarshal([]byte(m.PartsJSON), &parts); err != nil {
			return nil, shared.NewDatabaseError("work_order.decode_parts", err)
		}
	}
	return workorder.Restore(
		m.ID, m.BOMID, m.Title, m.Description,
		workorder.Priority(m.Priority), workorder.Status(m.Status),
		m.Assignee, m.DueDate, m.EstimatedHours, m.ActualHours, parts,
		m.Version, m.StartedAt, m.YieldedAt, m.CompletedAt,
		m.CreatedAt, m.UpdatedAt), nil
}

func marshalParts(parts []workorder.Part) (string, error) {
	if len(parts) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(parts)
	if err != nil {
		return "", shared.NewDatabaseError("work_order.encode_parts", err)
	}
	return string(raw), nil
}

// GormCostingRepository implements workorder.CostingRepository over the
// bom_items, manufacturing_costs and inventory_receipts tables.
type GormCostingRepository struct {
	db *gorm.DB
}

// NewGormCostingRepository creates the costing read repository.
func NewGormCostingRepository(db *gorm.DB) *GormCostingRepository {
	return &GormCostingRepository{db: db}
}

// BOMItems returns the component lines of a bill of materials.
func (r *GormCostingRepository) BOMItems(ctx context.Context, bomID string) ([]*workorder.BOMItem, error) {
	var models []BOMItemModel
	err := dbFrom(ctx, r.db).
		Where("bom_id = ?", bomID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "costing.bom_items")
	}
	items := make([]*workorder.BOMItem, len(models))
	for i, m := range models {
		items[i] = &workorder.BOMItem{
			BOMID:        m.BOMID,
			ItemID:       m.InventoryItemID,
			Quantity:     m.Quantity,
			StandardCost: m.StandardCost,
		}
	}
	return items, nil
}

// CostRecords returns booked manufacturing costs for a work order in the range.
func (r *GormCostingRepository) CostRecords(ctx context.Context, workOrderID string, since, until time.Time) ([]*workorder.CostRecord, error) {
	var models []CostRecordModel
	err := dbFrom(ctx, r.db).
		Where("work_order_id = ? AND incurred_at >= ? AND incurred_at < ?", workOrderID, since, until).
		Order("incurred_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "costing.cost_records")
	}
	records := make([]*workorder.CostRecord, len(models))
	for i, m := range models {
		records[i] = &workorder.CostRecord{
			ID:          m.ID,
			WorkOrderID: m.WorkOrderID,
			Category:    m.Category,
			Amount:      m.Amount,
			IncurredAt:  m.IncurredAt,
		}
	}
	return records, nil
}

// UnitCostHistory returns priced receipts for weighted-average costing.
func (r *GormCostingRepository) UnitCostHistory(ctx context.Context, itemID string, since, until time.Time) ([]workorder.PricedReceipt, error) {
	var models []PricedReceiptModel
	err := dbFrom(ctx, r.db).
		Where("inventory_item_id = ? AND received_at >= ? AND received_at < ?", itemID, since, until).
		Order("received_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "costing.unit_cost_history")
	}
	receipts := make([]workorder.PricedReceipt, len(models))
	for i, m := range models {
		receipts[i] = workorder.PricedReceipt{Quantity: m.Quantity, UnitCost: m.UnitCost}
	}
	return receipts, nil
}
