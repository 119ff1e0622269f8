package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/domain/returns"
)

// GormReturnRepository implements returns.Repository.
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates the return repository.
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// Add inserts the return and its items.
func (r *GormReturnRepository) Add(ctx context.Context, ret *returns.Return) error {
	db := dbFrom(ctx, r.db)
	if err := db.Create(returnToModel(ret)).Error; err != nil {
		return dbErr(err, "return.add")
	}
	for _, item := range ret.Items() {
		if err := db.Create(returnItemToModel(ret.ID(), item)).Error; err != nil {
			return dbErr(err, "return.add_item")
		}
	}
	return nil
}

// FindByID loads a return with its items.
func (r *GormReturnRepository) FindByID(ctx context.Context, id string) (*returns.Return, error) {
	db := dbFrom(ctx, r.db)

	var model ReturnModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "return.find", "return", id)
	}

	var itemModels []ReturnItemModel
	if err := db.Where("return_id = ?", id).Order("id ASC").Find(&itemModels).Error; err != nil {
		return nil, dbErr(err, "return.find_items")
	}
	items := make([]returns.Item, len(itemModels))
	for i, m := range itemModels {
		items[i] = returns.Item{
			ID:              m.ID,
			ReturnID:        m.ReturnID,
			OrderItemID:     m.OrderItemID,
			ItemID:          m.InventoryItemID,
			LocationID:      m.LocationID,
			Quantity:        m.Quantity,
			Condition:       returns.ItemCondition(m.Condition),
			RestockEligible: m.RestockEligible,
			Restocked:       m.Restocked,
		}
	}

	return returns.Restore(
		model.ID, model.OrderID, model.Reason, returns.Status(model.Status),
		items, model.RefundAmount, model.CreatedAt, model.UpdatedAt), nil
}

// Save rewrites the return row and the mutable item columns.
func (r *GormReturnRepository) Save(ctx context.Context, ret *returns.Return) error {
	db := dbFrom(ctx, r.db)

	model := returnToModel(ret)
	err := db.Model(&ReturnModel{}).Where("id = ?", ret.ID()).Updates(map[string]interface{}{
		"status":        model.Status,
		"refund_amount": model.RefundAmount,
		"updated_at":    model.UpdatedAt,
	}).Error
	if err != nil {
		return dbErr(err, "return.save")
	}

	for _, item := range ret.Items() {
		err := db.Model(&ReturnItemModel{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"condition":        string(item.Condition),
			"restock_eligible": item.RestockEligible,
			"restocked":        item.Restocked,
		}).Error
		if err != nil {
			return dbErr(err, "return.save_items")
		}
	}
	return nil
}

func returnToModel(ret *returns.Return) *ReturnModel {
	return &ReturnModel{
		ID:           ret.ID(),
		OrderID:      ret.OrderID(),
		Reason:       ret.Reason(),
		Status:       string(ret.Status()),
		RefundAmount: ret.RefundAmount(),
		CreatedAt:    ret.CreatedAt(),
		UpdatedAt:    ret.UpdatedAt(),
	}
}

func returnItemToModel(returnID string, item returns.Item) *ReturnItemModel {
	return &ReturnItemModel{
		ID:              item.ID,
		ReturnID:        returnID,
		OrderItemID:     item.OrderItemID,
		InventoryItemID: item.ItemID,
		LocationID:      item.LocationID,
		Quantity:        item.Quantity,
		Condition:       string(item.Condition),
		RestockEligible: item.RestockEligible,
		Restocked:       item.Restocked,
	}
}

// GormWarrantyRepository implements returns.WarrantyRepository.
type GormWarrantyRepository struct {
	db *gorm.DB
}

// NewGormWarrantyRepository creates the warranty repository.
func NewGormWarrantyRepository(db *gorm.DB) *GormWarrantyRepository {
	return &GormWarrantyRepository{db: db}
}

// Add inserts a new warranty.
func (r *GormWarrantyRepository) Add(ctx context.Context, w *returns.Warranty) error {
	model := WarrantyModel{
		ID:         w.ID(),
		ProductID:  w.ProductID(),
		CustomerID: w.CustomerID(),
		StartDate:  w.StartDate(),
		EndDate:    w.EndDate(),
		Status:     string(w.StoredStatus()),
		Terms:      w.Terms(),
		CreatedAt:  w.CreatedAt(),
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "warranty.add")
}

// FindByID loads a warranty.
func (r *GormWarrantyRepository) FindByID(ctx context.Context, id string) (*returns.Warranty, error) {
	var model WarrantyModel
	err := dbFrom(ctx, r.db).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "warranty.find", "warranty", id)
	}
	return returns.RestoreWarranty(
		model.ID, model.ProductID, model.CustomerID,
		model.StartDate, model.EndDate,
		returns.WarrantyStatus(model.Status), model.Terms, model.CreatedAt), nil
}

// Save rewrites the stored warranty status.
func (r *GormWarrantyRepository) Save(ctx context.Context, w *returns.Warranty) error {
	err := dbFrom(ctx, r.db).Model(&WarrantyModel{}).
		Where("id = ?", w.ID()).
		Update("status", string(w.StoredStatus())).Error
	return dbErr(err, "warranty.save")
}

// AddClaim inserts a new claim.
func (r *GormWarrantyRepository) AddClaim(ctx context.Context, claim *returns.Claim) error {
	model := claimToModel(claim)
	return dbErr(dbFrom(ctx, r.db).Create(model).Error, "warranty.add_claim")
}

// FindClaim loads a claim by id.
func (r *GormWarrantyRepository) FindClaim(ctx context.Context, claimID string) (*returns.Claim, error) {
	var model WarrantyClaimModel
	err := dbFrom(ctx, r.db).Where("id = ?", claimID).First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "warranty.find_claim", "warranty claim", claimID)
	}
	return &returns.Claim{
		ID:          model.ID,
		WarrantyID:  model.WarrantyID,
		Description: model.Description,
		Status:      returns.ClaimStatus(model.Status),
		Resolution:  model.Resolution,
		SubmittedAt: model.SubmittedAt,
		ResolvedAt:  model.ResolvedAt,
	}, nil
}

// SaveClaim rewrites the claim decision columns.
func (r *GormWarrantyRepository) SaveClaim(ctx context.Context, claim *returns.Claim) error {
	err := dbFrom(ctx, r.db).Model(&WarrantyClaimModel{}).
		Where("id = ?", claim.ID).
		Updates(map[string]interface{}{
			"status":      string(claim.Status),
			"resolution":  claim.Resolution,
			"resolved_at": claim.ResolvedAt,
		}).Error
	return dbErr(err, "warranty.save_claim")
}

func claimToModel(claim *returns.Claim) *WarrantyClaimModel {
	return &WarrantyClaimModel{
		ID:          claim.ID,
		WarrantyID:  claim.WarrantyID,
		Description: claim.Description,
		Status:      string(claim.Status),
		Resolution:  claim.Resolution,
		SubmittedAt: claim.SubmittedAt,
		ResolvedAt:  claim.ResolvedAt,
	}
}
