package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/harborline/omscore/internal/domain/asn"
	"github.com/harborline/omscore/internal/domain/shared"
)

// GormASNRepository implements asn.Repository with the same conditional-write
// versioning as work orders.
type GormASNRepository struct {
	db *gorm.DB
}

// NewGormASNRepository creates the ASN repository.
func NewGormASNRepository(db *gorm.DB) *GormASNRepository {
	return &GormASNRepository{db: db}
}

// Add inserts a new ASN with its items and packages.
func (r *GormASNRepository) Add(ctx context.Context, a *asn.ASN) error {
	db := dbFrom(ctx, r.db)
	if err := db.Create(asnToModel(a)).Error; err != nil {
		return dbErr(err, "asn.add")
	}
	for _, item := range a.Items() {
		if err := db.Create(asnItemToModel(a.ID(), item)).Error; err != nil {
			return dbErr(err, "asn.add_item")
		}
	}
	for _, pkg := range a.Packages() {
		if err := db.Create(asnPackageToModel(a.ID(), pkg)).Error; err != nil {
			return dbErr(err, "asn.add_package")
		}
	}
	return nil
}

// FindByID loads an ASN with its children.
func (r *GormASNRepository) FindByID(ctx context.Context, id string) (*asn.ASN, error) {
	db := dbFrom(ctx, r.db)

	var model ASNModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "asn.find", "asn", id)
	}

	var itemModels []ASNItemModel
	if err := db.Where("asn_id = ?", id).Order("id ASC").Find(&itemModels).Error; err != nil {
		return nil, dbErr(err, "asn.find_items")
	}
	items := make([]asn.Item, len(itemModels))
	for i, m := range itemModels {
		items[i] = asn.Item{ID: m.ID, ASNID: m.ASNID, SKU: m.SKU, ItemID: m.InventoryItemID, Quantity: m.Quantity}
	}

	var pkgModels []ASNPackageModel
	if err := db.Where("asn_id = ?", id).Order("id ASC").Find(&pkgModels).Error; err != nil {
		return nil, dbErr(err, "asn.find_packages")
	}
	packages := make([]asn.Package, len(pkgModels))
	for i, m := range pkgModels {
		packages[i] = asn.Package{ID: m.ID, ASNID: m.ASNID, TrackingNumber: m.TrackingNumber, WeightKG: m.WeightKG, Items: m.Items}
	}

	return asn.Restore(
		model.ID, model.PurchaseOrderID, model.SupplierID, asn.Status(model.Status),
		model.ExpectedDelivery, model.ShippingAddress, model.Carrier, model.CarrierReference,
		items, packages, model.Version, model.CreatedAt, model.UpdatedAt), nil
}

// SaveVersioned conditionally rewrites the ASN row and reconciles children.
func (r *GormASNRepository) SaveVersioned(ctx context.Context, a *asn.ASN, expectedVersion int) error {
	db := dbFrom(ctx, r.db)

	res := db.Model(&ASNModel{}).
		Where("id = ? AND version = ?", a.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":            string(a.Status()),
			"expected_delivery": a.ExpectedDelivery(),
			"shipping_address":  a.ShippingAddress(),
			"carrier":           a.Carrier(),
			"carrier_reference": a.CarrierReference(),
			"version":           expectedVersion + 1,
			"updated_at":        a.UpdatedAt(),
		})
	if res.Error != nil {
		return dbErr(res.Error, "asn.save")
	}
	if res.RowsAffected == 0 {
		return shared.NewConcurrentModificationError("asn", a.ID(), expectedVersion)
	}

	if err := db.Where("asn_id = ?", a.ID()).Delete(&ASNItemModel{}).Error; err != nil {
		return dbErr(err, "asn.save_items")
	}
	for _, item := range a.Items() {
		if err := db.Create(asnItemToModel(a.ID(), item)).Error; err != nil {
			return dbErr(err, "asn.save_items")
		}
	}
	if err := db.Where("asn_id = ?", a.ID()).Delete(&ASNPackageModel{}).Error; err != nil {
		return dbErr(err, "asn.save_packages")
	}
	for _, pkg := range a.Packages() {
		if err := db.Create(asnPackageToModel(a.ID(), pkg)).Error; err != nil {
			return dbErr(err, "asn.save_packages")
		}
	}

	a.BumpVersion()
	return nil
}

// AddNote appends a lifecycle or general note.
func (r *GormASNRepository) AddNote(ctx context.Context, note *asn.Note) error {
	model := ASNNoteModel{
		ID:        note.ID,
		ASNID:     note.ASNID,
		NoteType:  string(note.Type),
		NoteText:  note.Text,
		CreatedBy: note.CreatedBy,
		CreatedAt: note.CreatedAt,
	}
	return dbErr(dbFrom(ctx, r.db).Create(&model).Error, "asn.add_note")
}

// Notes returns the note log oldest first.
func (r *GormASNRepository) Notes(ctx context.Context, asnID string) ([]*asn.Note, error) {
	var models []ASNNoteModel
	err := dbFrom(ctx, r.db).
		Where("asn_id = ?", asnID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbErr(err, "asn.notes")
	}
	notes := make([]*asn.Note, len(models))
	for i, m := range models {
		notes[i] = &asn.Note{
			ID:        m.ID,
			ASNID:     m.ASNID,
			Type:      asn.NoteType(m.NoteType),
			Text:      m.NoteText,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		}
	}
	return notes, nil
}

func asnToModel(a *asn.ASN) *ASNModel {
	return &ASNModel{
		ID:               a.ID(),
		PurchaseOrderID:  a.PurchaseOrderID(),
		SupplierID:       a.SupplierID(),
		Status:           string(a.Status()),
		ExpectedDelivery: a.ExpectedDelivery(),
		ShippingAddress:  a.ShippingAddress(),
		Carrier:          a.Carrier(),
		CarrierReference: a.CarrierReference(),
		Version:          a.Version(),
		CreatedAt:        a.CreatedAt(),
		UpdatedAt:        a.UpdatedAt(),
	}
}

func asnItemToModel(asnID string, item asn.Item) *ASNItemModel {
	return &ASNItemModel{
		ID:              item.ID,
		ASNID:           asnID,
		SKU:             item.SKU,
		InventoryItemID: item.ItemID,
		Quantity:        item.Quantity,
	}
}

func asnPackageToModel(asnID string, pkg asn.Package) *ASNPackageModel {
	return &ASNPackageModel{
		ID:             pkg.ID,
		ASNID:          asnID,
		TrackingNumber: pkg.TrackingNumber,
		WeightKG:       pkg.WeightKG,
		Items:          pkg.Items,
	}
}
