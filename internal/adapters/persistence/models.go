package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceModel represents the inventory_balances table.
// Primary key is composite: (inventory_item_id, location_id).
// quantity_available is stored denormalized but always rewritten from the
// on_hand - allocated invariant on save.
type BalanceModel struct {
	InventoryItemID   string    `gorm:"column:inventory_item_id;primaryKey;size:64;not null"`
	LocationID        string    `gorm:"column:location_id;primaryKey;size:64;not null"`
	QuantityOnHand    int       `gorm:"column:quantity_on_hand;not null;default:0"`
	QuantityAllocated int       `gorm:"column:quantity_allocated;not null;default:0"`
	QuantityAvailable int       `gorm:"column:quantity_available;not null;default:0"`
	UpdatedAt         time.Time `gorm:"column:updated_at;not null"`
}

func (BalanceModel) TableName() string {
	return "inventory_balances"
}

// ReservationModel represents the inventory_reservations table
type ReservationModel struct {
	ID              string    `gorm:"column:id;primaryKey;size:36"`
	InventoryItemID string    `gorm:"column:inventory_item_id;size:64;not null;index:idx_reservation_item_location"`
	LocationID      string    `gorm:"column:location_id;size:64;not null;index:idx_reservation_item_location"`
	Quantity        int       `gorm:"column:quantity;not null"`
	ReferenceID     string    `gorm:"column:reference_id;size:64;index"`
	ReferenceType   string    `gorm:"column:reference_type;size:32"`
	State           string    `gorm:"column:state;size:16;not null;index"`
	ExpiresAt       time.Time `gorm:"column:expires_at;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
}

func (ReservationModel) TableName() string {
	return "inventory_reservations"
}

// InventoryTransactionModel represents the inventory_transactions audit table
type InventoryTransactionModel struct {
	ID              string    `gorm:"column:id;primaryKey;size:36"`
	Type            string    `gorm:"column:type;size:24;not null"`
	InventoryItemID string    `gorm:"column:inventory_item_id;size:64;not null;index"`
	LocationID      string    `gorm:"column:location_id;size:64;not null"`
	Delta           int       `gorm:"column:delta;not null"`
	BeforeQty       int       `gorm:"column:before_qty;not null"`
	AfterQty        int       `gorm:"column:after_qty;not null"`
	Reason          string    `gorm:"column:reason;size:128"`
	OccurredAt      time.Time `gorm:"column:occurred_at;not null;index"`
}

func (InventoryTransactionModel) TableName() string {
	return "inventory_transactions"
}

// OrderModel represents the orders table
type OrderModel struct {
	ID              string          `gorm:"column:id;primaryKey;size:36"`
	CustomerID      string          `gorm:"column:customer_id;size:64;not null;index"`
	Status          string          `gorm:"column:status;size:16;not null;index"`
	Currency        string          `gorm:"column:currency;size:3;not null"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:decimal(14,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"column:tax_amount;type:decimal(14,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"column:discount_amount;type:decimal(14,2);not null"`
	ShippingAddress string          `gorm:"column:shipping_address;type:text"`
	BillingAddress  string          `gorm:"column:billing_address;type:text"`
	PaymentMethod   string          `gorm:"column:payment_method;size:64"`
	CreatedAt       time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;not null"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel represents the order_items table
type OrderItemModel struct {
	ID        string          `gorm:"column:id;primaryKey;size:36"`
	OrderID   string          `gorm:"column:order_id;size:36;not null;index"`
	Order     *OrderModel     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	SKU       string          `gorm:"column:sku;size:64;not null"`
	ProductID string          `gorm:"column:product_id;size:64"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(14,2);not null"`
	TaxRate   decimal.Decimal `gorm:"column:tax_rate;type:decimal(6,4);not null;default:0"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderNoteModel represents the order_notes table
type OrderNoteModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	OrderID   string    `gorm:"column:order_id;size:36;not null;index"`
	Note      string    `gorm:"column:note;type:text;not null"`
	CreatedBy string    `gorm:"column:created_by;size:64"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (OrderNoteModel) TableName() string {
	return "order_notes"
}

// OrderHistoryModel represents the order_history table
type OrderHistoryModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    string    `gorm:"column:order_id;size:36;not null;index"`
	FromStatus string    `gorm:"column:from_status;size:16;not null"`
	ToStatus   string    `gorm:"column:to_status;size:16;not null"`
	Note       string    `gorm:"column:note;type:text"`
	ChangedAt  time.Time `gorm:"column:changed_at;not null"`
}

func (OrderHistoryModel) TableName() string {
	return "order_history"
}

// OrderPaymentModel represents the order_payments table. Gateway outcomes
// only; the core never talks to a payment gateway.
type OrderPaymentModel struct {
	ID         string          `gorm:"column:id;primaryKey;size:36"`
	OrderID    string          `gorm:"column:order_id;size:36;not null;index"`
	Outcome    string          `gorm:"column:outcome;size:16;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null"`
	Currency   string          `gorm:"column:currency;size:3;not null"`
	Gateway    string          `gorm:"column:gateway;size:64"`
	Reference  string          `gorm:"column:reference;size:128"`
	RecordedAt time.Time       `gorm:"column:recorded_at;not null"`
}

func (OrderPaymentModel) TableName() string {
	return "order_payments"
}

// WorkOrderModel represents the work_orders table
type WorkOrderModel struct {
	ID             string     `gorm:"column:id;primaryKey;size:36"`
	BOMID          string     `gorm:"column:bom_id;size:64;index"`
	Title          string     `gorm:"column:title;size:255;not null"`
	Description    string     `gorm:"column:description;type:text"`
	Priority       string     `gorm:"column:priority;size:16;not null"`
	Status         string     `gorm:"column:status;size:16;not null;index"`
	Assignee       string     `gorm:"column:assignee;size:64"`
	DueDate        *time.Time `gorm:"column:due_date"`
	EstimatedHours float64    `gorm:"column:estimated_hours;not null;default:0"`
	ActualHours    float64    `gorm:"column:actual_hours;not null;default:0"`
	PartsJSON      string     `gorm:"column:parts_json;type:text"`
	Version        int        `gorm:"column:version;not null;default:1"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	YieldedAt      *time.Time `gorm:"column:yielded_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null"`
}

func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// WorkOrderNoteModel represents the work_order_notes table
type WorkOrderNoteModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:36"`
	WorkOrderID string    `gorm:"column:work_order_id;size:36;not null;index"`
	Note        string    `gorm:"column:note;type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (WorkOrderNoteModel) TableName() string {
	return "work_order_notes"
}

// BOMItemModel represents the bom_items table (costing input)
type BOMItemModel struct {
	ID              int             `gorm:"column:id;primaryKey;autoIncrement"`
	BOMID           string          `gorm:"column:bom_id;size:64;not null;index"`
	InventoryItemID string          `gorm:"column:inventory_item_id;size:64;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	StandardCost    decimal.Decimal `gorm:"column:standard_cost;type:decimal(14,4);not null"`
}

func (BOMItemModel) TableName() string {
	return "bom_items"
}

// CostRecordModel represents the manufacturing_costs table (costing input)
type CostRecordModel struct {
	ID          string          `gorm:"column:id;primaryKey;size:36"`
	WorkOrderID string          `gorm:"column:work_order_id;size:36;not null;index"`
	Category    string          `gorm:"column:category;size:32;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(14,4);not null"`
	IncurredAt  time.Time       `gorm:"column:incurred_at;not null;index"`
}

func (CostRecordModel) TableName() string {
	return "manufacturing_costs"
}

// PricedReceiptModel represents the inventory_receipts table: priced inbound
// movements consumed by weighted-average costing.
type PricedReceiptModel struct {
	ID              string          `gorm:"column:id;primaryKey;size:36"`
	InventoryItemID string          `gorm:"column:inventory_item_id;size:64;not null;index"`
	LocationID      string          `gorm:"column:location_id;size:64"`
	Quantity        int             `gorm:"column:quantity;not null"`
	UnitCost        decimal.Decimal `gorm:"column:unit_cost;type:decimal(14,4);not null"`
	ReceivedAt      time.Time       `gorm:"column:received_at;not null;index"`
}

func (PricedReceiptModel) TableName() string {
	return "inventory_receipts"
}

// ASNModel represents the asns table
type ASNModel struct {
	ID               string    `gorm:"column:id;primaryKey;size:36"`
	PurchaseOrderID  string    `gorm:"column:purchase_order_id;size:64;not null;index"`
	SupplierID       string    `gorm:"column:supplier_id;size:64;not null;index"`
	Status           string    `gorm:"column:status;size:16;not null;index"`
	ExpectedDelivery time.Time `gorm:"column:expected_delivery;not null"`
	ShippingAddress  string    `gorm:"column:shipping_address;type:text"`
	Carrier          string    `gorm:"column:carrier;size:64"`
	CarrierReference string    `gorm:"column:carrier_reference;size:128"`
	Version          int       `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null"`
}

func (ASNModel) TableName() string {
	return "asns"
}

// ASNItemModel represents the asn_items table
type ASNItemModel struct {
	ID              string    `gorm:"column:id;primaryKey;size:36"`
	ASNID           string    `gorm:"column:asn_id;size:36;not null;index"`
	ASN             *ASNModel `gorm:"foreignKey:ASNID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	SKU             string    `gorm:"column:sku;size:64;not null"`
	InventoryItemID string    `gorm:"column:inventory_item_id;size:64"`
	Quantity        int       `gorm:"column:quantity;not null"`
}

func (ASNItemModel) TableName() string {
	return "asn_items"
}

// ASNPackageModel represents the asn_packages table
type ASNPackageModel struct {
	ID             string  `gorm:"column:id;primaryKey;size:36"`
	ASNID          string  `gorm:"column:asn_id;size:36;not null;index"`
	TrackingNumber string  `gorm:"column:tracking_number;size:128"`
	WeightKG       float64 `gorm:"column:weight_kg;not null;default:0"`
	Items          int     `gorm:"column:items;not null;default:0"`
}

func (ASNPackageModel) TableName() string {
	return "asn_packages"
}

// ASNNoteModel represents the asn_notes table
type ASNNoteModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	ASNID     string    `gorm:"column:asn_id;size:36;not null;index"`
	NoteType  string    `gorm:"column:note_type;size:16;not null"`
	NoteText  string    `gorm:"column:note_text;type:text;not null"`
	CreatedBy string    `gorm:"column:created_by;size:64"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (ASNNoteModel) TableName() string {
	return "asn_notes"
}

// ReturnModel represents the returns table
type ReturnModel struct {
	ID           string          `gorm:"column:id;primaryKey;size:36"`
	OrderID      string          `gorm:"column:order_id;size:36;not null;index"`
	Reason       string          `gorm:"column:reason;type:text"`
	Status       string          `gorm:"column:status;size:16;not null;index"`
	RefundAmount decimal.Decimal `gorm:"column:refund_amount;type:decimal(14,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;not null"`
}

func (ReturnModel) TableName() string {
	return "returns"
}

// ReturnItemModel represents the return_items table
type ReturnItemModel struct {
	ID              string `gorm:"column:id;primaryKey;size:36"`
	ReturnID        string `gorm:"column:return_id;size:36;not null;index"`
	OrderItemID     string `gorm:"column:order_item_id;size:36"`
	InventoryItemID string `gorm:"column:inventory_item_id;size:64"`
	LocationID      string `gorm:"column:location_id;size:64"`
	Quantity        int    `gorm:"column:quantity;not null"`
	Condition       string `gorm:"column:condition;size:16"`
	RestockEligible bool   `gorm:"column:restock_eligible;not null;default:false"`
	Restocked       bool   `gorm:"column:restocked;not null;default:false"`
}

func (ReturnItemModel) TableName() string {
	return "return_items"
}

// WarrantyModel represents the warranties table
type WarrantyModel struct {
	ID         string    `gorm:"column:id;primaryKey;size:36"`
	ProductID  string    `gorm:"column:product_id;size:64;not null;index"`
	CustomerID string    `gorm:"column:customer_id;size:64;not null;index"`
	StartDate  time.Time `gorm:"column:start_date;not null"`
	EndDate    time.Time `gorm:"column:end_date;not null"`
	Status     string    `gorm:"column:status;size:16;not null"`
	Terms      string    `gorm:"column:terms;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (WarrantyModel) TableName() string {
	return "warranties"
}

// WarrantyClaimModel represents the warranty_claims table
type WarrantyClaimModel struct {
	ID          string     `gorm:"column:id;primaryKey;size:36"`
	WarrantyID  string     `gorm:"column:warranty_id;size:36;not null;index"`
	Description string     `gorm:"column:description;type:text"`
	Status      string     `gorm:"column:status;size:16;not null"`
	Resolution  string     `gorm:"column:resolution;type:text"`
	SubmittedAt time.Time  `gorm:"column:submitted_at;not null"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
}

func (WarrantyClaimModel) TableName() string {
	return "warranty_claims"
}

// OutboxEventModel represents the outbox_events table. claim_token backs the
// guarded two-step claim on engines without SKIP LOCKED.
type OutboxEventModel struct {
	ID            string     `gorm:"column:id;primaryKey;size:36"`
	AggregateType string     `gorm:"column:aggregate_type;size:32;not null"`
	AggregateID   string     `gorm:"column:aggregate_id;size:64;index"`
	EventType     string     `gorm:"column:event_type;size:64;not null"`
	Payload       string     `gorm:"column:payload;type:text;not null"`
	Status        string     `gorm:"column:status;size:16;not null;index:idx_outbox_claim"`
	Attempts      int        `gorm:"column:attempts;not null;default:0"`
	AvailableAt   time.Time  `gorm:"column:available_at;not null;index:idx_outbox_claim"`
	ClaimToken    string     `gorm:"column:claim_token;size:36;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null;index"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
	ErrorMessage  string     `gorm:"column:error_message;type:text"`
}

func (OutboxEventModel) TableName() string {
	return "outbox_events"
}
