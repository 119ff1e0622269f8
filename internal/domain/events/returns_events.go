package events

import "github.com/shopspring/decimal"

// Return and warranty event type names.
const (
	TypeReturnCreated   = "ReturnCreated"
	TypeReturnApproved  = "ReturnApproved"
	TypeReturnRejected  = "ReturnRejected"
	TypeReturnCancelled = "ReturnCancelled"
	TypeReturnReceived  = "ReturnReceived"
	TypeReturnCompleted = "ReturnCompleted"
	TypeReturnRefunded  = "ReturnRefunded"
	TypeReturnReopened  = "ReturnReopened"

	TypeWarrantyCreated       = "WarrantyCreated"
	TypeWarrantyVoided        = "WarrantyVoided"
	TypeWarrantyClaimed       = "WarrantyClaimed"
	TypeWarrantyClaimApproved = "WarrantyClaimApproved"
	TypeWarrantyClaimRejected = "WarrantyClaimRejected"
)

type ReturnEvent struct {
	ReturnID string `json:"return_id"`
}

func (e ReturnEvent) AggregateType() string { return AggregateReturn }
func (e ReturnEvent) AggregateID() string   { return e.ReturnID }

type ReturnCreated struct {
	ReturnEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

func (ReturnCreated) EventType() string { return TypeReturnCreated }

// ReturnTransitioned covers approve/reject/cancel/receive/complete/reopen.
type ReturnTransitioned struct {
	ReturnEvent
	Type       string `json:"-"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

func (e ReturnTransitioned) EventType() string { return e.Type }

func NewReturnTransitioned(eventType, returnID, from, to string) ReturnTransitioned {
	return ReturnTransitioned{
		ReturnEvent: ReturnEvent{ReturnID: returnID},
		Type:        eventType,
		FromStatus:  from,
		ToStatus:    to,
	}
}

type ReturnRefunded struct {
	ReturnEvent
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
}

func (ReturnRefunded) EventType() string { return TypeReturnRefunded }

type WarrantyEvent struct {
	WarrantyID string `json:"warranty_id"`
}

func (e WarrantyEvent) AggregateType() string { return AggregateWarranty }
func (e WarrantyEvent) AggregateID() string   { return e.WarrantyID }

type WarrantyCreated struct {
	WarrantyEvent
	ProductID  string `json:"product_id"`
	CustomerID string `json:"customer_id"`
}

func (WarrantyCreated) EventType() string { return TypeWarrantyCreated }

type WarrantyVoided struct {
	WarrantyEvent
	Reason string `json:"reason"`
}

func (WarrantyVoided) EventType() string { return TypeWarrantyVoided }

type WarrantyClaimed struct {
	WarrantyEvent
	ClaimID     string `json:"claim_id"`
	Description string `json:"description"`
}

func (WarrantyClaimed) EventType() string { return TypeWarrantyClaimed }

// WarrantyClaimDecided covers claim approval and rejection.
type WarrantyClaimDecided struct {
	WarrantyEvent
	Type       string `json:"-"`
	ClaimID    string `json:"claim_id"`
	Resolution string `json:"resolution"`
}

func (e WarrantyClaimDecided) EventType() string { return e.Type }
