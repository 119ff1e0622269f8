package events

// Work-order event type names.
const (
	TypeWorkOrderCreated    = "WorkOrderCreated"
	TypeWorkOrderUpdated    = "WorkOrderUpdated"
	TypeWorkOrderCancelled  = "WorkOrderCancelled"
	TypeWorkOrderStarted    = "WorkOrderStarted"
	TypeWorkOrderCompleted  = "WorkOrderCompleted"
	TypeWorkOrderIssued     = "WorkOrderIssued"
	TypeWorkOrderPicked     = "WorkOrderPicked"
	TypeWorkOrderYielded    = "WorkOrderYielded"
	TypeWorkOrderScheduled  = "WorkOrderScheduled"
	TypeWorkOrderAssigned   = "WorkOrderAssigned"
	TypeWorkOrderUnassigned = "WorkOrderUnassigned"
	TypeWorkOrderNoteAdded  = "WorkOrderNoteAdded"
)

type WorkOrderEvent struct {
	WorkOrderID string `json:"work_order_id"`
}

func (e WorkOrderEvent) AggregateType() string { return AggregateWorkOrder }
func (e WorkOrderEvent) AggregateID() string   { return e.WorkOrderID }

type WorkOrderCreated struct {
	WorkOrderEvent
	BOMID    string `json:"bom_id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

func (WorkOrderCreated) EventType() string { return TypeWorkOrderCreated }

type WorkOrderUpdated struct {
	WorkOrderEvent
	Version int `json:"version"`
}

func (WorkOrderUpdated) EventType() string { return TypeWorkOrderUpdated }

// WorkOrderTransitioned covers the lifecycle transitions (scheduled, issued,
// picked, started, yielded, completed, cancelled).
type WorkOrderTransitioned struct {
	WorkOrderEvent
	Type       string `json:"-"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Version    int    `json:"version"`
}

func (e WorkOrderTransitioned) EventType() string { return e.Type }

func NewWorkOrderTransitioned(eventType, workOrderID, from, to string, version int) WorkOrderTransitioned {
	return WorkOrderTransitioned{
		WorkOrderEvent: WorkOrderEvent{WorkOrderID: workOrderID},
		Type:           eventType,
		FromStatus:     from,
		ToStatus:       to,
		Version:        version,
	}
}

type WorkOrderAssigned struct {
	WorkOrderEvent
	Assignee string `json:"assignee"`
}

func (WorkOrderAssigned) EventType() string { return TypeWorkOrderAssigned }

type WorkOrderUnassigned struct {
	WorkOrderEvent
	PreviousAssignee string `json:"previous_assignee"`
}

func (WorkOrderUnassigned) EventType() string { return TypeWorkOrderUnassigned }

type WorkOrderNoteAdded struct {
	WorkOrderEvent
	NoteID string `json:"note_id"`
	Note   string `json:"note"`
}

func (WorkOrderNoteAdded) EventType() string { return TypeWorkOrderNoteAdded }
