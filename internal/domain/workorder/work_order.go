package workorder

import (
	"time"

	"github.com/harborline/omscore/internal/domain/shared"
)

// Status is the work-order lifecycle state set.
type Status string

const (
	StatusPending    Status = "pending"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusPicked     Status = "picked"
	StatusIssued     Status = "issued"
	StatusYielded    Status = "yielded"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Priority orders work on the shop floor.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a raw priority string.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", shared.NewValidationError("priority", "unknown priority: "+raw)
}

var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusScheduled, StatusIssued, StatusCancelled},
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusIssued:     {StatusPicked, StatusCancelled},
	StatusPicked:     {StatusYielded, StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusYielded, StatusCancelled},
	StatusYielded:    {StatusCompleted},
}

// CanTransition reports whether from -> to is in the matrix.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// Note is an append-only annotation on a work order.
type Note struct {
	ID          string
	WorkOrderID string
	Note        string
	CreatedAt   time.Time
}

// Part is one BOM component requirement on a work order.
type Part struct {
	ItemID   string
	Quantity int
}

// WorkOrder is an optimistically locked aggregate: every successful write
// bumps version by exactly one, and writers condition on the version they
// read. A stale writer gets ConcurrentModificationError.
type WorkOrder struct {
	id             string
	bomID          string
	title          string
	description    string
	priority       Priority
	status         Status
	assignee       string
	dueDate        *time.Time
	estimatedHours float64
	actualHours    float64
	parts          []Part
	version        int
	startedAt      *time.Time
	yieldedAt      *time.Time
	completedAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

// New creates a pending work order at version 1.
func New(id, bomID, title, description string, priority Priority, parts []Part, dueDate *time.Time, estimatedHours float64, now time.Time) (*WorkOrder, error) {
	if title == "" {
		return nil, shared.NewValidationError("title", "title is required")
	}
	for _, p := range parts {
		if p.Quantity <= 0 {
			return nil, shared.NewValidationError("parts", "part quantity must be positive: "+p.ItemID)
		}
	}
	return &WorkOrder{
		id:             id,
		bomID:          bomID,
		title:          title,
		description:    description,
		priority:       priority,
		status:         StatusPending,
		dueDate:        dueDate,
		estimatedHours: estimatedHours,
		parts:          parts,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Restore reconstructs a work order from persistence.
func Restore(id, bomID, title, description string, priority Priority, status Status,
	assignee string, dueDate *time.Time, estimatedHours, actualHours float64, parts []Part,
	version int, startedAt, yieldedAt, completedAt *time.Time, createdAt, updatedAt time.Time) *WorkOrder {
	return &WorkOrder{
		id:             id,
		bomID:          bomID,
		title:          title,
		description:    description,
		priority:       priority,
		status:         status,
		assignee:       assignee,
		dueDate:        dueDate,
		estimatedHours: estimatedHours,
		actualHours:    actualHours,
		parts:          parts,
		version:        version,
		startedAt:      startedAt,
		yieldedAt:      yieldedAt,
		completedAt:    completedAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (w *WorkOrder) ID() string              { return w.id }
func (w *WorkOrder) BOMID() string           { return w.bomID }
func (w *WorkOrder) Title() string           { return w.title }
func (w *WorkOrder) Description() string     { return w.description }
func (w *WorkOrder) Priority() Priority      { return w.priority }
func (w *WorkOrder) Status() Status          { return w.status }
func (w *WorkOrder) Assignee() string        { return w.assignee }
func (w *WorkOrder) DueDate() *time.Time     { return w.dueDate }
func (w *WorkOrder) EstimatedHours() float64 { return w.estimatedHours }
func (w *WorkOrder) ActualHours() float64    { return w.actualHours }
func (w *WorkOrder) Parts() []Part           { return w.parts }
func (w *WorkOrder) Version() int            { return w.version }
func (w *WorkOrder) StartedAt() *time.Time   { return w.startedAt }
func (w *WorkOrder) YieldedAt() *time.Time   { return w.yieldedAt }
func (w *WorkOrder) CompletedAt() *time.Time { return w.completedAt }
func (w *WorkOrder) CreatedAt() time.Time    { return w.createdAt }
func (w *WorkOrder) UpdatedAt() time.Time    { return w.updatedAt }

// CheckVersion compares the caller's expected version against current state.
func (w *WorkOrder) CheckVersion(expected int) error {
	if expected != w.version {
		return shared.NewConcurrentModificationError("work order", w.id, expected)
	}
	return nil
}

// TransitionTo moves the work order through the matrix and stamps the
// per-state completion timestamps.
func (w *WorkOrder) TransitionTo(to Status, now time.Time) error {
	if !CanTransition(w.status, to) {
		return shared.NewInvalidStatusError("work order", string(w.status), string(to))
	}
	w.status = to
	switch to {
	case StatusInProgress:
		if w.startedAt == nil {
			t := now
			w.startedAt = &t
		}
	case StatusYielded:
		t := now
		w.yieldedAt = &t
	case StatusCompleted:
		t := now
		w.completedAt = &t
	}
	w.updatedAt = now
	return nil
}

// Assign sets the assignee. Independent of status except once terminal.
func (w *WorkOrder) Assign(assignee string, now time.Time) error {
	if IsTerminal(w.status) {
		return shared.NewInvalidStatusError("work order", string(w.status), "assigned")
	}
	w.assignee = assignee
	w.updatedAt = now
	return nil
}

// Unassign clears the assignee and returns the previous one.
func (w *WorkOrder) Unassign(now time.Time) (string, error) {
	if IsTerminal(w.status) {
		return "", shared.NewInvalidStatusError("work order", string(w.status), "unassigned")
	}
	previous := w.assignee
	w.assignee = ""
	w.updatedAt = now
	return previous, nil
}

// Reschedule sets the due date. Independent of status except once terminal.
func (w *WorkOrder) Reschedule(dueDate time.Time, now time.Time) error {
	if IsTerminal(w.status) {
		return shared.NewInvalidStatusError("work order", string(w.status), "scheduled")
	}
	w.dueDate = &dueDate
	w.updatedAt = now
	return nil
}

// RecordActualHours accumulates labor on completion paths.
func (w *WorkOrder) RecordActualHours(hours float64, now time.Time) error {
	if hours < 0 {
		return shared.NewValidationError("actual_hours", "actual hours must not be negative")
	}
	w.actualHours = hours
	w.updatedAt = now
	return nil
}

// BumpVersion mirrors the stored version after a successful conditional
// write. Only repositories call this.
func (w *WorkOrder) BumpVersion() {
	w.version++
}
