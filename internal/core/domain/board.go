package domain

import (
	"errors"
	"time"
)

var ErrInvalidStatus = errors.New("invalid status")

// BoardStatus is a workflow column. StatusDone is the terminal state: entering
// it stamps CompletedAt, leaving it (to any non-done column) clears it.
type BoardStatus string

const (
	StatusTodo       BoardStatus = "todo"
	StatusInProgress BoardStatus = "in-progress"
	StatusInReview   BoardStatus = "in-review"
	StatusDone       BoardStatus = "done"
)

func (s BoardStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// Task is a board item on an internal project. Within one
// (internal_project_id, status) column the Order values form a contiguous,
// zero-based sequence without duplicates.
type Task struct {
	ID                string
	InternalProjectID string
	Title             string
	Description       string
	AssigneeID        *string
	Status            BoardStatus
	Order             int
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (t Task) Validate() error {
	if t.InternalProjectID == "" || t.Title == "" {
		return ErrInvalidInput
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Story is a board item on a client-facing project, ordered the same way as
// tasks but scoped by project_id.
type Story struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      BoardStatus
	Order       int
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s Story) Validate() error {
	if s.ProjectID == "" || s.Title == "" {
		return ErrInvalidInput
	}
	if !s.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// OrderAssignment pairs an item id with the order it should be written with.
type OrderAssignment struct {
	ID    string
	Order int
}

// ClampOrder bounds a requested target index to the destination column: a
// negative index becomes 0 and anything past the end means append.
func ClampOrder(order, columnLen int) int {
	if order < 0 {
		return 0
	}
	if order > columnLen {
		return columnLen
	}
	return order
}

// CrossColumnOrders re-indexes the destination column after a card arrives
// from another column. siblings are the remaining items of the column (moved
// item excluded) in ascending current order. Enumerating from zero, the item
// at index i keeps i if it sits before the insertion point and shifts to i+1
// otherwise, which reopens exactly one gap at newOrder.
func CrossColumnOrders(siblings []string, newOrder int) []OrderAssignment {
	out := make([]OrderAssignment, 0, len(siblings))
	for i, id := range siblings {
		ord := i
		if i >= newOrder {
			ord = i + 1
		}
		out = append(out, OrderAssignment{ID: id, Order: ord})
	}
	return out
}

// SameColumnShift computes the sibling order changes for a reorder within one
// column. items is the whole column (moved item included) in ascending order.
// Moving down decrements the interval (oldOrder, newOrder], moving up
// increments [newOrder, oldOrder). The moved item's own write is not included;
// it always receives newOrder. Returns nil when the move is a no-op.
func SameColumnShift(items []OrderAssignment, movedID string, newOrder int) []OrderAssignment {
	oldOrder := -1
	for _, it := range items {
		if it.ID == movedID {
			oldOrder = it.Order
			break
		}
	}
	if oldOrder < 0 || newOrder == oldOrder {
		return nil
	}

	var out []OrderAssignment
	for _, it := range items {
		if it.ID == movedID {
			continue
		}
		switch {
		case newOrder > oldOrder && it.Order > oldOrder && it.Order <= newOrder:
			out = append(out, OrderAssignment{ID: it.ID, Order: it.Order - 1})
		case newOrder < oldOrder && it.Order >= newOrder && it.Order < oldOrder:
			out = append(out, OrderAssignment{ID: it.ID, Order: it.Order + 1})
		}
	}
	return out
}

// StampCompletion returns the CompletedAt value an item must carry after a
// status change. Entering done stamps now, staying in done preserves the
// previous stamp, and any non-done destination clears it unconditionally.
func StampCompletion(oldStatus, newStatus BoardStatus, prev *time.Time, now time.Time) *time.Time {
	if newStatus != StatusDone {
		return nil
	}
	if oldStatus == StatusDone {
		return prev
	}
	return &now
}
