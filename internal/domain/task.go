package domain

import "time"

// Priority of a task. Sort rank: high > medium > low.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank maps a priority to a sortable weight (higher = more urgent).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Location is the single collection a task lives in. A task is in exactly
// one location at any time; the Completed flag is preserved across a
// delete so restore can return the task to the collection it came from.
type Location string

const (
	LocationActive    Location = "active"
	LocationCompleted Location = "completed"
	LocationDeleted   Location = "deleted"
)

// Task is the central domain entity.
type Task struct {
	ID          int64
	UserID      int64
	Description string
	DueAt       time.Time
	Priority    Priority

	Recurrence  string
	CustomDays  []int // weekday indices 0=Sunday..6=Saturday, custom recurrence only
	RepeatUntil *time.Time

	Location    Location
	Completed   bool // provenance: survives soft delete
	CompletedAt *time.Time
	DeletedAt   *time.Time

	SnoozedUntil    *time.Time
	SnoozedDuration string

	CreatedAt time.Time
}
