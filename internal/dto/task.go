package dto

import (
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"
	"github.com/karimahmed315/task-manager/internal/timefmt"
)

// CreateTaskRequest is the JSON body for POST /tasks. DueDate and DueTime
// are strings in the user's configured formats; the server parses them.
type CreateTaskRequest struct {
	Description string `json:"description" binding:"required,min=1,max=150"`
	DueDate     string `json:"due_date" binding:"required"`
	DueTime     string `json:"due_time" binding:"required"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Recurrence  string `json:"recurrence" binding:"omitempty"`
	CustomDays  []int  `json:"custom_days" binding:"omitempty"`
	RepeatUntil string `json:"repeat_until" binding:"omitempty"`
}

// SnoozeRequest is the JSON body for POST /tasks/:id/snooze.
type SnoozeRequest struct {
	Duration string `json:"duration" binding:"required"`
}

// ParseDateTimeRequest is the JSON body for POST /parse-datetime.
type ParseDateTimeRequest struct {
	Text string `json:"text" binding:"required"`
}

// TaskResponse serializes a task. DueDateStr/DueTimeStr are rendered in
// the requesting user's display formats; instants are ISO-8601.
type TaskResponse struct {
	ID              int64      `json:"id"`
	Description     string     `json:"description"`
	DueAt           time.Time  `json:"due_at"`
	DueDateStr      string     `json:"due_date"`
	DueTimeStr      string     `json:"due_time"`
	Priority        string     `json:"priority"`
	Recurrence      string     `json:"recurrence"`
	CustomDays      []int      `json:"custom_days,omitempty"`
	RepeatUntil     *time.Time `json:"repeat_until,omitempty"`
	Location        string     `json:"location"`
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	SnoozedUntil    *time.Time `json:"snoozed_until,omitempty"`
	SnoozedDuration string     `json:"snoozed_duration,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ListTasksResponse wraps a task list.
type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}

// BulkResponse reports how many tasks a bulk operation touched.
type BulkResponse struct {
	Message   string `json:"message"`
	Count     int    `json:"count"`
	Active    int    `json:"restored_to_active,omitempty"`
	Completed int    `json:"restored_to_completed,omitempty"`
}

// TaskToResponse converts a domain task, rendering display strings under
// the given format configuration.
func TaskToResponse(t dom.Task, cfg timefmt.Config) TaskResponse {
	dateStr, timeStr := cfg.Format(t.DueAt)
	return TaskResponse{
		ID:              t.ID,
		Description:     t.Description,
		DueAt:           t.DueAt,
		DueDateStr:      dateStr,
		DueTimeStr:      timeStr,
		Priority:        string(t.Priority),
		Recurrence:      t.Recurrence,
		CustomDays:      t.CustomDays,
		RepeatUntil:     t.RepeatUntil,
		Location:        string(t.Location),
		Completed:       t.Completed,
		CompletedAt:     t.CompletedAt,
		DeletedAt:       t.DeletedAt,
		SnoozedUntil:    t.SnoozedUntil,
		SnoozedDuration: t.SnoozedDuration,
		CreatedAt:       t.CreatedAt,
	}
}

// TasksToResponses converts a task list.
func TasksToResponses(list []dom.Task, cfg timefmt.Config) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = TaskToResponse(list[i], cfg)
	}
	return out
}
