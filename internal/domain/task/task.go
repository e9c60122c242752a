package task

import (
	"errors"
	"time"
)

const DefaultPriority = "medium"

type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"projectId"`
	CategoryID  *int64     `json:"categoryId,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
}

var (
	ErrNotFound = errors.New("task not found")
	// referenced project does not exist; the handler names the id in the response
	ErrProjectMissing = errors.New("referenced project does not exist")
)

type CreateTaskRequest struct {
	ProjectID   int64   `json:"projectId" binding:"required"`
	CategoryID  *int64  `json:"categoryId"`
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     string  `json:"dueDate"`
}

// Partial update: nil fields keep their stored value.
type UpdateTaskRequest struct {
	ID          int64   `json:"id" binding:"required"`
	CategoryID  *int64  `json:"categoryId"`
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
	Completed   *bool   `json:"completed"`
}

type DeleteTaskRequest struct {
	ID int64 `json:"id" binding:"required"`
}

// Optional equality filters combined with AND on the list path.
type ListTasksFilter struct {
	ProjectID  *int64
	CategoryID *int64
}

func (r CreateTaskRequest) PriorityOrDefault() string {
	if r.Priority == "" {
		return DefaultPriority
	}
	return r.Priority
}

// dueDate arrives as a string from clients; accept the common timestamp
// layouts and treat anything unparseable as "no due date".
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseDueDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, raw)

		if err == nil {
			t = t.UTC()
			return &t
		}
	}

	return nil
}
