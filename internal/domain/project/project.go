package project

import (
	"errors"
	"time"
)

const DefaultPriority = "medium"

type Project struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("project not found")

type CreateProjectRequest struct {
	UserID      int64   `json:"userId" binding:"required"`
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type UpdateProjectRequest struct {
	ID          int64   `json:"id" binding:"required"`
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type DeleteProjectRequest struct {
	ID int64 `json:"id" binding:"required"`
}

// PriorityOrDefault falls back to "medium" when the client left priority unset.
func (r CreateProjectRequest) PriorityOrDefault() string {
	if r.Priority == "" {
		return DefaultPriority
	}
	return r.Priority
}

func (r UpdateProjectRequest) PriorityOrDefault() string {
	if r.Priority == "" {
		return DefaultPriority
	}
	return r.Priority
}
