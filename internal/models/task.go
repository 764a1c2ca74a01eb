package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func IsValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description"`
	DueDate      time.Time  `json:"dueDate" gorm:"type:timestamp;not null"`
	Priority     string     `json:"priority" gorm:"not null;default:'medium'"`
	Status       string     `json:"status" gorm:"not null;default:'pending'"`
	AssignedToID *uuid.UUID `json:"-" gorm:"column:assigned_to;type:uuid"`
	CreatedByID  uuid.UUID  `json:"-" gorm:"column:created_by;type:uuid;not null"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Populated projections, filled in by the task service. Never stored.
	AssignedTo *UserRef `json:"assignedTo" gorm:"-"`
	CreatedBy  *UserRef `json:"createdBy" gorm:"-"`
}
