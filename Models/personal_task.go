package Models

import (
	"time"
)

const (
	PersonalPending   = "pending"
	PersonalCompleted = "completed"
)

// PersonalTask is an employee-authored ad hoc task scoped to its owner.
// Recurring tasks that were completed are reverted to pending by the
// nightly reset.
type PersonalTask struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Title         string     `json:"title" gorm:"not null"`
	Instructions  string     `json:"instructions,omitempty"`
	RequiresPhoto bool       `json:"requiresPhoto"`
	IsRecurring   bool       `json:"isRecurring"`
	CreatedBy     uint       `json:"createdBy" gorm:"index;not null"`
	CreatedAt     time.Time  `json:"createdAt"`
	Status        string     `json:"status" gorm:"not null;default:pending"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	PhotoURL      string     `json:"photoUrl,omitempty"`
}

func (PersonalTask) TableName() string {
	return "personal_tasks"
}
