package Models

import (
	"time"
)

// Task is a reusable template a manager defines once. Deleting a Task does
// not cascade to assignments or history; readers filter dangling references.
type Task struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"not null"`
	Instructions  string    `json:"instructions,omitempty"`
	RequiresPhoto bool      `json:"requiresPhoto"`
	CreatedBy     uint      `json:"createdBy" gorm:"index"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// AssignedTask binds a template to one employee going forward.
// At most one row per (taskId, userId) pair, enforced by a
// query-before-insert in the assignment handler, not by the database.
type AssignedTask struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TaskID     uint      `json:"taskId" gorm:"index;not null"`
	UserID     uint      `json:"userId" gorm:"index;not null"`
	AssignedBy uint      `json:"assignedBy"`
	AssignedAt time.Time `json:"assignedAt"`
}

func (AssignedTask) TableName() string {
	return "assigned_tasks"
}
