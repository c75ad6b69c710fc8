package Models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ResetTriggerScheduled = "scheduled"
	ResetTriggerManual    = "manual"
)

// ResetRun is an audit row written after each reset invocation. Detail holds
// the per-user batch outcomes as JSON.
type ResetRun struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Trigger       string         `json:"trigger" gorm:"not null"`
	TargetDate    string         `json:"targetDate" gorm:"index;not null"`
	AssignedCount int            `json:"assignedCount"`
	PersonalCount int            `json:"personalCount"`
	FailedBatches int            `json:"failedBatches"`
	Detail        datatypes.JSON `json:"detail,omitempty"`
	RanAt         time.Time      `json:"ranAt"`
}

func (ResetRun) TableName() string {
	return "reset_runs"
}
