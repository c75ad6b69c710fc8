package Models

import (
	"log"
	"time"
)

// DateLayout is the wire format for day keys (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// Timezone is the app's day boundary. The handlers' "today" and the
// nightly reset's target date must agree on it regardless of host zone.
const Timezone = "America/Chicago"

var appLocation = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		log.Printf("Warning: failed to load timezone %s, falling back to UTC: %v", Timezone, err)
		return time.UTC
	}
	return loc
}

// Location returns the day-boundary location.
func Location() *time.Location {
	return appLocation
}

// DailyTaskStatus is one day's completion record for one assignment.
// Conceptually one row per (assignedTaskId, date); created lazily on first
// completion or pre-created blank by the nightly reset. Duplicates are
// possible under concurrent writes and reset reruns and are tolerated by
// readers.
type DailyTaskStatus struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	AssignedTaskID uint       `json:"assignedTaskId" gorm:"index;not null"`
	UserID         uint       `json:"userId" gorm:"index;not null"`
	Date           string     `json:"date" gorm:"index;not null"`
	IsCompleted    bool       `json:"isCompleted"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	PhotoURL       string     `json:"photoUrl,omitempty"`
}

func (DailyTaskStatus) TableName() string {
	return "daily_tasks"
}

// Today returns the current day key in the given location.
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format(DateLayout)
}

// ValidDate reports whether s is a well-formed yyyy-MM-dd day key.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
