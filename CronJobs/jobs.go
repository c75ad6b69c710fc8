package CronJobs

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"TaskTracker/Models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ResetSchedule fires at 23:59 every day in the shared app timezone, so
// the target date and the handlers' "today" always use the same clock.
const ResetSchedule = "59 23 * * *"

// UserBatchResult records the outcome of one user's personal-task batch.
type UserBatchResult struct {
	UserID uint   `json:"userId"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// ResetResult summarizes one reset invocation.
type ResetResult struct {
	TargetDate    string
	AssignedCount int
	PersonalCount int
	FailedBatches int
	UserBatches   []UserBatchResult
}

// RunReset executes both reset phases against target (a yyyy-MM-dd day).
//
// Phase 1 inserts one blank DailyTaskStatus per assignment in a single
// batch. It never checks for an existing row, so re-running for the same
// date duplicates blanks; readers tolerate that.
//
// Phase 2 reverts each user's recurring completed personal tasks to
// pending, one batch per user. A failing batch is logged and skipped;
// it does not roll back phase 1 or any other user's batch.
func RunReset(db *gorm.DB, target, trigger string) (*ResetResult, error) {
	result := &ResetResult{TargetDate: target}

	// Phase 1: blank records for every assignment.
	var assignments []Models.AssignedTask
	if err := db.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	if len(assignments) > 0 {
		blanks := make([]Models.DailyTaskStatus, 0, len(assignments))
		for _, a := range assignments {
			blanks = append(blanks, Models.DailyTaskStatus{
				AssignedTaskID: a.ID,
				UserID:         a.UserID,
				Date:           target,
				IsCompleted:    false,
			})
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&blanks).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create blank daily tasks: %w", err)
		}
		result.AssignedCount = len(blanks)
		log.Printf("Reset %d assigned tasks for %s", len(blanks), target)
	} else {
		log.Println("No assigned tasks found to reset")
	}

	// Phase 2: revert recurring completed personal tasks, per user.
	var users []Models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	for _, user := range users {
		var recurring []Models.PersonalTask
		err := db.Where("created_by = ? AND is_recurring = ? AND status = ?",
			user.ID, true, Models.PersonalCompleted).Find(&recurring).Error
		if err != nil {
			log.Printf("Error fetching personal tasks for user %d: %v", user.ID, err)
			result.FailedBatches++
			result.UserBatches = append(result.UserBatches, UserBatchResult{UserID: user.ID, Error: err.Error()})
			continue
		}
		if len(recurring) == 0 {
			continue
		}

		ids := make([]uint, 0, len(recurring))
		for _, task := range recurring {
			ids = append(ids, task.ID)
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			return tx.Model(&Models.PersonalTask{}).Where("id IN ?", ids).
				Updates(map[string]interface{}{
					"status":       Models.PersonalPending,
					"completed_at": nil,
					"photo_url":    "",
				}).Error
		})
		if err != nil {
			log.Printf("Error resetting personal tasks for user %d: %v", user.ID, err)
			result.FailedBatches++
			result.UserBatches = append(result.UserBatches, UserBatchResult{UserID: user.ID, Error: err.Error()})
			continue
		}
		result.PersonalCount += len(ids)
		result.UserBatches = append(result.UserBatches, UserBatchResult{UserID: user.ID, Count: len(ids)})
		log.Printf("Reset %d recurring personal tasks for user %d", len(ids), user.ID)
	}

	recordRun(db, trigger, result)
	return result, nil
}

// recordRun writes the audit row; a failure here never fails the reset.
func recordRun(db *gorm.DB, trigger string, result *ResetResult) {
	detail, _ := json.Marshal(result.UserBatches)
	run := Models.ResetRun{
		Trigger:       trigger,
		TargetDate:    result.TargetDate,
		AssignedCount: result.AssignedCount,
		PersonalCount: result.PersonalCount,
		FailedBatches: result.FailedBatches,
		Detail:        detail,
		RanAt:         time.Now(),
	}
	if err := db.Create(&run).Error; err != nil {
		log.Printf("Error recording reset run: %v", err)
	}
}

// TaskResetter schedules the nightly reset.
type TaskResetter struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
	location      *time.Location
	jobID         cron.EntryID
}

// NewTaskResetter creates the resetter in the app's day-boundary timezone.
func NewTaskResetter(db *gorm.DB) (*TaskResetter, error) {
	loc := Models.Location()
	return &TaskResetter{
		db:            db,
		cronScheduler: cron.New(cron.WithLocation(loc)),
		location:      loc,
	}, nil
}

// Start schedules the nightly run.
func (t *TaskResetter) Start() error {
	var err error
	t.jobID, err = t.cronScheduler.AddFunc(ResetSchedule, func() {
		log.Println("Running scheduled daily task reset")
		// The scheduled run prepares tomorrow's blank records.
		target := time.Now().In(t.location).AddDate(0, 0, 1).Format(Models.DateLayout)
		if _, err := RunReset(t.db, target, Models.ResetTriggerScheduled); err != nil {
			log.Printf("Error in scheduled task reset: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	t.cronScheduler.Start()
	log.Printf("Task reset scheduler started - will run daily at 23:59 %s", Models.Timezone)
	return nil
}

// Stop terminates the scheduler.
func (t *TaskResetter) Stop() {
	if t.cronScheduler != nil {
		t.cronScheduler.Stop()
		log.Println("Task reset scheduler stopped")
	}
}

// RunManual executes a reset for today, for on-demand reruns.
func (t *TaskResetter) RunManual() (*ResetResult, error) {
	log.Println("Running manual task reset")
	target := time.Now().In(t.location).Format(Models.DateLayout)
	return RunReset(t.db, target, Models.ResetTriggerManual)
}
