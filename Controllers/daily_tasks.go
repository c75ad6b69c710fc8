package Controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"TaskTracker/Models"
	"TaskTracker/Storage"
	"TaskTracker/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// assignmentPageLimit bounds how many assignments one employee view reads.
const assignmentPageLimit = 20

// TaskEntry is one row of the employee task view: the template, today's
// status (nil when nothing was recorded yet) and the assignment that links
// them.
type TaskEntry struct {
	Task           Models.Task             `json:"task"`
	Status         *Models.DailyTaskStatus `json:"status"`
	AssignedTaskID uint                    `json:"assignedTaskId"`
}

// BuildDailyTaskList assembles the task view for one employee and one day:
// assignments, then the day's status rows keyed by assignment, then the
// templates through the shared cache. Assignments whose template no longer
// resolves are dropped. The result keeps the order assignments came back
// from the database; that order is not guaranteed stable.
func BuildDailyTaskList(db *gorm.DB, userID uint, date string) ([]TaskEntry, error) {
	var assignments []Models.AssignedTask
	if err := db.Where("user_id = ?", userID).Limit(assignmentPageLimit).Find(&assignments).Error; err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []TaskEntry{}, nil
	}

	var statuses []Models.DailyTaskStatus
	if err := db.Where("user_id = ? AND date = ?", userID, date).Find(&statuses).Error; err != nil {
		return nil, err
	}
	// Later rows overwrite earlier ones, which also tolerates duplicate
	// status rows for the same assignment.
	statusMap := make(map[uint]Models.DailyTaskStatus, len(statuses))
	for _, status := range statuses {
		statusMap[status.AssignedTaskID] = status
	}

	taskIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		taskIDs = append(taskIDs, a.TaskID)
	}
	templates, err := TemplateCache.Fetch(db, taskIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]TaskEntry, 0, len(assignments))
	for _, a := range assignments {
		task, ok := templates[a.TaskID]
		if !ok {
			// Template was deleted; tolerate the dangling assignment.
			log.Printf("Warning: assignment %d references missing task %d, skipping", a.ID, a.TaskID)
			continue
		}
		entry := TaskEntry{Task: task, AssignedTaskID: a.ID}
		if status, ok := statusMap[a.ID]; ok {
			s := status
			entry.Status = &s
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DailyTaskController serves the employee's own daily view and completions.
type DailyTaskController struct {
	DB *gorm.DB
}

func NewDailyTaskController(db *gorm.DB) *DailyTaskController {
	return &DailyTaskController{DB: db}
}

// GetDailyTasks returns the caller's task list for one day (default today).
func (dc *DailyTaskController) GetDailyTasks(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	date := ctx.Query("date")
	if date == "" {
		date = Models.Today(Models.Location())
	} else if !Models.ValidDate(date) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected yyyy-mm-dd"})
	}

	entries, err := BuildDailyTaskList(dc.DB, user.ID, date)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load your tasks"})
	}
	return ctx.JSON(entries)
}

// CompleteTask marks one assignment complete for today. When a photo is
// supplied it is uploaded first and any upload failure aborts the whole
// completion, so no partial state is persisted. The status row is then
// upserted: created if the day has none, updated otherwise, preserving an
// existing photo URL when no new photo arrived. The query-then-write pair
// is not transactional; a concurrent duplicate create is possible.
func (dc *DailyTaskController) CompleteTask(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	assignedTaskID, err := strconv.Atoi(ctx.Params("assignedTaskId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment ID"})
	}

	var assignment Models.AssignedTask
	if err := dc.DB.First(&assignment, assignedTaskID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}
	if assignment.UserID != user.ID {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This task is not assigned to you"})
	}

	var task Models.Task
	if err := dc.DB.First(&task, assignment.TaskID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task template no longer exists"})
	}

	today := Models.Today(Models.Location())

	var existingPhoto string
	var existing Models.DailyTaskStatus
	findErr := dc.DB.Where("assigned_task_id = ? AND date = ?", assignment.ID, today).
		First(&existing).Error
	if findErr == nil {
		existingPhoto = existing.PhotoURL
	} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete task"})
	}

	photoURL := ""
	if file, err := ctx.FormFile("photo"); err == nil && file != nil {
		key := Storage.TaskPhotoKey(user.ID, today, assignment.ID)
		photoURL, err = Storage.UploadPhoto(key, file)
		if err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
	} else if task.RequiresPhoto && existingPhoto == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This task requires photo proof"})
	}

	status, created, err := UpsertCompletion(dc.DB, assignment.ID, user.ID, today, photoURL)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete task"})
	}
	if created {
		return ctx.Status(fiber.StatusCreated).JSON(status)
	}
	return ctx.JSON(status)
}

// UpsertCompletion records a completion for one assignment and day. A
// missing status row is created; an existing one is updated, keeping its
// photo URL when no new one is supplied. The query-then-write pair is not
// transactional, so a concurrent call can create a duplicate row.
func UpsertCompletion(db *gorm.DB, assignedTaskID, userID uint, date, photoURL string) (Models.DailyTaskStatus, bool, error) {
	now := time.Now()

	var existing Models.DailyTaskStatus
	findErr := db.Where("assigned_task_id = ? AND date = ?", assignedTaskID, date).
		First(&existing).Error
	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		status := Models.DailyTaskStatus{
			AssignedTaskID: assignedTaskID,
			UserID:         userID,
			Date:           date,
			IsCompleted:    true,
			CompletedAt:    &now,
			PhotoURL:       photoURL,
		}
		if err := db.Create(&status).Error; err != nil {
			return Models.DailyTaskStatus{}, false, err
		}
		return status, true, nil
	}
	if findErr != nil {
		return Models.DailyTaskStatus{}, false, findErr
	}

	if photoURL == "" {
		photoURL = existing.PhotoURL
	}
	updates := map[string]interface{}{
		"is_completed": true,
		"completed_at": now,
		"photo_url":    photoURL,
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return Models.DailyTaskStatus{}, false, err
	}
	existing.IsCompleted = true
	existing.CompletedAt = &now
	existing.PhotoURL = photoURL
	return existing, false, nil
}
