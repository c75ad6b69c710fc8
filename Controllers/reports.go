package Controllers

import (
	"fmt"
	"log"
	"time"

	"TaskTracker/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportController exports completion data for managers.
type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// GetCompletionReport writes an xlsx with one row per completed daily task
// in the date range (defaults to the last 30 days). Rows whose assignment
// or template chain is broken are skipped, same as the history view.
func (rc *ReportController) GetCompletionReport(ctx *fiber.Ctx) error {
	end := ctx.Query("end")
	if end == "" {
		end = time.Now().Format(Models.DateLayout)
	}
	start := ctx.Query("start")
	if start == "" {
		start = time.Now().AddDate(0, 0, -30).Format(Models.DateLayout)
	}
	if !Models.ValidDate(start) || !Models.ValidDate(end) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date range, expected yyyy-mm-dd"})
	}

	var statuses []Models.DailyTaskStatus
	if err := rc.DB.Where("is_completed = ? AND date >= ? AND date <= ?", true, start, end).
		Order("date").Find(&statuses).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load completions"})
	}

	// Resolve names once for the whole report.
	var users []Models.User
	if err := rc.DB.Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load employees"})
	}
	userNames := make(map[uint]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.DisplayName
	}

	assignmentIDs := make([]uint, 0, len(statuses))
	for _, s := range statuses {
		assignmentIDs = append(assignmentIDs, s.AssignedTaskID)
	}
	var assignments []Models.AssignedTask
	if len(assignmentIDs) > 0 {
		if err := rc.DB.Where("id IN ?", assignmentIDs).Find(&assignments).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load assignments"})
		}
	}
	assignmentMap := make(map[uint]Models.AssignedTask, len(assignments))
	taskIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		assignmentMap[a.ID] = a
		taskIDs = append(taskIDs, a.TaskID)
	}
	templates, err := TemplateCache.Fetch(rc.DB, taskIDs)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load task templates"})
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Completions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Employee", "Task", "Completed At", "Photo URL"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, status := range statuses {
		assignment, ok := assignmentMap[status.AssignedTaskID]
		if !ok {
			log.Printf("Warning: report skipping status %d with missing assignment %d", status.ID, status.AssignedTaskID)
			continue
		}
		task, ok := templates[assignment.TaskID]
		if !ok {
			log.Printf("Warning: report skipping status %d with missing task %d", status.ID, assignment.TaskID)
			continue
		}

		completedAt := ""
		if status.CompletedAt != nil {
			completedAt = status.CompletedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{status.Date, userNames[status.UserID], task.Title, completedAt, status.PhotoURL}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build report"})
	}

	filename := fmt.Sprintf("completions_%s_%s.xlsx", start, end)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Send(buf.Bytes())
}
