package Controllers

import (
	"log"
	"time"

	"TaskTracker/Models"
	"TaskTracker/middleware"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	defaultHistoryMonths  = 3
	defaultCalendarMonths = 6
)

// TaskHistoryItem is one completed daily record joined to its template.
type TaskHistoryItem struct {
	ID             uint        `json:"id"`
	Task           Models.Task `json:"task"`
	Date           string      `json:"date"`
	CompletedAt    time.Time   `json:"completedAt"`
	PhotoURL       string      `json:"photoUrl,omitempty"`
	AssignedTaskID uint        `json:"assignedTaskId"`
}

// HistoryDay groups the items completed on one day.
type HistoryDay struct {
	Date        string            `json:"date"`
	DisplayDate string            `json:"displayDate"`
	Tasks       []TaskHistoryItem `json:"tasks"`
}

// GroupedTaskHistory groups a month's days, newest day first.
type GroupedTaskHistory struct {
	Month string       `json:"month"`
	Days  []HistoryDay `json:"days"`
}

// CalendarData is one heatmap cell: a day's completion count and its 0-4
// intensity level relative to the month's peak.
type CalendarData struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// historyRange returns the [start, end] day keys for a lookback of months.
func historyRange(months int) (string, string) {
	end := time.Now()
	start := end.AddDate(0, -months, 0)
	return start.Format(Models.DateLayout), end.Format(Models.DateLayout)
}

// BuildTaskHistory joins every completed status in the lookback window to
// its assignment and template and groups the result by month, then day,
// newest first. Records whose chain cannot be resolved are dropped with a
// warning; partial results beat total failure. Running this twice over the
// same stored data yields identical output.
func BuildTaskHistory(db *gorm.DB, userID uint, months int) ([]GroupedTaskHistory, error) {
	start, end := historyRange(months)

	var statuses []Models.DailyTaskStatus
	if err := db.Where("user_id = ? AND is_completed = ? AND date >= ? AND date <= ?",
		userID, true, start, end).Find(&statuses).Error; err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return []GroupedTaskHistory{}, nil
	}

	// Resolve assignments in one pass, then templates through the cache.
	assignmentIDs := make([]uint, 0, len(statuses))
	for _, status := range statuses {
		assignmentIDs = append(assignmentIDs, status.AssignedTaskID)
	}
	var assignments []Models.AssignedTask
	if err := db.Where("id IN ?", assignmentIDs).Find(&assignments).Error; err != nil {
		return nil, err
	}
	assignmentMap := make(map[uint]Models.AssignedTask, len(assignments))
	taskIDs := make([]uint, 0, len(assignments))
	for _, a := range assignments {
		assignmentMap[a.ID] = a
		taskIDs = append(taskIDs, a.TaskID)
	}
	templates, err := TemplateCache.Fetch(db, taskIDs)
	if err != nil {
		return nil, err
	}

	items := make([]TaskHistoryItem, 0, len(statuses))
	for _, status := range statuses {
		assignment, ok := assignmentMap[status.AssignedTaskID]
		if !ok {
			log.Printf("Warning: assigned task %d not found for status %d, skipping", status.AssignedTaskID, status.ID)
			continue
		}
		task, ok := templates[assignment.TaskID]
		if !ok {
			log.Printf("Warning: task %d not found for assignment %d, skipping", assignment.TaskID, assignment.ID)
			continue
		}

		completedAt := dayStart(status.Date)
		if status.CompletedAt != nil {
			completedAt = *status.CompletedAt
		}
		items = append(items, TaskHistoryItem{
			ID:             status.ID,
			Task:           task,
			Date:           status.Date,
			CompletedAt:    completedAt,
			PhotoURL:       status.PhotoURL,
			AssignedTaskID: status.AssignedTaskID,
		})
	}

	// Newest completions first, before grouping.
	slices.SortFunc(items, func(a, b TaskHistoryItem) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})

	return groupHistory(items), nil
}

// groupHistory buckets pre-sorted items by month label and day. Month order
// follows the first appearance in the sorted items; days within a month are
// sorted descending by date.
func groupHistory(items []TaskHistoryItem) []GroupedTaskHistory {
	var months []GroupedTaskHistory
	monthIndex := make(map[string]int)
	dayIndex := make(map[string]int)

	for _, item := range items {
		day := dayStart(item.Date)
		monthLabel := day.Format("January 2006")

		mi, ok := monthIndex[monthLabel]
		if !ok {
			mi = len(months)
			monthIndex[monthLabel] = mi
			months = append(months, GroupedTaskHistory{Month: monthLabel})
		}

		di, ok := dayIndex[item.Date]
		if !ok {
			di = len(months[mi].Days)
			dayIndex[item.Date] = di
			months[mi].Days = append(months[mi].Days, HistoryDay{
				Date:        item.Date,
				DisplayDate: day.Format("Monday, January 2, 2006"),
			})
		}
		months[mi].Days[di].Tasks = append(months[mi].Days[di].Tasks, item)
	}

	for mi := range months {
		slices.SortFunc(months[mi].Days, func(a, b HistoryDay) int {
			if a.Date > b.Date {
				return -1
			}
			if a.Date < b.Date {
				return 1
			}
			return 0
		})
	}
	return months
}

// dayStart parses a yyyy-MM-dd key; a malformed key yields the zero time.
func dayStart(date string) time.Time {
	t, _ := time.Parse(Models.DateLayout, date)
	return t
}

// intensityLevel buckets a day's count into 0-4 relative to its month's
// peak. With a small peak the mapping is the identity, so "4 completions"
// renders as level 4 exactly; a heavy month is scaled so the peak day still
// reaches 4.
func intensityLevel(count, monthMax int) int {
	if count <= 0 {
		return 0
	}
	if monthMax <= 4 {
		return count
	}
	// ceil((count / max) * 4), which lands in [1,4] for any count > 0.
	return (count*4 + monthMax - 1) / monthMax
}

// BuildCompletionCalendar computes the heatmap: for every month with at
// least one completion in the window, one cell per calendar day with its
// count and intensity level. Keys are yyyy-MM.
func BuildCompletionCalendar(db *gorm.DB, userID uint, months int) (map[string][]CalendarData, error) {
	start, end := historyRange(months)

	var statuses []Models.DailyTaskStatus
	if err := db.Where("user_id = ? AND is_completed = ? AND date >= ? AND date <= ?",
		userID, true, start, end).Find(&statuses).Error; err != nil {
		return nil, err
	}

	countByDate := make(map[string]int)
	monthKeys := make(map[string]bool)
	for _, status := range statuses {
		if !Models.ValidDate(status.Date) {
			log.Printf("Warning: status %d has malformed date %q, skipping", status.ID, status.Date)
			continue
		}
		countByDate[status.Date]++
		monthKeys[status.Date[:7]] = true
	}

	calendar := make(map[string][]CalendarData, len(monthKeys))
	for monthKey := range monthKeys {
		monthStart, err := time.Parse("2006-01", monthKey)
		if err != nil {
			continue
		}

		daysInMonth := monthStart.AddDate(0, 1, -1).Day()
		monthMax := 0
		for d := 1; d <= daysInMonth; d++ {
			date := monthStart.AddDate(0, 0, d-1).Format(Models.DateLayout)
			if c := countByDate[date]; c > monthMax {
				monthMax = c
			}
		}

		cells := make([]CalendarData, 0, daysInMonth)
		for d := 1; d <= daysInMonth; d++ {
			date := monthStart.AddDate(0, 0, d-1).Format(Models.DateLayout)
			count := countByDate[date]
			cells = append(cells, CalendarData{
				Date:  date,
				Count: count,
				Level: intensityLevel(count, monthMax),
			})
		}
		calendar[monthKey] = cells
	}
	return calendar, nil
}

// HistoryController serves completion history and the calendar heatmap.
type HistoryController struct {
	DB *gorm.DB
}

func NewHistoryController(db *gorm.DB) *HistoryController {
	return &HistoryController{DB: db}
}

// historyTarget resolves which user's history to read. Employees may only
// read their own; managers may read anyone's.
func (hc *HistoryController) historyTarget(ctx *fiber.Ctx) (uint, bool) {
	user := middleware.CurrentUser(ctx)
	target := uint(ctx.QueryInt("userId"))
	if target == 0 || target == user.ID {
		return user.ID, true
	}
	return target, user.Role == Models.RoleManager
}

// GetHistory returns grouped completion history for a lookback window.
func (hc *HistoryController) GetHistory(ctx *fiber.Ctx) error {
	target, allowed := hc.historyTarget(ctx)
	if !allowed {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You may only view your own history"})
	}

	months := ctx.QueryInt("months", defaultHistoryMonths)
	if months < 1 || months > 24 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "months must be between 1 and 24"})
	}

	history, err := BuildTaskHistory(hc.DB, target, months)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load history"})
	}
	return ctx.JSON(history)
}

// GetCalendar returns the per-month heatmap data.
func (hc *HistoryController) GetCalendar(ctx *fiber.Ctx) error {
	target, allowed := hc.historyTarget(ctx)
	if !allowed {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You may only view your own history"})
	}

	months := ctx.QueryInt("months", defaultCalendarMonths)
	if months < 1 || months > 24 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "months must be between 1 and 24"})
	}

	calendar, err := BuildCompletionCalendar(hc.DB, target, months)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load calendar"})
	}
	return ctx.JSON(calendar)
}
