package Controllers

import (
	"log"
	"sync"

	"TaskTracker/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EmployeeWithTasks is one dashboard row: an employee with today's joined
// task list and completion counts.
type EmployeeWithTasks struct {
	UID            uint        `json:"uid"`
	DisplayName    string      `json:"displayName"`
	Email          string      `json:"email"`
	AssignedTasks  []TaskEntry `json:"assignedTasks"`
	CompletedCount int         `json:"completedCount"`
	TotalCount     int         `json:"totalCount"`
}

// DashboardController serves the manager's per-employee overview.
type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetEmployees runs the daily join for every employee concurrently and
// returns the rows in employee-list order, not completion order. A failed
// join leaves that employee with an empty list rather than failing the
// whole view. This reads O(employees x assignments) rows per call and is
// only meant for small teams.
func (dc *DashboardController) GetEmployees(ctx *fiber.Ctx) error {
	var employees []Models.User
	if err := dc.DB.Where("role = ?", Models.RoleEmployee).Find(&employees).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load employees"})
	}

	today := Models.Today(Models.Location())
	rows := make([]EmployeeWithTasks, len(employees))

	var wg sync.WaitGroup
	for i, employee := range employees {
		wg.Add(1)
		go func(i int, employee Models.User) {
			defer wg.Done()
			row := EmployeeWithTasks{
				UID:           employee.ID,
				DisplayName:   employee.DisplayName,
				Email:         employee.Email,
				AssignedTasks: []TaskEntry{},
			}
			entries, err := BuildDailyTaskList(dc.DB, employee.ID, today)
			if err != nil {
				log.Printf("Warning: task list for employee %d failed: %v", employee.ID, err)
			} else {
				row.AssignedTasks = entries
				row.TotalCount = len(entries)
				for _, entry := range entries {
					if entry.Status != nil && entry.Status.IsCompleted {
						row.CompletedCount++
					}
				}
			}
			rows[i] = row
		}(i, employee)
	}
	wg.Wait()

	return ctx.JSON(rows)
}
