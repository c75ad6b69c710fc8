package Controllers

import (
	"strconv"
	"time"

	"TaskTracker/Models"
	"TaskTracker/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AssignmentController manages the template-to-employee ledger.
type AssignmentController struct {
	DB *gorm.DB
}

func NewAssignmentController(db *gorm.DB) *AssignmentController {
	return &AssignmentController{DB: db}
}

// GetAssignments lists assignments, optionally filtered by userId.
// Employees only ever see their own.
func (ac *AssignmentController) GetAssignments(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	q := ac.DB.Model(&Models.AssignedTask{})
	if user.Role != Models.RoleManager {
		q = q.Where("user_id = ?", user.ID)
	} else if userID := ctx.QueryInt("userId"); userID > 0 {
		q = q.Where("user_id = ?", userID)
	}

	var assignments []Models.AssignedTask
	if err := q.Find(&assignments).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve assignments"})
	}
	return ctx.JSON(assignments)
}

type AssignInput struct {
	TaskID uint `json:"taskId" validate:"required"`
	UserID uint `json:"userId" validate:"required"`
}

// CreateAssignment binds a template to an employee. The duplicate check is
// a query before the insert, not a database constraint; two concurrent
// requests for the same pair can still both succeed.
func (ac *AssignmentController) CreateAssignment(ctx *fiber.Ctx) error {
	var input AssignInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": translateErrors(err)})
	}

	var task Models.Task
	if err := ac.DB.First(&task, input.TaskID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}
	var employee Models.User
	if err := ac.DB.First(&employee, input.UserID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Employee not found"})
	}

	var count int64
	ac.DB.Model(&Models.AssignedTask{}).
		Where("task_id = ? AND user_id = ?", input.TaskID, input.UserID).
		Count(&count)
	if count > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Task is already assigned to this employee"})
	}

	assignment := Models.AssignedTask{
		TaskID:     input.TaskID,
		UserID:     input.UserID,
		AssignedBy: middleware.CurrentUser(ctx).ID,
		AssignedAt: time.Now(),
	}
	if err := ac.DB.Create(&assignment).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to assign task"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(assignment)
}

// DeleteAssignment removes an assignment. Daily history rows keyed by it
// stay and keep resolving for as long as the assignment row existed when
// they were written; the history join drops them once the chain breaks.
func (ac *AssignmentController) DeleteAssignment(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assignment ID"})
	}

	var assignment Models.AssignedTask
	if err := ac.DB.First(&assignment, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}

	if err := ac.DB.Delete(&assignment).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove assignment"})
	}
	return ctx.JSON(fiber.Map{"message": "Assignment removed successfully"})
}
