package Controllers

import (
	"strconv"
	"time"

	"TaskTracker/Models"
	"TaskTracker/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TaskController handles the manager-owned task template catalog.
type TaskController struct {
	DB *gorm.DB
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{DB: db}
}

type TaskInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Instructions  string `json:"instructions" validate:"max=2000"`
	RequiresPhoto bool   `json:"requiresPhoto"`
}

// GetTasks lists all task templates.
func (tc *TaskController) GetTasks(ctx *fiber.Ctx) error {
	var tasks []Models.Task
	if err := tc.DB.Find(&tasks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tasks"})
	}
	return ctx.JSON(tasks)
}

// GetTask retrieves a single template by ID.
func (tc *TaskController) GetTask(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var task Models.Task
	if err := tc.DB.First(&task, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}
	return ctx.JSON(task)
}

// CreateTask creates a new template.
func (tc *TaskController) CreateTask(ctx *fiber.Ctx) error {
	var input TaskInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": translateErrors(err)})
	}

	task := Models.Task{
		Title:         input.Title,
		Instructions:  input.Instructions,
		RequiresPhoto: input.RequiresPhoto,
		CreatedBy:     middleware.CurrentUser(ctx).ID,
		CreatedAt:     time.Now(),
	}
	if err := tc.DB.Create(&task).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create task"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask updates an existing template and invalidates its cache entry.
func (tc *TaskController) UpdateTask(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var task Models.Task
	if err := tc.DB.First(&task, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	var input TaskInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": translateErrors(err)})
	}

	updates := map[string]interface{}{
		"title":          input.Title,
		"instructions":   input.Instructions,
		"requires_photo": input.RequiresPhoto,
	}
	if err := tc.DB.Model(&task).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	TemplateCache.Invalidate(task.ID)

	return ctx.JSON(task)
}

// DeleteTask removes a template. Assignments and history referencing it are
// left in place and filtered out at read time.
func (tc *TaskController) DeleteTask(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var task Models.Task
	if err := tc.DB.First(&task, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	if err := tc.DB.Delete(&task).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete task"})
	}
	TemplateCache.Invalidate(task.ID)

	return ctx.JSON(fiber.Map{"message": "Task deleted successfully"})
}
