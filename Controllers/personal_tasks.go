package Controllers

import (
	"strconv"
	"time"

	"TaskTracker/Models"
	"TaskTracker/Storage"
	"TaskTracker/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PersonalTaskController manages an employee's private ad hoc tasks.
// Every operation is scoped to the owner; managers get no write access.
type PersonalTaskController struct {
	DB *gorm.DB
}

func NewPersonalTaskController(db *gorm.DB) *PersonalTaskController {
	return &PersonalTaskController{DB: db}
}

type PersonalTaskInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Instructions  string `json:"instructions" validate:"max=2000"`
	RequiresPhoto bool   `json:"requiresPhoto"`
	IsRecurring   bool   `json:"isRecurring"`
}

// GetPersonalTasks lists the caller's personal tasks.
func (pc *PersonalTaskController) GetPersonalTasks(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	var tasks []Models.PersonalTask
	if err := pc.DB.Where("created_by = ?", user.ID).Find(&tasks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve personal tasks"})
	}
	return ctx.JSON(tasks)
}

// CreatePersonalTask adds a personal task owned by the caller.
func (pc *PersonalTaskController) CreatePersonalTask(ctx *fiber.Ctx) error {
	var input PersonalTaskInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": translateErrors(err)})
	}

	task := Models.PersonalTask{
		Title:         input.Title,
		Instructions:  input.Instructions,
		RequiresPhoto: input.RequiresPhoto,
		IsRecurring:   input.IsRecurring,
		CreatedBy:     middleware.CurrentUser(ctx).ID,
		CreatedAt:     time.Now(),
		Status:        Models.PersonalPending,
	}
	if err := pc.DB.Create(&task).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create personal task"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(task)
}

// ownTask loads a personal task and checks it belongs to the caller.
func (pc *PersonalTaskController) ownTask(ctx *fiber.Ctx) (*Models.PersonalTask, error) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return nil, ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	var task Models.PersonalTask
	if err := pc.DB.First(&task, id).Error; err != nil {
		return nil, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Personal task not found"})
	}
	if task.CreatedBy != middleware.CurrentUser(ctx).ID {
		return nil, ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your task"})
	}
	return &task, nil
}

// UpdatePersonalTask edits title/instructions/flags.
func (pc *PersonalTaskController) UpdatePersonalTask(ctx *fiber.Ctx) error {
	task, err := pc.ownTask(ctx)
	if task == nil {
		return err
	}

	var input PersonalTaskInput
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
		"is_recurring":   input.IsRecurring,
	}
	if err := pc.DB.Model(task).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update personal task"})
	}
	return ctx.JSON(task)
}

// DeletePersonalTask removes a personal task entirely.
func (pc *PersonalTaskController) DeletePersonalTask(ctx *fiber.Ctx) error {
	task, err := pc.ownTask(ctx)
	if task == nil {
		return err
	}
	if err := pc.DB.Delete(task).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete personal task"})
	}
	return ctx.JSON(fiber.Map{"message": "Personal task deleted successfully"})
}

// CompletePersonalTask marks the task completed, uploading an optional
// proof photo first. An upload failure aborts the completion.
func (pc *PersonalTaskController) CompletePersonalTask(ctx *fiber.Ctx) error {
	task, err := pc.ownTask(ctx)
	if task == nil {
		return err
	}

	user := middleware.CurrentUser(ctx)
	today := Models.Today(Models.Location())

	photoURL := ""
	if file, err := ctx.FormFile("photo"); err == nil && file != nil {
		key := Storage.PersonalPhotoKey(user.ID, today, task.ID)
		photoURL, err = Storage.UploadPhoto(key, file)
		if err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
	} else if task.RequiresPhoto && task.PhotoURL == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This task requires photo proof"})
	}

	if photoURL == "" {
		photoURL = task.PhotoURL
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":       Models.PersonalCompleted,
		"completed_at": now,
		"photo_url":    photoURL,
	}
	if err := pc.DB.Model(task).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete task"})
	}
	task.Status = Models.PersonalCompleted
	task.CompletedAt = &now
	task.PhotoURL = photoURL

	return ctx.JSON(task)
}

// UncompletePersonalTask reverts a task to pending, clearing its
// completion fields.
func (pc *PersonalTaskController) UncompletePersonalTask(ctx *fiber.Ctx) error {
	task, err := pc.ownTask(ctx)
	if task == nil {
		return err
	}

	updates := map[string]interface{}{
		"status":       Models.PersonalPending,
		"completed_at": nil,
		"photo_url":    "",
	}
	if err := pc.DB.Model(task).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update task"})
	}
	task.Status = Models.PersonalPending
	task.CompletedAt = nil
	task.PhotoURL = ""

	return ctx.JSON(task)
}
