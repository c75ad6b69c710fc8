package Controllers

import (
	"fmt"

	"TaskTracker/CronJobs"

	"github.com/gofiber/fiber/v2"
)

// ResetController exposes the on-demand reset trigger.
type ResetController struct {
	Resetter *CronJobs.TaskResetter
}

func NewResetController(resetter *CronJobs.TaskResetter) *ResetController {
	return &ResetController{Resetter: resetter}
}

// ManualReset reruns the reset for today. POST only; responses are plain
// text: a summary count on success, the error on failure.
func (rc *ResetController) ManualReset(ctx *fiber.Ctx) error {
	if ctx.Method() != fiber.MethodPost {
		return ctx.Status(fiber.StatusMethodNotAllowed).SendString("Method Not Allowed")
	}

	result, err := rc.Resetter.RunManual()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).
			SendString(fmt.Sprintf("Internal Server Error: %v", err))
	}

	return ctx.SendString(fmt.Sprintf("Successfully reset %d assigned tasks and %d personal tasks for %s",
		result.AssignedCount, result.PersonalCount, result.TargetDate))
}
