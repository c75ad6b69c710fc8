package FiberConfig

import (
	"log"
	"os"

	"TaskTracker/Controllers"
	"TaskTracker/CronJobs"
	"TaskTracker/Models"
	"TaskTracker/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, resetter *CronJobs.TaskResetter) {
	// Initialize handlers
	taskController := Controllers.NewTaskController(db)
	assignmentController := Controllers.NewAssignmentController(db)
	dailyTaskController := Controllers.NewDailyTaskController(db)
	dashboardController := Controllers.NewDashboardController(db)
	historyController := Controllers.NewHistoryController(db)
	personalTaskController := Controllers.NewPersonalTaskController(db)
	reportController := Controllers.NewReportController(db)
	resetController := Controllers.NewResetController(resetter)

	api := app.Group("/api")

	// Auth
	api.Post("/Register", Controllers.Register)
	api.Post("/Login", Controllers.Login)
	api.Post("/Logout", middleware.Verify(), Controllers.Logout)
	api.Get("/User", middleware.Verify(), Controllers.User)
	api.Get("/validate-token", middleware.Verify(), Controllers.ValidateToken)

	// Task catalog: read-shared with employees, writes manager-only
	tasks := api.Group("/tasks")
	tasks.Get("/", middleware.Verify(), taskController.GetTasks)
	tasks.Get("/:id", middleware.Verify(), taskController.GetTask)
	tasks.Post("/", middleware.Verify(Models.RoleManager), taskController.CreateTask)
	tasks.Put("/:id", middleware.Verify(Models.RoleManager), taskController.UpdateTask)
	tasks.Delete("/:id", middleware.Verify(Models.RoleManager), taskController.DeleteTask)

	// Assignment ledger
	assignments := api.Group("/assignments")
	assignments.Get("/", middleware.Verify(), assignmentController.GetAssignments)
	assignments.Post("/", middleware.Verify(Models.RoleManager), assignmentController.CreateAssignment)
	assignments.Delete("/:id", middleware.Verify(Models.RoleManager), assignmentController.DeleteAssignment)

	// Employee daily view and completion
	daily := api.Group("/daily", middleware.Verify())
	daily.Get("/tasks", dailyTaskController.GetDailyTasks)
	daily.Post("/tasks/:assignedTaskId/complete", dailyTaskController.CompleteTask)

	// Manager dashboard
	api.Get("/dashboard/employees", middleware.Verify(Models.RoleManager), dashboardController.GetEmployees)

	// History and calendar heatmap
	history := api.Group("/history", middleware.Verify())
	history.Get("/", historyController.GetHistory)
	history.Get("/calendar", historyController.GetCalendar)

	// Personal tasks, owner-scoped
	personal := api.Group("/personal/tasks", middleware.Verify())
	personal.Get("/", personalTaskController.GetPersonalTasks)
	personal.Post("/", personalTaskController.CreatePersonalTask)
	personal.Put("/:id", personalTaskController.UpdatePersonalTask)
	personal.Delete("/:id", personalTaskController.DeletePersonalTask)
	personal.Post("/:id/complete", personalTaskController.CompletePersonalTask)
	personal.Post("/:id/uncomplete", personalTaskController.UncompletePersonalTask)

	// Reports
	api.Get("/reports/completions", middleware.Verify(Models.RoleManager), reportController.GetCompletionReport)

	// Manual reset trigger; the handler enforces POST-only with a plain 405
	app.All("/api/reset/daily-tasks", resetController.ManualReset)
}

func FiberConfig(resetter *CronJobs.TaskResetter) {
	log.Println("Server Up...")
	engine := html.New("./Templates", ".html")
	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB, resetter)

	// Status page
	app.Get("/", func(c *fiber.Ctx) error {
		var userCount, taskCount, assignmentCount int64
		Models.DB.Model(&Models.User{}).Count(&userCount)
		Models.DB.Model(&Models.Task{}).Count(&taskCount)
		Models.DB.Model(&Models.AssignedTask{}).Count(&assignmentCount)

		var lastReset Models.ResetRun
		lastResetDate := "never"
		if err := Models.DB.Order("ran_at DESC").First(&lastReset).Error; err == nil {
			lastResetDate = lastReset.TargetDate
		}

		return c.Render("status", fiber.Map{
			"Users":       userCount,
			"Tasks":       taskCount,
			"Assignments": assignmentCount,
			"LastReset":   lastResetDate,
		})
	})

	app.Static("/static", "static/")

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
