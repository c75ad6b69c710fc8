package Controllers

import (
	"testing"
	"time"

	"TaskTracker/Models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	TemplateCache.Clear()
	t.Cleanup(TemplateCache.Clear)
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) Models.User {
	t.Helper()
	user := Models.User{
		Email:       email,
		DisplayName: Models.DeriveDisplayName(email),
		Role:        role,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTask(t *testing.T, db *gorm.DB, title string, requiresPhoto bool, createdBy uint) Models.Task {
	t.Helper()
	task := Models.Task{
		Title:         title,
		RequiresPhoto: requiresPhoto,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func assign(t *testing.T, db *gorm.DB, task Models.Task, user Models.User, by uint) Models.AssignedTask {
	t.Helper()
	assignment := Models.AssignedTask{
		TaskID:     task.ID,
		UserID:     user.ID,
		AssignedBy: by,
		AssignedAt: time.Now(),
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func completeOn(t *testing.T, db *gorm.DB, assignment Models.AssignedTask, date string, at time.Time, photoURL string) Models.DailyTaskStatus {
	t.Helper()
	status := Models.DailyTaskStatus{
		AssignedTaskID: assignment.ID,
		UserID:         assignment.UserID,
		Date:           date,
		IsCompleted:    true,
		CompletedAt:    &at,
		PhotoURL:       photoURL,
	}
	require.NoError(t, db.Create(&status).Error)
	return status
}
