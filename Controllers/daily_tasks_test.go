package Controllers

import (
	"testing"
	"time"

	"TaskTracker/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailyTaskListOneEntryPerAssignment(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)

	sweep := createTask(t, db, "Sweep floor", true, manager.ID)
	lock := createTask(t, db, "Lock doors", false, manager.ID)
	aSweep := assign(t, db, sweep, employee, manager.ID)
	assign(t, db, lock, employee, manager.ID)

	today := Models.Today(Models.Location())
	entries, err := BuildDailyTaskList(db, employee.ID, today)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// No status was recorded yet, so every entry's status is nil.
	for _, entry := range entries {
		assert.Nil(t, entry.Status)
	}

	completeOn(t, db, aSweep, today, time.Now(), "")
	entries, err = BuildDailyTaskList(db, employee.ID, today)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		if entry.AssignedTaskID == aSweep.ID {
			require.NotNil(t, entry.Status)
			assert.True(t, entry.Status.IsCompleted)
		} else {
			assert.Nil(t, entry.Status)
		}
	}
}

func TestBuildDailyTaskListDropsDanglingTemplates(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)

	kept := createTask(t, db, "Kept", false, manager.ID)
	doomed := createTask(t, db, "Doomed", false, manager.ID)
	assign(t, db, kept, employee, manager.ID)
	assign(t, db, doomed, employee, manager.ID)

	require.NoError(t, db.Delete(&Models.Task{}, doomed.ID).Error)

	entries, err := BuildDailyTaskList(db, employee.ID, Models.Today(Models.Location()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kept", entries[0].Task.Title)
}

func TestBuildDailyTaskListStatusOnlyForMatchingDate(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)

	task := createTask(t, db, "Count register", false, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)
	completeOn(t, db, assignment, "2026-08-01", time.Now(), "")

	entries, err := BuildDailyTaskList(db, employee.ID, "2026-08-02")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Status)

	entries, err = BuildDailyTaskList(db, employee.ID, "2026-08-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Status)
}

func TestBuildDailyTaskListToleratesDuplicateStatusRows(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)

	task := createTask(t, db, "Restock shelves", false, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)

	// Two rows for the same (assignment, date), as a duplicate-write race
	// or reset rerun would leave behind.
	completeOn(t, db, assignment, "2026-08-30", time.Now(), "")
	completeOn(t, db, assignment, "2026-08-30", time.Now(), "")

	entries, err := BuildDailyTaskList(db, employee.ID, "2026-08-30")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Status)
}

func TestUpsertCompletionCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)
	task := createTask(t, db, "Sweep floor", true, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)

	status, created, err := UpsertCompletion(db, assignment.ID, employee.ID, "2026-08-30", "https://photos/1.jpg")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, status.IsCompleted)
	assert.Equal(t, "https://photos/1.jpg", status.PhotoURL)
	require.NotNil(t, status.CompletedAt)

	// Completing again without a photo keeps the first one.
	again, created, err := UpsertCompletion(db, assignment.ID, employee.ID, "2026-08-30", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, status.ID, again.ID)
	assert.Equal(t, "https://photos/1.jpg", again.PhotoURL)

	// A new photo replaces the stored one.
	again, _, err = UpsertCompletion(db, assignment.ID, employee.ID, "2026-08-30", "https://photos/2.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://photos/2.jpg", again.PhotoURL)

	var count int64
	db.Model(&Models.DailyTaskStatus{}).
		Where("assigned_task_id = ? AND date = ?", assignment.ID, "2026-08-30").
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertCompletionFillsBlankFromReset(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)
	task := createTask(t, db, "Sweep floor", false, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)

	blank := Models.DailyTaskStatus{
		AssignedTaskID: assignment.ID,
		UserID:         employee.ID,
		Date:           "2026-08-30",
	}
	require.NoError(t, db.Create(&blank).Error)

	status, created, err := UpsertCompletion(db, assignment.ID, employee.ID, "2026-08-30", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, blank.ID, status.ID)
	assert.True(t, status.IsCompleted)
}
