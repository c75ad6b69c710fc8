package Controllers

import (
	"fmt"
	"testing"
	"time"

	"TaskTracker/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntensityLevel(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		monthMax int
		want     int
	}{
		{"zero count is level zero", 0, 10, 0},
		{"identity mapping below small max", 3, 3, 3},
		{"four of four maps to four", 4, 4, 4},
		{"one in a light month", 1, 2, 1},
		{"scaled when max exceeds four", 5, 10, 2},
		{"peak day always reaches four", 10, 10, 4},
		{"single completion in a heavy month still shows", 1, 25, 1},
		{"rounding goes up", 3, 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, intensityLevel(tt.count, tt.monthMax))
		})
	}
}

func TestBuildCompletionCalendar(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)
	task := createTask(t, db, "Sweep floor", false, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)

	// Three completions on one recent day, one on another.
	now := time.Now()
	threeDay := now.AddDate(0, 0, -2).Format(Models.DateLayout)
	oneDay := now.AddDate(0, 0, -3).Format(Models.DateLayout)
	for i := 0; i < 3; i++ {
		completeOn(t, db, assignment, threeDay, now, "")
	}
	completeOn(t, db, assignment, oneDay, now, "")

	calendar, err := BuildCompletionCalendar(db, employee.ID, 2)
	require.NoError(t, err)

	byDate := map[string]CalendarData{}
	for _, cells := range calendar {
		for _, cell := range cells {
			byDate[cell.Date] = cell
		}
	}

	// Month max is 3 (<= 4), so levels map directly to counts.
	assert.Equal(t, 3, byDate[threeDay].Count)
	assert.Equal(t, 3, byDate[threeDay].Level)
	assert.Equal(t, 1, byDate[oneDay].Count)
	assert.Equal(t, 1, byDate[oneDay].Level)

	// Every day of a month with data gets a cell, most of them empty.
	monthKey := threeDay[:7]
	require.NotEmpty(t, calendar[monthKey])
	assert.GreaterOrEqual(t, len(calendar[monthKey]), 28)
}

func TestBuildCompletionCalendarScalesHeavyMonths(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)
	task := createTask(t, db, "Sweep floor", false, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)

	now := time.Now()
	peakDay := now.AddDate(0, 0, -1).Format(Models.DateLayout)
	midDay := now.AddDate(0, 0, -2).Format(Models.DateLayout)
	for i := 0; i < 10; i++ {
		completeOn(t, db, assignment, peakDay, now, "")
	}
	for i := 0; i < 5; i++ {
		completeOn(t, db, assignment, midDay, now, "")
	}

	// Both days land in the same month only most of the time; skip the
	// boundary case rather than fake it.
	if peakDay[:7] != midDay[:7] {
		t.Skip("days straddle a month boundary")
	}

	calendar, err := BuildCompletionCalendar(db, employee.ID, 1)
	require.NoError(t, err)

	byDate := map[string]CalendarData{}
	for _, cell := range calendar[peakDay[:7]] {
		byDate[cell.Date] = cell
	}
	assert.Equal(t, 4, byDate[peakDay].Level)
	assert.Equal(t, 2, byDate[midDay].Level)
}

func TestBuildTaskHistoryGroupsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)
	task := createTask(t, db, "Sweep floor", false, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)

	now := time.Now()
	for _, daysAgo := range []int{1, 2, 10} {
		at := now.AddDate(0, 0, -daysAgo)
		completeOn(t, db, assignment, at.Format(Models.DateLayout), at, "")
	}

	history, err := BuildTaskHistory(db, employee.ID, 3)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	// Days inside each month are newest first.
	for _, month := range history {
		for i := 1; i < len(month.Days); i++ {
			assert.Greater(t, month.Days[i-1].Date, month.Days[i].Date)
		}
		for _, day := range month.Days {
			require.NotEmpty(t, day.Tasks)
			for _, item := range day.Tasks {
				assert.Equal(t, "Sweep floor", item.Task.Title)
			}
		}
	}

	// The newest month comes first.
	first := history[0]
	require.NotEmpty(t, first.Days)
	assert.Equal(t, now.AddDate(0, 0, -1).Format(Models.DateLayout), first.Days[0].Date)
}

func TestHistoryDisplayDateIncludesYear(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)
	task := createTask(t, db, "Sweep floor", false, manager.ID)
	assignment := assign(t, db, task, employee, manager.ID)

	at := time.Now().AddDate(0, 0, -1)
	completeOn(t, db, assignment, at.Format(Models.DateLayout), at, "")

	history, err := BuildTaskHistory(db, employee.ID, 3)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	require.NotEmpty(t, history[0].Days)

	day := history[0].Days[0]
	want := dayStart(day.Date).Format("Monday, January 2, 2006")
	assert.Equal(t, want, day.DisplayDate)
	assert.Contains(t, day.DisplayDate, dayStart(day.Date).Format("2006"))
}

func TestBuildTaskHistoryIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)

	now := time.Now()
	for i := 0; i < 4; i++ {
		task := createTask(t, db, fmt.Sprintf("Task %d", i), false, manager.ID)
		assignment := assign(t, db, task, employee, manager.ID)
		at := now.AddDate(0, 0, -i)
		completeOn(t, db, assignment, at.Format(Models.DateLayout), at, "")
	}

	first, err := BuildTaskHistory(db, employee.ID, 2)
	require.NoError(t, err)
	second, err := BuildTaskHistory(db, employee.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildTaskHistoryDropsBrokenChains(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	employee := createUser(t, db, "worker@example.com", Models.RoleEmployee)

	good := createTask(t, db, "Good", false, manager.ID)
	goodAssignment := assign(t, db, good, employee, manager.ID)

	doomed := createTask(t, db, "Doomed", false, manager.ID)
	doomedAssignment := assign(t, db, doomed, employee, manager.ID)

	now := time.Now()
	today := now.Format(Models.DateLayout)
	completeOn(t, db, goodAssignment, today, now, "")
	completeOn(t, db, doomedAssignment, today, now, "")

	// Orphan status: its assignment never existed.
	orphan := Models.DailyTaskStatus{
		AssignedTaskID: 9999,
		UserID:         employee.ID,
		Date:           today,
		IsCompleted:    true,
		CompletedAt:    &now,
	}
	require.NoError(t, db.Create(&orphan).Error)

	// Break the second chain at the template link.
	require.NoError(t, db.Delete(&Models.Task{}, doomed.ID).Error)

	history, err := BuildTaskHistory(db, employee.ID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].Days, 1)
	require.Len(t, history[0].Days[0].Tasks, 1)
	assert.Equal(t, "Good", history[0].Days[0].Tasks[0].Task.Title)
}
