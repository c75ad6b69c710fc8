package Controllers

import (
	"fmt"
	"testing"

	"TaskTracker/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCacheReadThrough(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	task := createTask(t, db, "Sweep floor", false, manager.ID)

	cache := NewTaskTemplateCache()

	got, err := cache.Fetch(db, []uint{task.ID})
	require.NoError(t, err)
	require.Contains(t, got, task.ID)
	assert.Equal(t, "Sweep floor", got[task.ID].Title)
	assert.Equal(t, 1, cache.Len())

	// A second fetch is served from the cache; deleting the row behind its
	// back proves no query runs.
	require.NoError(t, db.Delete(&Models.Task{}, task.ID).Error)
	got, err = cache.Fetch(db, []uint{task.ID})
	require.NoError(t, err)
	assert.Contains(t, got, task.ID)
}

func TestTemplateCacheInvalidate(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)
	task := createTask(t, db, "Old title", false, manager.ID)

	cache := NewTaskTemplateCache()
	_, err := cache.Fetch(db, []uint{task.ID})
	require.NoError(t, err)

	require.NoError(t, db.Model(&task).Update("title", "New title").Error)
	cache.Invalidate(task.ID)

	got, err := cache.Fetch(db, []uint{task.ID})
	require.NoError(t, err)
	assert.Equal(t, "New title", got[task.ID].Title)
}

func TestTemplateCacheMissingIDsAreAbsent(t *testing.T) {
	db := newTestDB(t)

	cache := NewTaskTemplateCache()
	got, err := cache.Fetch(db, []uint{42})
	require.NoError(t, err)
	assert.NotContains(t, got, uint(42))
	assert.Equal(t, 0, cache.Len())
}

func TestTemplateCacheFetchPastChunkLimit(t *testing.T) {
	db := newTestDB(t)
	manager := createUser(t, db, "boss@example.com", Models.RoleManager)

	var ids []uint
	for i := 0; i < templateFetchChunk*2+3; i++ {
		task := createTask(t, db, fmt.Sprintf("Task %d", i), false, manager.ID)
		ids = append(ids, task.ID)
	}
	// Duplicate ids must not produce duplicate lookups or entries.
	ids = append(ids, ids[0], ids[1])

	cache := NewTaskTemplateCache()
	got, err := cache.Fetch(db, ids)
	require.NoError(t, err)
	assert.Len(t, got, templateFetchChunk*2+3)
	assert.Equal(t, templateFetchChunk*2+3, cache.Len())
}
