package Controllers

import (
	"sync"

	"TaskTracker/Models"

	"gorm.io/gorm"
)

// templateFetchChunk bounds the size of an IN-set lookup. Matches the
// per-query set-size limit of the original document store.
const templateFetchChunk = 10

// TaskTemplateCache is a process-wide read-through cache of task templates.
// Templates change rarely and only through the manager endpoints, which
// invalidate on every write, so entries never expire on their own.
type TaskTemplateCache struct {
	mu    sync.RWMutex
	tasks map[uint]Models.Task
}

// TemplateCache is the shared instance used by the task-list joins.
var TemplateCache = NewTaskTemplateCache()

func NewTaskTemplateCache() *TaskTemplateCache {
	return &TaskTemplateCache{tasks: make(map[uint]Models.Task)}
}

// Fetch returns templates for ids, reading misses from the database in
// chunked IN-set queries. Ids that resolve to nothing are simply absent
// from the result; callers drop the referencing record.
func (c *TaskTemplateCache) Fetch(db *gorm.DB, ids []uint) (map[uint]Models.Task, error) {
	result := make(map[uint]Models.Task, len(ids))
	var missing []uint
	seen := make(map[uint]bool, len(ids))

	c.mu.RLock()
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if task, ok := c.tasks[id]; ok {
			result[id] = task
		} else {
			missing = append(missing, id)
		}
	}
	c.mu.RUnlock()

	for start := 0; start < len(missing); start += templateFetchChunk {
		end := start + templateFetchChunk
		if end > len(missing) {
			end = len(missing)
		}
		var tasks []Models.Task
		if err := db.Where("id IN ?", missing[start:end]).Find(&tasks).Error; err != nil {
			return nil, err
		}
		c.mu.Lock()
		for _, task := range tasks {
			c.tasks[task.ID] = task
			result[task.ID] = task
		}
		c.mu.Unlock()
	}

	return result, nil
}

// Invalidate drops one template. Called on every template update or delete.
func (c *TaskTemplateCache) Invalidate(id uint) {
	c.mu.Lock()
	delete(c.tasks, id)
	c.mu.Unlock()
}

// Clear empties the cache. Used by tests.
func (c *TaskTemplateCache) Clear() {
	c.mu.Lock()
	c.tasks = make(map[uint]Models.Task)
	c.mu.Unlock()
}

// Len reports how many templates are cached.
func (c *TaskTemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}
