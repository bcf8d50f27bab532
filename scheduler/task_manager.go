package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"muadil/models"
	"muadil/pipeline"
)

// taskMaxAge is how long completed tasks stay queryable before the
// cleanup sweep removes them.
const taskMaxAge = time.Hour

// SearchFunc runs a search request to completion.
type SearchFunc func(ctx context.Context, req pipeline.Request) (*models.SearchResponse, error)

// TaskManager runs async search tasks on a fixed worker pool and sweeps
// out stale results on a cron schedule.
type TaskManager struct {
	tasks      map[string]*models.SearchTask
	taskQueue  chan *models.SearchTask
	searchFunc SearchFunc
	cron       *cron.Cron
	mutex      sync.RWMutex
	cancel     context.CancelFunc
}

// NewTaskManager creates a task manager with the given worker count and
// starts its workers and the hourly cleanup sweep.
func NewTaskManager(searchFunc SearchFunc, workers int) *TaskManager {
	if workers < 1 {
		workers = 2
	}
	ctx, cancel := context.WithCancel(context.Background())
	tm := &TaskManager{
		tasks:      make(map[string]*models.SearchTask),
		taskQueue:  make(chan *models.SearchTask, 100),
		searchFunc: searchFunc,
		cron:       cron.New(),
		cancel:     cancel,
	}

	for i := 0; i < workers; i++ {
		go tm.worker(ctx)
	}
	tm.cron.AddFunc("@every 1h", func() { tm.CleanupOldTasks(taskMaxAge) })
	tm.cron.Start()

	log.Printf("🚀 Task manager started with %d workers", workers)
	return tm
}

// SubmitTask queues a new async search. A full queue fails the task
// immediately instead of blocking the caller.
func (tm *TaskManager) SubmitTask(query string, category models.Category, strict bool) *models.SearchTask {
	task := models.NewSearchTask(query, category, strict)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("📝 Task %s submitted for query %q", task.ID, query)
	default:
		task.Fail("Task queue is full")
		log.Printf("❌ Failed to submit task %s - queue full", task.ID)
	}

	return task
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.SearchTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// CleanupOldTasks removes completed tasks older than maxAge.
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
			log.Printf("🧹 Cleaned up old task: %s", taskID)
		}
	}
}

func (tm *TaskManager) worker(ctx context.Context) {
	for {
		select {
		case task := <-tm.taskQueue:
			tm.run(ctx, task)
		case <-ctx.Done():
			return
		}
	}
}

func (tm *TaskManager) run(ctx context.Context, task *models.SearchTask) {
	log.Printf("👷 Worker processing task %s (%q)", task.ID, task.Query)
	task.Start()

	result, err := tm.searchFunc(ctx, pipeline.Request{
		Query:            task.Query,
		Category:         task.Category,
		StrictRegionOnly: task.Strict,
	})
	if err != nil {
		task.Fail("Search failed: " + err.Error())
		log.Printf("❌ Task %s failed: %v", task.ID, err)
		return
	}

	task.Complete(result)
	log.Printf("✅ Task %s completed in %v", task.ID, task.Duration())
}

// Stop stops the workers and the cleanup schedule.
func (tm *TaskManager) Stop() {
	tm.cron.Stop()
	tm.cancel()
	log.Println("🛑 Task manager stopped")
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	stats := map[string]interface{}{
		"total_tasks": len(tm.tasks),
		"queue_size":  len(tm.taskQueue),
	}

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Status)]++
	}
	stats["tasks_by_status"] = statusCounts

	return stats
}
