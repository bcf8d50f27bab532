package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// TaskStatus represents the status of an async search task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// SearchTask represents an async product search task
type SearchTask struct {
	ID          string          `json:"id"`
	Query       string          `json:"query"`
	Category    Category        `json:"category"`
	Strict      bool            `json:"strict"`
	Status      TaskStatus      `json:"status"`
	Progress    int             `json:"progress"` // 0-100
	Message     string          `json:"message"`
	Result      *SearchResponse `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewSearchTask creates a queued search task
func NewSearchTask(query string, category Category, strict bool) *SearchTask {
	return &SearchTask{
		ID:        generateTaskID(),
		Query:     query,
		Category:  category,
		Strict:    strict,
		Status:    TaskStatusQueued,
		Message:   "Task queued for processing",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing
func (t *SearchTask) Start() {
	t.Status = TaskStatusProcessing
	t.Progress = 0
	t.Message = "Starting product search..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with its result
func (t *SearchTask) Complete(result *SearchResponse) {
	t.Status = TaskStatusCompleted
	t.Progress = 100
	t.Message = "Search completed"
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed
func (t *SearchTask) Fail(reason string) {
	t.Status = TaskStatusFailed
	t.Message = "Search failed"
	t.Error = reason
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *SearchTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still queued or running
func (t *SearchTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns how long the task has been running
func (t *SearchTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if t.CompletedAt != nil {
		end = *t.CompletedAt
	}
	return end.Sub(*t.StartedAt)
}

func generateTaskID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "task_" + time.Now().Format("20060102150405") + "_" + hex.EncodeToString(b)
}
