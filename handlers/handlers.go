package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"muadil/models"
	"muadil/pipeline"
	"muadil/scheduler"
)

// searchTimeout bounds a single synchronous search end to end.
const searchTimeout = 90 * time.Second

type Handlers struct {
	searcher    *pipeline.Searcher
	taskManager *scheduler.TaskManager
}

func NewHandlers(searcher *pipeline.Searcher, workers int) *Handlers {
	h := &Handlers{searcher: searcher}
	h.taskManager = scheduler.NewTaskManager(searcher.Search, workers)
	return h
}

// Close stops background workers.
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "muadil",
		"version":   "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// Search runs a synchronous product search. An empty result set is a
// 200 with a message, not an error.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := parseSearchRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchTimeout)
	defer cancel()

	result, err := h.searcher.Search(ctx, req)
	if err != nil {
		log.Printf("❌ Search failed for %q: %v", req.Query, err)
		writeError(w, http.StatusBadGateway, "Search backend failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SearchAsync queues a search task and returns its ID right away.
func (h *Handlers) SearchAsync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query    string `json:"query"`
		Category string `json:"category"`
		Strict   *bool  `json:"strict"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	strict := true
	if body.Strict != nil {
		strict = *body.Strict
	}

	category := models.CategoryMouse
	if body.Category != "" {
		parsed, ok := models.ParseCategory(body.Category)
		if !ok {
			writeError(w, http.StatusBadRequest, "unsupported category")
			return
		}
		category = parsed
	}
	task := h.taskManager.SubmitTask(body.Query, category, strict)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTask returns the state of an async search task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats returns task manager statistics.
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.taskManager.GetStats())
}

func parseSearchRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, bool) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return pipeline.Request{}, false
	}

	strict := true
	if v := q.Get("strict"); v == "0" || v == "false" {
		strict = false
	}

	category := models.CategoryMouse
	if raw := q.Get("category"); raw != "" {
		parsed, ok := models.ParseCategory(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unsupported category")
			return pipeline.Request{}, false
		}
		category = parsed
	}
	return pipeline.Request{
		Query:            query,
		Category:         category,
		StrictRegionOnly: strict,
		Debug:            q.Get("debug") == "1",
	}, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
