package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muadil/harvest"
	"muadil/models"
	"muadil/pipeline"
	"muadil/scraper"
	"muadil/specs"
)

type emptyProvider struct{}

func (emptyProvider) Shopping(context.Context, string, int) ([]models.CandidateLink, error) {
	return nil, nil
}
func (emptyProvider) Web(context.Context, string, int) ([]models.CandidateLink, error) {
	return nil, nil
}

type emptyFetcher struct{}

func (emptyFetcher) Fetch(context.Context, string) (*scraper.FetchResult, error) {
	return &scraper.FetchResult{Status: 200}, nil
}

func newTestHandlers() *Handlers {
	h := harvest.NewHarvester(emptyProvider{}, emptyFetcher{}, 1)
	e := specs.NewEnricher(emptyFetcher{}, nil)
	searcher := pipeline.NewSearcher(h, emptyFetcher{}, e, 1)
	return NewHandlers(searcher, 1)
}

func newRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/search", h.Search).Methods("GET")
	api.HandleFunc("/search-async", h.SearchAsync).Methods("POST")
	api.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	api.HandleFunc("/tasks/{taskId}", h.GetTask).Methods("GET")
	return r
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSearchRequiresQuery(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEmptyResultIsHTTPSuccess(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/search?q=kablosuz+mouse&category=mouse", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Message)
	assert.Empty(t, resp.Products)
}

func TestSearchRejectsUnknownCategory(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/search?q=mouse&category=webcam", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMissingCategoryDefaultsToMouse(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/search?q=kablosuz+mouse", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.CategoryMouse, resp.Category)
}

func TestSearchAsyncLifecycle(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()
	router := newRouter(h)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/search-async",
		strings.NewReader(`{"query":"kablosuz mouse","category":"mouse"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var task models.SearchTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	require.NotEmpty(t, task.ID)

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/tasks/"+task.ID, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		var got models.SearchTask
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			return false
		}
		return got.Status == models.TaskStatusCompleted
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSearchAsyncRequiresQuery(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/search-async", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchAsyncRejectsUnknownCategory(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/search-async",
		strings.NewReader(`{"query":"mouse","category":"webcam"}`))
	newRouter(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchAsyncMissingCategoryDefaultsToMouse(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/search-async",
		strings.NewReader(`{"query":"kablosuz mouse"}`))
	newRouter(h).ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var task models.SearchTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, models.CategoryMouse, task.Category)
}

func TestGetTaskNotFound(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/tasks/task_missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTaskStats(t *testing.T) {
	h := newTestHandlers()
	defer h.Close()

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/tasks/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
