package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"muadil/config"
	"muadil/handlers"
	"muadil/harvest"
	"muadil/middleware"
	"muadil/pipeline"
	"muadil/scraper"
	"muadil/serper"
	"muadil/specs"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.SerperAPIKey == "" {
		log.Fatal("SERPER_API_KEY is required")
	}

	// Page fetcher: static HTTP, with an optional headless-browser fallback
	// for bot-walled retailers.
	var fetcher scraper.Fetcher
	static := scraper.NewStaticFetcher(cfg.FetchTimeout)
	var hybrid *scraper.HybridFetcher
	if cfg.BrowserFetchEnabled {
		browser, err := scraper.NewBrowserFetcher()
		if err != nil {
			log.Printf("⚠️ Browser fetcher unavailable, static only: %v", err)
			fetcher = static
		} else {
			hybrid = scraper.NewHybridFetcher(static, browser)
			fetcher = hybrid
			defer hybrid.Close()
			log.Println("🌐 Browser fallback enabled for bot-walled pages")
		}
	} else {
		fetcher = static
	}

	searchClient := serper.NewClient(cfg.SerperAPIKey, cfg.FetchTimeout)

	var oracle specs.Oracle
	if cfg.OracleEnabled() {
		oracle = specs.NewOpenAIOracle(cfg.OracleAPIKey, cfg.OracleBaseURL, cfg.OracleModel)
		log.Printf("🧠 Spec oracle enabled (model %s)", cfg.OracleModel)
	}

	harvester := harvest.NewHarvester(searchClient, fetcher, cfg.FetchWorkers)
	enricher := specs.NewEnricher(fetcher, oracle)
	searcher := pipeline.NewSearcher(harvester, fetcher, enricher, cfg.FetchWorkers)

	h := handlers.NewHandlers(searcher, cfg.FetchWorkers)
	defer h.Close()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/search", h.Search).Methods("GET")
	apiV1.HandleFunc("/search-async", h.SearchAsync).Methods("POST")
	apiV1.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTask).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("📋 API:")
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /api/v1/search?q=... - Synchronous search")
	log.Printf("   POST /api/v1/search-async - Queue a search task")
	log.Printf("   GET  /api/v1/tasks/{taskId} - Task status")
	log.Printf("   GET  /api/v1/tasks/stats - Task manager stats")

	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}
