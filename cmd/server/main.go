package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deepdive/interview/internal/classify"
	"deepdive/interview/internal/config"
	"deepdive/interview/internal/gateway"
	"deepdive/interview/internal/handlers"
	"deepdive/interview/internal/interview"
	"deepdive/interview/internal/jobs"
	"deepdive/interview/internal/llm"
	_ "deepdive/interview/internal/llm/gemini"
	_ "deepdive/interview/internal/llm/openai"
	"deepdive/interview/internal/prompts"
	"deepdive/interview/internal/routers"
	"deepdive/interview/internal/store"
	"deepdive/interview/internal/summary"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, topicHandler *handlers.TopicHandler, interviewHandler *handlers.InterviewHandler, summaryHandler *handlers.SummaryHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.TopicRoutes(router, topicHandler)
	routers.InterviewRoutes(router, interviewHandler, summaryHandler)
}

// Helper for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Bool("generation_enabled", cfg.Gateway.Enabled))

	// prompt templates
	promptManager, err := prompts.NewManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt templates", zap.Error(err))
	}

	// Generation provider based on configuration. A failed provider does not
	// stop the service: the gateway degrades and every classifier falls back
	// to its deterministic default.
	provider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Warn("Generation provider unavailable, running degraded", zap.Error(err))
		provider = nil
	}
	gw := gateway.New(provider, cfg.Gateway, logger)

	db, err := initDatabase()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	classifier := classify.New(gw, promptManager, classify.NewSeededPicker(time.Now().UnixNano()), logger)
	assembler := summary.NewAssembler(st, gw, classifier, promptManager, logger)
	engine := interview.NewEngine(st, classifier, assembler, logger)

	topicHandler := handlers.NewTopicHandler(st, logger)
	interviewHandler := handlers.NewInterviewHandler(engine, logger)
	summaryHandler := handlers.NewSummaryHandler(st, logger)
	healthHandler := handlers.NewHealthHandler(gw, promptManager, cfg)

	// scheduled summary export
	exporterConfig := &jobs.ExporterConfig{
		Schedule:      getEnv("SUMMARY_EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:     getEnv("SUMMARY_EXPORT_DIR", "./exports"),
		ExportEnabled: getEnv("SUMMARY_EXPORT_ENABLED", "false") == "true",
	}
	exporterJob := jobs.NewSummaryExporterJob(st, exporterConfig)
	if exporterConfig.ExportEnabled {
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start summary exporter job", zap.Error(err))
		} else {
			logger.Info("Summary exporter job started", zap.String("schedule", exporterConfig.Schedule))
		}
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer, chimiddleware.Timeout(60*time.Second))

	registerRoutes(router, topicHandler, interviewHandler, summaryHandler, healthHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
	}

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
