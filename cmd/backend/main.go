package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NYCU-SDC/form-engine-backend/internal"
	"NYCU-SDC/form-engine-backend/internal/config"
	"NYCU-SDC/form-engine-backend/internal/cors"
	"NYCU-SDC/form-engine-backend/internal/event"
	"NYCU-SDC/form-engine-backend/internal/form"
	"NYCU-SDC/form-engine-backend/internal/form/export"
	"NYCU-SDC/form-engine-backend/internal/form/field"
	"NYCU-SDC/form-engine-backend/internal/form/response"
	"NYCU-SDC/form-engine-backend/internal/jwt"
	"NYCU-SDC/form-engine-backend/internal/metrics"
	"NYCU-SDC/form-engine-backend/internal/publish"
	"NYCU-SDC/form-engine-backend/internal/richtext"
	"NYCU-SDC/form-engine-backend/internal/trace"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var AppName = "no-app-name"

var Version = "no-version"

var BuildTime = "no-build-time"

var CommitHash = "no-commit-hash"

var Environment = "no-env"

func main() {
	AppName = os.Getenv("APP_NAME")
	if AppName == "" {
		AppName = "form-engine-backend"
	}

	if BuildTime == "no-build-time" {
		now := time.Now()
		BuildTime = "not provided (now: " + now.Format(time.RFC3339) + ")"
	}

	Environment = os.Getenv("ENV")
	if Environment == "" {
		Environment = "no-env"
	}

	appMetadata := []zap.Field{
		zap.String("app_name", AppName),
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit_hash", CommitHash),
		zap.String("environment", Environment),
	}

	cfg, cfgLog := config.Load()
	err := cfg.Validate()
	if err != nil {
		if errors.Is(err, config.ErrDatabaseURLRequired) {
			title := "Database URL is required"
			message := "Please set the DATABASE_URL environment variable or provide a config file with the database_url key."
			message = EarlyApplicationFailed(title, message)
			log.Fatal(message)
		} else {
			log.Fatalf("Failed to validate config: %v, exiting...", err)
		}
	}

	logger, err := initLogger(&cfg, appMetadata)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v, exiting...", err)
	}

	cfgLog.FlushToZap(logger)

	if cfg.Dev {
		logger.Warn("Running in development mode, make sure to disable it in production")
	}

	if cfg.Secret == config.DefaultSecret && !cfg.Debug {
		logger.Warn("Default secret detected in production environment, replace it with a secure random string")
		cfg.Secret = uuid.New().String()
	}

	logger.Info("Starting application...")

	logger.Info("Starting database migration...")

	err = databaseutil.MigrationUp(cfg.MigrationSource, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to run database migration", zap.Error(err))
	}

	dbPool, err := initDatabasePool(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize database pool", zap.Error(err))
	}
	defer dbPool.Close()

	shutdown, err := trace.Setup(context.Background(), trace.ServiceInfo{
		Name:        AppName,
		Version:     Version,
		CommitHash:  CommitHash,
		Environment: Environment,
	}, cfg.OtelCollectorUrl)
	if err != nil {
		logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}

	publisher, closePublisher := initPublisher(logger, cfg.NatsURL)
	defer closePublisher()

	validator := internal.NewValidator()
	problemWriter := internal.NewProblemWriter()
	registry := metrics.NewRegistry()
	sanitizer := richtext.NewSanitizer()

	// ============================================
	// Service
	// ============================================

	jwtService := jwt.NewService(logger, cfg.Secret, cfg.AccessTokenTTL)
	fieldService := field.NewService(logger, dbPool, sanitizer, registry)
	formService := form.NewService(logger, dbPool, fieldService, sanitizer)
	responseService := response.NewService(logger, dbPool, publisher, registry)
	publishService := publish.NewService(logger, formService, publisher)
	exportService := export.NewService(logger, responseService, fieldService)

	// ============================================
	// Handler
	// ============================================

	formHandler := form.NewHandler(logger, validator, problemWriter, formService)
	fieldHandler := field.NewHandler(logger, validator, problemWriter, fieldService)
	responseHandler := response.NewHandler(logger, validator, problemWriter, responseService)
	publishHandler := publish.NewHandler(logger, validator, problemWriter, publishService, cfg.BaseURL)
	exportHandler := export.NewHandler(logger, problemWriter, exportService)

	// ============================================
	// Middleware
	// ============================================

	// Middleware Initialization
	traceMiddleware := trace.NewMiddleware(logger, cfg.Debug, registry)
	corsMiddleware := cors.NewMiddleware(logger, cfg.AllowOrigins)
	jwtMiddleware := jwt.NewMiddleware(logger, validator, problemWriter, jwtService)

	// Basic Middleware (Tracing and Recovery)
	basicMiddleware := middleware.NewSet(traceMiddleware.RecoverMiddleware)
	basicMiddleware = basicMiddleware.Append(traceMiddleware.TraceMiddleware)

	// Auth Middleware
	authMiddleware := middleware.NewSet(traceMiddleware.RecoverMiddleware)
	authMiddleware = authMiddleware.Append(traceMiddleware.TraceMiddleware)
	authMiddleware = authMiddleware.Append(jwtMiddleware.AuthenticateMiddleware)

	// HTTP Server
	mux := http.NewServeMux()

	// Health check route
	mux.Handle("GET /api/healthz", basicMiddleware.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	}))

	mux.Handle("GET /metrics", registry.Handler())

	// ============================================
	// Form routes
	// ============================================

	// Form Management
	// ----------------------
	mux.Handle("GET /api/forms", authMiddleware.HandlerFunc(formHandler.ListHandler))
	mux.Handle("POST /api/forms", authMiddleware.HandlerFunc(formHandler.CreateHandler))
	mux.Handle("GET /api/forms/{formId}", authMiddleware.HandlerFunc(formHandler.GetHandler))
	mux.Handle("PATCH /api/forms/{formId}", authMiddleware.HandlerFunc(formHandler.PatchHandler))
	mux.Handle("DELETE /api/forms/{formId}", authMiddleware.HandlerFunc(formHandler.DeleteHandler))

	// -- Public view for respondents
	mux.Handle("GET /api/public/forms/{formId}", basicMiddleware.HandlerFunc(formHandler.GetPublicHandler))

	// -- Form Operations
	mux.Handle("POST /api/forms/{formId}/publish", authMiddleware.HandlerFunc(publishHandler.PublishForm))
	mux.Handle("POST /api/forms/{formId}/unpublish", authMiddleware.HandlerFunc(publishHandler.UnpublishForm))

	// Field Management
	// ----------------------
	mux.Handle("GET /api/forms/{formId}/fields", authMiddleware.HandlerFunc(fieldHandler.ListHandler))
	mux.Handle("POST /api/forms/{formId}/fields", authMiddleware.HandlerFunc(fieldHandler.InsertHandler))
	mux.Handle("PATCH /api/fields/{fieldId}", authMiddleware.HandlerFunc(fieldHandler.UpdateHandler))
	mux.Handle("DELETE /api/fields/{fieldId}", authMiddleware.HandlerFunc(fieldHandler.DeleteHandler))
	mux.Handle("POST /api/fields/swap", authMiddleware.HandlerFunc(fieldHandler.SwapHandler))

	// Response Management
	// ----------------------
	mux.Handle("POST /api/forms/{formId}/responses/submit", authMiddleware.HandlerFunc(responseHandler.SubmitHandler))
	mux.Handle("PUT /api/forms/{formId}/responses/draft", authMiddleware.HandlerFunc(responseHandler.SaveDraftHandler))
	mux.Handle("GET /api/forms/{formId}/responses/draft", authMiddleware.HandlerFunc(responseHandler.GetDraftHandler))
	mux.Handle("GET /api/forms/{formId}/responses/me", authMiddleware.HandlerFunc(responseHandler.GetSubmittedHandler))
	mux.Handle("GET /api/responses/me", authMiddleware.HandlerFunc(responseHandler.ListForRespondentHandler))

	// -- Owner views
	mux.Handle("GET /api/forms/{formId}/responses", authMiddleware.HandlerFunc(responseHandler.ListForOwnerHandler))
	mux.Handle("GET /api/forms/{formId}/responses/export", authMiddleware.HandlerFunc(exportHandler.ExportHandler))

	// End of API routes
	// ============================================
	// handle interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// CORS and Entry Point
	entrypoint := corsMiddleware.HandlerFunc(mux.ServeHTTP)

	srv := &http.Server{
		Addr:         cfg.Host + ":" + cfg.Port,
		Handler:      entrypoint,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.Info("Starting listening request", zap.String("host", cfg.Host), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Fail to start server with error", zap.Error(err))
		}
	}()

	// wait for context close
	<-ctx.Done()
	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := shutdown(otelCtx); err != nil {
		logger.Error("Forced to shutdown OpenTelemetry", zap.Error(err))
	}

	logger.Info("Successfully shutdown")
}

func initLogger(cfg *config.Config, appMetadata []zap.Field) (*zap.Logger, error) {
	var err error
	var logger *zap.Logger
	if cfg.Debug {
		logger, err = logutil.ZapDevelopmentConfig().Build()
		if err != nil {
			return nil, err
		}
		logger.Info("Running in debug mode", appMetadata...)
	} else {
		logger, err = logutil.ZapProductionConfig().Build()
		if err != nil {
			return nil, err
		}

		logger = logger.With(appMetadata...)
	}
	defer func() {
		err := logger.Sync()
		if err != nil {
			zap.S().Errorw("Failed to sync logger", zap.Error(err))
		}
	}()

	return logger, nil
}

func initDatabasePool(databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	dbPool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return dbPool, nil
}

func initPublisher(logger *zap.Logger, natsURL string) (event.Publisher, func()) {
	if natsURL == "" {
		logger.Info("No NATS URL configured, domain events are discarded")
		return event.NoopPublisher{}, func() {}
	}

	publisher, closeFn, err := event.Connect(logger, natsURL, AppName)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err), zap.String("url", natsURL))
	}

	logger.Info("Connected to NATS", zap.String("url", natsURL))
	return publisher, closeFn
}

func EarlyApplicationFailed(title, action string) string {
	result := `
-----------------------------------------
Application Failed to Start
-----------------------------------------

# What's wrong?
%s

# How to fix it?
%s

`

	result = fmt.Sprintf(result, title, action)
	return result
}
