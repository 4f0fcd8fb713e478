package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/genesis/internal/api"
	"github.com/RMahshie/genesis/internal/config"
	"github.com/RMahshie/genesis/internal/estimator"
	"github.com/RMahshie/genesis/internal/metrics"
	"github.com/RMahshie/genesis/internal/pipeline"
	"github.com/RMahshie/genesis/internal/repository"
	"github.com/RMahshie/genesis/internal/repository/postgres"
	"github.com/RMahshie/genesis/internal/storage"
	"github.com/RMahshie/genesis/internal/web"
	"github.com/RMahshie/genesis/pkg/models"
)

const version = "1.0.0"

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Server.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ranges, err := pipeline.VariantTable(cfg.Models.RangeVariant)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid range variant")
	}

	// Load both estimators once; nothing is served without them
	var store storage.ArtifactStore
	if cfg.UsesS3() {
		store, err = storage.NewS3Service(storage.S3Config{
			Endpoint:  cfg.AWS.S3Endpoint,
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKeyID,
			SecretKey: cfg.AWS.SecretAccessKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create artifact store")
		}
	}

	var registry estimator.Registry
	loader := estimator.NewLoader(store, &http.Client{Timeout: 30 * time.Second})
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	err = registry.Load(loadCtx, loader, cfg.Models.WingSource, cfg.Models.RaySource)
	cancelLoad()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load estimator artifacts")
	}

	wing, ray, err := registry.Pair()
	if err != nil {
		log.Fatal().Err(err).Msg("Estimators unavailable")
	}

	tracker := metrics.NewLatencyTracker(0.2)
	svc := pipeline.NewPredictionService(wing, ray, pipeline.Options{
		Ranges:   ranges,
		Timeout:  cfg.Models.PredictTimeout,
		Observer: tracker,
	})

	// Optional prediction journal
	var repo repository.PredictionRepository
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		defer db.Close()

		pgRepo := postgres.NewPostgresPredictionRepository(db)
		schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
		err = pgRepo.EnsureSchema(schemaCtx)
		cancelSchema()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare prediction journal")
		}
		repo = pgRepo
		log.Info().Msg("Prediction journal enabled")
	}

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(zerologLogger())
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("Genesis Antenna Predictor API", version)
	humaConfig.DocsPath = "/api/docs"
	humaAPI := humachi.New(router, humaConfig)

	// Register health endpoint
	huma.Register(humaAPI, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = version
		resp.Body.Time = time.Now()
		return resp, nil
	})

	estimators := []models.EstimatorInfo{
		estimatorInfo(estimator.Wing.Name, wing.Info()),
		estimatorInfo(estimator.Ray.Name, ray.Info()),
	}
	api.RegisterRoutes(humaAPI, svc, repo, cfg.Models.RangeVariant, estimators, tracker)
	web.NewFormHandler(svc).Register(router)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("variant", cfg.Models.RangeVariant).Msg("Starting Genesis server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func estimatorInfo(stage string, info estimator.Info) models.EstimatorInfo {
	return models.EstimatorInfo{
		Stage:   stage,
		Name:    info.Name,
		Kind:    info.Kind,
		Inputs:  info.Inputs,
		Outputs: info.Outputs,
		Source:  info.Source,
	}
}

// zerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func zerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_ip", r.RemoteAddr).
					Str("request_id", middleware.GetReqID(r.Context())).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
