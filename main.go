package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/plantpal/plant-analysis-service/analysis"
	"github.com/plantpal/plant-analysis-service/config"
	"github.com/plantpal/plant-analysis-service/logging"
	"github.com/plantpal/plant-analysis-service/storage"
	"github.com/plantpal/plant-analysis-service/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := &AppState{
		Config: cfg,
		Log:    logger,
		Pool:   vision.NewSlotPool(cfg.Vision.PoolSize),
	}
	defer state.Pool.Close()

	if cfg.Vision.APIKey == "" {
		// The analyze route reports "not configured" instead of failing
		// mid-pipeline; the server still starts so health stays green.
		logger.Warn("GEMINI_API_KEY is not set; analysis requests will be rejected")
	} else {
		client, err := vision.NewClient(ctx, cfg.Vision.APIKey, cfg.Vision.Model)
		if err != nil {
			logger.Fatal("Failed to create vision client", zap.Error(err))
		}
		state.Pipeline = analysis.NewPipeline(vision.Limit(client, state.Pool), logger)
	}

	if cfg.S3.Enabled() {
		uploader, err := storage.NewUploader(ctx, &cfg.S3, logger)
		if err != nil {
			logger.Fatal("Failed to create storage uploader", zap.Error(err))
		}
		state.Uploader = uploader
	} else {
		logger.Info("Object storage not configured; photo routes disabled")
	}

	r := mux.NewRouter()
	r.HandleFunc("/analyze-plant", handleAnalyzePlant(state)).Methods("POST")
	r.HandleFunc("/photos", handleUploadPhoto(state)).Methods("POST")
	r.HandleFunc("/photos/{key:.+}", handleDeletePhoto(state)).Methods("DELETE")
	r.HandleFunc("/healthz", handleHealth).Methods("GET")
	state.addMonitoringRoutes(r)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		WriteTimeout: 90 * time.Second,
		ReadTimeout:  90 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
