package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/plantpal/plant-analysis-service/analysis"
	"github.com/plantpal/plant-analysis-service/config"
	"github.com/plantpal/plant-analysis-service/models"
	"github.com/plantpal/plant-analysis-service/storage"
	"github.com/plantpal/plant-analysis-service/vision"
)

type AppState struct {
	Config   *config.Config
	Log      *zap.Logger
	Pipeline *analysis.Pipeline
	Pool     *vision.SlotPool
	Uploader *storage.Uploader
}

type AnalyzeResponse struct {
	Analysis analysis.Result `json:"analysis"`
	Message  string          `json:"message,omitempty"`
}

type PhotoResponse struct {
	Photo models.Photo `json:"photo"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func handleAnalyzePlant(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTotal := time.Now()
		timings := &models.StageTimings{RequestID: uuid.NewString()}
		log := state.Log.With(zap.String("request_id", timings.RequestID))

		// Fail fast when the credential is missing; no pipeline stage runs.
		if state.Pipeline == nil {
			sendErrorResponse(w, http.StatusInternalServerError, MsgNotConfigured, "")
			return
		}

		ctx := r.Context()
		if state.Config.Vision.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, state.Config.Vision.Timeout)
			defer cancel()
		}

		result, perr := state.Pipeline.Analyze(ctx, r, timings)
		timings.Total = time.Since(startTotal)
		logTimings(log, timings)

		if perr != nil {
			log.Warn("Analysis failed",
				zap.String("kind", perr.Kind.String()),
				zap.Error(perr))
			sendErrorResponse(w, perr.HTTPStatus(), perr.Message, "")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AnalyzeResponse{
			Analysis: result,
			Message:  getAnalysisMessage(result),
		})
	}
}

func handleUploadPhoto(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if state.Uploader == nil {
			sendErrorResponse(w, http.StatusServiceUnavailable, MsgStorageNotConfigured, "")
			return
		}

		upload, perr := analysis.ReadUpload(r)
		if perr != nil {
			sendErrorResponse(w, perr.HTTPStatus(), perr.Message, "")
			return
		}

		// Key the object by what the bytes actually are, not by what the
		// client claimed.
		format := analysis.SniffFormat(upload.Data)
		key := "plants/" + uuid.NewString() + format.Ext()

		if err := state.Uploader.Put(r.Context(), key, upload.Data, format.MIMEType()); err != nil {
			state.Log.Error("Photo upload failed", zap.String("key", key), zap.Error(err))
			sendErrorResponse(w, http.StatusInternalServerError, "failed to store photo", "")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PhotoResponse{
			Photo: models.Photo{
				Key:         key,
				Size:        int64(len(upload.Data)),
				ContentType: format.MIMEType(),
				UploadedAt:  time.Now().UTC(),
			},
		})
	}
}

func handleDeletePhoto(state *AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if state.Uploader == nil {
			sendErrorResponse(w, http.StatusServiceUnavailable, MsgStorageNotConfigured, "")
			return
		}

		key := mux.Vars(r)["key"]
		if key == "" {
			sendErrorResponse(w, http.StatusBadRequest, "missing photo key", "")
			return
		}

		if err := state.Uploader.Delete(r.Context(), key); err != nil {
			state.Log.Error("Photo delete failed", zap.String("key", key), zap.Error(err))
			sendErrorResponse(w, http.StatusInternalServerError, "failed to delete photo", "")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "photo deleted"})
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

func (s *AppState) addMonitoringRoutes(r *mux.Router) {
	r.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
}

func (s *AppState) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Pool.Snapshot())
}

func logTimings(log *zap.Logger, t *models.StageTimings) {
	log.Debug("Processing times",
		zap.Duration("ingest", t.Ingest),
		zap.Duration("sniff", t.Sniff),
		zap.Duration("normalize", t.Normalize),
		zap.Duration("model_call", t.ModelCall),
		zap.Duration("parse", t.Parse),
		zap.Duration("total", t.Total))
}

func sendErrorResponse(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Details: details,
	})
}
