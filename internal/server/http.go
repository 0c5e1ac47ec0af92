// Package server exposes the thin HTTP layer over the analysis service.
// Handlers only decode DTOs, call the service and encode DTOs; terminal
// analysis failures are structured FAILURE bodies, never 5xx responses.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "content-brainstorm/internal/common/errors"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/common/observability"
	"content-brainstorm/internal/models"
)

// Service is the slice of the analysis service consumed by the HTTP layer.
type Service interface {
	AnalyzeContent(ctx context.Context, req *models.AnalysisRequest) *models.AnalysisResponse
	GetSession(ctx context.Context, sessionID string) (*models.AnalysisSession, error)
	ListSessions(ctx context.Context) ([]*models.AnalysisSession, error)
	StoreStats(ctx context.Context) map[string]interface{}
}

type Server struct {
	service Service
	obs     *observability.Observability
	appName string
	version string
	logger  logger.Logger
}

func New(service Service, obs *observability.Observability, appName, version string, log logger.Logger) *Server {
	return &Server{
		service: service,
		obs:     obs,
		appName: appName,
		version: version,
		logger: log.With(map[string]interface{}{
			"component": "http-server",
		}),
	}
}

// Routes builds the HTTP mux for the service.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analysis/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/analysis/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/analysis/sessions/{sessionId}", s.handleGetSession)
	mux.HandleFunc("GET /api/monitoring/health", s.handleHealth)
	mux.HandleFunc("GET /api/monitoring/stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("malformed analysis request", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}

	response := s.service.AnalyzeContent(r.Context(), &req)

	if s.obs != nil {
		s.obs.RecordRequest(r.Context(), string(response.Status))
		s.obs.RecordDuration(r.Context(), time.Since(start), string(response.Status))
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "session not found",
			})
			return
		}
		s.logger.Error("session lookup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "session lookup failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.logger.Error("session list failed", map[string]interface{}{
			"error": err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "session list failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "UP",
		"service": s.appName,
		"version": s.version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.StoreStats(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
