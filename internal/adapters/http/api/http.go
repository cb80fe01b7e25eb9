// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	service "github.com/footmetricx/pitchctl/internal/app"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
)

const maxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ComputeDependencies
	FrameDependencies
	MatchDependencies
	SpaceCreationDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	computeHandler *ComputeHandler
	framesHandler  *FramesHandler
	matchesHandler *MatchesHandler
	spaceHandler   *SpaceCreationHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// dominance query.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		computeHandler: NewComputeHandler(deps),
		framesHandler:  NewFramesHandler(deps),
		matchesHandler: NewMatchesHandler(deps, maxLimit),
		spaceHandler:   NewSpaceCreationHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", instrument("healthz", s.healthHandler.HandleHealth))
	mux.HandleFunc("GET /stats", instrument("stats", s.statsHandler.HandleStats))

	mux.HandleFunc("POST /pitch-control", instrument("pitch_control", s.computeHandler.HandleCompute))
	mux.HandleFunc("POST /space-creation", instrument("space_creation", s.spaceHandler.HandleCompare))
	mux.HandleFunc("POST /space-creation/heatmap.png", instrument("space_creation_png", s.spaceHandler.HandleComparePNG))

	mux.HandleFunc("GET /matches", instrument("matches", s.matchesHandler.HandleList))
	mux.HandleFunc("POST /matches/{match_id}/frames", instrument("submit_frame", s.framesHandler.HandleSubmit))
	mux.HandleFunc("GET /matches/{match_id}/frames/{frame_id}", instrument("frame", s.framesHandler.HandleGet))
	mux.HandleFunc("GET /matches/{match_id}/frames/{frame_id}/heatmap", instrument("heatmap", s.framesHandler.HandleHeatmap))
	mux.HandleFunc("GET /matches/{match_id}/frames/{frame_id}/heatmap.png", instrument("heatmap_png", s.framesHandler.HandleHeatmapPNG))
	mux.HandleFunc("GET /matches/{match_id}/summary", instrument("summary", s.matchesHandler.HandleSummary))
	mux.HandleFunc("GET /matches/{match_id}/timeline", instrument("timeline", s.matchesHandler.HandleTimeline))
	mux.HandleFunc("GET /matches/{match_id}/dominance", instrument("dominance", s.matchesHandler.HandleDominance))
	mux.HandleFunc("GET /matches/{match_id}/dashboard", instrument("dashboard", s.matchesHandler.HandleDashboard))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	noteErrorCode(w, code)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and error code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	var opErr *OpError
	if !errors.As(err, &opErr) {
		err = fmt.Errorf("%s: %w", op, err)
	}
	writeError(w, status, code, err)
}

func classify(err error) (status int, code string) {
	switch {
	case errors.Is(err, pitchcontrol.ErrInvalidFrame):
		return http.StatusUnprocessableEntity, "invalid_frame"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, service.ErrMissingMatch):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrMatchNotFound),
		errors.Is(err, ErrGridUnavailable):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// boolQuery reads an optional boolean query parameter.
func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}
