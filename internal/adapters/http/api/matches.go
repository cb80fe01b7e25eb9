package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/footmetricx/pitchctl/internal/adapters/render"
	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	"github.com/footmetricx/pitchctl/internal/domain/model"
)

const defaultDominanceLimit = 10

// MatchDependencies defines the per-match read operations.
type MatchDependencies interface {
	Matches(ctx context.Context) []string
	MatchSummary(ctx context.Context, matchID string) (repository.MatchSummary, error)
	TopFrames(ctx context.Context, matchID string, team model.Team, n int) ([]repository.DominanceEntry, error)
	Timeline(ctx context.Context, matchID string) ([]repository.TimelinePoint, error)
}

// MatchesHandler handles match aggregate requests.
type MatchesHandler struct {
	deps     MatchDependencies
	maxLimit int
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies, maxLimit int) *MatchesHandler {
	return &MatchesHandler{deps: deps, maxLimit: maxLimit}
}

type matchList struct {
	Matches []string `json:"matches"`
}

// HandleList handles GET /matches requests.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ids := h.deps.Matches(r.Context())
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, matchList{Matches: ids})
}

// HandleSummary handles GET /matches/{match_id}/summary requests.
func (h *MatchesHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_summary"
	summary, err := h.deps.MatchSummary(r.Context(), r.PathValue("match_id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleTimeline handles GET /matches/{match_id}/timeline requests.
func (h *MatchesHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	const op = "api.timeline"
	points, err := h.deps.Timeline(r.Context(), r.PathValue("match_id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// HandleDominance handles GET /matches/{match_id}/dominance?team=home&limit=N requests.
func (h *MatchesHandler) HandleDominance(w http.ResponseWriter, r *http.Request) {
	const op = "api.dominance"
	q := r.URL.Query()

	team := model.Home
	if raw := q.Get("team"); raw != "" {
		t, err := model.ParseTeam(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		team = t
	}

	n := defaultDominanceLimit
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrLimitExceeded))
		return
	}

	entries, err := h.deps.TopFrames(r.Context(), r.PathValue("match_id"), team, n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleDashboard handles GET /matches/{match_id}/dashboard requests.
func (h *MatchesHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"
	matchID := r.PathValue("match_id")
	summary, err := h.deps.MatchSummary(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	timeline, err := h.deps.Timeline(r.Context(), matchID)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	var buf bytes.Buffer
	if err := render.DashboardHTML(&buf, summary, timeline); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
