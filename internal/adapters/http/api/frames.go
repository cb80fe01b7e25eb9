package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/footmetricx/pitchctl/internal/adapters/render"
	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/types"
)

// FrameDependencies defines the asynchronous submission and stored results.
type FrameDependencies interface {
	// Submit queues a frame. Reports duplicate when the key was already accepted.
	Submit(ctx context.Context, frame model.Frame) (duplicate bool, err error)
	Frame(ctx context.Context, key model.FrameKey) (repository.FrameResult, error)
}

// FramesHandler handles per-frame requests of a match.
type FramesHandler struct {
	deps FrameDependencies
}

// NewFramesHandler creates a new frames handler.
func NewFramesHandler(deps FrameDependencies) *FramesHandler {
	return &FramesHandler{deps: deps}
}

// HandleSubmit handles POST /matches/{match_id}/frames requests.
func (h *FramesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_frame"
	matchID := r.PathValue("match_id")

	var body types.Frame
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if body.MatchID != "" && body.MatchID != matchID {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrMatchIDMismatch))
		return
	}
	body.MatchID = matchID
	frame, err := body.ToModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	duplicate, err := h.deps.Submit(r.Context(), frame)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	key := frame.Key()
	if duplicate {
		writeJSON(w, http.StatusOK, types.SubmitAck{Status: "duplicate", Duplicate: true, Frame: key.String()})
		return
	}
	writeJSON(w, http.StatusAccepted, types.SubmitAck{Status: "accepted", Frame: key.String()})
}

// HandleGet handles GET /matches/{match_id}/frames/{frame_id} requests.
// ?include_grid=true adds the control grid when it is still retained.
func (h *FramesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_frame"
	includeGrid, err := boolQuery(r, "include_grid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, ok := h.lookup(w, r, op)
	if !ok {
		return
	}
	resp := types.ComputeResponse{
		MatchID: res.Key.MatchID,
		FrameID: res.Key.FrameID,
		Invalid: res.Invalid,
		Reason:  res.Reason,
		Summary: res.Summary,
	}
	if includeGrid {
		resp.Grid = types.FromGrid(res.Grid)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHeatmap handles GET /matches/{match_id}/frames/{frame_id}/heatmap requests.
func (h *FramesHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	const op = "api.heatmap"
	res, ok := h.lookupGrid(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := render.HeatmapHTML(&buf, res.Grid,
		render.WithTitle(fmt.Sprintf("Match %s, frame %d", res.Key.MatchID, res.Key.FrameID)),
		render.WithSubtitle(fmt.Sprintf("home %.1f%%  away %.1f%%  neutral %.1f%%  ball %.2f",
			res.Summary.Home.OverallPct, res.Summary.Away.OverallPct, res.Summary.NeutralPct, res.Summary.BallControl)),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// HandleHeatmapPNG handles GET /matches/{match_id}/frames/{frame_id}/heatmap.png requests.
func (h *FramesHandler) HandleHeatmapPNG(w http.ResponseWriter, r *http.Request) {
	const op = "api.heatmap_png"
	res, ok := h.lookupGrid(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := render.PNG(&buf, res.Grid,
		render.WithTitle(fmt.Sprintf("%s frame %d", res.Key.MatchID, res.Key.FrameID)),
		render.WithBall(res.Ball),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (h *FramesHandler) lookup(w http.ResponseWriter, r *http.Request, op string) (repository.FrameResult, bool) {
	frameID, err := strconv.ParseInt(r.PathValue("frame_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return repository.FrameResult{}, false
	}
	key := model.FrameKey{MatchID: r.PathValue("match_id"), FrameID: frameID}
	res, err := h.deps.Frame(r.Context(), key)
	if err != nil {
		writeFailure(w, op, err)
		return repository.FrameResult{}, false
	}
	return res, true
}

// lookupGrid is lookup for handlers that need the control grid.
func (h *FramesHandler) lookupGrid(w http.ResponseWriter, r *http.Request, op string) (repository.FrameResult, bool) {
	res, ok := h.lookup(w, r, op)
	if !ok {
		return res, false
	}
	if res.Invalid {
		writeError(w, http.StatusUnprocessableEntity, "invalid_frame",
			fmt.Errorf("%s: frame %s was rejected: %s", op, res.Key, res.Reason))
		return res, false
	}
	if res.Grid == nil {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrGridUnavailable))
		return res, false
	}
	return res, true
}
