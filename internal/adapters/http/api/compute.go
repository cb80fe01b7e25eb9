package api

import (
	"context"
	"net/http"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/internal/domain/types"
	"github.com/google/uuid"
)

// ComputeDependencies defines the synchronous computation.
type ComputeDependencies interface {
	Compute(ctx context.Context, frame *model.Frame) (*pitchcontrol.Grid, pitchcontrol.ZoneSummary, error)
}

// ComputeHandler handles synchronous pitch-control requests.
type ComputeHandler struct {
	deps ComputeDependencies
}

// NewComputeHandler creates a new compute handler.
func NewComputeHandler(deps ComputeDependencies) *ComputeHandler {
	return &ComputeHandler{deps: deps}
}

// HandleCompute handles POST /pitch-control requests. The frame is evaluated
// immediately and nothing is stored.
func (h *ComputeHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute"
	var req types.ComputeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	frame, err := req.ToModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	start := time.Now()
	grid, summary, err := h.deps.Compute(r.Context(), &frame)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	resp := types.ComputeResponse{
		RequestID: uuid.NewString(),
		MatchID:   frame.MatchID,
		FrameID:   frame.FrameID,
		Summary:   summary,
		TookMs:    float64(time.Since(start).Microseconds()) / 1000,
	}
	if req.IncludeGrid {
		resp.Grid = types.FromGrid(grid)
	}
	writeJSON(w, http.StatusOK, resp)
}
