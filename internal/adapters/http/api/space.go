package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/footmetricx/pitchctl/internal/adapters/render"
	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/internal/domain/types"
)

// SpaceCreationDependencies defines the frame comparison.
type SpaceCreationDependencies interface {
	CompareFrames(ctx context.Context, original, modified *model.Frame) (pitchcontrol.SpaceCreation, error)
}

// SpaceCreationHandler handles frame comparison requests.
type SpaceCreationHandler struct {
	deps SpaceCreationDependencies
}

// NewSpaceCreationHandler creates a new space creation handler.
func NewSpaceCreationHandler(deps SpaceCreationDependencies) *SpaceCreationHandler {
	return &SpaceCreationHandler{deps: deps}
}

// diffRange bounds the colour scale of difference heatmaps.
const diffRange = 0.5

// HandleCompare handles POST /space-creation requests.
func (h *SpaceCreationHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.space_creation"
	req, sc, ok := h.compare(w, r, op)
	if !ok {
		return
	}
	resp := types.SpaceCreationResponse{SpaceCreation: sc}
	if req.IncludeGrid {
		resp.Diff = types.FromGrid(sc.Diff)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleComparePNG handles POST /space-creation/heatmap.png requests. Red
// cells were won by the home team, blue cells lost.
func (h *SpaceCreationHandler) HandleComparePNG(w http.ResponseWriter, r *http.Request) {
	const op = "api.space_creation_png"
	_, sc, ok := h.compare(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := render.PNG(&buf, sc.Diff,
		render.WithTitle(fmt.Sprintf("Space creation: home %+.1f pp", sc.HomePctChange)),
		render.WithRange(-diffRange, diffRange))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// compare decodes both frames and runs the comparison, writing any failure.
func (h *SpaceCreationHandler) compare(w http.ResponseWriter, r *http.Request, op string) (types.SpaceCreationRequest, pitchcontrol.SpaceCreation, bool) {
	var req types.SpaceCreationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return req, pitchcontrol.SpaceCreation{}, false
	}
	original, err := req.Original.ToModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op+".original", ErrBadRequest, err))
		return req, pitchcontrol.SpaceCreation{}, false
	}
	modified, err := req.Modified.ToModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op+".modified", ErrBadRequest, err))
		return req, pitchcontrol.SpaceCreation{}, false
	}

	sc, err := h.deps.CompareFrames(r.Context(), &original, &modified)
	if err != nil {
		writeFailure(w, op, err)
		return req, pitchcontrol.SpaceCreation{}, false
	}
	return req, sc, true
}
