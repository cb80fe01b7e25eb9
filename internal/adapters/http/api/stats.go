package api

import (
	"maps"
	"net/http"

	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
)

// StatsProvider reports runtime statistics of the frame pipeline.
type StatsProvider interface {
	GetStats() map[string]any
}

// paramsProvider is implemented by providers that also expose the engine
// parameters they compute with.
type paramsProvider interface {
	Params() pitchcontrol.Params
}

// StatsHandler serves pipeline statistics and, when known, engine parameters.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	out := maps.Clone(h.provider.GetStats())
	if out == nil {
		out = make(map[string]any)
	}
	if pp, ok := h.provider.(paramsProvider); ok {
		out["engine"] = pp.Params()
	}
	writeJSON(w, http.StatusOK, out)
}
