package service

import (
	"context"
	"errors"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/pkg/metrics"
)

// engineAdapter exposes the engine as a worker.Computer and records
// computation metrics for both the synchronous and the queued path.
type engineAdapter struct {
	engine *pitchcontrol.Engine
}

func (a *engineAdapter) Compute(_ context.Context, frame *model.Frame) (*pitchcontrol.Grid, pitchcontrol.ZoneSummary, error) {
	start := time.Now()
	grid, summary, err := a.engine.Compute(frame)
	if err != nil {
		var invalid *pitchcontrol.InvalidFrameError
		if errors.As(err, &invalid) {
			metrics.RecordFrameInvalid(invalid.Reason)
		}
		return nil, pitchcontrol.ZoneSummary{}, err
	}
	metrics.RecordFrameComputed(float64(time.Since(start).Microseconds())/1000, summary.Cells)
	return grid, summary, nil
}
