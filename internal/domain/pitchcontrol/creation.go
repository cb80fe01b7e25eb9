package pitchcontrol

import (
	"github.com/footmetricx/pitchctl/internal/domain/model"
	"gonum.org/v1/gonum/floats"
)

// creationThreshold is the control change that counts as space won or lost.
const creationThreshold = 0.1

// SpaceCreation compares control before and after a change in positions,
// from the home team's perspective.
type SpaceCreation struct {
	Diff          *Grid       `json:"-"`
	HomePctChange float64     `json:"home_pct_change"`
	CellsGained   int         `json:"cells_gained"`
	CellsLost     int         `json:"cells_lost"`
	AreaGained    float64     `json:"area_gained_m2"`
	AreaLost      float64     `json:"area_lost_m2"`
	MaxGain       float64     `json:"max_gain"`
	MaxLoss       float64     `json:"max_loss"`
	Original      ZoneSummary `json:"original"`
	Modified      ZoneSummary `json:"modified"`
}

// CompareFrames evaluates two frames, typically the same instant with some
// players moved, and reports where home control changed.
func (e *Engine) CompareFrames(original, modified *model.Frame) (SpaceCreation, error) {
	before, beforeSummary, err := e.Compute(original)
	if err != nil {
		return SpaceCreation{}, err
	}
	after, afterSummary, err := e.Compute(modified)
	if err != nil {
		return SpaceCreation{}, err
	}
	diff, err := after.Sub(before)
	if err != nil {
		return SpaceCreation{}, err
	}

	vals := diff.Values()
	w, h := diff.CellSize()
	gained := floats.Count(func(v float64) bool { return v > creationThreshold }, vals)
	lost := floats.Count(func(v float64) bool { return v < -creationThreshold }, vals)

	return SpaceCreation{
		Diff:          diff,
		HomePctChange: afterSummary.Home.OverallPct - beforeSummary.Home.OverallPct,
		CellsGained:   gained,
		CellsLost:     lost,
		AreaGained:    float64(gained) * w * h,
		AreaLost:      float64(lost) * w * h,
		MaxGain:       max(floats.Max(vals), 0),
		MaxLoss:       min(floats.Min(vals), 0),
		Original:      beforeSummary,
		Modified:      afterSummary,
	}, nil
}
