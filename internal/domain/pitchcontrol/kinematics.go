package pitchcontrol

import (
	"math"

	"github.com/footmetricx/pitchctl/internal/domain/model"
)

// TimeToReach estimates how long a player at pos moving with vel needs to
// arrive at target. The player keeps the velocity component toward the
// target for the reaction time. A player moving away then brakes to a halt
// at MaxAcceleration; from there, or from a slower approach, the player
// accelerates up to MaxSpeed and runs the rest at MaxSpeed. A player already
// faster than MaxSpeed holds that speed.
//
// For a fixed distance the result strictly decreases as the velocity
// component toward the target grows, over its whole range.
func TimeToReach(pos, vel, target model.Vec2, p Params) float64 {
	dx, dy := target.X-pos.X, target.Y-pos.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 0
	}

	v0 := (vel.X*dx + vel.Y*dy) / d
	switch {
	case v0 >= p.MaxSpeed:
		return d / v0
	case v0 > 0 && v0*p.ReactionTime >= d:
		return d / v0
	case v0 < 0:
		// Drift away while reacting, then stop: both add to the distance.
		brake := -v0 / p.MaxAcceleration
		dist := d - v0*p.ReactionTime + v0*v0/(2*p.MaxAcceleration)
		return p.ReactionTime + brake + run(0, dist, p)
	default:
		return p.ReactionTime + run(v0, d-v0*p.ReactionTime, p)
	}
}

// run is the time to cover dist starting at speed v0 in [0, MaxSpeed],
// accelerating at MaxAcceleration until MaxSpeed.
func run(v0, dist float64, p Params) float64 {
	a := p.MaxAcceleration
	accelTime := (p.MaxSpeed - v0) / a
	accelDist := (v0 + p.MaxSpeed) / 2 * accelTime
	if dist <= accelDist {
		// dist = v0·t + a·t²/2
		return (-v0 + math.Sqrt(v0*v0+2*a*dist)) / a
	}
	return accelTime + (dist-accelDist)/p.MaxSpeed
}

// Influence maps a time-to-reach onto (0, 0.5] with a logistic centred on
// the fastest arrival at the cell.
func Influence(t, fastest, width float64) float64 {
	return 1 / (1 + math.Exp((t-fastest)/width))
}
