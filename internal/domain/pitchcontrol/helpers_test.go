package pitchcontrol

import "github.com/footmetricx/pitchctl/internal/domain/model"

func sample(id string, team model.Team, x, y, vx, vy float64) model.PlayerSample {
	return model.PlayerSample{
		PlayerID: id,
		Team:     team,
		Position: model.Vec2{X: x, Y: y},
		Velocity: model.Vec2{X: vx, Y: vy},
	}
}

// busyFrame is an asymmetric 4v4 frame with players moving in different
// directions, so that no accidental symmetry hides a sign error.
func busyFrame() *model.Frame {
	return &model.Frame{
		MatchID: "m1",
		FrameID: 7,
		Ball:    model.Vec2{X: 48, Y: 30},
		Home: []model.PlayerSample{
			sample("h1", model.Home, 12, 34, 0.5, 0),
			sample("h2", model.Home, 40, 20, 3, 1.5),
			sample("h3", model.Home, 47, 31, 2, -1),
			sample("h4", model.Home, 70, 55, -1, -4),
		},
		Away: []model.PlayerSample{
			sample("a1", model.Away, 93, 34, -0.2, 0.1),
			sample("a2", model.Away, 60, 40, -4, 0),
			sample("a3", model.Away, 52, 28, -1, 2),
			sample("a4", model.Away, 30, 10, 0, 5),
		},
	}
}

// duelFrame holds one stationary player per team.
func duelFrame(home, away model.Vec2) *model.Frame {
	return &model.Frame{
		MatchID: "m1",
		FrameID: 1,
		Ball:    model.Vec2{X: 52.5, Y: 34},
		Home:    []model.PlayerSample{sample("h", model.Home, home.X, home.Y, 0, 0)},
		Away:    []model.PlayerSample{sample("a", model.Away, away.X, away.Y, 0, 0)},
	}
}
