package pitchcontrol

import (
	"fmt"
	"math"

	"github.com/footmetricx/pitchctl/internal/domain/model"
)

func finite(v model.Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// validateFrame rejects frames the engine cannot evaluate.
func validateFrame(f *model.Frame, p Params) error {
	if f == nil {
		return &InvalidFrameError{Field: "frame", Reason: ReasonMissingFrame}
	}
	if !finite(f.Ball) {
		return &InvalidFrameError{Field: "ball", Reason: ReasonNonFinite}
	}

	seen := make(map[string]string, len(f.Home)+len(f.Away))
	for _, team := range []model.Team{model.Home, model.Away} {
		players := f.Players(team)
		if len(players) == 0 {
			return &InvalidFrameError{Field: string(team), Reason: ReasonEmptyTeam}
		}
		for i := range players {
			if err := validateSample(&players[i], team, i, p, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateSample(s *model.PlayerSample, team model.Team, i int, p Params, seen map[string]string) error {
	field := fmt.Sprintf("%s[%d]", team, i)

	if s.Team != "" && s.Team != team {
		return &InvalidFrameError{Field: field + ".team", Reason: ReasonTeamMismatch,
			Detail: fmt.Sprintf("tagged %s", s.Team)}
	}
	if !finite(s.Position) {
		return &InvalidFrameError{Field: field + ".position", Reason: ReasonNonFinite}
	}
	if !finite(s.Velocity) {
		return &InvalidFrameError{Field: field + ".velocity", Reason: ReasonNonFinite}
	}

	m := p.BoundsMargin
	if s.Position.X < -m || s.Position.X > p.Pitch.Length+m ||
		s.Position.Y < -m || s.Position.Y > p.Pitch.Width+m {
		return &InvalidFrameError{Field: field + ".position", Reason: ReasonOutOfBounds,
			Detail: fmt.Sprintf("x=%.2f y=%.2f", s.Position.X, s.Position.Y)}
	}

	if s.PlayerID != "" {
		if prev, dup := seen[s.PlayerID]; dup {
			return &InvalidFrameError{Field: field + ".player_id", Reason: ReasonDuplicatePlayer,
				Detail: fmt.Sprintf("%s already used by %s", s.PlayerID, prev)}
		}
		seen[s.PlayerID] = field
	}
	return nil
}
