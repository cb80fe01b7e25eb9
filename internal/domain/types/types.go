// Package types contains the JSON payloads shared by the HTTP API and the
// replay client.
package types

import (
	"fmt"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
)

// Vec2 is a point or velocity on the wire.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Player is one player sample on the wire. Team is optional; when present it
// must agree with the list the player appears in.
type Player struct {
	PlayerID string `json:"player_id,omitempty"`
	Team     string `json:"team,omitempty"`
	Position Vec2   `json:"position"`
	Velocity Vec2   `json:"velocity"`
}

// Frame is a tracking sample on the wire.
type Frame struct {
	MatchID     string   `json:"match_id,omitempty"`
	FrameID     int64    `json:"frame_id"`
	TimestampMs int64    `json:"timestamp_ms,omitempty"`
	Ball        Vec2     `json:"ball"`
	HomeAttacks string   `json:"home_attacks,omitempty"`
	Home        []Player `json:"home"`
	Away        []Player `json:"away"`
}

// ToModel converts the payload. It rejects unknown enum values only; the
// engine performs the geometric validation.
func (f *Frame) ToModel() (model.Frame, error) {
	dir, err := model.ParseDirection(f.HomeAttacks)
	if err != nil {
		return model.Frame{}, err
	}
	home, err := toSamples(f.Home, model.Home)
	if err != nil {
		return model.Frame{}, err
	}
	away, err := toSamples(f.Away, model.Away)
	if err != nil {
		return model.Frame{}, err
	}
	return model.Frame{
		MatchID:     f.MatchID,
		FrameID:     f.FrameID,
		Timestamp:   time.Duration(f.TimestampMs) * time.Millisecond,
		Ball:        model.Vec2(f.Ball),
		HomeAttacks: dir,
		Home:        home,
		Away:        away,
	}, nil
}

func toSamples(in []Player, list model.Team) ([]model.PlayerSample, error) {
	out := make([]model.PlayerSample, len(in))
	for i, p := range in {
		team := list
		if p.Team != "" {
			t, err := model.ParseTeam(p.Team)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", list, i, err)
			}
			team = t
		}
		out[i] = model.PlayerSample{
			PlayerID: p.PlayerID,
			Team:     team,
			Position: model.Vec2(p.Position),
			Velocity: model.Vec2(p.Velocity),
		}
	}
	return out, nil
}

// FromModel converts a model frame to its wire form.
func FromModel(f *model.Frame) Frame {
	return Frame{
		MatchID:     f.MatchID,
		FrameID:     f.FrameID,
		TimestampMs: f.Timestamp.Milliseconds(),
		Ball:        Vec2(f.Ball),
		HomeAttacks: string(f.HomeAttacks),
		Home:        fromSamples(f.Home),
		Away:        fromSamples(f.Away),
	}
}

func fromSamples(in []model.PlayerSample) []Player {
	out := make([]Player, len(in))
	for i, p := range in {
		out[i] = Player{
			PlayerID: p.PlayerID,
			Team:     string(p.Team),
			Position: Vec2(p.Position),
			Velocity: Vec2(p.Velocity),
		}
	}
	return out
}

// ComputeRequest is the body of a synchronous computation.
type ComputeRequest struct {
	Frame
	IncludeGrid bool `json:"include_grid,omitempty"`
}

// Grid is a control grid on the wire. Values[row][col]; rows run along y.
type Grid struct {
	Cols       int         `json:"cols"`
	Rows       int         `json:"rows"`
	CellWidth  float64     `json:"cell_width"`
	CellHeight float64     `json:"cell_height"`
	X          []float64   `json:"x"`
	Y          []float64   `json:"y"`
	Values     [][]float64 `json:"values"`
}

// FromGrid converts an engine grid.
func FromGrid(g *pitchcontrol.Grid) *Grid {
	if g == nil {
		return nil
	}
	cols, rows := g.Dims()
	w, h := g.CellSize()
	return &Grid{
		Cols:       cols,
		Rows:       rows,
		CellWidth:  w,
		CellHeight: h,
		X:          g.XCoords(),
		Y:          g.YCoords(),
		Values:     g.Rows(),
	}
}

// ComputeResponse carries the result of one frame.
type ComputeResponse struct {
	RequestID string                   `json:"request_id,omitempty"`
	MatchID   string                   `json:"match_id,omitempty"`
	FrameID   int64                    `json:"frame_id"`
	Invalid   bool                     `json:"invalid,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
	Summary   pitchcontrol.ZoneSummary `json:"summary"`
	Grid      *Grid                    `json:"grid,omitempty"`
	TookMs    float64                  `json:"took_ms,omitempty"`
}

// SubmitAck acknowledges an asynchronous submission.
type SubmitAck struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	Frame     string `json:"frame"`
}

// SpaceCreationRequest compares two versions of a frame.
type SpaceCreationRequest struct {
	Original    Frame `json:"original"`
	Modified    Frame `json:"modified"`
	IncludeGrid bool  `json:"include_grid,omitempty"`
}

// SpaceCreationResponse reports the comparison.
type SpaceCreationResponse struct {
	pitchcontrol.SpaceCreation
	Diff *Grid `json:"diff,omitempty"`
}
