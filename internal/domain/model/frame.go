// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Team identifies one side of a match. Home plays the role of team A
// (positive control), Away of team B (negative control).
type Team string

const (
	Home Team = "home"
	Away Team = "away"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Away {
		return Home
	}
	return Away
}

// ParseTeam accepts "home"/"away" and the aliases "a"/"b".
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "a":
		return Home, nil
	case "away", "b":
		return Away, nil
	default:
		return "", fmt.Errorf("unknown team %q", s)
	}
}

// Direction is the direction in which the home team attacks along the x axis.
type Direction string

const (
	AttacksRight Direction = "right" // toward x = pitch length
	AttacksLeft  Direction = "left"  // toward x = 0
)

// ParseDirection parses "right"/"left"; the empty string means right.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "right":
		return AttacksRight, nil
	case "left":
		return AttacksLeft, nil
	default:
		return "", fmt.Errorf("unknown attack direction %q", s)
	}
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == AttacksLeft {
		return AttacksRight
	}
	return AttacksLeft
}

// Vec2 is a point or vector in pitch coordinates (meters, meters/second).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pitch holds the playing area dimensions. The origin is a corner flag;
// x runs along the length and y along the width.
type Pitch struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// StandardPitch is the 105m x 68m pitch used by most tracking providers.
var StandardPitch = Pitch{Length: 105, Width: 68} //nolint:gochecknoglobals // value constant

// PlayerSample is one player's state in a frame.
type PlayerSample struct {
	PlayerID string
	Team     Team
	Position Vec2
	Velocity Vec2
}

// Frame is one tracking snapshot. It is constructed per sample by the caller
// and treated as immutable input by the engine.
type Frame struct {
	MatchID     string
	FrameID     int64
	Timestamp   time.Duration // offset from kick-off
	Ball        Vec2
	HomeAttacks Direction
	Home        []PlayerSample
	Away        []PlayerSample
}

// Key returns the frame's identity within the service.
func (f *Frame) Key() FrameKey {
	return FrameKey{MatchID: f.MatchID, FrameID: f.FrameID}
}

// Players returns the samples of one team.
func (f *Frame) Players(t Team) []PlayerSample {
	if t == Away {
		return f.Away
	}
	return f.Home
}

// Swapped returns a copy of the frame with the two teams exchanged: away
// players become home players and the attack direction flips with them.
func (f *Frame) Swapped() Frame {
	out := *f
	out.Home = retag(f.Away, Home)
	out.Away = retag(f.Home, Away)
	dir := f.HomeAttacks
	if dir == "" {
		dir = AttacksRight
	}
	out.HomeAttacks = dir.Flip()
	return out
}

func retag(in []PlayerSample, t Team) []PlayerSample {
	out := make([]PlayerSample, len(in))
	for i, p := range in {
		p.Team = t
		out[i] = p
	}
	return out
}

// FrameKey identifies a frame within a match.
type FrameKey struct {
	MatchID string
	FrameID int64
}

// String renders the key as "match/frame".
func (k FrameKey) String() string {
	return fmt.Sprintf("%s/%d", k.MatchID, k.FrameID)
}

// FrameJob is the payload flowing through the frame queue.
type FrameJob struct {
	Frame    Frame
	Received time.Time
}
