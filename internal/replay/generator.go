package replay

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/footmetricx/pitchctl/internal/domain/types"
	"github.com/footmetricx/pitchctl/pkg/logger"
	"gonum.org/v1/gonum/stat/distuv"
)

// 4-4-2 starting shape for a team attacking right, in pitch fractions.
var formation = [playersPerTeam][2]float64{ //nolint:gochecknoglobals // static layout
	{0.05, 0.50},
	{0.20, 0.15}, {0.20, 0.38}, {0.20, 0.62}, {0.20, 0.85},
	{0.35, 0.15}, {0.35, 0.38}, {0.35, 0.62}, {0.35, 0.85},
	{0.45, 0.40}, {0.45, 0.60},
}

type mover struct {
	pos, vel types.Vec2
}

// matchGenerator produces a random-walk match. The same seed always yields
// the same frames.
type matchGenerator struct {
	matchID string
	dt      float64
	noise   distuv.Normal
	ball    distuv.Normal
	home    [playersPerTeam]mover
	away    [playersPerTeam]mover
	ballPos types.Vec2
}

func newMatchGenerator(matchID string, seed uint64, frameRate float64) *matchGenerator {
	if frameRate <= 0 {
		frameRate = defaultFrameRate
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	g := &matchGenerator{
		matchID: matchID,
		dt:      1 / frameRate,
		noise:   distuv.Normal{Mu: 0, Sigma: playerStepSigma, Src: src},
		ball:    distuv.Normal{Mu: 0, Sigma: ballStepSigma, Src: src},
		ballPos: types.Vec2{X: pitchLength / 2, Y: pitchWidth / 2},
	}
	for i, f := range formation {
		g.home[i].pos = types.Vec2{X: f[0] * pitchLength, Y: f[1] * pitchWidth}
		g.away[i].pos = types.Vec2{X: (1 - f[0]) * pitchLength, Y: (1 - f[1]) * pitchWidth}
	}
	return g
}

// next advances the match by one frame.
func (g *matchGenerator) next(frameID int64, secondHalf bool) types.Frame {
	for i := range g.home {
		g.step(&g.home[i])
		g.step(&g.away[i])
	}
	g.ballPos.X = fold(g.ballPos.X+g.ball.Rand()*g.dt, pitchLength)
	g.ballPos.Y = fold(g.ballPos.Y+g.ball.Rand()*g.dt, pitchWidth)

	attacks := "right"
	if secondHalf {
		attacks = "left"
	}
	return types.Frame{
		MatchID:     g.matchID,
		FrameID:     frameID,
		TimestampMs: int64(math.Round(float64(frameID) * g.dt * millisPerSecond)),
		Ball:        g.ballPos,
		HomeAttacks: attacks,
		Home:        players("h", "home", g.home[:]),
		Away:        players("a", "away", g.away[:]),
	}
}

func (g *matchGenerator) step(m *mover) {
	m.vel.X += g.noise.Rand()
	m.vel.Y += g.noise.Rand()
	if speed := math.Hypot(m.vel.X, m.vel.Y); speed > maxPlayerSpeed {
		m.vel.X *= maxPlayerSpeed / speed
		m.vel.Y *= maxPlayerSpeed / speed
	}
	x := m.pos.X + m.vel.X*g.dt
	y := m.pos.Y + m.vel.Y*g.dt
	if x < 0 || x > pitchLength {
		m.vel.X = -m.vel.X
	}
	if y < 0 || y > pitchWidth {
		m.vel.Y = -m.vel.Y
	}
	m.pos = types.Vec2{X: fold(x, pitchLength), Y: fold(y, pitchWidth)}
}

// fold folds v back into [0, limit].
func fold(v, limit float64) float64 {
	switch {
	case v < 0:
		return math.Min(-v, limit)
	case v > limit:
		return math.Max(2*limit-v, 0)
	default:
		return v
	}
}

func players(prefix, team string, ms []mover) []types.Player {
	out := make([]types.Player, len(ms))
	for i, m := range ms {
		out[i] = types.Player{
			PlayerID: fmt.Sprintf("%s%d", prefix, i+1),
			Team:     team,
			Position: m.pos,
			Velocity: m.vel,
		}
	}
	return out
}

// GenerateFrames creates the synthetic match. Teams switch ends at half time.
func GenerateFrames(ctx context.Context, config *Config, stats *Stats) ([]types.Frame, error) {
	logger.Get().Info(ctx, "generating synthetic match",
		logger.String("matchID", config.MatchID),
		logger.Int("frames", config.Frames),
		logger.Int64("seed", int64(config.Seed)))

	g := newMatchGenerator(config.MatchID, config.Seed, config.FrameRate)
	frames := make([]types.Frame, config.Frames)
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during frame generation: %w", err)
		}
		frames[i] = g.next(int64(i+1), i >= config.Frames/2)
	}

	stats.FramesGenerated = len(frames)
	return frames, nil
}
