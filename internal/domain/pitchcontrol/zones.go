package pitchcontrol

import (
	"github.com/footmetricx/pitchctl/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// neutralBand is the magnitude below which a cell counts as neutral.
const neutralBand = 1e-9

// Third is a longitudinal third of the pitch as seen by one team.
type Third int

const (
	Defensive Third = iota
	Middle
	Attacking
)

func (t Third) String() string {
	switch t {
	case Defensive:
		return "defensive"
	case Middle:
		return "middle"
	case Attacking:
		return "attacking"
	default:
		return "unknown"
	}
}

// ZoneStat describes one team's hold on a third.
type ZoneStat struct {
	// MeanControl is the mean cell control from the team's perspective, in [-1, 1].
	MeanControl float64 `json:"mean_control"`
	// ControlPct is the share of the third's cells favouring the team, in percent.
	ControlPct float64 `json:"control_pct"`
	Cells      int     `json:"cells"`
}

// TeamZones is one team's view of the pitch.
type TeamZones struct {
	Defensive  ZoneStat `json:"defensive_third"`
	Middle     ZoneStat `json:"middle_third"`
	Attacking  ZoneStat `json:"attacking_third"`
	OverallPct float64  `json:"overall_pct"`
}

// Zone returns the stat for a third.
func (z TeamZones) Zone(t Third) ZoneStat {
	switch t {
	case Defensive:
		return z.Defensive
	case Middle:
		return z.Middle
	default:
		return z.Attacking
	}
}

// ZoneSummary aggregates a control grid by team and third.
type ZoneSummary struct {
	Home        TeamZones `json:"home"`
	Away        TeamZones `json:"away"`
	NeutralPct  float64   `json:"neutral_pct"`
	BallControl float64   `json:"ball_control"`
	Cells       int       `json:"cells"`
}

// Share returns a team's overall percentage of favourable cells.
func (s ZoneSummary) Share(t model.Team) float64 {
	if t == model.Away {
		return s.Away.OverallPct
	}
	return s.Home.OverallPct
}

// Summarize reduces a grid to per-third statistics. homeAttacks orients the
// thirds; the away team's thirds mirror the home team's.
func Summarize(g *Grid, ball model.Vec2, homeAttacks model.Direction) ZoneSummary {
	cols, rows := g.Dims()
	length := g.Pitch().Length

	// Bucket cells by absolute third, left to right.
	var abs [3][]float64
	for col, x := range g.XCoords() {
		k := 2
		switch {
		case x < length/3:
			k = 0
		case x < 2*length/3:
			k = 1
		}
		for row := 0; row < rows; row++ {
			abs[k] = append(abs[k], g.At(col, row))
		}
	}

	all := g.Values()
	total := float64(cols * rows)
	homeCells := floats.Count(favoursHome, all)
	awayCells := floats.Count(favoursAway, all)

	s := ZoneSummary{
		NeutralPct:  pct(len(all)-homeCells-awayCells, total),
		BallControl: g.ValueAt(ball),
		Cells:       len(all),
	}
	s.Home.OverallPct = pct(homeCells, total)
	s.Away.OverallPct = pct(awayCells, total)

	for k := range abs {
		homeThird, awayThird := Third(k), Third(2-k)
		if homeAttacks == model.AttacksLeft {
			homeThird, awayThird = awayThird, homeThird
		}
		h, a := thirdStats(abs[k])
		setZone(&s.Home, homeThird, h)
		setZone(&s.Away, awayThird, a)
	}
	return s
}

func thirdStats(vals []float64) (home, away ZoneStat) {
	n := len(vals)
	home.Cells, away.Cells = n, n
	if n == 0 {
		return home, away
	}
	mean := stat.Mean(vals, nil)
	home.MeanControl, away.MeanControl = mean, -mean
	home.ControlPct = pct(floats.Count(favoursHome, vals), float64(n))
	away.ControlPct = pct(floats.Count(favoursAway, vals), float64(n))
	return home, away
}

func setZone(z *TeamZones, t Third, s ZoneStat) {
	switch t {
	case Defensive:
		z.Defensive = s
	case Middle:
		z.Middle = s
	default:
		z.Attacking = s
	}
}

func favoursHome(v float64) bool { return v > neutralBand }
func favoursAway(v float64) bool { return v < -neutralBand }

func pct(n int, total float64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / total
}
