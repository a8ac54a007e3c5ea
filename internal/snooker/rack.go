package snooker

import (
	"math"
	"math/rand"

	"github.com/playmatatu/snooker/internal/physics"
)

// Table markings in millimetres, origin at the table centre, baulk end at -X.
const (
	BaulkLineFromCushion = 737.0
	DRadius              = 292.0
	BlackFromCushion     = 324.0
	TriangleReds         = 15
	TriangleRows         = 5
	rackGap              = 0.5
	randomMargin         = 120.0
	placementAttempts    = 500
)

// Spots holds the fixed positions a rack is built from.
type Spots struct {
	Kitchen physics.Vec2
	Baulk   float64
	DRadius float64
	Colours map[Color]physics.Vec2
}

// StandardSpots returns the snooker spots for a table of the given half
// length. The kitchen spot is where the cue ball starts and respawns.
func StandardSpots(halfLength, dRadius float64) Spots {
	baulk := -halfLength + BaulkLineFromCushion
	return Spots{
		Kitchen: physics.V(baulk-dRadius/2, 0),
		Baulk:   baulk,
		DRadius: dRadius,
		Colours: map[Color]physics.Vec2{
			Yellow: physics.V(baulk, dRadius),
			Green:  physics.V(baulk, -dRadius),
			Brown:  physics.V(baulk, 0),
			Blue:   physics.V(0, 0),
			Pink:   physics.V(halfLength/2, 0),
			Black:  physics.V(halfLength-BlackFromCushion, 0),
		},
	}
}

// DZone returns the D in front of the baulk line.
func (s Spots) DZone() DZone {
	return DZone{Center: physics.V(s.Baulk, 0), Radius: s.DRadius, AnchorX: s.Baulk}
}

// Placement is one object ball of a rack.
type Placement struct {
	Color    Color
	Position physics.Vec2
}

// RackSpec describes the table a rack is laid out on.
type RackSpec struct {
	Spots        Spots
	HalfLength   float64
	HalfWidth    float64
	BallRadius   float64
	RandomReds   int
	PracticeReds int
}

// Layout returns the object balls for a layout mode. The cue ball is not
// included; it always goes on the kitchen spot.
func (rs RackSpec) Layout(mode LayoutMode, rng *rand.Rand) []Placement {
	switch mode {
	case LayoutRandom:
		out := rs.scatter(rng, nil, Red, rs.RandomReds)
		for _, c := range pickColours(rng, 2) {
			out = rs.scatter(rng, out, c, 1)
		}
		return out
	case LayoutPractice:
		return rs.scatter(rng, nil, Red, rs.PracticeReds)
	default:
		return rs.triangle()
	}
}

// triangle packs fifteen reds behind the pink, apex towards baulk, and puts
// every colour on its spot.
func (rs RackSpec) triangle() []Placement {
	out := make([]Placement, 0, TriangleReds+len(Colours))
	for _, c := range Colours {
		out = append(out, Placement{Color: c, Position: rs.Spots.Colours[c]})
	}

	d := 2*rs.BallRadius + rackGap
	apex := rs.Spots.Colours[Pink].Add(physics.V(d, 0))
	rowStep := d * math.Sqrt(3) / 2
	for row := 0; row < TriangleRows; row++ {
		x := apex.X + float64(row)*rowStep
		for i := 0; i <= row; i++ {
			y := (float64(i) - float64(row)/2) * d
			out = append(out, Placement{Color: Red, Position: physics.V(x, y)})
		}
	}
	return out
}

// scatter adds n balls of colour c at random points in the top half of the
// table, keeping clear of the balls already placed and of the kitchen spot.
func (rs RackSpec) scatter(rng *rand.Rand, placed []Placement, c Color, n int) []Placement {
	minX := 0.0
	maxX := rs.HalfLength - randomMargin
	minY := -rs.HalfWidth + randomMargin
	maxY := rs.HalfWidth - randomMargin
	clear := 2*rs.BallRadius + 4*rackGap

	for k := 0; k < n; k++ {
		for attempt := 0; attempt < placementAttempts; attempt++ {
			p := physics.V(minX+rng.Float64()*(maxX-minX), minY+rng.Float64()*(maxY-minY))
			if p.Dist(rs.Spots.Kitchen) < clear || overlaps(placed, p, clear) {
				continue
			}
			placed = append(placed, Placement{Color: c, Position: p})
			break
		}
	}
	return placed
}

func overlaps(placed []Placement, p physics.Vec2, clear float64) bool {
	for _, o := range placed {
		if o.Position.Dist(p) < clear {
			return true
		}
	}
	return false
}

func pickColours(rng *rand.Rand, n int) []Color {
	idx := rng.Perm(len(Colours))
	out := make([]Color, 0, n)
	for _, i := range idx[:n] {
		out = append(out, Colours[i])
	}
	return out
}
