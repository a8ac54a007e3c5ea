package physics

import "math"

// sweepCircle returns the earliest fraction t in [0, 1] at which a point
// travelling from p by d comes within radius r of centre c. A point that
// already starts inside reports t = 0 only while it is still closing in.
func sweepCircle(p, d, c Vec2, r float64) (float64, bool) {
	f := p.Sub(c)
	b := 2 * f.Dot(d)
	cc := f.LenSq() - r*r

	if cc <= 0 {
		if b < 0 {
			return 0, true
		}
		return 0, false
	}

	a := d.LenSq()
	if a == 0 || b >= 0 {
		return 0, false
	}

	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, false
	}

	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// sweepSegment returns the fraction t in [0, 1] at which the path p -> p+d
// crosses the segment a-b, and false when the two do not cross.
func sweepSegment(p, d, a, b Vec2) (float64, bool) {
	e := b.Sub(a)
	denom := d.X*e.Y - d.Y*e.X
	if denom == 0 {
		return 0, false
	}

	w := a.Sub(p)
	t := (w.X*e.Y - w.Y*e.X) / denom
	u := (w.X*d.Y - w.Y*d.X) / denom

	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// converging reports whether two moving points are closing on each other.
func converging(posA, posB, velA, velB Vec2) bool {
	return velB.Sub(velA).Dot(posB.Sub(posA)) < 0
}
