package physics

// Snooker table dimensions in millimetres. The playing area is centred on
// the origin with the long axis on X; baulk is the negative X end.
const (
	HalfLength    = 1784.5 // 3569 / 2
	HalfWidth     = 889.0  // 1778 / 2
	BallRadius    = 26.25
	CornerGap     = 90.0 // rail set-back from a corner on each rail
	MiddleGap     = 55.0 // rail set-back from a middle pocket centre
	JawDepth      = 40.0
	CornerPocketR = 70.0
	MiddlePocketR = 62.0
)

// Cushion is a rail or jaw segment. Collisions are tested against the
// segment offset into the table by the ball radius.
type Cushion struct {
	Name      string `json:"name"`
	From      Vec2   `json:"from"`
	To        Vec2   `json:"to"`
	Normal    Vec2   `json:"normal"`
	Direction Vec2   `json:"direction"`
	contactA  Vec2
	contactB  Vec2
}

// Pocket is a static sensor zone.
type Pocket struct {
	ID       BodyID  `json:"id"`
	Name     string  `json:"name"`
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Table holds the static geometry the world collides against.
type Table struct {
	Cushions           []Cushion
	Vertices           []Vec2
	Pockets            []Pocket
	CushionRestitution float64
}

func newCushion(name string, from, to Vec2, radius float64) Cushion {
	dir := to.Sub(from).Normalize()
	normal := dir.LeftNormal()
	offset := normal.Scale(radius)
	return Cushion{
		Name:      name,
		From:      from,
		To:        to,
		Normal:    normal,
		Direction: dir,
		contactA:  from.Add(offset),
		contactB:  to.Add(offset),
	}
}

// NewSnookerTable builds a full-size table with six pockets and angled jaws.
// Rails are walked so that every left normal faces the playing area.
func NewSnookerTable() *Table {
	l, w := HalfLength, HalfWidth
	c, m, j := CornerGap, MiddleGap, JawDepth

	type rail struct {
		name          string
		from, to      Vec2
		inJaw, outJaw float64 // run of the jaw along the rail
	}
	rails := []rail{
		{"top-baulk", V(-l+c, -w), V(-m, -w), j, j / 2},
		{"top-black", V(m, -w), V(l-c, -w), j / 2, j},
		{"black-end", V(l, -w+c), V(l, w-c), j, j},
		{"bottom-black", V(l-c, w), V(m, w), j, j / 2},
		{"bottom-baulk", V(-m, w), V(-l+c, w), j / 2, j},
		{"baulk-end", V(-l, w-c), V(-l, -w+c), j, j},
	}

	t := &Table{CushionRestitution: 0.75}
	for _, r := range rails {
		dir := r.to.Sub(r.from).Normalize()
		out := dir.RightNormal()

		jawStart := r.from.Sub(dir.Scale(r.inJaw)).Add(out.Scale(j))
		jawEnd := r.to.Add(dir.Scale(r.outJaw)).Add(out.Scale(j))

		t.Cushions = append(t.Cushions,
			newCushion(r.name+"-jaw-in", jawStart, r.from, BallRadius),
			newCushion(r.name, r.from, r.to, BallRadius),
			newCushion(r.name+"-jaw-out", r.to, jawEnd, BallRadius),
		)
		t.Vertices = append(t.Vertices, r.from, r.to)
	}

	t.Pockets = []Pocket{
		{Name: "top-left", Position: V(-l, -w), Radius: CornerPocketR},
		{Name: "top-middle", Position: V(0, -w-30), Radius: MiddlePocketR},
		{Name: "top-right", Position: V(l, -w), Radius: CornerPocketR},
		{Name: "bottom-right", Position: V(l, w), Radius: CornerPocketR},
		{Name: "bottom-middle", Position: V(0, w+30), Radius: MiddlePocketR},
		{Name: "bottom-left", Position: V(-l, w), Radius: CornerPocketR},
	}
	return t
}

// Contains reports whether a point lies inside the cushioned playing area.
func (t *Table) Contains(p Vec2) bool {
	return p.X >= -HalfLength && p.X <= HalfLength && p.Y >= -HalfWidth && p.Y <= HalfWidth
}
