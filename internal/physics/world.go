package physics

// MaxIterations caps the collision sub-steps resolved inside one tick.
const MaxIterations = 20

// BodyID identifies a dynamic body or a static pocket sensor.
type BodyID int

// Material describes how a body loses and exchanges energy.
type Material struct {
	Restitution float64 `json:"restitution" yaml:"restitution"` // ball-ball, clamped to [0.55, 1]
	Friction    float64 `json:"friction" yaml:"friction"`       // linear loss per tick, mm/tick
	LinearDrag  float64 `json:"linear_drag" yaml:"linear_drag"` // proportional loss per tick
}

// BodyDef is the construction input for CreateBody.
type BodyDef struct {
	Position Vec2
	Radius   float64
	Material Material
}

// ContactKind tags what a body touched.
type ContactKind uint8

const (
	ContactBody ContactKind = iota
	ContactCushion
	ContactSensor
)

func (k ContactKind) String() string {
	switch k {
	case ContactBody:
		return "body"
	case ContactCushion:
		return "cushion"
	case ContactSensor:
		return "sensor"
	default:
		return "unknown"
	}
}

// Contact is a raw collision report. For ContactSensor, A is the ball and B
// is the pocket sensor; for ContactCushion, B is zero.
type Contact struct {
	Kind  ContactKind
	A     BodyID
	B     BodyID
	Speed float64
}

type body struct {
	id       BodyID
	pos      Vec2
	vel      Vec2
	radius   float64
	mat      Material
	captured bool
}

type hitKind uint8

const (
	hitBody hitKind = iota
	hitCushion
	hitVertex
	hitPocket
)

type candidate struct {
	kind    hitKind
	t       float64
	a, b    *body
	cushion *Cushion
	vertex  Vec2
	pocket  *Pocket
}

// World simulates balls on a table. It is not safe for concurrent use; the
// owning game serialises all access.
type World struct {
	table      *Table
	bodies     []*body
	index      map[BodyID]*body
	sensors    map[BodyID]*Pocket
	nextID     BodyID
	SleepSpeed float64
}

// NewWorld creates an empty world over the table and registers one sensor
// per pocket.
func NewWorld(table *Table) *World {
	w := &World{
		table:      table,
		index:      make(map[BodyID]*body),
		sensors:    make(map[BodyID]*Pocket),
		SleepSpeed: 0.01,
	}
	for i := range table.Pockets {
		w.nextID++
		table.Pockets[i].ID = w.nextID
		w.sensors[w.nextID] = &table.Pockets[i]
	}
	return w
}

// SetSleepSpeed sets the speed below which a body is stopped after friction.
func (w *World) SetSleepSpeed(v float64) {
	if v > 0 {
		w.SleepSpeed = v
	}
}

func (w *World) Table() *Table {
	return w.table
}

// CreateBody adds a resting body and returns its id.
func (w *World) CreateBody(def BodyDef) BodyID {
	w.nextID++
	mat := def.Material
	if mat.Restitution < 0.55 {
		mat.Restitution = 0.55
	}
	if mat.Restitution > 1 {
		mat.Restitution = 1
	}
	b := &body{id: w.nextID, pos: def.Position, radius: def.Radius, mat: mat}
	w.bodies = append(w.bodies, b)
	w.index[b.id] = b
	return b.id
}

// RemoveBody deletes a body. Unknown ids are ignored.
func (w *World) RemoveBody(id BodyID) {
	if _, ok := w.index[id]; !ok {
		return
	}
	delete(w.index, id)
	for i, b := range w.bodies {
		if b.id == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
}

// ApplyImpulse adds the impulse to a body's velocity (all bodies have unit
// mass). Captured or unknown bodies are left alone.
func (w *World) ApplyImpulse(id BodyID, impulse Vec2) bool {
	b, ok := w.index[id]
	if !ok || b.captured {
		return false
	}
	b.vel = b.vel.Add(impulse)
	return true
}

func (w *World) Position(id BodyID) (Vec2, bool) {
	b, ok := w.index[id]
	if !ok {
		return Vec2{}, false
	}
	return b.pos, true
}

func (w *World) Velocity(id BodyID) (Vec2, bool) {
	b, ok := w.index[id]
	if !ok {
		return Vec2{}, false
	}
	return b.vel, true
}

// Bodies returns the ids of all dynamic bodies in creation order.
func (w *World) Bodies() []BodyID {
	ids := make([]BodyID, len(w.bodies))
	for i, b := range w.bodies {
		ids[i] = b.id
	}
	return ids
}

// Sensor looks up a pocket sensor by id.
func (w *World) Sensor(id BodyID) (Pocket, bool) {
	p, ok := w.sensors[id]
	if !ok {
		return Pocket{}, false
	}
	return *p, true
}

// Step advances the simulation by one tick and returns the contacts that
// happened during it, in time order.
func (w *World) Step() []Contact {
	var contacts []Contact
	remaining := 1.0

	for iter := 0; iter < MaxIterations && remaining > 0; iter++ {
		c, ok := w.earliest(remaining)
		if !ok {
			w.advance(remaining)
			remaining = 0
			break
		}
		dt := c.t * remaining
		w.advance(dt)
		remaining -= dt
		contacts = append(contacts, w.resolve(c))
	}
	if remaining > 0 {
		w.advance(remaining)
	}

	w.applyFriction()
	return contacts
}

func (w *World) earliest(remaining float64) (candidate, bool) {
	best := candidate{t: 2}
	found := false
	consider := func(c candidate) {
		if c.t < best.t {
			best = c
			found = true
		}
	}

	for i, a := range w.bodies {
		if a.captured {
			continue
		}

		for _, b := range w.bodies[i+1:] {
			if b.captured || (a.vel.IsZero() && b.vel.IsZero()) {
				continue
			}
			if !converging(a.pos, b.pos, a.vel, b.vel) {
				continue
			}
			rel := a.vel.Sub(b.vel).Scale(remaining)
			if t, ok := sweepCircle(a.pos, rel, b.pos, a.radius+b.radius); ok {
				consider(candidate{kind: hitBody, t: t, a: a, b: b})
			}
		}

		if a.vel.IsZero() {
			continue
		}
		d := a.vel.Scale(remaining)

		for ci := range w.table.Cushions {
			cu := &w.table.Cushions[ci]
			if d.Dot(cu.Normal) >= 0 {
				continue
			}
			off := cu.Normal.Scale(a.radius)
			if t, ok := sweepSegment(a.pos, d, cu.From.Add(off), cu.To.Add(off)); ok {
				consider(candidate{kind: hitCushion, t: t, a: a, cushion: cu})
			}
		}

		for _, v := range w.table.Vertices {
			if t, ok := sweepCircle(a.pos, d, v, a.radius); ok {
				consider(candidate{kind: hitVertex, t: t, a: a, vertex: v})
			}
		}

		for pi := range w.table.Pockets {
			p := &w.table.Pockets[pi]
			if t, ok := sweepCircle(a.pos, d, p.Position, p.Radius); ok {
				consider(candidate{kind: hitPocket, t: t, a: a, pocket: p})
			}
		}
	}
	return best, found
}

func (w *World) advance(dt float64) {
	if dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.captured || b.vel.IsZero() {
			continue
		}
		b.pos = b.pos.Add(b.vel.Scale(dt))
	}
}

func (w *World) resolve(c candidate) Contact {
	switch c.kind {
	case hitBody:
		return w.resolveBodies(c.a, c.b)
	case hitCushion:
		return w.resolveCushion(c.a, c.cushion.Normal)
	case hitVertex:
		return w.resolveCushion(c.a, c.a.pos.Sub(c.vertex).Normalize())
	default:
		return w.resolvePocket(c.a, c.pocket)
	}
}

// resolveBodies exchanges the normal components of the two velocities,
// blended by the pair's restitution; tangential components are kept.
func (w *World) resolveBodies(a, b *body) Contact {
	n := b.pos.Sub(a.pos).Normalize()
	an := a.vel.Dot(n)
	bn := b.vel.Dot(n)
	e := (a.mat.Restitution + b.mat.Restitution) / 2

	newAN := e*bn + (1-e)*an
	newBN := e*an + (1-e)*bn
	a.vel = a.vel.Add(n.Scale(newAN - an))
	b.vel = b.vel.Add(n.Scale(newBN - bn))

	speed := an - bn
	if speed < 0 {
		speed = -speed
	}
	return Contact{Kind: ContactBody, A: a.id, B: b.id, Speed: speed}
}

// resolveCushion reflects the component of velocity along n, the surface
// normal facing the ball.
func (w *World) resolveCushion(a *body, n Vec2) Contact {
	vn := a.vel.Dot(n)
	normal := n.Scale(vn)
	tangent := a.vel.Sub(normal)
	a.vel = tangent.Sub(normal.Scale(w.table.CushionRestitution))
	a.pos = a.pos.Add(n.Scale(0.01))

	if vn < 0 {
		vn = -vn
	}
	return Contact{Kind: ContactCushion, A: a.id, Speed: vn}
}

func (w *World) resolvePocket(a *body, p *Pocket) Contact {
	speed := a.vel.Len()
	a.captured = true
	a.vel = Vec2{}
	a.pos = p.Position
	return Contact{Kind: ContactSensor, A: a.id, B: p.ID, Speed: speed}
}

func (w *World) applyFriction() {
	for _, b := range w.bodies {
		if b.captured || b.vel.IsZero() {
			continue
		}
		speed := b.vel.Len()*(1-b.mat.LinearDrag) - b.mat.Friction
		if speed < w.SleepSpeed {
			b.vel = Vec2{}
			continue
		}
		b.vel = b.vel.Normalize().Scale(speed)
	}
}
