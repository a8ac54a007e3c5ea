package snooker

import (
	"github.com/playmatatu/snooker/internal/physics"
)

// BallID is stable for the life of a ball; a respawned cue ball gets a new one.
type BallID int

// Ball is an entry in the registry. Position and velocity live in the
// physics world and are read through the registry.
type Ball struct {
	ID    BallID
	Color Color
	Body  physics.BodyID
}

// IsCue reports whether this is the white ball.
func (b *Ball) IsCue() bool {
	return b.Color == White
}

// BallState is a read-only view of a ball for notifications and snapshots.
type BallState struct {
	ID       BallID       `json:"id"`
	Color    Color        `json:"color"`
	Value    int          `json:"value"`
	Position physics.Vec2 `json:"position"`
	Velocity physics.Vec2 `json:"velocity"`
}

// Physics is the rigid-body collaborator the game drives.
type Physics interface {
	CreateBody(def physics.BodyDef) physics.BodyID
	RemoveBody(id physics.BodyID)
	ApplyImpulse(id physics.BodyID, impulse physics.Vec2) bool
	Position(id physics.BodyID) (physics.Vec2, bool)
	Velocity(id physics.BodyID) (physics.Vec2, bool)
	Sensor(id physics.BodyID) (physics.Pocket, bool)
	Step() []physics.Contact
}

// Registry owns the balls currently on the table. Every removal also
// removes the physics body so no stale contacts can arrive for it.
type Registry struct {
	world    Physics
	material physics.Material
	radius   float64
	balls    []*Ball
	byBody   map[physics.BodyID]*Ball
	nextID   BallID
}

func NewRegistry(world Physics, material physics.Material, radius float64) *Registry {
	return &Registry{
		world:    world,
		material: material,
		radius:   radius,
		byBody:   make(map[physics.BodyID]*Ball),
	}
}

// Add creates a ball and its body at pos. It always succeeds.
func (r *Registry) Add(color Color, pos physics.Vec2) *Ball {
	r.nextID++
	body := r.world.CreateBody(physics.BodyDef{
		Position: pos,
		Radius:   r.radius,
		Material: r.material,
	})
	b := &Ball{ID: r.nextID, Color: color, Body: body}
	r.balls = append(r.balls, b)
	r.byBody[body] = b
	return b
}

// ByBody finds the ball that owns a physics body.
func (r *Registry) ByBody(body physics.BodyID) (*Ball, bool) {
	b, ok := r.byBody[body]
	return b, ok
}

// RemoveByBody removes the ball owning body. It returns false when no such
// ball exists, which happens when a pocket contact races another removal.
func (r *Registry) RemoveByBody(body physics.BodyID) (*Ball, bool) {
	b, ok := r.byBody[body]
	if !ok {
		return nil, false
	}
	delete(r.byBody, body)
	for i, cur := range r.balls {
		if cur == b {
			r.balls = append(r.balls[:i], r.balls[i+1:]...)
			break
		}
	}
	r.world.RemoveBody(body)
	return b, true
}

// Clear removes every ball and body.
func (r *Registry) Clear() {
	for _, b := range r.balls {
		r.world.RemoveBody(b.Body)
	}
	r.balls = nil
	r.byBody = make(map[physics.BodyID]*Ball)
}

// Balls returns the registry contents in insertion order. The slice is a copy.
func (r *Registry) Balls() []*Ball {
	out := make([]*Ball, len(r.balls))
	copy(out, r.balls)
	return out
}

func (r *Registry) Len() int {
	return len(r.balls)
}

// Cue returns the white ball, if it is on the table.
func (r *Registry) Cue() (*Ball, bool) {
	for _, b := range r.balls {
		if b.IsCue() {
			return b, true
		}
	}
	return nil, false
}

// Count returns how many balls of a colour are on the table.
func (r *Registry) Count(color Color) int {
	n := 0
	for _, b := range r.balls {
		if b.Color == color {
			n++
		}
	}
	return n
}

func (r *Registry) Position(b *Ball) (physics.Vec2, bool) {
	return r.world.Position(b.Body)
}

func (r *Registry) State(b *Ball) BallState {
	pos, _ := r.world.Position(b.Body)
	vel, _ := r.world.Velocity(b.Body)
	return BallState{ID: b.ID, Color: b.Color, Value: b.Color.Value(), Position: pos, Velocity: vel}
}

// States returns a view of every ball on the table.
func (r *Registry) States() []BallState {
	out := make([]BallState, 0, len(r.balls))
	for _, b := range r.balls {
		out = append(out, r.State(b))
	}
	return out
}

// AllBelow reports whether every ball's speed is under threshold.
func (r *Registry) AllBelow(threshold float64) bool {
	for _, b := range r.balls {
		v, ok := r.world.Velocity(b.Body)
		if ok && v.Len() >= threshold {
			return false
		}
	}
	return true
}

// SweepOutOfBounds removes balls further than radius from the table centre
// and balls whose body the physics world no longer reports. It returns the
// removed balls.
func (r *Registry) SweepOutOfBounds(radius float64) []*Ball {
	var lost []*Ball
	for _, b := range r.Balls() {
		pos, ok := r.world.Position(b.Body)
		if ok && pos.Len() <= radius {
			continue
		}
		if removed, ok := r.RemoveByBody(b.Body); ok {
			lost = append(lost, removed)
		}
	}
	return lost
}
