package physics

import (
	"math"
	"testing"
)

var testCloth = Material{Restitution: 0.95, Friction: 0.12, LinearDrag: 0.004}

func newTestWorld() *World {
	return NewWorld(NewSnookerTable())
}

func addBall(w *World, x, y float64) BodyID {
	return w.CreateBody(BodyDef{Position: V(x, y), Radius: BallRadius, Material: testCloth})
}

func runUntilStill(w *World, maxTicks int) []Contact {
	var all []Contact
	for i := 0; i < maxTicks; i++ {
		all = append(all, w.Step()...)
		moving := false
		for _, id := range w.Bodies() {
			if v, _ := w.Velocity(id); !v.IsZero() {
				moving = true
				break
			}
		}
		if !moving {
			break
		}
	}
	return all
}

func TestStraightShotMovesTarget(t *testing.T) {
	w := newTestWorld()
	cue := addBall(w, -500, 0)
	target := addBall(w, 0, 0)

	w.ApplyImpulse(cue, V(30, 0))
	contacts := runUntilStill(w, 2000)

	pos, _ := w.Position(target)
	if pos.X <= 0 {
		t.Errorf("target ball did not move right: x=%.2f", pos.X)
	}

	hit := false
	for _, c := range contacts {
		if c.Kind == ContactBody && c.A == cue && c.B == target {
			hit = true
		}
	}
	if !hit {
		t.Error("expected a cue/target body contact")
	}
}

func TestHeadOnCollisionTransfersMomentum(t *testing.T) {
	w := newTestWorld()
	cue := addBall(w, -300, 0)
	target := addBall(w, 0, 0)
	w.ApplyImpulse(cue, V(20, 0))

	for i := 0; i < 40; i++ {
		w.Step()
	}

	cv, _ := w.Velocity(cue)
	tv, _ := w.Velocity(target)
	if tv.X <= cv.X {
		t.Errorf("target should carry more speed than cue after head-on hit: cue=%.3f target=%.3f", cv.X, tv.X)
	}
	if math.Abs(tv.Y) > 1e-9 || math.Abs(cv.Y) > 1e-9 {
		t.Errorf("head-on hit should stay on the x axis: cue=%v target=%v", cv, tv)
	}
}

func TestFrictionStopsBall(t *testing.T) {
	w := newTestWorld()
	id := addBall(w, 0, 0)
	w.ApplyImpulse(id, V(5, 0))

	runUntilStill(w, 1000)

	v, _ := w.Velocity(id)
	if !v.IsZero() {
		t.Errorf("ball should have stopped, velocity=%v", v)
	}
	p, _ := w.Position(id)
	if p.X <= 0 {
		t.Errorf("ball should have rolled right before stopping, x=%.2f", p.X)
	}
}

func TestCushionBounce(t *testing.T) {
	w := newTestWorld()
	id := addBall(w, 1500, 0)
	w.ApplyImpulse(id, V(20, 0))

	var cushion bool
	for i := 0; i < 60; i++ {
		for _, c := range w.Step() {
			if c.Kind == ContactCushion && c.A == id {
				cushion = true
			}
		}
	}

	if !cushion {
		t.Fatal("expected a cushion contact")
	}
	v, _ := w.Velocity(id)
	if v.X >= 0 {
		t.Errorf("ball should travel back after the cushion, vx=%.3f", v.X)
	}
	p, _ := w.Position(id)
	if p.X > HalfLength-BallRadius+0.1 {
		t.Errorf("ball passed through the cushion: x=%.3f", p.X)
	}
}

func TestPocketSensorCapturesBall(t *testing.T) {
	w := newTestWorld()
	id := addBall(w, HalfLength-200, HalfWidth-200)
	w.ApplyImpulse(id, V(10, 10))

	var sensor BodyID
	for i := 0; i < 100 && sensor == 0; i++ {
		for _, c := range w.Step() {
			if c.Kind == ContactSensor && c.A == id {
				sensor = c.B
			}
		}
	}

	if sensor == 0 {
		t.Fatal("ball heading into the corner was not pocketed")
	}
	p, ok := w.Sensor(sensor)
	if !ok {
		t.Fatalf("contact carried unknown sensor id %d", sensor)
	}
	if p.Name != "bottom-right" {
		t.Errorf("expected bottom-right pocket, got %s", p.Name)
	}

	// A captured ball produces no further contacts and cannot be struck.
	if w.ApplyImpulse(id, V(5, 0)) {
		t.Error("impulse on a captured ball should be refused")
	}
	for i := 0; i < 10; i++ {
		if cs := w.Step(); len(cs) != 0 {
			t.Errorf("captured ball kept producing contacts: %v", cs)
		}
	}
}

func TestRemoveBody(t *testing.T) {
	w := newTestWorld()
	a := addBall(w, 0, 0)
	b := addBall(w, 100, 0)

	w.RemoveBody(a)
	w.RemoveBody(a) // unknown ids are ignored

	if _, ok := w.Position(a); ok {
		t.Error("removed body still reports a position")
	}
	ids := w.Bodies()
	if len(ids) != 1 || ids[0] != b {
		t.Errorf("expected only body %d to remain, got %v", b, ids)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []Vec2 {
		w := newTestWorld()
		cue := addBall(w, -600, 10)
		addBall(w, 0, 0)
		addBall(w, 60, 30)
		addBall(w, 60, -30)
		w.ApplyImpulse(cue, V(60, 0))
		runUntilStill(w, 3000)
		var out []Vec2
		for _, id := range w.Bodies() {
			p, _ := w.Position(id)
			out = append(out, p)
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("non-deterministic body %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestBallsStayOnTable(t *testing.T) {
	w := newTestWorld()
	cue := addBall(w, -1000, 0)
	for i := 0; i < 5; i++ {
		addBall(w, float64(i)*60, float64(i%2)*30)
	}
	w.ApplyImpulse(cue, V(100, 7))
	runUntilStill(w, 5000)

	for _, id := range w.Bodies() {
		p, _ := w.Position(id)
		if math.Abs(p.X) > HalfLength+CornerPocketR || math.Abs(p.Y) > HalfWidth+CornerPocketR {
			t.Errorf("body %d escaped the table: %v", id, p)
		}
	}
}

func TestSweepSegment(t *testing.T) {
	tests := []struct {
		name  string
		p, d  Vec2
		a, b  Vec2
		want  float64
		found bool
	}{
		{"crosses midway", V(0, 0), V(10, 0), V(5, -1), V(5, 1), 0.5, true},
		{"stops short", V(0, 0), V(4, 0), V(5, -1), V(5, 1), 0, false},
		{"parallel", V(0, 0), V(10, 0), V(0, 1), V(10, 1), 0, false},
		{"misses segment end", V(0, 5), V(10, 0), V(5, -1), V(5, 1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sweepSegment(tt.p, tt.d, tt.a, tt.b)
			if ok != tt.found {
				t.Fatalf("found=%v, want %v", ok, tt.found)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("t=%.4f, want %.4f", got, tt.want)
			}
		})
	}
}
