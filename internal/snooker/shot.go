package snooker

import (
	"github.com/playmatatu/snooker/internal/physics"
)

// ShotPhase is the input state of the shot controller.
type ShotPhase string

const (
	PhaseIdle           ShotPhase = "IDLE"
	PhasePlacingCueBall ShotPhase = "PLACING_CUE_BALL"
	PhaseAiming         ShotPhase = "AIMING"
	PhaseShotInFlight   ShotPhase = "SHOT_IN_FLIGHT"
)

// DZone is the semicircle behind the baulk line where the cue ball may be
// placed by hand.
type DZone struct {
	Center  physics.Vec2 `json:"center"`
	Radius  float64      `json:"radius"`
	AnchorX float64      `json:"anchor_x"`
}

// Contains reports whether p is a legal placement point.
func (d DZone) Contains(p physics.Vec2) bool {
	return p.X < d.AnchorX && p.Dist(d.Center) <= d.Radius
}

// PowerCurve maps pointer distance from the cue ball to shot power over a
// linear window.
type PowerCurve struct {
	MinDistance float64 `json:"min_distance"`
	MaxDistance float64 `json:"max_distance"`
	MaxPower    float64 `json:"max_power"`
}

// Power returns the clamped power for a pointer at distance d.
func (c PowerCurve) Power(d float64) float64 {
	span := c.MaxDistance - c.MinDistance
	if span <= 0 {
		return 0
	}
	f := (d - c.MinDistance) / span
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f * c.MaxPower
}

// Shot is a fired stroke.
type Shot struct {
	Origin  physics.Vec2 `json:"origin"`
	Angle   float64      `json:"angle"`
	Power   float64      `json:"power"`
	Impulse physics.Vec2 `json:"impulse"`
}

// ShotController turns pointer input into at most one impulse per shot.
type ShotController struct {
	phase    ShotPhase
	dzone    DZone
	curve    PowerCurve
	origin   physics.Vec2
	angle    float64
	power    float64
	uiActive bool
}

func NewShotController(dzone DZone, curve PowerCurve) *ShotController {
	return &ShotController{phase: PhaseIdle, dzone: dzone, curve: curve}
}

func (s *ShotController) Phase() ShotPhase {
	return s.phase
}

// Aim returns the current aim angle in radians and power.
func (s *ShotController) Aim() (float64, float64) {
	return s.angle, s.power
}

func (s *ShotController) DZone() DZone {
	return s.dzone
}

// SetUIActive marks pointer input as targeting a menu or other UI surface.
func (s *ShotController) SetUIActive(active bool) {
	s.uiActive = active
}

// StartAim begins aiming from the cue ball. From PlacingCueBall it accepts
// the cue ball where it already is.
func (s *ShotController) StartAim(cue, pointer physics.Vec2) bool {
	if s.uiActive {
		return false
	}
	if s.phase != PhaseIdle && s.phase != PhasePlacingCueBall {
		return false
	}
	s.phase = PhaseAiming
	s.track(cue, pointer)
	return true
}

// MoveAim updates angle and power while aiming.
func (s *ShotController) MoveAim(cue, pointer physics.Vec2) bool {
	if s.phase != PhaseAiming {
		return false
	}
	s.track(cue, pointer)
	return true
}

func (s *ShotController) track(cue, pointer physics.Vec2) {
	s.origin = cue
	delta := pointer.Sub(cue)
	s.angle = delta.Angle()
	s.power = s.curve.Power(delta.Len())
}

// Release fires the shot. A release while UI is active, or with no power,
// cancels the aim instead.
func (s *ShotController) Release() (Shot, bool) {
	if s.phase != PhaseAiming {
		return Shot{}, false
	}
	if s.uiActive || s.power <= 0 {
		s.power = 0
		s.phase = PhaseIdle
		return Shot{}, false
	}

	s.phase = PhaseShotInFlight
	return Shot{
		Origin:  s.origin,
		Angle:   s.angle,
		Power:   s.power,
		Impulse: physics.FromAngle(s.angle, s.power),
	}, true
}

// Place accepts a cue-ball placement point inside the D. Anything else is
// ignored.
func (s *ShotController) Place(p physics.Vec2) bool {
	if s.phase != PhasePlacingCueBall || !s.dzone.Contains(p) {
		return false
	}
	s.phase = PhaseIdle
	return true
}

// RequirePlacement puts the controller in ball-in-hand.
func (s *ShotController) RequirePlacement() {
	s.phase = PhasePlacingCueBall
	s.power = 0
}

// Ready returns the controller to Idle after a shot has been judged.
func (s *ShotController) Ready() {
	s.phase = PhaseIdle
	s.power = 0
}
