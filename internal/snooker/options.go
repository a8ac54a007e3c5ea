package snooker

import (
	"time"

	"github.com/playmatatu/snooker/internal/physics"
)

// Options tunes a game. Zero fields take the defaults below.
type Options struct {
	TickRate          int
	RestSpeed         float64
	FoulPenalty       int
	RespawnDelay      time.Duration
	AnnounceDelay     time.Duration
	RackDelay         time.Duration
	MaxPower          float64
	MinPowerDistance  float64
	MaxPowerDistance  float64
	RandomReds        int
	PracticeReds      int
	OutOfBoundsRadius float64
	DRadius           float64
	Material          physics.Material
	ManualRespawn     bool

	RulesMode RulesMode
	Layout    LayoutMode
	Seed      int64
	Notifier  Notifier
}

// DefaultOptions returns the tuning used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TickRate:          60,
		RestSpeed:         0.05,
		FoulPenalty:       DefaultFoulPenalty,
		RespawnDelay:      time.Second,
		AnnounceDelay:     1500 * time.Millisecond,
		RackDelay:         2 * time.Second,
		MaxPower:          110,
		MinPowerDistance:  50,
		MaxPowerDistance:  300,
		RandomReds:        10,
		PracticeReds:      5,
		OutOfBoundsRadius: 2400,
		DRadius:           DRadius,
		Material:          physics.Material{Restitution: 0.95, Friction: 0.12, LinearDrag: 0.004},
		RulesMode:         RulesStandard,
		Layout:            LayoutTriangle,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TickRate <= 0 {
		o.TickRate = d.TickRate
	}
	if o.RestSpeed <= 0 {
		o.RestSpeed = d.RestSpeed
	}
	if o.FoulPenalty <= 0 {
		o.FoulPenalty = d.FoulPenalty
	}
	if o.RespawnDelay <= 0 {
		o.RespawnDelay = d.RespawnDelay
	}
	if o.AnnounceDelay <= 0 {
		o.AnnounceDelay = d.AnnounceDelay
	}
	if o.RackDelay <= 0 {
		o.RackDelay = d.RackDelay
	}
	if o.MaxPower <= 0 {
		o.MaxPower = d.MaxPower
	}
	if o.MinPowerDistance < 0 || o.MaxPowerDistance <= o.MinPowerDistance {
		o.MinPowerDistance = d.MinPowerDistance
		o.MaxPowerDistance = d.MaxPowerDistance
	}
	if o.RandomReds <= 0 {
		o.RandomReds = d.RandomReds
	}
	if o.PracticeReds <= 0 {
		o.PracticeReds = d.PracticeReds
	}
	if o.OutOfBoundsRadius <= 0 {
		o.OutOfBoundsRadius = d.OutOfBoundsRadius
	}
	if o.DRadius <= 0 {
		o.DRadius = d.DRadius
	}
	if o.Material == (physics.Material{}) {
		o.Material = d.Material
	}
	if o.RulesMode == "" {
		o.RulesMode = d.RulesMode
	}
	if o.Layout == "" {
		o.Layout = d.Layout
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	return o
}

// TickDuration is the simulated time covered by one tick.
func (o Options) TickDuration() time.Duration {
	rate := o.TickRate
	if rate <= 0 {
		rate = DefaultOptions().TickRate
	}
	return time.Second / time.Duration(rate)
}
