package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/playmatatu/snooker/internal/physics"
	"github.com/playmatatu/snooker/internal/snooker"
)

//go:embed defaults/table.yaml
var defaultTableYAML []byte

// localTablePath is checked when no TABLE_CONFIG path is set.
var localTablePath = "configs/table.yaml"

// TableConfig is the tuning shared by every table on the server.
type TableConfig struct {
	TickRate          int              `yaml:"tick_rate"`
	RestSpeed         float64          `yaml:"rest_speed"`
	FoulPenalty       int              `yaml:"foul_penalty"`
	Delays            TableDelays      `yaml:"delays"`
	Shot              TableShot        `yaml:"shot"`
	Layout            TableLayout      `yaml:"layout"`
	OutOfBoundsRadius float64          `yaml:"out_of_bounds_radius"`
	ManualRespawn     bool             `yaml:"manual_respawn"`
	Ball              physics.Material `yaml:"ball"`
}

type TableDelays struct {
	RespawnMS  int `yaml:"respawn_ms"`
	AnnounceMS int `yaml:"announce_ms"`
	RackMS     int `yaml:"rack_ms"`
}

type TableShot struct {
	MaxPower    float64 `yaml:"max_power"`
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
}

type TableLayout struct {
	RandomReds   int     `yaml:"random_reds"`
	PracticeReds int     `yaml:"practice_reds"`
	DRadius      float64 `yaml:"d_radius"`
}

// DefaultTableConfig returns the built-in tuning.
func DefaultTableConfig() TableConfig {
	o := snooker.DefaultOptions()
	return TableConfig{
		TickRate:    o.TickRate,
		RestSpeed:   o.RestSpeed,
		FoulPenalty: o.FoulPenalty,
		Delays: TableDelays{
			RespawnMS:  int(o.RespawnDelay / time.Millisecond),
			AnnounceMS: int(o.AnnounceDelay / time.Millisecond),
			RackMS:     int(o.RackDelay / time.Millisecond),
		},
		Shot: TableShot{
			MaxPower:    o.MaxPower,
			MinDistance: o.MinPowerDistance,
			MaxDistance: o.MaxPowerDistance,
		},
		Layout: TableLayout{
			RandomReds:   o.RandomReds,
			PracticeReds: o.PracticeReds,
			DRadius:      o.DRadius,
		},
		OutOfBoundsRadius: o.OutOfBoundsRadius,
		ManualRespawn:     o.ManualRespawn,
		Ball:              o.Material,
	}
}

// LoadTable loads table tuning.
// Search order: customPath -> ./configs/table.yaml -> embedded default.
// A local file that fails to parse is logged and skipped.
func LoadTable(customPath string) (TableConfig, error) {
	var cfg TableConfig

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		log.Printf("[CONFIG] Table tuning loaded from %s", customPath)
		return cfg, nil
	}

	if data, err := os.ReadFile(localTablePath); err == nil {
		err = yaml.Unmarshal(data, &cfg)
		if err == nil {
			log.Printf("[CONFIG] Table tuning loaded from %s", localTablePath)
			return cfg, nil
		}
		log.Printf("[CONFIG] Ignoring %s, falling back to built-in tuning: %v", localTablePath, err)
		cfg = TableConfig{}
	}

	if err := yaml.Unmarshal(defaultTableYAML, &cfg); err != nil {
		return DefaultTableConfig(), nil
	}
	return cfg, nil
}

// Options converts the tuning into game options. Missing or invalid values
// fall back to the game defaults.
func (c TableConfig) Options() snooker.Options {
	return snooker.Options{
		TickRate:          c.TickRate,
		RestSpeed:         c.RestSpeed,
		FoulPenalty:       c.FoulPenalty,
		RespawnDelay:      time.Duration(c.Delays.RespawnMS) * time.Millisecond,
		AnnounceDelay:     time.Duration(c.Delays.AnnounceMS) * time.Millisecond,
		RackDelay:         time.Duration(c.Delays.RackMS) * time.Millisecond,
		MaxPower:          c.Shot.MaxPower,
		MinPowerDistance:  c.Shot.MinDistance,
		MaxPowerDistance:  c.Shot.MaxDistance,
		RandomReds:        c.Layout.RandomReds,
		PracticeReds:      c.Layout.PracticeReds,
		OutOfBoundsRadius: c.OutOfBoundsRadius,
		DRadius:           c.Layout.DRadius,
		Material:          c.Ball,
		ManualRespawn:     c.ManualRespawn,
	}
}
