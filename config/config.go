// Package config loads the axis calibration and tuning from JSON, filling
// missing values with defaults for the reference hardware (200-step motor,
// 16x microstepping, 144:1 worm gear).
package config

import (
	"encoding/json"
	"fmt"

	"decaxis/axis"
	"decaxis/coords"
)

// RatesConfig overrides the manual slew rate table (deg/s).
type RatesConfig struct {
	Guide  float64 `json:"guide"`
	Center float64 `json:"center"`
	Medium float64 `json:"medium"`
	Slow   float64 `json:"slow"`
}

// AxisConfig describes the declination axis.
type AxisConfig struct {
	// Calibration. StepsPerDegree wins when set; otherwise it is derived
	// from the motor geometry.
	MotorFullSteps int     `json:"motor_full_steps"`
	Microsteps     int     `json:"microsteps"`
	GearRatio      float64 `json:"gear_ratio"`
	StepsPerDegree float64 `json:"steps_per_degree"`

	// Motion ceilings.
	MaxVelocity     float64 `json:"max_velocity"`     // deg/s
	MaxAcceleration float64 `json:"max_acceleration"` // deg/s^2

	// Soft travel limits in degrees.
	MinDeclination float64 `json:"min_declination"`
	MaxDeclination float64 `json:"max_declination"`

	Rates RatesConfig `json:"rates"`
}

// Load parses a JSON configuration and applies defaults.
func Load(data []byte) (*AxisConfig, error) {
	var cfg AxisConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *AxisConfig {
	cfg := &AxisConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AxisConfig) {
	if cfg.MotorFullSteps == 0 {
		cfg.MotorFullSteps = 200
	}
	if cfg.Microsteps == 0 {
		cfg.Microsteps = 16
	}
	if cfg.GearRatio == 0 {
		cfg.GearRatio = 144.0
	}
	if cfg.MaxVelocity == 0 {
		cfg.MaxVelocity = 4.0
	}
	if cfg.MaxAcceleration == 0 {
		cfg.MaxAcceleration = 1.0
	}
	if cfg.MinDeclination == 0 && cfg.MaxDeclination == 0 {
		cfg.MinDeclination = coords.DecMin
		cfg.MaxDeclination = coords.DecMax
	}

	defaults := axis.DefaultRates()
	if cfg.Rates.Guide == 0 {
		cfg.Rates.Guide = defaults.Guide
	}
	if cfg.Rates.Center == 0 {
		cfg.Rates.Center = defaults.Center
	}
	if cfg.Rates.Medium == 0 {
		cfg.Rates.Medium = defaults.Medium
	}
	if cfg.Rates.Slow == 0 {
		cfg.Rates.Slow = defaults.Slow
	}
}

func validate(cfg *AxisConfig) error {
	if cfg.MaxVelocity <= 0 {
		return fmt.Errorf("config: max_velocity must be positive, got %v", cfg.MaxVelocity)
	}
	if cfg.MaxAcceleration <= 0 {
		return fmt.Errorf("config: max_acceleration must be positive, got %v", cfg.MaxAcceleration)
	}
	if cfg.MinDeclination >= cfg.MaxDeclination {
		return fmt.Errorf("config: declination limits inverted: [%v, %v]",
			cfg.MinDeclination, cfg.MaxDeclination)
	}
	if cfg.StepsPerDegree < 0 {
		return fmt.Errorf("config: steps_per_degree must be positive, got %v", cfg.StepsPerDegree)
	}
	return nil
}

// Scale returns the step/degree calibration.
func (c *AxisConfig) Scale() coords.StepScale {
	if c.StepsPerDegree > 0 {
		return coords.StepScale(c.StepsPerDegree)
	}
	return coords.NewStepScale(c.MotorFullSteps, c.Microsteps, c.GearRatio)
}

// Tuning returns the controller tuning derived from the config.
func (c *AxisConfig) Tuning() axis.Tuning {
	return axis.Tuning{
		Scale:           c.Scale(),
		MaxVelocity:     c.MaxVelocity,
		MaxAcceleration: c.MaxAcceleration,
	}
}

// Limits returns the soft travel limits.
func (c *AxisConfig) Limits() axis.Limits {
	return axis.Limits{Min: c.MinDeclination, Max: c.MaxDeclination}
}

// RateTable returns the manual slew rates.
func (c *AxisConfig) RateTable() axis.RateTable {
	return axis.RateTable{
		Guide:  c.Rates.Guide,
		Center: c.Rates.Center,
		Medium: c.Rates.Medium,
		Slow:   c.Rates.Slow,
	}
}
