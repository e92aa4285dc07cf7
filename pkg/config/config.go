// Package config loads the editor's YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/surgeworks/hammercad/pkg/network"
	"github.com/surgeworks/hammercad/pkg/units"
	"github.com/surgeworks/hammercad/pkg/validation"
)

// Config holds the editor's startup configuration.
type Config struct {
	// Unit is the starting global unit system: "SI" or "FPS".
	Unit string `yaml:"unit"`
	// HistoryCapacity bounds the undo stack.
	HistoryCapacity int `yaml:"history_capacity"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Params are the default computational parameters for new models.
	Params ParamsConfig `yaml:"params"`
}

// ParamsConfig mirrors network.ComputationalParams in the config file.
type ParamsConfig struct {
	DTComp float64 `yaml:"dtcomp"`
	DTOut  float64 `yaml:"dtout"`
	TMax   float64 `yaml:"tmax"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	p := network.DefaultParams()
	return Config{
		Unit:            units.SI.String(),
		HistoryCapacity: 50,
		LogLevel:        "info",
		Params:          ParamsConfig{DTComp: p.DTComp, DTOut: p.DTOut, TMax: p.TMax},
	}
}

// Load reads and validates a YAML config file. Fields left unset in the
// file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration, collecting every problem.
func (c Config) Validate() error {
	return validation.NewConfigValidator("Config").
		OneOf("Unit", c.Unit, "SI", "FPS", "si", "fps").
		RangeInt("HistoryCapacity", c.HistoryCapacity, 1, 10000).
		OneOf("LogLevel", c.LogLevel, "debug", "info", "warn", "error").
		PositiveFloat("Params.DTComp", c.Params.DTComp).
		PositiveFloat("Params.DTOut", c.Params.DTOut).
		PositiveFloat("Params.TMax", c.Params.TMax).
		Err()
}

// GlobalUnit resolves the configured unit system.
func (c Config) GlobalUnit() units.Unit {
	u, err := units.Parse(c.Unit)
	if err != nil {
		return units.SI
	}
	return u
}

// ComputationalParams resolves the configured default parameters.
func (c Config) ComputationalParams() network.ComputationalParams {
	return network.ComputationalParams{
		DTComp: c.Params.DTComp,
		DTOut:  c.Params.DTOut,
		TMax:   c.Params.TMax,
	}
}
