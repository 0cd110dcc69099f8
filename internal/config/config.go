// Package config provides Viper-based configuration loading for skirmish.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/skirmish/internal/game/fuzzy"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File redirects log output; empty writes to stderr.
	File string `mapstructure:"file"`
}

// EncounterConfig selects the participants and how the encounter runs.
// Empty selectors are drawn at random; a type wins over a tier.
type EncounterConfig struct {
	// Seed fixes the random source; 0 draws a fresh seed.
	Seed         uint64 `mapstructure:"seed"`
	PlayerClass  string `mapstructure:"player_class"`
	AllyType     string `mapstructure:"ally_type"`
	AllyTier     string `mapstructure:"ally_tier"`
	OpponentType string `mapstructure:"opponent_type"`
	OpponentTier string `mapstructure:"opponent_tier"`
	// Knowledge is low, player_only, enemy_only or high (or 0-3). Anything
	// else clamps to low; empty asks interactively when a console is attached.
	Knowledge string `mapstructure:"knowledge"`
	// Norms names the fuzzy AND/OR pair.
	Norms   string `mapstructure:"norms"`
	Verbose bool   `mapstructure:"verbose"`
	// Pause waits for enter between turns.
	Pause bool `mapstructure:"pause"`
	// MaxTurns ends a stuck encounter as a stalemate; 0 disables the cap.
	MaxTurns int  `mapstructure:"max_turns"`
	Color    bool `mapstructure:"color"`
}

// KnowledgeLevel parses Knowledge, clamping unrecognized values to low.
//
// Postcondition: ok is false when Knowledge was set but not recognized.
func (e EncounterConfig) KnowledgeLevel() (level fuzzy.KnowledgeLevel, ok bool) {
	return fuzzy.ParseKnowledgeLevel(e.Knowledge)
}

// ContentConfig locates the stat catalog.
type ContentConfig struct {
	// Dir overrides the embedded catalog when non-empty.
	Dir string `mapstructure:"dir"`
}

// AutopilotConfig lets a Lua script drive the player seat.
type AutopilotConfig struct {
	// Script is the path to the script; empty means the interactive console.
	Script string `mapstructure:"script"`
	// InstructionLimit caps Lua opcodes per decision; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Encounter EncounterConfig `mapstructure:"encounter"`
	Content   ContentConfig   `mapstructure:"content"`
	Autopilot AutopilotConfig `mapstructure:"autopilot"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEncounter(c.Encounter); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Autopilot.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("autopilot.instruction_limit must be >= 0, got %d", c.Autopilot.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	var errs []string
	if _, err := fuzzy.NormsByName(e.Norms); err != nil {
		errs = append(errs, fmt.Sprintf("encounter.norms: %v", err))
	}
	if e.MaxTurns < 0 {
		errs = append(errs, fmt.Sprintf("encounter.max_turns must be >= 0, got %d", e.MaxTurns))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultMaxTurns is the default encounter.max_turns.
const DefaultMaxTurns = 600

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	v.SetDefault("encounter.seed", 0)
	v.SetDefault("encounter.player_class", "")
	v.SetDefault("encounter.ally_type", "")
	v.SetDefault("encounter.ally_tier", "")
	v.SetDefault("encounter.opponent_type", "")
	v.SetDefault("encounter.opponent_tier", "")
	v.SetDefault("encounter.knowledge", "")
	v.SetDefault("encounter.norms", "lukasiewicz")
	v.SetDefault("encounter.verbose", false)
	v.SetDefault("encounter.pause", false)
	v.SetDefault("encounter.max_turns", DefaultMaxTurns)
	v.SetDefault("encounter.color", true)

	v.SetDefault("content.dir", "")

	v.SetDefault("autopilot.script", "")
	v.SetDefault("autopilot.instruction_limit", 0)
}
