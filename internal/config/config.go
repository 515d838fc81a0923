// Package config provides Viper-based configuration loading for the
// build-mode simulator.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/placement"
)

// GridConfig holds the placement grid dimensions and world transform.
type GridConfig struct {
	// Width is the grid extent along X, in cells.
	Width int `mapstructure:"width"`
	// Height is the grid extent along Z, in cells.
	Height int `mapstructure:"height"`
	// CellSize is the world-space edge length of one cell.
	CellSize float64 `mapstructure:"cell_size"`
	// OriginX/OriginY/OriginZ place the grid's minimum corner in world
	// space. OriginY is also the Y of the placement plane.
	OriginX float64 `mapstructure:"origin_x"`
	OriginY float64 `mapstructure:"origin_y"`
	OriginZ float64 `mapstructure:"origin_z"`
}

// Origin returns the grid's minimum corner as a world-space vector.
func (g GridConfig) Origin() geom.Vec3 {
	return geom.Vec3{X: g.OriginX, Y: g.OriginY, Z: g.OriginZ}
}

// PlacementConfig holds simulation-loop and placement-feel settings.
type PlacementConfig struct {
	// TickRate is the simulation frequency in ticks per second.
	TickRate int `mapstructure:"tick_rate"`
	// FailurePolicy is what happens to a held item on a failed commit:
	// "drop" or "restore".
	FailurePolicy string `mapstructure:"failure_policy"`
	// SuccessPulseIntensity/SuccessPulseDuration shape the haptic pulse
	// on a successful anchor. Intensity is 0-1, duration in seconds.
	SuccessPulseIntensity float64 `mapstructure:"success_pulse_intensity"`
	SuccessPulseDuration  float64 `mapstructure:"success_pulse_duration"`
	// FailurePulseIntensity/FailurePulseDuration shape the pulse on a
	// rejected commit.
	FailurePulseIntensity float64 `mapstructure:"failure_pulse_intensity"`
	FailurePulseDuration  float64 `mapstructure:"failure_pulse_duration"`
	// ScriptOpBudget caps the Lua opcodes one hook invocation may run.
	// Zero selects the built-in default.
	ScriptOpBudget int `mapstructure:"script_op_budget"`
}

// Policy returns the parsed failure policy.
//
// Precondition: the config has been validated.
func (p PlacementConfig) Policy() placement.FailurePolicy {
	policy, _ := placement.ParseFailurePolicy(p.FailurePolicy)
	return policy
}

// SessionConfig returns the haptic pulse settings in session form.
func (p PlacementConfig) SessionConfig() placement.SessionConfig {
	return placement.SessionConfig{
		SuccessPulse: placement.HapticPulse{Intensity: p.SuccessPulseIntensity, Duration: p.SuccessPulseDuration},
		FailurePulse: placement.HapticPulse{Intensity: p.FailurePulseIntensity, Duration: p.FailurePulseDuration},
	}
}

// ContentConfig holds the on-disk content directories.
type ContentConfig struct {
	// ItemsDir contains item definition YAML files.
	ItemsDir string `mapstructure:"items_dir"`
	// RecipesDir contains crafting recipe YAML files.
	RecipesDir string `mapstructure:"recipes_dir"`
	// ScriptsDir contains Lua placement hook scripts.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// StorageConfig holds save-database settings.
type StorageConfig struct {
	// Path is the SQLite save file path.
	Path string `mapstructure:"path"`
	// InventorySlots is the capacity of the player inventory.
	InventorySlots int `mapstructure:"inventory_slots"`
}

// RecorderConfig holds placement-attempt recording settings.
type RecorderConfig struct {
	// Enabled turns attempt recording on.
	Enabled bool `mapstructure:"enabled"`
	// Dir is where compressed attempt logs are written.
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Grid      GridConfig      `mapstructure:"grid"`
	Placement PlacementConfig `mapstructure:"placement"`
	Content   ContentConfig   `mapstructure:"content"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Recorder  RecorderConfig  `mapstructure:"recorder"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateGrid(c.Grid); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlacement(c.Placement); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRecorder(c.Recorder); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGrid(g GridConfig) error {
	var errs []string
	if g.Width < 1 {
		errs = append(errs, fmt.Sprintf("grid.width must be >= 1, got %d", g.Width))
	}
	if g.Height < 1 {
		errs = append(errs, fmt.Sprintf("grid.height must be >= 1, got %d", g.Height))
	}
	if g.CellSize <= 0 {
		errs = append(errs, fmt.Sprintf("grid.cell_size must be > 0, got %g", g.CellSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePlacement(p PlacementConfig) error {
	var errs []string
	if p.TickRate < 1 || p.TickRate > 240 {
		errs = append(errs, fmt.Sprintf("placement.tick_rate must be 1-240, got %d", p.TickRate))
	}
	if _, ok := placement.ParseFailurePolicy(p.FailurePolicy); !ok {
		errs = append(errs, fmt.Sprintf("placement.failure_policy must be one of [drop, restore], got %q", p.FailurePolicy))
	}
	for name, v := range map[string]float64{
		"placement.success_pulse_intensity": p.SuccessPulseIntensity,
		"placement.failure_pulse_intensity": p.FailurePulseIntensity,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be 0-1, got %g", name, v))
		}
	}
	if p.SuccessPulseDuration < 0 {
		errs = append(errs, "placement.success_pulse_duration must not be negative")
	}
	if p.FailurePulseDuration < 0 {
		errs = append(errs, "placement.failure_pulse_duration must not be negative")
	}
	if p.ScriptOpBudget < 0 {
		errs = append(errs, fmt.Sprintf("placement.script_op_budget must be >= 0, got %d", p.ScriptOpBudget))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.ItemsDir == "" {
		errs = append(errs, "content.items_dir must not be empty")
	}
	if c.RecipesDir == "" {
		errs = append(errs, "content.recipes_dir must not be empty")
	}
	if c.ScriptsDir == "" {
		errs = append(errs, "content.scripts_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	if s.Path == "" {
		errs = append(errs, "storage.path must not be empty")
	}
	if s.InventorySlots < 1 {
		errs = append(errs, fmt.Sprintf("storage.inventory_slots must be >= 1, got %d", s.InventorySlots))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRecorder(r RecorderConfig) error {
	if r.Enabled && r.Dir == "" {
		return fmt.Errorf("recorder.dir must not be empty when recorder.enabled is true")
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

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with BUILDMODE_ prefix
	v.SetEnvPrefix("BUILDMODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("grid.width", 32)
	v.SetDefault("grid.height", 32)
	v.SetDefault("grid.cell_size", 1.0)
	v.SetDefault("grid.origin_x", 0.0)
	v.SetDefault("grid.origin_y", 0.0)
	v.SetDefault("grid.origin_z", 0.0)

	v.SetDefault("placement.tick_rate", 30)
	v.SetDefault("placement.failure_policy", "drop")
	v.SetDefault("placement.success_pulse_intensity", 0.8)
	v.SetDefault("placement.success_pulse_duration", 0.10)
	v.SetDefault("placement.failure_pulse_intensity", 0.3)
	v.SetDefault("placement.failure_pulse_duration", 0.25)
	v.SetDefault("placement.script_op_budget", 0)

	v.SetDefault("content.items_dir", "content/items")
	v.SetDefault("content.recipes_dir", "content/recipes")
	v.SetDefault("content.scripts_dir", "content/scripts")

	v.SetDefault("storage.path", "buildmode.db")
	v.SetDefault("storage.inventory_slots", 24)

	v.SetDefault("recorder.enabled", false)
	v.SetDefault("recorder.dir", "logs/placements")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
