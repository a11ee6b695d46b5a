// Package config loads exploration tuning parameters. The schema matches
// the /api/explore/params endpoint so the same JSON drives both startup
// configuration and runtime updates. Fields omitted from the JSON keep
// their defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TuningConfig represents the root configuration for exploration tuning.
// All fields are optional pointers; the Get* accessors supply defaults.
type TuningConfig struct {
	// Loop params
	TickPeriod *string `json:"tick_period,omitempty"` // duration string like "5s"

	// Goal lifecycle params
	GoalAcceptTimeout *string `json:"goal_accept_timeout,omitempty"` // duration string like "10s"
	GoalResultTimeout *string `json:"goal_result_timeout,omitempty"` // duration string; "" disables

	// Monitor webserver params
	ListenAddr *string `json:"listen_addr,omitempty"`

	// Persistence params
	DBPath *string `json:"db_path,omitempty"` // empty disables goal recording

	// Plot export params
	PlotDir *string `json:"plot_dir,omitempty"` // empty disables completion heatmaps
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are well formed.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*string{
		"tick_period":         c.TickPeriod,
		"goal_accept_timeout": c.GoalAcceptTimeout,
		"goal_result_timeout": c.GoalResultTimeout,
	} {
		if v == nil || *v == "" {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", name, d)
		}
	}
	if c.TickPeriod != nil && *c.TickPeriod != "" {
		if d, _ := time.ParseDuration(*c.TickPeriod); d == 0 {
			return fmt.Errorf("tick_period must be positive")
		}
	}
	return nil
}

// GetTickPeriod parses and returns the tick period.
func (c *TuningConfig) GetTickPeriod() time.Duration {
	return c.duration(c.TickPeriod, 5*time.Second)
}

// GetGoalAcceptTimeout bounds the wait for goal acceptance.
func (c *TuningConfig) GetGoalAcceptTimeout() time.Duration {
	return c.duration(c.GoalAcceptTimeout, 30*time.Second)
}

// GetGoalResultTimeout bounds goal execution. Zero means no limit.
func (c *TuningConfig) GetGoalResultTimeout() time.Duration {
	return c.duration(c.GoalResultTimeout, 0)
}

// GetListenAddr returns the monitor webserver address.
func (c *TuningConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080" // default
	}
	return *c.ListenAddr
}

// GetDBPath returns the goal-history database path, or "" when recording
// is disabled.
func (c *TuningConfig) GetDBPath() string {
	if c.DBPath == nil {
		return "exploration.db" // default
	}
	return *c.DBPath
}

// GetPlotDir returns the completion heatmap output directory, or "" when
// plot export is disabled.
func (c *TuningConfig) GetPlotDir() string {
	if c.PlotDir == nil {
		return "" // default: no plots
	}
	return *c.PlotDir
}

func (c *TuningConfig) duration(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def // default on parse error
	}
	return d
}
