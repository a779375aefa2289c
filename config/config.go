// Package config holds the run configuration for the branch simulator.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/branchsim/btb"
	"github.com/sarchlab/branchsim/predictor"
)

// Config holds the settings of one simulation run.
type Config struct {
	// Predictor is the strategy name: ANT, AT, BTFNT, LTG, LTL, 2BG or 2BL.
	Predictor string `json:"predictor"`

	// BTBEnabled attaches a branch target buffer to the run.
	// Default: false.
	BTBEnabled bool `json:"btb_enabled"`

	// BTBSets is the number of target buffer sets. Default: 64.
	BTBSets int `json:"btb_sets"`

	// BTBWays is the target buffer associativity. Default: 4.
	BTBWays int `json:"btb_ways"`

	// PerBranch prints the Predicted/Actual block for every record.
	// Default: true.
	PerBranch bool `json:"report_per_branch"`

	// ShowHistory adds history register bits to per-branch output.
	// Default: false.
	ShowHistory bool `json:"report_history"`

	// SummaryTable prints a statistics table after the report.
	// Default: false.
	SummaryTable bool `json:"report_table"`
}

// DefaultConfig returns a Config with default values and no predictor
// selected.
func DefaultConfig() *Config {
	btbConfig := btb.DefaultConfig()
	return &Config{
		BTBSets:   btbConfig.Sets,
		BTBWays:   btbConfig.Ways,
		PerBranch: true,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the predictor name is known and the target buffer
// geometry is usable when enabled.
func (c *Config) Validate() error {
	if _, err := predictor.ParseKind(c.Predictor); err != nil {
		return err
	}
	if c.BTBEnabled {
		if err := c.BTB().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Kind returns the parsed predictor kind.
func (c *Config) Kind() (predictor.Kind, error) {
	return predictor.ParseKind(c.Predictor)
}

// BTB returns the target buffer geometry.
func (c *Config) BTB() btb.Config {
	return btb.Config{Sets: c.BTBSets, Ways: c.BTBWays}
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
