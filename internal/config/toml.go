// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/trial"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Session     SessionConfig      `toml:"session"`
	Experiments []ExperimentConfig `toml:"experiments"`
}

// SessionConfig maps session-wide settings.
type SessionConfig struct {
	Subject  *string `toml:"subject"`
	FPS      *int    `toml:"fps"`
	Seed     *int64  `toml:"seed"`
	LogLevel *string `toml:"log-level"`
}

// ExperimentConfig maps one [[experiments]] entry.
type ExperimentConfig struct {
	Name         *string           `toml:"name"`
	Kind         *string           `toml:"kind"`
	Rows         *int              `toml:"rows"`
	Columns      *int              `toml:"columns"`
	RowRange     []int             `toml:"row-range"`
	ColumnRange  []int             `toml:"column-range"`
	Charset      *string           `toml:"charset"`
	AllowRepeats *bool             `toml:"allow-repeats"`
	Trials       *int              `toml:"trials"`
	Durations    map[string]Millis `toml:"durations"`
}

// Millis is a phase duration written as integer milliseconds or "unlimited".
type Millis time.Duration

// UnmarshalTOML implements toml.Unmarshaler.
func (m *Millis) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case int64:
		if val < 0 {
			return fmt.Errorf("duration must be >= 0 ms, got %d", val)
		}
		*m = Millis(time.Duration(val) * time.Millisecond)
	case string:
		if !strings.EqualFold(strings.TrimSpace(val), "unlimited") {
			return fmt.Errorf("duration must be milliseconds or \"unlimited\", got %q", val)
		}
		*m = Millis(trial.Unlimited)
	default:
		return fmt.Errorf("duration must be milliseconds or \"unlimited\", got %T", v)
	}
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Model converts an experiment entry, filling unset values from base.
func (e ExperimentConfig) Model(base model.ExperimentConfig) (model.ExperimentConfig, error) {
	out := base
	if e.Name != nil {
		out.Name = *e.Name
	}
	if e.Kind != nil {
		out.Kind = *e.Kind
	}
	if e.Rows != nil {
		out.Rows = *e.Rows
	}
	if e.Columns != nil {
		out.Columns = *e.Columns
	}
	if e.RowRange != nil {
		r, err := pair("row-range", e.RowRange)
		if err != nil {
			return model.ExperimentConfig{}, err
		}
		out.RowRange = r
	}
	if e.ColumnRange != nil {
		r, err := pair("column-range", e.ColumnRange)
		if err != nil {
			return model.ExperimentConfig{}, err
		}
		out.ColumnRange = r
	}
	if e.Charset != nil {
		out.Charset = *e.Charset
	}
	if e.AllowRepeats != nil {
		out.AllowRepeats = *e.AllowRepeats
	}
	if e.Trials != nil {
		out.Trials = *e.Trials
	}
	if len(e.Durations) > 0 {
		out.Durations = make(map[string]time.Duration, len(base.Durations)+len(e.Durations))
		for k, v := range base.Durations {
			out.Durations[k] = v
		}
		for k, v := range e.Durations {
			out.Durations[k] = time.Duration(v)
		}
	}
	return out, nil
}

func pair(field string, values []int) ([2]int, error) {
	if len(values) != 2 {
		return [2]int{}, fmt.Errorf("%s must have exactly two values, got %d", field, len(values))
	}
	return [2]int{values[0], values[1]}, nil
}
