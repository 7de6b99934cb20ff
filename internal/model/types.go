// Package model defines shared data structures.
package model

import "time"

// Experiment kinds.
const (
	KindWhole   = "whole"
	KindPartial = "partial"
)

// Config defines session settings resolved from flags, config file and env.
type Config struct {
	Subject     string
	FPS         int
	Seed        int64
	Width       int
	Height      int
	Experiments []ExperimentConfig
}

// ExperimentConfig defines one experiment of a session.
type ExperimentConfig struct {
	Name         string
	Kind         string
	Rows         int
	Columns      int
	RowRange     [2]int
	ColumnRange  [2]int
	Charset      string
	AllowRepeats bool
	Trials       int
	Durations    map[string]time.Duration
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Subject     string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionRecord captures a completed (or aborted) session for storage.
type SessionRecord struct {
	ID        string
	Subject   string
	StartedAt time.Time
	EndedAt   time.Time
	Aborted   bool
}

// TrialRecord is one stored response with its experiment context.
// Grids are stored row-major with rows separated by '/'.
type TrialRecord struct {
	Experiment   string
	Trial        int
	ResponseTime time.Duration
	Correct      string
	Actual       string
	NCorrect     int
	Cells        int
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  string
	Subject    string
	EndedAt    time.Time
	Aborted    bool
	Trials     int
	Correct    int
	Cells      int
	ResponseMs int64
}

// ExperimentAggregate sums stored responses of one experiment.
type ExperimentAggregate struct {
	Experiment string
	Trials     int
	Correct    int
	Cells      int
	ResponseMs int64
}
