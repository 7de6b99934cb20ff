// Package scoring compares responses against stimuli and records trial results.
package scoring

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/verte-zerg/sperling/internal/grid"
	"github.com/verte-zerg/sperling/internal/trial"
)

// ErrShapeMismatch is returned when correct and actual grids differ in shape.
var ErrShapeMismatch = errors.New("grid shapes differ")

// ResponseEntry is the immutable record of one scored trial. Grids are deep
// copies taken when the response phase ended.
type ResponseEntry struct {
	ResponseTime time.Duration
	Actual       *grid.Grid
	Correct      *grid.Grid
	Durations    map[string]time.Duration
}

// NCorrect counts the cells of e that match.
func (e ResponseEntry) NCorrect() int {
	n, err := Count(e.Correct, e.Actual)
	if err != nil {
		return 0
	}
	return n
}

// Count returns how many cells hold equal characters at the same position.
func Count(correct, actual *grid.Grid) (int, error) {
	if correct == nil || actual == nil {
		return 0, fmt.Errorf("%w: missing grid", ErrShapeMismatch)
	}
	if !correct.SameShape(actual) {
		return 0, fmt.Errorf("%w: correct is %dx%d, actual is %dx%d", ErrShapeMismatch,
			correct.Rows(), correct.Columns(), actual.Rows(), actual.Columns())
	}
	c, a := correct.Cells(), actual.Cells()
	n := 0
	for i := range c {
		if c[i] == a[i] {
			n++
		}
	}
	return n, nil
}

// Log is an experiment's ordered results log.
type Log struct {
	entries []ResponseEntry
}

// Append adds an entry.
func (l *Log) Append(e ResponseEntry) {
	l.entries = append(l.entries, e)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy of the entries in insertion order.
func (l *Log) Entries() []ResponseEntry {
	out := make([]ResponseEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Reset empties the log.
func (l *Log) Reset() {
	l.entries = nil
}

// Recorder is the response phase post-hook that snapshots the trial.
type Recorder struct {
	correct   *grid.Grid
	actual    *grid.Grid
	durations map[string]time.Duration
	log       *Log
}

// NewRecorder returns a recorder appending to log. Grids are copied only when
// Record runs.
func NewRecorder(correct, actual *grid.Grid, durations map[string]time.Duration, log *Log) (*Recorder, error) {
	if !correct.SameShape(actual) {
		return nil, fmt.Errorf("%w: correct is %dx%d, actual is %dx%d", ErrShapeMismatch,
			correct.Rows(), correct.Columns(), actual.Rows(), actual.Columns())
	}
	return &Recorder{correct: correct, actual: actual, durations: durations, log: log}, nil
}

// Record appends a ResponseEntry unless the phase was aborted.
func (r *Recorder) Record(info trial.PostInfo) {
	if info.Aborted {
		return
	}
	r.log.Append(ResponseEntry{
		ResponseTime: info.Time,
		Actual:       r.actual.Clone(),
		Correct:      r.correct.Clone(),
		Durations:    maps.Clone(r.durations),
	})
}

// Summary aggregates correctness over a results log.
type Summary struct {
	Trials      int
	MeanCorrect float64
	StdDev      float64
	Accuracy    float64
	MeanRT      time.Duration
}

// Summarize computes mean correct, its standard deviation, cell accuracy and
// mean response time.
func Summarize(entries []ResponseEntry) (Summary, error) {
	if len(entries) == 0 {
		return Summary{}, nil
	}
	correct := make([]float64, len(entries))
	rts := make([]float64, len(entries))
	cells := 0
	total := 0
	for i, e := range entries {
		n := e.NCorrect()
		correct[i] = float64(n)
		rts[i] = float64(e.ResponseTime)
		total += n
		cells += e.Correct.Len()
	}
	mean, err := stats.Mean(correct)
	if err != nil {
		return Summary{}, fmt.Errorf("mean correct: %w", err)
	}
	sd, err := stats.StandardDeviation(correct)
	if err != nil {
		return Summary{}, fmt.Errorf("stddev correct: %w", err)
	}
	meanRT, err := stats.Mean(rts)
	if err != nil {
		return Summary{}, fmt.Errorf("mean response time: %w", err)
	}
	s := Summary{
		Trials:      len(entries),
		MeanCorrect: mean,
		StdDev:      sd,
		MeanRT:      time.Duration(meanRT),
	}
	if cells > 0 {
		s.Accuracy = float64(total) / float64(cells)
	}
	return s, nil
}
