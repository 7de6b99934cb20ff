// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	gostats "github.com/montanaflynn/stats"

	"github.com/verte-zerg/sperling/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes mean correct cells per trial, cell accuracy and mean
// response time in milliseconds for a session.
func SessionMetrics(s model.SessionAggregate) (meanCorrect, accuracy, meanRTMs float64) {
	return metrics(s.Trials, s.Correct, s.Cells, s.ResponseMs)
}

// ExperimentMetrics is SessionMetrics for an experiment aggregate.
func ExperimentMetrics(e model.ExperimentAggregate) (meanCorrect, accuracy, meanRTMs float64) {
	return metrics(e.Trials, e.Correct, e.Cells, e.ResponseMs)
}

func metrics(trials, correct, cells int, responseMs int64) (meanCorrect, accuracy, meanRTMs float64) {
	if trials <= 0 {
		return 0, 0, 0
	}
	meanCorrect = float64(correct) / float64(trials)
	meanRTMs = float64(responseMs) / float64(trials)
	if cells > 0 {
		accuracy = float64(correct) / float64(cells)
	}
	return meanCorrect, accuracy, meanRTMs
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	minVal, err := gostats.Min(values)
	if err != nil {
		return 0, 0
	}
	maxVal, err := gostats.Max(values)
	if err != nil {
		return 0, 0
	}
	return minVal, maxVal
}

// RenderSummary prints a summary of sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var trials, aborted int
	means := make([]float64, 0, len(sessions))
	accs := make([]float64, 0, len(sessions))
	rts := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		trials += s.Trials
		if s.Aborted {
			aborted++
		}
		if s.Trials == 0 {
			continue
		}
		mean, acc, rt := SessionMetrics(s)
		means = append(means, mean)
		accs = append(accs, acc)
		rts = append(rts, rt)
	}

	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (%d aborted)", len(sessions), aborted),
		fmt.Sprintf("Trials: %d", trials),
	}
	if len(means) > 0 {
		avg, _ := gostats.Mean(means)
		sd, _ := gostats.StandardDeviation(means)
		best, _ := gostats.Max(means)
		acc, _ := gostats.Mean(accs)
		rt, _ := gostats.Median(rts)
		lines = append(lines,
			fmt.Sprintf("Avg correct: %.2f ± %.2f", avg, sd),
			fmt.Sprintf("Best session: %.2f", best),
			fmt.Sprintf("Avg accuracy: %.2f%%", acc*100),
			fmt.Sprintf("Median response time: %.0f ms", rt),
		)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints learning curves for mean correct and accuracy.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	var means, accs []float64
	for _, s := range sessions {
		if s.Trials == 0 {
			continue
		}
		mean, acc, _ := SessionMetrics(s)
		means = append(means, mean)
		accs = append(accs, acc*100)
	}
	if len(means) == 0 {
		return nil
	}
	return renderSeries(w, "Learning Curves", []Series{
		{Name: "Correct", Values: MovingAverage(means, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
	})
}

// Series is a named data series.
type Series struct {
	Name   string
	Values []float64
}

func renderSeries(w io.Writer, title string, series []Series) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	rows := make([][]string, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		lo, hi := minMax(s.Values)
		rows = append(rows, []string{
			s.Name,
			Sparkline(s.Values),
			fmt.Sprintf("%.2f", lo),
			fmt.Sprintf("%.2f", hi),
			fmt.Sprintf("%.2f", s.Values[len(s.Values)-1]),
		})
	}
	if err := writeTable(w, seriesColumns, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderExperimentTable prints per-experiment aggregates, weakest first.
func RenderExperimentTable(w io.Writer, title string, aggs []model.ExperimentAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No experiment stats found.")
		return err
	}
	type row struct {
		name    string
		trials  int
		mean    float64
		acc     float64
		latency float64
	}
	rows := make([]row, 0, len(aggs))
	for _, agg := range aggs {
		mean, acc, rt := ExperimentMetrics(agg)
		rows = append(rows, row{name: agg.Experiment, trials: agg.Trials, mean: mean, acc: acc, latency: rt})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].acc == rows[j].acc {
			return rows[i].name < rows[j].name
		}
		return rows[i].acc < rows[j].acc
	})

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.name,
			fmt.Sprintf("%d", r.trials),
			fmt.Sprintf("%.2f", r.mean),
			fmt.Sprintf("%.2f%%", r.acc*100),
			fmt.Sprintf("%.0f", r.latency),
		})
	}
	if err := writeTable(w, experimentColumns, tableRows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
