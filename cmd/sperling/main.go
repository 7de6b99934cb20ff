// Package main provides the CLI entrypoint for sperling.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/sperling/internal/charset"
	"github.com/verte-zerg/sperling/internal/config"
	"github.com/verte-zerg/sperling/internal/experiment"
	"github.com/verte-zerg/sperling/internal/frame"
	"github.com/verte-zerg/sperling/internal/generator"
	"github.com/verte-zerg/sperling/internal/input"
	"github.com/verte-zerg/sperling/internal/logging"
	"github.com/verte-zerg/sperling/internal/model"
	"github.com/verte-zerg/sperling/internal/scoring"
	"github.com/verte-zerg/sperling/internal/stats"
	"github.com/verte-zerg/sperling/internal/statsui"
	"github.com/verte-zerg/sperling/internal/store"
	"github.com/verte-zerg/sperling/internal/tui"
	"github.com/verte-zerg/sperling/internal/view"
)

const (
	defaultKind        = model.KindWhole
	defaultRows        = 3
	defaultColumns     = 4
	defaultFPS         = 60
	defaultStimulusMs  = 50
	defaultCurveWindow = 10
	defaultLogLevel    = "info"
)

var (
	sessionSubject      string
	sessionKind         string
	sessionTrials       int
	sessionRows         int
	sessionColumns      int
	sessionCharset      string
	sessionAllowRepeats bool
	sessionFPS          int
	sessionSeed         int64
	sessionStimulusMs   int
	sessionLogLevel     string

	statsSubject     string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sperling",
		Short:         "Iconic memory experiments in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSessionCmd,
	}

	rootCmd.Flags().StringVar(&sessionSubject, "subject", "", "subject name")
	rootCmd.Flags().StringVar(&sessionKind, "experiment", defaultKind, "experiment kind (whole|partial)")
	rootCmd.Flags().IntVar(&sessionTrials, "trials", experiment.DefaultTrials, "trials per experiment")
	rootCmd.Flags().IntVar(&sessionRows, "rows", defaultRows, "stimulus rows")
	rootCmd.Flags().IntVar(&sessionColumns, "columns", defaultColumns, "stimulus columns")
	rootCmd.Flags().StringVar(&sessionCharset, "charset", charset.IDConsonants, "charset id or literal characters")
	rootCmd.Flags().BoolVar(&sessionAllowRepeats, "allow-repeats", false, "allow repeated characters in a stimulus")
	rootCmd.Flags().IntVar(&sessionFPS, "fps", defaultFPS, "frame rate")
	rootCmd.Flags().Int64Var(&sessionSeed, "seed", 0, "random seed for reproducible stimuli")
	rootCmd.Flags().IntVar(&sessionStimulusMs, "stimulus-ms", defaultStimulusMs, "stimulus exposure in milliseconds")
	rootCmd.Flags().StringVar(&sessionLogLevel, "log-level", defaultLogLevel, "log level (info|debug|trace)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCharsetsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	envCfg, err := config.LoadEnv(".env")
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	seeded := applyEnv(cmd, envCfg)
	applyStringConfig(cmd, "subject", &sessionSubject, fileCfg.Session.Subject)
	applyIntConfig(cmd, "fps", &sessionFPS, fileCfg.Session.FPS)
	applyStringConfig(cmd, "log-level", &sessionLogLevel, fileCfg.Session.LogLevel)
	if fileCfg.Session.Seed != nil && !cmd.Flags().Changed("seed") {
		sessionSeed = *fileCfg.Session.Seed
		seeded = true
	}
	seeded = seeded || cmd.Flags().Changed("seed")

	if strings.TrimSpace(sessionSubject) == "" {
		return fmt.Errorf("--subject is required (or set SPERLING_SUBJECT)")
	}
	if sessionFPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	expCfgs, err := experimentConfigs(cmd, fileCfg.Experiments)
	if err != nil {
		return err
	}

	gen := generator.New()
	if seeded {
		gen = generator.NewSeeded(sessionSeed)
	}
	exps := make([]*experiment.Experiment, 0, len(expCfgs))
	for _, ec := range expCfgs {
		exp, err := experiment.FromConfig(ec, gen)
		if err != nil {
			return err
		}
		exps = append(exps, exp)
	}
	session, err := experiment.NewSession(sessionSubject, exps...)
	if err != nil {
		return err
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("sperling needs an interactive terminal")
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("failed to read terminal size: %w", err)
	}

	logger, logFile, err := logging.OpenFile(config.DefaultLogPath(), sessionLogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	st, err := store.Open(dbPath(envCfg))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now().UTC()
	runErr := tui.Run(ctx, width, height-1, func(ctx context.Context, canvas *view.Canvas, source input.Source) error {
		env := experiment.Env{
			Clock:  frame.NewWallClock(),
			Source: source,
			Canvas: canvas,
			FPS:    sessionFPS,
			Logger: logger,
		}
		_, err := session.Run(ctx, env)
		return err
	})
	aborted := errors.Is(runErr, model.ErrSessionAborted)
	if runErr != nil && !aborted {
		logger.Error("session failed", "session", session.ID(), "error", runErr)
	}

	rec := model.SessionRecord{
		ID:        session.ID(),
		Subject:   session.Subject(),
		StartedAt: started,
		EndedAt:   time.Now().UTC(),
		Aborted:   runErr != nil,
	}
	records := session.Records()
	if len(records) > 0 || runErr == nil {
		if err := st.InsertSession(context.Background(), rec, records); err != nil {
			logErrf("failed to save session: %v\n", err)
		}
	}

	if aborted {
		logErrln("Session aborted; completed trials were saved.")
	} else if runErr != nil {
		return fmt.Errorf("failed to run session: %w", runErr)
	}
	return printSummary(cmd.OutOrStdout(), session)
}

// applyEnv copies set environment values into flags the user did not pass.
// It reports whether a seed came from the environment.
func applyEnv(cmd *cobra.Command, e config.Env) bool {
	if e.Subject != "" && !cmd.Flags().Changed("subject") {
		sessionSubject = e.Subject
	}
	if e.FPS > 0 && !cmd.Flags().Changed("fps") {
		sessionFPS = e.FPS
	}
	if e.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		sessionLogLevel = e.LogLevel
	}
	if e.Seed != nil && !cmd.Flags().Changed("seed") {
		sessionSeed = *e.Seed
		return true
	}
	return false
}

func dbPath(e config.Env) string {
	if e.DBPath != "" {
		return e.DBPath
	}
	return config.DefaultDBPath()
}

// experimentConfigs returns the configured experiments. Without
// [[experiments]] entries a single experiment is built from flags; with them,
// flags the user passed override every entry.
func experimentConfigs(cmd *cobra.Command, entries []config.ExperimentConfig) ([]model.ExperimentConfig, error) {
	base := flagExperiment()
	if len(entries) == 0 {
		return []model.ExperimentConfig{base}, nil
	}
	out := make([]model.ExperimentConfig, 0, len(entries))
	for i, entry := range entries {
		ec, err := entry.Model(model.ExperimentConfig{
			Kind:      defaultKind,
			Rows:      defaultRows,
			Columns:   defaultColumns,
			Charset:   charset.IDConsonants,
			Trials:    experiment.DefaultTrials,
			Durations: base.Durations,
		})
		if err != nil {
			return nil, fmt.Errorf("experiments[%d]: %w", i, err)
		}
		overrideFromFlags(cmd, &ec, base)
		out = append(out, ec)
	}
	return out, nil
}

func flagExperiment() model.ExperimentConfig {
	return model.ExperimentConfig{
		Kind:         sessionKind,
		Rows:         sessionRows,
		Columns:      sessionColumns,
		Charset:      sessionCharset,
		AllowRepeats: sessionAllowRepeats,
		Trials:       sessionTrials,
		Durations: map[string]time.Duration{
			experiment.PhaseStimulus: time.Duration(sessionStimulusMs) * time.Millisecond,
		},
	}
}

func overrideFromFlags(cmd *cobra.Command, ec *model.ExperimentConfig, base model.ExperimentConfig) {
	flags := cmd.Flags()
	if flags.Changed("experiment") {
		ec.Kind = base.Kind
	}
	if flags.Changed("rows") {
		ec.Rows = base.Rows
		ec.RowRange = [2]int{}
	}
	if flags.Changed("columns") {
		ec.Columns = base.Columns
		ec.ColumnRange = [2]int{}
	}
	if flags.Changed("charset") {
		ec.Charset = base.Charset
	}
	if flags.Changed("allow-repeats") {
		ec.AllowRepeats = base.AllowRepeats
	}
	if flags.Changed("trials") {
		ec.Trials = base.Trials
	}
	if flags.Changed("stimulus-ms") {
		durations := make(map[string]time.Duration, len(ec.Durations)+1)
		for k, v := range ec.Durations {
			durations[k] = v
		}
		durations[experiment.PhaseStimulus] = base.Durations[experiment.PhaseStimulus]
		ec.Durations = durations
	}
}

func printSummary(w io.Writer, session *experiment.Session) error {
	for _, exp := range session.Experiments() {
		entries := exp.Results().Entries()
		if len(entries) == 0 {
			continue
		}
		sum, err := scoring.Summarize(entries)
		if err != nil {
			return fmt.Errorf("failed to summarize %s: %w", exp.Name(), err)
		}
		if _, err := fmt.Fprintf(w, "%s: average correct %.2f ± %.2f of %d (%.1f%%), %d trials, mean response %s\n",
			exp.Name(), sum.MeanCorrect, sum.StdDev, entries[0].Correct.Len(), sum.Accuracy*100,
			sum.Trials, sum.MeanRT.Round(time.Millisecond)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newCharsetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "charsets",
		Short: "List built-in charsets",
		Args:  cobra.NoArgs,
		RunE:  runCharsetsCmd,
	}
}

func runCharsetsCmd(cmd *cobra.Command, _ []string) error {
	for _, id := range charset.IDs() {
		cs, err := charset.Lookup(id)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-11s %s\n", id, cs); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSubject, "subject", "", "subject filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	envCfg, err := config.LoadEnv(".env")
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Subject:     statsSubject,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(dbPath(envCfg))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		return report.Render(cmd.OutOrStdout())
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# sperling configuration
# Uncomment a value to enable it. CLI flags override config values,
# config values override SPERLING_* environment variables.

[session]
# subject = "anonymous"   # Subject name
# fps = %d                # Frame rate
# seed = 42               # Random seed for reproducible stimuli
# log-level = %q      # info, debug or trace

# Each [[experiments]] entry runs in order. Without entries a single
# experiment is built from the command-line flags.
#
# [[experiments]]
# name = "whole-3x4"
# kind = %q           # whole or partial
# rows = %d
# columns = %d
# row-range = [2, 4]      # Overrides rows; drawn once per session
# column-range = [3, 5]   # Overrides columns; drawn once per session
# charset = %q   # consonants, alpha, alphanum or literal characters
# allow-repeats = false
# trials = %d
#
# [experiments.durations]  # Milliseconds or "unlimited"
# STIMULUS = %d
# POST_FIXATION_MASK = 500
# POST_STIMULUS_MASK = 1
# CUE = 500
# FEEDBACK = 1000
`,
		defaultFPS,
		defaultLogLevel,
		defaultKind,
		defaultRows,
		defaultColumns,
		charset.IDConsonants,
		experiment.DefaultTrials,
		defaultStimulusMs,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
