package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/sperling/internal/config"
	"github.com/verte-zerg/sperling/internal/experiment"
	"github.com/verte-zerg/sperling/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Session.Subject != nil || len(cfg.Experiments) != 0 {
		t.Fatalf("expected all template values commented out, got %+v", cfg)
	}
}

func TestExperimentConfigsFromFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("rows", "2"); err != nil {
		t.Fatalf("set rows: %v", err)
	}
	if err := cmd.Flags().Set("stimulus-ms", "80"); err != nil {
		t.Fatalf("set stimulus-ms: %v", err)
	}
	got, err := experimentConfigs(cmd, nil)
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	if len(got) != 1 || got[0].Rows != 2 || got[0].Columns != defaultColumns {
		t.Fatalf("unexpected configs %+v", got)
	}
	if got[0].Durations[experiment.PhaseStimulus] != 80*time.Millisecond {
		t.Fatalf("expected stimulus override, got %v", got[0].Durations)
	}
}

func TestExperimentConfigsFlagsOverrideEntries(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("trials", "3"); err != nil {
		t.Fatalf("set trials: %v", err)
	}
	entries := []config.ExperimentConfig{
		{Name: ptr("a"), Kind: ptr(model.KindPartial), RowRange: []int{2, 4}, Trials: ptr(8)},
		{Name: ptr("b"), Durations: map[string]config.Millis{"FEEDBACK": config.Millis(200 * time.Millisecond)}},
	}
	got, err := experimentConfigs(cmd, entries)
	if err != nil {
		t.Fatalf("configs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 experiments, got %d", len(got))
	}
	if got[0].Kind != model.KindPartial || got[0].RowRange != [2]int{2, 4} || got[0].Trials != 3 {
		t.Fatalf("unexpected first experiment %+v", got[0])
	}
	if got[1].Kind != defaultKind || got[1].Durations["FEEDBACK"] != 200*time.Millisecond {
		t.Fatalf("unexpected second experiment %+v", got[1])
	}
	if got[1].Durations[experiment.PhaseStimulus] != defaultStimulusMs*time.Millisecond {
		t.Fatalf("expected default stimulus duration, got %v", got[1].Durations)
	}
}

func TestExperimentConfigsBadRange(t *testing.T) {
	cmd := newRootCmd()
	_, err := experimentConfigs(cmd, []config.ExperimentConfig{{RowRange: []int{1}}})
	if err == nil || !strings.Contains(err.Error(), "experiments[0]") {
		t.Fatalf("expected indexed range error, got %v", err)
	}
}

func TestApplyEnvRespectsFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("fps", "30"); err != nil {
		t.Fatalf("set fps: %v", err)
	}
	seeded := applyEnv(cmd, config.Env{Subject: "carol", FPS: 120, Seed: ptr(int64(7))})
	if !seeded || sessionSeed != 7 {
		t.Fatalf("expected env seed, got %v %d", seeded, sessionSeed)
	}
	if sessionSubject != "carol" || sessionFPS != 30 {
		t.Fatalf("unexpected resolution subject=%q fps=%d", sessionSubject, sessionFPS)
	}
}

func TestCharsetsCommandListsBuiltins(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"charsets"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, id := range []string{"consonants", "alpha", "alphanum"} {
		if !strings.Contains(out.String(), id) {
			t.Fatalf("missing %s in %q", id, out.String())
		}
	}
}
