package view

import (
	"strings"
	"testing"

	"github.com/verte-zerg/sperling/internal/grid"
)

type recordingSink struct{ frames []Frame }

func (s *recordingSink) Present(f Frame) { s.frames = append(s.frames, f) }

func mustGrid(t *testing.T, rows ...string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(rows...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return g
}

func TestLayoutSize(t *testing.T) {
	g := mustGrid(t, "ABC", "DEF")
	w, h := DefaultLayout.Size(g)
	if w != 5 || h != 3 {
		t.Fatalf("expected 5x3, got %dx%d", w, h)
	}
}

func TestGridRendererCentersGrid(t *testing.T) {
	c := NewCanvas(9, 5, nil)
	v := NewGridView(mustGrid(t, "ABC", "DEF"), DefaultLayout, 0)
	GridRenderer{Canvas: c, View: v}.Render()
	f := c.Snapshot()
	if got := f.Line(1); got != "  A B C  " {
		t.Fatalf("unexpected line 1: %q", got)
	}
	if got := f.Line(3); got != "  D E F  " {
		t.Fatalf("unexpected line 3: %q", got)
	}
}

func TestGridViewDrawsCacheUntilRefresh(t *testing.T) {
	g := mustGrid(t, "??")
	c := NewCanvas(3, 1, nil)
	v := NewGridView(g, Layout{}, 0)
	g.Set(0, 0, 'K')
	GridRenderer{Canvas: c, View: v}.Render()
	if got := c.Snapshot().Line(0); !strings.Contains(got, "??") {
		t.Fatalf("expected stale cache before refresh, got %q", got)
	}
	v.Refresh()
	GridRenderer{Canvas: c, View: v}.Render()
	if got := c.Snapshot().Line(0); !strings.Contains(got, "K?") {
		t.Fatalf("expected refreshed cache, got %q", got)
	}
}

func TestSetActiveHighlights(t *testing.T) {
	v := NewGridView(mustGrid(t, "AB"), DefaultLayout, 0)
	v.SetActive(0, 1, true)
	if v.ColorAt(0, 1) != ColorYellow || v.ColorAt(0, 0) != ColorWhite {
		t.Fatalf("unexpected colors after activate")
	}
	v.SetActive(0, 1, false)
	if v.ColorAt(0, 1) != ColorWhite {
		t.Fatalf("expected default color after deactivate")
	}
}

func TestFeedbackColors(t *testing.T) {
	c := NewCanvas(10, 3, nil)
	v := NewGridView(mustGrid(t, "AC"), DefaultLayout, 0)
	FeedbackRenderer{Canvas: c, View: v, Correct: mustGrid(t, "AB")}.Render()
	if v.ColorAt(0, 0) != ColorGreen || v.ColorAt(0, 1) != ColorRed {
		t.Fatalf("unexpected feedback colors")
	}
}

func TestCueRendererHighlightsCuedRow(t *testing.T) {
	c := NewCanvas(20, 7, nil)
	stim := NewGridView(mustGrid(t, "ABC", "DEF", "GHJ"), DefaultLayout, 0)
	CueRenderer{Canvas: c, Stimulus: stim, CueRow: 1}.Render()
	f := c.Snapshot()
	ox, oy := stim.Origin(c)
	arrowX := ox - len([]rune(CueArrow)) - 1
	if f.Cells[(oy+2)*f.Width+arrowX].Fg != ColorGreen {
		t.Fatalf("expected cued row arrow to be green")
	}
	if f.Cells[oy*f.Width+arrowX].Fg != ColorGray {
		t.Fatalf("expected other arrows to be gray")
	}
	if strings.ContainsAny(f.Line(oy), "ABC") {
		t.Fatalf("stimulus must be hidden during cue")
	}
}

func TestFlipPresentsSnapshot(t *testing.T) {
	sink := &recordingSink{}
	c := NewCanvas(3, 3, sink)
	c.SetStatus("trial 1/2")
	CrosshairRenderer{Canvas: c, Size: 1, Color: ColorWhite}.Render()
	c.Flip()
	MaskRenderer{Canvas: c, Color: ColorBlack}.Render()
	if len(sink.frames) != 1 || c.Flips() != 1 {
		t.Fatalf("expected one frame")
	}
	f := sink.frames[0]
	if f.Line(1) != "─┼─" || f.Status != "trial 1/2" || f.Seq != 1 {
		t.Fatalf("unexpected frame %q %q %d", f.Line(1), f.Status, f.Seq)
	}
}
