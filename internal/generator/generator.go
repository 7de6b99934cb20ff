// Package generator builds randomized stimulus grids.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/sperling/internal/charset"
	"github.com/verte-zerg/sperling/internal/grid"
	"github.com/verte-zerg/sperling/internal/model"
)

// Spec describes the stimulus grid of an experiment.
type Spec struct {
	Rows         int
	Columns      int
	Charset      charset.Charset
	AllowRepeats bool
}

// Range is an inclusive integer range.
type Range struct {
	Lo int
	Hi int
}

// NewSpec validates dimensions and returns a Spec.
func NewSpec(rows, columns int, cs charset.Charset, allowRepeats bool) (Spec, error) {
	if rows <= 0 {
		return Spec{}, model.Invalid("rows", "must be > 0, got %d", rows)
	}
	if columns <= 0 {
		return Spec{}, model.Invalid("columns", "must be > 0, got %d", columns)
	}
	if cs.Len() == 0 {
		return Spec{}, model.Invalid("charset", "must not be empty")
	}
	return Spec{Rows: rows, Columns: columns, Charset: cs, AllowRepeats: allowRepeats}, nil
}

func (s Spec) String() string {
	return fmt.Sprintf("rows: %d, columns: %d, charset: %s, allow_repeats: %t", s.Rows, s.Columns, s.Charset, s.AllowRepeats)
}

// Generator produces stimulus grids. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose output is reproducible for seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate draws Rows*Columns characters from the charset. Without repeats the
// characters are pairwise distinct.
func (g *Generator) Generate(spec Spec) (*grid.Grid, error) {
	if _, err := NewSpec(spec.Rows, spec.Columns, spec.Charset, spec.AllowRepeats); err != nil {
		return nil, err
	}
	n := spec.Rows * spec.Columns
	size := spec.Charset.Len()
	cells := make([]rune, n)
	if spec.AllowRepeats {
		for i := range cells {
			cells[i] = spec.Charset.At(g.rnd.Intn(size))
		}
		return grid.FromRunes(spec.Rows, spec.Columns, cells)
	}
	if size < n {
		return nil, &model.CapacityError{Need: n, Have: size}
	}
	perm := g.rnd.Perm(size)
	for i := range cells {
		cells[i] = spec.Charset.At(perm[i])
	}
	return grid.FromRunes(spec.Rows, spec.Columns, cells)
}

// RandomSpec draws rows and columns uniformly from inclusive ranges.
func (g *Generator) RandomSpec(rows, columns Range, cs charset.Charset, allowRepeats bool) (Spec, error) {
	r, err := g.between("rows", rows)
	if err != nil {
		return Spec{}, err
	}
	c, err := g.between("columns", columns)
	if err != nil {
		return Spec{}, err
	}
	return NewSpec(r, c, cs, allowRepeats)
}

// Intn returns a uniform int in [0, n).
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}

func (g *Generator) between(field string, r Range) (int, error) {
	if r.Lo > r.Hi {
		return 0, model.Invalid(field, "range %d-%d is empty", r.Lo, r.Hi)
	}
	return r.Lo + g.rnd.Intn(r.Hi-r.Lo+1), nil
}
