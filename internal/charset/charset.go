// Package charset defines the character sets eligible for stimuli and responses.
package charset

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/verte-zerg/sperling/internal/model"
)

// Known charset identifiers.
const (
	IDConsonants = "consonants"
	IDAlpha      = "alpha"
	IDAlphanum   = "alphanum"
)

const (
	alpha  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits = "0123456789"
	vowels = "AEIOUY"
)

// Charset is an immutable, sorted set of upper-case characters.
type Charset struct {
	runes []rune
}

// New builds a charset from the characters of s. Letters are upper-cased and
// duplicates dropped.
func New(s string) (Charset, error) {
	seen := map[rune]struct{}{}
	runes := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		r = unicode.ToUpper(r)
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		runes = append(runes, r)
	}
	if len(runes) == 0 {
		return Charset{}, model.Invalid("charset", "must not be empty")
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return Charset{runes: runes}, nil
}

// Consonants returns A-Z without AEIOUY.
func Consonants() Charset {
	var b strings.Builder
	for _, r := range alpha {
		if !strings.ContainsRune(vowels, r) {
			b.WriteRune(r)
		}
	}
	return mustNew(b.String())
}

// Alpha returns A-Z.
func Alpha() Charset {
	return mustNew(alpha)
}

// Alphanum returns A-Z and 0-9.
func Alphanum() Charset {
	return mustNew(alpha + digits)
}

// IDs lists the known charset identifiers.
func IDs() []string {
	return []string{IDAlpha, IDAlphanum, IDConsonants}
}

// Lookup resolves a charset identifier.
func Lookup(id string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case IDConsonants:
		return Consonants(), nil
	case IDAlpha:
		return Alpha(), nil
	case IDAlphanum:
		return Alphanum(), nil
	default:
		return Charset{}, model.Invalid("charset", "%q is not one of %s", id, strings.Join(IDs(), ","))
	}
}

// Len returns the number of characters.
func (c Charset) Len() int { return len(c.runes) }

// At returns the i-th character in sorted order.
func (c Charset) At(i int) rune { return c.runes[i] }

// Contains reports whether r (case-insensitive) is in the set.
func (c Charset) Contains(r rune) bool {
	r = unicode.ToUpper(r)
	i := sort.Search(len(c.runes), func(i int) bool { return c.runes[i] >= r })
	return i < len(c.runes) && c.runes[i] == r
}

// Runes returns a copy of the characters.
func (c Charset) Runes() []rune {
	out := make([]rune, len(c.runes))
	copy(out, c.runes)
	return out
}

func (c Charset) String() string {
	return string(c.runes)
}

func mustNew(s string) Charset {
	c, err := New(s)
	if err != nil {
		panic(fmt.Sprintf("charset: %v", err))
	}
	return c
}
