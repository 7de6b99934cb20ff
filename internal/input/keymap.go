package input

import (
	"unicode"

	"github.com/verte-zerg/sperling/internal/charset"
)

// PlaceholderRune is written for the "unknown" key.
const PlaceholderRune = '?'

// Keymap maps printable keys to the character they enter. It is built once
// from the configured charset and never modified.
type Keymap struct {
	chars map[rune]rune
}

// NewKeymap builds the key-to-character mapping for cs. Both cases of a
// letter map to its upper-case form.
func NewKeymap(cs charset.Charset) Keymap {
	chars := make(map[rune]rune, cs.Len()*2)
	for _, r := range cs.Runes() {
		upper := unicode.ToUpper(r)
		chars[upper] = upper
		chars[unicode.ToLower(r)] = upper
	}
	return Keymap{chars: chars}
}

// Lookup returns the character e enters, if e is a charset key.
func (k Keymap) Lookup(e Event) (rune, bool) {
	if e.Type != KeyPress || e.Key != KeyRune {
		return 0, false
	}
	r, ok := k.chars[e.Rune]
	return r, ok
}

// IsPlaceholder reports whether e is the "unknown" key: '?' or shift+'/'.
func IsPlaceholder(e Event) bool {
	if e.Type != KeyPress || e.Key != KeyRune {
		return false
	}
	return e.Rune == PlaceholderRune || (e.Rune == '/' && e.Mods&ModShift != 0)
}
