// Package input defines the input events consumed by the trial engine.
package input

// Type discriminates events.
type Type int

const (
	// KeyPress is a key press.
	KeyPress Type = iota + 1
	// KeyRelease is a key release. The engine ignores it.
	KeyRelease
	// Quit is the application-wide quit signal.
	Quit
	// Resize reports a display size change.
	Resize
)

// Key identifies a key code. Printable keys use KeyRune with Event.Rune set.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyReturn
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyTab
)

// Mod is a modifier bit set.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
)

// Event is one input event delivered in a tick batch.
type Event struct {
	Type Type
	Key  Key
	Rune rune
	Mods Mod
}

// Press returns a key-down event for a named key.
func Press(k Key) Event {
	return Event{Type: KeyPress, Key: k}
}

// Char returns a key-down event for a printable character.
func Char(r rune) Event {
	return Event{Type: KeyPress, Key: KeyRune, Rune: r}
}

// QuitEvent returns the application quit event.
func QuitEvent() Event {
	return Event{Type: Quit}
}

// IsKey reports whether e is a key-down of k.
func (e Event) IsKey(k Key) bool {
	return e.Type == KeyPress && e.Key == k
}

// IsGlobalAbort reports whether e ends the whole run: quit, or ESC pressed.
func IsGlobalAbort(e Event) bool {
	return e.Type == Quit || e.IsKey(KeyEscape)
}

// Source returns the pending events for the current tick.
type Source interface {
	Poll() []Event
}
