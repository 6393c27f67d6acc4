package mode

// Key names the non-printable keys the mode machine understands.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEsc
	KeyTab
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyBackspace
	KeyF1
	KeySpace
	KeyPasteStart
	KeyPasteEnd
)

// Mods holds modifier flags accompanying an InputEvent.
type Mods struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// InputEvent is a single decoded unit of foreground input: either a
// printable grapheme or a named key, with modifiers.
type InputEvent struct {
	Rune rune // set when this is a printable event (Key == KeyNone)
	Key  Key
	Mods Mods
}

// Printable reports whether this event carries a printable grapheme.
func (e InputEvent) Printable() bool {
	return e.Key == KeyNone && e.Rune != 0
}
