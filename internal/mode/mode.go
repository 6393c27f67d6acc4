package mode

// Mode is an input-handling regime.
type Mode int

const (
	NAV Mode = iota
	PAN
	EDIT
	COMMAND
	MarkSet
	MarkJump
	VISUAL
	DRAW
	PTYFocused
)

func (m Mode) String() string {
	switch m {
	case NAV:
		return "NAV"
	case PAN:
		return "PAN"
	case EDIT:
		return "EDIT"
	case COMMAND:
		return "COMMAND"
	case MarkSet:
		return "MARK_SET"
	case MarkJump:
		return "MARK_JUMP"
	case VISUAL:
		return "VISUAL"
	case DRAW:
		return "DRAW"
	case PTYFocused:
		return "PTY_FOCUSED"
	default:
		return "UNKNOWN"
	}
}

// Selection is the VISUAL-mode rectangle: an anchor fixed at the position
// VISUAL was entered, and the cursor as the opposite corner. The rectangle
// re-normalizes each frame via Bounds.
type Selection struct {
	AnchorX, AnchorY int64
	CursorX, CursorY int64
}

// Bounds returns the normalized min/max rectangle for the selection.
func (s Selection) Bounds() (minX, minY, maxX, maxY int64) {
	minX, maxX = s.AnchorX, s.CursorX
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY = s.AnchorY, s.CursorY
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return
}

// Result is returned by Machine.Process for every input event.
type Result struct {
	ModeChanged    bool
	NewMode        Mode
	CommandsToExec []string
	Messages       []string
	Quit           bool
	Consumed       bool
}
