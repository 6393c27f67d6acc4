package zone

import (
	"sync"

	"github.com/google/uuid"
)

// ControlState is a zone's background-runtime status.
type ControlState int

const (
	StateRunning ControlState = iota
	StatePaused
	StateStopped
	StateError
)

func (s ControlState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Zone is a named rectangular overlay on the canvas (spec.md §3 "Zone").
type Zone struct {
	// ID is a generated internal identifier, distinct from Name: Name is
	// the user-facing unique key (case-insensitive), ID never changes and
	// is what log lines reference alongside the name.
	ID          string
	Name        string
	X, Y        int64
	W, H        int
	Config      Config
	Bookmark    byte // 0 if unset
	Description string

	Buffer *Buffer

	mu        sync.RWMutex
	state     ControlState
	errMsg    string
	createdAt int // registry insertion order, used for z-order

	handler Handler
}

// SetHandler attaches the background runtime for this zone. Called once
// at creation by whichever constructor builds the type-specific handler.
func (z *Zone) SetHandler(h Handler) {
	z.handler = h
}

// HandlerRef returns the zone's handler (nil for STATIC/CLIPBOARD zones),
// used by `zone send`/`zone refresh`/`zone pause`/`zone resume`.
func (z *Zone) HandlerRef() Handler {
	return z.handler
}

// State returns the zone's current control state and, if StateError, the
// associated message.
func (z *Zone) State() (ControlState, string) {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.state, z.errMsg
}

// SetState updates the zone's control state.
func (z *Zone) SetState(s ControlState, msg string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.state = s
	z.errMsg = msg
}

// Handler is the capability-based background runtime a zone owns. Each
// concrete handler implements only the operations meaningful to its type;
// Send is only meaningful for PTY zones (spec.md §9).
type Handler interface {
	Start(z *Zone, events chan<- Event) error
	Stop() error
	Pause()
	Resume()
	Refresh() error
	Send(data []byte) error
}

// EventKind categorizes a background event posted by a Handler.
type EventKind int

const (
	EventAppend EventKind = iota
	EventAppendMany
	EventReplace
	EventState
	EventError
)

// Event is posted by a zone handler's goroutine onto the shared,
// bounded, multi-producer/single-consumer queue the application loop
// drains once per iteration (spec.md §5).
type Event struct {
	ZoneName string
	Kind     EventKind
	Line     Line
	Lines    []Line
	State    ControlState
	Message  string
}
