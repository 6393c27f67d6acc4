// Package keymap decodes raw terminal input bytes into mode.InputEvent
// values, and does the reverse translation for bytes forwarded to a
// focused PTY zone. The decoder is a small ground/escape/CSI state
// machine in the same shape terminalio's SelectiveCP437Writer uses to
// recognize ANSI sequences on output, turned around to recognize them
// on input instead.
package keymap

import (
	"github.com/stlalpha/my-grid/internal/mode"
)

// decodeState tracks progress through a possible escape sequence.
type decodeState int

const (
	stateGround decodeState = iota
	stateEscape             // saw ESC (0x1b)
	stateCSI                // saw ESC [
)

// Decoder turns a stream of raw input bytes into mode.InputEvent values.
// It is not safe for concurrent use; one Decoder per input stream.
type Decoder struct {
	state decoder
}

// decoder holds the in-progress escape sequence, separate from Decoder
// so zero-value Decoder{} is ready to use.
type decoder struct {
	st  decodeState
	buf []byte
}

// NewDecoder returns a ready-to-use Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Feed consumes one raw input byte and returns the event it completed,
// if any. Most bytes complete immediately (state stays stateGround);
// the bytes of a multi-byte escape sequence are buffered until the
// sequence resolves to a known key or is abandoned as unrecognized.
func (d *Decoder) Feed(b byte) (mode.InputEvent, bool) {
	switch d.state.st {
	case stateGround:
		return d.feedGround(b)
	case stateEscape:
		return d.feedEscape(b)
	case stateCSI:
		return d.feedCSI(b)
	default:
		d.reset()
		return mode.InputEvent{}, false
	}
}

func (d *Decoder) reset() {
	d.state.st = stateGround
	d.state.buf = d.state.buf[:0]
}

func (d *Decoder) feedGround(b byte) (mode.InputEvent, bool) {
	switch b {
	case 0x1b: // ESC
		d.state.st = stateEscape
		d.state.buf = append(d.state.buf[:0], b)
		return mode.InputEvent{}, false
	case '\r', '\n':
		return mode.InputEvent{Key: mode.KeyEnter}, true
	case 0x7f, 0x08:
		return mode.InputEvent{Key: mode.KeyBackspace}, true
	case '\t':
		return mode.InputEvent{Key: mode.KeyTab}, true
	case ' ':
		return mode.InputEvent{Key: mode.KeySpace, Rune: ' '}, true
	}
	if b < 0x20 {
		// Other C0 control codes are reported as Ctrl-chord events over
		// the base letter (Ctrl-A is 0x01, etc.) so the app loop can
		// decide whether to consume them or forward them to a PTY.
		return mode.InputEvent{Rune: rune(b + 'a' - 1), Mods: mode.Mods{Ctrl: true}}, true
	}
	return mode.InputEvent{Rune: rune(b)}, true
}

func (d *Decoder) feedEscape(b byte) (mode.InputEvent, bool) {
	if b == '[' || b == 'O' { // CSI or SS3 (xterm sends both forms for some keys)
		d.state.st = stateCSI
		d.state.buf = append(d.state.buf, b)
		return mode.InputEvent{}, false
	}
	// A bare ESC not followed by '[' or 'O' is the Esc key itself. The
	// byte that follows it is reported as a plain Esc; whatever b was
	// meant to be starts its own sequence on the next Feed call.
	d.reset()
	return mode.InputEvent{Key: mode.KeyEsc}, true
}

func (d *Decoder) feedCSI(b byte) (mode.InputEvent, bool) {
	d.state.buf = append(d.state.buf, b)
	// Final bytes of a CSI/SS3 sequence are in 0x40-0x7e; parameter
	// bytes (digits, ';') keep accumulating.
	if b >= 0x40 && b <= 0x7e {
		ev := decodeFinal(d.state.buf)
		d.reset()
		return ev, true
	}
	if len(d.state.buf) > 16 {
		// Runaway sequence; drop it rather than buffer forever.
		d.reset()
		return mode.InputEvent{}, false
	}
	return mode.InputEvent{}, false
}

// decodeFinal maps a complete escape sequence (including the leading
// ESC byte) to a named key. Unrecognized sequences resolve to KeyNone.
func decodeFinal(seq []byte) mode.InputEvent {
	s := string(seq)
	switch s {
	case "\x1b[A", "\x1bOA":
		return mode.InputEvent{Key: mode.KeyUp}
	case "\x1b[B", "\x1bOB":
		return mode.InputEvent{Key: mode.KeyDown}
	case "\x1b[C", "\x1bOC":
		return mode.InputEvent{Key: mode.KeyRight}
	case "\x1b[D", "\x1bOD":
		return mode.InputEvent{Key: mode.KeyLeft}
	case "\x1b[H", "\x1bOH", "\x1b[1~":
		return mode.InputEvent{Key: mode.KeyHome}
	case "\x1b[F", "\x1bOF", "\x1b[4~":
		return mode.InputEvent{Key: mode.KeyEnd}
	case "\x1b[5~":
		return mode.InputEvent{Key: mode.KeyPgUp}
	case "\x1b[6~":
		return mode.InputEvent{Key: mode.KeyPgDn}
	case "\x1b[1;2H":
		return mode.InputEvent{Key: mode.KeyHome, Mods: mode.Mods{Shift: true}}
	case "\x1b[1;2F":
		return mode.InputEvent{Key: mode.KeyEnd, Mods: mode.Mods{Shift: true}}
	case "\x1b[5;2~":
		return mode.InputEvent{Key: mode.KeyPgUp, Mods: mode.Mods{Shift: true}}
	case "\x1b[6;2~":
		return mode.InputEvent{Key: mode.KeyPgDn, Mods: mode.Mods{Shift: true}}
	case "\x1bOP":
		return mode.InputEvent{Key: mode.KeyF1}
	}
	return mode.InputEvent{Key: mode.KeyNone}
}

// Encode translates a mode.InputEvent into the raw bytes that should be
// forwarded to a focused PTY zone (spec.md §4.6.3). Shift+PgUp/PgDn/
// Home/End are intercepted by the app loop for scrollback before the
// event ever reaches Encode, so callers need not special-case them
// here; Encode only renders the canonical VT sequence for each key.
func Encode(e mode.InputEvent) []byte {
	switch e.Key {
	case mode.KeyUp:
		return []byte("\x1b[A")
	case mode.KeyDown:
		return []byte("\x1b[B")
	case mode.KeyRight:
		return []byte("\x1b[C")
	case mode.KeyLeft:
		return []byte("\x1b[D")
	case mode.KeyHome:
		return []byte("\x1b[H")
	case mode.KeyEnd:
		return []byte("\x1b[F")
	case mode.KeyPgUp:
		return []byte("\x1b[5~")
	case mode.KeyPgDn:
		return []byte("\x1b[6~")
	case mode.KeyEnter:
		return []byte("\r")
	case mode.KeyBackspace:
		return []byte{0x7f}
	case mode.KeyTab:
		return []byte{'\t'}
	case mode.KeyEsc:
		return []byte{0x1b}
	case mode.KeySpace:
		return []byte{' '}
	case mode.KeyF1:
		return []byte("\x1bOP")
	}
	if e.Mods.Ctrl && e.Rune >= 'a' && e.Rune <= 'z' {
		return []byte{byte(e.Rune-'a') + 1}
	}
	if e.Rune != 0 {
		return []byte(string(e.Rune))
	}
	return nil
}
