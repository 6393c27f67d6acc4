package keymap

import (
	"testing"

	"github.com/stlalpha/my-grid/internal/mode"
)

func feed(t *testing.T, d *Decoder, seq string) mode.InputEvent {
	t.Helper()
	var last mode.InputEvent
	var got bool
	for i := 0; i < len(seq); i++ {
		if ev, ok := d.Feed(seq[i]); ok {
			last, got = ev, true
		}
	}
	if !got {
		t.Fatalf("sequence %q never completed", seq)
	}
	return last
}

func TestPlainRune(t *testing.T) {
	d := NewDecoder()
	ev := feed(t, d, "x")
	if ev.Rune != 'x' {
		t.Fatalf("got %+v", ev)
	}
}

func TestArrowKeys(t *testing.T) {
	cases := map[string]mode.Key{
		"\x1b[A": mode.KeyUp,
		"\x1b[B": mode.KeyDown,
		"\x1b[C": mode.KeyRight,
		"\x1b[D": mode.KeyLeft,
	}
	for seq, want := range cases {
		d := NewDecoder()
		ev := feed(t, d, seq)
		if ev.Key != want {
			t.Fatalf("seq %q: got %+v, want key %v", seq, ev, want)
		}
	}
}

func TestPageKeysWithTilde(t *testing.T) {
	d := NewDecoder()
	ev := feed(t, d, "\x1b[5~")
	if ev.Key != mode.KeyPgUp {
		t.Fatalf("got %+v", ev)
	}
}

func TestShiftPageUpIsTagged(t *testing.T) {
	d := NewDecoder()
	ev := feed(t, d, "\x1b[5;2~")
	if ev.Key != mode.KeyPgUp || !ev.Mods.Shift {
		t.Fatalf("got %+v, want PgUp+Shift", ev)
	}
}

func TestCtrlChord(t *testing.T) {
	d := NewDecoder()
	ev, ok := d.Feed(0x01)
	if !ok || ev.Rune != 'a' || !ev.Mods.Ctrl {
		t.Fatalf("got %+v ok=%v", ev, ok)
	}
}

func TestEnterAndBackspace(t *testing.T) {
	d := NewDecoder()
	if ev, _ := d.Feed('\r'); ev.Key != mode.KeyEnter {
		t.Fatalf("got %+v", ev)
	}
	if ev, _ := d.Feed(0x7f); ev.Key != mode.KeyBackspace {
		t.Fatalf("got %+v", ev)
	}
}

func TestEncodeRoundTripsArrows(t *testing.T) {
	for _, k := range []mode.Key{mode.KeyUp, mode.KeyDown, mode.KeyLeft, mode.KeyRight, mode.KeyHome, mode.KeyEnd, mode.KeyPgUp, mode.KeyPgDn} {
		b := Encode(mode.InputEvent{Key: k})
		if len(b) == 0 {
			t.Fatalf("key %v encoded to nothing", k)
		}
		d := NewDecoder()
		var ev mode.InputEvent
		for _, by := range b {
			if e, ok := d.Feed(by); ok {
				ev = e
			}
		}
		if ev.Key != k {
			t.Fatalf("round trip for %v produced %+v", k, ev)
		}
	}
}

func TestEncodePrintableRune(t *testing.T) {
	b := Encode(mode.InputEvent{Rune: 'q'})
	if string(b) != "q" {
		t.Fatalf("got %q", b)
	}
}
