package mode

import (
	"testing"

	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/clipboard"
	"github.com/stlalpha/my-grid/internal/viewport"
)

func newMachine() *Machine {
	c := canvas.New()
	v := viewport.New(80, 24)
	b := bookmark.New()
	clip := clipboard.NewHolder()
	return New(c, v, b, clip)
}

func TestNavToEditWritesAndAdvances(t *testing.T) {
	m := newMachine()
	m.Process(InputEvent{Rune: 'i'})
	if m.Mode() != EDIT {
		t.Fatalf("mode = %v, want EDIT", m.Mode())
	}
	m.Process(InputEvent{Rune: 'H'})
	m.Process(InputEvent{Rune: 'i'})
	if m.Canvas.Get(0, 0).Char != 'H' || m.Canvas.Get(1, 0).Char != 'i' {
		t.Fatalf("unexpected canvas state")
	}
	if m.View.CursorX != 2 {
		t.Fatalf("cursor X = %d, want 2", m.View.CursorX)
	}
	m.Process(InputEvent{Key: KeyEsc})
	if m.Mode() != NAV {
		t.Fatalf("mode = %v, want NAV", m.Mode())
	}
}

func TestCommandModeReturnsToNAVRegardlessOfOutcome(t *testing.T) {
	m := newMachine()
	m.Process(InputEvent{Rune: ':'})
	for _, r := range "bogus" {
		m.Process(InputEvent{Rune: r})
	}
	res := m.Process(InputEvent{Key: KeyEnter})
	if m.Mode() != NAV {
		t.Fatalf("mode = %v, want NAV after command line", m.Mode())
	}
	if len(res.CommandsToExec) != 1 || res.CommandsToExec[0] != "bogus" {
		t.Fatalf("unexpected commands: %+v", res.CommandsToExec)
	}
}

func TestVisualSelectionNormalizesAcrossAnchor(t *testing.T) {
	m := newMachine()
	m.View.SetCursor(5, 5)
	m.Process(InputEvent{Rune: 'v'})
	m.View.CursorX, m.View.CursorY = 2, 2
	sel, ok := m.Selection()
	if !ok {
		t.Fatalf("expected active selection")
	}
	sel.CursorX, sel.CursorY = 2, 2
	minX, minY, maxX, maxY := sel.Bounds()
	if minX != 2 || minY != 2 || maxX != 5 || maxY != 5 {
		t.Fatalf("bounds = (%d,%d)-(%d,%d)", minX, minY, maxX, maxY)
	}
}

func TestMarkSetThenJump(t *testing.T) {
	m := newMachine()
	m.View.SetCursor(10, 20)
	m.Process(InputEvent{Rune: 'm'})
	m.Process(InputEvent{Rune: 'a'})
	m.View.SetCursor(100, 200)
	m.Process(InputEvent{Rune: '\''})
	m.Process(InputEvent{Rune: 'a'})
	if m.View.CursorX != 10 || m.View.CursorY != 20 {
		t.Fatalf("cursor = (%d,%d), want (10,20)", m.View.CursorX, m.View.CursorY)
	}
}

func TestDrawPenTogglesAndDraws(t *testing.T) {
	m := newMachine()
	m.Process(InputEvent{Rune: 'D'})
	m.Process(InputEvent{Key: KeySpace})
	m.Process(InputEvent{Key: KeyRight})
	m.Process(InputEvent{Key: KeyRight})
	if m.Canvas.Count() == 0 {
		t.Fatalf("expected drawn cells with pen down")
	}
}
