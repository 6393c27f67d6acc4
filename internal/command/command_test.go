package command

import (
	"path/filepath"
	"testing"

	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/clipboard"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/mode"
	"github.com/stlalpha/my-grid/internal/project"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	c := canvas.New()
	v := viewport.New(40, 20)
	gs := grid.DefaultSettings()
	b := bookmark.New()
	clip := clipboard.NewHolder()
	zones := zone.NewRegistry()
	m := mode.New(c, v, b, clip)
	layouts, err := project.NewLayoutStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(c, v, &gs, b, clip, zones, m, layouts)
}

func TestGotoAndText(t *testing.T) {
	e := newExecutor(t)
	if res := e.Execute("goto 5 7"); res.Status != StatusOK {
		t.Fatalf("goto failed: %+v", res)
	}
	if e.View.CursorX != 5 || e.View.CursorY != 7 {
		t.Fatalf("cursor = (%d,%d)", e.View.CursorX, e.View.CursorY)
	}
	if res := e.Execute("text hi"); res.Status != StatusOK {
		t.Fatalf("text failed: %+v", res)
	}
	if got := e.Canvas.Get(5, 7); got.Char != 'h' {
		t.Fatalf("expected 'h' at (5,7), got %+v", got)
	}
}

func TestUnknownCommandIsError(t *testing.T) {
	e := newExecutor(t)
	res := e.Execute("bogus")
	if res.Status != StatusError {
		t.Fatalf("expected error, got %+v", res)
	}
}

func TestMarkAndJumpViaCommands(t *testing.T) {
	e := newExecutor(t)
	e.Execute("goto 3 3")
	if res := e.Execute("mark a"); res.Status != StatusOK {
		t.Fatalf("mark failed: %+v", res)
	}
	if _, ok := e.Bookmarks.Get('a'); !ok {
		t.Fatal("expected bookmark 'a' to be set")
	}
	if res := e.Execute("delmark a"); res.Status != StatusOK {
		t.Fatalf("delmark failed: %+v", res)
	}
	if _, ok := e.Bookmarks.Get('a'); ok {
		t.Fatal("expected bookmark 'a' to be gone")
	}
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	e := newExecutor(t)
	e.Canvas.Set(1, 1, canvas.Cell{Char: 'Z', FG: canvas.ColorDefault, BG: canvas.ColorDefault})
	path := filepath.Join(t.TempDir(), "p.json")
	res := e.Execute("write " + path)
	if res.Status != StatusOK {
		t.Fatalf("write failed: %+v", res)
	}
	f, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Canvas.Cells) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(f.Canvas.Cells))
	}
}

func TestColorSetsPenColor(t *testing.T) {
	e := newExecutor(t)
	if res := e.Execute("color red"); res.Status != StatusOK {
		t.Fatalf("color failed: %+v", res)
	}
	fg, _ := e.Machine.Color()
	if fg != 1 {
		t.Fatalf("fg = %d, want 1 (red)", fg)
	}
}

func TestZoneCreateDeleteStatic(t *testing.T) {
	e := newExecutor(t)
	if res := e.Execute("zone create box 0 0 10 5"); res.Status != StatusOK {
		t.Fatalf("zone create failed: %+v", res)
	}
	if _, found := e.Zones.Get("box"); !found {
		t.Fatal("expected zone 'box' to exist")
	}
	if res := e.Execute("zone delete box"); res.Status != StatusOK {
		t.Fatalf("zone delete failed: %+v", res)
	}
	if _, found := e.Zones.Get("box"); found {
		t.Fatal("expected zone 'box' to be gone")
	}
}

func TestStatusReportsStructuredState(t *testing.T) {
	e := newExecutor(t)
	res := e.Execute("status")
	if res.Status != StatusOK || res.Extra == nil {
		t.Fatalf("status = %+v", res)
	}
	if _, ok := res.Extra["mode"]; !ok {
		t.Fatalf("expected mode in status extra, got %+v", res.Extra)
	}
}
