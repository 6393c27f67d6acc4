package project

import (
	"path/filepath"
	"testing"

	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

func TestSaveLoadRoundTripsCanvasAndViewport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")

	c := canvas.New()
	c.Set(3, -4, canvas.Cell{Char: 'x', FG: 2, BG: canvas.ColorDefault})
	v := viewport.New(40, 20)
	v.SetCursor(3, -4)
	gs := grid.DefaultSettings()
	b := bookmark.New()
	_ = b.Set('a', canvas.Point{X: 1, Y: 1})
	reg := zone.NewRegistry()

	if err := Save(path, State{Canvas: c, View: v, Grid: &gs, Bookmarks: b, Zones: reg, Name: "test"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Version != FileVersion {
		t.Fatalf("version = %q", f.Version)
	}

	c2 := canvas.New()
	f.ApplyCanvas(c2)
	got := c2.Get(3, -4)
	if got.Char != 'x' || got.FG != 2 {
		t.Fatalf("round-tripped cell = %+v", got)
	}

	v2 := viewport.New(40, 20)
	f.ApplyViewport(v2)
	if v2.CursorX != 3 || v2.CursorY != -4 {
		t.Fatalf("round-tripped cursor = (%d,%d)", v2.CursorX, v2.CursorY)
	}

	b2 := bookmark.New()
	f.ApplyBookmarks(b2)
	if p, ok := b2.Get('a'); !ok || p.X != 1 || p.Y != 1 {
		t.Fatalf("round-tripped bookmark = %+v, %v", p, ok)
	}
}

func TestExportImportTextRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	c := canvas.New()
	c.Set(0, 0, canvas.Cell{Char: 'A', FG: canvas.ColorDefault, BG: canvas.ColorDefault})
	c.Set(2, 1, canvas.Cell{Char: 'B', FG: canvas.ColorDefault, BG: canvas.ColorDefault})
	if err := ExportText(c, path); err != nil {
		t.Fatalf("ExportText: %v", err)
	}

	c2 := canvas.New()
	n, err := ImportText(c2, path, 10, 10)
	if err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d rows, want 2", n)
	}
	if c2.Get(10, 10).Char != 'A' {
		t.Fatalf("expected A at origin, got %+v", c2.Get(10, 10))
	}
	if c2.Get(12, 11).Char != 'B' {
		t.Fatalf("expected B at (12,11), got %+v", c2.Get(12, 11))
	}
}

func TestLayoutStoreSaveListLoadDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLayoutStore(dir)
	if err != nil {
		t.Fatalf("NewLayoutStore: %v", err)
	}
	l := Layout{Name: "demo", Description: "a demo layout", Zones: []ZoneDescriptor{
		{Name: "log", X: 0, Y: 0, W: 20, H: 5, Type: "pipe", Command: "echo hi"},
	}}
	if err := store.Save(l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	names, err := store.List()
	if err != nil || len(names) != 1 || names[0] != "demo" {
		t.Fatalf("List = %v, %v", names, err)
	}

	got, err := store.Load("demo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Zones) != 1 || got.Zones[0].Command != "echo hi" {
		t.Fatalf("round-tripped zones = %+v", got.Zones)
	}

	if err := store.Delete("demo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	names, _ = store.List()
	if len(names) != 0 {
		t.Fatalf("expected empty store after delete, got %v", names)
	}
}
