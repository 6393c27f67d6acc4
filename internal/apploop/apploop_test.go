package apploop

import (
	"testing"

	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/clipboard"
	"github.com/stlalpha/my-grid/internal/command"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/mode"
	"github.com/stlalpha/my-grid/internal/project"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

func newTestLoop(t *testing.T) *Loop {
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
	exec := command.New(c, v, &gs, b, clip, zones, m, layouts)
	l := New(exec, zones)
	l.Headless = true
	return l
}

func TestDrainZoneEventsAppliesAppendAndState(t *testing.T) {
	l := newTestLoop(t)
	z := &zone.Zone{Name: "box", W: 10, H: 5, Buffer: zone.NewBuffer(100, true)}
	if err := l.Zones.Create(z); err != nil {
		t.Fatal(err)
	}
	l.Zones.Post(zone.Event{ZoneName: "box", Kind: zone.EventAppend, Line: zone.Line{Text: "hello"}})
	l.Zones.Post(zone.Event{ZoneName: "box", Kind: zone.EventState, State: zone.StateError, Message: "boom"})

	l.drainZoneEvents()

	if got := z.Buffer.TextLines(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("buffer = %+v", got)
	}
	if st, msg := z.State(); st != zone.StateError || msg != "boom" {
		t.Fatalf("state = %v %q", st, msg)
	}
}

func TestProcessInputAppliesQuitFromCommandsToExec(t *testing.T) {
	l := newTestLoop(t)
	l.processInput(mode.InputEvent{Rune: ':'})
	for _, r := range "quit" {
		l.processInput(mode.InputEvent{Rune: r})
	}
	l.processInput(mode.InputEvent{Key: mode.KeyEnter})
	if !l.quit {
		t.Fatal("expected loop to request quit after executing the quit command")
	}
}

func TestInterceptedForScrollback(t *testing.T) {
	cases := []struct {
		ev   mode.InputEvent
		want bool
	}{
		{mode.InputEvent{Key: mode.KeyPgUp, Mods: mode.Mods{Shift: true}}, true},
		{mode.InputEvent{Key: mode.KeyPgUp}, false},
		{mode.InputEvent{Key: mode.KeyUp, Mods: mode.Mods{Shift: true}}, false},
	}
	for _, c := range cases {
		if got := interceptedForScrollback(c.ev); got != c.want {
			t.Fatalf("%+v: got %v want %v", c.ev, got, c.want)
		}
	}
}
