package renderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/clipboard"
	"github.com/stlalpha/my-grid/internal/command"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/mode"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

func TestRenderProducesNonEmptyFrame(t *testing.T) {
	c := canvas.New()
	c.Set(1, 1, canvas.Cell{Char: 'X', FG: canvas.ColorDefault, BG: canvas.ColorDefault})
	v := viewport.New(10, 5)
	gs := grid.DefaultSettings()
	zones := zone.NewRegistry()
	b := bookmark.New()
	clip := clipboard.NewHolder()
	m := mode.New(c, v, b, clip)

	var out bytes.Buffer
	term := &Terminal{W: 10, H: 6, Out: &out}
	r := New(term, c, v, &gs, zones, m, func() command.Result {
		return command.Result{Status: command.StatusOK, Message: "ready"}
	})

	if err := r.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected renderer to write output")
	}
	if !strings.Contains(out.String(), "X") {
		t.Fatal("expected canvas content to appear in the frame")
	}
	if !strings.Contains(out.String(), "ready") {
		t.Fatal("expected status line content to appear in the frame")
	}
}

func TestRenderZoneContentOverlaysCanvas(t *testing.T) {
	c := canvas.New()
	v := viewport.New(10, 5)
	gs := grid.DefaultSettings()
	zones := zone.NewRegistry()
	b := bookmark.New()
	clip := clipboard.NewHolder()
	m := mode.New(c, v, b, clip)

	z := &zone.Zone{Name: "box", X: 0, Y: 0, W: 5, H: 1, Buffer: zone.NewBuffer(10, true)}
	z.Buffer.AppendText("hi")
	if err := zones.Create(z); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	term := &Terminal{W: 10, H: 6, Out: &out}
	r := New(term, c, v, &gs, zones, m, func() command.Result { return command.Result{Status: command.StatusOK} })
	if err := r.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.String(), "hi") {
		t.Fatal("expected zone buffer text in rendered frame")
	}
}
