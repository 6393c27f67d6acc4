package bookmark

import (
	"testing"

	"github.com/stlalpha/my-grid/internal/canvas"
)

func TestSetJumpUniqueness(t *testing.T) {
	s := New()
	if err := s.Set('a', canvas.Point{X: 10, Y: 20}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set('b', canvas.Point{X: 100, Y: 200}); err != nil {
		t.Fatal(err)
	}
	p, ok := s.Get('a')
	if !ok || p != (canvas.Point{X: 10, Y: 20}) {
		t.Fatalf("got %+v, %v", p, ok)
	}
	p, ok = s.Get('b')
	if !ok || p != (canvas.Point{X: 100, Y: 200}) {
		t.Fatalf("got %+v, %v", p, ok)
	}
}

func TestSetLastWriteWins(t *testing.T) {
	s := New()
	s.Set('a', canvas.Point{X: 1, Y: 1})
	s.Set('a', canvas.Point{X: 2, Y: 2})
	p, _ := s.Get('a')
	if p != (canvas.Point{X: 2, Y: 2}) {
		t.Fatalf("got %+v, want last write", p)
	}
}

func TestInvalidKeyRejected(t *testing.T) {
	s := New()
	if err := s.Set('!', canvas.Point{}); err == nil {
		t.Fatal("expected error for invalid key")
	}
}

func TestRestoreIgnoresInvalidKeys(t *testing.T) {
	s := New()
	s.Restore(map[string]canvas.Point{"a": {X: 1, Y: 2}, "!!": {X: 9, Y: 9}})
	if len(s.List()) != 1 {
		t.Fatalf("expected 1 valid bookmark, got %d", len(s.List()))
	}
}
