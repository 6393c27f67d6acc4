package clipboard

import (
	"testing"

	"github.com/stlalpha/my-grid/internal/canvas"
)

func TestYankPasteRoundTrip(t *testing.T) {
	c := canvas.New()
	c.WriteText(0, 0, "ABCD", 1, 2)

	buf := Yank(c, 0, 0, 4, 1)
	c.ClearRegion(0, 0, 4, 1)
	if c.Count() != 0 {
		t.Fatalf("expected canvas cleared, count=%d", c.Count())
	}

	buf.Paste(c, 0, 0)
	for i, want := range []rune("ABCD") {
		got := c.Get(int64(i), 0)
		if got.Char != want || got.FG != 1 || got.BG != 2 {
			t.Fatalf("cell %d: got %+v, want char=%q fg=1 bg=2", i, got, want)
		}
	}
}

func TestPasteSkipsEmptyCells(t *testing.T) {
	src := canvas.New()
	src.Set(1, 0, canvas.Cell{Char: 'B', FG: canvas.ColorDefault, BG: canvas.ColorDefault})
	buf := Yank(src, 0, 0, 3, 1) // (0,0) and (2,0) are empty in the yanked rect

	dst := canvas.New()
	dst.Set(0, 5, canvas.Cell{Char: 'X', FG: 9, BG: 9})
	dst.Set(2, 5, canvas.Cell{Char: 'Y', FG: 9, BG: 9})
	buf.Paste(dst, 0, 5)

	if dst.Get(0, 5).Char != 'X' {
		t.Fatalf("paste erased underlying content at (0,5): %+v", dst.Get(0, 5))
	}
	if dst.Get(2, 5).Char != 'Y' {
		t.Fatalf("paste erased underlying content at (2,5): %+v", dst.Get(2, 5))
	}
	if dst.Get(1, 5).Char != 'B' {
		t.Fatalf("paste did not write non-empty cell: %+v", dst.Get(1, 5))
	}
}

func TestFromLinesPadsToWidest(t *testing.T) {
	buf := FromLines([]string{"a", "bcd"})
	if buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("got %dx%d, want 3x2", buf.Width, buf.Height)
	}
	if !buf.Cells[0][1].Empty() {
		t.Fatalf("expected padding cell to be empty")
	}
}
