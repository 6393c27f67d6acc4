package canvas

import "testing"

func TestSetGetRoundTrip(t *testing.T) {
	c := New()
	c.Set(5, -3, Cell{Char: 'X', FG: 1, BG: 2})
	got := c.Get(5, -3)
	if got.Char != 'X' || got.FG != 1 || got.BG != 2 {
		t.Fatalf("got %+v", got)
	}
	if c.Count() != 1 {
		t.Fatalf("count = %d, want 1", c.Count())
	}
}

func TestSetEmptyRemovesKey(t *testing.T) {
	c := New()
	c.Set(0, 0, Cell{Char: 'A', FG: ColorDefault, BG: ColorDefault})
	if c.Count() != 1 {
		t.Fatalf("count = %d, want 1", c.Count())
	}
	c.Set(0, 0, Cell{Char: EmptyChar, FG: ColorDefault, BG: ColorDefault})
	if c.Count() != 0 {
		t.Fatalf("count = %d, want 0 after clearing", c.Count())
	}
}

func TestClearRegionSparseInvariant(t *testing.T) {
	c := New()
	for x := int64(0); x < 5; x++ {
		for y := int64(0); y < 5; y++ {
			c.Set(x, y, Cell{Char: '#', FG: ColorDefault, BG: ColorDefault})
		}
	}
	c.ClearRegion(1, 1, 2, 2)
	want := 25 - 4
	if c.Count() != want {
		t.Fatalf("count = %d, want %d", c.Count(), want)
	}
}

func TestDrawLineZeroLength(t *testing.T) {
	c := New()
	c.DrawLine(3, 3, 3, 3, '*', BorderASCII)
	if c.Count() != 1 {
		t.Fatalf("count = %d, want 1", c.Count())
	}
	if c.Get(3, 3).Char != '*' {
		t.Fatalf("got %+v", c.Get(3, 3))
	}
}

func TestWriteTextAdvancesInX(t *testing.T) {
	c := New()
	c.WriteText(0, 0, "Hi", ColorDefault, ColorDefault)
	if c.Get(0, 0).Char != 'H' || c.Get(1, 0).Char != 'i' {
		t.Fatalf("unexpected cells: %+v %+v", c.Get(0, 0), c.Get(1, 0))
	}
	if c.Count() != 2 {
		t.Fatalf("count = %d, want 2", c.Count())
	}
}

func TestDrawRectBox(t *testing.T) {
	c := New()
	c.DrawRect(3, 2, 5, 3, 0, BorderASCII)
	// top-left and top-right corners
	if c.Get(3, 2).Char != '+' || c.Get(7, 2).Char != '+' {
		t.Fatalf("corners wrong: %+v %+v", c.Get(3, 2), c.Get(7, 2))
	}
	if c.Get(4, 2).Char != '-' {
		t.Fatalf("top edge wrong: %+v", c.Get(4, 2))
	}
	if c.Get(3, 3).Char != '|' {
		t.Fatalf("side wrong: %+v", c.Get(3, 3))
	}
}

func TestSparseStorageAfterMixedOps(t *testing.T) {
	c := New()
	c.DrawRect(0, 0, 5, 5, 0, BorderASCII)
	c.WriteText(1, 1, "Hi", ColorDefault, ColorDefault)
	c.ClearRegion(0, 0, 1, 1)

	expected := 0
	c.Each(func(p Point, cell Cell) {
		if !cell.Empty() {
			expected++
		}
	})
	if expected != c.Count() {
		t.Fatalf("count() = %d, actual non-empty = %d", c.Count(), expected)
	}
}
