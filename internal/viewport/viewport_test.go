package viewport

import "testing"

func TestTransformRoundTripDown(t *testing.T) {
	v := New(80, 24)
	v.SetOrigin(-10, -10)
	for cx := int64(-10); cx < 70; cx += 7 {
		for cy := int64(-10); cy < 14; cy += 5 {
			sx, sy, ok := v.CanvasToScreen(cx, cy)
			if !ok {
				t.Fatalf("point (%d,%d) unexpectedly outside viewport", cx, cy)
			}
			gcx, gcy := v.ScreenToCanvas(sx, sy)
			if gcx != cx || gcy != cy {
				t.Fatalf("round trip failed: (%d,%d) -> screen(%d,%d) -> (%d,%d)", cx, cy, sx, sy, gcx, gcy)
			}
		}
	}
}

func TestTransformRoundTripUp(t *testing.T) {
	v := New(80, 24)
	v.YDir = Up
	v.SetOrigin(0, 0)
	for cx := int64(0); cx < 80; cx += 11 {
		for cy := int64(0); cy < 24; cy += 3 {
			sx, sy, ok := v.CanvasToScreen(cx, cy)
			if !ok {
				t.Fatalf("point (%d,%d) unexpectedly outside viewport", cx, cy)
			}
			gcx, gcy := v.ScreenToCanvas(sx, sy)
			if gcx != cx || gcy != cy {
				t.Fatalf("round trip failed: (%d,%d) -> screen(%d,%d) -> (%d,%d)", cx, cy, sx, sy, gcx, gcy)
			}
		}
	}
}

func TestCursorScrollsViewportFlushEdge(t *testing.T) {
	v := New(10, 10)
	v.SetCursor(15, 0)
	if v.OriginX != 6 {
		t.Fatalf("OriginX = %d, want 6", v.OriginX)
	}
	v.SetCursor(-3, 0)
	if v.OriginX != -3 {
		t.Fatalf("OriginX = %d, want -3", v.OriginX)
	}
}

func TestPanDoesNotMoveCursor(t *testing.T) {
	v := New(10, 10)
	v.SetCursor(5, 5)
	v.Pan(3, -2)
	if v.CursorX != 5 || v.CursorY != 5 {
		t.Fatalf("cursor moved by pan: (%d,%d)", v.CursorX, v.CursorY)
	}
	if v.OriginX != 3 || v.OriginY != -2 {
		t.Fatalf("origin wrong: (%d,%d)", v.OriginX, v.OriginY)
	}
}
