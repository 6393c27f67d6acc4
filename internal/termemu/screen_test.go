package termemu

import "testing"

func lineText(row []Cell) string {
	r := make([]rune, len(row))
	for i, c := range row {
		r[i] = c.Ch
	}
	return string(r)
}

func TestFeedPrintableAndCRLF(t *testing.T) {
	s := New(10, 3, 100)
	s.Feed([]byte("Hi\r\n"))
	lines := s.CurrentScreenLines()
	got := lineText(lines[0])
	if got[:2] != "Hi" {
		t.Fatalf("line 0 = %q", got)
	}
	x, y := s.CursorPosition()
	if x != 0 || y != 1 {
		t.Fatalf("cursor = (%d,%d), want (0,1)", x, y)
	}
}

func TestScrollProducesHistory(t *testing.T) {
	s := New(5, 2, 10)
	s.Feed([]byte("a\r\nb\r\nc\r\n"))
	hist := s.HistoryLines()
	if len(hist) == 0 {
		t.Fatalf("expected scrollback history after overflowing 2-row screen")
	}
}

func TestSGRColorApplied(t *testing.T) {
	s := New(10, 1, 10)
	s.Feed([]byte("\x1b[31mX\x1b[0m"))
	lines := s.CurrentScreenLines()
	if lines[0][0].FG != 1 {
		t.Fatalf("expected red fg=1, got %d", lines[0][0].FG)
	}
}

func TestEraseInLine(t *testing.T) {
	s := New(5, 1, 10)
	s.Feed([]byte("abcde"))
	s.Feed([]byte("\x1b[H\x1b[2K"))
	lines := s.CurrentScreenLines()
	for _, c := range lines[0] {
		if c.Ch != ' ' {
			t.Fatalf("expected line cleared, got %q", lineText(lines[0]))
		}
	}
}

func TestCursorPositioning(t *testing.T) {
	s := New(10, 10, 10)
	s.Feed([]byte("\x1b[5;3H"))
	x, y := s.CursorPosition()
	if x != 2 || y != 4 {
		t.Fatalf("cursor = (%d,%d), want (2,4) for row 5 col 3 (1-based)", x, y)
	}
}
