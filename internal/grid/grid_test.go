package grid

import "testing"

func TestIsMajorHandlesNegatives(t *testing.T) {
	s := Settings{MajorInterval: 10}
	if !s.IsMajor(-10) {
		t.Fatalf("-10 should be major with interval 10")
	}
	if s.IsMajor(-1) {
		t.Fatalf("-1 should not be major with interval 10")
	}
	if !s.IsMajor(0) {
		t.Fatalf("0 should be major")
	}
}

func TestIsMinorExcludesMajor(t *testing.T) {
	s := Settings{MajorInterval: 10, MinorInterval: 5}
	if s.IsMinor(10) {
		t.Fatalf("10 is a major line, should not also report minor")
	}
	if !s.IsMinor(5) {
		t.Fatalf("5 should be minor")
	}
}

func TestGlyphOffModeDrawsNothing(t *testing.T) {
	s := Settings{MajorInterval: 10, LineModeVal: Off}
	if g := s.Glyph(10, 10); g != 0 {
		t.Fatalf("expected no glyph in Off mode, got %q", g)
	}
}
