package zone

import "testing"

func TestDecodeANSILineStripsAndColors(t *testing.T) {
	l := DecodeANSILine("\x1b[31mred\x1b[0m plain")
	if l.Text != "red plain" {
		t.Fatalf("text = %q", l.Text)
	}
	if len(l.Runs) != 1 || l.Runs[0].FG != 1 {
		t.Fatalf("runs = %+v", l.Runs)
	}
	if l.Runs[0].Start != 0 || l.Runs[0].End != 3 {
		t.Fatalf("run range = %+v", l.Runs[0])
	}
}

func TestStripANSIPlain(t *testing.T) {
	if got := StripANSI("no \x1b[2Jescapes here"); got != "no escapes here" {
		t.Fatalf("got %q", got)
	}
}
