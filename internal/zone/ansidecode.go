package zone

import (
	"strconv"
	"strings"
)

// applySGR maps a subset of SGR parameter codes to the palette indices
// used by canvas.Cell/zone.ColorRun (30-37/90-97 foreground, 40-47/100-107
// background, 39/49 default, 0 reset).
func applySGR(params []int, fg, bg *int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for _, p := range params {
		switch {
		case p == 0:
			*fg, *bg = -1, -1
		case p == 39:
			*fg = -1
		case p == 49:
			*bg = -1
		case p >= 30 && p <= 37:
			*fg = p - 30
		case p >= 90 && p <= 97:
			*fg = p - 90 + 8
		case p >= 40 && p <= 47:
			*bg = p - 40
		case p >= 100 && p <= 107:
			*bg = p - 100 + 8
		}
	}
}

// DecodeANSILine splits raw, possibly ANSI-colored text into a Line,
// stripping cursor/erase escapes and converting SGR runs into ColorRuns
// (text in the default colours gets no run). Other CSI sequences and
// two-byte ESC sequences are dropped rather than passed through.
func DecodeANSILine(raw string) Line {
	var text strings.Builder
	var runs []ColorRun
	fg, bg := -1, -1
	runStart := 0

	flushRun := func() {
		if text.Len() > runStart && (fg != -1 || bg != -1) {
			runs = append(runs, ColorRun{Start: runStart, End: text.Len(), FG: fg, BG: bg})
		}
		runStart = text.Len()
	}

	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == 0x1b && i+1 < len(raw) && raw[i+1] == '[' {
			j := i + 2
			for j < len(raw) && !isCSIFinal(raw[j]) {
				j++
			}
			if j >= len(raw) {
				break
			}
			final := raw[j]
			if final == 'm' {
				flushRun()
				params := parseParams(raw[i+2 : j])
				applySGR(params, &fg, &bg)
			}
			i = j + 1
			continue
		}
		if c == 0x1b {
			i += 2 // ESC plus its one-byte final, dropped
			continue
		}
		text.WriteByte(c)
		i++
	}
	flushRun()
	return Line{Text: text.String(), Runs: runs}
}

func isCSIFinal(b byte) bool {
	return b >= 0x40 && b <= 0x7e
}

func parseParams(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			out = append(out, 0)
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// StripANSI removes all CSI escape sequences, returning plain text.
func StripANSI(raw string) string {
	return DecodeANSILine(raw).Text
}
