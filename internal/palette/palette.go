// Package palette provides the named color table backing the `color` and
// `palette` commands and the renderer's SGR mapping — the standard
// 16-color ANSI set plus "default".
package palette

import "strconv"

// Entry is one named palette slot.
type Entry struct {
	Name  string
	Index int
}

// Table is the ordered list of named colors, index 0..15 matching ANSI
// SGR 30-37/90-97 foreground codes; -1 is "default" (spec.md §3 "palette").
var Table = []Entry{
	{"default", -1},
	{"black", 0}, {"red", 1}, {"green", 2}, {"yellow", 3},
	{"blue", 4}, {"magenta", 5}, {"cyan", 6}, {"white", 7},
	{"bright_black", 8}, {"bright_red", 9}, {"bright_green", 10}, {"bright_yellow", 11},
	{"bright_blue", 12}, {"bright_magenta", 13}, {"bright_cyan", 14}, {"bright_white", 15},
}

// Lookup resolves a color token — a decimal index or a palette name — to
// its numeric value. ok is false for unrecognized tokens.
func Lookup(token string) (int, bool) {
	if n, err := strconv.Atoi(token); err == nil {
		return n, true
	}
	for _, e := range Table {
		if e.Name == token {
			return e.Index, true
		}
	}
	return 0, false
}

// Name returns the palette name for index, or its decimal form if it has
// no name (custom/extended indices beyond the base 16).
func Name(index int) string {
	for _, e := range Table {
		if e.Index == index {
			return e.Name
		}
	}
	return strconv.Itoa(index)
}
