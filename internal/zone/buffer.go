package zone

// ColorRun marks a [Start,End) byte range of a Line's Text with a
// foreground and background color.
type ColorRun struct {
	Start, End int
	FG, BG     int
}

// Line is one rendered row of a zone's buffer: plain text plus any color
// runs decoded from ANSI SGR sequences in the source bytes.
type Line struct {
	Text string
	Runs []ColorRun
}

// Buffer is the ordered, capacity-bounded sequence of lines a zone
// displays (spec.md §3 "Zone buffer").
type Buffer struct {
	Lines        []Line
	MaxLines     int
	AutoScroll   bool
	ScrollOffset int // lines from the bottom; 0 == following the tail
}

// NewBuffer creates an empty buffer with the given capacity and
// auto-scroll policy.
func NewBuffer(maxLines int, autoScroll bool) *Buffer {
	if maxLines <= 0 {
		maxLines = 1
	}
	return &Buffer{MaxLines: maxLines, AutoScroll: autoScroll}
}

// Append adds one line, evicting the oldest line if over capacity. If
// AutoScroll is set, ScrollOffset resets to 0 (pinned to the tail).
func (b *Buffer) Append(line Line) {
	b.Lines = append(b.Lines, line)
	if len(b.Lines) > b.MaxLines {
		b.Lines = b.Lines[len(b.Lines)-b.MaxLines:]
	}
	if b.AutoScroll {
		b.ScrollOffset = 0
	}
}

// AppendText is a convenience wrapper for plain, uncolored lines.
func (b *Buffer) AppendText(text string) {
	b.Append(Line{Text: text})
}

// Replace swaps the entire buffer content for lines, used by WATCH
// handlers whose command output is a full refresh rather than a stream.
func (b *Buffer) Replace(lines []Line) {
	if len(lines) > b.MaxLines {
		lines = lines[len(lines)-b.MaxLines:]
	}
	b.Lines = lines
	if b.AutoScroll {
		b.ScrollOffset = 0
	}
}

// Len returns the number of stored lines.
func (b *Buffer) Len() int { return len(b.Lines) }

// Window returns the h lines visible given the current ScrollOffset,
// oldest-to-newest, used by the renderer to fill a zone's inner rectangle.
func (b *Buffer) Window(h int) []Line {
	if h <= 0 || len(b.Lines) == 0 {
		return nil
	}
	end := len(b.Lines) - b.ScrollOffset
	if end > len(b.Lines) {
		end = len(b.Lines)
	}
	if end < 0 {
		end = 0
	}
	start := end - h
	if start < 0 {
		start = 0
	}
	return b.Lines[start:end]
}

// ScrollUp moves the visible window toward older lines.
func (b *Buffer) ScrollUp(n int) {
	b.ScrollOffset += n
	maxOffset := len(b.Lines) - 1
	if maxOffset < 0 {
		maxOffset = 0
	}
	if b.ScrollOffset > maxOffset {
		b.ScrollOffset = maxOffset
	}
}

// ScrollDown moves the visible window toward the tail; at 0 it is pinned
// to the latest lines.
func (b *Buffer) ScrollDown(n int) {
	b.ScrollOffset -= n
	if b.ScrollOffset < 0 {
		b.ScrollOffset = 0
	}
}

// TextLines returns the buffer's lines as plain strings, used by
// yank_zone to build a clipboard buffer.
func (b *Buffer) TextLines() []string {
	out := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		out[i] = l.Text
	}
	return out
}
