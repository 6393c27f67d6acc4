package zone

import (
	"fmt"
	"os"
	"strings"
)

// PagerHandler reads a file once (or on explicit Refresh) and displays it
// with scrollback via the buffer's existing ScrollOffset mechanism
// (spec.md §4.6.6).
type PagerHandler struct {
	cfg PagerConfig

	zone   *Zone
	events chan<- Event
}

func NewPagerHandler(cfg PagerConfig) *PagerHandler {
	return &PagerHandler{cfg: cfg}
}

func (h *PagerHandler) Start(z *Zone, events chan<- Event) error {
	h.zone = z
	h.events = events
	return h.load()
}

func (h *PagerHandler) load() error {
	data, err := os.ReadFile(h.cfg.FilePath)
	if err != nil {
		h.events <- Event{ZoneName: h.zone.Name, Kind: EventError, Message: fmt.Sprintf("reading %s: %v", h.cfg.FilePath, err)}
		return err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	decoded := make([]Line, len(lines))
	for i, l := range lines {
		if h.cfg.RendererHint == "ansi" {
			decoded[i] = DecodeANSILine(l)
		} else {
			decoded[i] = Line{Text: StripANSI(l)}
		}
	}
	h.events <- Event{ZoneName: h.zone.Name, Kind: EventReplace, Lines: decoded}
	return nil
}

func (h *PagerHandler) Stop() error   { return nil }
func (h *PagerHandler) Pause()        {}
func (h *PagerHandler) Resume()       {}
func (h *PagerHandler) Refresh() error { return h.load() }
func (h *PagerHandler) Send([]byte) error {
	return fmt.Errorf("pager zones do not accept input")
}
