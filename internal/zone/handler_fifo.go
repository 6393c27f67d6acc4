package zone

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// FIFOHandler creates (if absent) and reads from a named pipe, appending
// each received line to the zone's buffer. Readers re-open at EOF so
// multiple writers across time are all observed (spec.md §4.6.4).
type FIFOHandler struct {
	cfg     FIFOConfig
	created bool

	zone   *Zone
	events chan<- Event

	mu     sync.Mutex
	paused bool
	stop   chan struct{}
}

func NewFIFOHandler(cfg FIFOConfig) *FIFOHandler {
	return &FIFOHandler{cfg: cfg, stop: make(chan struct{})}
}

func (h *FIFOHandler) Start(z *Zone, events chan<- Event) error {
	h.zone = z
	h.events = events

	if _, err := os.Stat(h.cfg.Path); os.IsNotExist(err) {
		if err := unix.Mkfifo(h.cfg.Path, 0600); err != nil {
			return fmt.Errorf("fifo zone %q: creating %s: %w", z.Name, h.cfg.Path, err)
		}
		h.created = true
	}

	go h.readLoop()
	return nil
}

func (h *FIFOHandler) readLoop() {
	for {
		select {
		case <-h.stop:
			return
		default:
		}
		f, err := os.OpenFile(h.cfg.Path, os.O_RDONLY, os.ModeNamedPipe)
		if err != nil {
			h.events <- Event{ZoneName: h.zone.Name, Kind: EventError, Message: fmt.Sprintf("opening fifo: %v", err)}
			return
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			h.mu.Lock()
			paused := h.paused
			h.mu.Unlock()
			if paused {
				continue
			}
			h.events <- Event{ZoneName: h.zone.Name, Kind: EventAppend, Line: DecodeANSILine(scanner.Text())}
		}
		f.Close()
		// EOF: writer closed its end. Re-open to accept the next one,
		// unless Stop() has been called in the meantime.
		select {
		case <-h.stop:
			return
		default:
		}
	}
}

func (h *FIFOHandler) Stop() error {
	close(h.stop)
	if h.created {
		_ = os.Remove(h.cfg.Path)
	}
	return nil
}

func (h *FIFOHandler) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *FIFOHandler) Resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
}

func (h *FIFOHandler) Refresh() error { return nil }

func (h *FIFOHandler) Send([]byte) error {
	return fmt.Errorf("fifo zones are written to externally, not via send")
}
