package zone

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	shellquote "github.com/kballard/go-shellquote"
)

// PipeHandler runs its command once at creation and again on each
// Refresh(), capturing stdout+stderr interleaved and appending decoded
// lines to the zone's buffer (spec.md §4.6.1).
type PipeHandler struct {
	cfg PipeConfig

	mu     sync.Mutex
	zone   *Zone
	events chan<- Event
	paused bool
}

// NewPipeHandler constructs a handler for a PIPE zone.
func NewPipeHandler(cfg PipeConfig) *PipeHandler {
	return &PipeHandler{cfg: cfg}
}

func (h *PipeHandler) Start(z *Zone, events chan<- Event) error {
	h.zone = z
	h.events = events
	return h.run()
}

func (h *PipeHandler) Stop() error {
	return nil
}

func (h *PipeHandler) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *PipeHandler) Resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
}

func (h *PipeHandler) Refresh() error {
	h.mu.Lock()
	paused := h.paused
	h.mu.Unlock()
	if paused {
		return nil
	}
	return h.run()
}

func (h *PipeHandler) Send([]byte) error {
	return fmt.Errorf("pipe zones do not accept input")
}

func (h *PipeHandler) run() error {
	go func() {
		args, err := shellquote.Split(h.cfg.Command)
		if err != nil || len(args) == 0 {
			h.events <- Event{ZoneName: h.zone.Name, Kind: EventError, Message: fmt.Sprintf("invalid command: %v", err)}
			return
		}
		cmd := exec.Command(args[0], args[1:]...)
		out, err := cmd.CombinedOutput()
		lines := strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		decoded := make([]Line, len(lines))
		for i, l := range lines {
			decoded[i] = DecodeANSILine(l)
		}
		h.events <- Event{ZoneName: h.zone.Name, Kind: EventAppendMany, Lines: decoded}
		status := "exit 0"
		if err != nil {
			status = fmt.Sprintf("exit error: %v", err)
		}
		h.events <- Event{ZoneName: h.zone.Name, Kind: EventState, State: StateRunning, Message: status}
	}()
	return nil
}
