package zone

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/stlalpha/my-grid/internal/termemu"
)

// PTYHandler spawns a shell (or arbitrary command line) attached to a
// pseudo-terminal, feeding its output into a VT100 screen emulator and
// forwarding focused keystrokes back to the child (spec.md §4.6.3).
//
// If pseudo-terminals are unavailable on this platform, Start returns an
// error and the caller (layout load or `zone pty`) treats creation as
// failed without aborting the rest of a batch (spec.md §4.6.3 "Platform
// note").
type PTYHandler struct {
	cfg PTYConfig

	zone   *Zone
	events chan<- Event

	mu     sync.Mutex
	cmd    *exec.Cmd
	master *os.File
	screen *termemu.Screen
	done   chan struct{}
}

func NewPTYHandler(cfg PTYConfig) *PTYHandler {
	return &PTYHandler{cfg: cfg, done: make(chan struct{})}
}

// Screen returns the handler's terminal emulator, used by the renderer to
// compose the zone's visible content.
func (h *PTYHandler) Screen() *termemu.Screen {
	return h.screen
}

func (h *PTYHandler) Start(z *Zone, events chan<- Event) error {
	h.zone = z
	h.events = events

	args, err := shellquote.Split(h.cfg.ShellCommandLine)
	if err != nil || len(args) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		args = []string{shell}
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	innerW, innerH := innerSize(z)
	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(innerH), Cols: uint16(innerW)})
	if err != nil {
		return fmt.Errorf("pty zone %q: starting child: %w", z.Name, err)
	}

	h.mu.Lock()
	h.cmd = cmd
	h.master = master
	h.screen = termemu.New(innerW, innerH, h.cfg.MaxLines)
	h.mu.Unlock()

	go h.readLoop()
	go h.waitLoop()
	return nil
}

// innerSize returns the zone's content rectangle, excluding a 1-cell
// border on every side.
func innerSize(z *Zone) (w, h int) {
	w = z.W - 2
	h = z.H - 2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (h *PTYHandler) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := h.master.Read(buf)
		if n > 0 {
			h.screen.Feed(buf[:n])
			h.events <- Event{ZoneName: h.zone.Name, Kind: EventState, State: StateRunning}
		}
		if err != nil {
			return
		}
	}
}

func (h *PTYHandler) waitLoop() {
	err := h.cmd.Wait()
	close(h.done)
	msg := "child exited"
	if err != nil {
		msg = fmt.Sprintf("child exited: %v", err)
	}
	h.events <- Event{ZoneName: h.zone.Name, Kind: EventState, State: StateStopped, Message: msg}
}

func (h *PTYHandler) Stop() error {
	h.mu.Lock()
	cmd := h.cmd
	master := h.master
	h.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-h.done:
		case <-time.After(time.Second):
			_ = cmd.Process.Kill()
		}
	}
	if master != nil {
		return master.Close()
	}
	return nil
}

func (h *PTYHandler) Pause()  {} // PTY zones have no separate pause: the child keeps running
func (h *PTYHandler) Resume() {}

func (h *PTYHandler) Refresh() error {
	return nil
}

// Send forwards bytes (already translated to the canonical VT escape
// sequences by the keymap, spec.md §4.6.3) to the child's stdin.
func (h *PTYHandler) Send(data []byte) error {
	h.mu.Lock()
	master := h.master
	h.mu.Unlock()
	if master == nil {
		return fmt.Errorf("pty zone %q has no active child", h.zone.Name)
	}
	_, err := master.Write(data)
	return err
}

// Resize propagates a zone geometry change to the PTY and its emulator.
func (h *PTYHandler) Resize(w, h2 int) {
	h.mu.Lock()
	master := h.master
	screen := h.screen
	h.mu.Unlock()
	if master != nil {
		_ = pty.Setsize(master, &pty.Winsize{Rows: uint16(h2), Cols: uint16(w)})
	}
	if screen != nil {
		screen.Resize(w, h2)
	}
}
