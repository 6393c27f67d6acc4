package zone

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	shellquote "github.com/kballard/go-shellquote"
)

// WatchHandler re-runs Command on a fixed interval, or whenever
// WatchPath changes on disk, replacing the zone buffer's content with
// each run's output (spec.md §4.6.2). Pause suspends re-runs without
// releasing the timer/watcher.
type WatchHandler struct {
	cfg WatchConfig

	zone   *Zone
	events chan<- Event

	mu      sync.Mutex
	paused  bool
	stopCh  chan struct{}
	watcher *fsnotify.Watcher
}

func NewWatchHandler(cfg WatchConfig) *WatchHandler {
	return &WatchHandler{cfg: cfg, stopCh: make(chan struct{})}
}

func (h *WatchHandler) Start(z *Zone, events chan<- Event) error {
	h.zone = z
	h.events = events
	if h.cfg.WatchPath != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch zone: creating file watcher: %w", err)
		}
		if err := w.Add(h.cfg.WatchPath); err != nil {
			w.Close()
			return fmt.Errorf("watch zone: watching %s: %w", h.cfg.WatchPath, err)
		}
		h.watcher = w
		go h.watchLoop()
	} else {
		go h.intervalLoop()
	}
	return nil
}

func (h *WatchHandler) intervalLoop() {
	interval := h.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	h.runOnce(h.cfg.Command)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			h.mu.Lock()
			paused := h.paused
			h.mu.Unlock()
			if !paused {
				h.runOnce(h.cfg.Command)
			}
		case <-h.stopCh:
			return
		}
	}
}

func (h *WatchHandler) watchLoop() {
	for {
		select {
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.mu.Lock()
			paused := h.paused
			h.mu.Unlock()
			if paused {
				continue
			}
			cmd := strings.ReplaceAll(h.cfg.Command, "{file}", ev.Name)
			h.runOnce(cmd)
		case _, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
		case <-h.stopCh:
			return
		}
	}
}

func (h *WatchHandler) runOnce(command string) {
	args, err := shellquote.Split(command)
	if err != nil || len(args) == 0 {
		h.events <- Event{ZoneName: h.zone.Name, Kind: EventError, Message: fmt.Sprintf("invalid command: %v", err)}
		return
	}
	cmd := exec.Command(args[0], args[1:]...)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		// On handler error the last run's stderr is appended and the
		// handler continues on the next tick (spec.md §4.6.2).
		h.events <- Event{ZoneName: h.zone.Name, Kind: EventAppend, Line: DecodeANSILine(fmt.Sprintf("[error] %v: %s", runErr, strings.TrimSpace(string(out))))}
		return
	}
	lines := strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	decoded := make([]Line, len(lines))
	for i, l := range lines {
		decoded[i] = DecodeANSILine(l)
	}
	h.events <- Event{ZoneName: h.zone.Name, Kind: EventReplace, Lines: decoded}
}

func (h *WatchHandler) Stop() error {
	close(h.stopCh)
	if h.watcher != nil {
		h.watcher.Close()
	}
	return nil
}

func (h *WatchHandler) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *WatchHandler) Resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
}

func (h *WatchHandler) Refresh() error {
	go h.runOnce(h.cfg.Command)
	return nil
}

func (h *WatchHandler) Send([]byte) error {
	return fmt.Errorf("watch zones do not accept input")
}
