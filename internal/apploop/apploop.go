// Package apploop implements the single-threaded cooperative loop that
// is the sole mutator of canvas, viewport, bookmarks, zone metadata,
// and clipboard (spec.md §4.7 / §5's scheduling model). Zone handlers,
// the API server, and foreground input all run on their own
// goroutines; none of them touch shared state directly, only post
// events or commands this loop applies.
package apploop

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stlalpha/my-grid/internal/apiserver"
	"github.com/stlalpha/my-grid/internal/command"
	"github.com/stlalpha/my-grid/internal/keymap"
	"github.com/stlalpha/my-grid/internal/logging"
	"github.com/stlalpha/my-grid/internal/mode"
	"github.com/stlalpha/my-grid/internal/zone"
)

// CommandRateLimit bounds how many API/FIFO commands are applied per
// iteration (spec.md §4.8 default of 10, overridable via config).
const CommandRateLimit = 10

// InputPollTimeout is how long step 3 waits for foreground input
// before moving on, matching spec.md §4.7's ~50ms figure.
const InputPollTimeout = 50 * time.Millisecond

// Renderer draws one frame. Implementations live in the renderer
// package; apploop only depends on this narrow interface so it can run
// headless (a no-op Renderer) without importing terminal I/O.
type Renderer interface {
	Render() error
}

// Loop wires together the pieces spec.md §4.7 names: the command
// executor (shared with the API server), the zone registry, an input
// source, and a renderer.
type Loop struct {
	Executor *command.Executor
	Zones    *zone.Registry
	Server   *apiserver.Server // nil when --server was not requested
	Input    <-chan byte       // raw foreground input bytes; nil in headless mode
	Renderer Renderer          // nil (or a no-op) in headless mode

	RateLimit int
	TargetFPS int
	Headless  bool
	Continuous bool // true when --server keeps the loop running without TTY input

	decoder *keymap.Decoder
	cron    *cron.Cron
	quit    bool
}

// New constructs a Loop with defaults filled in for zero-value fields.
func New(exec *command.Executor, zones *zone.Registry) *Loop {
	return &Loop{
		Executor:  exec,
		Zones:     zones,
		RateLimit: CommandRateLimit,
		TargetFPS: 20,
		decoder:   keymap.NewDecoder(),
	}
}

// EnableAutosave schedules a periodic `write` of the current project
// file using cron's standard 5-field expression (e.g. "*/5 * * * *"
// for every five minutes). It is an optional convenience the core spec
// does not require; skip calling this for a loop that should only
// save on explicit `write`/`wq` commands.
func (l *Loop) EnableAutosave(schedule string) error {
	l.cron = cron.New()
	_, err := l.cron.AddFunc(schedule, func() {
		if l.Executor.CurrentFile == "" {
			return
		}
		res := l.Executor.Execute("write")
		if res.Status != command.StatusOK {
			logging.Warn("autosave failed: %s", res.Message)
		} else {
			logging.Debug("autosave wrote %s", l.Executor.CurrentFile)
		}
	})
	if err != nil {
		return err
	}
	l.cron.Start()
	return nil
}

// Run executes the loop until a `quit` command sets the shutdown flag
// or ctx-equivalent caller cancellation happens (the caller is expected
// to close Input and stop the Server before returning control here in
// that case; Run itself only checks the internal quit flag set by
// executed commands).
func (l *Loop) Run() {
	defer func() {
		if l.cron != nil {
			l.cron.Stop()
		}
	}()

	for !l.quit {
		l.drainExternalCommands()
		l.drainZoneEvents()
		ev, hasInput := l.pollInput()
		if hasInput {
			l.processInput(ev)
		}
		if !l.Headless && l.Renderer != nil {
			if err := l.Renderer.Render(); err != nil {
				logging.Error("render: %v", err)
			}
		}
		l.pace(hasInput)
	}
}

// Quit requests the loop stop after the current iteration.
func (l *Loop) Quit() { l.quit = true }

// drainExternalCommands applies up to RateLimit queued API/FIFO
// commands (spec.md §4.7 step 1).
func (l *Loop) drainExternalCommands() {
	if l.Server == nil {
		return
	}
	reqs := l.Server.Queue.Drain(l.RateLimit)
	apiserver.Apply(reqs, func(line string) command.Result {
		res := l.Executor.Execute(line)
		if res.Quit {
			l.quit = true
		}
		return res
	})
}

// drainZoneEvents applies every currently queued zone event (spec.md
// §4.7 step 2). Unlike commands, zone events are not rate-limited: a
// burst of PTY output should not visibly lag a frame behind.
func (l *Loop) drainZoneEvents() {
	l.Zones.Drain(0, func(z *zone.Zone, ev zone.Event) {
		switch ev.Kind {
		case zone.EventAppend:
			z.Buffer.Append(ev.Line)
		case zone.EventAppendMany:
			for _, ln := range ev.Lines {
				z.Buffer.Append(ln)
			}
		case zone.EventReplace:
			z.Buffer.Replace(ev.Lines)
		case zone.EventState:
			z.SetState(ev.State, ev.Message)
		case zone.EventError:
			z.SetState(zone.StateError, ev.Message)
		}
	})
}

// pollInput waits up to InputPollTimeout for one decoded foreground
// input event (spec.md §4.7 step 3). Returns false if nothing arrived
// in time, which is the common case when idling between keystrokes.
func (l *Loop) pollInput() (mode.InputEvent, bool) {
	if l.Input == nil {
		return mode.InputEvent{}, false
	}
	timer := time.NewTimer(InputPollTimeout)
	defer timer.Stop()
	for {
		select {
		case b, ok := <-l.Input:
			if !ok {
				l.Input = nil
				return mode.InputEvent{}, false
			}
			if ev, complete := l.decoder.Feed(b); complete {
				return ev, true
			}
			// Escape sequence still accumulating; keep reading without
			// resetting the timeout budget noticeably (sequences are
			// a handful of bytes, arriving effectively at once).
			continue
		case <-timer.C:
			return mode.InputEvent{}, false
		}
	}
}

// processInput forwards ev to a focused PTY zone or the mode machine,
// then executes any commands the mode machine produced (spec.md §4.7
// steps 3-5).
func (l *Loop) processInput(ev mode.InputEvent) {
	m := l.Executor.Machine
	if z := m.FocusedZone; z != "" && ev.Key != mode.KeyEsc && !interceptedForScrollback(ev) {
		if zn, found := l.Zones.Get(z); found {
			if h := zn.HandlerRef(); h != nil {
				_ = h.Send(keymap.Encode(ev))
				return
			}
		}
	}

	res := m.Process(ev)
	for _, line := range res.CommandsToExec {
		cmdRes := l.Executor.Execute(line)
		if cmdRes.Quit {
			l.quit = true
		}
	}
	if res.Quit {
		l.quit = true
	}
}

// interceptedForScrollback reports whether ev is one of the
// Shift+PgUp/PgDn/Home/End combinations the loop keeps from a focused
// PTY (spec.md §4.6.3). They go to the mode machine instead, which
// ignores them in PTY_FOCUSED; no scrollback view of the PTY history is
// drawn.
func interceptedForScrollback(ev mode.InputEvent) bool {
	if !ev.Mods.Shift {
		return false
	}
	switch ev.Key {
	case mode.KeyPgUp, mode.KeyPgDn, mode.KeyHome, mode.KeyEnd:
		return true
	}
	return false
}

// pace sleeps to cap the loop at TargetFPS in continuous (--server)
// mode; otherwise it relies on pollInput's timeout as the natural
// pacing mechanism (spec.md §4.7 step 7).
func (l *Loop) pace(hadInput bool) {
	if !l.Continuous {
		return
	}
	if l.TargetFPS <= 0 {
		return
	}
	frame := time.Second / time.Duration(l.TargetFPS)
	if !hadInput {
		// pollInput already waited ~InputPollTimeout; only sleep the
		// remainder of the frame budget, if any.
		if frame > InputPollTimeout {
			time.Sleep(frame - InputPollTimeout)
		}
		return
	}
	time.Sleep(frame)
}
