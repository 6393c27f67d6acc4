// Command my-grid is the terminal ASCII canvas editor: an infinite
// sparse grid navigated modally, with zones that overlay content from
// subprocesses, file watches, PTYs, named pipes, and sockets, plus an
// optional TCP/FIFO control surface that drives the same command
// executor as the keyboard (spec.md §6.1).
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/stlalpha/my-grid/internal/apiserver"
	"github.com/stlalpha/my-grid/internal/apploop"
	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/clipboard"
	"github.com/stlalpha/my-grid/internal/command"
	"github.com/stlalpha/my-grid/internal/config"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/keymap"
	"github.com/stlalpha/my-grid/internal/logging"
	"github.com/stlalpha/my-grid/internal/mode"
	"github.com/stlalpha/my-grid/internal/project"
	"github.com/stlalpha/my-grid/internal/renderer"
	"github.com/stlalpha/my-grid/internal/sysclip"
	"github.com/stlalpha/my-grid/internal/terminalio"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

const (
	exitOK           = 0
	exitInitFailure  = 1
	exitFileLoadFail = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		serverFlag   = flag.Bool("server", false, "enable the TCP/FIFO control surface")
		hostFlag     = flag.String("host", "", "API server host (overrides config)")
		portFlag     = flag.Int("port", 0, "API server port (overrides config)")
		noFIFOFlag   = flag.Bool("no-fifo", false, "disable the named-pipe command channel")
		fifoFlag     = flag.String("fifo", "", "named pipe path (overrides config)")
		layoutFlag   = flag.String("layout", "", "layout to load at startup")
		headlessFlag = flag.Bool("headless", false, "run without a display (skip rendering)")
		debugFlag    = flag.Bool("debug", false, "enable debug logging")
		cp437Flag    = flag.Bool("cp437", false, "selectively re-encode output for legacy CP437-only terminals")
	)
	flag.Parse()

	if *debugFlag || os.Getenv("MYGRID_DEBUG") != "" {
		logging.DebugEnabled = true
	}

	configDir := configDir()
	cfg, err := config.Load(configDir)
	if err != nil {
		log.Printf("config: %v", err)
		return exitInitFailure
	}
	if *hostFlag != "" {
		cfg.Host = *hostFlag
	}
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}
	if *fifoFlag != "" {
		cfg.FIFOPath = *fifoFlag
	}
	if *noFIFOFlag {
		cfg.FIFOEnabled = false
	}

	c := canvas.New()
	v := viewport.New(80, 24)
	gs := grid.DefaultSettings()
	bm := bookmark.New()
	clip := clipboard.NewHolder()
	zones := zone.NewRegistry()
	m := mode.New(c, v, bm, clip)

	layoutDir := filepath.Join(configDir, "layouts")
	if cfg.LayoutDir != "" && filepath.IsAbs(cfg.LayoutDir) {
		layoutDir = cfg.LayoutDir
	}
	layouts, err := project.NewLayoutStore(layoutDir)
	if err != nil {
		log.Printf("layout store: %v", err)
		return exitInitFailure
	}

	exec := command.New(c, v, &gs, bm, clip, zones, m, layouts)
	exec.SysClip = sysclip.New()

	if args := flag.Args(); len(args) > 0 {
		path := args[0]
		f, err := project.Load(path)
		if err != nil {
			log.Printf("loading %s: %v", path, err)
			return exitFileLoadFail
		}
		f.ApplyCanvas(c)
		f.ApplyViewport(v)
		f.ApplyGrid(&gs)
		f.ApplyBookmarks(bm)
		created, failed := exec.RestoreZoneDescriptors(f.Zones.Zones)
		if failed > 0 {
			logging.Warn("restored %d zone(s) from %s, %d failed", created, path, failed)
		}
		exec.CurrentFile = path
		exec.ProjectName = f.Metadata.Name
		exec.CreatedISO = f.Metadata.CreatedISO
	}

	if *layoutFlag != "" {
		if res := exec.Execute("layout load " + *layoutFlag); res.Status != command.StatusOK {
			logging.Warn("loading layout %q: %s", *layoutFlag, res.Message)
		}
	}

	loop := apploop.New(exec, zones)
	loop.RateLimit = cfg.RateLimit
	loop.TargetFPS = cfg.TargetFPS
	loop.Headless = *headlessFlag
	loop.Continuous = *serverFlag

	var srv *apiserver.Server
	if *serverFlag {
		srv = apiserver.New(cfg.Host, cfg.Port, cfg.FIFOPath, cfg.FIFOEnabled)
		if err := srv.Start(); err != nil {
			log.Printf("api server: %v", err)
			return exitInitFailure
		}
		loop.Server = srv
		defer srv.Shutdown()
	}

	if !*headlessFlag {
		restore, err := enterRawMode()
		if err != nil {
			log.Printf("terminal: %v", err)
			return exitInitFailure
		}
		defer restore()

		w, h, err := term.GetSize(int(os.Stdin.Fd()))
		if err != nil {
			w, h = 80, 24
		}
		v.Resize(w, h-1)

		input := make(chan byte, 256)
		go readStdin(input)
		loop.Input = input

		var out io.Writer = os.Stdout
		if *cp437Flag {
			out = terminalio.NewSelectiveCP437Writer(os.Stdout)
		}
		tty := &renderer.Terminal{W: w, H: h, Out: out}
		loop.Renderer = renderer.New(tty, c, v, &gs, zones, m, func() command.Result {
			return exec.Execute("status")
		})
	}

	installSignalHandler(loop)

	loop.Run()
	return exitOK
}

// configDir returns the per-user config directory (~/.config/my-grid
// on Unix, matching the teacher's XDG-based layout convention); falls
// back to the relative directory ".my-grid" if the home directory is
// unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".my-grid"
	}
	return filepath.Join(home, ".config", "my-grid")
}

// enterRawMode puts stdin into raw mode for direct key-by-key input
// (spec.md §4.6.3) and returns a function that restores the original
// terminal state.
func enterRawMode() (func(), error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return func() {
		_ = term.Restore(fd, state)
	}, nil
}

// readStdin feeds raw bytes to out until stdin closes. Runs on its own
// goroutine; never touches shared editor state directly (spec.md §5).
func readStdin(out chan<- byte) {
	defer close(out)
	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		for i := 0; i < n; i++ {
			out <- buf[i]
		}
		if err != nil {
			return
		}
	}
}

// installSignalHandler asks the loop to quit on SIGINT/SIGTERM, giving
// zone handlers a chance at graceful shutdown (spec.md §5: "each zone
// handler is asked to stop and given a bounded join deadline").
func installSignalHandler(loop *apploop.Loop) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		loop.Quit()
	}()
}
