// Package apiserver implements the external control surface (spec.md
// §4.8): a loopback TCP listener and an optional named pipe, both
// feeding the same rate-limited command queue the application loop
// drains once per frame. Every accepted connection and FIFO open runs
// on its own goroutine; none of them touch canvas/viewport/zone state
// directly; they only enqueue command.Executor.Execute calls' raw
// command lines for the loop to apply.
package apiserver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/stlalpha/my-grid/internal/command"
	"github.com/stlalpha/my-grid/internal/logging"
)

// request is one decoded command line waiting to be applied by the
// loop, paired with the channel (nil for FIFO sources) used to report
// its result back to the sender.
type request struct {
	line string
	resp chan<- command.Result // nil when no response is expected (FIFO)
}

// Queue is the unbounded mailbox the loop drains; the loop applies at
// most its rate limit per frame via Drain, leaving the rest queued. Sources
// (TCP connections, the FIFO reader) post to it concurrently; the loop
// is the sole consumer, so per-source ordering is preserved by each
// source posting its own requests strictly in order.
type Queue struct {
	mu    sync.Mutex
	items []request
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue { return &Queue{} }

func (q *Queue) push(r request) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

// Drain removes and returns up to n queued requests, preserving order.
// Called once per frame by the application loop.
func (q *Queue) Drain(n int) []request {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.items) {
		n = len(q.items)
	}
	out := q.items[:n]
	q.items = q.items[n:]
	return out
}

// Apply runs every drained request through exec in order, delivering
// each result to its response channel (if any). This is a convenience
// for the loop; it may also inspect individual requests itself via
// Drain and call exec.Execute per request.
func Apply(reqs []request, exec func(line string) command.Result) {
	for _, r := range reqs {
		res := exec(r.line)
		if r.resp != nil {
			r.resp <- res
		}
	}
}

// Server owns the optional TCP listener and FIFO reader feeding a
// Queue. Construct with New, start ingress with Start, and call
// Shutdown on application exit.
type Server struct {
	Queue *Queue

	host        string
	port        int
	fifoPath    string
	fifoEnabled bool

	listener net.Listener
	fifoFile *os.File
	wg       sync.WaitGroup
	closing  chan struct{}
	closeOne sync.Once
}

// New constructs a Server bound to host:port (TCP) and, if
// fifoEnabled, the named pipe at fifoPath. Nothing is opened until
// Start is called.
func New(host string, port int, fifoPath string, fifoEnabled bool) *Server {
	return &Server{
		Queue:       NewQueue(),
		host:        host,
		port:        port,
		fifoPath:    fifoPath,
		fifoEnabled: fifoEnabled,
		closing:     make(chan struct{}),
	}
}

// Start opens the TCP listener (and the FIFO, if enabled) and begins
// accepting input on background goroutines. It binds to loopback-only
// addresses unless the caller passed a non-loopback host explicitly
// (spec.md §4.8's security note: no authentication, loopback by
// default, override is the caller's choice).
func (s *Server) Start() error {
	host := s.host
	if host == "" {
		host = "127.0.0.1"
	}
	addr := fmt.Sprintf("%s:%d", host, s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("apiserver: listen %s: %w", addr, err)
	}
	s.listener = ln
	logging.Info("api server listening on %s", addr)

	s.wg.Add(1)
	go s.acceptLoop()

	if s.fifoEnabled {
		if err := s.startFIFO(); err != nil {
			logging.Warn("api server: fifo disabled: %v", err)
		}
	}
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return
			default:
				logging.Error("api server accept: %v", err)
				return
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn reads newline-delimited commands from conn, enqueues one
// request per line preserving this connection's send order, and
// writes back the JSON result for each as it is applied by the loop.
// A connection that half-closes its write side after sending still
// receives its responses before the handler returns (spec.md §4.8:
// "fire-and-forget" clients).
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	connID := uuid.New().String()
	logging.Debug("api server: connection %s opened from %s", connID, conn.RemoteAddr())

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		resp := make(chan command.Result, 1)
		s.Queue.push(request{line: line, resp: resp})
		res := <-resp
		if err := writeJSON(conn, res); err != nil {
			logging.Debug("api server: connection %s write to %s: %v", connID, conn.RemoteAddr(), err)
			return
		}
	}
	logging.Debug("api server: connection %s closed", connID)
}

func writeJSON(w io.Writer, res command.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// startFIFO creates (if absent) the named pipe at s.fifoPath with
// owner-only permissions and begins reading lines from it on a
// background goroutine. Each line is enqueued with no response channel
// (spec.md §4.8: "no response" for the FIFO channel).
func (s *Server) startFIFO() error {
	if _, err := os.Stat(s.fifoPath); os.IsNotExist(err) {
		if err := unix.Mkfifo(s.fifoPath, 0600); err != nil {
			return fmt.Errorf("mkfifo %s: %w", s.fifoPath, err)
		}
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", s.fifoPath, err)
	}

	s.wg.Add(1)
	go s.fifoLoop()
	return nil
}

// fifoLoop opens the FIFO for reading and re-opens it each time a
// writer closes (EOF), so multiple writers across time are all
// observed, until Shutdown is called.
func (s *Server) fifoLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.closing:
			return
		default:
		}

		f, err := os.OpenFile(s.fifoPath, os.O_RDONLY, os.ModeNamedPipe)
		if err != nil {
			logging.Error("api server: open fifo %s: %v", s.fifoPath, err)
			return
		}
		s.fifoFile = f

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 4096), 1<<20)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			s.Queue.push(request{line: line, resp: nil})
		}
		f.Close()

		select {
		case <-s.closing:
			return
		default:
		}
	}
}

// Shutdown closes the listener and FIFO, unblocking their goroutines,
// removes the file at the FIFO path (whether or not this server created
// it), and waits for all in-flight connection handlers to finish.
func (s *Server) Shutdown() {
	s.closeOne.Do(func() {
		close(s.closing)
		if s.listener != nil {
			s.listener.Close()
		}
		if s.fifoFile != nil {
			s.fifoFile.Close()
		}
		if s.fifoEnabled {
			// A reader still blocked opening the FIFO returns once a
			// writer opens it; with no reader waiting this open fails.
			if w, err := os.OpenFile(s.fifoPath, os.O_WRONLY|unix.O_NONBLOCK, 0); err == nil {
				w.Close()
			}
			os.Remove(s.fifoPath)
		}
	})
	s.wg.Wait()
}
