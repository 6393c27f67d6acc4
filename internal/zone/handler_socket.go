package zone

import (
	"bufio"
	"fmt"
	"net"
	"sync"
)

// SocketHandler listens on 127.0.0.1:Port and appends each line received
// from any sequential connection to the zone's buffer (spec.md §4.6.5).
type SocketHandler struct {
	cfg SocketConfig

	zone   *Zone
	events chan<- Event

	mu       sync.Mutex
	paused   bool
	listener net.Listener
}

func NewSocketHandler(cfg SocketConfig) *SocketHandler {
	return &SocketHandler{cfg: cfg}
}

func (h *SocketHandler) Start(z *Zone, events chan<- Event) error {
	h.zone = z
	h.events = events

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", h.cfg.Port))
	if err != nil {
		return fmt.Errorf("socket zone %q: listening on port %d: %w", z.Name, h.cfg.Port, err)
	}
	h.listener = ln
	go h.acceptLoop()
	return nil
}

func (h *SocketHandler) acceptLoop() {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			return // listener closed by Stop()
		}
		go h.handleConn(conn)
	}
}

func (h *SocketHandler) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		h.mu.Lock()
		paused := h.paused
		h.mu.Unlock()
		if paused {
			continue
		}
		h.events <- Event{ZoneName: h.zone.Name, Kind: EventAppend, Line: DecodeANSILine(scanner.Text())}
	}
}

func (h *SocketHandler) Stop() error {
	if h.listener != nil {
		return h.listener.Close()
	}
	return nil
}

func (h *SocketHandler) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

func (h *SocketHandler) Resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
}

func (h *SocketHandler) Refresh() error { return nil }

func (h *SocketHandler) Send([]byte) error {
	return fmt.Errorf("socket zones are written to externally, not via send")
}
