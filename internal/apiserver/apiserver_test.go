package apiserver

import (
	"bufio"
	"encoding/json"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stlalpha/my-grid/internal/command"
)

// freePort asks the OS for an ephemeral port by binding and closing.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestTCPRoundTripEnqueuesAndResponds(t *testing.T) {
	port := freePort(t)
	s := New("127.0.0.1", port, "", false)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Shutdown()

	// Drive the queue ourselves, standing in for the application loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			reqs := s.Queue.Drain(10)
			if len(reqs) > 0 {
				Apply(reqs, func(line string) command.Result {
					return command.Result{Status: command.StatusOK, Message: "echo: " + line}
				})
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	conn, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(port))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("status\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		t.Fatalf("no response: %v", scanner.Err())
	}

	var res command.Result
	if err := json.Unmarshal(scanner.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal %q: %v", scanner.Text(), err)
	}
	if res.Status != command.StatusOK || res.Message != "echo: status" {
		t.Fatalf("got %+v", res)
	}
}

func TestQueueDrainRespectsLimit(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.push(request{line: "x"})
	}
	first := q.Drain(3)
	if len(first) != 3 {
		t.Fatalf("got %d", len(first))
	}
	rest := q.Drain(10)
	if len(rest) != 2 {
		t.Fatalf("got %d", len(rest))
	}
}
