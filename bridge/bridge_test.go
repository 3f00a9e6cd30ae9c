package bridge

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.bug.st/serial"

	"github.com/moffa90/go-jnflash/emulator"
)

const testPoll = 10 * time.Millisecond

// fakePort is a Port over one end of an in-memory pipe. Reads that hit the
// read timeout return (0, nil) like go.bug.st/serial.
type fakePort struct {
	conn net.Conn

	mu      sync.Mutex
	timeout time.Duration
	bauds   []int
	resets  int
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	timeout := p.timeout
	p.mu.Unlock()

	_ = p.conn.SetReadDeadline(time.Now().Add(timeout))
	n, err := p.conn.Read(b)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return n, nil
	}
	return n, err
}

func (p *fakePort) Write(b []byte) (int, error) { return p.conn.Write(b) }
func (p *fakePort) Close() error                { return p.conn.Close() }

func (p *fakePort) SetMode(mode *serial.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bauds = append(p.bauds, mode.BaudRate)
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = t
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets++
	return nil
}

func (p *fakePort) lastBaud() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.bauds) == 0 {
		return 0
	}
	return p.bauds[len(p.bauds)-1]
}

type logEntry struct {
	level string
	msg   string
	kv    []interface{}
}

type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *testLogger) add(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (l *testLogger) Debug(msg string, kv ...interface{}) { l.add("debug", msg, kv) }
func (l *testLogger) Info(msg string, kv ...interface{})  { l.add("info", msg, kv) }
func (l *testLogger) Error(msg string, kv ...interface{}) { l.add("error", msg, kv) }

// uartLines returns the text of every logged UART line.
func (l *testLogger) uartLines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lines []string
	for _, e := range l.entries {
		if e.msg == "uart" && len(e.kv) == 2 {
			lines = append(lines, e.kv[1].(string))
		}
	}
	return lines
}

func (l *testLogger) has(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return true
		}
	}
	return false
}

// newPipeLine returns a Line over a pipe and the device end of the pipe.
func newPipeLine(t *testing.T, opts ...Option) (*Line, *fakePort, net.Conn) {
	t.Helper()

	host, device := net.Pipe()
	port := &fakePort{conn: host}

	line, err := NewLine(port, append([]Option{WithPollInterval(testPoll)}, opts...)...)
	if err != nil {
		t.Fatalf("NewLine() error: %v", err)
	}

	t.Cleanup(func() {
		_ = line.Close()
		_ = device.Close()
	})

	return line, port, device
}

// newEmulatedLine returns a Line whose far end is an emulated bootloader.
func newEmulatedLine(t *testing.T, dev *emulator.Device, opts ...Option) (*Line, *fakePort) {
	t.Helper()

	line, port, device := newPipeLine(t, opts...)
	serveEmulator(t, dev, device)

	return line, port
}

// serveEmulator answers bootloader traffic on device until the test ends.
func serveEmulator(t *testing.T, dev *emulator.Device, device net.Conn) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = emulator.NewServer(dev).Serve(ctx, device)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})
}

var errPortFault = errors.New("port fault")

// faultyPort is a fakePort whose reads and mode changes can be made to fail.
type faultyPort struct {
	*fakePort

	failRead    atomic.Bool
	failSetMode atomic.Bool
}

func (p *faultyPort) Read(b []byte) (int, error) {
	if p.failRead.Load() {
		return 0, errPortFault
	}
	return p.fakePort.Read(b)
}

func (p *faultyPort) SetMode(mode *serial.Mode) error {
	if p.failSetMode.Load() {
		return errPortFault
	}
	return p.fakePort.SetMode(mode)
}

// newFaultyLine returns a Line over a faultyPort with an emulated bootloader
// on the far end.
func newFaultyLine(t *testing.T, opts ...Option) (*Line, *faultyPort) {
	t.Helper()

	host, device := net.Pipe()
	port := &faultyPort{fakePort: &fakePort{conn: host}}

	line, err := NewLine(port, append([]Option{WithPollInterval(testPoll)}, opts...)...)
	if err != nil {
		t.Fatalf("NewLine() error: %v", err)
	}

	t.Cleanup(func() {
		_ = line.Close()
		_ = device.Close()
	})
	serveEmulator(t, emulator.New(), device)

	return line, port
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
