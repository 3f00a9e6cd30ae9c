package bridge

import (
	"errors"
	"testing"

	"github.com/moffa90/go-jnflash/transport"
)

func TestNewLine(t *testing.T) {
	line, port, _ := newPipeLine(t)

	if line.Mode() != ModeLogging {
		t.Errorf("mode = %s, want logging", line.Mode())
	}
	if port.lastBaud() != transport.LoggingBaud {
		t.Errorf("baud = %d, want %d", port.lastBaud(), transport.LoggingBaud)
	}
	if port.timeout != testPoll {
		t.Errorf("read timeout = %v, want %v", port.timeout, testPoll)
	}
}

func TestNewLineNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewLine(nil) did not panic")
		}
	}()
	_, _ = NewLine(nil)
}

func TestLineAcquireRelease(t *testing.T) {
	line, port, _ := newPipeLine(t)

	lease, err := line.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	if line.Mode() != ModeProgramming {
		t.Errorf("mode = %s, want programming", line.Mode())
	}
	if port.lastBaud() != transport.BootloaderBaud {
		t.Errorf("baud = %d, want %d", port.lastBaud(), transport.BootloaderBaud)
	}
	if port.resets != 1 {
		t.Errorf("input buffer resets = %d, want 1", port.resets)
	}

	if _, err := line.Acquire(); !errors.Is(err, ErrLineBusy) {
		t.Errorf("second Acquire() error = %v, want ErrLineBusy", err)
	}

	lease.Release()
	lease.Release()

	if line.Mode() != ModeLogging {
		t.Errorf("mode after release = %s, want logging", line.Mode())
	}
	if port.lastBaud() != transport.LoggingBaud {
		t.Errorf("baud after release = %d, want %d", port.lastBaud(), transport.LoggingBaud)
	}

	again, err := line.Acquire()
	if err != nil {
		t.Fatalf("Acquire() after release error: %v", err)
	}
	again.Release()
}

func TestLineTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     LineMode
		to       LineMode
		wantErr  bool
		wantBusy bool
	}{
		{name: "logging to programming", from: ModeLogging, to: ModeProgramming},
		{name: "same mode", from: ModeLogging, to: ModeLogging, wantErr: true},
		{name: "wrong source mode", from: ModeProgramming, to: ModeLogging, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, _, _ := newPipeLine(t)

			err := line.Transition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrLineBusy) != tt.wantBusy {
				t.Errorf("Transition() error = %v, wantBusy %v", err, tt.wantBusy)
			}
		})
	}
}

func TestLineModeString(t *testing.T) {
	if ModeLogging.String() != "logging" || ModeProgramming.String() != "programming" {
		t.Error("unexpected mode names")
	}
	if LineMode(7).String() != "LineMode(7)" {
		t.Errorf("String() = %q", LineMode(7).String())
	}
}

func TestLineAcquireRollsBackOnConfigureFailure(t *testing.T) {
	line, port := newFaultyLine(t)
	port.failSetMode.Store(true)

	if _, err := line.Acquire(); !errors.Is(err, errPortFault) {
		t.Fatalf("Acquire() error = %v, want port fault", err)
	}

	if line.Mode() != ModeLogging {
		t.Errorf("mode after failed acquire = %s, want logging", line.Mode())
	}
	if !line.ioMu.TryLock() {
		t.Fatal("failed acquire left the I/O mutex held")
	}
	line.ioMu.Unlock()

	port.failSetMode.Store(false)
	lease, err := line.Acquire()
	if err != nil {
		t.Fatalf("Acquire() after recovery error: %v", err)
	}
	lease.Release()
}
