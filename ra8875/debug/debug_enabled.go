//go:build debug

package debug

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Tracer writes timestamped event marks to a serial-attached logic
// capture channel, in the manner of driver/mjolnir's Open (same
// github.com/tarm/serial port-opening idiom, repurposed here as a
// trace sink rather than a command channel).
type Tracer struct {
	mu    sync.Mutex
	out   io.WriteCloser
	start time.Time
}

// Open connects to the named serial device (baud fixed at 115200,
// matching mjolnir's wire parameters) and begins a new trace epoch.
func Open(dev string) (*Tracer, error) {
	s, err := serial.OpenPort(&serial.Config{Name: dev, Baud: 115200})
	if err != nil {
		return nil, fmt.Errorf("debug: %w", err)
	}
	return &Tracer{out: s, start: time.Now()}, nil
}

// Mark writes one "<elapsed_us> <event>\n" line to the trace sink.
func (t *Tracer) Mark(event string) {
	if t == nil || t.out == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.start).Microseconds()
	fmt.Fprintf(t.out, "%d %s\n", elapsed, event)
}

func (t *Tracer) Close() error {
	if t.out == nil {
		return nil
	}
	return t.out.Close()
}
