//go:build !debug

// Package debug provides optional timing instrumentation for the
// descriptor-build and batch-planning hot paths. Without the debug
// build tag every method here compiles to nothing: the Tracer carries
// no state and Mark is inlined away, the Go equivalent of the
// original's PRINTOUT_LIMIT-gated function_timings macros.
package debug

// Tracer marks named events for later inspection. The zero value is
// ready to use and does nothing.
type Tracer struct{}

// Open is a no-op in builds without the debug tag; dev is ignored.
func Open(dev string) (*Tracer, error) {
	return &Tracer{}, nil
}

// Mark does nothing in builds without the debug tag.
func (t *Tracer) Mark(event string) {}

// Close does nothing in builds without the debug tag.
func (t *Tracer) Close() error { return nil }
