package dma

// Channel is the hardware (or simulated) DMA channel a chain runs on.
// Program arms it to walk the chain starting at head; interruptsEnabled
// selects whether the channel's completion interrupt source is armed
// for this run. Disable stops the channel outright, used when a
// synchronous caller needs exclusive use of the channel (spec.md §4.6).
type Channel interface {
	Program(head uintptr, interruptsEnabled bool)
	Disable()
}

// SPIStatus exposes the SPI peripheral status bits the completion
// interrupt handler must drain before it is safe to hand the channel
// back (spec.md §4.5, steps 2-3): the controller reports DMA done when
// its transmit FIFO accepts the last byte, not when that byte leaves
// the shifter, so the handler must spin for "transmit empty" and then
// drain any stale receive data before the next operation begins.
type SPIStatus interface {
	TransmitEmpty() bool
	Overrun() bool
	ReceiveReady() bool
	ReadDiscard() byte
}

// Completion is the per-operation vtable an Engine drives: whether the
// operation has more work, how to refill the ring for the next batch,
// and what to do once every batch has been sent. It replaces the
// original's three raw function pointers with a small interface — one
// implementation per operation kind, selected by the caller, rather
// than function pointers installed at runtime (see spec.md Design
// Notes §9).
type Completion interface {
	// IsComplete reports whether the operation has no more batches to
	// send.
	IsComplete() bool
	// FetchNextBatch refills ring with the next batch and returns the
	// finalized head descriptor's address.
	FetchNextBatch(ring *Ring) uintptr
	// OnComplete runs once IsComplete has returned true; it typically
	// deactivates the SPI peripheral and invokes the caller's
	// completion callback.
	OnComplete()
}

// Engine programs a DMA Channel and implements the completion
// interrupt's state machine (spec.md §4.5). It is hardware-agnostic:
// Channel and SPIStatus are satisfied by either a real register backend
// (engine_tinygo.go) or a host software model (engine_sim.go).
//
// An operation's lifecycle moves idle -> armed -> (refilling -> armed)*
// -> completing -> idle. Only HandleInterrupt may mutate ring or the
// Completion's state while armed; the foreground must not touch either
// between Start and the operation's OnComplete.
type Engine struct {
	Channel Channel
	Status  SPIStatus

	ring *Ring
	op   Completion
}

// NewEngine constructs an Engine driving ch, using status to implement
// the interrupt handler's drain step.
func NewEngine(ch Channel, status SPIStatus) *Engine {
	return &Engine{Channel: ch, Status: status}
}

// Start arms the engine with the first batch of a new operation: ring
// must already be finalized (head is its return value from
// Ring.Finalize), and op is the vtable for this operation kind. The
// foreground entry point that calls Start must not block and must not
// touch ring or op again until op's OnComplete runs.
func (e *Engine) Start(ring *Ring, op Completion, head uintptr) {
	e.ring = ring
	e.op = op
	e.Channel.Program(head, true)
}

// HandleInterrupt implements the completion interrupt's body (spec.md
// §4.5): drain the SPI peripheral, then either refill and re-arm, or
// finish. It must run to completion before any other interrupt from
// this channel is serviced — it is not re-entrant, matching the
// original bare-metal ISR contract.
func (e *Engine) HandleInterrupt() {
	for !e.Status.TransmitEmpty() {
	}
	for e.Status.Overrun() || e.Status.ReceiveReady() {
		e.Status.ReadDiscard()
	}

	if e.op.IsComplete() {
		e.op.OnComplete()
		return
	}

	head := e.op.FetchNextBatch(e.ring)
	e.Channel.Program(head, true)
}
