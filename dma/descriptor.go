// Package dma implements the descriptor-chain scheduler used to stream
// bulk data to a memory-mapped peripheral register over a hardware DMA
// engine: a fixed-capacity ring of linked transfer descriptors (LLIs), a
// frame builder that emits common descriptor sequences, and an engine
// adapter that drives the completion interrupt state machine.
//
// Only engine_tinygo.go, the bare-metal backend built under tinygo,
// touches real hardware registers; engine_sim.go is the host-side
// software model used by tests.
package dma

// Width is a per-endpoint transfer width.
type Width int

const (
	WidthByte Width = iota
	WidthWord
)

// Increment selects whether a descriptor's address advances between
// transfers (Incrementing) or stays put (Fixed, for peripheral and
// pin-mask addresses).
type Increment int

const (
	IncrFixed Increment = iota
	IncrIncrementing
)

// Flow distinguishes descriptors paced by a peripheral handshake signal
// (memory-to-peripheral, e.g. an SPI transmit FIFO) from ones that run
// at full memory bandwidth (memory-to-memory, e.g. a GPIO register
// poke).
type Flow int

const (
	FlowMemToPeripheral Flow = iota
	FlowMemToMem
)

// ControlA carries the byte-count/transfer-count and per-endpoint widths
// of a descriptor, plus the hardware "done" flag the engine sets on
// completion.
type ControlA struct {
	TransferCount uint32
	SrcWidth      Width
	DstWidth      Width
	Done          bool
}

// ControlB carries the flow-control mode and the source/destination
// increment modes of a descriptor.
type ControlB struct {
	Flow    Flow
	SrcIncr Increment
	DstIncr Increment
}

// Descriptor is one linked transfer record (LLI). Descriptors are stored
// in a fixed-size contiguous array (see Ring); Next is stale or zero
// until Ring.Finalize writes the chain links in one pass.
type Descriptor struct {
	SourceAddress      uintptr
	DestinationAddress uintptr
	ControlA           ControlA
	ControlB           ControlB
	Next               uintptr
}
