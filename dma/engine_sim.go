//go:build !tinygo

package dma

import "unsafe"

// SimChannel is a software model of a DMA channel: Program walks the
// finalized chain immediately (there is no real asynchronous hardware
// to wait for) and, if wired to an Engine via SetEngine, invokes
// HandleInterrupt as soon as the walk completes — modeling the
// completion interrupt firing the instant the chain retires.
//
// It also records every byte the chain would have shifted onto SPI
// (every descriptor whose destination is txRegister) into Trace, so
// tests can assert on the exact wire framing a batch produced, in the
// manner of driver/mjolnir's Simulator recording the commands it
// receives.
type SimChannel struct {
	txRegister uintptr
	engine     *Engine

	Trace        []byte
	ProgramCount int
	disabled     bool
}

// NewSimChannel constructs a channel simulator targeting txRegister —
// the same address value passed to the Builder that built the chains
// this channel will run.
func NewSimChannel(txRegister uintptr) *SimChannel {
	return &SimChannel{txRegister: txRegister}
}

// SetEngine wires the channel to the Engine whose HandleInterrupt should
// run once a chain retires. Engine and Channel are constructed
// separately (the Engine needs a Channel to exist first), so this
// resolves the cycle.
func (c *SimChannel) SetEngine(e *Engine) {
	c.engine = e
}

// Program walks the chain starting at head, appending any bytes sent to
// txRegister to Trace, then (if wired) triggers the completion
// interrupt synchronously.
func (c *SimChannel) Program(head uintptr, interruptsEnabled bool) {
	c.ProgramCount++
	c.disabled = false
	c.walk(head)
	if interruptsEnabled && c.engine != nil {
		c.engine.HandleInterrupt()
	}
}

// Disable marks the channel idle. The simulator has no in-flight state
// to tear down, since Program already ran the chain to completion.
func (c *SimChannel) Disable() {
	c.disabled = true
}

func (c *SimChannel) walk(head uintptr) {
	addr := head
	for addr != 0 {
		d := (*Descriptor)(unsafe.Pointer(addr))
		if d.DestinationAddress == c.txRegister {
			n := int(d.ControlA.TransferCount)
			if d.ControlB.SrcIncr == IncrIncrementing {
				buf := unsafe.Slice((*byte)(unsafe.Pointer(d.SourceAddress)), n)
				c.Trace = append(c.Trace, buf...)
			} else if d.SourceAddress != 0 {
				b := *(*byte)(unsafe.Pointer(d.SourceAddress))
				for i := 0; i < n; i++ {
					c.Trace = append(c.Trace, b)
				}
			}
		}
		addr = d.Next
	}
}

// SimStatus is an SPIStatus that reports an idle, error-free peripheral:
// transmit always empty, never overrun, nothing to drain. It is enough
// to exercise the HandleInterrupt drain loop without it ever spinning.
type SimStatus struct{}

func (SimStatus) TransmitEmpty() bool { return true }
func (SimStatus) Overrun() bool       { return false }
func (SimStatus) ReceiveReady() bool  { return false }
func (SimStatus) ReadDiscard() byte   { return 0 }
