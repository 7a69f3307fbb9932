//go:build tinygo

package dma

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// channelRegisters mirrors one channel of a SAM3X-class DMA controller:
// a descriptor's SADDR/DADDR/CTRLA/CTRLB/DSCR fields double as the
// channel's current-transfer registers, so "programming the channel
// from a head descriptor" (spec.md §4.5) is simply writing the head's
// address into DSCR and letting the controller's own descriptor-fetch
// logic load the rest.
type channelRegisters struct {
	SADDR volatile.Register32
	DADDR volatile.Register32
	CTRLA volatile.Register32
	CTRLB volatile.Register32
	DSCR  volatile.Register32
}

// controllerRegisters mirrors the controller-wide enable and interrupt
// registers. EBCISR (status) clears-on-read; EBCIER/EBCIDR enable and
// disable the per-channel "chained buffer transfer complete" source.
type controllerRegisters struct {
	EN    volatile.Register32
	CHER  volatile.Register32
	CHDR  volatile.Register32
	CHSR  volatile.Register32
	EBCIER volatile.Register32
	EBCIDR volatile.Register32
	EBCISR volatile.Register32
}

const (
	chEnableBit  = 1 << 0
	chCBTCShift  = 8 // "chained buffer transfer complete" interrupt bit base
)

// HWChannel programs a real DMA controller channel: controller is the
// controller-wide register block, channel is this chain's channel
// register block, and num is the channel's bit index within
// CHER/CHDR/EBCIER/EBCIDR.
type HWChannel struct {
	controller *controllerRegisters
	channel    *channelRegisters
	num        uint32
	intr       interrupt.Interrupt
	engine     *Engine
}

// NewHWChannel wires a channel at the given register addresses to irqNum,
// the controller's completion interrupt vector. num is the channel's
// index. The interrupt is not unmasked until SetEngine + the first
// Program call.
func NewHWChannel(controllerAddr, channelAddr uintptr, num uint32, irqNum int) *HWChannel {
	c := &HWChannel{
		controller: (*controllerRegisters)(unsafe.Pointer(controllerAddr)),
		channel:    (*channelRegisters)(unsafe.Pointer(channelAddr)),
		num:        num,
	}
	c.intr = interrupt.New(irqNum, c.handleInterrupt)
	return c
}

// SetEngine wires the channel to the Engine whose HandleInterrupt the
// hardware ISR should invoke on completion.
func (c *HWChannel) SetEngine(e *Engine) {
	c.engine = e
}

func (c *HWChannel) handleInterrupt(interrupt.Interrupt) {
	// Reading EBCISR acknowledges (clears) the pending status.
	_ = c.controller.EBCISR.Get()
	if c.engine != nil {
		c.engine.HandleInterrupt()
	}
}

// Program implements Channel: disable the channel, write the head
// descriptor's address to DSCR, configure CTRLB for incrementing
// source / fixed destination (packRunControlB sets no handshake bits),
// arm the completion interrupt if requested, then enable the channel.
func (c *HWChannel) Program(head uintptr, interruptsEnabled bool) {
	c.Disable()

	c.controller.EBCIDR.Set(chCBTCMask(c.num))

	c.channel.DSCR.Set(uint32(head))
	c.channel.CTRLB.Set(packRunControlB())

	if interruptsEnabled {
		c.controller.EBCIER.Set(chCBTCMask(c.num))
		c.intr.Enable()
	}

	c.controller.CHER.Set(chEnableMask(c.num))
}

// Disable stops the channel outright, for exclusive synchronous use
// (spec.md §4.6).
func (c *HWChannel) Disable() {
	c.controller.CHDR.Set(chEnableMask(c.num))
}

func chEnableMask(num uint32) uint32 { return chEnableBit << num }
func chCBTCMask(num uint32) uint32   { return 1 << (chCBTCShift + num) }

// packRunControlB encodes the CTRLB bits used while a chain is actively
// streaming to a peripheral: incrementing source, fixed destination.
// Per-descriptor CTRLB bits (set when each Descriptor was built) govern
// everything else; this only needs to hold while the controller walks
// DSCR-linked descriptors, since each descriptor supplies its own
// CTRLA/CTRLB on load.
func packRunControlB() uint32 {
	return uint32(IncrIncrementing)<<0 | uint32(IncrFixed)<<2
}

// registerAddress returns the live memory address of reg, for
// populating a PinTarget or the txRegister argument to Builder from a
// concrete peripheral's memory map.
func registerAddress(reg *volatile.Register32) uintptr {
	return uintptr(unsafe.Pointer(reg))
}
