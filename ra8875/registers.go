package ra8875

// Wire framing selector bytes (spec.md §6). These mirror dma.CmdSelect /
// dma.DataSelect, plus the two read-side selectors the synchronous path
// needs that the DMA chain never emits.
const (
	cmdWrite   byte = 0x80
	dataWrite  byte = 0x00
	dataRead   byte = 0x40
	statusRead byte = 0xC0
)

// Register numbers used by the core (the 2D drawing-primitive registers
// are out of scope; only what init, cursor positioning, and pixel
// streaming need is named here).
const (
	regPWRR  byte = 0x01
	regMRWC  byte = 0x02
	regPCSR  byte = 0x04
	regSYSR  byte = 0x10
	regMWCR0 byte = 0x40
	regCURH0 byte = 0x46
	regCURH1 byte = 0x47
	regCURV0 byte = 0x48
	regCURV1 byte = 0x49
)

const (
	mwcr0DirMask byte = 0x0C
	mwcr0LRTD    byte = 0x00
	mwcr0RLTD    byte = 0x04
)

// idValue is the expected contents of register 0 (the identification
// register) on a genuine RA8875 (spec.md §7's init.bad-id, scenario S6).
const idValue byte = 0x75
