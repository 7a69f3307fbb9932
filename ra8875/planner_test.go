package ra8875

import (
	"testing"
	"unsafe"

	"lcddma.dev/ra8875/dma"
)

// countingChannel wraps a dma.SimChannel to record how many descriptors
// each Program call walks (the chain length actually sent), so tests can
// check the chain-length invariant (spec.md §8 property 1) without
// reaching into dma package internals beyond its exported Descriptor.
type countingChannel struct {
	inner            *dma.SimChannel
	arms             int
	totalDescriptors int
	headsSeen        []uintptr
}

func newCountingChannel(tx uintptr) *countingChannel {
	return &countingChannel{inner: dma.NewSimChannel(tx)}
}

func (c *countingChannel) Program(head uintptr, interruptsEnabled bool) {
	c.arms++
	c.headsSeen = append(c.headsSeen, head)
	c.totalDescriptors += countChain(head)
	c.inner.Program(head, interruptsEnabled)
}

func (c *countingChannel) Disable() { c.inner.Disable() }

func countChain(head uintptr) int {
	n := 0
	addr := head
	for addr != 0 {
		d := (*dma.Descriptor)(unsafe.Pointer(addr))
		n++
		addr = d.Next
	}
	return n
}

func newCountingTestDevice(bus *fakeBus, cfg Config) (*Device, *countingChannel) {
	ch := newCountingChannel(0x4000)
	status := dma.SimStatus{}
	d := New(bus, CSPin{Mask: 0x1, SetRegister: 0x10, ClearRegister: 0x14}, 0x4000, ch, status, cfg)
	ch.inner.SetEngine(d.engine)
	return d, ch
}

func panelConfig(width, height, vOffset int, rot Rotation) Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.VOffset, cfg.Rotation = width, height, vOffset, rot
	return cfg
}

func rgb565Buffer(n int, fill byte) []byte {
	buf := make([]byte, n*2)
	for i := range buf {
		buf[i] = fill
	}
	return buf
}

// S1: 480x80 panel, rotation 0, v_offset 192.
func TestScenarioS1(t *testing.T) {
	bus := newFakeBus()
	cfg := panelConfig(480, 272, 192, Rotation0)
	d, ch := newCountingTestDevice(bus, cfg)

	done := false
	pixels := rgb565Buffer(480, 0xAA)
	if err := d.DrawPixelArea(pixels, 0, 0, 480, 480, func() { done = true }); err != nil {
		t.Fatalf("DrawPixelArea: %v", err)
	}
	if !done {
		t.Fatal("completion callback did not fire")
	}
	if ch.arms != 1 {
		t.Fatalf("arms = %d, want 1", ch.arms)
	}
	if ch.totalDescriptors != cfg.FramesPerLine {
		t.Fatalf("total descriptors = %d, want %d", ch.totalDescriptors, cfg.FramesPerLine)
	}
}

// S2: 800x480 panel, rotation 0, width=100, num=800 (8 rows) at (10,20).
func TestScenarioS2(t *testing.T) {
	bus := newFakeBus()
	cfg := panelConfig(800, 480, 0, Rotation0)
	d, ch := newCountingTestDevice(bus, cfg)

	pixels := rgb565Buffer(800, 0x11)
	if err := d.DrawPixelArea(pixels, 10, 20, 100, 800, nil); err != nil {
		t.Fatalf("DrawPixelArea: %v", err)
	}
	if ch.arms != 1 {
		t.Fatalf("arms = %d, want 1", ch.arms)
	}
	want := 8 * cfg.FramesPerLine
	if ch.totalDescriptors != want {
		t.Fatalf("total descriptors = %d, want %d", ch.totalDescriptors, want)
	}

	// 4th row (0-indexed row 3) encodes physical (10, 23).
	trace := ch.inner.Trace
	stride := 4 + cfg.DummyTransfers
	rowLen := 4*stride + 3 + 100*2 + cfg.DummyTransfers
	row3 := trace[3*rowLen:]
	if row3[3] != 10 || row3[stride+3] != 0 || row3[2*stride+3] != 23 || row3[3*stride+3] != 0 {
		t.Fatalf("row 3 coord bytes = %v, want low=10 high=0 low=23 high=0", []byte{row3[3], row3[stride+3], row3[2*stride+3], row3[3*stride+3]})
	}
}

// S3: 800x480 panel, rotation 2. Same buffer/top-left as S2.
func TestScenarioS3(t *testing.T) {
	bus := newFakeBus()
	cfg := panelConfig(800, 480, 0, Rotation2)
	d, ch := newCountingTestDevice(bus, cfg)

	pixels := rgb565Buffer(800, 0x11)
	if err := d.DrawPixelArea(pixels, 10, 20, 100, 800, nil); err != nil {
		t.Fatalf("DrawPixelArea: %v", err)
	}
	if bus.regs[regMWCR0]&mwcr0DirMask != mwcr0RLTD {
		t.Fatalf("MWCR0 direction bits = %#x, want RLTD", bus.regs[regMWCR0]&mwcr0DirMask)
	}

	// Row 0's coord bytes encode physical (800-1-10, 480-1-20) = (789, 459):
	// low(789)=0x15, high(789)=0x03, low(459)=0xCB, high(459)=0x01.
	trace := ch.inner.Trace
	stride := 4 + cfg.DummyTransfers
	gotXLow, gotXHigh := trace[3], trace[stride+3]
	gotYLow, gotYHigh := trace[2*stride+3], trace[3*stride+3]
	if gotXLow != 0x15 || gotXHigh != 0x03 || gotYLow != 0xCB || gotYHigh != 0x01 {
		t.Fatalf("row 0 coord bytes = (%#x,%#x,%#x,%#x), want (0x15,0x03,0xcb,0x01)",
			gotXLow, gotXHigh, gotYLow, gotYHigh)
	}
}

// S4: 480x272, rotation 0, width=50, num=450 (9 rows), LinesPerBatch=8:
// first batch emits 8 rows and arms DMA; second batch (triggered
// synchronously by the simulator) emits the 9th row; callback fires once.
func TestScenarioS4(t *testing.T) {
	bus := newFakeBus()
	cfg := panelConfig(480, 272, 0, Rotation0)
	d, ch := newCountingTestDevice(bus, cfg)

	calls := 0
	pixels := rgb565Buffer(450, 0x22)
	if err := d.DrawPixelArea(pixels, 0, 0, 50, 450, func() { calls++ }); err != nil {
		t.Fatalf("DrawPixelArea: %v", err)
	}
	if calls != 1 {
		t.Fatalf("completion callback fired %d times, want 1", calls)
	}
	if ch.arms != 2 {
		t.Fatalf("arms = %d, want 2", ch.arms)
	}
	want := 8*cfg.FramesPerLine + 1*cfg.FramesPerLine
	if ch.totalDescriptors != want {
		t.Fatalf("total descriptors across both arms = %d, want %d", ch.totalDescriptors, want)
	}
}

// S5: two consecutive draw_pixel_area calls, identical geometry,
// different pixel buffers, reuse enabled: the second chain's head
// address must equal the first's (the ring is reused in place).
func TestScenarioS5(t *testing.T) {
	bus := newFakeBus()
	cfg := panelConfig(480, 272, 0, Rotation0)
	cfg.ReuseFramesIfAvailable = true
	d, ch := newCountingTestDevice(bus, cfg)

	p1 := rgb565Buffer(50, 0x11)
	if err := d.DrawPixelArea(p1, 0, 0, 50, 50, nil); err != nil {
		t.Fatalf("DrawPixelArea 1: %v", err)
	}
	head1 := ch.headsSeen[len(ch.headsSeen)-1]

	p2 := rgb565Buffer(50, 0x22)
	if err := d.DrawPixelArea(p2, 0, 0, 50, 50, nil); err != nil {
		t.Fatalf("DrawPixelArea 2: %v", err)
	}
	head2 := ch.headsSeen[len(ch.headsSeen)-1]

	if head1 != head2 {
		t.Fatalf("hot-patch reuse changed the chain's head address: %#x != %#x", head1, head2)
	}
}
