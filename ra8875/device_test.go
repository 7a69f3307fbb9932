package ra8875

import (
	"errors"
	"testing"
	"time"

	"lcddma.dev/ra8875/dma"
)

// fakeBus is a minimal synchronous SPI model: it tracks the last
// register addressed by a command-write byte and serves reads/writes
// against an in-memory register file, in the manner of the teacher's
// driver/mjolnir Simulator.
type fakeBus struct {
	regs    map[byte]byte
	lastReg byte
	status  byte
	writes  int
}

func newFakeBus() *fakeBus {
	return &fakeBus{regs: make(map[byte]byte)}
}

func (b *fakeBus) Select()   {}
func (b *fakeBus) Deselect() {}

func (b *fakeBus) Transfer(tx, rx []byte) error {
	switch tx[0] {
	case cmdWrite:
		b.lastReg = tx[1]
	case dataWrite:
		b.regs[b.lastReg] = tx[1]
		b.writes++
	case dataRead:
		if rx != nil {
			rx[1] = b.regs[b.lastReg]
		}
		// Simulate the controller completing a triggered operation
		// instantly: the busy bit clears the read after it is observed.
		if b.lastReg == regDCR {
			b.regs[b.lastReg] &^= dcrLineSquTriBusy
		}
	case statusRead:
		if rx != nil {
			rx[1] = b.status
		}
	}
	return nil
}

func newTestDevice(bus *fakeBus, cfg Config) *Device {
	ch := dma.NewSimChannel(0x4000)
	status := dma.SimStatus{}
	d := New(bus, CSPin{Mask: 0x1, SetRegister: 0x10, ClearRegister: 0x14}, 0x4000, ch, status, cfg)
	ch.SetEngine(d.engine)
	return d
}

func TestInitBadID(t *testing.T) {
	// Scenario S6: register 0 returns 0x74 instead of the expected 0x75.
	bus := newFakeBus()
	bus.regs[0x00] = 0x74
	d := newTestDevice(bus, DefaultConfig())

	err := d.Init()
	if err == nil {
		t.Fatal("Init with a bad ID register returned nil, want an error")
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindBadID {
		t.Fatalf("Init error = %v, want KindBadID", err)
	}
	if bus.writes != 0 {
		t.Fatalf("Init performed %d register writes after a bad ID, want 0", bus.writes)
	}
}

func TestInitGoodID(t *testing.T) {
	bus := newFakeBus()
	bus.regs[0x00] = 0x75
	d := newTestDevice(bus, DefaultConfig())

	if err := d.Init(); err != nil {
		t.Fatalf("Init with a valid ID = %v, want nil", err)
	}
}

const stuckTestReg byte = 0x99 // not special-cased by fakeBus's auto-clear

func TestPollStatusTimesOut(t *testing.T) {
	bus := newFakeBus()
	bus.regs[stuckTestReg] = 0x80 // never clears
	cfg := DefaultConfig()
	cfg.DMATimeout = 5 * time.Millisecond
	d := newTestDevice(bus, cfg)

	err := d.pollStatus(stuckTestReg, 0x80)

	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindTimeout {
		t.Fatalf("pollStatus on a stuck bit = %v, want KindTimeout", err)
	}
}

func TestPollStatusReturnsOnceClear(t *testing.T) {
	bus := newFakeBus()
	bus.regs[stuckTestReg] = 0x00
	cfg := DefaultConfig()
	cfg.DMATimeout = 50 * time.Millisecond
	d := newTestDevice(bus, cfg)

	if err := d.pollStatus(stuckTestReg, 0x80); err != nil {
		t.Fatalf("pollStatus on an already-clear bit = %v, want nil", err)
	}
}

func TestFillRectLegacySequence(t *testing.T) {
	bus := newFakeBus()
	d := newTestDevice(bus, DefaultConfig())

	if err := d.FillRectLegacy(); err != nil {
		t.Fatalf("FillRectLegacy: %v", err)
	}
	// fakeBus clears the busy bit (bit 7, shared with the start bit) when
	// pollStatus reads it back, so only fill|square remain afterwards.
	got := bus.regs[regDCR]
	want := (dcrLineSquTriStart | dcrFill | dcrDrawSquare) &^ dcrLineSquTriBusy
	if got != want {
		t.Fatalf("DCR after FillRectLegacy = %#x, want %#x", got, want)
	}
}
