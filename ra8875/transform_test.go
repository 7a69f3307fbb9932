package ra8875

import "testing"

func TestTransformRotation0(t *testing.T) {
	d := &Device{cfg: Config{Width: 800, Height: 480, VOffset: 0, Rotation: Rotation0}}
	px, py := d.transform(10, 20)
	if px != 10 || py != 20 {
		t.Fatalf("transform(10,20) = (%d,%d), want (10,20)", px, py)
	}
}

func TestTransformRotation0WithVOffset(t *testing.T) {
	// The 480x80 panel variant (spec.md §6): v_offset=192 on a 272-row
	// controller, rotation 0.
	d := &Device{cfg: Config{Width: 480, Height: 272, VOffset: 192, Rotation: Rotation0}}
	px, py := d.transform(0, 0)
	if px != 0 || py != 192 {
		t.Fatalf("transform(0,0) = (%d,%d), want (0,192)", px, py)
	}
}

func TestTransformRotation2(t *testing.T) {
	d := &Device{cfg: Config{Width: 800, Height: 480, VOffset: 0, Rotation: Rotation2}}
	px, py := d.transform(10, 20)
	if px != 789 || py != 459 {
		t.Fatalf("transform(10,20) rotation 2 = (%d,%d), want (789,459)", px, py)
	}
}

func TestWriteDirection(t *testing.T) {
	d0 := &Device{cfg: Config{Rotation: Rotation0}}
	if d0.writeDirection() != mwcr0LRTD {
		t.Fatal("rotation 0 must select left-to-right/top-down")
	}
	d2 := &Device{cfg: Config{Rotation: Rotation2}}
	if d2.writeDirection() != mwcr0RLTD {
		t.Fatal("rotation 2 must select right-to-left/top-down")
	}
}
