package ra8875

// transform applies the logical-to-physical coordinate map (spec.md §6)
// for the device's configured rotation and v_offset. Only Rotation0 and
// Rotation2 are recognized; any other value is a programmer error and
// transform treats it as Rotation0.
func (d *Device) transform(x, y int) (px, py int) {
	switch d.cfg.Rotation {
	case Rotation2:
		return d.cfg.Width - 1 - x, d.cfg.Height - 1 - y + d.cfg.VOffset
	default:
		return x, y + d.cfg.VOffset
	}
}

// writeDirection reports the MWCR0 direction bits for the device's
// configured rotation: left-to-right/top-down for rotation 0,
// right-to-left/top-down for rotation 2 (spec.md §4.4 step 2).
func (d *Device) writeDirection() byte {
	if d.cfg.Rotation == Rotation2 {
		return mwcr0RLTD
	}
	return mwcr0LRTD
}
