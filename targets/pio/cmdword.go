package pio

// pulseCommand packs one pulse-generator command word. The state machine
// shifts the OSR right, so the fields sit in consumption order from the low
// end: count in bits 0-15, delay cycles in 16-23, direction in bit 24.
func pulseCommand(count uint16, delayCycles uint8, south bool) uint32 {
	cmd := uint32(count) | uint32(delayCycles)<<16
	if south {
		cmd |= 1 << 24
	}
	return cmd
}
