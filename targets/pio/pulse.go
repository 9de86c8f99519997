//go:build rp2040

package pio

// PIO step pulse generation. The step generator hands us signed step deltas;
// the PIO state machine turns them into hardware-timed pulses so the Go loop
// never has to bit-bang the step pin.
//
// Command word format (the OSR shifts right, so fields are consumed from the
// low end in program order):
//
//	Bits 0-15:  pulse count
//	Bits 16-23: delay cycles (inter-pulse spacing)
//	Bit 24:     direction (0=north, 1=south)

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildPulseProgram assembles the pulse generator:
//  1. Pull a 32-bit command from the FIFO
//  2. Extract pulse count into X, delay cycles into Y
//  3. Drive the direction pin from the next shifted-out bit (bit 24)
//  4. Generate X pulses with Y cycle delays between them
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestX, 16).Encode(),   // 1: out x, 16 (pulse count)
		asm.Out(rp2pio.OutDestY, 8).Encode(),    // 2: out y, 8 (delay cycles)
		asm.Out(rp2pio.OutDestPins, 1).Encode(), // 3: out pins, 1 (direction)
		// pulse loop
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(), // 4: set pins, 1 [7]
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 5: set pins, 0
		asm.Jmp(6, rp2pio.JmpYNZeroDec).Encode(),         // 6: jmp y--, 6
		asm.Jmp(4, rp2pio.JmpXNZeroDec).Encode(),         // 7: jmp x--, 4
	}
}

// Load at offset 0 so the jump addresses in the program stay correct.
const pulseProgramOrigin = 0

// Inter-pulse spacing handed to the state machine with every command.
const pulseDelayCycles = 1

// Pins drives step/dir over a PIO state machine. It satisfies the step
// generator's pin driver interface.
type Pins struct {
	pio     *rp2pio.PIO
	sm      rp2pio.StateMachine
	stepPin machine.Pin
	dirPin  machine.Pin
}

// NewPins claims a state machine on the given PIO block (0 or 1).
func NewPins(pioNum, smNum uint8) *Pins {
	hw := rp2pio.PIO0
	if pioNum != 0 {
		hw = rp2pio.PIO1
	}
	return &Pins{pio: hw, sm: hw.StateMachine(smNum)}
}

// Init loads the pulse program and configures the pins. Must be called
// before the first Step.
func (p *Pins) Init(stepPin, dirPin machine.Pin) error {
	p.stepPin = stepPin
	p.dirPin = dirPin

	p.sm.TryClaim()

	program := buildPulseProgram()
	offset, err := p.pio.AddProgram(program, pulseProgramOrigin)
	if err != nil {
		return err
	}

	p.stepPin.Configure(machine.PinConfig{Mode: p.pio.PinMode()})
	p.dirPin.Configure(machine.PinConfig{Mode: p.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(p.stepPin, 1)
	cfg.SetOutPins(p.dirPin, 1)
	// Shift right, autopull disabled (the program pulls explicitly).
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1000, 0)

	p.sm.Init(offset, cfg)

	// Pin directions must be set after Init.
	p.sm.SetPindirsConsecutive(p.stepPin, 1, true)
	p.sm.SetPindirsConsecutive(p.dirPin, 1, true)
	p.sm.SetPinsConsecutive(p.stepPin, 1, false)
	p.sm.SetPinsConsecutive(p.dirPin, 1, false)

	p.sm.SetEnabled(true)
	return nil
}

// Step queues |delta| pulses with the direction taken from the sign.
// Deltas larger than a single command word are chunked.
func (p *Pins) Step(delta int64) error {
	if delta == 0 {
		return nil
	}
	south := delta < 0
	n := delta
	if south {
		n = -n
	}
	for n > 0 {
		chunk := n
		if chunk > 0xFFFF {
			chunk = 0xFFFF
		}
		p.queue(uint16(chunk), pulseDelayCycles, south)
		n -= chunk
	}
	return nil
}

func (p *Pins) queue(count uint16, delayCycles uint8, south bool) {
	cmd := pulseCommand(count, delayCycles, south)
	for p.sm.IsTxFIFOFull() {
		// Brief busy wait for FIFO space.
	}
	p.sm.TxPut(cmd)
}

// Halt drops any queued pulses and restarts the state machine.
func (p *Pins) Halt() {
	p.sm.SetEnabled(false)
	p.sm.ClearFIFOs()
	p.sm.Restart()
	p.sm.SetEnabled(true)
}
