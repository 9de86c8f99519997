// Package tmc configures a TMC2209 stepper driver over its single-wire UART
// register interface. It is a configuration sink only: motion is always
// commanded through the step/dir pins, never through VACTUAL.
package tmc

import (
	"fmt"
	"io"
	"math"
)

const (
	datagramSync = 0x05
	writeFlag    = 0x80
	replyAddr    = 0xFF
)

// Driver talks to one TMC2209 at a UART slave address. The transport is
// assumed full-duplex (a USB serial adapter on the PDN_UART pin with the
// local echo suppressed by the wiring).
type Driver struct {
	rw     io.ReadWriter
	addr   uint8
	rsense float64
}

// NewDriver creates a driver handle. rsense is the module's sense resistor
// in ohms (0.11 on most SilentStepStick-style boards).
func NewDriver(rw io.ReadWriter, addr uint8, rsense float64) *Driver {
	return &Driver{rw: rw, addr: addr, rsense: rsense}
}

// crc8 is the TMC UART checksum: poly 0x07, each data byte fed LSB first
// (the UART transmits LSB first and the driver checksums the bit stream).
func crc8(data []byte) byte {
	crc := byte(0)
	for _, b := range data {
		for i := 0; i < 8; i++ {
			if (crc>>7)^(b&0x01) != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc = crc << 1
			}
			b = b >> 1
		}
	}
	return crc
}

func readRequest(addr, reg uint8) []byte {
	msg := []byte{datagramSync, addr, reg}
	return append(msg, crc8(msg))
}

func writeRequest(addr, reg uint8, val uint32) []byte {
	msg := []byte{
		datagramSync,
		addr,
		reg | writeFlag,
		byte(val >> 24),
		byte(val >> 16),
		byte(val >> 8),
		byte(val),
	}
	return append(msg, crc8(msg))
}

// WriteRegister writes a 32-bit register value. TMC write datagrams carry no
// acknowledgement; callers can verify via IFCNT.
func (d *Driver) WriteRegister(reg uint8, val uint32) error {
	if _, err := d.rw.Write(writeRequest(d.addr, reg, val)); err != nil {
		return fmt.Errorf("tmc: write reg 0x%02X: %w", reg, err)
	}
	return nil
}

// ReadRegister reads a 32-bit register value.
func (d *Driver) ReadRegister(reg uint8) (uint32, error) {
	if _, err := d.rw.Write(readRequest(d.addr, reg)); err != nil {
		return 0, fmt.Errorf("tmc: read reg 0x%02X: %w", reg, err)
	}
	reply := make([]byte, 8)
	if _, err := io.ReadFull(d.rw, reply); err != nil {
		return 0, fmt.Errorf("tmc: read reg 0x%02X reply: %w", reg, err)
	}
	if reply[0] != datagramSync || reply[1] != replyAddr || reply[2] != reg {
		return 0, fmt.Errorf("tmc: bad reply header % X for reg 0x%02X", reply[:3], reg)
	}
	if crc8(reply[:7]) != reply[7] {
		return 0, fmt.Errorf("tmc: reply crc mismatch for reg 0x%02X", reg)
	}
	val := uint32(reply[3])<<24 | uint32(reply[4])<<16 | uint32(reply[5])<<8 | uint32(reply[6])
	return val, nil
}

// Setup switches the driver into UART-controlled mode: PDN pin disabled as
// power-down input, microstep selection from the MRES register, latched
// status flags cleared.
func (d *Driver) Setup() error {
	gconf, err := d.ReadRegister(RegGCONF)
	if err != nil {
		return err
	}
	gconf |= gconfPDNDisable | gconfMStepRegSelect
	if err := d.WriteRegister(RegGCONF, gconf); err != nil {
		return err
	}
	return d.WriteRegister(RegGSTAT, 0x07)
}

// SetMicrosteps programs the MRES field. n must be a power of two in 1..256.
func (d *Driver) SetMicrosteps(n int) error {
	mres := -1
	for code, steps := 0, 256; steps >= 1; code, steps = code+1, steps/2 {
		if n == steps {
			mres = code
			break
		}
	}
	if mres < 0 {
		return fmt.Errorf("tmc: invalid microstep count %d", n)
	}
	chopconf, err := d.ReadRegister(RegCHOPCONF)
	if err != nil {
		return err
	}
	chopconf &^= uint32(chopconfMResMask)
	chopconf |= uint32(mres) << chopconfMResShift
	return d.WriteRegister(RegCHOPCONF, chopconf)
}

// SetRMSCurrent programs the run current in milliamps, with hold current at
// half the run current. The scaling follows the TMC2209 datasheet: the low
// sense voltage range is selected when it gives better resolution.
func (d *Driver) SetRMSCurrent(mA int) error {
	amps := float64(mA) / 1000.0
	cs := 32.0*math.Sqrt2*amps*(d.rsense+0.02)/0.325 - 1
	vsense := false
	if cs < 16 {
		vsense = true
		cs = 32.0*math.Sqrt2*amps*(d.rsense+0.02)/0.180 - 1
	}
	irun := int(math.Round(cs))
	if irun < 0 {
		irun = 0
	}
	if irun > 31 {
		irun = 31
	}
	ihold := irun / 2

	chopconf, err := d.ReadRegister(RegCHOPCONF)
	if err != nil {
		return err
	}
	if vsense {
		chopconf |= chopconfVSense
	} else {
		chopconf &^= uint32(chopconfVSense)
	}
	if err := d.WriteRegister(RegCHOPCONF, chopconf); err != nil {
		return err
	}

	val := uint32(ihold)<<iholdShift | uint32(irun)<<irunShift | uint32(8)<<iholdDelayShift
	return d.WriteRegister(RegIHOLDIRUN, val)
}

// SetStealthChop selects stealthChop (quiet) or spreadCycle (torque) via the
// GCONF en_spreadcycle bit.
func (d *Driver) SetStealthChop(on bool) error {
	gconf, err := d.ReadRegister(RegGCONF)
	if err != nil {
		return err
	}
	if on {
		gconf &^= uint32(gconfEnSpreadCycle)
	} else {
		gconf |= gconfEnSpreadCycle
	}
	return d.WriteRegister(RegGCONF, gconf)
}

// SetStallGuardThreshold programs SGTHRS.
func (d *Driver) SetStallGuardThreshold(v uint8) error {
	return d.WriteRegister(RegSGTHRS, uint32(v))
}

// RegisterValue is one entry of a register dump.
type RegisterValue struct {
	Name  string
	Reg   uint8
	Value uint32
}

// Dump reads every documented readable register.
func (d *Driver) Dump() ([]RegisterValue, error) {
	out := make([]RegisterValue, 0, len(readableRegisters))
	for _, r := range readableRegisters {
		val, err := d.ReadRegister(r.Reg)
		if err != nil {
			return out, err
		}
		out = append(out, RegisterValue{Name: r.Name, Reg: r.Reg, Value: val})
	}
	return out, nil
}
