//go:build tinygo

// Package easydrive adapts a four-wire stepper driven through
// tinygo.org/x/drivers/easystepper to the step generator's pin driver
// interface. It suits boards without PIO hardware, where the unipolar
// coil sequencing replaces a step/dir driver.
package easydrive

import (
	"tinygo.org/x/drivers/easystepper"
)

// Pins wraps an easystepper device. Move is blocking, so the pulse rate is
// bounded by the device's RPM setting rather than the motion profile; keep
// the configured ceiling low enough that each tick's delta stays small.
type Pins struct {
	device *easystepper.Device
}

// New configures the device and returns the adapter.
func New(cfg easystepper.DeviceConfig) (*Pins, error) {
	device, err := easystepper.New(cfg)
	if err != nil {
		return nil, err
	}
	device.Configure()
	return &Pins{device: device}, nil
}

// Step issues |delta| steps in the signed direction.
func (p *Pins) Step(delta int64) error {
	if delta != 0 {
		p.device.Move(int32(delta))
	}
	return nil
}

// Off releases the coils.
func (p *Pins) Off() {
	p.device.Off()
}
