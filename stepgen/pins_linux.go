//go:build linux && !tinygo

package stepgen

import "github.com/warthog618/go-gpiocdev"

// GPIOPins drives step/dir lines through the Linux GPIO character device.
type GPIOPins struct {
	step    *gpiocdev.Line
	dir     *gpiocdev.Line
	forward bool
}

// NewGPIOPins requests the step and dir lines on the given chip (e.g.
// "gpiochip0"), both initially low.
func NewGPIOPins(chip string, stepOffset, dirOffset int) (*GPIOPins, error) {
	step, err := gpiocdev.RequestLine(chip, stepOffset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	dir, err := gpiocdev.RequestLine(chip, dirOffset, gpiocdev.AsOutput(0))
	if err != nil {
		step.Close()
		return nil, err
	}
	return &GPIOPins{step: step, dir: dir, forward: true}, nil
}

// Step sets the direction line from the sign of delta and emits |delta|
// pulses. The kernel round trip per SetValue keeps the pulse well above the
// driver's minimum width.
func (g *GPIOPins) Step(delta int64) error {
	if delta == 0 {
		return nil
	}
	forward := delta > 0
	if forward != g.forward {
		v := 0
		if forward {
			v = 1
		}
		if err := g.dir.SetValue(v); err != nil {
			return err
		}
		g.forward = forward
	}
	n := delta
	if n < 0 {
		n = -n
	}
	for i := int64(0); i < n; i++ {
		if err := g.step.SetValue(1); err != nil {
			return err
		}
		if err := g.step.SetValue(0); err != nil {
			return err
		}
	}
	return nil
}

// Close releases both lines.
func (g *GPIOPins) Close() error {
	err := g.step.Close()
	if cerr := g.dir.Close(); err == nil {
		err = cerr
	}
	return err
}
