//go:build !linux || tinygo

package stepgen

import "errors"

// GPIOPins is only available on Linux (GPIO character device).
type GPIOPins struct{}

func NewGPIOPins(chip string, stepOffset, dirOffset int) (*GPIOPins, error) {
	return nil, errors.New("stepgen: gpio output requires linux")
}

func (g *GPIOPins) Step(int64) error { return nil }
func (g *GPIOPins) Close() error     { return nil }
