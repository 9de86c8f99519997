// Package serial is the byte-stream link to the mount: a small Port seam
// over the host serial device, with a mock for tests.
package serial

import (
	"errors"
	"io"
)

// Link defaults. The control loop is paced by the read timeout: reads must
// time out instead of blocking so motion keeps being serviced on an idle
// line.
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 20 // milliseconds
)

// Port is the byte-stream link.
type Port interface {
	io.ReadWriteCloser

	// Flush discards buffered data on the line.
	Flush() error
}

// Config describes the link.
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3").
	Device string

	// Baud rate; 0 selects DefaultBaud.
	Baud int

	// Read timeout in milliseconds. Zero or negative selects
	// DefaultReadTimeout; the link never opens in blocking mode.
	ReadTimeout int
}

// DefaultConfig returns the link configuration for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
	}
}

// normalized fills missing fields with the link defaults.
func (c *Config) normalized() (Config, error) {
	if c == nil {
		return Config{}, errors.New("serial: nil config")
	}
	out := *c
	if out.Device == "" {
		return Config{}, errors.New("serial: no device")
	}
	if out.Baud <= 0 {
		out.Baud = DefaultBaud
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = DefaultReadTimeout
	}
	return out, nil
}
