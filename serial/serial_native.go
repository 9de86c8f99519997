//go:build !tinygo

package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// NativePort is the host serial device. Reads always carry a timeout (see
// normalized), so a Read on an idle line returns (0, io.EOF) after the
// timeout instead of blocking; callers treat that as "no data yet".
type NativePort struct {
	port *serial.Port
}

// Open opens the device described by cfg with the link defaults applied.
func Open(cfg *Config) (Port, error) {
	c, err := cfg.normalized()
	if err != nil {
		return nil, err
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        c.Device,
		Baud:        c.Baud,
		ReadTimeout: time.Duration(c.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", c.Device, err)
	}
	return &NativePort{port: port}, nil
}

func (p *NativePort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *NativePort) Write(b []byte) (int, error) { return p.port.Write(b) }

func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Flush drops any bytes queued on the line, so a fresh session does not
// replay stale half-frames.
func (p *NativePort) Flush() error { return p.port.Flush() }
