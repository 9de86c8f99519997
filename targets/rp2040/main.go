//go:build rp2040

// Firmware for a Raspberry Pi Pico driving the declination axis. The board
// speaks the LX200 subset over USB CDC and generates step pulses through a
// PIO state machine, so the control loop only plans motion.
package main

import (
	"machine"
	"time"

	"decaxis/axis"
	"decaxis/config"
	"decaxis/lx200"
	"decaxis/protocol"
	"decaxis/stepgen"
	"decaxis/targets/pio"
)

const (
	stepPin = machine.GP2
	dirPin  = machine.GP3
)

func main() {
	// Clear any watchdog state left over from a previous reset.
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	pins := pio.NewPins(0, 0)
	if err := pins.Init(stepPin, dirPin); err != nil {
		blinkForever()
	}

	cfg := config.Default()
	stepper := stepgen.New(stepgen.Config{Pins: pins})
	ctrl := axis.NewController(stepper, cfg.Tuning(), cfg.Limits(), cfg.RateTable())
	dispatcher := lx200.NewDispatcher(ctrl)
	scanner := protocol.NewScanner(dispatcher.Dispatch)

	buf := make([]byte, 64)
	for {
		n := 0
		for machine.Serial.Buffered() > 0 && n < len(buf) {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			buf[n] = b
			n++
		}
		if n > 0 {
			scanner.Receive(buf[:n])
			if out := scanner.Output(); len(out) > 0 {
				machine.Serial.Write(out)
			}
		}

		ctrl.Tick()
		time.Sleep(time.Millisecond)
	}
}

// blinkForever signals a fatal init failure on the board LED.
func blinkForever() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
