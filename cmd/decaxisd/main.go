// decaxisd runs the declination axis controller: it speaks the LX200 subset
// on a serial port and drives the step generator from a single cooperative
// control loop.
package main

import (
	"flag"
	"io"
	"os"

	"github.com/caarlos0/env"
	log "github.com/sirupsen/logrus"

	"decaxis/axis"
	"decaxis/config"
	"decaxis/lx200"
	"decaxis/protocol"
	"decaxis/serial"
	"decaxis/stepgen"
)

// settings come from the environment; flags override them.
type settings struct {
	Device     string `env:"DEC_SERIAL" envDefault:"/dev/ttyUSB0"`
	Baud       int    `env:"DEC_SERIAL_BAUD" envDefault:"115200"`
	ConfigPath string `env:"DEC_CONFIG"`
	LogLevel   string `env:"DEC_LOG_LEVEL" envDefault:"info"`
}

func main() {
	var s settings
	if err := env.Parse(&s); err != nil {
		log.Fatalf("environment: %v", err)
	}

	device := flag.String("device", s.Device, "Serial device path")
	baud := flag.Int("baud", s.Baud, "Baud rate")
	configPath := flag.String("config", s.ConfigPath, "Axis config JSON (optional)")
	logLevel := flag.String("log-level", s.LogLevel, "Log level (debug, info, warn, error)")
	gpioChip := flag.String("gpiochip", "", "GPIO chip for step/dir output (optional, e.g. gpiochip0)")
	stepPin := flag.Int("step-pin", 17, "Step line offset on the GPIO chip")
	dirPin := flag.Int("dir-pin", 27, "Dir line offset on the GPIO chip")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("bad log level %q: %v", *logLevel, err)
	}
	log.SetLevel(level)

	axisCfg := config.Default()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config: %v", err)
		}
		if axisCfg, err = config.Load(data); err != nil {
			log.Fatalf("parse config: %v", err)
		}
	}
	log.WithFields(log.Fields{
		"steps_per_degree": float64(axisCfg.Scale()),
		"max_velocity":     axisCfg.MaxVelocity,
		"max_acceleration": axisCfg.MaxAcceleration,
	}).Info("axis configuration loaded")

	var pins stepgen.PinDriver = stepgen.NopPins{}
	if *gpioChip != "" {
		gpio, err := stepgen.NewGPIOPins(*gpioChip, *stepPin, *dirPin)
		if err != nil {
			log.Fatalf("gpio: %v", err)
		}
		defer gpio.Close()
		pins = gpio
		log.Infof("step/dir output on %s lines %d/%d", *gpioChip, *stepPin, *dirPin)
	}

	portCfg := serial.DefaultConfig(*device)
	portCfg.Baud = *baud
	port, err := serial.Open(portCfg)
	if err != nil {
		log.Fatalf("serial: %v", err)
	}
	defer port.Close()
	log.Infof("listening on %s at %d baud", *device, *baud)

	stepper := stepgen.New(stepgen.Config{Pins: pins})
	ctrl := axis.NewController(stepper, axisCfg.Tuning(), axisCfg.Limits(), axisCfg.RateTable())
	ctrl.OnSafetyStop = func(interrupted axis.Mode, deg float64) {
		log.WithFields(log.Fields{
			"mode":        interrupted.String(),
			"declination": deg,
		}).Warn("travel limit reached, motion stopped")
	}

	dispatcher := lx200.NewDispatcher(ctrl)
	scanner := protocol.NewScanner(func(body string) string {
		reply := dispatcher.Dispatch(body)
		log.WithFields(log.Fields{"cmd": body, "reply": reply}).Debug("frame")
		return reply
	})

	run(port, scanner, ctrl, stepper)
}

// run is the cooperative control loop. Each iteration drains whatever bytes
// are available (the port read times out instead of blocking), dispatches
// the complete frames, then services the motion primitive and its limit
// checks exactly once. The serial read timeout paces the loop.
func run(port serial.Port, scanner *protocol.Scanner, ctrl *axis.Controller, stepper *stepgen.Stepper) {
	buf := make([]byte, 256)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			scanner.Receive(buf[:n])
		}
		if err != nil && err != io.EOF {
			log.Errorf("serial read: %v", err)
			return
		}

		if out := scanner.Output(); len(out) > 0 {
			if _, err := port.Write(out); err != nil {
				log.Errorf("serial write: %v", err)
				return
			}
		}

		ctrl.Tick()
		if perr := stepper.PinError(); perr != nil {
			log.Errorf("step output: %v", perr)
			return
		}
	}
}
