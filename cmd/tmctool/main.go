// tmctool is an interactive console for the TMC2209 driver's UART register
// interface: dump registers, set current, microstepping and chopper mode.
// It is an operational tool and takes no part in the motion control path.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"decaxis/serial"
	"decaxis/tmc"
)

func main() {
	device := flag.String("device", "", "Serial device connected to the driver UART")
	baud := flag.Int("baud", 115200, "Baud rate")
	addr := flag.Int("addr", 0, "Driver slave address (MS1/MS2 strapping)")
	rsense := flag.Float64("rsense", 0.11, "Sense resistor value in ohms")
	flag.Parse()
	if *device == "" {
		fmt.Fprintln(os.Stderr, "usage: tmctool -device /dev/ttyUSB1 [-baud N] [-addr N] [-rsense OHMS]")
		os.Exit(2)
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	cfg.ReadTimeout = 200
	port, err := serial.Open(cfg)
	if err != nil {
		log.Fatalf("serial: %v", err)
	}
	defer port.Close()

	driver := tmc.NewDriver(port, uint8(*addr), *rsense)
	if err := driver.Setup(); err != nil {
		log.Fatalf("driver setup: %v", err)
	}
	log.Infof("connected to TMC2209 at %s (addr %d)", *device, *addr)

	repl(driver)
}

func repl(driver *tmc.Driver) {
	fmt.Println("Type 'help' for available commands, 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "quit", "exit", "q":
			return

		case "help", "?":
			printHelp()

		case "dump", "info":
			regs, err := driver.Dump()
			if err != nil {
				log.Errorf("dump: %v", err)
				continue
			}
			for _, r := range regs {
				fmt.Printf("%-11s (0x%02X) = 0x%08X\n", r.Name, r.Reg, r.Value)
			}

		case "current":
			runInt(args, "current <mA>", func(mA int) error {
				return driver.SetRMSCurrent(mA)
			})

		case "microsteps":
			runInt(args, "microsteps <1|2|4|...|256>", func(n int) error {
				return driver.SetMicrosteps(n)
			})

		case "stealth":
			runInt(args, "stealth 0|1", func(v int) error {
				return driver.SetStealthChop(v != 0)
			})

		case "sgthrs":
			runInt(args, "sgthrs <0..255>", func(v int) error {
				if v < 0 || v > 255 {
					return fmt.Errorf("value out of range")
				}
				return driver.SetStallGuardThreshold(uint8(v))
			})

		case "read":
			if len(args) != 1 {
				fmt.Println("read <reg-hex>")
				continue
			}
			reg, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 8)
			if err != nil {
				fmt.Println("read <reg-hex>")
				continue
			}
			val, err := driver.ReadRegister(uint8(reg))
			if err != nil {
				log.Errorf("read: %v", err)
				continue
			}
			fmt.Printf("0x%02X = 0x%08X\n", reg, val)

		default:
			fmt.Printf("unknown command: %s (type 'help')\n", cmd)
		}
	}
}

func runInt(args []string, usage string, f func(int) error) {
	if len(args) != 1 {
		fmt.Println(usage)
		return
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println(usage)
		return
	}
	if err := f(v); err != nil {
		log.Errorf("%v", err)
		return
	}
	fmt.Println("ok")
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  dump             - read and print all registers")
	fmt.Println("  current <mA>     - set RMS run current")
	fmt.Println("  microsteps <n>   - set microstep resolution (1..256, power of two)")
	fmt.Println("  stealth 0|1      - 1 = stealthChop, 0 = spreadCycle")
	fmt.Println("  sgthrs <0..255>  - set StallGuard threshold")
	fmt.Println("  read <reg-hex>   - read a raw register")
	fmt.Println("  quit/exit/q      - exit")
	fmt.Println()
}
