// Package lx200 maps frame bodies of the supported LX200 command subset to
// axis controller operations. The dispatcher is stateless between frames;
// all state lives in the controller it wraps.
package lx200

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"decaxis/axis"
	"decaxis/coords"
)

// Single-token replies. Every reply is terminated with the frame close
// delimiter by the protocol layer.
const (
	RespFailure = "0"
	RespOK      = "1"
)

// Handler produces the reply for one command, given the argument substring
// following the mnemonic.
type Handler func(args string) string

type entry struct {
	mnemonic string
	handler  Handler
}

// Dispatcher matches a frame body's leading mnemonic against an ordered
// table and invokes the handler. Longer mnemonics are matched first so
// prefix overlap (Q vs Qn, X? vs XAC) is a deliberate tie-break rather than
// incidental table order.
type Dispatcher struct {
	ctrl  *axis.Controller
	table []entry
}

// NewDispatcher builds the command table around a controller.
func NewDispatcher(ctrl *axis.Controller) *Dispatcher {
	d := &Dispatcher{ctrl: ctrl}
	d.table = []entry{
		{"GD", d.getDec},
		{"Sd", d.setTargetDec},
		{"Sr", d.setTargetRA},
		{"MS", d.startSlew},
		{"Q", d.stop},
		{"Qn", d.stop},
		{"Qs", d.stop},
		{"Qe", d.stop},
		{"Qw", d.stop},
		{"Mn", d.manual(axis.North)},
		{"Ms", d.manual(axis.South)},
		{"Me", d.notOnThisAxis},
		{"Mw", d.notOnThisAxis},
		{"RG", d.rate(axis.RateGuide)},
		{"RC", d.rate(axis.RateCenter)},
		{"RM", d.rate(axis.RateMedium)},
		{"RS", d.rate(axis.RateSlow)},
		{"XAC", d.setAcceleration},
		{"XVM", d.setMaxVelocity},
		{"XSC", d.syncPosition},
		{"X?", d.status},
	}
	sort.SliceStable(d.table, func(i, j int) bool {
		return len(d.table[i].mnemonic) > len(d.table[j].mnemonic)
	})
	return d
}

// Dispatch handles one frame body and returns the reply without its
// terminator. Unrecognized mnemonics reply with the default failure token.
func (d *Dispatcher) Dispatch(body string) string {
	for _, e := range d.table {
		if strings.HasPrefix(body, e.mnemonic) {
			return e.handler(strings.TrimSpace(body[len(e.mnemonic):]))
		}
	}
	return RespFailure
}

func (d *Dispatcher) getDec(string) string {
	return coords.FormatDec(d.ctrl.CurrentDec())
}

func (d *Dispatcher) setTargetDec(args string) string {
	deg, err := coords.ParseDec(args)
	if err != nil {
		return RespFailure
	}
	d.ctrl.SetTarget(deg)
	return RespOK
}

// setTargetRA accepts and discards the RA target: this axis has no right
// ascension, but LX200 clients stage both coordinates before a slew.
func (d *Dispatcher) setTargetRA(string) string {
	return RespOK
}

// startSlew replies "0" whether or not a target was staged; the LX200 slew
// convention uses "0" for slew-accepted, unlike the "1" success token used
// elsewhere in the protocol.
func (d *Dispatcher) startSlew(string) string {
	d.ctrl.StartGoto()
	return "0"
}

func (d *Dispatcher) stop(string) string {
	d.ctrl.Stop()
	return RespOK
}

func (d *Dispatcher) manual(dir axis.Direction) Handler {
	return func(string) string {
		d.ctrl.StartManual(dir)
		return RespOK
	}
}

func (d *Dispatcher) notOnThisAxis(string) string {
	return RespFailure
}

func (d *Dispatcher) rate(r axis.Rate) Handler {
	return func(string) string {
		if !d.ctrl.SelectRate(r) {
			return RespFailure
		}
		return RespOK
	}
}

func (d *Dispatcher) setAcceleration(args string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
	if err != nil || !d.ctrl.SetMaxAcceleration(v) {
		return RespFailure
	}
	return RespOK
}

func (d *Dispatcher) setMaxVelocity(args string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(args), 64)
	if err != nil || !d.ctrl.SetMaxVelocity(v) {
		return RespFailure
	}
	return RespOK
}

func (d *Dispatcher) syncPosition(args string) string {
	deg, err := coords.ParseDec(args)
	if err != nil {
		return RespFailure
	}
	d.ctrl.SyncTo(deg)
	return RespOK
}

// status reports mode, current and target declination, and the tuning
// ceilings as a single comma-separated token.
func (d *Dispatcher) status(string) string {
	s := d.ctrl.Snapshot()
	target := "--*--:--"
	if s.HasTarget {
		target = coords.FormatDec(s.Target)
	}
	return fmt.Sprintf("%c,%s,%s,%.3f,%.3f",
		s.Mode.Letter(), coords.FormatDec(s.Current), target,
		s.MaxVelocity, s.MaxAcceleration)
}
