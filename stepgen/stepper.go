// Package stepgen implements the stepping primitive for the declination
// axis: a trapezoidal-profile step generator advanced once per control-loop
// tick. Positions are absolute motor steps; the caller owns the step/degree
// calibration.
package stepgen

import (
	"math"
	"time"
)

// PinDriver emits physical step pulses. Step receives a signed step delta
// and generates |delta| pulses with the direction line set from the sign.
type PinDriver interface {
	Step(delta int64) error
}

// NopPins discards pulses; position is purely dead-reckoned. Used for
// simulation and for hosts where another component owns the pins.
type NopPins struct{}

func (NopPins) Step(int64) error { return nil }

// Config configures a Stepper.
type Config struct {
	// MaxVelocity and MaxAcceleration are the initial ceilings in steps/s
	// and steps/s^2. Configure may change them later.
	MaxVelocity     float64
	MaxAcceleration float64

	// Pins is the pulse backend; nil means NopPins.
	Pins PinDriver

	// Clock supplies the time base; nil means time.Now. Tests inject a
	// fake clock to advance deterministically.
	Clock func() time.Time
}

// Stepper generates motion toward a target step position. It never blocks:
// Advance samples the active profile against the clock and emits whatever
// steps are due.
type Stepper struct {
	maxVel float64
	accel  float64
	pins   PinDriver
	now    func() time.Time

	position int64
	target   int64
	prof     *profile
	start    time.Time
	pinErr   error
}

// New creates a stepper at position zero with no motion commanded.
func New(cfg Config) *Stepper {
	s := &Stepper{
		maxVel: cfg.MaxVelocity,
		accel:  cfg.MaxAcceleration,
		pins:   cfg.Pins,
		now:    cfg.Clock,
	}
	if s.pins == nil {
		s.pins = NopPins{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Configure updates the velocity and acceleration ceilings for subsequent
// moves. Non-positive values leave the corresponding ceiling unchanged.
func (s *Stepper) Configure(maxVelocity, maxAcceleration float64) {
	if maxVelocity > 0 {
		s.maxVel = maxVelocity
	}
	if maxAcceleration > 0 {
		s.accel = maxAcceleration
	}
}

// MoveTo commands motion toward an absolute step position, replacing any
// move in progress. Targeting the current position halts motion.
func (s *Stepper) MoveTo(target int64) {
	s.target = target
	if target == s.position {
		s.prof = nil
		return
	}
	s.prof = newProfile(float64(s.position), float64(target), s.maxVel, s.accel)
	s.start = s.now()
}

// Advance services step generation for one control-loop tick.
func (s *Stepper) Advance() {
	if s.prof == nil {
		return
	}
	t := s.now().Sub(s.start).Seconds()
	pos := int64(math.Round(s.prof.position(t)))
	if s.prof.done(t) {
		pos = s.target
		s.prof = nil
	}
	if delta := pos - s.position; delta != 0 {
		if err := s.pins.Step(delta); err != nil {
			// Position stays dead-reckoned; the error is kept for
			// the host to inspect.
			s.pinErr = err
		}
		s.position = pos
	}
}

// CurrentPosition returns the dead-reckoned absolute step position.
func (s *Stepper) CurrentPosition() int64 { return s.position }

// RemainingSteps returns the signed distance to the commanded target.
func (s *Stepper) RemainingSteps() int64 { return s.target - s.position }

// SetCurrentPosition re-anchors the position without motion. Any move in
// progress is abandoned.
func (s *Stepper) SetCurrentPosition(pos int64) {
	s.position = pos
	s.target = pos
	s.prof = nil
}

// PinError returns the last pulse backend error, if any.
func (s *Stepper) PinError() error { return s.pinErr }
