// Package axis owns the declination axis state machine. It drives an
// external stepping primitive toward target positions and enforces the soft
// travel limits on every control-loop tick, independent of protocol traffic.
package axis

import "decaxis/coords"

// Mode is the axis motion mode.
type Mode int

const (
	// Idle is the initial and terminal-safe state: the primitive's target
	// equals its current position.
	Idle Mode = iota

	// Goto is a commanded slew toward a staged target declination.
	Goto

	// Manual is continuous jog motion in a fixed direction, terminated
	// only by an explicit stop or a limit.
	Manual
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Goto:
		return "goto"
	case Manual:
		return "manual"
	}
	return "unknown"
}

// Letter is the single-character form used in status replies.
func (m Mode) Letter() byte {
	switch m {
	case Goto:
		return 'G'
	case Manual:
		return 'M'
	}
	return 'I'
}

// Direction is the manual jog direction along the axis.
type Direction int

const (
	None  Direction = 0
	North Direction = 1
	South Direction = -1
)

// Motion is the external stepping primitive: a trapezoidal velocity planner
// that advances physical position toward a target. Advance must be called
// every control-loop iteration. All units are motor steps.
type Motion interface {
	// Configure sets the velocity (steps/s) and acceleration (steps/s^2)
	// ceilings for subsequent moves.
	Configure(maxVelocity, maxAcceleration float64)

	// MoveTo commands motion toward an absolute step position.
	MoveTo(target int64)

	// Advance services step generation; it never blocks.
	Advance()

	CurrentPosition() int64

	// RemainingSteps is the signed distance to the commanded target.
	RemainingSteps() int64

	// SetCurrentPosition re-anchors the position without motion.
	SetCurrentPosition(pos int64)
}

// Tuning holds the calibration and motion ceilings applied to the primitive.
type Tuning struct {
	Scale           coords.StepScale
	MaxVelocity     float64 // deg/s
	MaxAcceleration float64 // deg/s^2
}

// Limits is the soft declination travel range in degrees.
type Limits struct {
	Min float64
	Max float64
}

// Status is a snapshot of controller state for the X? query.
type Status struct {
	Mode            Mode
	Current         float64
	Target          float64
	HasTarget       bool
	MaxVelocity     float64
	MaxAcceleration float64
}

// jogSpan approximates unbounded manual motion: jog targets the current
// position plus this offset and relies on the per-tick limit check to stop.
const jogSpan = int64(1) << 30

// Controller is the axis motion controller. It is owned by a single
// cooperative control loop; nothing here is safe for concurrent use.
type Controller struct {
	motion Motion
	tuning Tuning
	limits Limits
	rates  RateTable

	mode        Mode
	target      float64
	hasTarget   bool
	dir         Direction
	manualSpeed float64

	// OnSafetyStop, when set, is called after a limit check forces the
	// axis to Idle. It reports the interrupted mode and the position.
	OnSafetyStop func(interrupted Mode, deg float64)
}

// NewController creates a controller around an injected motion primitive.
// The primitive is configured with the initial tuning immediately.
func NewController(motion Motion, tuning Tuning, limits Limits, rates RateTable) *Controller {
	c := &Controller{
		motion:      motion,
		tuning:      tuning,
		limits:      limits,
		rates:       rates,
		manualSpeed: rates.Center,
	}
	c.applyTuning()
	return c
}

func (c *Controller) applyTuning() {
	spd := float64(c.tuning.Scale)
	c.motion.Configure(c.tuning.MaxVelocity*spd, c.tuning.MaxAcceleration*spd)
}

// Mode returns the current motion mode.
func (c *Controller) Mode() Mode { return c.mode }

// ManualDirection returns the active jog direction (None outside Manual).
func (c *Controller) ManualDirection() Direction { return c.dir }

// CurrentDec is the dead-reckoned declination of the axis.
func (c *Controller) CurrentDec() float64 {
	return c.tuning.Scale.Degrees(c.motion.CurrentPosition())
}

// Tuning returns the active tuning values.
func (c *Controller) Tuning() Tuning { return c.tuning }

// SetTarget stages a goto target. The value is clamped to the travel range.
func (c *Controller) SetTarget(deg float64) {
	c.target = coords.Clamp(deg, c.limits.Min, c.limits.Max)
	c.hasTarget = true
}

// Target returns the staged target, if any.
func (c *Controller) Target() (float64, bool) {
	return c.target, c.hasTarget
}

// StartGoto begins a commanded slew to the staged target. It reports false
// when no target has been staged.
func (c *Controller) StartGoto() bool {
	if !c.hasTarget {
		return false
	}
	c.applyTuning()
	c.motion.MoveTo(c.tuning.Scale.Steps(c.target))
	c.mode = Goto
	c.dir = None
	return true
}

// StartManual begins jog motion in the given direction at the active manual
// speed, clamped to the global velocity ceiling. Calling it while already in
// Manual re-targets with the current speed and direction.
func (c *Controller) StartManual(dir Direction) {
	if dir == None {
		return
	}
	speed := c.manualSpeed
	if speed > c.tuning.MaxVelocity {
		speed = c.tuning.MaxVelocity
	}
	spd := float64(c.tuning.Scale)
	c.motion.Configure(speed*spd, c.tuning.MaxAcceleration*spd)
	c.motion.MoveTo(c.motion.CurrentPosition() + int64(dir)*jogSpan)
	c.mode = Manual
	c.dir = dir
}

// SelectRate sets the active manual speed. It does not start motion.
func (c *Controller) SelectRate(r Rate) bool {
	speed, ok := c.rates.Speed(r)
	if !ok {
		return false
	}
	c.manualSpeed = speed
	return true
}

// Stop halts motion immediately: the primitive's target becomes its current
// position, so no residual motion remains commanded. The axis returns to
// Idle and the jog direction clears.
func (c *Controller) Stop() {
	c.motion.MoveTo(c.motion.CurrentPosition())
	c.mode = Idle
	c.dir = None
}

// SyncTo re-anchors the dead-reckoned position to deg without motion. It may
// be issued in any mode and does not change mode; subsequent motion is
// computed relative to the new anchor.
func (c *Controller) SyncTo(deg float64) {
	deg = coords.Clamp(deg, c.limits.Min, c.limits.Max)
	c.motion.SetCurrentPosition(c.tuning.Scale.Steps(deg))
}

// SetMaxVelocity updates the velocity ceiling. Non-positive values are
// rejected without mutating state. The new ceiling reaches the primitive
// before the next motion command.
func (c *Controller) SetMaxVelocity(degPerSec float64) bool {
	if degPerSec <= 0 {
		return false
	}
	c.tuning.MaxVelocity = degPerSec
	c.applyTuning()
	return true
}

// SetMaxAcceleration updates the acceleration ceiling. Non-positive values
// are rejected without mutating state.
func (c *Controller) SetMaxAcceleration(degPerSec2 float64) bool {
	if degPerSec2 <= 0 {
		return false
	}
	c.tuning.MaxAcceleration = degPerSec2
	c.applyTuning()
	return true
}

// Tick runs one control-loop iteration: it services the motion primitive
// once, then evaluates the limit check and mode-completion transitions. The
// limit check overrides whatever mode commanded the motion.
func (c *Controller) Tick() {
	c.motion.Advance()

	if c.mode == Idle {
		return
	}

	deg := c.CurrentDec()
	if deg <= c.limits.Min || deg >= c.limits.Max {
		interrupted := c.mode
		c.Stop()
		if c.OnSafetyStop != nil {
			c.OnSafetyStop(interrupted, deg)
		}
		return
	}

	if c.mode == Goto && c.motion.RemainingSteps() == 0 {
		c.mode = Idle
	}
}

// Snapshot reports the controller state for the status query.
func (c *Controller) Snapshot() Status {
	return Status{
		Mode:            c.mode,
		Current:         c.CurrentDec(),
		Target:          c.target,
		HasTarget:       c.hasTarget,
		MaxVelocity:     c.tuning.MaxVelocity,
		MaxAcceleration: c.tuning.MaxAcceleration,
	}
}
