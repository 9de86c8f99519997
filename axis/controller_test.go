package axis

import (
	"testing"

	"decaxis/coords"
)

// fakeMotion is a deterministic stand-in for the stepping primitive: every
// Advance moves a fixed number of steps toward the target.
type fakeMotion struct {
	pos          int64
	target       int64
	stepsPerTick int64

	maxVel float64
	maxAcc float64
}

func (f *fakeMotion) Configure(maxVelocity, maxAcceleration float64) {
	f.maxVel = maxVelocity
	f.maxAcc = maxAcceleration
}

func (f *fakeMotion) MoveTo(target int64) { f.target = target }

func (f *fakeMotion) Advance() {
	d := f.target - f.pos
	if d == 0 {
		return
	}
	step := f.stepsPerTick
	if d < 0 {
		if -d < step {
			step = -d
		}
		f.pos -= step
		return
	}
	if d < step {
		step = d
	}
	f.pos += step
}

func (f *fakeMotion) CurrentPosition() int64     { return f.pos }
func (f *fakeMotion) RemainingSteps() int64      { return f.target - f.pos }
func (f *fakeMotion) SetCurrentPosition(p int64) { f.pos = p; f.target = p }

func newTestController(stepsPerTick int64) (*Controller, *fakeMotion) {
	motion := &fakeMotion{stepsPerTick: stepsPerTick}
	tuning := Tuning{
		Scale:           coords.NewStepScale(200, 16, 144), // 1280 steps/deg
		MaxVelocity:     4.0,
		MaxAcceleration: 1.0,
	}
	limits := Limits{Min: -90, Max: 90}
	return NewController(motion, tuning, limits, DefaultRates()), motion
}

func TestGotoCompletes(t *testing.T) {
	ctrl, motion := newTestController(10000)

	if ctrl.StartGoto() {
		t.Fatal("StartGoto succeeded with no staged target")
	}

	ctrl.SetTarget(45.5)
	if !ctrl.StartGoto() {
		t.Fatal("StartGoto failed with staged target")
	}
	if ctrl.Mode() != Goto {
		t.Fatalf("mode = %v, want goto", ctrl.Mode())
	}
	if motion.target != 58240 {
		t.Fatalf("target steps = %d, want 58240", motion.target)
	}

	for i := 0; i < 100 && ctrl.Mode() != Idle; i++ {
		ctrl.Tick()
	}
	if ctrl.Mode() != Idle {
		t.Fatal("goto never completed")
	}
	if got := ctrl.CurrentDec(); got != 45.5 {
		t.Fatalf("final declination = %v, want 45.5", got)
	}
}

func TestGotoTargetClamped(t *testing.T) {
	ctrl, motion := newTestController(1)
	ctrl.SetTarget(135)
	ctrl.StartGoto()
	if motion.target != 90*1280 {
		t.Fatalf("target steps = %d, want %d (clamped to +90)", motion.target, 90*1280)
	}
}

func TestManualLimitStop(t *testing.T) {
	// 0.5 deg per tick toward north.
	ctrl, motion := newTestController(640)

	var stoppedIn Mode
	var stoppedAt float64
	ctrl.OnSafetyStop = func(m Mode, deg float64) {
		stoppedIn = m
		stoppedAt = deg
	}

	ctrl.StartManual(North)
	if ctrl.Mode() != Manual || ctrl.ManualDirection() != North {
		t.Fatalf("mode = %v dir = %v", ctrl.Mode(), ctrl.ManualDirection())
	}

	for i := 0; i < 400 && ctrl.Mode() == Manual; i++ {
		ctrl.Tick()
		if deg := ctrl.CurrentDec(); deg > 90 {
			t.Fatalf("position exceeded +90: %v", deg)
		}
	}
	if ctrl.Mode() != Idle {
		t.Fatal("limit never stopped the jog")
	}
	if stoppedIn != Manual || stoppedAt != 90 {
		t.Fatalf("safety stop reported (%v, %v), want (manual, 90)", stoppedIn, stoppedAt)
	}
	if motion.RemainingSteps() != 0 {
		t.Fatal("residual motion commanded after safety stop")
	}
	if ctrl.ManualDirection() != None {
		t.Fatal("jog direction not cleared")
	}
}

func TestGotoLimitStop(t *testing.T) {
	ctrl, motion := newTestController(640)
	// Anchor near the south limit so the slew crosses it. The target
	// itself is clamped, so push the anchor instead.
	motion.SetCurrentPosition(-89 * 1280)
	ctrl.SetTarget(-90)
	ctrl.StartGoto()

	for i := 0; i < 40 && ctrl.Mode() == Goto; i++ {
		ctrl.Tick()
		if deg := ctrl.CurrentDec(); deg < -90 {
			t.Fatalf("position exceeded -90: %v", deg)
		}
	}
	if ctrl.Mode() != Idle {
		t.Fatal("slew to the limit never stopped")
	}
}

func TestManualSpeedClampedToCeiling(t *testing.T) {
	ctrl, motion := newTestController(1)
	scale := float64(ctrl.Tuning().Scale)

	// Guide (2 deg/s) is below the 4 deg/s ceiling: used as-is.
	ctrl.SelectRate(RateGuide)
	ctrl.StartManual(North)
	if motion.maxVel != 2.0*scale {
		t.Fatalf("velocity ceiling = %v steps/s, want %v", motion.maxVel, 2.0*scale)
	}

	// Lower the global ceiling below the Guide rate: clamped.
	ctrl.Stop()
	if !ctrl.SetMaxVelocity(1.5) {
		t.Fatal("SetMaxVelocity(1.5) rejected")
	}
	ctrl.StartManual(South)
	if motion.maxVel != 1.5*scale {
		t.Fatalf("velocity ceiling = %v steps/s, want %v", motion.maxVel, 1.5*scale)
	}
}

func TestSelectRateDoesNotMove(t *testing.T) {
	ctrl, motion := newTestController(1)
	if !ctrl.SelectRate(RateSlow) {
		t.Fatal("SelectRate(RateSlow) failed")
	}
	if ctrl.Mode() != Idle || motion.RemainingSteps() != 0 {
		t.Fatal("rate selection started motion")
	}
	if ctrl.SelectRate(Rate('Z')) {
		t.Fatal("unknown rate accepted")
	}
}

func TestTuningRejectsNonPositive(t *testing.T) {
	ctrl, _ := newTestController(1)
	before := ctrl.Tuning()

	if ctrl.SetMaxAcceleration(-1) || ctrl.SetMaxAcceleration(0) {
		t.Fatal("non-positive acceleration accepted")
	}
	if ctrl.SetMaxVelocity(-0.5) || ctrl.SetMaxVelocity(0) {
		t.Fatal("non-positive velocity accepted")
	}
	if ctrl.Tuning() != before {
		t.Fatal("tuning mutated by rejected update")
	}

	if !ctrl.SetMaxAcceleration(2.5) {
		t.Fatal("positive acceleration rejected")
	}
	if ctrl.Tuning().MaxAcceleration != 2.5 {
		t.Fatal("acceleration not updated")
	}
}

func TestTuningReachesPrimitiveBeforeNextMove(t *testing.T) {
	ctrl, motion := newTestController(1)
	scale := float64(ctrl.Tuning().Scale)

	ctrl.SetMaxVelocity(3.0)
	ctrl.SetMaxAcceleration(0.5)
	if motion.maxVel != 3.0*scale || motion.maxAcc != 0.5*scale {
		t.Fatalf("primitive config = (%v, %v), tuning not applied",
			motion.maxVel, motion.maxAcc)
	}
}

func TestSyncReanchorsWithoutMotion(t *testing.T) {
	ctrl, motion := newTestController(1)

	ctrl.SyncTo(45.5)
	if ctrl.Mode() != Idle {
		t.Fatal("sync changed mode")
	}
	if motion.RemainingSteps() != 0 {
		t.Fatal("sync commanded motion")
	}
	if got := ctrl.CurrentDec(); got != 45.5 {
		t.Fatalf("declination after sync = %v, want 45.5", got)
	}

	// Out-of-range sync values clamp.
	ctrl.SyncTo(100)
	if got := ctrl.CurrentDec(); got != 90 {
		t.Fatalf("declination after clamped sync = %v, want 90", got)
	}
}

func TestStopIsImmediate(t *testing.T) {
	ctrl, motion := newTestController(100)
	ctrl.StartManual(North)
	ctrl.Tick()

	ctrl.Stop()
	if ctrl.Mode() != Idle || motion.RemainingSteps() != 0 {
		t.Fatal("stop left residual motion")
	}
	pos := motion.CurrentPosition()
	ctrl.Tick()
	if motion.CurrentPosition() != pos {
		t.Fatal("axis moved after stop")
	}
}
