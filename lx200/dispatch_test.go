package lx200

import (
	"strings"
	"testing"
	"time"

	"decaxis/axis"
	"decaxis/coords"
	"decaxis/protocol"
	"decaxis/stepgen"
)

type harness struct {
	ctrl    *axis.Controller
	disp    *Dispatcher
	scanner *protocol.Scanner
	clock   time.Time
	stepper *stepgen.Stepper
}

// newHarness wires a dispatcher to a real stepgen primitive with a fake
// clock (1280 steps/deg, 4 deg/s ceiling, 2 deg/s^2).
func newHarness() *harness {
	h := &harness{clock: time.Unix(0, 0)}
	h.stepper = stepgen.New(stepgen.Config{
		Clock: func() time.Time { return h.clock },
	})
	tuning := axis.Tuning{
		Scale:           coords.NewStepScale(200, 16, 144),
		MaxVelocity:     4.0,
		MaxAcceleration: 2.0,
	}
	h.ctrl = axis.NewController(h.stepper, tuning,
		axis.Limits{Min: -90, Max: 90}, axis.DefaultRates())
	h.disp = NewDispatcher(h.ctrl)
	h.scanner = protocol.NewScanner(h.disp.Dispatch)
	return h
}

// tick advances the fake clock and runs one control-loop iteration.
func (h *harness) tick(d time.Duration) {
	h.clock = h.clock.Add(d)
	h.ctrl.Tick()
}

// send runs one frame through scanner and dispatcher and returns the raw
// reply bytes.
func (h *harness) send(frame string) string {
	h.scanner.Receive([]byte(frame))
	return string(h.scanner.Output())
}

func TestDispatchReplies(t *testing.T) {
	tests := []struct {
		frame string
		want  string
	}{
		{":GD#", "+00*00:00#"},
		{":Sr 12:34:56#", "1#"}, // accepted and ignored, axis has no RA
		{":Sd junk#", "0#"},
		{":Sd +45*30:00#", "1#"},
		{":Me#", "0#"},
		{":Mw#", "0#"},
		{":RG#", "1#"},
		{":RC#", "1#"},
		{":RM#", "1#"},
		{":RS#", "1#"},
		{":Q#", "1#"},
		{":Qn#", "1#"},
		{":Qs#", "1#"},
		{":Qe#", "1#"},
		{":Qw#", "1#"},
		{":XAC+001.230#", "1#"},
		{":XAC-1.0#", "0#"},
		{":XACnope#", "0#"},
		{":XVM004.000#", "1#"},
		{":XVM0#", "0#"},
		{":XSC+10*00:00#", "1#"},
		{":XSCgarbage#", "0#"},
		{":ZZ#", "0#"},
		{":#", "0#"},
	}
	h := newHarness()
	for _, tt := range tests {
		if got := h.send(tt.frame); got != tt.want {
			t.Errorf("%s -> %q, want %q", tt.frame, got, tt.want)
		}
	}
}

func TestUnknownCommandLeavesStateUntouched(t *testing.T) {
	h := newHarness()
	h.send(":XSC+12*00:00#")

	before := h.ctrl.Snapshot()
	for _, frame := range []string{":ZZтест#", ":GX#", ":xac1.0#", ":sd+10*00#"} {
		if got := h.send(frame); got != "0#" {
			t.Errorf("%s -> %q, want 0#", frame, got)
		}
	}
	if h.ctrl.Snapshot() != before {
		t.Fatal("unknown command mutated axis state")
	}
}

func TestParseFailureDoesNotMutateState(t *testing.T) {
	h := newHarness()
	h.send(":Sd +20*00:00#")

	h.send(":Sd 45:30:00#") // missing degree separator
	if target, _ := h.ctrl.Target(); target != 20 {
		t.Fatalf("failed Sd mutated target: %v", target)
	}

	h.send(":XSC+x*00:00#")
	if got := h.ctrl.CurrentDec(); got != 0 {
		t.Fatalf("failed XSC moved anchor: %v", got)
	}

	h.send(":XAC-1.0#")
	if acc := h.ctrl.Tuning().MaxAcceleration; acc != 2.0 {
		t.Fatalf("rejected XAC mutated acceleration: %v", acc)
	}
}

func TestSlewWithoutTarget(t *testing.T) {
	h := newHarness()
	if got := h.send(":MS#"); got != "0#" {
		t.Fatalf("MS -> %q, want 0#", got)
	}
	if h.ctrl.Mode() != axis.Idle {
		t.Fatal("MS without target started motion")
	}
}

func TestGotoScenario(t *testing.T) {
	h := newHarness()

	if got := h.send(":Sd+45*30:00#"); got != "1#" {
		t.Fatalf("Sd -> %q", got)
	}
	if got := h.send(":MS#"); got != "0#" {
		t.Fatalf("MS -> %q", got)
	}
	if h.ctrl.Mode() != axis.Goto {
		t.Fatalf("mode = %v, want goto", h.ctrl.Mode())
	}
	if h.stepper.RemainingSteps() != 58240 {
		t.Fatalf("target steps = %d, want 58240 (45.5 deg)", h.stepper.RemainingSteps())
	}

	// 45.5 deg at 4 deg/s with 2 deg/s^2 ramps takes ~13.4s.
	for i := 0; i < 300 && h.ctrl.Mode() != axis.Idle; i++ {
		h.tick(100 * time.Millisecond)
	}
	if h.ctrl.Mode() != axis.Idle {
		t.Fatal("slew never completed")
	}
	if got := h.send(":GD#"); got != "+45*30:00#" {
		t.Fatalf("GD after slew -> %q, want +45*30:00#", got)
	}
}

func TestManualLimitScenario(t *testing.T) {
	h := newHarness()
	h.send(":XSC+89*30:00#")
	h.send(":RG#")

	if got := h.send(":Mn#"); got != "1#" {
		t.Fatalf("Mn -> %q", got)
	}
	for i := 0; i < 400 && h.ctrl.Mode() == axis.Manual; i++ {
		h.tick(5 * time.Millisecond)
	}
	if h.ctrl.Mode() != axis.Idle {
		t.Fatal("limit never stopped the jog")
	}
	// The stop fires on the first tick at or beyond the limit, so the
	// final position overshoots by at most one tick of travel.
	if deg := h.ctrl.CurrentDec(); deg < 89.99 || deg > 90.05 {
		t.Fatalf("jog stopped at %v, want ~+90", deg)
	}

	// The safety stop is not an error; it surfaces via X? as Idle.
	status := h.send(":X?#")
	if !strings.HasPrefix(status, "I,") {
		t.Fatalf("X? after safety stop -> %q, want I,...", status)
	}
}

func TestStopHaltsSlew(t *testing.T) {
	h := newHarness()
	h.send(":Sd-30*00:00#")
	h.send(":MS#")
	h.tick(500 * time.Millisecond)

	if got := h.send(":Q#"); got != "1#" {
		t.Fatalf("Q -> %q", got)
	}
	if h.ctrl.Mode() != axis.Idle || h.stepper.RemainingSteps() != 0 {
		t.Fatal("Q left motion commanded")
	}
	pos := h.stepper.CurrentPosition()
	h.tick(time.Second)
	if h.stepper.CurrentPosition() != pos {
		t.Fatal("axis moved after stop")
	}
}

func TestStatusFormat(t *testing.T) {
	h := newHarness()

	if got := h.send(":X?#"); got != "I,+00*00:00,--*--:--,4.000,2.000#" {
		t.Fatalf("X? -> %q", got)
	}

	h.send(":Sd+10*00:00#")
	h.send(":MS#")
	if got := h.send(":X?#"); got != "G,+00*00:00,+10*00:00,4.000,2.000#" {
		t.Fatalf("X? during slew -> %q", got)
	}

	h.send(":Q#")
	h.send(":XVM002.500#")
	h.send(":XAC+000.750#")
	if got := h.send(":X?#"); got != "I,+00*00:00,+10*00:00,2.500,0.750#" {
		t.Fatalf("X? after tuning -> %q", got)
	}
}

func TestSyncReanchorsGoto(t *testing.T) {
	h := newHarness()
	h.send(":XSC-45*00:00#")
	if got := h.send(":GD#"); got != "-45*00:00#" {
		t.Fatalf("GD after sync -> %q", got)
	}

	// Subsequent motion is computed relative to the new anchor.
	h.send(":Sd-44*00:00#")
	h.send(":MS#")
	if h.stepper.RemainingSteps() != 1280 {
		t.Fatalf("remaining = %d, want 1280 (1 deg)", h.stepper.RemainingSteps())
	}
}

func TestRateSelectionAffectsJogSpeed(t *testing.T) {
	h := newHarness()
	h.send(":RS#")
	h.send(":Mn#")

	// At the Slow rate (0.1 deg/s = 128 steps/s) one second of jog moves
	// about 128 steps, far below the 4 deg/s global ceiling.
	h.tick(2 * time.Second)
	moved := h.stepper.CurrentPosition()
	if moved < 100 || moved > 300 {
		t.Fatalf("slow jog moved %d steps in 2s, want ~200", moved)
	}
}
