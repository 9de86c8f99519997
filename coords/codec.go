package coords

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Declination travel range in degrees. Every angle that enters or leaves the
// controller is clamped to this range rather than rejected.
const (
	DecMin = -90.0
	DecMax = 90.0
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StepScale is the calibration constant converting motor steps to declination
// degrees. Position is dead-reckoned from step counts, so the scale is fixed
// for the life of a session.
type StepScale float64

// NewStepScale derives the scale from motor full steps per revolution, the
// driver microstep factor and the gear reduction between motor and axis.
func NewStepScale(fullSteps, microsteps int, gearRatio float64) StepScale {
	return StepScale(float64(fullSteps) * float64(microsteps) * gearRatio / 360.0)
}

// Steps converts degrees to the nearest absolute step count.
func (s StepScale) Steps(deg float64) int64 {
	return int64(math.Round(deg * float64(s)))
}

// Degrees converts an absolute step count back to degrees.
func (s StepScale) Degrees(steps int64) float64 {
	return float64(steps) / float64(s)
}

// FormatDec renders a declination in the LX200 wire form "+DD*MM:SS".
// The input is clamped to the travel range before decomposition; rounding
// carries seconds into minutes and minutes into degrees.
func FormatDec(deg float64) string {
	deg = Clamp(deg, DecMin, DecMax)
	sign := "+"
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	d := int(deg)
	rem := (deg - float64(d)) * 60.0
	m := int(rem)
	sec := int(math.Round((rem - float64(m)) * 60.0))
	if sec == 60 {
		sec = 0
		m++
	}
	if m == 60 {
		m = 0
		d++
	}
	return fmt.Sprintf("%s%02d*%02d:%02d", sign, d, m, sec)
}

// ParseDec parses a declination string of the form "[+|-]DD*MM[:SS]".
// The degree separator may be '*' or the degree glyph. Seconds default to
// zero when omitted. A successfully parsed value is clamped to the travel
// range; only malformed fields produce an error.
func ParseDec(text string) (float64, error) {
	s := strings.TrimSpace(text)
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1.0
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	s = strings.ReplaceAll(s, "°", "*")

	degStr, rest, ok := strings.Cut(s, "*")
	if !ok {
		return 0, fmt.Errorf("coords: missing degree separator in %q", text)
	}
	d, err := strconv.Atoi(strings.TrimSpace(degStr))
	if err != nil {
		return 0, fmt.Errorf("coords: bad degrees in %q: %w", text, err)
	}

	minStr, secStr, hasSec := strings.Cut(rest, ":")
	m, err := strconv.Atoi(strings.TrimSpace(minStr))
	if err != nil {
		return 0, fmt.Errorf("coords: bad minutes in %q: %w", text, err)
	}
	sec := 0
	if hasSec {
		sec, err = strconv.Atoi(strings.TrimSpace(secStr))
		if err != nil {
			return 0, fmt.Errorf("coords: bad seconds in %q: %w", text, err)
		}
	}

	deg := sign * (float64(d) + float64(m)/60.0 + float64(sec)/3600.0)
	return Clamp(deg, DecMin, DecMax), nil
}
