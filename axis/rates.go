package axis

// Rate identifies one of the four LX200 manual slew rates by its wire
// mnemonic letter.
type Rate byte

const (
	RateGuide  Rate = 'G'
	RateCenter Rate = 'C'
	RateMedium Rate = 'M'
	RateSlow   Rate = 'S'
)

// RateTable maps the manual slew rates to angular speeds in deg/s. Each
// entry is independently configurable; the defaults increase monotonically
// from Slow to Guide.
type RateTable struct {
	Guide  float64
	Center float64
	Medium float64
	Slow   float64
}

// DefaultRates returns the built-in rate table.
func DefaultRates() RateTable {
	return RateTable{
		Guide:  2.0,
		Center: 1.0,
		Medium: 0.5,
		Slow:   0.1,
	}
}

// Speed looks up the angular speed for a rate mnemonic.
func (t RateTable) Speed(r Rate) (float64, bool) {
	switch r {
	case RateGuide:
		return t.Guide, true
	case RateCenter:
		return t.Center, true
	case RateMedium:
		return t.Medium, true
	case RateSlow:
		return t.Slow, true
	}
	return 0, false
}
