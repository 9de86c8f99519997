package stepgen

import "math"

// profile is a trapezoidal velocity profile: constant acceleration up to a
// cruise velocity, constant velocity, constant deceleration. Short moves
// degenerate to a triangular profile that never reaches the velocity
// ceiling.
type profile struct {
	startPos  float64
	targetPos float64
	accel     float64

	accelTime  float64
	cruiseTime float64
	totalTime  float64
	cruiseVel  float64
	direction  float64
}

func newProfile(startPos, targetPos, maxVel, accel float64) *profile {
	p := &profile{
		startPos:  startPos,
		targetPos: targetPos,
		accel:     accel,
		direction: 1,
	}
	if targetPos < startPos {
		p.direction = -1
	}

	distance := math.Abs(targetPos - startPos)
	if distance == 0 || maxVel <= 0 || accel <= 0 {
		return p
	}

	timeToMaxVel := maxVel / accel
	accelDecelDist := maxVel * timeToMaxVel
	if accelDecelDist > distance {
		// Triangular: peak velocity limited by distance.
		p.cruiseVel = math.Sqrt(accel * distance)
		p.accelTime = p.cruiseVel / accel
		p.cruiseTime = 0
	} else {
		p.cruiseVel = maxVel
		p.accelTime = timeToMaxVel
		p.cruiseTime = (distance - accelDecelDist) / maxVel
	}
	p.totalTime = 2*p.accelTime + p.cruiseTime
	return p
}

// position samples the absolute position at time t seconds from the start
// of the move.
func (p *profile) position(t float64) float64 {
	if t <= 0 {
		return p.startPos
	}
	if t >= p.totalTime {
		return p.targetPos
	}

	accelDist := 0.5 * p.accel * p.accelTime * p.accelTime
	var d float64
	switch {
	case t < p.accelTime:
		d = 0.5 * p.accel * t * t
	case t < p.accelTime+p.cruiseTime:
		d = accelDist + p.cruiseVel*(t-p.accelTime)
	default:
		dt := t - p.accelTime - p.cruiseTime
		d = accelDist + p.cruiseVel*p.cruiseTime +
			p.cruiseVel*dt - 0.5*p.accel*dt*dt
	}
	return p.startPos + p.direction*d
}

// done reports whether the move has reached its target at time t.
func (p *profile) done(t float64) bool {
	return t >= p.totalTime
}
