// Package control holds the low-level actuator controllers: a PID loop for
// converting an angular error into torque, a time-optimal heading controller,
// and the boost ability timer.
package control

import "math"

// PID is a proportional-integral-derivative controller over a scalar error
// with integral and output clamping.
type PID struct {
	P, I, D       float64
	IntegralLimit float64
	OutputLimit   float64
	// DeltaTime is the update period in seconds.
	DeltaTime float64

	integral  float64
	lastError float64
	hasLast   bool
}

// NewPID creates a controller. integralLimit and outputLimit are symmetric
// magnitudes.
func NewPID(p, i, d, integralLimit, outputLimit, deltaTime float64) *PID {
	return &PID{
		P:             p,
		I:             i,
		D:             d,
		IntegralLimit: integralLimit,
		OutputLimit:   outputLimit,
		DeltaTime:     deltaTime,
	}
}

// Update feeds one error sample and returns the clamped output. The first
// sample after construction or Reset contributes no derivative term.
func (c *PID) Update(err float64) float64 {
	p := c.P * err

	c.integral = clamp(c.integral+err*c.DeltaTime, -c.IntegralLimit, c.IntegralLimit)
	i := c.I * c.integral

	var derivative float64
	if c.hasLast && c.DeltaTime > 0 {
		derivative = (err - c.lastError) / c.DeltaTime
	}
	c.lastError = err
	c.hasLast = true
	d := c.D * derivative

	out := clamp(p+i+d, -c.OutputLimit, c.OutputLimit)
	if math.IsNaN(out) {
		return 0
	}
	return out
}

// Reset clears the integral and derivative history.
func (c *PID) Reset() {
	c.integral = 0
	c.lastError = 0
	c.hasLast = false
}

// Integral returns the accumulated (clamped) integral term input.
func (c *PID) Integral() float64 { return c.integral }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
