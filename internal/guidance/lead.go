// Package guidance holds the stateless intercept laws: the iterative
// ballistic-lead solver used by gunnery, the proportional-navigation pursuit
// law used by self-propelled interceptors, and clamping of commanded
// acceleration into a body-frame capability envelope.
//
// Every function here returns a finite result. Degenerate geometry falls back
// to the raw line of sight.
package guidance

import (
	"math"

	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// LeadConfig controls the fixed-point lead iteration.
type LeadConfig struct {
	Tolerance     float64 // convergence threshold in metres
	MaxIterations int
}

// DefaultLeadConfig returns the production lead parameters.
func DefaultLeadConfig() LeadConfig {
	return LeadConfigFromTuning(config.DefaultTuningConfig())
}

// LeadConfigFromTuning builds a LeadConfig from tuning values.
func LeadConfigFromTuning(cfg *config.TuningConfig) LeadConfig {
	return LeadConfig{
		Tolerance:     cfg.GetLeadTolerance(),
		MaxIterations: cfg.GetLeadMaxIterations(),
	}
}

// LeadSolution is the outcome of SolveLead.
type LeadSolution struct {
	// AimPoint is relative to the firing point.
	AimPoint     vecmath.Vec
	TimeOfFlight float64
	Iterations   int
	Converged    bool
	// Fallback is set when the iteration diverged or produced a non-finite
	// value and AimPoint is the raw relative position.
	Fallback bool
}

// SolveLead finds where a projectile fired now at speed must be aimed to meet
// a target whose position relative to the firing point evolves as
//
//	dp + dv·t + ½·acc·t² + ⅙·jerk·t³
//
// Starting from dp it repeatedly sets t = |guess|/speed and re-evaluates the
// expansion until successive guesses move less than cfg.Tolerance or
// cfg.MaxIterations is reached.
func SolveLead(dp, dv, acc, jerk vecmath.Vec, speed float64, cfg LeadConfig) LeadSolution {
	fallback := LeadSolution{AimPoint: dp, Fallback: true}
	if speed <= 0 || !vecmath.IsFinite(dp) {
		fallback.AimPoint = finiteOrZero(dp)
		return fallback
	}
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = 1
	}

	guess := dp
	firstStep, step := -1.0, 0.0
	var tof float64
	for i := 1; i <= cfg.MaxIterations; i++ {
		tof = vecmath.Length(guess) / speed
		next := predictRelative(dp, dv, acc, jerk, tof)
		if !vecmath.IsFinite(next) || math.IsNaN(tof) || math.IsInf(tof, 0) {
			fallback.Iterations = i
			return fallback
		}
		step = vecmath.Distance(guess, next)
		guess = next
		if firstStep < 0 {
			firstStep = step
		}
		if step < cfg.Tolerance {
			return LeadSolution{
				AimPoint:     guess,
				TimeOfFlight: vecmath.Length(guess) / speed,
				Iterations:   i,
				Converged:    true,
			}
		}
	}

	// Out of iterations. A receding target that outruns the projectile makes
	// every step larger than the last.
	if step > firstStep {
		fallback.Iterations = cfg.MaxIterations
		return fallback
	}
	return LeadSolution{
		AimPoint:     guess,
		TimeOfFlight: vecmath.Length(guess) / speed,
		Iterations:   cfg.MaxIterations,
	}
}

func predictRelative(dp, dv, acc, jerk vecmath.Vec, t float64) vecmath.Vec {
	p := vecmath.Add(dp, vecmath.Scale(t, dv))
	p = vecmath.Add(p, vecmath.Scale(0.5*t*t, acc))
	return vecmath.Add(p, vecmath.Scale(t*t*t/6, jerk))
}

func finiteOrZero(v vecmath.Vec) vecmath.Vec {
	if vecmath.IsFinite(v) {
		return v
	}
	return vecmath.Vec{}
}

// MissDistance is the lateral distance by which a round fired along heading
// passes the aim point.
func MissDistance(heading float64, aim vecmath.Vec) float64 {
	return math.Abs(vecmath.AngleDiff(heading, vecmath.Angle(aim))) * vecmath.Length(aim)
}

// ShouldFire reports whether a round fired along heading passes within
// tolerance of the aim point.
func ShouldFire(heading float64, aim vecmath.Vec, tolerance float64) bool {
	if !vecmath.IsFinite(aim) {
		return false
	}
	return MissDistance(heading, aim) < tolerance
}

// State is an agent's own kinematic snapshot for the current tick.
type State struct {
	Position        vecmath.Vec
	Velocity        vecmath.Vec
	Heading         float64
	AngularVelocity float64
}

// FiringPoint returns the world position of a weapon mounted at the
// body-frame offset on a vehicle in state own.
func FiringPoint(own State, offset vecmath.Vec) vecmath.Vec {
	return vecmath.Add(own.Position, vecmath.Rotate(offset, own.Heading))
}
