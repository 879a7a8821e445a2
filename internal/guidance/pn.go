package guidance

import (
	"math"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// minRange below which line-of-sight geometry is treated as degenerate.
const minRange = 1e-6

// PNConfig holds proportional-navigation parameters.
type PNConfig struct {
	Gain   float64 // navigation constant N
	Thrust float64 // forward acceleration along the line of sight
	// Augmented adds N/2 times the target acceleration normal to the line
	// of sight to the lateral command.
	Augmented bool
	// FinalApproachDistance is the range inside which heading tracks the
	// raw line of sight rather than the commanded acceleration.
	FinalApproachDistance float64
}

// PNConfigFromTuning builds a PNConfig from tuning values.
func PNConfigFromTuning(cfg *config.TuningConfig) PNConfig {
	return PNConfig{
		Gain:                  cfg.GetPNGain(),
		Thrust:                cfg.GetPNThrust(),
		Augmented:             cfg.GetPNAugmented(),
		FinalApproachDistance: cfg.GetFinalApproachDistance(),
	}
}

// Pursuit is the proportional-navigation command for one tick.
type Pursuit struct {
	// Accel is the desired world-frame acceleration, not yet clamped.
	Accel vecmath.Vec
	// Lateral is the command normal to the line of sight, positive to the
	// left (counter-clockwise).
	Lateral float64
	// Heading is where the vehicle should point.
	Heading float64

	LOS          float64
	LOSRate      float64 // positive when the sight line turns clockwise
	ClosingSpeed float64 // positive when range is decreasing
	Range        float64

	FinalApproach bool
	Detonate      bool
}

// ProportionalNavigation computes the pursuit command from the target's
// position dp and velocity dv relative to the interceptor, and the target's
// estimated acceleration targetAcc.
//
// The line-of-sight rate is (dv ∧ dp)/|dp|² and the lateral command is
// -N·Vc·losRate, which turns the interceptor into the sight line's rotation
// and drives the rate toward zero.
func ProportionalNavigation(dp, dv, targetAcc vecmath.Vec, detonationRadius float64, cfg PNConfig) Pursuit {
	rng := vecmath.Length(dp)
	if !vecmath.IsFinite(dp) || !vecmath.IsFinite(dv) {
		return Pursuit{}
	}
	los := vecmath.Angle(dp)
	if rng < minRange {
		return Pursuit{
			Accel:         vecmath.Polar(los, cfg.Thrust),
			Heading:       los,
			LOS:           los,
			FinalApproach: true,
			Detonate:      true,
		}
	}

	losRate := vecmath.Wedge(dv, dp) / (rng * rng)
	closing := -vecmath.Dot(dp, dv) / rng

	lateral := -cfg.Gain * closing * losRate
	if cfg.Augmented && vecmath.IsFinite(targetAcc) {
		normal := vecmath.Polar(los+math.Pi/2, 1)
		lateral += cfg.Gain / 2 * vecmath.Dot(targetAcc, normal)
	}
	if math.IsNaN(lateral) || math.IsInf(lateral, 0) {
		lateral = 0
	}

	accel := vecmath.Rotate(vecmath.Vec{X: cfg.Thrust, Y: lateral}, los)

	p := Pursuit{
		Accel:        accel,
		Lateral:      lateral,
		LOS:          los,
		LOSRate:      losRate,
		ClosingSpeed: closing,
		Range:        rng,
		Detonate:     rng < detonationRadius,
	}
	if rng < cfg.FinalApproachDistance || vecmath.Length(accel) == 0 {
		p.FinalApproach = rng < cfg.FinalApproachDistance
		p.Heading = los
	} else {
		p.Heading = vecmath.Angle(accel)
	}
	return p
}

// ClampAcceleration scales the world-frame acceleration a so that, seen in
// the body frame of a vehicle pointing along heading, it fits inside env.
// Direction is preserved except that an axis with no capability (a vehicle
// that cannot reverse) is dropped. Non-finite input yields zero.
func ClampAcceleration(a vecmath.Vec, heading float64, env capability.Envelope) vecmath.Vec {
	if !vecmath.IsFinite(a) {
		return vecmath.Vec{}
	}
	body := vecmath.Rotate(a, -heading)
	if body.X < 0 && env.Backward <= 0 || body.X > 0 && env.Forward <= 0 {
		body.X = 0
	}
	if env.Lateral <= 0 {
		body.Y = 0
	}
	scale := 1.0
	limit := func(component, max float64) {
		c := math.Abs(component)
		if c == 0 {
			return
		}
		if s := max / c; s < scale {
			scale = s
		}
	}
	if body.X > 0 {
		limit(body.X, env.Forward)
	} else {
		limit(body.X, env.Backward)
	}
	limit(body.Y, env.Lateral)
	return vecmath.Rotate(vecmath.Scale(scale, body), heading)
}

// ClampTorque limits a torque command to ±env.Angular.
func ClampTorque(torque float64, env capability.Envelope) float64 {
	if math.IsNaN(torque) {
		return 0
	}
	return math.Max(-env.Angular, math.Min(env.Angular, torque))
}
