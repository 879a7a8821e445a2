package guidance

import (
	"math"
	"testing"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zero = vecmath.Vec{}

func TestSolveLeadStationaryTarget(t *testing.T) {
	t.Parallel()
	cfg := DefaultLeadConfig()
	sol := SolveLead(vecmath.Vec{X: 1000}, zero, zero, zero, 1000, cfg)
	require.True(t, sol.Converged)
	assert.False(t, sol.Fallback)
	assert.Less(t, sol.Iterations, 100)
	assert.InDelta(t, 1000.0, sol.AimPoint.X, cfg.Tolerance)
	assert.InDelta(t, 0.0, sol.AimPoint.Y, cfg.Tolerance)
	assert.InDelta(t, 1.0, sol.TimeOfFlight, 1e-6)
}

func TestSolveLeadCrossingTarget(t *testing.T) {
	t.Parallel()
	cfg := DefaultLeadConfig()
	dv := vecmath.Vec{Y: 100}
	sol := SolveLead(vecmath.Vec{X: 1000}, dv, zero, zero, 1000, cfg)
	require.True(t, sol.Converged)
	// The round arrives where the target will be after the flight time.
	assert.InDelta(t, 1000.0, sol.AimPoint.X, 1e-9)
	assert.InDelta(t, 100*sol.TimeOfFlight, sol.AimPoint.Y, 0.01)
	assert.Greater(t, sol.AimPoint.Y, 100.0)
}

func TestSolveLeadUsesHigherDerivatives(t *testing.T) {
	t.Parallel()
	cfg := DefaultLeadConfig()
	dp := vecmath.Vec{X: 2000}
	plain := SolveLead(dp, zero, zero, zero, 1000, cfg)
	accel := SolveLead(dp, zero, vecmath.Vec{Y: 10}, zero, 1000, cfg)
	jerk := SolveLead(dp, zero, zero, vecmath.Vec{Y: 10}, 1000, cfg)

	assert.InDelta(t, 0.0, plain.AimPoint.Y, 1e-9)
	// ½·a·t² and ⅙·j·t³ at t≈2s
	assert.InDelta(t, 0.5*10*accel.TimeOfFlight*accel.TimeOfFlight, accel.AimPoint.Y, 0.01)
	assert.InDelta(t, 10*math.Pow(jerk.TimeOfFlight, 3)/6, jerk.AimPoint.Y, 0.01)
}

func TestSolveLeadRecedingFasterThanProjectile(t *testing.T) {
	t.Parallel()
	dp := vecmath.Vec{X: 1000}
	sol := SolveLead(dp, vecmath.Vec{X: 2000}, zero, zero, 1000, DefaultLeadConfig())
	assert.True(t, sol.Fallback)
	assert.False(t, sol.Converged)
	assert.True(t, vecmath.IsFinite(sol.AimPoint))
	assert.Equal(t, dp, sol.AimPoint)
}

func TestSolveLeadDegenerateInputs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		dp    vecmath.Vec
		dv    vecmath.Vec
		speed float64
		want  vecmath.Vec
	}{
		{"zero speed", vecmath.Vec{X: 10, Y: 5}, zero, 0, vecmath.Vec{X: 10, Y: 5}},
		{"negative speed", vecmath.Vec{X: 10}, zero, -5, vecmath.Vec{X: 10}},
		{"nan position", vecmath.Vec{X: math.NaN()}, zero, 1000, zero},
		{"infinite velocity", vecmath.Vec{X: 10}, vecmath.Vec{Y: math.Inf(1)}, 1000, vecmath.Vec{X: 10}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sol := SolveLead(tt.dp, tt.dv, zero, zero, tt.speed, DefaultLeadConfig())
			assert.True(t, sol.Fallback)
			assert.Equal(t, tt.want, sol.AimPoint)
		})
	}
}

func TestShouldFire(t *testing.T) {
	t.Parallel()
	aim := vecmath.Vec{X: 1000}
	assert.True(t, ShouldFire(0, aim, 7))
	// 0.01 rad at 1000 m misses by 10 m
	assert.False(t, ShouldFire(0.01, aim, 7))
	assert.True(t, ShouldFire(0.005, aim, 7))
	assert.InDelta(t, 10.0, MissDistance(-0.01, aim), 1e-9)
	assert.False(t, ShouldFire(0, vecmath.Vec{X: math.NaN()}, 7))
}

func TestPNTurnsIntoSightLineRotation(t *testing.T) {
	t.Parallel()
	cfg := PNConfigFromTuning(config.DefaultTuningConfig())
	// Target ahead, closing and crossing from left to right.
	dp := vecmath.Vec{X: 1000}
	dv := vecmath.Vec{X: -200, Y: -100}
	p := ProportionalNavigation(dp, dv, zero, 100, cfg)

	require.Greater(t, p.LOSRate, 0.0)
	assert.InDelta(t, 200.0, p.ClosingSpeed, 1e-9)
	assert.Less(t, p.Lateral, 0.0, "accelerate to the right, with the target")
	assert.Less(t, p.Accel.Y, 0.0)
	assert.False(t, p.Detonate)
	assert.False(t, p.FinalApproach)
	assert.InDelta(t, vecmath.Angle(p.Accel), p.Heading, 1e-12)

	// Applying the command reduces the sight-line rate.
	const dt = 1.0 / 60
	next := ProportionalNavigation(
		vecmath.Add(dp, vecmath.Scale(dt, dv)),
		vecmath.Sub(dv, vecmath.Scale(dt, p.Accel)),
		zero, 100, cfg)
	assert.Less(t, math.Abs(next.LOSRate), math.Abs(p.LOSRate))
}

func TestPNMirrorSymmetry(t *testing.T) {
	t.Parallel()
	cfg := PNConfigFromTuning(config.DefaultTuningConfig())
	left := ProportionalNavigation(vecmath.Vec{X: 1000}, vecmath.Vec{X: -200, Y: 100}, zero, 100, cfg)
	right := ProportionalNavigation(vecmath.Vec{X: 1000}, vecmath.Vec{X: -200, Y: -100}, zero, 100, cfg)
	assert.InDelta(t, -left.LOSRate, right.LOSRate, 1e-12)
	assert.InDelta(t, -left.Lateral, right.Lateral, 1e-9)
}

func TestPNAugmentedAddsTargetManeuver(t *testing.T) {
	t.Parallel()
	cfg := PNConfigFromTuning(config.DefaultTuningConfig())
	cfg.Augmented = true
	dp := vecmath.Vec{X: 1000}
	plain := ProportionalNavigation(dp, zero, zero, 100, cfg)
	aug := ProportionalNavigation(dp, zero, vecmath.Vec{Y: 20}, 100, cfg)
	assert.InDelta(t, 0.0, plain.Lateral, 1e-12)
	assert.InDelta(t, cfg.Gain/2*20, aug.Lateral, 1e-9)
}

func TestPNFinalApproachTracksLineOfSight(t *testing.T) {
	t.Parallel()
	cfg := PNConfigFromTuning(config.DefaultTuningConfig())
	dp := vecmath.Vec{X: 200, Y: 200}
	p := ProportionalNavigation(dp, vecmath.Vec{X: -50, Y: 10}, zero, 100, cfg)
	assert.True(t, p.FinalApproach)
	assert.InDelta(t, math.Pi/4, p.Heading, 1e-12)
	assert.False(t, p.Detonate)

	near := ProportionalNavigation(vecmath.Vec{X: 50}, zero, zero, 100, cfg)
	assert.True(t, near.Detonate)
}

func TestPNDegenerateRange(t *testing.T) {
	t.Parallel()
	cfg := PNConfigFromTuning(config.DefaultTuningConfig())
	p := ProportionalNavigation(zero, vecmath.Vec{X: 5}, zero, 100, cfg)
	assert.True(t, p.Detonate)
	assert.True(t, vecmath.IsFinite(p.Accel))
	assert.False(t, math.IsNaN(p.LOSRate))

	bad := ProportionalNavigation(vecmath.Vec{X: math.Inf(1)}, zero, zero, 100, cfg)
	assert.Equal(t, Pursuit{}, bad)
}

func TestClampAcceleration(t *testing.T) {
	t.Parallel()
	env := capability.Envelope{Forward: 60, Backward: 30, Lateral: 30, Angular: 2 * math.Pi}
	tests := []struct {
		name    string
		accel   vecmath.Vec
		heading float64
		want    vecmath.Vec
	}{
		{"inside", vecmath.Vec{X: 10, Y: 5}, 0, vecmath.Vec{X: 10, Y: 5}},
		{"forward limited", vecmath.Vec{X: 120}, 0, vecmath.Vec{X: 60}},
		{"backward limited", vecmath.Vec{X: -90}, 0, vecmath.Vec{X: -30}},
		{"lateral limited keeps direction", vecmath.Vec{X: 30, Y: 60}, 0, vecmath.Vec{X: 15, Y: 30}},
		{"rotated frame", vecmath.Vec{Y: 120}, math.Pi / 2, vecmath.Vec{Y: 60}},
		{"non-finite", vecmath.Vec{X: math.NaN()}, 0, zero},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ClampAcceleration(tt.accel, tt.heading, env)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestClampAccelerationNoReverse(t *testing.T) {
	t.Parallel()
	env := capability.Default().Envelope(capability.Missile)
	got := ClampAcceleration(vecmath.Vec{X: -50, Y: 40}, 0, env)
	assert.InDelta(t, 0.0, got.X, 1e-9)
	assert.InDelta(t, 40.0, got.Y, 1e-9)
}

func TestClampTorque(t *testing.T) {
	t.Parallel()
	env := capability.Envelope{Angular: 1}
	assert.Equal(t, 1.0, ClampTorque(5, env))
	assert.Equal(t, -1.0, ClampTorque(-5, env))
	assert.Equal(t, 0.5, ClampTorque(0.5, env))
	assert.Equal(t, 0.0, ClampTorque(math.NaN(), env))
}
