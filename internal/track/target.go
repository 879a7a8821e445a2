// Package track maintains kinematic beliefs about sensed objects: one Target
// estimator per tracked object, Tentative accumulators for low-confidence
// contacts, and the Set that owns them.
package track

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/timeutil"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Config holds estimator parameters.
type Config struct {
	// TickLength is the simulation step in seconds.
	TickLength float64
	// DisplacementFactor is the multiple of |v|·Δt a fresh position may sit
	// from the belief before it is taken to be a different object.
	DisplacementFactor float64
	Lead               guidance.LeadConfig
	Capabilities       *capability.Table
}

// DefaultConfig returns production estimator parameters.
func DefaultConfig() Config {
	return ConfigFromTuning(config.DefaultTuningConfig())
}

// ConfigFromTuning builds a Config from tuning values and the shared
// capability table.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		TickLength:         cfg.GetTickLength(),
		DisplacementFactor: cfg.GetSanityDisplacementFactor(),
		Lead:               guidance.LeadConfigFromTuning(cfg),
		Capabilities:       capability.Default(),
	}
}

// Target is the belief about one tracked object. Jerk components always lie
// within ± the class's maximum acceleration.
type Target struct {
	ID    string
	Class capability.Class

	Position         vecmath.Vec
	Velocity         vecmath.Vec
	LastVelocity     vecmath.Vec
	Acceleration     vecmath.Vec
	LastAcceleration vecmath.Vec
	Jerk             vecmath.Vec

	// ShotsFired is owned by fire control.
	ShotsFired int

	CreatedTick    int64
	LastUpdateTick int64

	cfg Config
}

// New seeds a belief from a first observation at tick now. All derivative
// estimates start at zero.
func New(cfg Config, pos, vel vecmath.Vec, class capability.Class, now int64) *Target {
	if cfg.Capabilities == nil {
		cfg.Capabilities = capability.Default()
	}
	return &Target{
		ID:             fmt.Sprintf("tgt_%s", uuid.NewString()),
		Class:          class,
		Position:       pos,
		Velocity:       vel,
		LastVelocity:   vel,
		CreatedTick:    now,
		LastUpdateTick: now,
		cfg:            cfg,
	}
}

// elapsed returns Δt in seconds since the last update. A call on the same
// tick as the last update counts as one tick.
func (t *Target) elapsed(now int64) float64 {
	return timeutil.ElapsedSeconds(t.LastUpdateTick, now, t.cfg.TickLength)
}

func (t *Target) maxAcceleration() float64 {
	return t.cfg.Capabilities.MaxAcceleration(t.Class)
}

// SanityCheck reports whether an observation plausibly belongs to this
// object. It fails when the class differs, when the implied acceleration
// exceeds the class maximum, or when the position has moved further than
// DisplacementFactor·|vel|·Δt from the belief.
func (t *Target) SanityCheck(pos, vel vecmath.Vec, class capability.Class, now int64) bool {
	if class != t.Class {
		return false
	}
	if !vecmath.IsFinite(pos) || !vecmath.IsFinite(vel) {
		return false
	}
	dt := t.elapsed(now)
	accel := vecmath.Length(vecmath.Sub(vel, t.LastVelocity)) / dt
	if accel > t.maxAcceleration() {
		return false
	}
	displacement := vecmath.Distance(t.Position, pos)
	return displacement <= vecmath.Length(vel)*dt*t.cfg.DisplacementFactor
}

// Update folds an observation that passed SanityCheck into the belief.
// Derivatives are taken against LastVelocity before it is overwritten.
func (t *Target) Update(pos, vel vecmath.Vec, now int64) {
	dt := t.elapsed(now)
	t.Position = pos
	t.Velocity = vel
	t.LastAcceleration = t.Acceleration
	t.Acceleration = vecmath.Scale(1/dt, vecmath.Sub(vel, t.LastVelocity))
	jerk := vecmath.Scale(1/dt, vecmath.Sub(t.Acceleration, t.LastAcceleration))
	ma := t.maxAcceleration()
	t.Jerk = vecmath.Vec{X: clamp(jerk.X, ma), Y: clamp(jerk.Y, ma)}
	t.LastVelocity = vel
	t.LastUpdateTick = now
}

func clamp(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-limit, math.Min(limit, v))
}

// Reseed restarts the belief from a fresh observation that may change the
// class, keeping the ID and shot count. Derivative estimates reset to zero,
// so data that never passed SanityCheck cannot leak into them.
func (t *Target) Reseed(pos, vel vecmath.Vec, class capability.Class, now int64) {
	t.Class = class
	t.Position = pos
	t.Velocity = vel
	t.LastVelocity = vel
	t.Acceleration = vecmath.Vec{}
	t.LastAcceleration = vecmath.Vec{}
	t.Jerk = vecmath.Vec{}
	t.LastUpdateTick = now
}

// Coast extrapolates the belief one tick forward when no observation arrived.
func (t *Target) Coast() {
	dt := t.cfg.TickLength
	t.Velocity = vecmath.Add(t.Velocity, vecmath.Scale(dt, t.Acceleration))
	t.Position = vecmath.Add(t.Position, vecmath.Scale(dt, t.Velocity))
}

// Lead solves the intercept for weapon w fired by own. The aim point is
// relative to the weapon's firing point. Launchers without a projectile
// speed get the raw relative position.
func (t *Target) Lead(w capability.Weapon, own guidance.State) guidance.LeadSolution {
	origin := guidance.FiringPoint(own, w.Offset)
	dp := vecmath.Sub(t.Position, origin)
	dv := vecmath.Sub(t.Velocity, own.Velocity)
	return guidance.SolveLead(dp, dv, t.Acceleration, t.Jerk, w.ProjectileSpeed, t.cfg.Lead)
}

// Range returns the distance from p to the believed position.
func (t *Target) Range(p vecmath.Vec) float64 {
	return vecmath.Distance(p, t.Position)
}
