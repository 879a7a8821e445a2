package control

import "github.com/ava5627/oort-ai/internal/config"

// BoostController owns the speed-boost ability timer. Once activated the
// boost stays on for ActiveTicks and cannot be re-activated until
// CooldownTicks have elapsed since activation.
type BoostController struct {
	ActiveTicks   int
	CooldownTicks int

	elapsed int
	running bool
}

// NewBoostController creates a controller with the given timing.
func NewBoostController(activeTicks, cooldownTicks int) *BoostController {
	return &BoostController{ActiveTicks: activeTicks, CooldownTicks: cooldownTicks}
}

// BoostControllerFromTuning builds a BoostController from tuning values.
func BoostControllerFromTuning(cfg *config.TuningConfig) *BoostController {
	return NewBoostController(cfg.GetBoostActiveTicks(), cfg.GetBoostCooldownTicks())
}

// Activate starts the boost if it is ready. It reports whether a new
// activation happened.
func (b *BoostController) Activate() bool {
	if b.running {
		return false
	}
	b.running = true
	b.elapsed = 0
	return true
}

// Tick advances the timer by one simulation tick.
func (b *BoostController) Tick() {
	if !b.running {
		return
	}
	b.elapsed++
	if b.elapsed >= b.CooldownTicks {
		b.running = false
		b.elapsed = 0
	}
}

// IsActive reports whether the boost is currently firing.
func (b *BoostController) IsActive() bool {
	return b.running && b.elapsed < b.ActiveTicks
}

// Ready reports whether Activate would succeed.
func (b *BoostController) Ready() bool {
	return !b.running
}

// Request activates the boost when cond holds and then advances the timer;
// this is the once-per-tick entry point. It returns IsActive after the step.
func (b *BoostController) Request(cond bool) bool {
	if cond {
		b.Activate()
	}
	active := b.IsActive()
	b.Tick()
	return active
}
