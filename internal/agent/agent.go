// Package agent wires the estimation and guidance pipeline into per-class
// roles. An Agent picks its role once from the spawn class and then runs one
// Tick per simulation step: estimator update, guidance solve, then radar
// re-aim.
package agent

import (
	"fmt"
	"math"

	"github.com/ava5627/oort-ai/internal/broadcast"
	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/monitoring"
	"github.com/ava5627/oort-ai/internal/radar"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Contact is one sensor observation.
type Contact struct {
	Position vecmath.Vec
	Velocity vecmath.Vec
	// Confidence is the signal quality in dB; meaningful only when
	// HasConfidence is set.
	Confidence    float64
	HasConfidence bool
	Class         capability.Class
}

// Input is everything an agent sees in one tick.
type Input struct {
	Tick int64
	Own  guidance.State
	// Contact is nil when nothing is inside the beam footprint.
	Contact *Contact
	// Radio delivers track messages; may be nil.
	Radio broadcast.Receiver
	// Frames holds self-identification frames heard this tick.
	Frames [][]byte
	// Reload holds ticks until each weapon can fire; missing entries are
	// ready.
	Reload []int
}

func (in Input) ready(weapon int) bool {
	return weapon >= len(in.Reload) || in.Reload[weapon] <= 0
}

// WeaponOrder is the command for one weapon mount.
type WeaponOrder struct {
	Index int
	// Heading is the world-frame aim for turrets.
	Heading float64
	Fire    bool
	// TargetID names the belief the weapon is engaging.
	TargetID string
}

// Belief summarises the primary target for recording.
type Belief struct {
	ID       string
	Position vecmath.Vec
	Velocity vecmath.Vec
}

// Command is the actuation output of one tick.
type Command struct {
	Accel    vecmath.Vec
	Torque   float64
	Radar    radar.Aim
	Mode     radar.Mode
	Weapons  []WeaponOrder
	Boost    bool
	Detonate bool
	// Send holds track messages to broadcast.
	Send []broadcast.TrackMessage
	// SelfID is this agent's self-identification frame, if it announces.
	SelfID []byte
	// Primary is the belief driving guidance this tick, if any.
	Primary *Belief
	// LOSRate is the pursuit sight-line rate for interceptors.
	LOSRate float64
}

// Role is one behaviour variant.
type Role interface {
	Name() string
	Tick(in Input) Command
}

// Agent is a spawned vehicle with a fixed role.
type Agent struct {
	Class capability.Class
	role  Role
}

// New builds the agent for class using tuning values. Fighters fly a
// Gunship, frigates and cruisers a Battery, missiles and torpedoes an
// Interceptor.
func New(class capability.Class, cfg *config.TuningConfig) (*Agent, error) {
	if cfg == nil {
		cfg = config.DefaultTuningConfig()
	}
	deps := newDeps(class, cfg)
	var role Role
	switch class {
	case capability.Fighter:
		role = newGunship(deps)
	case capability.Frigate, capability.Cruiser:
		role = newBattery(deps)
	case capability.Missile, capability.Torpedo:
		role = newInterceptor(deps)
	default:
		return nil, fmt.Errorf("no role for class %s", class)
	}
	monitoring.Logf("agent: spawned %s as %s", class, role.Name())
	return &Agent{Class: class, role: role}, nil
}

// Role returns the role name.
func (a *Agent) Role() string { return a.role.Name() }

// Tick runs one step. Non-finite actuator values are zeroed.
func (a *Agent) Tick(in Input) Command {
	cmd := a.role.Tick(in)
	if !vecmath.IsFinite(cmd.Accel) {
		monitoring.Logf("agent: %s dropped non-finite acceleration", a.role.Name())
		cmd.Accel = vecmath.Vec{}
	}
	if math.IsNaN(cmd.Torque) || math.IsInf(cmd.Torque, 0) {
		cmd.Torque = 0
	}
	return cmd
}

// deps bundles what every role is built from.
type deps struct {
	class  capability.Class
	tuning *config.TuningConfig
	table  *capability.Table
	logf   func(format string, v ...interface{})
}

func newDeps(class capability.Class, cfg *config.TuningConfig) deps {
	return deps{class: class, tuning: cfg, table: capability.Default(), logf: monitoring.Tagged(class.String())}
}

func (d deps) envelope() capability.Envelope { return d.table.Envelope(d.class) }

// friendlies decodes self-id frames, skipping corrupt ones.
func friendlies(frames [][]byte) []broadcast.SelfID {
	var out []broadcast.SelfID
	for _, f := range frames {
		id, ok := broadcast.DecodeSelfID(f)
		if !ok {
			monitoring.Logf("agent: ignoring corrupt self-id frame (%d bytes)", len(f))
			continue
		}
		out = append(out, id)
	}
	return out
}

// friendlyRadius is how close a contact must be to an announced friendly
// position to be taken for it.
const friendlyRadius = 50.0

func isFriendly(c *Contact, ids []broadcast.SelfID) bool {
	for _, id := range ids {
		if id.Class == c.Class && vecmath.Distance(id.Position, c.Position) < friendlyRadius {
			return true
		}
	}
	return false
}

func selfID(class capability.Class, own guidance.State) []byte {
	frame := broadcast.EncodeSelfID(broadcast.SelfID{Class: class, Position: own.Position, Heading: own.Heading})
	return frame[:]
}
