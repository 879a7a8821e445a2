// Package scenario is a small point-mass engagement harness. It moves bodies
// under their commanded acceleration, answers each agent's beam with a noisy
// contact, carries radio cues and self-id frames between teammates, and
// resolves shells and detonations. It exists for replays and tests; it is
// not a faithful world simulation.
package scenario

import (
	"github.com/ava5627/oort-ai/internal/agent"
	"github.com/ava5627/oort-ai/internal/broadcast"
	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/radar"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Body is one simulated object.
type Body struct {
	ID    string
	Class capability.Class
	Team  int
	State guidance.State

	// Thrust is the world-frame acceleration of a body without an agent.
	Thrust vecmath.Vec
	// Weave flips Thrust every Weave ticks when positive.
	Weave int

	Agent *agent.Agent
	Alive bool
	Shots int

	reload  []int
	radio   *Radio
	aim     radar.Aim
	hasAim  bool
	expires int64
}

// Munition reports whether the body is a guided munition.
func (b *Body) Munition() bool { return b.Class.IsGuidedMunition() }

// Radio is a body's inbound track-message queue.
type Radio struct {
	queue []broadcast.TrackMessage
}

// Receive implements broadcast.Receiver.
func (r *Radio) Receive() (broadcast.TrackMessage, bool) {
	if len(r.queue) == 0 {
		return broadcast.TrackMessage{}, false
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, true
}

// Pending returns the number of undelivered messages.
func (r *Radio) Pending() int { return len(r.queue) }

func (r *Radio) deliver(msg broadcast.TrackMessage) {
	r.queue = append(r.queue, msg)
}

var _ broadcast.Receiver = (*Radio)(nil)

// shell is an unguided projectile in flight.
type shell struct {
	team     int
	position vecmath.Vec
	velocity vecmath.Vec
	expires  int64
}

// Record is one agent's state and intent at one tick.
type Record struct {
	Tick     int64
	BodyID   string
	Class    capability.Class
	Team     int
	Position vecmath.Vec
	Velocity vecmath.Vec
	Heading  float64
	Mode     radar.Mode

	// Belief is the primary target estimate; meaningful only when HasBelief.
	HasBelief bool
	TargetID  string
	Belief    vecmath.Vec
	// Truth is the true position of the nearest live enemy and Range the
	// distance to it; Range is zero when no enemy remains.
	Truth vecmath.Vec
	Range float64

	LOSRate  float64
	Shots    int
	Boost    bool
	Detonate bool
}

// BeliefError returns the distance between the believed and true target
// positions, or zero without a belief.
func (r Record) BeliefError() float64 {
	if !r.HasBelief || r.Range == 0 {
		return 0
	}
	return vecmath.Distance(r.Belief, r.Truth)
}
