package agent

import (
	"math"

	"github.com/ava5627/oort-ai/internal/broadcast"
	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/control"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/radar"
	"github.com/ava5627/oort-ai/internal/track"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

const (
	// reassociateRadius is how close an observation must be to the belief to
	// update it rather than replace it.
	reassociateRadius = 100.0
	// seekerSwath is the beam footprint held on the target.
	seekerSwath = 100.0
	// cueMaxAge is how many ticks a radio cue stays usable.
	cueMaxAge = 60
	// boostCone is the largest heading error off the sight line at which an
	// interceptor boosts.
	boostCone = math.Pi / 4
)

// Interceptor is the guided-munition role: it homes on its own seeker
// contact, falls back to the latest radio cue, and flies proportional
// navigation until inside the detonation radius.
type Interceptor struct {
	deps
	trackCfg  track.Config
	pn        guidance.PNConfig
	scheduler *radar.Scheduler
	mailbox   *broadcast.Mailbox
	boost     *control.BoostController

	target      *track.Target
	boostBonus  float64
	rangeMargin float64
	detonated   bool
	// rescanned is the search arc swept since the seeker lost the target.
	rescanned float64
}

func newInterceptor(d deps) *Interceptor {
	return &Interceptor{
		deps:        d,
		trackCfg:    track.ConfigFromTuning(d.tuning),
		pn:          guidance.PNConfigFromTuning(d.tuning),
		scheduler:   radar.NewScheduler(radar.ConfigFromTuning(d.tuning)),
		mailbox:     broadcast.NewMailbox(cueMaxAge),
		boost:       control.BoostControllerFromTuning(d.tuning),
		boostBonus:  d.tuning.GetBoostForwardBonus(),
		rangeMargin: d.tuning.GetTrackRangeMargin(),
	}
}

// Name implements Role.
func (m *Interceptor) Name() string { return "interceptor" }

// Target returns the current belief, if any.
func (m *Interceptor) Target() *track.Target { return m.target }

// Tick implements Role.
func (m *Interceptor) Tick(in Input) Command {
	cmd := Command{}
	if in.Radio != nil {
		m.mailbox.Poll(in.Radio, in.Tick)
	}

	c := in.Contact
	if c != nil && (c.Class.IsGuidedMunition() || isFriendly(c, friendlies(in.Frames))) {
		c = nil
	}
	switch {
	case c != nil:
		m.associate(c.Position, c.Velocity, c.Class, in.Tick)
		m.scheduler.Point(in.Own.Position, m.target.Position, seekerSwath, m.rangeMargin)
	case m.cue(in.Tick):
		m.scheduler.Point(in.Own.Position, m.target.Position, seekerSwath, m.rangeMargin)
	case m.target != nil:
		m.target.Coast()
		switch {
		case m.scheduler.Mode() != radar.ModeTrack && m.rescanned >= 2*math.Pi-1e-9:
			m.logf("no reacquisition of %s after a full sweep, dropping", m.target.ID)
			m.target = nil
		case m.scheduler.Mode() != radar.ModeTrack:
			m.rescanned += m.scheduler.SearchWidth()
			m.scheduler.Rotate()
		case m.scheduler.Missed():
			m.rescanned = 0
			m.logf("seeker lost %s, coasting", m.target.ID)
		default:
			m.scheduler.Point(in.Own.Position, m.target.Position, seekerSwath, m.rangeMargin)
		}
	}

	if m.target == nil {
		m.scheduler.Rotate()
		env := m.envelope()
		cmd.Accel = vecmath.Polar(in.Own.Heading, env.Forward)
		cmd.Boost = m.boost.Request(false)
	} else {
		m.pursue(in, &cmd)
	}
	cmd.Radar = m.scheduler.Aim()
	cmd.Mode = m.scheduler.Mode()
	return cmd
}

// cue takes a radio message that arrived this tick as a position fix. Older
// messages have already been folded in. A cue is another ship's belief, so
// it reseeds rather than updates and never feeds derivative estimates.
func (m *Interceptor) cue(now int64) bool {
	msg, ok := m.mailbox.Latest(now)
	if !ok || m.mailbox.Age(now) != 0 {
		return false
	}
	pos, vel := msg.Position(), msg.Velocity()
	if m.target != nil && m.target.Range(pos) < reassociateRadius {
		m.target.Reseed(pos, vel, m.target.Class, now)
		return true
	}
	m.retarget(pos, vel, capability.Unknown, now)
	return true
}

// associate folds a seeker contact into the belief. A belief seeded from a
// cue has no class yet and is reseeded with the seeker's; otherwise only a
// contact passing SanityCheck updates it, and anything else starts over.
func (m *Interceptor) associate(pos, vel vecmath.Vec, class capability.Class, now int64) {
	switch {
	case m.target == nil || m.target.Range(pos) >= reassociateRadius:
		m.retarget(pos, vel, class, now)
	case m.target.Class == capability.Unknown:
		m.target.Reseed(pos, vel, class, now)
		m.logf("seeker classified %s as %s", m.target.ID, class)
	case m.target.SanityCheck(pos, vel, class, now):
		m.target.Update(pos, vel, now)
	default:
		m.logf("contact failed sanity check against %s, retargeting", m.target.ID)
		m.retarget(pos, vel, class, now)
	}
}

func (m *Interceptor) retarget(pos, vel vecmath.Vec, class capability.Class, now int64) {
	m.target = track.New(m.trackCfg, pos, vel, class, now)
	m.logf("homing on %s %s", class, m.target.ID)
}

func (m *Interceptor) pursue(in Input, cmd *Command) {
	t := m.target
	dp := vecmath.Sub(t.Position, in.Own.Position)
	dv := vecmath.Sub(t.Velocity, in.Own.Velocity)
	p := guidance.ProportionalNavigation(dp, dv, t.Acceleration, m.table.DetonationRadius(t.Class), m.pn)

	env := m.envelope()
	cmd.Boost = m.boost.Request(math.Abs(vecmath.AngleDiff(in.Own.Heading, p.LOS)) < boostCone)
	if cmd.Boost {
		env = env.WithForwardBonus(m.boostBonus)
	}
	cmd.Accel = guidance.ClampAcceleration(p.Accel, in.Own.Heading, env)
	cmd.Torque = control.TurnTo(p.Heading, in.Own.Heading, in.Own.AngularVelocity, env.Angular)
	cmd.LOSRate = p.LOSRate
	cmd.Detonate = p.Detonate
	if p.Detonate && !m.detonated {
		m.detonated = true
		m.logf("detonating on %s at %.1f m", t.ID, p.Range)
	}
	cmd.Primary = &Belief{ID: t.ID, Position: t.Position, Velocity: t.Velocity}
}

var _ Role = (*Interceptor)(nil)
