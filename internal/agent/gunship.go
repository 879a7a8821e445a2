package agent

import (
	"math"

	"github.com/ava5627/oort-ai/internal/broadcast"
	"github.com/ava5627/oort-ai/internal/control"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/kalman"
	"github.com/ava5627/oort-ai/internal/radar"
	"github.com/ava5627/oort-ai/internal/track"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// boostAlignment is how closely heading must match both the aim point and
// the target's course before a gunship boosts.
const boostAlignment = 0.1

// Gunship engages a single target with its fixed main gun, fusing contacts
// through the Kalman filter when the sensor reports confidence, and cues
// missiles by radio.
type Gunship struct {
	deps
	trackCfg  track.Config
	scheduler *radar.Scheduler
	filter    *kalman.Filter
	tentative *track.Tentative
	boost     *control.BoostController

	target        *track.Target
	tentativeConf float64
	fireTolerance float64
	boostBonus    float64
}

func newGunship(d deps) *Gunship {
	return &Gunship{
		deps:          d,
		trackCfg:      track.ConfigFromTuning(d.tuning),
		scheduler:     radar.NewScheduler(radar.ConfigFromTuning(d.tuning)),
		filter:        kalman.New(kalman.ConfigFromTuning(d.tuning)),
		tentative:     track.NewTentative(d.tuning.GetTentativeWindow()),
		boost:         control.BoostControllerFromTuning(d.tuning),
		tentativeConf: d.tuning.GetTentativeConfidence(),
		fireTolerance: d.tuning.GetFireMissTolerance(),
		boostBonus:    d.tuning.GetBoostForwardBonus(),
	}
}

// Name implements Role.
func (g *Gunship) Name() string { return "gunship" }

// Tick implements Role.
func (g *Gunship) Tick(in Input) Command {
	cmd := Command{SelfID: selfID(g.class, in.Own)}
	c := in.Contact
	if c != nil && (c.Class.IsGuidedMunition() || isFriendly(c, friendlies(in.Frames))) {
		c = nil
	}

	if c == nil {
		g.lostContact(in)
	} else if c.HasConfidence && c.Confidence < g.tentativeConf && g.target == nil {
		g.accumulate(in, c)
	} else {
		g.observe(in, c)
	}

	if g.target != nil {
		g.engage(in, &cmd)
	} else {
		cmd.Boost = g.boost.Request(false)
	}
	cmd.Radar = g.scheduler.Aim()
	cmd.Mode = g.scheduler.Mode()
	return cmd
}

func (g *Gunship) lostContact(in Input) {
	if g.scheduler.Mode() == radar.ModeSearch {
		g.scheduler.Rotate()
		g.scheduler.Save()
		return
	}
	if g.target != nil {
		g.target.Coast()
	}
	if g.scheduler.Missed() {
		if g.target != nil {
			g.logf("lost target %s", g.target.ID)
		}
		g.target = nil
		g.filter.Reset()
		g.tentative.Reset()
		return
	}
	if g.target != nil {
		g.scheduler.Track(in.Own.Position, g.target.Position)
	}
}

// accumulate averages weak contacts until the window fills, then promotes
// the average to a belief.
func (g *Gunship) accumulate(in Input, c *Contact) {
	g.tentative.Add(c.Position, c.Class)
	if g.tentative.Ready() {
		g.target = track.New(g.trackCfg, g.tentative.Average, c.Velocity, c.Class, in.Tick)
		g.tentative.Reset()
		g.scheduler.Track(in.Own.Position, g.target.Position)
		return
	}
	g.scheduler.SetAim(g.tentative.Aim(in.Own.Position))
}

func (g *Gunship) observe(in Input, c *Contact) {
	pos := c.Position
	if c.HasConfidence {
		g.filter.AddMeasurement(c.Position, c.Velocity, c.Confidence, in.Own.Position, in.Own.Velocity)
		if est, ok := g.filter.Run(in.Own.Position, in.Own.Velocity); ok {
			pos = est.Position
		}
	}

	switch {
	case g.target == nil:
		g.target = track.New(g.trackCfg, pos, c.Velocity, c.Class, in.Tick)
	case g.target.SanityCheck(pos, c.Velocity, c.Class, in.Tick):
		g.target.Update(pos, c.Velocity, in.Tick)
	default:
		g.logf("contact failed sanity check against %s, retargeting", g.target.ID)
		g.filter.Reset()
		g.target = track.New(g.trackCfg, c.Position, c.Velocity, c.Class, in.Tick)
	}

	if c.HasConfidence && g.filter.Len() > 0 {
		g.scheduler.SetAim(g.filter.PointRadar(in.Own.Position))
	} else {
		g.scheduler.Track(in.Own.Position, g.target.Position)
	}
}

func (g *Gunship) engage(in Input, cmd *Command) {
	t := g.target
	gun, _ := g.table.Weapon(g.class, 0)
	sol := t.Lead(gun, in.Own)
	if sol.Fallback {
		g.logf("no firing solution on %s, aiming at line of sight", t.ID)
	}
	aim := vecmath.Angle(sol.AimPoint)

	env := g.envelope()
	cmd.Torque = control.TurnTo(aim, in.Own.Heading, in.Own.AngularVelocity, env.Angular)

	fire := in.ready(0) && guidance.ShouldFire(in.Own.Heading, sol.AimPoint, g.fireTolerance)
	if fire {
		t.ShotsFired++
	}
	cmd.Weapons = append(cmd.Weapons, WeaponOrder{Index: 0, Heading: aim, Fire: fire, TargetID: t.ID})
	for _, w := range g.table.Weapons(g.class) {
		if !w.Ballistic() {
			cmd.Weapons = append(cmd.Weapons, WeaponOrder{
				Index: w.Index, Heading: aim, Fire: in.ready(w.Index), TargetID: t.ID,
			})
		}
	}

	aligned := math.Abs(vecmath.AngleDiff(in.Own.Heading, vecmath.Angle(t.Velocity))) < boostAlignment &&
		math.Abs(vecmath.AngleDiff(in.Own.Heading, aim)) < boostAlignment
	cmd.Boost = g.boost.Request(aligned)
	if cmd.Boost {
		env = env.WithForwardBonus(g.boostBonus)
	}

	toward := vecmath.Polar(vecmath.AngleTo(in.Own.Position, t.Position), env.Forward)
	cmd.Accel = guidance.ClampAcceleration(toward, in.Own.Heading, env)

	cmd.Send = append(cmd.Send, broadcast.NewTrackMessage(t.Position, t.Velocity))
	cmd.Primary = &Belief{ID: t.ID, Position: t.Position, Velocity: t.Velocity}
}

// Target returns the current belief, if any.
func (g *Gunship) Target() *track.Target { return g.target }

var _ Role = (*Gunship)(nil)
