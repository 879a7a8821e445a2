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

// batteryMode is the Battery's sensor plan.
type batteryMode int

const (
	findTargets batteryMode = iota
	updateTargets
)

func (m batteryMode) String() string {
	if m == updateTargets {
		return "update"
	}
	return "find"
}

// maxBatteryTargets is how many targets a battery collects before it stops
// searching and cycles through them.
const maxBatteryTargets = 5

// Battery is the capital-ship role: it sweeps for targets into a Set, then
// round-robins the beam over them, laying the main gun with a PID loop,
// slewing turrets onto leads and cueing missiles by radio.
type Battery struct {
	deps
	scheduler *radar.Scheduler
	targets   *track.Set
	tentative *track.Tentative
	pid       *control.PID

	mode       batteryMode
	sweepStart int
	// resumed is set when the battery drops back to find after a pass over
	// a partial set; one sweep step is then enough to return to update.
	resumed       bool
	tentativeConf float64
	fireTolerance float64
}

func newBattery(d deps) *Battery {
	env := d.envelope()
	return &Battery{
		deps:          d,
		scheduler:     radar.NewScheduler(radar.ConfigFromTuning(d.tuning)),
		targets:       track.NewSet(track.ConfigFromTuning(d.tuning)),
		tentative:     track.NewTentative(d.tuning.GetTentativeWindow()),
		pid:           control.NewPID(12, 0, 6, env.Angular, env.Angular, d.tuning.GetTickLength()),
		tentativeConf: d.tuning.GetTentativeConfidence(),
		fireTolerance: d.tuning.GetFireMissTolerance(),
	}
}

// Name implements Role.
func (b *Battery) Name() string { return "battery" }

// Targets exposes the tracked set.
func (b *Battery) Targets() *track.Set { return b.targets }

// Tick implements Role.
func (b *Battery) Tick(in Input) Command {
	cmd := Command{SelfID: selfID(b.class, in.Own)}
	ids := friendlies(in.Frames)
	c := in.Contact
	if c != nil && isFriendly(c, ids) {
		c = nil
	}

	switch b.mode {
	case findTargets:
		b.find(in, c)
	case updateTargets:
		b.update(in, c)
	}
	b.targets.Coast(in.Tick)
	b.fire(in, &cmd)

	cmd.Radar = b.scheduler.Aim()
	cmd.Mode = b.scheduler.Mode()
	return cmd
}

func (b *Battery) find(in Input, c *Contact) {
	switch {
	case c == nil || c.Class.IsGuidedMunition():
		b.scheduler.Restore()
		b.scheduler.Rotate()
	case c.HasConfidence && c.Confidence < b.tentativeConf:
		b.tentative.Add(c.Position, c.Class)
		if b.tentative.Ready() {
			b.targets.Add(b.tentative.Average, c.Velocity, c.Class, in.Tick)
			b.tentative.Reset()
			b.scheduler.Restore()
			b.scheduler.Rotate()
		} else {
			b.scheduler.SetAim(b.tentative.Aim(in.Own.Position))
			return
		}
	default:
		if _, added := b.targets.Add(c.Position, c.Velocity, c.Class, in.Tick); added {
			b.logf("new %s target at (%.0f, %.0f), %d tracked",
				c.Class, c.Position.X, c.Position.Y, b.targets.Len())
		}
		b.scheduler.Restore()
		b.scheduler.Rotate()
	}
	b.scheduler.Save()

	swept := b.resumed || b.scheduler.Revolutions() > b.sweepStart
	if b.targets.Len() >= maxBatteryTargets || (swept && b.targets.Len() > 0) {
		b.setMode(updateTargets)
		b.targets.Advance()
		b.dwell(in)
	}
}

func (b *Battery) update(in Input, c *Contact) {
	switch {
	case c == nil:
		if lost, ok := b.targets.RemoveCurrent(); ok {
			b.logf("lost target %s", lost.ID)
		}
	case c.Class.IsGuidedMunition():
		// a munition crossed the beam; keep the target for the next pass
	default:
		if _, ok := b.targets.Observe(c.Position, c.Velocity, c.Class, in.Tick); !ok {
			b.logf("contact failed sanity check, discarded")
		}
	}

	if _, ok := b.targets.Advance(); !ok || (b.targets.Wrapped() && b.targets.Len() < maxBatteryTargets) {
		// resume the sweep where it was parked
		b.resumed = b.targets.Len() > 0
		b.sweepStart = b.scheduler.Revolutions()
		b.setMode(findTargets)
		b.scheduler.Search()
		return
	}
	b.dwell(in)
}

func (b *Battery) setMode(m batteryMode) {
	if m != b.mode && !b.resumed {
		b.logf("%s -> %s with %d targets", b.mode, m, b.targets.Len())
	}
	b.mode = m
	if m == updateTargets {
		b.resumed = false
	}
}

func (b *Battery) dwell(in Input) {
	if t, ok := b.targets.Current(); ok {
		b.scheduler.Track(in.Own.Position, t.Position)
	}
}

func (b *Battery) fire(in Input, cmd *Command) {
	free := b.targets.LeastShot()
	if len(free) == 0 {
		b.pid.Reset()
		return
	}
	env := b.envelope()

	// The hull-mounted gun takes the free target closest to the bow; turrets
	// and launchers share the rest.
	var main *track.Target
	for _, t := range free {
		if main == nil || math.Abs(vecmath.AngleDiff(in.Own.Heading, b.bearing(in, t))) <
			math.Abs(vecmath.AngleDiff(in.Own.Heading, b.bearing(in, main))) {
			main = t
		}
	}
	others := free
	if len(free) > 1 {
		others = make([]*track.Target, 0, len(free)-1)
		for _, t := range free {
			if t != main {
				others = append(others, t)
			}
		}
	}
	cmd.Primary = &Belief{ID: main.ID, Position: main.Position, Velocity: main.Velocity}

	for _, w := range b.table.Weapons(b.class) {
		t := others[w.Index%len(others)]
		if w.Fixed {
			t = main
		}
		switch {
		case w.Fixed:
			cmd.Weapons = append(cmd.Weapons, b.layMainGun(in, w, t, cmd))
		case w.Ballistic():
			sol := t.Lead(w, in.Own)
			cmd.Weapons = append(cmd.Weapons, WeaponOrder{
				Index: w.Index, Heading: vecmath.Angle(sol.AimPoint), Fire: in.ready(w.Index), TargetID: t.ID,
			})
		default:
			cmd.Weapons = append(cmd.Weapons, WeaponOrder{
				Index: w.Index, Heading: b.bearing(in, t), Fire: in.ready(w.Index), TargetID: t.ID,
			})
			cmd.Send = append(cmd.Send, broadcast.NewTrackMessage(t.Position, t.Velocity))
		}
	}
	cmd.Torque = guidance.ClampTorque(cmd.Torque, env)
}

func (b *Battery) layMainGun(in Input, w capability.Weapon, t *track.Target, cmd *Command) WeaponOrder {
	sol := t.Lead(w, in.Own)
	aim := vecmath.Angle(sol.AimPoint)
	cmd.Torque = b.pid.Update(vecmath.AngleDiff(in.Own.Heading, aim))

	fire := in.ready(w.Index) && guidance.ShouldFire(in.Own.Heading, sol.AimPoint, b.fireTolerance)
	if fire {
		b.pid.Reset()
		t.ShotsFired++
	}
	return WeaponOrder{Index: w.Index, Heading: aim, Fire: fire, TargetID: t.ID}
}

func (b *Battery) bearing(in Input, t *track.Target) float64 {
	return vecmath.AngleTo(in.Own.Position, t.Position)
}

var _ Role = (*Battery)(nil)
