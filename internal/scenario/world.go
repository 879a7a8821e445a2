package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/ava5627/oort-ai/internal/agent"
	"github.com/ava5627/oort-ai/internal/broadcast"
	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/monitoring"
	"github.com/ava5627/oort-ai/internal/timeutil"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

const (
	shellLifeTicks    = 600
	munitionLifeTicks = 3600
	gunReloadTicks    = 30
	launchReloadTicks = 300
	shellHitRadius    = 25.0
	// referenceRange is where a contact reports referenceConfidence dB;
	// confidence falls 20 dB per decade beyond it.
	referenceRange      = 1000.0
	referenceConfidence = 60.0
)

var logf = monitoring.Tagged("scenario")

// Options control a World.
type Options struct {
	Seed   int64
	Tuning *config.TuningConfig
	// Noise is the standard deviation of contact position error, in metres
	// per kilometre of range.
	Noise float64
	// ReportConfidence attaches a signal-quality figure to contacts.
	ReportConfidence bool
	// RadioLoss is the probability a track message is dropped.
	RadioLoss float64
}

// World owns the bodies and advances them one tick at a time.
type World struct {
	opts   Options
	clock  *timeutil.SimClock
	rng    *rand.Rand
	table  *capability.Table
	bodies []*Body
	shells []shell
	// frames holds self-id frames broadcast last tick, per team.
	frames  map[int][][]byte
	records []Record
	nextID  int
}

// NewWorld returns an empty world.
func NewWorld(opts Options) *World {
	if opts.Tuning == nil {
		opts.Tuning = config.DefaultTuningConfig()
	}
	return &World{
		opts:   opts,
		clock:  timeutil.NewSimClock(opts.Tuning.GetTickLength()),
		rng:    rand.New(rand.NewSource(opts.Seed)),
		table:  capability.Default(),
		frames: make(map[int][][]byte),
	}
}

// Tick returns the last completed tick.
func (w *World) Tick() int64 { return w.clock.Tick() }

// Bodies returns every body ever spawned, alive or not.
func (w *World) Bodies() []*Body { return w.bodies }

// Records returns the per-tick agent records collected so far.
func (w *World) Records() []Record { return w.records }

func (w *World) add(b *Body) *Body {
	w.nextID++
	b.ID = fmt.Sprintf("%s-%d", b.Class, w.nextID)
	b.Alive = true
	b.radio = &Radio{}
	b.reload = make([]int, len(w.table.Weapons(b.Class)))
	w.bodies = append(w.bodies, b)
	return b
}

// Spawn adds an agent-driven body.
func (w *World) Spawn(class capability.Class, team int, state guidance.State) (*Body, error) {
	a, err := agent.New(class, w.opts.Tuning)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", class, err)
	}
	return w.add(&Body{Class: class, Team: team, State: state, Agent: a}), nil
}

// Place adds a body without an agent that flies under constant thrust.
func (w *World) Place(class capability.Class, team int, state guidance.State, thrust vecmath.Vec, weave int) *Body {
	return w.add(&Body{Class: class, Team: team, State: state, Thrust: thrust, Weave: weave})
}

// Step advances the world by one tick.
func (w *World) Step() {
	now := w.clock.Advance()
	dt := w.clock.TickLength()
	heard := w.frames
	w.frames = make(map[int][][]byte)

	type outgoing struct {
		from *Body
		msg  broadcast.TrackMessage
	}
	var outbox []outgoing

	for _, b := range slices.Clone(w.bodies) {
		if !b.Alive {
			continue
		}
		if b.Agent == nil {
			thrust := b.Thrust
			if b.Weave > 0 && (now/int64(b.Weave))%2 == 1 {
				thrust = vecmath.Scale(-1, thrust)
			}
			integrate(&b.State, thrust, 0, dt)
			continue
		}

		cmd := b.Agent.Tick(agent.Input{
			Tick:    now,
			Own:     b.State,
			Contact: w.sense(b),
			Radio:   b.radio,
			Frames:  heard[b.Team],
			Reload:  slices.Clone(b.reload),
		})
		b.aim, b.hasAim = cmd.Radar, true
		if cmd.SelfID != nil {
			w.frames[b.Team] = append(w.frames[b.Team], cmd.SelfID)
		}
		for _, m := range cmd.Send {
			outbox = append(outbox, outgoing{from: b, msg: m})
		}
		w.fire(b, cmd, now)

		env := w.table.Envelope(b.Class)
		if cmd.Boost {
			env = env.WithForwardBonus(w.opts.Tuning.GetBoostForwardBonus())
		}
		accel := guidance.ClampAcceleration(cmd.Accel, b.State.Heading, env)
		integrate(&b.State, accel, guidance.ClampTorque(cmd.Torque, env), dt)

		if cmd.Detonate {
			w.detonate(b)
		}
		for i := range b.reload {
			if b.reload[i] > 0 {
				b.reload[i]--
			}
		}
		w.record(b, cmd, now)
	}

	for _, o := range outbox {
		for _, b := range w.bodies {
			if b == o.from || !b.Alive || b.Team != o.from.Team || b.Agent == nil {
				continue
			}
			if w.opts.RadioLoss > 0 && w.rng.Float64() < w.opts.RadioLoss {
				continue
			}
			b.radio.deliver(o.msg)
		}
	}

	w.moveShells(now, dt)
	for _, b := range w.bodies {
		if b.Alive && b.expires > 0 && now >= b.expires {
			b.Alive = false
		}
	}
}

func integrate(s *guidance.State, accel vecmath.Vec, torque, dt float64) {
	s.AngularVelocity += torque * dt
	s.Heading = vecmath.NormalizeAngle(s.Heading + s.AngularVelocity*dt)
	s.Velocity = vecmath.Add(s.Velocity, vecmath.Scale(dt, accel))
	s.Position = vecmath.Add(s.Position, vecmath.Scale(dt, s.Velocity))
}

// sense returns the nearest live body inside b's last beam, with noise.
func (w *World) sense(b *Body) *agent.Contact {
	if !b.hasAim {
		return nil
	}
	var seen *Body
	best := math.Inf(1)
	for _, o := range w.bodies {
		if o == b || !o.Alive || !b.aim.Contains(b.State.Position, o.State.Position) {
			continue
		}
		if d := vecmath.Distance(b.State.Position, o.State.Position); d < best {
			seen, best = o, d
		}
	}
	if seen == nil {
		return nil
	}

	sigma := w.opts.Noise * best / 1000
	c := &agent.Contact{
		Position: vecmath.Add(seen.State.Position, w.gaussian(sigma)),
		Velocity: vecmath.Add(seen.State.Velocity, w.gaussian(sigma/10)),
		Class:    seen.Class,
	}
	if w.opts.ReportConfidence {
		c.HasConfidence = true
		c.Confidence = referenceConfidence - 20*math.Log10(math.Max(best, 1)/referenceRange)
	}
	return c
}

func (w *World) gaussian(sigma float64) vecmath.Vec {
	if sigma <= 0 {
		return vecmath.Vec{}
	}
	return vecmath.Vec{X: w.rng.NormFloat64() * sigma, Y: w.rng.NormFloat64() * sigma}
}

func (w *World) fire(b *Body, cmd agent.Command, now int64) {
	for _, o := range cmd.Weapons {
		if !o.Fire || o.Index < 0 || o.Index >= len(b.reload) || b.reload[o.Index] > 0 {
			continue
		}
		wpn, ok := w.table.Weapon(b.Class, o.Index)
		if !ok {
			continue
		}
		heading := o.Heading
		if wpn.Fixed {
			heading = b.State.Heading
		}
		origin := guidance.FiringPoint(b.State, wpn.Offset)
		b.Shots++

		if wpn.Ballistic() {
			w.shells = append(w.shells, shell{
				team:     b.Team,
				position: origin,
				velocity: vecmath.Add(b.State.Velocity, vecmath.Polar(heading, wpn.ProjectileSpeed)),
				expires:  now + shellLifeTicks,
			})
			b.reload[o.Index] = gunReloadTicks
			continue
		}

		class := capability.Missile
		if b.Class == capability.Cruiser {
			class = capability.Torpedo
		}
		m, err := w.Spawn(class, b.Team, guidance.State{Position: origin, Velocity: b.State.Velocity, Heading: heading})
		if err != nil {
			logf("launch from %s failed: %v", b.ID, err)
			continue
		}
		m.expires = now + munitionLifeTicks
		b.reload[o.Index] = launchReloadTicks
	}
}

func (w *World) detonate(b *Body) {
	b.Alive = false
	for _, o := range w.bodies {
		if !o.Alive || o.Team == b.Team {
			continue
		}
		if vecmath.Distance(b.State.Position, o.State.Position) <= w.table.DetonationRadius(o.Class) {
			o.Alive = false
			logf("%s destroyed by %s at tick %d", o.ID, b.ID, w.clock.Tick())
		}
	}
}

func (w *World) moveShells(now int64, dt float64) {
	live := w.shells[:0]
	for _, s := range w.shells {
		next := vecmath.Add(s.position, vecmath.Scale(dt, s.velocity))
		hit := false
		for _, o := range w.bodies {
			if o.Alive && o.Team != s.team && segmentDistance(s.position, next, o.State.Position) <= shellHitRadius {
				o.Alive = false
				hit = true
				logf("%s hit by shell at tick %d", o.ID, now)
				break
			}
		}
		if hit || now >= s.expires {
			continue
		}
		s.position = next
		live = append(live, s)
	}
	w.shells = live
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(a, b, p vecmath.Vec) float64 {
	ab := vecmath.Sub(b, a)
	l2 := vecmath.Dot(ab, ab)
	if l2 == 0 {
		return vecmath.Distance(a, p)
	}
	t := math.Max(0, math.Min(1, vecmath.Dot(vecmath.Sub(p, a), ab)/l2))
	return vecmath.Distance(vecmath.Add(a, vecmath.Scale(t, ab)), p)
}

func (w *World) record(b *Body, cmd agent.Command, now int64) {
	r := Record{
		Tick:     now,
		BodyID:   b.ID,
		Class:    b.Class,
		Team:     b.Team,
		Position: b.State.Position,
		Velocity: b.State.Velocity,
		Heading:  b.State.Heading,
		Mode:     cmd.Mode,
		LOSRate:  cmd.LOSRate,
		Shots:    b.Shots,
		Boost:    cmd.Boost,
		Detonate: cmd.Detonate,
	}
	if cmd.Primary != nil {
		r.HasBelief, r.TargetID, r.Belief = true, cmd.Primary.ID, cmd.Primary.Position
	}
	if e := w.nearestEnemy(b); e != nil {
		r.Truth = e.State.Position
		r.Range = vecmath.Distance(b.State.Position, e.State.Position)
	}
	w.records = append(w.records, r)
}

func (w *World) nearestEnemy(b *Body) *Body {
	var best *Body
	bestDist := math.Inf(1)
	for _, o := range w.bodies {
		if !o.Alive || o.Team == b.Team || o.Munition() {
			continue
		}
		if d := vecmath.Distance(b.State.Position, o.State.Position); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

// Result summarises a run.
type Result struct {
	Ticks int64
	// Alive and Lost count non-munition bodies per team.
	Alive map[int]int
	Lost  map[int]int
	// Winner is the only team with surviving vehicles, or -1.
	Winner  int
	Records []Record
}

// Run steps until fewer than two teams have anything alive, or for at most
// ticks steps.
func (w *World) Run(ticks int) Result {
	for i := 0; i < ticks && !w.decided(); i++ {
		w.Step()
	}
	res := Result{Ticks: w.clock.Tick(), Alive: map[int]int{}, Lost: map[int]int{}, Winner: -1, Records: w.records}
	for _, b := range w.bodies {
		if b.Munition() {
			continue
		}
		if b.Alive {
			res.Alive[b.Team]++
		} else {
			res.Lost[b.Team]++
		}
	}
	if len(res.Alive) == 1 {
		for team := range res.Alive {
			res.Winner = team
		}
	}
	return res
}

func (w *World) decided() bool {
	teams := map[int]bool{}
	for _, b := range w.bodies {
		if b.Alive {
			teams[b.Team] = true
		}
	}
	return len(teams) < 2
}
