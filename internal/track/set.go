package track

import (
	"math"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Set is the collection of tracked objects owned by one agent. It schedules
// which target the sensor dwells on next in round-robin order.
type Set struct {
	cfg     Config
	targets []*Target
	index   int
}

// NewSet returns an empty set whose targets share cfg.
func NewSet(cfg Config) *Set {
	return &Set{cfg: cfg}
}

// Len returns the number of tracked targets.
func (s *Set) Len() int { return len(s.targets) }

// Targets returns the tracked targets in insertion order. The slice must not
// be modified.
func (s *Set) Targets() []*Target { return s.targets }

// Get returns the target with the given ID.
func (s *Set) Get(id string) (*Target, bool) {
	for _, t := range s.targets {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Add starts tracking a new object unless it is a guided munition or any
// existing target already accounts for it. It reports whether a target was
// created; when an existing target matches it is returned instead.
func (s *Set) Add(pos, vel vecmath.Vec, class capability.Class, now int64) (*Target, bool) {
	if class.IsGuidedMunition() {
		return nil, false
	}
	for _, t := range s.targets {
		if t.SanityCheck(pos, vel, class, now) {
			return t, false
		}
	}
	t := New(s.cfg, pos, vel, class, now)
	s.targets = append(s.targets, t)
	return t, true
}

// Current returns the target the sensor is dwelling on.
func (s *Set) Current() (*Target, bool) {
	if len(s.targets) == 0 {
		return nil, false
	}
	return s.targets[s.cursor()], true
}

// cursor is the current index; after a removal at the head it points at -1
// until the next Advance.
func (s *Set) cursor() int {
	if s.index < 0 || s.index >= len(s.targets) {
		return 0
	}
	return s.index
}

// Observe associates an observation taken while dwelling on the current
// target. The current target is updated when the observation passes its
// sanity check; otherwise the nearest target by position gets it, provided
// that one passes. It returns the updated target, or false when the
// observation was discarded.
func (s *Set) Observe(pos, vel vecmath.Vec, class capability.Class, now int64) (*Target, bool) {
	cur, ok := s.Current()
	if !ok {
		return nil, false
	}
	if cur.SanityCheck(pos, vel, class, now) {
		cur.Update(pos, vel, now)
		return cur, true
	}
	nearest, i := s.Nearest(pos)
	if nearest == nil || i == s.cursor() || !nearest.SanityCheck(pos, vel, class, now) {
		return nil, false
	}
	nearest.Update(pos, vel, now)
	return nearest, true
}

// Nearest returns the target closest to pos and its index.
func (s *Set) Nearest(pos vecmath.Vec) (*Target, int) {
	best, bestIdx, bestDist := (*Target)(nil), -1, math.Inf(1)
	for i, t := range s.targets {
		if d := vecmath.Distance(pos, t.Position); d < bestDist {
			best, bestIdx, bestDist = t, i, d
		}
	}
	return best, bestIdx
}

// RemoveCurrent drops the current target after a failed re-scan. The
// schedule stays positioned so that Advance moves to the target that
// followed it.
func (s *Set) RemoveCurrent() (*Target, bool) {
	if len(s.targets) == 0 {
		return nil, false
	}
	i := s.cursor()
	cur := s.targets[i]
	s.targets = append(s.targets[:i], s.targets[i+1:]...)
	s.index = i - 1
	return cur, true
}

// Advance moves the dwell to the next target, wrapping at the end. It
// reports false when the set is empty.
func (s *Set) Advance() (*Target, bool) {
	if len(s.targets) == 0 {
		s.index = 0
		return nil, false
	}
	s.index++
	if s.index >= len(s.targets) || s.index < 0 {
		s.index = 0
	}
	return s.targets[s.index], true
}

// Wrapped reports whether the schedule is at the first target, i.e. a full
// pass over the set has just completed.
func (s *Set) Wrapped() bool { return s.index == 0 }

// Coast extrapolates every target not updated at tick now.
func (s *Set) Coast(now int64) {
	for _, t := range s.targets {
		if t.LastUpdateTick != now {
			t.Coast()
		}
	}
}

// LeastShot returns the targets that have drawn the fewest shots, in set
// order.
func (s *Set) LeastShot() []*Target {
	minShots := math.MaxInt
	for _, t := range s.targets {
		if t.ShotsFired < minShots {
			minShots = t.ShotsFired
		}
	}
	var out []*Target
	for _, t := range s.targets {
		if t.ShotsFired == minShots {
			out = append(out, t)
		}
	}
	return out
}

// Clear drops every target.
func (s *Set) Clear() {
	s.targets = nil
	s.index = 0
}
