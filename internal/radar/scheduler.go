// Package radar schedules the narrow-beam, range-gated sensor between a
// widening-resolution search sweep and a narrow dwell on one tracked object.
package radar

import (
	"math"

	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Mode is the scheduler state.
type Mode string

const (
	ModeSearch Mode = "search" // Wide sweep, nothing committed
	ModeTrack  Mode = "track"  // Narrow dwell on one belief
)

// MaxRange stands in for an ungated far limit.
const MaxRange = 1e99

// Aim is what the sensor collaborator is told to do this tick.
type Aim struct {
	Heading  float64
	Width    float64
	MinRange float64
	MaxRange float64
}

// Contains reports whether point, seen from origin, lies inside the beam
// footprint.
func (a Aim) Contains(origin, point vecmath.Vec) bool {
	d := vecmath.Distance(origin, point)
	if d < a.MinRange || d > a.MaxRange {
		return false
	}
	off := vecmath.AngleDiff(a.Heading, vecmath.AngleTo(origin, point))
	return math.Abs(off) <= a.Width/2
}

// Config holds scheduler parameters.
type Config struct {
	InitialHeading float64
	InitialWidth   float64
	MinSearchWidth float64
	// TrackSwath is the linear extent the tracking beam should cover at the
	// target's range.
	TrackSwath float64
	// TrackRangeMargin is the half-depth of the tracking range gate.
	TrackRangeMargin float64
	// TrackSlotTicks is how many consecutive missed dwells drop the
	// scheduler back to search.
	TrackSlotTicks int
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		InitialHeading:   cfg.GetSearchInitialHeading(),
		InitialWidth:     cfg.GetSearchInitialWidth(),
		MinSearchWidth:   cfg.GetSearchMinWidth(),
		TrackSwath:       cfg.GetTrackSwath(),
		TrackRangeMargin: cfg.GetTrackRangeMargin(),
		TrackSlotTicks:   cfg.GetTrackSlotTicks(),
	}
}

// Scheduler owns the current beam aim plus the sweep bookkeeping for the
// shrinking-sector search. Width is always positive and MinRange never
// exceeds MaxRange.
type Scheduler struct {
	cfg  Config
	mode Mode
	aim  Aim

	// search posture parked by Save
	saved Aim

	searchWidth   float64
	stepsPerTurn  int
	rotationCount int // steps taken in the current revolution
	sectorCount   int // completed revolutions
	missedDwells  int
}

// NewScheduler returns a scheduler in full-circle search posture.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.InitialWidth <= 0 {
		cfg.InitialWidth = math.Pi / 2
	}
	if cfg.MinSearchWidth <= 0 || cfg.MinSearchWidth > cfg.InitialWidth {
		cfg.MinSearchWidth = cfg.InitialWidth
	}
	if cfg.TrackSlotTicks < 1 {
		cfg.TrackSlotTicks = 1
	}
	s := &Scheduler{cfg: cfg, mode: ModeSearch}
	s.setSearchWidth(cfg.InitialWidth)
	s.aim = Aim{
		Heading:  vecmath.NormalizeAngle(cfg.InitialHeading),
		Width:    cfg.InitialWidth,
		MinRange: 0,
		MaxRange: MaxRange,
	}
	s.saved = s.aim
	return s
}

func (s *Scheduler) setSearchWidth(w float64) {
	s.searchWidth = w
	s.stepsPerTurn = int(math.Ceil(2*math.Pi/w - 1e-9))
	if s.stepsPerTurn < 1 {
		s.stepsPerTurn = 1
	}
}

// Mode returns the current scheduler state.
func (s *Scheduler) Mode() Mode { return s.mode }

// Aim returns the beam the sensor should use this tick.
func (s *Scheduler) Aim() Aim { return s.aim }

// SearchWidth returns the current sweep beam width.
func (s *Scheduler) SearchWidth() float64 { return s.searchWidth }

// Revolutions returns the number of completed search revolutions.
func (s *Scheduler) Revolutions() int { return s.sectorCount }

// Rotate advances the search sweep by one beam width. After a full
// revolution the sweep width is halved (down to MinSearchWidth) so later
// passes trade coverage time for angular resolution.
func (s *Scheduler) Rotate() {
	s.mode = ModeSearch
	s.aim.Heading = vecmath.NormalizeAngle(s.aim.Heading + s.searchWidth)
	s.aim.Width = s.searchWidth
	s.aim.MinRange = 0
	s.aim.MaxRange = MaxRange
	s.rotationCount++
	if s.rotationCount >= s.stepsPerTurn {
		s.rotationCount = 0
		s.sectorCount++
		s.setSearchWidth(math.Max(s.cfg.MinSearchWidth, s.searchWidth/2))
		s.aim.Width = s.searchWidth
	}
}

// Save parks the current aim so a later Restore can resume it.
func (s *Scheduler) Save() {
	s.saved = s.aim
}

// Restore returns the beam to the last saved aim. Sweep bookkeeping is
// untouched by tracking, so the search resumes where it left off.
func (s *Scheduler) Restore() {
	s.aim = s.saved
}

// Search drops any track commitment and restores the saved search posture.
func (s *Scheduler) Search() {
	s.mode = ModeSearch
	s.missedDwells = 0
	s.Restore()
}

// Track commits the beam to the believed position of one object: the beam
// is centred on it, its width covers TrackSwath at the current range, and
// the range gates are tightened to range ± TrackRangeMargin.
func (s *Scheduler) Track(own, target vecmath.Vec) {
	s.mode = ModeTrack
	s.missedDwells = 0
	s.aim = s.dwell(own, target, s.cfg.TrackSwath, s.cfg.TrackRangeMargin)
}

// Point aims at target with an explicit swath and gate margin, as used by
// tentative contacts and the Kalman-sized beam.
func (s *Scheduler) Point(own, target vecmath.Vec, swath, margin float64) {
	s.mode = ModeTrack
	s.missedDwells = 0
	s.aim = s.dwell(own, target, swath, margin)
}

// SetAim installs a beam computed elsewhere and enters track mode.
func (s *Scheduler) SetAim(a Aim) {
	s.mode = ModeTrack
	if a.Width <= 0 {
		a.Width = s.searchWidth
	}
	if a.MinRange < 0 {
		a.MinRange = 0
	}
	if a.MaxRange < a.MinRange {
		a.MaxRange = a.MinRange
	}
	s.aim = a
}

func (s *Scheduler) dwell(own, target vecmath.Vec, swath, margin float64) Aim {
	rng := vecmath.Distance(own, target)
	width := vecmath.AngleAtDistance(rng, swath)
	if width <= 0 {
		width = s.cfg.MinSearchWidth
	}
	return Aim{
		Heading:  vecmath.AngleTo(own, target),
		Width:    width,
		MinRange: math.Max(0, rng-margin),
		MaxRange: rng + margin,
	}
}

// Missed records a track dwell that failed to reacquire. It reports true
// when the track slot is exhausted and the scheduler has fallen back to
// search.
func (s *Scheduler) Missed() bool {
	if s.mode != ModeTrack {
		return false
	}
	s.missedDwells++
	if s.missedDwells >= s.cfg.TrackSlotTicks {
		s.Search()
		return true
	}
	return false
}
