// Package kalman fuses a rolling window of sensor samples into a bearing and
// range estimate with an uncertainty that sizes the next radar beam.
//
// The filter is a batch smoother: every Run seeds the means from the whole
// window and replays the scalar Kalman update/predict recursion over it, so
// the result depends only on the samples currently held.
package kalman

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ava5627/oort-ai/internal/config"
	"github.com/ava5627/oort-ai/internal/radar"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Config holds filter parameters. The noise factors are the one-sigma
// measurement error at 0 dB confidence.
type Config struct {
	BearingNoise    float64 // radians
	RangeNoise      float64 // metres
	VelocityNoise   float64 // metres per second
	MaxSamples      int
	InitialVariance float64
	// BeamBase is the linear beam extent at zero variance.
	BeamBase   float64
	TickLength float64
}

// DefaultConfig returns production filter parameters.
func DefaultConfig() Config {
	return ConfigFromTuning(config.DefaultTuningConfig())
}

// ConfigFromTuning builds a Config from tuning values.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		BearingNoise:    cfg.GetKalmanBearingNoise(),
		RangeNoise:      cfg.GetKalmanRangeNoise(),
		VelocityNoise:   cfg.GetKalmanVelocityNoise(),
		MaxSamples:      cfg.GetKalmanMaxSamples(),
		InitialVariance: cfg.GetKalmanInitialVariance(),
		BeamBase:        cfg.GetKalmanBeamBase(),
		TickLength:      cfg.GetTickLength(),
	}
}

// Sample is one contact together with the observer's own state when it was
// taken.
type Sample struct {
	Position    vecmath.Vec
	Velocity    vecmath.Vec
	Confidence  float64 // dB
	OwnPosition vecmath.Vec
	OwnVelocity vecmath.Vec
}

func (s Sample) bearing() float64 { return vecmath.AngleTo(s.OwnPosition, s.Position) }
func (s Sample) rng() float64     { return vecmath.Distance(s.OwnPosition, s.Position) }

// Estimate is the fused result of one Run.
type Estimate struct {
	Position        vecmath.Vec
	Bearing         float64
	Range           float64
	BearingVariance float64
	RangeVariance   float64
}

// Filter holds at most MaxSamples samples, oldest evicted first.
type Filter struct {
	cfg     Config
	samples []Sample
	est     Estimate
}

// New returns an empty filter.
func New(cfg Config) *Filter {
	if cfg.MaxSamples < 1 {
		cfg.MaxSamples = 1
	}
	return &Filter{cfg: cfg, samples: make([]Sample, 0, cfg.MaxSamples)}
}

// AddMeasurement appends a sample, evicting the oldest at capacity.
func (f *Filter) AddMeasurement(pos, vel vecmath.Vec, confidence float64, ownPos, ownVel vecmath.Vec) {
	f.samples = append(f.samples, Sample{
		Position:    pos,
		Velocity:    vel,
		Confidence:  confidence,
		OwnPosition: ownPos,
		OwnVelocity: ownVel,
	})
	if len(f.samples) > f.cfg.MaxSamples {
		copy(f.samples, f.samples[1:])
		f.samples = f.samples[:len(f.samples)-1]
	}
}

// Len returns the number of samples held.
func (f *Filter) Len() int { return len(f.samples) }

// Samples returns the window, oldest first. The slice must not be modified.
func (f *Filter) Samples() []Sample { return f.samples }

// noise returns the per-channel measurement variances for a confidence.
func (f *Filter) noise(confidence float64) (bearing, rng, velocity float64) {
	e := math.Pow(10, -confidence/10)
	sq := func(x float64) float64 { return x * x }
	return sq(e * f.cfg.BearingNoise), sq(e * f.cfg.RangeNoise), sq(e * f.cfg.VelocityNoise)
}

// Run replays the window and returns the fused estimate referenced to the
// observer's current position and velocity. It reports false with an empty
// window.
func (f *Filter) Run(ownPos, ownVel vecmath.Vec) (Estimate, bool) {
	n := len(f.samples)
	if n == 0 {
		return Estimate{}, false
	}
	bearings := make([]float64, n)
	ranges := make([]float64, n)
	for i, s := range f.samples {
		bearings[i] = s.bearing()
		ranges[i] = s.rng()
	}

	bMean := stat.CircularMean(bearings, nil)
	rMean := stat.Mean(ranges, nil)
	bVar := f.cfg.InitialVariance
	rVar := f.cfg.InitialVariance
	dt := f.cfg.TickLength

	for i, s := range f.samples {
		bmv, rmv, vmv := f.noise(s.Confidence)
		// unwrap onto the branch of the running mean
		b := bMean + vecmath.AngleDiff(bMean, bearings[i])
		r := ranges[i]

		rMean, rVar = update(rMean, rVar, r, rmv)
		bMean, bVar = update(bMean, bVar, b, bmv)

		ownNext := vecmath.Add(s.OwnPosition, vecmath.Scale(dt, s.OwnVelocity))
		tgtNext := vecmath.Add(s.Position, vecmath.Scale(dt, s.Velocity))
		rMove := vecmath.Distance(ownNext, tgtNext) - r
		bMove := vecmath.AngleDiff(bearings[i], vecmath.AngleTo(ownNext, tgtNext))

		rMean, rVar = predict(rMean, rVar, rMove, vmv)
		// Bearing is in radians, so the velocity variance (m²) is divided by
		// range² before inflating it; adding it raw would swamp the bearing.
		bInflate := vmv
		if rMean > 1 {
			bInflate = vmv / (rMean * rMean)
		}
		bMean, bVar = predict(bMean, bVar, bMove, bInflate)
	}
	bMean = vecmath.NormalizeAngle(bMean)
	if rMean < 0 {
		rMean = 0
	}

	latest := f.samples[n-1]
	drift := vecmath.Scale(dt, vecmath.Sub(ownVel, latest.Velocity))
	pos := vecmath.Add(vecmath.Add(vecmath.Polar(bMean, rMean), ownPos), drift)
	if !vecmath.IsFinite(pos) {
		// last valid belief
		pos = latest.Position
	}

	f.est = Estimate{
		Position:        pos,
		Bearing:         bMean,
		Range:           rMean,
		BearingVariance: bVar,
		RangeVariance:   rVar,
	}
	return f.est, true
}

func update(mean, variance, measurement, measurementVariance float64) (float64, float64) {
	newMean := (mean*measurementVariance + measurement*variance) / (variance + measurementVariance)
	newVariance := 1 / (1/variance + 1/measurementVariance)
	return newMean, newVariance
}

func predict(mean, variance, movement, movementVariance float64) (float64, float64) {
	return mean + movement, variance + movementVariance
}

// Estimate returns the result of the last Run.
func (f *Filter) Estimate() Estimate { return f.est }

// PredictedPosition returns the fused position from the last Run.
func (f *Filter) PredictedPosition() vecmath.Vec { return f.est.Position }

// BearingVariance returns the fused bearing variance from the last Run.
func (f *Filter) BearingVariance() float64 { return f.est.BearingVariance }

// RangeVariance returns the fused range variance from the last Run.
func (f *Filter) RangeVariance() float64 { return f.est.RangeVariance }

// PointRadar sizes a beam on the predicted position: BeamBase·(1+σ) across
// and BeamBase·(1+σ) deep for the bearing and range deviations.
func (f *Filter) PointRadar(ownPos vecmath.Vec) radar.Aim {
	dist := vecmath.Distance(ownPos, f.est.Position)
	across := f.cfg.BeamBase * (1 + math.Sqrt(f.est.BearingVariance))
	depth := f.cfg.BeamBase * (1 + math.Sqrt(f.est.RangeVariance))
	width := vecmath.AngleAtDistance(dist, across)
	if width <= 0 {
		width = math.Pi / 2
	}
	return radar.Aim{
		Heading:  vecmath.AngleTo(ownPos, f.est.Position),
		Width:    width,
		MinRange: math.Max(0, dist-depth),
		MaxRange: dist + depth,
	}
}

// Reset clears the window and zeroes the estimate. Call it on contact loss
// so a stale window does not bias the next fusion.
func (f *Filter) Reset() {
	f.samples = f.samples[:0]
	f.est = Estimate{}
}
