package kalman

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava5627/oort-ai/internal/vecmath"
)

var origin = vecmath.Vec{}

func TestRunEmptyWindow(t *testing.T) {
	t.Parallel()
	f := New(DefaultConfig())
	_, ok := f.Run(origin, origin)
	assert.False(t, ok)
	assert.Equal(t, Estimate{}, f.Estimate())
}

func TestWindowEvictsOldest(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.MaxSamples = 3
	f := New(cfg)
	for i := 1; i <= 5; i++ {
		f.AddMeasurement(vecmath.Vec{X: float64(i)}, origin, 10, origin, origin)
		assert.LessOrEqual(t, f.Len(), 3)
	}
	require.Equal(t, 3, f.Len())
	assert.Equal(t, 3.0, f.Samples()[0].Position.X)
	assert.Equal(t, 5.0, f.Samples()[2].Position.X)
}

func TestVarianceFallsWithConfidence(t *testing.T) {
	t.Parallel()
	f := New(DefaultConfig())
	target := vecmath.Vec{X: 1000, Y: 500}

	prevB, prevR := math.Inf(1), math.Inf(1)
	for conf := 10.0; conf <= 28; conf += 2 {
		f.AddMeasurement(target, origin, conf, origin, origin)
		est, ok := f.Run(origin, origin)
		require.True(t, ok)
		assert.Less(t, est.BearingVariance, prevB, "confidence %v", conf)
		assert.Less(t, est.RangeVariance, prevR, "confidence %v", conf)
		prevB, prevR = est.BearingVariance, est.RangeVariance
	}
}

func TestRunConvergesOnStationaryTarget(t *testing.T) {
	t.Parallel()
	f := New(DefaultConfig())
	target := vecmath.Vec{X: 1000, Y: -200}
	for i := 0; i < 50; i++ {
		// alternate small errors around the truth
		jitter := vecmath.Vec{X: 3, Y: -2}
		if i%2 == 1 {
			jitter = vecmath.Scale(-1, jitter)
		}
		f.AddMeasurement(vecmath.Add(target, jitter), origin, 20, origin, origin)
	}
	est, ok := f.Run(origin, origin)
	require.True(t, ok)
	assert.InDelta(t, target.X, est.Position.X, 2)
	assert.InDelta(t, target.Y, est.Position.Y, 2)
	assert.Equal(t, est.Position, f.PredictedPosition())
	assert.Equal(t, est.BearingVariance, f.BearingVariance())
	assert.Equal(t, est.RangeVariance, f.RangeVariance())
}

func TestRunHandlesBearingWrap(t *testing.T) {
	t.Parallel()
	f := New(DefaultConfig())
	for i := 0; i < 10; i++ {
		y := 10.0
		if i%2 == 1 {
			y = -10
		}
		f.AddMeasurement(vecmath.Vec{X: -1000, Y: y}, origin, 20, origin, origin)
	}
	est, ok := f.Run(origin, origin)
	require.True(t, ok)
	assert.InDelta(t, -1000.0, est.Position.X, 1)
	assert.InDelta(t, 0.0, est.Position.Y, 15)
	assert.InDelta(t, math.Pi, math.Abs(est.Bearing), 0.02)
}

func TestRunReferencesCurrentOwnState(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	f := New(cfg)
	target := vecmath.Vec{X: 1000}
	for i := 0; i < 5; i++ {
		f.AddMeasurement(target, origin, 20, origin, origin)
	}
	still, _ := f.Run(origin, origin)
	moved, _ := f.Run(vecmath.Vec{Y: 50}, vecmath.Vec{X: 60})
	assert.InDelta(t, still.Position.X+60*cfg.TickLength, moved.Position.X, 1e-9)
	assert.InDelta(t, still.Position.Y+50, moved.Position.Y, 1e-9)
}

func TestPointRadarWidensWithUncertainty(t *testing.T) {
	t.Parallel()
	target := vecmath.Vec{X: 2000}

	sure := New(DefaultConfig())
	unsure := New(DefaultConfig())
	for i := 0; i < 5; i++ {
		sure.AddMeasurement(target, origin, 30, origin, origin)
		unsure.AddMeasurement(target, origin, 0, origin, origin)
	}
	_, ok := sure.Run(origin, origin)
	require.True(t, ok)
	_, ok = unsure.Run(origin, origin)
	require.True(t, ok)

	a, b := sure.PointRadar(origin), unsure.PointRadar(origin)
	assert.InDelta(t, 0.0, a.Heading, 1e-6)
	assert.Greater(t, a.Width, 0.0)
	assert.LessOrEqual(t, a.MinRange, a.MaxRange)
	assert.LessOrEqual(t, a.Width, b.Width)
	assert.Less(t, a.MaxRange-a.MinRange, b.MaxRange-b.MinRange)
	assert.GreaterOrEqual(t, b.MinRange, 0.0)
}

func TestReset(t *testing.T) {
	t.Parallel()
	f := New(DefaultConfig())
	f.AddMeasurement(vecmath.Vec{X: 100}, origin, 10, origin, origin)
	_, ok := f.Run(origin, origin)
	require.True(t, ok)

	f.Reset()
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, Estimate{}, f.Estimate())
	_, ok = f.Run(origin, origin)
	assert.False(t, ok)
}
