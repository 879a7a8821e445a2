package scenario

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava5627/oort-ai/internal/broadcast"
	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/monitoring"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"cruiser", "duel", "fleet", "gunnery", "missile"}, Names())

	_, ok := Lookup("nope")
	assert.False(t, ok)
	_, err := Load("nope", Options{})
	assert.Error(t, err)

	for _, name := range Names() {
		w, err := Load(name, Options{Seed: 1})
		require.NoError(t, err, name)
		assert.NotEmpty(t, w.Bodies(), name)
	}
}

func TestSpawn_RejectsPassiveClass(t *testing.T) {
	t.Parallel()
	w := NewWorld(Options{})
	_, err := w.Spawn(capability.Asteroid, 0, guidance.State{})
	assert.Error(t, err)
	assert.Empty(t, w.Bodies())
}

func TestRadio_DeliversInOrder(t *testing.T) {
	t.Parallel()
	r := &Radio{}
	r.deliver(broadcast.TrackMessage{1})
	r.deliver(broadcast.TrackMessage{2})
	assert.Equal(t, 2, r.Pending())

	m, ok := r.Receive()
	require.True(t, ok)
	assert.Equal(t, 1.0, m[0])
	m, ok = r.Receive()
	require.True(t, ok)
	assert.Equal(t, 2.0, m[0])
	_, ok = r.Receive()
	assert.False(t, ok)
}

func TestSegmentDistance(t *testing.T) {
	t.Parallel()
	a, b := vecmath.Vec{}, vecmath.Vec{X: 10}
	tests := []struct {
		name string
		p    vecmath.Vec
		want float64
	}{
		{"above middle", vecmath.Vec{X: 5, Y: 3}, 3},
		{"before start", vecmath.Vec{X: -4, Y: 3}, 5},
		{"past end", vecmath.Vec{X: 13, Y: 4}, 5},
		{"on segment", vecmath.Vec{X: 7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, segmentDistance(a, b, tt.p), 1e-9)
		})
	}
	assert.InDelta(t, 5, segmentDistance(a, a, vecmath.Vec{X: 3, Y: 4}), 1e-9)
}

func TestPlacedBodyFollowsThrust(t *testing.T) {
	t.Parallel()
	w := NewWorld(Options{})
	b := w.Place(capability.Target, 1, guidance.State{Velocity: vecmath.Vec{X: 60}}, vecmath.Vec{}, 0)

	for i := 0; i < 60; i++ {
		w.Step()
	}

	assert.InDelta(t, 60, b.State.Position.X, 1e-6)
	assert.Equal(t, int64(60), w.Tick())
	assert.Empty(t, w.Records(), "bodies without agents are not recorded")
}

func TestMissileDestroysStationaryTarget(t *testing.T) {
	t.Parallel()
	w := NewWorld(Options{Seed: 3})
	m, err := w.Spawn(capability.Missile, 0, guidance.State{})
	require.NoError(t, err)
	target := w.Place(capability.Target, 1, guidance.State{Position: vecmath.Vec{X: 3000}}, vecmath.Vec{}, 0)

	res := w.Run(1200)

	assert.False(t, target.Alive)
	assert.False(t, m.Alive)
	assert.Equal(t, 1, res.Lost[1])
	assert.Equal(t, -1, res.Winner)
	assert.Less(t, res.Ticks, int64(1200))

	detonated := false
	for _, r := range res.Records {
		if r.Detonate {
			detonated = true
			assert.Less(t, r.Range, 100.0)
		}
	}
	assert.True(t, detonated)
}

func TestFighterDestroysStationaryDrone(t *testing.T) {
	t.Parallel()
	w := NewWorld(Options{Seed: 5})
	f, err := w.Spawn(capability.Fighter, 0, guidance.State{})
	require.NoError(t, err)
	w.Place(capability.Target, 1, guidance.State{Position: vecmath.Vec{X: 1500}}, vecmath.Vec{}, 0)

	res := w.Run(600)

	assert.Equal(t, 0, res.Winner)
	assert.Equal(t, 1, res.Lost[1])
	assert.True(t, f.Alive)
	assert.Positive(t, f.Shots)

	var tracked bool
	for _, r := range res.Records {
		if r.BodyID == f.ID && r.HasBelief {
			tracked = true
			assert.InDelta(t, 0, r.BeliefError(), 1e-6)
		}
	}
	assert.True(t, tracked)
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	t.Parallel()
	run := func() []vecmath.Vec {
		w, err := Load("duel", Options{Seed: 7, Noise: 5, ReportConfidence: true})
		require.NoError(t, err)
		w.Run(300)
		var out []vecmath.Vec
		for _, b := range w.Bodies() {
			out = append(out, b.State.Position)
		}
		return out
	}

	first, second := run(), run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("positions differ between runs (-first +second):\n%s", diff)
	}
}
