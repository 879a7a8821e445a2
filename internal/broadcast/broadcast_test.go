package broadcast

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

func TestSelfIDFrameLayout(t *testing.T) {
	t.Parallel()
	id := SelfID{Class: capability.Frigate, Position: vecmath.Vec{X: 1.5, Y: -2}, Heading: math.Pi}
	frame := EncodeSelfID(id)

	assert.Equal(t, byte(capability.Frigate), frame[0])
	assert.Equal(t, make([]byte, 6), frame[1:7])
	var sum byte
	sum += frame[0]
	for _, b := range frame[8:] {
		sum += b
	}
	assert.Equal(t, sum, frame[7])

	got, ok := DecodeSelfID(frame[:])
	require.True(t, ok)
	if diff := cmp.Diff(id, got); diff != "" {
		t.Errorf("decoded frame mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSelfIDRejectsCorruption(t *testing.T) {
	t.Parallel()
	frame := EncodeSelfID(SelfID{Class: capability.Cruiser, Position: vecmath.Vec{X: 100, Y: 200}, Heading: 1})

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"short", func(b []byte) []byte { return b[:31] }},
		{"empty", func([]byte) []byte { return nil }},
		{"payload bit flip", func(b []byte) []byte { b[12] ^= 0x01; return b }},
		{"class changed", func(b []byte) []byte { b[0] = byte(capability.Fighter); return b }},
		{"checksum changed", func(b []byte) []byte { b[7]++; return b }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := append([]byte(nil), frame[:]...)
			_, ok := DecodeSelfID(tt.mutate(buf))
			assert.False(t, ok)
		})
	}
}

func TestDecodeSelfIDUnknownClass(t *testing.T) {
	t.Parallel()
	frame := EncodeSelfID(SelfID{Class: capability.Class(200)})
	got, ok := DecodeSelfID(frame[:])
	require.True(t, ok)
	assert.Equal(t, capability.Unknown, got.Class)
}

func TestTrackMessage(t *testing.T) {
	t.Parallel()
	m := NewTrackMessage(vecmath.Vec{X: 1, Y: 2}, vecmath.Vec{X: 3, Y: 4})
	assert.Equal(t, TrackMessage{1, 2, 3, 4}, m)
	assert.Equal(t, vecmath.Vec{X: 1, Y: 2}, m.Position())
	assert.Equal(t, vecmath.Vec{X: 3, Y: 4}, m.Velocity())
	assert.True(t, m.Valid())
	assert.False(t, TrackMessage{math.NaN(), 0, 0, 0}.Valid())
	assert.False(t, TrackMessage{0, math.Inf(1), 0, 0}.Valid())
	assert.False(t, TrackMessage{0, 0, math.Inf(-1), 0}.Valid())
}

type queue []TrackMessage

func (q *queue) Receive() (TrackMessage, bool) {
	if len(*q) == 0 {
		return TrackMessage{}, false
	}
	m := (*q)[0]
	*q = (*q)[1:]
	return m, true
}

func TestMailboxMostRecentWins(t *testing.T) {
	t.Parallel()
	mb := NewMailbox(30)
	_, ok := mb.Latest(0)
	assert.False(t, ok, "silence")
	assert.Equal(t, int64(-1), mb.Age(0))

	q := &queue{{1, 1, 0, 0}, {2, 2, 0, 0}, {math.NaN(), 0, 0, 0}}
	assert.Equal(t, 2, mb.Poll(q, 10))
	got, ok := mb.Latest(10)
	require.True(t, ok)
	assert.Equal(t, TrackMessage{2, 2, 0, 0}, got, "invalid message does not overwrite")

	got, ok = mb.Latest(40)
	assert.True(t, ok)
	assert.Equal(t, int64(30), mb.Age(40))
	_, ok = mb.Latest(41)
	assert.False(t, ok, "stale")

	mb.Clear()
	_, ok = mb.Latest(10)
	assert.False(t, ok)
}

func TestMailboxNeverExpires(t *testing.T) {
	t.Parallel()
	mb := NewMailbox(0)
	mb.Put(TrackMessage{5, 5, 5, 5}, 0)
	_, ok := mb.Latest(1_000_000)
	assert.True(t, ok)
}
