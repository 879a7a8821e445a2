package broadcast

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ava5627/oort-ai/internal/vecmath"
)

// TrackMessage is the radio payload cueing another agent onto a target:
// [x, y, vx, vy].
type TrackMessage [4]float64

// NewTrackMessage packs a target position and velocity.
func NewTrackMessage(pos, vel vecmath.Vec) TrackMessage {
	return TrackMessage{pos.X, pos.Y, vel.X, vel.Y}
}

// Position returns the target position.
func (m TrackMessage) Position() vecmath.Vec { return vecmath.Vec{X: m[0], Y: m[1]} }

// Velocity returns the target velocity.
func (m TrackMessage) Velocity() vecmath.Vec { return vecmath.Vec{X: m[2], Y: m[3]} }

// Valid reports whether every field is finite.
func (m TrackMessage) Valid() bool {
	return !floats.HasNaN(m[:]) && !math.IsInf(floats.Max(m[:]), 1) && !math.IsInf(floats.Min(m[:]), -1)
}

// Receiver is the inbound side of a radio channel.
type Receiver interface {
	// Receive returns the next pending message, if any.
	Receive() (TrackMessage, bool)
}

// Sender is the outbound side of a radio channel.
type Sender interface {
	Send(TrackMessage)
}

// Mailbox keeps the most recent valid message from a lossy channel along
// with the tick it arrived. Messages older than MaxAge ticks are stale.
type Mailbox struct {
	MaxAge int64

	latest TrackMessage
	tick   int64
	has    bool
}

// NewMailbox returns an empty mailbox. A non-positive maxAge never expires.
func NewMailbox(maxAge int64) *Mailbox {
	return &Mailbox{MaxAge: maxAge}
}

// Put stores msg as the latest if it is valid.
func (m *Mailbox) Put(msg TrackMessage, now int64) bool {
	if !msg.Valid() {
		return false
	}
	m.latest, m.tick, m.has = msg, now, true
	return true
}

// Poll drains r, keeping the last valid message. It returns how many
// messages were accepted.
func (m *Mailbox) Poll(r Receiver, now int64) int {
	n := 0
	for {
		msg, ok := r.Receive()
		if !ok {
			return n
		}
		if m.Put(msg, now) {
			n++
		}
	}
}

// Latest returns the freshest message unless none arrived or it is stale.
func (m *Mailbox) Latest(now int64) (TrackMessage, bool) {
	if !m.has {
		return TrackMessage{}, false
	}
	if m.MaxAge > 0 && now-m.tick > m.MaxAge {
		return TrackMessage{}, false
	}
	return m.latest, true
}

// Age returns ticks since the latest message, or -1 if none.
func (m *Mailbox) Age(now int64) int64 {
	if !m.has {
		return -1
	}
	return now - m.tick
}

// Clear forgets the stored message.
func (m *Mailbox) Clear() {
	m.has = false
	m.latest = TrackMessage{}
}
