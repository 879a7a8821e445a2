// Package broadcast adapts the narrow inter-agent radio: a four-number track
// message, a 32-byte self-identification frame, and a mailbox that keeps the
// most recent message.
package broadcast

import (
	"encoding/binary"
	"math"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// FrameSize is the length of a self-identification frame.
//
//	byte 0      class
//	bytes 1-6   zero
//	byte 7      checksum: wrapping sum of byte 0 and bytes 8-31
//	bytes 8-15  x, little-endian float64
//	bytes 16-23 y
//	bytes 24-31 heading
const FrameSize = 32

const checksumOffset = 7

// SelfID is the decoded content of a self-identification frame.
type SelfID struct {
	Class    capability.Class
	Position vecmath.Vec
	Heading  float64
}

func checksum(frame []byte) byte {
	sum := frame[0]
	for _, b := range frame[8:FrameSize] {
		sum += b
	}
	return sum
}

// EncodeSelfID builds the frame announcing an agent's class, position and
// heading.
func EncodeSelfID(id SelfID) [FrameSize]byte {
	var frame [FrameSize]byte
	frame[0] = byte(id.Class)
	binary.LittleEndian.PutUint64(frame[8:16], math.Float64bits(id.Position.X))
	binary.LittleEndian.PutUint64(frame[16:24], math.Float64bits(id.Position.Y))
	binary.LittleEndian.PutUint64(frame[24:32], math.Float64bits(id.Heading))
	frame[checksumOffset] = checksum(frame[:])
	return frame
}

// DecodeSelfID parses a frame. It reports false for short frames and
// checksum mismatches; callers treat that as no information.
func DecodeSelfID(frame []byte) (SelfID, bool) {
	if len(frame) < FrameSize {
		return SelfID{}, false
	}
	if checksum(frame) != frame[checksumOffset] {
		return SelfID{}, false
	}
	return SelfID{
		Class: capability.ClassFromByte(frame[0]),
		Position: vecmath.Vec{
			X: math.Float64frombits(binary.LittleEndian.Uint64(frame[8:16])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(frame[16:24])),
		},
		Heading: math.Float64frombits(binary.LittleEndian.Uint64(frame[24:32])),
	}, true
}
