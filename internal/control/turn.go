package control

import (
	"math"

	"github.com/ava5627/oort-ai/internal/vecmath"
)

// TurnTo returns a bang-bang torque that brings heading to target as fast
// as maxAngular allows. It accelerates toward the target while braking the
// current angular velocity to zero would still leave the vehicle short of
// it, and brakes otherwise.
func TurnTo(target, heading, angularVelocity, maxAngular float64) float64 {
	if maxAngular <= 0 {
		return 0
	}
	err := vecmath.AngleDiff(heading, target)
	// Heading change accumulated while braking to a stop.
	drift := angularVelocity * math.Abs(angularVelocity) / (2 * maxAngular)
	stoppedErr := vecmath.AngleDiff(heading+drift, target)

	dir := vecmath.Sign(err)
	if stoppedErr*err > 0 {
		return maxAngular * dir
	}
	return -maxAngular * dir
}
