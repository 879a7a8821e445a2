// Package capability holds the per-class device constants: acceleration
// envelopes, weapon mounts and projectile speeds, plausibility limits used by
// the estimator, and detonation radii. The table is built once and shared.
package capability

import (
	"fmt"
	"math"
	"sync"

	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Class identifies the kind of object a contact or agent is.
type Class uint8

const (
	Fighter Class = iota
	Frigate
	Cruiser
	Asteroid
	Target
	Missile
	Torpedo
	Unknown
)

var classNames = [...]string{"fighter", "frigate", "cruiser", "asteroid", "target", "missile", "torpedo", "unknown"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ClassFromByte maps a wire byte to a Class. Out-of-range values map to Unknown.
func ClassFromByte(b byte) Class {
	if b >= byte(Unknown) {
		return Unknown
	}
	return Class(b)
}

// IsGuidedMunition reports whether the class is a self-propelled interceptor.
// Trackers ignore these when building their target lists.
func (c Class) IsGuidedMunition() bool {
	return c == Missile || c == Torpedo
}

// Envelope is the body-frame acceleration capability of a vehicle (m/s²,
// rad/s²). Backward is a magnitude; zero means the vehicle cannot reverse.
type Envelope struct {
	Forward  float64
	Backward float64
	Lateral  float64
	Angular  float64
}

// WithForwardBonus returns a copy with Forward raised by bonus, used while a
// speed boost is active.
func (e Envelope) WithForwardBonus(bonus float64) Envelope {
	e.Forward += bonus
	return e
}

// Weapon describes one weapon mount.
type Weapon struct {
	Index int
	// Offset is the mount position in the body frame (+X forward).
	Offset vecmath.Vec
	// ProjectileSpeed is the muzzle speed in m/s; zero for launchers of
	// guided munitions, which are cued rather than aimed.
	ProjectileSpeed float64
	// Fixed mounts point along the hull and are aimed by turning the ship;
	// the rest are turrets.
	Fixed bool
}

// Ballistic reports whether the weapon fires unguided projectiles.
func (w Weapon) Ballistic() bool { return w.ProjectileSpeed > 0 }

// Profile bundles all constants for one class.
type Profile struct {
	Class    Class
	Envelope Envelope
	// PeakAcceleration is the largest body-frame acceleration the class can
	// show to an observer (boosted forward and lateral combined).
	PeakAcceleration vecmath.Vec
	Weapons          []Weapon
	// DetonationRadius is the proximity at which an interceptor engaging
	// this class should detonate.
	DetonationRadius float64
}

// Table is an immutable lookup of class profiles.
type Table struct {
	profiles map[Class]Profile
}

// NewTable builds a table from the given profiles.
func NewTable(profiles ...Profile) *Table {
	t := &Table{profiles: make(map[Class]Profile, len(profiles))}
	for _, p := range profiles {
		t.profiles[p.Class] = p
	}
	return t
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared built-in table.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable(builtinProfiles()...)
	})
	return defaultTable
}

func builtinProfiles() []Profile {
	return []Profile{
		{
			Class:            Fighter,
			Envelope:         Envelope{Forward: 60, Backward: 30, Lateral: 30, Angular: 2 * math.Pi},
			PeakAcceleration: vecmath.Vec{X: 160, Y: 30},
			Weapons: []Weapon{
				{Index: 0, ProjectileSpeed: 1000, Fixed: true},
				{Index: 1},
			},
			DetonationRadius: 100,
		},
		{
			Class:            Frigate,
			Envelope:         Envelope{Forward: 10, Backward: 5, Lateral: 5, Angular: math.Pi / 4},
			PeakAcceleration: vecmath.Vec{X: 10, Y: 5},
			Weapons: []Weapon{
				{Index: 0, Offset: vecmath.Vec{X: 40}, ProjectileSpeed: 4000, Fixed: true},
				{Index: 1, Offset: vecmath.Vec{Y: 30}, ProjectileSpeed: 1000},
				{Index: 2, Offset: vecmath.Vec{Y: -30}, ProjectileSpeed: 1000},
				{Index: 3},
			},
			DetonationRadius: 195,
		},
		{
			Class:            Cruiser,
			Envelope:         Envelope{Forward: 5, Backward: 5, Lateral: 2.5, Angular: math.Pi / 8},
			PeakAcceleration: vecmath.Vec{X: 5, Y: 2.5},
			Weapons: []Weapon{
				{Index: 0, ProjectileSpeed: 2000},
				{Index: 1},
				{Index: 2},
				{Index: 3},
			},
			DetonationRadius: 150,
		},
		{
			Class:            Missile,
			Envelope:         Envelope{Forward: 300, Backward: 0, Lateral: 100, Angular: 4 * math.Pi},
			PeakAcceleration: vecmath.Vec{X: 400, Y: 100},
			Weapons:          []Weapon{{Index: 0, ProjectileSpeed: 3000}},
			DetonationRadius: 100,
		},
		{
			Class:            Torpedo,
			Envelope:         Envelope{Forward: 70, Backward: 0, Lateral: 20, Angular: 2 * math.Pi},
			PeakAcceleration: vecmath.Vec{X: 70, Y: 20},
			DetonationRadius: 100,
		},
		{Class: Asteroid},
		{Class: Target, Envelope: Envelope{Forward: 60, Backward: 30, Lateral: 30, Angular: 2 * math.Pi}, PeakAcceleration: vecmath.Vec{X: 60, Y: 30}, DetonationRadius: 100},
		{Class: Unknown},
	}
}

// Profile returns the profile for c.
func (t *Table) Profile(c Class) (Profile, bool) {
	p, ok := t.profiles[c]
	return p, ok
}

// MaxAcceleration returns the largest plausible acceleration magnitude for
// c. Unknown classes report zero.
func (t *Table) MaxAcceleration(c Class) float64 {
	p, ok := t.profiles[c]
	if !ok {
		return 0
	}
	return vecmath.Length(p.PeakAcceleration)
}

// Envelope returns the unboosted acceleration envelope of c.
func (t *Table) Envelope(c Class) Envelope {
	return t.profiles[c].Envelope
}

// Weapon returns the weapon mounted at index on class c.
func (t *Table) Weapon(c Class, index int) (Weapon, bool) {
	p, ok := t.profiles[c]
	if !ok || index < 0 || index >= len(p.Weapons) {
		return Weapon{}, false
	}
	return p.Weapons[index], true
}

// Weapons returns all weapon mounts of c.
func (t *Table) Weapons(c Class) []Weapon {
	return t.profiles[c].Weapons
}

// DetonationRadius returns the proximity-fuse radius to use against target.
func (t *Table) DetonationRadius(target Class) float64 {
	if p, ok := t.profiles[target]; ok && p.DetonationRadius > 0 {
		return p.DetonationRadius
	}
	return 100
}
