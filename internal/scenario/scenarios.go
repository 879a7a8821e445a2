package scenario

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/ava5627/oort-ai/internal/capability"
	"github.com/ava5627/oort-ai/internal/guidance"
	"github.com/ava5627/oort-ai/internal/vecmath"
)

// Scenario is a named initial layout.
type Scenario struct {
	Name        string
	Description string
	Setup       func(w *World) error
}

var registry = map[string]Scenario{
	"gunnery": {
		Name:        "gunnery",
		Description: "fighter against a weaving target drone",
		Setup: func(w *World) error {
			if _, err := w.Spawn(capability.Fighter, 0, guidance.State{}); err != nil {
				return err
			}
			w.Place(capability.Target, 1, guidance.State{
				Position: vecmath.Vec{X: 2000, Y: 500},
				Velocity: vecmath.Vec{Y: 50},
			}, vecmath.Vec{Y: 20}, 120)
			return nil
		},
	},
	"duel": {
		Name:        "duel",
		Description: "two fighters closing head on",
		Setup: func(w *World) error {
			if _, err := w.Spawn(capability.Fighter, 0, guidance.State{}); err != nil {
				return err
			}
			_, err := w.Spawn(capability.Fighter, 1, guidance.State{
				Position: vecmath.Vec{X: 3000, Y: 200},
				Heading:  math.Pi,
			})
			return err
		},
	},
	"fleet": {
		Name:        "fleet",
		Description: "frigate against three drifting targets",
		Setup: func(w *World) error {
			if _, err := w.Spawn(capability.Frigate, 0, guidance.State{}); err != nil {
				return err
			}
			for i, bearing := range []float64{0.3, 1.6, -2.2} {
				w.Place(capability.Target, 1, guidance.State{
					Position: vecmath.Polar(bearing, 3000+1000*float64(i)),
					Velocity: vecmath.Polar(bearing+math.Pi/2, 40),
				}, vecmath.Vec{}, 0)
			}
			return nil
		},
	},
	"missile": {
		Name:        "missile",
		Description: "missile against a crossing target",
		Setup: func(w *World) error {
			if _, err := w.Spawn(capability.Missile, 0, guidance.State{Velocity: vecmath.Vec{X: 200}}); err != nil {
				return err
			}
			w.Place(capability.Target, 1, guidance.State{
				Position: vecmath.Vec{X: 8000, Y: 2000},
				Velocity: vecmath.Vec{X: -100, Y: 50},
			}, vecmath.Vec{Y: 30}, 90)
			return nil
		},
	},
	"cruiser": {
		Name:        "cruiser",
		Description: "cruiser with torpedoes against two distant targets",
		Setup: func(w *World) error {
			if _, err := w.Spawn(capability.Cruiser, 0, guidance.State{}); err != nil {
				return err
			}
			w.Place(capability.Target, 1, guidance.State{Position: vecmath.Vec{X: 6000, Y: 1000}}, vecmath.Vec{}, 0)
			w.Place(capability.Target, 1, guidance.State{Position: vecmath.Vec{X: -5000, Y: 3000}}, vecmath.Vec{}, 0)
			return nil
		},
	},
}

// Lookup returns the named scenario.
func Lookup(name string) (Scenario, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names returns the registered scenario names in order.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Load builds a world for the named scenario.
func Load(name string, opts Options) (*World, error) {
	s, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (have %v)", name, Names())
	}
	w := NewWorld(opts)
	if err := s.Setup(w); err != nil {
		return nil, fmt.Errorf("setup %s: %w", name, err)
	}
	return w, nil
}
