package main

import (
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mkocic/worb"
	"github.com/mkocic/worb/body"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Scenario is the on-disk (YAML) description of a world to build and
// step: spec.md delegates persistence to the shell, so this format is
// worbctl's own, not part of the core.
type Scenario struct {
	MaxObjects    int        `yaml:"max_objects"`
	MaxCollisions int        `yaml:"max_collisions"`
	Gravity       [3]float64 `yaml:"gravity"`
	Restitution   float64    `yaml:"restitution"`
	Relaxation    float64    `yaml:"relaxation"`
	Friction      float64    `yaml:"friction"`
	Steps         int        `yaml:"steps"`
	Dt            float64    `yaml:"dt"`

	Bodies  []BodySpec    `yaml:"bodies"`
	Scenery []SceneryItem `yaml:"scenery"`
}

// BodySpec describes one dynamic rigid body, discriminated by Shape: a
// "sphere" uses Radius, a "cuboid" uses HalfExtents.
type BodySpec struct {
	Shape           string     `yaml:"shape"`
	Radius          float64    `yaml:"radius,omitempty"`
	HalfExtents     [3]float64 `yaml:"half_extents,omitempty"`
	Mass            float64    `yaml:"mass"`
	Position        [3]float64 `yaml:"position"`
	Velocity        [3]float64 `yaml:"velocity"`
	AngularVelocity [3]float64 `yaml:"angular_velocity"`
}

// SceneryItem describes one piece of static scenery: a half-space or
// a true (two-sided) plane, discriminated by Shape.
type SceneryItem struct {
	Shape  string     `yaml:"shape"`
	Normal [3]float64 `yaml:"normal"`
	Offset float64    `yaml:"offset"`
}

func vec(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}

// LoadScenario reads and parses a scenario file, applying the same
// zero-value defaults world_new would (restitution 1.0, relaxation
// 0.2) when the file omits them.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errors.Wrapf(err, "reading scenario %q", path)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, errors.Wrapf(err, "parsing scenario %q", path)
	}
	if s.MaxObjects == 0 {
		s.MaxObjects = 64
	}
	if s.MaxCollisions == 0 {
		s.MaxCollisions = 256
	}
	if s.Dt == 0 {
		s.Dt = 0.01
	}
	if s.Restitution == 0 {
		s.Restitution = 1.0
	}
	if s.Relaxation == 0 {
		s.Relaxation = 0.2
	}
	return s, nil
}

// BuildWorld constructs a worb.World from a parsed scenario.
func BuildWorld(s Scenario) (*worb.World, error) {
	w := worb.NewWorld(s.MaxObjects, s.MaxCollisions)
	w.SetGravity(vec(s.Gravity))
	w.SetRestitution(s.Restitution)
	w.SetRelaxation(s.Relaxation)
	w.SetFriction(s.Friction)
	w.ReportSevere = func(id int, message string) {
		log.Printf("worb: severe error (id=%d): %s", id, message)
	}

	for i, b := range s.Bodies {
		transform := body.Shoemake(mgl64.QuatIdent(), vec(b.Position))
		var rb *body.RigidBody
		switch b.Shape {
		case "sphere":
			rb = w.AddSphere(b.Radius, b.Mass, transform, vec(b.Velocity), vec(b.AngularVelocity))
		case "cuboid":
			rb = w.AddCuboid(vec(b.HalfExtents), b.Mass, transform, vec(b.Velocity), vec(b.AngularVelocity))
		default:
			return nil, errors.Errorf("scenario body %d: unknown shape %q", i, b.Shape)
		}
		if rb == nil {
			return nil, errors.Errorf("scenario body %d: world is at capacity", i)
		}
	}

	for i, item := range s.Scenery {
		switch item.Shape {
		case "half_space":
			if !w.AddHalfSpace(vec(item.Normal), item.Offset) {
				return nil, errors.Errorf("scenario scenery %d: world is at capacity", i)
			}
		case "true_plane":
			if !w.AddTruePlane(vec(item.Normal), item.Offset) {
				return nil, errors.Errorf("scenario scenery %d: world is at capacity", i)
			}
		default:
			return nil, errors.Errorf("scenario scenery %d: unknown shape %q", i, item.Shape)
		}
	}

	w.Initialize()
	return w, nil
}
