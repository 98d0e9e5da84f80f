// Package worb simulates a bounded set of rigid bodies under gravity
// and contact forces: Newton-Euler integration, SAT-based collision
// detection, and sequential impulse/position-projection resolution.
package worb

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mkocic/worb/body"
	"github.com/mkocic/worb/contact"
)

// ReportSevere is the sink an embedder installs for unrecoverable
// misuse (index out of bounds, capacity exceeded). id identifies the
// offending geometry/contact index when applicable, or -1.
type ReportSevere func(id int, message string)

// World owns a fixed-capacity list of geometries and a fixed-capacity
// contact registry, and orchestrates the per-step sequence: gravity,
// integration, clock, aggregates, detection, and the two sequential
// resolvers.
type World struct {
	Geometries []*body.Geometry
	MaxObjects int

	// contactsArena is allocated once at construction and reused every
	// step; contactsActive is resliced from its backing array so
	// detection never allocates past the registry's capacity.
	contactsArena []contact.Contact
	contactsActive []*contact.Contact
	MaxCollisions  int

	Gravity mgl64.Vec3

	Restitution float64
	Relaxation  float64
	Friction    float64

	Time      float64
	StepCount int

	TotalKineticEnergy   float64
	TotalPotentialEnergy float64
	TotalLinearMomentum  mgl64.Vec3
	TotalAngularMomentum mgl64.Vec3

	ReportSevere ReportSevere
}

// NewWorld constructs a world with the given fixed capacities and the
// spec's default coefficients: restitution=1.0, relaxation=0.2,
// friction=0.0.
func NewWorld(maxObjects, maxCollisions int) *World {
	return &World{
		Geometries:     make([]*body.Geometry, 0, maxObjects),
		MaxObjects:     maxObjects,
		contactsArena:  make([]contact.Contact, maxCollisions),
		contactsActive: make([]*contact.Contact, 0, maxCollisions),
		MaxCollisions:  maxCollisions,
		Restitution:    1.0,
		Relaxation:     0.2,
		Friction:       0.0,
		ReportSevere:   func(id int, message string) {},
	}
}

// SetGravity sets the world's uniform gravitational acceleration.
func (w *World) SetGravity(g mgl64.Vec3) { w.Gravity = g }

// SetRestitution sets the global restitution coefficient applied to
// newly detected contacts.
func (w *World) SetRestitution(e float64) { w.Restitution = e }

// SetRelaxation sets the position-projection relaxation factor.
func (w *World) SetRelaxation(r float64) { w.Relaxation = r }

// SetFriction sets the global friction coefficient applied to newly
// detected contacts.
func (w *World) SetFriction(mu float64) { w.Friction = mu }

// addGeometry appends g if the world has spare capacity, invoking the
// severe-error sink and returning false otherwise.
func (w *World) addGeometry(g *body.Geometry) bool {
	if len(w.Geometries) >= w.MaxObjects {
		w.ReportSevere(-1, fmt.Sprintf("AddGeometry: world is at capacity (%d)", w.MaxObjects))
		return false
	}
	w.Geometries = append(w.Geometries, g)
	return true
}

// AddSphere creates a sphere-shaped rigid body of the given radius and
// mass, at the given transform and initial velocities, and adds it to
// the world. Returns nil if the world is at capacity.
func (w *World) AddSphere(radius, mass float64, transform body.Transform, velocity, angularVelocity mgl64.Vec3) *body.RigidBody {
	shape := body.Geometry{Kind: body.Sphere, Radius: radius}
	rb := body.NewRigidBody(transform, velocity, angularVelocity, mass, shape.ComputeInertia(mass))
	g := body.NewSphere(radius, rb)
	if !w.addGeometry(&g) {
		return nil
	}
	return rb
}

// AddCuboid creates a cuboid-shaped rigid body with the given
// half-extents and mass, at the given transform and initial
// velocities, and adds it to the world. Returns nil if the world is
// at capacity.
func (w *World) AddCuboid(halfExtents mgl64.Vec3, mass float64, transform body.Transform, velocity, angularVelocity mgl64.Vec3) *body.RigidBody {
	shape := body.Geometry{Kind: body.Cuboid, HalfExtents: halfExtents}
	rb := body.NewRigidBody(transform, velocity, angularVelocity, mass, shape.ComputeInertia(mass))
	g := body.NewCuboid(halfExtents, rb)
	if !w.addGeometry(&g) {
		return nil
	}
	return rb
}

// AddHalfSpace adds static one-sided scenery {p : n.p <= d}. Returns
// false if the world is at capacity.
func (w *World) AddHalfSpace(normal mgl64.Vec3, offset float64) bool {
	g := body.NewHalfSpace(normal, offset)
	return w.addGeometry(&g)
}

// AddTruePlane adds static two-sided scenery at {p : n.p == d}.
// Returns false if the world is at capacity.
func (w *World) AddTruePlane(normal mgl64.Vec3, offset float64) bool {
	g := body.NewTruePlane(normal, offset)
	return w.addGeometry(&g)
}

// ClearGeometries empties the world's geometry list.
func (w *World) ClearGeometries() {
	w.Geometries = w.Geometries[:0]
}

// Initialize resets the clock, step counter, contact registry, body
// accumulators and aggregates to their zero state.
func (w *World) Initialize() {
	w.Time = 0
	w.StepCount = 0
	w.contactsActive = w.contactsActive[:0]
	w.TotalKineticEnergy = 0
	w.TotalPotentialEnergy = 0
	w.TotalLinearMomentum = mgl64.Vec3{}
	w.TotalAngularMomentum = mgl64.Vec3{}
	w.forEachBody(func(rb *body.RigidBody) {
		rb.ClearAccumulators()
	})
}

// forEachBody calls fn for every geometry's owning body (scenery,
// whose Body is nil, is skipped), per spec.md §4.6's definition of
// "bodies in the world".
func (w *World) forEachBody(fn func(*body.RigidBody)) {
	for _, g := range w.Geometries {
		if g.Body != nil {
			fn(g.Body)
		}
	}
}

// Step advances the simulation by h: gravity, integration, clock,
// aggregates, detection, then the two sequential resolvers, per
// spec.md §2's control flow. The core is single-threaded and
// deterministic (spec.md §5): no step here spawns a goroutine.
func (w *World) Step(h float64) {
	w.forEachBody(func(rb *body.RigidBody) {
		if rb.Active && rb.InverseMass != 0 {
			rb.AddExternalForce(w.Gravity.Mul(rb.Mass()))
		}
	})

	w.forEachBody(func(rb *body.RigidBody) {
		rb.Integrate(h)
	})

	w.Time += h
	w.StepCount++

	w.recomputeAggregates()

	w.detectAllPairs()

	for _, c := range w.contactsActive {
		c.UpdateDerived(h)
	}
	contact.Resolve(w.contactsActive, contact.DefaultEps)
	contact.Project(w.contactsActive, contact.DefaultEps, w.Relaxation)

	w.forEachBody(func(rb *body.RigidBody) {
		rb.ClearAccumulators()
	})
}

func (w *World) recomputeAggregates() {
	w.TotalKineticEnergy = 0
	w.TotalPotentialEnergy = 0
	w.TotalLinearMomentum = mgl64.Vec3{}
	w.TotalAngularMomentum = mgl64.Vec3{}
	w.forEachBody(func(rb *body.RigidBody) {
		w.TotalKineticEnergy += rb.KineticEnergy
		w.TotalPotentialEnergy += rb.Energy
		w.TotalLinearMomentum = w.TotalLinearMomentum.Add(rb.Momentum)
		w.TotalAngularMomentum = w.TotalAngularMomentum.Add(rb.TotalAngularMomentum)
	})
}

// TotalEnergy returns the sum of the world's total kinetic and
// potential energy.
func (w *World) TotalEnergy() float64 {
	return w.TotalKineticEnergy + w.TotalPotentialEnergy
}

// detectAllPairs clears the contact registry and performs an
// all-pairs scan in lexicographic (i,j) order with i<j, per spec.md
// §5's determinism requirement. Pairs whose geometries are both
// static scenery are skipped; further contacts past MaxCollisions are
// dropped silently (spec.md §7's registry-saturation handling).
func (w *World) detectAllPairs() {
	w.contactsActive = w.contactsActive[:0]
	n := len(w.Geometries)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w.registerContacts(w.Geometries[i], w.Geometries[j])
		}
	}
}

func (w *World) registerContacts(a, b *body.Geometry) {
	if a.Body == nil && b.Body == nil {
		return
	}
	for _, rc := range detectPair(a, b) {
		if len(w.contactsActive) >= w.MaxCollisions {
			return
		}
		idx := len(w.contactsActive)
		w.contactsArena[idx] = contact.New(a.Body, b.Body, rc.Position, rc.Normal, rc.Penetration, w.Restitution, w.Friction)
		w.contactsActive = append(w.contactsActive, &w.contactsArena[idx])
	}
}

// ContactCount returns the number of contacts registered this step.
func (w *World) ContactCount() int {
	return len(w.contactsActive)
}

// Contact returns contact i, or false and invokes the severe-error
// sink if i is out of range.
func (w *World) Contact(i int) (*contact.Contact, bool) {
	if i < 0 || i >= len(w.contactsActive) {
		w.ReportSevere(i, "Contact: index out of range")
		return nil, false
	}
	return w.contactsActive[i], true
}

// HasSpaceForMoreContacts reports whether the registry has room for
// another contact this step.
func (w *World) HasSpaceForMoreContacts() bool {
	return len(w.contactsActive) < w.MaxCollisions
}

// Dump writes a human-readable diagnostic snapshot of the world's
// parameters and every body's state, for debugging use.
func (w *World) Dump(out io.Writer) {
	fmt.Fprintf(out, "worb.World t=%.4f step=%d bodies=%d contacts=%d/%d\n",
		w.Time, w.StepCount, len(w.Geometries), len(w.contactsActive), w.MaxCollisions)
	fmt.Fprintf(out, "gravity=%v restitution=%.3f relaxation=%.3f friction=%.3f\n",
		w.Gravity, w.Restitution, w.Relaxation, w.Friction)
	fmt.Fprintf(out, "%-8s %-24s %-24s %-20s %-20s %-20s %-20s %-10s\n",
		"mass", "position", "orientation", "momentum", "ang.momentum", "velocity", "ang.velocity", "KE")
	for _, g := range w.Geometries {
		rb := g.Body
		if rb == nil {
			continue
		}
		fmt.Fprintf(out, "%-8.3f %-24v %-24v %-20v %-20v %-20v %-20v %-10.4f\n",
			rb.Mass(), rb.T.Position, rb.T.Rotation, rb.Momentum, rb.AngularMomentum,
			rb.Velocity, rb.AngularVelocity, rb.KineticEnergy)
	}
}
