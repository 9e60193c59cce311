// Package dynamo provides the core types shared by the gravity simulation.
//
// The package defines the data model and the contracts between components:
//
//   - [Body] and [Bodies]: mutable point-mass state owned by one run
//   - [Field]: full recomputation of the acceleration field
//   - [Stepper] / [Integrator]: in-place time stepping
//   - [Renderer]: read-only consumer of body positions, once per frame
//   - [Metric] / [Observer]: per-step monitoring hooks
//
// # Ownership
//
// A body list belongs to exactly one loop or simulator. It is passed by
// reference to one Step call at a time; nothing else writes to it.
//
//	bodies := physics.BinaryStars()
//	integ := integrators.NewForestRuth(physics.NewGravity(physics.G))
//	integ.Step(bodies, 86400)
package dynamo
