// Package physics provides the Newtonian gravity force law and the
// conserved quantities used to judge an integration.
//
//   - [Gravity]: pairwise acceleration and the full acceleration field
//   - [KineticEnergy], [Momentum], [AngularMomentum], [CenterOfMass]
//   - [BinaryStars], [CircularBinary], [FigureEight], [SunEarthMoon]: reference systems
//
// Coincident bodies exert no force on each other; no softening is applied
// otherwise.
//
// # Energy Conservation
//
// Gravity implements [dynamo.Hamiltonian]:
//
//	g := physics.NewGravity(physics.G)
//	e0 := g.Energy(bodies)
package physics
