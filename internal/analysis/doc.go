// Package analysis provides post-processing tools for recorded orbits and
// integrator studies.
//
//   - [Convergence]: global error against an analytic circular orbit at
//     several step sizes, and the observed order of accuracy
//   - [DominantPeriod], [OrbitalPeriod]: FFT period estimation
//   - [CrossingPeriod]: period from successive upward crossings
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [OrbitToASCII]: quick terminal plot of every body's path
//
// # Order of accuracy
//
// Halving dt divides the error by 2^p for an order-p scheme:
//
//	res, _ := analysis.Convergence(newVerlet, 0.5, 0.5, 1, []int{100, 200, 400})
//	fmt.Printf("observed order %.2f\n", res.Order) // ≈ 2
package analysis
