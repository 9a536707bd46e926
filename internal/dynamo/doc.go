// Package dynamo provides the core primitives shared by the tilt simulation.
//
// The package defines the values that cross package boundaries:
//
//   - [Vec2]: two-dimensional vector for positions, velocities and forces
//   - [Input]: the external force applied to every body for one tick
//   - [Params]: tunable physical constants and the selected [Variant]
//   - [Event]: discrete tick output (bounce, capture, escape, win)
//   - [Observer]: subscriber that receives events after each tick
//
// # Example
//
//	eng := sim.New(dynamo.DefaultParams(), 600)
//	res := eng.Tick(dynamo.RestInput(eng.Params()))
//	for _, ev := range res.Events {
//	    fmt.Println(ev)
//	}
//
// # Thread Safety
//
// Nothing in this package holds shared state. Engines built on it are NOT
// thread-safe; run one engine per goroutine.
package dynamo
