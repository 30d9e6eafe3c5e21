// Package simulation drives a running layout: it perturbs sensor readings
// and pushes them through the mock server on a timer.
//
// # State Machine
//
// A Scheduler is either Stopped (the initial state) or Running. Start moves
// to Running only when the layout has no power issues, a controller is
// placed, and code has been deployed; otherwise it returns a
// *ReadinessError listing what is missing and nothing changes.
//
// While Running, two activities re-arm themselves after each run:
//
//   - Fluctuation, every FluctuationPeriod/speed: powered sensors get a new
//     reading from the sensor package.
//   - Dispatch, every DispatchPeriod/speed: when the server is running and
//     the network is reachable, each powered sensor uploads its reading
//     through the dispatch package and the resulting database is folded
//     back into the world.
//
// Stop cancels both activities. It is idempotent, and once it returns no
// further tick runs.
//
// # Time
//
// The scheduler never calls time functions directly; it takes a Clock.
// Production uses RealClock. Tests use ManualClock and call Advance.
package simulation
