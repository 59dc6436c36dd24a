// Package workload provides a small synthetic simulation whose steps are
// exposed as func variables, making them interceptable targets for the
// profiler. The demo binary drives it; the end-to-end tests reuse it.
package workload

import (
	"math"
	"time"

	"github.com/t1a2l/SkyTools/internal/hook"
)

// TypeName is the type name the workload's methods are registered under.
const TypeName = "Simulation"

// StepPhysics advances the simulated physics state by one tick. Declared as
// a func variable so the interceptor can redirect it.
var StepPhysics = func(dt float64) float64 {
	state := dt
	for i := 0; i < 2048; i++ {
		state = math.Sqrt(state*state + dt)
	}
	return state
}

// RebuildPaths recomputes the simulated path graph for the given number of
// nodes and returns the number of edges visited.
var RebuildPaths = func(nodes int) int {
	edges := 0
	for i := 0; i < nodes; i++ {
		for j := i + 1; j < nodes; j++ {
			if (i*j)%7 != 3 {
				edges++
			}
		}
	}
	return edges
}

// RegisterTargets exposes the simulation steps to the resolver.
func RegisterTargets(r *hook.RegistryResolver) error {
	if err := r.Register(TypeName, "StepPhysics", &StepPhysics); err != nil {
		return err
	}
	return r.Register(TypeName, "RebuildPaths", &RebuildPaths)
}

// Run drives the simulation at a fixed cadence until done is closed.
func Run(done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			StepPhysics(0.25)
			RebuildPaths(96)
		case <-done:
			return
		}
	}
}
