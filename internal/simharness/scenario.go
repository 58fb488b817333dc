// Package simharness is a small scripted-event test harness for driving
// the core state machines (linkpolicy, mirror, va, topology) through a
// named sequence of steps and asserting the end state, coordinating a
// test case's setup, execution and teardown around a shared *testing.T.
package simharness

import "testing"

// Step is one named action in a Scenario. Do receives the scenario's
// *testing.T so it can use require/assert to fail fast on an
// unexpected intermediate state.
type Step struct {
	Name string
	Do   func(t *testing.T)
}

// Scenario is an ordered sequence of Steps describing an end-to-end
// interaction across one or more state machines.
type Scenario struct {
	Name  string
	Steps []Step
}

// Run executes every step in order under t, opening a subtest per step
// so a failure's location is immediately visible in the scenario name.
func (s Scenario) Run(t *testing.T) {
	t.Helper()
	for _, step := range s.Steps {
		t.Run(step.Name, func(t *testing.T) {
			step.Do(t)
		})
	}
}
