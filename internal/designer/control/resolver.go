// Package control resolves which lights are on while a design is simulated.
//
// Every circuit is controlled by the distinct set of switches referenced by any
// of its lights. Each (switch, circuit) pair keeps its own boolean, and a
// circuit is lit when an odd number of its switches are active. With one switch
// this is plain on/off; with two or more it reproduces multi-way wiring, where
// every toggle flips the circuit.
package control

import (
	"maps"
	"slices"

	"circuitee/internal/designer/models"
)

// Topology is the read side of the circuit graph the resolver needs.
type Topology interface {
	CircuitIDs() []string
	Members(circuitID string) []*models.Element
	CircuitSwitches(circuitID string) []string
}

// Outcome reports the state of one circuit after a toggle.
type Outcome struct {
	CircuitID   string `json:"circuit"`
	ActiveCount int    `json:"activeCount"`
	On          bool   `json:"on"`
}

// Resolver holds simulation-only switch state: switch id -> circuit id -> active.
type Resolver struct {
	states map[string]map[string]bool
}

func NewResolver() *Resolver {
	return &Resolver{states: make(map[string]map[string]bool)}
}

// Reset forgets every toggle.
func (r *Resolver) Reset() {
	r.states = make(map[string]map[string]bool)
}

func (r *Resolver) IsActive(switchID, circuitID string) bool {
	return r.states[switchID][circuitID]
}

// Toggle flips the switch in every circuit it controls and relights those circuits.
func (r *Resolver) Toggle(t Topology, switchID string) []Outcome {
	var outcomes []Outcome
	for _, circuitID := range t.CircuitIDs() {
		if !slices.Contains(t.CircuitSwitches(circuitID), switchID) {
			continue
		}
		if r.states[switchID] == nil {
			r.states[switchID] = make(map[string]bool)
		}
		r.states[switchID][circuitID] = !r.states[switchID][circuitID]
		outcomes = append(outcomes, r.Evaluate(t, circuitID))
	}
	return outcomes
}

// Evaluate applies the parity rule to one circuit and updates its lights.
func (r *Resolver) Evaluate(t Topology, circuitID string) Outcome {
	active := 0
	for _, sw := range t.CircuitSwitches(circuitID) {
		if r.states[sw][circuitID] {
			active++
		}
	}
	on := LightsOn(active)
	for _, light := range t.Members(circuitID) {
		light.On = on
	}
	return Outcome{CircuitID: circuitID, ActiveCount: active, On: on}
}

// LightsOn is the multi-way rule: lit iff an odd number of switches are active.
func LightsOn(activeCount int) bool {
	return activeCount%2 == 1
}

// States returns a copy of the per-switch state for rendering.
func (r *Resolver) States() map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(r.states))
	for sw, circuits := range r.states {
		out[sw] = maps.Clone(circuits)
	}
	return out
}

// SwitchActive reports whether the switch is active in any circuit, which is
// how a switch is drawn.
func (r *Resolver) SwitchActive(switchID string) bool {
	for _, on := range r.states[switchID] {
		if on {
			return true
		}
	}
	return false
}
