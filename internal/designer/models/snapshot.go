package models

import (
	"maps"
	"slices"
)

// ============================================================
// Snapshot
// ============================================================

// Snapshot is a point-in-time copy of the mutable design state used by undo/redo.
// Snapshots never share slices or maps with live state.
type Snapshot struct {
	Elements         []*Element          `json:"elements"`
	Connections      []Connection        `json:"connections"`
	Circuits         map[string][]string `json:"circuits"`
	CircuitCounter   int                 `json:"circuitCounter"`
	ElementIDCounter int                 `json:"elementIdCounter"`
	CircuitColors    map[string]string   `json:"circuitColors"`
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Elements:         make([]*Element, 0, len(s.Elements)),
		Connections:      slices.Clone(s.Connections),
		Circuits:         make(map[string][]string, len(s.Circuits)),
		CircuitCounter:   s.CircuitCounter,
		ElementIDCounter: s.ElementIDCounter,
		CircuitColors:    maps.Clone(s.CircuitColors),
	}
	for _, el := range s.Elements {
		out.Elements = append(out.Elements, el.Clone())
	}
	for id, members := range s.Circuits {
		out.Circuits[id] = slices.Clone(members)
	}
	if out.CircuitColors == nil {
		out.CircuitColors = map[string]string{}
	}
	if out.Connections == nil {
		out.Connections = []Connection{}
	}
	return out
}

// ============================================================
// Design (persisted / shared form)
// ============================================================

// FloorPlanSentinel replaces the floor plan image in the serialized design.
const FloorPlanSentinel = "has-floorplan"

// Design is the serializable state of one session. Switch states are never part of it.
// FloorPlanRef is the store key of the image behind the sentinel; only
// serialized designs carry it.
type Design struct {
	Mode         Mode   `json:"mode"`
	FloorPlan    string `json:"floorPlan,omitempty"`
	FloorPlanRef string `json:"floorPlanRef,omitempty"`
	Snapshot
}

func (d *Design) HasFloorPlanSentinel() bool {
	return d.FloorPlan == FloorPlanSentinel
}
