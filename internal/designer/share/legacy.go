package share

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"

	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/models"
)

// wireElement accepts both the current switchIds set and the older singular
// switchId field.
type wireElement struct {
	models.Element
	SwitchID *string `json:"switchId,omitempty"`
}

type wireDesign struct {
	Mode             models.Mode         `json:"mode"`
	FloorPlan        *string             `json:"floorPlan"`
	FloorPlanRef     string              `json:"floorPlanRef"`
	Elements         []wireElement       `json:"elements"`
	Connections      []models.Connection `json:"connections"`
	Circuits         map[string][]string `json:"circuits"`
	CircuitCounter   int                 `json:"circuitCounter"`
	ElementIDCounter int                 `json:"elementIdCounter"`
	CircuitColors    map[string]string   `json:"circuitColors"`
}

// upgrade converts the wire form into a Design. Singular switch references
// become sets and circuit switch sets are unified across members. A wired
// light outside any circuit gets a circuit of its own, and counters are raised
// past every id already in use.
func (w wireDesign) upgrade() models.Design {
	d := models.Design{
		Mode:         w.Mode,
		FloorPlanRef: w.FloorPlanRef,
		Snapshot: models.Snapshot{
			Connections:      w.Connections,
			Circuits:         w.Circuits,
			CircuitCounter:   w.CircuitCounter,
			ElementIDCounter: w.ElementIDCounter,
			CircuitColors:    w.CircuitColors,
		},
	}
	if w.FloorPlan != nil {
		d.FloorPlan = *w.FloorPlan
	}
	if d.Circuits == nil {
		d.Circuits = map[string][]string{}
	}

	byID := make(map[string]*models.Element, len(w.Elements))
	for _, we := range w.Elements {
		el := we.Element
		el.SetSwitches(el.SwitchIDs)
		if we.SwitchID != nil && *we.SwitchID != "" && el.IsLightLike() {
			el.AddSwitch(*we.SwitchID)
		}
		d.Elements = append(d.Elements, &el)
		byID[el.ID] = &el
	}

	unifyCircuitSwitches(d.Circuits, byID)

	d.ElementIDCounter = max(d.ElementIDCounter, nextCounter(maps.Keys(byID), "element-"), 1)
	d.CircuitCounter = max(d.CircuitCounter, nextCounter(maps.Keys(d.Circuits), "c"), 1)
	adoptWiredLights(&d)
	return d
}

// adoptWiredLights gives every circuit-less light that carries switches a
// single-member circuit, so the switches can drive it in simulation.
func adoptWiredLights(d *models.Design) {
	for _, el := range d.Elements {
		if !el.IsLightLike() || el.Circuit != "" || len(el.SwitchIDs) == 0 {
			continue
		}
		id := graph.CircuitID(d.CircuitCounter)
		if d.CircuitColors == nil {
			d.CircuitColors = map[string]string{}
		}
		d.Circuits[id] = []string{el.ID}
		d.CircuitColors[id] = graph.PaletteColor(d.CircuitCounter)
		el.Circuit = id
		d.CircuitCounter++
	}
}

func unifyCircuitSwitches(circuits map[string][]string, byID map[string]*models.Element) {
	for _, members := range circuits {
		var union []string
		for _, id := range members {
			el, ok := byID[id]
			if !ok {
				continue
			}
			for _, sw := range el.SwitchIDs {
				if !slices.Contains(union, sw) {
					union = append(union, sw)
				}
			}
		}
		for _, id := range members {
			if el, ok := byID[id]; ok {
				el.SetSwitches(union)
			}
		}
	}
}

// nextCounter returns one past the highest numeric suffix among ids with the prefix.
func nextCounter(ids iter.Seq[string], prefix string) int {
	highest := 0
	for id := range ids {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}
