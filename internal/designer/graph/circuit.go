package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"circuitee/internal/designer/models"
)

// ============================================================
// Circuit Graph
// ============================================================

const circuitIDPrefix = "c"

// circuitPalette is cycled through as circuits are allocated.
var circuitPalette = []string{
	"#e53935", "#1e88e5", "#43a047", "#fb8c00", "#8e24aa",
	"#00897b", "#f4511e", "#3949ab", "#c0ca33", "#6d4c41",
}

// CircuitGraph owns circuit membership, the connection list and circuit colors,
// and routes every topology mutation of the element store.
type CircuitGraph struct {
	store       *ElementStore
	circuits    map[string][]string
	connections []models.Connection
	nextCircuit int
	colors      map[string]string
}

func New() *CircuitGraph {
	return &CircuitGraph{
		store:       NewElementStore(),
		circuits:    make(map[string][]string),
		connections: []models.Connection{},
		nextCircuit: 1,
		colors:      make(map[string]string),
	}
}

func (g *CircuitGraph) Store() *ElementStore {
	return g.store
}

// ============================================================
// Elements
// ============================================================

func (g *CircuitGraph) AddElement(kind models.Kind, at models.Point) (*models.Element, error) {
	return g.store.Add(kind, at)
}

func (g *CircuitGraph) AddLinearLight(start, end models.Point) *models.Element {
	return g.store.AddLinear(start, end)
}

func (g *CircuitGraph) Element(id string) (*models.Element, bool) {
	return g.store.Get(id)
}

func (g *CircuitGraph) Elements() []*models.Element {
	return g.store.All()
}

func (g *CircuitGraph) MoveElement(id string, to models.Point) error {
	return g.store.Move(id, to)
}

// DeleteElement removes an element together with its circuit membership,
// switch references and connections.
func (g *CircuitGraph) DeleteElement(id string) error {
	el, ok := g.store.Get(id)
	if !ok {
		return fmt.Errorf("delete %s: %w", id, ErrElementNotFound)
	}

	if el.IsLightLike() && el.Circuit != "" {
		g.removeMember(el.Circuit, id)
	}

	if el.Kind == models.KindSwitch {
		for _, light := range g.store.Lights() {
			light.RemoveSwitch(id)
		}
	}

	g.connections = slices.DeleteFunc(g.connections, func(c models.Connection) bool {
		return c.Mentions(id)
	})

	g.store.Remove(id)
	return nil
}

// ClearAll drops every element, connection and circuit and resets the counters.
func (g *CircuitGraph) ClearAll() {
	g.store.reset()
	g.circuits = make(map[string][]string)
	g.connections = []models.Connection{}
	g.nextCircuit = 1
	g.colors = make(map[string]string)
}

func (g *CircuitGraph) SetAllLights(on bool) {
	for _, el := range g.store.Lights() {
		el.On = on
	}
}

// ============================================================
// Connections
// ============================================================

// Connected reports whether a connection between a and b exists in either direction.
func (g *CircuitGraph) Connected(a, b string) bool {
	return slices.ContainsFunc(g.connections, func(c models.Connection) bool {
		return c.Connects(a, b)
	})
}

func (g *CircuitGraph) Connections() []models.Connection {
	return slices.Clone(g.connections)
}

// Connect joins two elements: light-light builds circuits, light-switch wires control.
// The boolean is false when the pair was already connected.
func (g *CircuitGraph) Connect(aID, bID string) (bool, error) {
	a, ok := g.store.Get(aID)
	if !ok {
		return false, fmt.Errorf("connect %s: %w", aID, ErrElementNotFound)
	}
	b, ok := g.store.Get(bID)
	if !ok {
		return false, fmt.Errorf("connect %s: %w", bID, ErrElementNotFound)
	}

	switch {
	case a.ID == b.ID:
		return false, fmt.Errorf("connect %s to itself: %w", a.ID, ErrInvalidConnection)
	case a.IsLightLike() && b.IsLightLike():
		return g.ConnectLights(a.ID, b.ID)
	case a.IsLightLike() != b.IsLightLike():
		return g.ConnectLightToSwitch(a.ID, b.ID)
	}
	return false, fmt.Errorf("connect %s to %s: %w", a.Label, b.Label, ErrInvalidConnection)
}

// ConnectLights puts both lights in one circuit, merging circuits when needed,
// and reconciles the switch set across every member.
func (g *CircuitGraph) ConnectLights(aID, bID string) (bool, error) {
	a, err := g.light(aID)
	if err != nil {
		return false, err
	}
	b, err := g.light(bID)
	if err != nil {
		return false, err
	}
	if a.ID == b.ID {
		return false, fmt.Errorf("connect %s to itself: %w", a.ID, ErrInvalidConnection)
	}
	if g.Connected(a.ID, b.ID) {
		return false, nil
	}

	switch {
	case a.Circuit == "" && b.Circuit == "":
		id := g.allocateCircuit()
		g.circuits[id] = []string{a.ID, b.ID}
		a.Circuit, b.Circuit = id, id
		g.applySwitches(id, unionSwitches(a.SwitchIDs, b.SwitchIDs))
	case b.Circuit == "":
		g.join(a.Circuit, b)
	case a.Circuit == "":
		g.join(b.Circuit, a)
	case a.Circuit != b.Circuit:
		g.merge(a.Circuit, b.Circuit)
	}

	g.connections = append(g.connections, models.Connection{
		From: a.ID,
		To:   b.ID,
		Kind: models.ConnCircuit,
	})
	return true, nil
}

// ConnectLightToSwitch wires a switch to the whole circuit of the light. The
// arguments may come in either order. Only the clicked pair gets a connection.
func (g *CircuitGraph) ConnectLightToSwitch(aID, bID string) (bool, error) {
	a, ok := g.store.Get(aID)
	if !ok {
		return false, fmt.Errorf("connect %s: %w", aID, ErrElementNotFound)
	}
	b, ok := g.store.Get(bID)
	if !ok {
		return false, fmt.Errorf("connect %s: %w", bID, ErrElementNotFound)
	}

	light, sw := a, b
	if b.IsLightLike() {
		light, sw = b, a
	}
	if !light.IsLightLike() || sw.Kind != models.KindSwitch {
		return false, fmt.Errorf("connect %s to %s: %w", a.ID, b.ID, ErrInvalidConnection)
	}
	if g.Connected(light.ID, sw.ID) {
		return false, nil
	}

	if light.Circuit == "" {
		id := g.allocateCircuit()
		g.circuits[id] = []string{light.ID}
		light.Circuit = id
	}
	for _, member := range g.Members(light.Circuit) {
		member.AddSwitch(sw.ID)
	}

	g.connections = append(g.connections, models.Connection{
		From: light.ID,
		To:   sw.ID,
		Kind: models.ConnControl,
	})
	return true, nil
}

func (g *CircuitGraph) light(id string) (*models.Element, error) {
	el, ok := g.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("connect %s: %w", id, ErrElementNotFound)
	}
	if !el.IsLightLike() {
		return nil, fmt.Errorf("connect %s: %w", el.Label, ErrNotLight)
	}
	return el, nil
}

// ============================================================
// Circuits
// ============================================================

func (g *CircuitGraph) allocateCircuit() string {
	id := CircuitID(g.nextCircuit)
	g.colors[id] = PaletteColor(g.nextCircuit)
	g.nextCircuit++
	return id
}

// CircuitID formats the id of the n-th allocated circuit.
func CircuitID(n int) string {
	return fmt.Sprintf("%s%d", circuitIDPrefix, n)
}

// PaletteColor is the color given to the n-th allocated circuit.
func PaletteColor(n int) string {
	return circuitPalette[(max(n, 1)-1)%len(circuitPalette)]
}

// join adds a circuit-less light to an existing circuit.
func (g *CircuitGraph) join(circuitID string, light *models.Element) {
	if !slices.Contains(g.circuits[circuitID], light.ID) {
		g.circuits[circuitID] = append(g.circuits[circuitID], light.ID)
	}
	light.Circuit = circuitID
	g.applySwitches(circuitID, g.CircuitSwitches(circuitID))
}

// merge moves every member of drop into keep. The switch union covers both
// circuits before any member is reassigned.
func (g *CircuitGraph) merge(keep, drop string) {
	union := unionSwitches(g.CircuitSwitches(keep), g.CircuitSwitches(drop))

	for _, id := range g.circuits[drop] {
		if el, ok := g.store.Get(id); ok {
			el.Circuit = keep
		}
		if !slices.Contains(g.circuits[keep], id) {
			g.circuits[keep] = append(g.circuits[keep], id)
		}
	}
	delete(g.circuits, drop)
	delete(g.colors, drop)

	g.applySwitches(keep, union)
}

func (g *CircuitGraph) removeMember(circuitID, lightID string) {
	members, ok := g.circuits[circuitID]
	if !ok {
		return
	}
	members = slices.DeleteFunc(members, func(id string) bool { return id == lightID })
	if len(members) == 0 {
		delete(g.circuits, circuitID)
		delete(g.colors, circuitID)
		return
	}
	g.circuits[circuitID] = members
}

func (g *CircuitGraph) applySwitches(circuitID string, ids []string) {
	for _, member := range g.Members(circuitID) {
		member.SetSwitches(ids)
	}
}

// CircuitSwitches returns the distinct switch ids referenced by any member of
// the circuit, in first-seen order.
func (g *CircuitGraph) CircuitSwitches(circuitID string) []string {
	var out []string
	for _, member := range g.Members(circuitID) {
		out = unionSwitches(out, member.SwitchIDs)
	}
	return out
}

// Members returns the live member elements of a circuit. Ids that no longer
// resolve are skipped.
func (g *CircuitGraph) Members(circuitID string) []*models.Element {
	ids := g.circuits[circuitID]
	out := make([]*models.Element, 0, len(ids))
	for _, id := range ids {
		if el, ok := g.store.Get(id); ok {
			out = append(out, el)
		}
	}
	return out
}

// CircuitIDs returns circuit ids in allocation order.
func (g *CircuitGraph) CircuitIDs() []string {
	ids := slices.Collect(maps.Keys(g.circuits))
	sort.Slice(ids, func(i, j int) bool {
		ni, _ := idNumber(ids[i], circuitIDPrefix)
		nj, _ := idNumber(ids[j], circuitIDPrefix)
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (g *CircuitGraph) Circuits() map[string][]string {
	out := make(map[string][]string, len(g.circuits))
	for id, members := range g.circuits {
		out[id] = slices.Clone(members)
	}
	return out
}

func (g *CircuitGraph) CircuitColor(id string) string {
	return g.colors[id]
}

func unionSwitches(a, b []string) []string {
	out := slices.Clone(a)
	for _, id := range b {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// ============================================================
// Snapshots
// ============================================================

// Snapshot returns a deep copy of the topology state.
func (g *CircuitGraph) Snapshot() models.Snapshot {
	return models.Snapshot{
		Elements:         g.store.All(),
		Connections:      g.connections,
		Circuits:         g.circuits,
		CircuitCounter:   g.nextCircuit,
		ElementIDCounter: g.store.NextID(),
		CircuitColors:    g.colors,
	}.Clone()
}

// Restore replaces live state with a copy of s.
func (g *CircuitGraph) Restore(s models.Snapshot) {
	s = s.Clone()
	g.store.load(s.Elements, max(s.ElementIDCounter, 1))
	g.circuits = s.Circuits
	g.connections = s.Connections
	g.nextCircuit = max(s.CircuitCounter, 1)
	g.colors = s.CircuitColors
}

// ============================================================
// Invariants
// ============================================================

// Validate checks that circuit membership and switch wiring are consistent.
func (g *CircuitGraph) Validate() error {
	var errs []error

	for _, el := range g.store.Lights() {
		if el.Circuit == "" {
			if len(el.SwitchIDs) > 0 {
				errs = append(errs, fmt.Errorf("%s carries switches but belongs to no circuit", el.ID))
			}
			continue
		}
		members, ok := g.circuits[el.Circuit]
		if !ok {
			errs = append(errs, fmt.Errorf("%s references missing circuit %s", el.ID, el.Circuit))
			continue
		}
		if !slices.Contains(members, el.ID) {
			errs = append(errs, fmt.Errorf("%s is not listed in circuit %s", el.ID, el.Circuit))
		}
	}

	for _, id := range g.CircuitIDs() {
		members := g.Members(id)
		if len(members) == 0 {
			errs = append(errs, fmt.Errorf("circuit %s is empty", id))
			continue
		}
		want := members[0].SwitchIDs
		for _, m := range members[1:] {
			if !sameSet(want, m.SwitchIDs) {
				errs = append(errs, fmt.Errorf("circuit %s: %s and %s carry different switches", id, members[0].ID, m.ID))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvariant, errors.Join(errs...))
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, id := range a {
		if !slices.Contains(b, id) {
			return false
		}
	}
	return true
}
