package models

import (
	"math"
	"slices"
)

// ============================================================
// Element kinds
// ============================================================

type Kind string

const (
	KindLight       Kind = "light"
	KindLinearLight Kind = "linear-light"
	KindSwitch      Kind = "switch"
)

// IsLightLike reports whether elements of this kind can join circuits.
func (k Kind) IsLightLike() bool {
	return k == KindLight || k == KindLinearLight
}

func (k Kind) Valid() bool {
	return k.IsLightLike() || k == KindSwitch
}

// LabelPrefix returns the label family shared by the kind.
func (k Kind) LabelPrefix() string {
	if k == KindSwitch {
		return "SW"
	}
	return "L"
}

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Point3 is a position in the external export's coordinate system (millimeters).
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Planar drops Z; the mapper works in 2D only.
func (p Point3) Planar() Point {
	return Point{X: p.X, Y: p.Y}
}

// Icon sizes on the canvas. Point and switch positions are stored as the
// top-left corner of the icon, so clicks are shifted by half the icon size.
const (
	LightIconSize    = 8.0
	SwitchIconWidth  = 32.0
	SwitchIconHeight = 16.0
)

// AnchorOffset returns the shift between a clicked point and the stored position.
func AnchorOffset(k Kind) Point {
	switch k {
	case KindLight:
		return Point{X: LightIconSize / 2, Y: LightIconSize / 2}
	case KindSwitch:
		return Point{X: SwitchIconWidth / 2, Y: SwitchIconHeight / 2}
	}
	return Point{}
}

// ============================================================
// Elements
// ============================================================

type Element struct {
	ID    string  `json:"id"`
	Kind  Kind    `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	On    bool    `json:"state"`
	Label string  `json:"label"`
	Name  string  `json:"name,omitempty"`

	// Circuit is empty when the light belongs to no circuit. Always empty for switches.
	Circuit   string   `json:"circuit,omitempty"`
	SwitchIDs []string `json:"switchIds,omitempty"`
}

func (e *Element) IsLightLike() bool {
	return e.Kind.IsLightLike()
}

func (e *Element) Position() Point {
	return Point{X: e.X, Y: e.Y}
}

func (e *Element) End() Point {
	return Point{X: e.X2, Y: e.Y2}
}

// Length of a linear light. Derived from the endpoints.
func (e *Element) Length() float64 {
	if e.Kind != KindLinearLight {
		return 0
	}
	return e.Position().Distance(e.End())
}

// Angle of a linear light in degrees.
func (e *Element) Angle() float64 {
	if e.Kind != KindLinearLight {
		return 0
	}
	return math.Atan2(e.Y2-e.Y, e.X2-e.X) * 180 / math.Pi
}

// Center is the anchor used for connection lines.
func (e *Element) Center() Point {
	if e.Kind == KindLinearLight {
		return Point{X: e.X + (e.X2-e.X)/2, Y: e.Y + (e.Y2-e.Y)/2}
	}
	return e.Position().Add(AnchorOffset(e.Kind))
}

func (e *Element) HasSwitch(id string) bool {
	return slices.Contains(e.SwitchIDs, id)
}

// AddSwitch inserts id into the switch set. Returns false if already present.
func (e *Element) AddSwitch(id string) bool {
	if e.HasSwitch(id) {
		return false
	}
	e.SwitchIDs = append(e.SwitchIDs, id)
	return true
}

func (e *Element) RemoveSwitch(id string) bool {
	i := slices.Index(e.SwitchIDs, id)
	if i < 0 {
		return false
	}
	e.SwitchIDs = slices.Delete(e.SwitchIDs, i, i+1)
	if len(e.SwitchIDs) == 0 {
		e.SwitchIDs = nil
	}
	return true
}

// SetSwitches replaces the switch set with a private copy of ids.
func (e *Element) SetSwitches(ids []string) {
	if len(ids) == 0 {
		e.SwitchIDs = nil
		return
	}
	e.SwitchIDs = slices.Clone(ids)
}

func (e *Element) Clone() *Element {
	c := *e
	c.SwitchIDs = slices.Clone(e.SwitchIDs)
	return &c
}

// ============================================================
// Connections
// ============================================================

type ConnKind string

const (
	ConnCircuit ConnKind = "circuit"
	ConnControl ConnKind = "control"
)

type Connection struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind ConnKind `json:"type"`
}

// Connects reports whether the connection joins a and b in either direction.
func (c Connection) Connects(a, b string) bool {
	return (c.From == a && c.To == b) || (c.From == b && c.To == a)
}

func (c Connection) Mentions(id string) bool {
	return c.From == id || c.To == id
}

// ============================================================
// Modes
// ============================================================

type Mode string

const (
	ModeEdit Mode = "edit"
	ModeTest Mode = "test"
)

func (m Mode) Valid() bool {
	return m == ModeEdit || m == ModeTest
}
