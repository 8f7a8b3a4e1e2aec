package engine

import (
	"circuitee/internal/designer/models"
	"circuitee/internal/designer/parser"
)

// ============================================================
// Tools
// ============================================================

type Tool string

const (
	ToolNone        Tool = ""
	ToolLight       Tool = "light"
	ToolLinearLight Tool = "linear-light"
	ToolSwitch      Tool = "switch"
	ToolConnect     Tool = "connect"
	ToolDelete      Tool = "delete"
	ToolReference   Tool = "reference"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolNone, ToolLight, ToolLinearLight, ToolSwitch, ToolConnect, ToolDelete, ToolReference:
		return true
	}
	return false
}

// ============================================================
// Commands
// ============================================================

// Command is one user input event. Each runs to completion inside Dispatch.
type Command interface {
	Name() string
}

type SelectTool struct{ Tool Tool }

// CanvasClick is a click on empty canvas, routed by the selected tool.
type CanvasClick struct{ At models.Point }

// ElementClick is a click on an element, routed by tool and mode.
type ElementClick struct{ ID string }

type AddElement struct {
	Kind models.Kind
	At   models.Point
}

type AddLinearLight struct{ Start, End models.Point }

type Connect struct{ From, To string }

type DeleteElement struct{ ID string }

// BeginDrag opens a drag gesture; it is the only history-significant move event.
type BeginDrag struct{ ID string }

type DragTo struct {
	ID string
	To models.Point
}

type EndDrag struct{ ID string }

type ToggleSwitch struct{ ID string }

type SetMode struct{ Mode models.Mode }

type Undo struct{}

type Redo struct{}

type ClearAll struct{}

// SetFloorPlan replaces the background image. Empty Data removes it.
type SetFloorPlan struct{ Data string }

// BeginImport arms the reference tool with a parsed export.
type BeginImport struct{ Export *parser.Export }

func (SelectTool) Name() string     { return "select_tool" }
func (CanvasClick) Name() string    { return "canvas_click" }
func (ElementClick) Name() string   { return "element_click" }
func (AddElement) Name() string     { return "add_element" }
func (AddLinearLight) Name() string { return "add_linear_light" }
func (Connect) Name() string        { return "connect" }
func (DeleteElement) Name() string  { return "delete_element" }
func (BeginDrag) Name() string      { return "begin_drag" }
func (DragTo) Name() string         { return "drag_to" }
func (EndDrag) Name() string        { return "end_drag" }
func (ToggleSwitch) Name() string   { return "toggle_switch" }
func (SetMode) Name() string        { return "set_mode" }
func (Undo) Name() string           { return "undo" }
func (Redo) Name() string           { return "redo" }
func (ClearAll) Name() string       { return "clear_all" }
func (SetFloorPlan) Name() string   { return "set_floor_plan" }
func (BeginImport) Name() string    { return "begin_import" }
