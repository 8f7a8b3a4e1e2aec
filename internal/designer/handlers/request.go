package handlers

import (
	"errors"
	"fmt"

	"circuitee/internal/designer/engine"
	"circuitee/internal/designer/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var ErrMissingField = errors.New("missing field")

// commandRequest is the wire form of one engine command.
type commandRequest struct {
	Type      string   `json:"type" validate:"required,oneof=select_tool canvas_click element_click add_element add_linear_light connect delete_element begin_drag drag_to end_drag toggle_switch set_mode undo redo clear_all set_floor_plan"`
	Tool      string   `json:"tool" validate:"omitempty,oneof=light linear-light switch connect delete reference"`
	Kind      string   `json:"kind" validate:"omitempty,oneof=light switch"`
	ID        string   `json:"id" validate:"omitempty,max=64"`
	From      string   `json:"from" validate:"required_if=Type connect,max=64"`
	To        string   `json:"to" validate:"required_if=Type connect,max=64"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	X2        *float64 `json:"x2"`
	Y2        *float64 `json:"y2"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=edit test"`
	FloorPlan string   `json:"floorPlan" validate:"omitempty,max=16777216"`
}

type createRequest struct {
	Blob string `json:"blob" validate:"omitempty,max=4194304"`
	Mode string `json:"mode" validate:"omitempty,oneof=edit test"`
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		switch e.Tag() {
		case "required", "required_if":
			return fmt.Errorf("%s: field is required", e.Field())
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", e.Field(), e.Param())
		case "max":
			return fmt.Errorf("%s: must not exceed %s", e.Field(), e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}

// toCommand maps a validated request onto an engine command.
func (r *commandRequest) toCommand() (engine.Command, error) {
	switch r.Type {
	case "select_tool":
		return engine.SelectTool{Tool: engine.Tool(r.Tool)}, nil
	case "canvas_click":
		at, err := r.point()
		if err != nil {
			return nil, err
		}
		return engine.CanvasClick{At: at}, nil
	case "element_click":
		return engine.ElementClick{ID: r.ID}, r.requireID()
	case "add_element":
		at, err := r.point()
		if err != nil {
			return nil, err
		}
		if r.Kind == "" {
			return nil, fmt.Errorf("kind: %w", ErrMissingField)
		}
		return engine.AddElement{Kind: models.Kind(r.Kind), At: at}, nil
	case "add_linear_light":
		start, err := r.point()
		if err != nil {
			return nil, err
		}
		if r.X2 == nil || r.Y2 == nil {
			return nil, fmt.Errorf("x2/y2: %w", ErrMissingField)
		}
		return engine.AddLinearLight{Start: start, End: models.Point{X: *r.X2, Y: *r.Y2}}, nil
	case "connect":
		return engine.Connect{From: r.From, To: r.To}, nil
	case "delete_element":
		return engine.DeleteElement{ID: r.ID}, r.requireID()
	case "begin_drag":
		return engine.BeginDrag{ID: r.ID}, r.requireID()
	case "drag_to":
		to, err := r.point()
		if err != nil {
			return nil, err
		}
		return engine.DragTo{ID: r.ID, To: to}, r.requireID()
	case "end_drag":
		return engine.EndDrag{ID: r.ID}, r.requireID()
	case "toggle_switch":
		return engine.ToggleSwitch{ID: r.ID}, r.requireID()
	case "set_mode":
		return engine.SetMode{Mode: models.Mode(r.Mode)}, nil
	case "undo":
		return engine.Undo{}, nil
	case "redo":
		return engine.Redo{}, nil
	case "clear_all":
		return engine.ClearAll{}, nil
	case "set_floor_plan":
		return engine.SetFloorPlan{Data: r.FloorPlan}, nil
	}
	return nil, fmt.Errorf("%q: %w", r.Type, engine.ErrUnknownCommand)
}

func (r *commandRequest) point() (models.Point, error) {
	if r.X == nil || r.Y == nil {
		return models.Point{}, fmt.Errorf("x/y: %w", ErrMissingField)
	}
	return models.Point{X: *r.X, Y: *r.Y}, nil
}

func (r *commandRequest) requireID() error {
	if r.ID == "" {
		return fmt.Errorf("id: %w", ErrMissingField)
	}
	return nil
}
