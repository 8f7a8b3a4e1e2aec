package importer

import (
	"errors"
	"fmt"

	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/mapper"
	"circuitee/internal/designer/models"
	"circuitee/internal/designer/parser"

	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Pending Import
// ============================================================

var ErrReferencesIncomplete = errors.New("two reference clicks are required")

// Pending holds a parsed export until both on-canvas references are picked.
type Pending struct {
	Export *parser.Export
	clicks []models.Point
}

func NewPending(export *parser.Export) *Pending {
	return &Pending{Export: export}
}

// AddReferenceClick records a canvas click and reports whether both are now known.
// Clicks after the second are ignored.
func (p *Pending) AddReferenceClick(at models.Point) bool {
	if len(p.clicks) < 2 {
		p.clicks = append(p.clicks, at)
	}
	return p.Ready()
}

func (p *Pending) Ready() bool {
	return len(p.clicks) == 2
}

// Clicks returns the reference clicks collected so far.
func (p *Pending) Clicks() []models.Point {
	return append([]models.Point(nil), p.clicks...)
}

// Transform derives the mapping from the export references to the two clicks.
func (p *Pending) Transform() (mapper.Transform, error) {
	if !p.Ready() {
		return mapper.Transform{}, ErrReferencesIncomplete
	}
	return DeriveTransform(p.Export, p.clicks[0], p.clicks[1])
}

// Place runs the import once both references are known.
func (p *Pending) Place(g *graph.CircuitGraph) (Result, error) {
	t, err := p.Transform()
	if err != nil {
		return Result{}, err
	}
	return Apply(g, p.Export, t)
}

// ============================================================
// Placement
// ============================================================

// Skipped is a record that could not be placed.
type Skipped struct {
	Line   int    `json:"line"`
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

type Result struct {
	Transform mapper.Transform `json:"transform"`
	Points    int              `json:"points"`
	Linears   int              `json:"linears"`
	Switches  int              `json:"switches"`
	Created   []string         `json:"created"`
	Skipped   []Skipped        `json:"skipped,omitempty"`
}

func (r Result) Total() int {
	return r.Points + r.Linears + r.Switches
}

// DeriveTransform pairs the export's reference records with canvas points.
func DeriveTransform(export *parser.Export, dst1, dst2 models.Point) (mapper.Transform, error) {
	t, err := mapper.Derive(export.Ref1.Start.Planar(), export.Ref2.Start.Planar(), dst1, dst2)
	if err != nil {
		return mapper.Transform{}, fmt.Errorf("derive transform: %w", err)
	}
	return t, nil
}

// Place maps every record of the export onto the canvas using the reference pair
// dst1/dst2 and adds the resulting elements to g. A degenerate reference pair
// places nothing.
func Place(g *graph.CircuitGraph, export *parser.Export, dst1, dst2 models.Point) (Result, error) {
	t, err := DeriveTransform(export, dst1, dst2)
	if err != nil {
		return Result{}, err
	}
	return Apply(g, export, t)
}

// Apply places every record with an already derived transform.
func Apply(g *graph.CircuitGraph, export *parser.Export, t mapper.Transform) (Result, error) {
	res := Result{Transform: t}
	log.Infof("[IMPORT] scale=%.4f rotation=%.2fdeg", t.Scale, t.RotationDegrees())

	for _, rec := range export.Points {
		at := t.PlacePoint(rec.Start.Planar())
		if !at.IsFinite() {
			res.skip(rec, "non-finite coordinates")
			continue
		}
		el, err := g.AddElement(models.KindLight, at)
		if err != nil {
			return res, err
		}
		el.Name = rec.Name
		res.Points++
		res.Created = append(res.Created, el.ID)
	}

	for _, rec := range export.Linears {
		start, end := t.PlaceLinear(rec.Start.Planar(), rec.End.Planar())
		if !start.IsFinite() || !end.IsFinite() {
			res.skip(rec, "non-finite coordinates")
			continue
		}
		el := g.AddLinearLight(start, end)
		el.Name = rec.Name
		res.Linears++
		res.Created = append(res.Created, el.ID)
	}

	for _, rec := range export.Switches {
		at := t.PlaceSwitch(rec.Start.Planar())
		if !at.IsFinite() {
			res.skip(rec, "non-finite coordinates")
			continue
		}
		el, err := g.AddElement(models.KindSwitch, at)
		if err != nil {
			return res, err
		}
		el.Name = rec.Name
		res.Switches++
		res.Created = append(res.Created, el.ID)
	}

	if len(res.Skipped) > 0 {
		log.Warnf("[IMPORT] skipped %d records", len(res.Skipped))
	}
	log.Infof("[IMPORT] placed %d points, %d linears, %d switches", res.Points, res.Linears, res.Switches)
	return res, nil
}

func (r *Result) skip(rec parser.Record, reason string) {
	r.Skipped = append(r.Skipped, Skipped{
		Line:   rec.Line,
		Type:   rec.Type,
		Name:   rec.Name,
		Reason: reason,
	})
}
