package engine

import (
	"errors"
	"fmt"

	"circuitee/internal/common/metrics"
	"circuitee/internal/designer/control"
	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/history"
	"circuitee/internal/designer/importer"
	"circuitee/internal/designer/models"

	"github.com/gofiber/fiber/v3/log"
)

var (
	ErrWrongMode        = errors.New("operation not allowed in current mode")
	ErrInvalidTool      = errors.New("invalid tool")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrNotSwitch        = errors.New("element is not a switch")
	ErrNotDragging      = errors.New("no drag in progress for element")
	ErrNoPendingImport  = errors.New("no import waiting for reference points")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrEmptyExport      = errors.New("import has no export attached")
	ErrInvalidPlacement = errors.New("coordinates must be finite")
)

// Persister receives the design after every committed mutation.
type Persister interface {
	Persist(design models.Design) error
	DiscardFloorPlan() error
}

type Options struct {
	HistoryLimit int
	Persister    Persister
	Metrics      *metrics.Registry
}

// Event describes what a dispatched command did.
type Event struct {
	Command  string            `json:"command"`
	Changed  bool              `json:"changed"`
	Element  *models.Element   `json:"element,omitempty"`
	Outcomes []control.Outcome `json:"outcomes,omitempty"`
	Import   *importer.Result  `json:"import,omitempty"`
}

// ============================================================
// Engine
// ============================================================

// Engine is the command reducer for one design. It is not safe for concurrent
// use; callers serialize Dispatch.
type Engine struct {
	graph    *graph.CircuitGraph
	resolver *control.Resolver
	history  *history.Manager

	mode      models.Mode
	floorPlan string

	// transient input state, never persisted or snapshotted
	tool        Tool
	selected    string
	connectFrom string
	linearStart *models.Point
	dragging    string
	pending     *importer.Pending

	persister Persister
	metrics   *metrics.Registry
}

func New(opts Options) *Engine {
	g := graph.New()
	return &Engine{
		graph:     g,
		resolver:  control.NewResolver(),
		history:   history.New(g, opts.HistoryLimit),
		mode:      models.ModeEdit,
		persister: opts.Persister,
		metrics:   opts.Metrics,
	}
}

// Load replaces the whole design, dropping history and simulation state.
func (e *Engine) Load(design models.Design) error {
	if design.Mode == "" {
		design.Mode = models.ModeEdit
	}
	if !design.Mode.Valid() {
		return fmt.Errorf("load: %q: %w", design.Mode, ErrInvalidMode)
	}

	g := graph.New()
	g.Restore(design.Snapshot)
	if err := g.Validate(); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	e.graph.Restore(g.Snapshot())
	e.mode = design.Mode
	e.floorPlan = design.FloorPlan
	e.history.Reset()
	e.resolver.Reset()
	e.graph.SetAllLights(false)
	e.resetInput()
	return nil
}

// Design returns the serializable state.
func (e *Engine) Design() models.Design {
	return models.Design{
		Mode:      e.mode,
		FloorPlan: e.floorPlan,
		Snapshot:  e.graph.Snapshot(),
	}
}

func (e *Engine) Graph() *graph.CircuitGraph { return e.graph }

func (e *Engine) History() *history.Manager { return e.history }

func (e *Engine) Mode() models.Mode { return e.mode }

func (e *Engine) Tool() Tool { return e.tool }

// Dispatch runs one command to completion.
func (e *Engine) Dispatch(cmd Command) (Event, error) {
	ev, err := e.dispatch(cmd)
	ev.Command = cmd.Name()

	if e.metrics != nil {
		e.metrics.RecordCommand(cmd.Name(), err)
		e.metrics.ObserveHistory(e.history.UndoDepth(), e.history.RedoDepth())
	}
	if err != nil {
		log.Debugf("[DESIGN] %s rejected: %v", cmd.Name(), err)
	}
	return ev, err
}

func (e *Engine) dispatch(cmd Command) (Event, error) {
	switch c := cmd.(type) {
	case SelectTool:
		return e.selectTool(c.Tool)
	case CanvasClick:
		return e.canvasClick(c.At)
	case ElementClick:
		return e.elementClick(c.ID)
	case AddElement:
		return e.addElement(c.Kind, c.At)
	case AddLinearLight:
		return e.addLinearLight(c.Start, c.End)
	case Connect:
		return e.connect(c.From, c.To)
	case DeleteElement:
		return e.deleteElement(c.ID)
	case BeginDrag:
		return e.beginDrag(c.ID)
	case DragTo:
		return e.dragTo(c.ID, c.To)
	case EndDrag:
		return e.endDrag(c.ID)
	case ToggleSwitch:
		return e.toggleSwitch(c.ID)
	case SetMode:
		return e.setMode(c.Mode)
	case Undo:
		return e.undo()
	case Redo:
		return e.redo()
	case ClearAll:
		return e.clearAll()
	case SetFloorPlan:
		return e.setFloorPlan(c.Data)
	case BeginImport:
		return e.beginImport(c)
	}
	return Event{}, fmt.Errorf("%T: %w", cmd, ErrUnknownCommand)
}

func (e *Engine) requireMode(m models.Mode) error {
	if e.mode != m {
		return fmt.Errorf("requires %s mode: %w", m, ErrWrongMode)
	}
	return nil
}

// ============================================================
// Tools and clicks
// ============================================================

// selectTool switches tools and abandons any half-entered two-click operation.
// Selecting the active tool again deselects it.
func (e *Engine) selectTool(t Tool) (Event, error) {
	if !t.Valid() {
		return Event{}, fmt.Errorf("%q: %w", t, ErrInvalidTool)
	}
	if t != ToolNone && e.mode != models.ModeEdit {
		return Event{}, fmt.Errorf("select %s: %w", t, ErrWrongMode)
	}
	if t == e.tool {
		t = ToolNone
	}

	e.resetInput()
	e.tool = t
	return Event{}, nil
}

func (e *Engine) resetInput() {
	e.tool = ToolNone
	e.selected = ""
	e.connectFrom = ""
	e.linearStart = nil
	e.pending = nil
}

func (e *Engine) canvasClick(at models.Point) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if !at.IsFinite() {
		return Event{}, ErrInvalidPlacement
	}

	switch e.tool {
	case ToolLight:
		return e.addElement(models.KindLight, at)
	case ToolSwitch:
		return e.addElement(models.KindSwitch, at)
	case ToolLinearLight:
		if e.linearStart == nil {
			start := at
			e.linearStart = &start
			return Event{}, nil
		}
		start := *e.linearStart
		e.linearStart = nil
		return e.addLinearLight(start, at)
	case ToolReference:
		return e.referenceClick(at)
	case ToolConnect:
		e.connectFrom = ""
	case ToolNone:
		e.selected = ""
	}
	return Event{}, nil
}

func (e *Engine) elementClick(id string) (Event, error) {
	el, ok := e.graph.Element(id)
	if !ok {
		return Event{}, fmt.Errorf("click %s: %w", id, graph.ErrElementNotFound)
	}

	if e.mode == models.ModeTest {
		if el.Kind == models.KindSwitch {
			return e.toggleSwitch(id)
		}
		return Event{}, nil
	}

	switch e.tool {
	case ToolConnect:
		switch e.connectFrom {
		case "":
			e.connectFrom = id
			return Event{}, nil
		case id:
			e.connectFrom = ""
			return Event{}, nil
		}
		from := e.connectFrom
		e.connectFrom = ""
		return e.connect(from, id)
	case ToolDelete:
		return e.deleteElement(id)
	}

	e.selected = id
	return Event{}, nil
}

// ============================================================
// Topology mutations
// ============================================================

func (e *Engine) addElement(kind models.Kind, at models.Point) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if kind != models.KindLight && kind != models.KindSwitch {
		return Event{}, fmt.Errorf("add %q: %w", kind, graph.ErrInvalidKind)
	}
	if !at.IsFinite() {
		return Event{}, ErrInvalidPlacement
	}

	e.history.Record()
	el, err := e.graph.AddElement(kind, at)
	if err != nil {
		return Event{}, err
	}
	e.persist()
	return Event{Changed: true, Element: el.Clone()}, nil
}

func (e *Engine) addLinearLight(start, end models.Point) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if !start.IsFinite() || !end.IsFinite() {
		return Event{}, ErrInvalidPlacement
	}

	e.history.Record()
	el := e.graph.AddLinearLight(start, end)
	e.persist()
	return Event{Changed: true, Element: el.Clone()}, nil
}

// connect snapshots even when the pair is already connected, so a repeated
// connect still leaves one undo step.
func (e *Engine) connect(fromID, toID string) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	from, ok := e.graph.Element(fromID)
	if !ok {
		return Event{}, fmt.Errorf("connect %s: %w", fromID, graph.ErrElementNotFound)
	}
	to, ok := e.graph.Element(toID)
	if !ok {
		return Event{}, fmt.Errorf("connect %s: %w", toID, graph.ErrElementNotFound)
	}
	if from.ID == to.ID || (!from.IsLightLike() && !to.IsLightLike()) {
		return Event{}, fmt.Errorf("connect %s to %s: %w", from.Label, to.Label, graph.ErrInvalidConnection)
	}

	e.history.Record()
	added, err := e.graph.Connect(fromID, toID)
	if err != nil {
		return Event{}, err
	}
	e.persist()
	return Event{Changed: added}, nil
}

func (e *Engine) deleteElement(id string) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if _, ok := e.graph.Element(id); !ok {
		return Event{}, fmt.Errorf("delete %s: %w", id, graph.ErrElementNotFound)
	}

	e.history.Record()
	if err := e.graph.DeleteElement(id); err != nil {
		return Event{}, err
	}
	if e.selected == id {
		e.selected = ""
	}
	if e.connectFrom == id {
		e.connectFrom = ""
	}
	e.persist()
	return Event{Changed: true}, nil
}

// ============================================================
// Drag gestures
// ============================================================

// beginDrag takes the gesture's single history snapshot.
func (e *Engine) beginDrag(id string) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if _, ok := e.graph.Element(id); !ok {
		return Event{}, fmt.Errorf("drag %s: %w", id, graph.ErrElementNotFound)
	}
	if e.dragging != "" {
		e.persist()
	}

	e.history.Record()
	e.dragging = id
	e.selected = id
	return Event{}, nil
}

func (e *Engine) dragTo(id string, to models.Point) (Event, error) {
	if e.dragging == "" || e.dragging != id {
		return Event{}, fmt.Errorf("move %s: %w", id, ErrNotDragging)
	}
	if !to.IsFinite() {
		return Event{}, ErrInvalidPlacement
	}
	if err := e.graph.MoveElement(id, to); err != nil {
		return Event{}, err
	}
	return Event{Changed: true}, nil
}

// endDrag persists the final position. Releasing without a drag is a no-op.
func (e *Engine) endDrag(id string) (Event, error) {
	if e.dragging == "" || e.dragging != id {
		return Event{}, nil
	}
	e.dragging = ""
	e.persist()
	return Event{Changed: true}, nil
}

// ============================================================
// Simulation
// ============================================================

func (e *Engine) toggleSwitch(id string) (Event, error) {
	if err := e.requireMode(models.ModeTest); err != nil {
		return Event{}, err
	}
	el, ok := e.graph.Element(id)
	if !ok {
		return Event{}, fmt.Errorf("toggle %s: %w", id, graph.ErrElementNotFound)
	}
	if el.Kind != models.KindSwitch {
		return Event{}, fmt.Errorf("toggle %s: %w", el.Label, ErrNotSwitch)
	}

	outcomes := e.resolver.Toggle(e.graph, id)
	if e.metrics != nil {
		e.metrics.SwitchTogglesTotal.Inc()
	}
	return Event{Changed: len(outcomes) > 0, Outcomes: outcomes}, nil
}

// setMode resets simulation state on both edges and turns every light off.
func (e *Engine) setMode(m models.Mode) (Event, error) {
	if !m.Valid() {
		return Event{}, fmt.Errorf("%q: %w", m, ErrInvalidMode)
	}
	if m == e.mode {
		return Event{}, nil
	}

	e.mode = m
	e.resolver.Reset()
	e.graph.SetAllLights(false)
	e.resetInput()
	e.dragging = ""
	e.persist()
	log.Infof("[DESIGN] mode -> %s", m)
	return Event{Changed: true}, nil
}

// SwitchStates returns a copy of the simulation state.
func (e *Engine) SwitchStates() map[string]map[string]bool {
	return e.resolver.States()
}

// ============================================================
// History and whole-design operations
// ============================================================

func (e *Engine) undo() (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if !e.history.Undo() {
		return Event{}, nil
	}
	e.afterRestore()
	return Event{Changed: true}, nil
}

func (e *Engine) redo() (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if !e.history.Redo() {
		return Event{}, nil
	}
	e.afterRestore()
	return Event{Changed: true}, nil
}

// afterRestore drops input state that may point at elements the restore removed.
func (e *Engine) afterRestore() {
	tool := e.tool
	e.resetInput()
	e.tool = tool
	e.dragging = ""
	e.persist()
}

// clearAll empties the design and returns to edit mode. It stays undoable; the
// floor plan is dropped together with its stored copy.
func (e *Engine) clearAll() (Event, error) {
	e.history.Record()
	e.graph.ClearAll()
	e.mode = models.ModeEdit
	e.floorPlan = ""
	e.resolver.Reset()
	e.resetInput()
	e.dragging = ""

	if e.persister != nil {
		if err := e.persister.DiscardFloorPlan(); err != nil {
			log.Errorf("[DESIGN] discard floor plan: %v", err)
			e.recordPersistFailure("floorplan")
		}
	}
	e.persist()
	return Event{Changed: true}, nil
}

func (e *Engine) setFloorPlan(data string) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	e.floorPlan = data
	e.persist()
	return Event{Changed: true}, nil
}

// ============================================================
// Import
// ============================================================

func (e *Engine) beginImport(c BeginImport) (Event, error) {
	if err := e.requireMode(models.ModeEdit); err != nil {
		return Event{}, err
	}
	if c.Export == nil {
		return Event{}, ErrEmptyExport
	}

	e.resetInput()
	e.tool = ToolReference
	e.pending = importer.NewPending(c.Export)
	log.Infof("[IMPORT] %d records waiting for reference points", c.Export.Len())
	return Event{}, nil
}

// referenceClick collects the on-canvas reference points. The second click
// places the export; a degenerate pair aborts the import without touching state.
func (e *Engine) referenceClick(at models.Point) (Event, error) {
	if e.pending == nil {
		return Event{}, ErrNoPendingImport
	}
	if !e.pending.AddReferenceClick(at) {
		return Event{}, nil
	}

	pending := e.pending
	e.resetInput()

	t, err := pending.Transform()
	if err != nil {
		e.recordImport("degenerate", importer.Result{})
		log.Warnf("[IMPORT] aborted: %v", err)
		return Event{}, err
	}

	e.history.Record()
	res, err := importer.Apply(e.graph, pending.Export, t)
	if err != nil {
		return Event{}, err
	}
	e.recordImport("ok", res)
	e.persist()
	return Event{Changed: res.Total() > 0, Import: &res}, nil
}

func (e *Engine) recordImport(result string, res importer.Result) {
	if e.metrics != nil {
		e.metrics.RecordImport(result, res.Points, res.Linears, res.Switches, len(res.Skipped))
	}
}

// ============================================================
// Persistence
// ============================================================

// persist hands the design to the persister. Failures never roll back state.
func (e *Engine) persist() {
	if e.persister == nil {
		return
	}
	if err := e.persister.Persist(e.Design()); err != nil {
		log.Errorf("[DESIGN] persist: %v", err)
		e.recordPersistFailure("design")
	}
}

func (e *Engine) recordPersistFailure(target string) {
	if e.metrics != nil {
		e.metrics.RecordPersistFailure(target)
	}
}
