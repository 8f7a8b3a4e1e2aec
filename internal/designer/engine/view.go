package engine

import (
	"circuitee/internal/designer/models"
)

// View is a read-only copy of everything the renderer needs.
type View struct {
	Design          models.Design              `json:"design"`
	Tool            Tool                       `json:"tool"`
	Selected        string                     `json:"selected,omitempty"`
	ConnectFrom     string                     `json:"connectFrom,omitempty"`
	LinearStart     *models.Point              `json:"linearStart,omitempty"`
	ImportPending   bool                       `json:"importPending"`
	ReferenceClicks []models.Point             `json:"referenceClicks,omitempty"`
	SwitchStates    map[string]map[string]bool `json:"switchStates,omitempty"`
	ActiveSwitches  []string                   `json:"activeSwitches,omitempty"`
	CanUndo         bool                       `json:"canUndo"`
	CanRedo         bool                       `json:"canRedo"`
}

func (e *Engine) View() View {
	v := View{
		Design:        e.Design(),
		Tool:          e.tool,
		Selected:      e.selected,
		ConnectFrom:   e.connectFrom,
		ImportPending: e.pending != nil,
		CanUndo:       e.history.CanUndo(),
		CanRedo:       e.history.CanRedo(),
	}
	if e.linearStart != nil {
		start := *e.linearStart
		v.LinearStart = &start
	}
	if e.pending != nil {
		v.ReferenceClicks = e.pending.Clicks()
	}
	if e.mode == models.ModeTest {
		v.SwitchStates = e.resolver.States()
		for _, sw := range e.graph.Store().Switches() {
			if e.resolver.SwitchActive(sw.ID) {
				v.ActiveSwitches = append(v.ActiveSwitches, sw.ID)
			}
		}
	}
	return v
}
