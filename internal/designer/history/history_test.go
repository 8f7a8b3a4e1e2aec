package history_test

import (
	"testing"

	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/history"
	"circuitee/internal/designer/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addLight(t *testing.T, g *graph.CircuitGraph, m *history.Manager) *models.Element {
	t.Helper()
	m.Record()
	el, err := g.AddElement(models.KindLight, models.Point{X: 50, Y: 50})
	require.NoError(t, err)
	return el
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	g := graph.New()
	m := history.New(g, 0)

	a := addLight(t, g, m)
	b := addLight(t, g, m)
	m.Record()
	_, err := g.Connect(a.ID, b.ID)
	require.NoError(t, err)
	connected := g.Snapshot()

	require.True(t, m.Undo())
	assert.Empty(t, g.Circuits())
	assert.Equal(t, 2, g.Store().Len())

	require.True(t, m.Redo())
	assert.Equal(t, connected, g.Snapshot())
	assert.False(t, m.CanRedo())
}

func TestUndo_EmptyIsNoop(t *testing.T) {
	g := graph.New()
	m := history.New(g, 0)

	assert.False(t, m.Undo())
	assert.False(t, m.Redo())
	assert.Equal(t, history.DefaultLimit, m.Limit())
}

func TestRecord_ClearsRedo(t *testing.T) {
	g := graph.New()
	m := history.New(g, 0)

	addLight(t, g, m)
	require.True(t, m.Undo())
	require.True(t, m.CanRedo())

	addLight(t, g, m)
	assert.False(t, m.CanRedo())
}

func TestUndo_IDsComeBack(t *testing.T) {
	g := graph.New()
	m := history.New(g, 0)

	a := addLight(t, g, m)
	m.Record()
	require.NoError(t, g.DeleteElement(a.ID))
	require.True(t, m.Undo())

	_, ok := g.Element(a.ID)
	assert.True(t, ok)

	b := addLight(t, g, m)
	assert.Equal(t, "element-2", b.ID)
}

func TestLimit_EvictsOldest(t *testing.T) {
	g := graph.New()
	m := history.New(g, 0)

	for range history.DefaultLimit + 10 {
		addLight(t, g, m)
	}
	assert.Equal(t, history.DefaultLimit, m.UndoDepth())

	for m.Undo() {
	}
	// the ten oldest states were evicted
	assert.Equal(t, 10, g.Store().Len())
	assert.Equal(t, history.DefaultLimit, m.RedoDepth())
}

func TestSnapshots_NotAliased(t *testing.T) {
	g := graph.New()
	m := history.New(g, 0)

	a := addLight(t, g, m)
	m.Record()
	require.NoError(t, g.MoveElement(a.ID, models.Point{X: 300, Y: 300}))

	live, _ := g.Element(a.ID)
	live.Label = "mutated"

	require.True(t, m.Undo())
	got, _ := g.Element(a.ID)
	assert.Equal(t, "L1", got.Label)
	assert.Equal(t, 46.0, got.X)
}

func TestReset(t *testing.T) {
	g := graph.New()
	m := history.New(g, 3)
	addLight(t, g, m)
	addLight(t, g, m)
	m.Undo()

	m.Reset()
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
	assert.Equal(t, 3, m.Limit())
}

// TestUndoAllRedoAll: undoing every step then redoing every step lands on the
// same state.
func TestUndoAllRedoAll(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("undo all then redo all is identity", prop.ForAll(
		func(ops []int) bool {
			g := graph.New()
			m := history.New(g, 0)

			for _, op := range ops {
				m.Record()
				els := g.Elements()
				switch {
				case op%3 == 0 || len(els) < 2:
					g.AddElement(models.KindLight, models.Point{X: float64(op)})
				case op%3 == 1:
					g.Connect(els[op%len(els)].ID, els[(op/3)%len(els)].ID)
				default:
					g.DeleteElement(els[op%len(els)].ID)
				}
			}
			final := g.Snapshot()

			undone := 0
			for m.Undo() {
				undone++
			}
			for m.Redo() {
			}
			after := g.Snapshot()
			return undone == len(ops) && len(final.Elements) == len(after.Elements) &&
				len(final.Connections) == len(after.Connections) &&
				len(final.Circuits) == len(after.Circuits) &&
				final.ElementIDCounter == after.ElementIDCounter
		},
		gen.SliceOfN(20, gen.IntRange(0, 30)),
	))

	properties.TestingRun(t)
}
