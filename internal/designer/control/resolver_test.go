package control_test

import (
	"testing"

	"circuitee/internal/designer/control"
	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoWay builds two lights in one circuit wired to two switches.
func twoWay(t *testing.T) (*graph.CircuitGraph, []*models.Element, *models.Element, *models.Element) {
	t.Helper()
	g := graph.New()
	l1, err := g.AddElement(models.KindLight, models.Point{X: 10, Y: 10})
	require.NoError(t, err)
	l2, err := g.AddElement(models.KindLight, models.Point{X: 50, Y: 10})
	require.NoError(t, err)
	s1, err := g.AddElement(models.KindSwitch, models.Point{X: 10, Y: 100})
	require.NoError(t, err)
	s2, err := g.AddElement(models.KindSwitch, models.Point{X: 90, Y: 100})
	require.NoError(t, err)

	_, err = g.Connect(l1.ID, l2.ID)
	require.NoError(t, err)
	_, err = g.Connect(l1.ID, s1.ID)
	require.NoError(t, err)
	_, err = g.Connect(l2.ID, s2.ID)
	require.NoError(t, err)
	return g, []*models.Element{l1, l2}, s1, s2
}

func lit(lights []*models.Element) bool {
	for _, l := range lights {
		if !l.On {
			return false
		}
	}
	return true
}

func dark(lights []*models.Element) bool {
	for _, l := range lights {
		if l.On {
			return false
		}
	}
	return true
}

func TestToggle_SingleSwitch(t *testing.T) {
	g := graph.New()
	l, _ := g.AddElement(models.KindLight, models.Point{})
	sw, _ := g.AddElement(models.KindSwitch, models.Point{})
	_, err := g.Connect(l.ID, sw.ID)
	require.NoError(t, err)

	r := control.NewResolver()
	out := r.Toggle(g, sw.ID)
	require.Len(t, out, 1)
	assert.Equal(t, control.Outcome{CircuitID: "c1", ActiveCount: 1, On: true}, out[0])
	assert.True(t, l.On)

	r.Toggle(g, sw.ID)
	assert.False(t, l.On)
}

func TestToggle_TwoWay(t *testing.T) {
	g, lights, s1, s2 := twoWay(t)
	r := control.NewResolver()

	require.True(t, dark(lights))

	r.Toggle(g, s1.ID)
	assert.True(t, lit(lights), "S1 on")

	r.Toggle(g, s2.ID)
	assert.True(t, dark(lights), "S1 and S2 on")

	r.Toggle(g, s1.ID)
	assert.True(t, lit(lights), "only S2 on")

	assert.False(t, r.IsActive(s1.ID, "c1"))
	assert.True(t, r.IsActive(s2.ID, "c1"))
	assert.True(t, r.SwitchActive(s2.ID))
}

func TestToggle_UnwiredSwitch(t *testing.T) {
	g, lights, _, _ := twoWay(t)
	loose, _ := g.AddElement(models.KindSwitch, models.Point{})

	r := control.NewResolver()
	assert.Empty(t, r.Toggle(g, loose.ID))
	assert.True(t, dark(lights))
	assert.Empty(t, r.States())
}

func TestToggle_SwitchInTwoCircuits(t *testing.T) {
	g := graph.New()
	a, _ := g.AddElement(models.KindLight, models.Point{})
	b, _ := g.AddElement(models.KindLight, models.Point{})
	sw, _ := g.AddElement(models.KindSwitch, models.Point{})
	_, err := g.Connect(a.ID, sw.ID)
	require.NoError(t, err)
	_, err = g.Connect(b.ID, sw.ID)
	require.NoError(t, err)

	r := control.NewResolver()
	out := r.Toggle(g, sw.ID)
	assert.Len(t, out, 2)
	assert.True(t, a.On)
	assert.True(t, b.On)
}

func TestReset(t *testing.T) {
	g, _, s1, _ := twoWay(t)
	r := control.NewResolver()
	r.Toggle(g, s1.ID)

	r.Reset()
	assert.Empty(t, r.States())
	assert.False(t, r.SwitchActive(s1.ID))
}

func TestStates_IsCopy(t *testing.T) {
	g, _, s1, _ := twoWay(t)
	r := control.NewResolver()
	r.Toggle(g, s1.ID)

	states := r.States()
	states[s1.ID]["c1"] = false
	assert.True(t, r.IsActive(s1.ID, "c1"))
}

// TestParityLaw: after any toggle sequence a circuit is lit iff an odd number
// of its switches were toggled an odd number of times.
func TestParityLaw(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("lit iff odd active switches", prop.ForAll(
		func(toggles []int) bool {
			g := graph.New()
			l1, _ := g.AddElement(models.KindLight, models.Point{})
			l2, _ := g.AddElement(models.KindLight, models.Point{})
			g.Connect(l1.ID, l2.ID)

			var switches []string
			for range 3 {
				sw, _ := g.AddElement(models.KindSwitch, models.Point{})
				g.Connect(l1.ID, sw.ID)
				switches = append(switches, sw.ID)
			}

			r := control.NewResolver()
			counts := make([]int, len(switches))
			for _, i := range toggles {
				r.Toggle(g, switches[i])
				counts[i]++
			}

			active := 0
			for _, c := range counts {
				active += c % 2
			}
			want := active%2 == 1
			return l1.On == want && l2.On == want
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
