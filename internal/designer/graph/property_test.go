package graph

import (
	"slices"
	"testing"

	"circuitee/internal/designer/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const (
	propLights   = 6
	propSwitches = 2
)

// newPropertyGraph builds lights element-1..6 followed by switches element-7..8.
func newPropertyGraph() *CircuitGraph {
	g := New()
	for i := range propLights {
		g.AddElement(models.KindLight, models.Point{X: float64(i * 10)})
	}
	for i := range propSwitches {
		g.AddElement(models.KindSwitch, models.Point{X: float64(i * 40), Y: 100})
	}
	return g
}

// applyPairs connects element pairs encoded as a*n+b.
func applyPairs(g *CircuitGraph, pairs []int) {
	ids := make([]string, 0, g.Store().Len())
	for _, el := range g.Elements() {
		ids = append(ids, el.ID)
	}
	n := len(ids)
	for _, p := range pairs {
		g.Connect(ids[(p/n)%n], ids[p%n])
	}
}

// TestCircuitInvariants checks the connect rules against arbitrary click sequences.
func TestCircuitInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	total := propLights + propSwitches

	properties.Property("membership and switch sets stay consistent", prop.ForAll(
		func(pairs []int) bool {
			g := newPropertyGraph()
			applyPairs(g, pairs)
			return g.Validate() == nil
		},
		gen.SliceOf(gen.IntRange(0, total*total-1)),
	))

	properties.Property("circuit connections join lights of one circuit", prop.ForAll(
		func(pairs []int) bool {
			g := newPropertyGraph()
			applyPairs(g, pairs)
			for _, c := range g.Connections() {
				from, _ := g.Element(c.From)
				to, _ := g.Element(c.To)
				switch c.Kind {
				case models.ConnCircuit:
					if from.Circuit == "" || from.Circuit != to.Circuit {
						return false
					}
				case models.ConnControl:
					if !from.HasSwitch(to.ID) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, total*total-1)),
	))

	properties.Property("repeating a sequence changes nothing", prop.ForAll(
		func(pairs []int) bool {
			g := newPropertyGraph()
			applyPairs(g, pairs)
			before := g.Snapshot()
			applyPairs(g, pairs)
			after := g.Snapshot()
			return len(before.Connections) == len(after.Connections) &&
				len(before.Circuits) == len(after.Circuits) &&
				before.CircuitCounter == after.CircuitCounter
		},
		gen.SliceOf(gen.IntRange(0, total*total-1)),
	))

	properties.TestingRun(t)
}

// TestLabelDensity checks that a new light always takes the lowest free number.
func TestLabelDensity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("next label is the lowest unused", prop.ForAll(
		func(count int, drops []int) bool {
			s := NewElementStore()
			for range count {
				s.Add(models.KindLight, models.Point{})
			}
			for _, d := range drops {
				if all := s.All(); len(all) > 0 {
					s.Remove(all[d%len(all)].ID)
				}
			}

			var used []int
			for _, el := range s.All() {
				n, _ := labelNumber(el.Label, "L")
				used = append(used, n)
			}
			want := 1
			for slices.Contains(used, want) {
				want++
			}

			el, _ := s.Add(models.KindLight, models.Point{})
			n, _ := labelNumber(el.Label, "L")
			return n == want
		},
		gen.IntRange(0, 12),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}
