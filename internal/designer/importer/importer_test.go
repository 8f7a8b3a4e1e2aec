package importer

import (
	"strings"
	"testing"

	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/mapper"
	"circuitee/internal/designer/models"
	"circuitee/internal/designer/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportCSV = `Type,X1,Y1,Z1,X2,Y2,Z2,Name
reference1,0,0,0,,,,REF1
reference2,1000,0,0,,,,REF2
point,1000,0,2400,,,,DL-1
point,oops,0,2400,,,,DL-2
linear,0,0,2400,1000,0,2400,Cove
switch,500,0,1200,,,,Entry
`

func parse(t *testing.T, input string) *parser.Export {
	t.Helper()
	export, err := parser.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	return export
}

func TestPlace(t *testing.T) {
	g := graph.New()
	res, err := Place(g, parse(t, exportCSV), models.Point{X: 100, Y: 100}, models.Point{X: 300, Y: 100})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Points)
	assert.Equal(t, 1, res.Linears)
	assert.Equal(t, 1, res.Switches)
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, []string{"element-1", "element-2", "element-3"}, res.Created)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "DL-2", res.Skipped[0].Name)
	assert.Equal(t, 5, res.Skipped[0].Line)

	light, _ := g.Element("element-1")
	assert.Equal(t, models.KindLight, light.Kind)
	assert.Equal(t, "DL-1", light.Name)
	assert.InDelta(t, 196, light.X, 1e-9)
	assert.InDelta(t, 96, light.Y, 1e-9)

	linear, _ := g.Element("element-2")
	assert.Equal(t, "L2", linear.Label)
	assert.InDelta(t, 100, linear.X, 1e-9)
	assert.InDelta(t, 300, linear.X2, 1e-9)
	assert.InDelta(t, 100, linear.Y2, 1e-9)

	sw, _ := g.Element("element-3")
	assert.Equal(t, "SW1", sw.Label)
	assert.InDelta(t, 184, sw.X, 1e-9)
	assert.InDelta(t, 92, sw.Y, 1e-9)
}

func TestPlace_DegeneratePlacesNothing(t *testing.T) {
	input := `reference1,10,10,0,,,,R1
reference2,10,10,0,,,,R2
point,1,1,0,,,,A
`
	g := graph.New()
	_, err := Place(g, parse(t, input), models.Point{}, models.Point{X: 100})
	assert.ErrorIs(t, err, mapper.ErrDegenerateReference)
	assert.Zero(t, g.Store().Len())
}

func TestPending(t *testing.T) {
	p := NewPending(parse(t, exportCSV))

	_, err := p.Transform()
	assert.ErrorIs(t, err, ErrReferencesIncomplete)

	assert.False(t, p.AddReferenceClick(models.Point{X: 100, Y: 100}))
	assert.True(t, p.AddReferenceClick(models.Point{X: 300, Y: 100}))
	assert.True(t, p.AddReferenceClick(models.Point{X: 999, Y: 999}))
	assert.Equal(t, []models.Point{{X: 100, Y: 100}, {X: 300, Y: 100}}, p.Clicks())

	g := graph.New()
	res, err := p.Place(g)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, res.Transform.Scale, 1e-12)
	assert.Equal(t, 3, g.Store().Len())
}
