package share

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"testing"

	"circuitee/internal/common/metrics"
	"circuitee/internal/designer/graph"
	"circuitee/internal/designer/models"
	"circuitee/internal/storage"

	"github.com/gofiber/fiber/v3/log"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDesign(t *testing.T) models.Design {
	t.Helper()
	g := graph.New()
	l1, err := g.AddElement(models.KindLight, models.Point{X: 10, Y: 10})
	require.NoError(t, err)
	l2 := g.AddLinearLight(models.Point{X: 50, Y: 50}, models.Point{X: 150, Y: 50})
	sw, err := g.AddElement(models.KindSwitch, models.Point{X: 200, Y: 200})
	require.NoError(t, err)
	_, err = g.Connect(l1.ID, l2.ID)
	require.NoError(t, err)
	_, err = g.Connect(sw.ID, l1.ID)
	require.NoError(t, err)
	return models.Design{Mode: models.ModeEdit, Snapshot: g.Snapshot()}
}

// encode builds a blob from raw JSON the way older builds wrote it.
func encode(t *testing.T, v any) string {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(snappy.Encode(nil, payload))
}

func TestRoundTrip(t *testing.T) {
	d := sampleDesign(t)

	blob, err := Serialize(d)
	require.NoError(t, err)
	assert.NotContains(t, blob, "=")
	assert.NotContains(t, blob, "/")
	assert.NotContains(t, blob, "+")

	got, err := Deserialize("#" + blob)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestSerialize_FloorPlanSentinel(t *testing.T) {
	d := sampleDesign(t)
	d.FloorPlan = "data:image/png;base64,iVBORw0KGgo="

	blob, err := Serialize(d)
	require.NoError(t, err)

	got, err := Deserialize(blob)
	require.NoError(t, err)
	assert.True(t, got.HasFloorPlanSentinel())
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", d.FloorPlan, "caller's design untouched")
}

func TestDeserialize_Invalid(t *testing.T) {
	for name, blob := range map[string]string{
		"empty":      "",
		"not base64": "!!!",
		"not snappy": base64.RawURLEncoding.EncodeToString([]byte("plain text")),
		"not json":   base64.RawURLEncoding.EncodeToString(snappy.Encode(nil, []byte("{"))),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Deserialize(blob)
			assert.ErrorIs(t, err, ErrInvalidBlob)
		})
	}
}

func TestDeserialize_LegacySwitchID(t *testing.T) {
	blob := encode(t, map[string]any{
		"mode": "test",
		"elements": []map[string]any{
			{"id": "element-3", "type": "light", "x": 1, "y": 1, "label": "L1", "circuit": "c2", "switchId": "element-9"},
			{"id": "element-4", "type": "light", "x": 2, "y": 2, "label": "L2", "circuit": "c2"},
			{"id": "element-9", "type": "switch", "x": 3, "y": 3, "label": "SW1", "switchId": "element-3"},
		},
		"connections": []map[string]any{
			{"from": "element-3", "to": "element-4", "type": "light-to-light"},
		},
		"circuits":         map[string][]string{"c2": {"element-3", "element-4"}},
		"circuitCounter":   1,
		"elementIdCounter": 2,
	})

	d, err := Deserialize(blob)
	require.NoError(t, err)

	assert.Equal(t, models.ModeTest, d.Mode)
	require.Len(t, d.Elements, 3)
	assert.Equal(t, []string{"element-9"}, d.Elements[0].SwitchIDs)
	assert.Equal(t, []string{"element-9"}, d.Elements[1].SwitchIDs, "unified across the circuit")
	assert.Empty(t, d.Elements[2].SwitchIDs, "switches carry no switch set")

	assert.Equal(t, 10, d.ElementIDCounter)
	assert.Equal(t, 3, d.CircuitCounter)

	g := graph.New()
	g.Restore(d.Snapshot)
	assert.NoError(t, g.Validate())
}

func TestDeserialize_LegacyWiredLightWithoutCircuit(t *testing.T) {
	blob := encode(t, map[string]any{
		"mode": "edit",
		"elements": []map[string]any{
			{"id": "element-1", "type": "light", "x": 1, "y": 1, "label": "L1", "circuit": nil, "switchId": "element-2"},
			{"id": "element-2", "type": "switch", "x": 3, "y": 3, "label": "SW1"},
			{"id": "element-3", "type": "light", "x": 5, "y": 5, "label": "L2", "circuit": "c4"},
			{"id": "element-4", "type": "linear-light", "x": 7, "y": 7, "x2": 9, "y2": 7, "label": "L3"},
		},
		"connections": []map[string]any{
			{"from": "element-1", "to": "element-2", "type": "control"},
		},
		"circuits":         map[string][]string{"c4": {"element-3"}},
		"circuitCounter":   2,
		"elementIdCounter": 5,
	})

	d, err := Deserialize(blob)
	require.NoError(t, err)

	wired := d.Elements[0]
	assert.Equal(t, "c5", wired.Circuit, "fresh circuit past the highest id in use")
	assert.Equal(t, []string{"element-2"}, wired.SwitchIDs)
	assert.Equal(t, []string{"element-1"}, d.Circuits["c5"])
	assert.Equal(t, graph.PaletteColor(5), d.CircuitColors["c5"])
	assert.Equal(t, 6, d.CircuitCounter)
	assert.Empty(t, d.Elements[3].Circuit, "unwired lights stay outside circuits")

	g := graph.New()
	g.Restore(d.Snapshot)
	require.NoError(t, g.Validate())
	assert.Equal(t, []string{"element-2"}, g.CircuitSwitches("c5"))

	// without the adapter the same light fails validation
	d.Elements[0].Circuit = ""
	delete(d.Circuits, "c5")
	g.Restore(d.Snapshot)
	assert.ErrorIs(t, g.Validate(), graph.ErrInvariant)
}

func TestShareURL(t *testing.T) {
	link, err := ShareURL("https://example.com/designer?mode=edit#old", "abc_-")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/designer?mode=test#abc_-", link)

	blob, mode, err := ParseShareURL(link)
	require.NoError(t, err)
	assert.Equal(t, "abc_-", blob)
	assert.Equal(t, models.ModeTest, mode)

	blob, mode, err = ParseShareURL("abc_-")
	require.NoError(t, err)
	assert.Equal(t, "abc_-", blob)
	assert.Empty(t, mode)
}

func TestPersisterAndLoad(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewFileStore(t.TempDir())
	p := NewPersister(kv, metrics.NewRegistry(), "session-1")
	assert.Equal(t, "circuitee-floorplan/session-1", p.Key())

	d := sampleDesign(t)
	d.FloorPlan = "data:image/jpeg;base64,/9j/4AAQ"
	require.NoError(t, p.Persist(d))
	require.NotEmpty(t, p.Blob())

	_, err := kv.Get(ctx, FloorPlanKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	raw, err := Deserialize(p.Blob())
	require.NoError(t, err)
	assert.Equal(t, p.Key(), raw.FloorPlanRef)

	stored, err := kv.Get(ctx, p.Key())
	require.NoError(t, err)
	assert.Equal(t, d.FloorPlan, string(stored))

	loaded, err := Load(ctx, kv, p.Blob())
	require.NoError(t, err)
	assert.Equal(t, d, loaded)

	require.NoError(t, p.DiscardFloorPlan())
	loaded, err = Load(ctx, kv, p.Blob())
	require.NoError(t, err)
	assert.Empty(t, loaded.FloorPlan)
	assert.Equal(t, d.Elements, loaded.Elements)
}

func TestLoad_LegacyFixedKey(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewFileStore(t.TempDir())
	require.NoError(t, kv.Put(ctx, FloorPlanKey, []byte("legacy-image")))

	d := sampleDesign(t)
	d.FloorPlan = "img"
	blob, err := Serialize(d)
	require.NoError(t, err)

	loaded, err := Load(ctx, kv, blob)
	require.NoError(t, err)
	assert.Equal(t, "legacy-image", loaded.FloorPlan)
	assert.Empty(t, loaded.FloorPlanRef)
}

func TestLoad_MissingImageWarns(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	d := sampleDesign(t)
	d.FloorPlan = "img"
	blob, err := Serialize(d)
	require.NoError(t, err)

	loaded, err := Load(context.Background(), storage.NewFileStore(t.TempDir()), blob)
	require.NoError(t, err)
	assert.Empty(t, loaded.FloorPlan)
	assert.Contains(t, buf.String(), "floor plan marker present but no stored image: circuitee-floorplan")
}

func TestLoad_RejectsForeignReference(t *testing.T) {
	d := sampleDesign(t)
	d.FloorPlan = "img"
	d.FloorPlanRef = "some-other-key"
	blob, err := Serialize(d)
	require.NoError(t, err)

	_, err = Load(context.Background(), storage.NewFileStore(t.TempDir()), blob)
	assert.ErrorIs(t, err, ErrInvalidBlob)
}

func TestSerialize_DropsReferenceWithoutFloorPlan(t *testing.T) {
	d := sampleDesign(t)
	d.FloorPlanRef = FloorPlanKeyFor("x")
	blob, err := Serialize(d)
	require.NoError(t, err)

	got, err := Deserialize(blob)
	require.NoError(t, err)
	assert.Empty(t, got.FloorPlanRef)
}

func TestLoad_NoStore(t *testing.T) {
	d := sampleDesign(t)
	d.FloorPlan = "img"
	blob, err := Serialize(d)
	require.NoError(t, err)

	loaded, err := Load(context.Background(), nil, blob)
	require.NoError(t, err)
	assert.Empty(t, loaded.FloorPlan)
}
