package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"circuitee/internal/designer/engine"
	"circuitee/internal/designer/models"
	"circuitee/internal/designer/share"
	"circuitee/internal/storage"
)

// parsePoint reads "x,y".
func parsePoint(s string) (models.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return models.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return models.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return models.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return models.Point{X: x, Y: y}, nil
}

func openStore() storage.KV {
	if storeDir == "" {
		return nil
	}
	return storage.NewFileStore(storeDir)
}

// loadEngine decodes a blob or share link into a fresh engine.
func loadEngine(raw string) (*engine.Engine, error) {
	blob, mode, err := share.ParseShareURL(raw)
	if err != nil {
		return nil, err
	}
	design, err := share.Load(context.Background(), openStore(), blob)
	if err != nil {
		return nil, err
	}
	if mode != "" {
		design.Mode = mode
	}

	eng := engine.New(engine.Options{})
	if err := eng.Load(design); err != nil {
		return nil, err
	}
	return eng, nil
}

func switchLabels(eng *engine.Engine, ids []string) []string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if el, ok := eng.Graph().Element(id); ok {
			labels = append(labels, el.Label)
		} else {
			labels = append(labels, id)
		}
	}
	return labels
}
