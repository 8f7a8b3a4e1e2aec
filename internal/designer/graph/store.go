package graph

import (
	"fmt"
	"slices"

	"circuitee/internal/designer/models"
)

// ============================================================
// Element Store
// ============================================================

const elementIDPrefix = "element-"

// ElementStore owns element records in creation order.
type ElementStore struct {
	elements []*models.Element
	index    map[string]*models.Element
	nextID   int
}

func NewElementStore() *ElementStore {
	return &ElementStore{
		elements: []*models.Element{},
		index:    make(map[string]*models.Element),
		nextID:   1,
	}
}

// Add places a point light or a switch centered on the given point.
func (s *ElementStore) Add(kind models.Kind, at models.Point) (*models.Element, error) {
	if kind != models.KindLight && kind != models.KindSwitch {
		return nil, fmt.Errorf("add %q: %w", kind, ErrInvalidKind)
	}

	pos := at.Sub(models.AnchorOffset(kind))
	el := &models.Element{
		ID:    s.allocateID(),
		Kind:  kind,
		X:     pos.X,
		Y:     pos.Y,
		Label: nextLabel(s.elements, kind),
	}
	s.insert(el)
	return el, nil
}

// AddLinear places a linear light between two points.
func (s *ElementStore) AddLinear(start, end models.Point) *models.Element {
	el := &models.Element{
		ID:    s.allocateID(),
		Kind:  models.KindLinearLight,
		X:     start.X,
		Y:     start.Y,
		X2:    end.X,
		Y2:    end.Y,
		Label: nextLabel(s.elements, models.KindLinearLight),
	}
	s.insert(el)
	return el
}

func (s *ElementStore) allocateID() string {
	id := fmt.Sprintf("%s%d", elementIDPrefix, s.nextID)
	s.nextID++
	return id
}

func (s *ElementStore) insert(el *models.Element) {
	s.elements = append(s.elements, el)
	s.index[el.ID] = el
}

func (s *ElementStore) Get(id string) (*models.Element, bool) {
	el, ok := s.index[id]
	return el, ok
}

// All returns the live elements in creation order. Callers must not keep the slice.
func (s *ElementStore) All() []*models.Element {
	return s.elements
}

func (s *ElementStore) Lights() []*models.Element {
	var out []*models.Element
	for _, el := range s.elements {
		if el.IsLightLike() {
			out = append(out, el)
		}
	}
	return out
}

func (s *ElementStore) Switches() []*models.Element {
	var out []*models.Element
	for _, el := range s.elements {
		if el.Kind == models.KindSwitch {
			out = append(out, el)
		}
	}
	return out
}

// FindByLabel looks up an element by its visible label (L3, SW1).
func (s *ElementStore) FindByLabel(label string) (*models.Element, bool) {
	for _, el := range s.elements {
		if el.Label == label {
			return el, true
		}
	}
	return nil, false
}

func (s *ElementStore) Remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	s.elements = slices.DeleteFunc(s.elements, func(el *models.Element) bool {
		return el.ID == id
	})
	return true
}

// Move sets the stored position. A linear light keeps its length and angle.
func (s *ElementStore) Move(id string, to models.Point) error {
	el, ok := s.index[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrElementNotFound)
	}
	if el.Kind == models.KindLinearLight {
		delta := to.Sub(el.Position())
		el.X2 += delta.X
		el.Y2 += delta.Y
	}
	el.X = to.X
	el.Y = to.Y
	return nil
}

func (s *ElementStore) Len() int {
	return len(s.elements)
}

// NextID is the counter value the next element id will use.
func (s *ElementStore) NextID() int {
	return s.nextID
}

func (s *ElementStore) reset() {
	s.elements = []*models.Element{}
	s.index = make(map[string]*models.Element)
	s.nextID = 1
}

// load replaces the contents with copies of elements.
func (s *ElementStore) load(elements []*models.Element, nextID int) {
	s.elements = make([]*models.Element, 0, len(elements))
	s.index = make(map[string]*models.Element, len(elements))
	for _, el := range elements {
		s.insert(el.Clone())
	}
	s.nextID = nextID
}
