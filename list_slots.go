package formlist

import (
	"fmt"

	"github.com/goliatone/go-formlist/layering"
	"github.com/goliatone/go-formlist/pkg/cell"
)

// slot pairs an identity with the sub-form built for it. The sub-form is
// built once and follows the identity through every move.
type slot struct {
	id   Identity
	node Node
	name *cell.Derived[string]
}

func (s *slot) bind(store *cell.Store) {
	s.node.Bind(Scope{Store: store, Name: s.name})
}

// newSlot runs the builder and mints an identity for the result. Nothing in
// the list changes until the caller installs the slot.
func (l *List) newSlot(value any) (*slot, error) {
	node, err := l.build(value)
	if err != nil {
		return nil, err
	}
	s := &slot{id: l.registry.mint(), node: node}
	id := s.id
	s.name = cell.Derive(func(g *cell.Getter) string {
		pos, ok := cell.Read(g, l.positions)[id]
		if !ok {
			pos = -1
		}
		return fmt.Sprintf("%s[%d]", cell.Read(g, l.name), pos)
	}, cell.WithEqual(cell.Same[string]))
	s.bind(l.store)
	return s, nil
}

func (l *List) build(value any) (Node, error) {
	node, err := l.builder(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuilder, err)
	}
	if node == nil {
		return nil, ErrNilNode
	}
	return node, nil
}

// hydrate builds a fresh slot for every value. On error no identities leak
// into the list because the caller discards the partial result.
func (l *List) hydrate(values []any) (map[Identity]*slot, []Identity, error) {
	slots := make(map[Identity]*slot, len(values))
	order := make([]Identity, 0, len(values))
	for i, value := range values {
		s, err := l.newSlot(layering.Clone(value))
		if err != nil {
			return nil, nil, fmt.Errorf("formlist: hydrate item %d: %w", i, err)
		}
		slots[s.id] = s
		order = append(order, s.id)
	}
	return slots, order, nil
}

func projectValues(slots map[Identity]*slot, order []Identity) []any {
	out := make([]any, 0, len(order))
	for _, id := range order {
		out = append(out, layering.Clone(slots[id].node.ValueCell().Get()))
	}
	return out
}

func indexOf(order []Identity, id Identity) int {
	if id.IsZero() {
		return -1
	}
	for i, candidate := range order {
		if candidate == id {
			return i
		}
	}
	return -1
}
