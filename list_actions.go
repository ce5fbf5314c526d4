package formlist

import (
	"fmt"

	"github.com/goliatone/go-formlist/layering"
	"github.com/goliatone/go-formlist/pkg/activity"
)

// Add inserts an item built from the default value before the item before.
// A zero or unknown before appends. It returns the new item's identity.
func (l *List) Add(before Identity) (Identity, error) {
	return l.insert(before, layering.Clone(l.cfg.defaultValue))
}

// AddValue is Add with an explicit value. When a default value is configured
// the value is merged over it, so partial maps fill in the missing keys.
func (l *List) AddValue(before Identity, value any) (Identity, error) {
	if l.cfg.hasDefault {
		value = layering.Merge(value, l.cfg.defaultValue)
	}
	return l.insert(before, layering.Clone(value))
}

func (l *List) insert(before Identity, value any) (Identity, error) {
	s, err := l.newSlot(value)
	if err != nil {
		return Identity{}, fmt.Errorf("formlist: add: %w", err)
	}
	pos := 0
	l.store.Batch(func() {
		order := l.order.Get()
		pos = indexOf(order, before)
		if pos < 0 {
			pos = len(order)
		}
		l.slots[s.id] = s
		l.order.Set(insertAt(order, pos, s.id))
		l.revalidate()
	})
	l.trace("add", s.id, pos)
	l.emit(activity.BuildItemAddedEvent, activity.ListEventInput{ItemID: s.id.String(), Index: pos})
	return s.id, nil
}

// Remove drops item id and discards its sub-form. Removing an item that is no
// longer in the list is a no-op; an identity the list never minted is an error.
func (l *List) Remove(id Identity) error {
	if !l.registry.owns(id) {
		return fmt.Errorf("formlist: remove %q: %w", id, ErrUnknownIdentity)
	}
	order := l.order.Get()
	pos := indexOf(order, id)
	if pos < 0 {
		return nil
	}
	l.store.Batch(func() {
		delete(l.slots, id)
		l.order.Set(removeAt(order, pos))
		l.revalidate()
	})
	l.trace("remove", id, pos)
	l.emit(activity.BuildItemRemovedEvent, activity.ListEventInput{ItemID: id.String(), Index: pos})
	return nil
}

// Move reinserts item id before the item before. A zero or unknown before,
// or before == id, moves the item to the end. The item keeps its identity
// and sub-form; only names that depend on position change.
func (l *List) Move(id, before Identity) error {
	if !l.registry.owns(id) {
		return fmt.Errorf("formlist: move %q: %w", id, ErrUnknownIdentity)
	}
	order := l.order.Get()
	from := indexOf(order, id)
	if from < 0 {
		return nil
	}
	rest := removeAt(order, from)
	to := indexOf(rest, before)
	if to < 0 || before == id {
		to = len(rest)
	}
	if to == from {
		return nil
	}
	l.store.Batch(func() {
		l.order.Set(insertAt(rest, to, id))
		l.revalidate()
	})
	l.trace("move", id, to)
	l.emit(activity.BuildItemMovedEvent, activity.ListEventInput{ItemID: id.String(), From: from, To: to})
	return nil
}

// MoveUp swaps item id with its predecessor. The first item stays put.
func (l *List) MoveUp(id Identity) error {
	if !l.registry.owns(id) {
		return fmt.Errorf("formlist: move up %q: %w", id, ErrUnknownIdentity)
	}
	order := l.order.Get()
	pos := indexOf(order, id)
	if pos <= 0 {
		return nil
	}
	return l.Move(id, order[pos-1])
}

// MoveDown swaps item id with its successor. The last item stays put.
func (l *List) MoveDown(id Identity) error {
	if !l.registry.owns(id) {
		return fmt.Errorf("formlist: move down %q: %w", id, ErrUnknownIdentity)
	}
	order := l.order.Get()
	pos := indexOf(order, id)
	if pos < 0 || pos == len(order)-1 {
		return nil
	}
	var before Identity
	if pos+2 < len(order) {
		before = order[pos+2]
	}
	return l.Move(id, before)
}

// Duplicate inserts a copy of item id right after it. The copy gets a fresh
// identity and its own sub-form built from a deep copy of the value.
func (l *List) Duplicate(id Identity) (Identity, error) {
	if !l.registry.owns(id) {
		return Identity{}, fmt.Errorf("formlist: duplicate %q: %w", id, ErrUnknownIdentity)
	}
	order := l.order.Get()
	pos := indexOf(order, id)
	if pos < 0 {
		return Identity{}, fmt.Errorf("formlist: duplicate %q: item was removed", id)
	}
	s, err := l.newSlot(layering.Clone(l.slots[id].node.ValueCell().Get()))
	if err != nil {
		return Identity{}, fmt.Errorf("formlist: duplicate: %w", err)
	}
	l.store.Batch(func() {
		l.slots[s.id] = s
		l.order.Set(insertAt(order, pos+1, s.id))
		l.revalidate()
	})
	l.trace("duplicate", s.id, pos+1)
	l.emit(activity.BuildItemDuplicatedEvent, activity.ListEventInput{ItemID: s.id.String(), SourceID: id.String(), Index: pos + 1})
	return s.id, nil
}

// SetValue replaces every item. Each value gets a fresh identity and
// sub-form, the projected values become the new baseline and list errors are
// cleared. On builder failure the list is left untouched.
func (l *List) SetValue(values []any) error {
	slots, order, err := l.hydrate(values)
	if err != nil {
		return err
	}
	l.replace(slots, order, projectValues(slots, order))
	l.trace("set", Identity{}, len(order))
	l.emit(activity.BuildHydratedEvent, activity.ListEventInput{Count: len(order)})
	return nil
}

// Reset rebuilds the items from the values the list was constructed with,
// makes them the baseline again and clears list errors. SetValue does not
// change what Reset returns to.
func (l *List) Reset() {
	if err := l.ResetE(); err != nil {
		l.logger.Error().Err(err).Str("list", l.Name()).Msg("reset failed")
	}
}

// ResetE is Reset reporting builder failures.
func (l *List) ResetE() error {
	slots, order, err := l.hydrate(l.resetTo)
	if err != nil {
		return fmt.Errorf("formlist: reset: %w", err)
	}
	l.replace(slots, order, l.resetTo)
	l.trace("reset", Identity{}, len(order))
	l.emit(activity.BuildResetEvent, activity.ListEventInput{Count: len(order)})
	return nil
}

func (l *List) replace(slots map[Identity]*slot, order []Identity, baseline []any) {
	l.store.Batch(func() {
		l.slots = slots
		l.order.Set(order)
		l.baseline.Set(layering.Clone(baseline))
		l.setOwnErrors(nil)
	})
}

func insertAt(order []Identity, pos int, id Identity) []Identity {
	next := make([]Identity, 0, len(order)+1)
	next = append(next, order[:pos]...)
	next = append(next, id)
	return append(next, order[pos:]...)
}

func removeAt(order []Identity, pos int) []Identity {
	next := make([]Identity, 0, len(order))
	next = append(next, order[:pos]...)
	return append(next, order[pos+1:]...)
}
