package formlist

import (
	"github.com/goliatone/go-formlist/layering"
	"github.com/goliatone/go-formlist/pkg/cell"
)

// deriveValidation wires the aggregated error cells. The list's own messages
// are a snapshot taken whenever its validator runs. The invalid item message
// follows the live item error state, so it goes away as soon as every item
// is valid again.
func (l *List) deriveValidation() {
	l.itemsInvalid = cell.Derive(func(g *cell.Getter) bool {
		for _, id := range cell.Read(g, l.order) {
			if cell.Read(g, l.slots[id].node.InvalidCell()) {
				return true
			}
		}
		return false
	}, cell.WithEqual(cell.Same[bool]))

	l.errors = cell.Derive(func(g *cell.Getter) []string {
		own := cell.Read(g, l.own)
		out := make([]string, 0, len(own)+1)
		out = append(out, own...)
		if l.cfg.invalidItemError != "" && cell.Read(g, l.itemsInvalid) {
			out = append(out, l.cfg.invalidItemError)
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}, cell.WithEqual(sameStrings))

	l.invalid = cell.Derive(func(g *cell.Getter) bool {
		return len(cell.Read(g, l.own)) > 0 || cell.Read(g, l.itemsInvalid)
	}, cell.WithEqual(cell.Same[bool]))
}

// Errors returns the list's own messages followed by the invalid item
// message when any item is invalid.
func (l *List) Errors() []string { return copyStrings(l.errors.Get()) }

// Invalid reports whether the list or any item is invalid.
func (l *List) Invalid() bool { return l.invalid.Get() }

// Validate runs the list validator and validates every item's sub-form. It
// returns the list errors afterwards; item errors stay on the items.
func (l *List) Validate() []string {
	l.store.Batch(func() {
		l.runValidator(TriggerSubmit)
		for _, id := range l.order.Get() {
			l.slots[id].node.Validate()
		}
	})
	return l.Errors()
}

// revalidate re-runs the list validator after a structural change when the
// list validates on change or is currently showing its own errors.
func (l *List) revalidate() {
	if l.cfg.validator == nil {
		return
	}
	if l.cfg.trigger == TriggerChange || len(l.own.Get()) > 0 {
		l.runValidator(TriggerChange)
	}
}

func (l *List) runValidator(event Trigger) {
	if l.cfg.validator == nil {
		l.setOwnErrors(nil)
		return
	}
	l.setOwnErrors(l.cfg.validator.Validate(ValidationContext{
		Value: layering.Clone(l.values.Get()),
		Name:  l.Name(),
		Event: event,
	}))
}

func (l *List) setOwnErrors(messages []string) {
	if sameStrings(l.own.Get(), messages) {
		return
	}
	l.own.Set(copyStrings(messages))
}
