package formlist

import (
	"reflect"

	"github.com/goliatone/go-formlist/layering"
	"github.com/goliatone/go-formlist/pkg/cell"
)

// FieldOption configures a Field.
type FieldOption func(*Field)

// WithFieldName sets the field's own name segment. The resolved name is the
// parent prefix joined with it by a dot.
func WithFieldName(name string) FieldOption {
	return func(f *Field) {
		f.name = name
	}
}

// WithFieldValidator sets the field validator.
func WithFieldValidator(validator Validator) FieldOption {
	return func(f *Field) {
		f.validator = validator
	}
}

// WithFieldTrigger selects when the validator re-runs. Defaults to TriggerChange.
func WithFieldTrigger(trigger Trigger) FieldOption {
	return func(f *Field) {
		if trigger != "" {
			f.trigger = trigger
		}
	}
}

// Field is a leaf node holding a single value.
type Field struct {
	name      string
	validator Validator
	trigger   Trigger
	initial   any
	store     *cell.Store

	value   *cell.Cell[any]
	errors  *cell.Cell[[]string]
	touched *cell.Cell[bool]
	prefix  *cell.Cell[cell.Readable[string]]

	valueAny *cell.Derived[any]
	fullName *cell.Derived[string]
	dirty    *cell.Derived[bool]
	invalid  *cell.Derived[bool]
}

// NewField creates a field whose initial value is a deep copy of value.
func NewField(value any, opts ...FieldOption) *Field {
	f := &Field{
		trigger: TriggerChange,
		initial: layering.Clone(value),
		value:   cell.New(value),
		errors:  cell.New[[]string](nil),
		touched: cell.New(false),
		prefix:  cell.New(rootName()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.valueAny = cell.Derive(func(g *cell.Getter) any {
		return cell.Read[any](g, f.value)
	})
	f.fullName = cell.Derive(func(g *cell.Getter) string {
		parent := cell.Read[cell.Readable[string]](g, f.prefix)
		return joinName(cell.Read(g, parent), f.name)
	}, cell.WithEqual(cell.Same[string]))
	f.dirty = cell.Derive(func(g *cell.Getter) bool {
		return !reflect.DeepEqual(cell.Read[any](g, f.value), f.initial)
	}, cell.WithEqual(cell.Same[bool]))
	f.invalid = cell.Derive(func(g *cell.Getter) bool {
		return len(cell.Read[[]string](g, f.errors)) > 0
	}, cell.WithEqual(cell.Same[bool]))
	return f
}

// Name returns the resolved scoped name, e.g. "recipients[2].email".
func (f *Field) Name() string { return f.fullName.Get() }

func (f *Field) Value() any { return f.value.Get() }

// Initial returns the value Reset restores.
func (f *Field) Initial() any { return layering.Clone(f.initial) }

func (f *Field) Dirty() bool { return f.dirty.Get() }

func (f *Field) Touched() bool { return f.touched.Get() }

func (f *Field) Errors() []string { return copyStrings(f.errors.Get()) }

func (f *Field) Invalid() bool { return f.invalid.Get() }

// SetValue stores value and, for change-triggered fields, revalidates.
func (f *Field) SetValue(value any) {
	f.store.Batch(func() {
		f.value.Set(value)
		if f.trigger == TriggerChange {
			f.run(TriggerChange)
		}
	})
}

// Blur marks the field touched and, for blur-triggered fields, revalidates.
func (f *Field) Blur() {
	f.store.Batch(func() {
		if !f.touched.Get() {
			f.touched.Set(true)
		}
		if f.trigger == TriggerBlur {
			f.run(TriggerBlur)
		}
	})
}

// Validate runs the validator regardless of trigger.
func (f *Field) Validate() []string {
	f.store.Batch(func() {
		f.run(TriggerSubmit)
	})
	return f.Errors()
}

// Reset restores the initial value and clears errors and touched state.
func (f *Field) Reset() {
	f.store.Batch(func() {
		f.value.Set(layering.Clone(f.initial))
		f.setErrors(nil)
		if f.touched.Get() {
			f.touched.Set(false)
		}
	})
}

func (f *Field) run(event Trigger) {
	if f.validator == nil {
		f.setErrors(nil)
		return
	}
	f.setErrors(f.validator.Validate(ValidationContext{
		Value: f.value.Get(),
		Name:  f.Name(),
		Event: event,
	}))
}

func (f *Field) setErrors(messages []string) {
	if sameStrings(f.errors.Get(), messages) {
		return
	}
	f.errors.Set(copyStrings(messages))
}

// Bind implements Node.
func (f *Field) Bind(scope Scope) {
	f.store = scope.Store
	f.value.Attach(scope.Store)
	f.errors.Attach(scope.Store)
	f.touched.Attach(scope.Store)
	f.prefix.Attach(scope.Store)
	name := scope.Name
	if name == nil {
		name = rootName()
	}
	f.prefix.Set(name)
}

func (f *Field) ValueCell() cell.Readable[any]       { return f.valueAny }
func (f *Field) DirtyCell() cell.Readable[bool]      { return f.dirty }
func (f *Field) ErrorsCell() cell.Readable[[]string] { return f.errors }
func (f *Field) InvalidCell() cell.Readable[bool]    { return f.invalid }
