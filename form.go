package formlist

import (
	"github.com/goliatone/go-formlist/layering"
	"github.com/goliatone/go-formlist/pkg/cell"
)

// Form is the root of a form tree. It owns the store every node reports to.
type Form struct {
	store   *cell.Store
	root    *Group
	changes *cell.Derived[formChange]
}

type formChange struct {
	value  any
	dirty  bool
	errors []string
}

// NewForm binds fields under a fresh store with an empty name prefix.
func NewForm(fields Fields) *Form {
	return NewFormIn(cell.NewStore(), fields)
}

// NewFormIn is NewForm sharing store.
func NewFormIn(store *cell.Store, fields Fields) *Form {
	if store == nil {
		store = cell.NewStore()
	}
	f := &Form{store: store, root: NewGroup(fields)}
	f.root.Bind(Scope{Store: store, Name: rootName()})
	f.changes = cell.Derive(func(g *cell.Getter) formChange {
		return formChange{
			value:  cell.Read(g, f.root.ValueCell()),
			dirty:  cell.Read(g, f.root.DirtyCell()),
			errors: cell.Read(g, f.root.ErrorsCell()),
		}
	})
	return f
}

func (f *Form) Store() *cell.Store { return f.store }

// Root returns the top level group.
func (f *Form) Root() *Group { return f.root }

func (f *Form) Get(key string) Node { return f.root.Get(key) }

func (f *Form) Field(key string) *Field { return f.root.Field(key) }

func (f *Form) List(key string) *List { return f.root.List(key) }

// Value returns a deep copy of the form value.
func (f *Form) Value() map[string]any { return layering.Clone(f.root.Value()) }

func (f *Form) Dirty() bool { return f.root.Dirty() }

func (f *Form) Invalid() bool { return f.root.Invalid() }

func (f *Form) Errors() []string { return f.root.Errors() }

// Validate validates every node and reports whether the form is valid.
func (f *Form) Validate() bool {
	f.root.Validate()
	return !f.root.Invalid()
}

// Reset restores every node to its initial state.
func (f *Form) Reset() { f.root.Reset() }

// Submit validates the form and calls fn with its value when valid.
func (f *Form) Submit(fn func(values map[string]any) error) error {
	if !f.Validate() {
		return ErrInvalidForm
	}
	if fn == nil {
		return nil
	}
	return fn(f.Value())
}

// Watch calls fn after every batch that changed the form value, dirtiness or
// errors.
func (f *Form) Watch(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return f.store.Subscribe(f.changes, fn)
}
