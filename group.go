package formlist

import (
	"sort"

	"github.com/goliatone/go-formlist/pkg/cell"
)

// Fields names the children of a Group.
type Fields map[string]Node

// Group is a node made of named children. Its value is a map keyed by child
// name; it is dirty or invalid when any child is.
type Group struct {
	children Fields
	keys     []string
	store    *cell.Store

	value   *cell.Derived[any]
	dirty   *cell.Derived[bool]
	errors  *cell.Derived[[]string]
	invalid *cell.Derived[bool]
}

// NewGroup creates a group over children. Nil children are dropped.
func NewGroup(children Fields) *Group {
	g := &Group{children: Fields{}}
	for key, child := range children {
		if child == nil {
			continue
		}
		g.children[key] = child
		g.keys = append(g.keys, key)
	}
	sort.Strings(g.keys)

	g.value = cell.Derive(func(get *cell.Getter) any {
		out := make(map[string]any, len(g.keys))
		for _, key := range g.keys {
			out[key] = cell.Read(get, g.children[key].ValueCell())
		}
		return out
	})
	g.dirty = cell.Derive(func(get *cell.Getter) bool {
		for _, key := range g.keys {
			if cell.Read(get, g.children[key].DirtyCell()) {
				return true
			}
		}
		return false
	}, cell.WithEqual(cell.Same[bool]))
	g.errors = cell.Derive(func(get *cell.Getter) []string {
		var out []string
		for _, key := range g.keys {
			out = append(out, cell.Read(get, g.children[key].ErrorsCell())...)
		}
		return out
	}, cell.WithEqual(sameStrings))
	g.invalid = cell.Derive(func(get *cell.Getter) bool {
		for _, key := range g.keys {
			if cell.Read(get, g.children[key].InvalidCell()) {
				return true
			}
		}
		return false
	}, cell.WithEqual(cell.Same[bool]))
	return g
}

// Get returns the child registered under key.
func (g *Group) Get(key string) Node { return g.children[key] }

// Field returns the child under key when it is a *Field.
func (g *Group) Field(key string) *Field {
	f, _ := g.children[key].(*Field)
	return f
}

// List returns the child under key when it is a *List.
func (g *Group) List(key string) *List {
	l, _ := g.children[key].(*List)
	return l
}

// Group returns the child under key when it is a *Group.
func (g *Group) Group(key string) *Group {
	child, _ := g.children[key].(*Group)
	return child
}

// Keys returns the child names in sorted order.
func (g *Group) Keys() []string { return append([]string(nil), g.keys...) }

func (g *Group) Value() map[string]any {
	value, _ := g.value.Get().(map[string]any)
	return value
}

func (g *Group) Dirty() bool { return g.dirty.Get() }

func (g *Group) Invalid() bool { return g.invalid.Get() }

func (g *Group) Errors() []string { return copyStrings(g.errors.Get()) }

// Validate validates every child, even after the first invalid one.
func (g *Group) Validate() []string {
	g.store.Batch(func() {
		for _, key := range g.keys {
			g.children[key].Validate()
		}
	})
	return g.Errors()
}

func (g *Group) Reset() {
	g.store.Batch(func() {
		for _, key := range g.keys {
			g.children[key].Reset()
		}
	})
}

// Bind hands the same scope to every child; a group adds no name segment.
func (g *Group) Bind(scope Scope) {
	g.store = scope.Store
	for _, key := range g.keys {
		g.children[key].Bind(scope)
	}
}

func (g *Group) ValueCell() cell.Readable[any]       { return g.value }
func (g *Group) DirtyCell() cell.Readable[bool]      { return g.dirty }
func (g *Group) ErrorsCell() cell.Readable[[]string] { return g.errors }
func (g *Group) InvalidCell() cell.Readable[bool]    { return g.invalid }
