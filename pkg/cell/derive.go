package cell

import "fmt"

type dependency struct {
	src     Source
	version uint64
}

// Getter records the sources read while a derivation runs.
type Getter struct {
	deps []dependency
}

// Read returns the value of src and, when g is non-nil, records src as a
// dependency of the running derivation.
func Read[T any](g *Getter, src Readable[T]) T {
	value := src.Get()
	if g != nil {
		g.deps = append(g.deps, dependency{src: src, version: src.Version()})
	}
	return value
}

// DeriveOption configures a derivation.
type DeriveOption[T any] func(*Derived[T])

// WithEqual suppresses version bumps when a recomputation yields a value equal
// to the previous one, which stops downstream recomputation early.
func WithEqual[T any](equal func(a, b T) bool) DeriveOption[T] {
	return func(d *Derived[T]) {
		d.equal = equal
	}
}

// Same reports a == b; handy with WithEqual for comparable types.
func Same[T comparable](a, b T) bool {
	return a == b
}

// Derived is a memoized value computed from other sources.
type Derived[T any] struct {
	fn       func(*Getter) T
	equal    func(a, b T) bool
	value    T
	version  uint64
	deps     []dependency
	computed bool
	running  bool
}

// Derive creates a derivation. fn must read its inputs through Read so the
// derivation knows when to recompute.
func Derive[T any](fn func(*Getter) T, opts ...DeriveOption[T]) *Derived[T] {
	d := &Derived[T]{fn: fn}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Get returns the up to date value, recomputing it when a dependency changed.
func (d *Derived[T]) Get() T {
	d.refresh()
	return d.value
}

// Version implements Source.
func (d *Derived[T]) Version() uint64 {
	d.refresh()
	return d.version
}

func (d *Derived[T]) refresh() {
	if d.computed && !d.stale() {
		return
	}
	if d.running {
		panic(fmt.Sprintf("cell: cyclic derivation of %T", d.value))
	}
	d.running = true
	g := &Getter{}
	next := func() T {
		defer func() { d.running = false }()
		return d.fn(g)
	}()
	d.deps = g.deps
	if d.computed && d.equal != nil && d.equal(d.value, next) {
		return
	}
	d.value = next
	d.version++
	d.computed = true
}

func (d *Derived[T]) stale() bool {
	for _, dep := range d.deps {
		if dep.src.Version() != dep.version {
			return true
		}
	}
	return false
}
