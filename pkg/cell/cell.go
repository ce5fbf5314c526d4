package cell

// Source is anything a derivation can depend on. Version brings the source up
// to date and returns a number that changes whenever its value changes.
type Source interface {
	Version() uint64
}

// Readable is a typed Source.
type Readable[T any] interface {
	Source
	Get() T
}

// Cell holds a writable value.
type Cell[T any] struct {
	store   *Store
	value   T
	version uint64
}

// New creates a detached cell. Writes are not announced until the cell is
// attached to a Store.
func New[T any](value T) *Cell[T] {
	return &Cell[T]{value: value, version: 1}
}

// NewIn creates a cell attached to store.
func NewIn[T any](store *Store, value T) *Cell[T] {
	c := New(value)
	c.store = store
	return c
}

// Attach routes future write notifications to store.
func (c *Cell[T]) Attach(store *Store) {
	c.store = store
}

// Store returns the store the cell announces writes to, if any.
func (c *Cell[T]) Store() *Store {
	return c.store
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Version implements Source.
func (c *Cell[T]) Version() uint64 {
	return c.version
}

// Set replaces the value and notifies the attached store.
func (c *Cell[T]) Set(value T) {
	c.value = value
	c.version++
	c.store.changed()
}

// Update applies fn to the current value and stores the result.
func (c *Cell[T]) Update(fn func(T) T) {
	if fn == nil {
		return
	}
	c.Set(fn(c.value))
}
