package formlist

import (
	"context"
	"fmt"
	"reflect"

	"github.com/goliatone/go-formlist/layering"
	"github.com/goliatone/go-formlist/pkg/activity"
	"github.com/goliatone/go-formlist/pkg/cell"
	"github.com/rs/zerolog"
)

// List is a form node holding a reorderable collection of sub-forms. Every
// item has a stable Identity, a sub-form built once by the Builder, and a
// position dependent name such as "recipients[2]".
//
// A List is driven from a single goroutine. Mutations are applied as one
// store batch, so subscribers never see a half applied change.
type List struct {
	cfg      listConfig
	builder  Builder
	registry *identityRegistry
	store    *cell.Store
	emitter  *activity.Emitter
	logger   zerolog.Logger

	// slots is the only place sub-forms live; order decides which are live.
	// resetTo is the constructor snapshot Reset returns to; SetValue only
	// moves baseline.
	slots    map[Identity]*slot
	order    *cell.Cell[[]Identity]
	baseline *cell.Cell[[]any]
	own      *cell.Cell[[]string]
	prefix   *cell.Cell[cell.Readable[string]]
	resetTo  []any

	name         *cell.Derived[string]
	positions    *cell.Derived[map[Identity]int]
	values       *cell.Derived[[]any]
	valueAny     *cell.Derived[any]
	empty        *cell.Derived[bool]
	dirty        *cell.Derived[bool]
	itemsInvalid *cell.Derived[bool]
	errors       *cell.Derived[[]string]
	invalid      *cell.Derived[bool]
	state        *cell.Derived[State]
}

// State is the aggregated view of a list handed to watchers.
type State struct {
	Value   []any
	Empty   bool
	Dirty   bool
	Invalid bool
	Errors  []string
}

// NewList builds a list from initial, calling builder once per element. The
// projected item values become the baseline the list compares against.
func NewList(initial []any, builder Builder, opts ...Option) (*List, error) {
	if builder == nil {
		return nil, ErrBuilderRequired
	}
	cfg := defaultListConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	store := cfg.store
	if store == nil {
		store = cell.NewStore()
	}

	l := &List{
		cfg:      cfg,
		builder:  builder,
		registry: newIdentityRegistry(),
		store:    store,
		emitter:  activity.NewEmitter(cfg.hooks, cfg.activity),
		logger:   cfg.logger,
		slots:    map[Identity]*slot{},
		order:    cell.NewIn(store, []Identity{}),
		baseline: cell.NewIn(store, []any{}),
		own:      cell.NewIn[[]string](store, nil),
		prefix:   cell.NewIn(store, rootName()),
	}
	l.derive()

	slots, order, err := l.hydrate(initial)
	if err != nil {
		return nil, err
	}
	l.slots = slots
	l.order.Set(order)
	l.resetTo = layering.Clone(projectValues(slots, order))
	l.baseline.Set(layering.Clone(l.resetTo))
	return l, nil
}

// MustList is NewList that panics on error, for static form definitions.
func MustList(initial []any, builder Builder, opts ...Option) *List {
	l, err := NewList(initial, builder, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *List) derive() {
	l.name = cell.Derive(func(g *cell.Getter) string {
		parent := cell.Read[cell.Readable[string]](g, l.prefix)
		return joinName(cell.Read(g, parent), l.cfg.name)
	}, cell.WithEqual(cell.Same[string]))

	l.positions = cell.Derive(func(g *cell.Getter) map[Identity]int {
		order := cell.Read(g, l.order)
		out := make(map[Identity]int, len(order))
		for i, id := range order {
			out[id] = i
		}
		return out
	})

	l.values = cell.Derive(func(g *cell.Getter) []any {
		order := cell.Read(g, l.order)
		out := make([]any, 0, len(order))
		for _, id := range order {
			out = append(out, cell.Read(g, l.slots[id].node.ValueCell()))
		}
		return out
	})
	l.valueAny = cell.Derive(func(g *cell.Getter) any {
		return cell.Read(g, l.values)
	})

	l.empty = cell.Derive(func(g *cell.Getter) bool {
		return len(cell.Read(g, l.order)) == 0
	}, cell.WithEqual(cell.Same[bool]))

	l.dirty = cell.Derive(func(g *cell.Getter) bool {
		if !reflect.DeepEqual(cell.Read(g, l.values), cell.Read(g, l.baseline)) {
			return true
		}
		for _, id := range cell.Read(g, l.order) {
			if cell.Read(g, l.slots[id].node.DirtyCell()) {
				return true
			}
		}
		return false
	}, cell.WithEqual(cell.Same[bool]))

	l.deriveValidation()

	l.state = cell.Derive(func(g *cell.Getter) State {
		return State{
			Value:   cell.Read(g, l.values),
			Empty:   cell.Read(g, l.empty),
			Dirty:   cell.Read(g, l.dirty),
			Invalid: cell.Read(g, l.invalid),
			Errors:  cell.Read(g, l.errors),
		}
	})
}

// Name returns the resolved base name, e.g. "contacts[1].addresses".
func (l *List) Name() string { return l.name.Get() }

// Value returns the ordered item values.
func (l *List) Value() []any { return layering.Clone(l.values.Get()) }

// Initial returns the baseline the list compares against for dirtiness.
func (l *List) Initial() []any { return layering.Clone(l.baseline.Get()) }

func (l *List) Len() int { return len(l.order.Get()) }

func (l *List) Empty() bool { return l.empty.Get() }

// Dirty reports whether the item array differs from the baseline or any
// item's sub-form is dirty.
func (l *List) Dirty() bool { return l.dirty.Get() }

// Identities returns item identities in display order.
func (l *List) Identities() []Identity {
	return append([]Identity(nil), l.order.Get()...)
}

// IndexOf returns the current position of id, or -1 when it is not live.
func (l *List) IndexOf(id Identity) int {
	if pos, ok := l.positions.Get()[id]; ok {
		return pos
	}
	return -1
}

// Fields returns the sub-form of item id, or nil when it is not live.
func (l *List) Fields(id Identity) Node {
	if s, ok := l.slots[id]; ok && l.IndexOf(id) >= 0 {
		return s.node
	}
	return nil
}

// ItemName returns the scoped name of item id, or "" when it is not live.
func (l *List) ItemName(id Identity) string {
	if s, ok := l.slots[id]; ok && l.IndexOf(id) >= 0 {
		return s.name.Get()
	}
	return ""
}

// Item is the read model of one list entry, as a renderer needs it.
type Item struct {
	Identity Identity
	Index    int
	Name     string
	Value    any
	Fields   Node
	Dirty    bool
	Invalid  bool
	Errors   []string
}

// Items returns every live item in display order.
func (l *List) Items() []Item {
	order := l.order.Get()
	items := make([]Item, 0, len(order))
	for i, id := range order {
		s := l.slots[id]
		items = append(items, Item{
			Identity: id,
			Index:    i,
			Name:     s.name.Get(),
			Value:    layering.Clone(s.node.ValueCell().Get()),
			Fields:   s.node,
			Dirty:    s.node.DirtyCell().Get(),
			Invalid:  s.node.InvalidCell().Get(),
			Errors:   copyStrings(s.node.ErrorsCell().Get()),
		})
	}
	return items
}

// State returns the aggregated view.
func (l *List) State() State {
	s := l.state.Get()
	s.Value = layering.Clone(s.Value)
	s.Errors = copyStrings(s.Errors)
	return s
}

// Watch calls fn with the new State after every batch that changed it. Watch
// the list through the store it is currently bound to; binding the list into
// a parent form afterwards leaves earlier watchers on the old store.
func (l *List) Watch(fn func(State)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return l.store.Subscribe(l.state, func() {
		fn(l.State())
	})
}

// Bind implements Node. The list adopts the parent's store and resolves its
// base name against the parent's prefix.
func (l *List) Bind(scope Scope) {
	if scope.Store != nil {
		l.store = scope.Store
	}
	l.order.Attach(l.store)
	l.baseline.Attach(l.store)
	l.own.Attach(l.store)
	l.prefix.Attach(l.store)
	name := scope.Name
	if name == nil {
		name = rootName()
	}
	l.store.Batch(func() {
		l.prefix.Set(name)
		for _, id := range l.order.Get() {
			l.slots[id].bind(l.store)
		}
	})
}

func (l *List) ValueCell() cell.Readable[any]       { return l.valueAny }
func (l *List) DirtyCell() cell.Readable[bool]      { return l.dirty }
func (l *List) ErrorsCell() cell.Readable[[]string] { return l.errors }
func (l *List) InvalidCell() cell.Readable[bool]    { return l.invalid }

func (l *List) emit(build func(activity.ListEventInput) activity.Event, input activity.ListEventInput) {
	if !l.emitter.Enabled() {
		return
	}
	input.ActorID = l.cfg.actorID
	input.List = l.Name()
	if err := l.emitter.Emit(context.Background(), build(input)); err != nil {
		l.logger.Warn().Err(err).Str("list", input.List).Msg("activity hook failed")
	}
}

func (l *List) trace(action string, id Identity, index int) {
	l.logger.Debug().
		Str("list", l.Name()).
		Str("action", action).
		Str("identity", id.String()).
		Int("index", index).
		Int("len", l.Len()).
		Msg("list mutated")
}

func (l *List) String() string {
	return fmt.Sprintf("List(%s, %d items)", l.Name(), l.Len())
}
