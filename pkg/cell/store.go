package cell

import (
	"sort"
	"sync"
)

// maxFlushRounds bounds subscriber write-back loops.
const maxFlushRounds = 64

// Store batches writes and notifies subscribers once the outermost batch has
// completed. A nil *Store is valid and simply never notifies.
type Store struct {
	mu       sync.Mutex
	depth    int
	pending  bool
	flushing bool
	nextID   uint64
	subs     map[uint64]*subscription
}

type subscription struct {
	id     uint64
	src    Source
	seen   uint64
	fn     func()
	active bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{subs: map[uint64]*subscription{}}
}

// Batch runs fn as one logical write. Subscribers are notified after the
// outermost Batch returns. If fn panics the notification is skipped.
func (s *Store) Batch(fn func()) {
	if fn == nil {
		return
	}
	if s == nil {
		fn()
		return
	}
	s.mu.Lock()
	s.depth++
	s.mu.Unlock()
	func() {
		defer func() {
			s.mu.Lock()
			s.depth--
			s.mu.Unlock()
		}()
		fn()
	}()
	s.flush()
}

// Subscribe calls fn after every flush in which src changed version. The
// returned function removes the subscription.
func (s *Store) Subscribe(src Source, fn func()) (unsubscribe func()) {
	if s == nil || src == nil || fn == nil {
		return func() {}
	}
	seen := src.Version()
	s.mu.Lock()
	s.nextID++
	sub := &subscription{id: s.nextID, src: src, seen: seen, fn: fn, active: true}
	if s.subs == nil {
		s.subs = map[uint64]*subscription{}
	}
	s.subs[sub.id] = sub
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			sub.active = false
			delete(s.subs, sub.id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) changed() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
	s.flush()
}

func (s *Store) flush() {
	s.mu.Lock()
	if s.flushing || s.depth > 0 || !s.pending {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
	}()

	for round := 0; round < maxFlushRounds; round++ {
		s.mu.Lock()
		if !s.pending {
			s.mu.Unlock()
			return
		}
		s.pending = false
		subs := make([]*subscription, 0, len(s.subs))
		for _, sub := range s.subs {
			subs = append(subs, sub)
		}
		s.mu.Unlock()

		sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
		for _, sub := range subs {
			if !sub.active {
				continue
			}
			version := sub.src.Version()
			if version == sub.seen {
				continue
			}
			sub.seen = version
			sub.fn()
		}
	}
}
