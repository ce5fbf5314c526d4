package draft

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-formlist/layering"
)

// MemoryStore keeps drafts in process. It is meant for tests and examples.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	items []any
	meta  Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memoryRecord{}, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) ([]any, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return layering.Clone(record.items), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, items []any, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkETag(meta.ETag, s.records[key].meta.ETag); err != nil {
		return Meta{}, err
	}
	saved := cloneMeta(meta)
	saved.ETag = newETag()
	saved.UpdatedAt = s.now().UTC()
	if items == nil {
		items = []any{}
	}
	s.records[key] = memoryRecord{items: layering.Clone(items), meta: saved}
	return cloneMeta(saved), nil
}

// Delete removes a draft, typically after the form was submitted.
func (s *MemoryStore) Delete(_ context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}
