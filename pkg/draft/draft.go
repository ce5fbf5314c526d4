package draft

import (
	"context"
	"fmt"
)

// Target is the part of a list drafts read from and write to.
type Target interface {
	Value() []any
	SetValue(items []any) error
}

// Load restores the draft for ref into target. When no draft exists target is
// left untouched and ok is false.
func Load(ctx context.Context, store Store, ref Ref, target Target) (meta Meta, ok bool, err error) {
	if store == nil {
		return Meta{}, false, fmt.Errorf("draft: store is required")
	}
	if target == nil {
		return Meta{}, false, fmt.Errorf("draft: target is required")
	}
	items, meta, ok, err := store.Load(ctx, ref)
	if err != nil {
		return Meta{}, false, fmt.Errorf("draft: load %s: %w", describe(ref), err)
	}
	if !ok {
		return Meta{}, false, nil
	}
	if err := target.SetValue(items); err != nil {
		return meta, false, fmt.Errorf("draft: restore %s: %w", describe(ref), err)
	}
	return meta, true, nil
}

// Save writes target's current items. Pass the Meta returned by the previous
// Load or Save to guard against concurrent edits.
func Save(ctx context.Context, store Store, ref Ref, target Target, meta Meta) (Meta, error) {
	if store == nil {
		return Meta{}, fmt.Errorf("draft: store is required")
	}
	if target == nil {
		return Meta{}, fmt.Errorf("draft: target is required")
	}
	saved, err := store.Save(ctx, ref, target.Value(), meta)
	if err != nil {
		return Meta{}, fmt.Errorf("draft: save %s: %w", describe(ref), err)
	}
	return saved, nil
}

// Mutator edits a loaded item array.
type Mutator func(items []any) ([]any, error)

// Update loads the stored items, applies fn and saves the result guarded by
// the loaded ETag. A non-empty expected ETag must match the stored one.
func Update(ctx context.Context, store Store, ref Ref, expected Meta, fn Mutator) ([]any, Meta, error) {
	if store == nil {
		return nil, Meta{}, fmt.Errorf("draft: store is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("draft: mutator is required")
	}
	items, loaded, ok, err := store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("draft: load %s: %w", describe(ref), err)
	}
	if !ok {
		items = []any{}
		loaded = Meta{}
	}
	if err := checkETag(expected.ETag, loaded.ETag); err != nil {
		return nil, loaded, err
	}

	next, err := fn(items)
	if err != nil {
		return nil, loaded, err
	}

	meta := loaded
	if expected.Extra != nil {
		meta.Extra = expected.Extra
	}
	saved, err := store.Save(ctx, ref, next, meta)
	if err != nil {
		return nil, loaded, fmt.Errorf("draft: save %s: %w", describe(ref), err)
	}
	return next, saved, nil
}

func describe(ref Ref) string {
	if key, err := ref.Identifier(); err == nil {
		return fmt.Sprintf("%q", key)
	}
	return fmt.Sprintf("%+v", ref)
}
