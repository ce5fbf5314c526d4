package draft_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goliatone/go-formlist/pkg/draft"
)

type storeFactory func(t *testing.T) draft.Store

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(*testing.T) draft.Store { return draft.NewMemoryStore() },
		"sqlite": func(t *testing.T) draft.Store {
			store, err := draft.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "drafts.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

var recipientsRef = draft.Ref{Form: "invite", List: "recipients", Owner: "user-1"}

func TestStoreContractRoundTrip(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			if _, _, ok, err := store.Load(ctx, recipientsRef); err != nil || ok {
				t.Fatalf("expected missing draft, got ok=%v err=%v", ok, err)
			}

			items := []any{
				map[string]any{"name": "Ada", "email": "ada@example.com"},
				"plain",
			}
			meta, err := store.Save(ctx, recipientsRef, items, draft.Meta{Extra: map[string]string{"step": "2"}})
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if meta.ETag == "" || meta.UpdatedAt.IsZero() {
				t.Fatalf("expected etag and timestamp, got %+v", meta)
			}

			loaded, loadedMeta, ok, err := store.Load(ctx, recipientsRef)
			if err != nil || !ok {
				t.Fatalf("load: ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(items, loaded) {
				t.Fatalf("expected %#v, got %#v", items, loaded)
			}
			if loadedMeta.ETag != meta.ETag || loadedMeta.Extra["step"] != "2" {
				t.Fatalf("expected stored meta, got %+v", loadedMeta)
			}
			if !loadedMeta.UpdatedAt.Equal(meta.UpdatedAt) {
				t.Fatalf("expected updated_at %v, got %v", meta.UpdatedAt, loadedMeta.UpdatedAt)
			}
		})
	}
}

func TestStoreContractETag(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			first, err := store.Save(ctx, recipientsRef, []any{"a"}, draft.Meta{})
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			second, err := store.Save(ctx, recipientsRef, []any{"a", "b"}, draft.Meta{ETag: first.ETag})
			if err != nil {
				t.Fatalf("guarded save: %v", err)
			}
			if second.ETag == first.ETag {
				t.Fatalf("expected a new etag per save")
			}

			_, err = store.Save(ctx, recipientsRef, []any{"stale"}, draft.Meta{ETag: first.ETag})
			if !errors.Is(err, draft.ErrETagMismatch) {
				t.Fatalf("expected etag mismatch, got %v", err)
			}
			loaded, _, _, err := store.Load(ctx, recipientsRef)
			if err != nil || len(loaded) != 2 {
				t.Fatalf("expected stale save rejected, got %v err=%v", loaded, err)
			}
		})
	}
}

func TestStoreContractKeysAreIsolated(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			other := recipientsRef
			other.Owner = "user-2"

			if _, err := store.Save(ctx, recipientsRef, []any{"mine"}, draft.Meta{}); err != nil {
				t.Fatalf("save: %v", err)
			}
			if _, _, ok, err := store.Load(ctx, other); err != nil || ok {
				t.Fatalf("expected other owner empty, got ok=%v err=%v", ok, err)
			}
			if _, _, _, err := store.Load(ctx, draft.Ref{List: "recipients"}); err == nil {
				t.Fatalf("expected invalid ref error")
			}
		})
	}
}

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		ref     draft.Ref
		want    string
		wantErr bool
	}{
		{ref: draft.Ref{Form: "invite", List: "recipients"}, want: "invite/recipients"},
		{ref: draft.Ref{Form: " invite ", List: "recipients", Owner: "u1"}, want: "invite/recipients/u1"},
		{ref: draft.Ref{List: "recipients"}, wantErr: true},
		{ref: draft.Ref{Form: "invite"}, wantErr: true},
	}
	for _, tc := range cases {
		got, err := tc.ref.Identifier()
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %+v", tc.ref)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("Identifier(%+v) = %q, %v; want %q", tc.ref, got, err, tc.want)
		}
	}
}
