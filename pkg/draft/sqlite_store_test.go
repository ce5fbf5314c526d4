package draft_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-formlist/pkg/draft"
)

func TestSQLiteStorePayloadHookMigratesLegacyRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "drafts.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var seenKey string
	store, err := draft.NewSQLiteStore(ctx, db, draft.WithPayloadHook(func(key string, payload map[string]any) (map[string]any, error) {
		seenKey = key
		if legacy, ok := payload["recipients"]; ok {
			return map[string]any{"version": 2, "items": legacy}, nil
		}
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO formlist_drafts (id, payload, etag, updated_at) VALUES (?, ?, ?, ?)`,
		"invite/recipients", `{"recipients":["legacy@example.com"]}`, "legacy", 0,
	)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	items, meta, ok, err := store.Load(ctx, draft.Ref{Form: "invite", List: "recipients"})
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(items) != 1 || items[0] != "legacy@example.com" {
		t.Fatalf("expected migrated items, got %#v", items)
	}
	if meta.ETag != "legacy" || seenKey != "invite/recipients" {
		t.Fatalf("unexpected meta %+v key %q", meta, seenKey)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("expected borrowed handle to stay open: %v", err)
	}
}

func TestSQLiteStoreRejectsNewerPayloads(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	store, err := draft.NewSQLiteStore(ctx, db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO formlist_drafts (id, payload, etag, updated_at) VALUES (?, ?, ?, ?)`,
		"invite/recipients", `{"version":9,"items":[]}`, "future", 0,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	_, _, _, err = store.Load(ctx, draft.Ref{Form: "invite", List: "recipients"})
	if err == nil || !strings.Contains(err.Error(), "payload version 9") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestSQLiteStoreUsesClock(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store, err := draft.OpenSQLite(ctx, filepath.Join(t.TempDir(), "drafts.db"), draft.WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ref := draft.Ref{Form: "invite", List: "recipients"}
	meta, err := store.Save(ctx, ref, nil, draft.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !meta.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected %v, got %v", fixed, meta.UpdatedAt)
	}
	items, _, ok, err := store.Load(ctx, ref)
	if err != nil || !ok || items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v ok=%v err=%v", items, ok, err)
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, ok, _ := store.Load(ctx, ref); ok {
		t.Fatalf("expected draft deleted")
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := draft.OpenSQLite(context.Background(), " "); err == nil {
		t.Fatalf("expected error")
	}
}
