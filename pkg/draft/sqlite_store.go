package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-formlist/internal/hydrate"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS formlist_drafts (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	etag       TEXT NOT NULL,
	extra      TEXT,
	updated_at INTEGER NOT NULL
)`

// payloadVersion is written with every draft; PayloadHooks can migrate older
// layouts before they are decoded.
const payloadVersion = 2

type storedPayload struct {
	Version int   `json:"version"`
	Items   []any `json:"items"`
}

// PayloadHook rewrites a stored payload before it is decoded.
type PayloadHook func(ref string, payload map[string]any) (map[string]any, error)

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithPayloadHook registers a hook run on every loaded payload.
func WithPayloadHook(hook PayloadHook) SQLiteOption {
	return func(s *SQLiteStore) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// SQLiteStore persists drafts in a SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	owned   bool
	hooks   []PayloadHook
	now     func() time.Time
	decoder *hydrate.Decoder[storedPayload]
}

// OpenSQLite opens (or creates) the database at path and prepares the schema.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("draft: sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("draft: open sqlite db: %w", err)
	}
	store, err := NewSQLiteStore(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// NewSQLiteStore uses an existing handle. Close leaves such a handle open.
func NewSQLiteStore(ctx context.Context, db *sql.DB, opts ...SQLiteOption) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("draft: sqlite db is required")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("draft: ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("draft: create schema: %w", err)
	}
	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	decoderOpts := make([]hydrate.DecoderOption[storedPayload], 0, len(s.hooks)+1)
	for _, hook := range s.hooks {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[storedPayload](adaptHook(hook)))
	}
	decoderOpts = append(decoderOpts, hydrate.WithPostHook[storedPayload](checkPayloadVersion))
	s.decoder = hydrate.NewDecoder(decoderOpts...)
	return s, nil
}

// Close closes the database when the store opened it.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, ref Ref) ([]any, Meta, bool, error) {
	key, err := ref.Identifier()
	if err != nil {
		return nil, Meta{}, false, err
	}
	var (
		raw       string
		etag      string
		extra     sql.NullString
		updatedAt int64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT payload, etag, extra, updated_at FROM formlist_drafts WHERE id = ?`, key,
	).Scan(&raw, &etag, &extra, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Meta{}, false, nil
	}
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("draft: query %q: %w", key, err)
	}

	decoded, err := s.decoder.DecodeJSON(hydrate.Context{Key: key, Source: "sqlite"}, []byte(raw))
	if err != nil {
		return nil, Meta{}, false, err
	}
	meta := Meta{ETag: etag, UpdatedAt: fromMillis(updatedAt)}
	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &meta.Extra); err != nil {
			return nil, Meta{}, false, fmt.Errorf("draft: decode extra for %q: %w", key, err)
		}
	}
	items := decoded.Items
	if items == nil {
		items = []any{}
	}
	return items, meta, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, ref Ref, items []any, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	if items == nil {
		items = []any{}
	}
	raw, err := json.Marshal(storedPayload{Version: payloadVersion, Items: items})
	if err != nil {
		return Meta{}, fmt.Errorf("draft: encode %q: %w", key, err)
	}
	var extra sql.NullString
	if len(meta.Extra) > 0 {
		encoded, err := json.Marshal(meta.Extra)
		if err != nil {
			return Meta{}, fmt.Errorf("draft: encode extra for %q: %w", key, err)
		}
		extra = sql.NullString{String: string(encoded), Valid: true}
	}

	saved := cloneMeta(meta)
	saved.ETag = newETag()
	saved.UpdatedAt = time.UnixMilli(toMillis(s.now())).UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Meta{}, fmt.Errorf("draft: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var stored string
	err = tx.QueryRowContext(ctx, `SELECT etag FROM formlist_drafts WHERE id = ?`, key).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Meta{}, fmt.Errorf("draft: query etag %q: %w", key, err)
	}
	if err := checkETag(meta.ETag, stored); err != nil {
		return Meta{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO formlist_drafts (id, payload, etag, extra, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   payload = excluded.payload,
		   etag = excluded.etag,
		   extra = excluded.extra,
		   updated_at = excluded.updated_at`,
		key, string(raw), saved.ETag, extra, toMillis(saved.UpdatedAt),
	)
	if err != nil {
		return Meta{}, fmt.Errorf("draft: upsert %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return Meta{}, fmt.Errorf("draft: commit %q: %w", key, err)
	}
	return saved, nil
}

// Delete removes a draft.
func (s *SQLiteStore) Delete(ctx context.Context, ref Ref) error {
	key, err := ref.Identifier()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM formlist_drafts WHERE id = ?`, key); err != nil {
		return fmt.Errorf("draft: delete %q: %w", key, err)
	}
	return nil
}

func adaptHook(hook PayloadHook) hydrate.PreHook {
	return func(ctx hydrate.Context, payload map[string]any) (map[string]any, error) {
		return hook(ctx.Key, payload)
	}
}

func checkPayloadVersion(ctx hydrate.Context, p *storedPayload) error {
	if p.Version > payloadVersion {
		return fmt.Errorf("draft: %q uses payload version %d, newest known is %d", ctx.Key, p.Version, payloadVersion)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
