package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrETagMismatch = errors.New("draft: etag mismatch")

// Ref identifies the draft of one list in one form, optionally per owner.
type Ref struct {
	Form  string
	List  string
	Owner string
}

// Identifier renders the storage key of r.
func (r Ref) Identifier() (string, error) {
	form := strings.TrimSpace(r.Form)
	list := strings.TrimSpace(r.List)
	if form == "" {
		return "", fmt.Errorf("draft: form is required")
	}
	if list == "" {
		return "", fmt.Errorf("draft: list is required for form %q", form)
	}
	if owner := strings.TrimSpace(r.Owner); owner != "" {
		return fmt.Sprintf("%s/%s/%s", form, list, owner), nil
	}
	return fmt.Sprintf("%s/%s", form, list), nil
}

// Meta is storage owned metadata used for concurrency control and audit.
type Meta struct {
	ETag      string            `json:"etag,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Store loads and saves the items of one list draft.
type Store interface {
	Load(ctx context.Context, ref Ref) (items []any, meta Meta, ok bool, err error)
	// Save replaces the draft. A non-empty meta.ETag must match the stored
	// ETag. The returned Meta carries the new ETag.
	Save(ctx context.Context, ref Ref, items []any, meta Meta) (Meta, error)
}

func newETag() string {
	return uuid.NewString()
}

func checkETag(expected, stored string) error {
	if expected != "" && expected != stored {
		return fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected, stored)
	}
	return nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
