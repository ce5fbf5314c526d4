package formlist

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Identity is the stable key of one list item. It survives moves and is never
// reused after the item is removed. The zero Identity means "none".
type Identity struct {
	token uuid.UUID
}

// ParseIdentity restores an Identity from its String form.
func ParseIdentity(input string) (Identity, error) {
	if input == "" {
		return Identity{}, nil
	}
	token, err := uuid.Parse(input)
	if err != nil {
		return Identity{}, fmt.Errorf("formlist: parse identity: %w", err)
	}
	return Identity{token: token}, nil
}

// IsZero reports whether id is the "none" identity.
func (id Identity) IsZero() bool {
	return id.token == uuid.Nil
}

func (id Identity) String() string {
	if id.IsZero() {
		return ""
	}
	return id.token.String()
}

// identityRegistry mints identities and remembers every one it handed out, so
// a list can tell an already removed item from one it never owned.
type identityRegistry struct {
	mu     sync.Mutex
	minted map[Identity]struct{}
}

func newIdentityRegistry() *identityRegistry {
	return &identityRegistry{minted: map[Identity]struct{}{}}
}

func (r *identityRegistry) mint() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		id := Identity{token: uuid.New()}
		if _, taken := r.minted[id]; taken || id.IsZero() {
			continue
		}
		r.minted[id] = struct{}{}
		return id
	}
}

func (r *identityRegistry) owns(id Identity) bool {
	if id.IsZero() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.minted[id]
	return ok
}
