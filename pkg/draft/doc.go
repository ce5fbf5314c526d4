// Package draft persists the items of a form list between sessions so an
// unfinished form can be restored later.
//
// A Store loads and saves the item array of one list for one Ref. Load and
// Save move items between a Store and anything exposing Value and SetValue,
// such as a *formlist.List; Update loads, edits and saves in one step.
//
// Stores use optimistic concurrency: a save carrying a non-empty Meta.ETag
// only succeeds when it matches the stored ETag, otherwise ErrETagMismatch is
// returned. Every successful save issues a new ETag.
//
// Keys:
//
//	Ref.Identifier() renders "form/list" or "form/list/owner" and is the
//	primary key used by both MemoryStore and SQLiteStore.
package draft
