package activity

import (
	"strings"
	"time"
)

// Verbs emitted by list mutations.
const (
	VerbItemAdded      = "formlist.item.added"
	VerbItemRemoved    = "formlist.item.removed"
	VerbItemMoved      = "formlist.item.moved"
	VerbItemDuplicated = "formlist.item.duplicated"
	VerbHydrated       = "formlist.hydrated"
	VerbReset          = "formlist.reset"
)

// Object types carried by list events.
const (
	ObjectTypeItem = "formlist.item"
	ObjectTypeList = "formlist"
)

// ListEventInput describes the common fields for list mutation events.
// Position fields are only recorded by the builders that use them.
type ListEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	List       string
	ItemID     string
	SourceID   string
	Index      int
	From       int
	To         int
	Count      int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildItemAddedEvent records an item inserted at input.Index.
func BuildItemAddedEvent(input ListEventInput) Event {
	event := buildListEvent(VerbItemAdded, ObjectTypeItem, input)
	event.Metadata["index"] = input.Index
	return event
}

// BuildItemRemovedEvent records an item removed from input.Index.
func BuildItemRemovedEvent(input ListEventInput) Event {
	event := buildListEvent(VerbItemRemoved, ObjectTypeItem, input)
	event.Metadata["index"] = input.Index
	return event
}

// BuildItemMovedEvent records an item moving from input.From to input.To.
func BuildItemMovedEvent(input ListEventInput) Event {
	event := buildListEvent(VerbItemMoved, ObjectTypeItem, input)
	event.Metadata["from"] = input.From
	event.Metadata["to"] = input.To
	return event
}

// BuildItemDuplicatedEvent records a copy of input.SourceID inserted at input.Index.
func BuildItemDuplicatedEvent(input ListEventInput) Event {
	event := buildListEvent(VerbItemDuplicated, ObjectTypeItem, input)
	event.Metadata["index"] = input.Index
	if source := strings.TrimSpace(input.SourceID); source != "" {
		event.Metadata["source_id"] = source
	}
	return event
}

// BuildHydratedEvent records a list replaced by input.Count items.
func BuildHydratedEvent(input ListEventInput) Event {
	event := buildListEvent(VerbHydrated, ObjectTypeList, input)
	event.Metadata["count"] = input.Count
	return event
}

// BuildResetEvent records a list restored to its baseline of input.Count items.
func BuildResetEvent(input ListEventInput) Event {
	event := buildListEvent(VerbReset, ObjectTypeList, input)
	event.Metadata["count"] = input.Count
	return event
}

func buildListEvent(verb, objectType string, input ListEventInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	list := strings.TrimSpace(input.List)
	if list != "" {
		metadata["list"] = list
	}

	objectID := ""
	if objectType == ObjectTypeItem {
		objectID = strings.TrimSpace(input.ItemID)
	}
	if objectID == "" {
		objectID = list
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		List:       list,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
