package formlist

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formlist/pkg/cell"
)

// Trigger selects which interaction re-runs a validator after a value change.
type Trigger string

const (
	TriggerChange Trigger = "change"
	TriggerBlur   Trigger = "blur"
	TriggerSubmit Trigger = "submit"
)

// ParseTrigger accepts change, blur or submit in any case.
func ParseTrigger(input string) (Trigger, error) {
	switch trigger := Trigger(strings.ToLower(strings.TrimSpace(input))); trigger {
	case TriggerChange, TriggerBlur, TriggerSubmit:
		return trigger, nil
	case "":
		return TriggerChange, nil
	default:
		return "", fmt.Errorf("formlist: unknown trigger %q", input)
	}
}

// UnmarshalText lets Trigger be loaded from environment or config files.
func (t *Trigger) UnmarshalText(text []byte) error {
	parsed, err := ParseTrigger(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Trigger) String() string {
	return string(t)
}

// ValidationContext is passed to validators.
type ValidationContext struct {
	Value any
	Name  string
	Event Trigger
}

// Validator produces zero or more human readable messages for a value.
// An empty result means the value is valid.
type Validator interface {
	Validate(ctx ValidationContext) []string
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx ValidationContext) []string

// Validate calls fn.
func (fn ValidatorFunc) Validate(ctx ValidationContext) []string {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Validators runs every validator in order and concatenates their messages.
func Validators(validators ...Validator) Validator {
	active := make([]Validator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			active = append(active, v)
		}
	}
	return ValidatorFunc(func(ctx ValidationContext) []string {
		var out []string
		for _, v := range active {
			out = append(out, v.Validate(ctx)...)
		}
		return out
	})
}

// Scope is what a parent hands to a child node: the store its cells report
// to and the name prefix the child resolves its own names against.
type Scope struct {
	Store *cell.Store
	Name  cell.Readable[string]
}

// Node is one element of a form tree: a Field, a Group or a List.
type Node interface {
	ValueCell() cell.Readable[any]
	DirtyCell() cell.Readable[bool]
	ErrorsCell() cell.Readable[[]string]
	InvalidCell() cell.Readable[bool]
	// Validate runs every validator in the subtree and returns the node's
	// errors afterwards.
	Validate() []string
	Reset()
	Bind(scope Scope)
}

// Builder constructs the sub-form for one list item from its value.
type Builder func(value any) (Node, error)

func joinName(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}

func rootName() cell.Readable[string] {
	return cell.New("")
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
