// Package rule evaluates validation expressions against form values using
// expr-lang, CEL or (with the js_eval build tag) goja.
//
// Every engine sees the same bindings:
//
//	value   the value under validation (a field value or a list's item array)
//	name    the resolved scoped name, e.g. "recipients[2]"
//	length  len(value) for strings, slices, arrays and maps, otherwise 0
//	now     evaluation timestamp
//	args    caller supplied arguments
//
// Functions registered in a FunctionRegistry are exposed by name and through
// call(name, ...).
package rule

import (
	"reflect"
	"time"
)

// Context carries the inputs of one evaluation.
type Context struct {
	Value any
	Name  string
	Now   *time.Time
	Args  map[string]any
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx Context) label() string {
	if ctx.Name != "" {
		return ctx.Name
	}
	return "unnamed"
}

func (ctx Context) binding() map[string]any {
	ctx = ctx.withDefaults()
	return map[string]any{
		"value":  ctx.Value,
		"name":   ctx.Name,
		"length": lengthOf(ctx.Value),
		"now":    *ctx.Now,
		"args":   ctx.Args,
	}
}

func lengthOf(value any) int {
	if value == nil {
		return 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	default:
		return 0
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

type namedEngine interface {
	engine() string
}

// EngineName reports the engine behind e: "expr", "cel", "js" or "custom".
func EngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(namedEngine); ok {
		return named.engine()
	}
	return "custom"
}
