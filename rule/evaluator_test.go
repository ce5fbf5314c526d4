package rule

import (
	"errors"
	"strings"
	"testing"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: EngineExpr,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
		},
	},
	{
		name: EngineCEL,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
		},
	},
	{
		name: EngineJS,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		},
	},
}

func TestSharedBindingsAcrossEngines(t *testing.T) {
	cases := []struct {
		name   string
		expr   string
		ctx    Context
		expect bool
	}{
		{name: "non empty list", expr: "length > 0", ctx: Context{Value: []any{1, 2}}, expect: true},
		{name: "empty list", expr: "length > 0", ctx: Context{Value: []any{}}, expect: false},
		{name: "nil value has no length", expr: "length == 0", ctx: Context{}, expect: true},
		{name: "number bound", expr: "value >= 18", ctx: Context{Value: 21}, expect: true},
		{name: "number bound fails", expr: "value >= 18", ctx: Context{Value: 12}, expect: false},
		{name: "scoped name", expr: "name == 'recipients[0]'", ctx: Context{Name: "recipients[0]"}, expect: true},
		{name: "string length", expr: "length <= 3", ctx: Context{Value: "abcd"}, expect: false},
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not available in this build", factory.name)
			}
			for _, tc := range cases {
				tc := tc
				t.Run(tc.name, func(t *testing.T) {
					got, err := evaluator.Evaluate(tc.ctx, tc.expr)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					value, ok := got.(bool)
					if !ok {
						t.Fatalf("expected bool, got %T", got)
					}
					if value != tc.expect {
						t.Fatalf("expected %v, got %v", tc.expect, value)
					}
				})
			}
		})
	}
}

func TestCompiledProgramsAreCached(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			cache := NewMemoryCache()
			evaluator := factory.new(cache, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not available in this build", factory.name)
			}
			for i := 0; i < 3; i++ {
				if _, err := evaluator.Compile("length > 1"); err != nil {
					t.Fatalf("compile: %v", err)
				}
			}
			if cache.Len() != 1 {
				t.Fatalf("expected one cached program, got %d", cache.Len())
			}
		})
	}
}

func TestEmptyExpressionRejected(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not available in this build", factory.name)
			}
			if _, err := evaluator.Evaluate(Context{}, ""); err == nil {
				t.Fatalf("expected error for empty expression")
			}
			if _, err := evaluator.Compile(""); err == nil {
				t.Fatalf("expected compile error for empty expression")
			}
		})
	}
}

func TestExprRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry().MustRegister("isEmail", func(args ...any) (any, error) {
		s, _ := args[0].(string)
		return strings.Contains(s, "@"), nil
	})
	evaluator := NewExprEvaluator(ExprWithFunctionRegistry(registry))

	got, err := evaluator.Evaluate(Context{Value: "foo@bar.com"}, "isEmail(value)")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestCELCallBinding(t *testing.T) {
	registry := NewFunctionRegistry().MustRegister("isEmail", func(args ...any) (any, error) {
		s, _ := args[0].(string)
		return strings.Contains(s, "@"), nil
	})
	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))

	got, err := evaluator.Evaluate(Context{Value: "fizz.buzz.com"}, `call("isEmail", [value])`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != false {
		t.Fatalf("expected false, got %v", got)
	}
}

func TestFunctionRegistryRejectsDuplicates(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := func(args ...any) (any, error) { return nil, nil }
	if err := registry.Register("Upper", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("upper", fn); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected missing function error")
	}
}

func TestRuleCheckLogsAndRejectsNonBool(t *testing.T) {
	var events []EvaluatorLogEvent
	logger := EvaluatorLoggerFunc(func(event EvaluatorLogEvent) { events = append(events, event) })

	nonBool, err := Compile(NewExprEvaluator(), "length", "must be boolean", WithLogger(logger))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	passed, err := nonBool.Check(Context{Value: []any{1}, Name: "ages"})
	if passed || err == nil {
		t.Fatalf("expected non-bool result to fail, got passed=%v err=%v", passed, err)
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Name != "ages" {
		t.Fatalf("expected EvaluationError carrying the name, got %v", err)
	}

	required, err := Compile(NewExprEvaluator(), "length > 0", "Can't be empty", WithLogger(logger))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	passed, err = required.Check(Context{Value: []any{1}})
	if err != nil || !passed {
		t.Fatalf("expected rule to pass, got passed=%v err=%v", passed, err)
	}

	if len(events) != 2 {
		t.Fatalf("expected two log events, got %d", len(events))
	}
	if events[0].Err == nil || events[1].Err != nil || !events[1].Passed {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[1].Engine != EngineExpr {
		t.Fatalf("expected engine expr, got %q", events[1].Engine)
	}
}

func TestCompileRequiresMessage(t *testing.T) {
	if _, err := Compile(NewExprEvaluator(), "true", ""); err == nil {
		t.Fatalf("expected missing message error")
	}
	if _, err := Compile(nil, "true", "msg"); err == nil {
		t.Fatalf("expected missing evaluator error")
	}
}

func TestNewEvaluatorByName(t *testing.T) {
	for _, name := range []string{"", "expr", "CEL"} {
		if _, err := NewEvaluator(name, nil, nil); err != nil {
			t.Fatalf("NewEvaluator(%q): %v", name, err)
		}
	}
	if _, err := NewEvaluator("lua", nil, nil); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
	_, err := NewEvaluator("js", nil, nil)
	if JSAvailable() && err != nil {
		t.Fatalf("expected js evaluator, got %v", err)
	}
	if !JSAvailable() && !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected js to be unavailable, got %v", err)
	}
}
