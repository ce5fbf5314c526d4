package rule

import (
	"errors"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "length > 0", "recipients", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "length > 0" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Name != "recipients" {
		t.Fatalf("expected name metadata, got %q", evalErr.Name)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "value > 0", "ages[1]", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "value > 0" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Name != "ages[1]" {
		t.Fatalf("name should be filled, got %q", existing.Name)
	}
}

func TestWrapEvaluatorErrorPrefixes(t *testing.T) {
	err := wrapEvaluatorError("cel", errors.New("bad"))
	if err.Error() != "rule: cel evaluator: bad" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	already := errors.New("rule: something")
	if wrapEvaluatorError("cel", already) != already {
		t.Fatalf("expected prefixed error to pass through")
	}
}
