package rule

import (
	"fmt"
	"time"
)

// Rule is a compiled boolean expression with the message reported when it
// does not hold.
type Rule struct {
	Expr    string
	Message string

	engine   string
	compiled CompiledRule
	logger   EvaluatorLogger
}

// RuleOption configures a Rule.
type RuleOption func(*Rule)

// WithLogger attaches an evaluator logger to the rule.
func WithLogger(logger EvaluatorLogger) RuleOption {
	return func(r *Rule) {
		if logger == nil {
			r.logger = noopEvaluatorLogger{}
			return
		}
		r.logger = logger
	}
}

// Compile prepares expression with evaluator. Compilation errors are returned
// immediately; rules are part of a form definition, not of user input.
func Compile(evaluator Evaluator, expression, message string, opts ...RuleOption) (*Rule, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("rule: evaluator is required")
	}
	if message == "" {
		return nil, fmt.Errorf("rule: message is required for %s", describeExpression(expression))
	}
	compiled, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	r := &Rule{
		Expr:     expression,
		Message:  message,
		engine:   EngineName(evaluator),
		compiled: compiled,
		logger:   noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Check evaluates the rule. The expression must produce a boolean; any other
// result is reported as an error alongside passed=false.
func (r *Rule) Check(ctx Context) (passed bool, err error) {
	ctx = ctx.withDefaults()
	start := time.Now()
	result, err := r.compiled.Evaluate(ctx)
	if err == nil {
		var ok bool
		if passed, ok = result.(bool); !ok {
			err = wrapEvaluationError(r.engine, r.Expr, ctx.label(), fmt.Errorf("expected bool result, got %T", result))
		}
	}
	r.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   r.engine,
		Expr:     r.Expr,
		Name:     ctx.Name,
		Duration: time.Since(start),
		Passed:   passed && err == nil,
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return passed, nil
}
