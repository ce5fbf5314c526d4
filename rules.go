package formlist

import "github.com/goliatone/go-formlist/rule"

// Rule compiles expression with evaluator into a Validator that reports
// message whenever the expression is false. Evaluation errors also report
// message; attach rule.WithLogger to see them.
func Rule(evaluator rule.Evaluator, expression, message string, opts ...rule.RuleOption) (Validator, error) {
	compiled, err := rule.Compile(evaluator, expression, message, opts...)
	if err != nil {
		return nil, err
	}
	return ruleValidator{rule: compiled}, nil
}

// MustRule is Rule that panics on compile errors.
func MustRule(evaluator rule.Evaluator, expression, message string, opts ...rule.RuleOption) Validator {
	v, err := Rule(evaluator, expression, message, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Check pairs an expression with the message reported when it is false.
type Check struct {
	Expr    string
	Message string
}

// Rules compiles checks sharing evaluator and options into one Validator.
// Messages are reported in declaration order.
func Rules(evaluator rule.Evaluator, checks []Check, opts ...rule.RuleOption) (Validator, error) {
	validators := make([]Validator, 0, len(checks))
	for _, check := range checks {
		v, err := Rule(evaluator, check.Expr, check.Message, opts...)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	}
	return Validators(validators...), nil
}

type ruleValidator struct {
	rule *rule.Rule
}

func (v ruleValidator) Validate(ctx ValidationContext) []string {
	passed, err := v.rule.Check(rule.Context{
		Value: ctx.Value,
		Name:  ctx.Name,
		Args:  map[string]any{"event": string(ctx.Event)},
	})
	if err != nil || !passed {
		return []string{v.rule.Message}
	}
	return nil
}
