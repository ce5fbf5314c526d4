//go:build !js_eval

package rule

// NewJSEvaluator is unavailable without the js_eval build tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = collectJSOptions(opts)
	return nil
}

// JSAvailable reports whether the binary was built with goja support.
func JSAvailable() bool {
	return false
}
