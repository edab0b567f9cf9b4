package match

import "time"

// RequestContext is the per-call bundle of request data used for scenario
// condition evaluation and template rendering. It is built fresh by the
// dispatcher for each call and never shared between calls.
type RequestContext struct {
	Method string
	Path   string

	PathParams  map[string]string
	QueryParams map[string]string
	BodyParams  map[string]any

	Now string // ISO-8601 timestamp
}

// Bindings returns the three named mappings conditions evaluate over.
// Missing maps bind to empty mappings, never to an absent value.
func (c *RequestContext) Bindings() map[string]any {
	return map[string]any{
		"path":  stringMapToAny(c.PathParams),
		"query": stringMapToAny(c.QueryParams),
		"body":  nonNilBody(c.BodyParams),
	}
}

func stringMapToAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func nonNilBody(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// ConditionProgram is a compiled scenario condition. Eval never fails:
// evaluation errors are reported as false so a malformed condition skips its
// scenario instead of blocking the dispatch.
type ConditionProgram interface {
	Eval(ctx *RequestContext) bool
}

// BodyRenderer renders a compiled response template against a request.
type BodyRenderer interface {
	Render(ctx *RequestContext) ([]byte, error)
}

// CompiledEndpoint is a registry-ready endpoint definition with templates
// and conditions compiled.
type CompiledEndpoint struct {
	Identity    string
	Method      string
	PathPattern string
	Segments    []string

	Default   CompiledResponse
	Scenarios []CompiledScenario

	Headers     map[string]string
	ContentType string

	Policy *CompiledPolicy
}

// CompiledScenario pairs a compiled condition with its response override.
// A nil Condition can never be selected.
type CompiledScenario struct {
	Name      string
	Condition ConditionProgram
	Response  CompiledResponse
}

// CompiledResponse is a resolved response triple ready to serve.
type CompiledResponse struct {
	Status   int
	Delay    time.Duration
	Renderer BodyRenderer
	// RawTemplate keeps the source text for render-error diagnostics.
	RawTemplate string
}

// CompiledPolicy holds resolved per-endpoint policy configuration.
type CompiledPolicy struct {
	RateLimit *CompiledRateLimit
}

// CompiledRateLimit holds token-bucket parameters.
type CompiledRateLimit struct {
	Rate  float64
	Burst int
	Key   string
}
