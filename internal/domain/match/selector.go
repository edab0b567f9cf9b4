package match

// Selector picks the active response for a matched endpoint.
type Selector struct{}

// NewSelector creates a new Selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Select walks the endpoint's scenarios in stored order and returns the
// first one whose condition evaluates true, together with its name. If none
// matches, the endpoint's default response is returned with an empty name.
// Selection is a pure function of (endpoint, context): no side effects, no
// randomness, no tie-break other than order.
func (s *Selector) Select(ep *CompiledEndpoint, ctx *RequestContext) (*CompiledResponse, string) {
	for i := range ep.Scenarios {
		sc := &ep.Scenarios[i]
		if sc.Condition == nil {
			continue
		}
		if sc.Condition.Eval(ctx) {
			return &sc.Response, sc.Name
		}
	}
	return &ep.Default, ""
}
