package endpoint

import (
	"errors"
	"strings"
)

// ErrNotFound indicates an endpoint definition was not found in the registry.
var ErrNotFound = errors.New("endpoint not found")

// MethodAny is the wildcard method: the definition matches any HTTP method.
const MethodAny = "*"

// Definition is a registered mock endpoint: a path pattern plus a default
// response and an ordered list of conditional scenarios.
type Definition struct {
	// PathPattern is a slash-separated pattern; a segment starting with ':'
	// captures the corresponding request segment under that name.
	PathPattern string
	// Method is GET/POST/PUT/DELETE/PATCH or MethodAny.
	Method string

	DefaultStatus   int
	DefaultDelayMs  int
	DefaultTemplate string

	// Scenarios are evaluated in order; the first whose condition holds wins.
	Scenarios []Scenario

	// Engine names the template engine for all templates of this definition.
	// Empty means the default placeholder engine.
	Engine string

	Headers     map[string]string
	ContentType string

	Policy *Policy
}

// Scenario is a conditional override of the endpoint's default response.
type Scenario struct {
	Name string
	// Condition is a boolean expression over path, query and body bindings.
	// Empty or whitespace-only conditions can never be selected.
	Condition string

	Status   int
	DelayMs  int
	Template string
}

// Policy holds optional per-endpoint behavior beyond the response itself.
type Policy struct {
	RateLimit *RateLimit
}

// RateLimit configures token-bucket rate limiting for a definition.
type RateLimit struct {
	Rate  float64
	Burst int
	Key   string
}

// Identity derives the registry key for a definition. Two definitions with
// the same method and path pattern are the same registry entry.
func (d *Definition) Identity() string {
	return Identity(d.Method, d.PathPattern)
}

// Identity builds the METHOD:pattern registry key.
func Identity(method, pathPattern string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" {
		m = MethodAny
	}
	return m + ":" + pathPattern
}

// Validate reports the first structural problem with a definition.
func (d *Definition) Validate() error {
	if d.PathPattern == "" {
		return errors.New("endpoint path pattern is required")
	}
	if !strings.HasPrefix(d.PathPattern, "/") {
		return errors.New("endpoint path pattern must start with '/'")
	}
	switch strings.ToUpper(strings.TrimSpace(d.Method)) {
	case "GET", "POST", "PUT", "DELETE", "PATCH", MethodAny:
	default:
		return errors.New("unsupported method: " + d.Method)
	}
	if d.DefaultStatus < 100 || d.DefaultStatus > 599 {
		return errors.New("default status code out of range")
	}
	if d.DefaultDelayMs < 0 {
		return errors.New("default delay must be >= 0")
	}
	for i := range d.Scenarios {
		s := &d.Scenarios[i]
		if s.Status < 100 || s.Status > 599 {
			return errors.New("scenario status code out of range: " + s.Name)
		}
		if s.DelayMs < 0 {
			return errors.New("scenario delay must be >= 0: " + s.Name)
		}
	}
	if d.Policy != nil && d.Policy.RateLimit != nil {
		if d.Policy.RateLimit.Rate <= 0 || d.Policy.RateLimit.Burst <= 0 {
			return errors.New("rate limit requires positive rate and burst")
		}
	}
	return nil
}
