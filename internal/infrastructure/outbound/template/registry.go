package template

import (
	"fmt"

	"github.com/sophialabs/stubwire/internal/domain/match"
)

// EngineCompiler compiles a template source string into a BodyRenderer.
type EngineCompiler interface {
	Compile(name, source string) (match.BodyRenderer, error)
}

// DefaultEngine is used when a definition names no engine.
const DefaultEngine = "placeholder"

// Registry maps engine names to their compilers.
type Registry struct {
	engines map[string]EngineCompiler
}

// NewRegistry creates a registry with the built-in engines
// (placeholder, jinja2, expr).
func NewRegistry() *Registry {
	return &Registry{
		engines: map[string]EngineCompiler{
			"placeholder": &PlaceholderCompiler{},
			"jinja2":      &Jinja2Compiler{},
			"expr":        &ExprCompiler{},
		},
	}
}

// Compile resolves the engine by name and compiles the source. An empty
// engine name selects the default placeholder engine.
func (r *Registry) Compile(engine, name, source string) (match.BodyRenderer, error) {
	if engine == "" {
		engine = DefaultEngine
	}
	ec, ok := r.engines[engine]
	if !ok {
		return nil, fmt.Errorf("unknown template engine: %q (supported: placeholder, jinja2, expr)", engine)
	}
	return ec.Compile(name, source)
}
