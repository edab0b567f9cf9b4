package services

import (
	"fmt"
	"time"

	"github.com/sophialabs/stubwire/internal/domain/endpoint"
	"github.com/sophialabs/stubwire/internal/domain/match"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
)

// TemplateRegistry compiles template sources into body renderers by engine name.
type TemplateRegistry interface {
	Compile(engine, name, source string) (match.BodyRenderer, error)
}

// ConditionCompiler compiles condition expressions into programs.
type ConditionCompiler interface {
	Compile(source string) (match.ConditionProgram, error)
}

// Compiler transforms endpoint definitions into registry-ready compiled
// endpoints: templates compiled once per definition, conditions compiled to
// programs, structure validated.
type Compiler struct {
	templates  TemplateRegistry
	conditions ConditionCompiler
	logger     ports.Logger

	defaultEngine string
}

// NewCompiler creates a Compiler over the given template and condition compilers.
func NewCompiler(templates TemplateRegistry, conditions ConditionCompiler, logger ports.Logger) *Compiler {
	return &Compiler{
		templates:  templates,
		conditions: conditions,
		logger:     logger,
	}
}

// SetDefaultEngine sets the engine applied to definitions that name none.
func (c *Compiler) SetDefaultEngine(engine string) {
	c.defaultEngine = engine
}

// CompileDefinition validates and compiles a definition.
//
// Template compile errors fail the whole definition: a template that cannot
// compile could never render, so rejecting it at authoring time beats a
// guaranteed render error later. Condition compile errors do NOT fail the
// definition; the scenario gets a never-matching program, mirroring the
// evaluate-error-is-false policy, so one malformed scenario cannot block the
// others or the default.
func (c *Compiler) CompileDefinition(def *endpoint.Definition) (*match.CompiledEndpoint, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint definition: %w", err)
	}

	identity := def.Identity()
	engine := def.Engine
	if engine == "" {
		engine = c.defaultEngine
	}

	defaultRenderer, err := c.templates.Compile(engine, identity, def.DefaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to compile default template for %q: %w", identity, err)
	}

	ce := &match.CompiledEndpoint{
		Identity:    identity,
		Method:      methodOf(identity),
		PathPattern: def.PathPattern,
		Segments:    match.SplitPath(def.PathPattern),
		Default: match.CompiledResponse{
			Status:      def.DefaultStatus,
			Delay:       time.Duration(def.DefaultDelayMs) * time.Millisecond,
			Renderer:    defaultRenderer,
			RawTemplate: def.DefaultTemplate,
		},
		Headers:     def.Headers,
		ContentType: def.ContentType,
	}

	for i := range def.Scenarios {
		s := &def.Scenarios[i]

		renderer, err := c.templates.Compile(engine, identity+"#"+s.Name, s.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to compile template for scenario %q of %q: %w", s.Name, identity, err)
		}

		program, err := c.conditions.Compile(s.Condition)
		if err != nil {
			c.logger.Warn("scenario condition failed to compile; scenario will never match",
				"endpoint", identity, "scenario", s.Name, "error", err)
			program = nil
		}

		ce.Scenarios = append(ce.Scenarios, match.CompiledScenario{
			Name:      s.Name,
			Condition: program,
			Response: match.CompiledResponse{
				Status:      s.Status,
				Delay:       time.Duration(s.DelayMs) * time.Millisecond,
				Renderer:    renderer,
				RawTemplate: s.Template,
			},
		})
	}

	if def.Policy != nil && def.Policy.RateLimit != nil {
		ce.Policy = &match.CompiledPolicy{
			RateLimit: &match.CompiledRateLimit{
				Rate:  def.Policy.RateLimit.Rate,
				Burst: def.Policy.RateLimit.Burst,
				Key:   def.Policy.RateLimit.Key,
			},
		}
	}

	return ce, nil
}

func methodOf(identity string) string {
	for i := 0; i < len(identity); i++ {
		if identity[i] == ':' {
			return identity[:i]
		}
	}
	return identity
}
