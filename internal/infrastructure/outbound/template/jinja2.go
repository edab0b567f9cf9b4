package template

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/sophialabs/stubwire/internal/domain/match"
)

// Jinja2Compiler compiles body templates using Pongo2 (Django/Jinja2-style).
type Jinja2Compiler struct{}

// Compile parses the source as a Pongo2 template.
func (c *Jinja2Compiler) Compile(name, source string) (match.BodyRenderer, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jinja2 template %q: %w", name, err)
	}
	return &jinja2Renderer{tpl: tpl}, nil
}

type jinja2Renderer struct {
	tpl *pongo2.Template
}

func (r *jinja2Renderer) Render(ctx *match.RequestContext) ([]byte, error) {
	pongoCtx := pongo2.Context{
		"method":      ctx.Method,
		"path":        ctx.Path,
		"pathParams":  ctx.PathParams,
		"queryParams": ctx.QueryParams,
		"body":        ctx.BodyParams,
		"now":         ctx.Now,

		// Helper functions.
		"pathParam": func(name string) string {
			return ctx.PathParams[name]
		},
		"queryParam": func(name string) string {
			return ctx.QueryParams[name]
		},
		"uuid": newUUID,
		"randomInt": func(min, max int) int {
			return randomIntBetween(min, max)
		},
		"seq": seqInts,
		"toJSON": func(v any) string {
			return toJSONString(v)
		},
		"jsonPath": func(expression string) string {
			return extractJSONPath(ctx, expression)
		},
		"nowFormat": func(layout string) string {
			return formatNow(ctx.Now, layout)
		},
	}

	result, err := r.tpl.Execute(pongoCtx)
	if err != nil {
		return nil, fmt.Errorf("jinja2 template render failed: %w", err)
	}
	return []byte(result), nil
}
