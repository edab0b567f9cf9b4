package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/sophialabs/stubwire/internal/domain/match"
)

// PlaceholderCompiler is the default engine. Templates substitute request
// data through four placeholder forms: {{path.NAME}}, {{query.NAME}},
// {{body.NAME}} and the whole-body {{body}}. Whitespace around the dotted
// name inside the braces is ignored.
type PlaceholderCompiler struct{}

// Compile wraps the source in a placeholder renderer. Compilation cannot
// fail: unknown placeholders are a render-time concern (they stay verbatim).
func (c *PlaceholderCompiler) Compile(_, source string) (match.BodyRenderer, error) {
	return &placeholderRenderer{source: source}, nil
}

type placeholderRenderer struct {
	source string
}

// Render resolves each {{...}} span exactly once against the request
// context. Rendered values are never re-scanned for further placeholders,
// and placeholders that do not resolve are emitted verbatim.
func (r *placeholderRenderer) Render(ctx *match.RequestContext) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(r.source))

	rest := r.source
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])

		closeIdx := strings.Index(rest[open+2:], "}}")
		if closeIdx < 0 {
			// Unterminated span: emit the remainder untouched.
			b.WriteString(rest[open:])
			break
		}

		token := rest[open+2 : open+2+closeIdx]
		span := rest[open : open+2+closeIdx+2]
		if value, ok := resolvePlaceholder(token, ctx); ok {
			b.WriteString(value)
		} else {
			b.WriteString(span)
		}
		rest = rest[open+2+closeIdx+2:]
	}

	return []byte(b.String()), nil
}

// resolvePlaceholder resolves the trimmed token inside one {{...}} span.
// The second return reports whether the placeholder is known.
func resolvePlaceholder(token string, ctx *match.RequestContext) (string, bool) {
	name := strings.TrimSpace(token)

	if name == "body" {
		if ctx.BodyParams == nil {
			return "", false
		}
		return renderValue(ctx.BodyParams), true
	}

	namespace, key, found := strings.Cut(name, ".")
	if !found || key == "" {
		return "", false
	}

	switch namespace {
	case "path":
		v, ok := ctx.PathParams[key]
		return v, ok
	case "query":
		v, ok := ctx.QueryParams[key]
		return v, ok
	case "body":
		if v, ok := ctx.BodyParams[key]; ok {
			return renderValue(v), true
		}
		// Dotted names reach into nested body structure.
		if strings.Contains(key, ".") && ctx.BodyParams != nil {
			result, err := jsonpath.Get("$."+key, anyBody(ctx.BodyParams))
			if err == nil {
				return renderValue(result), true
			}
		}
		return "", false
	default:
		return "", false
	}
}

// renderValue turns a resolved value into replacement text: strings
// substitute as-is, everything else (numbers, bools, null, objects, arrays)
// as its canonical JSON encoding. There is no implicit numeric coercion.
func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func anyBody(m map[string]any) any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
