package template_test

import (
	"strings"
	"testing"

	"github.com/sophialabs/stubwire/internal/domain/match"
	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/template"
)

func TestExprEngine_Interpolation(t *testing.T) {
	renderer, err := (&template.ExprCompiler{}).Compile("t", `{"id":"${pathParam("id")}","mode":"${queryParam("mode")}"}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := renderer.Render(&match.RequestContext{
		PathParams:  map[string]string{"id": "42"},
		QueryParams: map[string]string{"mode": "full"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"id":"42","mode":"full"}` {
		t.Errorf("unexpected render: %s", out)
	}
}

func TestExprEngine_StaticTemplate(t *testing.T) {
	source := `{"static":true}`
	renderer, err := (&template.ExprCompiler{}).Compile("t", source)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := renderer.Render(&match.RequestContext{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != source {
		t.Errorf("expected source unchanged, got %s", out)
	}
}

func TestExprEngine_UnclosedExpression(t *testing.T) {
	if _, err := (&template.ExprCompiler{}).Compile("t", `{"x":"${pathParam("id")`); err == nil {
		t.Error("expected a compile error for unclosed ${")
	}
}

func TestExprEngine_BadExpression(t *testing.T) {
	if _, err := (&template.ExprCompiler{}).Compile("t", `{"x":"${noSuchFunc()}"}`); err == nil {
		t.Error("expected a compile error for unknown function")
	}
}

func TestExprEngine_Helpers(t *testing.T) {
	renderer, err := (&template.ExprCompiler{}).Compile("t", `{"n":${randomInt(5, 5)},"body":${body()},"when":"${now()}"}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := renderer.Render(&match.RequestContext{
		BodyParams: map[string]any{"a": 1.0},
		Now:        "2026-08-24T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"n":5,"body":{"a":1},"when":"2026-08-24T10:00:00Z"}` {
		t.Errorf("unexpected render: %s", out)
	}
}

func TestExprEngine_UUIDHelper(t *testing.T) {
	renderer, err := (&template.ExprCompiler{}).Compile("t", `${uuid()}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	out, err := renderer.Render(&match.RequestContext{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != 36 || strings.Count(string(out), "-") != 4 {
		t.Errorf("expected a UUID string, got %s", out)
	}
}

func TestJinja2Engine_Variables(t *testing.T) {
	renderer, err := (&template.Jinja2Compiler{}).Compile("t", `{"id":"{{ pathParams.id }}","method":"{{ method }}"}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := renderer.Render(&match.RequestContext{
		Method:     "GET",
		PathParams: map[string]string{"id": "42"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"id":"42","method":"GET"}` {
		t.Errorf("unexpected render: %s", out)
	}
}

func TestJinja2Engine_ControlFlow(t *testing.T) {
	renderer, err := (&template.Jinja2Compiler{}).Compile("t",
		`{"items":[{% for i in seq(1, 3) %}{{ i }}{% if not forloop.Last %},{% endif %}{% endfor %}]}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := renderer.Render(&match.RequestContext{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"items":[1,2,3]}` {
		t.Errorf("unexpected render: %s", out)
	}
}

func TestJinja2Engine_BadSyntax(t *testing.T) {
	if _, err := (&template.Jinja2Compiler{}).Compile("t", `{% if %}`); err == nil {
		t.Error("expected a compile error")
	}
}

func TestJinja2Engine_JSONPathHelper(t *testing.T) {
	renderer, err := (&template.Jinja2Compiler{}).Compile("t", `{"city":"{{ jsonPath("$.address.city") }}"}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	out, err := renderer.Render(&match.RequestContext{
		BodyParams: map[string]any{
			"address": map[string]any{"city": "Lisbon"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"city":"Lisbon"}` {
		t.Errorf("unexpected render: %s", out)
	}
}
