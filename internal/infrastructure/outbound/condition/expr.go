package condition

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/sophialabs/stubwire/internal/domain/match"
)

// Compiler compiles scenario condition expressions into ConditionPrograms
// using the Expr language. Conditions evaluate over three bound mappings:
// path, query and body.
//
// The evaluator runs caller-supplied expressions and is a trusted-input
// feature of a local development tool. Expr is sandboxed (no I/O, no
// arbitrary code), which is why it is used instead of a scripting engine.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile compiles a condition expression. An empty or whitespace-only
// source compiles to a program that is never selected.
func (c *Compiler) Compile(source string) (match.ConditionProgram, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return Never(), nil
	}

	normalized := normalizeOperators(trimmed)
	program, err := expr.Compile(normalized,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
		expr.Function(compareFunc, func(params ...any) (any, error) {
			op, _ := params[0].(string)
			return coercedCompare(op, params[1], params[2]), nil
		}),
		expr.Patch(comparisonPatcher{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile condition %q: %w", source, err)
	}
	return &exprProgram{program: program}, nil
}

// compareFunc is the internal name of the coercing comparison; the leading
// underscores keep it out of the way of the path/query/body bindings.
const compareFunc = "__compare"

// comparisonPatcher reroutes every equality and relational operator through
// coercedCompare. Path and query parameters bind as strings, so without
// coercion a condition like query.n > 10 could never hold.
type comparisonPatcher struct{}

func (comparisonPatcher) Visit(node *ast.Node) {
	bn, ok := (*node).(*ast.BinaryNode)
	if !ok {
		return
	}
	switch bn.Operator {
	case "==", "!=", "<", "<=", ">", ">=":
	default:
		return
	}
	ast.Patch(node, &ast.CallNode{
		Callee: &ast.IdentifierNode{Value: compareFunc},
		Arguments: []ast.Node{
			&ast.StringNode{Value: bn.Operator},
			bn.Left,
			bn.Right,
		},
	})
}

// coercedCompare compares two operands the way a dynamic language would:
// when both sides look numeric they compare as numbers (so query.n > 10
// holds for n="20"), two non-numeric strings compare lexicographically, and
// anything else falls back to deep equality for ==/!= and false for the
// relational operators.
func coercedCompare(op string, a, b any) bool {
	na, aNum := toNumber(a)
	nb, bNum := toNumber(b)
	if aNum && bNum {
		switch op {
		case "==":
			return na == nb
		case "!=":
			return na != nb
		case "<":
			return na < nb
		case "<=":
			return na <= nb
		case ">":
			return na > nb
		case ">=":
			return na >= nb
		}
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		switch op {
		case "==":
			return as == bs
		case "!=":
			return as != bs
		case "<":
			return as < bs
		case "<=":
			return as <= bs
		case ">":
			return as > bs
		case ">=":
			return as >= bs
		}
	}

	switch op {
	case "==":
		return reflect.DeepEqual(a, b)
	case "!=":
		return !reflect.DeepEqual(a, b)
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

type exprProgram struct {
	program *vm.Program
}

// Eval runs the compiled condition. Any runtime failure (type mismatch,
// unknown identifier) evaluates to false so the scenario is skipped.
func (p *exprProgram) Eval(ctx *match.RequestContext) bool {
	out, err := expr.Run(p.program, ctx.Bindings())
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

type neverProgram struct{}

func (neverProgram) Eval(*match.RequestContext) bool { return false }

// Never returns a program that never selects its scenario. It stands in for
// empty and malformed conditions.
func Never() match.ConditionProgram {
	return neverProgram{}
}

// normalizeOperators rewrites the JS-style strict operators === and !== to
// == and != so authoring payloads written against a JS-like grammar compile
// unchanged. Occurrences inside string literals are left alone.
func normalizeOperators(source string) string {
	var b strings.Builder
	b.Grow(len(source))

	var inString bool
	var quote byte
	for i := 0; i < len(source); i++ {
		ch := source[i]
		if inString {
			b.WriteByte(ch)
			if ch == '\\' && i+1 < len(source) {
				i++
				b.WriteByte(source[i])
				continue
			}
			if ch == quote {
				inString = false
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			inString = true
			quote = ch
			b.WriteByte(ch)
		case '=':
			if strings.HasPrefix(source[i:], "===") {
				b.WriteString("==")
				i += 2
				continue
			}
			b.WriteByte(ch)
		case '!':
			if strings.HasPrefix(source[i:], "!==") {
				b.WriteString("!=")
				i += 2
				continue
			}
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// Evaluator is the pure evaluate(condition, context) -> bool contract over a
// Compiler, with a program cache so repeated evaluation of the same source
// compiles once. Malformed sources cache a never-matching program.
type Evaluator struct {
	compiler *Compiler
	mu       sync.RWMutex
	cache    map[string]match.ConditionProgram
}

// NewEvaluator creates an Evaluator with an empty cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		compiler: NewCompiler(),
		cache:    make(map[string]match.ConditionProgram),
	}
}

// Evaluate compiles (or fetches) the condition and runs it against ctx.
// Compile failures and runtime failures both evaluate to false.
func (e *Evaluator) Evaluate(source string, ctx *match.RequestContext) bool {
	e.mu.RLock()
	program, ok := e.cache[source]
	e.mu.RUnlock()

	if !ok {
		compiled, err := e.compiler.Compile(source)
		if err != nil {
			compiled = Never()
		}
		e.mu.Lock()
		e.cache[source] = compiled
		e.mu.Unlock()
		program = compiled
	}

	return program.Eval(ctx)
}
