package tools

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/dagflowio/dagflow/llm"
)

// EvaluateSpec is the llm.ToolSpec for EvaluateTool, reproducing the
// original's spec_evaluate_expression.
var EvaluateSpec = llm.ToolSpec{
	Name:        "evaluate_expression",
	Description: "Evaluate a numeric arithmetic expression and return its result.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{"type": "string", "description": "e.g. \"(2 + 3) * 4\""},
		},
		"required": []string{"expression"},
	},
}

// EvaluateTool evaluates a numeric arithmetic expression using Go's
// expression grammar (+ - * / and parentheses over float64 literals) via
// go/parser, rather than a hand-rolled recursive-descent parser.
type EvaluateTool struct{}

// Name returns "evaluate_expression".
func (EvaluateTool) Name() string { return EvaluateSpec.Name }

// Call parses and evaluates input["expression"].
func (EvaluateTool) Call(_ context.Context, input map[string]any) (map[string]any, error) {
	expr, _ := input["expression"].(string)
	if expr == "" {
		return nil, fmt.Errorf("tools: evaluate_expression requires an expression")
	}
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("tools: invalid expression: %w", err)
	}
	result, err := evalNode(node)
	if err != nil {
		return nil, err
	}
	return map[string]any{"expression": expr, "result": result}, nil
}

func evalNode(n ast.Expr) (float64, error) {
	switch e := n.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return 0, fmt.Errorf("tools: unsupported literal %q", e.Value)
		}
		var v float64
		if _, err := fmt.Sscanf(e.Value, "%g", &v); err != nil {
			return 0, fmt.Errorf("tools: cannot parse number %q: %w", e.Value, err)
		}
		return v, nil
	case *ast.ParenExpr:
		return evalNode(e.X)
	case *ast.UnaryExpr:
		x, err := evalNode(e.X)
		if err != nil {
			return 0, err
		}
		if e.Op == token.SUB {
			return -x, nil
		}
		return x, nil
	case *ast.BinaryExpr:
		x, err := evalNode(e.X)
		if err != nil {
			return 0, err
		}
		y, err := evalNode(e.Y)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case token.ADD:
			return x + y, nil
		case token.SUB:
			return x - y, nil
		case token.MUL:
			return x * y, nil
		case token.QUO:
			if y == 0 {
				return 0, fmt.Errorf("tools: division by zero")
			}
			return x / y, nil
		default:
			return 0, fmt.Errorf("tools: unsupported operator %s", e.Op)
		}
	default:
		return 0, fmt.Errorf("tools: unsupported expression node %T", n)
	}
}
