package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
)

type calculatorInput struct {
	Expression string `json:"expression" jsonschema_description:"Arithmetic expression to evaluate, e.g. (3 + 4) * 2 / 7."`
}

// Calculator evaluates basic arithmetic so the model does not have to.
func Calculator() Tool {
	return Tool{
		Name:        "calculator",
		Description: "Evaluate an arithmetic expression with + - * / % and parentheses.",
		Parameters:  schemaFor[calculatorInput](),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var in calculatorInput
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
			node, err := parser.ParseExpr(in.Expression)
			if err != nil {
				return "", fmt.Errorf("parse expression: %w", err)
			}
			v, err := evalExpr(node)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		},
	}
}

func evalExpr(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		switch n.Kind {
		case token.INT, token.FLOAT:
			return strconv.ParseFloat(n.Value, 64)
		}
		return 0, fmt.Errorf("unsupported literal %s", n.Value)
	case *ast.ParenExpr:
		return evalExpr(n.X)
	case *ast.UnaryExpr:
		v, err := evalExpr(n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.SUB:
			return -v, nil
		case token.ADD:
			return v, nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)
	case *ast.BinaryExpr:
		x, err := evalExpr(n.X)
		if err != nil {
			return 0, err
		}
		y, err := evalExpr(n.Y)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return x + y, nil
		case token.SUB:
			return x - y, nil
		case token.MUL:
			return x * y, nil
		case token.QUO:
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x / y, nil
		case token.REM:
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return math.Mod(x, y), nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)
	}
	return 0, fmt.Errorf("unsupported expression %T", node)
}
