// Package optimizer implements a constant-folding pass over expressions.
//
// The parser runs every expression it produces through Fold before
// attaching it to its parent, so the resolver and evaluator only ever
// see folded trees. The pass never fires on variables, calls, lookups,
// or anything else with observable side effects.
package optimizer

import (
	"strconv"

	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/token"
)

// Fold rewrites pure arithmetic/bitwise/logical subtrees of literal
// operands bottom-up and unwraps parenthesis groups. All other nodes are
// rebuilt with folded children.
func Fold(expr ast.Expr) ast.Expr {
	if expr == nil {
		return nil
	}

	switch e := expr.(type) {
	case *ast.LiteralExpr, *ast.VariableExpr, *ast.ThisExpr:
		return expr

	case *ast.GroupExpr:
		// Throw away the parentheses.
		return Fold(e.Expression)

	case *ast.BinaryExpr:
		return foldBinary(e)

	case *ast.BitwiseExpr:
		return foldBitwise(e)

	case *ast.ShiftExpr:
		return foldShift(e)

	case *ast.PrefixExpr:
		return foldPrefix(e)

	case *ast.PostfixExpr:
		return &ast.PostfixExpr{Op: e.Op, Left: Fold(e.Left)}

	case *ast.LogicalExpr:
		return foldLogical(e)

	case *ast.AssignExpr:
		return &ast.AssignExpr{Name: e.Name, Value: Fold(e.Value)}

	case *ast.CallExpr:
		args := make([]ast.Expr, len(e.Args))
		for i, arg := range e.Args {
			args[i] = Fold(arg)
		}
		return &ast.CallExpr{Callee: Fold(e.Callee), Args: args, Paren: e.Paren}

	case *ast.GetExpr:
		return &ast.GetExpr{Object: Fold(e.Object), Name: e.Name}

	case *ast.SetExpr:
		return &ast.SetExpr{Object: Fold(e.Object), Name: e.Name, Value: Fold(e.Value)}

	case *ast.IndexExpr:
		return &ast.IndexExpr{Object: Fold(e.Object), Index: Fold(e.Index), Bracket: e.Bracket}

	case *ast.IndexSetExpr:
		return &ast.IndexSetExpr{Object: Fold(e.Object), Bracket: e.Bracket, Index: Fold(e.Index), Value: Fold(e.Value)}

	case *ast.RangeExpr:
		return &ast.RangeExpr{Low: Fold(e.Low), Op: e.Op, High: Fold(e.High)}

	case *ast.ListExpr:
		elements := make([]ast.Expr, len(e.Elements))
		for i, el := range e.Elements {
			elements[i] = Fold(el)
		}
		return &ast.ListExpr{Elements: elements, Bracket: e.Bracket}

	case *ast.MapExpr:
		items := make([]ast.MapItem, len(e.Items))
		for i, item := range e.Items {
			items[i] = ast.MapItem{Key: Fold(item.Key), Value: Fold(item.Value)}
		}
		return &ast.MapExpr{Brace: e.Brace, Items: items}

	default:
		return expr
	}
}

func foldBinary(e *ast.BinaryExpr) ast.Expr {
	left := Fold(e.Left)
	right := Fold(e.Right)

	// Right-hand side identity: x+0, x-0 → x; x*1, x/1 → x.
	if rv, ok := numberLiteral(right); ok {
		switch e.Op.Kind {
		case token.PLUS, token.MINUS:
			if rv == 0 {
				return left
			}
		case token.STAR, token.SLASH:
			if rv == 1 {
				return left
			}
		}
	}

	lv, lok := numberLiteral(left)
	rv, rok := numberLiteral(right)
	if lok && rok {
		var result float64
		switch e.Op.Kind {
		case token.PLUS:
			result = lv + rv
		case token.MINUS:
			result = lv - rv
		case token.STAR:
			result = lv * rv
		case token.SLASH:
			if rv == 0 {
				// Keep the subtree so the runtime raises the MathError.
				return &ast.BinaryExpr{Left: left, Op: e.Op, Right: right}
			}
			result = lv / rv
		default:
			// Comparisons and the rest stay as they are.
			return &ast.BinaryExpr{Left: left, Op: e.Op, Right: right}
		}
		return numberExpr(result, e.Op)
	}

	return &ast.BinaryExpr{Left: left, Op: e.Op, Right: right}
}

func foldBitwise(e *ast.BitwiseExpr) ast.Expr {
	left := Fold(e.Left)
	right := Fold(e.Right)

	if lv, lok := numberLiteral(left); lok {
		if rv, rok := numberLiteral(right); rok {
			l, r := int64(lv), int64(rv)
			var result int64
			switch e.Op.Kind {
			case token.AMPERSAND:
				result = l & r
			case token.CARET:
				result = l ^ r
			case token.PIPE:
				result = l | r
			}
			return numberExpr(float64(result), e.Op)
		}
	}
	return &ast.BitwiseExpr{Left: left, Op: e.Op, Right: right}
}

func foldShift(e *ast.ShiftExpr) ast.Expr {
	left := Fold(e.Left)
	right := Fold(e.Right)

	if lv, lok := numberLiteral(left); lok {
		if rv, rok := numberLiteral(right); rok {
			l, r := int64(lv), int64(rv)
			var result float64
			if r < 0 || r >= 64 {
				// Same clamp as the evaluator: out-of-range distances yield 0.
				result = 0
			} else if e.Op.Kind == token.SHL {
				result = float64(l << r)
			} else {
				result = float64(l >> r)
			}
			return numberExpr(result, e.Op)
		}
	}
	return &ast.ShiftExpr{Left: left, Op: e.Op, Right: right}
}

func foldPrefix(e *ast.PrefixExpr) ast.Expr {
	right := Fold(e.Right)

	if lit, ok := right.(*ast.LiteralExpr); ok {
		switch e.Op.Kind {
		case token.MINUS:
			if v, ok := numberLiteral(right); ok {
				return numberExpr(-v, lit.Value)
			}
		case token.BANG:
			truthy := lit.Value.Kind != token.KW_FALSE && lit.Value.Kind != token.KW_NULL
			return boolExpr(!truthy, e.Op)
		case token.TILDE:
			if v, ok := numberLiteral(right); ok {
				return numberExpr(float64(^int64(v)), lit.Value)
			}
		}
	}
	return &ast.PrefixExpr{Op: e.Op, Right: right}
}

func foldLogical(e *ast.LogicalExpr) ast.Expr {
	left := Fold(e.Left)

	if lit, ok := left.(*ast.LiteralExpr); ok {
		truthy := lit.Value.Kind != token.KW_FALSE && lit.Value.Kind != token.KW_NULL
		if e.Op.Kind == token.KW_OR && truthy {
			return boolExpr(true, e.Op)
		}
		if e.Op.Kind == token.KW_AND && !truthy {
			return boolExpr(false, e.Op)
		}
	}

	return &ast.LogicalExpr{Left: left, Op: e.Op, Right: Fold(e.Right)}
}

// ---- literal helpers ----

// numberLiteral extracts the numeric value of a NUMBER literal node.
func numberLiteral(e ast.Expr) (float64, bool) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok || lit.Value.Kind != token.NUMBER {
		return 0, false
	}
	if v, ok := lit.Value.Literal.(float64); ok {
		return v, true
	}
	return 0, false
}

// numberExpr builds a NUMBER literal node at the position of the given token.
func numberExpr(v float64, at token.Token) ast.Expr {
	return &ast.LiteralExpr{Value: token.Token{
		Kind:    token.NUMBER,
		Lexeme:  strconv.FormatFloat(v, 'f', -1, 64),
		Literal: v,
		Pos:     at.Pos,
	}}
}

// boolExpr builds a true/false literal node at the position of the given token.
func boolExpr(v bool, at token.Token) ast.Expr {
	kind, lexeme := token.KW_FALSE, "false"
	if v {
		kind, lexeme = token.KW_TRUE, "true"
	}
	return &ast.LiteralExpr{Value: token.Token{
		Kind:   kind,
		Lexeme: lexeme,
		Pos:    at.Pos,
	}}
}
