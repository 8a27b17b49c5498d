package optimizer

import (
	"testing"

	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/token"
)

func num(v float64) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: token.Token{Kind: token.NUMBER, Lexeme: "n", Literal: v}}
}

func boolean(v bool) *ast.LiteralExpr {
	kind := token.KW_FALSE
	if v {
		kind = token.KW_TRUE
	}
	return &ast.LiteralExpr{Value: token.Token{Kind: kind}}
}

func variable(name string) *ast.VariableExpr {
	return &ast.VariableExpr{Name: token.Token{Kind: token.IDENT, Lexeme: name}}
}

func op(kind token.Kind) token.Token {
	return token.Token{Kind: kind}
}

func foldedNumber(t *testing.T, e ast.Expr) float64 {
	t.Helper()
	lit, ok := e.(*ast.LiteralExpr)
	if !ok {
		t.Fatalf("expected a folded literal, got %T", e)
	}
	v, ok := lit.Value.Literal.(float64)
	if !ok {
		t.Fatalf("expected a number literal, got %v", lit.Value)
	}
	return v
}

func TestFoldArithmetic(t *testing.T) {
	cases := []struct {
		op   token.Kind
		l, r float64
		want float64
	}{
		{token.PLUS, 3, 4, 7},
		{token.MINUS, 10, 4, 6},
		{token.STAR, 3, 4, 12},
		{token.SLASH, 12, 4, 3},
	}
	for _, tc := range cases {
		folded := Fold(&ast.BinaryExpr{Left: num(tc.l), Op: op(tc.op), Right: num(tc.r)})
		if got := foldedNumber(t, folded); got != tc.want {
			t.Errorf("%v %s %v: expected %v, got %v", tc.l, tc.op, tc.r, tc.want, got)
		}
	}
}

func TestDivisionByZeroDoesNotFold(t *testing.T) {
	folded := Fold(&ast.BinaryExpr{Left: num(1), Op: op(token.SLASH), Right: num(0)})
	if _, ok := folded.(*ast.BinaryExpr); !ok {
		t.Fatalf("division by zero must keep the subtree, got %T", folded)
	}
}

func TestIdentityCollapse(t *testing.T) {
	x := variable("x")
	cases := []struct {
		op token.Kind
		r  float64
	}{
		{token.PLUS, 0},
		{token.MINUS, 0},
		{token.STAR, 1},
		{token.SLASH, 1},
	}
	for _, tc := range cases {
		folded := Fold(&ast.BinaryExpr{Left: x, Op: op(tc.op), Right: num(tc.r)})
		if folded != ast.Expr(x) {
			t.Errorf("x %s %v must collapse to x, got %T", tc.op, tc.r, folded)
		}
	}
}

func TestGroupUnwrap(t *testing.T) {
	x := variable("x")
	folded := Fold(&ast.GroupExpr{Expression: x})
	if folded != ast.Expr(x) {
		t.Fatalf("group must unwrap to its inner expression, got %T", folded)
	}
}

func TestFoldBitwise(t *testing.T) {
	cases := []struct {
		op   token.Kind
		l, r float64
		want float64
	}{
		{token.AMPERSAND, 6, 3, 2},
		{token.PIPE, 6, 3, 7},
		{token.CARET, 6, 3, 5},
	}
	for _, tc := range cases {
		folded := Fold(&ast.BitwiseExpr{Left: num(tc.l), Op: op(tc.op), Right: num(tc.r)})
		if got := foldedNumber(t, folded); got != tc.want {
			t.Errorf("%v %s %v: expected %v, got %v", tc.l, tc.op, tc.r, tc.want, got)
		}
	}
}

func TestFoldShift(t *testing.T) {
	folded := Fold(&ast.ShiftExpr{Left: num(1), Op: op(token.SHL), Right: num(4)})
	if got := foldedNumber(t, folded); got != 16 {
		t.Errorf("1 << 4: expected 16, got %v", got)
	}

	folded = Fold(&ast.ShiftExpr{Left: num(16), Op: op(token.SHR), Right: num(2)})
	if got := foldedNumber(t, folded); got != 4 {
		t.Errorf("16 >> 2: expected 4, got %v", got)
	}

	// Distances outside [0, 63] yield 0, matching the evaluator.
	folded = Fold(&ast.ShiftExpr{Left: num(1), Op: op(token.SHL), Right: num(64)})
	if got := foldedNumber(t, folded); got != 0 {
		t.Errorf("1 << 64: expected 0, got %v", got)
	}
}

func TestFoldPrefix(t *testing.T) {
	folded := Fold(&ast.PrefixExpr{Op: op(token.MINUS), Right: num(5)})
	if got := foldedNumber(t, folded); got != -5 {
		t.Errorf("-5: expected -5, got %v", got)
	}

	folded = Fold(&ast.PrefixExpr{Op: op(token.TILDE), Right: num(0)})
	if got := foldedNumber(t, folded); got != -1 {
		t.Errorf("~0: expected -1, got %v", got)
	}

	folded = Fold(&ast.PrefixExpr{Op: op(token.BANG), Right: boolean(false)})
	lit, ok := folded.(*ast.LiteralExpr)
	if !ok || lit.Value.Kind != token.KW_TRUE {
		t.Errorf("!false must fold to true, got %v", folded)
	}
}

func TestShortCircuitFold(t *testing.T) {
	right := variable("sideEffect")

	folded := Fold(&ast.LogicalExpr{Left: boolean(true), Op: op(token.KW_OR), Right: right})
	lit, ok := folded.(*ast.LiteralExpr)
	if !ok || lit.Value.Kind != token.KW_TRUE {
		t.Fatalf("true or x must fold to the literal true side, got %T", folded)
	}

	folded = Fold(&ast.LogicalExpr{Left: boolean(false), Op: op(token.KW_AND), Right: right})
	lit, ok = folded.(*ast.LiteralExpr)
	if !ok || lit.Value.Kind != token.KW_FALSE {
		t.Fatalf("false and x must fold to the literal false side, got %T", folded)
	}
}

func TestNoFoldOnVariables(t *testing.T) {
	folded := Fold(&ast.BinaryExpr{Left: variable("x"), Op: op(token.PLUS), Right: variable("y")})
	if _, ok := folded.(*ast.BinaryExpr); !ok {
		t.Fatalf("variable operands must not fold, got %T", folded)
	}
}

func TestNoFoldOnCalls(t *testing.T) {
	call := &ast.CallExpr{Callee: variable("f")}
	folded := Fold(&ast.BinaryExpr{Left: call, Op: op(token.PLUS), Right: num(0)})
	// x + 0 collapses to the left side even when it is a call; the call
	// itself must survive untouched.
	if _, ok := folded.(*ast.CallExpr); !ok {
		t.Fatalf("call must survive folding, got %T", folded)
	}
}

func TestComparisonsDoNotFold(t *testing.T) {
	folded := Fold(&ast.BinaryExpr{Left: num(1), Op: op(token.LT), Right: num(2)})
	if _, ok := folded.(*ast.BinaryExpr); !ok {
		t.Fatalf("comparisons must not fold, got %T", folded)
	}
}
