package ast

import (
	"github.com/johnryzon123/Rylang/internal/token"
)

// ExprToMap converts an expression node to a map suitable for JSON
// serialization. This produces a tagged-union structure: every node has a
// "kind" field.
func ExprToMap(e Expr) map[string]any {
	if e == nil {
		return nil
	}

	switch n := e.(type) {
	case *LiteralExpr:
		return m("LiteralExpr", "value", n.Value.Lexeme, "pos", posToMap(n.Value))
	case *VariableExpr:
		return m("VariableExpr", "name", n.Name.Lexeme, "pos", posToMap(n.Name))
	case *AssignExpr:
		return m("AssignExpr", "name", n.Name.Lexeme, "value", ExprToMap(n.Value))
	case *LogicalExpr:
		return m("LogicalExpr", "op", n.Op.Kind.String(), "left", ExprToMap(n.Left), "right", ExprToMap(n.Right))
	case *BinaryExpr:
		return m("BinaryExpr", "op", n.Op.Kind.String(), "left", ExprToMap(n.Left), "right", ExprToMap(n.Right))
	case *BitwiseExpr:
		return m("BitwiseExpr", "op", n.Op.Kind.String(), "left", ExprToMap(n.Left), "right", ExprToMap(n.Right))
	case *ShiftExpr:
		return m("ShiftExpr", "op", n.Op.Kind.String(), "left", ExprToMap(n.Left), "right", ExprToMap(n.Right))
	case *RangeExpr:
		return m("RangeExpr", "low", ExprToMap(n.Low), "high", ExprToMap(n.High))
	case *PrefixExpr:
		return m("PrefixExpr", "op", n.Op.Kind.String(), "right", ExprToMap(n.Right))
	case *PostfixExpr:
		return m("PostfixExpr", "op", n.Op.Kind.String(), "left", ExprToMap(n.Left))
	case *GroupExpr:
		return m("GroupExpr", "expression", ExprToMap(n.Expression))
	case *CallExpr:
		return m("CallExpr", "callee", ExprToMap(n.Callee), "args", exprSlice(n.Args))
	case *ListExpr:
		return m("ListExpr", "elements", exprSlice(n.Elements))
	case *MapExpr:
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			items[i] = map[string]any{
				"key":   ExprToMap(item.Key),
				"value": ExprToMap(item.Value),
			}
		}
		return m("MapExpr", "items", items)
	case *IndexExpr:
		return m("IndexExpr", "object", ExprToMap(n.Object), "index", ExprToMap(n.Index))
	case *IndexSetExpr:
		return m("IndexSetExpr", "object", ExprToMap(n.Object), "index", ExprToMap(n.Index), "value", ExprToMap(n.Value))
	case *GetExpr:
		return m("GetExpr", "object", ExprToMap(n.Object), "name", n.Name.Lexeme)
	case *SetExpr:
		return m("SetExpr", "object", ExprToMap(n.Object), "name", n.Name.Lexeme, "value", ExprToMap(n.Value))
	case *ThisExpr:
		return m("ThisExpr", "pos", posToMap(n.Keyword))
	default:
		return map[string]any{"kind": "Unknown"}
	}
}

// StmtToMap converts a statement node to a map suitable for JSON serialization.
func StmtToMap(s Stmt) map[string]any {
	if s == nil {
		return nil
	}

	switch n := s.(type) {
	case *ExpressionStmt:
		return m("ExpressionStmt", "expression", ExprToMap(n.Expression))
	case *VarStmt:
		result := m("VarStmt", "type", n.Type.Lexeme, "name", n.Name.Lexeme, "private", n.IsPrivate)
		if n.InnerType != nil {
			result["innerType"] = n.InnerType.Lexeme
		}
		if n.Initializer != nil {
			result["initializer"] = ExprToMap(n.Initializer)
		}
		return result
	case *FuncStmt:
		params := make([]any, len(n.Params))
		for i, p := range n.Params {
			pm := map[string]any{"name": p.Name.Lexeme, "type": p.Type.Lexeme}
			if p.Default != nil {
				pm["default"] = ExprToMap(p.Default)
			}
			params[i] = pm
		}
		result := m("FuncStmt", "name", n.Name.Lexeme, "params", params, "body", stmtSlice(n.Body), "private", n.IsPrivate)
		if n.ReturnType != nil {
			result["returnType"] = n.ReturnType.Lexeme
		}
		if n.ReturnTypeNS != nil {
			result["returnTypeNamespace"] = n.ReturnTypeNS.Lexeme
		}
		return result
	case *ReturnStmt:
		result := m("ReturnStmt")
		if n.Value != nil {
			result["value"] = ExprToMap(n.Value)
		}
		return result
	case *IfStmt:
		result := m("IfStmt", "condition", ExprToMap(n.Condition), "then", StmtToMap(n.Then))
		if n.Else != nil {
			result["else"] = StmtToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", "condition", ExprToMap(n.Condition), "body", StmtToMap(n.Body))
	case *ForStmt:
		result := m("ForStmt", "body", StmtToMap(n.Body))
		if n.Init != nil {
			result["init"] = StmtToMap(n.Init)
		}
		if n.Condition != nil {
			result["condition"] = ExprToMap(n.Condition)
		}
		if n.Increment != nil {
			result["increment"] = ExprToMap(n.Increment)
		}
		return result
	case *ForeachStmt:
		result := m("ForeachStmt", "name", n.Name.Lexeme, "collection", ExprToMap(n.Collection), "body", StmtToMap(n.Body))
		if n.DataType != nil {
			result["dataType"] = n.DataType.Lexeme
		}
		return result
	case *BlockStmt:
		return m("BlockStmt", "statements", stmtSlice(n.Statements))
	case *NamespaceStmt:
		return m("NamespaceStmt", "name", n.Name.Lexeme, "body", stmtSlice(n.Body))
	case *ClassStmt:
		result := m("ClassStmt", "name", n.Name.Lexeme)
		if n.Superclass != nil {
			result["superclass"] = n.Superclass.Name.Lexeme
		}
		if len(n.Fields) > 0 {
			fields := make([]any, len(n.Fields))
			for i, f := range n.Fields {
				fields[i] = StmtToMap(f)
			}
			result["fields"] = fields
		}
		if len(n.Methods) > 0 {
			methods := make([]any, len(n.Methods))
			for i, md := range n.Methods {
				methods[i] = StmtToMap(md)
			}
			result["methods"] = methods
		}
		return result
	case *ImportStmt:
		return m("ImportStmt", "module", n.Module.Lexeme)
	case *AliasStmt:
		return m("AliasStmt", "target", ExprToMap(n.Target), "name", n.Name.Lexeme, "isType", n.IsType)
	case *StopStmt:
		return m("StopStmt")
	case *SkipStmt:
		return m("SkipStmt")
	case *AttemptStmt:
		result := m("AttemptStmt", "attemptBody", stmtSlice(n.AttemptBody))
		if n.HasFail {
			result["errName"] = n.ErrName.Lexeme
			if n.ErrType.Lexeme != "" {
				result["errType"] = n.ErrType.Lexeme
			}
			result["failBody"] = stmtSlice(n.FailBody)
		}
		if n.FinallyBody != nil {
			result["finallyBody"] = stmtSlice(n.FinallyBody)
		}
		return result
	case *PanicStmt:
		result := m("PanicStmt")
		if n.Message != nil {
			result["message"] = ExprToMap(n.Message)
		}
		return result
	default:
		return map[string]any{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind and extra key-value pairs.
func m(kind string, kvs ...any) map[string]any {
	result := map[string]any{"kind": kind}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func posToMap(t token.Token) map[string]any {
	return map[string]any{"line": t.Pos.Line, "column": t.Pos.Column}
}

func exprSlice(exprs []Expr) []any {
	result := make([]any, len(exprs))
	for i, e := range exprs {
		result[i] = ExprToMap(e)
	}
	return result
}

func stmtSlice(stmts []Stmt) []any {
	result := make([]any, len(stmts))
	for i, s := range stmts {
		result[i] = StmtToMap(s)
	}
	return result
}
