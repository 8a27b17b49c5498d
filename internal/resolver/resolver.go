// Package resolver implements the pre-execution pass that assigns each
// variable reference a scope distance (0 = current scope, N = ancestor
// count, -1 = global) and enforces the static rules: no self-read in an
// initializer, no 'this' outside a class, no duplicate local
// declaration, no class inheriting itself.
package resolver

import (
	"fmt"

	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/token"
)

// Target receives the resolver's per-node scope-distance annotations,
// keyed by node identity. The evaluator implements this.
type Target interface {
	BindLocal(expr ast.Expr, depth int)
}

// Error is a resolution error anchored to the offending token.
type Error struct {
	Tok     token.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve error at %d:%d: %s", e.Tok.Pos.Line, e.Tok.Pos.Column, e.Message)
}

func newError(tok token.Token, format string, args ...any) *Error {
	return &Error{Tok: tok, Message: fmt.Sprintf(format, args...)}
}

type functionType int

const (
	fnNone functionType = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
)

// Resolver walks the AST with a stack of lexical scopes over a flat
// global symbol table. It survives across runs so REPL lines resolve
// against everything declared before them.
type Resolver struct {
	target Target

	scopes        []map[string]bool // false = declared, true = defined
	globalSymbols map[string]bool

	currentFunction functionType
	currentClass    classType
	loopDepth       int
}

// New creates a resolver reporting annotations to the given target.
func New(target Target) *Resolver {
	return &Resolver{
		target:        target,
		globalSymbols: make(map[string]bool),
	}
}

// Resolve annotates a list of statements. The first static error aborts
// the pass.
func (r *Resolver) Resolve(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := r.resolveStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ---- scope handling ----

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks a name "not yet ready" in the topmost scope. A second
// declaration in the same local scope is an error.
func (r *Resolver) declare(name token.Token) error {
	if len(r.scopes) == 0 {
		r.globalSymbols[name.Lexeme] = false
		return nil
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		return newError(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
	return nil
}

// define marks a name "ready".
func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		r.globalSymbols[name.Lexeme] = true
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal walks scopes innermost-out. The first scope containing
// the name yields the depth difference; a global hit yields -1; with
// neither, no annotation is recorded and the evaluator falls back to a
// global lookup at runtime.
func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.target.BindLocal(expr, len(r.scopes)-1-i)
			return
		}
	}
	if _, ok := r.globalSymbols[name.Lexeme]; ok {
		r.target.BindLocal(expr, -1)
	}
}

// ---- statements ----

func (r *Resolver) resolveStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		return r.resolveExpr(s.Expression)

	case *ast.VarStmt:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		if s.Initializer != nil {
			if err := r.resolveExpr(s.Initializer); err != nil {
				return err
			}
		}
		r.define(s.Name)
		return nil

	case *ast.FuncStmt:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name)
		return r.resolveFunction(s, fnFunction)

	case *ast.ReturnStmt:
		if s.Value != nil {
			return r.resolveExpr(s.Value)
		}
		return nil

	case *ast.IfStmt:
		if err := r.resolveExpr(s.Condition); err != nil {
			return err
		}
		if err := r.resolveStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveStmt(s.Else)
		}
		return nil

	case *ast.WhileStmt:
		if err := r.resolveExpr(s.Condition); err != nil {
			return err
		}
		r.loopDepth++
		defer func() { r.loopDepth-- }()
		return r.resolveStmt(s.Body)

	case *ast.ForStmt:
		r.loopDepth++
		defer func() { r.loopDepth-- }()
		r.beginScope()
		defer r.endScope()
		if s.Init != nil {
			if err := r.resolveStmt(s.Init); err != nil {
				return err
			}
		}
		if s.Condition != nil {
			if err := r.resolveExpr(s.Condition); err != nil {
				return err
			}
		}
		if s.Increment != nil {
			if err := r.resolveExpr(s.Increment); err != nil {
				return err
			}
		}
		return r.resolveStmt(s.Body)

	case *ast.ForeachStmt:
		if err := r.resolveExpr(s.Collection); err != nil {
			return err
		}
		r.loopDepth++
		defer func() { r.loopDepth-- }()
		r.beginScope()
		defer r.endScope()
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name)
		return r.resolveStmt(s.Body)

	case *ast.BlockStmt:
		r.beginScope()
		defer r.endScope()
		return r.Resolve(s.Statements)

	case *ast.NamespaceStmt:
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name)
		// The evaluator runs the body in a fresh namespace environment,
		// so the body gets its own scope here too.
		r.beginScope()
		defer r.endScope()
		return r.Resolve(s.Body)

	case *ast.ClassStmt:
		return r.resolveClass(s)

	case *ast.ImportStmt:
		return nil

	case *ast.AliasStmt:
		if !s.IsType {
			if err := r.resolveExpr(s.Target); err != nil {
				return err
			}
		}
		if err := r.declare(s.Name); err != nil {
			return err
		}
		r.define(s.Name)
		return nil

	case *ast.StopStmt:
		if r.loopDepth == 0 {
			return newError(s.Keyword, "Cannot use 'stop' outside of a loop.")
		}
		return nil

	case *ast.SkipStmt:
		if r.loopDepth == 0 {
			return newError(s.Keyword, "Cannot use 'skip' outside of a loop.")
		}
		return nil

	case *ast.AttemptStmt:
		r.beginScope()
		if err := r.Resolve(s.AttemptBody); err != nil {
			r.endScope()
			return err
		}
		r.endScope()

		r.beginScope()
		if s.HasFail {
			if err := r.declare(s.ErrName); err != nil {
				r.endScope()
				return err
			}
			r.define(s.ErrName)
		}
		if err := r.Resolve(s.FailBody); err != nil {
			r.endScope()
			return err
		}
		r.endScope()

		r.beginScope()
		defer r.endScope()
		return r.Resolve(s.FinallyBody)

	case *ast.PanicStmt:
		if s.Message != nil {
			return r.resolveExpr(s.Message)
		}
		return nil

	default:
		return nil
	}
}

func (r *Resolver) resolveFunction(fn *ast.FuncStmt, kind functionType) error {
	enclosing := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosing }()

	r.beginScope()
	defer r.endScope()
	for _, param := range fn.Params {
		if err := r.declare(param.Name); err != nil {
			return err
		}
		r.define(param.Name)
	}
	return r.Resolve(fn.Body)
}

func (r *Resolver) resolveClass(s *ast.ClassStmt) error {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	defer func() { r.currentClass = enclosingClass }()

	if err := r.declare(s.Name); err != nil {
		return err
	}
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Name.Lexeme == s.Superclass.Name.Lexeme {
			return newError(s.Superclass.Name, "A class cannot inherit from itself.")
		}
		if err := r.resolveExpr(s.Superclass); err != nil {
			return err
		}
	}

	// Field defaults evaluate in the surrounding environment, outside
	// the 'parent'/'this' scopes, so they resolve out here.
	for _, field := range s.Fields {
		if field.Initializer != nil {
			if err := r.resolveExpr(field.Initializer); err != nil {
				return err
			}
		}
	}

	if s.Superclass != nil {
		// 'parent' lives in a scope above 'this'.
		r.beginScope()
		defer r.endScope()
		r.scopes[len(r.scopes)-1]["parent"] = true
	}

	r.beginScope()
	defer r.endScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range s.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		if err := r.resolveFunction(method, kind); err != nil {
			return err
		}
	}
	return nil
}

// ---- expressions ----

func (r *Resolver) resolveExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return nil

	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			scope := r.scopes[len(r.scopes)-1]
			if defined, declared := scope[e.Name.Lexeme]; declared && !defined {
				return newError(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
		return nil

	case *ast.AssignExpr:
		if err := r.resolveExpr(e.Value); err != nil {
			return err
		}
		r.resolveLocal(e, e.Name)
		return nil

	case *ast.LogicalExpr:
		return r.resolvePair(e.Left, e.Right)
	case *ast.BinaryExpr:
		return r.resolvePair(e.Left, e.Right)
	case *ast.BitwiseExpr:
		return r.resolvePair(e.Left, e.Right)
	case *ast.ShiftExpr:
		return r.resolvePair(e.Left, e.Right)
	case *ast.RangeExpr:
		return r.resolvePair(e.Low, e.High)

	case *ast.PrefixExpr:
		return r.resolveExpr(e.Right)
	case *ast.PostfixExpr:
		return r.resolveExpr(e.Left)
	case *ast.GroupExpr:
		return r.resolveExpr(e.Expression)

	case *ast.CallExpr:
		if err := r.resolveExpr(e.Callee); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := r.resolveExpr(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.ListExpr:
		for _, el := range e.Elements {
			if err := r.resolveExpr(el); err != nil {
				return err
			}
		}
		return nil

	case *ast.MapExpr:
		for _, item := range e.Items {
			if err := r.resolveExpr(item.Key); err != nil {
				return err
			}
			if err := r.resolveExpr(item.Value); err != nil {
				return err
			}
		}
		return nil

	case *ast.IndexExpr:
		return r.resolvePair(e.Object, e.Index)

	case *ast.IndexSetExpr:
		if err := r.resolvePair(e.Object, e.Index); err != nil {
			return err
		}
		return r.resolveExpr(e.Value)

	case *ast.GetExpr:
		return r.resolveExpr(e.Object)

	case *ast.SetExpr:
		if err := r.resolveExpr(e.Object); err != nil {
			return err
		}
		return r.resolveExpr(e.Value)

	case *ast.ThisExpr:
		if r.currentClass == classNone {
			return newError(e.Keyword, "Cannot use 'this' outside of a class.")
		}
		r.resolveLocal(e, e.Keyword)
		return nil

	default:
		return nil
	}
}

func (r *Resolver) resolvePair(a, b ast.Expr) error {
	if err := r.resolveExpr(a); err != nil {
		return err
	}
	return r.resolveExpr(b)
}
