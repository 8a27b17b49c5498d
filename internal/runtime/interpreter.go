package runtime

import (
	"bufio"
	"io"
	"os"

	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/parser"
	"github.com/johnryzon123/Rylang/internal/token"
)

// Interpreter walks the AST and executes it against an environment
// chain. It retains the resolver's scope-distance annotations keyed by
// expression identity.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[ast.Expr]int

	// Aliases is the user type-alias set shared with the parser, so an
	// alias declared on one line is recognised as a declaration prefix
	// on the next.
	Aliases parser.AliasSet

	loadedModules map[string]bool
	searchPaths   []string

	stdout      io.Writer
	stderr      io.Writer
	stdin       io.Reader
	stdinReader *bufio.Reader
}

// New creates an interpreter with the built-in callables registered in
// its global environment. Output from 'out' goes to stdout.
func New(stdout io.Writer) *Interpreter {
	i := &Interpreter{
		globals:       NewEnvironment(nil),
		locals:        make(map[ast.Expr]int),
		Aliases:       parser.NewAliasSet(),
		loadedModules: make(map[string]bool),
		searchPaths:   DefaultSearchPaths(),
		stdout:        stdout,
		stderr:        os.Stderr,
		stdin:         os.Stdin,
	}
	i.env = i.globals
	registerBuiltins(i)
	return i
}

// Globals returns the global environment.
func (i *Interpreter) Globals() *Environment { return i.globals }

// SetStdin overrides the reader used by the 'input' builtin.
func (i *Interpreter) SetStdin(r io.Reader) {
	i.stdin = r
	i.stdinReader = nil
}

// SetStderr overrides the writer used for module-load warnings.
func (i *Interpreter) SetStderr(w io.Writer) { i.stderr = w }

// Stderr returns the writer used for module- and library-load warnings.
func (i *Interpreter) Stderr() io.Writer { return i.stderr }

// SetSearchPaths replaces the module search path list.
func (i *Interpreter) SetSearchPaths(paths []string) { i.searchPaths = paths }

// AddSearchPaths appends extra module search paths.
func (i *Interpreter) AddSearchPaths(paths ...string) {
	i.searchPaths = append(i.searchPaths, paths...)
}

// BindLocal records the scope distance for a variable reference. The
// resolver calls this for every annotated node; -1 means global.
func (i *Interpreter) BindLocal(expr ast.Expr, depth int) {
	i.locals[expr] = depth
}

// DefineNative registers a built-in callable under a name in the global
// environment. External loaders attach additional natives through this.
func (i *Interpreter) DefineNative(name string, callable Callable) {
	i.globals.DefineValue(name, callable)
}

// Reset clears transient state: user-registered type aliases. Globals
// and loaded modules survive.
func (i *Interpreter) Reset() {
	i.Aliases.Clear()
	i.globals.typeAliases = make(map[string]string)
}

// Interpret executes a list of top-level statements.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}
		result, err := i.execute(stmt)
		if err != nil {
			return err
		}
		if result.signal == sigReturn {
			return newError(token.Token{}, "", "Cannot return from top-level code.")
		}
	}
	return nil
}

// execute dispatches a single statement.
func (i *Interpreter) execute(stmt ast.Stmt) (execResult, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := i.evaluate(s.Expression)
		return resultNone, err
	case *ast.VarStmt:
		return i.execVar(s)
	case *ast.FuncStmt:
		return i.execFunc(s)
	case *ast.ReturnStmt:
		return i.execReturn(s)
	case *ast.IfStmt:
		return i.execIf(s)
	case *ast.WhileStmt:
		return i.execWhile(s)
	case *ast.ForStmt:
		return i.execFor(s)
	case *ast.ForeachStmt:
		return i.execForeach(s)
	case *ast.BlockStmt:
		return i.executeBlock(s.Statements, NewEnvironment(i.env))
	case *ast.NamespaceStmt:
		return i.execNamespace(s)
	case *ast.ClassStmt:
		return i.execClass(s)
	case *ast.ImportStmt:
		return i.execImport(s)
	case *ast.AliasStmt:
		return i.execAlias(s)
	case *ast.StopStmt:
		return execResult{signal: sigStop}, nil
	case *ast.SkipStmt:
		return execResult{signal: sigSkip}, nil
	case *ast.AttemptStmt:
		return i.execAttempt(s)
	case *ast.PanicStmt:
		return i.execPanic(s)
	default:
		return resultNone, newError(token.Token{}, "", "Unhandled statement type.")
	}
}

// executeBlock runs statements in the given environment, restoring the
// previous environment on every exit path.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (execResult, error) {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, stmt := range stmts {
		result, err := i.execute(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.signal != sigNone {
			return result, nil
		}
	}
	return resultNone, nil
}

// ---- type constraints ----

// checkType verifies that value's tag matches the constraint name.
func checkType(name token.Token, constraint string, value Value) *Error {
	if constraint == "" {
		return nil
	}

	got := ""
	switch value.(type) {
	case StringVal:
		if constraint == "string" {
			return nil
		}
		got = "a string"
	case NumberVal:
		if constraint == "num" {
			return nil
		}
		got = "a number"
	case BoolVal:
		if constraint == "bool" {
			return nil
		}
		got = "a boolean"
	case *ListVal:
		if constraint == "list" {
			return nil
		}
		got = "a list"
	case *Environment:
		if constraint == "map" {
			return nil
		}
		got = "a map"
	default:
		got = "an unexpected type"
	}

	want := ""
	switch constraint {
	case "string":
		want = "a string"
	case "num":
		want = "a number"
	case "bool":
		want = "a boolean"
	case "list":
		want = "a list"
	case "map":
		want = "a map"
	default:
		return newError(name, KindType, "Type Error: Unexpected type.")
	}
	return newError(name, KindType, "Type Error: Variable expects %s but got %s.", want, got)
}

// resolveTypeName resolves an alias (optionally namespaced) to its
// concrete type name. An empty result means "no constraint".
func (i *Interpreter) resolveTypeName(prefix *token.Token, alias token.Token) (string, error) {
	if prefix != nil {
		if obj, ok := i.env.Get(prefix.Lexeme); ok {
			if ns, isMap := obj.(*Environment); isMap {
				if ns.IsTypeAlias(alias.Lexeme) {
					return ns.GetTypeAlias(alias.Lexeme), nil
				}
			}
		}
		return "", nil
	}
	if i.env.IsTypeAlias(alias.Lexeme) {
		return i.env.GetTypeAlias(alias.Lexeme), nil
	}
	return "", nil
}

// isInternalAccess reports whether the current scope's 'this' is bound
// to the given instance, which is what private member access requires.
func (i *Interpreter) isInternalAccess(instance *Instance) bool {
	val, ok := i.env.Get("this")
	if !ok {
		return false
	}
	this, ok := val.(*Instance)
	return ok && this == instance
}
