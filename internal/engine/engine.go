// Package engine wires the pipeline together behind a single embedding
// surface: the host constructs an Engine, drives execution through
// RunSource, and clears transient state with Reset.
package engine

import (
	"fmt"
	"io"

	"github.com/johnryzon123/Rylang/internal/diag"
	"github.com/johnryzon123/Rylang/internal/lexer"
	"github.com/johnryzon123/Rylang/internal/parser"
	"github.com/johnryzon123/Rylang/internal/resolver"
	"github.com/johnryzon123/Rylang/internal/runtime"
)

// LibraryLoader attaches the native callables of a platform library to
// a namespace environment. The loading mechanism itself (dlopen,
// LoadLibrary) is platform glue supplied by the host; the engine only
// owns the registration contract.
type LibraryLoader func(name string, ns *runtime.Environment) error

// Engine holds an interpreter handle and a resolver handle. Both live
// for the engine's lifetime so REPL lines build on earlier ones.
type Engine struct {
	Interp   *runtime.Interpreter
	Resolver *resolver.Resolver

	loader   LibraryLoader
	hadError bool
}

// New creates an engine whose 'out' builtin writes to stdout.
func New(stdout io.Writer) *Engine {
	interp := runtime.New(stdout)
	eng := &Engine{
		Interp:   interp,
		Resolver: resolver.New(interp),
	}
	interp.DefineNative("use", &runtime.Builtin{Name: "use", NArgs: 1, Fn: eng.builtinUse})
	return eng
}

// SetLibraryLoader installs the platform mechanism behind use().
func (e *Engine) SetLibraryLoader(loader LibraryLoader) {
	e.loader = loader
}

// builtinUse implements use("lib"): it creates a namespace environment
// enclosing the globals, hands it to the installed library loader for
// population, and returns it. Load failures warn and still yield the
// (empty) namespace, so scripts keep running.
func (e *Engine) builtinUse(interp *runtime.Interpreter, args []runtime.Value) (runtime.Value, error) {
	name, ok := args[0].(runtime.StringVal)
	if !ok {
		return nil, fmt.Errorf("Argument to use() must be a string.")
	}

	ns := runtime.NewEnvironment(interp.Globals())
	if e.loader == nil {
		fmt.Fprintf(interp.Stderr(), "Ry Library Error: no native library loader is installed\n")
		return ns, nil
	}
	if err := e.loader(string(name), ns); err != nil {
		fmt.Fprintf(interp.Stderr(), "Ry Library Error: %v\n", err)
	}
	return ns, nil
}

// RunSource runs one source unit through lexer, parser, resolver and
// evaluator. It returns every diagnostic produced; a lex or parse error
// aborts the unit, so nothing runs. The had-error flag is set by any
// diagnostic and survives until Reset.
func (e *Engine) RunSource(src string) []diag.Diagnostic {
	lx := lexer.New(src)
	tokens, diags := lx.Tokenize()
	if len(diags) > 0 {
		e.hadError = true
		return diags
	}

	p := parser.New(tokens, e.Interp.Aliases)
	stmts, diags := p.Parse()
	if len(diags) > 0 {
		e.hadError = true
		return diags
	}

	if err := e.Resolver.Resolve(stmts); err != nil {
		e.hadError = true
		return []diag.Diagnostic{errToDiag(err)}
	}

	if err := e.Interp.Interpret(stmts); err != nil {
		e.hadError = true
		return []diag.Diagnostic{errToDiag(err)}
	}
	return nil
}

// HadError reports whether any diagnostic was produced since the last
// Reset.
func (e *Engine) HadError() bool { return e.hadError }

// Reset clears transient state: the had-error flag and the user's type
// aliases. Globals, loaded modules and the handles themselves survive.
func (e *Engine) Reset() {
	e.hadError = false
	e.Interp.Reset()
}

// errToDiag converts resolver and runtime errors into diagnostics.
// Panics suppress the caret marker.
func errToDiag(err error) diag.Diagnostic {
	switch rerr := err.(type) {
	case *resolver.Error:
		return diag.Diagnostic{
			Severity:  diag.Error,
			Message:   rerr.Message,
			Pos:       rerr.Tok.Pos,
			ShowCaret: true,
		}
	case *runtime.Error:
		return diag.Diagnostic{
			Severity:  diag.Error,
			Message:   rerr.Message,
			Pos:       rerr.Tok.Pos,
			ShowCaret: !rerr.IsPanic,
		}
	default:
		return diag.Diagnostic{Severity: diag.Error, Message: err.Error(), ShowCaret: true}
	}
}
