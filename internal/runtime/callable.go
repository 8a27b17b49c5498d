package runtime

import (
	"github.com/johnryzon123/Rylang/internal/ast"
)

// Callable is implemented by everything that can appear as a call
// target: user functions, built-in functions and classes. Arity returns
// the number of required arguments; -1 means variadic.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

// Function is a user-defined function: the AST declaration plus the
// environment captured at definition time.
type Function struct {
	Declaration   *ast.FuncStmt
	Closure       *Environment
	IsPrivate     bool
	IsInitializer bool
}

func (f *Function) TypeName() string { return "function" }
func (f *Function) String() string   { return "<fn " + f.Declaration.Name.Lexeme + ">" }

// Arity returns the count of parameters without default values.
func (f *Function) Arity() int {
	required := 0
	for _, p := range f.Declaration.Params {
		if p.Default == nil {
			required++
		}
	}
	return required
}

// MaxArity returns the total parameter count.
func (f *Function) MaxArity() int { return len(f.Declaration.Params) }

// Bind produces a copy of the function whose closure extends the
// original with 'this' bound to the given instance.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.DefineValue("this", instance)
	return &Function{
		Declaration:   f.Declaration,
		Closure:       env,
		IsPrivate:     f.IsPrivate,
		IsInitializer: f.Declaration.Name.Lexeme == "init",
	}
}

// Call runs the function body in a fresh environment enclosing the
// closure. Missing trailing arguments are filled from their default
// expressions, evaluated in the call environment on every call.
func (f *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.Closure)

	prev := interp.env
	interp.env = env
	defer func() { interp.env = prev }()

	for i, param := range f.Declaration.Params {
		if i < len(args) {
			env.DefineValue(param.Name.Lexeme, args[i])
		} else if param.Default != nil {
			value, err := interp.evaluate(param.Default)
			if err != nil {
				return nil, err
			}
			env.DefineValue(param.Name.Lexeme, value)
		}
	}

	result, err := interp.executeBlock(f.Declaration.Body, env)
	if err != nil {
		return nil, err
	}

	var value Value = NullVal{}
	if result.signal == sigReturn && result.value != nil {
		value = result.value
	}

	// Declared return type: resolve the constraint against the closure
	// (where the declaration's aliases are visible) and check the value.
	if f.Declaration.ReturnType != nil {
		savedEnv := interp.env
		interp.env = f.Closure
		constraint, err := interp.resolveTypeName(f.Declaration.ReturnTypeNS, *f.Declaration.ReturnType)
		interp.env = savedEnv
		if err != nil {
			return nil, err
		}
		if constraint != "" {
			if err := checkType(f.Declaration.Name, constraint, value); err != nil {
				return nil, err
			}
		}
	}

	if f.IsInitializer {
		if _, isNull := value.(NullVal); isNull {
			if this, ok := f.Closure.GetAt(0, "this"); ok {
				return this.Value, nil
			}
		}
	}
	return value, nil
}

// BuiltinFn is the Go signature shared by all built-in callables.
type BuiltinFn func(interp *Interpreter, args []Value) (Value, error)

// Builtin is a native callable registered under a name in the global
// environment. NArgs is its arity; -1 denotes variadic.
type Builtin struct {
	Name  string
	NArgs int
	Fn    BuiltinFn
}

func (b *Builtin) TypeName() string { return "function" }
func (b *Builtin) String() string   { return "<native fn " + b.Name + ">" }
func (b *Builtin) Arity() int       { return b.NArgs }

func (b *Builtin) Call(interp *Interpreter, args []Value) (Value, error) {
	return b.Fn(interp, args)
}
