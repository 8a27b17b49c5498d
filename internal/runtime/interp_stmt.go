package runtime

import (
	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/token"
)

func (i *Interpreter) execVar(s *ast.VarStmt) (execResult, error) {
	constraint, err := i.varConstraint(s)
	if err != nil {
		return resultNone, err
	}

	var value Value = NullVal{}
	if s.Initializer != nil {
		v, verr := i.evaluate(s.Initializer)
		if verr != nil {
			return resultNone, verr
		}
		value = v

		if constraint != "" {
			if terr := checkType(s.Name, constraint, value); terr != nil {
				return resultNone, terr
			}
		}
	}

	i.env.Define(s.Name.Lexeme, &Variable{
		Value:          value,
		IsPrivate:      s.IsPrivate,
		TypeConstraint: constraint,
	})
	return resultNone, nil
}

// varConstraint computes the concrete type-constraint name for a
// variable declaration: data::TYPE uses TYPE directly (resolved through
// aliases), otherwise the declaration prefix is an alias or a
// namespaced alias.
func (i *Interpreter) varConstraint(s *ast.VarStmt) (string, error) {
	if s.Type.Kind == token.KW_DATA {
		if s.InnerType == nil {
			return "", nil
		}
		return i.env.GetTypeAlias(s.InnerType.Lexeme), nil
	}

	alias := s.Type
	var prefix *token.Token
	if s.InnerType != nil {
		alias = *s.InnerType
		prefix = &s.Type
	}
	return i.resolveTypeName(prefix, alias)
}

func (i *Interpreter) execFunc(s *ast.FuncStmt) (execResult, error) {
	fn := &Function{
		Declaration: s,
		Closure:     i.env,
		IsPrivate:   s.IsPrivate,
	}
	i.env.DefineValue(s.Name.Lexeme, fn)
	return resultNone, nil
}

func (i *Interpreter) execReturn(s *ast.ReturnStmt) (execResult, error) {
	var value Value = NullVal{}
	if s.Value != nil {
		v, err := i.evaluate(s.Value)
		if err != nil {
			return resultNone, err
		}
		value = v
	}
	return execResult{signal: sigReturn, value: value}, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (execResult, error) {
	condition, err := i.evaluate(s.Condition)
	if err != nil {
		return resultNone, err
	}
	if IsTruthy(condition) {
		return i.execute(s.Then)
	}
	if s.Else != nil {
		return i.execute(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (execResult, error) {
	for {
		condition, err := i.evaluate(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(condition) {
			return resultNone, nil
		}

		result, err := i.execute(s.Body)
		if err != nil {
			return resultNone, err
		}
		switch result.signal {
		case sigStop:
			return resultNone, nil
		case sigReturn:
			return result, nil
		}
		// sigSkip falls through to the next iteration.
	}
}

func (i *Interpreter) execFor(s *ast.ForStmt) (execResult, error) {
	loopEnv := NewEnvironment(i.env)
	prev := i.env
	i.env = loopEnv
	defer func() { i.env = prev }()

	if s.Init != nil {
		if _, err := i.execute(s.Init); err != nil {
			return resultNone, err
		}
	}

	for {
		if s.Condition != nil {
			condition, err := i.evaluate(s.Condition)
			if err != nil {
				return resultNone, err
			}
			if !IsTruthy(condition) {
				return resultNone, nil
			}
		}

		result, err := i.execute(s.Body)
		if err != nil {
			return resultNone, err
		}
		switch result.signal {
		case sigStop:
			return resultNone, nil
		case sigReturn:
			return result, nil
		}

		if s.Increment != nil {
			if _, err := i.evaluate(s.Increment); err != nil {
				return resultNone, err
			}
		}
	}
}

func (i *Interpreter) execForeach(s *ast.ForeachStmt) (execResult, error) {
	collection, err := i.evaluate(s.Collection)
	if err != nil {
		return resultNone, err
	}
	list, ok := collection.(*ListVal)
	if !ok {
		return resultNone, newError(s.Name, KindType, "The 'foreach' loop requires a list.")
	}

	constraint := ""
	if s.DataType != nil {
		constraint = i.env.GetTypeAlias(s.DataType.Lexeme)
	}

	for _, item := range list.Elements {
		if constraint != "" {
			if terr := checkType(s.Name, constraint, item); terr != nil {
				return resultNone, terr
			}
		}

		loopEnv := NewEnvironment(i.env)
		loopEnv.Define(s.Name.Lexeme, &Variable{Value: item, TypeConstraint: constraint})

		result, err := i.runInEnv(s.Body, loopEnv)
		if err != nil {
			return resultNone, err
		}
		switch result.signal {
		case sigStop:
			return resultNone, nil
		case sigReturn:
			return result, nil
		}
	}
	return resultNone, nil
}

// runInEnv executes one statement with the current environment switched
// to env, restoring it afterwards. A block body still creates its own
// child scope inside, mirroring the resolver.
func (i *Interpreter) runInEnv(stmt ast.Stmt, env *Environment) (execResult, error) {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()
	return i.execute(stmt)
}

func (i *Interpreter) execNamespace(s *ast.NamespaceStmt) (execResult, error) {
	nsEnv := NewEnvironment(i.env)

	result, err := i.executeBlock(s.Body, nsEnv)
	if err != nil {
		return resultNone, err
	}
	if result.signal != sigNone {
		return result, nil
	}

	// The environment itself is the namespace value.
	i.env.DefineValue(s.Name.Lexeme, nsEnv)
	return resultNone, nil
}

func (i *Interpreter) execClass(s *ast.ClassStmt) (execResult, error) {
	var superclass *Class
	var superVal Value
	if s.Superclass != nil {
		v, err := i.evaluate(s.Superclass)
		if err != nil {
			return resultNone, err
		}
		cls, ok := v.(*Class)
		if !ok {
			return resultNone, newError(s.Superclass.Name, KindType, "Superclass must be a class.")
		}
		superclass = cls
		superVal = v
	}

	methodEnv := i.env
	if superclass != nil {
		methodEnv = NewEnvironment(i.env)
		methodEnv.DefineValue("parent", superVal)
	}

	fields := make(map[string]*Variable, len(s.Fields))
	for _, field := range s.Fields {
		constraint, err := i.varConstraint(field)
		if err != nil {
			return resultNone, err
		}

		var initial Value = NullVal{}
		if field.Initializer != nil {
			v, err := i.evaluate(field.Initializer)
			if err != nil {
				return resultNone, err
			}
			initial = v
			if constraint != "" {
				if terr := checkType(field.Name, constraint, initial); terr != nil {
					return resultNone, terr
				}
			}
		}
		fields[field.Name.Lexeme] = &Variable{
			Value:          initial,
			IsPrivate:      field.IsPrivate,
			TypeConstraint: constraint,
		}
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, method := range s.Methods {
		methods[method.Name.Lexeme] = &Function{
			Declaration: method,
			Closure:     methodEnv,
			IsPrivate:   method.IsPrivate,
		}
	}

	class := NewClass(s.Name.Lexeme, methods, fields, superclass)
	i.env.DefineValue(s.Name.Lexeme, class)
	return resultNone, nil
}

func (i *Interpreter) execAlias(s *ast.AliasStmt) (execResult, error) {
	if s.IsType {
		target, ok := s.Target.(*ast.VariableExpr)
		if !ok {
			return resultNone, newError(s.Name, KindType, "Alias target must be a type name.")
		}
		// Resolve transitively so chained aliases stay concrete.
		concrete := i.env.GetTypeAlias(target.Name.Lexeme)
		i.env.DefineTypeAlias(s.Name.Lexeme, concrete)
		// Keep the parser's shared set in sync for later REPL lines.
		i.Aliases.Add(s.Name.Lexeme)
		return resultNone, nil
	}

	value, err := i.evaluate(s.Target)
	if err != nil {
		return resultNone, err
	}
	i.env.DefineValue(s.Name.Lexeme, value)
	return resultNone, nil
}

// execAttempt runs the attempt body in a new scope. A runtime error is
// consumed by the fail clause when the clause has no type filter or its
// filter matches the error's kind tag; otherwise it re-raises. The
// finally body runs exactly once on every path.
func (i *Interpreter) execAttempt(s *ast.AttemptStmt) (execResult, error) {
	result, err := i.executeBlock(s.AttemptBody, NewEnvironment(i.env))

	if rerr, isRuntime := asRuntimeError(err); isRuntime {
		catchAll := s.ErrType.Lexeme == ""
		typeMatch := rerr.Kind != "" && rerr.Kind == s.ErrType.Lexeme

		if catchAll || typeMatch {
			// Consume the error and run the fail body with the message
			// bound to the named variable.
			failEnv := NewEnvironment(i.env)
			if s.HasFail {
				failEnv.DefineValue(s.ErrName.Lexeme, StringVal(rerr.Message))
			}
			result, err = i.executeBlock(s.FailBody, failEnv)
		}
		// A non-matching error keeps propagating; finally still runs
		// below before the re-raise escapes.
	}

	if len(s.FinallyBody) > 0 {
		finResult, finErr := i.executeBlock(s.FinallyBody, NewEnvironment(i.env))
		if finErr != nil {
			return resultNone, finErr
		}
		if finResult.signal != sigNone {
			return finResult, nil
		}
	}

	if err != nil {
		return resultNone, err
	}
	return result, nil
}

func (i *Interpreter) execPanic(s *ast.PanicStmt) (execResult, error) {
	var message Value = NullVal{}
	if s.Message != nil {
		v, err := i.evaluate(s.Message)
		if err != nil {
			return resultNone, err
		}
		message = v
	}
	return resultNone, &Error{
		Tok:     s.Keyword,
		Message: message.String(),
		IsPanic: true,
	}
}

func asRuntimeError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	rerr, ok := err.(*Error)
	return rerr, ok
}
