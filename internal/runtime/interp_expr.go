package runtime

import (
	"math"
	"strings"

	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/token"
)

// evaluate dispatches a single expression.
func (i *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return i.evalLiteral(e)
	case *ast.VariableExpr:
		return i.evalVariable(e)
	case *ast.AssignExpr:
		return i.evalAssign(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.BitwiseExpr:
		return i.evalBitwise(e)
	case *ast.ShiftExpr:
		return i.evalShift(e)
	case *ast.RangeExpr:
		return i.evalRange(e)
	case *ast.PrefixExpr:
		return i.evalPrefix(e)
	case *ast.PostfixExpr:
		return i.evalPostfix(e)
	case *ast.GroupExpr:
		return i.evaluate(e.Expression)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.ListExpr:
		return i.evalList(e)
	case *ast.MapExpr:
		return i.evalMap(e)
	case *ast.IndexExpr:
		return i.evalIndex(e)
	case *ast.IndexSetExpr:
		return i.evalIndexSet(e)
	case *ast.GetExpr:
		return i.evalGet(e)
	case *ast.SetExpr:
		return i.evalSet(e)
	case *ast.ThisExpr:
		return i.evalThis(e)
	default:
		return nil, newError(token.Token{}, "", "Unhandled expression type.")
	}
}

func (i *Interpreter) evalLiteral(e *ast.LiteralExpr) (Value, error) {
	switch e.Value.Kind {
	case token.NUMBER:
		if f, ok := e.Value.Literal.(float64); ok {
			return NumberVal(f), nil
		}
		return NumberVal(0), nil
	case token.STRING:
		if s, ok := e.Value.Literal.(string); ok {
			return StringVal(s), nil
		}
		return StringVal(e.Value.Lexeme), nil
	case token.KW_TRUE:
		return BoolVal(true), nil
	case token.KW_FALSE:
		return BoolVal(false), nil
	default:
		return NullVal{}, nil
	}
}

func (i *Interpreter) evalVariable(e *ast.VariableExpr) (Value, error) {
	if distance, ok := i.locals[e]; ok {
		if distance != -1 {
			cell, found := i.env.GetAt(distance, e.Name.Lexeme)
			if !found {
				return nil, newError(e.Name, KindName, "Undefined variable '%s'.", e.Name.Lexeme)
			}
			return cell.Value, nil
		}
	}
	cell, ok := i.globals.GetVariable(e.Name.Lexeme)
	if !ok {
		return nil, newError(e.Name, KindName, "Undefined variable '%s'.", e.Name.Lexeme)
	}
	return cell.Value, nil
}

func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	value, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}

	var cell *Variable
	if distance, ok := i.locals[e]; ok && distance != -1 {
		c, found := i.env.GetAt(distance, e.Name.Lexeme)
		if !found {
			return nil, newError(e.Name, KindName, "Undefined variable '%s'.", e.Name.Lexeme)
		}
		cell = c
	} else {
		c, found := i.globals.GetVariable(e.Name.Lexeme)
		if !found {
			return nil, newError(e.Name, KindName, "Undefined variable '%s'.", e.Name.Lexeme)
		}
		cell = c
	}

	if cell.TypeConstraint != "" {
		if err := checkType(e.Name, cell.TypeConstraint, value); err != nil {
			return nil, err
		}
	}
	cell.Value = value
	return value, nil
}

// evalLogical short-circuits and always returns the truthiness of the
// selected operand as a boolean.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	leftTruth := IsTruthy(left)

	if e.Op.Kind == token.KW_AND {
		if !leftTruth {
			return BoolVal(false), nil
		}
	} else {
		if leftTruth {
			return BoolVal(true), nil
		}
	}

	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	return BoolVal(IsTruthy(right)), nil
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	op := e.Op.Kind

	if op == token.PLUS {
		if list, ok := left.(*ListVal); ok {
			// list + list concatenates; list + scalar appends. Always a
			// fresh list, the operands are untouched.
			merged := make([]Value, len(list.Elements), len(list.Elements)+1)
			copy(merged, list.Elements)
			if other, ok := right.(*ListVal); ok {
				merged = append(merged, other.Elements...)
			} else {
				merged = append(merged, right)
			}
			return &ListVal{Elements: merged}, nil
		}
		_, leftStr := left.(StringVal)
		_, rightStr := right.(StringVal)
		if leftStr || rightStr {
			return StringVal(left.String() + right.String()), nil
		}
	}

	if op == token.MINUS {
		if list, ok := left.(*ListVal); ok {
			// list - x removes every element equal to x; x may be a list
			// of values to remove.
			var removals []Value
			if other, ok := right.(*ListVal); ok {
				removals = other.Elements
			} else {
				removals = []Value{right}
			}
			kept := make([]Value, 0, len(list.Elements))
			for _, item := range list.Elements {
				found := false
				for _, r := range removals {
					if ValuesEqual(item, r) {
						found = true
						break
					}
				}
				if !found {
					kept = append(kept, item)
				}
			}
			return &ListVal{Elements: kept}, nil
		}
	}

	ld, lok := ToNumber(left)
	rd, rok := ToNumber(right)
	if lok && rok {
		switch op {
		case token.PLUS:
			return NumberVal(ld + rd), nil
		case token.MINUS:
			return NumberVal(ld - rd), nil
		case token.STAR:
			return NumberVal(ld * rd), nil
		case token.SLASH:
			if rd == 0 {
				return nil, newError(e.Op, KindMath, "Cannot Divide with zero.")
			}
			return NumberVal(ld / rd), nil
		case token.PERCENT:
			if rd == 0 {
				return nil, newError(e.Op, KindMath, "Cannot get remainder of division with zero.")
			}
			return NumberVal(math.Mod(ld, rd)), nil
		case token.GT:
			return BoolVal(ld > rd), nil
		case token.GTE:
			return BoolVal(ld >= rd), nil
		case token.LT:
			return BoolVal(ld < rd), nil
		case token.LTE:
			return BoolVal(ld <= rd), nil
		case token.EQ:
			return BoolVal(ld == rd), nil
		case token.NEQ:
			return BoolVal(ld != rd), nil
		}
	}

	if op == token.EQ {
		return BoolVal(ValuesEqual(left, right)), nil
	}
	if op == token.NEQ {
		return BoolVal(!ValuesEqual(left, right)), nil
	}

	if op == token.STAR {
		// String repetition: "hi" * 3
		if str, ok := left.(StringVal); ok {
			if n, ok := right.(NumberVal); ok {
				count := int(n)
				var sb strings.Builder
				for j := 0; j < count; j++ {
					sb.WriteString(string(str))
				}
				return StringVal(sb.String()), nil
			}
		}
		// List repetition: [1, 2] * 3
		if list, ok := left.(*ListVal); ok {
			if n, ok := right.(NumberVal); ok {
				count := int(n)
				if count < 0 {
					count = 0
				}
				repeated := make([]Value, 0, len(list.Elements)*count)
				for j := 0; j < count; j++ {
					repeated = append(repeated, list.Elements...)
				}
				return &ListVal{Elements: repeated}, nil
			}
		}
	}

	return nil, newError(e.Op, KindType, "Operands must be numbers or matching types.")
}

func (i *Interpreter) evalBitwise(e *ast.BitwiseExpr) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	ln, lok := left.(NumberVal)
	rn, rok := right.(NumberVal)
	if !lok || !rok {
		return nil, newError(e.Op, KindType, "Operands must be numbers.")
	}

	l, r := int64(ln), int64(rn)
	switch e.Op.Kind {
	case token.AMPERSAND:
		return NumberVal(l & r), nil
	case token.CARET:
		return NumberVal(l ^ r), nil
	default:
		return NumberVal(l | r), nil
	}
}

func (i *Interpreter) evalShift(e *ast.ShiftExpr) (Value, error) {
	left, err := i.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	ln, lok := left.(NumberVal)
	rn, rok := right.(NumberVal)
	if !lok || !rok {
		return nil, newError(e.Op, KindType, "Operands must be a number.")
	}

	l, r := int64(ln), int64(rn)
	// Shift distances outside [0, 63] yield 0.
	if r < 0 || r >= 64 {
		return NumberVal(0), nil
	}
	if e.Op.Kind == token.SHL {
		return NumberVal(l << r), nil
	}
	return NumberVal(l >> r), nil
}

// evalRange builds an inclusive list of numbers, counting up or down.
func (i *Interpreter) evalRange(e *ast.RangeExpr) (Value, error) {
	low, err := i.evaluate(e.Low)
	if err != nil {
		return nil, err
	}
	high, err := i.evaluate(e.High)
	if err != nil {
		return nil, err
	}

	ld, lok := ToNumber(low)
	rd, rok := ToNumber(high)
	if !lok || !rok {
		return nil, newError(e.Op, KindType, "Range bounds must be numbers.")
	}

	list := &ListVal{}
	if ld <= rd {
		for v := ld; v <= rd; v++ {
			list.Elements = append(list.Elements, NumberVal(v))
		}
	} else {
		for v := ld; v >= rd; v-- {
			list.Elements = append(list.Elements, NumberVal(v))
		}
	}
	return list, nil
}

func (i *Interpreter) evalPrefix(e *ast.PrefixExpr) (Value, error) {
	if e.Op.Kind == token.PLUS_PLUS || e.Op.Kind == token.MINUS_MINUS {
		return i.evalIncDec(e.Op, e.Right, true)
	}

	right, err := i.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.MINUS:
		n, ok := right.(NumberVal)
		if !ok {
			return nil, newError(e.Op, KindType, "Operand must be a number.")
		}
		return NumberVal(-n), nil
	case token.BANG:
		return BoolVal(!IsTruthy(right)), nil
	case token.TILDE:
		n, ok := right.(NumberVal)
		if !ok {
			return nil, newError(e.Op, KindType, "Operand must be a number.")
		}
		return NumberVal(^int64(n)), nil
	default:
		return nil, newError(e.Op, KindType, "Invalid prefix operator.")
	}
}

func (i *Interpreter) evalPostfix(e *ast.PostfixExpr) (Value, error) {
	return i.evalIncDec(e.Op, e.Left, false)
}

// evalIncDec implements ++ and --. The target must be a plain variable
// reference holding a number. Prefix returns the new value, postfix the
// old one. The variable's cell is mutated in place so constraints and
// privacy survive.
func (i *Interpreter) evalIncDec(op token.Token, target ast.Expr, prefix bool) (Value, error) {
	variable, ok := target.(*ast.VariableExpr)
	if !ok {
		return nil, newError(op, KindType, "Target must be a variable.")
	}

	cell, found := i.env.GetVariable(variable.Name.Lexeme)
	if !found {
		return nil, newError(variable.Name, KindName, "Undefined variable '%s'.", variable.Name.Lexeme)
	}
	n, isNum := cell.Value.(NumberVal)
	if !isNum {
		return nil, newError(op, KindType, "Target must be a number.")
	}

	delta := NumberVal(1)
	if op.Kind == token.MINUS_MINUS {
		delta = -1
	}
	cell.Value = n + delta

	if prefix {
		return n + delta, nil
	}
	return n, nil
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := i.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, newError(e.Paren, KindType, "Can only call functions and classes.")
	}

	minArgs := callable.Arity()
	maxArgs := minArgs
	switch fn := callable.(type) {
	case *Function:
		maxArgs = fn.MaxArity()
	case *Class:
		maxArgs = fn.MaxArity()
	}

	if minArgs != -1 && (len(args) < minArgs || len(args) > maxArgs) {
		if minArgs == maxArgs {
			return nil, newError(e.Paren, KindType, "Expected %d arguments but got %d.", minArgs, len(args))
		}
		return nil, newError(e.Paren, KindType, "Expected between %d and %d arguments but got %d.",
			minArgs, maxArgs, len(args))
	}

	result, err := callable.Call(i, args)
	if err != nil {
		if _, isRuntime := err.(*Error); !isRuntime {
			// Builtins surface plain Go errors; anchor them to the call.
			return nil, newError(e.Paren, KindType, "%s", err.Error())
		}
		return nil, err
	}
	return result, nil
}

func (i *Interpreter) evalList(e *ast.ListExpr) (Value, error) {
	list := &ListVal{Elements: make([]Value, 0, len(e.Elements))}
	for _, el := range e.Elements {
		v, err := i.evaluate(el)
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, v)
	}
	return list, nil
}

func (i *Interpreter) evalMap(e *ast.MapExpr) (Value, error) {
	m := NewEnvironment(nil)
	for _, item := range e.Items {
		key, err := i.evaluate(item.Key)
		if err != nil {
			return nil, err
		}
		value, err := i.evaluate(item.Value)
		if err != nil {
			return nil, err
		}
		keyStr, ok := key.(StringVal)
		if !ok {
			return nil, newError(e.Brace, KindType, "Map keys must be strings.")
		}
		m.DefineValue(string(keyStr), value)
	}
	return m, nil
}

func (i *Interpreter) evalIndex(e *ast.IndexExpr) (Value, error) {
	object, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	index, err := i.evaluate(e.Index)
	if err != nil {
		return nil, err
	}

	switch o := object.(type) {
	case *ListVal:
		n, ok := index.(NumberVal)
		if !ok {
			return nil, newError(e.Bracket, KindRange, "Index must be a number.")
		}
		idx := int(n)
		if idx < 0 || idx >= len(o.Elements) {
			return nil, newError(e.Bracket, KindRange, "Index out of bounds.")
		}
		return o.Elements[idx], nil
	case *Environment:
		key, ok := index.(StringVal)
		if !ok {
			return nil, newError(e.Bracket, KindRange, "Index must be a string.")
		}
		value, exists := o.Get(string(key))
		if !exists {
			return nil, newError(e.Bracket, KindName, "Undefined property '%s'.", string(key))
		}
		return value, nil
	default:
		return nil, newError(e.Bracket, KindType, "Only lists can be indexed.")
	}
}

func (i *Interpreter) evalIndexSet(e *ast.IndexSetExpr) (Value, error) {
	object, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	index, err := i.evaluate(e.Index)
	if err != nil {
		return nil, err
	}
	value, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}

	switch o := object.(type) {
	case *Environment:
		key, ok := index.(StringVal)
		if !ok {
			return nil, newError(e.Bracket, KindRange, "Map index must be a string.")
		}
		// Define rather than assign: map["new_key"] = v creates the key.
		o.DefineValue(string(key), value)
		return value, nil
	case *ListVal:
		n, ok := index.(NumberVal)
		if !ok {
			return nil, newError(e.Bracket, KindRange, "List index must be a number.")
		}
		idx := int(n)
		if idx < 0 || idx >= len(o.Elements) {
			return nil, newError(e.Bracket, KindRange, "Index out of bounds.")
		}
		o.Elements[idx] = value
		return value, nil
	default:
		return nil, newError(e.Bracket, KindType, "Only lists and maps support indexed assignment.")
	}
}

func (i *Interpreter) evalGet(e *ast.GetExpr) (Value, error) {
	object, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}

	switch o := object.(type) {
	case *Environment:
		if value, ok := o.Get(e.Name.Lexeme); ok {
			return value, nil
		}
		if o.IsTypeAlias(e.Name.Lexeme) {
			return StringVal(o.GetTypeAlias(e.Name.Lexeme)), nil
		}
	case *Instance:
		cell, gerr := o.GetVariable(e.Name)
		if gerr != nil {
			return nil, gerr
		}
		if cell.IsPrivate && !i.isInternalAccess(o) {
			return nil, newError(e.Name, KindName, "Cannot access private member '%s'.", e.Name.Lexeme)
		}
		return cell.Value, nil
	case *Class:
		if method := o.FindMethod(e.Name.Lexeme); method != nil {
			// Accessing a method through a class token from inside a
			// subclass method binds 'this' to the current instance; this
			// is what makes parent.method() work.
			if thisVal, ok := i.env.Get("this"); ok {
				if instance, isInst := thisVal.(*Instance); isInst {
					for k := instance.Class; k != nil; k = k.Superclass {
						if k == o {
							return method.Bind(instance), nil
						}
					}
				}
			}
			return method, nil
		}
	}

	return nil, newError(e.Name, KindName, "Undefined property.")
}

func (i *Interpreter) evalSet(e *ast.SetExpr) (Value, error) {
	object, err := i.evaluate(e.Object)
	if err != nil {
		return nil, err
	}
	value, err := i.evaluate(e.Value)
	if err != nil {
		return nil, err
	}

	switch o := object.(type) {
	case *Instance:
		cell, gerr := o.GetVariable(e.Name)
		if gerr != nil {
			return nil, gerr
		}
		if cell.IsPrivate && !i.isInternalAccess(o) {
			return nil, newError(e.Name, KindName, "Cannot access private member '%s'.", e.Name.Lexeme)
		}
		if cell.TypeConstraint != "" {
			if err := checkType(e.Name, cell.TypeConstraint, value); err != nil {
				return nil, err
			}
		}
		updated := *cell
		updated.Value = value
		o.Set(e.Name, &updated)
		return value, nil
	case *Environment:
		// Namespaces and maps grow new cells on property assignment.
		o.DefineValue(e.Name.Lexeme, value)
		return value, nil
	default:
		return nil, newError(e.Name, KindType, "Only modules and objects have properties.")
	}
}

func (i *Interpreter) evalThis(e *ast.ThisExpr) (Value, error) {
	if distance, ok := i.locals[e]; ok && distance != -1 {
		if cell, found := i.env.GetAt(distance, "this"); found {
			return cell.Value, nil
		}
	}
	if value, ok := i.env.Get("this"); ok {
		return value, nil
	}
	return nil, newError(e.Keyword, KindName, "Cannot use 'this' outside of a class.")
}
