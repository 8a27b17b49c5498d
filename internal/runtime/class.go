package runtime

import (
	"github.com/johnryzon123/Rylang/internal/token"
)

// Class is the blueprint for creating instances. It is itself callable:
// calling it produces an instance and invokes 'init' if present.
type Class struct {
	Name            string
	Methods         map[string]*Function
	FieldBlueprints map[string]*Variable
	Superclass      *Class
}

// NewClass builds a class, merging in superclass field blueprints that
// are not overridden.
func NewClass(name string, methods map[string]*Function, fields map[string]*Variable, superclass *Class) *Class {
	c := &Class{
		Name:            name,
		Methods:         methods,
		FieldBlueprints: fields,
		Superclass:      superclass,
	}
	if superclass != nil {
		for key, val := range superclass.FieldBlueprints {
			if _, overridden := c.FieldBlueprints[key]; !overridden {
				c.FieldBlueprints[key] = val
			}
		}
	}
	return c
}

func (c *Class) TypeName() string { return "class" }
func (c *Class) String() string   { return "<class " + c.Name + ">" }

// Arity returns the arity of the 'init' method, or 0 without one.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// MaxArity returns the total parameter count of 'init', or 0 without one.
func (c *Class) MaxArity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.MaxArity()
	}
	return 0
}

// FindMethod looks up a method, walking the superclass chain.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

// Call constructs a fresh instance, clones the field blueprints, and
// runs 'init' bound to the new instance if the class declares or
// inherits one. The instance is the result.
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	instance := NewInstance(c)

	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a runtime object: a class reference plus a per-instance
// field table initialised from the class's blueprints.
type Instance struct {
	Class  *Class
	Fields map[string]*Variable
}

// NewInstance clones the class's field blueprints into a new instance.
func NewInstance(c *Class) *Instance {
	fields := make(map[string]*Variable, len(c.FieldBlueprints))
	for name, blueprint := range c.FieldBlueprints {
		clone := *blueprint
		fields[name] = &clone
	}
	return &Instance{Class: c, Fields: fields}
}

func (inst *Instance) TypeName() string { return "instance" }
func (inst *Instance) String() string   { return "<object " + inst.Class.Name + ">" }

// GetVariable returns the named field cell, or a cell holding a bound
// method looked up with inheritance.
func (inst *Instance) GetVariable(name token.Token) (*Variable, *Error) {
	if field, ok := inst.Fields[name.Lexeme]; ok {
		return field, nil
	}
	if method := inst.Class.FindMethod(name.Lexeme); method != nil {
		bound := method.Bind(inst)
		return &Variable{Value: bound, IsPrivate: method.IsPrivate}, nil
	}
	return nil, newError(name, KindName, "Undefined property '%s'.", name.Lexeme)
}

// Set stores a field cell on the instance.
func (inst *Instance) Set(name token.Token, v *Variable) {
	inst.Fields[name.Lexeme] = v
}
