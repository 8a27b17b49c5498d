package runtime

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// registerBuiltins installs the fixed built-in callables in the global
// environment. External loaders add more through DefineNative.
func registerBuiltins(i *Interpreter) {
	i.DefineNative("out", &Builtin{Name: "out", NArgs: -1, Fn: builtinOut})
	i.DefineNative("input", &Builtin{Name: "input", NArgs: -1, Fn: builtinInput})
	i.DefineNative("len", &Builtin{Name: "len", NArgs: 1, Fn: builtinLen})
	i.DefineNative("pop", &Builtin{Name: "pop", NArgs: 1, Fn: builtinPop})
	i.DefineNative("type", &Builtin{Name: "type", NArgs: 1, Fn: builtinType})
	i.DefineNative("clock", &Builtin{Name: "clock", NArgs: 0, Fn: builtinClock})
	i.DefineNative("clear", &Builtin{Name: "clear", NArgs: 0, Fn: builtinClear})
	i.DefineNative("exit", &Builtin{Name: "exit", NArgs: 1, Fn: builtinExit})
}

// printValue renders a value for 'out': lists recursively, numbers
// without trailing zeros, strings bare, nil as "null", callables by
// their display form, everything else as "<object>".
func printValue(sb *strings.Builder, v Value) {
	switch val := v.(type) {
	case *ListVal:
		sb.WriteByte('[')
		for idx, el := range val.Elements {
			printValue(sb, el)
			if idx < len(val.Elements)-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteByte(']')
	case NumberVal:
		sb.WriteString(FormatNumber(float64(val)))
	case StringVal:
		sb.WriteString(string(val))
	case BoolVal:
		sb.WriteString(val.String())
	case NullVal:
		sb.WriteString("null")
	case Callable:
		sb.WriteString(val.String())
	default:
		sb.WriteString("<object>")
	}
}

func builtinOut(i *Interpreter, args []Value) (Value, error) {
	var sb strings.Builder
	for idx, arg := range args {
		printValue(&sb, arg)
		if idx < len(args)-1 {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('\n')
	if _, err := fmt.Fprint(i.stdout, sb.String()); err != nil {
		return nil, err
	}
	return NullVal{}, nil
}

// builtinInput reads one line and coerces it: quoted strings keep their
// content, true/false/null parse as keywords, full numbers parse as
// numbers, anything else stays a string.
func builtinInput(i *Interpreter, args []Value) (Value, error) {
	if len(args) > 0 {
		switch prompt := args[0].(type) {
		case StringVal:
			fmt.Fprint(i.stdout, string(prompt))
		case NumberVal:
			fmt.Fprint(i.stdout, prompt.String())
		}
	}

	if i.stdinReader == nil {
		i.stdinReader = bufio.NewReader(i.stdin)
	}
	line, err := i.stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return NullVal{}, nil
	}

	s := strings.TrimSpace(line)
	if s == "" {
		return StringVal(""), nil
	}

	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return StringVal(s[1 : len(s)-1]), nil
		}
	}

	switch strings.ToLower(s) {
	case "true":
		return BoolVal(true), nil
	case "false":
		return BoolVal(false), nil
	case "null", "nil":
		return NullVal{}, nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NumberVal(f), nil
	}
	return StringVal(s), nil
}

func builtinLen(i *Interpreter, args []Value) (Value, error) {
	switch arg := args[0].(type) {
	case *ListVal:
		return NumberVal(len(arg.Elements)), nil
	case StringVal:
		return NumberVal(len(arg)), nil
	case *Environment:
		return NumberVal(arg.Size()), nil
	default:
		return nil, fmt.Errorf("Argument to len() must be a list, string, or map.")
	}
}

func builtinPop(i *Interpreter, args []Value) (Value, error) {
	list, ok := args[0].(*ListVal)
	if !ok {
		return nil, fmt.Errorf("Argument to pop() must be a list.")
	}
	if len(list.Elements) == 0 {
		return nil, fmt.Errorf("Cannot pop from an empty list.")
	}
	last := list.Elements[len(list.Elements)-1]
	list.Elements = list.Elements[:len(list.Elements)-1]
	return last, nil
}

func builtinType(i *Interpreter, args []Value) (Value, error) {
	switch args[0].(type) {
	case NumberVal:
		return StringVal("number"), nil
	case StringVal:
		return StringVal("string"), nil
	case BoolVal:
		return StringVal("bool"), nil
	case *ListVal:
		return StringVal("list"), nil
	case *Environment:
		return StringVal("map"), nil
	default:
		return StringVal("unknown"), nil
	}
}

func builtinClock(i *Interpreter, args []Value) (Value, error) {
	return NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
}

func builtinClear(i *Interpreter, args []Value) (Value, error) {
	fmt.Fprint(i.stdout, "\033[2J\033[H")
	return NullVal{}, nil
}

func builtinExit(i *Interpreter, args []Value) (Value, error) {
	code := 0
	if n, ok := args[0].(NumberVal); ok {
		code = int(n)
	}
	fmt.Fprintf(i.stdout, "[Ry] Process finished with exit code %d\n", code)
	os.Exit(code)
	return NullVal{}, nil
}
