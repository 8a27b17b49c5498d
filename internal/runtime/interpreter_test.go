package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/johnryzon123/Rylang/internal/lexer"
	"github.com/johnryzon123/Rylang/internal/parser"
	"github.com/johnryzon123/Rylang/internal/resolver"
)

// runSource compiles and executes source, returning captured output and
// any resolve/runtime error.
func runSource(t *testing.T, source string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	interp := New(&buf)
	interp.SetStderr(&buf)

	l := lexer.New(source)
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}

	p := parser.New(tokens, interp.Aliases)
	stmts, parseDiags := p.Parse()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}

	res := resolver.New(interp)
	if err := res.Resolve(stmts); err != nil {
		return buf.String(), err
	}
	err := interp.Interpret(stmts)
	// note: output written before a runtime error is still in buf
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	// re-run to capture output written before Interpret returned
	var buf bytes.Buffer
	interp := New(&buf)
	interp.SetStderr(&buf)

	l := lexer.New(source)
	tokens, _ := l.Tokenize()
	p := parser.New(tokens, interp.Aliases)
	stmts, _ := p.Parse()
	res := resolver.New(interp)
	if err := res.Resolve(stmts); err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if err := interp.Interpret(stmts); err != nil {
		t.Fatalf("runtime error: %v\noutput so far: %q", err, buf.String())
	}
	if strings.TrimRight(buf.String(), "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, buf.String())
	}
}

func expectError(t *testing.T, source, contains string) {
	t.Helper()
	_, err := runSource(t, source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
}

// ---- literals, arithmetic and coercion ----

func TestOutLiteral(t *testing.T) {
	expectOutput(t, `out(42)`, "42\n")
	expectOutput(t, `out("hello")`, "hello\n")
	expectOutput(t, `out(true)`, "true\n")
	expectOutput(t, `out(null)`, "null\n")
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, `out(1 + 2 * 3)`, "7\n")
	expectOutput(t, `out((1 + 2) * 3)`, "9\n")
	expectOutput(t, `out(10 / 4)`, "2.5\n")
	expectOutput(t, `out(10 % 3)`, "1\n")
}

func TestStringCoercionInMath(t *testing.T) {
	// Strings whose trimmed content parses as a number coerce.
	expectOutput(t, "data a = \"4\"\nout(a * 2)", "8\n")
}

func TestDivisionByZero(t *testing.T) {
	expectError(t, `data x = 1 / 0`, "Cannot Divide with zero.")
	expectError(t, `data x = 1 % 0`, "Cannot get remainder of division with zero.")
}

func TestTypedDeclScenario(t *testing.T) {
	expectOutput(t, "data::num x = 3 + 4 * 2\nout(x)", "11\n")
}

// ---- strings and interpolation ----

func TestConcat(t *testing.T) {
	expectOutput(t, `out("a" + 1)`, "a1\n")
	expectOutput(t, `out(1 + "a")`, "1a\n")
	expectOutput(t, `out("ab" * 3)`, "ababab\n")
}

func TestInterpolation(t *testing.T) {
	expectOutput(t, "data name = \"ry\"\nout(\"hi ${name}!\")", "hi ry!\n")
}

// ---- lists ----

func TestListOps(t *testing.T) {
	expectOutput(t, "data list xs = [1, 2, 3]\nout(xs + 4)", "[1, 2, 3, 4]\n")
	expectOutput(t, `out([1, 2] + [3, 4])`, "[1, 2, 3, 4]\n")
	expectOutput(t, `out([1, 2, 3, 2] - 2)`, "[1, 3]\n")
	expectOutput(t, `out([1, 2, 3, 4] - [2, 4])`, "[1, 3]\n")
	expectOutput(t, `out([1, 2] * 2)`, "[1, 2, 1, 2]\n")
}

func TestListPlusLeavesOperandUntouched(t *testing.T) {
	expectOutput(t, "data xs = [1, 2, 3]\nxs + 4\nout(xs)", "[1, 2, 3]\n")
}

func TestListIndexing(t *testing.T) {
	expectOutput(t, "data xs = [10, 20]\nout(xs[1])", "20\n")
	expectOutput(t, "data xs = [10, 20]\nxs[0] = 5\nout(xs)", "[5, 20]\n")
	expectError(t, "data xs = [1]\nout(xs[3])", "Index out of bounds.")
	expectError(t, "data xs = [1]\nout(xs["+`"a"`+"])", "Index must be a number.")
}

func TestListAliasingSharesMutation(t *testing.T) {
	expectOutput(t, "data a = [1]\ndata b = a\nb[0] = 9\nout(a)", "[9]\n")
}

func TestRange(t *testing.T) {
	expectOutput(t, `out(1 to 4)`, "[1, 2, 3, 4]\n")
	expectOutput(t, `out(3 to 1)`, "[3, 2, 1]\n")
}

// ---- maps ----

func TestMapLiteralAndIndex(t *testing.T) {
	expectOutput(t, "data m = {\"a\": 1}\nout(m[\"a\"])", "1\n")
	expectOutput(t, "data m = {\"a\": 1}\nm[\"b\"] = 2\nout(m[\"b\"])", "2\n")
	expectOutput(t, "data m = {\"a\": 1}\nout(m.a)", "1\n")
	expectError(t, "data m = {\"a\": 1}\nout(m[\"zz\"])", "Undefined property 'zz'.")
	expectError(t, "data m = {\"a\": 1}\nout(m[0])", "Index must be a string.")
}

func TestMapKeysMustBeStrings(t *testing.T) {
	expectError(t, `data m = {1: 2}`, "Map keys must be strings.")
}

// ---- variables and scoping ----

func TestVarAndAssign(t *testing.T) {
	expectOutput(t, "data x = 1\nx = 2\nout(x)", "2\n")
	expectError(t, `out(missing)`, "Undefined variable 'missing'.")
	expectError(t, `missing = 1`, "Undefined variable 'missing'.")
}

func TestBlockScoping(t *testing.T) {
	expectOutput(t, `
data x = 1
{
	data x = 2
	out(x)
}
out(x)
`, "2\n1\n")
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	expectOutput(t, `
func makeCounter() {
	data count = 0
	func inc() {
		count = count + 1
		return count
	}
	return inc
}
data c = makeCounter()
out(c())
out(c())
`, "1\n2\n")
}

func TestTypeConstraints(t *testing.T) {
	expectError(t, "data::num x = \"s\"", "expects a number but got a string")
	expectError(t, "data::num x = 1\nx = \"s\"", "expects a number but got a string")
	expectOutput(t, "data::map m = {\"a\": 1}\nm = {\"b\": 2}\nout(m.b)", "2\n")
	expectError(t, "data::map m = {\"a\": 1}\nm = 5", "expects a map but got a number")
}

func TestTypeAlias(t *testing.T) {
	expectOutput(t, "alias data::num as int\nint x = 5\nout(x)", "5\n")
	expectError(t, "alias data::num as int\nint x = \"s\"", "expects a number but got a string")
}

func TestChainedTypeAlias(t *testing.T) {
	expectOutput(t, "alias data::num as int\nalias int as integer\ninteger x = 7\nout(x)", "7\n")
}

func TestValueAlias(t *testing.T) {
	expectOutput(t, "alias out as print\nprint(1)", "1\n")
}

// ---- operators ----

func TestLogicalReturnsBooleans(t *testing.T) {
	expectOutput(t, `out(1 and 2)`, "true\n")
	expectOutput(t, `out(null and 2)`, "false\n")
	expectOutput(t, `out(false or "x")`, "true\n")
	expectOutput(t, `out(null or false)`, "false\n")
}

func TestShortCircuit(t *testing.T) {
	expectOutput(t, `
data called = false
func touch() {
	called = true
	return true
}
false and touch()
out(called)
true or touch()
out(called)
`, "false\nfalse\n")
}

func TestEquality(t *testing.T) {
	expectOutput(t, `out(1 == 1)`, "true\n")
	expectOutput(t, `out("a" == "a")`, "true\n")
	expectOutput(t, `out("a" != "b")`, "true\n")
	expectOutput(t, `out([1, [2]] == [1, [2]])`, "true\n")
	expectOutput(t, `out(null == null)`, "true\n")
	expectOutput(t, `out(1 == "x")`, "false\n")
}

func TestBitwise(t *testing.T) {
	expectOutput(t, "data a = 6\ndata b = 3\nout(a & b)", "2\n")
	expectOutput(t, "data a = 6\ndata b = 3\nout(a | b)", "7\n")
	expectOutput(t, "data a = 6\ndata b = 3\nout(a ^ b)", "5\n")
	expectOutput(t, "data a = 0\nout(~a)", "-1\n")
}

func TestShift(t *testing.T) {
	expectOutput(t, "data a = 1\ndata b = 4\nout(a << b)", "16\n")
	expectOutput(t, "data a = 16\ndata b = 2\nout(a >> b)", "4\n")
	expectOutput(t, "data a = 1\ndata b = 70\nout(a << b)", "0\n")
	expectOutput(t, "data a = 1\ndata b = 70\nout(a >> b)", "0\n")
}

func TestIncDec(t *testing.T) {
	expectOutput(t, "data x = 1\nout(++x)", "2\n")
	expectOutput(t, "data x = 1\nout(x++)", "1\n")
	expectOutput(t, "data x = 1\nx++\nout(x)", "2\n")
	expectOutput(t, "data x = 1\nout(--x)", "0\n")
	expectError(t, `out(++5)`, "Target must be a variable.")
}

func TestIncDecKeepsConstraint(t *testing.T) {
	expectError(t, "data::num x = 1\nx++\nx = \"s\"", "expects a number but got a string")
}

// ---- control flow ----

func TestIfUnless(t *testing.T) {
	expectOutput(t, `if 1 < 2 { out("yes") } else { out("no") }`, "yes\n")
	expectOutput(t, `unless 1 < 2 { out("yes") } else { out("no") }`, "no\n")
}

func TestWhileStopSkip(t *testing.T) {
	expectOutput(t, `
data i = 0
while true {
	i = i + 1
	if i == 2 { skip }
	if i > 3 { stop }
	out(i)
}
`, "1\n3\n")
}

func TestForLoop(t *testing.T) {
	expectOutput(t, `for data i = 0, i < 3, i++ { out(i) }`, "0\n1\n2\n")
}

func TestDoUntil(t *testing.T) {
	expectOutput(t, `
data i = 0
do {
	i = i + 1
	out(i)
} until i >= 3
`, "1\n2\n3\n")
}

func TestForeach(t *testing.T) {
	expectOutput(t, "data s = \"x\"\nforeach data c in [1, 2, 3] { s = s + c }\nout(s)", "x123\n")
	expectError(t, `foreach data c in 5 { out(c) }`, "The 'foreach' loop requires a list.")
}

func TestForeachTypedLoopVariable(t *testing.T) {
	expectError(t, "foreach data::num n in [1, \"two\"] { out(n) }", "expects a number but got a string")
}

func TestForeachOverRange(t *testing.T) {
	expectOutput(t, `foreach data n in 1 to 3 { out(n) }`, "1\n2\n3\n")
}

// ---- functions ----

func TestFibScenario(t *testing.T) {
	expectOutput(t, `
func fib(n) {
	if n < 2 { return n }
	return fib(n - 1) + fib(n - 2)
}
out(fib(10))
`, "55\n")
}

func TestDefaultParameters(t *testing.T) {
	expectOutput(t, `
func greet(data name, data suffix = "!") {
	return "hi " + name + suffix
}
out(greet("a"))
out(greet("a", "?"))
`, "hi a!\nhi a?\n")
}

func TestArityErrors(t *testing.T) {
	expectError(t, "func f(a) { return a }\nf()", "Expected 1 arguments but got 0.")
	expectError(t, "func f(a, data b = 1) { return a }\nf(1, 2, 3)", "Expected between 1 and 2 arguments but got 3.")
	expectError(t, `5()`, "Can only call functions and classes.")
}

func TestReturnTypeCheck(t *testing.T) {
	expectOutput(t, "alias data::num as int\nfunc f() -> int { return 1 }\nout(f())", "1\n")
	expectError(t, "alias data::num as int\nfunc f() -> int { return \"s\" }\nf()", "expects a number but got a string")
}

func TestBareReturn(t *testing.T) {
	expectOutput(t, "func f() { return }\nout(f())", "null\n")
}

// ---- classes ----

func TestClassBasics(t *testing.T) {
	expectOutput(t, `
class Dog {
	data name = "rex"
	func speak() { return this.name + " says woof" }
}
data d = Dog()
out(d.speak())
d.name = "fido"
out(d.speak())
`, "rex says woof\nfido says woof\n")
}

func TestClassInit(t *testing.T) {
	expectOutput(t, `
class Point {
	data x = 0
	data y = 0
	func init(a, b) {
		this.x = a
		this.y = b
	}
}
data p = Point(3, 4)
out(p.x + p.y)
`, "7\n")
}

func TestInheritanceScenario(t *testing.T) {
	expectOutput(t, `
class A {
	func hi() { return "A" }
}
class B childof A {
	func hi() { return parent.hi() + "B" }
}
out(B().hi())
`, "AB\n")
}

func TestInheritedFieldBlueprints(t *testing.T) {
	expectOutput(t, `
class Animal {
	data legs = 4
}
class Dog childof Animal {
	data name = "rex"
}
data d = Dog()
out(d.legs)
`, "4\n")
}

func TestMethodOverride(t *testing.T) {
	expectOutput(t, `
class A {
	func speak() { return "a" }
}
class B childof A {
	func speak() { return "b" }
}
out(B().speak())
`, "b\n")
}

func TestPrivateMembers(t *testing.T) {
	expectError(t, `
class Safe {
	private data code = 123
}
data s = Safe()
out(s.code)
`, "Cannot access private member 'code'.")

	expectOutput(t, `
class Safe {
	private data code = 123
	func reveal() { return this.code }
}
data s = Safe()
out(s.reveal())
`, "123\n")
}

func TestPrivateMethodBlocked(t *testing.T) {
	expectError(t, `
class Safe {
	private func secret() { return 1 }
}
data s = Safe()
s.secret()
`, "Cannot access private member 'secret'.")
}

func TestPrivateWriteBlocked(t *testing.T) {
	expectError(t, `
class Safe {
	private data code = 123
}
data s = Safe()
s.code = 5
`, "Cannot access private member 'code'.")
}

func TestInstanceIdentityEquality(t *testing.T) {
	expectOutput(t, `
class A { }
data x = A()
data y = A()
data z = x
out(x == y)
out(x == z)
`, "false\ntrue\n")
}

func TestFieldTypeConstraint(t *testing.T) {
	expectError(t, `
class Box {
	data::num size = 1
}
data b = Box()
b.size = "big"
`, "expects a number but got a string")
}

// ---- namespaces ----

func TestNamespace(t *testing.T) {
	expectOutput(t, `
namespace Math {
	data pi = 3.14
	func double(x) { return x * 2 }
}
out(Math.pi)
out(Math.double(21))
`, "3.14\n42\n")
}

func TestNamespacePropertyAssignment(t *testing.T) {
	expectOutput(t, `
namespace Cfg { }
Cfg.debug = true
out(Cfg.debug)
`, "true\n")
}

func TestNamespacedTypeAlias(t *testing.T) {
	expectOutput(t, `
namespace Math {
	alias data::num as int
}
Math.int x = 9
out(x)
`, "9\n")
}

// ---- attempt / fail / finally / panic ----

func TestAttemptScenario(t *testing.T) {
	expectOutput(t, `
attempt {
	data x = 1 / 0
} fail e::MathError {
	out("caught")
} finally {
	out("done")
}
`, "caught\ndone\n")
}

func TestAttemptNoError(t *testing.T) {
	expectOutput(t, `
attempt {
	out("ok")
} fail e {
	out("caught")
} finally {
	out("done")
}
`, "ok\ndone\n")
}

func TestAttemptTypeMismatchReRaises(t *testing.T) {
	_, err := runSource(t, `
attempt {
	data x = missing
} fail e::MathError {
	out("caught")
}
`)
	if err == nil {
		t.Fatal("expected the NameError to re-raise past the MathError filter")
	}
}

func TestAttemptFinallyRunsOnReRaise(t *testing.T) {
	out, err := runSource(t, `
attempt {
	data x = 1 / 0
} fail e::NameError {
	out("caught")
} finally {
	out("done")
}
`)
	if err == nil {
		t.Fatal("expected the MathError to re-raise past the NameError filter")
	}
	if !strings.Contains(out, "done") {
		t.Errorf("finally must run on the re-raise path, output: %q", out)
	}
}

func TestAttemptBindsMessage(t *testing.T) {
	expectOutput(t, `
attempt {
	data x = 1 / 0
} fail e {
	out(e)
}
`, "Cannot Divide with zero.\n")
}

func TestPanic(t *testing.T) {
	_, err := runSource(t, `panic "boom"`)
	if err == nil {
		t.Fatal("expected a panic error")
	}
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !rerr.IsPanic {
		t.Error("panic errors must carry the panic flag")
	}
	if rerr.Kind != "" {
		t.Errorf("panic errors must have an empty kind, got %q", rerr.Kind)
	}
	if rerr.Message != "boom" {
		t.Errorf("expected message 'boom', got %q", rerr.Message)
	}
}

func TestPanicCaughtByUntypedFail(t *testing.T) {
	expectOutput(t, `
attempt {
	panic "boom"
} fail e {
	out("caught " + e)
}
`, "caught boom\n")
}

func TestPanicNotCaughtByTypedFail(t *testing.T) {
	_, err := runSource(t, `
attempt {
	panic "boom"
} fail e::MathError {
	out("caught")
}
`)
	if err == nil {
		t.Fatal("typed fail clauses must not catch panics")
	}
}

// ---- builtins ----

func TestBuiltins(t *testing.T) {
	expectOutput(t, `out(len([1, 2, 3]))`, "3\n")
	expectOutput(t, `out(len("abcd"))`, "4\n")
	expectOutput(t, "data m = {\"a\": 1}\nout(len(m))", "1\n")
	expectOutput(t, "data xs = [1, 2]\nout(pop(xs))\nout(xs)", "2\n[1]\n")
	expectOutput(t, `out(type(1))`, "number\n")
	expectOutput(t, `out(type("s"))`, "string\n")
	expectOutput(t, `out(type([1]))`, "list\n")
	expectError(t, `len(5)`, "Argument to len() must be a list, string, or map.")
	expectError(t, `pop([])`, "Cannot pop from an empty list.")
}

func TestDefineNative(t *testing.T) {
	var buf bytes.Buffer
	interp := New(&buf)
	interp.DefineNative("twice", &Builtin{
		Name:  "twice",
		NArgs: 1,
		Fn: func(_ *Interpreter, args []Value) (Value, error) {
			n := args[0].(NumberVal)
			return n * 2, nil
		},
	})

	l := lexer.New(`out(twice(21))`)
	tokens, _ := l.Tokenize()
	p := parser.New(tokens, interp.Aliases)
	stmts, _ := p.Parse()
	res := resolver.New(interp)
	if err := res.Resolve(stmts); err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if err := interp.Interpret(stmts); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if buf.String() != "42\n" {
		t.Errorf("expected 42, got %q", buf.String())
	}
}

func TestInputCoercion(t *testing.T) {
	var buf bytes.Buffer
	interp := New(&buf)
	interp.SetStdin(strings.NewReader("41.5\n\"quoted\"\ntrue\nplain\n"))

	for _, expected := range []string{"number", "string", "bool", "string"} {
		l := lexer.New(`out(type(input()))`)
		tokens, _ := l.Tokenize()
		p := parser.New(tokens, interp.Aliases)
		stmts, _ := p.Parse()
		res := resolver.New(interp)
		if err := res.Resolve(stmts); err != nil {
			t.Fatalf("resolve error: %v", err)
		}
		if err := interp.Interpret(stmts); err != nil {
			t.Fatalf("runtime error: %v", err)
		}
		line := buf.String()
		buf.Reset()
		if strings.TrimSpace(line) != expected {
			t.Errorf("expected %s, got %q", expected, line)
		}
	}
}

// ---- resolver rules via the full pipeline ----

func TestDuplicateLocalDeclaration(t *testing.T) {
	expectError(t, `
func f() {
	data a = 1
	data a = 2
}
`, "Already a variable with this name in this scope.")
}

func TestSelfReadInInitializer(t *testing.T) {
	expectError(t, `
func f() {
	data a = a
}
`, "Can't read local variable in its own initializer.")
}

func TestThisOutsideClass(t *testing.T) {
	expectError(t, `out(this)`, "Cannot use 'this' outside of a class.")
}

func TestClassCannotInheritItself(t *testing.T) {
	expectError(t, `class A childof A { }`, "A class cannot inherit from itself.")
}

// ---- scope distances ----

func TestShadowingAcrossScopes(t *testing.T) {
	expectOutput(t, `
data x = "global"
func f() {
	data x = "local"
	{
		out(x)
	}
}
f()
out(x)
`, "local\nglobal\n")
}
