package runtime

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/johnryzon123/Rylang/internal/lexer"
	"github.com/johnryzon123/Rylang/internal/parser"
	"github.com/johnryzon123/Rylang/internal/resolver"
)

func runWithModules(t *testing.T, dir, source string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	interp := New(&buf)
	interp.SetStderr(&buf)
	interp.SetSearchPaths([]string{dir})

	l := lexer.New(source)
	tokens, _ := l.Tokenize()
	p := parser.New(tokens, interp.Aliases)
	stmts, diags := p.Parse()
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	res := resolver.New(interp)
	if err := res.Resolve(stmts); err != nil {
		return buf.String(), err
	}
	err := interp.Interpret(stmts)
	return buf.String(), err
}

func writeModule(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportModule(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "mathlib.ry", `
func double(x) { return x * 2 }
data answer = 42
`)

	out, err := runWithModules(t, dir, `
import("mathlib.ry")
out(double(10))
out(answer)
`)
	if err != nil {
		t.Fatalf("runtime error: %v\noutput: %q", err, out)
	}
	if out != "20\n42\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "once.ry", `out("loaded")`)

	out, err := runWithModules(t, dir, `
import("once.ry")
import("once.ry")
`)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out != "loaded\n" {
		t.Errorf("module must load once, got %q", out)
	}
}

func TestImportWildcard(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "lib")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeModule(t, sub, "a.ry", `out("a")`)
	writeModule(t, sub, "b.ry", `out("b")`)
	writeModule(t, sub, "ignored.txt", `not a module`)

	out, err := runWithModules(t, dir, `import("lib/*")`)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if out != "a\nb\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestImportMissingModuleWarns(t *testing.T) {
	dir := t.TempDir()
	out, err := runWithModules(t, dir, `import("nope.ry")`)
	if err != nil {
		t.Fatalf("a missing module must not be a runtime error: %v", err)
	}
	if out != "Module 'nope.ry' not found.\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestImportSyntaxErrorDoesNotCrash(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "bad.ry", `data = = =`)

	_, err := runWithModules(t, dir, `
import("bad.ry")
out("still alive")
`)
	if err != nil {
		t.Fatalf("a broken module must not take the engine down: %v", err)
	}
}

func TestImportContributesToGlobals(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "globals.ry", `data shared = "from module"`)

	out, err := runWithModules(t, dir, `
func show() { return shared }
import("globals.ry")
out(show())
`)
	if err != nil {
		t.Fatalf("runtime error: %v\noutput: %q", err, out)
	}
	if out != "from module\n" {
		t.Errorf("unexpected output: %q", out)
	}
}
