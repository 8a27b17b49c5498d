package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/lexer"
	"github.com/johnryzon123/Rylang/internal/parser"
	"github.com/johnryzon123/Rylang/internal/resolver"
)

// DefaultSearchPaths returns the module search path: the working
// directory, ./modules, ./modules/library, and one platform system path.
func DefaultSearchPaths() []string {
	paths := []string{".", "./modules", "./modules/library"}
	if runtime.GOOS == "windows" {
		paths = append(paths, "C:/ry/modules")
	} else {
		paths = append(paths, "/usr/lib/ry/")
	}
	return paths
}

// findModulePath locates a file (or directory) by name through the
// search path. An empty result means not found.
func (i *Interpreter) findModulePath(name string, isDirectory bool) string {
	for _, dir := range i.searchPaths {
		full := filepath.Join(dir, name)
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		if isDirectory && info.IsDir() {
			return full
		}
		if !isDirectory && info.Mode().IsRegular() {
			return full
		}
	}
	return ""
}

// execImport locates a module by name, parses and resolves it, and
// executes its statements in the global environment. A wildcard name
// ("dir/*") imports every .ry file in the named directory. Modules are
// tracked by name and skipped the second time.
func (i *Interpreter) execImport(s *ast.ImportStmt) (execResult, error) {
	moduleName := s.Module.Lexeme

	if i.loadedModules[moduleName] {
		return resultNone, nil
	}
	i.loadedModules[moduleName] = true

	if strings.Contains(moduleName, "*") {
		return i.importWildcard(moduleName)
	}

	sourcePath := i.findModulePath(moduleName, false)
	if sourcePath == "" {
		fmt.Fprintf(i.stderr, "Module '%s' not found.\n", moduleName)
		return resultNone, nil
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(i.stderr, "Error loading %s: %v\n", moduleName, err)
		return resultNone, nil
	}
	return resultNone, i.runModuleSource(string(source), moduleName)
}

// importWildcard strips the trailing "*" and imports every .ry file in
// the remaining directory, in name order.
func (i *Interpreter) importWildcard(moduleName string) (execResult, error) {
	folder := moduleName[:strings.Index(moduleName, "*")]
	folder = strings.TrimRight(folder, "/\\")

	dirPath := i.findModulePath(folder, true)
	if dirPath == "" {
		fmt.Fprintf(i.stderr, "Directory '%s' not found for wildcard import.\n", folder)
		return resultNone, nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		fmt.Fprintf(i.stderr, "Directory '%s' not found for wildcard import.\n", folder)
		return resultNone, nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".ry" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		source, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			fmt.Fprintf(i.stderr, "Error loading %s: %v\n", name, err)
			continue
		}
		if err := i.runModuleSource(string(source), name); err != nil {
			return resultNone, err
		}
	}
	return resultNone, nil
}

// runModuleSource compiles and resolves a module, then executes its
// statements in the global environment so modules contribute to global
// state. A syntax error in a module must not take the engine down: the
// module simply contributes nothing.
func (i *Interpreter) runModuleSource(source, moduleName string) error {
	lx := lexer.New(source)
	tokens, lexDiags := lx.Tokenize()
	if len(lexDiags) > 0 {
		fmt.Fprintf(i.stderr, "Error loading %s: %s\n", moduleName, lexDiags[0].String())
		return nil
	}

	p := parser.New(tokens, i.Aliases)
	stmts, parseDiags := p.Parse()
	if len(parseDiags) > 0 {
		fmt.Fprintf(i.stderr, "Error loading %s: %s\n", moduleName, parseDiags[0].String())
		return nil
	}

	res := resolver.New(i)
	if err := res.Resolve(stmts); err != nil {
		fmt.Fprintf(i.stderr, "Error loading %s: %v\n", moduleName, err)
		return nil
	}

	prev := i.env
	i.env = i.globals
	defer func() { i.env = prev }()
	return i.Interpret(stmts)
}
