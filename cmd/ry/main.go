// Command ry is the CLI entry point for the Rylang toolchain.
//
// Usage:
//
//	ry                       Start the interactive REPL
//	ry run <file>            Run a .ry script
//	ry tokens <file> [--json] Print tokens
//	ry parse <file>          Print the AST as JSON
//	ry -v | --version        Show version
//	ry -h | --help           Show help
package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/johnryzon123/Rylang/internal/config"
	"github.com/johnryzon123/Rylang/internal/engine"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		cmdRepl()
		return
	}

	switch os.Args[1] {
	case "run":
		if len(os.Args) != 3 {
			pterm.Error.Println("Usage: ry run <script>")
			os.Exit(1)
		}
		cmdRun(os.Args[2])
	case "tokens":
		if len(os.Args) < 3 {
			pterm.Error.Println("Usage: ry tokens <file> [--json]")
			os.Exit(1)
		}
		cmdTokens(os.Args[2], hasFlag("--json"))
	case "parse":
		if len(os.Args) < 3 {
			pterm.Error.Println("Usage: ry parse <file>")
			os.Exit(1)
		}
		cmdParse(os.Args[2])
	case "-v", "--version":
		fmt.Printf("Ry version %s\n", version)
	case "-h", "--help":
		usage()
	default:
		pterm.Error.Printf("unknown command '%s'\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Ry (Ry's for You) Usage:")
	fmt.Println("  ry                        Launch the REPL")
	fmt.Println("  ry run <file>             Run a .ry script")
	fmt.Println("  ry tokens <file> [--json] Tokenize and print tokens")
	fmt.Println("  ry parse <file>           Parse and print AST (JSON)")
	fmt.Println("  ry -v                     Show version")
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		pterm.Error.Printf("Could not open file: %s\n", filename)
		os.Exit(1)
	}
	return string(source)
}

// newEngine builds an engine configured from ry.yaml if present.
func newEngine() (*engine.Engine, *config.Config) {
	eng := engine.New(os.Stdout)

	cfg, err := config.LoadFromDir(".")
	if err != nil {
		pterm.Error.Printf("ry.yaml: %v\n", err)
		cfg = &config.Config{}
	}
	if len(cfg.ModulePaths) > 0 {
		eng.Interp.AddSearchPaths(cfg.ModulePaths...)
	}
	return eng, cfg
}

// ---- run command ----

func cmdRun(filename string) {
	source := readFile(filename)
	eng, _ := newEngine()

	diags := eng.RunSource(source)
	printDiags(diags, source)
	if eng.HadError() {
		os.Exit(1)
	}
}
