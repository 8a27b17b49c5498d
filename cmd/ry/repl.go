package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
)

// countIndentation tracks bracket balance on a line, ignoring brackets
// inside strings and after a '#' comment, so the REPL knows when a
// multi-line construct is still open.
func countIndentation(line string) int {
	balance := 0
	inString := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		if !inString && c == '#' {
			break
		}
		if c == '"' && (i == 0 || line[i-1] != '\\') {
			inString = !inString
		}
		if !inString {
			switch c {
			case '{', '(', '[':
				balance++
			case '}', ')', ']':
				balance--
			}
		}
	}
	return balance
}

func cmdRepl() {
	eng, cfg := newEngine()

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".ry_history")
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            pterm.FgLightBlue.Sprint(">> "),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		pterm.Error.Printf("readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	pterm.Info.Printf("Ry (Ry's for You) REPL %s\n", version)

	var buffer strings.Builder
	indentLevel := 0

	for {
		if indentLevel > 0 {
			rl.SetPrompt(pterm.FgGray.Sprint(strings.Repeat(".", indentLevel*4) + " "))
		} else {
			rl.SetPrompt(pterm.FgLightBlue.Sprint(">> "))
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if indentLevel > 0 {
					pterm.FgYellow.Println("(Input cancelled)")
					buffer.Reset()
					indentLevel = 0
					continue
				}
				pterm.FgGray.Println("(use 'exit(0)' or Ctrl+D to quit)")
				continue
			}
			if err == io.EOF {
				pterm.Println()
			}
			break
		}

		if line == "" && indentLevel > 0 {
			pterm.FgYellow.Println("(Input cancelled)")
			buffer.Reset()
			indentLevel = 0
			continue
		}

		indentLevel += countIndentation(line)
		buffer.WriteString(line)
		buffer.WriteString("\n")

		// Only execute once every opened pair is closed again.
		if indentLevel > 0 {
			continue
		}

		source := buffer.String()
		buffer.Reset()
		indentLevel = 0

		trimmed := strings.TrimSpace(source)
		if trimmed == "" {
			continue
		}
		if trimmed == "clear" {
			pterm.Print("\033[2J\033[H")
			eng.Reset()
			continue
		}

		diags := eng.RunSource(source)
		printDiags(diags, source)
	}
}
