package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/diag"
	"github.com/johnryzon123/Rylang/internal/lexer"
	"github.com/johnryzon123/Rylang/internal/parser"
	"github.com/johnryzon123/Rylang/internal/token"
)

// printDiags renders diagnostics against the source: message, offending
// line and caret marker.
func printDiags(diags []diag.Diagnostic, source string) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, pterm.FgRed.Sprint(d.Render(source)))
	}
}

// ---- tokens command ----

func cmdTokens(filename string, jsonMode bool) {
	source := readFile(filename)
	l := lexer.New(source)
	tokens, diags := l.Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags, source)
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
}

func printTokensText(tokens []token.Token, diags []diag.Diagnostic, source string) {
	for _, tok := range tokens {
		fmt.Printf("%-12s %-20s %d:%d\n", tok.Kind, tok.Lexeme, tok.Pos.Line, tok.Pos.Column)
	}
	printDiags(diags, source)
}

func printTokensJSON(tokens []token.Token, diags []diag.Diagnostic) {
	type tokenJSON struct {
		Kind   string `json:"kind"`
		Lexeme string `json:"lexeme"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
		Offset int    `json:"offset"`
	}

	var toks []tokenJSON
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
			Offset: tok.Pos.Offset,
		})
	}

	printJSON(map[string]any{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}

// ---- parse command ----

func cmdParse(filename string) {
	source := readFile(filename)
	l := lexer.New(source)
	tokens, lexDiags := l.Tokenize()

	var stmts []ast.Stmt
	var parseDiags []diag.Diagnostic
	if len(lexDiags) == 0 {
		p := parser.New(tokens, parser.NewAliasSet())
		stmts, parseDiags = p.Parse()
	}

	allDiags := append(lexDiags, parseDiags...)

	body := make([]any, len(stmts))
	for i, s := range stmts {
		body[i] = ast.StmtToMap(s)
	}
	printJSON(map[string]any{
		"ast":         body,
		"diagnostics": diagsToSlice(allDiags),
	})

	if len(allDiags) > 0 {
		os.Exit(1)
	}
}

// ---- helpers ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: JSON encoding failed: %v\n", err)
		os.Exit(1)
	}
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]any {
	result := make([]map[string]any, len(diags))
	for i, d := range diags {
		result[i] = map[string]any{
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Pos.Line,
			"column":   d.Pos.Column,
			"offset":   d.Pos.Offset,
		}
	}
	return result
}
