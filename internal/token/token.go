// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"

	"github.com/johnryzon123/Rylang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, foo, myVar
	NUMBER // numeric literals: 123, 3.14 (stored as float64)
	STRING // string literals: "hello"

	// Single-character operators and delimiters
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	ASSIGN    // =
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	BANG      // !
	COMMA     // ,
	COLON     // :
	LBRACKET  // [
	RBRACKET  // ]
	DOT       // .
	AMPERSAND // &
	CARET     // ^
	PIPE      // |
	TILDE     // ~
	LT        // <
	GT        // >

	// Compound operators
	EQ           // ==
	NEQ          // !=
	LTE          // <=
	GTE          // >=
	DOUBLE_COLON // ::
	ARROW        // ->
	PLUS_PLUS    // ++
	MINUS_MINUS  // --
	SHL          // <<
	SHR          // >>

	// Keywords
	KW_IMPORT
	KW_FUNC
	KW_WHILE
	KW_FOR
	KW_FOREACH
	KW_IF
	KW_ELSE
	KW_TRUE
	KW_FALSE
	KW_NULL
	KW_AND
	KW_OR
	KW_ALIAS
	KW_RETURN
	KW_AS
	KW_NAMESPACE
	KW_DATA
	KW_THIS
	KW_TO
	KW_IN
	KW_STOP
	KW_SKIP
	KW_UNLESS
	KW_UNTIL
	KW_DO
	KW_CLASS
	KW_PRIVATE
	KW_CHILDOF
	KW_ATTEMPT
	KW_FAIL
	KW_PANIC
	KW_FINALLY
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	ASSIGN:    "=",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	BANG:      "!",
	COMMA:     ",",
	COLON:     ":",
	LBRACKET:  "[",
	RBRACKET:  "]",
	DOT:       ".",
	AMPERSAND: "&",
	CARET:     "^",
	PIPE:      "|",
	TILDE:     "~",
	LT:        "<",
	GT:        ">",

	EQ:           "==",
	NEQ:          "!=",
	LTE:          "<=",
	GTE:          ">=",
	DOUBLE_COLON: "::",
	ARROW:        "->",
	PLUS_PLUS:    "++",
	MINUS_MINUS:  "--",
	SHL:          "<<",
	SHR:          ">>",

	KW_IMPORT:    "import",
	KW_FUNC:      "func",
	KW_WHILE:     "while",
	KW_FOR:       "for",
	KW_FOREACH:   "foreach",
	KW_IF:        "if",
	KW_ELSE:      "else",
	KW_TRUE:      "true",
	KW_FALSE:     "false",
	KW_NULL:      "null",
	KW_AND:       "and",
	KW_OR:        "or",
	KW_ALIAS:     "alias",
	KW_RETURN:    "return",
	KW_AS:        "as",
	KW_NAMESPACE: "namespace",
	KW_DATA:      "data",
	KW_THIS:      "this",
	KW_TO:        "to",
	KW_IN:        "in",
	KW_STOP:      "stop",
	KW_SKIP:      "skip",
	KW_UNLESS:    "unless",
	KW_UNTIL:     "until",
	KW_DO:        "do",
	KW_CLASS:     "class",
	KW_PRIVATE:   "private",
	KW_CHILDOF:   "childof",
	KW_ATTEMPT:   "attempt",
	KW_FAIL:      "fail",
	KW_PANIC:     "panic",
	KW_FINALLY:   "finally",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_IMPORT && k <= KW_FINALLY
}

var keywords = map[string]Kind{
	"import":    KW_IMPORT,
	"func":      KW_FUNC,
	"while":     KW_WHILE,
	"for":       KW_FOR,
	"foreach":   KW_FOREACH,
	"if":        KW_IF,
	"else":      KW_ELSE,
	"true":      KW_TRUE,
	"false":     KW_FALSE,
	"null":      KW_NULL,
	"and":       KW_AND,
	"or":        KW_OR,
	"alias":     KW_ALIAS,
	"return":    KW_RETURN,
	"as":        KW_AS,
	"namespace": KW_NAMESPACE,
	"data":      KW_DATA,
	"this":      KW_THIS,
	"to":        KW_TO,
	"in":        KW_IN,
	"stop":      KW_STOP,
	"skip":      KW_SKIP,
	"unless":    KW_UNLESS,
	"until":     KW_UNTIL,
	"do":        KW_DO,
	"class":     KW_CLASS,
	"private":   KW_PRIVATE,
	"childof":   KW_CHILDOF,
	"attempt":   KW_ATTEMPT,
	"fail":      KW_FAIL,
	"panic":     KW_PANIC,
	"finally":   KW_FINALLY,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, optional literal
// value (float64 for NUMBER, string for STRING) and source position.
type Token struct {
	Kind    Kind          `json:"kind"`
	Lexeme  string        `json:"lexeme"`
	Literal any           `json:"literal,omitempty"`
	Pos     span.Position `json:"pos"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Pos)
}
