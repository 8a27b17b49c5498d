package runtime

import (
	"fmt"

	"github.com/johnryzon123/Rylang/internal/token"
)

// Error kinds used as type tags; a typed fail clause matches against
// these. Panics carry an empty kind so typed clauses never catch them.
const (
	KindMath  = "MathError"
	KindType  = "TypeError"
	KindName  = "NameError"
	KindRange = "RangeError"
)

// Error is a runtime error carrying the offending token, a message and
// an optional kind tag. It unwinds through the evaluator to the nearest
// enclosing attempt statement, or to the host driver.
type Error struct {
	Tok     token.Token
	Message string
	Kind    string // "" for panics and untagged errors
	IsPanic bool   // user-raised panic: no caret in the diagnostic
}

func (e *Error) Error() string {
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Tok.Pos.Line, e.Tok.Pos.Column, e.Message)
}

func newError(tok token.Token, kind, format string, args ...any) *Error {
	return &Error{Tok: tok, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ---- Control flow signals ----

// signal represents a control-flow signal from statement execution.
type signal int

const (
	sigNone   signal = iota
	sigReturn        // return from function
	sigStop          // terminate the innermost loop
	sigSkip          // resume the next iteration of the innermost loop
)

// execResult carries a control-flow signal and the return value, if any.
type execResult struct {
	signal signal
	value  Value
}

var resultNone = execResult{signal: sigNone}
