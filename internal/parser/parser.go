// Package parser implements syntax analysis for Rylang.
//
// It is a classic recursive-descent parser with a precedence ladder:
//
//	assignment < or < and < equality < comparison < bitwise-or <
//	bitwise-xor < bitwise-and < range (to) < shift < addition <
//	multiplication < prefix < postfix/call/index/get < primary
//
// Every expression is passed through the constant-folding optimizer
// before being attached to its parent.
package parser

import (
	"github.com/johnryzon123/Rylang/internal/ast"
	"github.com/johnryzon123/Rylang/internal/diag"
	"github.com/johnryzon123/Rylang/internal/optimizer"
	"github.com/johnryzon123/Rylang/internal/token"
)

// AliasSet is the set of user-declared type alias names. It is shared
// between the parser and the evaluator: an 'alias data::num as int'
// declaration parsed here lets the parser recognise 'int x = ...' as a
// variable declaration further down the same unit, and on later REPL
// lines.
type AliasSet map[string]bool

// NewAliasSet creates an empty alias set.
func NewAliasSet() AliasSet { return make(AliasSet) }

// Add registers a type alias name.
func (a AliasSet) Add(name string) { a[name] = true }

// Has reports whether name is a registered type alias.
func (a AliasSet) Has(name string) bool { return a[name] }

// Clear removes all registered aliases.
func (a AliasSet) Clear() {
	for name := range a {
		delete(a, name)
	}
}

// builtinTypes are the concrete type-constraint names.
var builtinTypes = map[string]bool{
	"num":    true,
	"string": true,
	"bool":   true,
	"list":   true,
	"map":    true,
}

// IsBuiltinType reports whether name is one of the concrete
// type-constraint names.
func IsBuiltinType(name string) bool { return builtinTypes[name] }

// parseError is the sentinel used to unwind on the first syntax error.
// A parse error aborts the whole compilation unit: the driver receives
// an empty statement list and must treat it as "nothing to run".
type parseError struct{}

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens  []token.Token
	pos     int
	aliases AliasSet
	diags   []diag.Diagnostic

	loopDepth int
}

// New creates a parser over tokens, consulting (and mutating) the given
// shared type-alias set.
func New(tokens []token.Token, aliases AliasSet) *Parser {
	return &Parser{tokens: tokens, aliases: aliases}
}

// Parse parses the whole unit and returns the statements and any
// diagnostics. On a syntax error the statement list is empty.
func (p *Parser) Parse() (stmts []ast.Stmt, diags []diag.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.loopDepth = 0
			stmts = nil
			diags = p.diags
		}
	}()

	for !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	return stmts, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) next() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.tokens[p.pos].Kind == token.EOF
}

func (p *Parser) check(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) checkNext(kind token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	if p.tokens[p.pos+1].Kind == token.EOF {
		return false
	}
	return p.tokens[p.pos+1].Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.next()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) token.Token {
	if p.check(kind) {
		return p.next()
	}
	p.error(p.peek(), message)
	return p.tokens[p.pos]
}

func (p *Parser) error(tok token.Token, message string) {
	where := " at '" + tok.Lexeme + "'"
	if tok.Kind == token.EOF {
		where = " at end"
	}
	d := diag.Errorf(tok.Pos, "%s", message)
	d.Where = where
	p.diags = append(p.diags, d)
	panic(parseError{})
}

// isTypeAlias reports whether name is a user-declared type alias.
func (p *Parser) isTypeAlias(name string) bool {
	return p.aliases.Has(name)
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) declaration() ast.Stmt {
	if p.match(token.KW_IMPORT) {
		return p.importDeclaration()
	}
	if p.match(token.KW_FUNC) {
		return p.functionDeclaration("function")
	}
	if p.match(token.KW_ALIAS) {
		return p.aliasDeclaration()
	}

	// Namespaced type prefix: NS.ALIAS NAME
	if p.check(token.IDENT) && p.checkNext(token.DOT) && p.pos+3 < len(p.tokens) {
		if p.tokens[p.pos+2].Kind == token.IDENT && p.tokens[p.pos+3].Kind == token.IDENT {
			nsToken := p.next() // namespace name
			p.next()            // '.'
			return p.typeDeclaration(&nsToken, false)
		}
	}

	// A user-declared type alias works as a declaration prefix.
	if p.check(token.IDENT) && p.isTypeAlias(p.peek().Lexeme) {
		p.next()
		return p.typeDeclaration(nil, false)
	}

	if p.match(token.KW_DATA) {
		return p.typeDeclaration(nil, false)
	}

	return p.statement()
}

// importDeclaration parses: import("path")
func (p *Parser) importDeclaration() ast.Stmt {
	p.consume(token.LPAREN, "Expect '(' after import.")
	module := p.consume(token.STRING, "Expect module after import.")
	p.consume(token.RPAREN, "Expect ')' after import.")
	return &ast.ImportStmt{Module: module}
}

// functionDeclaration parses: NAME(params) [-> [NS.]TYPE] { body }
// The 'func' keyword has already been consumed.
func (p *Parser) functionDeclaration(kind string) *ast.FuncStmt {
	name := p.consume(token.IDENT, "Expect "+kind+" name.")
	p.consume(token.LPAREN, "Expect '(' before parameters")

	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			typeToken := token.Token{Kind: token.KW_DATA, Lexeme: "data", Pos: p.peek().Pos}

			if p.match(token.KW_DATA) {
				typeToken = p.previous()
			} else if p.check(token.IDENT) && p.isTypeAlias(p.peek().Lexeme) {
				typeToken = p.next()
			}

			if p.match(token.DOUBLE_COLON) {
				typeToken = p.consume(token.IDENT, "Expect type after '::'.")
			}

			paramName := p.consume(token.IDENT, "Expect parameter name.")
			var defaultVal ast.Expr
			if p.match(token.ASSIGN) {
				defaultVal = p.expression()
			}
			params = append(params, ast.Param{Name: paramName, Type: typeToken, Default: defaultVal})

			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")

	var returnTypeNS, returnType *token.Token
	if p.match(token.ARROW) {
		if p.check(token.IDENT) && p.checkNext(token.DOT) {
			ns := p.next()
			p.next() // '.'
			rt := p.consume(token.IDENT, "Expect return type after '.'.")
			returnTypeNS, returnType = &ns, &rt
		} else {
			rt := p.consume(token.IDENT, "Expect return type after '->'.")
			returnType = &rt
		}
	}

	p.consume(token.LBRACE, "Expect '{' before "+kind+" body.")
	body := p.block()

	return &ast.FuncStmt{
		Name:         name,
		Params:       params,
		Body:         body,
		ReturnTypeNS: returnTypeNS,
		ReturnType:   returnType,
	}
}

// aliasDeclaration parses: alias EXPR as NAME, alias data::TYPE as NAME
func (p *Parser) aliasDeclaration() ast.Stmt {
	var target ast.Expr
	isType := false

	switch {
	case p.match(token.KW_DATA):
		// alias data::num as int
		p.consume(token.DOUBLE_COLON, "Expect '::' after data")
		typeName := p.consume(token.IDENT, "Expect type name")
		target = &ast.VariableExpr{Name: typeName}
		isType = true
	case p.check(token.IDENT) && (p.isTypeAlias(p.peek().Lexeme) || IsBuiltinType(p.peek().Lexeme)):
		// alias int as integer — re-alias an existing type name
		target = &ast.VariableExpr{Name: p.next()}
		isType = true
	default:
		target = p.expression()
	}

	p.consume(token.KW_AS, "Expect 'as' after target.")
	name := p.consume(token.IDENT, "Expect alias name.")

	if isType {
		p.aliases.Add(name.Lexeme)
	}

	return &ast.AliasStmt{Target: target, Name: name, IsType: isType}
}

// typeDeclaration parses the tail of a variable declaration. The type
// prefix ('data', a type alias, or a namespace passed via prefix) has
// already been consumed.
func (p *Parser) typeDeclaration(prefix *token.Token, isPrivate bool) *ast.VarStmt {
	var typeToken token.Token
	var innerType *token.Token

	if prefix != nil {
		// NS.ALIAS NAME — the alias comes right after the dot.
		typeToken = *prefix
		inner := p.consume(token.IDENT, "Expect type name after '.'.")
		innerType = &inner
	} else {
		typeToken = p.previous()
		if p.match(token.DOUBLE_COLON) {
			inner := p.consume(token.IDENT, "Expect type after '::'.")
			innerType = &inner
		} else if typeToken.Kind == token.KW_DATA && p.check(token.IDENT) && p.checkNext(token.IDENT) &&
			(IsBuiltinType(p.peek().Lexeme) || p.isTypeAlias(p.peek().Lexeme)) {
			// data list xs — a bare type name works like ::type.
			inner := p.next()
			innerType = &inner
		}
	}

	name := p.consume(token.IDENT, "Expect variable name.")

	var initializer ast.Expr
	if p.match(token.ASSIGN) {
		initializer = p.expression()
	}

	return &ast.VarStmt{
		Type:        typeToken,
		InnerType:   innerType,
		Name:        name,
		Initializer: initializer,
		IsPrivate:   isPrivate,
	}
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.KW_DO):
		return p.untilStatement()
	case p.match(token.KW_WHILE):
		return p.whileStatement()
	case p.match(token.KW_FOR):
		return p.forStatement()
	case p.match(token.KW_IF):
		return p.ifStatement()
	case p.match(token.KW_RETURN):
		return p.returnStatement()
	case p.match(token.KW_NAMESPACE):
		return p.namespaceStatement()
	case p.match(token.KW_STOP):
		if p.loopDepth == 0 {
			p.error(p.previous(), "Cannot use 'stop' outside of a loop.")
		}
		return &ast.StopStmt{Keyword: p.previous()}
	case p.match(token.KW_SKIP):
		if p.loopDepth == 0 {
			p.error(p.previous(), "Cannot use 'skip' outside of a loop.")
		}
		return &ast.SkipStmt{Keyword: p.previous()}
	case p.match(token.KW_UNLESS):
		return p.unlessStatement()
	case p.match(token.LBRACE):
		return &ast.BlockStmt{Statements: p.block()}
	case p.match(token.KW_FOREACH):
		return p.foreachStatement()
	case p.match(token.KW_CLASS):
		return p.classStatement()
	case p.match(token.KW_ATTEMPT):
		return p.attemptStatement()
	case p.match(token.KW_PANIC):
		return p.panicStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) expressionStatement() ast.Stmt {
	return &ast.ExpressionStmt{Expression: p.expression()}
}

func (p *Parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.RBRACE) && !p.isAtEnd() {
		value = p.expression()
	}
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

func (p *Parser) ifStatement() ast.Stmt {
	if p.check(token.LBRACE) {
		p.error(p.previous(), "Expect condition before '{'.")
	}
	condition := p.expression()
	if !p.check(token.LBRACE) {
		p.error(p.previous(), "Expect '{' after if condition.")
	}
	thenBranch := p.statement()

	var elseBranch ast.Stmt
	if p.match(token.KW_ELSE) {
		elseBranch = p.statement()
	}
	return &ast.IfStmt{Condition: condition, Then: thenBranch, Else: elseBranch}
}

// unlessStatement desugars: unless COND STMT [else STMT]  →  if !COND STMT [else STMT]
func (p *Parser) unlessStatement() ast.Stmt {
	op := p.previous()
	op.Kind = token.BANG
	op.Lexeme = "!"

	if p.check(token.LBRACE) {
		p.error(p.previous(), "Expect condition before '{'.")
	}
	condition := p.expression()
	flipped := &ast.PrefixExpr{Op: op, Right: condition}

	if !p.check(token.LBRACE) {
		p.error(p.previous(), "Expect '{' after unless condition.")
	}
	thenBranch := p.statement()

	var elseBranch ast.Stmt
	if p.match(token.KW_ELSE) {
		elseBranch = p.statement()
	}
	return &ast.IfStmt{Condition: flipped, Then: thenBranch, Else: elseBranch}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	if p.check(token.LBRACE) {
		p.error(p.previous(), "Expect condition before '{'.")
	}
	condition := p.expression()
	body := p.statement()
	return &ast.WhileStmt{Condition: condition, Body: body}
}

// untilStatement desugars: do STMT until COND  →  { STMT; while !COND STMT }
// The same body node is shared by both positions.
func (p *Parser) untilStatement() ast.Stmt {
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	body := p.statement()
	p.consume(token.KW_UNTIL, "Expect 'until' after do block.")

	op := p.previous()
	op.Kind = token.BANG
	op.Lexeme = "!"

	if p.isAtEnd() {
		p.error(p.previous(), "Expect condition after 'until'.")
	}
	condition := p.expression()
	flipped := &ast.PrefixExpr{Op: op, Right: condition}

	loop := &ast.WhileStmt{Condition: flipped, Body: body}
	return &ast.BlockStmt{Statements: []ast.Stmt{body, loop}}
}

func (p *Parser) forStatement() ast.Stmt {
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	if p.check(token.LBRACE) {
		p.error(p.previous(), "Expect condition before '{'.")
	}

	var init ast.Stmt
	if p.match(token.KW_DATA) {
		init = p.typeDeclaration(nil, false)
	} else if !p.check(token.COMMA) {
		init = p.expressionStatement()
	}
	p.consume(token.COMMA, "Expect ',' after loop initializer.")

	var condition ast.Expr
	if !p.check(token.COMMA) {
		condition = p.expression()
	}
	p.consume(token.COMMA, "Expect ',' after loop condition.")

	var increment ast.Expr
	if !p.check(token.LBRACE) {
		increment = p.expression()
	}

	body := p.statement()
	return &ast.ForStmt{Init: init, Condition: condition, Increment: increment, Body: body}
}

func (p *Parser) foreachStatement() ast.Stmt {
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	p.consume(token.KW_DATA, "Expect 'data' in foreach loop.")

	var dataType *token.Token
	if p.match(token.DOUBLE_COLON) {
		dt := p.consume(token.IDENT, "Expect type name after '::'.")
		dataType = &dt
	}

	name := p.consume(token.IDENT, "Expect variable name.")
	p.consume(token.KW_IN, "Expect 'in' after variable name.")
	collection := p.expression()
	body := p.statement()

	return &ast.ForeachStmt{Name: name, DataType: dataType, Collection: collection, Body: body}
}

func (p *Parser) namespaceStatement() ast.Stmt {
	name := p.consume(token.IDENT, "Expect namespace name.")
	p.consume(token.LBRACE, "Expect '{' after namespace name.")
	return &ast.NamespaceStmt{Name: name, Body: p.block()}
}

func (p *Parser) classStatement() ast.Stmt {
	name := p.consume(token.IDENT, "Expect class name.")

	var superclass *ast.VariableExpr
	if p.match(token.KW_CHILDOF) {
		super := p.consume(token.IDENT, "Expect superclass name after 'childof'.")
		superclass = &ast.VariableExpr{Name: super}
	}
	p.consume(token.LBRACE, "Expect '{' before class body.")

	var methods []*ast.FuncStmt
	var fields []*ast.VarStmt

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		memberIsPrivate := p.match(token.KW_PRIVATE)

		switch {
		case p.match(token.KW_FUNC):
			method := p.functionDeclaration("method")
			method.IsPrivate = memberIsPrivate
			methods = append(methods, method)
		case p.check(token.KW_DATA) || (p.check(token.IDENT) && p.isTypeAlias(p.peek().Lexeme)):
			p.next()
			fields = append(fields, p.typeDeclaration(nil, memberIsPrivate))
		default:
			p.error(p.peek(), "Expect 'func' or 'data' inside class body.")
		}
	}

	p.consume(token.RBRACE, "Expect '}' after class body.")
	return &ast.ClassStmt{Name: name, Methods: methods, Fields: fields, Superclass: superclass}
}

func (p *Parser) attemptStatement() ast.Stmt {
	stmt := &ast.AttemptStmt{}

	p.consume(token.LBRACE, "Expect '{' before attempt block.")
	stmt.AttemptBody = p.block()

	if p.match(token.KW_FAIL) {
		stmt.HasFail = true
		stmt.ErrName = p.consume(token.IDENT, "Expect error name after 'fail'")
		if p.match(token.DOUBLE_COLON) {
			stmt.ErrType = p.consume(token.IDENT, "Expect error type after '::'.")
		}
		p.consume(token.LBRACE, "Expect '{' before fail block")
		stmt.FailBody = p.block()
	}
	if p.match(token.KW_FINALLY) {
		p.consume(token.LBRACE, "Expect '{' before finally block.")
		stmt.FinallyBody = p.block()
	}
	return stmt
}

func (p *Parser) panicStatement() ast.Stmt {
	keyword := p.previous()
	var message ast.Expr
	if !p.check(token.RBRACE) && !p.isAtEnd() {
		message = p.expression()
	}
	return &ast.PanicStmt{Keyword: keyword, Message: message}
}

func (p *Parser) block() []ast.Stmt {
	var statements []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		statements = append(statements, p.declaration())
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
	return statements
}

// ============================================================
// Expressions
// ============================================================

// expression parses an assignment and runs the result through the
// constant folder.
func (p *Parser) expression() ast.Expr {
	return optimizer.Fold(p.assignment())
}

func (p *Parser) assignment() ast.Expr {
	expr := p.logicalOr()

	if p.match(token.ASSIGN) {
		equals := p.previous()
		value := p.assignment()

		switch target := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{Name: target.Name, Value: value}
		case *ast.GetExpr:
			return &ast.SetExpr{Object: target.Object, Name: target.Name, Value: value}
		case *ast.IndexExpr:
			return &ast.IndexSetExpr{Object: target.Object, Bracket: target.Bracket, Index: target.Index, Value: value}
		}

		p.error(equals, "Invalid assignment target.")
	}
	return expr
}

func (p *Parser) logicalOr() ast.Expr {
	expr := p.logicalAnd()
	for p.match(token.KW_OR) {
		op := p.previous()
		right := p.logicalAnd()
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) logicalAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.KW_AND) {
		op := p.previous()
		right := p.equality()
		expr = &ast.LogicalExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.NEQ, token.EQ) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.bitwiseOr()
	for p.match(token.GT, token.GTE, token.LT, token.LTE) {
		op := p.previous()
		right := p.bitwiseOr()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) bitwiseOr() ast.Expr {
	expr := p.bitwiseXor()
	for p.match(token.PIPE) {
		op := p.previous()
		right := p.bitwiseXor()
		expr = &ast.BitwiseExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) bitwiseXor() ast.Expr {
	expr := p.bitwiseAnd()
	for p.match(token.CARET) {
		op := p.previous()
		right := p.bitwiseAnd()
		expr = &ast.BitwiseExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) bitwiseAnd() ast.Expr {
	expr := p.rangeExpr()
	for p.match(token.AMPERSAND) {
		op := p.previous()
		right := p.rangeExpr()
		expr = &ast.BitwiseExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) rangeExpr() ast.Expr {
	expr := p.shift()
	for p.match(token.KW_TO) {
		op := p.previous()
		right := p.shift()
		expr = &ast.RangeExpr{Low: expr, Op: op, High: right}
	}
	return expr
}

func (p *Parser) shift() ast.Expr {
	expr := p.addition()
	for p.match(token.SHL, token.SHR) {
		op := p.previous()
		right := p.addition()
		expr = &ast.ShiftExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) addition() ast.Expr {
	expr := p.multiplication()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.multiplication()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) multiplication() ast.Expr {
	expr := p.prefixed()
	for p.match(token.STAR, token.SLASH, token.PERCENT) {
		op := p.previous()
		right := p.prefixed()
		expr = &ast.BinaryExpr{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) prefixed() ast.Expr {
	if p.match(token.BANG, token.MINUS, token.TILDE, token.PLUS_PLUS, token.MINUS_MINUS) {
		op := p.previous()
		// Recurse so stacked prefixes like "!!x" work.
		right := p.prefixed()
		return &ast.PrefixExpr{Op: op, Right: right}
	}
	return p.postfixed()
}

func (p *Parser) postfixed() ast.Expr {
	expr := p.baseValue()

	for {
		switch {
		case p.match(token.LPAREN):
			expr = p.finishCall(expr)
		case p.match(token.LBRACKET):
			index := p.expression()
			bracket := p.consume(token.RBRACKET, "Expect ']' after index.")
			expr = &ast.IndexExpr{Object: expr, Index: index, Bracket: bracket}
		case p.match(token.DOT):
			name := p.consume(token.IDENT, "Expect property name after '.'.")
			expr = &ast.GetExpr{Object: expr, Name: name}
		case p.match(token.PLUS_PLUS, token.MINUS_MINUS):
			expr = &ast.PostfixExpr{Op: p.previous(), Left: expr}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.consume(token.RPAREN, "Expect ')' after arguments.")
	return &ast.CallExpr{Callee: callee, Args: args, Paren: paren}
}

func (p *Parser) baseValue() ast.Expr {
	switch {
	case p.match(token.NUMBER, token.STRING):
		return &ast.LiteralExpr{Value: p.previous()}

	case p.match(token.IDENT):
		return &ast.VariableExpr{Name: p.previous()}

	case p.match(token.KW_TRUE, token.KW_FALSE, token.KW_NULL):
		return &ast.LiteralExpr{Value: p.previous()}

	case p.match(token.LBRACKET):
		bracket := p.previous()
		var elements []ast.Expr
		if !p.check(token.RBRACKET) {
			for {
				elements = append(elements, p.expression())
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		p.consume(token.RBRACKET, "Expected ']' after list elements.")
		return &ast.ListExpr{Elements: elements, Bracket: bracket}

	case p.match(token.LPAREN):
		expr := p.expression()
		p.consume(token.RPAREN, "Expected ')' after expression.")
		return &ast.GroupExpr{Expression: expr}

	case p.match(token.LBRACE):
		var items []ast.MapItem
		if !p.check(token.RBRACE) {
			for {
				key := p.expression()
				p.consume(token.COLON, "Expected ':' after map key.")
				value := p.expression()
				items = append(items, ast.MapItem{Key: key, Value: value})
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		brace := p.consume(token.RBRACE, "Expected '}' after map elements.")
		return &ast.MapExpr{Brace: brace, Items: items}

	case p.match(token.KW_THIS):
		return &ast.ThisExpr{Keyword: p.previous()}
	}

	p.error(p.peek(), "Expected a value or '('")
	return nil
}
