// Package parser implements Cesium's LL(1) recursive-descent parser. It
// generalizes the teacher's two-token-lookahead loop (curTok/peekTok) and
// precedence-table style to Cesium's statement/expression grammar — see
// spec.md §4.2 for the authoritative grammar this file implements. Rather
// than a two-variable streaming window, New lexes the whole input upfront
// and the parser indexes into the resulting token slice (cur/peek).
package parser

import (
	"strings"

	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/diagnostics"
	"github.com/cesium-lang/cesium/internal/lexer"
	"github.com/cesium-lang/cesium/internal/token"
)

// Parser consumes a token stream and produces a *ast.Program. There is no
// error recovery: the first grammar violation raises a ParseError.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New lexes src and returns a Parser over its token stream, or the lexical
// error that aborted scanning.
func New(src string) (*Parser, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return &Parser{tokens: toks}, nil
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func describe(t token.Token) string {
	if t.Kind == token.EOF {
		return "EOF"
	}
	return t.Lexeme
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return diagnostics.NewParseError(p.cur().Line, format, args...)
}

// expectDelim consumes the current token if it is the delimiter lex, else
// raises a ParseError naming what was expected and what was found.
func (p *Parser) expectDelim(lex string) (token.Token, error) {
	t := p.cur()
	if t.Kind == token.Delimiter && t.Lexeme == lex {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected %q, found %q", lex, describe(t))
}

func (p *Parser) expectKeyword(lex string) (token.Token, error) {
	t := p.cur()
	if t.Kind == token.Keyword && t.Lexeme == lex {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected %q, found %q", lex, describe(t))
}

func (p *Parser) expectIdentifier() (token.Token, error) {
	t := p.cur()
	if t.Kind == token.Identifier {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected identifier, found %q", describe(t))
}

func (p *Parser) isOperator(lex string) bool {
	t := p.cur()
	return t.Kind == token.Operator && t.Lexeme == lex
}

func (p *Parser) isDelimiter(lex string) bool {
	t := p.cur()
	return t.Kind == token.Delimiter && t.Lexeme == lex
}

func (p *Parser) isKeyword(lex string) bool {
	t := p.cur()
	return t.Kind == token.Keyword && t.Lexeme == lex
}

// Parse parses the full token stream into a Program.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur().Kind != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// parseStatement dispatches on one token of lookahead, per spec.md §4.2.
func (p *Parser) parseStatement() (ast.Statement, error) {
	t := p.cur()

	switch {
	case t.Kind == token.Keyword && t.Lexeme == "if":
		return p.parseIf()
	case t.Kind == token.Keyword && t.Lexeme == "for":
		return p.parseFor()
	case t.Kind == token.Keyword && t.Lexeme == "while":
		return p.parseWhile()
	case t.Kind == token.Keyword && t.Lexeme == "function":
		return p.parseFuncDecl()
	case t.Kind == token.Keyword && t.Lexeme == "return":
		return p.parseReturn()
	case t.Kind == token.Keyword && t.Lexeme == "print":
		return p.parsePrint()
	case t.Kind == token.Keyword && token.TypeNames[t.Lexeme]:
		return p.parseVarDecl()
	case t.Kind == token.Delimiter && t.Lexeme == "{":
		return p.parseBlock()
	case t.Kind == token.Identifier:
		if p.peek().Kind == token.Operator && p.peek().Lexeme == "=" {
			return p.parseAssignment()
		}
		return p.parseExpressionStatement()
	default:
		return nil, p.errorf("unexpected token %q at start of statement", describe(t))
	}
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expectDelim("{")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{LineNo: open.Line}
	for !p.isDelimiter("}") {
		if p.cur().Kind == token.EOF {
			return nil, p.errorf("unterminated block, expected \"}\", found EOF")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if _, err := p.expectDelim("}"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	typTok := p.advance()
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Type: typTok.Lexeme, Name: nameTok.Lexeme, LineNo: typTok.Line}
	if p.isOperator("=") {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Init = expr
	}
	if _, err := p.expectDelim(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseAssignment() (*ast.Assignment, error) {
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOperator("="); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(";"); err != nil {
		return nil, err
	}
	return &ast.Assignment{Name: nameTok.Lexeme, Value: expr, LineNo: nameTok.Line}, nil
}

// parseAssignmentNoSemi parses an assignment without a trailing ';', for
// use inside a for-loop's init/update clauses.
func (p *Parser) parseAssignmentNoSemi() (*ast.Assignment, error) {
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOperator("="); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Name: nameTok.Lexeme, Value: expr, LineNo: nameTok.Line}, nil
}

func (p *Parser) parseVarDeclNoSemi() (*ast.VarDecl, error) {
	typTok := p.advance()
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Type: typTok.Lexeme, Name: nameTok.Lexeme, LineNo: typTok.Line}
	if p.isOperator("=") {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Init = expr
	}
	return decl, nil
}

func (p *Parser) expectOperator(lex string) (token.Token, error) {
	t := p.cur()
	if t.Kind == token.Operator && t.Lexeme == lex {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected %q, found %q", lex, describe(t))
}

func (p *Parser) parseExpressionStatement() (*ast.ExpressionStmt, error) {
	line := p.cur().Line
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(";"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Expr: expr, LineNo: line}, nil
}

func (p *Parser) parsePrint() (*ast.Print, error) {
	kw, err := p.expectKeyword("print")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim("("); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(";"); err != nil {
		return nil, err
	}
	return &ast.Print{Expr: expr, LineNo: kw.Line}, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	kw, err := p.expectKeyword("return")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(";"); err != nil {
		return nil, err
	}
	return &ast.Return{Expr: expr, LineNo: kw.Line}, nil
}

func (p *Parser) parseIf() (*ast.If, error) {
	kw, err := p.expectKeyword("if")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Cond: cond, Then: then, LineNo: kw.Line}
	if p.isKeyword("else") {
		p.advance()
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBlock
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	kw, err := p.expectKeyword("while")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, LineNo: kw.Line}, nil
}

func (p *Parser) parseFor() (*ast.For, error) {
	kw, err := p.expectKeyword("for")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim("("); err != nil {
		return nil, err
	}

	stmt := &ast.For{LineNo: kw.Line}

	// ForInit := VarDecl | Assignment | ε
	if !p.isDelimiter(";") {
		if p.cur().Kind == token.Keyword && token.TypeNames[p.cur().Lexeme] {
			init, err := p.parseVarDeclNoSemi()
			if err != nil {
				return nil, err
			}
			stmt.Init = init
		} else {
			init, err := p.parseAssignmentNoSemi()
			if err != nil {
				return nil, err
			}
			stmt.Init = init
		}
	}
	if _, err := p.expectDelim(";"); err != nil {
		return nil, err
	}

	if !p.isDelimiter(";") {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if _, err := p.expectDelim(";"); err != nil {
		return nil, err
	}

	// ForUpdate := Assignment | ε
	if !p.isDelimiter(")") {
		update, err := p.parseAssignmentNoSemi()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if _, err := p.expectDelim(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseFuncDecl() (*ast.FuncDecl, error) {
	kw, err := p.expectKeyword("function")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim("("); err != nil {
		return nil, err
	}
	var params []ast.Parameter
	if !p.isDelimiter(")") {
		for {
			if p.cur().Kind != token.Keyword || !token.TypeNames[p.cur().Lexeme] {
				return nil, p.errorf("expected parameter type, found %q", describe(p.cur()))
			}
			typTok := p.advance()
			nameTok, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Parameter{Type: typTok.Lexeme, Name: nameTok.Lexeme})
			if p.isDelimiter(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Name: nameTok.Lexeme, Params: params, Body: body, LineNo: kw.Line}, nil
}

// --- Expressions: precedence climbing, lowest to highest: || && == != <
// > <= >= + - * / unary primary. All binary operators are left-associative.

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	return p.parseLeftAssocBinary([]string{"||"}, p.parseAnd)
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	return p.parseLeftAssocBinary([]string{"&&"}, p.parseEquality)
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseLeftAssocBinary([]string{"==", "!="}, p.parseRelational)
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	return p.parseLeftAssocBinary([]string{"<", ">", "<=", ">="}, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseLeftAssocBinary([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseLeftAssocBinary([]string{"*", "/"}, p.parseUnary)
}

func (p *Parser) parseLeftAssocBinary(ops []string, next func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Operator && contains(ops, p.cur().Lexeme) {
		opTok := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: opTok.Lexeme, Right: right, LineNo: opTok.Line}
	}
	return left, nil
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.cur().Kind == token.Operator && (p.cur().Lexeme == "!" || p.cur().Lexeme == "-") {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: opTok.Lexeme, Operand: operand, LineNo: opTok.Line}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	t := p.cur()
	switch {
	case t.Kind == token.NumericLiteral:
		p.advance()
		kind := "int"
		if strings.Contains(t.Lexeme, ".") {
			kind = "float"
		}
		return &ast.Literal{Kind: kind, Lexeme: t.Lexeme, LineNo: t.Line}, nil
	case t.Kind == token.StringLiteral:
		p.advance()
		return &ast.Literal{Kind: "string", Lexeme: t.Lexeme, LineNo: t.Line}, nil
	case t.Kind == token.BooleanLiteral:
		p.advance()
		return &ast.Literal{Kind: "bool", Lexeme: t.Lexeme, LineNo: t.Line}, nil
	case t.Kind == token.Identifier:
		p.advance()
		if p.isDelimiter("(") {
			return p.parseCallArgs(t)
		}
		return &ast.Variable{Name: t.Lexeme, LineNo: t.Line}, nil
	case t.Kind == token.Delimiter && t.Lexeme == "(":
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectDelim(")"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf("unexpected token %q in expression", describe(t))
	}
}

func (p *Parser) parseCallArgs(name token.Token) (ast.Expression, error) {
	if _, err := p.expectDelim("("); err != nil {
		return nil, err
	}
	var args []ast.Expression
	if !p.isDelimiter(")") {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.isDelimiter(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expectDelim(")"); err != nil {
		return nil, err
	}
	return &ast.Call{Name: name.Lexeme, Args: args, LineNo: name.Line}, nil
}
