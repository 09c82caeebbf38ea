// Package optimizer performs the AST-to-AST constant-folding and
// dead-branch-elimination pass described in spec.md §4.3. It never fails,
// is conservative under the assumption that only Call and reactive
// operations are side-effecting, and is idempotent: Simplify(Simplify(p))
// produces a tree equal (node-for-node) to Simplify(p).
//
// Per spec.md §9's Open Question, constant-folded comparisons and
// logicals always emit the canonical integer literals "0"/"1" — never the
// text "true"/"false" — so every literal the optimizer produces parses
// cleanly as a number downstream.
package optimizer

import (
	"math"
	"strconv"

	"github.com/cesium-lang/cesium/internal/ast"
)

// Simplify returns a new, optimized Program. The input tree is never
// mutated; unsupported or non-foldable nodes pass through as freshly
// rebuilt copies sharing leaf literals with the input.
func Simplify(prog *ast.Program) *ast.Program {
	return &ast.Program{Statements: simplifyStatements(prog.Statements)}
}

// simplifyStatements simplifies each statement and drops any that
// simplify away entirely (a dropped while(false), or a dead if-branch
// with no else).
func simplifyStatements(stmts []ast.Statement) []ast.Statement {
	var out []ast.Statement
	for _, s := range stmts {
		if simplified, keep := simplifyStatement(s); keep {
			out = append(out, simplified)
		}
	}
	return out
}

func simplifyBlock(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	return &ast.Block{Statements: simplifyStatements(b.Statements), LineNo: b.LineNo}
}

func simplifyStatement(stmt ast.Statement) (ast.Statement, bool) {
	switch s := stmt.(type) {
	case *ast.Block:
		return simplifyBlock(s), true

	case *ast.VarDecl:
		var init ast.Expression
		if s.Init != nil {
			init = simplifyExpr(s.Init)
		}
		return &ast.VarDecl{Type: s.Type, Name: s.Name, Init: init, LineNo: s.LineNo}, true

	case *ast.FuncDecl:
		return &ast.FuncDecl{Name: s.Name, Params: s.Params, Body: simplifyBlock(s.Body), LineNo: s.LineNo}, true

	case *ast.Assignment:
		return &ast.Assignment{Name: s.Name, Value: simplifyExpr(s.Value), LineNo: s.LineNo}, true

	case *ast.ExpressionStmt:
		return &ast.ExpressionStmt{Expr: simplifyExpr(s.Expr), LineNo: s.LineNo}, true

	case *ast.Print:
		return &ast.Print{Expr: simplifyExpr(s.Expr), LineNo: s.LineNo}, true

	case *ast.Return:
		return &ast.Return{Expr: simplifyExpr(s.Expr), LineNo: s.LineNo}, true

	case *ast.If:
		return simplifyIf(s)

	case *ast.While:
		return simplifyWhile(s)

	case *ast.For:
		return simplifyFor(s)

	default:
		return stmt, true
	}
}

// simplifyIf folds a dead branch away when the condition reduces to a
// numeric-literal truth value; otherwise both branches are simplified
// in place.
func simplifyIf(s *ast.If) (ast.Statement, bool) {
	cond := simplifyExpr(s.Cond)
	if truth, ok := literalTruth(cond); ok {
		if truth {
			return simplifyBlock(s.Then), true
		}
		if s.Else != nil {
			return simplifyBlock(s.Else), true
		}
		return nil, false
	}
	var elseBlock *ast.Block
	if s.Else != nil {
		elseBlock = simplifyBlock(s.Else)
	}
	return &ast.If{Cond: cond, Then: simplifyBlock(s.Then), Else: elseBlock, LineNo: s.LineNo}, true
}

// simplifyWhile drops while(false) entirely.
func simplifyWhile(s *ast.While) (ast.Statement, bool) {
	cond := simplifyExpr(s.Cond)
	if truth, ok := literalTruth(cond); ok && !truth {
		return nil, false
	}
	return &ast.While{Cond: cond, Body: simplifyBlock(s.Body), LineNo: s.LineNo}, true
}

// simplifyFor reduces for(init; false; update) to a block containing only
// the (simplified) init statement, preserving its declaration and scoping
// effect at that statement position. Any other condition (or an absent
// one, which means "always true") leaves the loop in place.
func simplifyFor(s *ast.For) (ast.Statement, bool) {
	var init ast.Statement
	if s.Init != nil {
		init, _ = simplifyStatement(s.Init)
	}

	if s.Cond != nil {
		cond := simplifyExpr(s.Cond)
		if truth, ok := literalTruth(cond); ok && !truth {
			if init != nil {
				return &ast.Block{Statements: []ast.Statement{init}, LineNo: s.LineNo}, true
			}
			return &ast.Block{LineNo: s.LineNo}, true
		}
		var update ast.Statement
		if s.Update != nil {
			update, _ = simplifyStatement(s.Update)
		}
		return &ast.For{Init: init, Cond: cond, Update: update, Body: simplifyBlock(s.Body), LineNo: s.LineNo}, true
	}

	var update ast.Statement
	if s.Update != nil {
		update, _ = simplifyStatement(s.Update)
	}
	return &ast.For{Init: init, Cond: nil, Update: update, Body: simplifyBlock(s.Body), LineNo: s.LineNo}, true
}

func simplifyExpr(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Literal:
		return e

	case *ast.Variable:
		return e

	case *ast.Unary:
		operand := simplifyExpr(e.Operand)
		if lit, ok := numericLiteral(operand); ok {
			if folded, ok := foldUnary(e.Op, lit); ok {
				return folded
			}
		}
		return &ast.Unary{Op: e.Op, Operand: operand, LineNo: e.LineNo}

	case *ast.Binary:
		left := simplifyExpr(e.Left)
		right := simplifyExpr(e.Right)
		if leftLit, lok := numericLiteral(left); lok {
			if rightLit, rok := numericLiteral(right); rok {
				if folded, ok := foldBinary(leftLit, e.Op, rightLit, e.LineNo); ok {
					return folded
				}
			}
		}
		return &ast.Binary{Left: left, Op: e.Op, Right: right, LineNo: e.LineNo}

	case *ast.Call:
		args := make([]ast.Expression, len(e.Args))
		for i, a := range e.Args {
			args[i] = simplifyExpr(a)
		}
		return &ast.Call{Name: e.Name, Args: args, LineNo: e.LineNo}

	default:
		return expr
	}
}

// numericLiteral reports whether expr is an int or float Literal.
func numericLiteral(expr ast.Expression) (*ast.Literal, bool) {
	lit, ok := expr.(*ast.Literal)
	if !ok {
		return nil, false
	}
	if lit.Kind != "int" && lit.Kind != "float" {
		return nil, false
	}
	return lit, true
}

// literalTruth evaluates the truth of a numeric-literal expression per the
// spec's rule (non-zero is true); a boolean literal is true iff it is
// "true". Non-literal expressions are not evaluated and report ok=false.
func literalTruth(expr ast.Expression) (truth bool, ok bool) {
	if b, isLit := expr.(*ast.Literal); isLit && b.Kind == "bool" {
		return b.Lexeme == "true", true
	}
	lit, ok := numericLiteral(expr)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseFloat(lit.Lexeme, 64)
	if err != nil {
		return false, false
	}
	return v != 0, true
}

func foldUnary(op string, operand *ast.Literal) (*ast.Literal, bool) {
	v, err := strconv.ParseFloat(operand.Lexeme, 64)
	if err != nil {
		return nil, false
	}
	switch op {
	case "-":
		return &ast.Literal{Kind: operand.Kind, Lexeme: formatNumber(-v, operand.Kind == "int"), LineNo: operand.LineNo}, true
	case "!":
		return boolLiteral(v == 0, operand.LineNo), true
	default:
		return nil, false
	}
}

func foldBinary(left *ast.Literal, op string, right *ast.Literal, line int) (*ast.Literal, bool) {
	lv, lerr := strconv.ParseFloat(left.Lexeme, 64)
	rv, rerr := strconv.ParseFloat(right.Lexeme, 64)
	if lerr != nil || rerr != nil {
		return nil, false
	}
	bothInt := left.Kind == "int" && right.Kind == "int"

	switch op {
	case "+", "-", "*", "/":
		if op == "/" && rv == 0 {
			// Division by zero leaves the expression intact.
			return nil, false
		}
		var result float64
		switch op {
		case "+":
			result = lv + rv
		case "-":
			result = lv - rv
		case "*":
			result = lv * rv
		case "/":
			result = lv / rv
		}
		isInt := bothInt && result == math.Trunc(result)
		return &ast.Literal{Kind: kindOf(isInt), Lexeme: formatNumber(result, isInt), LineNo: line}, true

	case "==":
		return boolLiteral(lv == rv, line), true
	case "!=":
		return boolLiteral(lv != rv, line), true
	case "<":
		return boolLiteral(lv < rv, line), true
	case ">":
		return boolLiteral(lv > rv, line), true
	case "<=":
		return boolLiteral(lv <= rv, line), true
	case ">=":
		return boolLiteral(lv >= rv, line), true
	case "&&":
		return boolLiteral(lv != 0 && rv != 0, line), true
	case "||":
		return boolLiteral(lv != 0 || rv != 0, line), true
	default:
		return nil, false
	}
}

func kindOf(isInt bool) string {
	if isInt {
		return "int"
	}
	return "float"
}

// boolLiteral encodes a folded comparison/logical result as the canonical
// "0"/"1" integer literal (see the package doc comment).
func boolLiteral(v bool, line int) *ast.Literal {
	lexeme := "0"
	if v {
		lexeme = "1"
	}
	return &ast.Literal{Kind: "int", Lexeme: lexeme, LineNo: line}
}

func formatNumber(v float64, isInt bool) string {
	if isInt {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}
