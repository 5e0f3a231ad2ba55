package journal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EvaluateExpression evaluates an arithmetic amount expression such as
// "(5 + 3) * 2" or "$1,234.56 / 12". Currency prefixes and grouping commas
// are stripped before evaluation. Supported operators, loosest binding
// first: ^ (bitwise xor), + -, * /, ** (power), with unary - and ~.
// Identifiers and any other non-numeric token are rejected.
func EvaluateExpression(expr string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(expr)

	lex := &exprLexer{input: cleaned}

	result, err := lex.parseExpr(0)
	if err != nil {
		return decimal.Zero, err
	}

	if !lex.isAtEnd() {
		return decimal.Zero, fmt.Errorf("unexpected token at position %d in %q", lex.pos, expr)
	}

	return result, nil
}

// exprLexer is a cursor over a cleaned expression string. Parsing and
// evaluation happen in one pass; there is no AST.
type exprLexer struct {
	input string
	pos   int
}

func (l *exprLexer) skipWhitespace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
}

func (l *exprLexer) isAtEnd() bool {
	l.skipWhitespace()
	return l.pos >= len(l.input)
}

func (l *exprLexer) peek() byte {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// peekOp returns the operator at the cursor, or "" if the next token is not
// an operator. "**" is matched before "*".
func (l *exprLexer) peekOp() string {
	l.skipWhitespace()
	if strings.HasPrefix(l.input[l.pos:], "**") {
		return "**"
	}
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '+', '-', '*', '/', '^':
			return l.input[l.pos : l.pos+1]
		}
	}
	return ""
}

func (l *exprLexer) parseNumber() (decimal.Decimal, error) {
	l.skipWhitespace()
	start := l.pos

	foundDigit := false
	foundDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch >= '0' && ch <= '9' {
			foundDigit = true
			l.pos++
		} else if ch == '.' && !foundDot {
			foundDot = true
			l.pos++
		} else {
			break
		}
	}

	if !foundDigit {
		return decimal.Zero, fmt.Errorf("expected number at position %d", start)
	}

	numStr := l.input[start:l.pos]
	num, err := decimal.NewFromString(numStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", numStr, err)
	}

	return num, nil
}

// parsePrimary parses a number, a parenthesized expression, or a unary
// operation.
func (l *exprLexer) parsePrimary() (decimal.Decimal, error) {
	switch l.peek() {
	case '(':
		l.pos++
		result, err := l.parseExpr(0)
		if err != nil {
			return decimal.Zero, err
		}
		if l.peek() != ')' {
			return decimal.Zero, fmt.Errorf("expected ')' at position %d", l.pos)
		}
		l.pos++
		return result, nil

	case '-':
		l.pos++
		operand, err := l.parsePrimary()
		if err != nil {
			return decimal.Zero, err
		}
		return operand.Neg(), nil

	case '~':
		l.pos++
		operand, err := l.parsePrimary()
		if err != nil {
			return decimal.Zero, err
		}
		n, err := integralOperand(operand, "~")
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(^n), nil
	}

	return l.parseNumber()
}

// parseExpr is the Pratt parser core, handling operator precedence.
func (l *exprLexer) parseExpr(minPrec int) (decimal.Decimal, error) {
	left, err := l.parsePrimary()
	if err != nil {
		return decimal.Zero, err
	}

	for {
		op := l.peekOp()
		if op == "" {
			break
		}

		prec := precedence(op)
		if prec < minPrec {
			break
		}

		l.pos += len(op)

		// ** is right-associative, the rest are left-associative.
		nextMin := prec + 1
		if op == "**" {
			nextMin = prec
		}

		right, err := l.parseExpr(nextMin)
		if err != nil {
			return decimal.Zero, err
		}

		left, err = applyOp(left, op, right)
		if err != nil {
			return decimal.Zero, err
		}
	}

	return left, nil
}

func precedence(op string) int {
	switch op {
	case "^":
		return 1
	case "+", "-":
		return 2
	case "*", "/":
		return 3
	case "**":
		return 4
	default:
		return 0
	}
}

func applyOp(left decimal.Decimal, op string, right decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case "+":
		return left.Add(right), nil
	case "-":
		return left.Sub(right), nil
	case "*":
		return left.Mul(right), nil
	case "/":
		if right.IsZero() {
			return decimal.Zero, fmt.Errorf("division by zero")
		}
		return left.Div(right), nil
	case "**":
		return left.Pow(right), nil
	case "^":
		a, err := integralOperand(left, "^")
		if err != nil {
			return decimal.Zero, err
		}
		b, err := integralOperand(right, "^")
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(a ^ b), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown operator: %s", op)
	}
}

// integralOperand converts d to an int64 for the bitwise operators, which
// are defined on integers only.
func integralOperand(d decimal.Decimal, op string) (int64, error) {
	if !d.IsInteger() {
		return 0, fmt.Errorf("operator %s requires integer operands, got %s", op, d)
	}
	return d.IntPart(), nil
}
