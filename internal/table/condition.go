package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadExpression is returned for conditions or expressions that cannot be
// parsed or evaluated.
var ErrBadExpression = errors.New("bad expression")

// Operator compares a column value with a literal.
type Operator string

const (
	OpGT Operator = ">"
	OpGE Operator = ">="
	OpLT Operator = "<"
	OpLE Operator = "<="
	OpEQ Operator = "=="
	OpNE Operator = "!="
)

// two-character operators first so ">=" is not read as ">".
var operators = []Operator{OpGE, OpLE, OpEQ, OpNE, OpGT, OpLT}

// Condition is a row predicate of the form "column op literal".
type Condition struct {
	Column string
	Op     Operator
	Value  any
}

// ParseCondition parses "column op literal". The literal is a number, or a
// string optionally wrapped in single or double quotes.
func ParseCondition(s string) (Condition, error) {
	for _, op := range operators {
		i := strings.Index(s, string(op))
		if i < 0 {
			continue
		}
		col := strings.TrimSpace(s[:i])
		lit := strings.TrimSpace(s[i+len(op):])
		if col == "" || lit == "" {
			break
		}
		return Condition{Column: col, Op: op, Value: parseLiteral(lit)}, nil
	}
	return Condition{}, fmt.Errorf("condition %q: %w", s, ErrBadExpression)
}

func parseLiteral(s string) any {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Column, c.Op, c.Value)
}

// Match evaluates the condition against a row. Missing values only match !=.
func (c Condition) Match(r Row) bool {
	v := r[c.Column]
	if isMissing(v) {
		return c.Op == OpNE
	}
	cmp := compare(v, c.Value)
	switch c.Op {
	case OpGT:
		return cmp > 0
	case OpGE:
		return cmp >= 0
	case OpLT:
		return cmp < 0
	case OpLE:
		return cmp <= 0
	case OpEQ:
		return cmp == 0
	case OpNE:
		return cmp != 0
	}
	return false
}

// Expr computes a value from a row.
type Expr func(Row) (any, error)

// ParseExpr parses a single operand or "operand op operand" where op is one
// of + - * / and each operand is a column name or a numeric literal.
func ParseExpr(s string) (Expr, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return operand(fields[0]), nil
	case 3:
		left, right := operand(fields[0]), operand(fields[2])
		op := fields[1]
		if !strings.Contains("+-*/", op) || len(op) != 1 {
			break
		}
		return func(r Row) (any, error) {
			a, err := left(r)
			if err != nil {
				return nil, err
			}
			b, err := right(r)
			if err != nil {
				return nil, err
			}
			return arith(op, a, b)
		}, nil
	}
	return nil, fmt.Errorf("expression %q: %w", s, ErrBadExpression)
}

func operand(tok string) Expr {
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return func(Row) (any, error) { return f, nil }
	}
	return func(r Row) (any, error) {
		v, ok := r[tok]
		if !ok {
			return nil, fmt.Errorf("%q: %w", tok, ErrUnknownColumn)
		}
		return v, nil
	}
}

func arith(op string, a, b any) (any, error) {
	if isMissing(a) || isMissing(b) {
		return nil, nil
	}
	x, ok1 := toFloat(a)
	y, ok2 := toFloat(b)
	if !ok1 || !ok2 {
		if op == "+" {
			return format(a) + format(b), nil
		}
		return nil, fmt.Errorf("%v %s %v: %w", a, op, b, ErrBadExpression)
	}
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	}
	if y == 0 {
		return nil, nil
	}
	return x / y, nil
}
