package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// UnknownColumnError reports a condition naming a column the table lacks.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q", e.Name)
}

// Operator is a comparison inside a column condition.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

// String returns the operator as written in expressions
func (o Operator) String() string {
	switch o {
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	default:
		return "="
	}
}

// TermNode matches rows where any cell contains the term, case-insensitively.
type TermNode struct {
	Term    string
	Columns int
}

func (n *TermNode) Eval(row Row) bool {
	for col := 0; col < n.Columns; col++ {
		if strings.Contains(strings.ToLower(row.Text(col)), n.Term) {
			return true
		}
	}
	return false
}

// ConditionNode compares one column against a value.
type ConditionNode struct {
	Column   int
	Op       Operator
	Value    string
	number   float64
	isNumber bool
	wildcard bool
}

func (n *ConditionNode) Eval(row Row) bool {
	if n.isNumber {
		v := row.Number(n.Column)
		if !math.IsNaN(v) {
			return compareFloat(v, n.number, n.Op)
		}
		// A cell without a number never satisfies a numeric ordering
		if n.Op != OpEqual && n.Op != OpNotEqual {
			return false
		}
	}

	text := row.Text(n.Column)
	switch n.Op {
	case OpEqual, OpNotEqual:
		var eq bool
		if n.wildcard {
			eq, _ = doublestar.Match(strings.ToLower(n.Value), strings.ToLower(text))
		} else {
			eq = strings.EqualFold(text, n.Value)
		}
		if n.Op == OpNotEqual {
			return !eq
		}
		return eq
	default:
		return compareString(text, n.Value, n.Op)
	}
}

// compileCondition turns a literal token into a TermNode or ConditionNode.
func compileCondition(literal string, columns []string) (ExprNode, error) {
	field, op, value, ok := splitCondition(literal)
	if !ok {
		return &TermNode{Term: strings.ToLower(unquote(literal)), Columns: len(columns)}, nil
	}

	name := unquote(field)
	if name == "" {
		return nil, fmt.Errorf("%w: condition %q has no column", ErrSyntax, literal)
	}
	col := -1
	for i, c := range columns {
		if c == name {
			col = i
			break
		}
	}
	if col < 0 {
		for i, c := range columns {
			if strings.EqualFold(c, name) {
				col = i
				break
			}
		}
	}
	if col < 0 {
		return nil, &UnknownColumnError{Name: name}
	}

	node := &ConditionNode{Column: col, Op: op, Value: unquote(value)}
	if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
		node.number = f
		node.isNumber = true
	}
	node.wildcard = strings.ContainsAny(node.Value, "*?")
	return node, nil
}

// splitCondition finds the first comparison operator outside quotes.
func splitCondition(s string) (field string, op Operator, value string, ok bool) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '!':
			if i+1 < len(s) && s[i+1] == '=' {
				return s[:i], OpNotEqual, s[i+2:], true
			}
		case '<':
			if i+1 < len(s) && s[i+1] == '=' {
				return s[:i], OpLessEqual, s[i+2:], true
			}
			return s[:i], OpLess, s[i+1:], true
		case '>':
			if i+1 < len(s) && s[i+1] == '=' {
				return s[:i], OpGreaterEqual, s[i+2:], true
			}
			return s[:i], OpGreater, s[i+1:], true
		case '=':
			return s[:i], OpEqual, s[i+1:], true
		}
	}
	return "", OpEqual, "", false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func compareFloat(a, b float64, op Operator) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpLess:
		return a < b
	case OpLessEqual:
		return a <= b
	case OpGreater:
		return a > b
	case OpGreaterEqual:
		return a >= b
	}
	return false
}

func compareString(a, b string, op Operator) bool {
	c := strings.Compare(a, b)
	switch op {
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	}
	return false
}
