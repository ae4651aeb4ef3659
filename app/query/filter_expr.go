package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is wrapped by every malformed-expression error.
var ErrSyntax = errors.New("filter expression syntax error")

// TokenType represents the type of a token in the filter expression
type TokenType int

const (
	TokenLiteral TokenType = iota // A term or condition (e.g., "pump", "temp>=20")
	TokenAND                      // AND operator
	TokenOR                       // OR operator
	TokenNOT                      // NOT operator
	TokenLParen                   // Left parenthesis (
	TokenRParen                   // Right parenthesis )
	TokenEOF                      // End of expression
)

// Token represents a token in the filter expression
type Token struct {
	Type  TokenType
	Value string
}

// Row exposes one row of a table to the evaluator.
type Row interface {
	// Text returns the display form of a cell.
	Text(col int) string
	// Number returns the numeric projection of a cell (NaN when missing).
	Number(col int) float64
}

// ExprNode represents a node in the filter expression AST
type ExprNode interface {
	Eval(row Row) bool
}

// NotNode represents a NOT expression
type NotNode struct {
	Child ExprNode
}

func (n *NotNode) Eval(row Row) bool {
	return !n.Child.Eval(row)
}

// AndNode represents an AND expression
type AndNode struct {
	Left  ExprNode
	Right ExprNode
}

func (n *AndNode) Eval(row Row) bool {
	return n.Left.Eval(row) && n.Right.Eval(row)
}

// OrNode represents an OR expression
type OrNode struct {
	Left  ExprNode
	Right ExprNode
}

func (n *OrNode) Eval(row Row) bool {
	return n.Left.Eval(row) || n.Right.Eval(row)
}

// FilterExprTokenizer tokenizes a filter expression
type FilterExprTokenizer struct {
	input    string
	pos      int
	tokens   []Token
	tokenPos int
}

// NewFilterExprTokenizer creates a new tokenizer for a filter expression
func NewFilterExprTokenizer(input string) *FilterExprTokenizer {
	t := &FilterExprTokenizer{input: input}
	t.tokenize()
	return t
}

func (t *FilterExprTokenizer) tokenize() {
	t.tokens = nil
	t.pos = 0

	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if isWhitespace(c) {
			t.pos++
			continue
		}
		if c == '(' {
			t.tokens = append(t.tokens, Token{Type: TokenLParen, Value: "("})
			t.pos++
			continue
		}
		if c == ')' {
			t.tokens = append(t.tokens, Token{Type: TokenRParen, Value: ")"})
			t.pos++
			continue
		}

		// A word runs up to whitespace or a parenthesis; quoted sections such
		// as "flow rate">3 are kept intact.
		start := t.pos
		for t.pos < len(t.input) && !isWhitespace(t.input[t.pos]) && t.input[t.pos] != '(' && t.input[t.pos] != ')' {
			if t.input[t.pos] == '"' || t.input[t.pos] == '\'' {
				quote := t.input[t.pos]
				t.pos++
				for t.pos < len(t.input) && t.input[t.pos] != quote {
					t.pos++
				}
				if t.pos < len(t.input) {
					t.pos++
				}
				continue
			}
			t.pos++
		}

		word := t.input[start:t.pos]
		switch strings.ToUpper(word) {
		case "AND":
			t.tokens = append(t.tokens, Token{Type: TokenAND, Value: word})
		case "OR":
			t.tokens = append(t.tokens, Token{Type: TokenOR, Value: word})
		case "NOT":
			t.tokens = append(t.tokens, Token{Type: TokenNOT, Value: word})
		default:
			if word != "" {
				t.tokens = append(t.tokens, Token{Type: TokenLiteral, Value: word})
			}
		}
	}

	t.tokens = append(t.tokens, Token{Type: TokenEOF, Value: ""})
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Peek returns the current token without consuming it
func (t *FilterExprTokenizer) Peek() Token {
	if t.tokenPos >= len(t.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return t.tokens[t.tokenPos]
}

// Next returns the current token and advances to the next
func (t *FilterExprTokenizer) Next() Token {
	tok := t.Peek()
	t.tokenPos++
	return tok
}

// FilterExprParser parses a filter expression into an AST bound to a set of columns
type FilterExprParser struct {
	tokenizer *FilterExprTokenizer
	columns   []string
}

// NewFilterExprParser creates a new parser. Column names in conditions are
// resolved against columns.
func NewFilterExprParser(input string, columns []string) *FilterExprParser {
	return &FilterExprParser{
		tokenizer: NewFilterExprTokenizer(input),
		columns:   columns,
	}
}

// Parse parses the whole expression.
func (p *FilterExprParser) Parse() (ExprNode, error) {
	if p.tokenizer.Peek().Type == TokenEOF {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.tokenizer.Peek(); tok.Type != TokenEOF {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.Value)
	}
	return node, nil
}

// parseOr parses OR expressions (lowest precedence)
func (p *FilterExprParser) parseOr() (ExprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tokenizer.Peek().Type == TokenOR {
		p.tokenizer.Next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrNode{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd parses AND expressions (medium precedence)
func (p *FilterExprParser) parseAnd() (ExprNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tokenizer.Peek().Type == TokenAND {
		p.tokenizer.Next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &AndNode{Left: left, Right: right}
	}
	return left, nil
}

// parseNot parses NOT expressions (high precedence)
func (p *FilterExprParser) parseNot() (ExprNode, error) {
	if p.tokenizer.Peek().Type == TokenNOT {
		p.tokenizer.Next()
		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotNode{Child: child}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses parenthesized expressions and literals
func (p *FilterExprParser) parsePrimary() (ExprNode, error) {
	tok := p.tokenizer.Peek()

	switch tok.Type {
	case TokenLParen:
		p.tokenizer.Next()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tokenizer.Peek().Type != TokenRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
		}
		p.tokenizer.Next()
		return node, nil
	case TokenLiteral:
		p.tokenizer.Next()
		return compileCondition(tok.Value, p.columns)
	case TokenEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, tok.Value)
	}
}

// ParseFilterExpression parses expr against the given column names.
func ParseFilterExpression(expr string, columns []string) (ExprNode, error) {
	return NewFilterExprParser(expr, columns).Parse()
}
