package query

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

// sliceRow is a Row backed by display strings
type sliceRow []string

func (r sliceRow) Text(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

func (r sliceRow) Number(col int) float64 {
	f, err := strconv.ParseFloat(r.Text(col), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

var testColumns = []string{"machine", "temp", "status", "flow rate"}

// TestTokenizer tests the tokenization of filter expressions
func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "simple word",
			input: "pump",
			expected: []Token{
				{Type: TokenLiteral, Value: "pump"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "quoted field with OR",
			input: `"flow rate">3 OR "flow rate"<1`,
			expected: []Token{
				{Type: TokenLiteral, Value: `"flow rate">3`},
				{Type: TokenOR, Value: "OR"},
				{Type: TokenLiteral, Value: `"flow rate"<1`},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "complex expression",
			input: "(NOT pump OR valve) AND status=ok",
			expected: []Token{
				{Type: TokenLParen, Value: "("},
				{Type: TokenNOT, Value: "NOT"},
				{Type: TokenLiteral, Value: "pump"},
				{Type: TokenOR, Value: "OR"},
				{Type: TokenLiteral, Value: "valve"},
				{Type: TokenRParen, Value: ")"},
				{Type: TokenAND, Value: "AND"},
				{Type: TokenLiteral, Value: "status=ok"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "case insensitive operators",
			input: "pump or valve and not fan",
			expected: []Token{
				{Type: TokenLiteral, Value: "pump"},
				{Type: TokenOR, Value: "or"},
				{Type: TokenLiteral, Value: "valve"},
				{Type: TokenAND, Value: "and"},
				{Type: TokenNOT, Value: "not"},
				{Type: TokenLiteral, Value: "fan"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenizer := NewFilterExprTokenizer(tt.input)
			for i, expected := range tt.expected {
				tok := tokenizer.Next()
				if tok.Type != expected.Type {
					t.Errorf("token %d: expected type %v, got %v", i, expected.Type, tok.Type)
				}
				if tok.Value != expected.Value {
					t.Errorf("token %d: expected value %q, got %q", i, expected.Value, tok.Value)
				}
			}
		})
	}
}

// TestParseFilterExpression tests parsing and evaluation against rows
func TestParseFilterExpression(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		row      sliceRow
		expected bool
	}{
		{"term matches any column", "PUMP", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"term misses", "valve", sliceRow{"pump-1", "20", "ok", "2"}, false},
		{"numeric greater", "temp>15", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"numeric greater equal boundary", "temp>=20", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"numeric less fails", "temp<20", sliceRow{"pump-1", "20", "ok", "2"}, false},
		{"numeric equality on formatted value", "temp=20.0", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"string equality ignores case", "status=OK", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"not equal", "status!=ok", sliceRow{"pump-1", "20", "ok", "2"}, false},
		{"wildcard", "machine=pump*", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"quoted column", `"flow rate">1.5`, sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"column name case folded", "TEMP>10", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"and both", "temp>10 AND status=ok", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"and one fails", "temp>10 AND status=fault", sliceRow{"pump-1", "20", "ok", "2"}, false},
		{"or", "temp>100 OR status=ok", sliceRow{"pump-1", "20", "ok", "2"}, true},
		{"not", "NOT status=ok", sliceRow{"pump-1", "20", "fault", "2"}, true},
		{"nested", "(NOT pump OR valve) AND status=ok", sliceRow{"valve-2", "20", "ok", "2"}, true},
		{"precedence AND before OR", "temp>100 AND status=ok OR valve", sliceRow{"valve-2", "20", "fault", "2"}, true},
		{"missing numeric falls back to text", "temp>5", sliceRow{"pump-1", "", "ok", "2"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := ParseFilterExpression(tt.expr, testColumns)
			if err != nil {
				t.Fatalf("Failed to parse expression %q: %v", tt.expr, err)
			}
			if got := ast.Eval(tt.row); got != tt.expected {
				t.Errorf("Eval(%q, %v) = %v, expected %v", tt.expr, tt.row, got, tt.expected)
			}
		})
	}
}

func TestParseFilterExpressionErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", "   "},
		{"unbalanced", "(temp>5"},
		{"dangling operator", "temp>5 AND"},
		{"stray paren", "temp>5)"},
		{"missing column", "=5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilterExpression(tt.expr, testColumns)
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("Expected syntax error for %q, got %v", tt.expr, err)
			}
		})
	}

	_, err := ParseFilterExpression("pressure>5", testColumns)
	var unknown *UnknownColumnError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownColumnError, got %v", err)
	}
	if unknown.Name != "pressure" {
		t.Errorf("Expected column name pressure, got %q", unknown.Name)
	}
}
