package core

// convert.go provides type coercion for raw dataset cells.
//
// These functions handle the messy reality of exported CSV data:
//   - Quantities arriving as "1.0"-style floats (coerced via truncation)
//   - Currency symbols and thousands separators in prices
//   - Accounting format negatives "(123.45)"
//   - Stray whitespace and Excel formula prefixes (="value")
//
// Empty cells coerce to the zero value; only non-coercible non-empty cells
// produce an error.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after
// cleanup. Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell normalizes a raw CSV cell: trims whitespace and strips the
// Excel formula prefix some exports wrap around values (="123").
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) > 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// ParseQuantity coerces a cell to an integer quantity. Float inputs such as
// "1.0" are accepted and truncated toward zero; negative quantities are valid
// (returns and cancellations). An empty cell is zero.
func ParseQuantity(s string) (int, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, nil
	}
	f, err := parseNumeric(s)
	if err != nil {
		return 0, &ValidationError{Field: FieldQuantity, Value: s, Message: "invalid number"}
	}
	return int(math.Trunc(f)), nil
}

// ParsePrice coerces a cell to a unit price. An empty cell is zero.
func ParsePrice(s string) (float64, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, nil
	}
	f, err := parseNumeric(s)
	if err != nil {
		return 0, &ValidationError{Field: FieldUnitPrice, Value: s, Message: "invalid number"}
	}
	return f, nil
}

// parseNumeric parses a numeric string after stripping currency symbols,
// thousands separators, and accounting-format parentheses.
func parseNumeric(s string) (float64, error) {
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// FormatInt renders an integer for CSV output.
func FormatInt(i int) string {
	return strconv.Itoa(i)
}

// FormatFloat renders a float for CSV output using the shortest exact
// representation.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
