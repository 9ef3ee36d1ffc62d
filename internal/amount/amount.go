// Package amount parses user-entered money quantities.
package amount

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const invalidMessage = "Amount must be a positive number"

// ValidationError reports user input that cannot be used as an amount.
type ValidationError struct {
	Input string
}

func (e *ValidationError) Error() string { return invalidMessage }

// Parse turns raw input into a strictly positive decimal.
// Deposit, withdraw and transfer all share this policy.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &ValidationError{Input: raw}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Input: raw}
	}
	if !d.IsPositive() {
		return decimal.Zero, &ValidationError{Input: raw}
	}
	// The value must also survive as a float64: overflow and underflow
	// exponents are rejected rather than expanded digit by digit.
	if f, err := strconv.ParseFloat(s, 64); err != nil || math.IsInf(f, 0) || f == 0 {
		return decimal.Zero, &ValidationError{Input: raw}
	}
	return d, nil
}

// Format renders d the way it is sent to the server.
func Format(d decimal.Decimal) string {
	return d.String()
}
