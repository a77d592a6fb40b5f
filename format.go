// SPDX-License-Identifier: MIT
package dicemice

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

type (
	// Numeric is an evaluated sub-expression: the text shown & its result.
	//
	// Result is NaN after a division by zero.
	Numeric struct {
		Text   string
		Result float64

		// exact holds the integer result while no division or fractional literal is involved.
		exact *big.Int
	}
)

const (
	// DivisionByZeroMarker replaces the result of a division by zero.
	DivisionByZeroMarker = "[DIVISION BY ZERO]"

	// SyntaxMarker replaces a numeric span that could not be reduced.
	SyntaxMarker = "[SYNTAX ERROR]"

	// StrikeMarker wraps the text of a zero divisor.
	StrikeMarker = "~~"

	emptyRoll = "[]"
	equals    = " = "
)

// Format renders a Numeric as it appears in the output text.
//
// Text that is a bare literal or an empty roll is returned as is; anything else is suffixed
// with its result.
func Format(v Numeric) string {
	if v.Text == emptyRoll || isDigits(v.Text) {
		return v.Text
	}

	if v.exact != nil {
		return v.Text + equals + v.exact.String()
	}

	return v.Text + equals + formatResult(v.Result)
}

// formatResult renders whole numbers without a decimal point & others to at most two decimals.
func formatResult(result float64) (s string) {
	switch {
	case math.IsNaN(result):
		return DivisionByZeroMarker
	case result == math.Trunc(result):
		s = strconv.FormatFloat(result, 'f', -1, 64)
	default:
		s = strconv.FormatFloat(result, 'f', 2, 64)
		s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	}

	if s == "-0" {
		s = "0"
	}

	return
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for index := 0; index < len(s); index++ {
		if s[index] < '0' || s[index] > '9' {
			return false
		}
	}

	return true
}
