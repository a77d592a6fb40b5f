// SPDX-License-Identifier: MIT
package dicemice

import (
	"errors"
	"fmt"
)

type (
	// SyntaxError reports an item that made a numeric span irreducible.
	//
	// It is recovered in place: the span is replaced by SyntaxMarker.
	SyntaxError struct {
		Val string // The offending item's text
		Pos int    // The offending item's position, (in runes)

		// index of the offending item within its span.
		index int
	}
)

// Evaluation errors.
var (
	ErrSyntax     = errors.New("syntax error")
	ErrTimeout    = errors.New("evaluation timed out")
	ErrOverloaded = errors.New("evaluation pool overloaded")
	ErrPanicked   = errors.New("recovery from panic")

	// errIncomplete signals a span ended while an operand or closing bracket was expected.
	errIncomplete = errors.New("incomplete expression")
)

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: unexpected %q at %d", ErrSyntax, e.Val, e.Pos)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }
