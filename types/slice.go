// SPDX-License-Identifier: MIT
package types

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

type (
	// Int64Slice for `int64`, holding die rolls in roll order.
	Int64Slice []int64
)

// listSeparator separates the values rendered by `Int64Slice.String`.
const listSeparator = ", "

// String is the `fmt.Stringer` interface implementation for `Int64Slice`.
//
// Values are rendered in slice order as `[3, 17, 9]`; an empty slice renders as `[]`.
func (sl Int64Slice) String() string {
	var buffer strings.Builder
	buffer.Grow(len(sl)*4 + 2)

	buffer.WriteByte('[')
	for index := range sl {
		if index > 0 {
			buffer.WriteString(listSeparator)
		}
		buffer.WriteString(strconv.FormatInt(sl[index], 10))
	}
	buffer.WriteByte(']')

	return buffer.String()
}

// Sorted returns an ascending copy of the `Int64Slice`.
func (sl Int64Slice) Sorted() (dst Int64Slice) {
	dst = slices.Clone(sl)
	slices.Sort(dst)

	return
}

// Sum the values within [from, to).
//
// The total is exact, large pools of large dice overflow `int64`. The context is checked
// periodically for long ranges.
func (sl Int64Slice) Sum(ctx context.Context, from, to int) (total *big.Int, err error) {
	from, to = Clamp(from, 0, len(sl)), Clamp(to, 0, len(sl))

	total = new(big.Int)
	value := new(big.Int)
	for index := from; index < to; index++ {
		if index&checkMask == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}
		total.Add(total, value.SetInt64(sl[index]))
	}

	return
}

// checkMask sets how often long loops check for context cancellation.
const checkMask = 1<<10 - 1

// Clamp value to [low, high].
func Clamp[T constraints.Integer](value, low, high T) T {
	if value < low {
		return low
	}
	if value > high {
		return high
	}

	return value
}
