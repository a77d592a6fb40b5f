// SPDX-License-Identifier: MIT

// Package dice resolves lexed die specifications & rolls them.
package dice

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gitlab.com/fisherprime/dicemice/lexer"
	"gitlab.com/fisherprime/dicemice/types"
)

type (
	// Direction selects which extreme of a sorted pool is kept.
	Direction int

	// Spec is a resolved die specification.
	//
	// Keep is always within [0, Count].
	Spec struct {
		Count     int64
		Sides     int64
		Direction Direction
		Keep      int64
	}
)

const (
	// Highest keeps the largest rolls.
	Highest Direction = iota
	// Lowest keeps the smallest rolls.
	Lowest
)

const (
	advantage    = "adv"
	disadvantage = "dis"
)

func (d Direction) String() string {
	if d == Lowest {
		return "lowest"
	}

	return "highest"
}

// Resolve derives the canonical Spec from the raw groups of a lexed die.
//
// Resolve never fails; out of range counts are clamped & overflowing digits saturate.
func Resolve(raw lexer.DieSpec) (spec Spec) {
	spec.Count = parseCount(raw.Count, 1)
	spec.Sides = types.Clamp(parseCount(raw.Sides, 1), 1, math.MaxInt64)

	rangeMarker := unicode.ToLower(raw.Range)

	switch strings.ToLower(raw.Modifier) {
	case advantage:
		spec.Direction, spec.Keep = Highest, spec.Count
		spec.Count = increment(spec.Count)
	case disadvantage:
		spec.Direction, spec.Keep = Lowest, spec.Count
		spec.Count = increment(spec.Count)
	default:
		if raw.Inclusive == 0 && raw.Range == 0 && raw.KeepCount == "" {
			spec.Keep = spec.Count
		} else {
			spec.Keep = parseCount(raw.KeepCount, 1)
		}

		switch unicode.ToLower(raw.Inclusive) {
		case 'd':
			// Drop the named extreme, keep the remainder.
			spec.Direction = Highest
			if rangeMarker == 'h' {
				spec.Direction = Lowest
			}
			spec.Keep = spec.Count - spec.Keep
		default:
			spec.Direction = Highest
			if rangeMarker == 'l' {
				spec.Direction = Lowest
			}
		}
	}

	spec.Keep = types.Clamp(spec.Keep, 0, spec.Count)

	return
}

// parseCount parses a digit string, returning def for an empty string.
func parseCount(digits string, def int64) int64 {
	if digits == "" {
		return def
	}

	value, err := strconv.ParseInt(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}

	return value
}

// increment adds a die to the pool, saturating at math.MaxInt64.
func increment(count int64) int64 {
	if count == math.MaxInt64 {
		return count
	}

	return count + 1
}
