// SPDX-License-Identifier: MIT
package dice

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"

	"gitlab.com/fisherprime/dicemice/types"
)

type (
	// Source is the pseudo-random source dice are drawn from.
	//
	// *rand.Rand satisfies Source; it is not safe for concurrent use.
	Source interface {
		Int63n(n int64) int64
	}

	// Observer is notified of every draw, in roll order.
	Observer func(spec Spec, value int64)

	// Roller rolls resolved Specs against a Source.
	Roller struct {
		source   Source
		observer Observer

		// maxDice bounds the pool size of a single Spec, disabled when < 1.
		maxDice int64
	}

	// RollerOption defines the Roller functional option type.
	RollerOption func(*Roller)

	// Outcome holds the rolls of a single Spec & the total of the kept rolls.
	Outcome struct {
		// Rolls in roll order, not sorted.
		Rolls types.Int64Slice

		// Exact is the total of the kept rolls, Total its nearest float64.
		Exact *big.Int
		Total float64
	}
)

// checkMask sets how often the roll loop checks for context cancellation.
const checkMask = 1<<10 - 1

// preallocLimit caps the roll slice pre-allocation, larger pools grow while rolling.
const preallocLimit = 1 << 16

// Rolling errors.
var (
	ErrPoolTooLarge = errors.New("dice pool too large")
	ErrInvalidSpec  = errors.New("invalid die specification")
)

// NewSource creates a math/rand Source from a seed.
func NewSource(seed int64) Source { return rand.New(rand.NewSource(seed)) }

// NewRoller instantiates a Roller.
func NewRoller(source Source, options ...RollerOption) *Roller {
	r := &Roller{source: source}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// WithObserver configures the draw observer.
func WithObserver(fn Observer) RollerOption { return func(r *Roller) { r.observer = fn } }

// WithMaxDice configures the pool size limit.
func WithMaxDice(limit int64) RollerOption { return func(r *Roller) { r.maxDice = limit } }

// Roll draws spec.Count dice in [1, spec.Sides] & sums the kept extreme.
//
// The context is checked while rolling so that huge pools can be abandoned.
func (r *Roller) Roll(ctx context.Context, spec Spec) (o Outcome, err error) {
	if spec.Sides < 1 || spec.Count < 0 {
		err = fmt.Errorf("%w: %+v", ErrInvalidSpec, spec)
		return
	}
	if r.maxDice > 0 && spec.Count > r.maxDice {
		err = fmt.Errorf("%w: %d dice exceeds %d", ErrPoolTooLarge, spec.Count, r.maxDice)
		return
	}

	capacity := spec.Count
	if capacity > preallocLimit {
		capacity = preallocLimit
	}
	o.Rolls = make(types.Int64Slice, 0, capacity)

	for index := int64(0); index < spec.Count; index++ {
		if index&checkMask == 0 {
			if err = ctx.Err(); err != nil {
				return
			}
		}

		value := r.source.Int63n(spec.Sides) + 1
		if r.observer != nil {
			r.observer(spec, value)
		}
		o.Rolls = append(o.Rolls, value)
	}

	if err = ctx.Err(); err != nil {
		return
	}

	count, keep := len(o.Rolls), int(spec.Keep)
	from, to := 0, keep
	if spec.Direction == Highest {
		from, to = count-keep, count
	}
	if o.Exact, err = o.Rolls.Sorted().Sum(ctx, from, to); err != nil {
		return
	}
	o.Total, _ = new(big.Float).SetInt(o.Exact).Float64()

	return
}

// String renders the Outcome's rolls; a single roll is rendered without brackets.
func (o Outcome) String() string {
	if len(o.Rolls) == 1 {
		return strconv.FormatInt(o.Rolls[0], 10)
	}

	return o.Rolls.String()
}
