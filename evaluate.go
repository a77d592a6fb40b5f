// SPDX-License-Identifier: MIT
package dicemice

import (
	"context"
	"errors"
	"math"
	"math/big"
	"strings"
	"unicode"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/dicemice/dice"
	"gitlab.com/fisherprime/dicemice/lexer"
	"gitlab.com/fisherprime/dicemice/types"
)

type (
	// evaluator rewrites a single text, it is not reused across evaluations.
	evaluator struct {
		debug  bool
		logger logrus.FieldLogger

		roller *dice.Roller

		// rolled holds dice already rolled, by source position, so that a re-parsed span
		// shows the same values.
		rolled map[int]Numeric

		// faults counts recovered syntax errors.
		faults *types.SafeCounter
	}
)

// run lexes text & concatenates plaintext with the formatted numeric spans.
func (ev *evaluator) run(ctx context.Context, text string) (output string, err error) {
	lexCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := lexer.New(
		lexer.WithSource(strings.NewReader(text)),
		lexer.WithLogger(ev.logger),
		lexer.WithDebug(ev.debug),
	)
	go l.Lex(lexCtx)

	var (
		buffer strings.Builder
		span   []lexer.Item
	)

	for {
		item, proceed := l.Item()
		if !proceed {
			// Closed before an ItemEOF; the context is done.
			err = ctx.Err()
			return
		}

		if item.ID != lexer.ItemPlainText && item.ID != lexer.ItemEOF {
			span = append(span, item)
			continue
		}

		if err = ev.flush(ctx, &buffer, span); err != nil {
			return
		}
		span = span[:0]

		if item.ID == lexer.ItemEOF {
			break
		}
		buffer.WriteString(item.Val)
	}

	if ev.debug {
		ev.logger.Debugf("evaluated %d dice", l.DieCounter())
	}
	output = buffer.String()

	return
}

// flush evaluates a span of non-plaintext items into w.
//
// A span lacking numbers & dice is prose punctuation and is written verbatim. After a syntax
// fault, the expressions completed so far are kept & the remainder of the span, bar its outer
// whitespace, is replaced by SyntaxMarker.
func (ev *evaluator) flush(ctx context.Context, w *strings.Builder, span []lexer.Item) (err error) {
	if len(span) < 1 {
		return
	}

	if !hasOperand(span) {
		for index := range span {
			w.WriteString(span[index].Val)
		}

		return
	}

	if ev.debug {
		ev.logger.Debugf("evaluating span: %s", spew.Sdump(span))
	}

	var buffer strings.Builder
	for pos := 0; pos < len(span); {
		var (
			value     Numeric
			next      int
			syntaxErr *SyntaxError
		)

		value, next, err = ev.parseAdditive(ctx, span, pos)
		switch {
		case err == nil:
			buffer.WriteString(Format(value))
			pos = next
		case errors.Is(err, errIncomplete):
			// Nothing completes from here; the item is prose.
			buffer.WriteString(span[pos].Val)
			pos++
		case errors.As(err, &syntaxErr) && syntaxErr.index == pos:
			// The item can't start an expression.
			buffer.WriteString(span[pos].Val)
			pos++
		case errors.As(err, &syntaxErr):
			count := ev.faults.Inc()
			ev.logger.WithError(err).WithField("faults", count).Warn("span replaced by syntax marker")

			w.WriteString(buffer.String())
			w.WriteString(leadingSpace(span[pos].Val))
			w.WriteString(SyntaxMarker)
			w.WriteString(trailingSpace(span[len(span)-1].Val))

			return nil
		default:
			return
		}
	}
	err = nil
	w.WriteString(buffer.String())

	return
}

// parseAdditive parses `multiplicative ((+|-) multiplicative)*`.
//
// A right operand cut short by the end of the span is left unconsumed.
func (ev *evaluator) parseAdditive(ctx context.Context, span []lexer.Item, pos int) (left Numeric, next int, err error) {
	if left, next, err = ev.parseMultiplicative(ctx, span, pos); err != nil {
		return
	}

	for next < len(span) && (span[next].ID == lexer.ItemPlus || span[next].ID == lexer.ItemMinus) {
		op := span[next]

		right, after, rightErr := ev.parseMultiplicative(ctx, span, next+1)
		if errors.Is(rightErr, errIncomplete) {
			break
		}
		if rightErr != nil {
			err = rightErr
			return
		}

		if strings.Contains(op.Val, "-") {
			right = negate(right)
		}
		left = Numeric{
			Text:   left.Text + op.Val + right.Text,
			Result: left.Result + right.Result,
			exact:  combine(left.exact, right.exact, (*big.Int).Add),
		}
		next = after
	}

	return
}

// parseMultiplicative parses `unary ((*|/) unary)*`.
//
// Division by zero yields NaN & strikes through the divisor's text.
func (ev *evaluator) parseMultiplicative(ctx context.Context, span []lexer.Item, pos int) (left Numeric, next int, err error) {
	if left, next, err = ev.parseUnary(ctx, span, pos); err != nil {
		return
	}

	for next < len(span) && (span[next].ID == lexer.ItemMultiply || span[next].ID == lexer.ItemDivide) {
		op := span[next]

		right, after, rightErr := ev.parseUnary(ctx, span, next+1)
		if errors.Is(rightErr, errIncomplete) {
			break
		}
		if rightErr != nil {
			err = rightErr
			return
		}

		switch {
		case op.ID == lexer.ItemMultiply:
			left.Result *= right.Result
			left.exact = combine(left.exact, right.exact, (*big.Int).Mul)
		case right.Result == 0:
			left.Result, left.exact = math.NaN(), nil
			right.Text = StrikeMarker + right.Text + StrikeMarker
		default:
			left.Result, left.exact = left.Result/right.Result, nil
		}
		left.Text += op.Val + right.Text
		next = after
	}

	return
}

// parseUnary parses signs, bracketed expressions & atoms.
func (ev *evaluator) parseUnary(ctx context.Context, span []lexer.Item, pos int) (value Numeric, next int, err error) {
	if pos >= len(span) {
		err = errIncomplete
		return
	}

	item := span[pos]
	switch item.ID {
	case lexer.ItemPlus, lexer.ItemMinus:
		if value, next, err = ev.parseUnary(ctx, span, pos+1); err != nil {
			return
		}

		if item.ID == lexer.ItemMinus {
			value = negate(value)
		}
		value.Text = item.Val + value.Text
	case lexer.ItemOpen:
		if value, next, err = ev.parseAdditive(ctx, span, pos+1); err != nil {
			return
		}

		if next >= len(span) {
			err = errIncomplete
			return
		}
		if span[next].ID != lexer.ItemClose {
			err = &SyntaxError{Val: span[next].Val, Pos: span[next].Pos, index: next}
			return
		}

		value.Text = item.Val + value.Text + span[next].Val
		next++
	case lexer.ItemNumber:
		value, next = Numeric{Text: item.Val, Result: item.Num}, pos+1
		if !item.Fractional {
			value.exact, _ = new(big.Int).SetString(item.Val, 10)
		}
	case lexer.ItemDie:
		value, err = ev.roll(ctx, item)
		next = pos + 1
	default:
		err = &SyntaxError{Val: item.Val, Pos: item.Pos, index: pos}
	}

	return
}

// roll resolves & rolls a die Item, once per source position.
func (ev *evaluator) roll(ctx context.Context, item lexer.Item) (value Numeric, err error) {
	if value, ok := ev.rolled[item.Pos]; ok {
		return value, nil
	}

	spec := dice.Resolve(item.Die)
	if ev.debug {
		ev.logger.Debugf("resolved %q: %s", item.Val, spew.Sdump(spec))
	}

	outcome, err := ev.roller.Roll(ctx, spec)
	if err != nil {
		return
	}

	value = Numeric{Text: outcome.String(), Result: outcome.Total, exact: outcome.Exact}
	ev.rolled[item.Pos] = value

	return
}

// negate flips the sign of v's results.
func negate(v Numeric) Numeric {
	v.Result = -v.Result
	if v.exact != nil {
		v.exact = new(big.Int).Neg(v.exact)
	}

	return v
}

// combine applies op to exact results, yielding nil once either side is inexact.
func combine(a, b *big.Int, op func(z, x, y *big.Int) *big.Int) *big.Int {
	if a == nil || b == nil {
		return nil
	}

	return op(new(big.Int), a, b)
}

func leadingSpace(s string) string { return s[:len(s)-len(strings.TrimLeftFunc(s, unicode.IsSpace))] }

func trailingSpace(s string) string { return s[len(strings.TrimRightFunc(s, unicode.IsSpace)):] }

func hasOperand(span []lexer.Item) bool {
	for index := range span {
		if span[index].IsOperand() {
			return true
		}
	}

	return false
}
