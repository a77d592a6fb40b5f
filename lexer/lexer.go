// SPDX-License-Identifier: MIT
package lexer

// REF: https://github.com/sh4t/sql-parser
// REF: https://gitlab.com/fisherprime/go-ddbms/-/blob/master/internal/v1/lexer.go
// REF: https://dave.cheney.net/high-performance-json.html

import (
	"context"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

type (
	// NextOperation type for the next function to be executed
	NextOperation func(context.Context) NextOperation

	// ValidationFunction type for functions that validate rune identities
	ValidationFunction func(rune) bool

	// Lexer splits free text into plaintext, number, operator, bracket & die Items.
	//
	// A Lexer is single use; the Items are consumed from Item in source order.
	Lexer struct {
		Debug  bool
		logger logrus.FieldLogger

		// c is a channel for communicating lexed Items.
		c chan Item

		// source is the input source.
		source io.RuneReader

		// buffer is a slice of runes being lexed.
		buffer []rune
		//  bufferIndex is the current buffer position.
		//
		// When this value exceeds the length of buffer, the buffer is populated from the source.
		bufferIndex int

		// offset is the source position (in runes) of buffer[0].
		offset int
		// prev is the last rune emitted; the look-behind for a die at buffer[0].
		prev rune

		dieCounter int
	}
)

// Improves on performance compared to ORs.
var symbols = map[rune]ItemID{
	'+': ItemPlus,
	'-': ItemMinus,
	'*': ItemMultiply,
	'/': ItemDivide,

	'(': ItemOpen,
	'[': ItemOpen,
	'{': ItemOpen,

	')': ItemClose,
	']': ItemClose,
	'}': ItemClose,
}

// New creates a new scanner for the input source.
func New(opts ...Option) *Lexer {
	l := &Lexer{
		logger: logrus.New(),

		c: make(chan Item, defBufferSize),

		buffer: make([]rune, 0, defBufferSize),
		source: strings.NewReader(""),
		prev:   eof,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// DieCounter obtains the number of dice lexed so far.
func (l *Lexer) DieCounter() int { return l.dieCounter }

// Logger obtains the logger.
func (l *Lexer) Logger() logrus.FieldLogger { return l.logger }

// Lex lexes the input by executing state functions.
//
// The Item channel is closed once an ItemEOF is sent or the context is done.
func (l *Lexer) Lex(ctx context.Context) {
	defer close(l.c)

	select {
	case <-ctx.Done():
		return
	default:
		for stateFunction := l.LexText; stateFunction != nil; {
			stateFunction = stateFunction(ctx)
		}
	}
}

// LexText scans plaintext until some rule matches, emitting the plaintext run before the match.
func (l *Lexer) LexText(ctx context.Context) NextOperation {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		start := l.bufferIndex
		if item, ok := l.match(); ok {
			if start > 0 && !l.Emit(ctx, Item{ID: ItemPlainText}, start) {
				return nil
			}
			if !l.Emit(ctx, item, l.bufferIndex) {
				return nil
			}

			return l.LexText
		}

		if l.Next() != eof {
			// Unmatched rune, part of the current plaintext run.
			continue
		}

		if l.bufferIndex > 0 && !l.Emit(ctx, Item{ID: ItemPlainText}, l.bufferIndex) {
			return nil
		}
		l.Emit(ctx, Item{ID: ItemEOF}, 0)

		return nil
	}
}

// match tries the rules in priority order at the current position.
//
// On success the matched runes are consumed, otherwise the position is unchanged.
func (l *Lexer) match() (item Item, ok bool) {
	if ok = l.matchDie(&item.Die); ok {
		item.ID = ItemDie
		l.dieCounter++

		return
	}

	if item.Num, item.Fractional, ok = l.matchNumber(); ok {
		item.ID = ItemNumber
		return
	}

	item.ID, ok = l.matchSymbol()

	return
}

// matchDie matches `(\d+)?[dD][1-9]\d*` followed by an optional modifier clause.
//
// The rune before the match must not be a word rune.
func (l *Lexer) matchDie(spec *DieSpec) bool {
	start := l.bufferIndex
	if isWord(l.behind()) {
		return false
	}

	countEnd := start + l.AcceptWhile(isDigit)
	if !l.Accept(isDieMarker) {
		l.Reset(start)
		return false
	}

	sidesStart := l.bufferIndex
	if !l.Accept(isNonZeroDigit) {
		l.Reset(start)
		return false
	}
	l.AcceptWhile(isDigit)
	sidesEnd := l.bufferIndex

	var mod DieSpec
	if l.AcceptFold("adv") || l.AcceptFold("dis") {
		mod.Modifier = string(l.buffer[sidesEnd:l.bufferIndex])
	} else {
		if l.Accept(isInclusiveMarker) {
			mod.Inclusive = l.buffer[l.bufferIndex-1]
		}
		if l.Accept(isRangeMarker) {
			mod.Range = l.buffer[l.bufferIndex-1]
		}

		keepStart := l.bufferIndex
		if l.AcceptWhile(isDigit) > 0 {
			mod.KeepCount = string(l.buffer[keepStart:l.bufferIndex])
		}
	}

	if spec != nil {
		*spec = mod
		spec.Count = string(l.buffer[start:countEnd])
		spec.Sides = string(l.buffer[sidesStart:sidesEnd])
	}

	return true
}

// matchNumber matches `\d+(\.\d+)?` not followed by `\d*[dD][1-9]`.
func (l *Lexer) matchNumber() (value float64, fractional bool, ok bool) {
	start := l.bufferIndex
	if l.AcceptWhile(isDigit) < 1 {
		return
	}
	intEnd := l.bufferIndex

	if l.Accept(isPoint) && l.AcceptWhile(isDigit) > 0 && !l.dieAhead() {
		fractional = true
	} else {
		l.Reset(intEnd)
		if l.dieAhead() {
			l.Reset(start)
			return
		}
	}

	// Out of range literals parse to ±Inf, which is kept.
	value, _ = strconv.ParseFloat(string(l.buffer[start:l.bufferIndex]), 64)
	ok = true

	return
}

// dieAhead reports whether `\d*[dD][1-9]` follows the current position, without consuming it.
func (l *Lexer) dieAhead() (ahead bool) {
	mark := l.bufferIndex
	l.AcceptWhile(isDigit)
	ahead = l.Accept(isDieMarker) && l.Accept(isNonZeroDigit)
	l.Reset(mark)

	return
}

// matchSymbol matches an operator or bracket with its surrounding whitespace.
func (l *Lexer) matchSymbol() (id ItemID, ok bool) {
	start := l.bufferIndex
	l.AcceptWhile(unicode.IsSpace)

	r := l.Next()
	if id, ok = symbols[r]; !ok {
		l.Reset(start)
		return
	}
	l.AcceptWhile(unicode.IsSpace)

	return
}

// Next return the Next rune in the input.
//
// The position is not advanced at the end of the input.
func (l *Lexer) Next() (r rune) {
	if l.bufferIndex >= len(l.buffer) {
		// Request data from the source.
		if l.Source(0) < 1 {
			r = eof
			return
		}
	}

	r = l.buffer[l.bufferIndex]
	l.bufferIndex++

	return
}

// Backup step back one rune.
func (l *Lexer) Backup() {
	if l.bufferIndex > 0 {
		l.bufferIndex--
	}
}

// Reset the buffer position to a previously recorded index.
func (l *Lexer) Reset(index int) { l.bufferIndex = index }

// Source runes from the source reader.
func (l *Lexer) Source(amount int) (sourced int) {
	if amount < defBufferSize {
		amount = defBufferSize
	}

	for ; sourced < amount; sourced++ {
		r, _, err := l.source.ReadRune()
		if err != nil {
			// Error can only be io.EOF
			break
		}

		l.buffer = append(l.buffer, r)
	}

	return
}

// Accept consumes the next rune if it is valid.
func (l *Lexer) Accept(fn ValidationFunction) bool {
	r := l.Next()
	if r == eof {
		return false
	}
	if fn(r) {
		return true
	}
	l.Backup()

	return false
}

// AcceptWhile consumes runes while condition is true, returning the number consumed.
func (l *Lexer) AcceptWhile(fn ValidationFunction) (accepted int) {
	for l.Accept(fn) {
		accepted++
	}

	return
}

// AcceptFold consumes word, compared under Unicode case-folding, or nothing.
func (l *Lexer) AcceptFold(word string) bool {
	mark := l.bufferIndex
	for _, w := range word {
		r := l.Next()
		if r == eof || unicode.ToLower(r) != w {
			l.Reset(mark)
			return false
		}
	}

	return true
}

// Emit sends an Item holding the first n buffered runes over the communication channel.
//
// Returns false when the context is done before the Item is received.
func (l *Lexer) Emit(ctx context.Context, item Item, n int) bool {
	item.Val = string(l.buffer[:n])
	item.Pos = l.offset

	if l.Debug {
		// Debug operation makes this operation un-inlinable.
		l.logger.Debugf("lexer Emit %s: %q", item.ID, item.Val)
	}

	select {
	case <-ctx.Done():
		return false
	case l.c <- item:
	}

	if n > 0 {
		l.prev = l.buffer[n-1]
		l.buffer = l.buffer[n:]
		l.bufferIndex -= n
		l.offset += n
	}

	return true
}

// Item return a lexed Item from the input.
func (l *Lexer) Item() (i Item, ok bool) {
	i, ok = <-l.c
	return
}

// behind returns the rune before the current position.
func (l *Lexer) behind() rune {
	if l.bufferIndex > 0 {
		return l.buffer[l.bufferIndex-1]
	}

	return l.prev
}

// Tokenize lexes text synchronously, returning every Item except the trailing ItemEOF.
func Tokenize(ctx context.Context, text string, opts ...Option) (items []Item) {
	l := New(append(opts, WithSource(strings.NewReader(text)))...)
	go l.Lex(ctx)

	for {
		item, proceed := l.Item()
		if !proceed || item.ID == ItemEOF {
			return
		}
		items = append(items, item)
	}
}

// ContainsDie reports whether text holds at least one die, using the same rule as the Lexer.
func ContainsDie(text string) bool {
	l := New(WithSource(strings.NewReader(text)))
	for {
		if l.matchDie(nil) {
			return true
		}
		if l.Next() == eof {
			return false
		}
	}
}

// isDigit return true for an ASCII digit.
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isNonZeroDigit(r rune) bool { return r >= '1' && r <= '9' }

func isPoint(r rune) bool { return r == '.' }

func isDieMarker(r rune) bool { return r == 'd' || r == 'D' }

func isInclusiveMarker(r rune) bool { return r == 'k' || r == 'K' || r == 'd' || r == 'D' }

func isRangeMarker(r rune) bool { return r == 'h' || r == 'H' || r == 'l' || r == 'L' }

// isWord return true for letters, numerics (including '½' & '²') & '_'.
func isWord(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) }
