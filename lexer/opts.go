// SPDX-License-Identifier: MIT
package lexer

import (
	"io"

	"github.com/sirupsen/logrus"
)

type (
	// Option defines the Lexer functional option type
	Option func(*Lexer)
)

const (
	// eof is returned by Next once the source is exhausted.
	eof rune = -1

	defBufferSize = 16
)

// WithDebug configures the debug option.
func WithDebug(debug bool) Option { return func(l *Lexer) { l.Debug = debug } }

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option { return func(l *Lexer) { l.logger = logger } }

// WithSource configures the source option.
func WithSource(source io.RuneReader) Option { return func(l *Lexer) { l.source = source } }

// WithBufferSize configures the capacity of the Item channel.
func WithBufferSize(size int) Option {
	return func(l *Lexer) {
		if size >= 0 {
			l.c = make(chan Item, size)
		}
	}
}
