// SPDX-License-Identifier: MIT

// Package dicemice rewrites free text, replacing dice notation & arithmetic with their results.
//
// Text without numbers is returned unchanged; `attacks for d20+3` becomes
// `attacks for 14+3 = 17`. Evaluations are bounded by a deadline & run on a shared worker pool.
package dicemice

import (
	"context"
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/dicemice/dice"
	"gitlab.com/fisherprime/dicemice/internal/random"
	"gitlab.com/fisherprime/dicemice/lexer"
	"gitlab.com/fisherprime/dicemice/types"
)

type (
	// Engine evaluates texts concurrently under a deadline.
	//
	// An Engine is safe for concurrent use; Release it once done.
	Engine struct {
		cfg  *Config
		pool *ants.Pool

		// logger overrides Config.Logger, whatever the option order.
		logger logrus.FieldLogger

		timeouts types.SafeCounter
		faults   types.SafeCounter
	}

	// Option defines the Engine functional option type.
	Option func(*Engine)

	result struct {
		output string
		err    error
	}
)

// WithConfig configures the Engine from a copy of cfg.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			c := *cfg
			e.cfg = &c
		}
	}
}

// WithLogger configures the logger option, taking precedence over the Config's logger.
func WithLogger(logger logrus.FieldLogger) Option { return func(e *Engine) { e.logger = logger } }

// New instantiates an Engine & its worker pool.
func New(opts ...Option) (e *Engine, err error) {
	e = &Engine{cfg: DefConfig()}

	for _, opt := range opts {
		opt(e)
	}
	if e.logger != nil {
		e.cfg.Logger = e.logger
	}
	e.cfg.Validate()

	logger := e.cfg.Logger
	e.pool, err = ants.NewPool(e.cfg.Workers,
		ants.WithNonblocking(true),
		ants.WithLogger(logger),
		ants.WithPanicHandler(func(p interface{}) {
			logger.WithField("panic", p).Error("evaluation worker panicked")
		}),
	)
	if err != nil {
		err = fmt.Errorf("create evaluation pool: %w", err)
		return nil, err
	}

	return
}

// Release closes the worker pool; later evaluations fail with ErrOverloaded.
func (e *Engine) Release() { e.pool.Release() }

// Timeouts obtains the number of evaluations abandoned for their deadline.
func (e *Engine) Timeouts() int { return e.timeouts.Value() }

// Faults obtains the number of numeric spans replaced by SyntaxMarker.
func (e *Engine) Faults() int { return e.faults.Value() }

// Config obtains a copy of the Engine's configuration.
func (e *Engine) Config() Config { return *e.cfg }

// ContainsDiceNotation reports whether text holds at least one die.
func ContainsDiceNotation(text string) bool { return lexer.ContainsDie(text) }

// Evaluate rewrites text, attributing rolls to actor in the log.
//
// The evaluation is abandoned with ErrTimeout once the configured deadline passes, whether or
// not ctx carries an earlier one.
func (e *Engine) Evaluate(ctx context.Context, text, actor string) (output string, err error) {
	logger := e.cfg.Logger.WithField("actor", actor)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	ev, err := e.evaluator(logger)
	if err != nil {
		return
	}

	c := make(chan result, 1)
	task := func() {
		var res result
		defer func() {
			if p := recover(); p != nil {
				res.err = fmt.Errorf("%w: %v", ErrPanicked, p)
			}
			c <- res
		}()

		res.output, res.err = ev.run(ctx, text)
	}

	if err = e.pool.Submit(task); err != nil {
		if errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			err = fmt.Errorf("%w: %w", ErrOverloaded, err)
		}
		return
	}

	select {
	case res := <-c:
		output, err = res.output, res.err
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		output = ""
		err = e.classify(logger, err)
	}

	return
}

// classify maps evaluation failures onto the package's errors.
func (e *Engine) classify(logger logrus.FieldLogger, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, dice.ErrPoolTooLarge):
		count := e.timeouts.Inc()
		logger.WithError(err).WithField("timeouts", count).Warn("evaluation abandoned")

		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, ErrPanicked):
		logger.WithError(err).Error("evaluation failed")
	}

	return err
}

// evaluator prepares the per-evaluation state: a fresh random source & roll cache.
func (e *Engine) evaluator(logger logrus.FieldLogger) (ev *evaluator, err error) {
	seed := e.cfg.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return
		}
	}

	roptions := []dice.RollerOption{dice.WithMaxDice(e.cfg.MaxDice)}
	if e.cfg.Debug {
		roptions = append(roptions, dice.WithObserver(func(spec dice.Spec, value int64) {
			logger.WithFields(logrus.Fields{
				"sides": spec.Sides,
				"value": value,
			}).Debug("rolled")
		}))
	}

	ev = &evaluator{
		debug:  e.cfg.Debug,
		logger: logger,
		roller: dice.NewRoller(dice.NewSource(seed), roptions...),
		rolled: make(map[int]Numeric),
		faults: &e.faults,
	}

	return
}
