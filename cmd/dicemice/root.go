// SPDX-License-Identifier: MIT
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gitlab.com/fisherprime/dicemice"
)

const (
	greeting = `I am your dice mice, ready to roll.
Just type your dice codes, and I'll echo your message back with the dice already rolled.
Press ctrl+d at anytime to exit.`

	tooComplex = "That is too complex for me to roll."
)

type (
	options struct {
		verbosity int
		timeout   time.Duration
		seed      int64
		maxDice   int64
		actor     string
		quiet     bool
	}
)

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dicemice [text...]",
		Short: "Roll the dice notation in some text",
		Long: `dicemice echoes text back with its dice notation rolled & its arithmetic evaluated.

Each argument is evaluated in turn; without arguments, each line read from stdin is.
Text without dice notation is skipped.`,
		Example: `  dicemice "attacks for d20+5 then 2d6kh1 damage"
  echo "4d6dl1" | dicemice --actor Beastly`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().CountVarP(&opts.verbosity, "verbose", "v", "Increase the output verbosity, can be used up to 3 times")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", dicemice.DefaultTimeout, "Evaluation deadline per text")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Replay the same rolls for every text when non-zero")
	cmd.Flags().Int64Var(&opts.maxDice, "max-dice", dicemice.DefaultMaxDice, "Largest pool a single die may request, negative disables")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "Name prefixed to every reply")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Skip the greeting")

	cmd.CompletionOptions.DisableDefaultCmd = true

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string) (err error) {
	cfg, err := dicemice.ConfigFromEnv()
	if err != nil {
		return
	}

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(verbosityLevel(opts.verbosity))

	cfg.Debug = cfg.Debug || opts.verbosity > 2

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("max-dice") {
		cfg.MaxDice = opts.maxDice
	}

	engine, err := dicemice.New(dicemice.WithConfig(cfg), dicemice.WithLogger(logger))
	if err != nil {
		return
	}
	defer engine.Release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if len(args) > 0 {
		for _, text := range args {
			if err = reply(ctx, out, engine, opts.actor, text); err != nil {
				return
			}
		}

		return
	}

	if !opts.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), greeting)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if err = reply(ctx, out, engine, opts.actor, scanner.Text()); err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		err = fmt.Errorf("read input: %w", err)
	}

	return
}

// reply writes the evaluated text, skipping text without dice notation.
func reply(ctx context.Context, w io.Writer, engine *dicemice.Engine, actor, text string) (err error) {
	if !dicemice.ContainsDiceNotation(text) {
		return
	}

	output, err := engine.Evaluate(ctx, text, actor)
	switch {
	case errors.Is(err, dicemice.ErrTimeout):
		output, err = tooComplex, nil
	case err != nil:
		return
	}

	if actor = strings.TrimSpace(actor); actor != "" {
		output = actor + " -- " + output
	}
	_, err = fmt.Fprintln(w, output)

	return
}

// verbosityLevel maps the -v count onto a log level, starting at errors.
func verbosityLevel(count int) logrus.Level {
	level := logrus.ErrorLevel + logrus.Level(count)
	if level > logrus.DebugLevel {
		level = logrus.DebugLevel
	}

	return level
}
