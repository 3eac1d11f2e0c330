package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rescale/navlist/internal/config"
	"github.com/rescale/navlist/internal/display"
	"github.com/rescale/navlist/internal/navigation"
	"github.com/rescale/navlist/internal/progress"
	"github.com/rescale/navlist/internal/scenario"
	"github.com/rescale/navlist/internal/volumes"
)

type replayOptions struct {
	showKeys    bool
	showEvents  bool
	resolve     bool
	compact     bool
	quiet       bool
	watch       bool
	noColor     bool
	failOnError bool
}

// newReplayCmd creates the 'replay' command.
func newReplayCmd() *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>...",
		Short: "Replay scenario files against the navigation model",
		Long: `Replay one or more scenario files. Each step is applied to the mount
subsystem, the shortcut store or the model's placeholders, and the resulting
sidebar tree is printed.

Examples:
  navlist replay usb.yaml
  navlist replay --events --keys usb.yaml
  navlist replay --resolve local.yaml       # stat mount paths for display roots
  navlist replay --watch usb.yaml           # re-run on every save`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if opts.compact {
				cfg.Layout.CompactMyFiles = true
			}
			if opts.watch {
				if len(args) != 1 {
					return fmt.Errorf("--watch takes exactly one scenario file")
				}
				return watchScenario(GetContext(), cmd.OutOrStdout(), cfg, opts, args[0])
			}
			return replayFiles(GetContext(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.showKeys, "keys", "k", false, "Show identity keys")
	cmd.Flags().BoolVarP(&opts.showEvents, "events", "e", false, "Show permutation events")
	cmd.Flags().BoolVar(&opts.resolve, "resolve", false, "Resolve display roots from volume mount paths")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "Use compact My files (overrides config)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only print the final tree")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-run the scenario whenever the file changes")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colors even on a terminal")
	cmd.Flags().BoolVar(&opts.failOnError, "fail", false, "Exit non-zero if any step fails")

	return cmd
}

func newRunner(out io.Writer, cfg *config.Config, opts replayOptions) *scenario.Runner {
	renderOpts := display.Options{
		Styled:    !opts.noColor && display.StyledFor(out),
		ShowKeys:  opts.showKeys,
		ShowRoots: opts.resolve,
	}
	runnerOpts := scenario.RunnerOptions{
		Config: cfg,
		Render: func(items []navigation.Item) string {
			return display.Tree(items, renderOpts)
		},
		Logger: GetLogger(),
	}
	if opts.resolve {
		runnerOpts.Resolver = volumes.NewLocalResolver()
	}
	return scenario.NewRunner(runnerOpts)
}

func replayFiles(ctx context.Context, out, errOut io.Writer, cfg *config.Config, opts replayOptions, paths []string) error {
	runner := newRunner(out, cfg, opts)

	var bar progress.Reporter = progress.NewNoOpProgress()
	if len(paths) > 1 {
		bar = progress.New(errOut)
	}
	bar.Start(len(paths), "replaying")
	defer bar.Finish()

	failed := 0
	for _, path := range paths {
		f, err := scenario.Load(path)
		if err != nil {
			return err
		}
		res, err := runner.Run(ctx, f)
		if err != nil {
			return err
		}
		if len(paths) > 1 {
			fmt.Fprintf(out, "### %s\n", path)
		}
		printResult(out, res, opts)
		if res.Failed() {
			failed++
		}
		bar.Step(filepath.Base(path))
	}

	if failed > 0 && opts.failOnError {
		return fmt.Errorf("%d scenario(s) had failing steps", failed)
	}
	return nil
}

func watchScenario(ctx context.Context, out io.Writer, cfg *config.Config, opts replayOptions, path string) error {
	runner := newRunner(out, cfg, opts)
	logger := GetLogger()

	runOnce := func() {
		f, err := scenario.Load(path)
		if err != nil {
			logger.Error().Err(err).Msg("scenario not loaded")
			return
		}
		res, err := runner.Run(ctx, f)
		if err != nil {
			logger.Error().Err(err).Msg("replay stopped")
			return
		}
		fmt.Fprintf(out, "### %s\n", path)
		printResult(out, res, opts)
	}

	runOnce()
	logger.Info().Str("path", path).Msg("watching for changes, press Ctrl+C to stop")
	return scenario.Watch(ctx, path, scenario.DefaultDebounce, logger, runOnce)
}

func printResult(out io.Writer, res *scenario.Result, opts replayOptions) {
	if opts.quiet {
		last := res.Initial
		if len(res.Steps) > 0 {
			last = res.Steps[len(res.Steps)-1]
		}
		fmt.Fprint(out, last.Tree)
		return
	}

	printStep(out, res.Initial, opts)
	for _, s := range res.Steps {
		printStep(out, s, opts)
	}
}

func printStep(out io.Writer, s scenario.StepResult, opts replayOptions) {
	if s.Index < 0 {
		fmt.Fprintln(out, "== initial")
	} else {
		fmt.Fprintf(out, "== step %d: %s\n", s.Index+1, s.Action)
	}
	if s.Err != nil {
		fmt.Fprintf(out, "error: %v\n", s.Err)
	}
	if opts.showEvents {
		for _, e := range s.Events {
			fmt.Fprintf(out, "permuted source=%s new_length=%d permutation=%v\n", e.Source, e.NewLength, e.Permutation)
		}
	}
	for _, p := range s.Problems {
		fmt.Fprintf(out, "problem: %s\n", p)
	}
	fmt.Fprint(out, s.Tree)
}

// newExampleCmd creates the 'example' command.
func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an example scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := scenario.Marshal(scenario.Example())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
