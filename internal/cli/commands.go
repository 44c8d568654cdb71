package cli

import (
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/codalotl/cfgdiff/internal/config"
	"github.com/codalotl/cfgdiff/internal/logging"
)

// runEnv is the I/O and state shared by every command of one Run.
type runEnv struct {
	in   io.Reader
	out  io.Writer
	errW io.Writer
	fs   afero.Fs
	dir  string

	flags flagValues

	// Set by setup.
	cfg      config.Config
	log      zerolog.Logger
	closeLog func() error
}

// setup loads configuration (applying flags on top) and builds the logger. Commands call it first, and call teardown if it succeeds.
func (e *runEnv) setup(cmd *cobra.Command) error {
	logger, closeLog, err := logging.New(logging.Options{
		Level:   e.flags.logLevel,
		File:    os.Getenv(logging.FileEnvVar),
		Console: e.errW,
	})
	if err != nil {
		return UsageError{Err: err}
	}
	e.log, e.closeLog = logger, closeLog

	cfg, err := loadConfig(e.fs, e.dir, &e.flags, cmd.Flags().Changed)
	if err != nil {
		e.teardown()
		return err
	}
	e.cfg = cfg
	e.log.Debug().Interface("sources", cfg.Sources).Msg("configuration loaded")
	return nil
}

func (e *runEnv) teardown() {
	if e.closeLog != nil {
		_ = e.closeLog()
	}
}

func newRootCommand(env *runEnv) *cobra.Command {
	root := &cobra.Command{
		Use:   "cfgdiff <old-file> <new-file>",
		Short: "Structural diff of indentation-structured configuration files",
		Long: `cfgdiff compares two hierarchical, indentation-structured configuration documents
(ex: network device configurations) and reports which blocks were removed (-) or
added (+), showing parent lines as context.

Use "-" for one of the files to read it from stdin. A file named dir, watch or config
is taken as a subcommand; write it as ./config instead.

Examples:
  cfgdiff running.cfg candidate.cfg
  cfgdiff old.cfg new.cfg --format markdown -o changes.md
  cfgdiff old.cfg new.cfg --out-dir reports/ --ignore '^ntp clock-period'
  cfgdiff dir backups/monday backups/tuesday
  cfgdiff watch running.cfg candidate.cfg`,
		Version:       Version,
		Args:          exactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.setup(cmd); err != nil {
				return err
			}
			defer env.teardown()
			return runDiff(env, args[0], args[1])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return UsageError{Err: err}
	})

	registerFlags(root, &env.flags)

	root.AddCommand(newDirCommand(env), newWatchCommand(env), newConfigCommand(env))
	return root
}

func newDirCommand(env *runEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dir <old-dir> <new-dir>",
		Short: "Compare every matching file in two directory trees",
		Long: `dir pairs files under the two directories by relative path and diffs each pair.
Files present on only one side are diffed against an empty document. Files are selected
with --include, a doublestar glob matched against relative paths.

Example:
  cfgdiff dir backups/monday backups/tuesday --include '**/*.cfg'`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.setup(cmd); err != nil {
				return err
			}
			defer env.teardown()
			return runDir(env, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&env.flags.include, "include", "", "Glob selecting files to compare (default from config: **/*.{cfg,conf,txt})")
	return cmd
}

func newWatchCommand(env *runEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <old-file> <new-file>",
		Short: "Re-render the diff whenever either file changes",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.setup(cmd); err != nil {
				return err
			}
			defer env.teardown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, env, args[0], args[1])
		},
	}
}

func newConfigCommand(env *runEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and where each value came from",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.setup(cmd); err != nil {
				return err
			}
			defer env.teardown()
			return writeConfigJSON(env.out, env.cfg)
		},
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s: expected %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}
