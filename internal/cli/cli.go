package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Version is the cfgdiff version. It is a var (not a const) so build tooling can override it (for example via `-ldflags "-X .../internal/cli.Version=1.2.3"`).
var Version = "0.3.0"

// RunOptions overrides the process environment. Nil fields use the defaults (os.Stdin, os.Stdout, os.Stderr, the OS filesystem, and os.Getwd). Overriding is useful for
// testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Fs is used for input documents, report files, and config files.
	Fs afero.Fs

	// Dir is the working directory used to find project config files and .env.
	Dir string
}

// Run runs the CLI with args (typically you'd use os.Args).
//
// It returns a recommended exit code (0, 1, or 2) and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the structure of args is sound (an input couldn't be read, the report couldn't be written, config is invalid, etc).
//   - 2 -> err != nil, args parse error or misuse of flags, etc.
//
// Note that in cases of errors, Run has already displayed an error message to opts.Err || Stderr. Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	return RunContext(context.Background(), args, opts)
}

// RunContext is Run with a context; canceling ctx stops `cfgdiff watch`.
func RunContext(ctx context.Context, args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	env := &runEnv{
		in:   os.Stdin,
		out:  os.Stdout,
		errW: os.Stderr,
		fs:   afero.NewOsFs(),
	}
	if opts != nil {
		if opts.In != nil {
			env.in = opts.In
		}
		if opts.Out != nil {
			env.out = opts.Out
		}
		if opts.Err != nil {
			env.errW = opts.Err
		}
		if opts.Fs != nil {
			env.fs = opts.Fs
		}
		env.dir = opts.Dir
	}
	if env.dir == "" {
		env.dir, _ = os.Getwd()
	}

	root := newRootCommand(env)
	root.SetArgs(argv)
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.errW)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0, nil
	}

	code := exitCode(err)
	fmt.Fprintf(env.errW, "error: %v\n", err)
	if code == 2 && cmd != nil {
		fmt.Fprintf(env.errW, "\n%s", cmd.UsageString())
	}
	return code, err
}
