package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-shellwords"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/output"
	"todosync/internal/state"
)

const shellCommand = "shell"

// LineReader reads shell input one line at a time.
// *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

func newReadline(prompt string) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return rl, nil
}

// shellSession is the state shared by every line of a shell.
type shellSession struct {
	cfg    config.Config
	store  *state.Store
	logger *slog.Logger
}

// runShell reads commands until exit or EOF. All commands share one store,
// so lists and tasks fetched by one line are visible to the next.
func (d *Dispatcher) runShell(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(shellCommand, flag.ContinueOnError)
	var common commonFlags
	common.register(fs)

	extra, ok := parseFlags(fs, args, errOut)
	if !ok {
		return exitcode.UserError
	}
	if len(extra) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", extra[0])
		return exitcode.UserError
	}

	cfg, logger, err := d.configure(common, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	store, err := d.store(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		store.Subscribe(progressPrinter(errOut))
	}

	d.session = &shellSession{cfg: *cfg, store: store, logger: logger}
	defer func() { d.session = nil }()

	rl, err := d.newReader(output.Prompt(store.App()))
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	defer rl.Close()

	// A failed probe only means the user still has to log in.
	if _, err := store.ProbeSession(ctx); state.IsKind(err, state.KindTransport) {
		logger.Warn("session probe failed", "error", err)
	}

	// reported is set when the last command already printed its error.
	reported := false
	for {
		app := store.App()
		if banner := output.Banner(app); banner != "" && !reported {
			fmt.Fprintln(errOut, banner)
		}
		store.DismissError()

		rl.SetPrompt(output.Prompt(app))
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return exitcode.Success
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return exitcode.Success
		}
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}

		words, err := shellwords.Parse(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			reported = true
			continue
		}
		if len(words) == 0 {
			reported = false
			continue
		}
		if words[0] == "exit" || words[0] == "quit" {
			return exitcode.Success
		}

		reported = d.Run(ctx, words, out, errOut) != exitcode.Success
		if ctx.Err() != nil {
			return exitcode.Success
		}
	}
}

// progressPrinter returns a subscriber that prints the progress line each
// time the shared status enters loading. It keeps unguarded state and relies
// on the shell dispatching from a single goroutine.
func progressPrinter(w io.Writer) func(state.State) {
	loading := false
	return func(st state.State) {
		now := st.App.Status == state.StatusLoading
		if now && !loading {
			fmt.Fprintln(w, output.Progress())
		}
		loading = now
	}
}
