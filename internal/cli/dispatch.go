package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"todosync/internal/api"
	"todosync/internal/commands"
	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/state"
)

// ClientFactory creates the remote client for the configured backend.
// Used to inject the backend during dispatch.
type ClientFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.Client, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry  *commands.Registry
	factory   ClientFactory
	newReader func(prompt string) (LineReader, error)

	// session is set while the shell runs; every line shares its store.
	session *shellSession
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLineReader replaces the terminal line editor used by the shell.
func WithLineReader(fn func(prompt string) (LineReader, error)) Option {
	return func(d *Dispatcher) {
		d.newReader = fn
	}
}

// NewDispatcher creates a new dispatcher with the given registry and client factory.
func NewDispatcher(registry *commands.Registry, factory ClientFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:  registry,
		factory:   factory,
		newReader: newReadline,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	if cmdName == shellCommand {
		if d.session != nil {
			fmt.Fprintln(errOut, "error: already in shell")
			return exitcode.UserError
		}
		return d.runShell(ctx, args[1:], out, errOut)
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

// parseFlags parses args into fs and returns the positional arguments.
// Parse failures are reported in the CLI's error format.
func parseFlags(fs *flag.FlagSet, args []string, errOut io.Writer) ([]string, bool) {
	fs.SetOutput(io.Discard) // We handle errors ourselves

	if err := fs.Parse(args); err != nil {
		errStr := err.Error()
		switch {
		case strings.HasPrefix(errStr, "flag needs an argument: "):
			fmt.Fprintf(errOut, "error: %s\n", errStr)
		case strings.HasPrefix(errStr, "flag provided but not defined: "):
			fmt.Fprintf(errOut, "error: unknown flag: %s\n", strings.TrimPrefix(errStr, "flag provided but not defined: "))
		default:
			fmt.Fprintf(errOut, "error: %s\n", errStr)
		}
		return nil, false
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return nil, false
	}
	return positionalArgs, true
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	positionalArgs, ok := parseFlags(fs, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	cfg, logger, err := d.configure(common, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	var store *state.Store
	if cmd.NeedsBackend() {
		store, err = d.store(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	if cmd.NeedsAuth() {
		if code, ok := requireSession(ctx, store, errOut); !ok {
			return code
		}
	}

	return cmd.Run(ctx, cfg, store, positionalArgs, out, errOut)
}

// configure loads the config for one command. Inside the shell the shell's
// config is reused and the command's own flags are layered on top.
func (d *Dispatcher) configure(common commonFlags, errOut io.Writer) (*config.Config, *slog.Logger, error) {
	if d.session != nil {
		cfg := d.session.cfg
		cfg.Quiet = cfg.Quiet || common.quiet
		logger := d.session.logger
		if common.debug && !cfg.Debug {
			cfg.Debug = true
			logger = newLogger(errOut, true)
		}
		return &cfg, logger, nil
	}

	cfg, err := config.New(common.configDir)
	if err != nil {
		return nil, nil, err
	}
	cfg.Quiet = common.quiet
	cfg.Debug = cfg.Debug || common.debug
	return cfg, newLogger(errOut, cfg.Debug), nil
}

// store returns the shell's store, or a new store over a fresh client.
func (d *Dispatcher) store(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*state.Store, error) {
	if d.session != nil {
		return d.session.store, nil
	}
	if d.factory == nil {
		return nil, fmt.Errorf("no backend configured")
	}
	client, err := d.factory(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return state.NewStore(client, state.WithLogger(logger)), nil
}

// requireSession probes the server when the store has no session yet.
// A store that already ran its startup probe (the shell's) is not probed
// again; only login can change its session.
func requireSession(ctx context.Context, store *state.Store, errOut io.Writer) (int, bool) {
	if store.Session().IsLoggedIn {
		return exitcode.Success, true
	}
	if store.App().Initialized {
		fmt.Fprintln(errOut, "error: not logged in (run: todosync login)")
		return exitcode.AuthError, false
	}
	_, err := store.ProbeSession(ctx, state.SuppressGlobalError())
	if err == nil {
		return exitcode.Success, true
	}
	if state.IsKind(err, state.KindTransport) {
		code := exitcode.FromError(err)
		if code == exitcode.AuthError {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		} else {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		}
		return code, false
	}
	fmt.Fprintln(errOut, "error: not logged in (run: todosync login)")
	return exitcode.AuthError, false
}

// newLogger returns a text logger on w. Debug records are kept only when debug is set.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
