// Package cli is the todo command line: account commands, task
// commands against the backend, and an in-memory demo shell.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-client/internal/api"
	"github.com/adanyl0v/go-todo-client/internal/models"
	"github.com/adanyl0v/go-todo-client/internal/tasks"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var (
	errUsage       = errors.New("usage")
	errNotLoggedIn = errors.New("not logged in, run 'todo login' or try 'todo demo'")
)

type SessionStore interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	User() (models.User, bool)
}

type command struct {
	summary string
	run     func(ctx context.Context, args []string) error
}

type App struct {
	logger      zerolog.Logger
	session     SessionStore
	live        tasks.Backend
	demoBackend func() tasks.Backend

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	commands map[string]command
}

func New(
	logger zerolog.Logger,
	session SessionStore,
	live tasks.Backend,
	in io.Reader,
	out io.Writer,
	errOut io.Writer,
) *App {
	a := &App{
		logger:  logger,
		session: session,
		live:    live,
		demoBackend: func() tasks.Backend {
			return tasks.NewDemoBackend()
		},
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}

	a.commands = map[string]command{
		"login":    {"sign in with email and password", a.runLogin},
		"register": {"create an account and sign in", a.runRegister},
		"logout":   {"forget the saved session", a.runLogout},
		"whoami":   {"show the signed-in user", a.runWhoami},
		"list":     {"list tasks, optionally filtered", a.runList},
		"add":      {"create a task", a.runAdd},
		"edit":     {"change a task's title, description or priority", a.runEdit},
		"toggle":   {"flip a task between pending and completed", a.runToggle},
		"rm":       {"delete a task", a.runRemove},
		"demo":     {"try every task command without an account", a.runDemo},
	}
	return a
}

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage(a.out)
		return exitOK
	}

	cmd, ok := a.commands[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n\n", args[0])
		a.usage(a.errOut)
		return exitUsage
	}

	err := cmd.run(ctx, args[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	default:
		a.logger.Debug().
			Err(err).
			Str("command", args[0]).
			Msg("command failed")
		fmt.Fprintf(a.errOut, "error: %s\n", err)
		return exitError
	}
}

func (a *App) usage(w io.Writer) {
	fmt.Fprintln(w, "usage: todo <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, a.commands[name].summary)
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *App) parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s", errUsage, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.errOut, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return errUsage
	}
	return nil
}

// prompt reads one line from the input, used for values not given as
// flags.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
