package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/adanyl0v/go-todo-client/internal/models"
	"github.com/adanyl0v/go-todo-client/internal/tasks"
)

const demoBanner = "Demo mode: changes are kept in memory only. " +
	"Sign up with 'todo register' to save your data permanently."

const demoHelp = `commands:
  list                         show tasks matching the current filter
  stats                        show task counts
  filter key=value...          set status, priority or search; 'filter reset' clears
  add [priority] <title...>    create a task, medium priority by default
  toggle <id>                  flip pending and completed
  rm <id>                      delete a task
  edit <id>                    start editing a task
  title <text>                 set the edited title
  desc <text>                  set the edited description
  priority <p>                 set the edited priority
  save                         save the edit
  cancel                       discard the edit or a failed add
  help                         show this help
  quit                         leave the demo`

var errQuit = errors.New("quit")

type demoShell struct {
	out      io.Writer
	board    *tasks.Board
	criteria tasks.Criteria
}

func (a *App) runDemo(ctx context.Context, args []string) error {
	err := a.parseFlags(a.newFlagSet("demo"), args)
	if err != nil {
		return err
	}

	shell := &demoShell{
		out:   a.out,
		board: tasks.NewBoard(a.logger, a.demoBackend()),
	}
	err = shell.board.Load(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, demoBanner)
	shell.list()

	for {
		fmt.Fprint(a.out, "demo> ")
		line, readErr := a.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			err = shell.exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(a.out, "error: %s\n", err)
			}
		}
		if readErr != nil {
			fmt.Fprintln(a.out)
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

func (s *demoShell) exec(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "help":
		fmt.Fprintln(s.out, demoHelp)
	case "quit", "exit":
		return errQuit
	case "list":
		s.list()
	case "stats":
		renderStats(s.out, s.board.Stats())
	case "filter":
		return s.filter(rest)
	case "add":
		return s.add(ctx, rest)
	case "toggle":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if _, ok := s.board.Task(id); !ok {
			return fmt.Errorf("task #%d: %w", id, tasks.ErrTaskNotFound)
		}
		err = s.board.Toggle(ctx, id)
		if err != nil {
			return err
		}
		task, _ := s.board.Task(id)
		renderTask(s.out, task)
	case "rm":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		err = s.board.Remove(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Deleted task #%d.\n", id)
	case "edit":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		err = s.board.BeginEdit(id)
		if err != nil {
			return fmt.Errorf("task #%d: %w", id, err)
		}
		s.showDraft()
	case "title", "desc", "priority":
		return s.setDraftField(name, rest)
	case "save":
		_, id, ok := s.board.EditDraft()
		if !ok {
			return tasks.ErrNotEditing
		}
		err := s.board.SaveEdit(ctx, id)
		if err != nil {
			return err
		}
		task, _ := s.board.Task(id)
		fmt.Fprint(s.out, "Updated ")
		renderTask(s.out, task)
	case "cancel":
		s.cancel()
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list", name)
	}
	return nil
}

func (s *demoShell) list() {
	renderTasks(s.out, s.board.Filtered(s.criteria))
	renderStats(s.out, s.board.Stats())
}

func (s *demoShell) filter(args string) error {
	if args == "" {
		fmt.Fprintf(s.out, "status=%s priority=%s search=%q\n",
			orAll(string(s.criteria.Status)), orAll(string(s.criteria.Priority)), s.criteria.Search)
		return nil
	}
	if args == "reset" {
		s.criteria = tasks.Criteria{}
		s.list()
		return nil
	}

	criteria := s.criteria
	for _, pair := range strings.Fields(args) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", pair)
		}

		var err error
		switch key {
		case "status":
			criteria.Status, err = tasks.ParseStatusFilter(value)
		case "priority":
			criteria.Priority, err = tasks.ParsePriorityFilter(value)
		case "search":
			criteria.Search = value
		default:
			err = fmt.Errorf("unknown filter %q", key)
		}
		if err != nil {
			return err
		}
	}
	s.criteria = criteria
	s.list()
	return nil
}

func (s *demoShell) add(ctx context.Context, args string) error {
	draft := tasks.NewDraft()
	draft.Title = args
	first, rest, _ := strings.Cut(args, " ")
	if priority := models.Priority(first); priority.Valid() {
		draft.Priority = priority
		draft.Title = rest
	}
	s.board.Compose(draft)

	task, err := s.board.Add(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, "Created ")
	renderTask(s.out, *task)
	return nil
}

// cancel drops the edit in progress, or else a new task whose add
// failed.
func (s *demoShell) cancel() {
	if _, _, editing := s.board.EditDraft(); editing {
		s.board.CancelEdit()
		fmt.Fprintln(s.out, "Edit discarded.")
		return
	}
	if _, composing := s.board.ComposeDraft(); composing {
		s.board.CancelCompose()
		fmt.Fprintln(s.out, "New task discarded.")
		return
	}
	fmt.Fprintln(s.out, "Nothing to cancel.")
}

func (s *demoShell) setDraftField(field, value string) error {
	draft, _, ok := s.board.EditDraft()
	if !ok {
		return fmt.Errorf("%w, run 'edit <id>' first", tasks.ErrNotEditing)
	}
	switch field {
	case "title":
		draft.Title = value
	case "desc":
		draft.Description = value
	case "priority":
		priority := models.Priority(value)
		err := models.ValidatePriority(priority)
		if err != nil {
			return err
		}
		draft.Priority = priority
	}
	err := s.board.SetEditDraft(draft)
	if err != nil {
		return err
	}
	s.showDraft()
	return nil
}

func (s *demoShell) showDraft() {
	draft, id, ok := s.board.EditDraft()
	if ok {
		renderDraft(s.out, id, draft)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func orAll(s string) string {
	if s == "" {
		return tasks.FilterAll
	}
	return s
}
