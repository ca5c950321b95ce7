package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/adanyl0v/go-todo-client/internal/models"
	"github.com/adanyl0v/go-todo-client/internal/tasks"
)

// board returns a Board over the live backend, refusing when nobody is
// signed in.
func (a *App) board() (*tasks.Board, error) {
	if !a.session.IsAuthenticated() {
		return nil, errNotLoggedIn
	}
	return tasks.NewBoard(a.logger, a.live), nil
}

func (a *App) loadedBoard(ctx context.Context) (*tasks.Board, error) {
	board, err := a.board()
	if err != nil {
		return nil, err
	}
	err = board.Load(ctx)
	if err != nil {
		return nil, err
	}
	return board, nil
}

func requireID(fs *flag.FlagSet, id int64) error {
	if id <= 0 {
		fmt.Fprintln(fs.Output(), "a positive --id is required")
		fs.Usage()
		return errUsage
	}
	return nil
}

func (a *App) runList(ctx context.Context, args []string) error {
	fs := a.newFlagSet("list")
	search := fs.String("search", "", "case-insensitive text in title or description")
	status := fs.String("status", tasks.FilterAll, "all, pending or completed")
	priority := fs.String("priority", tasks.FilterAll, "all, low, medium or high")
	err := a.parseFlags(fs, args)
	if err != nil {
		return err
	}

	criteria := tasks.Criteria{Search: *search}
	criteria.Status, err = tasks.ParseStatusFilter(*status)
	if err != nil {
		return err
	}
	criteria.Priority, err = tasks.ParsePriorityFilter(*priority)
	if err != nil {
		return err
	}

	board, err := a.loadedBoard(ctx)
	if err != nil {
		return err
	}
	renderTasks(a.out, board.Filtered(criteria))
	renderStats(a.out, board.Stats())
	return nil
}

func (a *App) runAdd(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "optional details")
	priority := fs.String("priority", string(models.PriorityMedium), "low, medium or high")
	err := a.parseFlags(fs, args)
	if err != nil {
		return err
	}

	board, err := a.board()
	if err != nil {
		return err
	}
	task, err := board.Add(ctx, tasks.Draft{
		Title:       *title,
		Description: *description,
		Priority:    models.Priority(*priority),
	})
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, "Created ")
	renderTask(a.out, *task)
	return nil
}

func (a *App) runEdit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("edit")
	id := fs.Int64("id", 0, "task id")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description, empty to clear")
	priority := fs.String("priority", "", "new priority")
	err := a.parseFlags(fs, args)
	if err != nil {
		return err
	}
	err = requireID(fs, *id)
	if err != nil {
		return err
	}

	board, err := a.loadedBoard(ctx)
	if err != nil {
		return err
	}
	err = board.BeginEdit(*id)
	if err != nil {
		return fmt.Errorf("task #%d: %w", *id, err)
	}

	draft, _, _ := board.EditDraft()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			draft.Title = *title
		case "description":
			draft.Description = *description
		case "priority":
			draft.Priority = models.Priority(*priority)
		}
	})
	err = board.SetEditDraft(draft)
	if err != nil {
		return err
	}

	err = board.SaveEdit(ctx, *id)
	if err != nil {
		return err
	}
	task, _ := board.Task(*id)
	fmt.Fprint(a.out, "Updated ")
	renderTask(a.out, task)
	return nil
}

func (a *App) runToggle(ctx context.Context, args []string) error {
	fs := a.newFlagSet("toggle")
	id := fs.Int64("id", 0, "task id")
	err := a.parseFlags(fs, args)
	if err != nil {
		return err
	}
	err = requireID(fs, *id)
	if err != nil {
		return err
	}

	board, err := a.loadedBoard(ctx)
	if err != nil {
		return err
	}
	if _, ok := board.Task(*id); !ok {
		return fmt.Errorf("task #%d: %w", *id, tasks.ErrTaskNotFound)
	}
	err = board.Toggle(ctx, *id)
	if err != nil {
		return err
	}
	task, _ := board.Task(*id)
	fmt.Fprintf(a.out, "Task #%d is now %s.\n", task.ID, task.Status)
	return nil
}

func (a *App) runRemove(ctx context.Context, args []string) error {
	fs := a.newFlagSet("rm")
	id := fs.Int64("id", 0, "task id")
	err := a.parseFlags(fs, args)
	if err != nil {
		return err
	}
	err = requireID(fs, *id)
	if err != nil {
		return err
	}

	board, err := a.board()
	if err != nil {
		return err
	}
	err = board.Remove(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted task #%d.\n", *id)
	return nil
}
