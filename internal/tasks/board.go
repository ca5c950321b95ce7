package tasks

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotEditing   = errors.New("task is not being edited")
	ErrBusy         = errors.New("action already in progress")
)

// Backend is where a Board's changes are confirmed. api.TaskClient is
// the network-backed one, MemoryBackend the demo one.
type Backend interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, params models.CreateTaskParams) (*models.Task, error)
	Update(ctx context.Context, id int64, params models.UpdateTaskParams) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Toggler is implemented by backends that flip a task's status given
// the status the caller last saw. Board.Toggle prefers it over Update.
type Toggler interface {
	ToggleStatus(ctx context.Context, id int64, current models.Status) (*models.Task, error)
}

// Draft holds the form fields of a task being composed or edited.
type Draft struct {
	Title       string
	Description string
	Priority    models.Priority
}

func NewDraft() Draft {
	return Draft{Priority: models.PriorityMedium}
}

// Board is the task collection a view renders, plus the compose and
// edit state around it. The collection only changes after the backend
// has confirmed a change. The lock is never held across a backend call.
type Board struct {
	logger  zerolog.Logger
	backend Backend

	mu        sync.Mutex
	tasks     []models.Task
	composing bool
	compose   Draft
	editing   bool
	editingID int64
	edit      Draft
	inflight  map[string]struct{}
}

func NewBoard(logger zerolog.Logger, backend Backend) *Board {
	return &Board{
		logger:   logger,
		backend:  backend,
		tasks:    []models.Task{},
		compose:  NewDraft(),
		edit:     NewDraft(),
		inflight: make(map[string]struct{}),
	}
}

// begin marks action as in flight. A second call with the same action
// fails with ErrBusy until the returned func runs.
func (b *Board) begin(action string) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, busy := b.inflight[action]; busy {
		b.logger.Debug().
			Str("action", action).
			Msg("action already in progress")
		return nil, ErrBusy
	}
	b.inflight[action] = struct{}{}

	return func() {
		b.mu.Lock()
		delete(b.inflight, action)
		b.mu.Unlock()
	}, nil
}

func taskAction(action string, id int64) string {
	return action + ":" + strconv.FormatInt(id, 10)
}

func (b *Board) Load(ctx context.Context) error {
	done, err := b.begin("load")
	if err != nil {
		return err
	}
	defer done()

	tasks, err := b.backend.List(ctx)
	if err != nil {
		b.logger.Error().
			Err(err).
			Msg("failed to load tasks")
		return err
	}

	b.mu.Lock()
	b.tasks = append([]models.Task{}, tasks...)
	b.mu.Unlock()

	b.logger.Debug().
		Int("count", len(tasks)).
		Msg("loaded tasks")
	return nil
}

func (b *Board) Tasks() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Task{}, b.tasks...)
}

func (b *Board) Task(id int64) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return b.tasks[i], true
}

func (b *Board) Stats() Stats {
	return ComputeStats(b.Tasks())
}

func (b *Board) Filtered(c Criteria) []models.Task {
	return Filter(b.Tasks(), c)
}

// indexOf must be called with b.mu held.
func (b *Board) indexOf(id int64) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) replace(task models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(task.ID); i >= 0 {
		b.tasks[i] = task
	}
}

func (b *Board) Compose(draft Draft) {
	b.mu.Lock()
	b.composing = true
	b.compose = draft
	b.mu.Unlock()
}

func (b *Board) ComposeDraft() (Draft, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.compose, b.composing
}

func (b *Board) CancelCompose() {
	b.mu.Lock()
	b.composing = false
	b.compose = NewDraft()
	b.mu.Unlock()
}

// Add creates a task from draft and puts it first. An empty or
// whitespace-only title is rejected before the backend is called.
func (b *Board) Add(ctx context.Context, draft Draft) (*models.Task, error) {
	err := models.ValidateTitle(draft.Title)
	if err != nil {
		return nil, err
	}
	priority := draft.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	err = models.ValidatePriority(priority)
	if err != nil {
		return nil, err
	}

	done, err := b.begin("add")
	if err != nil {
		return nil, err
	}
	defer done()

	params := models.CreateTaskParams{
		Title:    strings.TrimSpace(draft.Title),
		Priority: priority,
	}
	if description := strings.TrimSpace(draft.Description); description != "" {
		params.Description = &description
	}

	task, err := b.backend.Create(ctx, params)
	if err != nil {
		b.logger.Error().
			Err(err).
			Msg("failed to create task")
		return nil, err
	}

	b.mu.Lock()
	b.tasks = append([]models.Task{*task}, b.tasks...)
	b.composing = false
	b.compose = NewDraft()
	b.mu.Unlock()

	b.logger.Info().
		Int64("task_id", task.ID).
		Msg("created task")
	return task, nil
}

// Toggle flips a task between pending and completed. Unknown ids are
// ignored.
func (b *Board) Toggle(ctx context.Context, id int64) error {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		b.logger.Debug().
			Int64("task_id", id).
			Msg("toggle of unknown task ignored")
		return nil
	}
	current := b.tasks[i].Status
	b.mu.Unlock()

	done, err := b.begin(taskAction("toggle", id))
	if err != nil {
		return err
	}
	defer done()

	task, err := b.toggleStatus(ctx, id, current)
	if err != nil {
		b.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to toggle task status")
		return err
	}
	b.replace(*task)

	b.logger.Info().
		Int64("task_id", id).
		Str("status", string(task.Status)).
		Msg("toggled task status")
	return nil
}

func (b *Board) toggleStatus(ctx context.Context, id int64, current models.Status) (*models.Task, error) {
	if toggler, ok := b.backend.(Toggler); ok {
		return toggler.ToggleStatus(ctx, id, current)
	}
	status := current.Opposite()
	return b.backend.Update(ctx, id, models.UpdateTaskParams{Status: &status})
}

func (b *Board) Remove(ctx context.Context, id int64) error {
	done, err := b.begin(taskAction("remove", id))
	if err != nil {
		return err
	}
	defer done()

	err = b.backend.Delete(ctx, id)
	if err != nil {
		b.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}

	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.tasks = append(b.tasks[:i:i], b.tasks[i+1:]...)
	}
	if b.editing && b.editingID == id {
		b.editing = false
		b.edit = NewDraft()
	}
	b.mu.Unlock()

	b.logger.Info().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

// BeginEdit starts editing id, seeding the draft from the task. Only
// one task is edited at a time; a second call switches to the new id.
func (b *Board) BeginEdit(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	task := b.tasks[i]
	b.editing = true
	b.editingID = id
	b.edit = Draft{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
	}
	return nil
}

func (b *Board) EditDraft() (Draft, int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.editing {
		return Draft{}, 0, false
	}
	return b.edit, b.editingID, true
}

func (b *Board) SetEditDraft(draft Draft) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.editing {
		return ErrNotEditing
	}
	b.edit = draft
	return nil
}

// SaveEdit writes the trimmed draft over the task's title, description
// and priority. On a validation or backend error the task stays in
// edit mode with its draft intact.
func (b *Board) SaveEdit(ctx context.Context, id int64) error {
	b.mu.Lock()
	if !b.editing || b.editingID != id {
		b.mu.Unlock()
		return ErrNotEditing
	}
	draft := b.edit
	b.mu.Unlock()

	err := models.ValidateTitle(draft.Title)
	if err != nil {
		return err
	}
	err = models.ValidatePriority(draft.Priority)
	if err != nil {
		return err
	}

	done, err := b.begin(taskAction("edit", id))
	if err != nil {
		return err
	}
	defer done()

	title := strings.TrimSpace(draft.Title)
	description := strings.TrimSpace(draft.Description)
	priority := draft.Priority
	task, err := b.backend.Update(ctx, id, models.UpdateTaskParams{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
	})
	if err != nil {
		b.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to update task")
		return err
	}
	b.replace(*task)

	b.mu.Lock()
	if b.editing && b.editingID == id {
		b.editing = false
		b.edit = NewDraft()
	}
	b.mu.Unlock()

	b.logger.Info().
		Int64("task_id", id).
		Msg("updated task")
	return nil
}

func (b *Board) CancelEdit() {
	b.mu.Lock()
	b.editing = false
	b.editingID = 0
	b.edit = NewDraft()
	b.mu.Unlock()
}
