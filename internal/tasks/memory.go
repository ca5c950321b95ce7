package tasks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

// MemoryBackend keeps tasks in process memory only. It backs demo mode.
type MemoryBackend struct {
	mu    sync.Mutex
	tasks []models.Task
	now   func() time.Time
}

func NewMemoryBackend(seed []models.Task) *MemoryBackend {
	return &MemoryBackend{
		tasks: append([]models.Task{}, seed...),
		now:   time.Now,
	}
}

func NewDemoBackend() *MemoryBackend {
	return NewMemoryBackend(DemoTasks())
}

func (m *MemoryBackend) List(context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Task{}, m.tasks...), nil
}

// nextID is one past the largest id held, or 1 when empty. It must be
// called with m.mu held.
func (m *MemoryBackend) nextID() int64 {
	var maxID int64
	for _, task := range m.tasks {
		if task.ID > maxID {
			maxID = task.ID
		}
	}
	return maxID + 1
}

func (m *MemoryBackend) Create(_ context.Context, params models.CreateTaskParams) (*models.Task, error) {
	err := models.ValidateTitle(params.Title)
	if err != nil {
		return nil, err
	}
	priority := params.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	err = models.ValidatePriority(priority)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	y, mo, d := m.now().Date()
	task := models.Task{
		ID:        m.nextID(),
		Title:     strings.TrimSpace(params.Title),
		Status:    models.StatusPending,
		Priority:  priority,
		CreatedAt: models.NewTimestamp(time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)),
	}
	if params.Description != nil {
		task.Description = strings.TrimSpace(*params.Description)
	}

	m.tasks = append([]models.Task{task}, m.tasks...)
	return &task, nil
}

func (m *MemoryBackend) Update(_ context.Context, id int64, params models.UpdateTaskParams) (*models.Task, error) {
	if params.Title != nil {
		err := models.ValidateTitle(*params.Title)
		if err != nil {
			return nil, err
		}
	}
	if params.Status != nil {
		err := models.ValidateStatus(*params.Status)
		if err != nil {
			return nil, err
		}
	}
	if params.Priority != nil {
		err := models.ValidatePriority(*params.Priority)
		if err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].ID != id {
			continue
		}
		task := &m.tasks[i]
		if params.Title != nil {
			task.Title = strings.TrimSpace(*params.Title)
		}
		if params.Description != nil {
			task.Description = strings.TrimSpace(*params.Description)
		}
		if params.Status != nil {
			task.Status = *params.Status
		}
		if params.Priority != nil {
			task.Priority = *params.Priority
		}
		updated := *task
		return &updated, nil
	}
	return nil, ErrTaskNotFound
}

func (m *MemoryBackend) ToggleStatus(ctx context.Context, id int64, current models.Status) (*models.Task, error) {
	status := current.Opposite()
	return m.Update(ctx, id, models.UpdateTaskParams{Status: &status})
}

// Delete of an unknown id is a no-op.
func (m *MemoryBackend) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func demoDate(day int) models.Timestamp {
	return models.NewTimestamp(time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC))
}

// DemoTasks is the fixed sample data demo mode starts from: 5 pending,
// 3 completed, 3 high priority of which 2 are still pending.
func DemoTasks() []models.Task {
	return []models.Task{
		{
			ID:          1,
			Title:       "Complete quarterly sales report",
			Description: "Compile Q4 sales data and create comprehensive report for management review",
			Status:      models.StatusPending,
			Priority:    models.PriorityHigh,
			CreatedAt:   demoDate(15),
		},
		{
			ID:          2,
			Title:       "Review marketing campaign performance",
			Description: "Analyze metrics from recent social media campaigns and prepare optimization recommendations",
			Status:      models.StatusCompleted,
			Priority:    models.PriorityMedium,
			CreatedAt:   demoDate(14),
		},
		{
			ID:          3,
			Title:       "Update project documentation",
			Description: "Revise technical documentation for the new product features and API endpoints",
			Status:      models.StatusPending,
			Priority:    models.PriorityLow,
			CreatedAt:   demoDate(13),
		},
		{
			ID:          4,
			Title:       "Schedule team standup meetings",
			Description: "Organize weekly standup meetings for the development team and send calendar invites",
			Status:      models.StatusCompleted,
			Priority:    models.PriorityHigh,
			CreatedAt:   demoDate(12),
		},
		{
			ID:          5,
			Title:       "Conduct code review session",
			Description: "Review pull requests from team members and provide feedback on code quality",
			Status:      models.StatusPending,
			Priority:    models.PriorityMedium,
			CreatedAt:   demoDate(11),
		},
		{
			ID:          6,
			Title:       "Prepare client presentation",
			Description: "Create slides for upcoming client meeting showcasing project progress and next steps",
			Status:      models.StatusPending,
			Priority:    models.PriorityHigh,
			CreatedAt:   demoDate(10),
		},
		{
			ID:          7,
			Title:       "Database backup and maintenance",
			Description: "Perform routine database maintenance and ensure backup systems are functioning properly",
			Status:      models.StatusCompleted,
			Priority:    models.PriorityMedium,
			CreatedAt:   demoDate(9),
		},
		{
			ID:          8,
			Title:       "Employee onboarding checklist",
			Description: "Update onboarding process documentation and prepare materials for new team member",
			Status:      models.StatusPending,
			Priority:    models.PriorityLow,
			CreatedAt:   demoDate(8),
		},
	}
}
