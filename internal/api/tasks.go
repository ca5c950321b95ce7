package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

// TokenSource supplies the bearer token attached to task requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

type TaskClient struct {
	client *Client
	tokens TokenSource
}

func NewTaskClient(client *Client, tokens TokenSource) *TaskClient {
	return &TaskClient{
		client: client,
		tokens: tokens,
	}
}

func (c *TaskClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *TaskClient) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := c.client.do(ctx, request{
		op:       "list_tasks",
		method:   http.MethodGet,
		path:     "/tasks",
		token:    c.token(),
		out:      &tasks,
		fallback: "failed to fetch tasks",
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *TaskClient) Create(ctx context.Context, params models.CreateTaskParams) (*models.Task, error) {
	var task models.Task
	err := c.client.do(ctx, request{
		op:       "create_task",
		method:   http.MethodPost,
		path:     "/tasks",
		token:    c.token(),
		body:     params,
		out:      &task,
		fallback: "failed to create task",
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *TaskClient) Update(ctx context.Context, id int64, params models.UpdateTaskParams) (*models.Task, error) {
	var task models.Task
	err := c.client.do(ctx, request{
		op:       "update_task",
		method:   http.MethodPut,
		path:     taskPath(id),
		token:    c.token(),
		body:     params,
		out:      &task,
		fallback: "failed to update task",
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *TaskClient) Delete(ctx context.Context, id int64) error {
	return c.client.do(ctx, request{
		op:       "delete_task",
		method:   http.MethodDelete,
		path:     taskPath(id),
		token:    c.token(),
		fallback: "failed to delete task",
	})
}

// ToggleStatus sends only the flipped status. The rest of the task is
// left to the server.
func (c *TaskClient) ToggleStatus(ctx context.Context, id int64, current models.Status) (*models.Task, error) {
	status := current.Opposite()
	return c.Update(ctx, id, models.UpdateTaskParams{Status: &status})
}
