package testbackend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

type createTaskRequest struct {
	Title       string           `json:"title" binding:"max=255"`
	Description *string          `json:"description,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
}

type updateTaskRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *models.Status   `json:"status,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
}

func userIDFromContext(c *gin.Context) (int64, bool) {
	value, exists := c.Get(userIDCtxKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

func (s *Server) HandleGetTasks(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		s.logger.Error().Msg("no user id found in context")
		abortStatus(c, http.StatusUnauthorized)
		return
	}

	tasks := s.Tasks(userID)
	if len(tasks) == 0 {
		s.logger.Warn().Msg("no tasks found")
		c.Status(http.StatusOK)
		return
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Msg("fetched tasks")
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) HandleCreateTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		s.logger.Error().Msg("no user id found in context")
		abortStatus(c, http.StatusUnauthorized)
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		abort(c, http.StatusBadRequest, "title is required")
		return
	}

	priority := models.PriorityMedium
	if req.Priority != nil {
		if !req.Priority.Valid() {
			abort(c, http.StatusBadRequest, "invalid priority")
			return
		}
		priority = *req.Priority
	}

	now := models.NewTimestamp(s.now().UTC())
	task := models.Task{
		Title:     title,
		Status:    models.StatusPending,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: &now,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}

	s.mu.Lock()
	s.nextTaskID++
	task.ID = s.nextTaskID
	s.tasks[userID] = append([]models.Task{task}, s.tasks[userID]...)
	s.mu.Unlock()

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", userID).
		Msg("created task")
	c.JSON(http.StatusCreated, task)
}

func (s *Server) HandleUpdateTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		s.logger.Error().Msg("no user id found in context")
		abortStatus(c, http.StatusUnauthorized)
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid task id")
		return
	}

	var req updateTaskRequest
	err = c.ShouldBindJSON(&req)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, http.StatusBadRequest, msgInvalidRequestBody)
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		abort(c, http.StatusBadRequest, "title cannot be empty")
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		abort(c, http.StatusBadRequest, "invalid status")
		return
	}
	if req.Priority != nil && !req.Priority.Valid() {
		abort(c, http.StatusBadRequest, "invalid priority")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks[userID]
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}

		task := &tasks[i]
		if req.Title != nil {
			task.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.Status != nil {
			task.Status = *req.Status
		}
		if req.Priority != nil {
			task.Priority = *req.Priority
		}
		updatedAt := models.NewTimestamp(s.now().UTC())
		task.UpdatedAt = &updatedAt

		s.logger.Info().
			Int64("task_id", task.ID).
			Int64("user_id", userID).
			Msg("updated task")
		c.JSON(http.StatusOK, *task)
		return
	}

	s.logger.Warn().
		Int64("task_id", taskID).
		Msg(msgTaskNotFound)
	abort(c, http.StatusNotFound, msgTaskNotFound)
}

func (s *Server) HandleDeleteTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		s.logger.Error().Msg("no user id found in context")
		abortStatus(c, http.StatusUnauthorized)
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid task id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.tasks[userID]
	for i := range tasks {
		if tasks[i].ID == taskID {
			s.tasks[userID] = append(tasks[:i:i], tasks[i+1:]...)
			s.logger.Info().
				Int64("task_id", taskID).
				Int64("user_id", userID).
				Msg("deleted task")
			c.Status(http.StatusNoContent)
			return
		}
	}

	s.logger.Warn().
		Int64("task_id", taskID).
		Msg(msgTaskNotFound)
	abort(c, http.StatusNotFound, msgTaskNotFound)
}
