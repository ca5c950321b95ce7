// Package testbackend is an in-process implementation of the task
// backend contract. It exists for tests of the client packages.
package testbackend

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

const (
	jwtIssuer   = "todo-testbackend"
	jwtTokenTTL = 24 * time.Hour
)

type user struct {
	models.User
	passwordHash string
}

// Request is what the server saw, kept for assertions.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
	Body          []byte
}

type Server struct {
	logger        zerolog.Logger
	jwtSigningKey []byte
	engine        *gin.Engine

	mu         sync.Mutex
	users      map[string]*user
	tasks      map[int64][]models.Task
	nextUserID int64
	nextTaskID int64
	requests   []Request
	now        func() time.Time
}

func New(logger zerolog.Logger, jwtSigningKey string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		logger:        logger,
		jwtSigningKey: []byte(jwtSigningKey),
		users:         make(map[string]*user),
		tasks:         make(map[int64][]models.Task),
		now:           time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.recordRequest)
	s.registerRoutes(router)
	s.engine = router
	return s
}

func (s *Server) registerRoutes(router gin.IRouter) {
	router = router.Group("/api")

	authRouter := router.Group("/auth")
	authRouter.POST("/login", s.HandleLogin)
	authRouter.POST("/register", s.HandleRegister)

	taskRouter := router.Group("/tasks", s.HandleAuthMiddleware)
	taskRouter.GET("", s.HandleGetTasks)
	taskRouter.POST("", s.HandleCreateTask)
	taskRouter.PUT("/:id", s.HandleUpdateTask)
	taskRouter.DELETE("/:id", s.HandleDeleteTask)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) recordRequest(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		ContentType:   c.GetHeader("Content-Type"),
		RequestID:     c.GetHeader("X-Request-ID"),
		Body:          body,
	})
	s.mu.Unlock()

	c.Next()
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// Tasks returns a copy of the tasks owned by userID, newest first.
func (s *Server) Tasks(userID int64) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks[userID]...)
}
