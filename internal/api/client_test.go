package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-client/internal/models"
	"github.com/adanyl0v/go-todo-client/internal/testbackend"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newBackend(t *testing.T) (*testbackend.Server, *Client) {
	t.Helper()
	backend := testbackend.New(zerolog.Nop(), "test-signing-key")
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, New(zerolog.Nop(), srv.URL+"/api")
}

func TestRegisterLoginAndTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t)

	reg, err := client.Register(ctx, "ann@example.com", "secret1", "Ann")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Token == "" || reg.User.Name != "Ann" {
		t.Fatalf("unexpected register response: %+v", reg)
	}

	login, err := client.Login(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Fatalf("expected same user, got %d and %d", login.User.ID, reg.User.ID)
	}

	tasks := NewTaskClient(client, staticToken(login.Token))

	list, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", list)
	}

	desc := "two litres"
	created, err := tasks.Create(ctx, models.CreateTaskParams{Title: "Buy milk", Description: &desc})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.StatusPending || created.Priority != models.PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", created)
	}

	high := models.PriorityHigh
	updated, err := tasks.Update(ctx, created.ID, models.UpdateTaskParams{Priority: &high})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Priority != models.PriorityHigh || updated.Title != "Buy milk" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err = tasks.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if left := backend.Tasks(login.User.ID); len(left) != 0 {
		t.Fatalf("expected no tasks left, got %d", len(left))
	}

	for _, req := range backend.Requests() {
		if req.ContentType != "application/json" {
			t.Fatalf("%s %s: expected json content type, got %q", req.Method, req.Path, req.ContentType)
		}
		if req.RequestID == "" {
			t.Fatalf("%s %s: missing request id", req.Method, req.Path)
		}
		isAuth := strings.HasPrefix(req.Path, "/api/auth/")
		if !isAuth && req.Authorization != "Bearer "+login.Token {
			t.Fatalf("%s %s: expected bearer token, got %q", req.Method, req.Path, req.Authorization)
		}
		if isAuth && req.Authorization != "" {
			t.Fatalf("%s %s: auth request must not carry a token", req.Method, req.Path)
		}
	}
}

func TestToggleStatusSendsOnlyStatus(t *testing.T) {
	ctx := context.Background()
	backend, client := newBackend(t)

	reg, err := client.Register(ctx, "bob@example.com", "secret1", "Bob")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	tasks := NewTaskClient(client, staticToken(reg.Token))

	created, err := tasks.Create(ctx, models.CreateTaskParams{Title: "Walk the dog"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	backend.ResetRequests()

	toggled, err := tasks.ToggleStatus(ctx, created.ID, created.Status)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %q", toggled.Status)
	}

	reqs := backend.Requests()
	if len(reqs) != 1 || reqs[0].Method != http.MethodPut {
		t.Fatalf("expected a single PUT, got %+v", reqs)
	}
	var body map[string]any
	if err = json.Unmarshal(reqs[0].Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 1 || body["status"] != "completed" {
		t.Fatalf("expected only status in body, got %v", body)
	}

	again, err := tasks.ToggleStatus(ctx, created.ID, toggled.Status)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if again.Status != created.Status {
		t.Fatalf("expected status back to %q, got %q", created.Status, again.Status)
	}
}

func TestLoginRejectedCarriesBackendMessage(t *testing.T) {
	backend, client := newBackend(t)
	if _, err := backend.SeedUser("cid@example.com", "secret1", "Cid"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := client.Login(context.Background(), "cid@example.com", "wrong-password")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized || authErr.Message != "invalid email or password" {
		t.Fatalf("unexpected auth error: %+v", authErr)
	}
}

func TestRegisterConflict(t *testing.T) {
	backend, client := newBackend(t)
	if _, err := backend.SeedUser("dee@example.com", "secret1", "Dee"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := client.Register(context.Background(), "dee@example.com", "secret1", "Dee")
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict AuthError, got %v", err)
	}
	if authErr.Message != "user already exists" {
		t.Fatalf("unexpected message %q", authErr.Message)
	}
}

func TestUnreachableBackendIsConnectivityError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL + "/api"
	srv.Close()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := New(zerolog.Nop(), baseURL, WithMetrics(metrics))

	_, err := client.Login(context.Background(), "bad@x.com", "wrong")
	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if !strings.Contains(err.Error(), "backend is running") {
		t.Fatalf("expected user-facing message, got %q", err.Error())
	}
	if got := testutil.ToFloat64(metrics.connectivityFailures.WithLabelValues("login")); got != 1 {
		t.Fatalf("expected 1 connectivity failure, got %v", got)
	}
}

func TestRequestErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tasks := NewTaskClient(New(zerolog.Nop(), srv.URL), nil)

	cases := []struct {
		name string
		call func() error
		want string
	}{
		{"list", func() error { _, err := tasks.List(context.Background()); return err }, "failed to fetch tasks"},
		{"create", func() error {
			_, err := tasks.Create(context.Background(), models.CreateTaskParams{Title: "x"})
			return err
		}, "failed to create task"},
		{"update", func() error {
			_, err := tasks.Update(context.Background(), 1, models.UpdateTaskParams{})
			return err
		}, "failed to update task"},
		{"delete", func() error { return tasks.Delete(context.Background(), 1) }, "failed to delete task"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var reqErr *RequestError
			err := tc.call()
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %v", err)
			}
			if reqErr.StatusCode != http.StatusInternalServerError || reqErr.Message != tc.want {
				t.Fatalf("unexpected error: %+v", reqErr)
			}
		})
	}
}

func TestRequestErrorUsesBackendMessage(t *testing.T) {
	ctx := context.Background()
	_, client := newBackend(t)

	reg, err := client.Register(ctx, "eve@example.com", "secret1", "Eve")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	tasks := NewTaskClient(client, staticToken(reg.Token))

	_, err = tasks.ToggleStatus(ctx, 404, models.StatusPending)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 RequestError, got %v", err)
	}
	if reqErr.Message != "task not found" {
		t.Fatalf("unexpected message %q", reqErr.Message)
	}
}

func TestMissingTokenIsRejectedByBackend(t *testing.T) {
	backend, client := newBackend(t)
	tasks := NewTaskClient(client, staticToken(""))

	_, err := tasks.List(context.Background())
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 RequestError, got %v", err)
	}
	if reqs := backend.Requests(); len(reqs) != 1 || reqs[0].Authorization != "" {
		t.Fatalf("expected one unauthenticated request, got %+v", reqs)
	}
}

func TestMetricsCountResponses(t *testing.T) {
	backend := testbackend.New(zerolog.Nop(), "k")
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := New(zerolog.Nop(), srv.URL+"/api", WithMetrics(metrics))

	if _, err := client.Register(context.Background(), "fay@example.com", "secret1", "Fay"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := testutil.ToFloat64(metrics.requests.WithLabelValues("201", "post")); got != 1 {
		t.Fatalf("expected one counted POST, got %v", got)
	}
}
