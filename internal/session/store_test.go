package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-client/internal/api"
	"github.com/adanyl0v/go-todo-client/internal/testbackend"
)

func newFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	return NewFileStorage(filepath.Join(t.TempDir(), "nested", "session.json"))
}

func newClient(t *testing.T) (*testbackend.Server, *api.Client) {
	t.Helper()
	backend := testbackend.New(zerolog.Nop(), "test-signing-key")
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, api.New(zerolog.Nop(), srv.URL+"/api")
}

func mustStore(t *testing.T, storage Storage, auth Authenticator) *Store {
	t.Helper()
	store, err := New(context.Background(), zerolog.Nop(), storage, auth)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestLoginPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	backend, client := newClient(t)
	if _, err := backend.SeedUser("ann@example.com", "secret1", "Ann"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	storage := newFileStorage(t)

	store := mustStore(t, storage, client)
	if store.IsAuthenticated() {
		t.Fatalf("expected fresh store to be anonymous")
	}

	resp, err := store.Login(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !store.IsAuthenticated() || store.Token() != resp.Token {
		t.Fatalf("expected cached token after login")
	}

	reloaded := mustStore(t, storage, client)
	if reloaded.Token() != resp.Token {
		t.Fatalf("expected token to survive restart")
	}
	user, ok := reloaded.User()
	if !ok || user.Email != "ann@example.com" || user.Name != "Ann" {
		t.Fatalf("unexpected persisted user: %+v (ok=%v)", user, ok)
	}
}

func TestRegisterPersistsSession(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	storage := newFileStorage(t)
	store := mustStore(t, storage, client)

	if _, err := store.Register(ctx, "bob@example.com", "secret1", "Bob"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, ok, err := storage.Get(ctx, tokenKey)
	if err != nil || !ok || token == "" {
		t.Fatalf("expected token on disk, got %q ok=%v err=%v", token, ok, err)
	}
	if _, ok, _ = storage.Get(ctx, userKey); !ok {
		t.Fatalf("expected user on disk")
	}
}

func TestLogoutClearsBothKeys(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	storage := newFileStorage(t)
	store := mustStore(t, storage, client)

	// Logout on an anonymous session is fine.
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout anonymous: %v", err)
	}

	if _, err := store.Register(ctx, "cid@example.com", "secret1", "Cid"); err != nil {
		t.Fatalf("register: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Logout(ctx); err != nil {
			t.Fatalf("logout #%d: %v", i+1, err)
		}
		if store.IsAuthenticated() {
			t.Fatalf("expected anonymous after logout")
		}
		if _, ok := store.User(); ok {
			t.Fatalf("expected no user after logout")
		}
		for _, key := range []string{tokenKey, userKey} {
			if _, ok, _ := storage.Get(ctx, key); ok {
				t.Fatalf("expected %s to be cleared", key)
			}
		}
	}
}

func TestLoginAgainstUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := api.New(zerolog.Nop(), srv.URL+"/api")
	srv.Close()

	storage := newFileStorage(t)
	store := mustStore(t, storage, client)

	_, err := store.Login(context.Background(), "bad@x.com", "wrong")
	var connErr *api.ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if store.IsAuthenticated() || store.Token() != "" {
		t.Fatalf("expected token to stay unset")
	}
	if _, ok := store.User(); ok {
		t.Fatalf("expected user to stay unset")
	}
	if _, ok, _ := storage.Get(context.Background(), tokenKey); ok {
		t.Fatalf("expected nothing persisted")
	}
}

func TestRejectedLoginKeepsPreviousSession(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	store := mustStore(t, newFileStorage(t), client)

	resp, err := store.Register(ctx, "dee@example.com", "secret1", "Dee")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = store.Login(ctx, "dee@example.com", "nope-nope")
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if store.Token() != resp.Token {
		t.Fatalf("expected previous session to survive a rejected login")
	}
}

func TestMalformedPersistedUserIsIgnored(t *testing.T) {
	ctx := context.Background()
	storage := newFileStorage(t)
	if err := storage.Set(ctx, map[string]string{tokenKey: "tok", userKey: "{not json"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	store := mustStore(t, storage, nil)
	if !store.IsAuthenticated() {
		t.Fatalf("expected token to be loaded")
	}
	if _, ok := store.User(); ok {
		t.Fatalf("expected malformed user to be dropped")
	}
}

func TestCorruptSessionFileCanBeLoggedOut(t *testing.T) {
	ctx := context.Background()
	storage := newFileStorage(t)
	if err := os.MkdirAll(filepath.Dir(storage.Path()), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(storage.Path(), []byte("{garbage"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := mustStore(t, storage, nil)
	if store.IsAuthenticated() {
		t.Fatalf("expected a corrupt session to load as logged out")
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	data, err := os.ReadFile(storage.Path())
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	var values map[string]string
	if err = json.Unmarshal(data, &values); err != nil {
		t.Fatalf("session file still corrupt after logout: %q", data)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty session after logout, got %v", values)
	}
}

func TestCorruptSessionFileIsReplacedByLogin(t *testing.T) {
	ctx := context.Background()
	backend, client := newClient(t)
	if _, err := backend.SeedUser("dan@example.com", "secret1", "Dan"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	storage := newFileStorage(t)
	if err := os.MkdirAll(filepath.Dir(storage.Path()), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(storage.Path(), []byte("not json at all"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := mustStore(t, storage, client)
	if _, err := store.Login(ctx, "dan@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	restarted := mustStore(t, storage, client)
	if user, ok := restarted.User(); !ok || user.Name != "Dan" {
		t.Fatalf("expected Dan after restart, got %+v (ok=%v)", user, ok)
	}
}

// failingStorage rejects any write that includes the user entry.
type failingStorage struct {
	*FileStorage
}

func (s failingStorage) Set(ctx context.Context, values map[string]string) error {
	if _, ok := values[userKey]; ok {
		return errors.New("disk full")
	}
	return s.FileStorage.Set(ctx, values)
}

func TestLoginFailsWhenSessionCannotBePersisted(t *testing.T) {
	ctx := context.Background()
	backend, client := newClient(t)
	if _, err := backend.SeedUser("eve@example.com", "secret1", "Eve"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	storage := failingStorage{FileStorage: newFileStorage(t)}
	store := mustStore(t, storage, client)

	if _, err := store.Login(ctx, "eve@example.com", "secret1"); err == nil {
		t.Fatalf("expected persist error")
	}
	if store.IsAuthenticated() {
		t.Fatalf("expected cache untouched when storage fails")
	}

	restarted := mustStore(t, storage.FileStorage, client)
	if restarted.IsAuthenticated() {
		t.Fatalf("expected no token on disk after a failed persist")
	}
}

func TestFailedPersistKeepsPreviousSession(t *testing.T) {
	ctx := context.Background()
	backend, client := newClient(t)
	for _, email := range []string{"fay@example.com", "gus@example.com"} {
		if _, err := backend.SeedUser(email, "secret1", "User"); err != nil {
			t.Fatalf("seed %s: %v", email, err)
		}
	}

	fileStorage := newFileStorage(t)
	first, err := mustStore(t, fileStorage, client).Login(ctx, "fay@example.com", "secret1")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}

	store := mustStore(t, failingStorage{FileStorage: fileStorage}, client)
	if _, err = store.Login(ctx, "gus@example.com", "secret1"); err == nil {
		t.Fatalf("expected persist error")
	}

	restarted := mustStore(t, fileStorage, client)
	user, ok := restarted.User()
	if restarted.Token() != first.Token || !ok || user.Email != "fay@example.com" {
		t.Fatalf("expected fay's session to survive, got token=%q user=%+v", restarted.Token(), user)
	}
}
