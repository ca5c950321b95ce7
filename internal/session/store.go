package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-client/internal/api"
	"github.com/adanyl0v/go-todo-client/internal/models"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*api.AuthResponse, error)
}

// Store is the session context of one process. Construct it once at
// startup and pass it to whatever needs the token or the user.
type Store struct {
	logger  zerolog.Logger
	storage Storage
	auth    Authenticator

	mu    sync.RWMutex
	token string
	user  *models.User
}

// New reads the persisted session, if any. Undecodable storage or a
// malformed user entry start the process logged out; the next login or
// logout overwrites them.
func New(ctx context.Context, logger zerolog.Logger, storage Storage, auth Authenticator) (*Store, error) {
	s := &Store{
		logger:  logger,
		storage: storage,
		auth:    auth,
	}

	token, _, err := storage.Get(ctx, tokenKey)
	if errors.Is(err, ErrCorruptSession) {
		s.logger.Warn().
			Err(err).
			Msg("ignoring corrupt persisted session")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted token: %w", err)
	}
	s.token = token

	raw, ok, err := storage.Get(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted user: %w", err)
	}
	if ok && raw != "" {
		var user models.User
		err = json.Unmarshal([]byte(raw), &user)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Msg("ignoring malformed persisted user")
		} else {
			s.user = &user
		}
	}

	s.logger.Debug().
		Bool("authenticated", s.token != "").
		Msg("loaded session")
	return s, nil
}

func (s *Store) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to login")
		return nil, err
	}

	err = s.persist(ctx, resp)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("user_id", resp.User.ID).
		Msg("logged in")
	return resp, nil
}

func (s *Store) Register(ctx context.Context, email, password, name string) (*api.AuthResponse, error) {
	resp, err := s.auth.Register(ctx, email, password, name)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to register")
		return nil, err
	}

	err = s.persist(ctx, resp)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("user_id", resp.User.ID).
		Msg("registered")
	return resp, nil
}

func (s *Store) persist(ctx context.Context, resp *api.AuthResponse) error {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.storage.Set(ctx, map[string]string{
		tokenKey: resp.Token,
		userKey:  string(userJSON),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to persist session")
		return fmt.Errorf("failed to persist session: %w", err)
	}

	user := resp.User
	s.token = resp.Token
	s.user = &user
	return nil
}

// Logout forgets the session locally. The cache is cleared even when
// the storage delete fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil

	err := s.storage.Delete(ctx, tokenKey, userKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to clear persisted session")
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info().Msg("logged out")
	return nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}
