package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

var ErrMissingToken = errors.New("server returned no token")

type AuthResponse struct {
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, request{
		op:       "login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     loginRequest{Email: email, Password: password},
		out:      &resp,
		fallback: "login failed",
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrMissingToken
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, request{
		op:       "register",
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     registerRequest{Email: email, Password: password, Name: name},
		out:      &resp,
		fallback: "registration failed",
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrMissingToken
	}
	return &resp, nil
}
