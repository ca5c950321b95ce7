package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConnectivityError means the request never got a response: the backend
// is down, unreachable, or the connection broke mid-flight.
type ConnectivityError struct {
	BaseURL string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("unable to connect to server at %s, please make sure the backend is running", e.BaseURL)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// AuthError is a rejected login or registration.
type AuthError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// RequestError is a non-2xx answer to a task request.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error string `json:"error"`
}

func errorMessage(body []byte, fallback string) string {
	var eb errorBody
	err := json.Unmarshal(body, &eb)
	if err != nil || strings.TrimSpace(eb.Error) == "" {
		return fallback
	}
	return eb.Error
}
