package testbackend

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error messages the client is expected to surface verbatim.
const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidCredentials = "invalid email or password"
	msgTaskNotFound       = "task not found"
)

// abort ends the request with the backend's error body, {"error": message}.
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func abortStatus(c *gin.Context, status int) {
	abort(c, status, http.StatusText(status))
}
