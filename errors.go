package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiError is an error that maps directly onto an HTTP status and a message
// safe to show the client.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func validationError(msg string) error { return &apiError{status: http.StatusBadRequest, msg: msg} }

// Conflicts are reported as 400, matching the public contract.
func conflictError(msg string) error { return &apiError{status: http.StatusBadRequest, msg: msg} }

func authError(msg string) error { return &apiError{status: http.StatusUnauthorized, msg: msg} }

func notFoundError(msg string) error { return &apiError{status: http.StatusNotFound, msg: msg} }

// respondError writes err as {"error": msg} and aborts the chain. Errors that
// are not apiErrors are logged and hidden behind a 500.
func (a *App) respondError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.status, gin.H{"error": apiErr.msg})
		return
	}
	a.log.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
