package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pfm/models"
)

const (
	currentUserKey = "current_user"
	requestIDKey   = "request_id"
)

// requireAuth validates the bearer token and stores the resolved user on the
// context. Handlers read it back with currentUser.
func (a *App) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// currentUser returns the user resolved by requireAuth.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// requestID propagates X-Request-ID, generating one when absent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLogger logs every request once it completes.
func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		}
		if user := currentUser(c); user != nil {
			attrs = append(attrs, "user_id", user.ID)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			a.log.Error("Request completed", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			a.log.Warn("Request completed", attrs...)
		default:
			a.log.Info("Request completed", attrs...)
		}
	}
}

// cors adds CORS headers for browser access
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
