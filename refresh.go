package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pfm/models"
	"pfm/store"
)

const invalidRefreshToken = "Invalid or expired refresh token"

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// newSession signs an access token for userID and stores a fresh refresh
// token alongside it.
func (a *App) newSession(ctx context.Context, userID string) (*session, error) {
	token, err := a.tokens.Generate(userID)
	if err != nil {
		return nil, err
	}
	raw, err := a.issueRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &session{Token: token, RefreshToken: raw}, nil
}

// issueRefreshToken generates a random 32-byte token, stores its hash with an
// expiry and returns the raw hex string.
func (a *App) issueRefreshToken(ctx context.Context, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	raw := hex.EncodeToString(b)
	rt := &models.RefreshToken{
		UserID:    userID,
		TokenHash: hashRefreshToken(raw),
		ExpiresAt: time.Now().UTC().Add(a.cfg.RefreshTokenTTL),
	}
	if err := a.store.CreateRefreshToken(ctx, rt); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return raw, nil
}

func hashRefreshToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// refresh exchanges a live refresh token for a new session and revokes the
// presented one. A token can be rotated only once.
func (a *App) refresh(ctx context.Context, raw string) (*session, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, validationError("Refresh token is required")
	}
	rt, err := a.store.GetRefreshTokenByHash(ctx, hashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, authError(invalidRefreshToken)
		}
		return nil, err
	}
	if rt.Revoked || time.Now().After(rt.ExpiresAt) {
		return nil, authError(invalidRefreshToken)
	}
	if _, err := a.store.GetUserByID(ctx, rt.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, authError(invalidRefreshToken)
		}
		return nil, err
	}

	revoked, err := a.store.RevokeRefreshToken(ctx, rt.ID)
	if err != nil {
		return nil, err
	}
	if !revoked { // lost a race with another rotation
		return nil, authError(invalidRefreshToken)
	}
	return a.newSession(ctx, rt.UserID)
}

// revokeRefresh invalidates a refresh token, e.g. on logout.
func (a *App) revokeRefresh(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return validationError("Refresh token is required")
	}
	rt, err := a.store.GetRefreshTokenByHash(ctx, hashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError("Refresh token not found")
		}
		return err
	}
	if _, err := a.store.RevokeRefreshToken(ctx, rt.ID); err != nil {
		return err
	}
	return nil
}

func (a *App) refreshHandler(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, validationError("Refresh token is required"))
		return
	}
	sess, err := a.refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (a *App) revokeRefreshHandler(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, validationError("Refresh token is required"))
		return
	}
	if err := a.revokeRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Refresh token revoked"})
}
