package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pfm/models"
	"pfm/pkg/password"
	"pfm/store"
)

const invalidCredentials = "Invalid username or password"

// register validates the credentials, hashes the password and stores a new user.
func (a *App) register(ctx context.Context, username, pw string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || pw == "" {
		return nil, validationError("Username and password are required")
	}
	// pre-check existing (optimistic)
	if _, err := a.store.GetUserByUsername(ctx, username); err == nil {
		return nil, conflictError("Username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := password.Hash(pw, a.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) { // race after the pre-check
			return nil, conflictError("Username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// session is what a successful login or refresh hands back to the client.
type session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// login checks the credentials and issues a bearer token plus a refresh
// token. Unknown users and wrong passwords produce the same error.
func (a *App) login(ctx context.Context, username, pw string) (*session, error) {
	username = strings.TrimSpace(username)
	if username == "" || pw == "" {
		return nil, validationError("Username and password are required")
	}

	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, authError(invalidCredentials)
		}
		return nil, err
	}
	if err := password.Compare(user.PasswordHash, pw); err != nil {
		return nil, authError(invalidCredentials)
	}
	return a.newSession(ctx, user.ID)
}

// authenticate resolves the user behind an Authorization header value.
func (a *App) authenticate(ctx context.Context, header string) (*models.User, error) {
	if strings.TrimSpace(header) == "" {
		return nil, authError("Token is missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, authError("Token is invalid")
	}

	claims, err := a.tokens.Validate(parts[1])
	if err != nil {
		return nil, authError("Token is invalid")
	}

	user, err := a.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, authError("Token is invalid")
		}
		return nil, err
	}
	return user, nil
}
