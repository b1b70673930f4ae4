// Package store defines the persistence contract for users, categories and
// transactions. Every category and transaction query is scoped by owner id.
package store

import (
	"context"
	"errors"
	"time"

	"pfm/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness rule.
	ErrDuplicate = errors.New("record already exists")
)

// UserStore holds registered users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, username string, hash []byte) error
}

// CategoryStore holds owner-scoped categories.
type CategoryStore interface {
	ListCategories(ctx context.Context, ownerID string) ([]models.Category, error)
	GetCategory(ctx context.Context, ownerID, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	// DeleteCategory reports whether a category matching (id, owner) existed.
	DeleteCategory(ctx context.Context, ownerID, id string) (bool, error)
	CategoriesSince(ctx context.Context, ownerID string, since time.Time) ([]models.Category, error)
}

// TransactionStore holds owner-scoped transactions.
type TransactionStore interface {
	ListTransactions(ctx context.Context, ownerID string) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	// DeleteTransaction reports whether a transaction matching (id, owner) existed.
	DeleteTransaction(ctx context.Context, ownerID, id string) (bool, error)
	TransactionsSince(ctx context.Context, ownerID string, since time.Time) ([]models.Transaction, error)
}

// RefreshTokenStore holds hashed refresh tokens.
type RefreshTokenStore interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshToken marks the token revoked and reports whether this call
	// did so; a token that was already revoked or does not exist yields false.
	RevokeRefreshToken(ctx context.Context, id string) (bool, error)
}

// Store is the full storage collaborator used by the API.
type Store interface {
	UserStore
	CategoryStore
	TransactionStore
	RefreshTokenStore

	// Close releases any resources held by the store.
	Close() error
}
