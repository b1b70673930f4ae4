// Package memory is an in-process store.Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pfm/models"
	"pfm/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps the three collections in maps guarded by one mutex, which gives
// each operation the same single-record atomicity a document store offers.
type Store struct {
	mu           sync.RWMutex
	users        map[string]models.User
	categories   map[string]models.Category
	transactions map[string]models.Transaction
	refresh      map[string]models.RefreshToken
}

func New() *Store {
	return &Store{
		users:        make(map[string]models.User),
		categories:   make(map[string]models.Category),
		transactions: make(map[string]models.Transaction),
		refresh:      make(map[string]models.RefreshToken),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	stamp(&user.ID, &user.CreatedAt)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, username string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Username == username {
			u.PasswordHash = append([]byte(nil), hash...)
			s.users[id] = u
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]models.Category, error) {
	return s.categoriesWhere(func(c models.Category) bool { return c.UserID == ownerID }), nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != ownerID {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateCategory(_ context.Context, category *models.Category) error {
	stamp(&category.ID, &category.CreatedAt)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.UserID == category.UserID && c.Name == category.Name {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.categories[category.ID]; ok {
		return store.ErrDuplicate
	}
	s.categories[category.ID] = *category
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != ownerID {
		return false, nil
	}
	delete(s.categories, id)
	return true, nil
}

func (s *Store) CategoriesSince(_ context.Context, ownerID string, since time.Time) ([]models.Category, error) {
	return s.categoriesWhere(func(c models.Category) bool {
		return c.UserID == ownerID && !c.CreatedAt.Before(since)
	}), nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]models.Transaction, error) {
	return s.transactionsWhere(func(t models.Transaction) bool { return t.UserID == ownerID }), nil
}

func (s *Store) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	stamp(&tx.ID, &tx.CreatedAt)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[tx.ID]; ok {
		return store.ErrDuplicate
	}
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(s.transactions, id)
	return true, nil
}

func (s *Store) TransactionsSince(_ context.Context, ownerID string, since time.Time) ([]models.Transaction, error) {
	return s.transactionsWhere(func(t models.Transaction) bool {
		return t.UserID == ownerID && !t.CreatedAt.Before(since)
	}), nil
}

func (s *Store) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	stamp(&token.ID, &token.CreatedAt)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.refresh {
		if t.TokenHash == token.TokenHash {
			return store.ErrDuplicate
		}
	}
	if _, ok := s.refresh[token.ID]; ok {
		return store.ErrDuplicate
	}
	s.refresh[token.ID] = *token
	return nil
}

func (s *Store) GetRefreshTokenByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.refresh {
		if t.TokenHash == hash {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) RevokeRefreshToken(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.refresh[id]
	if !ok || t.Revoked {
		return false, nil
	}
	t.Revoked = true
	s.refresh[id] = t
	return true, nil
}

func (s *Store) categoriesWhere(keep func(models.Category) bool) []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0)
	for _, c := range s.categories {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) transactionsWhere(keep func(models.Transaction) bool) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, 0)
	for _, t := range s.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
