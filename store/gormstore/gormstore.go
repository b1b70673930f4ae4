// Package gormstore implements store.Store on PostgreSQL through GORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pfm/models"
	"pfm/store"
)

var _ store.Store = (*Store)(nil)

// Store is a GORM-backed store.Store.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres using dsn. When migrate is true every table is
// created or updated; migration failures are logged per table and do not
// abort startup.
func Open(dsn string, migrate bool) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := New(gdb)
	if migrate {
		s.Migrate()
	}
	return s, nil
}

// New wraps an existing GORM handle.
func New(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Migrate runs AutoMigrate for each model individually so a failure on one
// table doesn't block the others.
func (s *Store) Migrate() {
	for _, m := range []any{&models.User{}, &models.Category{}, &models.Transaction{}, &models.RefreshToken{}} {
		if err := s.db.AutoMigrate(m); err != nil {
			slog.Warn("migration warning", "model", fmt.Sprintf("%T", m), "error", err)
		}
	}
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	stamp(&user.ID, &user.CreatedAt)
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, username string, hash []byte) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("password_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	items := make([]models.Category, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *Store) GetCategory(ctx context.Context, ownerID, id string) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	stamp(&category.ID, &category.CreatedAt)
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, ownerID, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Category{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) CategoriesSince(ctx context.Context, ownerID string, since time.Time) ([]models.Category, error) {
	items := make([]models.Category, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", ownerID, since).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	items := make([]models.Transaction, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	stamp(&tx.ID, &tx.CreatedAt)
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Transaction{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) TransactionsSince(ctx context.Context, ownerID string, since time.Time) ([]models.Transaction, error) {
	items := make([]models.Transaction, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", ownerID, since).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	stamp(&token.ID, &token.CreatedAt)
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hash).First(&rt).Error; err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

// RevokeRefreshToken flips revoked only while it is still false, so two
// concurrent rotations of the same token cannot both succeed.
func (s *Store) RevokeRefreshToken(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// stamp fills a missing id and creation time. Postgres keeps microseconds,
// so the timestamp is truncated to match what a later read returns.
func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC().Truncate(time.Microsecond)
	}
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}
