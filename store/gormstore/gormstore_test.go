package gormstore

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"pfm/store"
	"pfm/store/storetest"
)

// TestGormStore runs against a real Postgres only when DB_DSN_TEST=1 and
// DB_DSN points at a scratch database.
func TestGormStore(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("set DB_DSN_TEST=1 to run postgres store tests")
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set")
	}

	migrated := false
	suite.Run(t, &storetest.Suite{NewStore: func() store.Store {
		st, err := Open(dsn, !migrated)
		require.NoError(t, err)
		migrated = true
		return st
	}})
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), store.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)), store.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), store.ErrDuplicate)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505"}), store.ErrDuplicate)
	assert.ErrorIs(t, translate(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username"`)), store.ErrDuplicate)

	other := errors.New("connection refused")
	assert.Equal(t, other, translate(other))
}
