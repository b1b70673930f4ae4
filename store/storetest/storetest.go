// Package storetest holds behavior checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"pfm/models"
	"pfm/store"
)

// Suite exercises a store.Store. NewStore is called before every test and
// must return an empty store.
type Suite struct {
	suite.Suite
	NewStore func() store.Store

	st  store.Store
	ctx context.Context
}

func (s *Suite) SetupTest() {
	s.st = s.NewStore()
	s.ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	s.NoError(s.st.Close())
}

func (s *Suite) user(name string) *models.User {
	u := &models.User{Username: name + "-" + uuid.NewString()[:8], PasswordHash: []byte("hash")}
	s.Require().NoError(s.st.CreateUser(s.ctx, u))
	return u
}

func (s *Suite) category(owner, name string) *models.Category {
	c := &models.Category{UserID: owner, Name: name}
	s.Require().NoError(s.st.CreateCategory(s.ctx, c))
	return c
}

func (s *Suite) transaction(owner, category, amount string) *models.Transaction {
	tx := &models.Transaction{
		UserID:     owner,
		CategoryID: category,
		Amount:     decimal.RequireFromString(amount),
		Type:       "expense",
	}
	s.Require().NoError(s.st.CreateTransaction(s.ctx, tx))
	return tx
}

func (s *Suite) TestUsers() {
	u := s.user("alice")
	s.NotEmpty(u.ID)
	s.False(u.CreatedAt.IsZero())

	got, err := s.st.GetUserByUsername(s.ctx, u.Username)
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
	s.Equal([]byte("hash"), got.PasswordHash)

	got, err = s.st.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Username, got.Username)

	_, err = s.st.GetUserByUsername(s.ctx, "nobody-"+uuid.NewString())
	s.ErrorIs(err, store.ErrNotFound)
	_, err = s.st.GetUserByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, store.ErrNotFound)

	err = s.st.CreateUser(s.ctx, &models.User{Username: u.Username, PasswordHash: []byte("x")})
	s.ErrorIs(err, store.ErrDuplicate)
}

func (s *Suite) TestUpdatePasswordHash() {
	u := s.user("bob")
	s.Require().NoError(s.st.UpdatePasswordHash(s.ctx, u.Username, []byte("new")))

	got, err := s.st.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal([]byte("new"), got.PasswordHash)

	s.ErrorIs(s.st.UpdatePasswordHash(s.ctx, "nobody-"+uuid.NewString(), []byte("x")), store.ErrNotFound)
}

func (s *Suite) TestCategoriesAreOwnerScoped() {
	alice, bob := s.user("alice"), s.user("bob")
	food := s.category(alice.ID, "Food")
	s.category(bob.ID, "Food")

	err := s.st.CreateCategory(s.ctx, &models.Category{UserID: alice.ID, Name: "Food"})
	s.ErrorIs(err, store.ErrDuplicate)

	list, err := s.st.ListCategories(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(food.ID, list[0].ID)

	got, err := s.st.GetCategory(s.ctx, alice.ID, food.ID)
	s.Require().NoError(err)
	s.Equal("Food", got.Name)
	_, err = s.st.GetCategory(s.ctx, bob.ID, food.ID)
	s.ErrorIs(err, store.ErrNotFound)

	deleted, err := s.st.DeleteCategory(s.ctx, bob.ID, food.ID)
	s.Require().NoError(err)
	s.False(deleted)
	deleted, err = s.st.DeleteCategory(s.ctx, alice.ID, food.ID)
	s.Require().NoError(err)
	s.True(deleted)
	deleted, err = s.st.DeleteCategory(s.ctx, alice.ID, food.ID)
	s.Require().NoError(err)
	s.False(deleted)

	list, err = s.st.ListCategories(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *Suite) TestTransactions() {
	alice, bob := s.user("alice"), s.user("bob")
	food := s.category(alice.ID, "Food")
	first := s.transaction(alice.ID, food.ID, "12.34")
	second := s.transaction(alice.ID, food.ID, "1")
	s.transaction(bob.ID, uuid.NewString(), "5")

	list, err := s.st.ListTransactions(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)
	s.True(decimal.RequireFromString("12.34").Equal(list[0].Amount))

	deleted, err := s.st.DeleteTransaction(s.ctx, bob.ID, first.ID)
	s.Require().NoError(err)
	s.False(deleted)
	deleted, err = s.st.DeleteTransaction(s.ctx, alice.ID, first.ID)
	s.Require().NoError(err)
	s.True(deleted)

	list, err = s.st.ListTransactions(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *Suite) TestSinceQueries() {
	alice, bob := s.user("alice"), s.user("bob")
	old := &models.Category{UserID: alice.ID, Name: "Old", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	s.Require().NoError(s.st.CreateCategory(s.ctx, old))

	since := time.Now().UTC().Add(-time.Minute)
	fresh := s.category(alice.ID, "Fresh")
	s.category(bob.ID, "Other")
	tx := s.transaction(alice.ID, fresh.ID, "3")

	cats, err := s.st.CategoriesSince(s.ctx, alice.ID, since)
	s.Require().NoError(err)
	s.Require().Len(cats, 1)
	s.Equal(fresh.ID, cats[0].ID)

	txs, err := s.st.TransactionsSince(s.ctx, alice.ID, since)
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal(tx.ID, txs[0].ID)

	txs, err = s.st.TransactionsSince(s.ctx, bob.ID, since)
	s.Require().NoError(err)
	s.NotNil(txs)
	s.Empty(txs)
}

func (s *Suite) TestRefreshTokens() {
	u := s.user("carol")
	rt := &models.RefreshToken{
		UserID:    u.ID,
		TokenHash: "hash-" + uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	s.Require().NoError(s.st.CreateRefreshToken(s.ctx, rt))
	s.NotEmpty(rt.ID)

	dup := &models.RefreshToken{UserID: u.ID, TokenHash: rt.TokenHash, ExpiresAt: rt.ExpiresAt}
	s.ErrorIs(s.st.CreateRefreshToken(s.ctx, dup), store.ErrDuplicate)

	got, err := s.st.GetRefreshTokenByHash(s.ctx, rt.TokenHash)
	s.Require().NoError(err)
	s.Equal(rt.ID, got.ID)
	s.Equal(u.ID, got.UserID)
	s.False(got.Revoked)

	_, err = s.st.GetRefreshTokenByHash(s.ctx, "missing-"+uuid.NewString())
	s.ErrorIs(err, store.ErrNotFound)

	revoked, err := s.st.RevokeRefreshToken(s.ctx, rt.ID)
	s.Require().NoError(err)
	s.True(revoked)
	revoked, err = s.st.RevokeRefreshToken(s.ctx, rt.ID)
	s.Require().NoError(err)
	s.False(revoked)

	got, err = s.st.GetRefreshTokenByHash(s.ctx, rt.TokenHash)
	s.Require().NoError(err)
	s.True(got.Revoked)
}
