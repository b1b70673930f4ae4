package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pfm/models"
	"pfm/notify"
	"pfm/store"
)

const transactionFieldsRequired = "Category, amount, and type are required"

type createTransactionRequest struct {
	Category string           `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
	Type     string           `json:"type"`
	Date     *string          `json:"date"`
}

// listTransactionsHandler returns the user's transactions with the category
// id replaced by its name, or "Unknown" for deleted categories.
func (a *App) listTransactionsHandler(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	txs, err := a.store.ListTransactions(ctx, user.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	names, err := a.categoryNames(c, user.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}

	out := make([]models.TransactionView, 0, len(txs))
	for _, tx := range txs {
		name, ok := names[tx.CategoryID]
		if !ok {
			name = models.UnknownCategory
		}
		out = append(out, models.TransactionView{Transaction: tx, Category: name})
	}
	c.JSON(http.StatusOK, out)
}

func (a *App) createTransactionHandler(c *gin.Context) {
	user := currentUser(c)
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, validationError(transactionFieldsRequired))
		return
	}
	// a zero amount counts as missing
	if req.Category == "" || strings.TrimSpace(req.Type) == "" || req.Amount == nil || req.Amount.IsZero() {
		a.respondError(c, validationError(transactionFieldsRequired))
		return
	}

	ctx := c.Request.Context()
	if _, err := a.store.GetCategory(ctx, user.ID, req.Category); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.respondError(c, notFoundError("Category not found"))
			return
		}
		a.respondError(c, err)
		return
	}

	tx := &models.Transaction{
		CategoryID: req.Category,
		Amount:     *req.Amount,
		Type:       req.Type,
		Date:       req.Date,
		UserID:     user.ID,
	}
	if err := a.store.CreateTransaction(ctx, tx); err != nil {
		a.respondError(c, err)
		return
	}

	a.publish(ctx, notify.Event{
		OwnerID:   user.ID,
		Kind:      notify.KindTransaction,
		RecordID:  tx.ID,
		CreatedAt: tx.CreatedAt,
	})
	c.JSON(http.StatusOK, tx)
}

func (a *App) deleteTransactionHandler(c *gin.Context) {
	user := currentUser(c)
	deleted, err := a.store.DeleteTransaction(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !deleted {
		a.respondError(c, notFoundError("Transaction not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// categoryNames maps the owner's category ids to names.
func (a *App) categoryNames(c *gin.Context, ownerID string) (map[string]string, error) {
	cats, err := a.store.ListCategories(c.Request.Context(), ownerID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	return names, nil
}
