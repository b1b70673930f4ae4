package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pfm/models"
	"pfm/notify"
	"pfm/store"
)

func (a *App) listCategoriesHandler(c *gin.Context) {
	user := currentUser(c)
	items, err := a.store.ListCategories(c.Request.Context(), user.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *App) createCategoryHandler(c *gin.Context) {
	user := currentUser(c)
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		a.respondError(c, validationError("Category name is required"))
		return
	}

	ctx := c.Request.Context()
	category := &models.Category{Name: req.Name, UserID: user.ID}
	if err := a.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			a.respondError(c, conflictError("Category with this name already exists"))
			return
		}
		a.respondError(c, err)
		return
	}

	a.publish(ctx, notify.Event{
		OwnerID:   user.ID,
		Kind:      notify.KindCategory,
		RecordID:  category.ID,
		CreatedAt: category.CreatedAt,
	})
	c.JSON(http.StatusOK, gin.H{"_id": category.ID, "name": category.Name})
}

func (a *App) deleteCategoryHandler(c *gin.Context) {
	user := currentUser(c)
	deleted, err := a.store.DeleteCategory(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !deleted {
		a.respondError(c, notFoundError("Category not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
