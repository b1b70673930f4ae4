package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCategory(t *testing.T, r http.Handler, token, name string) string {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, map[string]string{"name": name}), token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	id := decode[map[string]string](t, resp)["_id"]
	require.NotEmpty(t, id)
	return id
}

func TestCategoryNamesAreUniquePerOwner(t *testing.T) {
	r := newTestApp(t, nil).Router()
	alice := registerAndLogin(t, r, "alice")
	bob := registerAndLogin(t, r, "bob")

	createCategory(t, r, alice, "Food")
	resp := performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, map[string]string{"name": "Food"}), alice)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Category with this name already exists", decode[map[string]string](t, resp)["error"])

	// same name, different owner
	createCategory(t, r, bob, "Food")
}

func TestCreateCategoryRequiresName(t *testing.T) {
	r := newTestApp(t, nil).Router()
	token := registerAndLogin(t, r, "alice")

	for _, body := range []map[string]string{{}, {"name": ""}, {"name": "  "}} {
		resp := performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, body), token)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Category name is required", decode[map[string]string](t, resp)["error"])
	}
}

func TestListCategories(t *testing.T) {
	r := newTestApp(t, nil).Router()
	token := registerAndLogin(t, r, "alice")

	resp := performRequest(r, http.MethodGet, "/api/categories", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())

	id := createCategory(t, r, token, "Rent")
	resp = performRequest(r, http.MethodGet, "/api/categories", nil, token)
	cats := decode[[]map[string]any](t, resp)
	require.Len(t, cats, 1)
	assert.Equal(t, id, cats[0]["_id"])
	assert.Equal(t, "Rent", cats[0]["name"])
	assert.NotEmpty(t, cats[0]["user_id"])
	assert.NotEmpty(t, cats[0]["created_at"])
}

func TestDeleteCategory(t *testing.T) {
	r := newTestApp(t, nil).Router()
	alice := registerAndLogin(t, r, "alice")
	bob := registerAndLogin(t, r, "bob")
	id := createCategory(t, r, alice, "Food")

	// bob cannot delete alice's category even with its id
	resp := performRequest(r, http.MethodDelete, "/api/categories/"+id, nil, bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Category not found", decode[map[string]string](t, resp)["error"])

	resp = performRequest(r, http.MethodDelete, "/api/categories/"+id, nil, alice)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Category deleted", decode[map[string]string](t, resp)["message"])

	resp = performRequest(r, http.MethodDelete, "/api/categories/"+id, nil, alice)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
