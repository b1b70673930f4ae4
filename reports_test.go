package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReports(t *testing.T) {
	r := newTestApp(t, nil).Router()
	token := registerAndLogin(t, r, "alice")
	food := createCategory(t, r, token, "Food")
	salary := createCategory(t, r, token, "Salary")
	gone := createCategory(t, r, token, "Gone")

	createTransaction(t, r, token, map[string]any{"category": food, "amount": 20, "type": "expense", "date": "2025-03-02"})
	createTransaction(t, r, token, map[string]any{"category": food, "amount": 5.5, "type": "expense", "date": "2025-03-31"})
	createTransaction(t, r, token, map[string]any{"category": salary, "amount": 1000, "type": "income", "date": "2025-03-15"})
	createTransaction(t, r, token, map[string]any{"category": gone, "amount": 7, "type": "expense", "date": "2025-03-20"})
	// outside the range
	createTransaction(t, r, token, map[string]any{"category": food, "amount": 99, "type": "expense", "date": "2025-04-01"})

	resp := performRequest(r, http.MethodDelete, "/api/categories/"+gone, nil, token)
	require.Equal(t, http.StatusOK, resp.Code)

	const query = "?start_date=2025-03-01&end_date=2025-03-31"

	resp = performRequest(r, http.MethodGet, "/api/reports"+query, nil, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	totals := decode[map[string]float64](t, resp)
	assert.Equal(t, 32.5, totals["total_expenses"])
	assert.Equal(t, 1000.0, totals["total_revenues"])
	assert.Equal(t, 967.5, totals["balance"])

	resp = performRequest(r, http.MethodGet, "/api/reports/categories"+query, nil, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	byCat := decode[map[string]map[string]float64](t, resp)
	assert.Equal(t, 25.5, byCat["Food"]["expenses"])
	assert.Equal(t, 1000.0, byCat["Salary"]["revenues"])
	assert.Equal(t, 7.0, byCat["Unknown"]["expenses"])
}

func TestReportsValidateDates(t *testing.T) {
	r := newTestApp(t, nil).Router()
	token := registerAndLogin(t, r, "alice")

	for _, q := range []string{
		"",
		"?start_date=2025-03-01",
		"?start_date=03/01/2025&end_date=2025-03-31",
		"?start_date=2025-04-01&end_date=2025-03-01",
	} {
		resp := performRequest(r, http.MethodGet, "/api/reports"+q, nil, token)
		assert.Equal(t, http.StatusBadRequest, resp.Code, "query=%q", q)
		resp = performRequest(r, http.MethodGet, "/api/reports/categories"+q, nil, token)
		assert.Equal(t, http.StatusBadRequest, resp.Code, "query=%q", q)
	}
}
