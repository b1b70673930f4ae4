package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pfm/models"
	"pfm/report"
)

// loadReportInput parses the date range and fetches the user's transactions.
func (a *App) loadReportInput(c *gin.Context) (report.Range, []models.Transaction, bool) {
	r, err := report.ParseRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		a.respondError(c, validationError(err.Error()))
		return report.Range{}, nil, false
	}
	txs, err := a.store.ListTransactions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		a.respondError(c, err)
		return report.Range{}, nil, false
	}
	return r, txs, true
}

func (a *App) reportHandler(c *gin.Context) {
	r, txs, ok := a.loadReportInput(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Summarize(txs, r))
}

func (a *App) categoryReportHandler(c *gin.Context) {
	r, txs, ok := a.loadReportInput(c)
	if !ok {
		return
	}
	names, err := a.categoryNames(c, currentUser(c).ID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.ByCategory(txs, names, r))
}
