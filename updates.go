package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"pfm/models"
)

type updatesResponse struct {
	CategoriesUpdated   []models.Category    `json:"categoriesUpdated"`
	TransactionsUpdated []models.Transaction `json:"transactionsUpdated"`
}

// updatesHandler holds the request open until the user gains a new category
// or transaction, the poll timeout passes, or the client goes away.
//
// The subscription is taken before since is captured, so a record created
// after since always wakes the waiter.
func (a *App) updatesHandler(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	sub := a.hub.Subscribe(user.ID)
	defer sub.Close()
	since := time.Now().UTC().Truncate(time.Microsecond)

	timer := time.NewTimer(a.cfg.PollTimeout)
	defer timer.Stop()

	a.metrics.updatesWaiting.Inc()
	defer a.metrics.updatesWaiting.Dec()

	for {
		select {
		case <-ctx.Done():
			a.metrics.updatesCompleted.WithLabelValues(outcomeCancelled).Inc()
			c.Abort()
			return
		case <-timer.C:
			a.metrics.updatesCompleted.WithLabelValues(outcomeTimeout).Inc()
			c.JSON(http.StatusOK, updatesResponse{
				CategoriesUpdated:   []models.Category{},
				TransactionsUpdated: []models.Transaction{},
			})
			return
		case ev := <-sub.C:
			// another instance's clock may run behind ours; its record
			// carries the writer's created_at, so widen the window to it
			if !ev.CreatedAt.IsZero() && ev.CreatedAt.Before(since) {
				since = ev.CreatedAt.UTC().Truncate(time.Microsecond)
			}
			resp, err := a.changesSince(ctx, user.ID, since)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				a.respondError(c, err)
				return
			}
			// the event may refer to something already gone; keep waiting
			if len(resp.CategoriesUpdated) == 0 && len(resp.TransactionsUpdated) == 0 {
				continue
			}
			a.metrics.updatesCompleted.WithLabelValues(outcomeUpdate).Inc()
			c.JSON(http.StatusOK, resp)
			return
		}
	}
}

// changesSince loads both collections concurrently.
func (a *App) changesSince(ctx context.Context, ownerID string, since time.Time) (updatesResponse, error) {
	var resp updatesResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := a.store.CategoriesSince(gctx, ownerID, since)
		resp.CategoriesUpdated = cats
		return err
	})
	g.Go(func() error {
		txs, err := a.store.TransactionsSince(gctx, ownerID, since)
		resp.TransactionsUpdated = txs
		return err
	})
	if err := g.Wait(); err != nil {
		return updatesResponse{}, err
	}
	return resp, nil
}
