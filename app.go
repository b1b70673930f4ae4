package main

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"pfm/config"
	"pfm/notify"
	"pfm/store"
)

// App carries every dependency the HTTP handlers need. It is built once in
// main and handlers hang off it as methods.
type App struct {
	cfg     *config.Config
	store   store.Store
	tokens  *TokenManager
	hub     *notify.Hub
	events  notify.Publisher
	log     *slog.Logger
	metrics *metrics

	bcryptCost int
}

// NewApp wires an App. When events is nil, changes are published straight
// to hub.
func NewApp(cfg *config.Config, st store.Store, hub *notify.Hub, events notify.Publisher, logger *slog.Logger) *App {
	if events == nil {
		events = hub
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:        cfg,
		store:      st,
		tokens:     NewTokenManager(cfg.Secret(), cfg.TokenTTL),
		hub:        hub,
		events:     events,
		log:        logger,
		metrics:    newMetrics(),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// publish announces a change; delivery failures are logged, never returned,
// because the record itself is already stored.
func (a *App) publish(ctx context.Context, ev notify.Event) {
	if err := a.events.Publish(ctx, ev); err != nil {
		a.log.WarnContext(ctx, "failed to publish change event",
			"owner_id", ev.OwnerID, "kind", ev.Kind, "record_id", ev.RecordID, "error", err)
	}
}
