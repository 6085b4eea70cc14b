package main

import (
	"context"
	"os"
	"time"

	"medminder/internal/config"
	"medminder/internal/db"
	"medminder/internal/hub"
	"medminder/internal/logging"
	"medminder/internal/reconcile"
	"medminder/internal/remote"
)

type app struct {
	cfg    config.Config
	engine *reconcile.Engine
	hub    *hub.Hub
	local  *db.Repository

	closeDB     func() error
	closeRemote func() error
}

// withApp builds the full stack for one command invocation: config, local
// store, remote store, hub, engine. The engine's queued remote writes are
// drained on close, so fire-and-forget pushes still land before the process
// exits.
func withApp(run func(*app) error) error {
	cfg := config.Load()
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagUser != "" {
		cfg.UserID = flagUser
	}
	logging.Init(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}

	a := &app{
		cfg:     cfg,
		hub:     hub.New(),
		local:   db.NewRepository(database.DB),
		closeDB: database.Close,
	}

	var store remote.Store
	if cfg.RemoteEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoStore, err := remote.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, 5*time.Second)
		cancel()
		if err != nil {
			// Offline start is normal operation, not a failure.
			logging.Warn("remote store unreachable, running local-only", map[string]interface{}{
				"error": err.Error(),
			})
			store = remote.NewMemoryStore()
		} else {
			store = mongoStore
			a.closeRemote = func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return mongoStore.Close(ctx)
			}
		}
	} else {
		store = remote.NewMemoryStore()
	}

	a.engine = reconcile.New(reconcile.Config{
		Local:  a.local,
		Remote: store,
		Hub:    a.hub,
		UserID: cfg.UserID,
	})
	defer a.close()

	if err := a.engine.Refresh(); err != nil {
		return err
	}
	return run(a)
}

func (a *app) close() {
	a.engine.Close()
	if a.closeRemote != nil {
		if err := a.closeRemote(); err != nil {
			logging.Warn("remote store close failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if err := a.closeDB(); err != nil {
		logging.Warn("local store close failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
