// Package app wires storage, the record store, the session and the intake
// manager from configuration. Both the HTTP server and fieldctl start here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mr1hm/go-field-mesh/internal/auth"
	"github.com/mr1hm/go-field-mesh/internal/config"
	"github.com/mr1hm/go-field-mesh/internal/feed"
	"github.com/mr1hm/go-field-mesh/internal/intake"
	"github.com/mr1hm/go-field-mesh/internal/seed"
	"github.com/mr1hm/go-field-mesh/internal/storage"
	"github.com/mr1hm/go-field-mesh/internal/store"
	"github.com/mr1hm/go-field-mesh/internal/trust"
)

type App struct {
	KV          storage.KV
	Seed        *seed.Dataset
	Store       *store.Store
	Session     *auth.Session
	Tokens      *auth.Tokens
	Broadcaster *feed.Broadcaster
	Intake      *intake.Manager
}

// New opens the configured backend and restores the persisted collections
// and session. The intake worker is not running until Start.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	kv, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.Storage.Backend,
		SQLitePath:    cfg.Storage.Path,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		RedisPrefix:   cfg.Storage.RedisPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening %s storage: %w", cfg.Storage.Backend, err)
	}

	ds, err := seed.Load(time.Now())
	if err != nil {
		kv.Close()
		return nil, err
	}

	st := store.New(kv, ds)
	st.Load(ctx)

	session := auth.NewSession(kv, cfg.Auth.FieldPIN, cfg.Auth.HQPIN)
	session.Restore(ctx)

	scorer := trust.NewRandomScorer(cfg.TrustSeed())
	broadcaster := feed.NewBroadcaster()
	manager := intake.NewManager(st, scorer, scorer, session, cfg.Intake.BufferSize,
		intake.WithPublisher(broadcaster),
		intake.WithLocationCheck(ds.IsKnownLocation),
	)

	slog.Info("storage ready", "backend", cfg.Storage.Backend)

	return &App{
		KV:          kv,
		Seed:        ds,
		Store:       st,
		Session:     session,
		Tokens:      auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		Broadcaster: broadcaster,
		Intake:      manager,
	}, nil
}

func (a *App) Start(ctx context.Context) {
	a.Intake.Start(ctx)
}

// Close drains pending submissions, ends live streams and closes storage.
func (a *App) Close() error {
	a.Intake.Stop()
	a.Broadcaster.Close()
	return a.KV.Close()
}
