// Package app wires the chat server runtime: config, logging, metrics,
// HTTP routes, and the realtime gateway.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JayRenji/chat-app/internal/auth/api"
	"github.com/JayRenji/chat-app/internal/auth/session"
	"github.com/JayRenji/chat-app/internal/identity"
	"github.com/JayRenji/chat-app/internal/realtime"
	"github.com/JayRenji/chat-app/internal/security/password"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

// App is the chat server runtime: it owns HTTP wiring and the realtime
// gateway dependencies.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool    *pgxpool.Pool
	dbEnabled bool

	metrics *prometheus.Registry

	ws   *realtime.WSGateway
	auth *api.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	st, dbPool, dbEnabled, users, sessStore, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	pw, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(sessCfg, log, users, sessStore, pw)
	if err != nil {
		return nil, err
	}

	authCfg := api.FromEnv()
	if cfg.UploadDir != "" {
		authCfg.UploadDir = cfg.UploadDir
	}
	authHandler := api.NewHandler(log, authCfg, users, sessions, pw)

	metricsReg := NewMetricsRegistry()
	rtMetrics := realtime.NewMetrics(metricsReg)

	reg := realtime.NewRegistry(log, rtMetrics)
	hub := realtime.NewHub(log, reg, rtMetrics)
	ws := realtime.NewWSGateway(log, reg, hub, sessions)

	return &App{
		cfg:       cfg,
		log:       log,
		store:     st,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		metrics:   metricsReg,
		ws:        ws,
		auth:      authHandler,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.ws, a.auth, a.metrics)

	handler := WithCORS(mux, a.cfg.AllowedOrigins)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and the
// in-memory dev stores.
func newStores(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, bool, identity.Store, session.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, nil, false, identity.NewMemoryStore(), session.NewMemoryStore(), nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, nil, nil, err
	}

	log.Info("db.enabled.postgres_store")

	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, nil, err
	}

	sessions, err := session.NewPostgresStore(pool, "chat")
	if err != nil {
		pool.Close()
		return nil, nil, false, nil, nil, err
	}

	// Ownership model: app owns the pool lifecycle.
	return dbStore{pool: pool}, pool, true, users, sessions, nil
}

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
