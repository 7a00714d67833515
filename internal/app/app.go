// Package app wires configuration, storage, HTTP routing and the
// background poller into a runnable application.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/karimahmed315/task-manager/internal/alerts"
	"github.com/karimahmed315/task-manager/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	pgMaxConns    = 10
	pgMinConns    = 2
	migrationsDir = "./migrations"
)

type App struct {
	cfg    config.Config
	log    zerolog.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine
	poller *alerts.Poller
}

// New connects to Postgres and Redis, runs pending migrations and builds
// the router. Anything opened before a failure is closed again.
func New(cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := newPostgres(cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		a.closeAll()
		return nil, err
	}
	a.redis = rdb

	log.Info().Str("dir", migrationsDir).Msg("applying migrations")
	if err := runMigrations(cfg.PG.DSN); err != nil {
		a.closeAll()
		return nil, err
	}

	a.router, a.poller = newRouter(cfg, log, a.db, a.redis)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// RunPoller runs the due-task poller until ctx is cancelled. No-op when
// polling is disabled by config.
func (a *App) RunPoller(ctx context.Context) {
	if a.poller == nil {
		return
	}
	a.poller.Run(ctx)
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	a.closeAll()
	return nil
}

func (a *App) closeAll() {
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	pcfg.MaxConns = pgMaxConns
	pcfg.MinConns = pgMinConns
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// runMigrations applies goose migrations over database/sql; the pgx
// stdlib driver is imported for exactly this.
func runMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	})
}
