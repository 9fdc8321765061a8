// Package app opens the storage stack described by a config file.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notepid/skillsync/internal/config"
	"github.com/notepid/skillsync/internal/db"
	"github.com/notepid/skillsync/internal/discussion"
	"github.com/notepid/skillsync/internal/id"
	"github.com/notepid/skillsync/internal/kv"
)

// App bundles the opened resources shared by the commands.
type App struct {
	ConfigPath string
	Config     *config.Config
	Log        *slog.Logger

	DB      *db.DB // nil unless the sqlite backend is selected
	Storage kv.Storage
	IDs     id.Generator
	Store   *discussion.Store
}

// New loads the config and opens the configured storage backend. The
// returned cleanup releases it.
func New(configPath string, log *slog.Logger) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return Open(cfg, configPath, log)
}

// Open builds an App from an already loaded config.
func Open(cfg *config.Config, configPath string, log *slog.Logger) (*App, func(), error) {
	if log == nil {
		log = slog.Default()
	}

	ids, err := id.New(cfg.IDs.Strategy, cfg.IDs.Node)
	if err != nil {
		return nil, nil, err
	}

	a := &App{
		ConfigPath: configPath,
		Config:     cfg,
		Log:        log,
		IDs:        ids,
	}
	cleanup := func() {}

	switch cfg.Storage.Backend {
	case "memory":
		a.Storage = kv.NewMemory()
	case "sqlite":
		if cfg.Storage.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
				return nil, nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		database, err := db.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		a.DB = database
		a.Storage = kv.NewSQLite(database)
		cleanup = func() { _ = database.Close() }
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.RedisAddr,
			DB:   cfg.Storage.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Storage.RedisAddr, err)
		}
		store := kv.NewRedis(client, cfg.Storage.RedisPrefix)
		a.Storage = store
		cleanup = func() { _ = store.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	a.Store = discussion.NewStore(a.Storage,
		discussion.WithIDs(ids),
		discussion.WithLogger(log.With("component", "discussion")),
	)

	log.Info("storage opened", "backend", cfg.Storage.Backend, "ids", cfg.IDs.Strategy)
	return a, cleanup, nil
}
