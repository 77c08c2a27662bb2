package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/manaforge/internal/config"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/store"
	"github.com/MrSnakeDoc/manaforge/internal/store/file"
	"github.com/MrSnakeDoc/manaforge/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/manaforge/internal/store/redis"
	"github.com/MrSnakeDoc/manaforge/internal/store/sqlite"
)

// OpenSlot connects the configured storage backend and returns the slot
// holding the deck collection. Remote backends fail fast.
func OpenSlot(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Slot, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warn("memory storage selected, decks are lost on restart")
		return store.NewMemory(cfg.SlotKey), nil

	case config.BackendFile:
		slot, err := file.New(cfg.DataDir, cfg.SlotKey)
		if err != nil {
			return nil, err
		}
		log.Info("file storage ready", logger.String("path", slot.Path()))
		return slot, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite storage ready", logger.String("path", cfg.SQLitePath))
		return sqlite.New(db, cfg.SlotKey), nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		log.Info("postgres storage ready")
		return postgres.New(db, cfg.SlotKey), nil

	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redisstore.Connect(ctx, redisstore.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, err
		}
		log.Info("Redis initialized successfully")
		return redisstore.NewSlot(client, cfg.SlotKey), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
