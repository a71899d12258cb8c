package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/todo-manager/internal/entity"
	"github.com/roach88/todo-manager/internal/store"
	"github.com/roach88/todo-manager/internal/store/sqlite"
	"github.com/roach88/todo-manager/internal/store/yamlfile"
)

// SQLiteFileName is the database file created under storage.path.
const SQLiteFileName = "todo.db"

// OpenBackend opens the record backend the storage section names.
func OpenBackend(cfg StorageConfig) (store.Backend, error) {
	switch cfg.Type {
	case StorageYAML:
		b, err := yamlfile.Open(cfg.Path)
		if err != nil {
			return nil, entity.NewStorageError(fmt.Sprintf("open yaml store %s", cfg.Path), err)
		}
		return b, nil
	case StorageSQLite:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, entity.NewStorageError(fmt.Sprintf("create %s", cfg.Path), err)
		}
		path := filepath.Join(cfg.Path, SQLiteFileName)
		b, err := sqlite.Open(path)
		if err != nil {
			return nil, entity.NewStorageError(fmt.Sprintf("open sqlite store %s", path), err)
		}
		return b, nil
	default:
		return nil, entity.NewInvalidInputError(fmt.Sprintf("unknown storage type %q", cfg.Type))
	}
}

// OpenRepository opens the configured backend and wraps it in a Repository.
func OpenRepository(cfg *Config, logger *slog.Logger, opts ...store.Option) (*store.Repository, error) {
	backend, err := OpenBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("store opened", "type", cfg.Storage.Type, "path", cfg.Storage.Path)
		opts = append([]store.Option{store.WithLogger(logger)}, opts...)
	}
	return store.NewRepository(backend, opts...), nil
}
