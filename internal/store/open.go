package store

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/faizmokh/jurnal/internal/config"
	"github.com/faizmokh/jurnal/internal/files"
)

// Open builds the backend selected by cfg.
func Open(cfg config.Store, manager *files.Manager, logger *log.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendCSV, "":
		return NewFileStore(manager, logger), nil
	case config.BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = manager.SheetsDBPath()
		} else {
			expanded, err := files.ExpandHome(path)
			if err != nil {
				return nil, err
			}
			path = expanded
		}
		if err := manager.EnsureDir(path); err != nil {
			return nil, err
		}
		return OpenSQLite(path, logger)
	case config.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires a url")
		}
		return NewRedisStore(cfg.RedisURL, cfg.RedisPrefix, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
