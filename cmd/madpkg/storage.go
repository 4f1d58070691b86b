package main

import (
	"context"
	"log/slog"

	"github.com/SpielerNogard/MAD/internal/config"
	"github.com/SpielerNogard/MAD/internal/storage"
	"github.com/SpielerNogard/MAD/internal/store"
)

// withStorage loads configuration, opens the selected storage medium, and
// runs fn against it, closing everything afterwards.
func withStorage(flags *rootFlags, fn func(cfg config.Config, st storage.APKStorage) error) (err error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	var db *store.Store
	if cfg.StorageType == storage.TypeDatabase {
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
	}

	st, err := storage.New(&cfg, db, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := st.Shutdown(context.Background()); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	return fn(cfg, st)
}
