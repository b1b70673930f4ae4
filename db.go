package main

import (
	"fmt"

	"pfm/config"
	"pfm/store"
	"pfm/store/gormstore"
	"pfm/store/memory"
)

// openStore returns the storage backend selected by DATA_BACKEND.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DataBackend {
	case "memory":
		return memory.New(), nil
	case "postgres":
		st, err := gormstore.Open(cfg.DatabaseDSN, cfg.DBAutoMigrate)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
