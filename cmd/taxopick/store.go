package main

import (
	"fmt"

	"github.com/Dicklesworthstone/taxopick/pkg/config"
	"github.com/Dicklesworthstone/taxopick/pkg/fieldstore"
	"github.com/Dicklesworthstone/taxopick/pkg/model"
	"github.com/Dicklesworthstone/taxopick/pkg/selection"
)

// openStore builds the field store named by the config. The returned close
// function is never nil.
func openStore(cfg *config.Config) (selection.FieldStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Kind {
	case config.StoreFile:
		return fieldstore.NewFile(cfg.Store.Path), noop, nil
	case config.StoreSQLite:
		s, err := fieldstore.OpenSQLite(cfg.Store.Path, cfg.Store.EntryUID, cfg.Store.FieldUID)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.StoreMemory:
		return fieldstore.NewMemory(model.FieldData{}), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}
