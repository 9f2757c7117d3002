package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundaudit/internal/config"
	"github.com/sells-group/fundaudit/internal/engine"
	"github.com/sells-group/fundaudit/internal/registry"
	"github.com/sells-group/fundaudit/internal/store"
)

// env bundles the wired subsystems a command runs against.
type env struct {
	Store    store.Store
	Registry *registry.Registry
	Driver   *engine.Driver
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// initStore opens the configured backend and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initRegistry builds the rule registry: built-in packs plus any YAML
// packs named in the config.
func initRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg, err := registry.New()
	if err != nil {
		return nil, eris.Wrap(err, "build registry")
	}
	for _, path := range cfg.Rules.PackPaths {
		if err := reg.LoadPackFile(path); err != nil {
			return nil, eris.Wrapf(err, "load rule pack %s", path)
		}
	}
	zap.L().Info("registry loaded", zap.Int("rules", reg.Len()))
	return reg, nil
}

// initEnv wires store, registry and evaluation driver from config.
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := initRegistry(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	driver := engine.NewDriver(reg, engine.Config{
		Threshold:           cfg.Engine.MinRatio,
		DifferenceThreshold: cfg.Engine.DifferenceThreshold,
	})

	return &env{Store: st, Registry: reg, Driver: driver}, nil
}
