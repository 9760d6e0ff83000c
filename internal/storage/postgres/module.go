package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/stampcard/internal/config"
	"github.com/polkiloo/stampcard/internal/domain/repository"
)

// Module wires the activity journal. Without DATABASE_URI the journal
// discards everything.
var Module = fx.Provide(newJournal)

type storageParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Ctx       context.Context
	Config    *config.Config
	Logger    *slog.Logger
}

func newJournal(p storageParams) (repository.ActivityJournal, error) {
	if p.Config.DatabaseURI == "" {
		p.Logger.Info("activity journal disabled: no database configured")
		return repository.DiscardJournal{}, nil
	}
	storage, err := New(p.Ctx, p.Config.DatabaseURI, p.Logger)
	if err != nil {
		return nil, err
	}
	registerLifecycle(p.Lifecycle, storage)
	return storage.Journal(), nil
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return storage.HealthCheck(ctx)
		},
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
