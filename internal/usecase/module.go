package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/stampcard/internal/config"
	"github.com/polkiloo/stampcard/internal/domain/model"
)

// Module provides the stamp card workflow to the fx container.
var Module = fx.Provide(
	newRules,
	NewStampCardUseCase,
)

func newRules(cfg *config.Config) model.Rules {
	return model.Rules{
		StampsPerCard:         cfg.StampsPerCard,
		AllowDuplicateCoupons: cfg.AllowDuplicateCoupons,
	}
}
