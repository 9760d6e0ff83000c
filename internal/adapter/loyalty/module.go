package loyalty

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/stampcard/internal/config"
	"github.com/polkiloo/stampcard/internal/domain/repository"
)

// Module exposes loyalty gateway implementation to fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (repository.LoyaltyGateway, error) {
	return NewHTTPClient(p.Config.APIBaseURL, p.Config.AuthType, p.Config.RequestTimeout, p.Logger)
}
