package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/stampcard/internal/adapter/loyalty"
	"github.com/polkiloo/stampcard/internal/app"
	"github.com/polkiloo/stampcard/internal/config"
	"github.com/polkiloo/stampcard/internal/logger"
	"github.com/polkiloo/stampcard/internal/pkg/auth"
	"github.com/polkiloo/stampcard/internal/server/http/router"
	"github.com/polkiloo/stampcard/internal/storage/postgres"
	"github.com/polkiloo/stampcard/internal/usecase"
)

// Module assembles the full application graph. opts are appended last so
// callers can replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		loyalty.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
