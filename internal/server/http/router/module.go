package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/stampcard/internal/app"
	"github.com/polkiloo/stampcard/internal/pkg/auth"
	"github.com/polkiloo/stampcard/internal/server/http/handlers"
	"github.com/polkiloo/stampcard/internal/server/http/middleware"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(
		func(f *app.StampCardFacade) handlers.StampCardFacade { return f },
		func(v *auth.OperatorVerifier) middleware.KeyVerifier { return v },
	),
	fx.Provide(Setup),
)
