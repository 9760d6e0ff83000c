package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/stampcard/internal/config"
)

// Module provides operator key verification via fx.
var Module = fx.Options(
	fx.Provide(newKeyHasher),
	fx.Provide(newOperatorVerifier),
)

func newKeyHasher() KeyHasher {
	return NewBcryptHasher(0)
}

type verifierParams struct {
	fx.In

	Config *config.Config
	Hasher KeyHasher
}

func newOperatorVerifier(p verifierParams) (*OperatorVerifier, error) {
	return NewOperatorVerifier(p.Config.OperatorKeyHash, p.Hasher)
}
