package handlers

import (
	"context"

	"github.com/polkiloo/stampcard/internal/app"
	"github.com/polkiloo/stampcard/internal/domain/model"
)

// StampCardFacade is the set of workflow operations exposed via HTTP.
type StampCardFacade interface {
	Settings() app.Settings
	FetchStampCard(ctx context.Context, creds model.Credentials, memberID int64) (*app.Result, error)
	UpdateStampCard(ctx context.Context, creds model.Credentials, update model.StampUpdate) (*app.Result, error)
	Activity(ctx context.Context, memberID int64, limit int) ([]model.ActivityRun, error)
}
