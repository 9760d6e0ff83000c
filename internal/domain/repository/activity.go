package repository

import (
	"context"

	"github.com/polkiloo/stampcard/internal/domain/model"
)

// ActivityJournal keeps an append-only trail of workflow transcripts.
type ActivityJournal interface {
	Append(ctx context.Context, run model.ActivityRun) error
	ListByMember(ctx context.Context, memberID int64, limit int) ([]model.ActivityRun, error)
}

// DiscardJournal is used when no journal store is configured.
type DiscardJournal struct{}

func (DiscardJournal) Append(context.Context, model.ActivityRun) error { return nil }

func (DiscardJournal) ListByMember(context.Context, int64, int) ([]model.ActivityRun, error) {
	return nil, nil
}
