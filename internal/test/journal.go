package test

import (
	"context"
	"sync"

	"github.com/polkiloo/stampcard/internal/domain/model"
)

// ActivityJournalStub keeps journaled runs in memory.
type ActivityJournalStub struct {
	AppendErr error
	ListErr   error

	mu   sync.Mutex
	Runs []model.ActivityRun
}

// Append stores run unless AppendErr is set.
func (s *ActivityJournalStub) Append(_ context.Context, run model.ActivityRun) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Runs = append(s.Runs, run)
	return nil
}

// ListByMember returns the member's runs newest first.
func (s *ActivityJournalStub) ListByMember(_ context.Context, memberID int64, limit int) ([]model.ActivityRun, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ActivityRun
	for i := len(s.Runs) - 1; i >= 0; i-- {
		if s.Runs[i].MemberID != memberID {
			continue
		}
		out = append(out, s.Runs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Snapshot returns a copy of stored runs.
func (s *ActivityJournalStub) Snapshot() []model.ActivityRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ActivityRun(nil), s.Runs...)
}
