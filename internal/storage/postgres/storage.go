package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/stampcard/internal/domain/model"
	"github.com/polkiloo/stampcard/internal/domain/repository"
)

const defaultActivityLimit = 20

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage keeps the activity journal in PostgreSQL. Stamp card state is
// never stored here; the loyalty API stays authoritative.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type activityJournal struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Journal returns the ActivityJournal backed by this storage.
func (s *Storage) Journal() repository.ActivityJournal {
	return &activityJournal{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS activity_log (
            id BIGSERIAL PRIMARY KEY,
            run_id TEXT NOT NULL,
            operation TEXT NOT NULL,
            member_id BIGINT NOT NULL,
            line_no INT NOT NULL,
            message TEXT NOT NULL,
            failed BOOLEAN NOT NULL DEFAULT FALSE,
            recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (run_id, line_no)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_activity_member ON activity_log(member_id, recorded_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- ActivityJournal implementation ---

func (j *activityJournal) Append(ctx context.Context, run model.ActivityRun) error {
	if len(run.Lines) == 0 {
		return nil
	}
	recordedAt := run.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	const insertQuery = `INSERT INTO activity_log (run_id, operation, member_id, line_no, message, failed, recorded_at)
                         VALUES ($1, $2, $3, $4, $5, $6, $7)`
	return j.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		for i, line := range run.Lines {
			if _, err := tx.Exec(ctx, insertQuery, run.RunID, string(run.Operation), run.MemberID, i+1, line, run.Failed, recordedAt); err != nil {
				return fmt.Errorf("append activity %s: %w", run.RunID, err)
			}
		}
		return nil
	})
}

func (j *activityJournal) ListByMember(ctx context.Context, memberID int64, limit int) ([]model.ActivityRun, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	const query = `SELECT run_id, operation, member_id, message, failed, recorded_at
                   FROM activity_log
                   WHERE run_id IN (
                       SELECT run_id FROM activity_log WHERE member_id=$1
                       GROUP BY run_id ORDER BY MAX(recorded_at) DESC LIMIT $2
                   )
                   ORDER BY recorded_at DESC, run_id, line_no`
	rows, err := j.storage.pool.Query(ctx, query, memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		runs  []model.ActivityRun
		index = make(map[string]int)
	)
	for rows.Next() {
		var (
			runID, operation, message string
			member                    int64
			failed                    bool
			recordedAt                time.Time
		)
		if err := rows.Scan(&runID, &operation, &member, &message, &failed, &recordedAt); err != nil {
			return nil, err
		}
		pos, ok := index[runID]
		if !ok {
			pos = len(runs)
			index[runID] = pos
			runs = append(runs, model.ActivityRun{
				RunID:      runID,
				Operation:  model.Operation(operation),
				MemberID:   member,
				Failed:     failed,
				RecordedAt: recordedAt,
			})
		}
		runs[pos].Lines = append(runs[pos].Lines, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
