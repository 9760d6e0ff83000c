package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/stampcard/internal/config"
	domainErrors "github.com/polkiloo/stampcard/internal/domain/errors"
	"github.com/polkiloo/stampcard/internal/domain/model"
	"github.com/polkiloo/stampcard/internal/domain/repository"
	"github.com/polkiloo/stampcard/internal/usecase"
	"github.com/polkiloo/stampcard/internal/view"
)

// Settings is the read-only configuration panel shown to staff.
type Settings struct {
	BusinessName          string   `json:"business_name"`
	StampsPerCard         int      `json:"stamps_per_card"`
	APIBaseURL            string   `json:"api_base_url"`
	DefaultCouponID       int64    `json:"default_coupon_id"`
	DefaultCouponName     string   `json:"default_coupon_name"`
	AllowDuplicateCoupons bool     `json:"allow_duplicate_coupons"`
	StampEmoji            string   `json:"stamp_emoji"`
	EmptySlotEmoji        string   `json:"empty_slot_emoji"`
	HowItWorks            []string `json:"how_it_works"`
}

// Result is the outcome of one hosted workflow run. Log is filled even when
// the run fails.
type Result struct {
	RunID string
	Card  *model.StampCard
	View  *view.CardView
	Log   []string
}

// StampCardFacade hosts the stamp card workflow for the HTTP surface: it
// performs the per-call login, serializes updates per member and journals
// every run.
type StampCardFacade struct {
	workflow *usecase.StampCardUseCase
	journal  repository.ActivityJournal
	cfg      *config.Config
	logger   *slog.Logger
	locks    *memberLocks

	newRunID func() string
	now      func() time.Time
}

func NewStampCardFacade(workflow *usecase.StampCardUseCase, journal repository.ActivityJournal, cfg *config.Config, logger *slog.Logger) *StampCardFacade {
	return &StampCardFacade{
		workflow: workflow,
		journal:  journal,
		cfg:      cfg,
		logger:   logger,
		locks:    newMemberLocks(),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
}

func (f *StampCardFacade) Settings() Settings {
	return Settings{
		BusinessName:          f.cfg.BusinessName,
		StampsPerCard:         f.cfg.StampsPerCard,
		APIBaseURL:            f.cfg.APIBaseURL,
		DefaultCouponID:       f.cfg.DefaultCouponID,
		DefaultCouponName:     f.cfg.DefaultCouponName,
		AllowDuplicateCoupons: f.cfg.AllowDuplicateCoupons,
		StampEmoji:            f.cfg.StampEmoji,
		EmptySlotEmoji:        f.cfg.EmptySlotEmoji,
		HowItWorks:            view.HowItWorks(f.cfg.StampsPerCard),
	}
}

// FetchStampCard logs in and loads the member's card.
func (f *StampCardFacade) FetchStampCard(ctx context.Context, creds model.Credentials, memberID int64) (*Result, error) {
	run := f.begin(model.OperationFetch, memberID)

	if err := f.workflow.ValidateMember(memberID); err != nil {
		run.Add("Error: " + err.Error())
		return f.finish(ctx, run, nil, err)
	}

	token, err := f.workflow.Authenticate(ctx, run, creds)
	if err != nil {
		return f.finish(ctx, run, nil, err)
	}
	card, err := f.workflow.FetchCard(ctx, run, token, memberID)
	return f.finish(ctx, run, card, err)
}

// UpdateStampCard records a new stamp count. Input is validated before any
// network call; concurrent updates for the same member run one at a time and
// a waiter gives up when ctx is done.
func (f *StampCardFacade) UpdateStampCard(ctx context.Context, creds model.Credentials, update model.StampUpdate) (*Result, error) {
	run := f.begin(model.OperationUpdate, update.MemberID)

	if _, err := f.workflow.ValidateUpdate(update); err != nil {
		run.Add("Error: " + err.Error())
		return f.finish(ctx, run, nil, err)
	}

	unlock, err := f.locks.Lock(ctx, update.MemberID)
	if err != nil {
		err = fmt.Errorf("waiting for member %d: %w", update.MemberID, err)
		run.Add("Error: " + err.Error())
		return f.finish(ctx, run, nil, err)
	}
	defer unlock()

	token, err := f.workflow.Authenticate(ctx, run, creds)
	if err != nil {
		return f.finish(ctx, run, nil, err)
	}
	card, err := f.workflow.ApplyStampUpdate(ctx, run, token, update)
	return f.finish(ctx, run, card, err)
}

// Activity returns the most recent journaled runs for a member.
func (f *StampCardFacade) Activity(ctx context.Context, memberID int64, limit int) ([]model.ActivityRun, error) {
	if err := f.workflow.ValidateMember(memberID); err != nil {
		return nil, err
	}
	return f.journal.ListByMember(ctx, memberID, limit)
}

func (f *StampCardFacade) begin(op model.Operation, memberID int64) *runLog {
	runID := f.newRunID()
	return &runLog{
		runID:    runID,
		op:       op,
		memberID: memberID,
		logger: f.logger.With(
			slog.String("run_id", runID),
			slog.String("operation", string(op)),
			slog.Int64("member_id", memberID),
		),
	}
}

func (f *StampCardFacade) finish(ctx context.Context, run *runLog, card *model.StampCard, err error) (*Result, error) {
	result := &Result{RunID: run.runID, Log: run.Lines()}
	if err == nil && card != nil {
		rendered := view.Render(*card, view.OptionsFromConfig(f.cfg))
		result.Card = card
		result.View = &rendered
	}

	if err != nil {
		run.logger.Warn("stamp card run failed",
			slog.String("step", domainErrors.StepOf(err)),
			slog.String("error", err.Error()),
		)
	}

	entry := model.ActivityRun{
		RunID:      run.runID,
		Operation:  run.op,
		MemberID:   run.memberID,
		Lines:      result.Log,
		Failed:     err != nil,
		RecordedAt: f.now().UTC(),
	}
	if jerr := f.journal.Append(context.WithoutCancel(ctx), entry); jerr != nil {
		run.logger.Error("failed to journal activity", slog.String("error", jerr.Error()))
	}

	return result, err
}

// runLog collects activity lines for one run and mirrors them to slog.
type runLog struct {
	usecase.Transcript

	runID    string
	op       model.Operation
	memberID int64
	logger   *slog.Logger
}

func (r *runLog) Add(line string) {
	r.Transcript.Add(line)
	r.logger.Info(line)
}
