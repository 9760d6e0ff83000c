package usecase

import (
	"context"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/stampcard/internal/domain/errors"
	"github.com/polkiloo/stampcard/internal/domain/model"
	"github.com/polkiloo/stampcard/internal/domain/repository"
)

// Workflow step names reported in StepError and activity lines.
const (
	StepLogin        = "login"
	StepLookup       = "lookup"
	StepRead         = "read"
	StepValidate     = "validate"
	StepAssignCoupon = "assign-coupon"
	StepUpdate       = "update"
	StepRefresh      = "refresh"
)

// ActivityLog receives human-readable progress lines of a workflow.
type ActivityLog interface {
	Add(line string)
}

// StampCardUseCase orchestrates login, lookup, read and conditional
// update/coupon assignment against the loyalty API.
type StampCardUseCase struct {
	gateway repository.LoyaltyGateway
	rules   model.Rules
}

// NewStampCardUseCase constructs StampCardUseCase.
func NewStampCardUseCase(gateway repository.LoyaltyGateway, rules model.Rules) *StampCardUseCase {
	return &StampCardUseCase{gateway: gateway, rules: rules}
}

// Rules returns the business rules the workflow was built with.
func (u *StampCardUseCase) Rules() model.Rules {
	return u.rules
}

// Authenticate logs in and returns an opaque session token.
func (u *StampCardUseCase) Authenticate(ctx context.Context, log ActivityLog, creds model.Credentials) (string, error) {
	creds = creds.Normalize()
	if creds.Empty() {
		err := domainErrors.Invalid(StepLogin, "username and password are required")
		say(log, "Login failed: username and password are required")
		return "", err
	}

	say(log, "Logging in...")
	token, err := u.gateway.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		say(log, "Login failed: %v", err)
		return "", domainErrors.NewStepError(StepLogin, domainErrors.ErrAuthentication, err)
	}
	say(log, "Login successful")
	return token, nil
}

// FetchCard resolves the member's record id by scanning all visible cards,
// then reads that card.
func (u *StampCardUseCase) FetchCard(ctx context.Context, log ActivityLog, token string, memberID int64) (*model.StampCard, error) {
	if err := u.ValidateMember(memberID); err != nil {
		say(log, "Error: %v", err)
		return nil, err
	}

	say(log, "Looking up stamp card for member %d...", memberID)
	id, err := u.resolveRecordID(ctx, token, memberID)
	if err != nil {
		say(log, "Lookup failed: %v", err)
		return nil, err
	}

	say(log, "Fetching stamp card %s...", id)
	card, err := u.readCard(ctx, StepRead, token, id, memberID)
	if err != nil {
		say(log, "Fetch failed: %v", err)
		return nil, err
	}
	say(log, "Stamp card loaded: %s", u.describe(card))
	return card, nil
}

// ValidateMember checks a member id without touching the network.
func (u *StampCardUseCase) ValidateMember(memberID int64) error {
	if memberID <= 0 {
		return domainErrors.Invalid(StepLookup, "member id must be positive, got %d", memberID)
	}
	return nil
}

// ValidateUpdate checks a stamp update without touching the network.
// It returns the parsed coupon id when the update completes the card.
func (u *StampCardUseCase) ValidateUpdate(req model.StampUpdate) (int64, error) {
	if req.MemberID <= 0 {
		return 0, domainErrors.Invalid(StepValidate, "member id must be positive, got %d", req.MemberID)
	}
	max := u.rules.StampsPerCard
	if req.Stamps < 0 || req.Stamps > max {
		return 0, domainErrors.Invalid(StepValidate, "stamps must be within [0, %d], got %d", max, req.Stamps)
	}
	if req.Stamps != max {
		return 0, nil
	}

	raw := strings.TrimSpace(req.CouponID)
	if raw == "" {
		return 0, domainErrors.Invalid(StepValidate, "coupon id required when completing a stamp card (%d/%d stamps)", max, max)
	}
	couponID, err := model.ParseCouponID(raw)
	if err != nil {
		return 0, domainErrors.NewStepError(StepValidate, domainErrors.ErrValidation, err)
	}
	return couponID, nil
}

// ApplyStampUpdate records a new stamp count for the member. Landing exactly
// on the configured maximum assigns the reward coupon first and only then
// resets the card; a failed assignment leaves the stored card untouched.
func (u *StampCardUseCase) ApplyStampUpdate(ctx context.Context, log ActivityLog, token string, req model.StampUpdate) (*model.StampCard, error) {
	couponID, err := u.ValidateUpdate(req)
	if err != nil {
		say(log, "Error: %v", err)
		return nil, err
	}

	current, err := u.FetchCard(ctx, log, token, req.MemberID)
	if err != nil {
		return nil, err
	}

	max := u.rules.StampsPerCard
	completes := req.Stamps == max
	if completes {
		say(log, "Card completed! Assigning reward and resetting stamps...")
		say(log, "Assigning coupon %d to member %d (duplicates: %t)...", couponID, req.MemberID, u.rules.AllowDuplicateCoupons)
		assignment := model.CouponAssignment{
			CouponID:        couponID,
			MemberIDs:       []int64{req.MemberID},
			AllowDuplicates: u.rules.AllowDuplicateCoupons,
		}
		if _, err := u.gateway.AssignCoupon(ctx, token, assignment); err != nil {
			say(log, "Coupon assignment failed: %v", err)
			return nil, domainErrors.NewStepError(StepAssignCoupon, domainErrors.ErrGateway, err)
		}
		say(log, "Coupon assigned successfully")
	}

	next := current.Advance(req.Stamps, max)
	if completes {
		say(log, "Resetting stamps to 0/%d (card #%d completed)...", max, next.CardsFilled)
	} else {
		say(log, "Updating stamps to %d/%d...", req.Stamps, max)
	}
	if _, err := u.gateway.UpdateCard(ctx, token, current.RecordID, next); err != nil {
		say(log, "Update failed: %v", err)
		return nil, domainErrors.NewStepError(StepUpdate, domainErrors.ErrGateway, err)
	}
	say(log, "Stamp card updated successfully")

	say(log, "Refreshing stamp card...")
	refreshed, err := u.readCard(ctx, StepRefresh, token, current.RecordID, req.MemberID)
	if err != nil {
		say(log, "Refresh failed: %v", err)
		return nil, err
	}
	say(log, "Confirmed state: %s", u.describe(refreshed))
	return refreshed, nil
}

func (u *StampCardUseCase) resolveRecordID(ctx context.Context, token string, memberID int64) (model.RecordID, error) {
	refs, err := u.gateway.ListCards(ctx, token)
	if err != nil {
		return "", domainErrors.NewStepError(StepLookup, domainErrors.ErrGateway, err)
	}
	for _, ref := range refs {
		if ref.MemberID == memberID {
			return ref.RecordID, nil
		}
	}
	return "", domainErrors.NewStepError(StepLookup, domainErrors.ErrNotFound, fmt.Errorf("no stamp card for member %d", memberID))
}

func (u *StampCardUseCase) readCard(ctx context.Context, step, token string, id model.RecordID, memberID int64) (*model.StampCard, error) {
	card, err := u.gateway.GetCard(ctx, token, id)
	if err != nil {
		return nil, domainErrors.NewStepError(step, domainErrors.ErrGateway, err)
	}
	if card.MemberID != memberID {
		return nil, domainErrors.NewStepError(step, domainErrors.ErrGateway,
			fmt.Errorf("record %s belongs to member %d, expected %d", id, card.MemberID, memberID))
	}
	if card.RecordID == "" {
		card.RecordID = id
	}
	return card, nil
}

func (u *StampCardUseCase) describe(card *model.StampCard) string {
	return fmt.Sprintf("%d/%d stamps, %d cards filled, %d rewards earned",
		card.Stamps, u.rules.StampsPerCard, card.CardsFilled, card.RewardsEarned)
}

func say(log ActivityLog, format string, args ...any) {
	if log == nil {
		return
	}
	log.Add(fmt.Sprintf(format, args...))
}

// Transcript is an in-memory ActivityLog.
type Transcript struct {
	lines []string
}

// Add appends a line.
func (t *Transcript) Add(line string) {
	t.lines = append(t.lines, line)
}

// Lines returns a copy of collected lines.
func (t *Transcript) Lines() []string {
	return append([]string(nil), t.lines...)
}
