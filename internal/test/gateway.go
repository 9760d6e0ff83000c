package test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/polkiloo/stampcard/internal/domain/model"
)

// LoyaltyGatewayStub is an in-memory LoyaltyGateway recording every call.
// Fn overrides take precedence over the Cards-backed defaults.
type LoyaltyGatewayStub struct {
	LoginFn        func(context.Context, string, string) (string, error)
	ListCardsFn    func(context.Context, string) ([]model.CardRef, error)
	GetCardFn      func(context.Context, string, model.RecordID) (*model.StampCard, error)
	UpdateCardFn   func(context.Context, string, model.RecordID, model.StampCard) (*model.StampCard, error)
	AssignCouponFn func(context.Context, string, model.CouponAssignment) (*model.CouponResult, error)

	Cards       []model.StampCard
	Calls       []string
	Updates     []model.StampCard
	Assignments []model.CouponAssignment

	mu sync.Mutex
}

func (s *LoyaltyGatewayStub) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, call)
}

// CallLog returns a copy of recorded call names.
func (s *LoyaltyGatewayStub) CallLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Calls...)
}

// CountCalls returns how many times call was made.
func (s *LoyaltyGatewayStub) CountCalls(call string) int {
	n := 0
	for _, c := range s.CallLog() {
		if c == call {
			n++
		}
	}
	return n
}

// Login returns "token" unless overridden.
func (s *LoyaltyGatewayStub) Login(ctx context.Context, username, password string) (string, error) {
	s.record("Login")
	if s.LoginFn != nil {
		return s.LoginFn(ctx, username, password)
	}
	return "token", nil
}

// ListCards lists references of stored cards.
func (s *LoyaltyGatewayStub) ListCards(ctx context.Context, token string) ([]model.CardRef, error) {
	s.record("ListCards")
	if s.ListCardsFn != nil {
		return s.ListCardsFn(ctx, token)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]model.CardRef, 0, len(s.Cards))
	for _, c := range s.Cards {
		refs = append(refs, model.CardRef{RecordID: c.RecordID, MemberID: c.MemberID})
	}
	return refs, nil
}

// GetCard returns a stored card copy.
func (s *LoyaltyGatewayStub) GetCard(ctx context.Context, token string, id model.RecordID) (*model.StampCard, error) {
	s.record("GetCard")
	if s.GetCardFn != nil {
		return s.GetCardFn(ctx, token, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Cards {
		if c.RecordID == id {
			card := c
			return &card, nil
		}
	}
	return nil, fmt.Errorf("stampcard %s not found", id)
}

// UpdateCard stores the new counters.
func (s *LoyaltyGatewayStub) UpdateCard(ctx context.Context, token string, id model.RecordID, card model.StampCard) (*model.StampCard, error) {
	s.record("UpdateCard")
	s.mu.Lock()
	s.Updates = append(s.Updates, card)
	s.mu.Unlock()
	if s.UpdateCardFn != nil {
		return s.UpdateCardFn(ctx, token, id, card)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.Cards {
		if c.RecordID == id {
			card.RecordID = id
			s.Cards[i] = card
			return &card, nil
		}
	}
	return nil, fmt.Errorf("stampcard %s not found", id)
}

// AssignCoupon records the assignment.
func (s *LoyaltyGatewayStub) AssignCoupon(ctx context.Context, token string, assignment model.CouponAssignment) (*model.CouponResult, error) {
	s.record("AssignCoupon")
	if s.AssignCouponFn != nil {
		return s.AssignCouponFn(ctx, token, assignment)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Assignments = append(s.Assignments, assignment)
	return &model.CouponResult{CouponID: assignment.CouponID, Payload: json.RawMessage(`{"success":true}`)}, nil
}

// Card returns stored card by member id.
func (s *LoyaltyGatewayStub) Card(memberID int64) (model.StampCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Cards {
		if c.MemberID == memberID {
			return c, true
		}
	}
	return model.StampCard{}, false
}
