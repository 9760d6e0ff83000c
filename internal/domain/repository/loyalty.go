package repository

import (
	"context"

	"github.com/polkiloo/stampcard/internal/domain/model"
)

// LoyaltyGateway describes the authenticated calls made to the loyalty API.
type LoyaltyGateway interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListCards(ctx context.Context, token string) ([]model.CardRef, error)
	GetCard(ctx context.Context, token string, id model.RecordID) (*model.StampCard, error)
	UpdateCard(ctx context.Context, token string, id model.RecordID, card model.StampCard) (*model.StampCard, error)
	AssignCoupon(ctx context.Context, token string, assignment model.CouponAssignment) (*model.CouponResult, error)
}
