package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/polkiloo/stampcard/internal/domain/model"
	"github.com/polkiloo/stampcard/internal/view"
)

// Credentials carries staff login for the loyalty API. They are used for a
// single request and never stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Model converts to domain credentials.
func (c Credentials) Model() model.Credentials {
	return model.Credentials{Username: c.Username, Password: c.Password}
}

// FetchRequest describes POST /api/stampcard/fetch payload.
type FetchRequest struct {
	Credentials
	MemberID int64 `json:"member_id"`
}

// UpdateRequest describes POST /api/stampcard/update payload.
// CouponID accepts a JSON number or string.
type UpdateRequest struct {
	Credentials
	MemberID int64           `json:"member_id"`
	Stamps   *int            `json:"stamps"`
	CouponID json.RawMessage `json:"coupon_id,omitempty"`
}

// Coupon returns the coupon id as text and whether the field was present.
func (r UpdateRequest) Coupon() (string, bool) {
	raw := bytes.TrimSpace(r.CouponID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return strings.TrimSpace(string(raw)), true
}

// CardResponse is the stamp card snapshot returned to clients.
type CardResponse struct {
	RecordID      string `json:"record_id"`
	MemberID      int64  `json:"member_id"`
	Stamps        int    `json:"stamps"`
	CardsFilled   int    `json:"cards_filled"`
	RewardsEarned int    `json:"rewards_earned"`
}

// NewCardResponse maps a domain card.
func NewCardResponse(card *model.StampCard) *CardResponse {
	if card == nil {
		return nil
	}
	return &CardResponse{
		RecordID:      string(card.RecordID),
		MemberID:      card.MemberID,
		Stamps:        card.Stamps,
		CardsFilled:   card.CardsFilled,
		RewardsEarned: card.RewardsEarned,
	}
}

// ErrorResponse explains why a workflow stopped.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message"`
}

// WorkflowResponse is returned by fetch and update, on success and failure.
type WorkflowResponse struct {
	RunID string         `json:"run_id,omitempty"`
	Card  *CardResponse  `json:"card,omitempty"`
	View  *view.CardView `json:"view,omitempty"`
	Log   []string       `json:"log"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ActivityRunResponse is one journaled workflow run.
type ActivityRunResponse struct {
	RunID      string    `json:"run_id"`
	Operation  string    `json:"operation"`
	Failed     bool      `json:"failed"`
	Lines      []string  `json:"lines"`
	RecordedAt time.Time `json:"recorded_at"`
}
