package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RecordID is the loyalty API's own identifier of a stamp card row.
// It is distinct from the member id and treated as opaque.
type RecordID string

// UnmarshalJSON accepts both numeric and string record identifiers.
func (r *RecordID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*r = RecordID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*r = RecordID(s)
	return nil
}

// CardRef is a single entry of the card listing used to resolve a member's record.
type CardRef struct {
	RecordID RecordID
	MemberID int64
}

// StampCard is the authoritative loyalty record for one member.
type StampCard struct {
	RecordID      RecordID
	MemberID      int64
	Stamps        int
	CardsFilled   int
	RewardsEarned int
}

// Complete reports whether the active card holds exactly stampsPerCard stamps.
func (c StampCard) Complete(stampsPerCard int) bool {
	return c.Stamps == stampsPerCard
}

// Advance computes the next counter state for a requested stamp count.
// Landing exactly on stampsPerCard closes the card: stamps reset and both
// lifetime counters grow by one. Any other value replaces the stamp count.
func (c StampCard) Advance(requested, stampsPerCard int) StampCard {
	next := c
	if requested == stampsPerCard {
		next.Stamps = 0
		next.CardsFilled = c.CardsFilled + 1
		next.RewardsEarned = c.RewardsEarned + 1
		return next
	}
	next.Stamps = requested
	return next
}

// Rules holds the business constants of the stamp program.
type Rules struct {
	StampsPerCard         int
	AllowDuplicateCoupons bool
}

// StampUpdate is a staff request to set the stamp count of a member's card.
// CouponID is the raw user input and is parsed only when the card completes.
type StampUpdate struct {
	MemberID int64
	Stamps   int
	CouponID string
}

// ParseCouponID parses a coupon identifier that must be a positive integer.
func ParseCouponID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("coupon id %q is not numeric", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("coupon id must be positive, got %d", id)
	}
	return id, nil
}
