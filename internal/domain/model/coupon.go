package model

import "encoding/json"

// CouponAssignment requests a coupon to be granted to a set of members.
type CouponAssignment struct {
	CouponID        int64
	MemberIDs       []int64
	AllowDuplicates bool
}

// CouponResult carries the loyalty API answer to a coupon assignment.
type CouponResult struct {
	CouponID int64
	Payload  json.RawMessage
}
