package entities

import (
	"time"

	"github.com/google/uuid"
)

// ReferralDepth is the number of upline levels that earn commission.
const ReferralDepth = 3

// ReferralCommissionBps holds the commission rate per upline level, in basis
// points of the downline's yield amount: 10% / 5% / 2.5%.
var ReferralCommissionBps = [ReferralDepth]int64{1000, 500, 250}

// ReferralEdge points from a referred user to their inviter. Set once at
// registration and immutable thereafter; self-reference is rejected at
// creation time, not at traversal time.
type ReferralEdge struct {
	ChildUserID  uuid.UUID `db:"child_user_id"`
	ParentUserID uuid.UUID `db:"parent_user_id"`
	CreatedAt    time.Time `db:"created_at"`
}

// NewReferralEdge validates and builds an edge.
func NewReferralEdge(child, parent uuid.UUID) (*ReferralEdge, error) {
	if child == parent {
		return nil, ErrSelfReferral
	}
	return &ReferralEdge{ChildUserID: child, ParentUserID: parent}, nil
}

// ReferralCounts holds the materialized tree sizes per level.
type ReferralCounts struct {
	Level1 int `json:"l1"`
	Level2 int `json:"l2"`
	Level3 int `json:"l3"`
}

// Total returns the combined downline size across the three levels.
func (c ReferralCounts) Total() int {
	return c.Level1 + c.Level2 + c.Level3
}
