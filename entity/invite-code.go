package entity

import "time"

// UsePolicy is the usage rule in force for an invite code, chosen at
// creation time. Exactly one policy governs a code; there are no
// overlapping flag/counter combinations to reconcile at redemption time.
type UsePolicy string

const (
	// PolicyUnlimited codes can be redeemed any number of times.
	PolicyUnlimited UsePolicy = "unlimited"
	// PolicyBounded codes can be redeemed up to MaxUses times.
	PolicyBounded UsePolicy = "bounded"
	// PolicySingle codes can be redeemed exactly once.
	PolicySingle UsePolicy = "single"
)

// InviteCode is the durable record for one registration code.
// Issuance tooling (the admin bot) writes Policy, MaxUses, Revoked and
// ExpiresAt; the redemption transaction is the only writer of Uses,
// LastUsedAt and LastUsedBy.
type InviteCode struct {
	Code       string     `json:"code" bson:"code"`
	Policy     UsePolicy  `json:"policy" bson:"policy"`
	MaxUses    int        `json:"max_uses,omitempty" bson:"max_uses,omitempty"`
	Uses       int        `json:"uses" bson:"uses"`
	Revoked    bool       `json:"revoked,omitempty" bson:"revoked,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedBy  int64      `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" bson:"last_used_at,omitempty"`
	LastUsedBy string     `json:"last_used_by,omitempty" bson:"last_used_by,omitempty"`
}

// Expired reports whether the code's expiry, if set, has passed.
func (c *InviteCode) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Remaining returns the number of redemptions still available, or -1
// for unlimited codes.
func (c *InviteCode) Remaining() int {
	switch c.Policy {
	case PolicyUnlimited:
		return -1
	case PolicyBounded:
		if n := c.MaxUses - c.Uses; n > 0 {
			return n
		}
		return 0
	case PolicySingle:
		if c.Uses == 0 {
			return 1
		}
		return 0
	}
	return 0
}
