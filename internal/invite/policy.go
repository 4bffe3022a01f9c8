package invite

import (
	"time"

	"mealbook/entity"
)

// Reason classifies the outcome of evaluating the redemption rule
// against one code snapshot. Only ReasonOK permits redemption; the
// distinction between the deny reasons is for diagnostics and is never
// exposed to callers.
type Reason int

const (
	ReasonOK Reason = iota
	ReasonNotFound
	ReasonRevoked
	ReasonExpired
	ReasonExhausted
	ReasonPolicyViolation
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonNotFound:
		return "not found"
	case ReasonRevoked:
		return "revoked"
	case ReasonExpired:
		return "expired"
	case ReasonExhausted:
		return "exhausted"
	}
	return "policy violation"
}

// Permits evaluates the redemption rule against a code snapshot.
// Precedence: absence, then revocation, then expiry, then per-policy
// capacity. An unrecognized policy denies.
//
// This evaluation is advisory: the authoritative decision is the same
// rule re-checked by the store as a commit-time precondition, so a
// snapshot that permits here can still be denied at commit.
func Permits(code *entity.InviteCode, now time.Time) Reason {
	if code == nil {
		return ReasonNotFound
	}
	if code.Revoked {
		return ReasonRevoked
	}
	if code.Expired(now) {
		return ReasonExpired
	}
	switch code.Policy {
	case entity.PolicyUnlimited:
		return ReasonOK
	case entity.PolicyBounded:
		if code.Uses < code.MaxUses {
			return ReasonOK
		}
		return ReasonExhausted
	case entity.PolicySingle:
		if code.Uses == 0 {
			return ReasonOK
		}
		return ReasonExhausted
	}
	return ReasonPolicyViolation
}
