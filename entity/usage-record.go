package entity

import (
	"fmt"
	"time"
)

// UsageRecord is the append-only audit entry written alongside every
// successful redemption. It is never read back by the redemption path;
// reporting tooling consumes it out-of-band.
type UsageRecord struct {
	Id     string    `json:"id" bson:"_id"`
	Code   string    `json:"code" bson:"code"`
	Email  string    `json:"email" bson:"email"`
	UsedAt time.Time `json:"used_at" bson:"used_at"`
}

// NewUsageRecord builds the record for one redemption attempt. The key is
// deterministic over (code, usedAt, email) so that a resubmitted attempt
// collides with the record of its own earlier commit instead of producing
// a duplicate audit entry.
func NewUsageRecord(code, email string, usedAt time.Time) *UsageRecord {
	at := usedAt.UTC().Truncate(time.Second)
	return &UsageRecord{
		Id:     fmt.Sprintf("%s#%s#%s", code, at.Format(time.RFC3339), email),
		Code:   code,
		Email:  email,
		UsedAt: at,
	}
}
