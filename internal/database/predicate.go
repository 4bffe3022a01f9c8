package database

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"mealbook/entity"
	"mealbook/internal/invite"
)

// redemptionFilter compiles the redemption rule into the filter the
// consume update runs under. The update matches, and therefore applies,
// only when every clause holds against the document's current state at
// commit time:
//
//	code exists, not revoked, not expired, and
//	unlimited OR (bounded AND uses < max_uses) OR (single AND uses == 0)
//
// This is the same rule as invite.Permits; a zero-match update is a
// precondition failure, never grounds for a client-side re-read.
func redemptionFilter(code string, now time.Time) bson.D {
	return bson.D{
		{Key: "code", Value: code},
		{Key: "revoked", Value: bson.D{{Key: "$ne", Value: true}}},
		{Key: "$and", Value: bson.A{
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "expires_at", Value: bson.D{{Key: "$exists", Value: false}}}},
				bson.D{{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: now.UTC()}}}},
			}}},
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "policy", Value: entity.PolicyUnlimited}},
				bson.D{
					{Key: "policy", Value: entity.PolicyBounded},
					{Key: "$expr", Value: bson.D{{Key: "$lt", Value: bson.A{"$uses", "$max_uses"}}}},
				},
				bson.D{{Key: "policy", Value: entity.PolicySingle}, {Key: "uses", Value: 0}},
			}}},
		}},
	}
}

// consumeUpdate records one use: bumps the counter and stamps the audit
// fields. Only ever applied together with redemptionFilter.
func consumeUpdate(attempt *invite.Attempt) bson.D {
	return bson.D{
		{Key: "$inc", Value: bson.D{{Key: "uses", Value: 1}}},
		{Key: "$set", Value: bson.D{
			{Key: "last_used_at", Value: attempt.At.UTC()},
			{Key: "last_used_by", Value: attempt.Identity.Email},
		}},
	}
}
