package database

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"mealbook/entity"
	"mealbook/internal/invite"
)

func marshalToMap(t *testing.T, doc bson.D) bson.M {
	t.Helper()
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestRedemptionFilterShape(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	filter := marshalToMap(t, redemptionFilter("WELCOME5", now))

	if got := filter["code"]; got != "WELCOME5" {
		t.Errorf("code clause = %v, want WELCOME5", got)
	}
	if _, ok := filter["revoked"]; !ok {
		t.Error("filter lacks a revoked guard")
	}

	and, ok := filter["$and"].(bson.A)
	if !ok || len(and) != 2 {
		t.Fatalf("$and = %v, want expiry and policy branches", filter["$and"])
	}

	expiry, ok := and[0].(bson.M)["$or"].(bson.A)
	if !ok || len(expiry) != 2 {
		t.Fatalf("expiry branch = %v, want absent-or-future pair", and[0])
	}

	policy, ok := and[1].(bson.M)["$or"].(bson.A)
	if !ok || len(policy) != 3 {
		t.Fatalf("policy branch = %v, want one clause per policy", and[1])
	}

	single := policy[2].(bson.M)
	if single["policy"] != string(entity.PolicySingle) {
		t.Errorf("third policy clause = %v, want single-use", single["policy"])
	}
	if got, ok := single["uses"].(int32); !ok || got != 0 {
		t.Errorf("single-use clause uses = %v, want 0", single["uses"])
	}

	bounded := policy[1].(bson.M)
	if bounded["policy"] != string(entity.PolicyBounded) {
		t.Errorf("second policy clause = %v, want bounded", bounded["policy"])
	}
	if _, ok := bounded["$expr"]; !ok {
		t.Error("bounded clause lacks the uses < max_uses comparison")
	}
}

func TestConsumeUpdateShape(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	attempt := &invite.Attempt{
		Code:     "WELCOME5",
		Identity: entity.Identity{Email: "user@example.com"},
		At:       at,
	}
	update := marshalToMap(t, consumeUpdate(attempt))

	inc, ok := update["$inc"].(bson.M)
	if !ok || inc["uses"] != int32(1) {
		t.Errorf("$inc = %v, want uses +1", update["$inc"])
	}

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("$set = %v", update["$set"])
	}
	if set["last_used_by"] != "user@example.com" {
		t.Errorf("last_used_by = %v", set["last_used_by"])
	}
	if _, ok := set["last_used_at"]; !ok {
		t.Error("update does not stamp last_used_at")
	}
}
