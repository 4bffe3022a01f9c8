package entity

import (
	"testing"
	"time"
)

func TestUsageRecordKeyDeterministic(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 30, 45, 123456789, time.UTC)

	a := NewUsageRecord("GOLDEN", "user@example.com", at)
	b := NewUsageRecord("GOLDEN", "user@example.com", at)
	if a.Id != b.Id {
		t.Errorf("same attempt produced different keys: %q vs %q", a.Id, b.Id)
	}
	if a.Id != "GOLDEN#2024-06-01T12:30:45Z#user@example.com" {
		t.Errorf("key = %q", a.Id)
	}

	// Sub-second jitter between build and retry must not change the key.
	c := NewUsageRecord("GOLDEN", "user@example.com", at.Add(500*time.Millisecond))
	if a.Id != c.Id {
		t.Errorf("sub-second jitter changed the key: %q vs %q", a.Id, c.Id)
	}

	d := NewUsageRecord("GOLDEN", "other@example.com", at)
	if a.Id == d.Id {
		t.Error("distinct identities collided on the same key")
	}
	e := NewUsageRecord("GOLDEN", "user@example.com", at.Add(time.Second))
	if a.Id == e.Id {
		t.Error("distinct seconds collided on the same key")
	}
}

func TestInviteCodeRemaining(t *testing.T) {
	tests := []struct {
		name string
		code InviteCode
		want int
	}{
		{"unlimited", InviteCode{Policy: PolicyUnlimited, Uses: 99}, -1},
		{"bounded fresh", InviteCode{Policy: PolicyBounded, MaxUses: 5}, 5},
		{"bounded partial", InviteCode{Policy: PolicyBounded, MaxUses: 5, Uses: 4}, 1},
		{"bounded exhausted", InviteCode{Policy: PolicyBounded, MaxUses: 5, Uses: 5}, 0},
		{"single fresh", InviteCode{Policy: PolicySingle}, 1},
		{"single consumed", InviteCode{Policy: PolicySingle, Uses: 1}, 0},
		{"unknown policy", InviteCode{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}
