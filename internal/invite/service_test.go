package invite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mealbook/entity"
)

// memStore applies the redemption transaction against in-memory state
// under one lock, which gives it the linearizable conditional commit the
// service contract requires of real backends. Both items apply or
// neither does.
type memStore struct {
	mu    sync.Mutex
	codes map[string]*entity.InviteCode
	usage map[string]*entity.UsageRecord
	calls int
	fail  error
}

func newMemStore(codes ...*entity.InviteCode) *memStore {
	s := &memStore{
		codes: make(map[string]*entity.InviteCode),
		usage: make(map[string]*entity.UsageRecord),
	}
	for _, c := range codes {
		s.codes[c.Code] = c
	}
	return s
}

func (s *memStore) Redeem(_ context.Context, attempt *Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return s.fail
	}
	code := s.codes[attempt.Code]
	if Permits(code, attempt.At) != ReasonOK {
		return ErrConditionFailed
	}
	if _, exists := s.usage[attempt.Record.Id]; exists {
		return ErrConditionFailed
	}
	code.Uses++
	at := attempt.At
	code.LastUsedAt = &at
	code.LastUsedBy = attempt.Identity.Email
	s.usage[attempt.Record.Id] = attempt.Record
	return nil
}

func testService(store Store) *Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSingleUseRace(t *testing.T) {
	const attempts = 32
	store := newMemStore(&entity.InviteCode{Code: "GOLDEN", Policy: entity.PolicySingle})
	service := testService(store)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	results := make(chan Decision, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := entity.Identity{Email: fmt.Sprintf("user%d@example.com", n)}
			decision, err := service.Redeem(context.Background(), "GOLDEN", identity, now)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- decision
		}(i)
	}
	wg.Wait()
	close(results)

	allows := 0
	for decision := range results {
		if decision == Allow {
			allows++
		}
	}
	if allows != 1 {
		t.Errorf("single-use code allowed %d redemptions, want 1", allows)
	}
	if got := store.codes["GOLDEN"].Uses; got != 1 {
		t.Errorf("uses = %d, want 1", got)
	}
}

func TestBoundedExactCount(t *testing.T) {
	const max, attempts = 5, 20
	store := newMemStore(&entity.InviteCode{Code: "TEAM", Policy: entity.PolicyBounded, MaxUses: max})
	service := testService(store)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	results := make(chan Decision, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := entity.Identity{Email: fmt.Sprintf("user%d@example.com", n)}
			decision, err := service.Redeem(context.Background(), "TEAM", identity, now)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- decision
		}(i)
	}
	wg.Wait()
	close(results)

	allows := 0
	for decision := range results {
		if decision == Allow {
			allows++
		}
	}
	if allows != max {
		t.Errorf("bounded code allowed %d redemptions, want %d", allows, max)
	}
	if got := store.codes["TEAM"].Uses; got != max {
		t.Errorf("uses = %d, want %d", got, max)
	}
}

func TestUnlimitedAlwaysAllows(t *testing.T) {
	store := newMemStore(&entity.InviteCode{Code: "OPEN", Policy: entity.PolicyUnlimited})
	service := testService(store)
	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		identity := entity.Identity{Email: fmt.Sprintf("user%d@example.com", i)}
		decision, err := service.Redeem(context.Background(), "OPEN", identity, now)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i, err)
		}
		if decision != Allow {
			t.Fatalf("attempt %d denied on unlimited code", i)
		}
	}
	if got := store.codes["OPEN"].Uses; got != 10 {
		t.Errorf("uses = %d, want 10", got)
	}
}

func TestRevokedDeniesDespiteCapacity(t *testing.T) {
	store := newMemStore(&entity.InviteCode{
		Code: "PULLED", Policy: entity.PolicyBounded, MaxUses: 10, Uses: 0, Revoked: true,
	})
	service := testService(store)

	decision, err := service.Redeem(context.Background(), "PULLED",
		entity.Identity{Email: "user@example.com"}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != Deny {
		t.Error("revoked code was allowed")
	}
	if got := store.codes["PULLED"].Uses; got != 0 {
		t.Errorf("uses = %d, want 0", got)
	}
}

func TestExpiredUnlimitedDenied(t *testing.T) {
	expiry := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	store := newMemStore(&entity.InviteCode{Code: "OLD2023", Policy: entity.PolicyUnlimited, ExpiresAt: &expiry})
	service := testService(store)

	decision, err := service.Redeem(context.Background(), "OLD2023",
		entity.Identity{Email: "user@example.com"}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != Deny {
		t.Error("expired code was allowed")
	}
}

func TestLastSlotThenExhausted(t *testing.T) {
	store := newMemStore(&entity.InviteCode{Code: "WELCOME5", Policy: entity.PolicyBounded, MaxUses: 5, Uses: 4})
	service := testService(store)
	now := time.Now().UTC()

	decision, err := service.Redeem(context.Background(), "WELCOME5",
		entity.Identity{Email: "fifth@example.com"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != Allow {
		t.Fatal("last remaining slot was denied")
	}
	code := store.codes["WELCOME5"]
	if code.Uses != 5 {
		t.Errorf("uses = %d, want 5", code.Uses)
	}
	if code.LastUsedBy != "fifth@example.com" {
		t.Errorf("last_used_by = %q, want fifth@example.com", code.LastUsedBy)
	}
	if code.LastUsedAt == nil || !code.LastUsedAt.Equal(now) {
		t.Errorf("last_used_at = %v, want %v", code.LastUsedAt, now)
	}

	decision, err = service.Redeem(context.Background(), "WELCOME5",
		entity.Identity{Email: "sixth@example.com"}, now.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != Deny {
		t.Error("exhausted code was allowed")
	}
}

func TestMissingCodeSkipsStore(t *testing.T) {
	store := newMemStore()
	service := testService(store)

	decision, err := service.Redeem(context.Background(), "",
		entity.Identity{Email: "user@example.com"}, time.Now().UTC())
	if !errors.Is(err, ErrMissingCode) {
		t.Fatalf("err = %v, want ErrMissingCode", err)
	}
	if decision == Allow {
		t.Error("missing code was allowed")
	}
	if store.calls != 0 {
		t.Errorf("store was called %d times, want 0", store.calls)
	}
}

func TestStoreFaultIsNotDenial(t *testing.T) {
	store := newMemStore(&entity.InviteCode{Code: "GOLDEN", Policy: entity.PolicySingle})
	store.fail = errors.New("connection reset")
	service := testService(store)

	decision, err := service.Redeem(context.Background(), "GOLDEN",
		entity.Identity{Email: "user@example.com"}, time.Now().UTC())
	if err == nil {
		t.Fatal("backend fault was swallowed")
	}
	if errors.Is(err, ErrMissingCode) || errors.Is(err, ErrConditionFailed) {
		t.Errorf("backend fault misclassified: %v", err)
	}
	if decision == Allow {
		t.Error("backend fault produced Allow")
	}
}

// A retry of the identical logical attempt, e.g. after an ambiguous
// timeout, must never record a second usage: even on a code with
// capacity to spare, the usage record's deterministic key collides with
// the one written by the first commit.
func TestIdenticalRetryRecordsOneUsage(t *testing.T) {
	store := newMemStore(&entity.InviteCode{Code: "OPEN", Policy: entity.PolicyUnlimited})
	service := testService(store)
	identity := entity.Identity{Email: "user@example.com"}
	now := time.Now().UTC()

	decision, err := service.Redeem(context.Background(), "OPEN", identity, now)
	if err != nil || decision != Allow {
		t.Fatalf("first attempt: decision=%v err=%v", decision, err)
	}

	decision, err = service.Redeem(context.Background(), "OPEN", identity, now)
	if err != nil {
		t.Fatalf("retry: unexpected error: %v", err)
	}
	if decision != Deny {
		t.Error("identical retry was allowed a second time")
	}
	if len(store.usage) != 1 {
		t.Errorf("usage records = %d, want 1", len(store.usage))
	}
	if got := store.codes["OPEN"].Uses; got != 1 {
		t.Errorf("uses = %d, want 1", got)
	}
}
