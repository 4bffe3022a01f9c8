package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mealbook/entity"
	"mealbook/lib/sl"
)

// Decision is the caller-visible outcome of one redemption attempt.
type Decision int

const (
	Deny Decision = iota
	Allow
)

var (
	// ErrMissingCode means the attempt carried no invite code at all.
	// Reported before any store interaction.
	ErrMissingCode = errors.New("missing invite code")

	// ErrConditionFailed is returned by Store implementations when any
	// precondition of the redemption transaction evaluated false at
	// commit time. The store does not report which one.
	ErrConditionFailed = errors.New("redemption condition failed")
)

// DenyMessage is the single user-facing denial text. One message covers
// every policy failure so callers cannot probe what state a code is in.
const DenyMessage = "Invalid, expired, revoked, or exhausted invite code"

// Attempt is one redemption submitted to the store. Record carries a key
// deterministic over (code, at, email), so resubmitting the same logical
// attempt can never produce a second audit entry.
type Attempt struct {
	Code     string
	Identity entity.Identity
	At       time.Time
	Record   *entity.UsageRecord
}

// Store applies the redemption transaction: a conditional consume of the
// code record guarded by the full policy predicate (existence, not
// revoked, not expired, remaining capacity) evaluated against the
// store's current value, plus an insert of the usage record guarded on
// key absence. Both apply atomically or neither does. A failed guard
// surfaces as ErrConditionFailed; anything else is a backend fault.
type Store interface {
	Redeem(ctx context.Context, attempt *Attempt) error
}

// Service decides whether an invite code may be consumed. It keeps no
// state between calls: the decision is encoded entirely in store-side
// preconditions, so concurrent attempts serialize in the store, not here.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With(sl.Module("invite")),
	}
}

// Redeem consumes one use of code on behalf of identity, at the supplied
// wall-clock time. Outcomes:
//
//   - (Allow, nil): the transaction committed; the use is recorded.
//   - (Deny, nil): a precondition failed. Final for this attempt; a new
//     attempt with the same code may still be denied or allowed depending
//     on the code's state.
//   - (Deny, ErrMissingCode): no code supplied; the store was not called.
//   - (Deny, err): the store failed before reporting a verdict. The
//     transaction may or may not have committed, so this must be surfaced
//     as retryable, never as an invalid code. A retry that raced its own
//     earlier commit is denied by the preconditions, which keeps visible
//     successes per registration at most one.
//
// No retries happen here; retry policy belongs to the caller.
func (s *Service) Redeem(ctx context.Context, code string, identity entity.Identity, now time.Time) (Decision, error) {
	if code == "" {
		return Deny, ErrMissingCode
	}

	attempt := &Attempt{
		Code:     code,
		Identity: identity,
		At:       now,
		Record:   entity.NewUsageRecord(code, identity.Email, now),
	}

	err := s.store.Redeem(ctx, attempt)
	if err == nil {
		s.log.With(
			sl.Secret("code", code),
			slog.String("email", identity.Email),
		).Info("invite redeemed")
		return Allow, nil
	}
	if errors.Is(err, ErrConditionFailed) {
		s.log.With(sl.Secret("code", code)).Debug("redemption denied")
		return Deny, nil
	}
	return Deny, fmt.Errorf("invite store: %w", err)
}
