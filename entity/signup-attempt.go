package entity

import (
	"net/http"
	"strings"

	"mealbook/lib/validate"
)

// SignupAttempt is the payload delivered by the identity platform's
// pre-registration hook. InviteCode is deliberately not validator-required:
// its absence is a distinct domain outcome, not a malformed request.
type SignupAttempt struct {
	Email      string `json:"email" validate:"required,email"`
	Subject    string `json:"subject" validate:"omitempty"`
	InviteCode string `json:"invite_code" validate:"omitempty"`
}

func (s *SignupAttempt) Bind(_ *http.Request) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.InviteCode = strings.TrimSpace(s.InviteCode)
	return validate.Struct(s)
}

// Identity identifies the registering caller for audit purposes.
type Identity struct {
	Email   string
	Subject string
}

func (s *SignupAttempt) Identity() Identity {
	return Identity{Email: s.Email, Subject: s.Subject}
}
