package signup

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealbook/entity"
	"mealbook/internal/invite"
	"mealbook/lib/api/response"
)

type stubCore struct {
	decision invite.Decision
	err      error
	calls    int
	lastCode string
}

func (s *stubCore) RedeemInvite(_ context.Context, attempt *entity.SignupAttempt) (invite.Decision, error) {
	s.calls++
	s.lastCode = attempt.InviteCode
	return s.decision, s.err
}

func doRequest(t *testing.T, core Core, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	handler := PreSignup(slog.New(slog.NewTextHandler(io.Discard, nil)), core)

	req := httptest.NewRequest(http.MethodPost, "/hooks/pre-signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	var resp response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return rec, resp
}

func TestPreSignupAllow(t *testing.T) {
	core := &stubCore{decision: invite.Allow}
	rec, resp := doRequest(t, core, `{"email":"new@example.com","invite_code":"GOLDEN"}`)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if core.lastCode != "GOLDEN" {
		t.Errorf("redeemed code = %q, want GOLDEN", core.lastCode)
	}
}

func TestPreSignupDenyIsGeneric(t *testing.T) {
	core := &stubCore{decision: invite.Deny}
	rec, resp := doRequest(t, core, `{"email":"new@example.com","invite_code":"GOLDEN"}`)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if resp.Success {
		t.Error("success = true on denial")
	}
	if resp.StatusMessage != invite.DenyMessage {
		t.Errorf("message = %q, want the generic denial text", resp.StatusMessage)
	}
}

func TestPreSignupMissingCode(t *testing.T) {
	core := &stubCore{decision: invite.Deny, err: invite.ErrMissingCode}
	rec, resp := doRequest(t, core, `{"email":"new@example.com"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if resp.StatusMessage != "Missing invite code" {
		t.Errorf("message = %q", resp.StatusMessage)
	}
}

func TestPreSignupStoreFaultIsRetryable(t *testing.T) {
	core := &stubCore{decision: invite.Deny, err: context.DeadlineExceeded}
	rec, resp := doRequest(t, core, `{"email":"new@example.com","invite_code":"GOLDEN"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(strings.ToLower(resp.StatusMessage), "invalid") {
		t.Errorf("store fault reported as bad code: %q", resp.StatusMessage)
	}
}

func TestPreSignupRejectsBadEmail(t *testing.T) {
	core := &stubCore{decision: invite.Allow}
	rec, _ := doRequest(t, core, `{"email":"not-an-email","invite_code":"GOLDEN"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if core.calls != 0 {
		t.Errorf("core called %d times for malformed request, want 0", core.calls)
	}
}
