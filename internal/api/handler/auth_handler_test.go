package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/wyclub/member-system/internal/core/domain"
	"github.com/wyclub/member-system/internal/core/ports"
)

type stubAccounts struct {
	signUpSession *domain.Session
	signUpErr     error
	signInToken   string
	signInState   domain.AuthState
	signInErr     error
	signOutUserID string
	signOutErr    error
	resendEmail   string
	resendErr     error
}

func (s *stubAccounts) SignIn(_ context.Context, email, password string) (string, domain.AuthState, error) {
	return s.signInToken, s.signInState, s.signInErr
}

func (s *stubAccounts) SignUp(_ context.Context, email, password, name string) (*domain.Session, error) {
	return s.signUpSession, s.signUpErr
}

func (s *stubAccounts) SignOut(_ context.Context, userID string) error {
	s.signOutUserID = userID
	return s.signOutErr
}

func (s *stubAccounts) UpdateProfile(_ context.Context, _ *domain.Session, _ ports.UpdateProfileInput) (domain.AuthState, error) {
	return domain.Unauthenticated(), nil
}

func (s *stubAccounts) RefreshUser(_ context.Context, _ *domain.Session) (domain.AuthState, error) {
	return domain.Unauthenticated(), nil
}

func (s *stubAccounts) ResendConfirmation(_ context.Context, email string) error {
	s.resendEmail = email
	return s.resendErr
}

func jsonContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignUp_Created(t *testing.T) {
	accounts := &stubAccounts{
		signUpSession: &domain.Session{UserID: "usr_1", Email: "new@club.test", EmailConfirmed: false},
	}
	h := NewAuthHandler(accounts)

	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/signup",
		`{"email":"new@club.test","password":"longenough1","name":"New Member"}`)

	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp signUpResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "usr_1" || !resp.ConfirmationRequired {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSignUp_ShortPasswordRejected(t *testing.T) {
	h := NewAuthHandler(&stubAccounts{})

	c, _ := jsonContext(t, http.MethodPost, "/v1/auth/signup",
		`{"email":"new@club.test","password":"short"}`)

	err := h.SignUp(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestSignIn_ReturnsTokenAndState(t *testing.T) {
	state := domain.StateFor(&domain.Profile{UserID: "usr_1", Email: "a@b.test", Role: domain.RoleAdmin}, false)
	h := NewAuthHandler(&stubAccounts{signInToken: "tok123", signInState: state})

	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/signin",
		`{"email":"a@b.test","password":"secret"}`)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp signInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "tok123" || !resp.State.IsAdmin {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSignIn_UnconfirmedPropagated(t *testing.T) {
	h := NewAuthHandler(&stubAccounts{signInErr: domain.ErrEmailNotConfirmed})

	c, _ := jsonContext(t, http.MethodPost, "/v1/auth/signin",
		`{"email":"a@b.test","password":"secret"}`)

	err := h.SignIn(c)
	if !errors.Is(err, domain.ErrEmailNotConfirmed) {
		t.Fatalf("expected ErrEmailNotConfirmed, got %v", err)
	}
}

func TestSignOut_UsesSessionFromContext(t *testing.T) {
	accounts := &stubAccounts{}
	h := NewAuthHandler(accounts)

	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/signout", "")
	c.Set("session", &domain.Session{UserID: "usr_9", Email: "a@b.test"})

	if err := h.SignOut(c); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if accounts.signOutUserID != "usr_9" {
		t.Fatalf("expected sign-out for usr_9, got %q", accounts.signOutUserID)
	}
}

func TestSignOut_MissingSession(t *testing.T) {
	h := NewAuthHandler(&stubAccounts{})

	c, _ := jsonContext(t, http.MethodPost, "/v1/auth/signout", "")

	err := h.SignOut(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestResend_ThrottledPropagated(t *testing.T) {
	h := NewAuthHandler(&stubAccounts{resendErr: domain.ErrResendThrottled})

	c, _ := jsonContext(t, http.MethodPost, "/v1/auth/resend",
		`{"email":"a@b.test"}`)

	err := h.Resend(c)
	if !errors.Is(err, domain.ErrResendThrottled) {
		t.Fatalf("expected ErrResendThrottled, got %v", err)
	}
}

func TestResend_OK(t *testing.T) {
	accounts := &stubAccounts{}
	h := NewAuthHandler(accounts)

	c, rec := jsonContext(t, http.MethodPost, "/v1/auth/resend",
		`{"email":"Member@Club.Test"}`)

	if err := h.Resend(c); err != nil {
		t.Fatalf("Resend returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if accounts.resendEmail != "Member@Club.Test" {
		t.Fatalf("expected raw address forwarded, got %q", accounts.resendEmail)
	}
}
