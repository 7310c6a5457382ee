package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/sofiamendes/wanderstay-backend/internal/auth"
	"github.com/sofiamendes/wanderstay-backend/internal/users"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
)

type stubRegisterService struct {
	err error
	got *auth.RegisterRequest
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	s.got = &req
	return s.err
}

func TestAuthRegisterSuccess(t *testing.T) {
	loginResp := &auth.LoginResponse{
		AccessToken:  "new-token",
		RefreshToken: "refresh",
		User: &users.UserDTO{
			ID:    uuid.New(),
			Email: "alice@example.com",
		},
	}
	reg := &stubRegisterService{}
	handler := AuthRegister(reg, &stubAuthService{resp: loginResp}, testLogger())

	body := []byte(`{
		"first_name": "Alice",
		"last_name": "Traveler",
		"email": "alice@example.com",
		"password": "Secret123!",
		"accept_tos": true
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-WS-Token"); got != "new-token" {
		t.Fatalf("expected x-ws-token header got %q", got)
	}
	if reg.got == nil || reg.got.Email != "alice@example.com" {
		t.Fatalf("expected register request forwarded, got %+v", reg.got)
	}

	var envelope struct {
		Data struct {
			User *users.UserDTO `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != "alice@example.com" {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
}

func TestAuthRegisterInvalidPayload(t *testing.T) {
	handler := AuthRegister(&stubRegisterService{}, &stubAuthService{}, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(`{"email":"not-an-email"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := AuthRegister(reg, &stubAuthService{}, testLogger())

	body := []byte(`{
		"first_name": "Alice",
		"last_name": "Traveler",
		"email": "alice@example.com",
		"password": "Secret123!",
		"accept_tos": true
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
