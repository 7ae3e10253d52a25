package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pointsbot/internal/auth"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("0123456789abcdef0123456789abcdef", time.Hour)
}

func TestIssueTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestRewards(t)
	handler := NewAdminHandler(svc, newTestJWTService(), "correct-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"secret":"wrong"}`))
	rr := httptest.NewRecorder()

	handler.IssueToken(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestIssueTokenThenPassAdminAuth(t *testing.T) {
	svc := newTestRewards(t)
	jwtService := newTestJWTService()
	handler := NewAdminHandler(svc, jwtService, "correct-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"secret":"correct-secret"}`))
	rr := httptest.NewRecorder()

	handler.IssueToken(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp AdminTokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	middleware := NewAdminAuthMiddleware(jwtService)
	protected := middleware.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	authed := httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys/rotate", nil)
	authed.Header.Set("Authorization", "Bearer "+resp.Token)
	authedRR := httptest.NewRecorder()
	protected.ServeHTTP(authedRR, authed)

	if authedRR.Code != http.StatusNoContent {
		t.Fatalf("authed status = %d, want %d", authedRR.Code, http.StatusNoContent)
	}

	anon := httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys/rotate", nil)
	anonRR := httptest.NewRecorder()
	protected.ServeHTTP(anonRR, anon)

	if anonRR.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want %d", anonRR.Code, http.StatusUnauthorized)
	}
}

func TestRotateThenReadLinksFlow(t *testing.T) {
	svc := newTestRewards(t)
	adminHandler := NewAdminHandler(svc, newTestJWTService(), "correct-secret")
	keysHandler := NewKeysHandler(svc)

	// Before rotation the public read path reports keys not ready.
	notReady := httptest.NewRecorder()
	keysHandler.GetLinks(notReady, httptest.NewRequest(http.MethodGet, "/api/v1/keys", nil))
	if notReady.Code != http.StatusServiceUnavailable {
		t.Fatalf("pre-rotation status = %d, want %d", notReady.Code, http.StatusServiceUnavailable)
	}

	rotateRR := httptest.NewRecorder()
	adminHandler.RotateKeys(rotateRR, httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys/rotate", nil))
	if rotateRR.Code != http.StatusOK {
		t.Fatalf("rotate status = %d, want %d, body=%q", rotateRR.Code, http.StatusOK, rotateRR.Body.String())
	}

	var rotated RotateResponse
	if err := json.Unmarshal(rotateRR.Body.Bytes(), &rotated); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	linkRR := httptest.NewRecorder()
	adminHandler.SetKeyLink(linkRR, httptest.NewRequest(http.MethodPut, "/api/v1/admin/keys/link",
		strings.NewReader(`{"key":"key1","url":"https://example.com/k1"}`)))
	if linkRR.Code != http.StatusOK {
		t.Fatalf("set link status = %d, want %d, body=%q", linkRR.Code, http.StatusOK, linkRR.Body.String())
	}

	readRR := httptest.NewRecorder()
	keysHandler.GetLinks(readRR, httptest.NewRequest(http.MethodGet, "/api/v1/keys", nil))
	if readRR.Code != http.StatusOK {
		t.Fatalf("read status = %d, want %d", readRR.Code, http.StatusOK)
	}

	// Raw keys must never appear on the public read path.
	body := readRR.Body.String()
	if strings.Contains(body, rotated.Key1) || strings.Contains(body, rotated.Key2) {
		t.Fatalf("raw key leaked through public read path: %q", body)
	}

	var links KeysResponse
	if err := json.Unmarshal(readRR.Body.Bytes(), &links); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if links.Key1Link != "https://example.com/k1" {
		t.Fatalf("key1 link = %q, want %q", links.Key1Link, "https://example.com/k1")
	}
}

func TestSetKeyLinkValidatesPayload(t *testing.T) {
	svc := newTestRewards(t)
	handler := NewAdminHandler(svc, newTestJWTService(), "correct-secret")

	rr := httptest.NewRecorder()
	handler.SetKeyLink(rr, httptest.NewRequest(http.MethodPut, "/api/v1/admin/keys/link",
		strings.NewReader(`{"key":"key3","url":"https://example.com"}`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
