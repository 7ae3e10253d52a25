package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"pointsbot/internal/auth"
	"pointsbot/internal/rewards"
)

type AdminHandler struct {
	rewards     *rewards.Service
	jwtService  *auth.JWTService
	adminSecret string
}

func NewAdminHandler(rewardsService *rewards.Service, jwtService *auth.JWTService, adminSecret string) *AdminHandler {
	return &AdminHandler{
		rewards:     rewardsService,
		jwtService:  jwtService,
		adminSecret: adminSecret,
	}
}

type AdminTokenRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type AdminTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// POST /api/v1/auth/token
// Exchanges the deploy-time admin secret for a short-lived bearer token.
func (h *AdminHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req AdminTokenRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.adminSecret)) != 1 {
		unauthorized(w, "Invalid admin secret")
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAdminToken()
	if err != nil {
		slog.Error("error generating admin token", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, AdminTokenResponse{Token: token, ExpiresAt: expiresAt})
}

type RotateResponse struct {
	Key1      string    `json:"key1"`
	Key2      string    `json:"key2"`
	CreatedAt time.Time `json:"createdAt"`
}

// POST /api/v1/admin/keys/rotate
// Generates a fresh pair and resets everyone's claim state. The raw keys are
// returned here once so the operator can distribute them; the public read
// path never shows them.
func (h *AdminHandler) RotateKeys(w http.ResponseWriter, r *http.Request) {
	pair, err := h.rewards.RotateKeys()
	if err != nil {
		slog.Error("error rotating daily keys", "error", err)
		internalError(w)
		return
	}

	slog.Info("daily keys rotated", "pair_id", pair.ID)

	writeJSON(w, http.StatusOK, RotateResponse{
		Key1:      pair.Key1,
		Key2:      pair.Key2,
		CreatedAt: pair.CreatedAt,
	})
}

type SetLinkRequest struct {
	Key string `json:"key" validate:"required,oneof=key1 key2"`
	URL string `json:"url" validate:"required,url"`
}

// PUT /api/v1/admin/keys/link
func (h *AdminHandler) SetKeyLink(w http.ResponseWriter, r *http.Request) {
	var req SetLinkRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.rewards.SetKeyLink(req.Key, req.URL); err != nil {
		if writeOutcomeError(w, err) {
			return
		}
		slog.Error("error setting key link", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type ReadinessResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// GET /api/v1/admin/keys/readiness
func (h *AdminHandler) KeysReadiness(w http.ResponseWriter, r *http.Request) {
	ready, reason := h.rewards.Readiness()
	writeJSON(w, http.StatusOK, ReadinessResponse{Ready: ready, Reason: reason})
}

type IssueTokenRequest struct {
	UserID int64 `json:"userId" validate:"required"`
}

type IssueTokenResponse struct {
	Token string `json:"token"`
}

// POST /api/v1/admin/tokens
// Issues an ad token on a user's behalf (support/testing path; the usual
// issuance goes through the bot).
func (h *AdminHandler) IssueAdToken(w http.ResponseWriter, r *http.Request) {
	var req IssueTokenRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	token, err := h.rewards.IssueAdToken(req.UserID, "")
	if err != nil {
		slog.Error("error issuing ad token", "error", err)
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, IssueTokenResponse{Token: token})
}
