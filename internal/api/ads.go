package api

import (
	"log/slog"
	"net/http"

	"pointsbot/internal/rewards"
)

type AdsHandler struct {
	rewards    *rewards.Service
	ipResolver *ClientIPResolver
}

func NewAdsHandler(rewardsService *rewards.Service, ipResolver *ClientIPResolver) *AdsHandler {
	return &AdsHandler{
		rewards:    rewardsService,
		ipResolver: ipResolver,
	}
}

type VerifyResponse struct {
	OK          bool   `json:"ok"`
	Points      int64  `json:"points"`
	Message     string `json:"message"`
	ViewOrdinal int    `json:"viewOrdinal"`

	// Colluding is advisory: the reward is still granted, downstream
	// policy decides what to do with flagged IPs.
	Colluding bool `json:"colluding"`
}

// GET /api/v1/ads/verify?token=...
// The ad network redirects the viewer here once the ad completes; the token
// in the link is the single-use proof.
func (h *AdsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		badRequest(w, "token is required")
		return
	}

	ip := h.ipResolver.Resolve(r)
	userAgent := r.UserAgent()

	result, err := h.rewards.VerifyAdToken(token, ip, userAgent)
	if err != nil {
		if writeOutcomeError(w, err) {
			return
		}
		slog.Error("error verifying ad token", "error", err)
		internalError(w)
		return
	}

	if result.ColludingIP {
		slog.Warn("collusion signal raised on ad verify", "ip", ip)
	}

	writeJSON(w, http.StatusOK, VerifyResponse{
		OK:          true,
		Points:      result.Points,
		Message:     result.Message,
		ViewOrdinal: result.ViewOrdinal,
		Colluding:   result.ColludingIP,
	})
}
