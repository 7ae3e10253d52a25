package api

import (
	"log/slog"
	"net/http"

	"pointsbot/internal/rewards"
)

type KeysHandler struct {
	rewards *rewards.Service
}

func NewKeysHandler(rewardsService *rewards.Service) *KeysHandler {
	return &KeysHandler{rewards: rewardsService}
}

type KeysResponse struct {
	Key1Link string `json:"key1Link,omitempty"`
	Key2Link string `json:"key2Link,omitempty"`
}

// GET /api/v1/keys
// Read path exposes the display links only. The raw key values never leave
// the server; they are compared internally on claim.
func (h *KeysHandler) GetLinks(w http.ResponseWriter, r *http.Request) {
	pair, err := h.rewards.CurrentKeys()
	if err != nil {
		if writeOutcomeError(w, err) {
			return
		}
		slog.Error("error loading current keys", "error", err)
		internalError(w)
		return
	}

	resp := KeysResponse{}
	if pair.Key1Link != nil {
		resp.Key1Link = *pair.Key1Link
	}
	if pair.Key2Link != nil {
		resp.Key2Link = *pair.Key2Link
	}

	writeJSON(w, http.StatusOK, resp)
}
