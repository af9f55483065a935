package handlers

import (
	"net/http"

	"github.com/courtside/badminton-league/services"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetMyWalletHandler returns the authenticated user's balance and ledger.
func (h *WalletHandler) GetMyWalletHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := getActor(r)
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	wallet, err := h.walletService.GetWallet(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"wallet": wallet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
