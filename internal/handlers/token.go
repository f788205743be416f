package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/internal/service"
)

type TokenHandler struct {
	svc service.TokenServicer
}

func NewTokenHandler(svc service.TokenServicer) (*TokenHandler, error) {
	return &TokenHandler{
		svc: svc,
	}, nil
}

// Approve godoc
//
//	@Summary		Approve escrow allowance
//	@Description	Authorize the escrow vault to pull up to the given amount from the caller
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			approval	body		ApproveRequest	true	"Allowance amount"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Router			/tokens/approve [post]
func (h *TokenHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req model.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidJson.Error(), "Invalid JSON format", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "Input validation failed", validationDetails(err))
		return
	}

	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	if err := h.svc.Approve(r.Context(), claims.UserID, req.Amount); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidParams.Error(), err.Error(), nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Allowance approved successfully", "")
}

// Balance godoc
//
//	@Summary		Get token balance
//	@Description	Retrieve the caller's token balance and current vault allowance
//	@Tags			Tokens
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/tokens/balance [get]
func (h *TokenHandler) Balance(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	resp := map[string]any{
		"balance":   h.svc.Balance(r.Context(), claims.UserID),
		"allowance": h.svc.Allowance(r.Context(), claims.UserID),
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Balance fetched successfully", resp)
}

// Faucet godoc
//
//	@Summary		Mint development tokens
//	@Description	Credit the caller's balance; development convenience only
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			faucet	body		FaucetRequest	true	"Mint amount"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Router			/tokens/faucet [post]
func (h *TokenHandler) Faucet(w http.ResponseWriter, r *http.Request) {
	var req model.FaucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidJson.Error(), "Invalid JSON format", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "Input validation failed", validationDetails(err))
		return
	}

	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	if err := h.svc.Faucet(r.Context(), claims.UserID, req.Amount); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidParams.Error(), err.Error(), nil)
		return
	}

	resp := map[string]any{
		"balance": h.svc.Balance(r.Context(), claims.UserID),
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Tokens minted successfully", resp)
}
