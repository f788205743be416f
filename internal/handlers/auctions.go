package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/auction"
	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/internal/service"
	"github.com/coursehive/course-auction/internal/token"
)

const auctionParamKey string = "auctionId"

type AuctionHandler struct {
	svc service.AuctionServicer
}

func NewAuctionHandler(svc service.AuctionServicer) (*AuctionHandler, error) {
	return &AuctionHandler{
		svc: svc,
	}, nil
}

// respondAuctionError maps settlement engine errors onto HTTP status and
// machine readable codes. Unrecognized errors are reported as internal.
func respondAuctionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auction.ErrInvalidParameters):
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidParams.Error(), err.Error(), nil)
	case errors.Is(err, auction.ErrDuplicateActiveAuction):
		RespondErrorJSON(w, r, http.StatusConflict, ErrDuplicateAuction.Error(), err.Error(), nil)
	case errors.Is(err, auction.ErrAuctionNotFound):
		RespondErrorJSON(w, r, http.StatusNotFound, ErrAuctionNotFound.Error(), "Auction not found", nil)
	case errors.Is(err, auction.ErrAuctionNotOpen):
		RespondErrorJSON(w, r, http.StatusConflict, ErrAuctionNotOpen.Error(), err.Error(), nil)
	case errors.Is(err, auction.ErrBidTooLow):
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrBidLow.Error(), err.Error(), nil)
	case errors.Is(err, auction.ErrAuctionNotEnded):
		RespondErrorJSON(w, r, http.StatusConflict, ErrAuctionNotEnded.Error(), err.Error(), nil)
	case errors.Is(err, auction.ErrSettlementFailed):
		RespondErrorJSON(w, r, http.StatusBadGateway, ErrSettlement.Error(), err.Error(), nil)
	case errors.Is(err, auction.ErrNothingToWithdraw):
		RespondErrorJSON(w, r, http.StatusConflict, ErrNothingWithdraw.Error(), err.Error(), nil)
	case errors.Is(err, auction.ErrAlreadyPaidOut):
		RespondErrorJSON(w, r, http.StatusConflict, ErrAlreadyPaidOut.Error(), err.Error(), nil)
	case errors.Is(err, token.ErrInsufficientFunds):
		RespondErrorJSON(w, r, http.StatusPaymentRequired, ErrFundsLow.Error(), err.Error(), nil)
	case errors.Is(err, token.ErrInsufficientAllowance):
		RespondErrorJSON(w, r, http.StatusPaymentRequired, ErrAllowanceLow.Error(), err.Error(), nil)
	default:
		slog.Error("Internal Error", "error", err.Error())
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Something went wrong", nil)
	}
}

func auctionIDParam(r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, auctionParamKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CreateAuction godoc
//
//	@Summary		Create a new Auction
//	@Description	Open an auction for a course with reserve price and bidding window
//	@Tags			Auctions
//	@Accept			json
//	@Produce		json
//	@Param			auction	body		CreateAuctionRequest	true	"Auction details"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Failure		409		{object}	map[string]any
//	@Router			/auctions [post]
func (h *AuctionHandler) CreateAuction(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAuctionRequest

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

	a, err := h.svc.CreateAuction(r.Context(), claims.UserID, req)
	if err != nil {
		respondAuctionError(w, r, err)
		return
	}

	RespondSuccessJSON(w, r, http.StatusCreated, "Auction created successfully", a)
}

// GetAuction godoc
//
//	@Summary		Get Auction by ID
//	@Description	Retrieve a snapshot of a specific auction
//	@Tags			Auctions
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Success		200			{object}	map[string]any
//	@Failure		404			{object}	map[string]any
//	@Router			/auctions/{auctionId} [get]
func (h *AuctionHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(r)
	if !ok {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "A valid auction ID is required", nil)
		return
	}

	a, err := h.svc.GetAuction(r.Context(), auctionID)
	if err != nil {
		respondAuctionError(w, r, err)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Auction fetched successfully", a)
}

// ListAuctions godoc
//
//	@Summary		List Auctions
//	@Description	Retrieve snapshots of all auctions, newest first
//	@Tags			Auctions
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/auctions [get]
func (h *AuctionHandler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	auctions := h.svc.ListAuctions(r.Context())
	if auctions == nil {
		auctions = []*auction.Auction{}
	}

	resp := map[string]any{
		"auctions": auctions,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Auctions fetched successfully", resp)
}

// PlaceBid godoc
//
//	@Summary		Place a Bid on an Auction
//	@Description	Escrow the bid amount and record the bid if it beats the current high bid
//	@Tags			Auctions
//	@Accept			json
//	@Produce		json
//	@Param			auctionId	path		string			true	"Auction ID"
//	@Param			bid			body		PlaceBidRequest	true	"Bid details"
//	@Success		200			{object}	map[string]any
//	@Failure		400			{object}	map[string]any
//	@Failure		402			{object}	map[string]any
//	@Failure		409			{object}	map[string]any
//	@Router			/auctions/{auctionId}/bids [post]
func (h *AuctionHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(r)
	if !ok {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "A valid auction ID is required", nil)
		return
	}

	var req model.PlaceBidRequest
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

	hb, err := h.svc.PlaceBid(r.Context(), auctionID, claims.UserID, req.Amount)
	if err != nil {
		respondAuctionError(w, r, err)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Bid placed successfully", hb)
}

// FinalizeAuction godoc
//
//	@Summary		Finalize an Auction
//	@Description	Drive an ended auction to settled or cancelled; safe to retry
//	@Tags			Auctions
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Success		200			{object}	map[string]any
//	@Failure		409			{object}	map[string]any
//	@Failure		502			{object}	map[string]any
//	@Router			/auctions/{auctionId}/finalize [post]
func (h *AuctionHandler) FinalizeAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(r)
	if !ok {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "A valid auction ID is required", nil)
		return
	}

	out, err := h.svc.FinalizeAuction(r.Context(), auctionID)
	if err != nil {
		respondAuctionError(w, r, err)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Auction finalized successfully", out)
}

// Withdraw godoc
//
//	@Summary		Withdraw refundable escrow
//	@Description	Return the caller's refundable escrow for the auction
//	@Tags			Auctions
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Success		200			{object}	map[string]any
//	@Failure		409			{object}	map[string]any
//	@Router			/auctions/{auctionId}/withdraw [post]
func (h *AuctionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(r)
	if !ok {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "A valid auction ID is required", nil)
		return
	}

	claims := GetUserClaims(r.Context())
	if claims == nil {
		RespondErrorJSON(w, r, http.StatusUnauthorized, ErrAuthFailed.Error(), "user claims not found in context", nil)
		return
	}

	amount, err := h.svc.Withdraw(r.Context(), auctionID, claims.UserID)
	if err != nil {
		respondAuctionError(w, r, err)
		return
	}

	resp := map[string]any{
		"withdrawn": amount,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Escrow withdrawn successfully", resp)
}

// BidHistory godoc
//
//	@Summary		Get Bid History
//	@Description	Retrieve the journaled bid attempts for an auction
//	@Tags			Auctions
//	@Produce		json
//	@Param			auctionId	path		string	true	"Auction ID"
//	@Success		200			{object}	map[string]any
//	@Failure		404			{object}	map[string]any
//	@Router			/auctions/{auctionId}/bids [get]
func (h *AuctionHandler) BidHistory(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(r)
	if !ok {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "A valid auction ID is required", nil)
		return
	}

	bids, err := h.svc.BidHistory(r.Context(), auctionID)
	if err != nil {
		if errors.Is(err, auction.ErrAuctionNotFound) {
			RespondErrorJSON(w, r, http.StatusNotFound, ErrAuctionNotFound.Error(), "Auction not found", nil)
			return
		}
		slog.Error("[DB] failed to fetch bid history", "auction_id", auctionID, "error", err)
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrDb.Error(), "failed to retrieve bid history", nil)
		return
	}

	resp := map[string]any{
		"bids": bids,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Bid history fetched successfully", resp)
}
