package auction

import "errors"

var (
	ErrInvalidParameters      = errors.New("invalid auction parameters")
	ErrDuplicateActiveAuction = errors.New("an open auction already exists for this course")
	ErrAuctionNotFound        = errors.New("auction not found")
	ErrAuctionNotOpen         = errors.New("auction is not open for bidding")
	ErrBidTooLow              = errors.New("bid is below the required amount")
	ErrAuctionNotEnded        = errors.New("auction has not ended yet")
	ErrAlreadyFinalized       = errors.New("auction already finalized")
	ErrSettlementFailed       = errors.New("settlement failed")
	ErrNothingToWithdraw      = errors.New("no refundable escrow to withdraw")
	ErrAlreadyPaidOut         = errors.New("seller already paid out")
)
