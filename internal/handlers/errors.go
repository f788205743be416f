package handlers

import "errors"

var (
	// common error code
	ErrInternalServer = errors.New("INTERNAL_SERVER_ERROR")
	ErrInvalidRequest = errors.New("VALIDATION_FAILED")
	ErrInvalidJson    = errors.New("INVALID_JSON_FORMAT")
	ErrMissingParam   = errors.New("MISSING_PARAM")
	ErrDb             = errors.New("DB_ERROR")

	// auth error code
	ErrAuthFailed     = errors.New("AUTH_FAILED")
	ErrMissingToken   = errors.New("MISSING_TOKEN")
	ErrMissingCookie  = errors.New("MISSING_COOKIE")
	ErrInvalidToken   = errors.New("INVALID_TOKEN")
	ErrTokenGenFailed = errors.New("TOKEN_GENERATION_FAILED")
	ErrToken          = errors.New("TOKEN_ERROR")
	ErrLogout         = errors.New("LOGOUT_ERROR")

	// user error code
	ErrUserExists   = errors.New("USER_EXISTS")
	ErrUserNotFound = errors.New("USER_NOT_FOUND")

	// auction error code
	ErrInvalidParams    = errors.New("INVALID_PARAMETERS")
	ErrDuplicateAuction = errors.New("DUPLICATE_ACTIVE_AUCTION")
	ErrAuctionNotFound  = errors.New("AUCTION_NOT_FOUND")
	ErrAuctionNotOpen   = errors.New("AUCTION_NOT_OPEN")
	ErrBidLow           = errors.New("BID_TOO_LOW")
	ErrAuctionNotEnded  = errors.New("AUCTION_NOT_ENDED")
	ErrSettlement       = errors.New("SETTLEMENT_FAILED")
	ErrNothingWithdraw  = errors.New("NOTHING_TO_WITHDRAW")
	ErrAlreadyPaidOut   = errors.New("ALREADY_PAID_OUT")

	// token error code
	ErrFundsLow     = errors.New("INSUFFICIENT_FUNDS")
	ErrAllowanceLow = errors.New("INSUFFICIENT_ALLOWANCE")

	// course error code
	ErrCourseNotFound = errors.New("COURSE_NOT_FOUND")
	ErrCourseExists   = errors.New("COURSE_EXISTS")
)
