package auction

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is one the auction never leaves.
func (s Status) Terminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// HighBid is the currently winning (bidder, amount) pair of an open auction.
type HighBid struct {
	Bidder uuid.UUID `json:"bidder"`
	Amount int64     `json:"amount"`
}

// Auction is one sale event for one course. All fields except Status,
// HighBid and UpdatedAt are immutable after creation.
type Auction struct {
	ID           uuid.UUID `json:"auction_id"`
	CourseID     int64     `json:"course_id"`
	Seller       uuid.UUID `json:"seller"`
	ReservePrice int64     `json:"reserve_price"`
	MinIncrement int64     `json:"min_increment"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       Status    `json:"status"`
	HighBid      *HighBid  `json:"high_bid,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Auction) clone() *Auction {
	c := *a
	if a.HighBid != nil {
		hb := *a.HighBid
		c.HighBid = &hb
	}
	return &c
}

// CreateParams are the immutable parameters of a new auction.
type CreateParams struct {
	CourseID     int64
	Seller       uuid.UUID
	ReservePrice int64
	MinIncrement int64
	StartTime    time.Time
	EndTime      time.Time
}

// Outcome is the terminal result of finalizing an auction. Winner is nil for
// cancelled auctions.
type Outcome struct {
	AuctionID uuid.UUID `json:"auction_id"`
	Status    Status    `json:"status"`
	Winner    *HighBid  `json:"winner,omitempty"`
}
