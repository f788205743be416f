package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/auction"
	"github.com/coursehive/course-auction/internal/db"
)

// BidRecord is one journalled bid attempt, accepted or rejected.
type BidRecord struct {
	ID        int64     `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Accepted  bool      `json:"accepted"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Auctionrepo journals auctions and bid attempts to Postgres. The in-memory
// auction ledger stays authoritative; this is the durable history behind the
// read endpoints.
type Auctionrepo struct {
	db *db.DB
}

func NewAuctionrepo(db *db.DB) *Auctionrepo {
	return &Auctionrepo{
		db: db,
	}
}

func (ar *Auctionrepo) InsertAuction(ctx context.Context, a *auction.Auction) error {
	const q = `
		INSERT INTO auctions (
			id,
			course_id,
			seller_id,
			reserve_price,
			min_increment,
			start_time,
			end_time,
			status,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	_, err := ar.db.Exec(ctx, q,
		a.ID,
		a.CourseID,
		a.Seller,
		a.ReservePrice,
		a.MinIncrement,
		a.StartTime,
		a.EndTime,
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (ar *Auctionrepo) GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	const q = `
		SELECT
			a.id,
			a.course_id,
			a.seller_id,
			a.reserve_price,
			a.min_increment,
			a.start_time,
			a.end_time,
			a.status,
			a.high_bidder,
			a.high_amount,
			a.created_at,
			a.updated_at
		FROM auctions a
		WHERE a.id = $1
		LIMIT 1;
	`

	var (
		a          auction.Auction
		status     string
		highBidder *uuid.UUID
		highAmount *int64
	)

	err := ar.db.QueryRow(ctx, q, auctionID).Scan(
		&a.ID,
		&a.CourseID,
		&a.Seller,
		&a.ReservePrice,
		&a.MinIncrement,
		&a.StartTime,
		&a.EndTime,
		&status,
		&highBidder,
		&highAmount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Status = auction.Status(status)
	if highBidder != nil && highAmount != nil {
		a.HighBid = &auction.HighBid{Bidder: *highBidder, Amount: *highAmount}
	}
	return &a, nil
}

// UpdateHighBid records the accepted high bid on the auction row.
func (ar *Auctionrepo) UpdateHighBid(ctx context.Context, auctionID uuid.UUID, hb auction.HighBid) error {
	const q = `
		UPDATE auctions
		SET high_bidder = $2,
		    high_amount = $3,
		    updated_at = NOW()
		WHERE id = $1;
	`

	_, err := ar.db.Exec(ctx, q, auctionID, hb.Bidder, hb.Amount)
	return err
}

func (ar *Auctionrepo) UpdateStatus(ctx context.Context, auctionID uuid.UUID, status auction.Status) error {
	const q = `
		UPDATE auctions
		SET status = $2,
		    updated_at = NOW()
		WHERE id = $1;
	`

	_, err := ar.db.Exec(ctx, q, auctionID, string(status))
	return err
}

// InsertBid journals one bid attempt.
func (ar *Auctionrepo) InsertBid(ctx context.Context, rec BidRecord) error {
	const q = `
		INSERT INTO bids (
			auction_id,
			bidder_id,
			amount,
			accepted,
			reason,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, NOW());
	`

	_, err := ar.db.Exec(ctx, q,
		rec.AuctionID,
		rec.BidderID,
		rec.Amount,
		rec.Accepted,
		rec.Reason,
	)
	return err
}

// ListBids returns the journalled bid history for an auction, oldest first.
func (ar *Auctionrepo) ListBids(ctx context.Context, auctionID uuid.UUID) ([]BidRecord, error) {
	const q = `
		SELECT
			b.id,
			b.auction_id,
			b.bidder_id,
			b.amount,
			b.accepted,
			b.reason,
			b.created_at
		FROM bids b
		WHERE b.auction_id = $1
		ORDER BY b.id ASC;
	`

	rows, err := ar.db.Query(ctx, q, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []BidRecord{}
	for rows.Next() {
		var rec BidRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.AuctionID,
			&rec.BidderID,
			&rec.Amount,
			&rec.Accepted,
			&rec.Reason,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
