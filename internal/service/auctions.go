package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/auction"
	"github.com/coursehive/course-auction/internal/cache"
	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/internal/repository"
)

const auctionSnapshotTTL = 5 * time.Second

type AuctionServicer interface {
	CreateAuction(ctx context.Context, seller uuid.UUID, req model.CreateAuctionRequest) (*auction.Auction, error)
	GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error)
	ListAuctions(ctx context.Context) []*auction.Auction
	PlaceBid(ctx context.Context, auctionID, bidder uuid.UUID, amount int64) (*auction.HighBid, error)
	FinalizeAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Outcome, error)
	Withdraw(ctx context.Context, auctionID, account uuid.UUID) (int64, error)
	BidHistory(ctx context.Context, auctionID uuid.UUID) ([]repository.BidRecord, error)
}

// AuctionService fronts the settlement engine. The engine is authoritative;
// the journal keeps durable history and the cache serves hot snapshot reads.
type AuctionService struct {
	engine  *auction.Engine
	journal AuctionJournal
	cache   cache.Cacher
}

func NewAuctionService(engine *auction.Engine, journal AuctionJournal, c cache.Cacher) *AuctionService {
	return &AuctionService{
		engine:  engine,
		journal: journal,
		cache:   c,
	}
}

func (as *AuctionService) CreateAuction(ctx context.Context, seller uuid.UUID, req model.CreateAuctionRequest) (*auction.Auction, error) {
	start := time.Now()
	if req.StartTime != nil {
		start = *req.StartTime
	}

	a, err := as.engine.CreateAuction(auction.CreateParams{
		CourseID:     req.CourseID,
		Seller:       seller,
		ReservePrice: req.ReservePrice,
		MinIncrement: req.MinIncrement,
		StartTime:    start,
		EndTime:      req.EndTime,
	})
	if err != nil {
		return nil, err
	}

	// History is best effort: the engine already owns the truth, so a
	// journaling hiccup must not fail the caller's create.
	if err := as.journal.InsertAuction(ctx, a); err != nil {
		slog.Error("failed to journal auction", "auction_id", a.ID, "error", err)
	}
	return a, nil
}

func (as *AuctionService) GetAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Auction, error) {
	key := cache.AuctionKey(auctionID.String())
	if cached, hit, err := as.cache.Get(ctx, key); err == nil && hit {
		var a auction.Auction
		if err := json.Unmarshal([]byte(cached), &a); err == nil {
			return &a, nil
		}
	}

	a, err := as.engine.GetAuction(auctionID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(a); err == nil {
		if err := as.cache.Set(ctx, key, string(raw), auctionSnapshotTTL); err != nil {
			slog.Warn("failed to cache auction snapshot", "auction_id", auctionID, "error", err)
		}
	}
	return a, nil
}

func (as *AuctionService) ListAuctions(ctx context.Context) []*auction.Auction {
	return as.engine.ListAuctions()
}

func (as *AuctionService) PlaceBid(ctx context.Context, auctionID, bidder uuid.UUID, amount int64) (*auction.HighBid, error) {
	hb, err := as.engine.PlaceBid(ctx, auctionID, bidder, amount)

	rec := repository.BidRecord{
		AuctionID: auctionID,
		BidderID:  bidder,
		Amount:    amount,
		Accepted:  err == nil,
	}
	if err != nil {
		rec.Reason = err.Error()
	}
	if jerr := as.journal.InsertBid(ctx, rec); jerr != nil {
		slog.Error("failed to journal bid", "auction_id", auctionID, "error", jerr)
	}

	if err != nil {
		return nil, err
	}

	if jerr := as.journal.UpdateHighBid(ctx, auctionID, *hb); jerr != nil {
		slog.Error("failed to journal high bid", "auction_id", auctionID, "error", jerr)
	}
	as.invalidate(ctx, auctionID)
	return hb, nil
}

func (as *AuctionService) FinalizeAuction(ctx context.Context, auctionID uuid.UUID) (*auction.Outcome, error) {
	out, err := as.engine.FinalizeAuction(ctx, auctionID)
	if out != nil {
		if jerr := as.journal.UpdateStatus(ctx, auctionID, out.Status); jerr != nil {
			slog.Error("failed to journal auction status", "auction_id", auctionID, "error", jerr)
		}
		as.invalidate(ctx, auctionID)
	}
	return out, err
}

func (as *AuctionService) Withdraw(ctx context.Context, auctionID, account uuid.UUID) (int64, error) {
	return as.engine.Withdraw(ctx, auctionID, account)
}

func (as *AuctionService) BidHistory(ctx context.Context, auctionID uuid.UUID) ([]repository.BidRecord, error) {
	if _, err := as.engine.GetAuction(auctionID); err != nil {
		return nil, err
	}
	return as.journal.ListBids(ctx, auctionID)
}

func (as *AuctionService) invalidate(ctx context.Context, auctionID uuid.UUID) {
	if err := as.cache.Delete(ctx, cache.AuctionKey(auctionID.String())); err != nil {
		slog.Warn("failed to invalidate auction snapshot", "auction_id", auctionID, "error", err)
	}
}
