package auction

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is the source of truth for auction existence, parameters and the
// current high bid. It enforces ordering and validity rules but never touches
// funds or certificates.
type Ledger struct {
	mu             sync.RWMutex
	auctions       map[uuid.UUID]*Auction
	activeByCourse map[int64]uuid.UUID
}

func NewLedger() *Ledger {
	return &Ledger{
		auctions:       make(map[uuid.UUID]*Auction),
		activeByCourse: make(map[int64]uuid.UUID),
	}
}

// Create registers a new auction in StatusOpen. At most one open auction may
// exist per course at a time.
func (l *Ledger) Create(p CreateParams, now time.Time) (*Auction, error) {
	if p.MinIncrement <= 0 {
		return nil, fmt.Errorf("%w: min_increment must be positive", ErrInvalidParameters)
	}
	if p.ReservePrice <= 0 {
		return nil, fmt.Errorf("%w: reserve_price must be positive", ErrInvalidParameters)
	}
	if !p.EndTime.After(p.StartTime) {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrInvalidParameters)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.activeByCourse[p.CourseID]; ok {
		return nil, ErrDuplicateActiveAuction
	}

	a := &Auction{
		ID:           uuid.New(),
		CourseID:     p.CourseID,
		Seller:       p.Seller,
		ReservePrice: p.ReservePrice,
		MinIncrement: p.MinIncrement,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.auctions[a.ID] = a
	l.activeByCourse[a.CourseID] = a.ID
	return a.clone(), nil
}

// Get returns a snapshot of the auction.
func (l *Ledger) Get(auctionID uuid.UUID) (*Auction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.auctions[auctionID]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	return a.clone(), nil
}

// List returns snapshots of all auctions, newest first.
func (l *Ledger) List() []*Auction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Auction, 0, len(l.auctions))
	for _, a := range l.auctions {
		out = append(out, a.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// RecordBid validates and records a new high bid. It returns the superseded
// high bid, if any, so the caller can mark those funds refundable; the ledger
// itself never releases funds. A bidder may raise their own standing bid, but
// every accepted bid must exceed the current high bid by at least
// MinIncrement, so equal-amount bids are always rejected.
func (l *Ledger) RecordBid(auctionID, bidder uuid.UUID, amount int64, now time.Time) (*HighBid, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.auctions[auctionID]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	if a.Status != StatusOpen {
		return nil, ErrAuctionNotOpen
	}
	if now.Before(a.StartTime) || !now.Before(a.EndTime) {
		return nil, ErrAuctionNotOpen
	}
	if amount < a.ReservePrice {
		return nil, fmt.Errorf("%w: reserve price is %d", ErrBidTooLow, a.ReservePrice)
	}
	if a.HighBid != nil && amount < a.HighBid.Amount+a.MinIncrement {
		return nil, fmt.Errorf("%w: minimum acceptable bid is %d", ErrBidTooLow, a.HighBid.Amount+a.MinIncrement)
	}

	prev := a.HighBid
	a.HighBid = &HighBid{Bidder: bidder, Amount: amount}
	a.UpdatedAt = now
	if prev == nil {
		return nil, nil
	}
	p := *prev
	return &p, nil
}

// Finalize transitions an open auction past its end time to a terminal state:
// StatusSettled with the high bidder as winner when a high bid exists (an
// accepted high bid always meets the reserve), StatusCancelled otherwise.
// Calling Finalize on an already-terminal auction returns the stored state and
// winner together with ErrAlreadyFinalized, so callers can treat repeats as
// idempotent without re-deciding the outcome.
func (l *Ledger) Finalize(auctionID uuid.UUID, now time.Time) (Status, *HighBid, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.auctions[auctionID]
	if !ok {
		return "", nil, ErrAuctionNotFound
	}
	if a.Status.Terminal() {
		return a.Status, winnerOf(a), ErrAlreadyFinalized
	}
	if now.Before(a.EndTime) {
		return a.Status, nil, ErrAuctionNotEnded
	}

	if a.HighBid != nil {
		a.Status = StatusSettled
	} else {
		a.Status = StatusCancelled
	}
	a.UpdatedAt = now
	delete(l.activeByCourse, a.CourseID)
	return a.Status, winnerOf(a), nil
}

func winnerOf(a *Auction) *HighBid {
	if a.Status != StatusSettled || a.HighBid == nil {
		return nil
	}
	hb := *a.HighBid
	return &hb
}
