package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/certificate"
)

// Engine drives the auction state machine end to end, coordinating the
// ledger, the escrow vault and the certificate registry. It is the only type
// callers interact with directly.
//
// Every operation on the same auction runs under that auction's mutex, so
// each public call executes to completion without interleaving; operations on
// different auctions proceed concurrently.
type Engine struct {
	ledger *Ledger
	vault  *Vault
	certs  certificate.Registry
	now    func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewEngine(ledger *Ledger, vault *Vault, certs certificate.Registry) *Engine {
	return &Engine{
		ledger: ledger,
		vault:  vault,
		certs:  certs,
		now:    time.Now,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

func (e *Engine) lockFor(auctionID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[auctionID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[auctionID] = l
	}
	return l
}

// CreateAuction opens a new auction. No funds move.
func (e *Engine) CreateAuction(p CreateParams) (*Auction, error) {
	a, err := e.ledger.Create(p, e.now())
	if err != nil {
		return nil, err
	}
	slog.Info("auction created",
		slog.String("auction_id", a.ID.String()),
		slog.Int64("course_id", a.CourseID),
		slog.Int64("reserve_price", a.ReservePrice))
	return a, nil
}

// GetAuction returns a snapshot of the auction.
func (e *Engine) GetAuction(auctionID uuid.UUID) (*Auction, error) {
	return e.ledger.Get(auctionID)
}

// ListAuctions returns snapshots of all auctions, newest first.
func (e *Engine) ListAuctions() []*Auction {
	return e.ledger.List()
}

// PlaceBid escrows the bidder's top-up delta, then records the bid. The
// deposit happens before validation against the current high bid, so under
// concurrent bidding funds are either escrowed-and-refundable or never left
// the bidder; they can never vanish. If the ledger rejects the bid after the
// deposit succeeded, exactly the deposited delta is released back to the
// bidder's refundable balance. On acceptance the superseded bidder's full
// amount becomes refundable.
func (e *Engine) PlaceBid(ctx context.Context, auctionID, bidder uuid.UUID, amount int64) (*HighBid, error) {
	lock := e.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	// Static prechecks that no later state change can invalidate. These
	// surface with no funds moved.
	a, err := e.ledger.Get(auctionID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if a.Status != StatusOpen || now.Before(a.StartTime) || !now.Before(a.EndTime) {
		return nil, ErrAuctionNotOpen
	}
	if amount < a.ReservePrice {
		return nil, fmt.Errorf("%w: reserve price is %d", ErrBidTooLow, a.ReservePrice)
	}

	prevAmount := e.vault.Escrowed(auctionID, bidder)
	delta := amount - prevAmount
	if delta <= 0 {
		return nil, fmt.Errorf("%w: already escrowed %d", ErrBidTooLow, prevAmount)
	}

	if err := e.vault.Deposit(ctx, auctionID, bidder, delta); err != nil {
		return nil, err
	}

	prev, err := e.ledger.RecordBid(auctionID, bidder, amount, e.now())
	if err != nil {
		e.vault.Release(auctionID, bidder, delta)
		return nil, err
	}

	e.vault.Lock(auctionID, bidder)
	if prev != nil && prev.Bidder != bidder {
		e.vault.MarkRefundable(auctionID, prev.Bidder)
	}

	slog.Info("bid accepted",
		slog.String("auction_id", auctionID.String()),
		slog.String("bidder", bidder.String()),
		slog.Int64("amount", amount))
	return &HighBid{Bidder: bidder, Amount: amount}, nil
}

// FinalizeAuction drives an ended auction to its terminal state. On
// settlement the course certificate is assigned to the winner first and the
// seller is paid only after the assignment succeeded; if the assignment
// fails, the winner's escrow becomes refundable and ErrSettlementFailed is
// returned instead of a partial settlement. Repeated calls after the first
// terminal transition return the identical outcome and move nothing.
func (e *Engine) FinalizeAuction(ctx context.Context, auctionID uuid.UUID) (*Outcome, error) {
	lock := e.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	status, winner, err := e.ledger.Finalize(auctionID, e.now())
	if errors.Is(err, ErrAlreadyFinalized) {
		return &Outcome{AuctionID: auctionID, Status: status, Winner: winner}, nil
	}
	if err != nil {
		return nil, err
	}

	out := &Outcome{AuctionID: auctionID, Status: status, Winner: winner}
	if status != StatusSettled || winner == nil {
		slog.Info("auction cancelled", slog.String("auction_id", auctionID.String()))
		return out, nil
	}

	a, err := e.ledger.Get(auctionID)
	if err != nil {
		return nil, err
	}

	if err := e.certs.Assign(ctx, a.CourseID, winner.Bidder); err != nil {
		e.vault.MarkRefundable(auctionID, winner.Bidder)
		slog.Warn("certificate transfer failed, winner escrow marked refundable",
			slog.String("auction_id", auctionID.String()),
			slog.String("winner", winner.Bidder.String()),
			slog.String("error", err.Error()))
		return out, fmt.Errorf("%w: certificate transfer: %v", ErrSettlementFailed, err)
	}

	paid, err := e.vault.PayoutSeller(ctx, auctionID, winner.Bidder, a.Seller)
	if err != nil {
		// The vault always holds the winner's locked amount here, so a
		// failing payout is a broken conservation invariant, not a
		// recoverable condition.
		return out, fmt.Errorf("%w: seller payout: %v", ErrSettlementFailed, err)
	}

	slog.Info("auction settled",
		slog.String("auction_id", auctionID.String()),
		slog.String("winner", winner.Bidder.String()),
		slog.Int64("paid", paid))
	return out, nil
}

// Withdraw pushes the caller's refundable escrow for the auction back to
// them. Safe to retry: once drained it reports ErrNothingToWithdraw.
func (e *Engine) Withdraw(ctx context.Context, auctionID, account uuid.UUID) (int64, error) {
	lock := e.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.ledger.Get(auctionID)
	if err != nil {
		return 0, err
	}
	// After a terminal state every non-winning entry is withdrawable,
	// whether or not it was ever superseded.
	if a.Status.Terminal() && (a.HighBid == nil || a.HighBid.Bidder != account) {
		e.vault.MarkRefundable(auctionID, account)
	}
	return e.vault.Withdraw(ctx, auctionID, account)
}

// Escrowed reports the account's current escrowed amount for an auction.
func (e *Engine) Escrowed(auctionID, account uuid.UUID) int64 {
	return e.vault.Escrowed(auctionID, account)
}
