package auction

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/token"
)

// escrowEntry tracks one bidder's funds held for one auction. The locked
// bucket backs a standing high bid; the refundable bucket is withdrawable by
// its owner at any time. Keeping the two apart means a rejected top-up by the
// current high bidder can be released without unfunding the standing bid.
type escrowEntry struct {
	locked     int64
	refundable int64
	paidOut    bool
}

// Vault holds bidder funds for the duration of an auction. It is the only
// component that moves value through the token ledger on the auction's
// behalf, spending from its own token account.
type Vault struct {
	mu      sync.Mutex
	ledger  token.Ledger
	account uuid.UUID
	entries map[uuid.UUID]map[uuid.UUID]*escrowEntry // auction -> bidder -> entry
}

func NewVault(ledger token.Ledger, account uuid.UUID) *Vault {
	return &Vault{
		ledger:  ledger,
		account: account,
		entries: make(map[uuid.UUID]map[uuid.UUID]*escrowEntry),
	}
}

// Account is the vault's own token account. Bidders grant it an allowance
// before bidding.
func (v *Vault) Account() uuid.UUID {
	return v.account
}

// Escrowed returns the bidder's total held amount for the auction.
func (v *Vault) Escrowed(auctionID, account uuid.UUID) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[auctionID][account]
	if !ok {
		return 0
	}
	return e.locked + e.refundable
}

// Held returns the vault's total held balance for the auction. The sum of all
// escrow entries must always equal deposits minus withdrawals minus payouts.
func (v *Vault) Held(auctionID uuid.UUID) int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	var total int64
	for _, e := range v.entries[auctionID] {
		total += e.locked + e.refundable
	}
	return total
}

// Deposit pulls delta from the bidder's token account into the vault. The
// pull is all-or-nothing: if the ledger refuses it, no escrow entry is
// created or modified.
func (v *Vault) Deposit(ctx context.Context, auctionID, account uuid.UUID, delta int64) error {
	if delta <= 0 {
		return token.ErrInvalidAmount
	}
	if err := v.ledger.TransferFrom(ctx, v.account, account, v.account, delta); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entry(auctionID, account).locked += delta
	return nil
}

// Lock moves the bidder's refundable funds back behind their standing bid.
// Called when a previously outbid bidder's new bid is accepted, so their full
// amount backs the high bid again.
func (v *Vault) Lock(auctionID, account uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[auctionID][account]
	if !ok {
		return
	}
	e.locked += e.refundable
	e.refundable = 0
}

// Release moves delta from locked to refundable. Called when a deposit was
// taken but the ledger then rejected the bid, so only the just-deposited
// delta becomes withdrawable.
func (v *Vault) Release(auctionID, account uuid.UUID, delta int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[auctionID][account]
	if !ok {
		return
	}
	if delta > e.locked {
		delta = e.locked
	}
	e.locked -= delta
	e.refundable += delta
}

// MarkRefundable flags the bidder's entire held amount as withdrawable by its
// owner. No funds move; refunds are pulled lazily by the bidder so a blocked
// recipient can never stall the auction.
func (v *Vault) MarkRefundable(auctionID, account uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[auctionID][account]
	if !ok {
		return
	}
	e.refundable += e.locked
	e.locked = 0
}

// Withdraw pushes the bidder's full refundable amount back through the token
// ledger and zeroes it. The entry is left untouched if the ledger transfer
// fails, so a failed withdrawal can always be retried.
func (v *Vault) Withdraw(ctx context.Context, auctionID, account uuid.UUID) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[auctionID][account]
	if !ok || e.refundable == 0 {
		return 0, ErrNothingToWithdraw
	}
	amount := e.refundable
	if err := v.ledger.Transfer(ctx, v.account, account, amount); err != nil {
		return 0, err
	}
	e.refundable = 0
	v.prune(auctionID, account)
	return amount, nil
}

// PayoutSeller transfers the winner's locked amount to the seller on
// settlement. A second call for the same auction fails with ErrAlreadyPaidOut.
func (v *Vault) PayoutSeller(ctx context.Context, auctionID, winner, seller uuid.UUID) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[auctionID][winner]
	if !ok || e.paidOut || e.locked == 0 {
		return 0, ErrAlreadyPaidOut
	}
	amount := e.locked
	if err := v.ledger.Transfer(ctx, v.account, seller, amount); err != nil {
		return 0, err
	}
	e.locked = 0
	e.paidOut = true
	v.prune(auctionID, winner)
	return amount, nil
}

// entry returns the bidder's entry, creating it if needed. Caller holds v.mu.
func (v *Vault) entry(auctionID, account uuid.UUID) *escrowEntry {
	byBidder, ok := v.entries[auctionID]
	if !ok {
		byBidder = make(map[uuid.UUID]*escrowEntry)
		v.entries[auctionID] = byBidder
	}
	e, ok := byBidder[account]
	if !ok {
		e = &escrowEntry{}
		byBidder[account] = e
	}
	return e
}

// prune drops drained entries so none outlives its auction. Caller holds v.mu.
func (v *Vault) prune(auctionID, account uuid.UUID) {
	e, ok := v.entries[auctionID][account]
	if ok && e.locked == 0 && e.refundable == 0 {
		delete(v.entries[auctionID], account)
	}
	if len(v.entries[auctionID]) == 0 {
		delete(v.entries, auctionID)
	}
}
