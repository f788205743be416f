package auction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehive/course-auction/internal/certificate"
	"github.com/coursehive/course-auction/internal/token"
)

type engineFixture struct {
	engine *Engine
	ledger *token.MemLedger
	certs  *certificate.MemRegistry
	vault  *Vault
	clock  *fakeClock
	seller uuid.UUID
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) set(sec int64)  { c.t = at(sec) }

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	tokens := token.NewMemLedger()
	certs := certificate.NewMemRegistry()
	vault := NewVault(tokens, uuid.New())
	engine := NewEngine(NewLedger(), vault, certs)

	clock := &fakeClock{t: at(0)}
	engine.now = clock.now

	return &engineFixture{
		engine: engine,
		ledger: tokens,
		certs:  certs,
		vault:  vault,
		clock:  clock,
		seller: uuid.New(),
	}
}

func (f *engineFixture) newBidder(t *testing.T, balance int64) uuid.UUID {
	t.Helper()
	b := uuid.New()
	require.NoError(t, f.ledger.Mint(b, balance))
	require.NoError(t, f.ledger.Approve(b, f.vault.Account(), balance))
	return b
}

func (f *engineFixture) createAuction(t *testing.T, courseID int64) *Auction {
	t.Helper()
	require.NoError(t, f.certs.CreateCourse(context.Background(), courseID))
	a, err := f.engine.CreateAuction(CreateParams{
		CourseID:     courseID,
		Seller:       f.seller,
		ReservePrice: 100,
		MinIncrement: 10,
		StartTime:    at(0),
		EndTime:      at(1000),
	})
	require.NoError(t, err)
	return a
}

// The reference scenario: A bids 100, B's 105 is rejected, B's 110 wins,
// A withdraws the superseded 100 and the seller is paid 110.
func TestEngineFullAuctionFlow(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)

	alice := f.newBidder(t, 500)
	bob := f.newBidder(t, 500)

	f.clock.set(10)
	hb, err := f.engine.PlaceBid(ctx, a.ID, alice, 100)
	require.NoError(t, err)
	assert.Equal(t, &HighBid{Bidder: alice, Amount: 100}, hb)

	// Bob's 105 clears the reserve, so the delta is deposited before the
	// ledger rejects it against high-bid+increment; it stays escrowed as
	// refundable rather than bouncing back.
	f.clock.set(20)
	_, err = f.engine.PlaceBid(ctx, a.ID, bob, 105)
	assert.ErrorIs(t, err, ErrBidTooLow)
	assert.Equal(t, int64(105), f.engine.Escrowed(a.ID, bob), "rejected bid's deposit is held, not returned")
	assert.Equal(t, int64(395), f.ledger.BalanceOf(bob))

	// The held 105 backs the rebid; only the 5 top-up is pulled.
	f.clock.set(30)
	hb, err = f.engine.PlaceBid(ctx, a.ID, bob, 110)
	require.NoError(t, err)
	assert.Equal(t, &HighBid{Bidder: bob, Amount: 110}, hb)

	// Alice is superseded and can withdraw immediately, mid-auction.
	f.clock.set(40)
	amount, err := f.engine.Withdraw(ctx, a.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount)
	assert.Equal(t, int64(500), f.ledger.BalanceOf(alice))

	f.clock.set(1000)
	out, err := f.engine.FinalizeAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, out.Status)
	require.NotNil(t, out.Winner)
	assert.Equal(t, bob, out.Winner.Bidder)

	owner, err := f.certs.OwnerOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
	assert.Equal(t, int64(110), f.ledger.BalanceOf(f.seller))
	assert.Equal(t, int64(390), f.ledger.BalanceOf(bob))
	assert.Zero(t, f.vault.Held(a.ID), "no escrow entry outlives finalization")
}

func TestEngineNoBidsCancels(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)

	f.clock.set(1000)
	out, err := f.engine.FinalizeAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, out.Status)
	assert.Nil(t, out.Winner)

	owner, err := f.certs.OwnerOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, owner, "no certificate transfer")
	assert.Zero(t, f.ledger.BalanceOf(f.seller), "no payout")
}

func TestEngineBidBelowReserveMovesNothing(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)
	bidder := f.newBidder(t, 500)

	f.clock.set(10)
	_, err := f.engine.PlaceBid(ctx, a.ID, bidder, 99)
	assert.ErrorIs(t, err, ErrBidTooLow)
	assert.Equal(t, int64(500), f.ledger.BalanceOf(bidder))
	assert.Zero(t, f.vault.Held(a.ID))
}

func TestEngineDepositFailureAbortsBid(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)

	t.Run("insufficient funds", func(t *testing.T) {
		poor := uuid.New()
		require.NoError(t, f.ledger.Mint(poor, 50))
		require.NoError(t, f.ledger.Approve(poor, f.vault.Account(), 1000))

		f.clock.set(10)
		_, err := f.engine.PlaceBid(ctx, a.ID, poor, 100)
		assert.ErrorIs(t, err, token.ErrInsufficientFunds)

		got, _ := f.engine.GetAuction(a.ID)
		assert.Nil(t, got.HighBid, "ledger untouched")
	})

	t.Run("no allowance", func(t *testing.T) {
		unapproved := uuid.New()
		require.NoError(t, f.ledger.Mint(unapproved, 500))

		f.clock.set(10)
		_, err := f.engine.PlaceBid(ctx, a.ID, unapproved, 100)
		assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
	})
}

func TestEngineSelfOutbidFundsOnlyDelta(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)
	bidder := f.newBidder(t, 500)

	f.clock.set(10)
	_, err := f.engine.PlaceBid(ctx, a.ID, bidder, 100)
	require.NoError(t, err)
	_, err = f.engine.PlaceBid(ctx, a.ID, bidder, 130)
	require.NoError(t, err)

	assert.Equal(t, int64(130), f.engine.Escrowed(a.ID, bidder))
	assert.Equal(t, int64(370), f.ledger.BalanceOf(bidder), "only the 30 delta was pulled")

	// The high bidder cannot withdraw the funds backing their own bid.
	_, err = f.engine.Withdraw(ctx, a.ID, bidder)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
}

func TestEngineOutbidThenRebid(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)
	alice := f.newBidder(t, 500)
	bob := f.newBidder(t, 500)

	f.clock.set(10)
	_, err := f.engine.PlaceBid(ctx, a.ID, alice, 100)
	require.NoError(t, err)
	_, err = f.engine.PlaceBid(ctx, a.ID, bob, 110)
	require.NoError(t, err)

	// Alice re-bids without withdrawing: her refundable 100 plus a 20 delta
	// back the new 120 bid, which must no longer be withdrawable.
	_, err = f.engine.PlaceBid(ctx, a.ID, alice, 120)
	require.NoError(t, err)
	assert.Equal(t, int64(380), f.ledger.BalanceOf(alice))
	_, err = f.engine.Withdraw(ctx, a.ID, alice)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)

	// Bob is now the superseded one.
	amount, err := f.engine.Withdraw(ctx, a.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(110), amount)
}

func TestEngineRejectedRaiseReleasesOnlyDelta(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)
	bidder := f.newBidder(t, 500)

	f.clock.set(10)
	_, err := f.engine.PlaceBid(ctx, a.ID, bidder, 100)
	require.NoError(t, err)

	// A raise below the increment passes the static prechecks, deposits the
	// delta, and is then rejected by the ledger.
	_, err = f.engine.PlaceBid(ctx, a.ID, bidder, 105)
	assert.ErrorIs(t, err, ErrBidTooLow)

	// The 5 delta is refundable; the 100 backing the standing bid is not.
	amount, err := f.engine.Withdraw(ctx, a.ID, bidder)
	require.NoError(t, err)
	assert.Equal(t, int64(5), amount)
	assert.Equal(t, int64(100), f.engine.Escrowed(a.ID, bidder))

	got, _ := f.engine.GetAuction(a.ID)
	assert.Equal(t, int64(100), got.HighBid.Amount, "standing bid still funded")
}

func TestEngineFinalizeIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)
	bidder := f.newBidder(t, 500)

	f.clock.set(10)
	_, err := f.engine.PlaceBid(ctx, a.ID, bidder, 100)
	require.NoError(t, err)

	f.clock.set(999)
	_, err = f.engine.FinalizeAuction(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAuctionNotEnded)

	f.clock.set(1000)
	first, err := f.engine.FinalizeAuction(ctx, a.ID)
	require.NoError(t, err)

	sellerBalance := f.ledger.BalanceOf(f.seller)

	second, err := f.engine.FinalizeAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical terminal result both times")
	assert.Equal(t, sellerBalance, f.ledger.BalanceOf(f.seller), "funds move only on the first call")
}

func TestEngineSettlementFailure(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)
	bidder := f.newBidder(t, 500)

	f.clock.set(10)
	_, err := f.engine.PlaceBid(ctx, a.ID, bidder, 100)
	require.NoError(t, err)

	// The certificate is assigned through an external path before
	// finalization, so the engine's transfer must fail.
	interloper := uuid.New()
	require.NoError(t, f.certs.Assign(ctx, 7, interloper))

	f.clock.set(1000)
	out, err := f.engine.FinalizeAuction(ctx, a.ID)
	assert.ErrorIs(t, err, ErrSettlementFailed)
	require.NotNil(t, out)
	assert.Equal(t, StatusSettled, out.Status)

	// The seller is never paid without a confirmed certificate transfer; the
	// winner's escrow falls back to refundable instead.
	assert.Zero(t, f.ledger.BalanceOf(f.seller))
	amount, err := f.engine.Withdraw(ctx, a.ID, bidder)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount)
	assert.Equal(t, int64(500), f.ledger.BalanceOf(bidder))

	owner, err := f.certs.OwnerOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, interloper, owner)
}

func TestEngineLosersCanWithdrawAfterSettlement(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)
	alice := f.newBidder(t, 500)
	bob := f.newBidder(t, 500)

	f.clock.set(10)
	_, err := f.engine.PlaceBid(ctx, a.ID, alice, 100)
	require.NoError(t, err)
	_, err = f.engine.PlaceBid(ctx, a.ID, bob, 110)
	require.NoError(t, err)

	f.clock.set(1000)
	_, err = f.engine.FinalizeAuction(ctx, a.ID)
	require.NoError(t, err)

	// Alice never withdrew mid-auction; her refund survives settlement.
	amount, err := f.engine.Withdraw(ctx, a.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), amount)

	// The winner has nothing left to withdraw.
	_, err = f.engine.Withdraw(ctx, a.ID, bob)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
}

func TestEngineBidOnUnknownAuction(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	bidder := f.newBidder(t, 500)

	_, err := f.engine.PlaceBid(ctx, uuid.New(), bidder, 100)
	assert.ErrorIs(t, err, ErrAuctionNotFound)
	assert.Equal(t, int64(500), f.ledger.BalanceOf(bidder))
}

func TestEngineConservationAcrossConcurrentBidders(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	a := f.createAuction(t, 7)

	f.clock.set(10)
	bidders := make([]uuid.UUID, 5)
	amount := int64(100)
	for i := range bidders {
		bidders[i] = f.newBidder(t, 1000)
		_, err := f.engine.PlaceBid(ctx, a.ID, bidders[i], amount)
		require.NoError(t, err)
		amount += 10
	}

	// sum of escrow entries equals the vault's token balance at all times
	var escrowed int64
	for _, b := range bidders {
		escrowed += f.engine.Escrowed(a.ID, b)
	}
	assert.Equal(t, escrowed, f.vault.Held(a.ID))
	assert.Equal(t, escrowed, f.ledger.BalanceOf(f.vault.Account()))

	f.clock.set(1000)
	_, err := f.engine.FinalizeAuction(ctx, a.ID)
	require.NoError(t, err)

	for _, b := range bidders[:4] {
		_, err := f.engine.Withdraw(ctx, a.ID, b)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), f.ledger.BalanceOf(b))
	}
	assert.Zero(t, f.vault.Held(a.ID))
	assert.Zero(t, f.ledger.BalanceOf(f.vault.Account()))
}
