package auction

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehive/course-auction/internal/token"
)

// fundedVault returns a vault plus a bidder holding balance tokens. The
// allowance is deliberately generous so that only the balance can make a
// deposit fail.
func fundedVault(t *testing.T, balance int64) (*Vault, *token.MemLedger, uuid.UUID) {
	t.Helper()
	ledger := token.NewMemLedger()
	vault := NewVault(ledger, uuid.New())
	bidder := uuid.New()
	require.NoError(t, ledger.Mint(bidder, balance))
	require.NoError(t, ledger.Approve(bidder, vault.Account(), 1_000_000))
	return vault, ledger, bidder
}

func TestVaultDepositAllOrNothing(t *testing.T) {
	ctx := context.Background()
	auctionID := uuid.New()

	t.Run("insufficient funds", func(t *testing.T) {
		vault, ledger, bidder := fundedVault(t, 50)
		err := vault.Deposit(ctx, auctionID, bidder, 100)
		assert.ErrorIs(t, err, token.ErrInsufficientFunds)
		assert.Zero(t, vault.Escrowed(auctionID, bidder))
		assert.Zero(t, vault.Held(auctionID))
		assert.Equal(t, int64(50), ledger.BalanceOf(bidder))
	})

	t.Run("insufficient allowance", func(t *testing.T) {
		ledger := token.NewMemLedger()
		vault := NewVault(ledger, uuid.New())
		bidder := uuid.New()
		require.NoError(t, ledger.Mint(bidder, 200))
		require.NoError(t, ledger.Approve(bidder, vault.Account(), 10))

		err := vault.Deposit(ctx, auctionID, bidder, 100)
		assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
		assert.Zero(t, vault.Escrowed(auctionID, bidder))
		assert.Equal(t, int64(200), ledger.BalanceOf(bidder))
	})

	t.Run("success pulls into vault account", func(t *testing.T) {
		vault, ledger, bidder := fundedVault(t, 200)
		require.NoError(t, vault.Deposit(ctx, auctionID, bidder, 120))
		assert.Equal(t, int64(120), vault.Escrowed(auctionID, bidder))
		assert.Equal(t, int64(120), vault.Held(auctionID))
		assert.Equal(t, int64(80), ledger.BalanceOf(bidder))
		assert.Equal(t, int64(120), ledger.BalanceOf(vault.Account()))
	})
}

func TestVaultWithdraw(t *testing.T) {
	ctx := context.Background()
	auctionID := uuid.New()
	vault, ledger, bidder := fundedVault(t, 200)

	require.NoError(t, vault.Deposit(ctx, auctionID, bidder, 150))

	// Locked funds are not withdrawable.
	_, err := vault.Withdraw(ctx, auctionID, bidder)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)

	vault.MarkRefundable(auctionID, bidder)
	amount, err := vault.Withdraw(ctx, auctionID, bidder)
	require.NoError(t, err)
	assert.Equal(t, int64(150), amount)
	assert.Equal(t, int64(200), ledger.BalanceOf(bidder))

	// The drained entry is gone; retries are safe no-ops.
	_, err = vault.Withdraw(ctx, auctionID, bidder)
	assert.ErrorIs(t, err, ErrNothingToWithdraw)
	assert.Zero(t, vault.Held(auctionID))
}

func TestVaultReleaseDeltaKeepsStandingBidFunded(t *testing.T) {
	ctx := context.Background()
	auctionID := uuid.New()
	vault, _, bidder := fundedVault(t, 500)

	// Standing high bid of 100, then a rejected top-up of 5.
	require.NoError(t, vault.Deposit(ctx, auctionID, bidder, 100))
	require.NoError(t, vault.Deposit(ctx, auctionID, bidder, 5))
	vault.Release(auctionID, bidder, 5)

	// Only the delta is withdrawable; the 100 backing the bid stays locked.
	amount, err := vault.Withdraw(ctx, auctionID, bidder)
	require.NoError(t, err)
	assert.Equal(t, int64(5), amount)
	assert.Equal(t, int64(100), vault.Escrowed(auctionID, bidder))
}

func TestVaultPayoutSeller(t *testing.T) {
	ctx := context.Background()
	auctionID := uuid.New()
	vault, ledger, winner := fundedVault(t, 300)
	seller := uuid.New()

	require.NoError(t, vault.Deposit(ctx, auctionID, winner, 110))

	paid, err := vault.PayoutSeller(ctx, auctionID, winner, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(110), paid)
	assert.Equal(t, int64(110), ledger.BalanceOf(seller))
	assert.Zero(t, vault.Held(auctionID))

	_, err = vault.PayoutSeller(ctx, auctionID, winner, seller)
	assert.ErrorIs(t, err, ErrAlreadyPaidOut)
}

func TestVaultConservation(t *testing.T) {
	ctx := context.Background()
	auctionID := uuid.New()
	ledger := token.NewMemLedger()
	vault := NewVault(ledger, uuid.New())
	seller := uuid.New()

	bidders := make([]uuid.UUID, 3)
	for i := range bidders {
		bidders[i] = uuid.New()
		require.NoError(t, ledger.Mint(bidders[i], 1000))
		require.NoError(t, ledger.Approve(bidders[i], vault.Account(), 1000))
	}

	var deposits, withdrawals, payouts int64
	deposit := func(b uuid.UUID, amt int64) {
		require.NoError(t, vault.Deposit(ctx, auctionID, b, amt))
		deposits += amt
	}

	deposit(bidders[0], 100)
	deposit(bidders[1], 110)
	vault.MarkRefundable(auctionID, bidders[0])
	deposit(bidders[2], 120)
	vault.MarkRefundable(auctionID, bidders[1])
	deposit(bidders[0], 30) // re-bid to 130
	vault.Lock(auctionID, bidders[0])
	vault.MarkRefundable(auctionID, bidders[2])

	assert.Equal(t, deposits, vault.Held(auctionID))
	assert.Equal(t, deposits, ledger.BalanceOf(vault.Account()))

	w, err := vault.Withdraw(ctx, auctionID, bidders[1])
	require.NoError(t, err)
	withdrawals += w

	p, err := vault.PayoutSeller(ctx, auctionID, bidders[0], seller)
	require.NoError(t, err)
	payouts += p

	w, err = vault.Withdraw(ctx, auctionID, bidders[2])
	require.NoError(t, err)
	withdrawals += w

	assert.Equal(t, deposits-withdrawals-payouts, vault.Held(auctionID))
	assert.Zero(t, vault.Held(auctionID), "all entries drained")
	assert.Zero(t, ledger.BalanceOf(vault.Account()))
}
