package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/token"
)

type TokenServicer interface {
	Approve(ctx context.Context, owner uuid.UUID, amount int64) error
	Balance(ctx context.Context, owner uuid.UUID) int64
	Allowance(ctx context.Context, owner uuid.UUID) int64
	Faucet(ctx context.Context, owner uuid.UUID, amount int64) error
}

// TokenService exposes the bidder-facing token operations: approving the
// escrow vault as spender, checking balances, and the development faucet.
type TokenService struct {
	ledger       *token.MemLedger
	vaultAccount uuid.UUID
}

func NewTokenService(ledger *token.MemLedger, vaultAccount uuid.UUID) *TokenService {
	return &TokenService{
		ledger:       ledger,
		vaultAccount: vaultAccount,
	}
}

// Approve authorizes the escrow vault to pull up to amount from the owner.
func (ts *TokenService) Approve(ctx context.Context, owner uuid.UUID, amount int64) error {
	return ts.ledger.Approve(owner, ts.vaultAccount, amount)
}

func (ts *TokenService) Balance(ctx context.Context, owner uuid.UUID) int64 {
	return ts.ledger.BalanceOf(owner)
}

func (ts *TokenService) Allowance(ctx context.Context, owner uuid.UUID) int64 {
	return ts.ledger.Allowance(owner, ts.vaultAccount)
}

func (ts *TokenService) Faucet(ctx context.Context, owner uuid.UUID, amount int64) error {
	return ts.ledger.Mint(owner, amount)
}
