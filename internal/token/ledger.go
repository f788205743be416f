package token

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds     = errors.New("token: insufficient funds")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrInvalidAmount         = errors.New("token: amount must be positive")
)

// Ledger is the fungible token ledger the escrow vault moves value through.
// Amounts are indivisible token units.
type Ledger interface {
	// Transfer moves amount from one account to another. Used for funds the
	// caller already holds (vault balance going back to a bidder or on to the
	// seller).
	Transfer(ctx context.Context, from, to uuid.UUID, amount int64) error

	// TransferFrom moves amount out of the payer's account on the authority of
	// an allowance granted to spender. Spending your own funds needs no
	// allowance.
	TransferFrom(ctx context.Context, spender, from, to uuid.UUID, amount int64) error
}

// MemLedger is an in-process Ledger with approve/allowance semantics.
type MemLedger struct {
	mu         sync.Mutex
	balances   map[uuid.UUID]int64
	allowances map[uuid.UUID]map[uuid.UUID]int64 // owner -> spender -> amount
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		balances:   make(map[uuid.UUID]int64),
		allowances: make(map[uuid.UUID]map[uuid.UUID]int64),
	}
}

// Mint credits freshly created units to an account.
func (l *MemLedger) Mint(to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[to] += amount
	return nil
}

// Approve sets (not adds to) the allowance spender may pull from owner.
func (l *MemLedger) Approve(owner, spender uuid.UUID, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[uuid.UUID]int64)
		l.allowances[owner] = grants
	}
	grants[spender] = amount
	return nil
}

func (l *MemLedger) Allowance(owner, spender uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[owner][spender]
}

func (l *MemLedger) BalanceOf(account uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

func (l *MemLedger) Transfer(ctx context.Context, from, to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

func (l *MemLedger) TransferFrom(ctx context.Context, spender, from, to uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if spender != from {
		if l.allowances[from][spender] < amount {
			return ErrInsufficientAllowance
		}
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}
	if spender != from {
		l.allowances[from][spender] -= amount
	}
	return nil
}

// move assumes the lock is held.
func (l *MemLedger) move(from, to uuid.UUID, amount int64) error {
	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
