// Package ledger holds the balance adapter the game engines settle through.
//
// The engines never own a balance. They call Debit exactly once when a round
// starts and Credit at most once when it settles; everything else about the
// money (where it lives, how it is topped up) belongs to the host.
package ledger

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInsufficientFunds is returned by Debit when the stake exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for zero or negative amounts
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Ledger is the balance adapter consumed by the engines
type Ledger interface {
	Debit(amount int) error
	Credit(amount int) error
}

// EntryKind classifies a wallet movement
type EntryKind string

const (
	EntryDebit   EntryKind = "debit"
	EntryCredit  EntryKind = "credit"
	EntryDeposit EntryKind = "deposit"
)

// Entry is one balance movement with the balance after it was applied
type Entry struct {
	Kind    EntryKind `json:"kind"`
	Amount  int       `json:"amount"`
	Balance int       `json:"balance"`
}

// Wallet is an in-memory Ledger owned by a host session
type Wallet struct {
	mu      sync.Mutex
	balance int
	entries []Entry
}

// NewWallet creates a wallet holding the given opening balance
func NewWallet(balance int) *Wallet {
	if balance < 0 {
		balance = 0
	}
	return &Wallet{balance: balance}
}

// Balance returns the current balance
func (w *Wallet) Balance() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Debit removes amount from the balance or fails without changing it
func (w *Wallet) Debit(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if amount > w.balance {
		return fmt.Errorf("debit %d from balance %d: %w", amount, w.balance, ErrInsufficientFunds)
	}
	w.balance -= amount
	w.entries = append(w.entries, Entry{Kind: EntryDebit, Amount: amount, Balance: w.balance})
	return nil
}

// Credit adds a settlement payout
func (w *Wallet) Credit(amount int) error {
	return w.add(EntryCredit, amount)
}

// Deposit tops the balance up outside of any round
func (w *Wallet) Deposit(amount int) error {
	return w.add(EntryDeposit, amount)
}

func (w *Wallet) add(kind EntryKind, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%s %d: %w", kind, amount, ErrInvalidAmount)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.balance += amount
	w.entries = append(w.entries, Entry{Kind: kind, Amount: amount, Balance: w.balance})
	return nil
}

// Entries returns a copy of every movement in order
func (w *Wallet) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}
