package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"math"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/code-payments/stake-server/pkg/ledger"
)

type mintState struct {
	authority ed25519.PublicKey
	decimals  uint8
	supply    uint64
	frozen    bool
}

type accountState struct {
	mint    ed25519.PublicKey
	owner   ed25519.PublicKey
	balance uint64
	frozen  bool
}

// Ledger is an in memory ledger.Ledger. It models the subset of SPL token
// semantics the staking service relies on, including failure modes.
type Ledger struct {
	mu       sync.Mutex
	mints    map[string]*mintState
	accounts map[string]*accountState
}

// New returns a new in memory ledger.Ledger
func New() *Ledger {
	return &Ledger{
		mints:    make(map[string]*mintState),
		accounts: make(map[string]*accountState),
	}
}

// CreateMint implements ledger.Ledger.CreateMint
func (l *Ledger) CreateMint(_ context.Context, mint, authority ed25519.PublicKey, decimals uint8) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := base58.Encode(mint)
	if _, ok := l.mints[key]; ok {
		return ledger.ErrMintExists
	}

	l.mints[key] = &mintState{
		authority: authority,
		decimals:  decimals,
	}
	return nil
}

// CreateAccount implements ledger.Ledger.CreateAccount
func (l *Ledger) CreateAccount(_ context.Context, address, mint, owner ed25519.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.mints[base58.Encode(mint)]; !ok {
		return ledger.ErrMintNotFound
	}

	key := base58.Encode(address)
	if _, ok := l.accounts[key]; ok {
		return ledger.ErrAccountExists
	}

	l.accounts[key] = &accountState{
		mint:  mint,
		owner: owner,
	}
	return nil
}

// Mint implements ledger.Ledger.Mint
func (l *Ledger) Mint(_ context.Context, mint, destination ed25519.PublicKey, amount uint64, authority ledger.Authority) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	mintInfo, ok := l.mints[base58.Encode(mint)]
	if !ok {
		return ledger.ErrMintNotFound
	}
	if mintInfo.frozen {
		return ledger.ErrAccountFrozen
	}
	if !bytes.Equal(mintInfo.authority, authority.Identity()) {
		return ledger.ErrAuthorityMismatch
	}

	dest, ok := l.accounts[base58.Encode(destination)]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	if !bytes.Equal(dest.mint, mint) {
		return ledger.ErrMintMismatch
	}
	if dest.frozen {
		return ledger.ErrAccountFrozen
	}

	if amount > math.MaxUint64-mintInfo.supply || amount > math.MaxUint64-dest.balance {
		return ledger.ErrAmountOverflow
	}

	mintInfo.supply += amount
	dest.balance += amount
	return nil
}

// Transfer implements ledger.Ledger.Transfer
func (l *Ledger) Transfer(_ context.Context, amount uint64, source, destination ed25519.PublicKey, authority ledger.Authority) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.accounts[base58.Encode(source)]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	dest, ok := l.accounts[base58.Encode(destination)]
	if !ok {
		return ledger.ErrAccountNotFound
	}

	if !bytes.Equal(src.mint, dest.mint) {
		return ledger.ErrMintMismatch
	}
	if src.frozen || dest.frozen {
		return ledger.ErrAccountFrozen
	}
	if !bytes.Equal(src.owner, authority.Identity()) {
		return ledger.ErrAuthorityMismatch
	}
	if src.balance < amount {
		return ledger.ErrInsufficientFunds
	}
	if amount > math.MaxUint64-dest.balance {
		return ledger.ErrAmountOverflow
	}

	src.balance -= amount
	dest.balance += amount
	return nil
}

// BalanceOf implements ledger.Ledger.BalanceOf
func (l *Ledger) BalanceOf(_ context.Context, account ed25519.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[base58.Encode(account)]
	if !ok {
		return 0, ledger.ErrAccountNotFound
	}
	return acc.balance, nil
}

// Supply implements ledger.Ledger.Supply
func (l *Ledger) Supply(_ context.Context, mint ed25519.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	mintInfo, ok := l.mints[base58.Encode(mint)]
	if !ok {
		return 0, ledger.ErrMintNotFound
	}
	return mintInfo.supply, nil
}

// FreezeAccount marks a token account as frozen. Test utility for exercising
// ledger failure paths.
func (l *Ledger) FreezeAccount(account ed25519.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[base58.Encode(account)]; ok {
		acc.frozen = true
	}
}

// ThawAccount clears a token account's frozen flag.
func (l *Ledger) ThawAccount(account ed25519.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[base58.Encode(account)]; ok {
		acc.frozen = false
	}
}

// FreezeMint marks a mint as frozen, failing subsequent Mint calls.
func (l *Ledger) FreezeMint(mint ed25519.PublicKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if mintInfo, ok := l.mints[base58.Encode(mint)]; ok {
		mintInfo.frozen = true
	}
}
