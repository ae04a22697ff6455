package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	// ErrMintExists indicates a mint already exists at the given address.
	ErrMintExists = errors.New("mint already exists")
	// ErrMintNotFound indicates there is no mint at the given address.
	ErrMintNotFound = errors.New("mint not found")
	// ErrAccountExists indicates a token account already exists at the given address.
	ErrAccountExists = errors.New("token account already exists")
	// ErrAccountNotFound indicates there is no token account at the given address.
	ErrAccountNotFound = errors.New("token account not found")
	// ErrAuthorityMismatch indicates the presented authority cannot act on the
	// mint or account.
	ErrAuthorityMismatch = errors.New("authority mismatch")
	// ErrMintMismatch indicates the accounts involved belong to different mints.
	ErrMintMismatch = errors.New("mint mismatch")
	// ErrAccountFrozen indicates the mint or account is frozen.
	ErrAccountFrozen = errors.New("account is frozen")
	// ErrInsufficientFunds indicates the source account holds less than the
	// requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAmountOverflow indicates a balance or supply would wrap around.
	ErrAmountOverflow = errors.New("amount overflows u64")
)

// Authority proves the caller may act as a given identity. Values are either
// produced by holders of the identity's private key, or by program logic that
// can re-derive the identity from its seeds.
type Authority interface {
	Identity() ed25519.PublicKey
}

// SignerAuthority is an Authority backed by a private key holder. The host
// environment is assumed to have verified the caller's signature before any
// operation reaches this layer.
type SignerAuthority struct {
	identity ed25519.PublicKey
}

// NewSignerAuthority returns an Authority for an identity whose signature was
// verified by the host environment.
func NewSignerAuthority(identity ed25519.PublicKey) SignerAuthority {
	return SignerAuthority{identity: identity}
}

// Identity implements Authority.Identity
func (a SignerAuthority) Identity() ed25519.PublicKey {
	return a.identity
}

// Ledger is the narrow interface to the external token ledger service. All
// mint/transfer/balance bookkeeping lives behind it; each call either fully
// applies or has no effect.
type Ledger interface {
	// CreateMint creates the supply descriptor for a fungible token. Fails with
	// ErrMintExists when a mint already exists at the address.
	CreateMint(ctx context.Context, mint, authority ed25519.PublicKey, decimals uint8) error

	// CreateAccount creates a token account at the given address. Fails with
	// ErrAccountExists when an account already exists at the address.
	CreateAccount(ctx context.Context, address, mint, owner ed25519.PublicKey) error

	// Mint mints amount tokens into destination, increasing total supply.
	// The authority must match the mint's minting authority.
	Mint(ctx context.Context, mint, destination ed25519.PublicKey, amount uint64, authority Authority) error

	// Transfer moves amount tokens from source to destination. The authority
	// must match the source account's owner.
	Transfer(ctx context.Context, amount uint64, source, destination ed25519.PublicKey, authority Authority) error

	// BalanceOf returns the token balance held at the given account.
	BalanceOf(ctx context.Context, account ed25519.PublicKey) (uint64, error)

	// Supply returns the mint's total minted supply.
	Supply(ctx context.Context, mint ed25519.PublicKey) (uint64, error)
}
