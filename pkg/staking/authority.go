package staking

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

// ProgramID is the identity of the staking program logic. Every derived
// address is a pure function of (ProgramID, seeds, bump).
//
// Current key: GbQFbCmWPTVbvkCtSnzuqtrHrFXNteXGgVf4yZPxUUZC
var ProgramID = ed25519.PublicKey{231, 35, 142, 9, 77, 180, 58, 201, 88, 163, 24, 109, 246, 57, 132, 10, 191, 44, 205, 98, 173, 16, 67, 220, 151, 32, 119, 248, 63, 140, 29, 86}

const (
	mintSeed         = "token-mint"
	vaultSeed        = "stake-vault"
	tokenAccountSeed = "token-account"

	mintAuthoritySeed  = "mint-authority"
	stakeAuthoritySeed = "stake-authority"

	derivationMarker = "ProgramDerivedAddress"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidDerivedAddress indicates the seeds produce an identity that
	// lies on the ed25519 curve, meaning a private key could exist for it.
	ErrInvalidDerivedAddress = errors.New("derived address lies on the ed25519 curve")

	// ErrBumpMismatch indicates a bump does not re-derive the expected identity.
	ErrBumpMismatch = errors.New("bump does not re-derive the expected identity")
)

// AuthorityRole selects one of the program's two derived signing identities.
// The roles are derived independently so minting privilege and escrow-movement
// privilege can be revoked and audited separately.
type AuthorityRole uint8

const (
	MintAuthorityRole AuthorityRole = iota
	StakeAuthorityRole
)

func (r AuthorityRole) seed() []byte {
	switch r {
	case MintAuthorityRole:
		return []byte(mintAuthoritySeed)
	default:
		return []byte(stakeAuthoritySeed)
	}
}

func (r AuthorityRole) String() string {
	switch r {
	case MintAuthorityRole:
		return "mint_authority"
	case StakeAuthorityRole:
		return "stake_authority"
	default:
		return "unknown"
	}
}

// Authority is the capability to authorize ledger operations as one of the
// program's derived signing identities. There is no private key behind the
// identity; the value can only be constructed by this package, which makes
// holding one the proof of authorization.
type Authority struct {
	role     AuthorityRole
	identity ed25519.PublicKey
	bump     uint8
}

// Role returns the role the authority signs as
func (a *Authority) Role() AuthorityRole {
	return a.role
}

// Identity implements ledger.Authority.Identity
func (a *Authority) Identity() ed25519.PublicKey {
	return a.identity
}

// Bump returns the bump seed that disambiguates the derived identity
func (a *Authority) Bump() uint8 {
	return a.bump
}

// deriveAuthority discovers the bump for a role and returns the resulting
// authority. Bump discovery is done once, outside the operation hot path.
func deriveAuthority(role AuthorityRole) (*Authority, error) {
	identity, bump, err := findAddressAndBump(role.seed())
	if err != nil {
		return nil, errors.Wrapf(err, "error deriving %s", role.String())
	}

	return &Authority{
		role:     role,
		identity: identity,
		bump:     bump,
	}, nil
}

// authorityForBump re-derives a role's authority from a known bump. Operations
// use this on the hot path and compare the result against the identity
// discovered at setup, guarding against stale or incorrect bump input.
func authorityForBump(role AuthorityRole, bump uint8) (*Authority, error) {
	identity, err := createAddress(role.seed(), []byte{bump})
	if err == ErrInvalidDerivedAddress {
		return nil, ErrBumpMismatch
	} else if err != nil {
		return nil, err
	}

	return &Authority{
		role:     role,
		identity: identity,
		bump:     bump,
	}, nil
}

// MintAddress returns the derived address of the token mint
func MintAddress() (ed25519.PublicKey, error) {
	return findAddress([]byte(mintSeed))
}

// VaultAddress returns the derived address of the pooled escrow account
func VaultAddress() (ed25519.PublicKey, error) {
	return findAddress([]byte(vaultSeed))
}

// TokenAccountAddress returns the derived address of an owner's token account
func TokenAccountAddress(owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	return findAddress([]byte(tokenAccountSeed), owner)
}

// createAddress derives an address from the seeds and program identity,
// mirroring the Solana SDK's CreateProgramAddress.
//
// Derived addresses are public keys that _do not_ lie on the ed25519 curve to
// ensure that there is no associated private key. In the event the seeds
// result in a valid public key, ErrInvalidDerivedAddress is returned.
func createAddress(seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := sha256.New()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}

		if _, err := h.Write(s); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	for _, v := range [][]byte{ProgramID, []byte(derivationMarker)} {
		if _, err := h.Write(v); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	hash := h.Sum(nil)
	var pub [32]byte
	copy(pub[:], hash)

	// Reject the generated public key if it's a valid compressed EdwardsPoint.
	// The edwards25519.ExtendedGroupElement in golang.org/x/crypto is internal
	// to the library, so we rely on a deprecated open source alternative.
	var A edwards25519.ExtendedGroupElement
	if A.FromBytes(&pub) {
		return nil, ErrInvalidDerivedAddress
	}

	return pub[:], nil
}

// findAddressAndBump searches for the first bump, from 255 downward, whose
// derived address is off-curve. It returns the address and bump seed.
func findAddressAndBump(seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	bumpSeed := []byte{math.MaxUint8}
	for i := 0; i < math.MaxUint8; i++ {
		pub, err := createAddress(append(seeds, bumpSeed)...)
		if err == nil {
			return pub, bumpSeed[0], nil
		}
		if err != ErrInvalidDerivedAddress {
			return nil, 0, err
		}

		bumpSeed[0]--
	}

	return nil, 0, errors.New("unable to find a valid derived address")
}

// findAddress is findAddressAndBump without the bump seed.
func findAddress(seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := findAddressAndBump(seeds...)
	return pub, err
}
