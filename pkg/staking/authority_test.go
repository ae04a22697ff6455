package staking

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAuthority_Deterministic(t *testing.T) {
	for _, role := range []AuthorityRole{MintAuthorityRole, StakeAuthorityRole} {
		first, err := deriveAuthority(role)
		require.NoError(t, err)
		require.Len(t, []byte(first.Identity()), ed25519.PublicKeySize)

		second, err := deriveAuthority(role)
		require.NoError(t, err)

		assert.Equal(t, first.Identity(), second.Identity())
		assert.Equal(t, first.Bump(), second.Bump())
		assert.Equal(t, role, first.Role())
	}
}

func TestDeriveAuthority_RolesAreIndependent(t *testing.T) {
	mintAuthority, err := deriveAuthority(MintAuthorityRole)
	require.NoError(t, err)

	stakeAuthority, err := deriveAuthority(StakeAuthorityRole)
	require.NoError(t, err)

	assert.NotEqual(t, mintAuthority.Identity(), stakeAuthority.Identity())
}

func TestAuthorityForBump(t *testing.T) {
	expected, err := deriveAuthority(MintAuthorityRole)
	require.NoError(t, err)

	rederived, err := authorityForBump(MintAuthorityRole, expected.Bump())
	require.NoError(t, err)
	assert.Equal(t, expected.Identity(), rederived.Identity())

	// A stale bump either fails derivation outright or yields a different
	// identity, which operations reject against the expected value.
	stale, err := authorityForBump(MintAuthorityRole, expected.Bump()-1)
	if err == nil {
		assert.NotEqual(t, expected.Identity(), stale.Identity())
	} else {
		assert.Equal(t, ErrBumpMismatch, err)
	}
}

func TestDerivedAddresses_Distinct(t *testing.T) {
	mint, err := MintAddress()
	require.NoError(t, err)

	vault, err := VaultAddress()
	require.NoError(t, err)

	assert.NotEqual(t, mint, vault)

	ownerA, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	ownerB, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	accountA, err := TokenAccountAddress(ownerA)
	require.NoError(t, err)
	accountB, err := TokenAccountAddress(ownerB)
	require.NoError(t, err)

	assert.NotEqual(t, accountA, accountB)

	accountA2, err := TokenAccountAddress(ownerA)
	require.NoError(t, err)
	assert.Equal(t, accountA, accountA2)
}

func TestCreateAddress_SeedLimits(t *testing.T) {
	tooMany := make([][]byte, maxSeeds+1)
	for i := range tooMany {
		tooMany[i] = []byte{byte(i)}
	}
	_, err := createAddress(tooMany...)
	assert.Equal(t, ErrTooManySeeds, err)

	_, err = createAddress(make([]byte, maxSeedLength+1))
	assert.Equal(t, ErrMaxSeedLengthExceeded, err)
}
