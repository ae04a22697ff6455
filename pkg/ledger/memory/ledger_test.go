package memory

import (
	"context"
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/stake-server/pkg/ledger"
)

func newTestKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func TestLedger_MintAndTransfer(t *testing.T) {
	ctx := context.Background()
	l := New()

	mint := newTestKey(t)
	mintAuthority := newTestKey(t)
	alice := newTestKey(t)
	aliceAccount := newTestKey(t)
	bobAccount := newTestKey(t)

	require.NoError(t, l.CreateMint(ctx, mint, mintAuthority, 6))
	assert.Equal(t, ledger.ErrMintExists, l.CreateMint(ctx, mint, mintAuthority, 6))

	require.NoError(t, l.CreateAccount(ctx, aliceAccount, mint, alice))
	assert.Equal(t, ledger.ErrAccountExists, l.CreateAccount(ctx, aliceAccount, mint, alice))
	require.NoError(t, l.CreateAccount(ctx, bobAccount, mint, newTestKey(t)))

	require.NoError(t, l.Mint(ctx, mint, aliceAccount, 1000, ledger.NewSignerAuthority(mintAuthority)))

	balance, err := l.BalanceOf(ctx, aliceAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, balance)

	supply, err := l.Supply(ctx, mint)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, supply)

	require.NoError(t, l.Transfer(ctx, 400, aliceAccount, bobAccount, ledger.NewSignerAuthority(alice)))

	balance, err = l.BalanceOf(ctx, aliceAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 600, balance)

	balance, err = l.BalanceOf(ctx, bobAccount)
	require.NoError(t, err)
	assert.EqualValues(t, 400, balance)
}

func TestLedger_AuthorityChecks(t *testing.T) {
	ctx := context.Background()
	l := New()

	mint := newTestKey(t)
	mintAuthority := newTestKey(t)
	alice := newTestKey(t)
	aliceAccount := newTestKey(t)
	bobAccount := newTestKey(t)

	require.NoError(t, l.CreateMint(ctx, mint, mintAuthority, 6))
	require.NoError(t, l.CreateAccount(ctx, aliceAccount, mint, alice))
	require.NoError(t, l.CreateAccount(ctx, bobAccount, mint, newTestKey(t)))

	assert.Equal(t, ledger.ErrAuthorityMismatch, l.Mint(ctx, mint, aliceAccount, 100, ledger.NewSignerAuthority(alice)))

	require.NoError(t, l.Mint(ctx, mint, aliceAccount, 100, ledger.NewSignerAuthority(mintAuthority)))
	assert.Equal(t, ledger.ErrAuthorityMismatch, l.Transfer(ctx, 50, aliceAccount, bobAccount, ledger.NewSignerAuthority(mintAuthority)))
}

func TestLedger_FailureModes(t *testing.T) {
	ctx := context.Background()
	l := New()

	mint := newTestKey(t)
	mintAuthority := newTestKey(t)
	alice := newTestKey(t)
	aliceAccount := newTestKey(t)
	bobAccount := newTestKey(t)

	require.NoError(t, l.CreateMint(ctx, mint, mintAuthority, 6))

	assert.Equal(t, ledger.ErrMintNotFound, l.CreateAccount(ctx, aliceAccount, newTestKey(t), alice))

	require.NoError(t, l.CreateAccount(ctx, aliceAccount, mint, alice))
	require.NoError(t, l.CreateAccount(ctx, bobAccount, mint, newTestKey(t)))
	require.NoError(t, l.Mint(ctx, mint, aliceAccount, 100, ledger.NewSignerAuthority(mintAuthority)))

	assert.Equal(t, ledger.ErrInsufficientFunds, l.Transfer(ctx, 101, aliceAccount, bobAccount, ledger.NewSignerAuthority(alice)))

	_, err := l.BalanceOf(ctx, newTestKey(t))
	assert.Equal(t, ledger.ErrAccountNotFound, err)

	l.FreezeAccount(aliceAccount)
	assert.Equal(t, ledger.ErrAccountFrozen, l.Transfer(ctx, 1, aliceAccount, bobAccount, ledger.NewSignerAuthority(alice)))
	assert.Equal(t, ledger.ErrAccountFrozen, l.Mint(ctx, mint, aliceAccount, 1, ledger.NewSignerAuthority(mintAuthority)))
	l.ThawAccount(aliceAccount)

	l.FreezeMint(mint)
	assert.Equal(t, ledger.ErrAccountFrozen, l.Mint(ctx, mint, aliceAccount, 1, ledger.NewSignerAuthority(mintAuthority)))
}

func TestLedger_OverflowChecks(t *testing.T) {
	ctx := context.Background()
	l := New()

	mint := newTestKey(t)
	mintAuthority := newTestKey(t)
	alice := newTestKey(t)
	aliceAccount := newTestKey(t)

	require.NoError(t, l.CreateMint(ctx, mint, mintAuthority, 6))
	require.NoError(t, l.CreateAccount(ctx, aliceAccount, mint, alice))

	require.NoError(t, l.Mint(ctx, mint, aliceAccount, math.MaxUint64, ledger.NewSignerAuthority(mintAuthority)))
	assert.Equal(t, ledger.ErrAmountOverflow, l.Mint(ctx, mint, aliceAccount, 1, ledger.NewSignerAuthority(mintAuthority)))
}
