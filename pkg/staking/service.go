package staking

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/stake-server/pkg/data/stake"
	"github.com/code-payments/stake-server/pkg/ledger"
	"github.com/code-payments/stake-server/pkg/metrics"
	sync_util "github.com/code-payments/stake-server/pkg/sync"
)

const (
	mintInitializedMetricName = "staking_service_mint_initialized"
	airdropAmountMetricName   = "staking_service_airdrop_amount"
	stakeAmountMetricName     = "staking_service_stake_amount"
	unstakeAmountMetricName   = "staking_service_unstake_amount"
)

// Service implements the airdrop and staking operations over a stake ledger
// store and the external token ledger.
//
// All escrow movement is signed by authorities derived from ProgramID. Both
// bumps are discovered once at construction and re-derived per operation.
type Service struct {
	log    *logrus.Entry
	conf   *conf
	tokens ledger.Ledger
	stakes stake.Store

	accountLocks *sync_util.StripedLock

	mint           ed25519.PublicKey
	vault          ed25519.PublicKey
	mintAuthority  *Authority
	stakeAuthority *Authority
}

// NewService returns a new staking Service
func NewService(tokens ledger.Ledger, stakes stake.Store, configProvider ConfigProvider) (*Service, error) {
	conf := configProvider()

	mint, err := MintAddress()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving mint address")
	}

	vault, err := VaultAddress()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving vault address")
	}

	mintAuthority, err := deriveAuthority(MintAuthorityRole)
	if err != nil {
		return nil, err
	}

	stakeAuthority, err := deriveAuthority(StakeAuthorityRole)
	if err != nil {
		return nil, err
	}

	stripes := conf.stripedLockParallelization.Get(context.Background())
	if stripes == 0 {
		stripes = defaultStripedLockParallelization
	}

	return &Service{
		log:    logrus.StandardLogger().WithField("type", "staking/service"),
		conf:   conf,
		tokens: tokens,
		stakes: stakes,

		accountLocks: sync_util.NewStripedLock(uint(stripes)),

		mint:           mint,
		vault:          vault,
		mintAuthority:  mintAuthority,
		stakeAuthority: stakeAuthority,
	}, nil
}

// InitializeMint creates the token mint with the derived mint authority and
// the pooled escrow vault owned by the derived stake authority. It must run
// exactly once, before any other operation; a second call fails with
// ErrSetupConflict and leaves the original mint and vault untouched.
func (s *Service) InitializeMint(ctx context.Context, decimals uint8) error {
	log := s.log.WithFields(logrus.Fields{
		"method":   "InitializeMint",
		"decimals": decimals,
	})

	err := s.tokens.CreateMint(ctx, s.mint, s.mintAuthority.Identity(), decimals)
	if err == ledger.ErrMintExists {
		return ErrSetupConflict
	} else if err != nil {
		log.WithError(err).Warn("failure creating mint")
		return newLedgerOperationError("create_mint", err)
	}

	err = s.tokens.CreateAccount(ctx, s.vault, s.mint, s.stakeAuthority.Identity())
	if err == ledger.ErrAccountExists {
		return ErrSetupConflict
	} else if err != nil {
		log.WithError(err).Warn("failure creating vault")
		return newLedgerOperationError("create_account", err)
	}

	metrics.RecordCount(ctx, mintInitializedMetricName, 1)

	return nil
}

// Airdrop mints amount tokens into the owner's token account, creating the
// account on demand. The mint is signed by the derived mint authority. A
// failed mint aborts the entire request; it is never reported as success.
func (s *Service) Airdrop(ctx context.Context, owner ed25519.PublicKey, amount uint64) error {
	log := s.log.WithFields(logrus.Fields{
		"method": "Airdrop",
		"owner":  base58.Encode(owner),
		"amount": amount,
	})

	if s.conf.disableAirdrops.Get(ctx) {
		return ErrAirdropsDisabled
	}
	if amount > s.conf.maxAirdropAmount.Get(ctx) {
		return ErrAirdropLimitExceeded
	}
	if amount == 0 {
		return nil
	}

	mu := s.accountLocks.Get(owner)
	mu.Lock()
	defer mu.Unlock()

	tokenAccount, err := s.getOrCreateTokenAccount(ctx, owner)
	if err != nil {
		log.WithError(err).Warn("failure getting token account")
		return err
	}

	authority, err := s.signAs(MintAuthorityRole)
	if err != nil {
		log.WithError(err).Warn("failure re-deriving mint authority")
		return err
	}

	if err := s.tokens.Mint(ctx, s.mint, tokenAccount, amount, authority); err != nil {
		log.WithError(err).Warn("failure minting airdrop")
		return newLedgerOperationError("mint", err)
	}

	metrics.RecordCount(ctx, airdropAmountMetricName, amount)

	return nil
}

// Stake moves amount tokens from the owner's token account into the pooled
// escrow vault and increments the owner's stake entry. The transfer is
// authorized by the owner, who controls the funds being moved out.
func (s *Service) Stake(ctx context.Context, owner ed25519.PublicKey, amount uint64) error {
	log := s.log.WithFields(logrus.Fields{
		"method": "Stake",
		"owner":  base58.Encode(owner),
		"amount": amount,
	})

	if amount == 0 {
		return nil
	}

	mu := s.accountLocks.Get(owner)
	mu.Lock()
	defer mu.Unlock()

	tokenAccount, err := TokenAccountAddress(owner)
	if err != nil {
		return errors.Wrap(err, "error deriving token account address")
	}

	balance, err := s.tokens.BalanceOf(ctx, tokenAccount)
	if err == ledger.ErrAccountNotFound {
		return ErrInsufficientBalance
	} else if err != nil {
		log.WithError(err).Warn("failure getting token account balance")
		return newLedgerOperationError("balance_of", err)
	}
	if balance < amount {
		return ErrInsufficientBalance
	}

	ownerKey := base58.Encode(owner)

	// The entry exists before any tokens move, so the mutation below is a
	// pure increment.
	if _, err := s.stakes.GetOrCreate(ctx, ownerKey); err != nil {
		log.WithError(err).Warn("failure creating stake entry")
		return err
	}

	err = s.tokens.Transfer(ctx, amount, tokenAccount, s.vault, ledger.NewSignerAuthority(owner))
	if err == ledger.ErrInsufficientFunds {
		return ErrInsufficientBalance
	} else if err != nil {
		log.WithError(err).Warn("failure transferring to escrow")
		return newLedgerOperationError("transfer", err)
	}

	if _, err := s.stakes.Add(ctx, ownerKey, amount); err != nil {
		// Undo the escrow move so no partial effect persists
		if compensateErr := s.returnFromEscrow(ctx, tokenAccount, amount); compensateErr != nil {
			log.WithError(compensateErr).Error("failure compensating escrow transfer, pool invariant at risk")
		}

		if err == stake.ErrAmountOverflow {
			return ErrArithmeticOverflow
		}
		log.WithError(err).Warn("failure incrementing stake entry")
		return err
	}

	metrics.RecordCount(ctx, stakeAmountMetricName, amount)

	return nil
}

// Unstake moves amount tokens from the pooled escrow vault back to the owner's
// token account and decrements the owner's stake entry. The transfer is signed
// by the derived stake authority, since escrow funds are program controlled.
func (s *Service) Unstake(ctx context.Context, owner ed25519.PublicKey, amount uint64) error {
	log := s.log.WithFields(logrus.Fields{
		"method": "Unstake",
		"owner":  base58.Encode(owner),
		"amount": amount,
	})

	if amount == 0 {
		return nil
	}

	mu := s.accountLocks.Get(owner)
	mu.Lock()
	defer mu.Unlock()

	tokenAccount, err := s.getOrCreateTokenAccount(ctx, owner)
	if err != nil {
		log.WithError(err).Warn("failure getting token account")
		return err
	}

	authority, err := s.signAs(StakeAuthorityRole)
	if err != nil {
		log.WithError(err).Warn("failure re-deriving stake authority")
		return err
	}

	ownerKey := base58.Encode(owner)

	// The conditional decrement enforces the staked-amount precondition within
	// the same atomic unit as the mutation.
	_, err = s.stakes.Subtract(ctx, ownerKey, amount)
	if err == stake.ErrInsufficientStake {
		return ErrExcessiveUnstake
	} else if err != nil {
		log.WithError(err).Warn("failure decrementing stake entry")
		return err
	}

	if err := s.tokens.Transfer(ctx, amount, s.vault, tokenAccount, authority); err != nil {
		// Restore the entry so no partial effect persists
		if _, restoreErr := s.stakes.Add(ctx, ownerKey, amount); restoreErr != nil {
			log.WithError(restoreErr).Error("failure restoring stake entry, pool invariant at risk")
		}

		log.WithError(err).Warn("failure transferring from escrow")
		return newLedgerOperationError("transfer", err)
	}

	metrics.RecordCount(ctx, unstakeAmountMetricName, amount)

	return nil
}

// StakedBalance returns the owner's currently staked amount. Owners that have
// never staked report 0.
func (s *Service) StakedBalance(ctx context.Context, owner ed25519.PublicKey) (uint64, error) {
	record, err := s.stakes.Get(ctx, base58.Encode(owner))
	if err == stake.ErrEntryNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return record.Amount, nil
}

// LiquidBalance returns the owner's unstaked token balance. Owners without a
// token account report 0.
func (s *Service) LiquidBalance(ctx context.Context, owner ed25519.PublicKey) (uint64, error) {
	tokenAccount, err := TokenAccountAddress(owner)
	if err != nil {
		return 0, errors.Wrap(err, "error deriving token account address")
	}

	balance, err := s.tokens.BalanceOf(ctx, tokenAccount)
	if err == ledger.ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, newLedgerOperationError("balance_of", err)
	}
	return balance, nil
}

// TotalStaked returns the sum of all stake entries
func (s *Service) TotalStaked(ctx context.Context) (uint64, error) {
	return s.stakes.GetTotalStaked(ctx)
}

// VaultBalance returns the pooled escrow vault's balance
func (s *Service) VaultBalance(ctx context.Context) (uint64, error) {
	balance, err := s.tokens.BalanceOf(ctx, s.vault)
	if err == ledger.ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, newLedgerOperationError("balance_of", err)
	}
	return balance, nil
}

// signAs re-derives a role's authority from the bump discovered at setup and
// verifies it against the expected identity before use.
func (s *Service) signAs(role AuthorityRole) (*Authority, error) {
	expected := s.mintAuthority
	if role == StakeAuthorityRole {
		expected = s.stakeAuthority
	}

	derived, err := authorityForBump(role, expected.Bump())
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(derived.Identity(), expected.Identity()) {
		return nil, ErrBumpMismatch
	}
	return derived, nil
}

func (s *Service) getOrCreateTokenAccount(ctx context.Context, owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	tokenAccount, err := TokenAccountAddress(owner)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving token account address")
	}

	err = s.tokens.CreateAccount(ctx, tokenAccount, s.mint, owner)
	if err != nil && err != ledger.ErrAccountExists {
		return nil, newLedgerOperationError("create_account", err)
	}
	return tokenAccount, nil
}

func (s *Service) returnFromEscrow(ctx context.Context, tokenAccount ed25519.PublicKey, amount uint64) error {
	authority, err := s.signAs(StakeAuthorityRole)
	if err != nil {
		return err
	}
	return s.tokens.Transfer(ctx, amount, s.vault, tokenAccount, authority)
}
