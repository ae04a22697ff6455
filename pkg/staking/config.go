package staking

import (
	"math"

	"github.com/code-payments/stake-server/pkg/config"
	"github.com/code-payments/stake-server/pkg/config/env"
)

const (
	envConfigPrefix = "STAKING_SERVICE_"

	DisableAirdropsConfigEnvName = envConfigPrefix + "DISABLE_AIRDROPS"
	defaultDisableAirdrops       = false

	MaxAirdropAmountConfigEnvName = envConfigPrefix + "MAX_AIRDROP_AMOUNT"
	defaultMaxAirdropAmount       = uint64(math.MaxUint64) // unlimited

	StripedLockParallelizationConfigEnvName = envConfigPrefix + "STRIPED_LOCK_PARALLELIZATION"
	defaultStripedLockParallelization       = uint64(64)
)

type conf struct {
	disableAirdrops            config.Bool
	maxAirdropAmount           config.Uint64
	stripedLockParallelization config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			disableAirdrops:            env.NewBoolConfig(DisableAirdropsConfigEnvName, defaultDisableAirdrops),
			maxAirdropAmount:           env.NewUint64Config(MaxAirdropAmountConfigEnvName, defaultMaxAirdropAmount),
			stripedLockParallelization: env.NewUint64Config(StripedLockParallelizationConfigEnvName, defaultStripedLockParallelization),
		}
	}
}
