package consensus

import (
	"math/big"
	"time"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/holiman/uint256"
)

// Config carries every engine-recognized tunable: slot timing, pool
// admission bounds, and reward/fee settlement parameters. It is built from
// the node configuration (params.Config.ToConsensusConfig) and never
// mutated after engine construction.
type Config struct {
	BlockTime time.Duration

	MaxValidators      int
	MinStakeToValidate *uint256.Int

	MinFeePerGas  uint64
	PoolCapacity  int
	PoolPerSender int
	MaxGas        uint64

	BaseReward            *uint256.Int
	HalvingInterval       uint64
	BurnFraction          *big.Rat
	TreasuryFraction      *big.Rat
	TreasuryAddress       zondcommon.Address
	CommissionRateDefault uint32

	TPropose   time.Duration
	TPrevote   time.Duration
	TPrecommit time.Duration

	ChainID uint64

	// AllowEmptyBlocks controls whether the engine proposes a block when
	// SelectForBlock returns nothing, or waits for a transaction to arrive.
	// params.Default sets it true: the engine always produces a block each
	// slot. The zero Config leaves it false.
	AllowEmptyBlocks bool
}

// RoundTimeout returns the (possibly doubled) timeout for phase at the
// given round: timeouts grow per round to restore liveness after a
// network stall, capped so a stuck round can't grow unbounded.
func RoundTimeout(base time.Duration, round uint64) time.Duration {
	const maxDoublings = 6
	doublings := round
	if doublings > maxDoublings {
		doublings = maxDoublings
	}
	return base << doublings
}
