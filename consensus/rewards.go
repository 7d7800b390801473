package consensus

import (
	"math/big"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/holiman/uint256"
)

// Settlement is the outcome of settling one block's fees and block reward:
// the per-validator payouts (proposer plus any commission-earning
// delegators, represented here as a flat proposer-only payout since
// delegation accounting sits outside this core), the amount burned, and
// the amount routed to the treasury address. BurnedAmount +
// TreasuryAmount + ProposerPayout always equals TotalMinted + TotalFees —
// the conservation invariant RewardSettlement callers check.
type Settlement struct {
	ProposerPayout  *uint256.Int
	TreasuryAmount  *uint256.Int
	BurnedAmount    *uint256.Int
	TotalMinted     *uint256.Int
	TotalFees       *uint256.Int
}

// blockReward returns the block subsidy at height, halving every
// cfg.HalvingInterval blocks until it reaches zero.
func blockReward(cfg Config, height uint64) *uint256.Int {
	if cfg.HalvingInterval == 0 {
		return new(uint256.Int).Set(cfg.BaseReward)
	}
	halvings := height / cfg.HalvingInterval
	const maxHalvings = 64
	if halvings >= maxHalvings {
		return uint256.NewInt(0)
	}
	reward := new(uint256.Int).Set(cfg.BaseReward)
	reward.Rsh(reward, uint(halvings))
	return reward
}

// RewardSettlement computes how one block's total fee income plus its
// freshly minted subsidy splits between burn, treasury and the proposer.
// totalFees is the sum of gas_used * effective_fee_per_gas across every
// included transaction.
func RewardSettlement(cfg Config, height uint64, totalFees *uint256.Int) Settlement {
	minted := blockReward(cfg, height)
	pool := new(uint256.Int).Add(minted, totalFees)

	burned := ratShare(pool, cfg.BurnFraction)
	treasury := ratShare(pool, cfg.TreasuryFraction)

	remaining := new(uint256.Int).Sub(pool, burned)
	remaining.Sub(remaining, treasury)

	return Settlement{
		ProposerPayout: remaining,
		TreasuryAmount: treasury,
		BurnedAmount:   burned,
		TotalMinted:    minted,
		TotalFees:      new(uint256.Int).Set(totalFees),
	}
}

// ratShare returns floor(amount * frac) computed in big.Int to avoid the
// rounding error a uint256-native rational multiply would introduce, then
// converts back. frac is expected in [0, 1]; a nil frac yields zero.
func ratShare(amount *uint256.Int, frac *big.Rat) *uint256.Int {
	if frac == nil || frac.Sign() == 0 {
		return uint256.NewInt(0)
	}
	amountBig := amount.ToBig()
	num := new(big.Int).Mul(amountBig, frac.Num())
	num.Div(num, frac.Denom())
	out, overflow := uint256.FromBig(num)
	if overflow {
		return new(uint256.Int).Set(amount)
	}
	return out
}

// ApplySettlement folds a Settlement into the block's account delta,
// crediting the proposer and the configured treasury address. Burned
// value is simply never credited to any account.
func ApplySettlement(delta map[zondcommon.Address]types.Account, proposer zondcommon.Address, cfg Config, s Settlement, view AccountView) error {
	if err := creditInto(delta, proposer, s.ProposerPayout, view); err != nil {
		return err
	}
	if s.TreasuryAmount.Sign() > 0 {
		if err := creditInto(delta, cfg.TreasuryAddress, s.TreasuryAmount, view); err != nil {
			return err
		}
	}
	return nil
}

func creditInto(delta map[zondcommon.Address]types.Account, addr zondcommon.Address, amount *uint256.Int, view AccountView) error {
	account, ok := delta[addr]
	if !ok {
		existing, err := view.GetAccount(addr)
		if err != nil {
			return err
		}
		account = existing.Clone()
	}
	account.Balance.Add(account.Balance, amount)
	delta[addr] = account
	return nil
}
