package types

import (
	"math/big"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/holiman/uint256"
)

// Validator is one member of an active validator set. CommissionRate is
// expressed as parts-per-million of the block reward so it stays an
// integer on the wire instead of a floating-point rational.
type Validator struct {
	Address              zondcommon.Address
	PublicKey             zondcommon.PublicKey
	Stake                 *uint256.Int
	CommissionRatePermille uint32
}

// CommissionRate returns the validator's commission as a rational in [0,1].
func (v *Validator) CommissionRate() *big.Rat {
	return big.NewRat(int64(v.CommissionRatePermille), 1_000_000)
}

// ValidatorSet is the ordered, epoch-immutable set of validators that
// produce and vote on blocks for a contiguous range of slots. Rotation
// across epoch boundaries enters the core only as a new ID; the set
// itself is constructed externally (genesis or governance) and handed to
// the engine.
type ValidatorSet struct {
	ID         uint64
	Validators []*Validator
}

// TotalStake sums the stake of every member.
func (vs *ValidatorSet) TotalStake() *uint256.Int {
	total := uint256.NewInt(0)
	for _, v := range vs.Validators {
		total.Add(total, v.Stake)
	}
	return total
}

// QuorumStake returns the minimum stake (inclusive) that constitutes a
// two-thirds quorum: ceil(2*total/3).
func (vs *ValidatorSet) QuorumStake() *uint256.Int {
	total := vs.TotalStake()
	num := new(uint256.Int).Mul(total, uint256.NewInt(2))
	three := uint256.NewInt(3)
	quo := new(uint256.Int).Div(num, three)
	if new(uint256.Int).Mod(num, three).Sign() != 0 {
		quo.AddUint64(quo, 1)
	}
	return quo
}

// HasQuorum reports whether stake meets or exceeds two-thirds of total
// stake.
func (vs *ValidatorSet) HasQuorum(stake *uint256.Int) bool {
	return stake.Cmp(vs.QuorumStake()) >= 0
}

// IndexOf returns the position of addr in the set, or -1 if absent.
func (vs *ValidatorSet) IndexOf(addr zondcommon.Address) int {
	for i, v := range vs.Validators {
		if v.Address == addr {
			return i
		}
	}
	return -1
}

// Get returns the validator at addr and whether it is a member.
func (vs *ValidatorSet) Get(addr zondcommon.Address) (*Validator, bool) {
	i := vs.IndexOf(addr)
	if i < 0 {
		return nil, false
	}
	return vs.Validators[i], true
}

// Proposer returns the deterministic proposer for (slot, round): a plain
// round-robin over the ordered set, set[(slot+round) mod |set|]. Round-robin
// is picked over stake-weighted selection because it requires no
// accumulator state across slots and every validator can compute it
// identically from the set alone.
func (vs *ValidatorSet) Proposer(slot, round uint64) *Validator {
	if len(vs.Validators) == 0 {
		return nil
	}
	idx := (slot + round) % uint64(len(vs.Validators))
	return vs.Validators[idx]
}
