// Package genesis parses the YAML genesis specification and ingests it
// into a freshly opened store: the one-time validator set and account
// allocation a chain is bootstrapped from, the counterpart to package
// params' per-run node configuration.
package genesis

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/store"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// Account is one funded address in the genesis allocation.
type Account struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

// Validator is one founding member of validator set 0.
type Validator struct {
	Address                string `yaml:"address"`
	PublicKey              string `yaml:"public_key"`
	Stake                  string `yaml:"stake"`
	CommissionRatePermille uint32 `yaml:"commission_rate_permille"`
}

// Spec is the root of a genesis YAML document.
type Spec struct {
	ChainID    uint64      `yaml:"chain_id"`
	Validators []Validator `yaml:"validators"`
	Alloc      []Account   `yaml:"alloc"`
}

// Load parses the genesis file at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("genesis: read %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("genesis: parse %s: %w", path, err)
	}
	return &spec, nil
}

// ValidatorSet builds the initial validator set (ID 0) described by the
// spec.
func (s *Spec) ValidatorSet() (*types.ValidatorSet, error) {
	validators := make([]*types.Validator, 0, len(s.Validators))
	for _, v := range s.Validators {
		addr, err := zondcommon.HexToAddress(v.Address)
		if err != nil {
			return nil, fmt.Errorf("genesis: validator address %q: %w", v.Address, err)
		}
		pub, err := hexToPublicKey(v.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("genesis: validator public key %q: %w", v.PublicKey, err)
		}
		stake, err := decimalToUint256(v.Stake)
		if err != nil {
			return nil, fmt.Errorf("genesis: validator stake %q: %w", v.Stake, err)
		}
		validators = append(validators, &types.Validator{
			Address:                addr,
			PublicKey:              pub,
			Stake:                  stake,
			CommissionRatePermille: v.CommissionRatePermille,
		})
	}
	return &types.ValidatorSet{ID: 0, Validators: validators}, nil
}

// Allocation builds the account balances the genesis block credits.
func (s *Spec) Allocation() (store.StateDelta, error) {
	delta := make(store.StateDelta, len(s.Alloc))
	for _, a := range s.Alloc {
		addr, err := zondcommon.HexToAddress(a.Address)
		if err != nil {
			return nil, fmt.Errorf("genesis: alloc address %q: %w", a.Address, err)
		}
		balance, err := decimalToUint256(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("genesis: alloc balance %q: %w", a.Balance, err)
		}
		delta[addr] = types.Account{Nonce: 0, Balance: balance}
	}
	return delta, nil
}

// Init writes the genesis block (height 0, no transactions) and the
// account allocation into st. It is idempotent only in the sense that a
// second call against an already-initialized store fails with
// store.ErrAlreadyExists; callers are expected to run it exactly once per
// data directory.
func Init(st *store.Store, spec *Spec) error {
	alloc, err := spec.Allocation()
	if err != nil {
		return err
	}
	block := types.NewBlock(&types.BlockHeader{Slot: 0, Epoch: 0}, nil)
	return st.WriteGenesis(block, alloc, spec.ChainID)
}

func hexToPublicKey(s string) (zondcommon.PublicKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return zondcommon.PublicKey{}, err
	}
	var pk zondcommon.PublicKey
	if len(b) != len(pk) {
		return zondcommon.PublicKey{}, fmt.Errorf("want %d bytes, got %d", len(pk), len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

func decimalToUint256(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, err
	}
	return v, nil
}
