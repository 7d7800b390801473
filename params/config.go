// Package params models the node's protocol-parameter configuration: the
// TOML-loaded options that parameterize the consensus engine, the pool and
// the reward schedule. It is the counterpart to package genesis, which
// carries the one-time validator/account allocation; Config carries the
// options a node operator tunes on every run.
package params

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/consensus"
	"github.com/holiman/uint256"
	"github.com/naoina/toml"
)

// Config is the TOML-serializable form of consensus.Config. Fields that
// consensus.Config represents with *uint256.Int or *big.Rat are carried
// here as decimal strings, since neither type round-trips through TOML
// directly; ToConsensusConfig parses them once at startup.
type Config struct {
	BlockTime time.Duration `toml:"block_time"`

	MaxValidators      int    `toml:"max_validators"`
	MinStakeToValidate string `toml:"min_stake_to_validate"`

	MinFeePerGas  uint64 `toml:"min_fee_per_gas"`
	PoolCapacity  int    `toml:"pool_capacity"`
	PoolPerSender int    `toml:"pool_per_sender"`
	MaxGas        uint64 `toml:"max_gas"`

	BaseReward            string `toml:"base_reward"`
	HalvingInterval       uint64 `toml:"halving_interval"`
	BurnFraction          string `toml:"burn_fraction"`
	TreasuryFraction      string `toml:"treasury_fraction"`
	TreasuryAddress       string `toml:"treasury_address"`
	CommissionRateDefault uint32 `toml:"commission_rate_default"`

	TPropose   time.Duration `toml:"t_propose"`
	TPrevote   time.Duration `toml:"t_prevote"`
	TPrecommit time.Duration `toml:"t_precommit"`

	ChainID uint64 `toml:"chain_id"`

	AllowEmptyBlocks bool `toml:"allow_empty_blocks"`
}

// Default returns the configuration a fresh local testnet starts from:
// one-second slots, generous round timeouts, no burn or treasury cut, and
// empty blocks allowed so a single validator can make progress alone.
func Default() Config {
	return Config{
		BlockTime:             time.Second,
		MaxValidators:         100,
		MinStakeToValidate:    "0",
		MinFeePerGas:          1,
		PoolCapacity:          4096,
		PoolPerSender:         64,
		MaxGas:                30_000_000,
		BaseReward:            "0",
		HalvingInterval:       0,
		BurnFraction:          "0",
		TreasuryFraction:      "0",
		TreasuryAddress:       zondcommon.Address{}.Hex(),
		CommissionRateDefault: 0,
		TPropose:              2 * time.Second,
		TPrevote:              2 * time.Second,
		TPrecommit:            2 * time.Second,
		ChainID:               1,
		AllowEmptyBlocks:      true,
	}
}

// Load reads and parses a TOML configuration file at path, starting from
// Default for any field the file omits.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("params: open config %s: %w", path, err)
	}
	defer f.Close()

	cfg := Default()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("params: decode config %s: %w", path, err)
	}
	return &cfg, nil
}

// ToConsensusConfig parses the string-encoded numeric fields and returns
// the consensus.Config the engine actually runs with.
func (c *Config) ToConsensusConfig() (consensus.Config, error) {
	minStake, err := parseUint256(c.MinStakeToValidate)
	if err != nil {
		return consensus.Config{}, fmt.Errorf("params: min_stake_to_validate: %w", err)
	}
	baseReward, err := parseUint256(c.BaseReward)
	if err != nil {
		return consensus.Config{}, fmt.Errorf("params: base_reward: %w", err)
	}
	burnFraction, err := parseRat(c.BurnFraction)
	if err != nil {
		return consensus.Config{}, fmt.Errorf("params: burn_fraction: %w", err)
	}
	treasuryFraction, err := parseRat(c.TreasuryFraction)
	if err != nil {
		return consensus.Config{}, fmt.Errorf("params: treasury_fraction: %w", err)
	}
	treasuryAddr, err := zondcommon.HexToAddress(c.TreasuryAddress)
	if err != nil {
		return consensus.Config{}, fmt.Errorf("params: treasury_address: %w", err)
	}

	return consensus.Config{
		BlockTime:             c.BlockTime,
		MaxValidators:         c.MaxValidators,
		MinStakeToValidate:    minStake,
		MinFeePerGas:          c.MinFeePerGas,
		PoolCapacity:          c.PoolCapacity,
		PoolPerSender:         c.PoolPerSender,
		MaxGas:                c.MaxGas,
		BaseReward:            baseReward,
		HalvingInterval:       c.HalvingInterval,
		BurnFraction:          burnFraction,
		TreasuryFraction:      treasuryFraction,
		TreasuryAddress:       treasuryAddr,
		CommissionRateDefault: c.CommissionRateDefault,
		TPropose:              c.TPropose,
		TPrevote:              c.TPrevote,
		TPrecommit:            c.TPrecommit,
		ChainID:               c.ChainID,
		AllowEmptyBlocks:      c.AllowEmptyBlocks,
	}, nil
}

func parseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uint256.NewInt(0), nil
	}
	v := new(uint256.Int)
	if err := v.SetFromDecimal(s); err != nil {
		return nil, err
	}
	return v, nil
}

// parseRat parses a fraction expressed either as "num/den" or as a single
// decimal (interpreted as a big.Rat literal, e.g. "0.1"). A blank string
// or "0" means "no fraction", returned as nil so callers can skip the share
// entirely rather than compute a zero one.
func parseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil, nil
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid fraction %q", s)
	}
	return r, nil
}
