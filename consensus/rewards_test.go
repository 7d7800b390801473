package consensus

import (
	"math/big"
	"testing"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type fakeAccountView struct {
	accounts map[zondcommon.Address]types.Account
}

func (f *fakeAccountView) GetAccount(addr zondcommon.Address) (types.Account, error) {
	if acc, ok := f.accounts[addr]; ok {
		return acc, nil
	}
	return types.NewAccount(), nil
}

func testConfig() Config {
	return Config{
		BaseReward:            uint256.NewInt(1000),
		HalvingInterval:       10,
		BurnFraction:          big.NewRat(1, 10),
		TreasuryFraction:      big.NewRat(1, 5),
		TreasuryAddress:       zondcommon.BytesToAddress([]byte("treasury")),
		CommissionRateDefault: 50_000,
	}
}

func TestBlockRewardHalves(t *testing.T) {
	cfg := testConfig()
	require.Equal(t, uint256.NewInt(1000), blockReward(cfg, 0))
	require.Equal(t, uint256.NewInt(1000), blockReward(cfg, 9))
	require.Equal(t, uint256.NewInt(500), blockReward(cfg, 10))
	require.Equal(t, uint256.NewInt(250), blockReward(cfg, 20))
}

func TestBlockRewardZeroHalvingIntervalNeverHalves(t *testing.T) {
	cfg := testConfig()
	cfg.HalvingInterval = 0
	require.Equal(t, uint256.NewInt(1000), blockReward(cfg, 1_000_000))
}

func TestRewardSettlementConservesTotal(t *testing.T) {
	cfg := testConfig()
	fees := uint256.NewInt(300)
	settlement := RewardSettlement(cfg, 0, fees)

	total := new(uint256.Int).Add(settlement.ProposerPayout, settlement.TreasuryAmount)
	total.Add(total, settlement.BurnedAmount)

	want := new(uint256.Int).Add(settlement.TotalMinted, settlement.TotalFees)
	require.Equal(t, want, total, "burn + treasury + payout must equal minted + fees")
}

func TestRewardSettlementAppliesFractionsCorrectly(t *testing.T) {
	cfg := testConfig()
	fees := uint256.NewInt(0)
	settlement := RewardSettlement(cfg, 0, fees) // pool = 1000
	require.Equal(t, uint256.NewInt(100), settlement.BurnedAmount)   // 10%
	require.Equal(t, uint256.NewInt(200), settlement.TreasuryAmount) // 20%
	require.Equal(t, uint256.NewInt(700), settlement.ProposerPayout) // remainder
}

func TestApplySettlementCreditsProposerAndTreasury(t *testing.T) {
	cfg := testConfig()
	proposer := zondcommon.BytesToAddress([]byte("proposer"))
	settlement := RewardSettlement(cfg, 0, uint256.NewInt(0))

	view := &fakeAccountView{accounts: make(map[zondcommon.Address]types.Account)}
	delta := make(map[zondcommon.Address]types.Account)
	require.NoError(t, ApplySettlement(delta, proposer, cfg, settlement, view))

	require.Equal(t, settlement.ProposerPayout, delta[proposer].Balance)
	require.Equal(t, settlement.TreasuryAmount, delta[cfg.TreasuryAddress].Balance)
}
