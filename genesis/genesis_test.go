package genesis

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fewzfewz/scratchBlockchain/core/rawdb"
	"github.com/fewzfewz/scratchBlockchain/core/store"
	"github.com/stretchr/testify/require"
)

const testSpecYAML = `
chain_id: 7
validators:
  - address: "0x0102030405060708090a0b0c0d0e0f1011121314"
    public_key: "0x%s"
    stake: "1000"
    commission_rate_permille: 50000
alloc:
  - address: "0x0102030405060708090a0b0c0d0e0f1011121314"
    balance: "500000"
`

func writeTestSpec(t *testing.T) string {
	t.Helper()
	pubHex := ""
	for i := 0; i < 32; i++ {
		pubHex += "ab"
	}
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(testSpecYAML, pubHex)), 0o600))
	return path
}

func TestLoadParsesSpec(t *testing.T) {
	spec, err := Load(writeTestSpec(t))
	require.NoError(t, err)
	require.Equal(t, uint64(7), spec.ChainID)
	require.Len(t, spec.Validators, 1)
	require.Len(t, spec.Alloc, 1)
}

func TestValidatorSetAndAllocationParseNumericFields(t *testing.T) {
	spec, err := Load(writeTestSpec(t))
	require.NoError(t, err)

	vs, err := spec.ValidatorSet()
	require.NoError(t, err)
	require.Len(t, vs.Validators, 1)
	require.Equal(t, uint64(1000), vs.Validators[0].Stake.Uint64())
	require.Equal(t, uint32(50000), vs.Validators[0].CommissionRatePermille)

	alloc, err := spec.Allocation()
	require.NoError(t, err)
	require.Len(t, alloc, 1)
	for _, acct := range alloc {
		require.Equal(t, uint64(500000), acct.Balance.Uint64())
	}
}

func TestInitWritesGenesisBlockAndAllocation(t *testing.T) {
	spec, err := Load(writeTestSpec(t))
	require.NoError(t, err)

	db, err := rawdb.OpenPebble(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	st, err := store.Open(db)
	require.NoError(t, err)

	require.NoError(t, Init(st, spec))

	height, ok := st.LatestHeight()
	require.True(t, ok)
	require.Equal(t, uint64(0), height)

	chainID, ok := st.ChainID()
	require.True(t, ok)
	require.Equal(t, uint64(7), chainID)

	alloc, err := spec.Allocation()
	require.NoError(t, err)
	for addr, acct := range alloc {
		got, err := st.GetAccount(addr)
		require.NoError(t, err)
		require.Equal(t, acct.Balance, got.Balance)
	}

	require.ErrorIs(t, Init(st, spec), store.ErrAlreadyExists)
}
