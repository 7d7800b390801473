package rawdb

import (
	"fmt"

	"github.com/fewzfewz/scratchBlockchain/codec"
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/holiman/uint256"
	"github.com/karalabe/ssz"
)

// accountRecord is the SSZ wire form of types.Account.
type accountRecord struct {
	Nonce   uint64
	Balance *uint256.Int
}

func (a *accountRecord) StaticSSZ() bool { return true }
func (a *accountRecord) SizeSSZ() uint32 { return 8 + 32 }
func (a *accountRecord) DefineSSZ(c *ssz.Codec) {
	ssz.DefineUint64(c, &a.Nonce)
	ssz.DefineUint256(c, &a.Balance)
}

// ReadAccount returns the account stored at addr, or the implicit
// zero-value account if none is stored.
func ReadAccount(r KeyValueReader, addr zondcommon.Address) (types.Account, error) {
	data, err := r.Get(encodeAccountKey(addr[:]))
	if err != nil {
		return types.NewAccount(), nil
	}
	rec := &accountRecord{Balance: uint256.NewInt(0)}
	if err := codec.Decode(data, rec); err != nil {
		return types.Account{}, fmt.Errorf("rawdb: decode account %s: %w", addr.Hex(), err)
	}
	return types.Account{Nonce: rec.Nonce, Balance: rec.Balance}, nil
}

// WriteAccount persists the account state at addr.
func WriteAccount(w KeyValueWriter, addr zondcommon.Address, account types.Account) error {
	rec := &accountRecord{Nonce: account.Nonce, Balance: account.Balance}
	data, err := codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("rawdb: encode account %s: %w", addr.Hex(), err)
	}
	return w.Put(encodeAccountKey(addr[:]), data)
}
